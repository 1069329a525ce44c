package lifecycle

import (
	"time"

	"github.com/wastewatch/foodwaste-backend/internal/projects/domain"
)

// Snapshot is everything a transition rule may look at.
type Snapshot struct {
	Project domain.Project
	Now     time.Time
	Access  Access

	// Days holds the registration dates of the project. Only consulted for
	// RUNNING projects bounded by registrations.
	Days DaySet
}

type edge struct {
	to   domain.Status
	when func(Snapshot) bool
}

// automaticEdges is keyed by the current status, so at most one edge can
// apply to a snapshot. Statuses missing here never move automatically.
var automaticEdges = map[domain.Status]edge{
	domain.StatusPendingStart: {
		to:   domain.StatusRunning,
		when: readyToStart,
	},
	domain.StatusRunning: {
		to:   domain.StatusPendingInput,
		when: durationElapsed,
	},
	domain.StatusPendingInput: {
		to: domain.StatusPendingFollowUp,
		when: func(s Snapshot) bool {
			return domain.TouchesActions(s.Access.Ops)
		},
	},
	domain.StatusPendingFollowUp: {
		to:   domain.StatusRunningFollowUp,
		when: hasRunningFollowUp,
	},
}

// NextStatus returns the status the project should move to, or false when
// no automatic rule applies.
func NextStatus(s Snapshot) (domain.Status, bool) {
	e, ok := automaticEdges[s.Project.Status]
	if !ok || !e.when(s) {
		return "", false
	}
	return e.to, true
}

// NeedsRegistrationDays reports whether NextStatus would consult Days for p.
func NeedsRegistrationDays(p domain.Project) bool {
	return p.Status == domain.StatusRunning && p.Duration.Type == domain.DurationRegistrations
}

func readyToStart(s Snapshot) bool {
	switch s.Project.Duration.Type {
	case domain.DurationRegistrations:
		return s.Access.NewRegistration
	case domain.DurationCalendar:
		return HasStarted(s.Project.Duration, s.Now)
	}
	return false
}

func durationElapsed(s Snapshot) bool {
	switch s.Project.Duration.Type {
	case domain.DurationCalendar:
		return HasCalendarElapsed(s.Project.Duration, s.Now)
	case domain.DurationRegistrations:
		return HasRegistrationCountElapsed(s.Days, s.Project.Duration, s.Access.TriggerDate(s.Now))
	}
	return false
}

func hasRunningFollowUp(s Snapshot) bool {
	for _, f := range s.Project.FollowUpProjects {
		if f.Status == domain.StatusRunning {
			return true
		}
	}
	return false
}
