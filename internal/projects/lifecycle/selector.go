package lifecycle

import (
	"time"

	"github.com/wastewatch/foodwaste-backend/internal/projects/domain"
)

// ActiveFollowUp picks the follow-up that is currently running, or else the
// pending one due first. Only live follow-ups qualify.
func ActiveFollowUp(parent domain.Project) (*domain.Project, bool) {
	var pending *domain.Project
	for i := range parent.FollowUpProjects {
		f := &parent.FollowUpProjects[i]
		if !f.Status.IsLive() {
			continue
		}
		if f.Status == domain.StatusRunning {
			return f, true
		}
		if pending == nil || f.Duration.Start < pending.Duration.Start {
			pending = f
		}
	}
	return pending, pending != nil
}

// NextFollowUpStart returns the earliest start date for a new follow-up: the
// day after the latest calendar follow-up ends, falling back to the day after
// the parent itself ends. Used to pre-fill date pickers, not enforced.
func NextFollowUpStart(parent domain.Project) (time.Time, bool) {
	var latest int64
	found := false
	for _, f := range parent.FollowUpProjects {
		if f.Duration.Type != domain.DurationCalendar {
			continue
		}
		if !found || f.Duration.End > latest {
			latest = f.Duration.End
			found = true
		}
	}
	if !found && parent.Duration.Type == domain.DurationCalendar {
		latest = parent.Duration.End
		found = true
	}
	if !found {
		return time.Time{}, false
	}
	end := time.Unix(latest, 0).UTC()
	return time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1), true
}
