package lifecycle

import (
	"time"

	"github.com/wastewatch/foodwaste-backend/internal/projects/domain"
)

const day = 24 * time.Hour

const dateLayout = "2006-01-02"

// DaySet holds distinct UTC calendar dates.
type DaySet map[string]struct{}

// NewDaySet builds a set from "2006-01-02" formatted dates.
func NewDaySet(dates ...string) DaySet {
	s := make(DaySet, len(dates))
	for _, d := range dates {
		s[d] = struct{}{}
	}
	return s
}

func (s DaySet) Has(t time.Time) bool {
	_, ok := s[DateKey(t)]
	return ok
}

// DateKey formats t as the UTC calendar date it falls on.
func DateKey(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// HasCalendarElapsed reports whether now is more than zero whole days past d.End.
func HasCalendarElapsed(d domain.Duration, now time.Time) bool {
	return now.Sub(d.EndTime()) >= day
}

// HasRegistrationCountElapsed reports whether enough distinct days carry
// registrations. It stays false while a registration already exists for the
// trigger date, so a user registering today never sees the project close
// under them.
func HasRegistrationCountElapsed(days DaySet, d domain.Duration, trigger time.Time) bool {
	if len(days) == 0 || len(days) < d.Days {
		return false
	}
	return !days.Has(trigger)
}

// HasStarted reports whether a calendar duration has reached its start.
// Registration-bounded durations start on their first registration instead.
func HasStarted(d domain.Duration, now time.Time) bool {
	if d.Type != domain.DurationCalendar {
		return false
	}
	return !d.StartTime().After(now)
}
