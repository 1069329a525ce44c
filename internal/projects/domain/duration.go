package domain

import (
	"fmt"
	"time"
)

// DurationType selects how a project's active phase is bounded.
type DurationType string

const (
	DurationCalendar      DurationType = "CALENDAR"
	DurationRegistrations DurationType = "REGISTRATIONS"
)

// Duration bounds a project either by calendar dates or by a number of days
// with registrations. Start and End are unix seconds.
type Duration struct {
	Type  DurationType `json:"type"`
	Start int64        `json:"start"`
	End   int64        `json:"end,omitempty"`
	Days  int          `json:"days,omitempty"`
}

func (d Duration) StartTime() time.Time {
	return time.Unix(d.Start, 0).UTC()
}

func (d Duration) EndTime() time.Time {
	return time.Unix(d.End, 0).UTC()
}

// Validate checks that a duration is well formed.
func (d Duration) Validate() error {
	switch d.Type {
	case DurationCalendar:
		if d.Start > d.End {
			return fmt.Errorf("%w: calendar start %d is after end %d", ErrInvalidDuration, d.Start, d.End)
		}
	case DurationRegistrations:
		if d.Days < 1 {
			return fmt.Errorf("%w: registrations duration needs at least 1 day, got %d", ErrInvalidDuration, d.Days)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidDuration, d.Type)
	}
	return nil
}
