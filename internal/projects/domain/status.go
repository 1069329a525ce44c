package domain

import "fmt"

// Status is the lifecycle state of a project.
type Status string

const (
	StatusPendingStart    Status = "PENDING_START"
	StatusRunning         Status = "RUNNING"
	StatusPendingInput    Status = "PENDING_INPUT"
	StatusPendingFollowUp Status = "PENDING_FOLLOWUP"
	StatusRunningFollowUp Status = "RUNNING_FOLLOWUP"
	StatusOnHold          Status = "ON_HOLD"
	StatusFinished        Status = "FINISHED"
)

// AllStatuses lists every lifecycle state in lifecycle order.
var AllStatuses = []Status{
	StatusPendingStart,
	StatusRunning,
	StatusPendingInput,
	StatusPendingFollowUp,
	StatusRunningFollowUp,
	StatusOnHold,
	StatusFinished,
}

func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusPendingStart, StatusRunning, StatusPendingInput, StatusPendingFollowUp,
		StatusRunningFollowUp, StatusOnHold, StatusFinished:
		return true
	default:
		return false
	}
}

// IsOperatorControlled reports whether only an external actor moves a project
// into or out of s.
func (s Status) IsOperatorControlled() bool {
	return s == StatusOnHold || s == StatusFinished
}

// IsLive reports whether a follow-up in status s is running or next due.
func (s Status) IsLive() bool {
	return s == StatusPendingStart || s == StatusRunning
}

// ParseStatus parses a string into a Status.
func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, v)
	}
	return s, nil
}
