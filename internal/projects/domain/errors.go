package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound        = errors.New("project not found")
	ErrInvalidPatch    = errors.New("invalid patch")
	ErrInvalidStatus   = errors.New("invalid project status")
	ErrInvalidDuration = errors.New("invalid project duration")
	ErrPatchConflict   = errors.New("patch test failed")
	ErrPersistence     = errors.New("persistence failure")
)

// Reason codes reported to clients next to an error message.
const (
	ReasonFollowUpNotAllowed = "follow_up_not_allowed"
	ReasonCascadeFailed      = "cascade_failed"
	ReasonPersistence        = "persistence_failure"
	ReasonNotFound           = "not_found"
	ReasonPatchConflict      = "patch_conflict"
	ReasonInvalidRequest     = "invalid_request"
)

// FollowUpRejectedError is returned when a follow-up is created under a
// parent whose status does not accept new follow-ups.
type FollowUpRejectedError struct {
	ParentID     string
	ParentStatus Status
	Allowed      []Status
}

func (e *FollowUpRejectedError) Error() string {
	allowed := make([]string, len(e.Allowed))
	for i, s := range e.Allowed {
		allowed[i] = string(s)
	}
	return fmt.Sprintf("cannot create follow-up under project %s in status %s (allowed: %s)",
		e.ParentID, e.ParentStatus, strings.Join(allowed, ", "))
}

func (e *FollowUpRejectedError) Reason() string {
	return ReasonFollowUpNotAllowed
}

// CascadeError reports a failed derived status write. The access that
// triggered it is considered failed.
type CascadeError struct {
	Step      string
	ProjectID string
	Err       error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("%s for project %s: %v", e.Step, e.ProjectID, e.Err)
}

func (e *CascadeError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

func (e *CascadeError) Reason() string {
	return ReasonCascadeFailed
}
