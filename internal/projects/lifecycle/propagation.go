package lifecycle

import (
	"encoding/json"

	"github.com/wastewatch/foodwaste-backend/internal/projects/domain"
)

// FollowUpParentStatuses are the parent statuses that accept a new follow-up.
var FollowUpParentStatuses = []domain.Status{
	domain.StatusPendingFollowUp,
	domain.StatusRunningFollowUp,
	domain.StatusOnHold,
	domain.StatusFinished,
}

// CanCreateFollowUp rejects follow-up creation under a parent that is not
// waiting for, running, holding or done with follow-ups.
func CanCreateFollowUp(parent domain.Project) error {
	for _, s := range FollowUpParentStatuses {
		if parent.Status == s {
			return nil
		}
	}
	return &domain.FollowUpRejectedError{
		ParentID:     parent.ID,
		ParentStatus: parent.Status,
		Allowed:      append([]domain.Status(nil), FollowUpParentStatuses...),
	}
}

// ParentStatusOnCreate returns the parent status after a follow-up was added.
// Adding a follow-up resumes a held parent.
func ParentStatusOnCreate(parentStatus domain.Status) (domain.Status, bool) {
	if parentStatus == domain.StatusOnHold {
		return domain.StatusPendingFollowUp, true
	}
	return "", false
}

// ParentStatusForChild maps the new status of a follow-up to the status its
// parent must have.
func ParentStatusForChild(child domain.Status) domain.Status {
	switch child {
	case domain.StatusPendingStart:
		return domain.StatusPendingFollowUp
	case domain.StatusOnHold, domain.StatusFinished:
		return domain.StatusOnHold
	default:
		return domain.StatusRunningFollowUp
	}
}

// StatusFromOps returns the status written by the last add or replace on
// /status. Earlier status ops in the same request are overwritten by it.
func StatusFromOps(ops []domain.PatchOp) (domain.Status, bool) {
	for i := len(ops) - 1; i >= 0; i-- {
		op := ops[i]
		if op.Path != domain.PathStatus || (op.Op != domain.OpAdd && op.Op != domain.OpReplace) {
			continue
		}
		var s domain.Status
		if err := json.Unmarshal(op.Value, &s); err != nil || !s.IsValid() {
			return "", false
		}
		return s, true
	}
	return "", false
}
