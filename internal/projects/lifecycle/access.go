package lifecycle

import (
	"time"

	"github.com/wastewatch/foodwaste-backend/internal/projects/domain"
)

// Access describes why projects are being read or written. It is passed
// explicitly through every lifecycle call.
type Access struct {
	RequestID string

	// NewRegistration is set when the access is caused by a registration
	// being associated with the project.
	NewRegistration  bool
	RegistrationDate time.Time

	// Ops holds the patch operations the caller intends to apply, if any.
	Ops []domain.PatchOp
}

// TriggerDate is the date the grace rule compares registrations against.
func (a Access) TriggerDate(now time.Time) time.Time {
	if !a.RegistrationDate.IsZero() {
		return a.RegistrationDate
	}
	return now
}
