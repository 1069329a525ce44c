package domain

import "context"

// ProjectStore is the persistence gateway the lifecycle engine reads and
// patches projects through. Get and Find fill FollowUpProjects.
type ProjectStore interface {
	Get(ctx context.Context, id string) (*Project, error)
	Find(ctx context.Context, q Query) ([]Project, error)
	Patch(ctx context.Context, id string, ops []PatchOp) (*Project, error)
	Create(ctx context.Context, p Project) (*Project, error)
}

// RegistrationDays looks up the calendar dates (UTC, "2006-01-02") on which
// registrations were recorded for a project since its duration start.
type RegistrationDays interface {
	RegistrationDays(ctx context.Context, p Project) ([]string, error)
}
