package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wastewatch/foodwaste-backend/internal/projects/domain"
	"github.com/wastewatch/foodwaste-backend/internal/projects/events"
	"github.com/wastewatch/foodwaste-backend/internal/projects/lifecycle"
)

// LifecycleService runs every project read and write through the lifecycle
// rules and persists whatever status changes they derive. Status is correct
// as of the last access; nothing here runs in the background.
type LifecycleService struct {
	store         domain.ProjectStore
	registrations domain.RegistrationDays
	clock         lifecycle.Clock
	events        events.Publisher
}

// NewLifecycleService creates a new LifecycleService. A nil clock reads the
// wall clock, a nil publisher drops events and a nil registration source
// reports no registrations.
func NewLifecycleService(store domain.ProjectStore, registrations domain.RegistrationDays, clock lifecycle.Clock, publisher events.Publisher) *LifecycleService {
	if registrations == nil {
		registrations = noRegistrations{}
	}
	if clock == nil {
		clock = lifecycle.SystemClock{}
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &LifecycleService{
		store:         store,
		registrations: registrations,
		clock:         clock,
		events:        publisher,
	}
}

// FollowUpView is a parent with its active follow-up and the earliest date
// a next follow-up may start.
type FollowUpView struct {
	Parent    domain.Project  `json:"parent"`
	Active    *domain.Project `json:"active_follow_up"`
	NextStart *time.Time      `json:"next_start"`
}

// Get reads one project.
func (s *LifecycleService) Get(ctx context.Context, id string, access lifecycle.Access) (*domain.Project, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, storeErr("get project "+id, err)
	}
	out, err := s.OnRead(ctx, []domain.Project{*p}, access)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// Find reads every project matching q.
func (s *LifecycleService) Find(ctx context.Context, q domain.Query, access lifecycle.Access) ([]domain.Project, error) {
	items, err := s.store.Find(ctx, q)
	if err != nil {
		return nil, storeErr("find projects", err)
	}
	return s.OnRead(ctx, items, access)
}

// Create stores a new project.
func (s *LifecycleService) Create(ctx context.Context, p domain.Project, access lifecycle.Access) (*domain.Project, error) {
	return s.OnCreate(ctx, p, access)
}

// Patch applies JSON Patch operations to a project.
func (s *LifecycleService) Patch(ctx context.Context, id string, ops []domain.PatchOp, access lifecycle.Access) (*domain.Project, error) {
	return s.OnPatch(ctx, id, ops, access)
}

// NotifyRegistration reads a project on behalf of a registration recorded on
// date, which is what starts projects bounded by registrations. A zero date
// means today. Registration sources that keep dates themselves, like the
// in-memory one, get the date recorded first.
func (s *LifecycleService) NotifyRegistration(ctx context.Context, id string, date time.Time, access lifecycle.Access) (*domain.Project, error) {
	if date.IsZero() {
		date = s.clock.Now()
	}
	if rec, ok := s.registrations.(registrationRecorder); ok {
		rec.Record(id, lifecycle.DateKey(date))
	}
	access.NewRegistration = true
	access.RegistrationDate = date
	return s.Get(ctx, id, access)
}

// FollowUps returns the active follow-up of a parent project.
func (s *LifecycleService) FollowUps(ctx context.Context, id string, access lifecycle.Access) (*FollowUpView, error) {
	parent, err := s.Get(ctx, id, access)
	if err != nil {
		return nil, err
	}
	view := &FollowUpView{Parent: *parent}
	if active, ok := lifecycle.ActiveFollowUp(*parent); ok {
		a := active.Clone()
		view.Active = &a
	}
	if next, ok := lifecycle.NextFollowUpStart(*parent); ok {
		view.NextStart = &next
	}
	return view, nil
}

// OnRead applies the automatic transitions to every project and returns the
// results in input order.
func (s *LifecycleService) OnRead(ctx context.Context, projects []domain.Project, access lifecycle.Access) ([]domain.Project, error) {
	now := s.clock.Now()
	out := make([]domain.Project, len(projects))
	for i, p := range projects {
		updated, err := s.evaluate(ctx, p, now, access)
		if err != nil {
			return nil, err
		}
		out[i] = updated
	}
	return out, nil
}

// OnCreate gates follow-up creation on the parent status and resumes a held
// parent once the follow-up exists.
func (s *LifecycleService) OnCreate(ctx context.Context, p domain.Project, access lifecycle.Access) (*domain.Project, error) {
	logger := NewLogger(access)

	var parent *domain.Project
	if p.HasParent() {
		var err error
		parent, err = s.store.Get(ctx, *p.ParentProjectID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("parent %s: %w", *p.ParentProjectID, domain.ErrNotFound)
			}
			return nil, storeErr("get parent "+*p.ParentProjectID, err)
		}
		if err := lifecycle.CanCreateFollowUp(*parent); err != nil {
			logger.LogWarnf("create_project", "rejected follow-up: %v", err)
			return nil, err
		}
	}

	created, err := s.store.Create(ctx, p)
	if err != nil {
		return nil, storeErr("create project", err)
	}
	logger.LogInfof("create_project", "project_id=%s status=%s", created.ID, created.Status)

	if parent != nil {
		if to, ok := lifecycle.ParentStatusOnCreate(parent.Status); ok {
			visited := map[string]bool{created.ID: true, parent.ID: true}
			updated, err := s.writeStatus(ctx, *parent, to, events.CauseFollowUp, access, visited)
			if err != nil {
				return nil, &domain.CascadeError{Step: "resume parent", ProjectID: parent.ID, Err: err}
			}
			created.ParentProject = &updated
		}
	}

	out, err := s.evaluate(ctx, *created, s.clock.Now(), access)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// OnPatch applies ops, moves a project waiting for input on once its actions
// change, and cascades status changes of follow-ups to their parent.
func (s *LifecycleService) OnPatch(ctx context.Context, id string, ops []domain.PatchOp, access lifecycle.Access) (*domain.Project, error) {
	logger := NewLogger(access)

	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, storeErr("get project "+id, err)
	}

	ops = append([]domain.PatchOp(nil), ops...)
	cause := events.CauseRequested
	if _, explicit := lifecycle.StatusFromOps(ops); !explicit && current.Status == domain.StatusPendingInput {
		snap := lifecycle.Snapshot{Project: *current, Now: s.clock.Now(), Access: lifecycle.Access{Ops: ops}}
		if to, ok := lifecycle.NextStatus(snap); ok {
			ops = append(ops, domain.StatusOp(domain.OpReplace, to))
			cause = events.CauseDerived
		}
	}
	// The actions edge has been decided above, against the requested ops.
	access.Ops = nil

	updated, err := s.store.Patch(ctx, id, ops)
	if err != nil {
		return nil, storeErr("patch project "+id, err)
	}
	if updated.Status != current.Status {
		s.publish(ctx, logger, *updated, current.Status, cause, access)
	}

	if newStatus, ok := lifecycle.StatusFromOps(ops); ok && updated.HasParent() {
		parent, err := s.propagate(ctx, *updated, newStatus, access, map[string]bool{id: true}, true)
		if err != nil {
			return nil, err
		}
		if parent != nil {
			updated.ParentProject = parent
		}
	}

	out, err := s.evaluate(ctx, *updated, s.clock.Now(), access)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// evaluate applies at most one automatic transition to p.
func (s *LifecycleService) evaluate(ctx context.Context, p domain.Project, now time.Time, access lifecycle.Access) (domain.Project, error) {
	snap := lifecycle.Snapshot{Project: p, Now: now, Access: access}
	if lifecycle.NeedsRegistrationDays(p) {
		days, err := s.registrations.RegistrationDays(ctx, p)
		if err != nil {
			return p, storeErr("registration days of "+p.ID, err)
		}
		snap.Days = lifecycle.NewDaySet(days...)
	}

	to, ok := lifecycle.NextStatus(snap)
	if !ok {
		return p, nil
	}

	updated, err := s.writeStatus(ctx, p, to, events.CauseDerived, access, map[string]bool{p.ID: true})
	if err != nil {
		return p, err
	}
	if updated.ParentProject == nil {
		updated.ParentProject = p.ParentProject
	}
	return updated, nil
}

// writeStatus moves p from its current status to `to`. The write only lands
// if the stored status still matches, so two accesses racing on the same
// transition produce one change and one event.
func (s *LifecycleService) writeStatus(ctx context.Context, p domain.Project, to domain.Status, cause string, access lifecycle.Access, visited map[string]bool) (domain.Project, error) {
	logger := NewLogger(access)

	ops := []domain.PatchOp{
		domain.StatusOp(domain.OpTest, p.Status),
		domain.StatusOp(domain.OpReplace, to),
	}
	updated, err := s.store.Patch(ctx, p.ID, ops)
	if errors.Is(err, domain.ErrPatchConflict) {
		logger.LogInfof("write_status", "project_id=%s lost race moving %s -> %s, re-reading", p.ID, p.Status, to)
		current, err := s.store.Get(ctx, p.ID)
		if err != nil {
			return p, storeErr("re-read project "+p.ID, err)
		}
		return *current, nil
	}
	if err != nil {
		return p, storeErr("write status of "+p.ID, err)
	}

	logger.LogInfof("write_status", "project_id=%s status %s -> %s cause=%s", p.ID, p.Status, to, cause)
	s.publish(ctx, logger, *updated, p.Status, cause, access)

	if updated.HasParent() {
		parent, err := s.propagate(ctx, *updated, to, access, visited, false)
		if err != nil {
			return *updated, err
		}
		if parent != nil {
			updated.ParentProject = parent
		}
	}
	return *updated, nil
}

// propagate brings the parent of child in line with the child's new status.
// It returns the updated parent, or nil when the parent already matched.
// requested is set when the caller patched the child's status; only then may
// a parent held in ON_HOLD or FINISHED be moved.
func (s *LifecycleService) propagate(ctx context.Context, child domain.Project, childStatus domain.Status, access lifecycle.Access, visited map[string]bool, requested bool) (*domain.Project, error) {
	parentID := *child.ParentProjectID
	if visited[parentID] {
		return nil, nil
	}
	visited[parentID] = true

	parent, err := s.store.Get(ctx, parentID)
	if err != nil {
		return nil, &domain.CascadeError{Step: "load parent", ProjectID: parentID, Err: err}
	}

	want := lifecycle.ParentStatusForChild(childStatus)
	if parent.Status == want {
		return nil, nil
	}
	if !requested && parent.Status.IsOperatorControlled() {
		NewLogger(access).LogInfof("cascade", "project_id=%s held in %s, not moving to %s", parentID, parent.Status, want)
		return nil, nil
	}

	updated, err := s.writeStatus(ctx, *parent, want, events.CauseCascade, access, visited)
	if err != nil {
		var cascadeErr *domain.CascadeError
		if errors.As(err, &cascadeErr) {
			return nil, err
		}
		NewLogger(access).LogError("cascade", err)
		return nil, &domain.CascadeError{Step: "update parent status", ProjectID: parentID, Err: err}
	}
	return &updated, nil
}

func (s *LifecycleService) publish(ctx context.Context, logger *Logger, p domain.Project, from domain.Status, cause string, access lifecycle.Access) {
	change := events.StatusChange{
		ProjectID:       p.ID,
		ParentProjectID: p.ParentProjectID,
		From:            from,
		To:              p.Status,
		Cause:           cause,
		RequestID:       access.RequestID,
		At:              s.clock.Now(),
	}
	if err := s.events.PublishStatusChange(ctx, change); err != nil {
		logger.LogWarnf("publish_status", "project_id=%s error=%v", p.ID, err)
	}
}

// storeErr marks gateway failures as persistence errors and lets domain
// errors through unchanged.
func storeErr(op string, err error) error {
	for _, known := range []error{
		domain.ErrNotFound,
		domain.ErrInvalidPatch,
		domain.ErrInvalidStatus,
		domain.ErrInvalidDuration,
		domain.ErrPatchConflict,
		domain.ErrPersistence,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrPersistence, err)
}

// registrationRecorder is implemented by registration sources that store
// dates in process.
type registrationRecorder interface {
	Record(projectID string, dates ...string)
}

type noRegistrations struct{}

func (noRegistrations) RegistrationDays(context.Context, domain.Project) ([]string, error) {
	return nil, nil
}
