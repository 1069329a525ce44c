package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wastewatch/foodwaste-backend/internal/projects/domain"
	"github.com/wastewatch/foodwaste-backend/internal/projects/events"
	"github.com/wastewatch/foodwaste-backend/internal/projects/lifecycle"
	"github.com/wastewatch/foodwaste-backend/internal/projects/repository"
	"github.com/wastewatch/foodwaste-backend/internal/projects/service"
)

var t0 = time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recordingPublisher struct {
	mu      sync.Mutex
	changes []events.StatusChange
}

func (r *recordingPublisher) PublishStatusChange(_ context.Context, c events.StatusChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
	return nil
}

func (r *recordingPublisher) all() []events.StatusChange {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.StatusChange(nil), r.changes...)
}

// flakyStore counts patches per project and can fail or intercept them.
type flakyStore struct {
	domain.ProjectStore
	mu          sync.Mutex
	patches     map[string]int
	failPatch   map[string]error
	beforePatch func(id string)
}

func newFlakyStore(inner domain.ProjectStore) *flakyStore {
	return &flakyStore{ProjectStore: inner, patches: map[string]int{}, failPatch: map[string]error{}}
}

func (f *flakyStore) Patch(ctx context.Context, id string, ops []domain.PatchOp) (*domain.Project, error) {
	f.mu.Lock()
	f.patches[id]++
	err := f.failPatch[id]
	hook := f.beforePatch
	f.mu.Unlock()

	if hook != nil {
		hook(id)
	}
	if err != nil {
		return nil, err
	}
	return f.ProjectStore.Patch(ctx, id, ops)
}

func (f *flakyStore) patchCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.patches[id]
}

func (f *flakyStore) setFailure(id string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failPatch, id)
		return
	}
	f.failPatch[id] = err
}

type fixture struct {
	svc   *service.LifecycleService
	mem   *repository.MemoryProjectStore
	store *flakyStore
	regs  *repository.StaticRegistrationDays
	pub   *recordingPublisher
	clock *testClock
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	f := &fixture{
		mem:   repository.NewMemoryProjectStore(),
		regs:  repository.NewStaticRegistrationDays(),
		pub:   &recordingPublisher{},
		clock: &testClock{now: now},
	}
	f.store = newFlakyStore(f.mem)
	f.svc = service.NewLifecycleService(f.store, f.regs, f.clock, f.pub)
	return f
}

// seed writes a project straight to the store, bypassing the lifecycle rules.
func (f *fixture) seed(t *testing.T, p domain.Project) *domain.Project {
	t.Helper()
	created, err := f.mem.Create(context.Background(), p)
	require.NoError(t, err)
	return created
}

func (f *fixture) stored(t *testing.T, id string) domain.Project {
	t.Helper()
	p, err := f.mem.Get(context.Background(), id)
	require.NoError(t, err)
	return *p
}

func calendar(start, end time.Time) domain.Duration {
	return domain.Duration{Type: domain.DurationCalendar, Start: start.Unix(), End: end.Unix()}
}

// future is a calendar duration that neither starts nor ends near t0.
var future = calendar(t0.AddDate(0, 0, 10), t0.AddDate(0, 0, 20))

var past = calendar(t0.AddDate(0, 0, -20), t0.AddDate(0, 0, -10))

func access() lifecycle.Access {
	return lifecycle.Access{RequestID: "test"}
}

func TestLifecycleService_CalendarProjectRunsAndEnds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, t0.Add(-10*time.Second))

	created, err := f.svc.Create(ctx, domain.Project{Name: "Canteen", Duration: calendar(t0, t0.Add(86400*time.Second))}, access())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingStart, created.Status)

	f.clock.Set(t0.Add(time.Second))
	got, err := f.svc.Get(ctx, created.ID, access())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRunning, got.Status)
	assert.Equal(t, domain.StatusRunning, f.stored(t, created.ID).Status)

	// A second read at the same instant changes nothing.
	got, err = f.svc.Get(ctx, created.ID, access())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRunning, got.Status)
	require.Len(t, f.pub.all(), 1)

	f.clock.Set(t0.Add(2*86400*time.Second + time.Second))
	got, err = f.svc.Get(ctx, created.ID, access())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingInput, got.Status)

	changes := f.pub.all()
	require.Len(t, changes, 2)
	assert.Equal(t, domain.StatusPendingStart, changes[0].From)
	assert.Equal(t, domain.StatusRunning, changes[0].To)
	assert.Equal(t, events.CauseDerived, changes[0].Cause)
	assert.Equal(t, "test", changes[0].RequestID)
	assert.Equal(t, domain.StatusPendingInput, changes[1].To)
}

func TestLifecycleService_OneStepPerAccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, t0)
	// Started and already past its end: two rules are due, only one applies per read.
	p := f.seed(t, domain.Project{Duration: past})

	got, err := f.svc.Get(ctx, p.ID, access())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRunning, got.Status)

	got, err = f.svc.Get(ctx, p.ID, access())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingInput, got.Status)
}

func TestLifecycleService_RegistrationsDuration(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, now)
	d := domain.Duration{Type: domain.DurationRegistrations, Start: now.AddDate(0, 0, -5).Unix(), Days: 2}
	p := f.seed(t, domain.Project{Duration: d})

	got, err := f.svc.Get(ctx, p.ID, access())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingStart, got.Status, "waits for the first registration")

	f.regs.Record(p.ID, "2024-01-08")
	got, err = f.svc.NotifyRegistration(ctx, p.ID, time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC), access())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRunning, got.Status)

	f.regs.Record(p.ID, "2024-01-09")
	got, err = f.svc.NotifyRegistration(ctx, p.ID, time.Date(2024, time.January, 9, 0, 0, 0, 0, time.UTC), access())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRunning, got.Status, "grace day keeps it running")

	got, err = f.svc.Get(ctx, p.ID, access())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingInput, got.Status)
}

func TestLifecycleService_CreateFollowUpGate(t *testing.T) {
	allowed := map[domain.Status]bool{
		domain.StatusPendingFollowUp: true,
		domain.StatusRunningFollowUp: true,
		domain.StatusOnHold:          true,
		domain.StatusFinished:        true,
	}
	for _, status := range domain.AllStatuses {
		t.Run(string(status), func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, t0)
			parent := f.seed(t, domain.Project{Status: status, Duration: future})

			created, err := f.svc.Create(ctx, domain.Project{ParentProjectID: &parent.ID, Duration: future}, access())
			children, findErr := f.mem.Find(ctx, domain.Query{ParentProjectID: &parent.ID})
			require.NoError(t, findErr)

			if !allowed[status] {
				var rejected *domain.FollowUpRejectedError
				require.True(t, errors.As(err, &rejected), "got %v", err)
				assert.Equal(t, parent.ID, rejected.ParentID)
				assert.Equal(t, status, rejected.ParentStatus)
				assert.Empty(t, children, "nothing may be stored for a rejected follow-up")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, domain.StatusPendingStart, created.Status)
			require.Len(t, children, 1)

			wantParent := status
			if status == domain.StatusOnHold {
				wantParent = domain.StatusPendingFollowUp
				require.NotNil(t, created.ParentProject)
				assert.Equal(t, domain.StatusPendingFollowUp, created.ParentProject.Status)
			}
			assert.Equal(t, wantParent, f.stored(t, parent.ID).Status)
		})
	}
}

func TestLifecycleService_CreateUnknownParent(t *testing.T) {
	f := newFixture(t, t0)
	missing := "missing"
	_, err := f.svc.Create(context.Background(), domain.Project{ParentProjectID: &missing, Duration: future}, access())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLifecycleService_FollowUpStatusCascadesToParent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, t0)
	parent := f.seed(t, domain.Project{Status: domain.StatusPendingFollowUp, Duration: past})
	child := f.seed(t, domain.Project{ParentProjectID: &parent.ID, Duration: future})

	got, err := f.svc.Patch(ctx, child.ID, []domain.PatchOp{domain.StatusOp(domain.OpReplace, domain.StatusRunning)}, access())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRunning, got.Status)
	require.NotNil(t, got.ParentProject)
	assert.Equal(t, domain.StatusRunningFollowUp, got.ParentProject.Status)
	assert.Equal(t, domain.StatusRunningFollowUp, f.stored(t, parent.ID).Status)

	changes := f.pub.all()
	require.Len(t, changes, 2)
	assert.Equal(t, events.CauseRequested, changes[0].Cause)
	assert.Equal(t, parent.ID, changes[1].ProjectID)
	assert.Equal(t, events.CauseCascade, changes[1].Cause)
}

func TestLifecycleService_ParentMapping(t *testing.T) {
	want := map[domain.Status]domain.Status{
		domain.StatusPendingStart:    domain.StatusPendingFollowUp,
		domain.StatusRunning:         domain.StatusRunningFollowUp,
		domain.StatusPendingInput:    domain.StatusRunningFollowUp,
		domain.StatusPendingFollowUp: domain.StatusRunningFollowUp,
		domain.StatusRunningFollowUp: domain.StatusRunningFollowUp,
		domain.StatusOnHold:          domain.StatusOnHold,
		domain.StatusFinished:        domain.StatusOnHold,
	}
	for childStatus, parentStatus := range want {
		t.Run(string(childStatus), func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, t0)
			parent := f.seed(t, domain.Project{Status: domain.StatusPendingFollowUp, Duration: past})
			child := f.seed(t, domain.Project{ParentProjectID: &parent.ID, Status: domain.StatusOnHold, Duration: future})

			_, err := f.svc.Patch(ctx, child.ID, []domain.PatchOp{domain.StatusOp(domain.OpReplace, childStatus)}, access())
			require.NoError(t, err)
			assert.Equal(t, parentStatus, f.stored(t, parent.ID).Status)

			if parentStatus == domain.StatusPendingFollowUp {
				assert.Zero(t, f.store.patchCount(parent.ID), "a parent that already matches is not written")
			} else {
				assert.Equal(t, 1, f.store.patchCount(parent.ID))
			}
		})
	}
}

func TestLifecycleService_ChildStartCascadesOnRead(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, t0)
	parent := f.seed(t, domain.Project{Status: domain.StatusPendingFollowUp, Duration: past})
	child, err := f.svc.Create(ctx, domain.Project{ParentProjectID: &parent.ID, Duration: calendar(t0.AddDate(0, 0, 1), t0.AddDate(0, 0, 5))}, access())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingStart, child.Status)

	f.clock.Set(t0.AddDate(0, 0, 1).Add(time.Second))
	got, err := f.svc.Get(ctx, child.ID, access())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRunning, got.Status)
	require.NotNil(t, got.ParentProject)
	assert.Equal(t, domain.StatusRunningFollowUp, got.ParentProject.Status)
}

func TestLifecycleService_ParentPicksUpRunningFollowUp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, t0)
	parent := f.seed(t, domain.Project{Status: domain.StatusPendingFollowUp, Duration: past})
	f.seed(t, domain.Project{ParentProjectID: &parent.ID, Status: domain.StatusRunning, Duration: future})

	got, err := f.svc.Get(ctx, parent.ID, access())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRunningFollowUp, got.Status)
}

func TestLifecycleService_ActionsMovePendingInputOn(t *testing.T) {
	ctx := context.Background()
	addAction := domain.PatchOp{Op: domain.OpAdd, Path: "/actions/-", Value: json.RawMessage(`{"name":"Smaller portions"}`)}

	t.Run("actions change", func(t *testing.T) {
		f := newFixture(t, t0)
		p := f.seed(t, domain.Project{Status: domain.StatusPendingInput, Duration: past})

		got, err := f.svc.Patch(ctx, p.ID, []domain.PatchOp{addAction}, access())
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPendingFollowUp, got.Status)
		require.Len(t, got.Actions, 1)
		assert.Equal(t, 1, f.store.patchCount(p.ID), "actions and status land in one write")
	})

	t.Run("unrelated field", func(t *testing.T) {
		f := newFixture(t, t0)
		p := f.seed(t, domain.Project{Status: domain.StatusPendingInput, Duration: past})

		got, err := f.svc.Patch(ctx, p.ID, []domain.PatchOp{{Op: domain.OpReplace, Path: domain.PathName, Value: json.RawMessage(`"renamed"`)}}, access())
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPendingInput, got.Status)
		assert.Equal(t, "renamed", got.Name)
	})

	t.Run("explicit status wins", func(t *testing.T) {
		f := newFixture(t, t0)
		p := f.seed(t, domain.Project{Status: domain.StatusPendingInput, Duration: past})

		got, err := f.svc.Patch(ctx, p.ID, []domain.PatchOp{addAction, domain.StatusOp(domain.OpReplace, domain.StatusOnHold)}, access())
		require.NoError(t, err)
		assert.Equal(t, domain.StatusOnHold, got.Status)
	})
}

func TestLifecycleService_InvalidPatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, t0)
	p := f.seed(t, domain.Project{Duration: future})

	_, err := f.svc.Patch(ctx, p.ID, []domain.PatchOp{domain.StatusOp(domain.OpReplace, "ARCHIVED")}, access())
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = f.svc.Patch(ctx, "missing", []domain.PatchOp{domain.StatusOp(domain.OpReplace, domain.StatusRunning)}, access())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLifecycleService_FindKeepsOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, t0)
	a := f.seed(t, domain.Project{Name: "a", Status: domain.StatusOnHold, Duration: past})
	b := f.seed(t, domain.Project{Name: "b", Duration: past})
	c := f.seed(t, domain.Project{Name: "c", Duration: future})

	got, err := f.svc.Find(ctx, domain.Query{}, access())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, domain.StatusOnHold, got[0].Status)
	assert.Equal(t, domain.StatusRunning, got[1].Status)
	assert.Equal(t, domain.StatusPendingStart, got[2].Status)
}

func TestLifecycleService_PersistenceFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, t0)
	p := f.seed(t, domain.Project{Duration: past})
	f.store.setFailure(p.ID, errors.New("disk full"))

	_, err := f.svc.Get(ctx, p.ID, access())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Empty(t, f.pub.all())
}

func TestLifecycleService_CascadeFailureHealsOnRetry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, t0)
	parent := f.seed(t, domain.Project{Status: domain.StatusPendingFollowUp, Duration: past})
	child := f.seed(t, domain.Project{ParentProjectID: &parent.ID, Duration: future})
	ops := []domain.PatchOp{domain.StatusOp(domain.OpReplace, domain.StatusRunning)}

	f.store.setFailure(parent.ID, errors.New("connection reset"))
	_, err := f.svc.Patch(ctx, child.ID, ops, access())

	var cascadeErr *domain.CascadeError
	require.True(t, errors.As(err, &cascadeErr), "got %v", err)
	assert.Equal(t, parent.ID, cascadeErr.ProjectID)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, domain.StatusRunning, f.stored(t, child.ID).Status)
	assert.Equal(t, domain.StatusPendingFollowUp, f.stored(t, parent.ID).Status)

	f.store.setFailure(parent.ID, nil)
	got, err := f.svc.Patch(ctx, child.ID, ops, access())
	require.NoError(t, err)
	require.NotNil(t, got.ParentProject)
	assert.Equal(t, domain.StatusRunningFollowUp, got.ParentProject.Status)
}

func TestLifecycleService_ResumeParentFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, t0)
	parent := f.seed(t, domain.Project{Status: domain.StatusOnHold, Duration: past})
	f.store.setFailure(parent.ID, errors.New("timeout"))

	_, err := f.svc.Create(ctx, domain.Project{ParentProjectID: &parent.ID, Duration: future}, access())
	var cascadeErr *domain.CascadeError
	require.True(t, errors.As(err, &cascadeErr), "got %v", err)
	assert.Equal(t, domain.StatusOnHold, f.stored(t, parent.ID).Status)
}

func TestLifecycleService_LostRacePublishesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, t0)
	p := f.seed(t, domain.Project{Duration: future})
	f.clock.Set(future.StartTime().Add(time.Second))

	// Another instance moves the project between our read and our write.
	var once sync.Once
	f.store.beforePatch = func(id string) {
		once.Do(func() {
			_, err := f.mem.Patch(ctx, id, []domain.PatchOp{domain.StatusOp(domain.OpReplace, domain.StatusRunning)})
			require.NoError(t, err)
		})
	}

	got, err := f.svc.Get(ctx, p.ID, access())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRunning, got.Status)
	assert.Empty(t, f.pub.all(), "the access that lost the race must not announce the change")
}

func TestLifecycleService_FollowUps(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, t0)
	parent := f.seed(t, domain.Project{Status: domain.StatusPendingFollowUp, Duration: past})
	f.seed(t, domain.Project{ParentProjectID: &parent.ID, Status: domain.StatusFinished, Duration: calendar(t0.AddDate(0, 0, -9), t0.AddDate(0, 0, -5))})
	pending := f.seed(t, domain.Project{ParentProjectID: &parent.ID, Duration: future})

	view, err := f.svc.FollowUps(ctx, parent.ID, access())
	require.NoError(t, err)
	require.NotNil(t, view.Active)
	assert.Equal(t, pending.ID, view.Active.ID)
	require.NotNil(t, view.NextStart)
	assert.Equal(t, time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC), *view.NextStart)
}

func TestLifecycleService_HeldParentIgnoresFollowUpReads(t *testing.T) {
	started := calendar(t0.AddDate(0, 0, -1), t0.AddDate(0, 0, 5))
	tests := []struct {
		name        string
		parent      domain.Status
		child       domain.Status
		duration    domain.Duration
		childResult domain.Status
	}{
		{"on hold, child starts", domain.StatusOnHold, domain.StatusPendingStart, started, domain.StatusRunning},
		{"on hold, child ends", domain.StatusOnHold, domain.StatusRunning, past, domain.StatusPendingInput},
		{"finished, child starts", domain.StatusFinished, domain.StatusPendingStart, started, domain.StatusRunning},
		{"finished, child ends", domain.StatusFinished, domain.StatusRunning, past, domain.StatusPendingInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, t0)
			parent := f.seed(t, domain.Project{Status: tt.parent, Duration: past})
			child := f.seed(t, domain.Project{ParentProjectID: &parent.ID, Status: tt.child, Duration: tt.duration})

			got, err := f.svc.Get(ctx, child.ID, access())
			require.NoError(t, err)
			assert.Equal(t, tt.childResult, got.Status)
			assert.Nil(t, got.ParentProject)
			assert.Equal(t, tt.parent, f.stored(t, parent.ID).Status)
			assert.Zero(t, f.store.patchCount(parent.ID))
			assert.Len(t, f.pub.all(), 1, "only the child change is announced")
		})
	}
}

func TestLifecycleService_HeldParentMovesOnFollowUpPatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, t0)
	parent := f.seed(t, domain.Project{Status: domain.StatusFinished, Duration: past})
	child := f.seed(t, domain.Project{ParentProjectID: &parent.ID, Duration: future})

	got, err := f.svc.Patch(ctx, child.ID, []domain.PatchOp{domain.StatusOp(domain.OpReplace, domain.StatusRunning)}, access())
	require.NoError(t, err)
	require.NotNil(t, got.ParentProject)
	assert.Equal(t, domain.StatusRunningFollowUp, f.stored(t, parent.ID).Status)
}

func TestLifecycleService_NotifyRegistrationDefaultsToClock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, t0)
	d := domain.Duration{Type: domain.DurationRegistrations, Start: t0.AddDate(0, 0, -3).Unix(), Days: 1}
	p := f.seed(t, domain.Project{Status: domain.StatusRunning, Duration: d})
	f.regs.Record(p.ID, "2024-01-09")

	// Registering today keeps the project open under the grace rule.
	got, err := f.svc.NotifyRegistration(ctx, p.ID, time.Time{}, access())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRunning, got.Status)

	days, err := f.regs.RegistrationDays(ctx, *p)
	require.NoError(t, err)
	assert.Contains(t, days, "2024-01-10")
}

func TestLifecycleService_NotifyRegistrationRecordsDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, t0)
	d := domain.Duration{Type: domain.DurationRegistrations, Start: t0.AddDate(0, 0, -3).Unix(), Days: 1}
	p := f.seed(t, domain.Project{Duration: d})

	got, err := f.svc.NotifyRegistration(ctx, p.ID, time.Date(2024, time.January, 9, 0, 0, 0, 0, time.UTC), access())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRunning, got.Status)

	// The next day the single registered day is enough to end the project.
	got, err = f.svc.Get(ctx, p.ID, access())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingInput, got.Status)
}
