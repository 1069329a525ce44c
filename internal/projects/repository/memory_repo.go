package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wastewatch/foodwaste-backend/internal/projects/domain"
)

// MemoryProjectStore keeps projects in process memory. Used for local runs
// without a database and in tests.
type MemoryProjectStore struct {
	mu    sync.RWMutex
	items map[string]domain.Project
	order []string
	now   func() time.Time
}

func NewMemoryProjectStore() *MemoryProjectStore {
	return &MemoryProjectStore{
		items: make(map[string]domain.Project),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryProjectStore) Get(ctx context.Context, id string) (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := s.withFollowUps(p)
	return &out, nil
}

func (s *MemoryProjectStore) Find(ctx context.Context, q domain.Query) ([]domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order := s.order
	if q.AfterID != "" {
		order = nil
		for i, id := range s.order {
			if id == q.AfterID {
				order = s.order[i+1:]
				break
			}
		}
	}

	out := make([]domain.Project, 0, 16)
	skipped := 0
	for _, id := range order {
		p := s.items[id]
		if !matches(p, q) {
			continue
		}
		if skipped < q.Offset {
			skipped++
			continue
		}
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
		out = append(out, s.withFollowUps(p))
	}
	return out, nil
}

func (s *MemoryProjectStore) Patch(ctx context.Context, id string, ops []domain.PatchOp) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	patched, err := domain.ApplyPatch(p, ops)
	if err != nil {
		return nil, err
	}
	patched.UpdatedAt = s.now()
	s.items[id] = patched

	out := s.withFollowUps(patched)
	return &out, nil
}

func (s *MemoryProjectStore) Create(ctx context.Context, p domain.Project) (*domain.Project, error) {
	if err := p.Duration.Validate(); err != nil {
		return nil, err
	}
	if p.Status == "" {
		p.Status = domain.StatusPendingStart
	}
	if !p.Status.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, p.Status)
	}
	if !p.HasParent() {
		p.ParentProjectID = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if p.HasParent() {
		if _, ok := s.items[*p.ParentProjectID]; !ok {
			return nil, fmt.Errorf("parent %s: %w", *p.ParentProjectID, domain.ErrNotFound)
		}
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if _, exists := s.items[p.ID]; exists {
		return nil, fmt.Errorf("project %s already exists", p.ID)
	}

	now := s.now()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.FollowUpProjects = nil
	p.ParentProject = nil

	stored := p.Clone()
	s.items[p.ID] = stored
	s.order = append(s.order, p.ID)

	out := s.withFollowUps(stored)
	return &out, nil
}

// withFollowUps returns a copy of p with its children attached in creation order.
func (s *MemoryProjectStore) withFollowUps(p domain.Project) domain.Project {
	out := p.Clone()
	out.FollowUpProjects = nil
	for _, id := range s.order {
		c := s.items[id]
		if c.HasParent() && *c.ParentProjectID == p.ID {
			child := c.Clone()
			child.FollowUpProjects = nil
			out.FollowUpProjects = append(out.FollowUpProjects, child)
		}
	}
	return out
}

func matches(p domain.Project, q domain.Query) bool {
	if len(q.IDs) > 0 && !containsString(q.IDs, p.ID) {
		return false
	}
	if q.RootsOnly && p.HasParent() {
		return false
	}
	if q.ParentProjectID != nil {
		if !p.HasParent() || *p.ParentProjectID != *q.ParentProjectID {
			return false
		}
	}
	if len(q.Statuses) > 0 {
		found := false
		for _, st := range q.Statuses {
			if p.Status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
