package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/lib/pq"

	"github.com/wastewatch/foodwaste-backend/internal/projects/domain"
)

// RegistrationRepository reads registration dates for projects from the
// registrations table.
type RegistrationRepository struct {
	db *sql.DB
}

// NewRegistrationRepository creates a new registration repository
func NewRegistrationRepository(db *sql.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// RegistrationDays returns the distinct dates with registrations on the
// project's registration points, from the start of its duration onwards.
func (r *RegistrationRepository) RegistrationDays(ctx context.Context, p domain.Project) ([]string, error) {
	if len(p.RegistrationPoints) == 0 {
		return nil, nil
	}
	pointIDs := make([]string, len(p.RegistrationPoints))
	for i, rp := range p.RegistrationPoints {
		pointIDs[i] = rp.ID
	}

	const q = `
SELECT DISTINCT to_char(date, 'YYYY-MM-DD') AS day
FROM registrations
WHERE registration_point_id = ANY($1) AND date >= $2::date AND deleted_at IS NULL
ORDER BY day;
`
	rows, err := r.db.QueryContext(ctx, q, pq.Array(pointIDs), p.Duration.StartTime().Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query registration days: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0, 16)
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("failed to scan registration day: %w", err)
		}
		out = append(out, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read registration days: %w", err)
	}
	return out, nil
}

// StaticRegistrationDays serves registration dates recorded in memory,
// keyed by project id.
type StaticRegistrationDays struct {
	mu   sync.RWMutex
	days map[string][]string
}

func NewStaticRegistrationDays() *StaticRegistrationDays {
	return &StaticRegistrationDays{days: make(map[string][]string)}
}

// Record adds dates ("2006-01-02") for a project.
func (s *StaticRegistrationDays) Record(projectID string, dates ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.days[projectID] = append(s.days[projectID], dates...)
}

func (s *StaticRegistrationDays) RegistrationDays(ctx context.Context, p domain.Project) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.days[p.ID]...), nil
}
