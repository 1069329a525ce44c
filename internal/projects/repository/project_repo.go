package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wastewatch/foodwaste-backend/internal/projects/domain"
)

// Schema creates the tables the Postgres stores read and write.
const Schema = `
create table if not exists projects (
	id                  text primary key,
	parent_project_id   text references projects(id),
	name                text not null default '',
	status              text not null,
	duration            jsonb not null,
	actions             jsonb not null default '[]'::jsonb,
	registration_points jsonb not null default '[]'::jsonb,
	created_at          timestamptz not null default now(),
	updated_at          timestamptz not null default now(),
	deleted_at          timestamptz
);
create index if not exists projects_parent_idx on projects (parent_project_id) where deleted_at is null;
create index if not exists projects_status_idx on projects (status) where deleted_at is null;

create table if not exists registrations (
	id                    bigserial primary key,
	registration_point_id text not null,
	date                  date not null,
	amount                integer not null default 0,
	created_at            timestamptz not null default now(),
	deleted_at            timestamptz
);
create index if not exists registrations_point_date_idx on registrations (registration_point_id, date) where deleted_at is null;
`

const projectColumns = `id, parent_project_id, name, status, duration, actions, registration_points, created_at, updated_at`

// PostgresProjectStore persists projects in Postgres through pgx.
type PostgresProjectStore struct {
	db *pgxpool.Pool
}

func NewPostgresProjectStore(db *pgxpool.Pool) *PostgresProjectStore {
	return &PostgresProjectStore{db: db}
}

// Migrate applies Schema. Safe to call on every start.
func (r *PostgresProjectStore) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (r *PostgresProjectStore) Get(ctx context.Context, id string) (*domain.Project, error) {
	q := `select ` + projectColumns + ` from projects where id = $1 and deleted_at is null;`

	p, err := scanProject(r.db.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	items := []domain.Project{*p}
	if err := r.attachFollowUps(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (r *PostgresProjectStore) Find(ctx context.Context, fq domain.Query) ([]domain.Project, error) {
	where := []string{"deleted_at is null"}
	args := make([]any, 0, 4)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(fq.IDs) > 0 {
		where = append(where, "id = any("+arg(fq.IDs)+")")
	}
	if fq.RootsOnly {
		where = append(where, "parent_project_id is null")
	}
	if fq.ParentProjectID != nil {
		where = append(where, "parent_project_id = "+arg(*fq.ParentProjectID))
	}
	if len(fq.Statuses) > 0 {
		statuses := make([]string, len(fq.Statuses))
		for i, s := range fq.Statuses {
			statuses[i] = string(s)
		}
		where = append(where, "status = any("+arg(statuses)+")")
	}
	if fq.AfterID != "" {
		where = append(where, "(created_at, id) > (select created_at, id from projects where id = "+arg(fq.AfterID)+")")
	}

	q := `select ` + projectColumns + ` from projects where ` + strings.Join(where, " and ") +
		` order by created_at asc, id asc`
	if fq.Limit > 0 {
		q += " limit " + arg(fq.Limit)
	}
	if fq.Offset > 0 {
		q += " offset " + arg(fq.Offset)
	}

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find projects: %w", err)
	}
	out, err := collectProjects(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to find projects: %w", err)
	}

	if err := r.attachFollowUps(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Patch applies ops to one row inside a transaction holding the row lock.
func (r *PostgresProjectStore) Patch(ctx context.Context, id string, ops []domain.PatchOp) (*domain.Project, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin patch: %w", err)
	}
	defer tx.Rollback(ctx)

	q := `select ` + projectColumns + ` from projects where id = $1 and deleted_at is null for update;`
	current, err := scanProject(tx.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock project: %w", err)
	}

	patched, err := domain.ApplyPatch(*current, ops)
	if err != nil {
		return nil, err
	}

	duration, actions, points, err := encodeJSONColumns(patched)
	if err != nil {
		return nil, err
	}

	const uq = `
update projects
set name = $2, status = $3, duration = $4, actions = $5, registration_points = $6, updated_at = now()
where id = $1
returning updated_at;
`
	if err := tx.QueryRow(ctx, uq, id, patched.Name, string(patched.Status), duration, actions, points).
		Scan(&patched.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit patch: %w", err)
	}

	items := []domain.Project{patched}
	if err := r.attachFollowUps(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (r *PostgresProjectStore) Create(ctx context.Context, p domain.Project) (*domain.Project, error) {
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

	duration, actions, points, err := encodeJSONColumns(p)
	if err != nil {
		return nil, err
	}

	generated := p.ID == ""
	for i := 0; i < 5; i++ {
		if generated {
			p.ID = uuid.New().String()
		}

		const q = `
insert into projects (id, parent_project_id, name, status, duration, actions, registration_points)
values ($1, $2, $3, $4, $5, $6, $7)
returning created_at, updated_at;
`
		err = r.db.QueryRow(ctx, q, p.ID, p.ParentProjectID, p.Name, string(p.Status), duration, actions, points).
			Scan(&p.CreatedAt, &p.UpdatedAt)
		if err == nil {
			p.FollowUpProjects = nil
			p.ParentProject = nil
			return &p, nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				// unique violation on a generated id → retry
				if generated {
					continue
				}
				return nil, fmt.Errorf("project %s already exists", p.ID)
			case "23503":
				return nil, fmt.Errorf("parent %s: %w", derefString(p.ParentProjectID), domain.ErrNotFound)
			}
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return nil, fmt.Errorf("failed to generate unique project id")
}

func (r *PostgresProjectStore) attachFollowUps(ctx context.Context, items []domain.Project) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, len(items))
	index := make(map[string]int, len(items))
	for i, p := range items {
		ids[i] = p.ID
		index[p.ID] = i
		items[i].FollowUpProjects = nil
	}

	q := `select ` + projectColumns + ` from projects
where parent_project_id = any($1) and deleted_at is null
order by created_at asc, id asc;`
	rows, err := r.db.Query(ctx, q, ids)
	if err != nil {
		return fmt.Errorf("failed to load follow-up projects: %w", err)
	}
	children, err := collectProjects(rows)
	if err != nil {
		return fmt.Errorf("failed to load follow-up projects: %w", err)
	}

	for _, c := range children {
		i := index[*c.ParentProjectID]
		items[i].FollowUpProjects = append(items[i].FollowUpProjects, c)
	}
	return nil
}

func collectProjects(rows pgx.Rows) ([]domain.Project, error) {
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var (
		p                      domain.Project
		status                 string
		duration, actions, pts []byte
		createdAt, updatedAt   time.Time
	)
	if err := row.Scan(&p.ID, &p.ParentProjectID, &p.Name, &status, &duration, &actions, &pts, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.Status = domain.Status(status)
	p.CreatedAt = createdAt
	p.UpdatedAt = updatedAt

	if err := json.Unmarshal(duration, &p.Duration); err != nil {
		return nil, fmt.Errorf("failed to decode duration of %s: %w", p.ID, err)
	}
	if err := json.Unmarshal(actions, &p.Actions); err != nil {
		return nil, fmt.Errorf("failed to decode actions of %s: %w", p.ID, err)
	}
	if err := json.Unmarshal(pts, &p.RegistrationPoints); err != nil {
		return nil, fmt.Errorf("failed to decode registration points of %s: %w", p.ID, err)
	}
	return &p, nil
}

func encodeJSONColumns(p domain.Project) (duration, actions, points string, err error) {
	d, err := json.Marshal(p.Duration)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to marshal duration: %w", err)
	}
	a := p.Actions
	if a == nil {
		a = []domain.Action{}
	}
	ab, err := json.Marshal(a)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to marshal actions: %w", err)
	}
	rp := p.RegistrationPoints
	if rp == nil {
		rp = []domain.RegistrationPoint{}
	}
	rb, err := json.Marshal(rp)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to marshal registration points: %w", err)
	}
	return string(d), string(ab), string(rb), nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
