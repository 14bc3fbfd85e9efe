package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/brightpixel/agencyportal/internal/domain/projects"
)

// ProjectRepository persists projects and their milestones.
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository constructs a repository using a pooled DB handle.
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, client_id, name, description, status, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (projects.Project, error) {
	var p projects.Project
	err := row.Scan(&p.ID, &p.ClientID, &p.Name, &p.Description, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// FindByID retrieves a project and its milestones.
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (projects.Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if err != nil {
		if isMissing(err) {
			return projects.Project{}, projects.ErrNotFound
		}
		return projects.Project{}, fmt.Errorf("find project: %w", err)
	}

	milestones, err := fetchMilestones(ctx, r.db, p.ID)
	if err != nil {
		return projects.Project{}, err
	}
	p.Milestones = milestones
	return p, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func fetchMilestones(ctx context.Context, q queryer, projectID string) ([]projects.Milestone, error) {
	const query = `
        SELECT id, title, due_date, completed_at, sort_order
          FROM milestones
         WHERE project_id = $1
         ORDER BY sort_order
    `

	rows, err := q.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	defer rows.Close()

	var items []projects.Milestone
	for rows.Next() {
		var (
			m         projects.Milestone
			due, done sql.NullTime
		)
		m.ProjectID = projectID
		if err := rows.Scan(&m.ID, &m.Title, &due, &done, &m.SortOrder); err != nil {
			return nil, fmt.Errorf("scan milestone: %w", err)
		}
		m.DueDate = timePtr(due)
		m.CompletedAt = timePtr(done)
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("milestones rows err: %w", err)
	}
	return items, nil
}

// Save inserts a project with its initial milestones in one transaction, or
// updates the project row alone. Milestones of an existing project are left
// untouched.
func (r *ProjectRepository) Save(ctx context.Context, p projects.Project) (projects.Project, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return projects.Project{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	if p.ID == "" {
		const insert = `
            INSERT INTO projects (client_id, name, description, status, created_at, updated_at)
            VALUES ($1,$2,$3,$4,$5,$6)
            RETURNING id
        `
		if err := tx.QueryRowContext(ctx, insert,
			p.ClientID, p.Name, p.Description, p.Status, now, now,
		).Scan(&p.ID); err != nil {
			if isForeignKeyViolation(err) || isInvalidText(err) {
				return projects.Project{}, fmt.Errorf("%w: unknown client", projects.ErrInvalidInput)
			}
			return projects.Project{}, fmt.Errorf("insert project: %w", err)
		}
		p.CreatedAt = now
		if err := insertMilestones(ctx, tx, &p); err != nil {
			return projects.Project{}, err
		}
	} else {
		const update = `
            UPDATE projects
               SET client_id = $2,
                   name = $3,
                   description = $4,
                   status = $5,
                   updated_at = $6
             WHERE id = $1
            RETURNING created_at
        `
		if err := tx.QueryRowContext(ctx, update,
			p.ID, p.ClientID, p.Name, p.Description, p.Status, now,
		).Scan(&p.CreatedAt); err != nil {
			switch {
			case isMissing(err):
				return projects.Project{}, projects.ErrNotFound
			case isForeignKeyViolation(err):
				return projects.Project{}, fmt.Errorf("%w: unknown client", projects.ErrInvalidInput)
			}
			return projects.Project{}, fmt.Errorf("update project: %w", err)
		}
		milestones, err := fetchMilestones(ctx, tx, p.ID)
		if err != nil {
			return projects.Project{}, err
		}
		p.Milestones = milestones
	}
	p.UpdatedAt = now

	if err := tx.Commit(); err != nil {
		return projects.Project{}, fmt.Errorf("commit project save: %w", err)
	}
	return p, nil
}

// AddMilestone appends a milestone. The project row is locked so concurrent
// additions receive distinct sort orders.
func (r *ProjectRepository) AddMilestone(ctx context.Context, projectID string, m projects.Milestone) (projects.Project, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return projects.Project{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := lockProject(ctx, tx, projectID); err != nil {
		return projects.Project{}, err
	}

	const insert = `
        INSERT INTO milestones (project_id, title, due_date, sort_order)
        SELECT $1::uuid, $2::text, $3::timestamptz, COALESCE(MAX(sort_order) + 1, 0)
          FROM milestones
         WHERE project_id = $1
    `
	if _, err := tx.ExecContext(ctx, insert, projectID, m.Title, nullTime(m.DueDate)); err != nil {
		return projects.Project{}, fmt.Errorf("insert milestone: %w", err)
	}
	if err := touchProject(ctx, tx, projectID); err != nil {
		return projects.Project{}, err
	}

	if err := tx.Commit(); err != nil {
		return projects.Project{}, fmt.Errorf("commit milestone: %w", err)
	}
	return r.FindByID(ctx, projectID)
}

// CompleteMilestone stamps completed_at once; a second call keeps the first
// timestamp.
func (r *ProjectRepository) CompleteMilestone(ctx context.Context, projectID, milestoneID string, at time.Time) (projects.Project, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return projects.Project{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := lockProject(ctx, tx, projectID); err != nil {
		return projects.Project{}, err
	}

	const update = `
        UPDATE milestones
           SET completed_at = $3
         WHERE project_id = $1 AND id = $2 AND completed_at IS NULL
    `
	res, err := tx.ExecContext(ctx, update, projectID, milestoneID, at.UTC())
	if err != nil {
		if isInvalidText(err) {
			return projects.Project{}, projects.ErrMilestoneNotFound
		}
		return projects.Project{}, fmt.Errorf("complete milestone: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return projects.Project{}, fmt.Errorf("complete milestone rows affected: %w", err)
	}
	if n == 0 {
		var exists bool
		const check = `SELECT EXISTS (SELECT 1 FROM milestones WHERE project_id = $1 AND id = $2)`
		if err := tx.QueryRowContext(ctx, check, projectID, milestoneID).Scan(&exists); err != nil {
			return projects.Project{}, fmt.Errorf("find milestone: %w", err)
		}
		if !exists {
			return projects.Project{}, projects.ErrMilestoneNotFound
		}
	} else if err := touchProject(ctx, tx, projectID); err != nil {
		return projects.Project{}, err
	}

	if err := tx.Commit(); err != nil {
		return projects.Project{}, fmt.Errorf("commit milestone: %w", err)
	}
	return r.FindByID(ctx, projectID)
}

func lockProject(ctx context.Context, tx *sql.Tx, id string) error {
	var locked string
	if err := tx.QueryRowContext(ctx, `SELECT id FROM projects WHERE id = $1 FOR UPDATE`, id).Scan(&locked); err != nil {
		if isMissing(err) {
			return projects.ErrNotFound
		}
		return fmt.Errorf("lock project: %w", err)
	}
	return nil
}

func touchProject(ctx context.Context, tx *sql.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, `UPDATE projects SET updated_at = $2 WHERE id = $1`, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("touch project: %w", err)
	}
	return nil
}

func insertMilestones(ctx context.Context, tx *sql.Tx, p *projects.Project) error {
	const insert = `
        INSERT INTO milestones (id, project_id, title, due_date, completed_at, sort_order)
        VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6)
        RETURNING id
    `

	for idx := range p.Milestones {
		m := &p.Milestones[idx]
		m.ProjectID = p.ID
		m.SortOrder = idx
		if err := tx.QueryRowContext(ctx, insert,
			m.ID,
			p.ID,
			m.Title,
			nullTime(m.DueDate),
			nullTime(m.CompletedAt),
			idx,
		).Scan(&m.ID); err != nil {
			return fmt.Errorf("insert milestone: %w", err)
		}
	}
	return nil
}

// ListByClient returns paginated projects for a client, newest first.
func (r *ProjectRepository) ListByClient(ctx context.Context, clientID string, offset, limit int) ([]projects.Project, error) {
	return r.list(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE client_id = $1 ORDER BY created_at DESC OFFSET $2 LIMIT $3`,
		clientID, offset, nullableLimit(limit))
}

// List returns paginated projects across all clients, newest first.
func (r *ProjectRepository) List(ctx context.Context, offset, limit int) ([]projects.Project, error) {
	return r.list(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC OFFSET $1 LIMIT $2`,
		offset, nullableLimit(limit))
}

func (r *ProjectRepository) list(ctx context.Context, query string, args ...any) ([]projects.Project, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	var result []projects.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan project: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("rows err: %w", err)
	}
	rows.Close()

	for i := range result {
		milestones, err := fetchMilestones(ctx, r.db, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Milestones = milestones
	}
	if result == nil {
		result = []projects.Project{}
	}
	return result, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

var _ projects.Repository = (*ProjectRepository)(nil)
