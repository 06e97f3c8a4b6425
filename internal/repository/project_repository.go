package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/connectpp/student-network/internal/model"
)

// ProjectRepo encapsulates queries on `projects`. Every mutation is
// scoped by the owner's regno, so a project id belonging to somebody
// else behaves exactly like a missing one.
type ProjectRepo struct {
	db *sql.DB
}

func NewProjectRepo(db *sql.DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

// ListByRegno returns the projects of regno in insertion order.
func (r *ProjectRepo) ListByRegno(ctx context.Context, regno string) ([]model.Project, error) {
	const q = `SELECT id, regno, project_name, brief_description, git_hub_url, start_time, end_time
	           FROM projects WHERE regno = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, q, regno)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := []model.Project{}
	for rows.Next() {
		var p model.Project
		var end sql.NullString
		if err := rows.Scan(&p.ID, &p.Regno, &p.ProjectName, &p.BriefDescription,
			&p.GitHubURL, &p.StartTime, &end); err != nil {
			return nil, err
		}
		if end.Valid {
			p.EndTime = &end.String
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Insert stores p under a new uuid. A second project with the same name
// for the same owner fails with ErrDuplicate.
func (r *ProjectRepo) Insert(ctx context.Context, p *model.Project) error {
	p.ID = uuid.NewString()
	const q = `INSERT INTO projects
	           (id, regno, project_name, brief_description, git_hub_url, start_time, end_time)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, p.ID, p.Regno, p.ProjectName, p.BriefDescription,
		p.GitHubURL, p.StartTime, p.EndTime)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// Update applies patch to project id owned by regno. Renaming onto an
// existing name of the same owner fails with ErrDuplicate.
func (r *ProjectRepo) Update(ctx context.Context, id, regno string, patch model.ProjectPatch) error {
	if err := uuid.Validate(id); err != nil {
		return ErrInvalidID
	}
	assigns := patch.Assignments()
	if len(assigns) == 0 {
		return r.exists(ctx, id, regno)
	}
	set, args := setClause(assigns)
	args = append(args, id, regno)
	res, err := r.db.ExecContext(ctx, "UPDATE projects SET "+set+" WHERE id = ? AND regno = ?", args...)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update project: %w", err)
	}
	// the connection reports matched rows (clientFoundRows), so zero means no such project
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes project id owned by regno.
func (r *ProjectRepo) Delete(ctx context.Context, id, regno string) error {
	if err := uuid.Validate(id); err != nil {
		return ErrInvalidID
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ? AND regno = ?", id, regno)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProjectRepo) exists(ctx context.Context, id, regno string) error {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM projects WHERE id = ? AND regno = ?", id, regno).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	return err
}
