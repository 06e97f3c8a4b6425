package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/connectpp/student-network/internal/model"
)

// TechRepo encapsulates queries on `techs`, scoped by owner like ProjectRepo.
type TechRepo struct {
	db *sql.DB
}

func NewTechRepo(db *sql.DB) *TechRepo {
	return &TechRepo{db: db}
}

// ListByRegno returns the techs of regno in insertion order.
func (r *TechRepo) ListByRegno(ctx context.Context, regno string) ([]model.Tech, error) {
	const q = `SELECT id, regno, tech_name, learning_year, still_use_it, level, source_name, source_url
	           FROM techs WHERE regno = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, q, regno)
	if err != nil {
		return nil, fmt.Errorf("list techs: %w", err)
	}
	defer rows.Close()

	out := []model.Tech{}
	for rows.Next() {
		var t model.Tech
		if err := rows.Scan(&t.ID, &t.Regno, &t.TechName, &t.LearningYear, &t.StillUseIt,
			&t.Level, &t.SourceName, &t.SourceURL); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Insert stores t under a new uuid.
func (r *TechRepo) Insert(ctx context.Context, t *model.Tech) error {
	t.ID = uuid.NewString()
	const q = `INSERT INTO techs
	           (id, regno, tech_name, learning_year, still_use_it, level, source_name, source_url)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, t.ID, t.Regno, t.TechName, t.LearningYear,
		t.StillUseIt, t.Level, t.SourceName, t.SourceURL); err != nil {
		return fmt.Errorf("insert tech: %w", err)
	}
	return nil
}

// Update applies patch to tech id owned by regno.
func (r *TechRepo) Update(ctx context.Context, id, regno string, patch model.TechPatch) error {
	if err := uuid.Validate(id); err != nil {
		return ErrInvalidID
	}
	assigns := patch.Assignments()
	if len(assigns) == 0 {
		var one int
		err := r.db.QueryRowContext(ctx, "SELECT 1 FROM techs WHERE id = ? AND regno = ?", id, regno).Scan(&one)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	set, args := setClause(assigns)
	args = append(args, id, regno)
	res, err := r.db.ExecContext(ctx, "UPDATE techs SET "+set+" WHERE id = ? AND regno = ?", args...)
	if err != nil {
		return fmt.Errorf("update tech: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes tech id owned by regno.
func (r *TechRepo) Delete(ctx context.Context, id, regno string) error {
	if err := uuid.Validate(id); err != nil {
		return ErrInvalidID
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM techs WHERE id = ? AND regno = ?", id, regno)
	if err != nil {
		return fmt.Errorf("delete tech: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
