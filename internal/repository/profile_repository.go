package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/connectpp/student-network/internal/model"
)

// PublicProfileRepo reads and writes `public_profiles`, one row per regno.
type PublicProfileRepo struct {
	db *sql.DB
}

func NewPublicProfileRepo(db *sql.DB) *PublicProfileRepo {
	return &PublicProfileRepo{db: db}
}

// FindByRegno returns the public profile of regno or ErrNotFound.
func (r *PublicProfileRepo) FindByRegno(ctx context.Context, regno string) (model.PublicProfile, error) {
	const q = `SELECT firstname, lastname, regno, profile_photo_url, branch, joining_year
	           FROM public_profiles WHERE regno = ?`
	var p model.PublicProfile
	err := r.db.QueryRowContext(ctx, q, regno).Scan(
		&p.Firstname, &p.Lastname, &p.Regno, &p.ProfilePhotoURL, &p.Branch, &p.JoiningYear)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PublicProfile{}, ErrNotFound
		}
		return model.PublicProfile{}, fmt.Errorf("find public profile: %w", err)
	}
	return p, nil
}

// Insert creates a public profile. ErrDuplicate means a concurrent
// request created it first.
func (r *PublicProfileRepo) Insert(ctx context.Context, p model.PublicProfile) error {
	const q = `INSERT INTO public_profiles
	           (regno, firstname, lastname, profile_photo_url, branch, joining_year)
	           VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		p.Regno, p.Firstname, p.Lastname, p.ProfilePhotoURL, p.Branch, p.JoiningYear)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert public profile: %w", err)
	}
	return nil
}

// Upsert applies patch to the profile of seed.Regno, creating the row
// from the seed identity when it does not exist yet.
func (r *PublicProfileRepo) Upsert(ctx context.Context, seed model.PublicProfile, patch model.PublicProfilePatch) error {
	q, args := upsertQuery("public_profiles", []model.Assignment{
		{Column: "regno", Value: seed.Regno},
		{Column: "firstname", Value: seed.Firstname},
		{Column: "lastname", Value: seed.Lastname},
	}, patch.Assignments())
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("upsert public profile: %w", err)
	}
	return nil
}

// ProgrammingProfileRepo reads and writes `programming_profiles`.
type ProgrammingProfileRepo struct {
	db *sql.DB
}

func NewProgrammingProfileRepo(db *sql.DB) *ProgrammingProfileRepo {
	return &ProgrammingProfileRepo{db: db}
}

// FindByRegno returns the programming profile of regno or ErrNotFound.
func (r *ProgrammingProfileRepo) FindByRegno(ctx context.Context, regno string) (model.ProgrammingProfile, error) {
	const q = `SELECT regno, prefered_language, code_chef_url, hackerearth_url,
	                  top_coder_url, git_hub_url, project_euler_key
	           FROM programming_profiles WHERE regno = ?`
	var p model.ProgrammingProfile
	err := r.db.QueryRowContext(ctx, q, regno).Scan(&p.Regno, &p.PreferedLanguage,
		&p.CodeChefURL, &p.HackerearthURL, &p.TopCoderURL, &p.GitHubURL, &p.ProjectEulerKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ProgrammingProfile{}, ErrNotFound
		}
		return model.ProgrammingProfile{}, fmt.Errorf("find programming profile: %w", err)
	}
	return p, nil
}

// Upsert applies patch to the programming profile of regno, creating it
// on the first write.
func (r *ProgrammingProfileRepo) Upsert(ctx context.Context, regno string, patch model.ProgrammingProfilePatch) error {
	q, args := upsertQuery("programming_profiles",
		[]model.Assignment{{Column: "regno", Value: regno}}, patch.Assignments())
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("upsert programming profile: %w", err)
	}
	return nil
}
