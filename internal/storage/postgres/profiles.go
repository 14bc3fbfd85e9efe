package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/brightpixel/agencyportal/internal/domain/profiles"
)

// ProfileRepository persists portal profiles.
type ProfileRepository struct {
	db *sql.DB
}

// NewProfileRepository constructs a repository using a pooled DB handle.
func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, email, name, role, password_hash, created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (profiles.Profile, error) {
	var p profiles.Profile
	err := row.Scan(&p.ID, &p.Email, &p.Name, &p.Role, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *ProfileRepository) FindByID(ctx context.Context, id string) (profiles.Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if err != nil {
		if isMissing(err) {
			return profiles.Profile{}, profiles.ErrNotFound
		}
		return profiles.Profile{}, fmt.Errorf("find profile: %w", err)
	}
	return p, nil
}

func (r *ProfileRepository) FindByEmail(ctx context.Context, email string) (profiles.Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE lower(email) = lower($1)`, email))
	if err != nil {
		if isMissing(err) {
			return profiles.Profile{}, profiles.ErrNotFound
		}
		return profiles.Profile{}, fmt.Errorf("find profile by email: %w", err)
	}
	return p, nil
}

func (r *ProfileRepository) Save(ctx context.Context, p profiles.Profile) (profiles.Profile, error) {
	now := time.Now().UTC()

	if p.ID == "" {
		const insert = `
            INSERT INTO profiles (email, name, role, password_hash, created_at, updated_at)
            VALUES ($1,$2,$3,$4,$5,$6)
            RETURNING id
        `
		if err := r.db.QueryRowContext(ctx, insert, p.Email, p.Name, p.Role, p.PasswordHash, now, now).Scan(&p.ID); err != nil {
			if isUniqueViolation(err) {
				return profiles.Profile{}, profiles.ErrEmailExists
			}
			return profiles.Profile{}, fmt.Errorf("insert profile: %w", err)
		}
		p.CreatedAt = now
		p.UpdatedAt = now
		return p, nil
	}

	const update = `
        UPDATE profiles
           SET email = $2,
               name = $3,
               role = $4,
               password_hash = $5,
               updated_at = $6
         WHERE id = $1
        RETURNING created_at
    `
	if err := r.db.QueryRowContext(ctx, update, p.ID, p.Email, p.Name, p.Role, p.PasswordHash, now).Scan(&p.CreatedAt); err != nil {
		switch {
		case isMissing(err):
			return profiles.Profile{}, profiles.ErrNotFound
		case isUniqueViolation(err):
			return profiles.Profile{}, profiles.ErrEmailExists
		}
		return profiles.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	p.UpdatedAt = now
	return p, nil
}

var _ profiles.Repository = (*ProfileRepository)(nil)
