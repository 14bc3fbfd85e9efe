package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/brightpixel/agencyportal/internal/domain/shops"
)

// ShopRepository persists shops using a *sql.DB handle.
type ShopRepository struct {
	db *sql.DB
}

// NewShopRepository returns a repository backed by a pooled DB connection.
func NewShopRepository(db *sql.DB) *ShopRepository {
	return &ShopRepository{db: db}
}

const shopColumns = `id, owner_id, name, slug, accent_color, description, created_at, updated_at`

func scanShop(row interface{ Scan(...any) error }) (shops.Shop, error) {
	var s shops.Shop
	err := row.Scan(&s.ID, &s.OwnerID, &s.Name, &s.Slug, &s.AccentColor, &s.Description, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// FindByID fetches a shop by primary key.
func (r *ShopRepository) FindByID(ctx context.Context, id string) (shops.Shop, error) {
	s, err := scanShop(r.db.QueryRowContext(ctx, `SELECT `+shopColumns+` FROM shops WHERE id = $1`, id))
	if err != nil {
		if isMissing(err) {
			return shops.Shop{}, shops.ErrNotFound
		}
		return shops.Shop{}, fmt.Errorf("find shop: %w", err)
	}
	return s, nil
}

// FindBySlug fetches a shop by its public slug.
func (r *ShopRepository) FindBySlug(ctx context.Context, slug string) (shops.Shop, error) {
	s, err := scanShop(r.db.QueryRowContext(ctx, `SELECT `+shopColumns+` FROM shops WHERE slug = $1`, slug))
	if err != nil {
		if isMissing(err) {
			return shops.Shop{}, shops.ErrNotFound
		}
		return shops.Shop{}, fmt.Errorf("find shop by slug: %w", err)
	}
	return s, nil
}

// Save inserts or updates a shop record.
func (r *ShopRepository) Save(ctx context.Context, s shops.Shop) (shops.Shop, error) {
	now := time.Now().UTC()

	if s.ID == "" {
		const insert = `
            INSERT INTO shops (owner_id, name, slug, accent_color, description, created_at, updated_at)
            VALUES ($1,$2,$3,$4,$5,$6,$7)
            RETURNING id
        `
		if err := r.db.QueryRowContext(ctx, insert,
			s.OwnerID, s.Name, s.Slug, s.AccentColor, s.Description, now, now,
		).Scan(&s.ID); err != nil {
			switch {
			case isUniqueViolation(err):
				return shops.Shop{}, shops.ErrSlugTaken
			case isForeignKeyViolation(err), isInvalidText(err):
				return shops.Shop{}, fmt.Errorf("%w: unknown owner", shops.ErrInvalidInput)
			}
			return shops.Shop{}, fmt.Errorf("insert shop: %w", err)
		}
		s.CreatedAt = now
		s.UpdatedAt = now
		return s, nil
	}

	const update = `
        UPDATE shops
           SET name = $2,
               accent_color = $3,
               description = $4,
               updated_at = $5
         WHERE id = $1
        RETURNING created_at
    `
	if err := r.db.QueryRowContext(ctx, update,
		s.ID, s.Name, s.AccentColor, s.Description, now,
	).Scan(&s.CreatedAt); err != nil {
		if isMissing(err) {
			return shops.Shop{}, shops.ErrNotFound
		}
		return shops.Shop{}, fmt.Errorf("update shop: %w", err)
	}
	s.UpdatedAt = now
	return s, nil
}

// List returns shops ordered by name.
func (r *ShopRepository) List(ctx context.Context, offset, limit int) ([]shops.Shop, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+shopColumns+` FROM shops ORDER BY name, slug OFFSET $1 LIMIT $2`, offset, nullableLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	defer rows.Close()

	result := make([]shops.Shop, 0)
	for rows.Next() {
		s, err := scanShop(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shop: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return result, nil
}

// nullableLimit maps non-positive limits to SQL NULL, which Postgres treats
// as LIMIT ALL.
func nullableLimit(limit int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(limit), Valid: limit > 0}
}

var _ shops.Repository = (*ShopRepository)(nil)
