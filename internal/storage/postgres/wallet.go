package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/brightpixel/agencyportal/internal/domain/wallet"
)

// WalletRepository persists wallet cards.
type WalletRepository struct {
	db *sql.DB
}

// NewWalletRepository constructs a repository using a pooled DB handle.
func NewWalletRepository(db *sql.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

const cardColumns = `id, user_id, shop_id, points, tier, created_at, updated_at`

func scanCard(row interface{ Scan(...any) error }) (wallet.Card, error) {
	var c wallet.Card
	err := row.Scan(&c.ID, &c.UserID, &c.ShopID, &c.Points, &c.Tier, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *WalletRepository) FindByID(ctx context.Context, id string) (wallet.Card, error) {
	c, err := scanCard(r.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM wallet_cards WHERE id = $1`, id))
	if err != nil {
		if isMissing(err) {
			return wallet.Card{}, wallet.ErrNotFound
		}
		return wallet.Card{}, fmt.Errorf("find wallet card: %w", err)
	}
	return c, nil
}

func (r *WalletRepository) FindByUserAndShop(ctx context.Context, userID, shopID string) (wallet.Card, error) {
	c, err := scanCard(r.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM wallet_cards WHERE user_id = $1 AND shop_id = $2`, userID, shopID))
	if err != nil {
		if isMissing(err) {
			return wallet.Card{}, wallet.ErrNotFound
		}
		return wallet.Card{}, fmt.Errorf("find wallet card by shop: %w", err)
	}
	return c, nil
}

func (r *WalletRepository) Save(ctx context.Context, c wallet.Card) (wallet.Card, error) {
	now := time.Now().UTC()

	if c.ID == "" {
		const insert = `
            INSERT INTO wallet_cards (user_id, shop_id, points, tier, created_at, updated_at)
            VALUES ($1,$2,$3,$4,$5,$6)
            RETURNING id
        `
		if err := r.db.QueryRowContext(ctx, insert, c.UserID, c.ShopID, c.Points, c.Tier, now, now).Scan(&c.ID); err != nil {
			switch {
			case isUniqueViolation(err):
				return wallet.Card{}, wallet.ErrAlreadyJoined
			case isForeignKeyViolation(err), isInvalidText(err):
				return wallet.Card{}, fmt.Errorf("%w: unknown user or shop", wallet.ErrInvalidInput)
			}
			return wallet.Card{}, fmt.Errorf("insert wallet card: %w", err)
		}
		c.CreatedAt = now
		c.UpdatedAt = now
		return c, nil
	}

	const update = `
        UPDATE wallet_cards
           SET points = $2,
               tier = $3,
               updated_at = $4
         WHERE id = $1
        RETURNING created_at
    `
	if err := r.db.QueryRowContext(ctx, update, c.ID, c.Points, c.Tier, now).Scan(&c.CreatedAt); err != nil {
		if isMissing(err) {
			return wallet.Card{}, wallet.ErrNotFound
		}
		return wallet.Card{}, fmt.Errorf("update wallet card: %w", err)
	}
	c.UpdatedAt = now
	return c, nil
}

// AdjustPoints updates the balance and tier in a single statement so
// concurrent adjustments never overwrite each other.
func (r *WalletRepository) AdjustPoints(ctx context.Context, id string, delta int) (wallet.Card, error) {
	const update = `
        UPDATE wallet_cards
           SET points = points + $2,
               tier = CASE
                   WHEN points + $2 >= $3 THEN 'gold'
                   WHEN points + $2 >= $4 THEN 'silver'
                   ELSE 'bronze'
               END,
               updated_at = now()
         WHERE id = $1 AND points + $2 >= 0
        RETURNING ` + cardColumns
	c, err := scanCard(r.db.QueryRowContext(ctx, update, id, delta, wallet.GoldThreshold, wallet.SilverThreshold))
	if err == nil {
		return c, nil
	}
	if isInvalidText(err) {
		return wallet.Card{}, wallet.ErrNotFound
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return wallet.Card{}, fmt.Errorf("adjust wallet points: %w", err)
	}

	current, err := r.FindByID(ctx, id)
	if err != nil {
		return wallet.Card{}, err
	}
	return wallet.Card{}, fmt.Errorf("%w: have %d, need %d", wallet.ErrInsufficientPoints, current.Points, -delta)
}

// ListByUser returns the user's cards, most recently updated first.
func (r *WalletRepository) ListByUser(ctx context.Context, userID string) ([]wallet.Card, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM wallet_cards WHERE user_id = $1 ORDER BY updated_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list wallet cards: %w", err)
	}
	defer rows.Close()

	result := make([]wallet.Card, 0)
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wallet card: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return result, nil
}

var _ wallet.Repository = (*WalletRepository)(nil)
