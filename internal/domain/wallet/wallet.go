// Package wallet manages loyalty cards that link a profile to a shop's
// program.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brightpixel/agencyportal/internal/domain/shops"
)

var (
	ErrNotImplemented     = errors.New("wallet repository: not implemented")
	ErrNotFound           = errors.New("wallet card not found")
	ErrAlreadyJoined      = errors.New("already joined this shop")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrForbidden          = errors.New("not allowed to adjust points")
	ErrInvalidInput       = errors.New("invalid wallet request")
)

// Tier is the loyalty level derived from a card's points.
type Tier string

const (
	TierBronze Tier = "bronze"
	TierSilver Tier = "silver"
	TierGold   Tier = "gold"
)

// Point thresholds for each tier above bronze.
const (
	SilverThreshold = 250
	GoldThreshold   = 1000
)

// TierFor returns the tier earned by points.
func TierFor(points int) Tier {
	switch {
	case points >= GoldThreshold:
		return TierGold
	case points >= SilverThreshold:
		return TierSilver
	default:
		return TierBronze
	}
}

// Card is a profile's membership in one shop's loyalty program.
type Card struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ShopID    string    `json:"shop_id"`
	Points    int       `json:"points"`
	Tier      Tier      `json:"tier"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository abstracts card persistence.
type Repository interface {
	FindByID(ctx context.Context, id string) (Card, error)
	FindByUserAndShop(ctx context.Context, userID, shopID string) (Card, error)
	Save(ctx context.Context, card Card) (Card, error)
	// AdjustPoints applies delta and recomputes the tier in one step. It
	// returns ErrInsufficientPoints when the balance would drop below zero.
	AdjustPoints(ctx context.Context, id string, delta int) (Card, error)
	ListByUser(ctx context.Context, userID string) ([]Card, error)
}

// NullRepository returns ErrNotImplemented for all operations.
type NullRepository struct{}

func (NullRepository) FindByID(context.Context, string) (Card, error) {
	return Card{}, ErrNotImplemented
}

func (NullRepository) FindByUserAndShop(context.Context, string, string) (Card, error) {
	return Card{}, ErrNotImplemented
}

func (NullRepository) Save(context.Context, Card) (Card, error) {
	return Card{}, ErrNotImplemented
}

func (NullRepository) AdjustPoints(context.Context, string, int) (Card, error) {
	return Card{}, ErrNotImplemented
}

func (NullRepository) ListByUser(context.Context, string) ([]Card, error) {
	return nil, ErrNotImplemented
}

// ShopLookup is the part of the shop store the wallet needs.
type ShopLookup interface {
	FindByID(ctx context.Context, id string) (shops.Shop, error)
}

// Service exposes wallet operations.
type Service interface {
	Join(ctx context.Context, userID, shopID string) (Card, error)
	Get(ctx context.Context, id string) (Card, error)
	AdjustPoints(ctx context.Context, cardID string, actor shops.Actor, delta int) (Card, error)
	ListForUser(ctx context.Context, userID string) ([]Entry, error)
}

// Entry is a card paired with the shop it belongs to, as shown in the
// wallet stack.
type Entry struct {
	Card
	ShopName    string `json:"shop_name"`
	ShopSlug    string `json:"shop_slug"`
	AccentColor string `json:"accent_color"`
}

// NewService builds a wallet service.
func NewService(repo Repository, shopRepo ShopLookup) Service {
	return &service{repo: repo, shops: shopRepo}
}

type service struct {
	repo  Repository
	shops ShopLookup
}

func (s *service) Join(ctx context.Context, userID, shopID string) (Card, error) {
	userID = strings.TrimSpace(userID)
	shopID = strings.TrimSpace(shopID)
	if userID == "" || shopID == "" {
		return Card{}, fmt.Errorf("%w: user and shop are required", ErrInvalidInput)
	}
	if _, err := s.shops.FindByID(ctx, shopID); err != nil {
		return Card{}, err
	}

	if _, err := s.repo.FindByUserAndShop(ctx, userID, shopID); err == nil {
		return Card{}, ErrAlreadyJoined
	} else if !errors.Is(err, ErrNotFound) {
		return Card{}, err
	}

	return s.repo.Save(ctx, Card{
		UserID: userID,
		ShopID: shopID,
		Points: 0,
		Tier:   TierBronze,
	})
}

func (s *service) Get(ctx context.Context, id string) (Card, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) AdjustPoints(ctx context.Context, cardID string, actor shops.Actor, delta int) (Card, error) {
	card, err := s.repo.FindByID(ctx, cardID)
	if err != nil {
		return Card{}, err
	}
	if !actor.Admin {
		shop, err := s.shops.FindByID(ctx, card.ShopID)
		if err != nil {
			return Card{}, err
		}
		if shop.OwnerID != actor.ProfileID {
			return Card{}, ErrForbidden
		}
	}
	return s.repo.AdjustPoints(ctx, card.ID, delta)
}

func (s *service) ListForUser(ctx context.Context, userID string) ([]Entry, error) {
	cards, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(cards))
	for _, c := range cards {
		entry := Entry{Card: c}
		shop, err := s.shops.FindByID(ctx, c.ShopID)
		switch {
		case err == nil:
			entry.ShopName = shop.Name
			entry.ShopSlug = shop.Slug
			entry.AccentColor = shop.AccentColor
		case errors.Is(err, shops.ErrNotFound):
			entry.AccentColor = shops.DefaultAccentColor
		default:
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
