package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/brightpixel/agencyportal/internal/domain/wallet"
)

// WalletRepository is an in-memory implementation of wallet.Repository.
type WalletRepository struct {
	mu      sync.RWMutex
	cards   map[string]wallet.Card
	touched map[string]int
	clock   int
}

// NewWalletRepository creates an in-memory wallet repo.
func NewWalletRepository() *WalletRepository {
	return &WalletRepository{
		cards:   make(map[string]wallet.Card),
		touched: make(map[string]int),
	}
}

func (r *WalletRepository) FindByID(_ context.Context, id string) (wallet.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.cards[id]
	if !ok {
		return wallet.Card{}, wallet.ErrNotFound
	}
	return c, nil
}

func (r *WalletRepository) FindByUserAndShop(_ context.Context, userID, shopID string) (wallet.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.cards {
		if c.UserID == userID && c.ShopID == shopID {
			return c, nil
		}
	}
	return wallet.Card{}, wallet.ErrNotFound
}

func (r *WalletRepository) Save(_ context.Context, card wallet.Card) (wallet.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.cards {
		if id != card.ID && existing.UserID == card.UserID && existing.ShopID == card.ShopID {
			return wallet.Card{}, wallet.ErrAlreadyJoined
		}
	}

	now := time.Now().UTC()
	if card.ID == "" {
		card.ID = newID()
		card.CreatedAt = now
	} else if existing, ok := r.cards[card.ID]; ok {
		card.CreatedAt = existing.CreatedAt
	} else {
		return wallet.Card{}, wallet.ErrNotFound
	}
	card.UpdatedAt = now

	r.clock++
	r.touched[card.ID] = r.clock
	r.cards[card.ID] = card
	return card, nil
}

func (r *WalletRepository) AdjustPoints(_ context.Context, id string, delta int) (wallet.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	card, ok := r.cards[id]
	if !ok {
		return wallet.Card{}, wallet.ErrNotFound
	}
	if card.Points+delta < 0 {
		return wallet.Card{}, fmt.Errorf("%w: have %d, need %d", wallet.ErrInsufficientPoints, card.Points, -delta)
	}
	card.Points += delta
	card.Tier = wallet.TierFor(card.Points)
	card.UpdatedAt = time.Now().UTC()

	r.clock++
	r.touched[card.ID] = r.clock
	r.cards[card.ID] = card
	return card, nil
}

// ListByUser returns the user's cards, most recently updated first.
func (r *WalletRepository) ListByUser(_ context.Context, userID string) ([]wallet.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []wallet.Card
	for _, c := range r.cards {
		if c.UserID == userID {
			list = append(list, c)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return r.touched[list[i].ID] > r.touched[list[j].ID]
	})
	return list, nil
}

var _ wallet.Repository = (*WalletRepository)(nil)
