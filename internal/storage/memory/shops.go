package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/brightpixel/agencyportal/internal/domain/shops"
)

// ShopRepository is an in-memory implementation of shops.Repository.
type ShopRepository struct {
	mu    sync.RWMutex
	shops map[string]shops.Shop
}

// NewShopRepository returns an initialized in-memory repository.
func NewShopRepository() *ShopRepository {
	return &ShopRepository{shops: make(map[string]shops.Shop)}
}

// FindByID returns a shop by identifier.
func (r *ShopRepository) FindByID(_ context.Context, id string) (shops.Shop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.shops[id]
	if !ok {
		return shops.Shop{}, shops.ErrNotFound
	}
	return s, nil
}

// FindBySlug returns the shop with the given slug.
func (r *ShopRepository) FindBySlug(_ context.Context, slug string) (shops.Shop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.shops {
		if s.Slug == slug {
			return s, nil
		}
	}
	return shops.Shop{}, shops.ErrNotFound
}

// Save inserts or updates a shop. Slugs stay unique.
func (r *ShopRepository) Save(_ context.Context, shop shops.Shop) (shops.Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.shops {
		if id != shop.ID && existing.Slug == shop.Slug {
			return shops.Shop{}, shops.ErrSlugTaken
		}
	}

	now := time.Now().UTC()
	if shop.ID == "" {
		shop.ID = newID()
		shop.CreatedAt = now
	} else if existing, ok := r.shops[shop.ID]; ok {
		shop.CreatedAt = existing.CreatedAt
	} else {
		return shops.Shop{}, shops.ErrNotFound
	}
	shop.UpdatedAt = now

	r.shops[shop.ID] = shop
	return shop, nil
}

// List returns shops ordered by name.
func (r *ShopRepository) List(_ context.Context, offset, limit int) ([]shops.Shop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]shops.Shop, 0, len(r.shops))
	for _, s := range r.shops {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name == list[j].Name {
			return list[i].Slug < list[j].Slug
		}
		return list[i].Name < list[j].Name
	})
	return paginate(list, offset, limit), nil
}

var _ shops.Repository = (*ShopRepository)(nil)
