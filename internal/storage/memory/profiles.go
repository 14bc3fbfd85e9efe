package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/brightpixel/agencyportal/internal/domain/profiles"
)

// ProfileRepository implements profiles.Repository in-memory.
type ProfileRepository struct {
	mu    sync.RWMutex
	store map[string]profiles.Profile
}

// NewProfileRepository constructs repository.
func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{store: make(map[string]profiles.Profile)}
}

func (r *ProfileRepository) FindByID(_ context.Context, id string) (profiles.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.store[id]
	if !ok {
		return profiles.Profile{}, profiles.ErrNotFound
	}
	return p, nil
}

func (r *ProfileRepository) FindByEmail(_ context.Context, email string) (profiles.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.store {
		if strings.EqualFold(p.Email, email) {
			return p, nil
		}
	}
	return profiles.Profile{}, profiles.ErrNotFound
}

func (r *ProfileRepository) Save(_ context.Context, profile profiles.Profile) (profiles.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.store {
		if id != profile.ID && strings.EqualFold(existing.Email, profile.Email) {
			return profiles.Profile{}, profiles.ErrEmailExists
		}
	}

	now := time.Now().UTC()
	if profile.ID == "" {
		profile.ID = newID()
		profile.CreatedAt = now
	} else if existing, ok := r.store[profile.ID]; ok {
		if profile.CreatedAt.IsZero() {
			profile.CreatedAt = existing.CreatedAt
		}
	}
	profile.UpdatedAt = now
	r.store[profile.ID] = profile
	return profile, nil
}

// Ensure interface satisfaction at compile time.
var _ profiles.Repository = (*ProfileRepository)(nil)
