package shops

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotImplemented = errors.New("shops repository: not implemented")
	ErrNotFound       = errors.New("shop not found")
	ErrSlugTaken      = errors.New("shop slug already in use")
	ErrForbidden      = errors.New("not allowed to modify shop")
	ErrInvalidColor   = errors.New("accent color must be #rgb or #rrggbb")
	ErrInvalidInput   = errors.New("invalid shop")
)

// DefaultAccentColor is used when a shop does not pick one.
const DefaultAccentColor = "#111827"

const maxSlugAttempts = 50

// Shop is a business running a loyalty program.
type Shop struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	AccentColor string    `json:"accent_color"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Repository abstracts persistence for shops.
type Repository interface {
	FindByID(ctx context.Context, id string) (Shop, error)
	FindBySlug(ctx context.Context, slug string) (Shop, error)
	Save(ctx context.Context, shop Shop) (Shop, error)
	List(ctx context.Context, offset, limit int) ([]Shop, error)
}

// NullRepository stub implementation returning ErrNotImplemented.
type NullRepository struct{}

func (NullRepository) FindByID(context.Context, string) (Shop, error) {
	return Shop{}, ErrNotImplemented
}

func (NullRepository) FindBySlug(context.Context, string) (Shop, error) {
	return Shop{}, ErrNotImplemented
}

func (NullRepository) Save(context.Context, Shop) (Shop, error) {
	return Shop{}, ErrNotImplemented
}

func (NullRepository) List(context.Context, int, int) ([]Shop, error) {
	return nil, ErrNotImplemented
}

// Service exposes business operations over shops.
type Service interface {
	Get(ctx context.Context, id string) (Shop, error)
	GetBySlug(ctx context.Context, slug string) (Shop, error)
	Create(ctx context.Context, input CreateInput) (Shop, error)
	Update(ctx context.Context, id string, actor Actor, input UpdateInput) (Shop, error)
	List(ctx context.Context, offset, limit int) ([]Shop, error)
}

// Actor identifies who is changing a shop.
type Actor struct {
	ProfileID string
	Admin     bool
}

// CreateInput defines data required to create a shop.
type CreateInput struct {
	OwnerID     string `json:"-"`
	Name        string `json:"name"`
	AccentColor string `json:"accent_color"`
	Description string `json:"description"`
}

// UpdateInput defines data for updating a shop. The slug is fixed at creation.
type UpdateInput struct {
	Name        *string `json:"name"`
	AccentColor *string `json:"accent_color"`
	Description *string `json:"description"`
}

// NewService builds a shop service with the given repository.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

type service struct {
	repo Repository
}

func (s *service) Get(ctx context.Context, id string) (Shop, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) GetBySlug(ctx context.Context, slug string) (Shop, error) {
	return s.repo.FindBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
}

func (s *service) Create(ctx context.Context, input CreateInput) (Shop, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Shop{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.OwnerID) == "" {
		return Shop{}, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}

	color := DefaultAccentColor
	if strings.TrimSpace(input.AccentColor) != "" {
		normalized, err := NormalizeColor(input.AccentColor)
		if err != nil {
			return Shop{}, err
		}
		color = normalized
	}

	base := Slugify(name)
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		slug := base
		if attempt > 1 {
			slug = fmt.Sprintf("%s-%d", base, attempt)
		}

		if _, err := s.repo.FindBySlug(ctx, slug); err == nil {
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return Shop{}, err
		}

		saved, err := s.repo.Save(ctx, Shop{
			OwnerID:     input.OwnerID,
			Name:        name,
			Slug:        slug,
			AccentColor: color,
			Description: strings.TrimSpace(input.Description),
		})
		if errors.Is(err, ErrSlugTaken) {
			continue
		}
		return saved, err
	}
	return Shop{}, fmt.Errorf("%w: %s", ErrSlugTaken, base)
}

func (s *service) Update(ctx context.Context, id string, actor Actor, input UpdateInput) (Shop, error) {
	shop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Shop{}, err
	}
	if !actor.Admin && actor.ProfileID != shop.OwnerID {
		return Shop{}, ErrForbidden
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return Shop{}, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
		}
		shop.Name = name
	}
	if input.AccentColor != nil {
		color, err := NormalizeColor(*input.AccentColor)
		if err != nil {
			return Shop{}, err
		}
		shop.AccentColor = color
	}
	if input.Description != nil {
		shop.Description = strings.TrimSpace(*input.Description)
	}

	return s.repo.Save(ctx, shop)
}

func (s *service) List(ctx context.Context, offset, limit int) ([]Shop, error) {
	return s.repo.List(ctx, offset, limit)
}

// Slugify lower-cases name and collapses anything outside [a-z0-9] into
// single dashes.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if b.Len() > 0 && !dash {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "shop"
	}
	return slug
}

// NormalizeColor validates a hex color and expands it to lower-case #rrggbb.
func NormalizeColor(raw string) (string, error) {
	c := strings.ToLower(strings.TrimSpace(raw))
	if !strings.HasPrefix(c, "#") {
		return "", ErrInvalidColor
	}
	hex := c[1:]
	for _, r := range hex {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			return "", ErrInvalidColor
		}
	}
	switch len(hex) {
	case 6:
		return c, nil
	case 3:
		return "#" + string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]}), nil
	default:
		return "", ErrInvalidColor
	}
}
