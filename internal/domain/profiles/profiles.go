package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotImplemented  = errors.New("profiles repository: not implemented")
	ErrNotFound        = errors.New("profile not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrEmailExists     = errors.New("email already in use")
	ErrInvalidInput    = errors.New("invalid profile")
)

// Role controls which portal areas a profile may reach.
type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

// bcrypt hashes at most 72 bytes of input.
const (
	minPasswordLength = 8
	maxPasswordLength = 72
)

// Profile represents an authenticated portal user.
type Profile struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the profile carries the admin role.
func (p Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Repository defines persistence behaviour for profiles.
type Repository interface {
	FindByID(ctx context.Context, id string) (Profile, error)
	FindByEmail(ctx context.Context, email string) (Profile, error)
	Save(ctx context.Context, profile Profile) (Profile, error)
}

// NullRepository can be used when no storage is configured.
type NullRepository struct{}

func (NullRepository) FindByID(context.Context, string) (Profile, error) {
	return Profile{}, ErrNotImplemented
}
func (NullRepository) FindByEmail(context.Context, string) (Profile, error) {
	return Profile{}, ErrNotImplemented
}
func (NullRepository) Save(context.Context, Profile) (Profile, error) {
	return Profile{}, ErrNotImplemented
}

// Service exposes registration and authentication logic.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (Profile, error)
	CreateAdmin(ctx context.Context, input RegisterInput) (Profile, error)
	Authenticate(ctx context.Context, email, password string) (Profile, error)
	Get(ctx context.Context, id string) (Profile, error)
}

// RegisterInput captures data required to create an account.
type RegisterInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// NewService constructs a profile service.
func NewService(repo Repository) Service {
	return &service{repo: repo, cost: bcrypt.DefaultCost}
}

type service struct {
	repo Repository
	cost int
}

func (s *service) Register(ctx context.Context, input RegisterInput) (Profile, error) {
	return s.create(ctx, input, RoleClient)
}

func (s *service) CreateAdmin(ctx context.Context, input RegisterInput) (Profile, error) {
	return s.create(ctx, input, RoleAdmin)
}

func (s *service) create(ctx context.Context, input RegisterInput, role Role) (Profile, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return Profile{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if len(input.Password) < minPasswordLength {
		return Profile{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	if len(input.Password) > maxPasswordLength {
		return Profile{}, fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, maxPasswordLength)
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return Profile{}, ErrEmailExists
	} else if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrNotImplemented) {
		return Profile{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
	if err != nil {
		return Profile{}, fmt.Errorf("hash password: %w", err)
	}

	return s.repo.Save(ctx, Profile{
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		Role:         role,
		PasswordHash: string(hash),
	})
}

func (s *service) Authenticate(ctx context.Context, email, password string) (Profile, error) {
	email = normalizeEmail(email)
	if email == "" {
		return Profile{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	profile, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return Profile{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return Profile{}, ErrInvalidPassword
	}
	return profile, nil
}

func (s *service) Get(ctx context.Context, id string) (Profile, error) {
	return s.repo.FindByID(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
