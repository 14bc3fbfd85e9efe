package profiles_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/brightpixel/agencyportal/internal/domain/profiles"
	memstore "github.com/brightpixel/agencyportal/internal/storage/memory"
)

func TestServiceRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := profiles.NewService(memstore.NewProfileRepository())

	profile, err := svc.Register(ctx, profiles.RegisterInput{
		Email:    " Test@Example.com ",
		Name:     "Test User",
		Password: "supersecret",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if profile.ID == "" {
		t.Fatalf("expected ID to be set")
	}
	if profile.Email != "test@example.com" {
		t.Fatalf("expected normalized email, got %q", profile.Email)
	}
	if profile.Role != profiles.RoleClient {
		t.Fatalf("expected client role, got %s", profile.Role)
	}
	if profile.PasswordHash == "" || profile.PasswordHash == "supersecret" {
		t.Fatalf("expected hashed password")
	}

	authed, err := svc.Authenticate(ctx, "test@example.com", "supersecret")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if authed.ID != profile.ID {
		t.Fatalf("expected same profile ID")
	}

	if _, err := svc.Authenticate(ctx, "test@example.com", "wrong"); !errors.Is(err, profiles.ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@example.com", "supersecret"); !errors.Is(err, profiles.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceRegisterRejectsDuplicateAndShortPassword(t *testing.T) {
	ctx := context.Background()
	svc := profiles.NewService(memstore.NewProfileRepository())

	if _, err := svc.Register(ctx, profiles.RegisterInput{Email: "a@example.com", Password: "short"}); err == nil {
		t.Fatalf("expected short password error")
	}
	if _, err := svc.Register(ctx, profiles.RegisterInput{Email: "a@example.com", Password: "longenough"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := svc.Register(ctx, profiles.RegisterInput{Email: "A@example.com", Password: "longenough"}); !errors.Is(err, profiles.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestServiceRegisterRejectsOverlongPassword(t *testing.T) {
	svc := profiles.NewService(memstore.NewProfileRepository())
	ctx := context.Background()

	_, err := svc.Register(ctx, profiles.RegisterInput{Email: "long@example.com", Password: strings.Repeat("p", 73)})
	if !errors.Is(err, profiles.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Register(ctx, profiles.RegisterInput{Email: "long@example.com", Password: strings.Repeat("p", 72)}); err != nil {
		t.Fatalf("72-byte password should register: %v", err)
	}
}

func TestServiceCreateAdmin(t *testing.T) {
	svc := profiles.NewService(memstore.NewProfileRepository())

	admin, err := svc.CreateAdmin(context.Background(), profiles.RegisterInput{Email: "ops@example.com", Password: "changeme1"})
	if err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	if !admin.IsAdmin() {
		t.Fatalf("expected admin role, got %s", admin.Role)
	}
}
