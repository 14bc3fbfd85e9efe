package shops_test

import (
	"context"
	"errors"
	"testing"

	"github.com/brightpixel/agencyportal/internal/domain/shops"
	"github.com/brightpixel/agencyportal/internal/storage/memory"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Blue Bottle Coffee": "blue-bottle-coffee",
		"  Joe's  Diner!! ":  "joe-s-diner",
		"Café 42":            "caf-42",
		"***":                "shop",
	}
	for in, want := range cases {
		if got := shops.Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeColor(t *testing.T) {
	if got, err := shops.NormalizeColor("#ABC"); err != nil || got != "#aabbcc" {
		t.Fatalf("expected #aabbcc, got %q (%v)", got, err)
	}
	if got, err := shops.NormalizeColor(" #FF8800 "); err != nil || got != "#ff8800" {
		t.Fatalf("expected #ff8800, got %q (%v)", got, err)
	}
	for _, bad := range []string{"ff8800", "#ff88", "#gg0000", ""} {
		if _, err := shops.NormalizeColor(bad); !errors.Is(err, shops.ErrInvalidColor) {
			t.Errorf("NormalizeColor(%q) expected ErrInvalidColor, got %v", bad, err)
		}
	}
}

func TestCreateAssignsUniqueSlugs(t *testing.T) {
	svc := shops.NewService(memory.NewShopRepository())
	ctx := context.Background()

	first, err := svc.Create(ctx, shops.CreateInput{OwnerID: "owner-1", Name: "Corner Cafe"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if first.Slug != "corner-cafe" || first.AccentColor != shops.DefaultAccentColor {
		t.Fatalf("unexpected shop: %+v", first)
	}

	second, err := svc.Create(ctx, shops.CreateInput{OwnerID: "owner-2", Name: "Corner  Cafe", AccentColor: "#0f0"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if second.Slug != "corner-cafe-2" {
		t.Fatalf("expected corner-cafe-2, got %s", second.Slug)
	}
	if second.AccentColor != "#00ff00" {
		t.Fatalf("expected normalized color, got %s", second.AccentColor)
	}

	fetched, err := svc.GetBySlug(ctx, "Corner-Cafe-2")
	if err != nil {
		t.Fatalf("get by slug failed: %v", err)
	}
	if fetched.ID != second.ID {
		t.Fatalf("slug lookup returned wrong shop")
	}
}

func TestUpdateRequiresOwnerOrAdmin(t *testing.T) {
	svc := shops.NewService(memory.NewShopRepository())
	ctx := context.Background()

	shop, err := svc.Create(ctx, shops.CreateInput{OwnerID: "owner", Name: "Bike Hub"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	name := "Bike Hub Downtown"
	if _, err := svc.Update(ctx, shop.ID, shops.Actor{ProfileID: "stranger"}, shops.UpdateInput{Name: &name}); !errors.Is(err, shops.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	updated, err := svc.Update(ctx, shop.ID, shops.Actor{ProfileID: "owner"}, shops.UpdateInput{Name: &name})
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if updated.Name != name || updated.Slug != "bike-hub" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	color := "#123456"
	if _, err := svc.Update(ctx, shop.ID, shops.Actor{ProfileID: "admin", Admin: true}, shops.UpdateInput{AccentColor: &color}); err != nil {
		t.Fatalf("admin update failed: %v", err)
	}
}

func TestCreateRejectsMissingFields(t *testing.T) {
	svc := shops.NewService(memory.NewShopRepository())
	ctx := context.Background()

	if _, err := svc.Create(ctx, shops.CreateInput{OwnerID: "owner-1", Name: "   "}); !errors.Is(err, shops.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank name, got %v", err)
	}
	if _, err := svc.Create(ctx, shops.CreateInput{Name: "Corner Store"}); !errors.Is(err, shops.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing owner, got %v", err)
	}
}
