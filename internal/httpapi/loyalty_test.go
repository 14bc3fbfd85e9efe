package httpapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brightpixel/agencyportal/internal/domain/shops"
	"github.com/brightpixel/agencyportal/internal/domain/wallet"
)

func createShop(t *testing.T, api *testAPI, token, name string) shops.Shop {
	t.Helper()
	rec := api.do(http.MethodPost, "/v1/shops", token, map[string]string{"name": name, "accent_color": "#0af"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[shops.Shop](t, rec)
}

func TestShopLifecycle(t *testing.T) {
	api := newTestAPI(t)
	owner := api.token("owner-1", "client")
	other := api.token("other-1", "client")

	rec := api.do(http.MethodPost, "/v1/shops", "", map[string]string{"name": "Bean There"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	first := createShop(t, api, owner, "Bean There")
	require.Equal(t, "bean-there", first.Slug)
	require.Equal(t, "#00aaff", first.AccentColor)
	require.Equal(t, "owner-1", first.OwnerID)

	second := createShop(t, api, other, "Bean There!")
	require.Equal(t, "bean-there-2", second.Slug)

	rec = api.do(http.MethodGet, "/v1/shops/bean-there", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, first.ID, decode[shops.Shop](t, rec).ID)

	rec = api.do(http.MethodGet, "/v1/shops/nope", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodGet, "/v1/shops", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 2, decode[map[string]any](t, rec)["count"])

	rec = api.do(http.MethodPatch, "/v1/shops/"+first.ID, other, map[string]string{"name": "Stolen"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPatch, "/v1/shops/"+first.ID, owner, map[string]string{"accent_color": "teal"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPatch, "/v1/shops/"+first.ID, api.token("admin-1", "admin"), map[string]string{"description": "Fresh roasts"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[shops.Shop](t, rec)
	require.Equal(t, "Fresh roasts", updated.Description)
	require.Equal(t, "bean-there", updated.Slug)
}

func TestWalletJoinAndPoints(t *testing.T) {
	api := newTestAPI(t)
	owner := api.token("owner-1", "client")
	member := api.token("member-1", "client")
	shop := createShop(t, api, owner, "Daily Grind")

	rec := api.do(http.MethodPost, "/v1/wallet/cards", member, map[string]string{"shop_slug": "daily-grind"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	card := decode[wallet.Card](t, rec)
	require.Equal(t, shop.ID, card.ShopID)
	require.Equal(t, wallet.TierBronze, card.Tier)

	rec = api.do(http.MethodPost, "/v1/wallet/cards", member, map[string]string{"shop_id": shop.ID})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(http.MethodPost, "/v1/wallet/cards", member, map[string]string{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/v1/wallet/cards", member, map[string]string{"shop_slug": "ghost"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	pointsPath := "/v1/wallet/cards/" + card.ID + "/points"

	rec = api.do(http.MethodPost, pointsPath, member, map[string]int{"delta": 500})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPost, pointsPath, owner, map[string]int{"delta": 300})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	card = decode[wallet.Card](t, rec)
	require.Equal(t, 300, card.Points)
	require.Equal(t, wallet.TierSilver, card.Tier)

	rec = api.do(http.MethodPost, pointsPath, api.token("admin-1", "admin"), map[string]int{"delta": 700})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, wallet.TierGold, decode[wallet.Card](t, rec).Tier)

	rec = api.do(http.MethodPost, pointsPath, owner, map[string]int{"delta": -5000})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = api.do(http.MethodPost, pointsPath, owner, map[string]int{"delta": 0})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/v1/wallet", member, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Data  []wallet.Entry `json:"data"`
		Count int            `json:"count"`
	}](t, rec)
	require.Equal(t, 1, list.Count)
	require.Equal(t, "Daily Grind", list.Data[0].ShopName)
	require.Equal(t, "daily-grind", list.Data[0].ShopSlug)
	require.Equal(t, 1000, list.Data[0].Points)
}
