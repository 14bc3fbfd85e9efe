package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"log/slog"

	"github.com/brightpixel/agencyportal/internal/auth"
	"github.com/brightpixel/agencyportal/internal/domain/shops"
	"github.com/brightpixel/agencyportal/internal/domain/wallet"
)

func registerWalletRoutes(mux *http.ServeMux, logger *slog.Logger, guard *auth.Middleware, service wallet.Service, shopService shops.Service) {
	mux.HandleFunc("GET /v1/wallet", guard.Authenticated(func(w http.ResponseWriter, r *http.Request) {
		entries, err := service.ListForUser(r.Context(), principal(r).ProfileID)
		if err != nil {
			writeWalletError(w, logger, "list wallet", err)
			return
		}
		respondList(w, entries)
	}))

	mux.HandleFunc("POST /v1/wallet/cards", guard.Authenticated(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			ShopID   string `json:"shop_id"`
			ShopSlug string `json:"shop_slug"`
		}
		if !decodeJSON(w, r, &payload) {
			return
		}

		shopID := strings.TrimSpace(payload.ShopID)
		if shopID == "" && strings.TrimSpace(payload.ShopSlug) != "" {
			shop, err := shopService.GetBySlug(r.Context(), payload.ShopSlug)
			if err != nil {
				writeShopError(w, logger, "join shop", err)
				return
			}
			shopID = shop.ID
		}
		if shopID == "" {
			respondError(w, http.StatusBadRequest, "shop_id or shop_slug is required")
			return
		}

		card, err := service.Join(r.Context(), principal(r).ProfileID, shopID)
		if err != nil {
			writeWalletError(w, logger, "join shop", err)
			return
		}
		logger.Info("wallet card created", "card_id", card.ID, "shop_id", card.ShopID)
		respondJSON(w, http.StatusCreated, card)
	}))

	mux.HandleFunc("POST /v1/wallet/cards/{id}/points", guard.Authenticated(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Delta *int `json:"delta"`
		}
		if !decodeJSON(w, r, &payload) {
			return
		}
		if payload.Delta == nil || *payload.Delta == 0 {
			respondError(w, http.StatusBadRequest, "delta must be a non-zero integer")
			return
		}

		card, err := service.AdjustPoints(r.Context(), r.PathValue("id"), actorFor(r), *payload.Delta)
		if err != nil {
			writeWalletError(w, logger, "adjust points", err)
			return
		}
		respondJSON(w, http.StatusOK, card)
	}))
}

func writeWalletError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, wallet.ErrNotFound):
		respondError(w, http.StatusNotFound, "wallet card not found")
	case errors.Is(err, shops.ErrNotFound):
		respondError(w, http.StatusNotFound, "shop not found")
	case errors.Is(err, wallet.ErrForbidden):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, wallet.ErrAlreadyJoined):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, wallet.ErrInsufficientPoints):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, wallet.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, wallet.ErrNotImplemented), errors.Is(err, shops.ErrNotImplemented):
		respondError(w, http.StatusNotImplemented, op+" not yet implemented")
	default:
		logger.Error(op+" failed", "err", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
