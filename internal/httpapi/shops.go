package httpapi

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/brightpixel/agencyportal/internal/auth"
	"github.com/brightpixel/agencyportal/internal/domain/shops"
)

func registerShopRoutes(mux *http.ServeMux, logger *slog.Logger, guard *auth.Middleware, service shops.Service) {
	mux.HandleFunc("GET /v1/shops", func(w http.ResponseWriter, r *http.Request) {
		offset, limit, ok := parsePagination(w, r)
		if !ok {
			return
		}
		list, err := service.List(r.Context(), offset, limit)
		if err != nil {
			writeShopError(w, logger, "list shops", err)
			return
		}
		respondList(w, list)
	})

	mux.HandleFunc("GET /v1/shops/{slug}", func(w http.ResponseWriter, r *http.Request) {
		shop, err := service.GetBySlug(r.Context(), r.PathValue("slug"))
		if err != nil {
			writeShopError(w, logger, "get shop", err)
			return
		}
		respondJSON(w, http.StatusOK, shop)
	})

	mux.HandleFunc("POST /v1/shops", guard.Authenticated(func(w http.ResponseWriter, r *http.Request) {
		var input shops.CreateInput
		if !decodeJSON(w, r, &input) {
			return
		}
		input.OwnerID = principal(r).ProfileID

		shop, err := service.Create(r.Context(), input)
		if err != nil {
			writeShopError(w, logger, "create shop", err)
			return
		}
		logger.Info("shop created", "shop_id", shop.ID, "slug", shop.Slug, "owner_id", shop.OwnerID)
		respondJSON(w, http.StatusCreated, shop)
	}))

	mux.HandleFunc("PATCH /v1/shops/{id}", guard.Authenticated(func(w http.ResponseWriter, r *http.Request) {
		var input shops.UpdateInput
		if !decodeJSON(w, r, &input) {
			return
		}

		shop, err := service.Update(r.Context(), r.PathValue("id"), actorFor(r), input)
		if err != nil {
			writeShopError(w, logger, "update shop", err)
			return
		}
		respondJSON(w, http.StatusOK, shop)
	}))
}

func actorFor(r *http.Request) shops.Actor {
	p := principal(r)
	return shops.Actor{ProfileID: p.ProfileID, Admin: isAdmin(p)}
}

func writeShopError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, shops.ErrNotFound):
		respondError(w, http.StatusNotFound, "shop not found")
	case errors.Is(err, shops.ErrForbidden):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, shops.ErrSlugTaken):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, shops.ErrInvalidInput), errors.Is(err, shops.ErrInvalidColor):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shops.ErrNotImplemented):
		respondError(w, http.StatusNotImplemented, op+" not yet implemented")
	default:
		logger.Error(op+" failed", "err", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
