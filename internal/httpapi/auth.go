package httpapi

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/brightpixel/agencyportal/internal/auth"
	"github.com/brightpixel/agencyportal/internal/domain/profiles"
)

func registerAuthRoutes(mux *http.ServeMux, logger *slog.Logger, guard *auth.Middleware, issuer *auth.Issuer, service profiles.Service) {
	mux.HandleFunc("POST /v1/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var payload profiles.RegisterInput
		if !decodeJSON(w, r, &payload) {
			return
		}

		profile, err := service.Register(r.Context(), payload)
		if err != nil {
			switch {
			case errors.Is(err, profiles.ErrEmailExists):
				respondError(w, http.StatusConflict, "email already in use")
			case errors.Is(err, profiles.ErrInvalidInput):
				respondError(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, profiles.ErrNotImplemented):
				respondError(w, http.StatusNotImplemented, "registration not yet implemented")
			default:
				logger.Error("register profile failed", "err", err)
				respondError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		respondSession(w, logger, issuer, http.StatusCreated, profile)
	})

	mux.HandleFunc("POST /v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if !decodeJSON(w, r, &payload) {
			return
		}

		profile, err := service.Authenticate(r.Context(), payload.Email, payload.Password)
		if err != nil {
			switch {
			case errors.Is(err, profiles.ErrNotFound), errors.Is(err, profiles.ErrInvalidPassword):
				respondError(w, http.StatusUnauthorized, "invalid credentials")
			case errors.Is(err, profiles.ErrInvalidInput):
				respondError(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, profiles.ErrNotImplemented):
				respondError(w, http.StatusNotImplemented, "login not yet implemented")
			default:
				logger.Error("login failed", "err", err)
				respondError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		respondSession(w, logger, issuer, http.StatusOK, profile)
	})

	mux.HandleFunc("GET /v1/auth/me", guard.Authenticated(func(w http.ResponseWriter, r *http.Request) {
		profile, err := service.Get(r.Context(), principal(r).ProfileID)
		if err != nil {
			if errors.Is(err, profiles.ErrNotFound) {
				respondError(w, http.StatusUnauthorized, "profile no longer exists")
				return
			}
			logger.Error("get profile failed", "err", err)
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		respondJSON(w, http.StatusOK, profile)
	}))
}

func respondSession(w http.ResponseWriter, logger *slog.Logger, issuer *auth.Issuer, status int, profile profiles.Profile) {
	token, err := issuer.Issue(profile.ID, string(profile.Role))
	if err != nil {
		logger.Error("issue token failed", "err", err, "profile_id", profile.ID)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, status, map[string]any{
		"profile": profile,
		"token":   token,
	})
}
