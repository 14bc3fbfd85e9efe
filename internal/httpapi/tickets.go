package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"log/slog"

	"github.com/brightpixel/agencyportal/internal/auth"
	"github.com/brightpixel/agencyportal/internal/domain/profiles"
	"github.com/brightpixel/agencyportal/internal/domain/tickets"
)

func registerTicketRoutes(mux *http.ServeMux, logger *slog.Logger, guard *auth.Middleware, service tickets.Service) {
	admin := func(h func(http.ResponseWriter, *http.Request, *slog.Logger, tickets.Service)) http.HandlerFunc {
		return guard.RequireRole(string(profiles.RoleAdmin), func(w http.ResponseWriter, r *http.Request) {
			h(w, r, logger, service)
		})
	}

	mux.HandleFunc("GET /v1/admin/tickets", admin(handleTicketList))
	mux.HandleFunc("GET /v1/admin/tickets/stats", admin(handleTicketStats))
	mux.HandleFunc("POST /v1/admin/tickets/bulk", admin(handleTicketBulk))
	mux.HandleFunc("GET /v1/admin/tickets/{id}", admin(handleTicketGet))
	mux.HandleFunc("PATCH /v1/admin/tickets/{id}", admin(handleTicketUpdateStatus))
	mux.HandleFunc("DELETE /v1/admin/tickets/{id}", admin(handleTicketDelete))
}

func handleTicketList(w http.ResponseWriter, r *http.Request, logger *slog.Logger, service tickets.Service) {
	offset, limit, ok := parsePagination(w, r)
	if !ok {
		return
	}

	params := r.URL.Query()
	query := tickets.ListQuery{
		Status: tickets.Status(strings.TrimSpace(params.Get("status"))),
		Search: params.Get("q"),
		Sort:   tickets.SortField(strings.TrimSpace(params.Get("sort"))),
		Offset: offset,
		Limit:  limit,
	}
	switch strings.ToLower(params.Get("order")) {
	case "", "desc":
	case "asc":
		query.Asc = true
	default:
		respondError(w, http.StatusBadRequest, "order must be asc or desc")
		return
	}

	page, err := service.List(r.Context(), query)
	if err != nil {
		writeTicketError(w, logger, "list tickets", err)
		return
	}
	if page.Tickets == nil {
		page.Tickets = []tickets.Ticket{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data":   page.Tickets,
		"count":  len(page.Tickets),
		"total":  page.Total,
		"offset": page.Offset,
		"limit":  page.Limit,
	})
}

func handleTicketStats(w http.ResponseWriter, r *http.Request, logger *slog.Logger, service tickets.Service) {
	counts, err := service.CountByStatus(r.Context())
	if err != nil {
		writeTicketError(w, logger, "count tickets", err)
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"by_status": counts,
		"total":     total,
	})
}

func handleTicketGet(w http.ResponseWriter, r *http.Request, logger *slog.Logger, service tickets.Service) {
	ticket, err := service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeTicketError(w, logger, "get ticket", err)
		return
	}
	respondJSON(w, http.StatusOK, ticket)
}

func handleTicketUpdateStatus(w http.ResponseWriter, r *http.Request, logger *slog.Logger, service tickets.Service) {
	var payload struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	status := tickets.Status(strings.TrimSpace(payload.Status))
	if status == "" {
		respondError(w, http.StatusBadRequest, "status is required")
		return
	}

	ticket, err := service.UpdateStatus(r.Context(), r.PathValue("id"), status)
	if err != nil {
		writeTicketError(w, logger, "update ticket status", err)
		return
	}
	respondJSON(w, http.StatusOK, ticket)
}

func handleTicketDelete(w http.ResponseWriter, r *http.Request, logger *slog.Logger, service tickets.Service) {
	if err := service.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeTicketError(w, logger, "delete ticket", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handleTicketBulk(w http.ResponseWriter, r *http.Request, logger *slog.Logger, service tickets.Service) {
	var input tickets.BulkInput
	if !decodeJSON(w, r, &input) {
		return
	}

	result, err := service.Bulk(r.Context(), input)
	if err != nil {
		writeTicketError(w, logger, "bulk ticket action", err)
		return
	}

	logger.Info("ticket bulk action",
		"action", result.Action,
		"succeeded", len(result.Succeeded),
		"failed", len(result.Failed),
	)
	for _, f := range result.Failed {
		logger.Warn("ticket bulk row failed", "id", f.ID, "err", f.Cause)
	}
	respondJSON(w, http.StatusOK, result)
}

func writeTicketError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, tickets.ErrNotFound):
		respondError(w, http.StatusNotFound, "ticket not found")
	case errors.Is(err, tickets.ErrInvalidStatus),
		errors.Is(err, tickets.ErrInvalidSort),
		errors.Is(err, tickets.ErrInvalidBulkAction),
		errors.Is(err, tickets.ErrEmptyBulk):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, tickets.ErrNotImplemented):
		respondError(w, http.StatusNotImplemented, op+" not yet implemented")
	default:
		logger.Error(op+" failed", "err", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
