package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"log/slog"

	"github.com/brightpixel/agencyportal/internal/domain/questionnaire"
	"github.com/brightpixel/agencyportal/internal/domain/tickets"
	"github.com/brightpixel/agencyportal/internal/notify"
)

type publicDeps struct {
	questionnaire questionnaire.Definition
	tickets       tickets.Service
	notifier      notify.Notifier
	notifyTimeout time.Duration
}

// registerPublicRoutes exposes unauthenticated endpoints for the intake
// wizard, ticket submission and contact notifications.
func registerPublicRoutes(mux *http.ServeMux, logger *slog.Logger, deps publicDeps) {
	def := deps.questionnaire

	mux.HandleFunc("GET /public/questionnaire", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{
			"definition": def,
			"state":      def.Start(),
		})
	})

	mux.HandleFunc("POST /public/questionnaire/answer", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			State  questionnaire.State `json:"state"`
			StepID string              `json:"step_id"`
			Value  string              `json:"value"`
		}
		if !decodeJSON(w, r, &payload) {
			return
		}

		next, err := def.Answer(payload.State, payload.StepID, payload.Value)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"state": next})
	})

	mux.HandleFunc("POST /public/questionnaire/back", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			State questionnaire.State `json:"state"`
		}
		if !decodeJSON(w, r, &payload) {
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"state": def.Back(payload.State)})
	})

	mux.HandleFunc("POST /public/questionnaire/summary", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			State questionnaire.State `json:"state"`
		}
		if !decodeJSON(w, r, &payload) {
			return
		}
		lines, err := def.Summary(payload.State)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"summary": lines})
	})

	mux.HandleFunc("POST /public/intake", func(w http.ResponseWriter, r *http.Request) {
		var payload IntakeRequest
		if !decodeJSON(w, r, &payload) {
			return
		}

		answers, err := def.Complete(payload.State)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		ticket, err := deps.tickets.Submit(r.Context(), tickets.SubmitInput{
			Name:    payload.Name,
			Email:   payload.Email,
			Phone:   payload.Phone,
			Company: payload.Company,
			Message: payload.Message,
			Answers: answers,
			Source:  payload.Source,
		})
		if err != nil {
			var verr *tickets.ValidationError
			switch {
			case errors.As(err, &verr):
				respondError(w, http.StatusBadRequest, verr.Error())
			case errors.Is(err, tickets.ErrNotImplemented):
				respondError(w, http.StatusNotImplemented, "ticket intake not yet implemented")
			default:
				logger.Error("submit ticket failed", "err", err)
				respondError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		logger.Info("ticket_received",
			"ticket_id", ticket.ID,
			"service", ticket.Answers["service"],
			"source", ticket.Source,
		)

		// Notification failures never fail the submission.
		note := notify.Notification{
			Kind:    notify.KindTicket,
			Name:    ticket.Name,
			Email:   ticket.Email,
			Phone:   ticket.Phone,
			Company: ticket.Company,
			Message: ticket.Message,
		}
		note.Normalize()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), deps.notifyTimeout)
		defer cancel()
		if err := deps.notifier.Send(ctx, note); err != nil {
			logger.Warn("ticket notification failed", "err", err, "ticket_id", ticket.ID)
		}

		respondJSON(w, http.StatusCreated, map[string]any{
			"status": "received",
			"ticket": map[string]any{
				"id":         ticket.ID,
				"status":     ticket.Status,
				"created_at": ticket.CreatedAt,
			},
		})
	})

	mux.HandleFunc("POST /api/notify", func(w http.ResponseWriter, r *http.Request) {
		var note notify.Notification
		if !decodeJSON(w, r, &note) {
			return
		}
		note.Normalize()
		if err := note.Validate(); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), deps.notifyTimeout)
		defer cancel()
		if err := deps.notifier.Send(ctx, note); err != nil {
			logger.Error("notification failed", "err", err, "kind", note.Kind)
			respondError(w, http.StatusBadGateway, "notification could not be delivered")
			return
		}

		respondJSON(w, http.StatusAccepted, map[string]any{
			"status":  "accepted",
			"message": "notification sent",
		})
	})
}

// IntakeRequest is the final wizard submission: the completed questionnaire
// state plus contact details.
type IntakeRequest struct {
	State   questionnaire.State `json:"state"`
	Name    string              `json:"name"`
	Email   string              `json:"email"`
	Phone   string              `json:"phone,omitempty"`
	Company string              `json:"company,omitempty"`
	Message string              `json:"message,omitempty"`
	Source  string              `json:"source,omitempty"`
}
