package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"log/slog"

	"github.com/brightpixel/agencyportal/internal/auth"
	"github.com/brightpixel/agencyportal/internal/domain"
	"github.com/brightpixel/agencyportal/internal/notify"
)

// Options carries the collaborators shared across route groups.
type Options struct {
	Issuer        *auth.Issuer
	Notifier      notify.Notifier
	NotifyTimeout time.Duration
}

// Register attaches API routes to the provided mux.
func Register(mux *http.ServeMux, logger *slog.Logger, domainServices domain.Container, opts Options) {
	mux.HandleFunc("GET /v1/ping", func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"status":  "ok",
			"time":    time.Now().UTC().Format(time.RFC3339),
			"server":  "agency-portal",
			"version": "v1",
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Error("failed to write ping response", "err", err)
		}
	})

	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.LogNotifier{Logger: logger}
	}
	timeout := opts.NotifyTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	guard := auth.NewMiddleware(opts.Issuer, respondError)

	registerAuthRoutes(mux, logger, guard, opts.Issuer, domainServices.Profiles)
	registerPublicRoutes(mux, logger, publicDeps{
		questionnaire: domainServices.Questionnaire,
		tickets:       domainServices.Tickets,
		notifier:      notifier,
		notifyTimeout: timeout,
	})
	registerTicketRoutes(mux, logger, guard, domainServices.Tickets)
	registerShopRoutes(mux, logger, guard, domainServices.Shops)
	registerWalletRoutes(mux, logger, guard, domainServices.Wallet, domainServices.Shops)
	registerProjectRoutes(mux, logger, guard, domainServices.Projects)
}
