package domain

import (
	"github.com/brightpixel/agencyportal/internal/domain/profiles"
	"github.com/brightpixel/agencyportal/internal/domain/projects"
	"github.com/brightpixel/agencyportal/internal/domain/questionnaire"
	"github.com/brightpixel/agencyportal/internal/domain/shops"
	"github.com/brightpixel/agencyportal/internal/domain/tickets"
	"github.com/brightpixel/agencyportal/internal/domain/wallet"
)

// Container wires domain services together.
type Container struct {
	Profiles      profiles.Service
	Tickets       tickets.Service
	Shops         shops.Service
	Wallet        wallet.Service
	Projects      projects.Service
	Questionnaire questionnaire.Definition
}

// Options configures the domain container.
type Options struct {
	ProfileRepo profiles.Repository
	TicketRepo  tickets.Repository
	ShopRepo    shops.Repository
	WalletRepo  wallet.Repository
	ProjectRepo projects.Repository

	BulkConcurrency int
	// Questionnaire overrides questionnaire.Default when it has steps.
	Questionnaire questionnaire.Definition
}

// New constructs a domain container with provided repositories.
func New(opts Options) Container {
	profileRepo := opts.ProfileRepo
	if profileRepo == nil {
		profileRepo = profiles.NullRepository{}
	}

	ticketRepo := opts.TicketRepo
	if ticketRepo == nil {
		ticketRepo = tickets.NullRepository{}
	}

	shopRepo := opts.ShopRepo
	if shopRepo == nil {
		shopRepo = shops.NullRepository{}
	}

	walletRepo := opts.WalletRepo
	if walletRepo == nil {
		walletRepo = wallet.NullRepository{}
	}

	projectRepo := opts.ProjectRepo
	if projectRepo == nil {
		projectRepo = projects.NullRepository{}
	}

	intake := opts.Questionnaire
	if len(intake.Steps) == 0 {
		intake = questionnaire.Default()
	}

	return Container{
		Profiles:      profiles.NewService(profileRepo),
		Tickets:       tickets.NewService(ticketRepo, tickets.Options{BulkConcurrency: opts.BulkConcurrency}),
		Shops:         shops.NewService(shopRepo),
		Wallet:        wallet.NewService(walletRepo, shopRepo),
		Projects:      projects.NewService(projectRepo),
		Questionnaire: intake,
	}
}
