package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/brightpixel/agencyportal/internal/domain/profiles"
	"github.com/brightpixel/agencyportal/internal/domain/projects"
	"github.com/brightpixel/agencyportal/internal/domain/shops"
	"github.com/brightpixel/agencyportal/internal/domain/tickets"
)

const seedPassword = "changeme123"

func seedCmd(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Migrate and load demo tickets, a shop, a wallet card and a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sess.migrate(cmd); err != nil {
				return err
			}
			ctx := cmd.Context()
			svc := sess.services
			out := cmd.OutOrStdout()

			client, err := svc.Profiles.Register(ctx, profiles.RegisterInput{
				Email:    "client@example.com",
				Name:     "Demo Client",
				Password: seedPassword,
			})
			if errors.Is(err, profiles.ErrEmailExists) {
				sess.log.Info("seed data already present; skipping")
				return nil
			}
			if err != nil {
				return fmt.Errorf("seed client: %w", err)
			}

			sampleTickets := []tickets.SubmitInput{
				{
					Name: "Alex Rivera", Email: "alex@example.com", Company: "Rivera Bakery",
					Message: "Our site is slow on mobile.",
					Answers: map[string]string{"service": "web_design", "budget": "5k_15k", "timeline": "asap"},
					Source:  "homepage",
				},
				{
					Name: "Jordan Lee", Phone: "904-555-0202",
					Message: "Looking for a new logo.",
					Answers: map[string]string{"service": "branding", "budget": "under_5k", "timeline": "flexible"},
					Source:  "pricing",
				},
			}
			for _, in := range sampleTickets {
				ticket, err := svc.Tickets.Submit(ctx, in)
				if err != nil {
					return fmt.Errorf("seed ticket %s: %w", in.Name, err)
				}
				sess.log.Info("seeded ticket", "ticket_id", ticket.ID)
			}

			shop, err := svc.Shops.Create(ctx, shops.CreateInput{
				OwnerID:     client.ID,
				Name:        "Rivera Bakery",
				AccentColor: "#b45309",
				Description: "Fresh bread daily.",
			})
			if err != nil {
				return fmt.Errorf("seed shop: %w", err)
			}

			card, err := svc.Wallet.Join(ctx, client.ID, shop.ID)
			if err != nil {
				return fmt.Errorf("seed wallet card: %w", err)
			}
			card, err = svc.Wallet.AdjustPoints(ctx, card.ID, shops.Actor{Admin: true}, 320)
			if err != nil {
				return fmt.Errorf("seed wallet points: %w", err)
			}

			due := time.Now().UTC().AddDate(0, 1, 0)
			project, err := svc.Projects.Create(ctx, projects.CreateInput{
				ClientID: client.ID,
				Name:     "Bakery site relaunch",
				Milestones: []projects.MilestoneInput{
					{Title: "Discovery"},
					{Title: "Design"},
					{Title: "Launch", DueDate: &due},
				},
			})
			if err != nil {
				return fmt.Errorf("seed project: %w", err)
			}

			fmt.Fprintf(out, "Client: %s / %s\n", client.Email, seedPassword)
			fmt.Fprintf(out, "Shop: %s (/v1/shops/%s)\n", shop.Name, shop.Slug)
			fmt.Fprintf(out, "Wallet card: %s (%d points, %s)\n", card.ID, card.Points, card.Tier)
			fmt.Fprintf(out, "Project: %s (%s)\n", project.Name, project.ID)
			sess.log.Info("seed complete")
			return nil
		},
	}
}
