package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brightpixel/agencyportal/internal/domain/profiles"
)

func createAdminCmd(sess *session) *cobra.Command {
	var email, name, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin profile for the ticket queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := sess.services.Profiles.CreateAdmin(cmd.Context(), profiles.RegisterInput{
				Email:    email,
				Name:     name,
				Password: password,
			})
			if errors.Is(err, profiles.ErrEmailExists) {
				return fmt.Errorf("a profile already exists for %s", email)
			}
			if err != nil {
				return err
			}

			sess.log.Info("admin created", "profile_id", profile.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Admin: %s (%s)\n", profile.Email, profile.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email address")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "initial password (min 8 characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
