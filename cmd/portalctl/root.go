package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/brightpixel/agencyportal/internal/config"
	"github.com/brightpixel/agencyportal/internal/database"
	"github.com/brightpixel/agencyportal/internal/domain"
	"github.com/brightpixel/agencyportal/internal/logger"
	pgstorage "github.com/brightpixel/agencyportal/internal/storage/postgres"
)

// session holds what every subcommand needs once the database is open.
type session struct {
	cfg      config.Config
	log      *slog.Logger
	db       *database.DB
	services domain.Container
}

// close releases the database handle if one was opened. Cobra skips post-run
// hooks when a command fails, so main calls it after Execute.
func (s *session) close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func newRootCmd(sess *session) *cobra.Command {
	root := &cobra.Command{
		Use:          "portalctl",
		Short:        "Operational tasks for the agency portal database",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadStorage()
			if err != nil {
				return err
			}
			sess.cfg = cfg
			sess.log = logger.New(cfg.Env)

			if cfg.DataBackend != "postgres" {
				return errors.New("portalctl requires DATA_BACKEND=postgres")
			}

			db, err := database.Connect(cmd.Context(), database.OptionsFromConfig(cfg, sess.log))
			if err != nil {
				return err
			}
			sess.db = db
			sess.services = domain.New(domain.Options{
				ProfileRepo:     pgstorage.NewProfileRepository(db.DB),
				TicketRepo:      pgstorage.NewTicketRepository(db.DB),
				ShopRepo:        pgstorage.NewShopRepository(db.DB),
				WalletRepo:      pgstorage.NewWalletRepository(db.DB),
				ProjectRepo:     pgstorage.NewProjectRepository(db.DB),
				BulkConcurrency: cfg.BulkConcurrency,
			})
			return nil
		},
	}

	root.AddCommand(migrateCmd(sess), seedCmd(sess), createAdminCmd(sess))
	return root
}

func (s *session) migrate(cmd *cobra.Command) error {
	migrator := database.NewGooseMigrator(s.db.DB, database.MigrationsFS(), s.log)
	return s.db.RunMigrations(cmd.Context(), migrator)
}

func migrateCmd(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return sess.migrate(cmd)
		},
	}
}
