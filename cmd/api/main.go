package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"log/slog"

	"github.com/brightpixel/agencyportal/internal/auth"
	"github.com/brightpixel/agencyportal/internal/config"
	"github.com/brightpixel/agencyportal/internal/database"
	"github.com/brightpixel/agencyportal/internal/domain"
	"github.com/brightpixel/agencyportal/internal/domain/questionnaire"
	"github.com/brightpixel/agencyportal/internal/httpapi"
	"github.com/brightpixel/agencyportal/internal/logger"
	"github.com/brightpixel/agencyportal/internal/notify"
	"github.com/brightpixel/agencyportal/internal/server"
	"github.com/brightpixel/agencyportal/internal/storage/memory"
	pgstorage "github.com/brightpixel/agencyportal/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logr := logger.New(cfg.Env)

	baseCtx := context.Background()

	var db *database.DB
	if cfg.DataBackend == "postgres" {
		db, err = database.Connect(baseCtx, database.OptionsFromConfig(cfg, logr))
		if err != nil {
			logr.Error("failed to connect database", "err", err)
			os.Exit(1)
		}
		defer func() {
			if cerr := db.Close(); cerr != nil {
				logr.Error("error closing database", "err", cerr)
			}
		}()

		migrator := database.NewGooseMigrator(db.DB, database.MigrationsFS(), logr)
		if err := db.RunMigrations(baseCtx, migrator); err != nil {
			logr.Error("database migrations failed", "err", err)
			os.Exit(1)
		}
	}

	domainContainer, err := buildDomainContainer(cfg, logr, db)
	if err != nil {
		logr.Error("failed to init domain container", "err", err)
		os.Exit(1)
	}

	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiry)
	if err != nil {
		logr.Error("failed to init token issuer", "err", err)
		os.Exit(1)
	}

	notifier, err := buildNotifier(cfg, logr)
	if err != nil {
		logr.Error("failed to init notifier", "err", err)
		os.Exit(1)
	}

	srv := server.New(cfg, logr)
	if db != nil {
		srv.SetReadiness(db.Ready)
	}

	httpapi.Register(srv.Mux(), logr, domainContainer, httpapi.Options{
		Issuer:        issuer,
		Notifier:      notifier,
		NotifyTimeout: cfg.NotifyTimeout,
	})

	go func() {
		if err := srv.Run(); err != nil {
			logr.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("server shutdown failed", "err", err)
		os.Exit(1)
	}
}

func buildDomainContainer(cfg config.Config, logr *slog.Logger, db *database.DB) (domain.Container, error) {
	var intake questionnaire.Definition
	if cfg.QuestionnaireFile != "" {
		def, err := questionnaire.LoadFile(cfg.QuestionnaireFile)
		if err != nil {
			return domain.Container{}, fmt.Errorf("load questionnaire: %w", err)
		}
		logr.Info("loaded questionnaire", "file", cfg.QuestionnaireFile, "steps", len(def.Steps))
		intake = def
	}

	switch cfg.DataBackend {
	case "memory":
		logr.Info("using in-memory repositories (DATA_BACKEND=memory)")
		return domain.New(domain.Options{
			ProfileRepo:     memory.NewProfileRepository(),
			TicketRepo:      memory.NewTicketRepository(),
			ShopRepo:        memory.NewShopRepository(),
			WalletRepo:      memory.NewWalletRepository(),
			ProjectRepo:     memory.NewProjectRepository(),
			BulkConcurrency: cfg.BulkConcurrency,
			Questionnaire:   intake,
		}), nil
	case "postgres":
		if db == nil {
			return domain.Container{}, fmt.Errorf("postgres backend requires database connection")
		}
		logr.Info("using postgres repositories (DATA_BACKEND=postgres)")
		sqlDB := db.DB
		return domain.New(domain.Options{
			ProfileRepo:     pgstorage.NewProfileRepository(sqlDB),
			TicketRepo:      pgstorage.NewTicketRepository(sqlDB),
			ShopRepo:        pgstorage.NewShopRepository(sqlDB),
			WalletRepo:      pgstorage.NewWalletRepository(sqlDB),
			ProjectRepo:     pgstorage.NewProjectRepository(sqlDB),
			BulkConcurrency: cfg.BulkConcurrency,
			Questionnaire:   intake,
		}), nil
	default:
		return domain.Container{}, fmt.Errorf("unsupported data backend: %s", cfg.DataBackend)
	}
}

func buildNotifier(cfg config.Config, logr *slog.Logger) (notify.Notifier, error) {
	switch cfg.NotifyBackend {
	case "log":
		return notify.LogNotifier{Logger: logr}, nil
	case "smtp":
		logr.Info("sending notifications over smtp", "addr", cfg.SMTPAddr, "recipients", len(cfg.NotifyTo))
		return notify.NewSMTPNotifier(notify.SMTPOptions{
			Addr:     cfg.SMTPAddr,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.NotifyFrom,
			To:       cfg.NotifyTo,
		})
	default:
		return nil, fmt.Errorf("unsupported notify backend: %s", cfg.NotifyBackend)
	}
}
