package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Env               string        `env:"APP_ENV" envDefault:"development"`
	HTTPPort          int           `env:"HTTP_PORT" envDefault:"8080"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"5s"`
	CORSAllowedOrigin string        `env:"CORS_ALLOWED_ORIGIN"`

	DataBackend string `env:"DATA_BACKEND" envDefault:"memory"`

	DatabaseDriver    string        `env:"DATABASE_DRIVER" envDefault:"pgx"`
	DatabaseURL       string        `env:"DATABASE_URL"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1h"`
	DBConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"30m"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTIssuer string        `env:"JWT_ISSUER" envDefault:"agency-portal"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`

	NotifyBackend string        `env:"NOTIFY_BACKEND" envDefault:"log"`
	NotifyTo      []string      `env:"NOTIFY_TO" envSeparator:","`
	NotifyFrom    string        `env:"NOTIFY_FROM"`
	NotifyTimeout time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"10s"`
	SMTPAddr      string        `env:"SMTP_ADDR"`
	SMTPUsername  string        `env:"SMTP_USERNAME"`
	SMTPPassword  string        `env:"SMTP_PASSWORD"`

	BulkConcurrency int `env:"BULK_CONCURRENCY" envDefault:"4"`

	// QuestionnaireFile optionally replaces the built-in intake steps.
	QuestionnaireFile string `env:"QUESTIONNAIRE_FILE"`
}

const dotenvFile = ".env"

// Load reads configuration values from the environment, applying defaults
// where necessary. Values from a local .env file fill gaps but never
// override the real environment.
func Load() (Config, error) {
	return load(Config.Validate)
}

// LoadStorage reads the same environment as Load but only checks the
// storage settings. Tooling that never signs tokens or sends mail uses it.
func LoadStorage() (Config, error) {
	return load(Config.ValidateStorage)
}

func load(validate func(Config) error) (Config, error) {
	if err := godotenv.Load(dotenvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", dotenvFile, err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ValidateStorage checks the data backend and bulk settings.
func (cfg Config) ValidateStorage() error {
	switch cfg.DataBackend {
	case "memory":
		// no-op
	case "postgres":
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DATA_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("unknown DATA_BACKEND value: %s", cfg.DataBackend)
	}

	if cfg.BulkConcurrency <= 0 {
		return fmt.Errorf("BULK_CONCURRENCY must be positive")
	}
	return nil
}

// Validate checks cross-field requirements.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if err := cfg.ValidateStorage(); err != nil {
		return err
	}

	switch cfg.NotifyBackend {
	case "log":
	case "smtp":
		if cfg.SMTPAddr == "" {
			return fmt.Errorf("SMTP_ADDR is required when NOTIFY_BACKEND=smtp")
		}
		if cfg.NotifyFrom == "" || len(cfg.NotifyTo) == 0 {
			return fmt.Errorf("NOTIFY_FROM and NOTIFY_TO are required when NOTIFY_BACKEND=smtp")
		}
	default:
		return fmt.Errorf("unknown NOTIFY_BACKEND value: %s", cfg.NotifyBackend)
	}
	return nil
}
