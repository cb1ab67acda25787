package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Store backends.
const (
	BackendPostgres = "postgres"
	BackendSheets   = "sheets"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"moneybook"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	Store struct {
		// Backend selects where transactions and settings live:
		// "postgres" or "sheets".
		Backend  string        `envconfig:"STORE_BACKEND" default:"postgres"`
		CacheTTL time.Duration `envconfig:"STORE_CACHE_TTL" default:"30s"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"moneybook"`
	}

	Sheets struct {
		SpreadsheetID   string `envconfig:"SHEETS_SPREADSHEET_ID"`
		CredentialsFile string `envconfig:"SHEETS_CREDENTIALS_FILE" default:"credentials.json"`
	}

	Auth struct {
		Secret     string        `envconfig:"AUTH_SECRET" default:"change-me"`
		SessionTTL time.Duration `envconfig:"AUTH_SESSION_TTL" default:"12h"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Store.Backend != BackendPostgres && cfg.Store.Backend != BackendSheets {
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	return &cfg, nil
}
