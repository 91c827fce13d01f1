package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		SentryUrl string `env:"SENTRY_URL"`
		Timezone  string `env:"APP_TIMEZONE" env-default:"Local"`
	}
	Storage struct {
		Driver     string `env:"STORAGE_DRIVER" env-default:"sqlite"`
		SQLitePath string `env:"STORAGE_SQLITE_PATH" env-default:"./contentflow.db"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT" env-default:"5432"`
		Host    string `env:"POSTGRES_HOST" env-default:"localhost"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
	Anthropic struct {
		BaseURL   string `env:"ANTHROPIC_BASE_URL" env-default:"https://api.anthropic.com"`
		Model     string `env:"ANTHROPIC_MODEL" env-default:"claude-sonnet-4-20250514"`
		MaxTokens int64  `env:"ANTHROPIC_MAX_TOKENS" env-default:"2048"`
	}
	Chat struct {
		ProxyURL          string        `env:"CHAT_PROXY_URL" env-default:"http://localhost:8080/api/chat"`
		RateLimitRequests int           `env:"CHAT_RATE_LIMIT_REQUESTS" env-default:"30"`
		RateLimitPer      time.Duration `env:"CHAT_RATE_LIMIT_PER" env-default:"1m"`
		RateLimitBurst    int           `env:"CHAT_RATE_LIMIT_BURST" env-default:"10"`
	}
	Planner struct {
		CleanupCron string `env:"PLANNER_CLEANUP_CRON" env-default:"0 3 * * *"`
		AgendaCron  string `env:"PLANNER_AGENDA_CRON" env-default:"0 8 * * *"`
	}
	Telegram struct {
		Token       string `env:"TELEGRAM_TOKEN"`
		ChatID      int64  `env:"TELEGRAM_CHAT_ID"`
		APIEndpoint string `env:"TELEGRAM_API_ENDPOINT" env-default:"https://api.telegram.org/bot%s/%s"`
	}
}

var (
	once sync.Once
	cfg  *Config
)

func New() (*Config, error) {
	once.Do(func() {
		cfg = &Config{}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", err, help)
		}
	})
	return cfg, nil
}

// GetDSN returns the postgres connection string built from the Postgres section.
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User,
		c.Postgres.Pass,
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.Name,
		c.Postgres.SslMode,
	)
}

// Location resolves App.Timezone, falling back to the local zone.
func (c *Config) Location() *time.Location {
	if c.App.Timezone == "" || c.App.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
