package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Host      string `env:"APP_HOST" env-default:"127.0.0.1"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		SentryUrl string `env:"SENTRY_URL"`
	}
	Network struct {
		BaseURL       string        `env:"NETWORK_BASE_URL" env-default:"http://localhost:8000"`
		SessionCookie string        `env:"NETWORK_SESSION_COOKIE"`
		CSRFToken     string        `env:"NETWORK_CSRF_TOKEN"`
		LoggedIn      bool          `env:"NETWORK_LOGGED_IN" env-default:"false"`
		UserID        int           `env:"NETWORK_USER_ID" env-default:"0"`
		Filter        string        `env:"NETWORK_FILTER" env-default:"all"`
		ProfileID     int           `env:"NETWORK_PROFILE_ID" env-default:"0"`
		Timeout       time.Duration `env:"NETWORK_TIMEOUT" env-default:"15s"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT" env-default:"5432"`
		Host    string `env:"POSTGRES_HOST" env-default:"localhost"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
	Telegram struct {
		User     int64  `env:"TELEGRAM_USER"`
		BotToken string `env:"TELEGRAM_BOT_TOKEN"`
		Channel  string `env:"TELEGRAM_CHANNEL"`
	}
	Watcher struct {
		Enabled   bool          `env:"WATCHER_ENABLED" env-default:"true"`
		Cron      string        `env:"WATCHER_CRON" env-default:"*/5 * * * *"`
		Retention time.Duration `env:"WATCHER_RETENTION" env-default:"120h"`
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

// GetDSN returns the postgres connection string used by pgx and goose.
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
