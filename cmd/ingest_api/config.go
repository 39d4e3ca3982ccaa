package main

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v9"

	cfgenv "github.com/asapdigest/content-pipeline/pkg/config/env"
)

type AppConfig struct {
	Environment string `env:"ASAP_ENV" envDefault:"local"`

	Port        string   `env:"ASAP_PORT" envDefault:"8080"`
	CorsOrigins []string `env:"ASAP_CORS_ORIGINS" envSeparator:","`

	// Storage selects the persistence backend. "memory" keeps everything
	// in process, for local development and tests.
	Storage     string `env:"ASAP_STORAGE" envDefault:"postgres"`
	DatabaseURL string `env:"ASAP_DATABASE_URL"`

	OpenAIKey     string        `env:"ASAP_OPENAI_API_KEY"`
	OpenAIModel   string        `env:"ASAP_OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIBaseURL string        `env:"ASAP_OPENAI_BASE_URL"`
	OpenAITimeout time.Duration `env:"ASAP_OPENAI_TIMEOUT" envDefault:"30s"`
	TaxonomyFile  string        `env:"ASAP_TAXONOMY_FILE"`

	NatsURL string `env:"ASAP_NATS_URL"`

	AutoRejectScore int `env:"ASAP_QUALITY_SCORE_AUTO_REJECT" envDefault:"20"`
	MinimumScore    int `env:"ASAP_QUALITY_SCORE_MINIMUM" envDefault:"40"`
}

func LoadAppConfig() (*AppConfig, error) {
	if err := cfgenv.LoadDotEnv(os.Getenv("ASAP_ENV"), ".env"); err != nil {
		return nil, err
	}

	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.Storage != "postgres" && cfg.Storage != "memory" {
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
	if cfg.Storage == "postgres" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("ASAP_DATABASE_URL is required for postgres storage")
	}
	return cfg, nil
}
