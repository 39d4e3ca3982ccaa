package main

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v9"

	cfgenv "github.com/asapdigest/content-pipeline/pkg/config/env"
)

type ReindexConfig struct {
	DatabaseURL string `env:"ASAP_DATABASE_URL"`
}

func LoadReindexConfig() (*ReindexConfig, error) {
	if err := cfgenv.LoadDotEnv(os.Getenv("ASAP_ENV"), ".env"); err != nil {
		return nil, err
	}

	cfg := &ReindexConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("ASAP_DATABASE_URL is required")
	}
	return cfg, nil
}
