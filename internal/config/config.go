package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the process configuration, loaded from environment variables
type Config struct {
	ServiceName  string `env:"EVENTSYNC_SERVICE_NAME" envDefault:"eventsync"`
	SeqURL       string `env:"EVENTSYNC_SEQ_URL"`
	OTLPEndpoint string `env:"EVENTSYNC_OTLP_ENDPOINT"`
}

// Load parses configuration from the environment
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
