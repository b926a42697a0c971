package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into the provided struct using its
// `env` tags. Defaults come from `envDefault` tags; list values use
// `envSeparator`.
//
// Example:
//
//	type Config struct {
//	    Port         int      `env:"HTTP_PORT" envDefault:"8080"`
//	    KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
