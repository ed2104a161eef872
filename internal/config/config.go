package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port               int    `env:"PORT" envDefault:"8080"`
	DatabaseURL        string `env:"DATABASE_URL,required"`
	RedisURL           string `env:"REDIS_URL,required"`
	WebhookVerifyToken string `env:"WEBHOOK_VERIFY_TOKEN"`
	GraphAPIToken      string `env:"GRAPH_API_TOKEN"`
	GraphAPIVersion    string `env:"GRAPH_API_VERSION" envDefault:"v18.0"`
	AppSecret          string `env:"WHATSAPP_APP_SECRET"`
	LogLevel           string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate(isProduction bool) error {
	if c.GraphAPIToken == "" {
		if isProduction {
			return fmt.Errorf("GRAPH_API_TOKEN is required in production")
		}
		log.Warn().Msg("GRAPH_API_TOKEN is empty: outbound messages will fail")
	}

	if c.WebhookVerifyToken == "" {
		if isProduction {
			return fmt.Errorf("WEBHOOK_VERIFY_TOKEN is required in production")
		}
		log.Warn().Msg("WEBHOOK_VERIFY_TOKEN is empty: webhook handshake will be rejected")
	}

	if c.AppSecret == "" && isProduction {
		log.Warn().Msg("WHATSAPP_APP_SECRET is empty in production: webhook signature verification disabled")
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
