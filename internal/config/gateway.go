package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/sazed/pkg/log"
)

// GatewayConfig points at the upstream gateway that fronts calendar, email,
// tasks, storage, search and knowledge-base integrations.
type GatewayConfig struct {
	URL         string        `env:"GATEWAY_URL"`
	APIKey      string        `env:"GATEWAY_API_KEY" secret:"true"`
	ToolTimeout time.Duration `env:"TOOL_TIMEOUT" envDefault:"30s"`
}

func NewGatewayConfig(ctx context.Context) *GatewayConfig {
	c := &GatewayConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Gateway config")
	}
	return c
}
