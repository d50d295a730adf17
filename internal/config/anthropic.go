package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/sazed/pkg/log"
)

type AnthropicConfig struct {
	APIKey     string `env:"ANTHROPIC_API_KEY" secret:"true"`
	BaseURL    string `env:"ANTHROPIC_BASE_URL" envDefault:"https://api.anthropic.com"`
	HaikuModel string `env:"HAIKU_MODEL" envDefault:"claude-haiku-4-5-20251001"`
	// SonnetModel serves long messages and later turns.
	SonnetModel string `env:"SONNET_MODEL" envDefault:"claude-sonnet-4-5-20250929"`
}

func NewAnthropicConfig(ctx context.Context) *AnthropicConfig {
	c := &AnthropicConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Anthropic config")
	}
	return c
}
