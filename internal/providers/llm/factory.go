package llm

import (
	"context"
	"errors"

	"github.com/sandevgo/sazed/internal/config"
	"github.com/sandevgo/sazed/internal/core"
	"github.com/sandevgo/sazed/pkg/log"
)

// NewProvider creates the model provider for the configured Anthropic account.
func NewProvider(ctx context.Context, cfg *config.AnthropicConfig) (core.ModelProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY is not set")
	}

	log.FromCtx(ctx).Info().
		Str("provider", "anthropic").
		Str("fast_model", cfg.HaikuModel).
		Str("slow_model", cfg.SonnetModel).
		Msg("starting llm provider")

	return NewAnthropic(cfg.BaseURL, cfg.APIKey, cfg.HaikuModel, cfg.SonnetModel), nil
}
