package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/sazed/pkg/log"
)

type TelegramConfig struct {
	Token   string `env:"TELEGRAM_TOKEN" secret:"true"`
	OwnerID int64  `env:"TELEGRAM_OWNER_ID"`
}

func NewTelegramConfig(ctx context.Context) *TelegramConfig {
	c := &TelegramConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Telegram config")
	}
	return c
}

func (c TelegramConfig) Enabled() bool {
	return c.Token != ""
}
