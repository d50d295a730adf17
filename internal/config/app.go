package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/sazed/pkg/log"
)

type AppConfig struct {
	HTTPAddr       string   `env:"HTTP_ADDR" envDefault:":8000"`
	APIKey         string   `env:"API_KEY" secret:"true"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000,http://localhost:3001"`

	// DatabaseURL selects PostgreSQL; when empty the SQLite file at DatabasePath is used.
	DatabaseURL  string `env:"DATABASE_URL" secret:"true"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"sazed.db"`
	RuntimePath  string `env:"RUNTIME_PATH" envDefault:".sazed"`

	// Turn loop
	MaxTurns            int `env:"MAX_TURNS" envDefault:"5"`
	MaxOutputTokens     int `env:"MAX_OUTPUT_TOKENS" envDefault:"4096"`
	TierLengthThreshold int `env:"TIER_LENGTH_THRESHOLD" envDefault:"500"`
	TierTurnThreshold   int `env:"TIER_TURN_THRESHOLD" envDefault:"2"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetSystemPath() string {
	return filepath.Join(c.RuntimePath, "SYSTEM.md")
}

func (c AppConfig) UsePostgres() bool {
	return c.DatabaseURL != ""
}
