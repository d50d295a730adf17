package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/sazed/pkg/log"
)

type DistillConfig struct {
	SummaryEnabled bool `env:"SUMMARY_ENABLED" envDefault:"true"`
	// KBFolderID enables the knowledge-base entry when set.
	KBFolderID          string `env:"KB_FOLDER_ID"`
	// MaxTranscriptTokens trims the oldest lines past the budget. Zero keeps
	// the whole transcript.
	MaxTranscriptTokens int `env:"DISTILL_MAX_TRANSCRIPT_TOKENS" envDefault:"0"`

	AutoDistill bool          `env:"AUTO_DISTILL" envDefault:"false"`
	Interval    time.Duration `env:"AUTO_DISTILL_INTERVAL" envDefault:"30m"`
	Idle        time.Duration `env:"AUTO_DISTILL_IDLE" envDefault:"30m"`

	ArchiveMinAge time.Duration `env:"ARCHIVE_MIN_AGE" envDefault:"720h"`
}

func NewDistillConfig(ctx context.Context) *DistillConfig {
	c := &DistillConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Distill config")
	}
	return c
}
