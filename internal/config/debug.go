package config

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/sandevgo/sazed/pkg/log"
)

func IsDebug() bool {
	return os.Getenv("SAZED_DEBUG") == "1"
}

// LoadEnvFile loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func LoadEnvFile(ctx context.Context, path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		log.FromCtx(ctx).Warn().Err(err).Str("path", path).Msg("failed to load .env file")
		return err
	}
	log.FromCtx(ctx).Debug().Str("path", path).Msg("loaded .env file")
	return nil
}
