package main

import (
	"fmt"

	"github.com/sandevgo/sazed/internal/config"
	"github.com/sandevgo/sazed/pkg/env"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration with secrets masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context(), true)
		defer flushLog()

		sections := []struct {
			title string
			cfg   any
		}{
			{"app", config.NewAppConfig(ctx)},
			{"anthropic", config.NewAnthropicConfig(ctx)},
			{"gateway", config.NewGatewayConfig(ctx)},
			{"distill", config.NewDistillConfig(ctx)},
			{"telegram", config.NewTelegramConfig(ctx)},
		}

		out := cmd.OutOrStdout()
		for _, s := range sections {
			body, err := env.MarshalEnv(s.cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "# %s\n%s\n\n", s.title, body)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
