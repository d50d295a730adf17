package main

import (
	"context"

	"github.com/sandevgo/sazed/pkg/log"
	"github.com/sandevgo/sazed/pkg/srv"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the configured background services",
	Long:  `Starts the HTTP API, the Telegram bot when TELEGRAM_TOKEN is set, and the distillation worker when AUTO_DISTILL is on.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx, false)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting sazed")

		app, err := NewApp(ctx, true)
		if err != nil {
			return err
		}

		services, err := app.Services(ctx)
		if err != nil {
			_ = app.Close()
			return err
		}

		srv.StartServices(ctx, services, cancel)
		srv.ShutdownServices(ctx, services)

		logger.Info().Msg("sazed has been shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
