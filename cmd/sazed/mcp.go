package main

import (
	"context"
	"errors"
	"os"

	"github.com/sandevgo/sazed/internal/transport/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the tool catalog to an MCP client over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context(), true)
		defer flushLog()

		app, err := NewApp(ctx, false)
		if err != nil {
			return err
		}
		defer app.Close()

		server := mcp.NewServer(app.Tools, os.Stdin, os.Stdout)
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
