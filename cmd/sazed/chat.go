package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sandevgo/sazed/internal/transport/cli"
	"github.com/spf13/cobra"
)

var chatSession string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant in this terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context(), true)
		defer flushLog()

		app, err := NewApp(ctx, true)
		if err != nil {
			return err
		}
		defer app.Close()

		sessionID := chatSession
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		if err := os.MkdirAll(app.Config.RuntimePath, 0o755); err != nil {
			return fmt.Errorf("failed to create runtime dir: %w", err)
		}

		repl, err := cli.NewREPL(app.Agent, sessionID, cli.Options{
			HistoryFile: filepath.Join(app.Config.RuntimePath, "input_history"),
		})
		if err != nil {
			return err
		}
		defer repl.Shutdown(ctx)
		repl.Use(app.NewRouter(repl))

		cmd.PrintErrf("session %s, type 'exit' to quit\n", sessionID)
		err = repl.Start(ctx)
		cmd.PrintErrf("\nsession %s\n", repl.SessionID())
		return err
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "", "resume an existing session id")
	rootCmd.AddCommand(chatCmd)
}
