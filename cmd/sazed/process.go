package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process <session-id>",
	Short: "Distill a stored conversation into facts and a summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context(), false)
		defer flushLog()

		app, err := NewApp(ctx, true)
		if err != nil {
			return err
		}
		defer app.Close()

		res, err := app.Distiller.Process(ctx, args[0])
		if err != nil {
			return fmt.Errorf("process %s: %w", args[0], err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "session:   %s\n", res.SessionID)
		fmt.Fprintf(out, "facts:     %d\n", res.FactsExtracted)
		if res.SummaryRef != nil {
			fmt.Fprintf(out, "kb entry:  %s\n", *res.SummaryRef)
		}
		if res.Summary != "" {
			fmt.Fprintf(out, "\n%s\n", res.Summary)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(processCmd)
}
