package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var archiveOlderThan time.Duration

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Move stale conversations into the archive tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context(), false)
		defer flushLog()

		app, err := NewApp(ctx, false)
		if err != nil {
			return err
		}
		defer app.Close()

		report, err := app.Archiver.Run(ctx, archiveOlderThan)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "archived %d session(s) idle since before %s\n",
			report.Archived, report.Cutoff.Format(time.RFC3339))
		return nil
	},
}

func init() {
	archiveCmd.Flags().DurationVar(&archiveOlderThan, "older-than", 0, "minimum idle time, defaults to ARCHIVE_MIN_AGE")
	rootCmd.AddCommand(archiveCmd)
}
