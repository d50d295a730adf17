package main

import (
	"context"

	"github.com/sandevgo/sazed/internal/config"
	"github.com/sandevgo/sazed/pkg/log"
	"github.com/spf13/cobra"
)

var (
	debug   bool
	envFile string
)

var rootCmd = &cobra.Command{
	Use:           "sazed",
	Short:         "Sazed, a personal AI assistant",
	Long:          `Sazed is a personal assistant that remembers what you tell it and acts through your own tool gateway.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading configuration")
}

// setupLogger installs the logger and loads the env file. Commands that own
// stdout as a protocol stream log to stderr instead.
func setupLogger(ctx context.Context, stderr bool) (context.Context, func()) {
	isDebug := debug || config.IsDebug()

	var flush func()
	if stderr {
		ctx, flush = log.NewStderrContextWithLogger(ctx, isDebug)
	} else {
		ctx, flush = log.NewContextWithLogger(ctx, isDebug)
	}

	if envFile != "" {
		_ = config.LoadEnvFile(ctx, envFile)
	}
	return ctx, flush
}

func CustomizeHelp(rootCmd *cobra.Command) {
	cobra.AddTemplateFunc("StyleTitle", func(s string) string { return titleStyle.Render(s) })
	cobra.AddTemplateFunc("StyleUsage", func(s string) string { return usageStyle.Render(s) })
	cobra.AddTemplateFunc("StyleFlag", func(s string) string { return flagStyle.Render(s) })
	cobra.AddTemplateFunc("StyleDesc", func(s string) string { return descStyle.Render(s) })

	template := `
{{StyleTitle "USAGE"}}
  {{StyleUsage .UseLine}}
{{if gt (len .Commands) 0}}
{{StyleTitle "AVAILABLE COMMANDS"}}
{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding}} {{StyleDesc .Short}}{{end}}{{end}}
{{end}}{{if .HasAvailableLocalFlags}}
{{StyleTitle "FLAGS"}}
{{StyleFlag (.LocalFlags.FlagUsages | trimTrailingWhitespaces)}}
{{end}}{{if .HasAvailableInheritedFlags}}
{{StyleTitle "GLOBAL FLAGS"}}
{{StyleFlag (.InheritedFlags.FlagUsages | trimTrailingWhitespaces)}}
{{end}}
`
	rootCmd.SetHelpTemplate(template)
}
