package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools the assistant can call",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context(), true)
		defer flushLog()

		app, err := NewApp(ctx, false)
		if err != nil {
			return err
		}
		defer app.Close()

		out := cmd.OutOrStdout()
		category := ""
		for _, t := range app.Tools.Catalog() {
			if t.Category != category {
				category = t.Category
				fmt.Fprintf(out, "\n%s\n", titleStyle.Render(strings.ToUpper(category)))
			}

			params := make([]string, 0, len(t.Parameters))
			for _, p := range t.Parameters {
				name := p.Name
				if !p.Required {
					name += "?"
				}
				params = append(params, name)
			}
			fmt.Fprintf(out, "  %s(%s)\n    %s\n", usageStyle.Render(t.Name), strings.Join(params, ", "), descStyle.Render(t.Description))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}
