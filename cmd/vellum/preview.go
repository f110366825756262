package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tmalden/vellum"
	"github.com/tmalden/vellum/internal/cli"
	"github.com/tmalden/vellum/internal/logging"
	"github.com/tmalden/vellum/internal/presentation/tui"
)

var previewCmd = &cobra.Command{
	Use:   "preview <template>",
	Short: "Render a template and display it as styled markdown",
	Long: `Renders a named template and, when stdout is a terminal, passes the
output through a markdown renderer for styled display. Piped output
stays plain.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dataFile, _ := cmd.Flags().GetString("data")
		pairs, _ := cmd.Flags().GetStringArray("var")
		logLevel, _ := cmd.Flags().GetString("log-level")

		logger := logging.New(logLevel)

		vars, err := cli.ParseVars(dataFile, pairs)
		if err != nil {
			fmt.Fprintln(os.Stderr, tui.ErrorLine(err.Error()))
			os.Exit(1)
		}

		app, _, err := cli.BuildApp(buildOptions(cmd), logger)
		if err != nil {
			fmt.Fprintln(os.Stderr, tui.ErrorLine(err.Error()))
			os.Exit(1)
		}

		out, err := vellum.RenderTemplate(app, args[0], vars)
		if err != nil {
			fmt.Fprintln(os.Stderr, tui.ErrorLine(fmt.Sprintf("render failed: %v", err)))
			os.Exit(1)
		}

		if term.IsTerminal(int(os.Stdout.Fd())) {
			render := tui.NewMarkdownRenderer()
			if styled, err := render(out); err == nil {
				fmt.Print(styled)
				return
			}
		}
		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringP("data", "d", "", "YAML file with render variables")
	previewCmd.Flags().StringArray("var", nil, "Render variable as key=value (repeatable)")
}
