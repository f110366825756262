package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tmalden/vellum"
	"github.com/tmalden/vellum/internal/cli"
	"github.com/tmalden/vellum/internal/logging"
	"github.com/tmalden/vellum/internal/presentation/tui"
)

var renderCmd = &cobra.Command{
	Use:   "render [template]",
	Short: "Render a template to stdout",
	Long: `Renders a named template from the configured loader, or an inline
source string when --source is given. Variables come from a YAML data
file (--data) and --var key=value pairs; pairs win on conflict.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		source, _ := cmd.Flags().GetString("source")
		dataFile, _ := cmd.Flags().GetString("data")
		pairs, _ := cmd.Flags().GetStringArray("var")
		outFile, _ := cmd.Flags().GetString("output")
		logLevel, _ := cmd.Flags().GetString("log-level")

		if (source == "") == (len(args) == 0) {
			fmt.Fprintln(os.Stderr, tui.ErrorLine("provide a template name or --source, not both"))
			os.Exit(1)
		}

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

		var out string
		if source != "" {
			out, err = vellum.RenderSource(app, source, vars)
		} else {
			out, err = vellum.RenderTemplate(app, args[0], vars)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, tui.ErrorLine(fmt.Sprintf("render failed: %v", err)))
			os.Exit(1)
		}

		if outFile != "" {
			if err := os.WriteFile(outFile, []byte(out), 0o644); err != nil {
				fmt.Fprintln(os.Stderr, tui.ErrorLine(fmt.Sprintf("write output: %v", err)))
				os.Exit(1)
			}
			return
		}
		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringP("source", "s", "", "Inline template source to render")
	renderCmd.Flags().StringP("data", "d", "", "YAML file with render variables")
	renderCmd.Flags().StringArray("var", nil, "Render variable as key=value (repeatable)")
	renderCmd.Flags().StringP("output", "o", "", "Write output to a file instead of stdout")
}
