package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tmalden/vellum/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "vellum",
	Short: "Vellum is a Liquid-style template rendering toolkit",
	Long:  `Vellum renders Liquid-style templates from the filesystem, Redis or a loam repository, and can serve them over HTTP or MCP.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("templates", "t", "templates", "Directory containing templates")
	rootCmd.PersistentFlags().String("redis", "", "Redis address to load templates from (overrides --templates)")
	rootCmd.PersistentFlags().String("loam", "", "Loam repository to load templates from (overrides --templates)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("tolerance", "strict", "Error tolerance: strict, warn, lax")
	rootCmd.PersistentFlags().String("undefined", "silent", "Undefined variable policy: silent, strict")
	rootCmd.PersistentFlags().Bool("strict-filters", true, "Fail on unknown filters")
	rootCmd.PersistentFlags().Bool("autoescape", true, "HTML-escape rendered variables")
	rootCmd.PersistentFlags().Bool("auto-reload", true, "Recompile templates when sources change")
	rootCmd.PersistentFlags().Int("cache-size", 300, "Compiled template cache capacity")
}

// buildOptions collects the shared flags into factory options.
func buildOptions(cmd *cobra.Command) cli.Options {
	templates, _ := cmd.Flags().GetString("templates")
	redisAddr, _ := cmd.Flags().GetString("redis")
	loamRepo, _ := cmd.Flags().GetString("loam")
	tolerance, _ := cmd.Flags().GetString("tolerance")
	undefined, _ := cmd.Flags().GetString("undefined")
	strictFilters, _ := cmd.Flags().GetBool("strict-filters")
	autoEscape, _ := cmd.Flags().GetBool("autoescape")
	autoReload, _ := cmd.Flags().GetBool("auto-reload")
	cacheSize, _ := cmd.Flags().GetInt("cache-size")

	return cli.Options{
		AppName:       "vellum",
		TemplatesDir:  templates,
		RedisAddr:     redisAddr,
		LoamRepo:      loamRepo,
		Tolerance:     tolerance,
		Undefined:     undefined,
		StrictFilters: strictFilters,
		AutoEscape:    autoEscape,
		AutoReload:    autoReload,
		CacheSize:     cacheSize,
	}
}
