package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/tmalden/vellum"
	httpAdapter "github.com/tmalden/vellum/internal/adapters/http"
	"github.com/tmalden/vellum/internal/cli"
	"github.com/tmalden/vellum/internal/logging"
	"github.com/tmalden/vellum/internal/watcher"
	"github.com/tmalden/vellum/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP render server",
	Long:  `Starts the render engine in server mode, exposing a JSON API over HTTP along with Prometheus metrics on /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetString("port")
		watch, _ := cmd.Flags().GetBool("watch")
		logLevel, _ := cmd.Flags().GetString("log-level")

		logger := logging.New(logLevel)

		metrics := observability.NewRenderMetrics(prometheus.DefaultRegisterer)

		opts := buildOptions(cmd)
		opts.Hooks = []vellum.RenderHooks{metrics.Hooks()}

		app, renderer, err := cli.BuildApp(opts, logger)
		if err != nil {
			fmt.Printf("Error initializing renderer: %v\n", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if watch && opts.RedisAddr == "" && opts.LoamRepo == "" {
			w, err := watcher.New(opts.TemplatesDir, func(paths []string) {
				logger.Info("templates changed, clearing cache", "files", len(paths))
				renderer.Environment().ClearCache()
			}, logger)
			if err != nil {
				fmt.Printf("Error starting watcher: %v\n", err)
				os.Exit(1)
			}
			defer w.Close()
			w.Start(ctx)
		}

		handler, err := httpAdapter.NewHandler(ctx, app, logger)
		if err != nil {
			fmt.Printf("Error building handler: %v\n", err)
			os.Exit(1)
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.Handle("/", handler)

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: mux,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Vellum Server on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case <-ctx.Done():
			fmt.Println("\nStart shutdown...")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Vellum Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().Bool("watch", false, "Clear the template cache when files change")
}
