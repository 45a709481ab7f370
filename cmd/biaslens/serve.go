package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/biaslens/biaslens/internal/config"
	"github.com/biaslens/biaslens/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the biaslens server",
	Long: `Start the biaslens HTTP server.

When classifier.managed is true (the default) this also starts the
classifier sidecar container, and stops it again on shutdown (via
Ctrl+C or SIGTERM).

The server provides:
  - /analyze         - Analyze text with the configured backend
  - /analyze/llm     - Analyze text with the generative backend
  - /analyze/simple  - Compact clause-level analysis, no persistence
  - /auth/*          - Registration, login, logout
  - /analyses        - Stored analysis history
  - /health, /ready, /status

Examples:
  biaslens serve                  # Start on the configured address
  biaslens serve --port 3000      # Start on a custom port
  biaslens serve --host 0.0.0.0   # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		h, err := getHome()
		if err != nil {
			return err
		}

		mgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		mgr.WatchConfig()
		appCfg := mgr.Get()

		host := appCfg.Server.Host
		port := appCfg.Server.Port
		if cmd.Flags().Changed("host") {
			host = serveHost
		}
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		srv, err := server.New(server.Config{
			Host:          host,
			Port:          port,
			Home:          h,
			ConfigManager: mgr,
			Logger:        buildLogger(appCfg.Log),
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

// buildLogger constructs the process logger from config.
func buildLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "8000", "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}
