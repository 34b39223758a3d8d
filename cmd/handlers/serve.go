package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"newsdesk/internal/logger"
	"newsdesk/internal/server"
)

// NewServeCmd creates the serve command for starting the HTTP server.
func NewServeCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the browser editor and its HTTP API",
		Long: `Start the Newsdesk web server.

The server provides:
  • The password-gated browser editor
  • A JSON API covering the whole workflow: generate, discover,
    images, publish, and settings

Examples:
  # Start on the configured port
  newsdesk serve

  # Start on a custom port
  newsdesk serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port, host)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from config: 8080)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (default from config: 127.0.0.1)")

	return cmd
}

func runServe(ctx context.Context, port int, host string) error {
	log := logger.Get()

	application, err := buildApp(ctx, true)
	if err != nil {
		return err
	}
	defer application.Close()

	serverCfg := application.cfg.Server
	if port != 0 {
		serverCfg.Port = port
	}
	if host != "" {
		serverCfg.Host = host
	}

	srv := server.New(application.flow, serverCfg, application.cfg.Auth.Passwords)

	serverErrors := make(chan error, 1)
	go func() {
		log.Info(fmt.Sprintf("Editor listening on http://%s:%d", serverCfg.Host, serverCfg.Port))
		log.Info("Press Ctrl+C to stop")
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info("Server shutdown initiated", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed, forcing close", "error", err)
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		log.Info("Server stopped successfully")
	}

	return nil
}
