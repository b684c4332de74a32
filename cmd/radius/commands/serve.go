package commands

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Jayden-Richmond/Radius-Finance/internal/server"
	"github.com/Jayden-Richmond/Radius-Finance/internal/services/storage"
	"github.com/Jayden-Richmond/Radius-Finance/internal/version"
)

var (
	listenAddr  string
	openBrowser bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if listenAddr != "" {
			cfg.ListenAddr = listenAddr
		}

		// Interactive fallback when the data directory is encrypted and no
		// passphrase came in via RADIUS_STORAGE_PASSPHRASE.
		if cfg.StoragePassphrase == "" && storage.New(cfg.DataDirectory).IsEncrypted() &&
			term.IsTerminal(int(os.Stdin.Fd())) {
			pass, err := promptPassphrase("Data directory is encrypted. Passphrase: ")
			if err != nil {
				return err
			}
			cfg.StoragePassphrase = pass
		}

		logger.Info().
			Str("version", version.Get().Version).
			Str("listen_addr", cfg.ListenAddr).
			Str("data_dir", cfg.DataDirectory).
			Msg("starting radius-finance")

		srv, err := server.New(cfg, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		if openBrowser {
			go func() {
				// Give the listener a moment to come up.
				time.Sleep(300 * time.Millisecond)
				if err := browser.OpenURL(dashboardURL(cfg.ListenAddr)); err != nil {
					logger.Warn().Err(err).Msg("could not open browser")
				}
			}()
		}

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info().Msg("shutdown complete")
		return nil
	},
}

// dashboardURL turns a listen address like ":8080" into a browsable URL.
func dashboardURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://localhost:8080/dashboard"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s/dashboard", net.JoinHostPort(host, port))
}

func init() {
	serveCmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "listen address (overrides config)")
	serveCmd.Flags().BoolVar(&openBrowser, "open", false, "open the dashboard in a browser once the server is up")
	rootCmd.AddCommand(serveCmd)
}
