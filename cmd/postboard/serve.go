// ABOUTME: Cobra command that serves the post board web page.
// ABOUTME: Wires the web server to a process supervisor for the bot host.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/2389-research/postboard/internal/supervisor"
	"github.com/2389-research/postboard/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the post board web page",
	Long: `Serve the post board over HTTP.

The page reloads posts from the store on every request. Unless --no-bot is
given, it also shows Start/Stop buttons that run the bot host as a child
process.`,
	RunE: runServe,
}

// Flags
var (
	serveAddr  string
	serveNoBot bool
)

const shutdownTimeout = 5 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
	serveCmd.Flags().BoolVar(&serveNoBot, "no-bot", false, "Hide bot controls and do not supervise a bot process")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	addr := serveAddr
	if addr == "" {
		addr = globalConfig.GetWebAddr()
	}

	var sup *supervisor.Supervisor
	cfg := web.Config{Store: globalStore, Logger: logger}
	if !serveNoBot {
		command, err := globalConfig.GetBotCommand()
		if err != nil {
			return err
		}
		env, err := globalConfig.StorageEnv()
		if err != nil {
			return err
		}
		sup, err = supervisor.New(supervisor.Config{Command: command, Env: env, Logger: logger})
		if err != nil {
			return fmt.Errorf("failed to create supervisor: %w", err)
		}
		cfg.Bot = sup
	}

	handler, err := web.New(cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("web server listening", "addr", addr)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("web server: %w", err)
		}
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()

	if sup != nil {
		if h := sup.Current(); h != nil {
			if err := sup.Stop(shutdownCtx, h); err != nil && !errors.Is(err, supervisor.ErrNotRunning) {
				logger.Warn("failed to stop bot", "error", err)
			}
		}
	}

	logger.Info("web server shutting down")
	return srv.Shutdown(shutdownCtx)
}
