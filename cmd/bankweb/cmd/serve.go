package cmd

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

	"pingate-bank/web/internal/auth"
	"pingate-bank/web/internal/httpapi"
	"pingate-bank/web/internal/pin"
	"pingate-bank/web/internal/store"
)

const limiterSweepInterval = 10 * time.Minute

var (
	servePort    int
	serveEnv     string
	serveBackend string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}
		if cmd.Flags().Changed("env") {
			cfg.Environment = serveEnv
		}
		if cmd.Flags().Changed("store") {
			cfg.StoreBackend = serveBackend
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		rootCtx, cancelRoot := context.WithCancel(cmd.Context())
		defer cancelRoot()

		st, err := openStore(rootCtx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		authSvc, err := auth.NewService(st, auth.Options{
			JWTSecret:  cfg.JWTSecret,
			SessionTTL: cfg.SessionTTL,
			Logger:     logger,
		})
		if err != nil {
			return err
		}
		if cfg.JWTSecret == "" {
			logger.Warn("no jwt secret configured; sessions will not survive a restart")
		}

		limiter := pin.NewAttemptLimiter(cfg.LimiterConfig())
		go limiter.RunSweeper(rootCtx, limiterSweepInterval)

		if purger, ok := st.(store.SessionPurger); ok {
			go runSessionPurgeLoop(rootCtx, purger, cfg.SessionPurgeIntervalHours)
		} else {
			logger.Info("store does not support session purge")
		}

		pins := pin.NewService(st, pin.NewArgon2idHasher(cfg.Argon2), limiter, logger)
		srv := httpapi.NewServer(cfg, authSvc, pins, logger)

		httpServer := &http.Server{
			Addr:              cfg.ListenAddr(),
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("bankweb listening", "addr", cfg.ListenAddr(), "environment", cfg.Environment)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("server failed: %w", err)
				return
			}
			errCh <- nil
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(stop)

		select {
		case sig := <-stop:
			logger.Info("shutdown requested", "signal", sig.String())
		case err := <-errCh:
			return err
		}

		cancelRoot()

		ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelShutdown()
		if err := httpServer.Shutdown(ctxShutdown); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	},
}

// runSessionPurgeLoop drops expired and revoked identity sessions every
// intervalHours until ctx is done.
func runSessionPurgeLoop(ctx context.Context, purger store.SessionPurger, intervalHours int) {
	interval := time.Duration(intervalHours) * time.Hour
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	runOnce := func() {
		before := time.Now().UTC()
		ctxPurge, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		n, err := purger.PurgeSessions(ctxPurge, before)
		if err != nil {
			logger.Warn("session purge failed", "error", err)
			return
		}
		if n > 0 {
			logger.Info("purged identity sessions", "count", n)
		}
	}

	runOnce()

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			runOnce()
		}
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveEnv, "env", "development", "Environment: development or production")
	serveCmd.Flags().StringVar(&serveBackend, "store", "memory", "Credential store: memory, postgres or bolt")
}
