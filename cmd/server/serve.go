package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prudhvinik1/statusboard/internal/config"
	"github.com/prudhvinik1/statusboard/internal/database"
	"github.com/prudhvinik1/statusboard/internal/logging"
	"github.com/prudhvinik1/statusboard/internal/web"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the status board web server.

The server connects to the configured status store and change feed, serves
the roster and profile pages, and runs until interrupted (Ctrl+C) or it
receives SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("migrate", false, "apply the Postgres schema before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, cleanup, err := buildDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
		if deps.pool == nil {
			return errors.New("--migrate requires DATABASE_URL")
		}
		if err := database.Migrate(ctx, deps.pool); err != nil {
			return err
		}
		log.Info("schema applied")
	}

	server, err := web.NewServer(deps.auth, deps.statuses, cfg.BaseURL, log)
	if err != nil {
		return fmt.Errorf("failed to create web server: %w", err)
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           server.Routes(),
		ReadHeaderTimeout: readHeaderTimeout,
		// cancelling ctx also closes every open view socket
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithFields(logrus.Fields{
			"port":         cfg.ServerPort,
			"store_driver": cfg.StoreDriver,
			"feed_driver":  cfg.FeedDriver,
		}).Info("starting server")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped gracefully")
	return nil
}

// setup loads configuration and installs the process logger.
func setup() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err != nil {
		return nil, nil, err
	}
	logging.Install(log)
	return cfg, log, nil
}
