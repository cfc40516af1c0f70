package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"brochure-backend/internal/config"
	"brochure-backend/internal/database"
	"brochure-backend/internal/server"
)

var skipMigrations bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API together with the generation workers and the stale job sweeper",
	RunE:  runServe,
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run only the generation workers and the stale job sweeper",
	RunE:  runWorker,
}

func init() {
	for _, cmd := range []*cobra.Command{rootCmd, serveCmd, workerCmd} {
		cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply database migrations on startup")
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	return run(cmd.Context(), true)
}

func runWorker(cmd *cobra.Command, _ []string) error {
	return run(cmd.Context(), false)
}

func run(parent context.Context, withHTTP bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if !withHTTP && cfg.QueueDriver == config.QueueDriverMemory {
		return fmt.Errorf("the worker command needs QUEUE_DRIVER=%s; the in-memory queue only reaches workers in the same process", config.QueueDriverNATS)
	}

	if cfg.StoreDriver == config.StoreDriverPostgres && !skipMigrations {
		if err := migrate(ctx, cfg.DatabaseURL, log); err != nil {
			return err
		}
	}

	app, err := server.NewApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Warn("failed to close resources", zap.Error(err))
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.WorkerPool().Run(gctx)
	})
	g.Go(func() error {
		app.Sweeper().Run(gctx)
		return nil
	})

	if withHTTP {
		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           app.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			log.Info("server starting", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver), zap.String("queue", cfg.QueueDriver))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("shutdown complete")
	return nil
}

func migrate(ctx context.Context, dbURL string, log *zap.Logger) error {
	migrator, err := database.NewMigrator(dbURL, log.Named("migrator"))
	if err != nil {
		return fmt.Errorf("failed to initialize migrator: %w", err)
	}
	defer migrator.Close()

	applied, err := migrator.Run(ctx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Info("migrations completed", zap.Strings("applied", applied))
	return nil
}
