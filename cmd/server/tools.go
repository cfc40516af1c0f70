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

	"brochure-backend/internal/config"
	"brochure-backend/internal/simulator"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Parse()
		if err != nil {
			return err
		}
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required")
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		return migrate(cmd.Context(), cfg.DatabaseURL, log)
	},
}

var simOpts struct {
	port         string
	copyStatus   int
	renderStatus int
	bullets      int
	omitPDF      bool
	latency      time.Duration
}

var simulateCmd = &cobra.Command{
	Use:   "simulate-backend",
	Short: "Serve a fake AI copy and render backend for local development",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, err := config.Parse()
		if err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		sim := simulator.New(simulator.Options{
			CopyStatus:   simOpts.copyStatus,
			RenderStatus: simOpts.renderStatus,
			BulletCount:  simOpts.bullets,
			OmitPDF:      simOpts.omitPDF,
			Latency:      simOpts.latency,
		})
		srv := &http.Server{Addr: ":" + simOpts.port, Handler: sim.Handler(), ReadHeaderTimeout: 10 * time.Second}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		log.Info("simulated backend listening", zap.String("port", simOpts.port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("simulator: %w", err)
		}
		return nil
	},
}

func init() {
	f := simulateCmd.Flags()
	f.StringVar(&simOpts.port, "port", "8000", "port to listen on")
	f.IntVar(&simOpts.copyStatus, "copy-status", 0, "HTTP status to answer copy requests with (0 for success)")
	f.IntVar(&simOpts.renderStatus, "render-status", 0, "HTTP status to answer render requests with (0 for success)")
	f.IntVar(&simOpts.bullets, "bullets", 0, "number of bullets to return (0 for three)")
	f.BoolVar(&simOpts.omitPDF, "omit-pdf", false, "leave pdf_url out of render responses")
	f.DurationVar(&simOpts.latency, "latency", 0, "delay before each answer")
}
