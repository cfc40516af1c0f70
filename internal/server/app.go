package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"brochure-backend/internal/backend"
	"brochure-backend/internal/config"
	"brochure-backend/internal/memstore"
	"brochure-backend/internal/models"
	"brochure-backend/internal/queue"
	"brochure-backend/internal/services"
	"brochure-backend/internal/supabase"
	"brochure-backend/internal/worker"
)

// channelBuffer bounds the in-process queue; beyond it job creation fails fast.
const channelBuffer = 256

type taskQueue interface {
	queue.Queue
	queue.Source
}

// App holds the wired components for one process.
type App struct {
	Config *config.Config

	Store   services.Store
	Blobs   services.BlobStore
	Queue   taskQueue
	Backend *backend.Client

	Users      *services.UserService
	Projects   *services.ProjectService
	Assets     *services.AssetService
	Jobs       *services.JobService
	Renders    *services.RenderService
	Generation *services.GenerationService

	logger  *zap.Logger
	closers []func() error
}

// NewApp connects the configured store, blob store and queue and builds the services on top.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	app := &App{Config: cfg, logger: logger}

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		app.Store = memstore.New()
		app.Blobs = memstore.NewBlobs(cfg.SupabaseStorageBucket)
		logger.Warn("using in-memory store, data is lost on restart")
	default:
		db, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database client: %w", err)
		}
		app.closers = append(app.closers, db.Close)

		client, err := supabase.NewClient(cfg)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.Store = db
		app.Blobs = client.Blobs()
	}

	switch cfg.QueueDriver {
	case config.QueueDriverNATS:
		q, err := queue.NewJetStreamQueue(ctx, queue.JetStreamConfig{
			URL:           cfg.NatsURL,
			MaxDeliver:    cfg.QueueMaxDeliver,
			MaxAckPending: cfg.WorkerConcurrency,
			AckWait:       cfg.GenerationTimeout + time.Minute,
		}, logger)
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("failed to connect job queue: %w", err)
		}
		app.closers = append(app.closers, q.Close)
		app.Queue = q
	default:
		app.Queue = queue.NewChannelQueue(channelBuffer)
	}

	app.Backend = backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout)

	app.Users = services.NewUserService(app.Store)
	app.Projects = services.NewProjectService(app.Store, app.Blobs, logger)
	app.Assets = services.NewAssetService(app.Store, app.Blobs, cfg.AssetMaxBytes, logger)
	app.Jobs = services.NewJobService(app.Store, app.Queue, logger)
	app.Renders = services.NewRenderService(app.Store)
	app.Generation = services.NewGenerationService(app.Store, app.Blobs, app.Backend, services.GenerationConfig{
		Template: cfg.RenderTemplate,
		Palette:  models.Palette{Primary: cfg.PalettePrimary, Accent: cfg.PaletteAccent},
	}, logger)

	return app, nil
}

func (a *App) Router() *gin.Engine {
	return NewRouter(RouterDeps{
		Users:            a.Users,
		Projects:         a.Projects,
		Assets:           a.Assets,
		Jobs:             a.Jobs,
		Renders:          a.Renders,
		Store:            a.Store,
		Backend:          a.Backend,
		JWTSecret:        a.Config.SupabaseJWTSecret,
		InternalToken:    a.Config.InternalAPIToken,
		JobRatePerMinute: a.Config.JobRatePerMinute,
		AssetMaxBytes:    a.Config.AssetMaxBytes,
		Logger:           a.logger,
	})
}

func (a *App) WorkerPool() *worker.Pool {
	return worker.NewPool(a.Queue, a.Generation, worker.PoolConfig{
		Concurrency: a.Config.WorkerConcurrency,
		Timeout:     a.Config.GenerationTimeout,
	}, a.logger.Named("worker"))
}

func (a *App) Sweeper() *worker.Sweeper {
	return worker.NewSweeper(a.Jobs, a.Config.JobStaleAfter, a.Config.SweepInterval, a.logger.Named("sweeper"))
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
