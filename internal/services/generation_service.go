package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"brochure-backend/internal/apperrors"
	"brochure-backend/internal/backend"
	"brochure-backend/internal/jobstate"
	"brochure-backend/internal/models"
)

// ErrJobSuperseded reports that the job stopped being active before or during a run,
// usually because the user cancelled it. Nothing further was written.
var ErrJobSuperseded = errors.New("job is no longer active")

const (
	defaultAudience   = "General audience"
	failureWriteLimit = 10 * time.Second
	assetRoleLogo     = "logo"
	assetRoleHero     = "hero"
)

// Generator is the external AI copy and render service.
type Generator interface {
	GenerateCopy(ctx context.Context, req backend.CopyRequest) (*backend.CopyResponse, error)
	Render(ctx context.Context, req backend.RenderRequest) (*backend.RenderResponse, error)
}

type GenerationConfig struct {
	Template string
	Palette  models.Palette
}

// GenerationService runs the generation pipeline for one job: resolve assets, request copy,
// render, persist the render and complete the job, reporting progress at each checkpoint.
type GenerationService struct {
	store     Store
	blobs     BlobStore
	generator Generator
	cfg       GenerationConfig
	logger    *zap.Logger
}

func NewGenerationService(store Store, blobs BlobStore, generator Generator, cfg GenerationConfig, logger *zap.Logger) *GenerationService {
	return &GenerationService{store: store, blobs: blobs, generator: generator, cfg: cfg, logger: logger}
}

// Run executes the pipeline. Any failure is recorded once on the job and its project and
// then returned. ErrJobSuperseded is returned without touching the job.
func (g *GenerationService) Run(ctx context.Context, jobID, projectID uuid.UUID) error {
	log := g.logger.With(zap.String("job_id", jobID.String()), zap.String("project_id", projectID.String()))

	job, err := g.store.UpdateJob(ctx, jobID, func(job *models.Job) error {
		if job.Status != models.JobStatusQueued {
			return ErrJobSuperseded
		}
		return jobstate.Start(job)
	})
	if err != nil {
		if errors.Is(err, ErrJobSuperseded) {
			log.Info("skipping job that is no longer queued")
		}
		return err
	}

	start := time.Now()
	err = g.generate(ctx, job, projectID)
	if err == nil {
		log.Info("generation completed", zap.Duration("duration", time.Since(start)))
		return nil
	}
	if errors.Is(err, ErrJobSuperseded) {
		log.Info("job was cancelled during generation")
		return err
	}

	return g.fail(ctx, log, job, err)
}

func (g *GenerationService) generate(ctx context.Context, job *models.Job, projectID uuid.UUID) error {
	if job.ProjectID != projectID {
		return apperrors.Validation("job %s belongs to project %s, not %s", job.ID, job.ProjectID, projectID)
	}

	project, err := g.store.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if _, err := g.store.GetUser(ctx, project.UserID); err != nil {
		return fmt.Errorf("project owner: %w", err)
	}
	assets, err := g.store.ListAssets(ctx, projectID)
	if err != nil {
		return err
	}

	assetURLs, err := g.resolveAssets(ctx, assets)
	if err != nil {
		return err
	}
	if err := g.checkpoint(ctx, job.ID, jobstate.ProgressCopy); err != nil {
		return err
	}

	copyResp, err := g.generator.GenerateCopy(ctx, copyRequest(project))
	if err != nil {
		return err
	}
	if err := validateCopy(&copyResp.CopyData); err != nil {
		return err
	}
	if err := g.checkpoint(ctx, job.ID, jobstate.ProgressRender); err != nil {
		return err
	}

	renderResp, err := g.generator.Render(ctx, backend.RenderRequest{
		ProjectID: projectID.String(),
		JobID:     job.ID.String(),
		CopyData:  copyResp.CopyData,
		Assets:    assetURLs,
		Template:  g.cfg.Template,
	})
	if err != nil {
		return err
	}
	if renderResp.PdfURL == "" {
		return &apperrors.ExternalServiceError{Service: backend.ServiceRender, Err: errors.New("response did not include a pdf_url")}
	}
	if err := g.checkpoint(ctx, job.ID, jobstate.ProgressPersist); err != nil {
		return err
	}

	render := &models.Render{
		JobID:     job.ID,
		ProjectID: projectID,
		UserID:    job.UserID,
		PdfURL:    renderResp.PdfURL,
		PngURL:    sql.NullString{String: renderResp.PngURL, Valid: renderResp.PngURL != ""},
		Copy:      copyResp.CopyData,
		Layout:    g.layout(),
	}
	if err := g.store.CreateRender(ctx, render); err != nil {
		return err
	}

	if _, err := g.store.UpdateJob(ctx, job.ID, func(job *models.Job) error {
		if job.Status.IsTerminal() {
			return ErrJobSuperseded
		}
		return jobstate.Complete(job, render.ID)
	}); err != nil {
		return err
	}
	g.setProjectStatus(ctx, projectID, models.ProjectStatusCompleted)
	return nil
}

// resolveAssets signs every asset URL concurrently and picks the newest upload per role.
func (g *GenerationService) resolveAssets(ctx context.Context, assets []models.Asset) (map[string]string, error) {
	urls := make([]string, len(assets))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, a := range assets {
		eg.Go(func() error {
			url, err := g.blobs.SignedURL(egCtx, a.StoragePath)
			if err != nil {
				return fmt.Errorf("failed to resolve asset %s: %w", a.ID, err)
			}
			urls[i] = url
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// Assets are ordered oldest first, so later entries overwrite earlier ones.
	resolved := make(map[string]string, 2)
	for i, a := range assets {
		role := assetRoleHero
		if a.IsLogo {
			role = assetRoleLogo
		}
		resolved[role] = urls[i]
	}
	return resolved, nil
}

// checkpoint records progress, stopping the run if the job was finished elsewhere.
func (g *GenerationService) checkpoint(ctx context.Context, jobID uuid.UUID, progress int) error {
	_, err := g.store.UpdateJob(ctx, jobID, func(job *models.Job) error {
		if job.Status.IsTerminal() {
			return ErrJobSuperseded
		}
		return jobstate.Advance(job, progress)
	})
	return err
}

func (g *GenerationService) fail(ctx context.Context, log *zap.Logger, job *models.Job, cause error) error {
	message := cause.Error()
	if errors.Is(cause, context.DeadlineExceeded) {
		message = TimedOutMessage
	}

	// The run context may already be done; the failure must still be recorded.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failureWriteLimit)
	defer cancel()

	_, err := g.store.UpdateJob(writeCtx, job.ID, func(job *models.Job) error {
		if job.Status.IsTerminal() {
			return ErrJobSuperseded
		}
		return jobstate.Fail(job, message)
	})
	if errors.Is(err, ErrJobSuperseded) {
		log.Info("job finished elsewhere before failure was recorded", zap.NamedError("cause", cause))
		return err
	}
	if err != nil {
		log.Error("failed to record job failure", zap.NamedError("cause", cause), zap.Error(err))
		return errors.Join(cause, err)
	}

	g.setProjectStatus(writeCtx, job.ProjectID, models.ProjectStatusError)
	log.Warn("generation failed", zap.Error(cause))
	return cause
}

func (g *GenerationService) setProjectStatus(ctx context.Context, projectID uuid.UUID, status models.ProjectStatus) {
	err := g.store.SetProjectStatus(ctx, projectID, status)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		g.logger.Error("failed to update project status",
			zap.String("project_id", projectID.String()),
			zap.String("status", string(status)),
			zap.Error(err))
	}
}

func (g *GenerationService) layout() models.LayoutData {
	layout := models.LayoutData{Template: g.cfg.Template}
	if g.cfg.Palette.Primary != "" {
		palette := g.cfg.Palette
		layout.Palette = &palette
	}
	return layout
}

func copyRequest(p *models.Project) backend.CopyRequest {
	titles := make([]string, len(p.Features))
	for i, f := range p.Features {
		titles[i] = f.Title
	}

	audience := strings.TrimSpace(p.BusinessInfo.Audience)
	if audience == "" {
		audience = defaultAudience
	}
	return backend.CopyRequest{
		BusinessInfo: backend.BusinessInfo{
			Name:           p.BusinessInfo.Name,
			Type:           p.BusinessInfo.Type,
			Description:    p.BusinessInfo.Name + " - " + p.BusinessInfo.Type,
			TargetAudience: audience,
			KeyBenefits:    titles,
		},
		SelectedFeatures: titles,
	}
}

func validateCopy(c *models.CopyData) error {
	if strings.TrimSpace(c.Headline) == "" {
		return &apperrors.ExternalServiceError{Service: backend.ServiceAI, Err: errors.New("copy is missing a headline")}
	}
	if len(c.Bullets) != models.FeatureCount {
		return &apperrors.ExternalServiceError{Service: backend.ServiceAI,
			Err: fmt.Errorf("copy has %d bullets, expected %d", len(c.Bullets), models.FeatureCount)}
	}
	return nil
}
