package services_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brochure-backend/internal/apperrors"
	"brochure-backend/internal/backend"
	"brochure-backend/internal/jobstate"
	"brochure-backend/internal/models"
	"brochure-backend/internal/services"
	"brochure-backend/internal/simulator"
)

func TestGenerationService_Success(t *testing.T) {
	f := newFixture(t, simulator.Options{})
	ctx := context.Background()
	project := f.newProject(t, f.user.ID)
	f.upload(t, project, "hero.png", false)
	f.upload(t, project, "logo.png", true)

	job, err := f.jobs.Create(ctx, f.user.ID, project.ID, models.JobTypeGenerate)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusProcessing, f.project(t, project.ID).Status)

	require.NoError(t, f.gateway.Run(ctx, job.ID, project.ID))

	done := f.job(t, job.ID)
	assert.Equal(t, models.JobStatusDone, done.Status)
	assert.Equal(t, 100, done.Progress)
	require.True(t, done.ResultID.Valid)
	assert.False(t, done.Error.Valid)
	assert.Equal(t, models.ProjectStatusCompleted, f.project(t, project.ID).Status)

	assert.Equal(t, 1, f.store.RenderCount())
	render, err := f.renders.Get(ctx, f.user.ID, done.ResultID.UUID)
	require.NoError(t, err)
	assert.Len(t, render.Copy.Bullets, 3)
	assert.NotEmpty(t, render.PdfURL)
	assert.True(t, render.PngURL.Valid)
	assert.Equal(t, job.ID, render.JobID)
	assert.Equal(t, "product_a", render.Layout.Template)
	require.NotNil(t, render.Layout.Palette)
	assert.Equal(t, "#2563eb", render.Layout.Palette.Primary)

	copyReq := f.sim.LastCopyRequest()
	require.NotNil(t, copyReq)
	assert.Equal(t, "Acme - Bakery", copyReq.BusinessInfo.Description)
	assert.Equal(t, "General audience", copyReq.BusinessInfo.TargetAudience)
	assert.Equal(t, []string{"Fresh bread", "Local flour", "Fast delivery"}, copyReq.SelectedFeatures)

	renderReq := f.sim.LastRenderRequest()
	require.NotNil(t, renderReq)
	assert.Equal(t, job.ID.String(), renderReq.JobID)
	assert.Equal(t, "product_a", renderReq.Template)
	assert.Contains(t, renderReq.Assets["hero"], "hero.png")
	assert.Contains(t, renderReq.Assets["logo"], "logo.png")
}

func TestGenerationService_RenderWithoutPNG(t *testing.T) {
	f := newFixture(t, simulator.Options{OmitPNG: true})
	ctx := context.Background()
	project := f.newProject(t, f.user.ID)

	job, err := f.jobs.Create(ctx, f.user.ID, project.ID, models.JobTypeGenerate)
	require.NoError(t, err)
	require.NoError(t, f.gateway.Run(ctx, job.ID, project.ID))

	done := f.job(t, job.ID)
	require.Equal(t, models.JobStatusDone, done.Status)
	render, err := f.renders.Get(ctx, f.user.ID, done.ResultID.UUID)
	require.NoError(t, err)
	assert.NotEmpty(t, render.PdfURL)
	assert.False(t, render.PngURL.Valid)
	assert.Empty(t, models.NewRenderResponse(render).PngURL)
}

func TestGenerationService_NewestUploadWinsPerRole(t *testing.T) {
	f := newFixture(t, simulator.Options{})
	ctx := context.Background()
	project := f.newProject(t, f.user.ID)
	f.upload(t, project, "first-hero.png", false)
	f.upload(t, project, "second-hero.png", false)

	job, err := f.jobs.Create(ctx, f.user.ID, project.ID, "")
	require.NoError(t, err)
	require.NoError(t, f.gateway.Run(ctx, job.ID, project.ID))

	assets := f.sim.LastRenderRequest().Assets
	assert.Contains(t, assets["hero"], "second-hero.png")
	_, hasLogo := assets["logo"]
	assert.False(t, hasLogo)
}

func TestGenerationService_AIFailure(t *testing.T) {
	f := newFixture(t, simulator.Options{CopyStatus: http.StatusInternalServerError})
	ctx := context.Background()
	project := f.newProject(t, f.user.ID)

	job, err := f.jobs.Create(ctx, f.user.ID, project.ID, models.JobTypeGenerate)
	require.NoError(t, err)

	err = f.gateway.Run(ctx, job.ID, project.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrExternalService))

	failed := f.job(t, job.ID)
	assert.Equal(t, models.JobStatusError, failed.Status)
	assert.Contains(t, failed.Error.String, "500")
	assert.Contains(t, failed.Error.String, "AI generation failed")
	assert.Equal(t, jobstate.ProgressCopy, failed.Progress)
	assert.False(t, failed.ResultID.Valid)
	assert.Equal(t, models.ProjectStatusError, f.project(t, project.ID).Status)
	assert.Equal(t, 0, f.store.RenderCount())
	assert.Equal(t, 1, f.sim.CopyCalls())
	assert.Equal(t, 0, f.sim.RenderCalls())
}

func TestGenerationService_InvalidResponses(t *testing.T) {
	tests := []struct {
		name    string
		opts    simulator.Options
		message string
	}{
		{"missing pdf", simulator.Options{OmitPDF: true}, "pdf_url"},
		{"wrong bullet count", simulator.Options{BulletCount: 2}, "2 bullets"},
		{"render failure", simulator.Options{RenderStatus: http.StatusServiceUnavailable}, "PDF generation failed: 503"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.opts)
			ctx := context.Background()
			project := f.newProject(t, f.user.ID)

			job, err := f.jobs.Create(ctx, f.user.ID, project.ID, models.JobTypeGenerate)
			require.NoError(t, err)

			require.Error(t, f.gateway.Run(ctx, job.ID, project.ID))

			failed := f.job(t, job.ID)
			assert.Equal(t, models.JobStatusError, failed.Status)
			assert.Contains(t, failed.Error.String, tt.message)
			assert.Equal(t, 0, f.store.RenderCount())
			assert.Equal(t, models.ProjectStatusError, f.project(t, project.ID).Status)
		})
	}
}

func TestGenerationService_CancelledBeforeRun(t *testing.T) {
	f := newFixture(t, simulator.Options{})
	ctx := context.Background()
	project := f.newProject(t, f.user.ID)

	job, err := f.jobs.Create(ctx, f.user.ID, project.ID, models.JobTypeGenerate)
	require.NoError(t, err)
	_, err = f.jobs.Cancel(ctx, f.user.ID, job.ID)
	require.NoError(t, err)

	err = f.gateway.Run(ctx, job.ID, project.ID)
	assert.ErrorIs(t, err, services.ErrJobSuperseded)

	cancelled := f.job(t, job.ID)
	assert.Equal(t, models.JobStatusError, cancelled.Status)
	assert.Equal(t, jobstate.CancelledMessage, cancelled.Error.String)
	assert.Equal(t, models.ProjectStatusDraft, f.project(t, project.ID).Status)
	assert.Equal(t, 0, f.sim.CopyCalls())
	assert.Equal(t, 0, f.store.RenderCount())
}

func TestGenerationService_CancelledDuringRender(t *testing.T) {
	f := newFixture(t, simulator.Options{})
	ctx := context.Background()
	project := f.newProject(t, f.user.ID)

	job, err := f.jobs.Create(ctx, f.user.ID, project.ID, models.JobTypeGenerate)
	require.NoError(t, err)

	f.sim.SetOptions(simulator.Options{BeforeRender: func(backend.RenderRequest) {
		_, err := f.jobs.Cancel(context.Background(), f.user.ID, job.ID)
		assert.NoError(t, err)
	}})

	err = f.gateway.Run(ctx, job.ID, project.ID)
	assert.ErrorIs(t, err, services.ErrJobSuperseded)

	cancelled := f.job(t, job.ID)
	assert.Equal(t, models.JobStatusError, cancelled.Status)
	assert.Equal(t, jobstate.CancelledMessage, cancelled.Error.String)
	assert.Equal(t, jobstate.ProgressRender, cancelled.Progress)
	assert.Equal(t, models.ProjectStatusDraft, f.project(t, project.ID).Status)
	assert.Equal(t, 0, f.store.RenderCount())
}

func TestGenerationService_RedeliveryDoesNotRenderTwice(t *testing.T) {
	f := newFixture(t, simulator.Options{})
	ctx := context.Background()
	project := f.newProject(t, f.user.ID)

	job, err := f.jobs.Create(ctx, f.user.ID, project.ID, models.JobTypeGenerate)
	require.NoError(t, err)

	require.NoError(t, f.gateway.Run(ctx, job.ID, project.ID))
	assert.ErrorIs(t, f.gateway.Run(ctx, job.ID, project.ID), services.ErrJobSuperseded)

	assert.Equal(t, 1, f.store.RenderCount())
	assert.Equal(t, 1, f.sim.RenderCalls())
}

func TestGenerationService_Timeout(t *testing.T) {
	f := newFixture(t, simulator.Options{Latency: 500 * time.Millisecond})
	project := f.newProject(t, f.user.ID)

	job, err := f.jobs.Create(context.Background(), f.user.ID, project.ID, models.JobTypeGenerate)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.Error(t, f.gateway.Run(ctx, job.ID, project.ID))

	failed := f.job(t, job.ID)
	assert.Equal(t, models.JobStatusError, failed.Status)
	assert.Equal(t, services.TimedOutMessage, failed.Error.String)
}

func TestGenerationService_MissingProject(t *testing.T) {
	f := newFixture(t, simulator.Options{})
	ctx := context.Background()
	project := f.newProject(t, f.user.ID)

	job, err := f.jobs.Create(ctx, f.user.ID, project.ID, models.JobTypeGenerate)
	require.NoError(t, err)
	require.NoError(t, f.store.DeleteProject(ctx, project.ID))

	err = f.gateway.Run(ctx, job.ID, project.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	failed := f.job(t, job.ID)
	assert.Equal(t, models.JobStatusError, failed.Status)
	assert.Contains(t, failed.Error.String, "project")
}
