package supabase_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"brochure-backend/internal/apperrors"
	"brochure-backend/internal/database"
	"brochure-backend/internal/jobstate"
	"brochure-backend/internal/models"
	"brochure-backend/internal/services"
	"brochure-backend/internal/supabase"
)

var _ services.Store = (*supabase.DatabaseClient)(nil)
var _ services.BlobStore = (*supabase.StorageClient)(nil)

// newDatabase starts a disposable Postgres, applies the migrations and returns a client.
func newDatabase(t *testing.T) *supabase.DatabaseClient {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Postgres integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("brochure_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate postgres: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrator, err := database.NewMigrator(dsn, zap.NewNop())
	require.NoError(t, err)
	applied, err := migrator.Run(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, applied)

	again, err := migrator.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, again, "migrations are applied once")
	require.NoError(t, migrator.Close())

	db, err := supabase.NewDatabaseClient(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedProject(t *testing.T, db *supabase.DatabaseClient) (*models.User, *models.Project) {
	t.Helper()
	ctx := context.Background()

	user, err := db.UpsertUser(ctx, "subject-"+uuid.NewString(), "owner@example.com", sql.NullString{})
	require.NoError(t, err)

	project := &models.Project{
		UserID:       user.ID,
		Title:        "Spring launch",
		BusinessInfo: models.BusinessInfo{Name: "Acme", Type: "Bakery"},
		Features: []models.Feature{
			{Title: "Fresh bread", Desc: "Baked daily"},
			{Title: "Local flour", Desc: "From nearby mills"},
			{Title: "Fast delivery", Desc: "Within the hour"},
		},
		Status: models.ProjectStatusDraft,
	}
	require.NoError(t, db.CreateProject(ctx, project))
	return user, project
}

func TestDatabaseClient(t *testing.T) {
	db := newDatabase(t)
	ctx := context.Background()

	t.Run("users are upserted by subject", func(t *testing.T) {
		first, err := db.UpsertUser(ctx, "same-subject", "old@example.com", sql.NullString{})
		require.NoError(t, err)
		second, err := db.UpsertUser(ctx, "same-subject", "new@example.com", sql.NullString{String: "Ada", Valid: true})
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		got, err := db.GetUser(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", got.Email)
		assert.Equal(t, "Ada", got.Name.String)

		bySubject, err := db.GetUserBySubject(ctx, "same-subject")
		require.NoError(t, err)
		assert.Equal(t, first.ID, bySubject.ID)

		_, err = db.GetUserBySubject(ctx, "unknown-subject")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("projects round trip", func(t *testing.T) {
		user, project := seedProject(t, db)

		got, err := db.GetProject(ctx, project.ID)
		require.NoError(t, err)
		assert.Equal(t, project.Features, got.Features)
		assert.Equal(t, project.BusinessInfo, got.BusinessInfo)

		require.NoError(t, db.SetProjectStatus(ctx, project.ID, models.ProjectStatusProcessing))
		processing := models.ProjectStatusProcessing
		list, err := db.ListProjects(ctx, user.ID, &processing)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, project.ID, list[0].ID)

		_, err = db.GetProject(ctx, uuid.New())
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("assets are listed oldest first", func(t *testing.T) {
		user, project := seedProject(t, db)
		for _, name := range []string{"first.png", "second.png"} {
			require.NoError(t, db.CreateAsset(ctx, &models.Asset{
				ProjectID:   project.ID,
				UserID:      user.ID,
				StoragePath: "users/" + user.ID.String() + "/" + name,
				MimeType:    "image/png",
				Size:        10,
			}))
		}

		assets, err := db.ListAssets(ctx, project.ID)
		require.NoError(t, err)
		require.Len(t, assets, 2)
		assert.Contains(t, assets[0].StoragePath, "first.png")
		assert.False(t, assets[1].UploadedAt.Before(assets[0].UploadedAt))
	})

	t.Run("job updates run under the row lock", func(t *testing.T) {
		user, project := seedProject(t, db)
		job := jobstate.New(models.JobTypeGenerate, project.ID, user.ID)
		require.NoError(t, db.CreateJob(ctx, job))

		started, err := db.UpdateJob(ctx, job.ID, jobstate.Start)
		require.NoError(t, err)
		assert.Equal(t, models.JobStatusRunning, started.Status)
		assert.Equal(t, jobstate.ProgressStarted, started.Progress)

		_, err = db.UpdateJob(ctx, job.ID, func(j *models.Job) error { return jobstate.Advance(j, 5) })
		assert.ErrorIs(t, err, apperrors.ErrInvalidStateTransition)

		got, err := db.GetJob(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, jobstate.ProgressStarted, got.Progress, "a rejected mutation writes nothing")

		_, err = db.UpdateJob(ctx, uuid.New(), jobstate.Start)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("render completes a job once", func(t *testing.T) {
		user, project := seedProject(t, db)
		job := jobstate.New(models.JobTypeGenerate, project.ID, user.ID)
		require.NoError(t, db.CreateJob(ctx, job))

		render := &models.Render{
			JobID:     job.ID,
			ProjectID: project.ID,
			UserID:    user.ID,
			PdfURL:    "https://renders.example.com/a.pdf",
			Copy: models.CopyData{
				Headline: "Fresh every day",
				Bullets:  []models.Bullet{{Title: "a"}, {Title: "b"}, {Title: "c"}},
			},
			Layout: models.LayoutData{Template: "product_a"},
		}
		require.NoError(t, db.CreateRender(ctx, render))

		dup := *render
		dup.ID = uuid.Nil
		assert.ErrorIs(t, db.CreateRender(ctx, &dup), apperrors.ErrInvalidStateTransition)

		done, err := db.UpdateJob(ctx, job.ID, func(j *models.Job) error { return jobstate.Complete(j, render.ID) })
		require.NoError(t, err)
		assert.Equal(t, render.ID, done.ResultID.UUID)

		got, err := db.GetRender(ctx, render.ID)
		require.NoError(t, err)
		assert.Equal(t, render.Copy, got.Copy)
		assert.Equal(t, "product_a", got.Layout.Template)

		renders, err := db.ListRendersByProject(ctx, project.ID)
		require.NoError(t, err)
		assert.Len(t, renders, 1)
	})

	t.Run("stale jobs and status filters", func(t *testing.T) {
		user, project := seedProject(t, db)
		active := jobstate.New(models.JobTypeGenerate, project.ID, user.ID)
		require.NoError(t, db.CreateJob(ctx, active))
		cancelled := jobstate.New(models.JobTypeGenerate, project.ID, user.ID)
		require.NoError(t, db.CreateJob(ctx, cancelled))
		_, err := db.UpdateJob(ctx, cancelled.ID, jobstate.Cancel)
		require.NoError(t, err)

		stale, err := db.ListStaleJobs(ctx, time.Now().Add(time.Minute))
		require.NoError(t, err)
		ids := make([]uuid.UUID, 0, len(stale))
		for _, j := range stale {
			ids = append(ids, j.ID)
		}
		assert.Contains(t, ids, active.ID)
		assert.NotContains(t, ids, cancelled.ID)

		failed := models.JobStatusError
		jobs, err := db.ListJobsByUser(ctx, user.ID, &failed)
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, jobstate.CancelledMessage, jobs[0].Error.String)
	})

	t.Run("deleting a project keeps its jobs", func(t *testing.T) {
		user, project := seedProject(t, db)
		job := jobstate.New(models.JobTypeGenerate, project.ID, user.ID)
		require.NoError(t, db.CreateJob(ctx, job))

		require.NoError(t, db.DeleteProject(ctx, project.ID))
		assert.ErrorIs(t, db.DeleteProject(ctx, project.ID), apperrors.ErrNotFound)

		_, err := db.GetJob(ctx, job.ID)
		assert.NoError(t, err)
	})
}
