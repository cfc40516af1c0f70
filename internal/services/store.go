package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"brochure-backend/internal/models"
)

// Store is the entity store: durable keyed records with ownership and status lookups.
// Lookups of missing records return an error wrapping apperrors.ErrNotFound.
type Store interface {
	Ping(ctx context.Context) error

	UpsertUser(ctx context.Context, authSubject, email string, name sql.NullString) (*models.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
	GetUserBySubject(ctx context.Context, authSubject string) (*models.User, error)

	CreateProject(ctx context.Context, project *models.Project) error
	GetProject(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
	ListProjects(ctx context.Context, userID uuid.UUID, status *models.ProjectStatus) ([]models.Project, error)
	UpdateProject(ctx context.Context, project *models.Project) error
	SetProjectStatus(ctx context.Context, projectID uuid.UUID, status models.ProjectStatus) error
	// DeleteProject removes the project and its assets. Jobs and renders are kept.
	DeleteProject(ctx context.Context, projectID uuid.UUID) error

	CreateAsset(ctx context.Context, asset *models.Asset) error
	GetAsset(ctx context.Context, assetID uuid.UUID) (*models.Asset, error)
	// ListAssets returns a project's assets oldest upload first.
	ListAssets(ctx context.Context, projectID uuid.UUID) ([]models.Asset, error)
	DeleteAsset(ctx context.Context, assetID uuid.UUID) error

	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, jobID uuid.UUID) (*models.Job, error)
	ListJobsByProject(ctx context.Context, projectID uuid.UUID) ([]models.Job, error)
	ListJobsByUser(ctx context.Context, userID uuid.UUID, status *models.JobStatus) ([]models.Job, error)
	// ListStaleJobs returns queued or running jobs not updated since before.
	ListStaleJobs(ctx context.Context, before time.Time) ([]models.Job, error)
	// UpdateJob applies mutate to the current job under a row lock and persists the
	// result. If mutate returns an error nothing is written and that error is returned.
	UpdateJob(ctx context.Context, jobID uuid.UUID, mutate func(job *models.Job) error) (*models.Job, error)

	CreateRender(ctx context.Context, render *models.Render) error
	GetRender(ctx context.Context, renderID uuid.UUID) (*models.Render, error)
	ListRendersByProject(ctx context.Context, projectID uuid.UUID) ([]models.Render, error)
}

// BlobStore is upload-then-reference object storage addressed by opaque paths.
type BlobStore interface {
	SignedURL(ctx context.Context, path string) (string, error)
	CreateUploadURL(ctx context.Context, path string) (string, error)
	Upload(ctx context.Context, path, contentType string, data []byte) error
	Delete(ctx context.Context, paths ...string) error
}
