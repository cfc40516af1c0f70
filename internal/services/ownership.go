package services

import (
	"context"

	"github.com/google/uuid"

	"brochure-backend/internal/apperrors"
	"brochure-backend/internal/models"
)

// ownedProject loads a project and checks that userID owns it.
func ownedProject(ctx context.Context, store Store, userID, projectID uuid.UUID) (*models.Project, error) {
	project, err := store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.UserID != userID {
		return nil, apperrors.Unauthorized("project")
	}
	return project, nil
}

func ownedJob(ctx context.Context, store Store, userID, jobID uuid.UUID) (*models.Job, error) {
	job, err := store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		return nil, apperrors.Unauthorized("job")
	}
	return job, nil
}
