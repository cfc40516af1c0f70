package services

import (
	"context"

	"github.com/google/uuid"

	"brochure-backend/internal/apperrors"
	"brochure-backend/internal/models"
)

type RenderService struct {
	store Store
}

func NewRenderService(store Store) *RenderService {
	return &RenderService{store: store}
}

func (s *RenderService) Get(ctx context.Context, userID, renderID uuid.UUID) (*models.Render, error) {
	render, err := s.store.GetRender(ctx, renderID)
	if err != nil {
		return nil, err
	}
	if render.UserID != userID {
		return nil, apperrors.Unauthorized("render")
	}
	return render, nil
}

// ListForProject returns renders newest first. Renders survive project deletion but are
// only listed through a project the user still owns.
func (s *RenderService) ListForProject(ctx context.Context, userID, projectID uuid.UUID) ([]models.Render, error) {
	if _, err := ownedProject(ctx, s.store, userID, projectID); err != nil {
		return nil, err
	}
	return s.store.ListRendersByProject(ctx, projectID)
}
