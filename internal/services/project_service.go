package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"brochure-backend/internal/apperrors"
	"brochure-backend/internal/models"
)

type ProjectService struct {
	store  Store
	blobs  BlobStore
	logger *zap.Logger
}

func NewProjectService(store Store, blobs BlobStore, logger *zap.Logger) *ProjectService {
	return &ProjectService{store: store, blobs: blobs, logger: logger}
}

func (s *ProjectService) Create(ctx context.Context, userID uuid.UUID, req models.CreateProjectRequest) (*models.Project, error) {
	project := &models.Project{
		UserID:       userID,
		Title:        strings.TrimSpace(req.Title),
		BusinessInfo: req.BusinessInfo,
		Features:     req.Features,
		Status:       models.ProjectStatusDraft,
	}
	if err := validateProject(project); err != nil {
		return nil, err
	}

	if err := s.store.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	s.logger.Info("project created", zap.String("project_id", project.ID.String()), zap.String("user_id", userID.String()))
	return project, nil
}

func (s *ProjectService) Get(ctx context.Context, userID, projectID uuid.UUID) (*models.Project, error) {
	return ownedProject(ctx, s.store, userID, projectID)
}

func (s *ProjectService) List(ctx context.Context, userID uuid.UUID, status *models.ProjectStatus) ([]models.Project, error) {
	return s.store.ListProjects(ctx, userID, status)
}

// Update patches title, business info and features. Status is owned by the job lifecycle.
func (s *ProjectService) Update(ctx context.Context, userID, projectID uuid.UUID, req models.UpdateProjectRequest) (*models.Project, error) {
	project, err := ownedProject(ctx, s.store, userID, projectID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		project.Title = strings.TrimSpace(*req.Title)
	}
	if req.BusinessInfo != nil {
		project.BusinessInfo = *req.BusinessInfo
	}
	if req.Features != nil {
		project.Features = req.Features
	}
	if err := validateProject(project); err != nil {
		return nil, err
	}

	if err := s.store.UpdateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes the project, its assets and their blobs. Jobs and renders are kept.
// A project with a queued or running job cannot be deleted.
func (s *ProjectService) Delete(ctx context.Context, userID, projectID uuid.UUID) error {
	if _, err := ownedProject(ctx, s.store, userID, projectID); err != nil {
		return err
	}

	jobs, err := s.store.ListJobsByProject(ctx, projectID)
	if err != nil {
		return err
	}
	for _, j := range jobs {
		if !j.Status.IsTerminal() {
			return apperrors.InvalidTransition("project has an active job %s", j.ID)
		}
	}

	assets, err := s.store.ListAssets(ctx, projectID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteProject(ctx, projectID); err != nil {
		return err
	}

	paths := make([]string, 0, len(assets))
	for _, a := range assets {
		paths = append(paths, a.StoragePath)
	}
	if err := s.blobs.Delete(ctx, paths...); err != nil {
		s.logger.Warn("failed to remove project blobs",
			zap.String("project_id", projectID.String()), zap.Int("count", len(paths)), zap.Error(err))
	}
	return nil
}

func validateProject(p *models.Project) error {
	if p.Title == "" {
		return apperrors.Validation("title is required")
	}
	if strings.TrimSpace(p.BusinessInfo.Name) == "" {
		return apperrors.Validation("business name is required")
	}
	if strings.TrimSpace(p.BusinessInfo.Type) == "" {
		return apperrors.Validation("business type is required")
	}
	if len(p.Features) != models.FeatureCount {
		return apperrors.Validation("exactly %d features are required, got %d", models.FeatureCount, len(p.Features))
	}
	for i, f := range p.Features {
		if strings.TrimSpace(f.Title) == "" {
			return apperrors.Validation("feature %d needs a title", i+1)
		}
	}
	return nil
}
