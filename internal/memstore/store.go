// Package memstore keeps entities and blobs in process memory. It backs the
// test suites and STORE_DRIVER=memory for local development.
package memstore

import (
	"context"
	"database/sql"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"brochure-backend/internal/apperrors"
	"brochure-backend/internal/models"
)

type Store struct {
	mu       sync.Mutex
	users    map[uuid.UUID]models.User
	projects map[uuid.UUID]models.Project
	assets   map[uuid.UUID]models.Asset
	jobs     map[uuid.UUID]models.Job
	renders  map[uuid.UUID]models.Render
	now      func() time.Time
}

func New() *Store {
	return &Store{
		users:    make(map[uuid.UUID]models.User),
		projects: make(map[uuid.UUID]models.Project),
		assets:   make(map[uuid.UUID]models.Asset),
		jobs:     make(map[uuid.UUID]models.Job),
		renders:  make(map[uuid.UUID]models.Render),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source used to stamp records.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) UpsertUser(_ context.Context, authSubject, email string, name sql.NullString) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, u := range s.users {
		if u.AuthSubject == authSubject {
			u.Email = email
			u.Name = name
			u.UpdatedAt = now
			s.users[id] = u
			return &u, nil
		}
	}

	u := models.User{
		ID:          uuid.New(),
		AuthSubject: authSubject,
		Email:       email,
		Name:        name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.users[u.ID] = u
	return &u, nil
}

func (s *Store) GetUser(_ context.Context, userID uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, apperrors.NotFound("user")
	}
	return &u, nil
}

func (s *Store) GetUserBySubject(_ context.Context, authSubject string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.AuthSubject == authSubject {
			return &u, nil
		}
	}
	return nil, apperrors.NotFound("user")
}

func (s *Store) CreateProject(_ context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	now := s.now()
	project.CreatedAt = now
	project.UpdatedAt = now
	s.projects[project.ID] = cloneProject(*project)
	return nil
}

func (s *Store) GetProject(_ context.Context, projectID uuid.UUID) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[projectID]
	if !ok {
		return nil, apperrors.NotFound("project")
	}
	p = cloneProject(p)
	return &p, nil
}

func (s *Store) ListProjects(_ context.Context, userID uuid.UUID, status *models.ProjectStatus) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Project
	for _, p := range s.projects {
		if p.UserID != userID || (status != nil && p.Status != *status) {
			continue
		}
		out = append(out, cloneProject(p))
	}
	slices.SortFunc(out, func(a, b models.Project) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (s *Store) UpdateProject(_ context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.projects[project.ID]
	if !ok {
		return apperrors.NotFound("project")
	}
	current.Title = project.Title
	current.BusinessInfo = project.BusinessInfo
	current.Features = slices.Clone(project.Features)
	current.UpdatedAt = s.now()
	s.projects[project.ID] = current
	project.UpdatedAt = current.UpdatedAt
	return nil
}

func (s *Store) SetProjectStatus(_ context.Context, projectID uuid.UUID, status models.ProjectStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[projectID]
	if !ok {
		return apperrors.NotFound("project")
	}
	p.Status = status
	p.UpdatedAt = s.now()
	s.projects[projectID] = p
	return nil
}

func (s *Store) DeleteProject(_ context.Context, projectID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[projectID]; !ok {
		return apperrors.NotFound("project")
	}
	delete(s.projects, projectID)
	for id, a := range s.assets {
		if a.ProjectID == projectID {
			delete(s.assets, id)
		}
	}
	return nil
}

func (s *Store) CreateAsset(_ context.Context, asset *models.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if asset.ID == uuid.Nil {
		asset.ID = uuid.New()
	}
	asset.UploadedAt = s.now()
	s.assets[asset.ID] = *asset
	return nil
}

func (s *Store) GetAsset(_ context.Context, assetID uuid.UUID) (*models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.assets[assetID]
	if !ok {
		return nil, apperrors.NotFound("asset")
	}
	return &a, nil
}

func (s *Store) ListAssets(_ context.Context, projectID uuid.UUID) ([]models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Asset
	for _, a := range s.assets {
		if a.ProjectID == projectID {
			out = append(out, a)
		}
	}
	slices.SortStableFunc(out, func(a, b models.Asset) int { return a.UploadedAt.Compare(b.UploadedAt) })
	return out, nil
}

func (s *Store) DeleteAsset(_ context.Context, assetID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.assets[assetID]; !ok {
		return apperrors.NotFound("asset")
	}
	delete(s.assets, assetID)
	return nil
}

func (s *Store) CreateJob(_ context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	job.CreatedAt = now
	job.UpdatedAt = now
	s.jobs[job.ID] = *job
	return nil
}

func (s *Store) GetJob(_ context.Context, jobID uuid.UUID) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[jobID]
	if !ok {
		return nil, apperrors.NotFound("job")
	}
	return &j, nil
}

func (s *Store) ListJobsByProject(_ context.Context, projectID uuid.UUID) ([]models.Job, error) {
	return s.filterJobs(func(j models.Job) bool { return j.ProjectID == projectID }), nil
}

func (s *Store) ListJobsByUser(_ context.Context, userID uuid.UUID, status *models.JobStatus) ([]models.Job, error) {
	return s.filterJobs(func(j models.Job) bool {
		return j.UserID == userID && (status == nil || j.Status == *status)
	}), nil
}

func (s *Store) ListStaleJobs(_ context.Context, before time.Time) ([]models.Job, error) {
	return s.filterJobs(func(j models.Job) bool {
		return !j.Status.IsTerminal() && j.UpdatedAt.Before(before)
	}), nil
}

func (s *Store) filterJobs(keep func(models.Job) bool) []models.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Job
	for _, j := range s.jobs {
		if keep(j) {
			out = append(out, j)
		}
	}
	slices.SortFunc(out, func(a, b models.Job) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out
}

func (s *Store) UpdateJob(_ context.Context, jobID uuid.UUID, mutate func(job *models.Job) error) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[jobID]
	if !ok {
		return nil, apperrors.NotFound("job")
	}
	if err := mutate(&j); err != nil {
		return nil, err
	}
	j.UpdatedAt = s.now()
	s.jobs[jobID] = j
	return &j, nil
}

func (s *Store) CreateRender(_ context.Context, render *models.Render) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.renders {
		if existing.JobID == render.JobID {
			return apperrors.InvalidTransition("a render already exists for job %s", render.JobID)
		}
	}
	if render.ID == uuid.Nil {
		render.ID = uuid.New()
	}
	render.CreatedAt = s.now()
	r := *render
	r.Copy.Bullets = slices.Clone(render.Copy.Bullets)
	s.renders[r.ID] = r
	return nil
}

func (s *Store) GetRender(_ context.Context, renderID uuid.UUID) (*models.Render, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.renders[renderID]
	if !ok {
		return nil, apperrors.NotFound("render")
	}
	return &r, nil
}

func (s *Store) ListRendersByProject(_ context.Context, projectID uuid.UUID) ([]models.Render, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Render
	for _, r := range s.renders {
		if r.ProjectID == projectID {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b models.Render) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

// RenderCount reports how many renders exist.
func (s *Store) RenderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.renders)
}

func cloneProject(p models.Project) models.Project {
	p.Features = slices.Clone(p.Features)
	return p
}
