package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"brochure-backend/internal/apperrors"
	"brochure-backend/internal/jobstate"
	"brochure-backend/internal/models"
	"brochure-backend/internal/queue"
)

const (
	ScheduleFailedMessage = "failed to schedule generation"
	TimedOutMessage       = "Generation timed out"
)

type JobService struct {
	store  Store
	queue  queue.Queue
	logger *zap.Logger
}

func NewJobService(store Store, q queue.Queue, logger *zap.Logger) *JobService {
	return &JobService{store: store, queue: q, logger: logger}
}

// Create queues a job for a project the user owns and schedules exactly one generation run.
// The job is returned as soon as it is scheduled.
func (s *JobService) Create(ctx context.Context, userID, projectID uuid.UUID, jobType models.JobType) (*models.Job, error) {
	if jobType == "" {
		jobType = models.JobTypeGenerate
	}
	if jobType != models.JobTypeGenerate {
		return nil, apperrors.Validation("unsupported job type %q", jobType)
	}
	if _, err := ownedProject(ctx, s.store, userID, projectID); err != nil {
		return nil, err
	}

	job := jobstate.New(jobType, projectID, userID)
	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, err
	}
	if err := s.store.SetProjectStatus(ctx, projectID, models.ProjectStatusProcessing); err != nil {
		s.logger.Error("failed to mark project processing", zap.String("job_id", job.ID.String()), zap.Error(err))
		s.abandon(ctx, job.ID)
		return nil, fmt.Errorf("%s: %w", ScheduleFailedMessage, err)
	}

	task := queue.Task{JobID: job.ID, ProjectID: projectID, EnqueuedAt: time.Now().UTC()}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		s.logger.Error("failed to enqueue job", zap.String("job_id", job.ID.String()), zap.Error(err))
		s.abandon(ctx, job.ID)
		return nil, fmt.Errorf("%s: %w", ScheduleFailedMessage, err)
	}

	s.logger.Info("job queued",
		zap.String("job_id", job.ID.String()),
		zap.String("project_id", projectID.String()),
		zap.String("user_id", userID.String()))
	return job, nil
}

// abandon fails a job that was stored but never scheduled, so it cannot sit queued forever.
func (s *JobService) abandon(ctx context.Context, jobID uuid.UUID) {
	_, err := s.UpdateStatus(context.WithoutCancel(ctx), jobID, jobstate.Update{
		Status: models.JobStatusError,
		Error:  ScheduleFailedMessage,
	})
	if err != nil {
		s.logger.Error("failed to mark unscheduled job", zap.String("job_id", jobID.String()), zap.Error(err))
	}
}

func (s *JobService) Get(ctx context.Context, userID, jobID uuid.UUID) (*models.Job, error) {
	return ownedJob(ctx, s.store, userID, jobID)
}

func (s *JobService) ListForProject(ctx context.Context, userID, projectID uuid.UUID) ([]models.Job, error) {
	if _, err := ownedProject(ctx, s.store, userID, projectID); err != nil {
		return nil, err
	}
	return s.store.ListJobsByProject(ctx, projectID)
}

func (s *JobService) ListForUser(ctx context.Context, userID uuid.UUID, status *models.JobStatus) ([]models.Job, error) {
	return s.store.ListJobsByUser(ctx, userID, status)
}

// Cancel fails an active job on behalf of its owner and returns the project to draft.
func (s *JobService) Cancel(ctx context.Context, userID, jobID uuid.UUID) (*models.Job, error) {
	job, err := s.store.UpdateJob(ctx, jobID, func(job *models.Job) error {
		if job.UserID != userID {
			return apperrors.Unauthorized("job")
		}
		return jobstate.Cancel(job)
	})
	if err != nil {
		return nil, err
	}

	s.setProjectStatus(ctx, job.ProjectID, models.ProjectStatusDraft)
	s.logger.Info("job cancelled", zap.String("job_id", jobID.String()))
	return job, nil
}

// UpdateStatus applies a trusted patch and mirrors terminal outcomes onto the project.
// A result id must name an existing render produced for this job.
func (s *JobService) UpdateStatus(ctx context.Context, jobID uuid.UUID, u jobstate.Update) (*models.Job, error) {
	if u.ResultID.Valid {
		render, err := s.store.GetRender(ctx, u.ResultID.UUID)
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Validation("render %s does not exist", u.ResultID.UUID)
		}
		if err != nil {
			return nil, err
		}
		if render.JobID != jobID {
			return nil, apperrors.Validation("render %s belongs to another job", u.ResultID.UUID)
		}
	}

	job, err := s.store.UpdateJob(ctx, jobID, func(job *models.Job) error {
		return jobstate.Apply(job, u)
	})
	if err != nil {
		return nil, err
	}

	switch job.Status {
	case models.JobStatusDone:
		s.setProjectStatus(ctx, job.ProjectID, models.ProjectStatusCompleted)
	case models.JobStatusError:
		s.setProjectStatus(ctx, job.ProjectID, models.ProjectStatusError)
	}
	return job, nil
}

// FailStale fails every queued or running job not updated since before.
// It returns how many jobs were failed.
func (s *JobService) FailStale(ctx context.Context, before time.Time) (int, error) {
	jobs, err := s.store.ListStaleJobs(ctx, before)
	if err != nil {
		return 0, err
	}

	failed := 0
	for _, j := range jobs {
		_, err := s.store.UpdateJob(ctx, j.ID, func(job *models.Job) error {
			// Re-checked under the lock: the job may have moved since it was listed.
			if job.Status.IsTerminal() || !job.UpdatedAt.Before(before) {
				return errNotStale
			}
			return jobstate.Fail(job, TimedOutMessage)
		})
		if errors.Is(err, errNotStale) {
			continue
		}
		if err != nil {
			return failed, err
		}
		failed++
		s.setProjectStatus(ctx, j.ProjectID, models.ProjectStatusError)
		s.logger.Warn("failed stale job", zap.String("job_id", j.ID.String()), zap.Time("last_update", j.UpdatedAt))
	}
	return failed, nil
}

var errNotStale = errors.New("job is not stale")

// The project may have been deleted while its job ran; a missing project is not an error.
func (s *JobService) setProjectStatus(ctx context.Context, projectID uuid.UUID, status models.ProjectStatus) {
	err := s.store.SetProjectStatus(ctx, projectID, status)
	if err == nil || errors.Is(err, apperrors.ErrNotFound) {
		return
	}
	s.logger.Error("failed to update project status",
		zap.String("project_id", projectID.String()),
		zap.String("status", string(status)),
		zap.Error(err))
}
