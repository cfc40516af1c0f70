// Package jobstate owns the job lifecycle: queued -> running -> {done | error}.
//
// Every mutation of a job's status, progress, error or result goes through this
// package so the invariants hold regardless of which caller performs the write:
// terminal jobs never change, progress never decreases while a job is active,
// and resultId is present exactly when the job is done.
package jobstate

import (
	"github.com/google/uuid"

	"brochure-backend/internal/apperrors"
	"brochure-backend/internal/models"
)

// Progress checkpoints written by the generation pipeline.
const (
	ProgressQueued    = 0
	ProgressStarted   = 10
	ProgressCopy      = 25
	ProgressRender    = 60
	ProgressPersist   = 85
	ProgressCompleted = 100
)

const (
	CancelledMessage    = "Cancelled by user"
	UnknownErrorMessage = "Unknown error"
)

// Update is a trusted status patch. Progress and Error are optional.
type Update struct {
	Status   models.JobStatus
	Progress *int
	Error    string
	ResultID uuid.NullUUID
}

// New returns a freshly queued job.
func New(jobType models.JobType, projectID, userID uuid.UUID) *models.Job {
	return &models.Job{
		ID:        uuid.New(),
		Type:      jobType,
		ProjectID: projectID,
		UserID:    userID,
		Status:    models.JobStatusQueued,
		Progress:  ProgressQueued,
	}
}

// Start moves a queued job to running at the first checkpoint.
func Start(job *models.Job) error {
	if job.Status != models.JobStatusQueued {
		return apperrors.InvalidTransition("cannot start job in status %s", job.Status)
	}
	job.Status = models.JobStatusRunning
	job.Progress = max(job.Progress, ProgressStarted)
	return nil
}

// Advance records progress on a running job.
func Advance(job *models.Job, progress int) error {
	if job.Status != models.JobStatusRunning {
		return apperrors.InvalidTransition("cannot advance job in status %s", job.Status)
	}
	if err := checkProgress(job, progress); err != nil {
		return err
	}
	job.Progress = progress
	return nil
}

// Complete marks the job done and links it to its render.
func Complete(job *models.Job, renderID uuid.UUID) error {
	if job.Status.IsTerminal() {
		return apperrors.InvalidTransition("job is already %s", job.Status)
	}
	if renderID == uuid.Nil {
		return apperrors.InvalidTransition("a done job requires a result")
	}
	job.Status = models.JobStatusDone
	job.Progress = ProgressCompleted
	job.ResultID = uuid.NullUUID{UUID: renderID, Valid: true}
	job.Error.Valid = false
	job.Error.String = ""
	return nil
}

// Fail marks the job as errored. Progress keeps its last value.
func Fail(job *models.Job, message string) error {
	if job.Status.IsTerminal() {
		return apperrors.InvalidTransition("job is already %s", job.Status)
	}
	if message == "" {
		message = UnknownErrorMessage
	}
	job.Status = models.JobStatusError
	job.Error.String = message
	job.Error.Valid = true
	job.ResultID = uuid.NullUUID{}
	return nil
}

// Cancel is the user-initiated failure path.
func Cancel(job *models.Job) error {
	if job.Status.IsTerminal() {
		return apperrors.InvalidTransition("cannot cancel a %s job", job.Status)
	}
	return Fail(job, CancelledMessage)
}

// Apply routes a generic patch through the transitions above.
func Apply(job *models.Job, u Update) error {
	if job.Status.IsTerminal() {
		return apperrors.InvalidTransition("job is already %s", job.Status)
	}
	if u.ResultID.Valid && u.Status != models.JobStatusDone {
		return apperrors.InvalidTransition("resultId is only allowed on a done job")
	}
	if u.Progress != nil {
		if err := checkProgress(job, *u.Progress); err != nil {
			return err
		}
	}

	switch u.Status {
	case models.JobStatusQueued:
		if job.Status != models.JobStatusQueued {
			return apperrors.InvalidTransition("cannot move a %s job back to queued", job.Status)
		}
		if u.Progress != nil && *u.Progress != job.Progress {
			return apperrors.InvalidTransition("a queued job cannot report progress")
		}
		return nil
	case models.JobStatusRunning:
		if job.Status == models.JobStatusQueued {
			job.Status = models.JobStatusRunning
		}
		if u.Progress != nil {
			job.Progress = *u.Progress
		}
		return nil
	case models.JobStatusDone:
		return Complete(job, u.ResultID.UUID)
	case models.JobStatusError:
		if u.Progress != nil {
			job.Progress = *u.Progress
		}
		return Fail(job, u.Error)
	default:
		return apperrors.Validation("unknown job status %q", u.Status)
	}
}

func checkProgress(job *models.Job, progress int) error {
	if progress < 0 || progress > 100 {
		return apperrors.Validation("progress must be between 0 and 100, got %d", progress)
	}
	if progress < job.Progress {
		return apperrors.InvalidTransition("progress cannot decrease from %d to %d", job.Progress, progress)
	}
	return nil
}
