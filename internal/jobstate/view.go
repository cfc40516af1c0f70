package jobstate

import (
	"fmt"

	"github.com/google/uuid"

	"brochure-backend/internal/models"
)

// StatusVisitor handles every job status. Adding a status means adding a method
// here, which breaks every visitor until it handles the new case.
type StatusVisitor[T any] interface {
	Queued() T
	Running(progress int) T
	Done(resultID uuid.UUID) T
	Error(message string) T
}

// Visit dispatches on the job's status.
func Visit[T any](job *models.Job, v StatusVisitor[T]) T {
	switch job.Status {
	case models.JobStatusQueued:
		return v.Queued()
	case models.JobStatusRunning:
		return v.Running(job.Progress)
	case models.JobStatusDone:
		return v.Done(job.ResultID.UUID)
	case models.JobStatusError:
		return v.Error(job.Error.String)
	}
	// Statuses are validated when read from storage or requests.
	panic(fmt.Sprintf("jobstate: unknown job status %q", job.Status))
}

type step struct {
	id          string
	label       string
	description string
}

var progressSteps = []step{
	{id: "queued", label: "Queued", description: "Waiting in queue"},
	{id: "processing", label: "Processing", description: "Analyzing your input"},
	{id: "generating", label: "Generating", description: "Creating your brochure"},
	{id: "finalizing", label: "Finalizing", description: "Preparing download"},
}

// Describe renders the poller-facing view of a job.
func Describe(job *models.Job) *models.JobView {
	return Visit[*models.JobView](job, viewVisitor{})
}

type viewVisitor struct{}

func (viewVisitor) Queued() *models.JobView {
	return &models.JobView{
		Label:   "Queued",
		Tone:    "neutral",
		Message: "Waiting for a generation worker",
		Steps:   steps(0, false),
	}
}

func (viewVisitor) Running(progress int) *models.JobView {
	current := 3
	switch {
	case progress < ProgressCopy:
		current = 1
	case progress < 75:
		current = 2
	}
	return &models.JobView{
		Label:   "Generating",
		Tone:    "info",
		Message: fmt.Sprintf("Generating your brochure (%d%%)", progress),
		Steps:   steps(current, false),
	}
}

func (viewVisitor) Done(uuid.UUID) *models.JobView {
	return &models.JobView{
		Label:    "Completed",
		Tone:     "success",
		Message:  "Your brochure is ready",
		Terminal: true,
		Steps:    steps(len(progressSteps), false),
	}
}

func (viewVisitor) Error(message string) *models.JobView {
	if message == "" {
		message = "Something went wrong while generating your brochure"
	}
	return &models.JobView{
		Label:    "Failed",
		Tone:     "danger",
		Message:  message,
		Terminal: true,
		Steps:    steps(-1, true),
	}
}

func steps(current int, failed bool) []models.JobViewStep {
	out := make([]models.JobViewStep, len(progressSteps))
	for i, s := range progressSteps {
		state := "pending"
		switch {
		case failed:
			state = "error"
		case i < current:
			state = "completed"
		case i == current:
			state = "current"
		}
		out[i] = models.JobViewStep{ID: s.id, Label: s.label, Description: s.description, State: state}
	}
	return out
}
