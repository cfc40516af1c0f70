package jobstate_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brochure-backend/internal/jobstate"
	"brochure-backend/internal/models"
)

func stepStates(view *models.JobView) []string {
	states := make([]string, len(view.Steps))
	for i, s := range view.Steps {
		states[i] = s.State
	}
	return states
}

func TestDescribe(t *testing.T) {
	queued := newJob()

	running := newJob()
	require.NoError(t, jobstate.Start(running))

	generating := newJob()
	require.NoError(t, jobstate.Start(generating))
	require.NoError(t, jobstate.Advance(generating, jobstate.ProgressRender))

	finalizing := newJob()
	require.NoError(t, jobstate.Start(finalizing))
	require.NoError(t, jobstate.Advance(finalizing, jobstate.ProgressPersist))

	done := newJob()
	require.NoError(t, jobstate.Complete(done, uuid.New()))

	failed := newJob()
	require.NoError(t, jobstate.Fail(failed, "AI generation failed: 500 - boom"))

	tests := []struct {
		name     string
		job      *models.Job
		tone     string
		terminal bool
		states   []string
	}{
		{"queued", queued, "neutral", false, []string{"current", "pending", "pending", "pending"}},
		{"started", running, "info", false, []string{"completed", "current", "pending", "pending"}},
		{"generating", generating, "info", false, []string{"completed", "completed", "current", "pending"}},
		{"finalizing", finalizing, "info", false, []string{"completed", "completed", "completed", "current"}},
		{"done", done, "success", true, []string{"completed", "completed", "completed", "completed"}},
		{"error", failed, "danger", true, []string{"error", "error", "error", "error"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := jobstate.Describe(tt.job)
			assert.Equal(t, tt.tone, view.Tone)
			assert.Equal(t, tt.terminal, view.Terminal)
			assert.Equal(t, tt.states, stepStates(view))
		})
	}
}

func TestDescribe_ErrorSurfacesStoredMessage(t *testing.T) {
	job := newJob()
	require.NoError(t, jobstate.Cancel(job))

	assert.Equal(t, jobstate.CancelledMessage, jobstate.Describe(job).Message)
}

type countingVisitor struct{ calls map[string]int }

func (v countingVisitor) Queued() string { v.calls["queued"]++; return "q" }

func (v countingVisitor) Running(int) string { v.calls["running"]++; return "r" }

func (v countingVisitor) Done(uuid.UUID) string { v.calls["done"]++; return "d" }

func (v countingVisitor) Error(message string) string { v.calls["error"]++; return message }

func TestVisit_DispatchesOnStatus(t *testing.T) {
	v := countingVisitor{calls: map[string]int{}}
	job := newJob()
	require.NoError(t, jobstate.Fail(job, "boom"))

	assert.Equal(t, "boom", jobstate.Visit[string](job, v))
	assert.Equal(t, 1, v.calls["error"])
}

func TestVisit_PanicsOnCorruptStatus(t *testing.T) {
	job := newJob()
	job.Status = "paused"

	assert.Panics(t, func() { jobstate.Describe(job) })
}
