package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type JobType string

const JobTypeGenerate JobType = "generate"

type JobStatus string

const (
	JobStatusQueued  JobStatus = "queued"
	JobStatusRunning JobStatus = "running"
	JobStatusDone    JobStatus = "done"
	JobStatusError   JobStatus = "error"
)

func ParseJobStatus(s string) (JobStatus, bool) {
	switch JobStatus(s) {
	case JobStatusQueued, JobStatusRunning, JobStatusDone, JobStatusError:
		return JobStatus(s), true
	}
	return "", false
}

func (s JobStatus) IsTerminal() bool {
	return s == JobStatusDone || s == JobStatusError
}

type Job struct {
	ID        uuid.UUID
	Type      JobType
	ProjectID uuid.UUID
	UserID    uuid.UUID
	Status    JobStatus
	Progress  int
	Error     sql.NullString
	ResultID  uuid.NullUUID
	CreatedAt time.Time
	UpdatedAt time.Time
}
