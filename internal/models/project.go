package models

import (
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	ProjectStatusDraft      ProjectStatus = "draft"
	ProjectStatusProcessing ProjectStatus = "processing"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusError      ProjectStatus = "error"
)

func ParseProjectStatus(s string) (ProjectStatus, bool) {
	switch ProjectStatus(s) {
	case ProjectStatusDraft, ProjectStatusProcessing, ProjectStatusCompleted, ProjectStatusError:
		return ProjectStatus(s), true
	}
	return "", false
}

// FeatureCount is the number of feature descriptors every project carries.
const FeatureCount = 3

type BusinessInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Audience string `json:"audience"`
}

type Feature struct {
	Title string `json:"title"`
	Desc  string `json:"desc"`
}

type Project struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Title        string
	BusinessInfo BusinessInfo
	Features     []Feature
	Status       ProjectStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
