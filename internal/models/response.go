package models

import "time"

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type ProjectResponse struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	BusinessInfo BusinessInfo    `json:"businessInfo"`
	Features     []Feature       `json:"features"`
	Status       ProjectStatus   `json:"status"`
	Assets       []AssetResponse `json:"assets,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type ProjectListResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

type AssetResponse struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId"`
	StoragePath string    `json:"storagePath"`
	MimeType    string    `json:"mimeType"`
	Size        int64     `json:"size"`
	Width       *int32    `json:"width,omitempty"`
	Height      *int32    `json:"height,omitempty"`
	IsLogo      bool      `json:"isLogo"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

type AssetListResponse struct {
	Assets []AssetResponse `json:"assets"`
}

type UploadURLResponse struct {
	UploadURL   string `json:"uploadUrl"`
	StoragePath string `json:"storagePath"`
}

type CreateJobResponse struct {
	JobID string `json:"jobId"`
}

type JobResponse struct {
	ID        string    `json:"id"`
	Type      JobType   `json:"type"`
	ProjectID string    `json:"projectId"`
	Status    JobStatus `json:"status"`
	Progress  int       `json:"progress"`
	Error     string    `json:"error,omitempty"`
	ResultID  string    `json:"resultId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	View      *JobView  `json:"view,omitempty"`
}

type JobListResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

// JobView is the presentation of a job for pollers: what to show, not how to decide it.
type JobView struct {
	Label    string        `json:"label"`
	Tone     string        `json:"tone"`
	Message  string        `json:"message"`
	Terminal bool          `json:"terminal"`
	Steps    []JobViewStep `json:"steps"`
}

type JobViewStep struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	State       string `json:"state"`
}

type RenderResponse struct {
	ID        string     `json:"id"`
	JobID     string     `json:"jobId"`
	ProjectID string     `json:"projectId"`
	PdfURL    string     `json:"pdfUrl"`
	PngURL    string     `json:"pngUrl,omitempty"`
	Copy      CopyData   `json:"copy"`
	Layout    LayoutData `json:"layout"`
	CreatedAt time.Time  `json:"createdAt"`
}

type RenderListResponse struct {
	Renders []RenderResponse `json:"renders"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ReadinessResponse struct {
	Status  string `json:"status"`
	Store   string `json:"store"`
	Backend string `json:"backend"`
	Error   string `json:"error,omitempty"`
}
