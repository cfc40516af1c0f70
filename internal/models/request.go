package models

type CreateProjectRequest struct {
	Title        string       `json:"title" binding:"required"`
	BusinessInfo BusinessInfo `json:"businessInfo"`
	Features     []Feature    `json:"features"`
}

// UpdateProjectRequest patches only the fields that are present.
type UpdateProjectRequest struct {
	Title        *string       `json:"title,omitempty"`
	BusinessInfo *BusinessInfo `json:"businessInfo,omitempty"`
	Features     []Feature     `json:"features,omitempty"`
}

type UploadURLRequest struct {
	Filename string `json:"filename" binding:"required"`
}

type RegisterAssetRequest struct {
	StoragePath string `json:"storagePath" binding:"required"`
	MimeType    string `json:"mimeType" binding:"required"`
	Size        int64  `json:"size" binding:"required"`
	Width       *int32 `json:"width,omitempty"`
	Height      *int32 `json:"height,omitempty"`
	IsLogo      bool   `json:"isLogo"`
}

type CreateJobRequest struct {
	ProjectID string `json:"projectId" binding:"required" example:"4b0e9a8e-8e43-4f5e-9d6c-1f0b2a7c3d11"`
	// Type defaults to "generate", the only supported job type.
	Type string `json:"type,omitempty" example:"generate"`
}

// UpdateJobRequest is the trusted status patch used by internal callers.
type UpdateJobRequest struct {
	Status   string  `json:"status" binding:"required"`
	Progress *int    `json:"progress,omitempty"`
	Error    *string `json:"error,omitempty"`
	ResultID *string `json:"resultId,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
