package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

var AllowedAssetMimeTypes = []string{"image/jpeg", "image/png", "image/svg+xml"}

type Asset struct {
	ID          uuid.UUID
	ProjectID   uuid.UUID
	UserID      uuid.UUID
	StoragePath string
	MimeType    string
	Size        int64
	Width       sql.NullInt32
	Height      sql.NullInt32
	IsLogo      bool
	UploadedAt  time.Time
}
