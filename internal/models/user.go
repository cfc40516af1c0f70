package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID
	AuthSubject string
	Email       string
	Name        sql.NullString
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
