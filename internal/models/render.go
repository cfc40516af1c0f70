package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Bullet struct {
	Title string `json:"title"`
	Desc  string `json:"desc"`
}

type CallToAction struct {
	Label string `json:"label"`
	Sub   string `json:"sub,omitempty"`
}

// CopyData is the generated brochure copy as returned by the AI service.
type CopyData struct {
	Headline    string        `json:"headline"`
	Subheadline string        `json:"subheadline,omitempty"`
	Bullets     []Bullet      `json:"bullets"`
	CTA         *CallToAction `json:"cta,omitempty"`
}

type Palette struct {
	Primary string `json:"primary"`
	Accent  string `json:"accent,omitempty"`
}

type LayoutData struct {
	Template string   `json:"template"`
	Palette  *Palette `json:"palette,omitempty"`
}

type Render struct {
	ID        uuid.UUID
	JobID     uuid.UUID
	ProjectID uuid.UUID
	UserID    uuid.UUID
	PdfURL    string
	PngURL    sql.NullString
	Copy      CopyData
	Layout    LayoutData
	CreatedAt time.Time
}
