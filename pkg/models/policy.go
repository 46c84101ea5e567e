package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hourbook/hourbook/pkg/apperrors"
)

// Policy is a downloadable PDF document in the policy library.
type Policy struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	FileName    string    `json:"fileName"`
	FilePath    string    `json:"-"` // server-side storage path, never exposed
	SizeBytes   int64     `json:"sizeBytes"`
	UploadedBy  string    `json:"uploadedBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate checks the policy metadata shape.
func (p *Policy) Validate() error {
	v := apperrors.NewValidationError()

	if len(strings.TrimSpace(p.Title)) < 2 {
		v.Field("title", "must be at least 2 characters")
	}
	if !strings.HasSuffix(strings.ToLower(p.FileName), ".pdf") {
		v.Field("fileName", "must be a PDF document")
	}
	if p.SizeBytes <= 0 {
		v.Field("file", "must not be empty")
	}

	return v.ErrOrNil()
}
