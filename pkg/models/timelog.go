package models

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hourbook/hourbook/pkg/apperrors"
)

// Work types a time log can be recorded under.
const (
	WorkBackend        = "backend"
	WorkFrontendWeb    = "frontend_web"
	WorkFrontendMobile = "frontend_mobile"
	WorkUIDesign       = "ui_design"
	WorkDeployment     = "deployment"
	WorkTesting        = "testing"
	WorkDocumentation  = "documentation"
	WorkMeetings       = "meetings"
	WorkOther          = "other"
)

// ValidWorkTypes contains all valid work type values. ui_design remains in
// the catalog for legacy logs even though new entries cannot use it.
var ValidWorkTypes = []string{
	WorkBackend, WorkFrontendWeb, WorkFrontendMobile, WorkUIDesign,
	WorkDeployment, WorkTesting, WorkDocumentation, WorkMeetings, WorkOther,
}

// IsValidWorkType checks if the given work type is known.
func IsValidWorkType(w string) bool {
	for _, v := range ValidWorkTypes {
		if v == w {
			return true
		}
	}
	return false
}

// TimeLog records hours spent by one user on one project on one date under
// one work type.
type TimeLog struct {
	ID          uuid.UUID `json:"id"`
	ProjectID   uuid.UUID `json:"projectId"`
	UserID      string    `json:"userId"`
	UserName    string    `json:"userName"`
	CreatedBy   string    `json:"createdBy"`
	WorkType    string    `json:"workType"`
	Hours       float64   `json:"hours"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ValidHours reports whether h is within 0.1..24 at one-decimal precision.
func ValidHours(h float64) bool {
	if math.IsNaN(h) || h < 0.1 || h > 24 {
		return false
	}
	// One decimal of precision: 2.5 is fine, 2.55 is not.
	scaled := h * 10
	return math.Abs(scaled-math.Round(scaled)) < 1e-9
}

// Validate checks the time log shape. Stored legacy ui_design rows pass;
// keeping new work out of that type is the service's job.
func (l *TimeLog) Validate() error {
	v := apperrors.NewValidationError()

	if l.ProjectID == uuid.Nil {
		v.Field("projectId", "is required")
	}
	if l.UserID == "" {
		v.Field("userId", "is required")
	}
	if !IsValidWorkType(l.WorkType) {
		v.Fieldf("workType", "must be one of %s", strings.Join(ValidWorkTypes, ", "))
	}
	if !ValidHours(l.Hours) {
		v.Field("hours", "must be between 0.1 and 24 with one decimal of precision")
	}
	if l.Date.IsZero() {
		v.Field("date", "is required")
	}
	if len(strings.TrimSpace(l.Description)) < 5 {
		v.Field("description", "must be at least 5 characters")
	}

	return v.ErrOrNil()
}
