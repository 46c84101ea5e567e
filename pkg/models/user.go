// Package models contains domain types for hourbook.
package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/hourbook/hourbook/pkg/apperrors"
)

// Role constants for user roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleAdmin, RoleUser}

// IsValidRole checks if the given role is valid.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// companyIDPattern matches assigned company identifiers: "C" followed by at
// least three digits.
var companyIDPattern = regexp.MustCompile(`^C\d{3,}$`)

// UserProfile is the profile record kept for each principal. The ID matches
// the identity subject; ID and Email are immutable after registration.
type UserProfile struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	Phone             string    `json:"phone,omitempty"`
	Department        string    `json:"department,omitempty"`
	CompanyID         string    `json:"companyId,omitempty"`
	Role              string    `json:"role"`
	IsActive          bool      `json:"isActive"`
	ProfilePictureURL string    `json:"profilePictureUrl,omitempty"`
	HourlyRate        float64   `json:"hourlyRate,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the profile carries the admin role.
func (u *UserProfile) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Validate checks the profile invariants shared by registration and update.
func (u *UserProfile) Validate() error {
	v := apperrors.NewValidationError()

	if !strings.Contains(u.Email, "@") {
		v.Field("email", "must be a valid email address")
	}
	if len(strings.TrimSpace(u.Name)) == 0 {
		v.Field("name", "is required")
	}
	if !IsValidRole(u.Role) {
		v.Fieldf("role", "must be one of %s", strings.Join(ValidRoles, ", "))
	}
	if u.CompanyID != "" && !companyIDPattern.MatchString(u.CompanyID) {
		v.Field("companyId", "must match C followed by at least three digits")
	}
	if u.HourlyRate < 0 {
		v.Field("hourlyRate", "must not be negative")
	}

	return v.ErrOrNil()
}

// SyntheticProfile derives a placeholder profile from an identity principal
// whose profile record could not be read. The display name falls back to the
// email prefix and the role to plain user.
func SyntheticProfile(id, email string) *UserProfile {
	name := email
	if i := strings.Index(email, "@"); i > 0 {
		name = email[:i]
	}
	return &UserProfile{
		ID:       id,
		Email:    email,
		Name:     name,
		Role:     RoleUser,
		IsActive: true,
	}
}

// Actor identifies who is performing an operation, for authorization checks.
type Actor struct {
	ID   string
	Role string
}

// IsAdmin reports whether the actor carries the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
