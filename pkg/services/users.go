package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/hourbook/hourbook/pkg/apperrors"
	"github.com/hourbook/hourbook/pkg/models"
	"github.com/hourbook/hourbook/pkg/repositories"
)

// UserUpdateInput carries the updatable profile fields. Pointers
// distinguish absent fields from explicit zero values.
type UserUpdateInput struct {
	Name              *string  `json:"name,omitempty"`
	Phone             *string  `json:"phone,omitempty"`
	Department        *string  `json:"department,omitempty"`
	ProfilePictureURL *string  `json:"profilePictureUrl,omitempty"`
	HourlyRate        *float64 `json:"hourlyRate,omitempty"`

	// Admin-only fields.
	Role      *string `json:"role,omitempty"`
	CompanyID *string `json:"companyId,omitempty"`
	IsActive  *bool   `json:"isActive,omitempty"`
}

// UserService handles profile directory reads and updates.
type UserService interface {
	GetUser(ctx context.Context, actor models.Actor, id string) (*models.UserProfile, error)
	ListUsers(ctx context.Context, actor models.Actor) ([]*models.UserProfile, error)
	UpdateUser(ctx context.Context, actor models.Actor, id string, input UserUpdateInput) (*models.UserProfile, error)
}

// userService implements UserService.
type userService struct {
	userRepo repositories.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service.
func NewUserService(userRepo repositories.UserRepository, logger *zap.Logger) UserService {
	return &userService{userRepo: userRepo, logger: logger}
}

// GetUser retrieves a profile. Users may read their own; admins any.
func (s *userService) GetUser(ctx context.Context, actor models.Actor, id string) (*models.UserProfile, error) {
	if !actor.IsAdmin() && actor.ID != id {
		return nil, apperrors.ErrForbidden
	}
	return s.userRepo.GetByID(ctx, id)
}

// ListUsers retrieves the full directory. Admin-only.
func (s *userService) ListUsers(ctx context.Context, actor models.Actor) ([]*models.UserProfile, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	return s.userRepo.List(ctx)
}

// UpdateUser applies a partial profile update. Users may edit their own
// basic fields; role, company ID and activation require admin. Email and
// ID are immutable.
func (s *userService) UpdateUser(ctx context.Context, actor models.Actor, id string, input UserUpdateInput) (*models.UserProfile, error) {
	if !actor.IsAdmin() && actor.ID != id {
		return nil, apperrors.ErrForbidden
	}

	adminOnly := input.Role != nil || input.CompanyID != nil || input.IsActive != nil
	if adminOnly && !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}

	profile, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		profile.Name = *input.Name
	}
	if input.Phone != nil {
		profile.Phone = *input.Phone
	}
	if input.Department != nil {
		profile.Department = *input.Department
	}
	if input.ProfilePictureURL != nil {
		profile.ProfilePictureURL = *input.ProfilePictureURL
	}
	if input.HourlyRate != nil {
		profile.HourlyRate = *input.HourlyRate
	}
	if input.Role != nil {
		profile.Role = *input.Role
	}
	if input.CompanyID != nil {
		profile.CompanyID = *input.CompanyID
	}
	if input.IsActive != nil {
		profile.IsActive = *input.IsActive
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	s.logger.Info("User profile updated",
		zap.String("user_id", id),
		zap.String("updated_by", actor.ID))

	return profile, nil
}

// Ensure userService implements UserService at compile time.
var _ UserService = (*userService)(nil)
