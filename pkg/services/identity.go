package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hourbook/hourbook/pkg/apperrors"
	"github.com/hourbook/hourbook/pkg/auth"
	"github.com/hourbook/hourbook/pkg/models"
	"github.com/hourbook/hourbook/pkg/repositories"
)

// RegisterInput is the registration request payload.
type RegisterInput struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	Department string `json:"department,omitempty"`

	// Role may request admin; doing so requires the parent PIN.
	Role      string `json:"role,omitempty"`
	ParentPIN string `json:"parentPin,omitempty"`
}

// AuthResult carries the authenticated profile and its access token.
type AuthResult struct {
	Profile *models.UserProfile `json:"userData"`
	Token   string              `json:"token"`
}

// IdentityService wraps credential lifecycle and principal resolution.
type IdentityService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	ChangePassword(ctx context.Context, userID, current, newPassword string) error
	ResetPassword(ctx context.Context, email string) error
	// Resolve loads the profile for an authenticated principal, falling
	// back to a synthetic profile when the record cannot be read.
	Resolve(ctx context.Context, userID, email string) *models.UserProfile
}

// identityService implements IdentityService.
type identityService struct {
	userRepo  repositories.UserRepository
	issuer    *auth.TokenIssuer
	parentPIN string
	logger    *zap.Logger
}

// NewIdentityService creates a new identity service.
func NewIdentityService(userRepo repositories.UserRepository, issuer *auth.TokenIssuer, parentPIN string, logger *zap.Logger) IdentityService {
	return &identityService{
		userRepo:  userRepo,
		issuer:    issuer,
		parentPIN: parentPIN,
		logger:    logger,
	}
}

// Register creates a new profile with hashed credentials and issues a token.
// Requests for the admin role must present the parent PIN.
func (s *identityService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	role := input.Role
	if role == "" {
		role = models.RoleUser
	}
	if role == models.RoleAdmin && input.ParentPIN != s.parentPIN {
		s.logger.Warn("Admin registration rejected: bad parent PIN",
			zap.String("email", input.Email))
		return nil, apperrors.ErrAuthRejected
	}

	profile := &models.UserProfile{
		ID:         uuid.NewString(),
		Email:      input.Email,
		Name:       input.Name,
		Phone:      input.Phone,
		Department: input.Department,
		Role:       role,
		IsActive:   true,
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, profile, hash); err != nil {
		return nil, err
	}

	token, err := s.issuer.Issue(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("User registered",
		zap.String("user_id", profile.ID),
		zap.String("role", profile.Role))

	return &AuthResult{Profile: profile, Token: token}, nil
}

// Login verifies credentials and issues a token. Disabled accounts are
// rejected after the password check so the two failures are
// distinguishable to the caller but not to a guesser probing emails.
func (s *identityService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	profile, hash, err := s.userRepo.GetCredentials(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrAuthRejected
		}
		return nil, err
	}

	if err := auth.VerifyPassword(hash, password); err != nil {
		return nil, err
	}

	if !profile.IsActive {
		s.logger.Warn("Login rejected for disabled account", zap.String("user_id", profile.ID))
		return nil, apperrors.ErrAccountDisabled
	}

	token, err := s.issuer.Issue(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &AuthResult{Profile: profile, Token: token}, nil
}

// ChangePassword re-authenticates with the current password before setting
// the new one. Callers are expected to log out and back in afterwards.
func (s *identityService) ChangePassword(ctx context.Context, userID, current, newPassword string) error {
	profile, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	_, hash, err := s.userRepo.GetCredentials(ctx, profile.Email)
	if err != nil {
		return err
	}

	if err := auth.VerifyPassword(hash, current); err != nil {
		return err
	}

	newHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.userRepo.UpdatePasswordHash(ctx, userID, newHash)
}

// ResetPassword issues a short-lived reset token for the account. Unknown
// emails succeed silently so the endpoint cannot be used to enumerate
// accounts; delivery is handled by an external mailer reading the log.
func (s *identityService) ResetPassword(ctx context.Context, email string) error {
	profile, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}

	token, err := s.issuer.IssueResetToken(profile)
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}

	s.logger.Info("Password reset token issued",
		zap.String("user_id", profile.ID),
		zap.String("reset_token", token))
	return nil
}

// Resolve loads the profile for a principal, synthesizing one from the
// identity claims when the record cannot be read.
func (s *identityService) Resolve(ctx context.Context, userID, email string) *models.UserProfile {
	profile, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn("Profile read failed, using synthetic profile",
			zap.String("user_id", userID),
			zap.Error(err))
		return models.SyntheticProfile(userID, email)
	}
	return profile
}

// Ensure identityService implements IdentityService at compile time.
var _ IdentityService = (*identityService)(nil)
