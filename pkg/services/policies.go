package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hourbook/hourbook/pkg/apperrors"
	"github.com/hourbook/hourbook/pkg/models"
	"github.com/hourbook/hourbook/pkg/repositories"
)

// PolicyUpload describes an incoming policy document.
type PolicyUpload struct {
	Title       string
	Description string
	FileName    string
	Content     io.Reader
}

// PolicyService manages the company policy PDF library. Metadata lives in
// the database, the documents themselves on disk under the storage dir.
type PolicyService interface {
	UploadPolicy(ctx context.Context, actor models.Actor, upload PolicyUpload) (*models.Policy, error)
	GetPolicy(ctx context.Context, id uuid.UUID) (*models.Policy, error)
	// OpenPolicy returns the policy and a reader over its document.
	// The caller owns closing the reader.
	OpenPolicy(ctx context.Context, id uuid.UUID) (*models.Policy, io.ReadSeekCloser, error)
	ListPolicies(ctx context.Context) ([]*models.Policy, error)
	DeletePolicy(ctx context.Context, actor models.Actor, id uuid.UUID) error
}

// policyService implements PolicyService.
type policyService struct {
	policyRepo repositories.PolicyRepository
	storageDir string
	logger     *zap.Logger
}

// NewPolicyService creates a new policy service rooted at storageDir.
func NewPolicyService(policyRepo repositories.PolicyRepository, storageDir string, logger *zap.Logger) PolicyService {
	return &policyService{policyRepo: policyRepo, storageDir: storageDir, logger: logger}
}

// UploadPolicy stores the document on disk and records its metadata.
// Admin-only. Only PDF documents are accepted.
func (s *policyService) UploadPolicy(ctx context.Context, actor models.Actor, upload PolicyUpload) (*models.Policy, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}

	policy := &models.Policy{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(upload.Title),
		Description: strings.TrimSpace(upload.Description),
		FileName:    filepath.Base(upload.FileName),
		UploadedBy:  actor.ID,
	}
	if !strings.HasSuffix(strings.ToLower(policy.FileName), ".pdf") {
		v := apperrors.NewValidationError()
		v.Field("file", "must be a PDF document")
		return nil, v
	}

	if err := os.MkdirAll(s.storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare policy storage: %w", err)
	}

	// Documents are stored under their record ID, never the client name.
	policy.FilePath = filepath.Join(s.storageDir, policy.ID.String()+".pdf")

	f, err := os.Create(policy.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create policy file: %w", err)
	}
	size, err := io.Copy(f, upload.Content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(policy.FilePath)
		return nil, fmt.Errorf("failed to write policy file: %w", err)
	}
	policy.SizeBytes = size

	if err := policy.Validate(); err != nil {
		os.Remove(policy.FilePath)
		return nil, err
	}

	if err := s.policyRepo.Create(ctx, policy); err != nil {
		os.Remove(policy.FilePath)
		return nil, err
	}

	s.logger.Info("Policy uploaded",
		zap.String("policy_id", policy.ID.String()),
		zap.String("title", policy.Title),
		zap.Int64("size_bytes", policy.SizeBytes))

	return policy, nil
}

// GetPolicy retrieves policy metadata by ID.
func (s *policyService) GetPolicy(ctx context.Context, id uuid.UUID) (*models.Policy, error) {
	return s.policyRepo.Get(ctx, id)
}

// OpenPolicy retrieves the policy and opens its document for streaming.
func (s *policyService) OpenPolicy(ctx context.Context, id uuid.UUID) (*models.Policy, io.ReadSeekCloser, error) {
	policy, err := s.policyRepo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(policy.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Error("Policy document missing from storage",
				zap.String("policy_id", id.String()),
				zap.String("path", policy.FilePath))
			return nil, nil, apperrors.ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to open policy file: %w", err)
	}
	return policy, f, nil
}

// ListPolicies retrieves all policy metadata, newest first.
func (s *policyService) ListPolicies(ctx context.Context) ([]*models.Policy, error) {
	return s.policyRepo.List(ctx)
}

// DeletePolicy removes the record and its document. Admin-only. A missing
// document on disk does not fail the delete.
func (s *policyService) DeletePolicy(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return apperrors.ErrForbidden
	}

	policy, err := s.policyRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.policyRepo.Delete(ctx, id); err != nil {
		return err
	}

	if err := os.Remove(policy.FilePath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("Failed to remove policy document",
			zap.String("policy_id", id.String()),
			zap.Error(err))
	}
	return nil
}

// Ensure policyService implements PolicyService at compile time.
var _ PolicyService = (*policyService)(nil)
