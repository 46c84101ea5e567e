package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hourbook/hourbook/pkg/apperrors"
	"github.com/hourbook/hourbook/pkg/models"
	"github.com/hourbook/hourbook/pkg/repositories"
)

// ProjectService handles project lifecycle. Mutations are admin-only;
// reads are open to any authenticated user.
type ProjectService interface {
	CreateProject(ctx context.Context, actor models.Actor, project *models.Project) (*models.Project, error)
	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	UpdateProject(ctx context.Context, actor models.Actor, id uuid.UUID, updated *models.Project) (*models.Project, error)
	ArchiveProject(ctx context.Context, actor models.Actor, id uuid.UUID) error
	ListProjects(ctx context.Context) ([]*models.Project, error)
}

// projectService implements ProjectService.
type projectService struct {
	projectRepo repositories.ProjectRepository
	bus         *ChangeBus
	logger      *zap.Logger
}

// NewProjectService creates a new project service.
func NewProjectService(projectRepo repositories.ProjectRepository, bus *ChangeBus, logger *zap.Logger) ProjectService {
	return &projectService{projectRepo: projectRepo, bus: bus, logger: logger}
}

// CreateProject creates a project with server-owned defaults. The logged
// hours counter always starts at zero regardless of the request body.
func (s *projectService) CreateProject(ctx context.Context, actor models.Actor, project *models.Project) (*models.Project, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}

	if project.Status == "" {
		project.Status = models.StatusPlanning
	}
	project.TotalLoggedHours = 0
	project.IsActive = true
	project.DeletedAt = nil

	project.Normalize()
	if err := project.Validate(); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("Project created",
		zap.String("project_id", project.ID.String()),
		zap.String("name", project.Name),
		zap.String("billing_type", project.Billing.Type))
	s.bus.Publish(ChangeEvent{Entity: "project", Action: "created", ID: project.ID})

	return project, nil
}

// GetProject retrieves a project by ID, archived or not.
func (s *projectService) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return s.projectRepo.Get(ctx, id)
}

// UpdateProject replaces a project's mutable fields. The ID, the logged
// hours counter and the archive state are server-owned and survive the
// update untouched.
func (s *projectService) UpdateProject(ctx context.Context, actor models.Actor, id uuid.UUID, updated *models.Project) (*models.Project, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}

	existing, err := s.projectRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated.ID = existing.ID
	updated.TotalLoggedHours = existing.TotalLoggedHours
	updated.IsActive = existing.IsActive
	updated.DeletedAt = existing.DeletedAt
	updated.CreatedAt = existing.CreatedAt

	updated.Normalize()
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Update(ctx, updated); err != nil {
		return nil, err
	}

	s.bus.Publish(ChangeEvent{Entity: "project", Action: "updated", ID: updated.ID})
	return updated, nil
}

// ArchiveProject soft-deletes a project. Repeated archives succeed and
// keep the original deletion timestamp. The project's time logs are left
// in place so history and analytics stay attributable.
func (s *projectService) ArchiveProject(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return apperrors.ErrForbidden
	}

	if err := s.projectRepo.Archive(ctx, id, time.Now()); err != nil {
		return err
	}

	s.logger.Info("Project archived", zap.String("project_id", id.String()))
	s.bus.Publish(ChangeEvent{Entity: "project", Action: "archived", ID: id})
	return nil
}

// ListProjects retrieves all active projects.
func (s *projectService) ListProjects(ctx context.Context) ([]*models.Project, error) {
	return s.projectRepo.ListActive(ctx)
}

// Ensure projectService implements ProjectService at compile time.
var _ ProjectService = (*projectService)(nil)
