package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hourbook/hourbook/pkg/apperrors"
	"github.com/hourbook/hourbook/pkg/models"
	"github.com/hourbook/hourbook/pkg/repositories"
)

// TimeLogService handles the time log lifecycle and keeps each project's
// denormalized hours counter in sync by recomputing it from the logs after
// every mutation.
type TimeLogService interface {
	LogTime(ctx context.Context, actor models.Actor, log *models.TimeLog) (*models.TimeLog, error)
	GetTimeLog(ctx context.Context, id uuid.UUID) (*models.TimeLog, error)
	UpdateTimeLog(ctx context.Context, actor models.Actor, id uuid.UUID, updated *models.TimeLog) (*models.TimeLog, error)
	DeleteTimeLog(ctx context.Context, actor models.Actor, id uuid.UUID) error
	ListProjectLogs(ctx context.Context, projectID uuid.UUID) ([]*models.TimeLog, error)
	ListUserLogs(ctx context.Context, actor models.Actor, userID string, limit int) ([]*models.TimeLog, error)
	RecomputeProjectTotal(ctx context.Context, projectID uuid.UUID) (float64, error)
}

// timeLogService implements TimeLogService.
type timeLogService struct {
	timeLogRepo repositories.TimeLogRepository
	projectRepo repositories.ProjectRepository
	userRepo    repositories.UserRepository
	bus         *ChangeBus
	logger      *zap.Logger
}

// NewTimeLogService creates a new time log service.
func NewTimeLogService(timeLogRepo repositories.TimeLogRepository, projectRepo repositories.ProjectRepository, userRepo repositories.UserRepository, bus *ChangeBus, logger *zap.Logger) TimeLogService {
	return &timeLogService{
		timeLogRepo: timeLogRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		bus:         bus,
		logger:      logger,
	}
}

// uiDesignNotLoggable rejects storing new work under ui_design; that work
// is outsourced. Legacy rows keep the type.
func uiDesignNotLoggable() error {
	v := apperrors.NewValidationError()
	v.Field("workType", "ui_design time cannot be logged")
	return v
}

// LogTime records hours against an active project. Non-admin actors must
// be assigned to the project's team and always log under their own user
// id; admins may attribute the log to any user. The owner's display name
// is snapshotted from the user directory at creation and the project
// counter is recomputed afterwards.
func (s *timeLogService) LogTime(ctx context.Context, actor models.Actor, log *models.TimeLog) (*models.TimeLog, error) {
	project, err := s.projectRepo.Get(ctx, log.ProjectID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !project.HasMember(actor.ID) {
		return nil, apperrors.ErrForbidden
	}
	if !project.IsActive {
		v := apperrors.NewValidationError()
		v.Field("projectId", "project is archived")
		return nil, v
	}
	if log.WorkType == models.WorkUIDesign {
		return nil, uiDesignNotLoggable()
	}

	if !actor.IsAdmin() || log.UserID == "" {
		log.UserID = actor.ID
	}
	log.CreatedBy = log.UserID

	owner, err := s.userRepo.GetByID(ctx, log.UserID)
	if err != nil {
		return nil, err
	}
	log.UserName = owner.Name

	if err := log.Validate(); err != nil {
		return nil, err
	}

	if err := s.timeLogRepo.Create(ctx, log); err != nil {
		return nil, err
	}

	if _, err := s.RecomputeProjectTotal(ctx, log.ProjectID); err != nil {
		// The log is stored; the counter catches up on the next mutation.
		s.logger.Error("Failed to recompute project total after create",
			zap.String("project_id", log.ProjectID.String()),
			zap.Error(err))
	}

	s.logger.Info("Time logged",
		zap.String("log_id", log.ID.String()),
		zap.String("project_id", log.ProjectID.String()),
		zap.Float64("hours", log.Hours))
	s.bus.Publish(ChangeEvent{Entity: "time_log", Action: "created", ID: log.ID})

	return log, nil
}

// GetTimeLog retrieves a time log by ID.
func (s *timeLogService) GetTimeLog(ctx context.Context, id uuid.UUID) (*models.TimeLog, error) {
	return s.timeLogRepo.Get(ctx, id)
}

// UpdateTimeLog replaces a log's mutable fields. Only the log's owner or
// an admin may edit it. A log that already carries the ui_design work type
// keeps it, but no log may be switched to it. Moving a log requires an
// active destination project; when it moves, both counters are recomputed,
// otherwise only the owning project's.
func (s *timeLogService) UpdateTimeLog(ctx context.Context, actor models.Actor, id uuid.UUID, updated *models.TimeLog) (*models.TimeLog, error) {
	existing, err := s.timeLogRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && existing.UserID != actor.ID {
		return nil, apperrors.ErrForbidden
	}

	if updated.ProjectID == uuid.Nil {
		updated.ProjectID = existing.ProjectID
	}
	if updated.ProjectID != existing.ProjectID {
		project, err := s.projectRepo.Get(ctx, updated.ProjectID)
		if err != nil {
			return nil, err
		}
		if !actor.IsAdmin() && !project.HasMember(actor.ID) {
			return nil, apperrors.ErrForbidden
		}
		if !project.IsActive {
			v := apperrors.NewValidationError()
			v.Field("projectId", "project is archived")
			return nil, v
		}
	}
	if updated.WorkType == models.WorkUIDesign && existing.WorkType != models.WorkUIDesign {
		return nil, uiDesignNotLoggable()
	}

	updated.ID = existing.ID
	updated.UserID = existing.UserID
	updated.UserName = existing.UserName
	updated.CreatedBy = existing.CreatedBy
	updated.CreatedAt = existing.CreatedAt

	if err := updated.Validate(); err != nil {
		return nil, err
	}

	if err := s.timeLogRepo.Update(ctx, updated); err != nil {
		return nil, err
	}

	if _, err := s.RecomputeProjectTotal(ctx, updated.ProjectID); err != nil {
		s.logger.Error("Failed to recompute project total after update",
			zap.String("project_id", updated.ProjectID.String()),
			zap.Error(err))
	}
	if updated.ProjectID != existing.ProjectID {
		if _, err := s.RecomputeProjectTotal(ctx, existing.ProjectID); err != nil {
			s.logger.Error("Failed to recompute project total after move",
				zap.String("project_id", existing.ProjectID.String()),
				zap.Error(err))
		}
	}

	s.bus.Publish(ChangeEvent{Entity: "time_log", Action: "updated", ID: updated.ID})
	return updated, nil
}

// DeleteTimeLog hard-deletes a log and recomputes the project counter.
// Only the log's owner or an admin may delete it.
func (s *timeLogService) DeleteTimeLog(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	existing, err := s.timeLogRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && existing.UserID != actor.ID {
		return apperrors.ErrForbidden
	}

	if err := s.timeLogRepo.Delete(ctx, id); err != nil {
		return err
	}

	if _, err := s.RecomputeProjectTotal(ctx, existing.ProjectID); err != nil {
		s.logger.Error("Failed to recompute project total after delete",
			zap.String("project_id", existing.ProjectID.String()),
			zap.Error(err))
	}

	s.bus.Publish(ChangeEvent{Entity: "time_log", Action: "deleted", ID: id})
	return nil
}

// ListProjectLogs retrieves a project's logs, newest first.
func (s *timeLogService) ListProjectLogs(ctx context.Context, projectID uuid.UUID) ([]*models.TimeLog, error) {
	return s.timeLogRepo.ListByProject(ctx, projectID)
}

// ListUserLogs retrieves a user's logs, newest first. Non-admin actors may
// only read their own.
func (s *timeLogService) ListUserLogs(ctx context.Context, actor models.Actor, userID string, limit int) ([]*models.TimeLog, error) {
	if !actor.IsAdmin() && actor.ID != userID {
		return nil, apperrors.ErrForbidden
	}
	return s.timeLogRepo.ListByUser(ctx, userID, limit)
}

// RecomputeProjectTotal derives the project's logged hours from its logs
// and writes the result back. The full recomputation makes the operation
// idempotent and self-healing after a missed update.
func (s *timeLogService) RecomputeProjectTotal(ctx context.Context, projectID uuid.UUID) (float64, error) {
	total, err := s.timeLogRepo.SumHoursByProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	if err := s.projectRepo.UpdateTotalLoggedHours(ctx, projectID, total); err != nil {
		return 0, err
	}
	return total, nil
}

// Ensure timeLogService implements TimeLogService at compile time.
var _ TimeLogService = (*timeLogService)(nil)
