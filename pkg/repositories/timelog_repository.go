package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hourbook/hourbook/pkg/apperrors"
	"github.com/hourbook/hourbook/pkg/database"
	"github.com/hourbook/hourbook/pkg/models"
)

// TimeLogRepository defines the interface for time log data access.
type TimeLogRepository interface {
	Create(ctx context.Context, log *models.TimeLog) error
	Get(ctx context.Context, id uuid.UUID) (*models.TimeLog, error)
	Update(ctx context.Context, log *models.TimeLog) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.TimeLog, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.TimeLog, error)
	SumHoursByProject(ctx context.Context, projectID uuid.UUID) (float64, error)
	HoursByWorkType(ctx context.Context, projectID uuid.UUID) (map[string]float64, error)
	HoursByUser(ctx context.Context, projectID uuid.UUID) (map[string]float64, error)
	CountByProject(ctx context.Context, projectID uuid.UUID) (int, error)
	RecentAcrossProjects(ctx context.Context, limit int) ([]*models.TimeLog, error)
}

// timeLogRepository implements TimeLogRepository using PostgreSQL.
type timeLogRepository struct {
	db *database.DB
}

// NewTimeLogRepository creates a new time log repository.
func NewTimeLogRepository(db *database.DB) TimeLogRepository {
	return &timeLogRepository{db: db}
}

const timeLogColumns = `id, project_id, user_id, user_name, created_by, work_type, hours, log_date, description, created_at, updated_at`

func scanTimeLog(row pgx.Row) (*models.TimeLog, error) {
	var l models.TimeLog
	err := row.Scan(
		&l.ID, &l.ProjectID, &l.UserID, &l.UserName, &l.CreatedBy,
		&l.WorkType, &l.Hours, &l.Date, &l.Description,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan time log: %w", err)
	}
	return &l, nil
}

// Create inserts a new time log.
func (r *timeLogRepository) Create(ctx context.Context, log *models.TimeLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}

	now := time.Now()
	log.CreatedAt = now
	log.UpdatedAt = now

	query := `
		INSERT INTO time_logs (` + timeLogColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(ctx, query,
		log.ID, log.ProjectID, log.UserID, log.UserName, log.CreatedBy,
		log.WorkType, log.Hours, log.Date, log.Description,
		log.CreatedAt, log.UpdatedAt,
	)
	if err != nil {
		return database.TranslateErr(fmt.Errorf("failed to create time log: %w", err))
	}
	return nil
}

// Get retrieves a time log by ID.
func (r *timeLogRepository) Get(ctx context.Context, id uuid.UUID) (*models.TimeLog, error) {
	query := `SELECT ` + timeLogColumns + ` FROM time_logs WHERE id = $1`
	l, err := scanTimeLog(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, database.TranslateErr(err)
	}
	return l, nil
}

// Update updates a time log's mutable fields.
func (r *timeLogRepository) Update(ctx context.Context, log *models.TimeLog) error {
	log.UpdatedAt = time.Now()

	query := `
		UPDATE time_logs
		SET project_id = $2, work_type = $3, hours = $4, log_date = $5,
		    description = $6, updated_at = $7
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query,
		log.ID, log.ProjectID, log.WorkType, log.Hours, log.Date,
		log.Description, log.UpdatedAt,
	)
	if err != nil {
		return database.TranslateErr(fmt.Errorf("failed to update time log: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete removes a time log. Time logs are the one aggregate that is
// hard-deleted; the owning project's counter is recomputed afterwards.
func (r *timeLogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM time_logs WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return database.TranslateErr(fmt.Errorf("failed to delete time log: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListByProject retrieves a project's logs ordered by date descending.
func (r *timeLogRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.TimeLog, error) {
	query := `SELECT ` + timeLogColumns + ` FROM time_logs WHERE project_id = $1 ORDER BY log_date DESC, created_at DESC`
	return r.queryLogs(ctx, query, projectID)
}

// ListByUser retrieves a user's logs ordered by date descending.
// A limit of zero or less means no cap.
func (r *timeLogRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*models.TimeLog, error) {
	query := `SELECT ` + timeLogColumns + ` FROM time_logs WHERE user_id = $1 ORDER BY log_date DESC, created_at DESC`
	if limit > 0 {
		return r.queryLogs(ctx, query+` LIMIT $2`, userID, limit)
	}
	return r.queryLogs(ctx, query, userID)
}

// SumHoursByProject sums hours over all logs with the given project ID.
// This is the authoritative input for the denormalized project counter.
func (r *timeLogRepository) SumHoursByProject(ctx context.Context, projectID uuid.UUID) (float64, error) {
	query := `SELECT COALESCE(SUM(hours), 0) FROM time_logs WHERE project_id = $1`

	var total float64
	if err := r.db.QueryRow(ctx, query, projectID).Scan(&total); err != nil {
		return 0, database.TranslateErr(fmt.Errorf("failed to sum hours: %w", err))
	}
	return total, nil
}

// HoursByWorkType aggregates a project's hours per work type.
func (r *timeLogRepository) HoursByWorkType(ctx context.Context, projectID uuid.UUID) (map[string]float64, error) {
	query := `SELECT work_type, SUM(hours) FROM time_logs WHERE project_id = $1 GROUP BY work_type`
	return r.queryHoursGroup(ctx, query, projectID)
}

// HoursByUser aggregates a project's hours per user.
func (r *timeLogRepository) HoursByUser(ctx context.Context, projectID uuid.UUID) (map[string]float64, error) {
	query := `SELECT user_id, SUM(hours) FROM time_logs WHERE project_id = $1 GROUP BY user_id`
	return r.queryHoursGroup(ctx, query, projectID)
}

// CountByProject counts a project's logs.
func (r *timeLogRepository) CountByProject(ctx context.Context, projectID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM time_logs WHERE project_id = $1`

	var count int
	if err := r.db.QueryRow(ctx, query, projectID).Scan(&count); err != nil {
		return 0, database.TranslateErr(fmt.Errorf("failed to count time logs: %w", err))
	}
	return count, nil
}

// RecentAcrossProjects retrieves the most recent logs across all projects.
func (r *timeLogRepository) RecentAcrossProjects(ctx context.Context, limit int) ([]*models.TimeLog, error) {
	query := `SELECT ` + timeLogColumns + ` FROM time_logs ORDER BY log_date DESC, created_at DESC LIMIT $1`
	return r.queryLogs(ctx, query, limit)
}

func (r *timeLogRepository) queryLogs(ctx context.Context, query string, args ...any) ([]*models.TimeLog, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, database.TranslateErr(fmt.Errorf("failed to query time logs: %w", err))
	}
	defer rows.Close()

	var logs []*models.TimeLog
	for rows.Next() {
		l, err := scanTimeLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (r *timeLogRepository) queryHoursGroup(ctx context.Context, query string, args ...any) (map[string]float64, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, database.TranslateErr(fmt.Errorf("failed to aggregate hours: %w", err))
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var key string
		var hours float64
		if err := rows.Scan(&key, &hours); err != nil {
			return nil, fmt.Errorf("failed to scan aggregate row: %w", err)
		}
		out[key] = hours
	}
	return out, rows.Err()
}

// Ensure timeLogRepository implements TimeLogRepository at compile time.
var _ TimeLogRepository = (*timeLogRepository)(nil)
