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

// ProjectRepository defines the interface for project data access.
// Projects are soft-deleted only; Archive clears is_active and stamps
// deleted_at, and no operation removes rows.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	Get(ctx context.Context, id uuid.UUID) (*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Archive(ctx context.Context, id uuid.UUID, deletedAt time.Time) error
	ListActive(ctx context.Context) ([]*models.Project, error)
	UpdateTotalLoggedHours(ctx context.Context, id uuid.UUID, hours float64) error
}

// projectRepository implements ProjectRepository using PostgreSQL.
type projectRepository struct {
	db *database.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *database.DB) ProjectRepository {
	return &projectRepository{db: db}
}

const projectColumns = `id, name, description, client, status, billing, costs, estimated_hours, start_date, end_date, developer_roles, total_logged_hours, is_active, deleted_at, created_at, updated_at`

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Client, &p.Status,
		&p.Billing, &p.Costs, &p.EstimatedHours,
		&p.StartDate, &p.EndDate, &p.DeveloperRoles,
		&p.TotalLoggedHours, &p.IsActive, &p.DeletedAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}
	return &p, nil
}

// Create inserts a new project.
func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}

	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := r.db.Exec(ctx, query,
		project.ID, project.Name, project.Description, project.Client,
		project.Status, project.Billing, project.Costs, project.EstimatedHours,
		project.StartDate, project.EndDate, project.DeveloperRoles,
		project.TotalLoggedHours, project.IsActive, project.DeletedAt,
		project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		return database.TranslateErr(fmt.Errorf("failed to create project: %w", err))
	}
	return nil
}

// Get retrieves a project by ID, archived or not. Time logs against
// archived projects remain attributable, so lookups never filter on
// is_active here.
func (r *projectRepository) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	p, err := scanProject(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, database.TranslateErr(err)
	}
	return p, nil
}

// Update updates a project's mutable fields. total_logged_hours is owned
// by UpdateTotalLoggedHours and is deliberately not part of this statement.
func (r *projectRepository) Update(ctx context.Context, project *models.Project) error {
	project.UpdatedAt = time.Now()

	query := `
		UPDATE projects
		SET name = $2, description = $3, client = $4, status = $5,
		    billing = $6, costs = $7, estimated_hours = $8,
		    start_date = $9, end_date = $10, developer_roles = $11,
		    updated_at = $12
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query,
		project.ID, project.Name, project.Description, project.Client,
		project.Status, project.Billing, project.Costs, project.EstimatedHours,
		project.StartDate, project.EndDate, project.DeveloperRoles,
		project.UpdatedAt,
	)
	if err != nil {
		return database.TranslateErr(fmt.Errorf("failed to update project: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Archive soft-deletes a project. Archiving an already-archived project is
// a no-op that leaves the original deleted_at in place.
func (r *projectRepository) Archive(ctx context.Context, id uuid.UUID, deletedAt time.Time) error {
	query := `
		UPDATE projects
		SET is_active = FALSE,
		    deleted_at = COALESCE(deleted_at, $2),
		    updated_at = $3
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, deletedAt, time.Now())
	if err != nil {
		return database.TranslateErr(fmt.Errorf("failed to archive project: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListActive retrieves active projects ordered by creation time descending.
func (r *projectRepository) ListActive(ctx context.Context) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE is_active = TRUE ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, database.TranslateErr(fmt.Errorf("failed to list projects: %w", err))
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// UpdateTotalLoggedHours writes the recomputed denormalized counter.
func (r *projectRepository) UpdateTotalLoggedHours(ctx context.Context, id uuid.UUID, hours float64) error {
	query := `UPDATE projects SET total_logged_hours = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, hours, time.Now())
	if err != nil {
		return database.TranslateErr(fmt.Errorf("failed to update total logged hours: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Ensure projectRepository implements ProjectRepository at compile time.
var _ ProjectRepository = (*projectRepository)(nil)
