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

// PolicyRepository defines the interface for policy document metadata access.
type PolicyRepository interface {
	Create(ctx context.Context, policy *models.Policy) error
	Get(ctx context.Context, id uuid.UUID) (*models.Policy, error)
	List(ctx context.Context) ([]*models.Policy, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// policyRepository implements PolicyRepository using PostgreSQL.
type policyRepository struct {
	db *database.DB
}

// NewPolicyRepository creates a new policy repository.
func NewPolicyRepository(db *database.DB) PolicyRepository {
	return &policyRepository{db: db}
}

const policyColumns = `id, title, description, file_name, file_path, size_bytes, uploaded_by, created_at, updated_at`

func scanPolicy(row pgx.Row) (*models.Policy, error) {
	var p models.Policy
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.FileName, &p.FilePath,
		&p.SizeBytes, &p.UploadedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan policy: %w", err)
	}
	return &p, nil
}

// Create inserts a new policy document record.
func (r *policyRepository) Create(ctx context.Context, policy *models.Policy) error {
	if policy.ID == uuid.Nil {
		policy.ID = uuid.New()
	}

	now := time.Now()
	policy.CreatedAt = now
	policy.UpdatedAt = now

	query := `
		INSERT INTO policies (` + policyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		policy.ID, policy.Title, policy.Description, policy.FileName,
		policy.FilePath, policy.SizeBytes, policy.UploadedBy,
		policy.CreatedAt, policy.UpdatedAt,
	)
	if err != nil {
		return database.TranslateErr(fmt.Errorf("failed to create policy: %w", err))
	}
	return nil
}

// Get retrieves a policy by ID.
func (r *policyRepository) Get(ctx context.Context, id uuid.UUID) (*models.Policy, error) {
	query := `SELECT ` + policyColumns + ` FROM policies WHERE id = $1`
	p, err := scanPolicy(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, database.TranslateErr(err)
	}
	return p, nil
}

// List retrieves all policies ordered by creation time descending.
func (r *policyRepository) List(ctx context.Context) ([]*models.Policy, error) {
	query := `SELECT ` + policyColumns + ` FROM policies ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, database.TranslateErr(fmt.Errorf("failed to list policies: %w", err))
	}
	defer rows.Close()

	var policies []*models.Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

// Delete removes a policy record.
func (r *policyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM policies WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return database.TranslateErr(fmt.Errorf("failed to delete policy: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Ensure policyRepository implements PolicyRepository at compile time.
var _ PolicyRepository = (*policyRepository)(nil)
