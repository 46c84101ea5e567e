// Package repositories provides PostgreSQL data access for hourbook.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hourbook/hourbook/pkg/apperrors"
	"github.com/hourbook/hourbook/pkg/database"
	"github.com/hourbook/hourbook/pkg/models"
)

// UserRepository defines the interface for user profile data access.
type UserRepository interface {
	Create(ctx context.Context, profile *models.UserProfile, passwordHash string) error
	GetByID(ctx context.Context, id string) (*models.UserProfile, error)
	GetByEmail(ctx context.Context, email string) (*models.UserProfile, error)
	GetCredentials(ctx context.Context, email string) (*models.UserProfile, string, error)
	Update(ctx context.Context, profile *models.UserProfile) error
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	List(ctx context.Context) ([]*models.UserProfile, error)
}

// userRepository implements UserRepository using PostgreSQL.
type userRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *database.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, name, phone, department, company_id, role, is_active, profile_picture_url, hourly_rate, created_at, updated_at`

func scanUser(row pgx.Row) (*models.UserProfile, error) {
	var u models.UserProfile
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.Phone, &u.Department, &u.CompanyID,
		&u.Role, &u.IsActive, &u.ProfilePictureURL, &u.HourlyRate,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

// Create inserts a new user profile with its password hash.
// A duplicate email surfaces as ErrEmailInUse.
func (r *userRepository) Create(ctx context.Context, profile *models.UserProfile, passwordHash string) error {
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	query := `
		INSERT INTO users (id, email, name, phone, department, company_id, role, is_active, profile_picture_url, hourly_rate, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.Exec(ctx, query,
		profile.ID, profile.Email, profile.Name, profile.Phone,
		profile.Department, profile.CompanyID, profile.Role, profile.IsActive,
		profile.ProfilePictureURL, profile.HourlyRate, passwordHash,
		profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrEmailInUse
		}
		return database.TranslateErr(fmt.Errorf("failed to create user: %w", err))
	}

	return nil
}

// GetByID retrieves a user profile by ID.
func (r *userRepository) GetByID(ctx context.Context, id string) (*models.UserProfile, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, database.TranslateErr(err)
	}
	return u, nil
}

// GetByEmail retrieves a user profile by email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return nil, database.TranslateErr(err)
	}
	return u, nil
}

// GetCredentials retrieves a profile together with its password hash for
// login verification.
func (r *userRepository) GetCredentials(ctx context.Context, email string) (*models.UserProfile, string, error) {
	query := `
		SELECT ` + userColumns + `, password_hash
		FROM users WHERE email = $1`

	var u models.UserProfile
	var hash string
	err := r.db.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.Email, &u.Name, &u.Phone, &u.Department, &u.CompanyID,
		&u.Role, &u.IsActive, &u.ProfilePictureURL, &u.HourlyRate,
		&u.CreatedAt, &u.UpdatedAt, &hash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", apperrors.ErrNotFound
		}
		return nil, "", database.TranslateErr(fmt.Errorf("failed to get credentials: %w", err))
	}
	return &u, hash, nil
}

// Update updates a user profile. ID and email are immutable; the email
// column is deliberately not part of the update.
func (r *userRepository) Update(ctx context.Context, profile *models.UserProfile) error {
	profile.UpdatedAt = time.Now()

	query := `
		UPDATE users
		SET name = $2, phone = $3, department = $4, company_id = $5,
		    role = $6, is_active = $7, profile_picture_url = $8,
		    hourly_rate = $9, updated_at = $10
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query,
		profile.ID, profile.Name, profile.Phone, profile.Department,
		profile.CompanyID, profile.Role, profile.IsActive,
		profile.ProfilePictureURL, profile.HourlyRate, profile.UpdatedAt,
	)
	if err != nil {
		return database.TranslateErr(fmt.Errorf("failed to update user: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdatePasswordHash replaces the stored password hash.
func (r *userRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, passwordHash, time.Now())
	if err != nil {
		return database.TranslateErr(fmt.Errorf("failed to update password: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// List retrieves all user profiles ordered by creation time.
func (r *userRepository) List(ctx context.Context) ([]*models.UserProfile, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, database.TranslateErr(fmt.Errorf("failed to list users: %w", err))
	}
	defer rows.Close()

	var users []*models.UserProfile
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Ensure userRepository implements UserRepository at compile time.
var _ UserRepository = (*userRepository)(nil)
