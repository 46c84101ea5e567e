package services

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/hourbook/hourbook/pkg/apperrors"
	"github.com/hourbook/hourbook/pkg/models"
)

func seedUser(t *testing.T, repo *mockUserRepository, id, email, role string) {
	t.Helper()
	err := repo.Create(context.Background(), &models.UserProfile{
		ID:       id,
		Email:    email,
		Name:     "Seeded User",
		Role:     role,
		IsActive: true,
	}, "hash")
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
}

func strptr(s string) *string   { return &s }
func boolptr(b bool) *bool      { return &b }
func f64ptr(f float64) *float64 { return &f }

func TestUpdateUserSelf(t *testing.T) {
	repo := newMockUserRepository()
	svc := NewUserService(repo, zap.NewNop())
	seedUser(t, repo, devActor.ID, "dev@example.com", models.RoleUser)

	updated, err := svc.UpdateUser(context.Background(), devActor, devActor.ID, UserUpdateInput{
		Name:       strptr("Dev Renamed"),
		Phone:      strptr("+35912345678"),
		HourlyRate: f64ptr(120),
	})
	if err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	if updated.Name != "Dev Renamed" || updated.Phone != "+35912345678" || updated.HourlyRate != 120 {
		t.Errorf("unexpected profile after update: %+v", updated)
	}
	if updated.Email != "dev@example.com" {
		t.Error("expected email to be immutable")
	}
}

func TestUpdateUserAdminOnlyFields(t *testing.T) {
	repo := newMockUserRepository()
	svc := NewUserService(repo, zap.NewNop())
	seedUser(t, repo, devActor.ID, "dev@example.com", models.RoleUser)
	ctx := context.Background()

	// A user cannot promote themselves or change their assignment.
	cases := []UserUpdateInput{
		{Role: strptr(models.RoleAdmin)},
		{CompanyID: strptr("C123")},
		{IsActive: boolptr(false)},
	}
	for _, input := range cases {
		if _, err := svc.UpdateUser(ctx, devActor, devActor.ID, input); !errors.Is(err, apperrors.ErrForbidden) {
			t.Errorf("expected ErrForbidden for %+v, got %v", input, err)
		}
	}

	updated, err := svc.UpdateUser(ctx, adminActor, devActor.ID, UserUpdateInput{
		Role:      strptr(models.RoleAdmin),
		CompanyID: strptr("C123"),
	})
	if err != nil {
		t.Fatalf("admin UpdateUser failed: %v", err)
	}
	if updated.Role != models.RoleAdmin || updated.CompanyID != "C123" {
		t.Errorf("unexpected profile after admin update: %+v", updated)
	}
}

func TestUpdateUserValidatesCompanyID(t *testing.T) {
	repo := newMockUserRepository()
	svc := NewUserService(repo, zap.NewNop())
	seedUser(t, repo, devActor.ID, "dev@example.com", models.RoleUser)

	_, err := svc.UpdateUser(context.Background(), adminActor, devActor.ID, UserUpdateInput{
		CompanyID: strptr("X99"),
	})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateUserForeignProfileForbidden(t *testing.T) {
	repo := newMockUserRepository()
	svc := NewUserService(repo, zap.NewNop())
	seedUser(t, repo, "dev-2", "other@example.com", models.RoleUser)

	_, err := svc.UpdateUser(context.Background(), devActor, "dev-2", UserUpdateInput{
		Name: strptr("Hijacked"),
	})
	if !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestListUsersAdminOnly(t *testing.T) {
	repo := newMockUserRepository()
	svc := NewUserService(repo, zap.NewNop())
	seedUser(t, repo, devActor.ID, "dev@example.com", models.RoleUser)
	seedUser(t, repo, "dev-2", "other@example.com", models.RoleUser)
	ctx := context.Background()

	if _, err := svc.ListUsers(ctx, devActor); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	users, err := svc.ListUsers(ctx, adminActor)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}
}

func TestGetUserAuthorization(t *testing.T) {
	repo := newMockUserRepository()
	svc := NewUserService(repo, zap.NewNop())
	seedUser(t, repo, devActor.ID, "dev@example.com", models.RoleUser)
	ctx := context.Background()

	if _, err := svc.GetUser(ctx, devActor, devActor.ID); err != nil {
		t.Errorf("expected self read to succeed: %v", err)
	}
	if _, err := svc.GetUser(ctx, devActor, "dev-2"); !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("expected ErrForbidden for foreign read, got %v", err)
	}
	if _, err := svc.GetUser(ctx, adminActor, devActor.ID); err != nil {
		t.Errorf("expected admin read to succeed: %v", err)
	}
}
