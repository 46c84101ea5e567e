package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hourbook/hourbook/pkg/apperrors"
	"github.com/hourbook/hourbook/pkg/models"
)

type timeLogFixture struct {
	svc         TimeLogService
	projectRepo *mockProjectRepository
	timeLogRepo *mockTimeLogRepository
	userRepo    *mockUserRepository
	project     *models.Project
}

func newTimeLogFixture(t *testing.T) *timeLogFixture {
	t.Helper()

	projectRepo := newMockProjectRepository()
	timeLogRepo := newMockTimeLogRepository()
	userRepo := newMockUserRepository()

	project := validProject()
	project.IsActive = true
	if err := projectRepo.Create(context.Background(), project); err != nil {
		t.Fatalf("failed to seed project: %v", err)
	}

	for _, u := range []*models.UserProfile{
		{ID: devActor.ID, Name: "Dev One", Email: "dev1@hourbook.test"},
		{ID: "dev-2", Name: "Dev Two", Email: "dev2@hourbook.test"},
		{ID: adminActor.ID, Name: "Admin One", Email: "admin@hourbook.test"},
	} {
		if err := userRepo.Create(context.Background(), u, "hash"); err != nil {
			t.Fatalf("failed to seed user: %v", err)
		}
	}

	return &timeLogFixture{
		svc:         NewTimeLogService(timeLogRepo, projectRepo, userRepo, NewChangeBus(), zap.NewNop()),
		projectRepo: projectRepo,
		timeLogRepo: timeLogRepo,
		userRepo:    userRepo,
		project:     project,
	}
}

func (f *timeLogFixture) newLog(hours float64) *models.TimeLog {
	return &models.TimeLog{
		ProjectID:   f.project.ID,
		UserID:      devActor.ID,
		UserName:    "Dev One",
		WorkType:    models.WorkBackend,
		Hours:       hours,
		Date:        time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		Description: "implemented invoice export",
	}
}

func TestLogTimeRecomputesProjectTotal(t *testing.T) {
	f := newTimeLogFixture(t)
	ctx := context.Background()

	if _, err := f.svc.LogTime(ctx, devActor, f.newLog(2.5)); err != nil {
		t.Fatalf("first LogTime failed: %v", err)
	}
	if _, err := f.svc.LogTime(ctx, devActor, f.newLog(3)); err != nil {
		t.Fatalf("second LogTime failed: %v", err)
	}

	p, _ := f.projectRepo.Get(ctx, f.project.ID)
	if p.TotalLoggedHours != 5.5 {
		t.Errorf("expected total 5.5, got %v", p.TotalLoggedHours)
	}
}

func TestLogTimeStampsCreator(t *testing.T) {
	f := newTimeLogFixture(t)

	log := f.newLog(1)
	log.CreatedBy = "spoofed"
	created, err := f.svc.LogTime(context.Background(), devActor, log)
	if err != nil {
		t.Fatalf("LogTime failed: %v", err)
	}
	if created.CreatedBy != devActor.ID {
		t.Errorf("expected createdBy %q, got %q", devActor.ID, created.CreatedBy)
	}
}

func TestLogTimeRejectsNonMember(t *testing.T) {
	f := newTimeLogFixture(t)

	outsider := models.Actor{ID: "dev-9", Role: models.RoleUser}
	log := f.newLog(1)
	log.UserID = outsider.ID

	_, err := f.svc.LogTime(context.Background(), outsider, log)
	if !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestLogTimeAdminBypassesMembership(t *testing.T) {
	f := newTimeLogFixture(t)

	log := f.newLog(1)
	log.UserID = adminActor.ID
	if _, err := f.svc.LogTime(context.Background(), adminActor, log); err != nil {
		t.Fatalf("expected admin to log on any project: %v", err)
	}
}

func TestLogTimeRejectsUIDesign(t *testing.T) {
	f := newTimeLogFixture(t)

	log := f.newLog(1)
	log.WorkType = models.WorkUIDesign

	_, err := f.svc.LogTime(context.Background(), devActor, log)
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLogTimeForcesOwnAttribution(t *testing.T) {
	f := newTimeLogFixture(t)

	log := f.newLog(1)
	log.UserID = "dev-2"
	log.UserName = "Somebody Else"

	created, err := f.svc.LogTime(context.Background(), devActor, log)
	if err != nil {
		t.Fatalf("LogTime failed: %v", err)
	}
	if created.UserID != devActor.ID {
		t.Errorf("expected userId %q, got %q", devActor.ID, created.UserID)
	}
	if created.CreatedBy != devActor.ID {
		t.Errorf("expected createdBy %q, got %q", devActor.ID, created.CreatedBy)
	}
	if created.UserName != "Dev One" {
		t.Errorf("expected userName from the directory, got %q", created.UserName)
	}
}

func TestLogTimeAdminAttributesToMember(t *testing.T) {
	f := newTimeLogFixture(t)

	log := f.newLog(1)
	log.UserID = "dev-2"
	log.UserName = "Somebody Else"

	created, err := f.svc.LogTime(context.Background(), adminActor, log)
	if err != nil {
		t.Fatalf("LogTime failed: %v", err)
	}
	if created.UserID != "dev-2" || created.CreatedBy != "dev-2" {
		t.Errorf("expected log attributed to dev-2, got userId %q createdBy %q", created.UserID, created.CreatedBy)
	}
	if created.UserName != "Dev Two" {
		t.Errorf("expected userName from the directory, got %q", created.UserName)
	}
}

func TestLogTimeRejectsArchivedProject(t *testing.T) {
	f := newTimeLogFixture(t)
	ctx := context.Background()

	if err := f.projectRepo.Archive(ctx, f.project.ID, time.Now()); err != nil {
		t.Fatalf("failed to archive project: %v", err)
	}

	_, err := f.svc.LogTime(ctx, devActor, f.newLog(1))
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error for archived project, got %v", err)
	}
}

func TestLogTimeUnknownProject(t *testing.T) {
	f := newTimeLogFixture(t)

	log := f.newLog(1)
	log.ProjectID = uuid.New()

	_, err := f.svc.LogTime(context.Background(), devActor, log)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateTimeLogOwnerOnly(t *testing.T) {
	f := newTimeLogFixture(t)
	ctx := context.Background()

	created, err := f.svc.LogTime(ctx, devActor, f.newLog(2))
	if err != nil {
		t.Fatalf("LogTime failed: %v", err)
	}

	other := models.Actor{ID: "dev-2", Role: models.RoleUser}
	edit := f.newLog(3)
	if _, err := f.svc.UpdateTimeLog(ctx, other, created.ID, edit); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}

	updated, err := f.svc.UpdateTimeLog(ctx, devActor, created.ID, f.newLog(3))
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if updated.Hours != 3 {
		t.Errorf("expected 3 hours, got %v", updated.Hours)
	}

	p, _ := f.projectRepo.Get(ctx, f.project.ID)
	if p.TotalLoggedHours != 3 {
		t.Errorf("expected recomputed total 3, got %v", p.TotalLoggedHours)
	}
}

func TestUpdateTimeLogMoveRecomputesBothProjects(t *testing.T) {
	f := newTimeLogFixture(t)
	ctx := context.Background()

	second := validProject()
	second.Name = "Beta Portal"
	second.IsActive = true
	if err := f.projectRepo.Create(ctx, second); err != nil {
		t.Fatalf("failed to seed second project: %v", err)
	}

	created, err := f.svc.LogTime(ctx, devActor, f.newLog(4))
	if err != nil {
		t.Fatalf("LogTime failed: %v", err)
	}

	edit := f.newLog(4)
	edit.ProjectID = second.ID
	if _, err := f.svc.UpdateTimeLog(ctx, devActor, created.ID, edit); err != nil {
		t.Fatalf("move failed: %v", err)
	}

	old, _ := f.projectRepo.Get(ctx, f.project.ID)
	if old.TotalLoggedHours != 0 {
		t.Errorf("expected source project total 0, got %v", old.TotalLoggedHours)
	}
	dst, _ := f.projectRepo.Get(ctx, second.ID)
	if dst.TotalLoggedHours != 4 {
		t.Errorf("expected destination project total 4, got %v", dst.TotalLoggedHours)
	}
}

func TestUpdateTimeLogRejectsMoveToArchivedProject(t *testing.T) {
	f := newTimeLogFixture(t)
	ctx := context.Background()

	retired := validProject()
	retired.Name = "Legacy Intranet"
	if err := f.projectRepo.Create(ctx, retired); err != nil {
		t.Fatalf("failed to seed project: %v", err)
	}
	if err := f.projectRepo.Archive(ctx, retired.ID, time.Now()); err != nil {
		t.Fatalf("failed to archive project: %v", err)
	}

	created, err := f.svc.LogTime(ctx, devActor, f.newLog(2))
	if err != nil {
		t.Fatalf("LogTime failed: %v", err)
	}

	edit := f.newLog(2)
	edit.ProjectID = retired.ID
	_, err = f.svc.UpdateTimeLog(ctx, devActor, created.ID, edit)
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error moving to archived project, got %v", err)
	}
}

func TestUpdateTimeLogKeepsLegacyUIDesign(t *testing.T) {
	f := newTimeLogFixture(t)
	ctx := context.Background()

	// A stored row predating the ui_design lock.
	legacy := f.newLog(2)
	legacy.WorkType = models.WorkUIDesign
	legacy.CreatedBy = devActor.ID
	if err := f.timeLogRepo.Create(ctx, legacy); err != nil {
		t.Fatalf("failed to seed legacy log: %v", err)
	}

	edit := f.newLog(3)
	edit.WorkType = models.WorkUIDesign
	updated, err := f.svc.UpdateTimeLog(ctx, devActor, legacy.ID, edit)
	if err != nil {
		t.Fatalf("expected edit of legacy ui_design log to succeed: %v", err)
	}
	if updated.Hours != 3 {
		t.Errorf("expected 3 hours, got %v", updated.Hours)
	}
	if updated.WorkType != models.WorkUIDesign {
		t.Errorf("expected work type kept, got %q", updated.WorkType)
	}
}

func TestUpdateTimeLogRejectsSwitchToUIDesign(t *testing.T) {
	f := newTimeLogFixture(t)
	ctx := context.Background()

	created, err := f.svc.LogTime(ctx, devActor, f.newLog(2))
	if err != nil {
		t.Fatalf("LogTime failed: %v", err)
	}

	edit := f.newLog(2)
	edit.WorkType = models.WorkUIDesign
	_, err = f.svc.UpdateTimeLog(ctx, devActor, created.ID, edit)
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error switching to ui_design, got %v", err)
	}
}

func TestDeleteTimeLogRecomputes(t *testing.T) {
	f := newTimeLogFixture(t)
	ctx := context.Background()

	first, err := f.svc.LogTime(ctx, devActor, f.newLog(2))
	if err != nil {
		t.Fatalf("LogTime failed: %v", err)
	}
	if _, err := f.svc.LogTime(ctx, devActor, f.newLog(1.5)); err != nil {
		t.Fatalf("LogTime failed: %v", err)
	}

	if err := f.svc.DeleteTimeLog(ctx, devActor, first.ID); err != nil {
		t.Fatalf("DeleteTimeLog failed: %v", err)
	}

	p, _ := f.projectRepo.Get(ctx, f.project.ID)
	if p.TotalLoggedHours != 1.5 {
		t.Errorf("expected total 1.5 after delete, got %v", p.TotalLoggedHours)
	}

	if _, err := f.svc.GetTimeLog(ctx, first.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected deleted log to be gone, got %v", err)
	}
}

func TestListUserLogsAuthorization(t *testing.T) {
	f := newTimeLogFixture(t)
	ctx := context.Background()

	if _, err := f.svc.LogTime(ctx, devActor, f.newLog(1)); err != nil {
		t.Fatalf("LogTime failed: %v", err)
	}

	if _, err := f.svc.ListUserLogs(ctx, devActor, "dev-2", 0); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden reading another user's logs, got %v", err)
	}

	own, err := f.svc.ListUserLogs(ctx, devActor, devActor.ID, 0)
	if err != nil {
		t.Fatalf("ListUserLogs failed: %v", err)
	}
	if len(own) != 1 {
		t.Errorf("expected 1 log, got %d", len(own))
	}

	asAdmin, err := f.svc.ListUserLogs(ctx, adminActor, devActor.ID, 0)
	if err != nil {
		t.Fatalf("admin ListUserLogs failed: %v", err)
	}
	if len(asAdmin) != 1 {
		t.Errorf("expected 1 log for admin read, got %d", len(asAdmin))
	}
}

func TestRecomputeProjectTotalSelfHeals(t *testing.T) {
	f := newTimeLogFixture(t)
	ctx := context.Background()

	if _, err := f.svc.LogTime(ctx, devActor, f.newLog(2)); err != nil {
		t.Fatalf("LogTime failed: %v", err)
	}

	// Drift the counter, then recompute from the logs.
	f.projectRepo.projects[f.project.ID].TotalLoggedHours = 99

	total, err := f.svc.RecomputeProjectTotal(ctx, f.project.ID)
	if err != nil {
		t.Fatalf("RecomputeProjectTotal failed: %v", err)
	}
	if total != 2 {
		t.Errorf("expected recomputed total 2, got %v", total)
	}

	p, _ := f.projectRepo.Get(ctx, f.project.ID)
	if p.TotalLoggedHours != 2 {
		t.Errorf("expected stored total 2, got %v", p.TotalLoggedHours)
	}
}

func TestLogTimeSurvivesRecomputeFailure(t *testing.T) {
	f := newTimeLogFixture(t)
	f.projectRepo.totalsErr = errors.New("write refused")

	created, err := f.svc.LogTime(context.Background(), devActor, f.newLog(2))
	if err != nil {
		t.Fatalf("expected LogTime to succeed despite counter failure: %v", err)
	}
	if _, err := f.svc.GetTimeLog(context.Background(), created.ID); err != nil {
		t.Errorf("expected log to be stored: %v", err)
	}
}
