package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/hourbook/hourbook/pkg/apperrors"
	"github.com/hourbook/hourbook/pkg/models"
)

// In-memory repository fakes shared by the service tests.

type mockUserRepository struct {
	users  map[string]*models.UserProfile
	hashes map[string]string

	createErr error
	updateErr error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:  make(map[string]*models.UserProfile),
		hashes: make(map[string]string),
	}
}

func (m *mockUserRepository) Create(_ context.Context, profile *models.UserProfile, passwordHash string) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if u.Email == profile.Email {
			return apperrors.ErrEmailInUse
		}
	}
	cp := *profile
	m.users[profile.ID] = &cp
	m.hashes[profile.ID] = passwordHash
	return nil
}

func (m *mockUserRepository) GetByID(_ context.Context, id string) (*models.UserProfile, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepository) GetByEmail(_ context.Context, email string) (*models.UserProfile, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockUserRepository) GetCredentials(_ context.Context, email string) (*models.UserProfile, string, error) {
	for id, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, m.hashes[id], nil
		}
	}
	return nil, "", apperrors.ErrNotFound
}

func (m *mockUserRepository) Update(_ context.Context, profile *models.UserProfile) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.users[profile.ID]; !ok {
		return apperrors.ErrNotFound
	}
	cp := *profile
	m.users[profile.ID] = &cp
	return nil
}

func (m *mockUserRepository) UpdatePasswordHash(_ context.Context, id, passwordHash string) error {
	if _, ok := m.users[id]; !ok {
		return apperrors.ErrNotFound
	}
	m.hashes[id] = passwordHash
	return nil
}

func (m *mockUserRepository) List(_ context.Context) ([]*models.UserProfile, error) {
	out := make([]*models.UserProfile, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type mockProjectRepository struct {
	projects map[uuid.UUID]*models.Project

	totalsWritten map[uuid.UUID]float64
	updateErr     error
	totalsErr     error
}

func newMockProjectRepository() *mockProjectRepository {
	return &mockProjectRepository{
		projects:      make(map[uuid.UUID]*models.Project),
		totalsWritten: make(map[uuid.UUID]float64),
	}
}

func (m *mockProjectRepository) Create(_ context.Context, project *models.Project) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	project.CreatedAt = time.Now()
	project.UpdatedAt = project.CreatedAt
	cp := *project
	m.projects[project.ID] = &cp
	return nil
}

func (m *mockProjectRepository) Get(_ context.Context, id uuid.UUID) (*models.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProjectRepository) Update(_ context.Context, project *models.Project) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	existing, ok := m.projects[project.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	cp := *project
	cp.TotalLoggedHours = existing.TotalLoggedHours
	m.projects[project.ID] = &cp
	return nil
}

func (m *mockProjectRepository) Archive(_ context.Context, id uuid.UUID, deletedAt time.Time) error {
	p, ok := m.projects[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	p.IsActive = false
	if p.DeletedAt == nil {
		d := deletedAt
		p.DeletedAt = &d
	}
	return nil
}

func (m *mockProjectRepository) ListActive(_ context.Context) ([]*models.Project, error) {
	var out []*models.Project
	for _, p := range m.projects {
		if p.IsActive {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockProjectRepository) UpdateTotalLoggedHours(_ context.Context, id uuid.UUID, hours float64) error {
	if m.totalsErr != nil {
		return m.totalsErr
	}
	p, ok := m.projects[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	p.TotalLoggedHours = hours
	m.totalsWritten[id] = hours
	return nil
}

type mockTimeLogRepository struct {
	logs map[uuid.UUID]*models.TimeLog

	sumErr error
}

func newMockTimeLogRepository() *mockTimeLogRepository {
	return &mockTimeLogRepository{logs: make(map[uuid.UUID]*models.TimeLog)}
}

func (m *mockTimeLogRepository) Create(_ context.Context, log *models.TimeLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	log.CreatedAt = time.Now()
	log.UpdatedAt = log.CreatedAt
	cp := *log
	m.logs[log.ID] = &cp
	return nil
}

func (m *mockTimeLogRepository) Get(_ context.Context, id uuid.UUID) (*models.TimeLog, error) {
	l, ok := m.logs[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *mockTimeLogRepository) Update(_ context.Context, log *models.TimeLog) error {
	if _, ok := m.logs[log.ID]; !ok {
		return apperrors.ErrNotFound
	}
	cp := *log
	m.logs[log.ID] = &cp
	return nil
}

func (m *mockTimeLogRepository) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.logs[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.logs, id)
	return nil
}

func (m *mockTimeLogRepository) ListByProject(_ context.Context, projectID uuid.UUID) ([]*models.TimeLog, error) {
	var out []*models.TimeLog
	for _, l := range m.logs {
		if l.ProjectID == projectID {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *mockTimeLogRepository) ListByUser(_ context.Context, userID string, limit int) ([]*models.TimeLog, error) {
	var out []*models.TimeLog
	for _, l := range m.logs {
		if l.UserID == userID {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockTimeLogRepository) SumHoursByProject(_ context.Context, projectID uuid.UUID) (float64, error) {
	if m.sumErr != nil {
		return 0, m.sumErr
	}
	var total float64
	for _, l := range m.logs {
		if l.ProjectID == projectID {
			total += l.Hours
		}
	}
	return total, nil
}

func (m *mockTimeLogRepository) HoursByWorkType(_ context.Context, projectID uuid.UUID) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, l := range m.logs {
		if l.ProjectID == projectID {
			out[l.WorkType] += l.Hours
		}
	}
	return out, nil
}

func (m *mockTimeLogRepository) HoursByUser(_ context.Context, projectID uuid.UUID) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, l := range m.logs {
		if l.ProjectID == projectID {
			out[l.UserID] += l.Hours
		}
	}
	return out, nil
}

func (m *mockTimeLogRepository) CountByProject(_ context.Context, projectID uuid.UUID) (int, error) {
	count := 0
	for _, l := range m.logs {
		if l.ProjectID == projectID {
			count++
		}
	}
	return count, nil
}

func (m *mockTimeLogRepository) RecentAcrossProjects(_ context.Context, limit int) ([]*models.TimeLog, error) {
	var out []*models.TimeLog
	for _, l := range m.logs {
		cp := *l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type mockPolicyRepository struct {
	policies map[uuid.UUID]*models.Policy

	createErr error
}

func newMockPolicyRepository() *mockPolicyRepository {
	return &mockPolicyRepository{policies: make(map[uuid.UUID]*models.Policy)}
}

func (m *mockPolicyRepository) Create(_ context.Context, policy *models.Policy) error {
	if m.createErr != nil {
		return m.createErr
	}
	cp := *policy
	m.policies[policy.ID] = &cp
	return nil
}

func (m *mockPolicyRepository) Get(_ context.Context, id uuid.UUID) (*models.Policy, error) {
	p, ok := m.policies[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPolicyRepository) List(_ context.Context) ([]*models.Policy, error) {
	var out []*models.Policy
	for _, p := range m.policies {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockPolicyRepository) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.policies[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.policies, id)
	return nil
}
