package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hourbook/hourbook/pkg/models"
	"github.com/hourbook/hourbook/pkg/repositories"
)

const (
	dashboardCacheKey = "hourbook:analytics:dashboard"
	dashboardCacheTTL = 30 * time.Second

	recentLogsLimit     = 10
	recentProjectsLimit = 5
)

// AnalyticsService derives per-project and fleet-level roll-ups. Nothing
// here is stored; every figure is recomputed from projects and time logs.
type AnalyticsService interface {
	ProjectAnalytics(ctx context.Context, projectID uuid.UUID) (*models.ProjectAnalytics, error)
	DashboardAnalytics(ctx context.Context) (*models.DashboardAnalytics, error)
}

// analyticsService implements AnalyticsService. A nil redis client
// disables dashboard caching.
type analyticsService struct {
	projectRepo repositories.ProjectRepository
	timeLogRepo repositories.TimeLogRepository
	redis       *redis.Client
	logger      *zap.Logger
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(projectRepo repositories.ProjectRepository, timeLogRepo repositories.TimeLogRepository, redisClient *redis.Client, logger *zap.Logger) AnalyticsService {
	return &analyticsService{
		projectRepo: projectRepo,
		timeLogRepo: timeLogRepo,
		redis:       redisClient,
		logger:      logger,
	}
}

// ProjectAnalytics computes the roll-up for one project. Legacy work types
// that can no longer be logged still appear in the aggregates.
func (s *analyticsService) ProjectAnalytics(ctx context.Context, projectID uuid.UUID) (*models.ProjectAnalytics, error) {
	project, err := s.projectRepo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	logged, err := s.timeLogRepo.SumHoursByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	byWorkType, err := s.timeLogRepo.HoursByWorkType(ctx, projectID)
	if err != nil {
		return nil, err
	}
	byUser, err := s.timeLogRepo.HoursByUser(ctx, projectID)
	if err != nil {
		return nil, err
	}
	count, err := s.timeLogRepo.CountByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	logs, err := s.timeLogRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(logs) > recentLogsLimit {
		logs = logs[:recentLogsLimit]
	}

	estimated := project.EstimatedHours.Total()
	return &models.ProjectAnalytics{
		Project:             project,
		TotalLoggedHours:    logged,
		TotalEstimatedHours: estimated,
		RemainingHours:      models.Remaining(logged, estimated),
		ProgressPercentage:  models.Progress(logged, estimated),
		HoursByWorkType:     byWorkType,
		HoursByUser:         byUser,
		RecentLogs:          logs,
		TimeLogsCount:       count,
	}, nil
}

// DashboardAnalytics computes the fleet-level roll-up over active
// projects. Results are cached briefly when redis is configured.
func (s *analyticsService) DashboardAnalytics(ctx context.Context) (*models.DashboardAnalytics, error) {
	if cached := s.readCache(ctx); cached != nil {
		return cached, nil
	}

	projects, err := s.projectRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	dashboard := &models.DashboardAnalytics{
		ProjectsByStatus: make(map[string]int),
	}
	for _, p := range projects {
		dashboard.ProjectsByStatus[p.Status]++
		dashboard.TotalRevenue += p.Revenue()
		dashboard.TotalCosts += p.TotalCosts()
		dashboard.TotalLoggedHours += p.TotalLoggedHours
	}
	dashboard.TotalProfit = dashboard.TotalRevenue - dashboard.TotalCosts

	if len(projects) > recentProjectsLimit {
		projects = projects[:recentProjectsLimit]
	}
	dashboard.RecentProjects = projects

	logs, err := s.timeLogRepo.RecentAcrossProjects(ctx, recentLogsLimit)
	if err != nil {
		return nil, err
	}
	dashboard.RecentLogs = logs

	s.writeCache(ctx, dashboard)
	return dashboard, nil
}

func (s *analyticsService) readCache(ctx context.Context) *models.DashboardAnalytics {
	if s.redis == nil {
		return nil
	}

	data, err := s.redis.Get(ctx, dashboardCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("Dashboard cache read failed", zap.Error(err))
		}
		return nil
	}

	var dashboard models.DashboardAnalytics
	if err := json.Unmarshal(data, &dashboard); err != nil {
		s.logger.Warn("Dashboard cache decode failed", zap.Error(err))
		return nil
	}
	return &dashboard
}

func (s *analyticsService) writeCache(ctx context.Context, dashboard *models.DashboardAnalytics) {
	if s.redis == nil {
		return
	}

	data, err := json.Marshal(dashboard)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, dashboardCacheKey, data, dashboardCacheTTL).Err(); err != nil {
		s.logger.Warn("Dashboard cache write failed", zap.Error(err))
	}
}

// Ensure analyticsService implements AnalyticsService at compile time.
var _ AnalyticsService = (*analyticsService)(nil)
