package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/hourbook/hourbook/pkg/auth"
	"github.com/hourbook/hourbook/pkg/services"
)

// AnalyticsHandler handles analytics HTTP requests.
type AnalyticsHandler struct {
	analyticsService services.AnalyticsService
	logger           *zap.Logger
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(analyticsService services.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService, logger: logger}
}

// RegisterRoutes registers the analytics handler's routes on the given mux.
func (h *AnalyticsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/projects/{id}/analytics", authMiddleware.RequireAuth(h.Project))
	mux.HandleFunc("GET /api/analytics/dashboard", authMiddleware.RequireAuth(h.Dashboard))
}

// Project handles GET /api/projects/{id}/analytics.
func (h *AnalyticsHandler) Project(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, h.logger, "id")
	if !ok {
		return
	}

	analytics, err := h.analyticsService.ProjectAnalytics(r.Context(), id)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to compute project analytics")
		return
	}

	if err := WriteJSON(w, http.StatusOK, analytics); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Dashboard handles GET /api/analytics/dashboard.
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.analyticsService.DashboardAnalytics(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to compute dashboard analytics")
		return
	}

	if err := WriteJSON(w, http.StatusOK, analytics); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
