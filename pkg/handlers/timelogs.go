package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/hourbook/hourbook/pkg/auth"
	"github.com/hourbook/hourbook/pkg/models"
	"github.com/hourbook/hourbook/pkg/services"
)

// TimeLogsHandler handles time log HTTP requests.
type TimeLogsHandler struct {
	timeLogService services.TimeLogService
	logger         *zap.Logger
}

// NewTimeLogsHandler creates a new time logs handler.
func NewTimeLogsHandler(timeLogService services.TimeLogService, logger *zap.Logger) *TimeLogsHandler {
	return &TimeLogsHandler{timeLogService: timeLogService, logger: logger}
}

// RegisterRoutes registers the time logs handler's routes on the given mux.
func (h *TimeLogsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/time-logs", authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET /api/time-logs/{id}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PUT /api/time-logs/{id}", authMiddleware.RequireAuth(h.Update))
	mux.HandleFunc("DELETE /api/time-logs/{id}", authMiddleware.RequireAuth(h.Delete))
	mux.HandleFunc("GET /api/projects/{id}/time-logs", authMiddleware.RequireAuth(h.ListByProject))
	mux.HandleFunc("GET /api/users/{id}/time-logs", authMiddleware.RequireAuth(h.ListByUser))
	mux.HandleFunc("POST /api/projects/{id}/recompute-hours", authMiddleware.RequireAdmin(h.Recompute))
}

// Create handles POST /api/time-logs.
func (h *TimeLogsHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		unauthenticated(w, h.logger)
		return
	}

	var log models.TimeLog
	if !DecodeJSON(w, r, h.logger, &log) {
		return
	}

	created, err := h.timeLogService.LogTime(r.Context(), actor, &log)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to log time")
		return
	}

	if err := WriteJSON(w, http.StatusCreated, created); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/time-logs/{id}.
func (h *TimeLogsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, h.logger, "id")
	if !ok {
		return
	}

	log, err := h.timeLogService.GetTimeLog(r.Context(), id)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to get time log")
		return
	}

	if err := WriteJSON(w, http.StatusOK, log); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/time-logs/{id}.
func (h *TimeLogsHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		unauthenticated(w, h.logger)
		return
	}
	id, ok := pathUUID(w, r, h.logger, "id")
	if !ok {
		return
	}

	var log models.TimeLog
	if !DecodeJSON(w, r, h.logger, &log) {
		return
	}

	updated, err := h.timeLogService.UpdateTimeLog(r.Context(), actor, id, &log)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to update time log")
		return
	}

	if err := WriteJSON(w, http.StatusOK, updated); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/time-logs/{id}.
func (h *TimeLogsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		unauthenticated(w, h.logger)
		return
	}
	id, ok := pathUUID(w, r, h.logger, "id")
	if !ok {
		return
	}

	if err := h.timeLogService.DeleteTimeLog(r.Context(), actor, id); err != nil {
		WriteServiceError(w, h.logger, err, "Failed to delete time log")
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListByProject handles GET /api/projects/{id}/time-logs.
func (h *TimeLogsHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, h.logger, "id")
	if !ok {
		return
	}

	logs, err := h.timeLogService.ListProjectLogs(r.Context(), id)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to list time logs")
		return
	}
	if logs == nil {
		logs = []*models.TimeLog{}
	}

	if err := WriteJSON(w, http.StatusOK, logs); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListByUser handles GET /api/users/{id}/time-logs.
// An optional limit query parameter caps the result count.
func (h *TimeLogsHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		unauthenticated(w, h.logger)
		return
	}
	userID := r.PathValue("id")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			if werr := ErrorResponse(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer"); werr != nil {
				h.logger.Error("Failed to write error response", zap.Error(werr))
			}
			return
		}
		limit = parsed
	}

	logs, err := h.timeLogService.ListUserLogs(r.Context(), actor, userID, limit)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to list time logs")
		return
	}
	if logs == nil {
		logs = []*models.TimeLog{}
	}

	if err := WriteJSON(w, http.StatusOK, logs); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Recompute handles POST /api/projects/{id}/recompute-hours.
// Rederives the project's logged hours counter from its logs.
func (h *TimeLogsHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, h.logger, "id")
	if !ok {
		return
	}

	total, err := h.timeLogService.RecomputeProjectTotal(r.Context(), id)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to recompute project hours")
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]float64{"totalLoggedHours": total}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
