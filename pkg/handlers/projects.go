package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hourbook/hourbook/pkg/auth"
	"github.com/hourbook/hourbook/pkg/models"
	"github.com/hourbook/hourbook/pkg/services"
)

// ProjectsHandler handles project-related HTTP requests.
type ProjectsHandler struct {
	projectService services.ProjectService
	logger         *zap.Logger
}

// NewProjectsHandler creates a new projects handler.
func NewProjectsHandler(projectService services.ProjectService, logger *zap.Logger) *ProjectsHandler {
	return &ProjectsHandler{projectService: projectService, logger: logger}
}

// RegisterRoutes registers the projects handler's routes on the given mux.
func (h *ProjectsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/projects", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/projects", authMiddleware.RequireAdmin(h.Create))
	mux.HandleFunc("GET /api/projects/{id}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PUT /api/projects/{id}", authMiddleware.RequireAdmin(h.Update))
	mux.HandleFunc("DELETE /api/projects/{id}", authMiddleware.RequireAdmin(h.Archive))
}

// List handles GET /api/projects.
// Returns all active projects, newest first.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectService.ListProjects(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to list projects")
		return
	}
	if projects == nil {
		projects = []*models.Project{}
	}

	if err := WriteJSON(w, http.StatusOK, projects); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /api/projects.
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		unauthenticated(w, h.logger)
		return
	}

	var project models.Project
	if !DecodeJSON(w, r, h.logger, &project) {
		return
	}

	created, err := h.projectService.CreateProject(r.Context(), actor, &project)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to create project")
		return
	}

	if err := WriteJSON(w, http.StatusCreated, created); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/projects/{id}.
func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, h.logger, "id")
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(r.Context(), id)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to get project")
		return
	}

	if err := WriteJSON(w, http.StatusOK, project); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/projects/{id}.
func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		unauthenticated(w, h.logger)
		return
	}
	id, ok := pathUUID(w, r, h.logger, "id")
	if !ok {
		return
	}

	var project models.Project
	if !DecodeJSON(w, r, h.logger, &project) {
		return
	}

	updated, err := h.projectService.UpdateProject(r.Context(), actor, id, &project)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to update project")
		return
	}

	if err := WriteJSON(w, http.StatusOK, updated); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Archive handles DELETE /api/projects/{id}.
// Projects are archived, never removed; repeating the call is harmless.
func (h *ProjectsHandler) Archive(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		unauthenticated(w, h.logger)
		return
	}
	id, ok := pathUUID(w, r, h.logger, "id")
	if !ok {
		return
	}

	if err := h.projectService.ArchiveProject(r.Context(), actor, id); err != nil {
		WriteServiceError(w, h.logger, err, "Failed to archive project")
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]string{"status": "archived"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// requestActor extracts the domain actor from the request claims.
func requestActor(r *http.Request) (models.Actor, bool) {
	claims, ok := auth.GetClaims(r.Context())
	if !ok {
		return models.Actor{}, false
	}
	return claims.Actor(), true
}

func unauthenticated(w http.ResponseWriter, logger *zap.Logger) {
	if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Missing authentication"); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

// pathUUID parses a UUID path segment, writing a 400 on failure.
func pathUUID(w http.ResponseWriter, r *http.Request, logger *zap.Logger, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		if werr := ErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid "+name+" format"); werr != nil {
			logger.Error("Failed to write error response", zap.Error(werr))
		}
		return uuid.Nil, false
	}
	return id, true
}
