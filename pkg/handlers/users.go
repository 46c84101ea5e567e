package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/hourbook/hourbook/pkg/auth"
	"github.com/hourbook/hourbook/pkg/models"
	"github.com/hourbook/hourbook/pkg/services"
)

// UsersHandler handles user directory HTTP requests.
type UsersHandler struct {
	userService services.UserService
	logger      *zap.Logger
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(userService services.UserService, logger *zap.Logger) *UsersHandler {
	return &UsersHandler{userService: userService, logger: logger}
}

// RegisterRoutes registers the users handler's routes on the given mux.
func (h *UsersHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/users", authMiddleware.RequireAdmin(h.List))
	mux.HandleFunc("GET /api/users/{id}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PATCH /api/users/{id}", authMiddleware.RequireAuth(h.Update))
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		unauthenticated(w, h.logger)
		return
	}

	users, err := h.userService.ListUsers(r.Context(), actor)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to list users")
		return
	}
	if users == nil {
		users = []*models.UserProfile{}
	}

	if err := WriteJSON(w, http.StatusOK, users); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/users/{id}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		unauthenticated(w, h.logger)
		return
	}

	user, err := h.userService.GetUser(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to get user")
		return
	}

	if err := WriteJSON(w, http.StatusOK, user); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PATCH /api/users/{id}.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		unauthenticated(w, h.logger)
		return
	}

	var input services.UserUpdateInput
	if !DecodeJSON(w, r, h.logger, &input) {
		return
	}

	updated, err := h.userService.UpdateUser(r.Context(), actor, r.PathValue("id"), input)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to update user")
		return
	}

	if err := WriteJSON(w, http.StatusOK, updated); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
