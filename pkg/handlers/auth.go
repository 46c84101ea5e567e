package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/hourbook/hourbook/pkg/auth"
	"github.com/hourbook/hourbook/pkg/config"
	"github.com/hourbook/hourbook/pkg/services"
)

// jwtCookieName carries the access token for browser clients.
const jwtCookieName = "hourbook_jwt"

// AuthHandler handles registration, login and credential management.
type AuthHandler struct {
	identityService services.IdentityService
	cfg             *config.Config
	logger          *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(identityService services.IdentityService, cfg *config.Config, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		identityService: identityService,
		cfg:             cfg,
		logger:          logger,
	}
}

// RegisterRoutes registers the auth handler's routes on the given mux.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.HandleFunc("POST /api/auth/reset-password", h.ResetPassword)
	mux.HandleFunc("POST /api/auth/change-password", authMiddleware.RequireAuth(h.ChangePassword))
	mux.HandleFunc("GET /api/auth/me", authMiddleware.RequireAuth(h.Me))
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if !DecodeJSON(w, r, h.logger, &input) {
		return
	}

	result, err := h.identityService.Register(r.Context(), input)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to register")
		return
	}

	h.establishSession(w, r, result)
	if err := WriteJSON(w, http.StatusCreated, result); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !DecodeJSON(w, r, h.logger, &input) {
		return
	}

	result, err := h.identityService.Login(r.Context(), input.Email, input.Password)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to log in")
		return
	}

	h.establishSession(w, r, result)
	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Logout handles POST /api/auth/logout. It drops the token cookie and the
// auth snapshot; the token itself simply expires.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     jwtCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	if session, err := auth.GetSession(r); err == nil {
		auth.ClearAuthSnapshot(session)
		if err := auth.SaveSession(r, w, session); err != nil {
			h.logger.Error("Failed to clear auth snapshot", zap.Error(err))
		}
	}

	if err := WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ChangePassword handles POST /api/auth/change-password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.GetClaims(r.Context())
	if !ok {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Missing authentication"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	var input struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !DecodeJSON(w, r, h.logger, &input) {
		return
	}

	err := h.identityService.ChangePassword(r.Context(), claims.Subject, input.CurrentPassword, input.NewPassword)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to change password")
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]string{"status": "password_changed"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ResetPassword handles POST /api/auth/reset-password. It always reports
// success for well-formed requests.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email string `json:"email"`
	}
	if !DecodeJSON(w, r, h.logger, &input) {
		return
	}

	if err := h.identityService.ResetPassword(r.Context(), input.Email); err != nil {
		WriteServiceError(w, h.logger, err, "Failed to request password reset")
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]string{"status": "reset_requested"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Me handles GET /api/auth/me.
// Returns the profile for the authenticated principal, synthesizing one
// when the record cannot be read so the client always gets a usable shape.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.GetClaims(r.Context())
	if !ok {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Missing authentication"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	profile := h.identityService.Resolve(r.Context(), claims.Subject, claims.Email)
	if err := WriteJSON(w, http.StatusOK, profile); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// establishSession sets the token cookie and the durable auth snapshot.
func (h *AuthHandler) establishSession(w http.ResponseWriter, r *http.Request, result *services.AuthResult) {
	http.SetCookie(w, &http.Cookie{
		Name:     jwtCookieName,
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int(h.cfg.Auth.TokenTTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.Env != "local",
		SameSite: http.SameSiteStrictMode,
	})

	session, err := auth.GetSession(r)
	if err != nil {
		// A stale or tampered snapshot cookie decodes as an error but
		// still yields a fresh session.
		h.logger.Warn("Failed to decode auth snapshot, starting fresh", zap.Error(err))
	}
	if session != nil {
		auth.SetAuthSnapshot(session, result.Profile.ID, result.Profile.Email, result.Profile.Role)
		if err := auth.SaveSession(r, w, session); err != nil {
			h.logger.Error("Failed to save auth snapshot", zap.Error(err))
		}
	}
}
