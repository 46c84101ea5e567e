package handlers

import (
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/hourbook/hourbook/pkg/auth"
	"github.com/hourbook/hourbook/pkg/config"
	"github.com/hourbook/hourbook/pkg/models"
	"github.com/hourbook/hourbook/pkg/services"
)

// PoliciesHandler handles policy document HTTP requests.
type PoliciesHandler struct {
	policyService services.PolicyService
	cfg           *config.Config
	logger        *zap.Logger
}

// NewPoliciesHandler creates a new policies handler.
func NewPoliciesHandler(policyService services.PolicyService, cfg *config.Config, logger *zap.Logger) *PoliciesHandler {
	return &PoliciesHandler{policyService: policyService, cfg: cfg, logger: logger}
}

// RegisterRoutes registers the policies handler's routes on the given mux.
func (h *PoliciesHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/policies", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/policies", authMiddleware.RequireAdmin(h.Upload))
	mux.HandleFunc("GET /api/policies/{id}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("GET /api/policies/{id}/document", authMiddleware.RequireAuth(h.Download))
	mux.HandleFunc("DELETE /api/policies/{id}", authMiddleware.RequireAdmin(h.Delete))
}

// List handles GET /api/policies.
func (h *PoliciesHandler) List(w http.ResponseWriter, r *http.Request) {
	policies, err := h.policyService.ListPolicies(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to list policies")
		return
	}
	if policies == nil {
		policies = []*models.Policy{}
	}

	if err := WriteJSON(w, http.StatusOK, policies); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Upload handles POST /api/policies.
// Expects a multipart form with a "file" part and title/description fields.
func (h *PoliciesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		unauthenticated(w, h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Policy.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.cfg.Policy.MaxUploadBytes); err != nil {
		if werr := ErrorResponse(w, http.StatusRequestEntityTooLarge, "upload_too_large",
			"Upload exceeds the maximum of "+strconv.FormatInt(h.cfg.Policy.MaxUploadBytes, 10)+" bytes"); werr != nil {
			h.logger.Error("Failed to write error response", zap.Error(werr))
		}
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if werr := ErrorResponse(w, http.StatusBadRequest, "missing_file", "A file part named 'file' is required"); werr != nil {
			h.logger.Error("Failed to write error response", zap.Error(werr))
		}
		return
	}
	defer file.Close()

	policy, err := h.policyService.UploadPolicy(r.Context(), actor, services.PolicyUpload{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		FileName:    header.Filename,
		Content:     file,
	})
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to upload policy")
		return
	}

	if err := WriteJSON(w, http.StatusCreated, policy); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/policies/{id}.
func (h *PoliciesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, h.logger, "id")
	if !ok {
		return
	}

	policy, err := h.policyService.GetPolicy(r.Context(), id)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to get policy")
		return
	}

	if err := WriteJSON(w, http.StatusOK, policy); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Download handles GET /api/policies/{id}/document.
// Streams the PDF itself.
func (h *PoliciesHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, h.logger, "id")
	if !ok {
		return
	}

	policy, reader, err := h.policyService.OpenPolicy(r.Context(), id)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to open policy document")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+policy.FileName+`"`)
	w.Header().Set("Content-Length", strconv.FormatInt(policy.SizeBytes, 10))
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Error("Failed to stream policy document",
			zap.String("policy_id", id.String()),
			zap.Error(err))
	}
}

// Delete handles DELETE /api/policies/{id}.
func (h *PoliciesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		unauthenticated(w, h.logger)
		return
	}
	id, ok := pathUUID(w, r, h.logger, "id")
	if !ok {
		return
	}

	if err := h.policyService.DeletePolicy(r.Context(), actor, id); err != nil {
		WriteServiceError(w, h.logger, err, "Failed to delete policy")
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
