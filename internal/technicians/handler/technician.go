package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"workbay/internal/technicians/repository"
	apperrors "workbay/pkg/errors"
	httputil "workbay/pkg/http"
	"workbay/pkg/logger"
	"workbay/pkg/middleware"
	"workbay/pkg/model"
	"workbay/pkg/sanitizer"

	"github.com/julienschmidt/httprouter"
)

// TechnicianHandler is a thin registry surface over the repository; there is
// no business logic beyond normalization.
type TechnicianHandler struct {
	repo repository.TechnicianRepository
	log  *logger.Logger
}

func NewTechnicianHandler(repo repository.TechnicianRepository, log *logger.Logger) *TechnicianHandler {
	return &TechnicianHandler{
		repo: repo,
		log:  log,
	}
}

func (h *TechnicianHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var technician model.Technician
	if err := json.NewDecoder(r.Body).Decode(&technician); err != nil {
		h.writeBadRequest(w, "Create")
		return
	}
	technician.TenantID = middleware.TenantFromContext(r.Context())
	technician.Name = sanitizer.NormalizeName(technician.Name)
	if technician.Phone != "" {
		technician.Phone = sanitizer.NormalizePhone(technician.Phone)
	}
	technician.Active = true

	if technician.Name == "" {
		h.writeError(w, "Create", apperrors.Validation("Technician name is required", nil))
		return
	}

	if err := h.repo.Create(r.Context(), &technician); err != nil {
		h.writeError(w, "Create", apperrors.Internal("Failed to create technician", err))
		return
	}

	if err := httputil.WriteCreated(w, technician); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *TechnicianHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tenantID := middleware.TenantFromContext(r.Context())
	id := ps.ByName("id")

	technician, err := h.repo.FindByID(r.Context(), tenantID, id)
	if err != nil {
		h.writeError(w, "GetByID", translateRepoErr(err, id))
		return
	}

	if err := httputil.WriteSuccess(w, technician); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *TechnicianHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	tenantID := middleware.TenantFromContext(r.Context())

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	technicians, err := h.repo.FindAll(r.Context(), tenantID, limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", apperrors.Internal("Failed to retrieve technicians", err))
		return
	}

	total, err := h.repo.Count(r.Context(), tenantID)
	if err != nil {
		h.writeError(w, "GetAll", apperrors.Internal("Failed to count technicians", err))
		return
	}

	if err := httputil.WritePaginated(w, technicians, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "error", err)
	}
}

func (h *TechnicianHandler) Activate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.setActive(w, r, ps, true)
}

func (h *TechnicianHandler) Deactivate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.setActive(w, r, ps, false)
}

func (h *TechnicianHandler) setActive(w http.ResponseWriter, r *http.Request, ps httprouter.Params, active bool) {
	tenantID := middleware.TenantFromContext(r.Context())
	id := ps.ByName("id")

	if err := h.repo.SetActive(r.Context(), tenantID, id, active); err != nil {
		h.writeError(w, "SetActive", translateRepoErr(err, id))
		return
	}

	httputil.WriteNoContent(w)
}

func translateRepoErr(err error, id string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFoundWithID("Technician", id)
	case errors.Is(err, repository.ErrInvalidID):
		return apperrors.InvalidInput("Invalid technician ID format")
	default:
		return apperrors.Internal("Failed to access technician", err)
	}
}

func (h *TechnicianHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "error", writeErr)
	}
}

func (h *TechnicianHandler) writeBadRequest(w http.ResponseWriter, op string) {
	if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
	}); writeErr != nil {
		h.log.Error("failed to write JSON response", "handler", op, "error", writeErr)
	}
}

func (h *TechnicianHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/technicians", h.Create)
	router.GET("/api/v1/technicians", h.GetAll)
	router.GET("/api/v1/technicians/id/:id", h.GetByID)
	router.POST("/api/v1/technicians/id/:id/activate", h.Activate)
	router.POST("/api/v1/technicians/id/:id/deactivate", h.Deactivate)
}
