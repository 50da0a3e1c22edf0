package handler

import (
	"encoding/json"
	"net/http"

	"workbay/internal/appointments/service"
	apperrors "workbay/pkg/errors"
	httputil "workbay/pkg/http"
	"workbay/pkg/logger"
	"workbay/pkg/middleware"
	"workbay/pkg/model"
	"workbay/pkg/sealer"

	"github.com/julienschmidt/httprouter"
)

type AppointmentHandler struct {
	service service.AppointmentService
	sealer  *sealer.Sealer
	log     *logger.Logger
}

func NewAppointmentHandler(service service.AppointmentService, sealer *sealer.Sealer, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service: service,
		sealer:  sealer,
		log:     log,
	}
}

// createdResponse carries the opaque token a customer can use to cancel
// without authenticating.
type createdResponse struct {
	*model.Appointment
	CancelToken string `json:"cancel_token,omitempty"`
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var appointment model.Appointment
	if err := json.NewDecoder(r.Body).Decode(&appointment); err != nil {
		h.writeBadRequest(w, "Create")
		return
	}
	appointment.TenantID = middleware.TenantFromContext(r.Context())

	if err := h.service.Create(r.Context(), &appointment); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	token, err := h.sealer.CancelToken(appointment.TenantID, appointment.ID)
	if err != nil {
		h.log.Warn("Failed to issue cancel token", "id", appointment.ID, "error", err)
	}

	if err := httputil.WriteCreated(w, createdResponse{Appointment: &appointment, CancelToken: token}); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *AppointmentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tenantID := middleware.TenantFromContext(r.Context())

	appointment, err := h.service.GetByID(r.Context(), tenantID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, appointment); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *AppointmentHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	tenantID := middleware.TenantFromContext(r.Context())

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	appointments, total, err := h.service.GetAll(r.Context(), tenantID, limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, appointments, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "error", err)
	}
}

func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.AppointmentUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeBadRequest(w, "Update")
		return
	}
	tenantID := middleware.TenantFromContext(r.Context())

	if err := h.service.Update(r.Context(), tenantID, ps.ByName("id"), &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tenantID := middleware.TenantFromContext(r.Context())

	if err := h.service.Cancel(r.Context(), tenantID, ps.ByName("id")); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	httputil.WriteNoContent(w)
}

// CancelByToken cancels an appointment identified by an opaque token issued
// at creation time. The tenant comes from the token, not the request.
func (h *AppointmentHandler) CancelByToken(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tenantID, appointmentID, err := h.sealer.ParseCancelToken(ps.ByName("token"))
	if err != nil {
		h.writeError(w, "CancelByToken", apperrors.InvalidInput("Invalid cancellation token"))
		return
	}

	if err := h.service.Cancel(r.Context(), tenantID, appointmentID); err != nil {
		h.writeError(w, "CancelByToken", err)
		return
	}

	httputil.WriteNoContent(w)
}

type statusRequest struct {
	Status model.AppointmentStatus `json:"status"`
}

func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "UpdateStatus")
		return
	}
	tenantID := middleware.TenantFromContext(r.Context())

	if err := h.service.UpdateStatus(r.Context(), tenantID, ps.ByName("id"), req.Status); err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AppointmentHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "error", writeErr)
	}
}

func (h *AppointmentHandler) writeBadRequest(w http.ResponseWriter, op string) {
	if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
	}); writeErr != nil {
		h.log.Error("failed to write JSON response", "handler", op, "error", writeErr)
	}
}

func (h *AppointmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/appointments", h.Create)
	router.GET("/api/v1/appointments", h.GetAll)
	router.GET("/api/v1/appointments/id/:id", h.GetByID)
	router.PATCH("/api/v1/appointments/id/:id", h.Update)
	router.POST("/api/v1/appointments/id/:id/cancel", h.Cancel)
	router.POST("/api/v1/appointments/id/:id/status", h.UpdateStatus)
	router.POST("/api/v1/appointments/cancel/:token", h.CancelByToken)
}
