package handler

import (
	"encoding/json"
	"net/http"

	"workbay/internal/elevators/service"
	httputil "workbay/pkg/http"
	"workbay/pkg/logger"
	"workbay/pkg/middleware"
	"workbay/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ElevatorHandler struct {
	service service.ElevatorService
	log     *logger.Logger
}

func NewElevatorHandler(service service.ElevatorService, log *logger.Logger) *ElevatorHandler {
	return &ElevatorHandler{
		service: service,
		log:     log,
	}
}

func (h *ElevatorHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var elevator model.Elevator
	if err := json.NewDecoder(r.Body).Decode(&elevator); err != nil {
		h.writeBadRequest(w, "Create")
		return
	}
	elevator.TenantID = middleware.TenantFromContext(r.Context())

	if err := h.service.Create(r.Context(), &elevator); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, elevator); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *ElevatorHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tenantID := middleware.TenantFromContext(r.Context())

	elevator, err := h.service.GetByID(r.Context(), tenantID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, elevator); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *ElevatorHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	tenantID := middleware.TenantFromContext(r.Context())

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	elevators, total, err := h.service.GetAll(r.Context(), tenantID, limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, elevators, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "error", err)
	}
}

func (h *ElevatorHandler) Reserve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req service.ReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "Reserve")
		return
	}
	tenantID := middleware.TenantFromContext(r.Context())

	usage, err := h.service.Reserve(r.Context(), tenantID, ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "Reserve", err)
		return
	}

	if err := httputil.WriteSuccess(w, usage); err != nil {
		h.log.Error("failed to write success response", "handler", "Reserve", "error", err)
	}
}

func (h *ElevatorHandler) StartUsage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req service.StartRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeBadRequest(w, "StartUsage")
			return
		}
	}
	tenantID := middleware.TenantFromContext(r.Context())

	usage, err := h.service.StartUsage(r.Context(), tenantID, ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "StartUsage", err)
		return
	}

	if err := httputil.WriteSuccess(w, usage); err != nil {
		h.log.Error("failed to write success response", "handler", "StartUsage", "error", err)
	}
}

func (h *ElevatorHandler) EndUsage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req service.EndRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeBadRequest(w, "EndUsage")
			return
		}
	}
	tenantID := middleware.TenantFromContext(r.Context())

	usage, err := h.service.EndUsage(r.Context(), tenantID, ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "EndUsage", err)
		return
	}

	if err := httputil.WriteSuccess(w, usage); err != nil {
		h.log.Error("failed to write success response", "handler", "EndUsage", "error", err)
	}
}

func (h *ElevatorHandler) CurrentUsage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tenantID := middleware.TenantFromContext(r.Context())

	usage, err := h.service.CurrentUsage(r.Context(), tenantID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "CurrentUsage", err)
		return
	}

	if err := httputil.WriteSuccess(w, usage); err != nil {
		h.log.Error("failed to write success response", "handler", "CurrentUsage", "error", err)
	}
}

func (h *ElevatorHandler) History(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tenantID := middleware.TenantFromContext(r.Context())

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "History", err)
		return
	}

	usages, err := h.service.History(r.Context(), tenantID, ps.ByName("id"), limit, offset)
	if err != nil {
		h.writeError(w, "History", err)
		return
	}

	if err := httputil.WriteSuccess(w, usages); err != nil {
		h.log.Error("failed to write success response", "handler", "History", "error", err)
	}
}

func (h *ElevatorHandler) EnterMaintenance(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.setMaintenance(w, r, ps, true)
}

func (h *ElevatorHandler) ExitMaintenance(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.setMaintenance(w, r, ps, false)
}

func (h *ElevatorHandler) setMaintenance(w http.ResponseWriter, r *http.Request, ps httprouter.Params, maintenance bool) {
	tenantID := middleware.TenantFromContext(r.Context())

	if err := h.service.SetMaintenance(r.Context(), tenantID, ps.ByName("id"), maintenance); err != nil {
		h.writeError(w, "SetMaintenance", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ElevatorHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "error", writeErr)
	}
}

func (h *ElevatorHandler) writeBadRequest(w http.ResponseWriter, op string) {
	if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
	}); writeErr != nil {
		h.log.Error("failed to write JSON response", "handler", op, "error", writeErr)
	}
}

func (h *ElevatorHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/elevators", h.Create)
	router.GET("/api/v1/elevators", h.GetAll)
	router.GET("/api/v1/elevators/id/:id", h.GetByID)
	router.POST("/api/v1/elevators/id/:id/reserve", h.Reserve)
	router.POST("/api/v1/elevators/id/:id/start-usage", h.StartUsage)
	router.POST("/api/v1/elevators/id/:id/end-usage", h.EndUsage)
	router.GET("/api/v1/elevators/id/:id/current-usage", h.CurrentUsage)
	router.GET("/api/v1/elevators/id/:id/history", h.History)
	router.POST("/api/v1/elevators/id/:id/maintenance", h.EnterMaintenance)
	router.DELETE("/api/v1/elevators/id/:id/maintenance", h.ExitMaintenance)
}
