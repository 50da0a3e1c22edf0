package handler

import (
	"encoding/json"
	"net/http"

	"workbay/internal/workorders/service"
	httputil "workbay/pkg/http"
	"workbay/pkg/logger"
	"workbay/pkg/middleware"
	"workbay/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type WorkOrderHandler struct {
	service service.WorkOrderService
	log     *logger.Logger
}

func NewWorkOrderHandler(service service.WorkOrderService, log *logger.Logger) *WorkOrderHandler {
	return &WorkOrderHandler{
		service: service,
		log:     log,
	}
}

func (h *WorkOrderHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var order model.WorkOrder
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		h.writeBadRequest(w, "Create")
		return
	}
	order.TenantID = middleware.TenantFromContext(r.Context())

	if err := h.service.Create(r.Context(), &order); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, order); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *WorkOrderHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tenantID := middleware.TenantFromContext(r.Context())

	order, err := h.service.GetByID(r.Context(), tenantID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, order); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *WorkOrderHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	tenantID := middleware.TenantFromContext(r.Context())

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	orders, total, err := h.service.GetAll(r.Context(), tenantID, limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, orders, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "error", err)
	}
}

type statusRequest struct {
	Status model.WorkOrderStatus `json:"status"`
}

func (h *WorkOrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
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

func (h *WorkOrderHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "error", writeErr)
	}
}

func (h *WorkOrderHandler) writeBadRequest(w http.ResponseWriter, op string) {
	if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
	}); writeErr != nil {
		h.log.Error("failed to write JSON response", "handler", op, "error", writeErr)
	}
}

func (h *WorkOrderHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/work-orders", h.Create)
	router.GET("/api/v1/work-orders", h.GetAll)
	router.GET("/api/v1/work-orders/id/:id", h.GetByID)
	router.POST("/api/v1/work-orders/id/:id/status", h.UpdateStatus)
}
