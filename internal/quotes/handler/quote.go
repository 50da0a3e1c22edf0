package handler

import (
	"encoding/json"
	"net/http"

	"workbay/internal/quotes/service"
	httputil "workbay/pkg/http"
	"workbay/pkg/logger"
	"workbay/pkg/middleware"
	"workbay/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type QuoteHandler struct {
	service service.QuoteService
	log     *logger.Logger
}

func NewQuoteHandler(service service.QuoteService, log *logger.Logger) *QuoteHandler {
	return &QuoteHandler{
		service: service,
		log:     log,
	}
}

func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var quote model.Quote
	if err := json.NewDecoder(r.Body).Decode(&quote); err != nil {
		h.writeBadRequest(w, "Create")
		return
	}
	quote.TenantID = middleware.TenantFromContext(r.Context())

	if err := h.service.Create(r.Context(), &quote); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, quote); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *QuoteHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tenantID := middleware.TenantFromContext(r.Context())

	quote, err := h.service.GetByID(r.Context(), tenantID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, quote); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *QuoteHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	tenantID := middleware.TenantFromContext(r.Context())

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	quotes, total, err := h.service.GetAll(r.Context(), tenantID, limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, quotes, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "error", err)
	}
}

type statusRequest struct {
	Status model.QuoteStatus `json:"status"`
}

func (h *QuoteHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
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

func (h *QuoteHandler) Approve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tenantID := middleware.TenantFromContext(r.Context())

	quote, err := h.service.Approve(r.Context(), tenantID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Approve", err)
		return
	}

	if err := httputil.WriteSuccess(w, quote); err != nil {
		h.log.Error("failed to write success response", "handler", "Approve", "error", err)
	}
}

func (h *QuoteHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "error", writeErr)
	}
}

func (h *QuoteHandler) writeBadRequest(w http.ResponseWriter, op string) {
	if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
	}); writeErr != nil {
		h.log.Error("failed to write JSON response", "handler", op, "error", writeErr)
	}
}

func (h *QuoteHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/quotes", h.Create)
	router.GET("/api/v1/quotes", h.GetAll)
	router.GET("/api/v1/quotes/id/:id", h.GetByID)
	router.POST("/api/v1/quotes/id/:id/status", h.UpdateStatus)
	router.POST("/api/v1/quotes/id/:id/approve", h.Approve)
}
