package handler

import (
	"net/http"
	"strconv"
	"time"

	"workbay/internal/scheduling/service"
	apperrors "workbay/pkg/errors"
	httputil "workbay/pkg/http"
	"workbay/pkg/locale"
	"workbay/pkg/logger"
	"workbay/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

type SchedulingHandler struct {
	service service.SchedulingService
	log     *logger.Logger
}

func NewSchedulingHandler(service service.SchedulingService, log *logger.Logger) *SchedulingHandler {
	return &SchedulingHandler{
		service: service,
		log:     log,
	}
}

func (h *SchedulingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	tenantID := middleware.TenantFromContext(r.Context())
	query := r.URL.Query()

	start, err := httputil.ExtractTime(r, "start")
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}
	if start == nil {
		h.writeError(w, "CheckAvailability", apperrors.InvalidInput("'start' query parameter is required"))
		return
	}

	durationMin, err := extractDurationMin(query.Get("duration_min"))
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}

	req := &service.AvailabilityRequest{
		Start:        *start,
		DurationMin:  durationMin,
		TechnicianID: query.Get("technician_id"),
		ElevatorID:   query.Get("elevator_id"),
	}

	result, err := h.service.CheckAvailability(r.Context(), tenantID, req)
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckAvailability", "error", err)
	}
}

func (h *SchedulingHandler) AvailableSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	tenantID := middleware.TenantFromContext(r.Context())
	query := r.URL.Query()

	day, err := httputil.ExtractDate(r, "date")
	if err != nil {
		h.writeError(w, "AvailableSlots", err)
		return
	}

	if tz := query.Get("tz"); tz != "" {
		loc, err := resolveLocation(tz)
		if err != nil {
			h.writeError(w, "AvailableSlots", err)
			return
		}
		day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	}

	durationMin, err := extractDurationMin(query.Get("duration_min"))
	if err != nil {
		h.writeError(w, "AvailableSlots", err)
		return
	}

	slots, err := h.service.GetAvailableSlots(r.Context(), tenantID, day, durationMin, query.Get("elevator_id"))
	if err != nil {
		h.writeError(w, "AvailableSlots", err)
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "AvailableSlots", "error", err)
	}
}

func extractDurationMin(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, apperrors.InvalidInput("invalid duration_min parameter: " + raw)
	}
	return v, nil
}

// resolveLocation accepts an IANA zone name, or falls back to the default
// timezone of the region matching a looser label like "Israel" or "Eastern".
func resolveLocation(tz string) (*time.Location, error) {
	if loc, err := time.LoadLocation(tz); err == nil {
		return loc, nil
	}
	region := locale.DetectRegion(tz)
	country, ok := locale.Countries[region]
	if !ok {
		return nil, apperrors.InvalidInput("unknown timezone: " + tz)
	}
	loc, err := time.LoadLocation(country.DefaultTimezone)
	if err != nil {
		return nil, apperrors.InvalidInput("unknown timezone: " + tz)
	}
	return loc, nil
}

func (h *SchedulingHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "error", writeErr)
	}
}

func (h *SchedulingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/appointments/check-availability", h.CheckAvailability)
	router.GET("/api/v1/appointments/available-slots", h.AvailableSlots)
}
