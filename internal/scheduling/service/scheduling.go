package service

import (
	"context"
	"time"

	appointmentsrepo "workbay/internal/appointments/repository"
	elevatorsservice "workbay/internal/elevators/service"
	techniciansrepo "workbay/internal/technicians/repository"
	workordersrepo "workbay/internal/workorders/repository"
	"workbay/pkg/config"
	apperrors "workbay/pkg/errors"
	"workbay/pkg/interval"
	"workbay/pkg/model"
)

// AvailabilityRequest is a point-in-time conflict check.
type AvailabilityRequest struct {
	Start        time.Time
	DurationMin  int
	TechnicianID string
	ElevatorID   string
}

type SchedulingService interface {
	CheckAvailability(ctx context.Context, tenantID string, req *AvailabilityRequest) (*model.AvailabilityResult, error)
	GetAvailableSlots(ctx context.Context, tenantID string, day time.Time, durationMin int, elevatorID string) (*model.DaySlots, error)
	HasTechnicianConflict(ctx context.Context, tenantID string, technicianID string, span interval.Span, excludeAppointmentID string) (bool, error)
}

type schedulingService struct {
	appointments appointmentsrepo.AppointmentRepository
	workOrders   workordersrepo.WorkOrderRepository
	technicians  techniciansrepo.TechnicianRepository
	elevators    elevatorsservice.ElevatorService
	cfg          *config.Config
}

func NewSchedulingService(
	appointments appointmentsrepo.AppointmentRepository,
	workOrders workordersrepo.WorkOrderRepository,
	technicians techniciansrepo.TechnicianRepository,
	elevators elevatorsservice.ElevatorService,
	cfg *config.Config,
) SchedulingService {
	return &schedulingService{
		appointments: appointments,
		workOrders:   workOrders,
		technicians:  technicians,
		elevators:    elevators,
		cfg:          cfg,
	}
}

func (s *schedulingService) CheckAvailability(ctx context.Context, tenantID string, req *AvailabilityRequest) (*model.AvailabilityResult, error) {
	if req.DurationMin <= 0 {
		req.DurationMin = s.cfg.DefaultDurationMin
	}
	span := interval.FromDuration(req.Start, time.Duration(req.DurationMin)*time.Minute)

	result := &model.AvailabilityResult{Available: true, Conflicts: []model.Conflict{}}

	if req.TechnicianID != "" {
		conflicts, err := s.technicianConflicts(ctx, tenantID, req.TechnicianID, span, "")
		if err != nil {
			return nil, err
		}
		result.Conflicts = append(result.Conflicts, conflicts...)
	}

	if req.ElevatorID != "" {
		conflict, err := s.liftConflict(ctx, tenantID, req.ElevatorID, span)
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			result.Conflicts = append(result.Conflicts, *conflict)
		}
	}

	result.Available = len(result.Conflicts) == 0
	return result, nil
}

func (s *schedulingService) GetAvailableSlots(ctx context.Context, tenantID string, day time.Time, durationMin int, elevatorID string) (*model.DaySlots, error) {
	if durationMin <= 0 {
		durationMin = s.cfg.DefaultDurationMin
	}

	open, close := s.cfg.BusinessHours(day, day.Location())

	appointments, err := s.appointments.FindActiveInRange(ctx, tenantID, open, close)
	if err != nil {
		s.cfg.Log.Error("Failed to load appointments for slot scan", "error", err)
		return nil, apperrors.Internal("Failed to compute available slots", err)
	}

	orders, err := s.workOrders.FindBlockingInRange(ctx, tenantID, open, close)
	if err != nil {
		s.cfg.Log.Error("Failed to load work orders for slot scan", "error", err)
		return nil, apperrors.Internal("Failed to compute available slots", err)
	}

	inputs := SlotInputs{
		Open:        open,
		Close:       close,
		StepMin:     s.cfg.SlotStepMin,
		DurationMin: durationMin,
	}

	for _, a := range appointments {
		inputs.AppointmentSpans = append(inputs.AppointmentSpans, a.Span())
	}
	for _, o := range orders {
		if span, ok := o.ScheduledSpan(); ok {
			inputs.WorkOrderSpans = append(inputs.WorkOrderSpans, span)
		}
	}

	if elevatorID != "" {
		spans, err := s.liftSpans(ctx, tenantID, elevatorID, open, close)
		if err != nil {
			return nil, err
		}
		inputs.LiftSpans = spans
	}

	slots := GenerateSlots(inputs)

	return &model.DaySlots{
		Date:            day.Format("2006-01-02"),
		AvailableSlots:  slots,
		HasAvailability: HasAvailability(slots),
	}, nil
}

// HasTechnicianConflict reports whether the technician has any non-terminal
// appointment overlapping the window, optionally ignoring one appointment
// when re-validating an update.
func (s *schedulingService) HasTechnicianConflict(ctx context.Context, tenantID string, technicianID string, span interval.Span, excludeAppointmentID string) (bool, error) {
	conflicts, err := s.technicianConflicts(ctx, tenantID, technicianID, span, excludeAppointmentID)
	if err != nil {
		return false, err
	}
	return len(conflicts) > 0, nil
}

func (s *schedulingService) technicianConflicts(ctx context.Context, tenantID string, technicianID string, span interval.Span, excludeAppointmentID string) ([]model.Conflict, error) {
	appointments, err := s.appointments.FindActiveByTechnician(ctx, tenantID, technicianID, span.Start, span.End)
	if err != nil {
		s.cfg.Log.Error("Failed to load technician appointments", "technician_id", technicianID, "error", err)
		return nil, apperrors.Internal("Failed to check technician availability", err)
	}

	displayName := s.technicianName(ctx, tenantID, technicianID)

	var conflicts []model.Conflict
	for _, a := range appointments {
		if excludeAppointmentID != "" && a.ID == excludeAppointmentID {
			continue
		}
		if span.Overlaps(a.Span()) {
			conflicts = append(conflicts, model.Conflict{
				Kind:        model.ConflictTechnician,
				ResourceID:  technicianID,
				DisplayName: displayName,
				Start:       a.Span().Start,
				End:         a.Span().End,
			})
		}
	}
	return conflicts, nil
}

func (s *schedulingService) liftConflict(ctx context.Context, tenantID string, elevatorID string, span interval.Span) (*model.Conflict, error) {
	available, err := s.elevators.IsAvailable(ctx, tenantID, elevatorID, span)
	if err != nil {
		return nil, err
	}
	if available {
		return nil, nil
	}

	lift, err := s.elevators.GetByID(ctx, tenantID, elevatorID)
	if err != nil {
		return nil, err
	}

	return &model.Conflict{
		Kind:        model.ConflictLift,
		ResourceID:  elevatorID,
		DisplayName: lift.Name,
		Start:       span.Start,
		End:         span.End,
	}, nil
}

func (s *schedulingService) liftSpans(ctx context.Context, tenantID string, elevatorID string, open, close time.Time) ([]interval.Span, error) {
	lift, err := s.elevators.GetByID(ctx, tenantID, elevatorID)
	if err != nil {
		return nil, err
	}
	if lift.Maintenance {
		// Maintenance blocks the whole day.
		return []interval.Span{{Start: open, End: close}}, nil
	}

	window := interval.Span{Start: open, End: close}
	usages, err := s.elevators.UsagesTouching(ctx, tenantID, elevatorID, window)
	if err != nil {
		return nil, err
	}

	var spans []interval.Span
	for _, u := range usages {
		span := u.EffectiveSpan(close)
		if window.Overlaps(span) {
			spans = append(spans, span)
		}
	}
	return spans, nil
}

func (s *schedulingService) technicianName(ctx context.Context, tenantID string, technicianID string) string {
	technician, err := s.technicians.FindByID(ctx, tenantID, technicianID)
	if err != nil {
		return technicianID
	}
	return technician.Name
}
