package service

import (
	"context"
	"testing"
	"time"

	elevatorsservice "workbay/internal/elevators/service"
	"workbay/pkg/config"
	mongotx "workbay/pkg/db/mongo"
	"workbay/pkg/interval"
	"workbay/pkg/logger"
	"workbay/pkg/model"
)

// ────────────────────────────────────────────────
// Mocks
// ────────────────────────────────────────────────

type mockAppointmentRepo struct {
	findActiveByTechnicianFunc func(ctx context.Context, tenantID string, technicianID string, start, end time.Time) ([]*model.Appointment, error)
	findActiveInRangeFunc      func(ctx context.Context, tenantID string, start, end time.Time) ([]*model.Appointment, error)
}

func (m *mockAppointmentRepo) Create(ctx context.Context, a *model.Appointment) error { return nil }
func (m *mockAppointmentRepo) FindByID(ctx context.Context, tenantID, id string) (*model.Appointment, error) {
	return nil, nil
}
func (m *mockAppointmentRepo) FindAll(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.Appointment, error) {
	return nil, nil
}
func (m *mockAppointmentRepo) Count(ctx context.Context, tenantID string) (int64, error) {
	return 0, nil
}
func (m *mockAppointmentRepo) Update(ctx context.Context, tenantID, id string, a *model.Appointment) error {
	return nil
}
func (m *mockAppointmentRepo) UpdateStatus(ctx context.Context, tenantID, id string, status model.AppointmentStatus) error {
	return nil
}
func (m *mockAppointmentRepo) FindActiveInRange(ctx context.Context, tenantID string, start, end time.Time) ([]*model.Appointment, error) {
	if m.findActiveInRangeFunc != nil {
		return m.findActiveInRangeFunc(ctx, tenantID, start, end)
	}
	return nil, nil
}
func (m *mockAppointmentRepo) FindActiveByTechnician(ctx context.Context, tenantID, technicianID string, start, end time.Time) ([]*model.Appointment, error) {
	if m.findActiveByTechnicianFunc != nil {
		return m.findActiveByTechnicianFunc(ctx, tenantID, technicianID, start, end)
	}
	return nil, nil
}
func (m *mockAppointmentRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return nil
}

type mockWorkOrderRepo struct {
	findBlockingInRangeFunc func(ctx context.Context, tenantID string, start, end time.Time) ([]*model.WorkOrder, error)
}

func (m *mockWorkOrderRepo) Create(ctx context.Context, o *model.WorkOrder) error { return nil }
func (m *mockWorkOrderRepo) FindByID(ctx context.Context, tenantID, id string) (*model.WorkOrder, error) {
	return nil, nil
}
func (m *mockWorkOrderRepo) FindByQuote(ctx context.Context, tenantID, quoteID string) (*model.WorkOrder, error) {
	return nil, nil
}
func (m *mockWorkOrderRepo) FindAll(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.WorkOrder, error) {
	return nil, nil
}
func (m *mockWorkOrderRepo) Count(ctx context.Context, tenantID string) (int64, error) {
	return 0, nil
}
func (m *mockWorkOrderRepo) UpdateStatus(ctx context.Context, tenantID, id string, status model.WorkOrderStatus) error {
	return nil
}
func (m *mockWorkOrderRepo) FindBlockingInRange(ctx context.Context, tenantID string, start, end time.Time) ([]*model.WorkOrder, error) {
	if m.findBlockingInRangeFunc != nil {
		return m.findBlockingInRangeFunc(ctx, tenantID, start, end)
	}
	return nil, nil
}

type mockTechnicianRepo struct {
	findByIDFunc func(ctx context.Context, tenantID, id string) (*model.Technician, error)
}

func (m *mockTechnicianRepo) Create(ctx context.Context, technician *model.Technician) error {
	return nil
}
func (m *mockTechnicianRepo) FindByID(ctx context.Context, tenantID, id string) (*model.Technician, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, tenantID, id)
	}
	return &model.Technician{ID: id, Name: "Dana"}, nil
}
func (m *mockTechnicianRepo) FindAll(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.Technician, error) {
	return nil, nil
}
func (m *mockTechnicianRepo) Count(ctx context.Context, tenantID string) (int64, error) {
	return 0, nil
}
func (m *mockTechnicianRepo) SetActive(ctx context.Context, tenantID, id string, active bool) error {
	return nil
}

type mockElevatorService struct {
	getByIDFunc        func(ctx context.Context, tenantID, id string) (*elevatorsservice.ElevatorWithStatus, error)
	isAvailableFunc    func(ctx context.Context, tenantID, elevatorID string, span interval.Span) (bool, error)
	usagesTouchingFunc func(ctx context.Context, tenantID, elevatorID string, span interval.Span) ([]*model.ElevatorUsage, error)
}

func (m *mockElevatorService) Create(ctx context.Context, elevator *model.Elevator) error {
	return nil
}
func (m *mockElevatorService) GetByID(ctx context.Context, tenantID, id string) (*elevatorsservice.ElevatorWithStatus, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, tenantID, id)
	}
	return &elevatorsservice.ElevatorWithStatus{
		Elevator: &model.Elevator{ID: id, Name: "Lift 1"},
		Status:   model.ElevatorFree,
	}, nil
}
func (m *mockElevatorService) GetAll(ctx context.Context, tenantID string, limit int, offset int64) ([]*elevatorsservice.ElevatorWithStatus, int64, error) {
	return nil, 0, nil
}
func (m *mockElevatorService) Reserve(ctx context.Context, tenantID, elevatorID string, req *elevatorsservice.ReservationRequest) (*model.ElevatorUsage, error) {
	return nil, nil
}
func (m *mockElevatorService) StartUsage(ctx context.Context, tenantID, elevatorID string, req *elevatorsservice.StartRequest) (*model.ElevatorUsage, error) {
	return nil, nil
}
func (m *mockElevatorService) EndUsage(ctx context.Context, tenantID, elevatorID string, req *elevatorsservice.EndRequest) (*model.ElevatorUsage, error) {
	return nil, nil
}
func (m *mockElevatorService) CurrentUsage(ctx context.Context, tenantID, elevatorID string) (*model.ElevatorUsage, error) {
	return nil, nil
}
func (m *mockElevatorService) History(ctx context.Context, tenantID, elevatorID string, limit int, offset int64) ([]*model.ElevatorUsage, error) {
	return nil, nil
}
func (m *mockElevatorService) UsagesTouching(ctx context.Context, tenantID, elevatorID string, span interval.Span) ([]*model.ElevatorUsage, error) {
	if m.usagesTouchingFunc != nil {
		return m.usagesTouchingFunc(ctx, tenantID, elevatorID, span)
	}
	return nil, nil
}
func (m *mockElevatorService) SetMaintenance(ctx context.Context, tenantID, elevatorID string, maintenance bool) error {
	return nil
}
func (m *mockElevatorService) IsAvailable(ctx context.Context, tenantID, elevatorID string, span interval.Span) (bool, error) {
	if m.isAvailableFunc != nil {
		return m.isAvailableFunc(ctx, tenantID, elevatorID, span)
	}
	return true, nil
}

func newTestConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
		BusinessOpen:       "08:00",
		BusinessClose:      "18:00",
		SlotStepMin:        30,
		DefaultDurationMin: 60,
	}
}

func newTestService(appts *mockAppointmentRepo, orders *mockWorkOrderRepo, techs *mockTechnicianRepo, lifts *mockElevatorService) SchedulingService {
	if appts == nil {
		appts = &mockAppointmentRepo{}
	}
	if orders == nil {
		orders = &mockWorkOrderRepo{}
	}
	if techs == nil {
		techs = &mockTechnicianRepo{}
	}
	if lifts == nil {
		lifts = &mockElevatorService{}
	}
	return NewSchedulingService(appts, orders, techs, lifts, newTestConfig())
}

// ────────────────────────────────────────────────
// Technician conflicts
// ────────────────────────────────────────────────

func TestHasTechnicianConflict(t *testing.T) {
	existing := &model.Appointment{
		ID:           "65f000000000000000000001",
		TechnicianID: "65f000000000000000000aaa",
		ScheduledAt:  at(10, 0),
		DurationMin:  60,
		Status:       model.AppointmentScheduled,
	}

	appts := &mockAppointmentRepo{
		findActiveByTechnicianFunc: func(ctx context.Context, tenantID, technicianID string, start, end time.Time) ([]*model.Appointment, error) {
			return []*model.Appointment{existing}, nil
		},
	}
	svc := newTestService(appts, nil, nil, nil)

	tests := []struct {
		name     string
		span     interval.Span
		exclude  string
		conflict bool
	}{
		{
			name:     "overlapping window",
			span:     interval.Span{Start: at(10, 30), End: at(11, 30)},
			conflict: true,
		},
		{
			name:     "window starting at existing end",
			span:     interval.Span{Start: at(11, 0), End: at(12, 0)},
			conflict: false,
		},
		{
			name:     "window ending at existing start",
			span:     interval.Span{Start: at(9, 0), End: at(10, 0)},
			conflict: false,
		},
		{
			name:     "excluded appointment is ignored",
			span:     interval.Span{Start: at(10, 30), End: at(11, 30)},
			exclude:  existing.ID,
			conflict: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.HasTechnicianConflict(context.Background(), "tenant-1", existing.TechnicianID, tt.span, tt.exclude)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.conflict {
				t.Errorf("HasTechnicianConflict() = %v, want %v", got, tt.conflict)
			}
		})
	}
}

func TestCheckAvailability_CombinesConflicts(t *testing.T) {
	appts := &mockAppointmentRepo{
		findActiveByTechnicianFunc: func(ctx context.Context, tenantID, technicianID string, start, end time.Time) ([]*model.Appointment, error) {
			return []*model.Appointment{{
				ID:          "65f000000000000000000001",
				ScheduledAt: at(10, 0),
				DurationMin: 90,
				Status:      model.AppointmentScheduled,
			}}, nil
		},
	}
	lifts := &mockElevatorService{
		isAvailableFunc: func(ctx context.Context, tenantID, elevatorID string, span interval.Span) (bool, error) {
			return false, nil
		},
	}
	svc := newTestService(appts, nil, nil, lifts)

	result, err := svc.CheckAvailability(context.Background(), "tenant-1", &AvailabilityRequest{
		Start:        at(10, 30),
		DurationMin:  60,
		TechnicianID: "65f000000000000000000aaa",
		ElevatorID:   "65f000000000000000000bbb",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Available {
		t.Error("expected the window to be unavailable")
	}
	if len(result.Conflicts) != 2 {
		t.Fatalf("expected 2 conflicts, got %d", len(result.Conflicts))
	}
	if result.Conflicts[0].Kind != model.ConflictTechnician {
		t.Errorf("first conflict kind = %s, want technician", result.Conflicts[0].Kind)
	}
	if result.Conflicts[0].DisplayName != "Dana" {
		t.Errorf("technician conflict display name = %q, want resolved name", result.Conflicts[0].DisplayName)
	}
	if result.Conflicts[1].Kind != model.ConflictLift {
		t.Errorf("second conflict kind = %s, want lift", result.Conflicts[1].Kind)
	}
}

func TestCheckAvailability_FreeWindow(t *testing.T) {
	svc := newTestService(nil, nil, nil, nil)

	result, err := svc.CheckAvailability(context.Background(), "tenant-1", &AvailabilityRequest{
		Start:        at(9, 0),
		TechnicianID: "65f000000000000000000aaa",
		ElevatorID:   "65f000000000000000000bbb",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Available || len(result.Conflicts) != 0 {
		t.Errorf("expected a clean availability result, got %+v", result)
	}
}

func TestCheckAvailability_TechnicianNameFallsBackToID(t *testing.T) {
	appts := &mockAppointmentRepo{
		findActiveByTechnicianFunc: func(ctx context.Context, tenantID, technicianID string, start, end time.Time) ([]*model.Appointment, error) {
			return []*model.Appointment{{
				ID:          "65f000000000000000000001",
				ScheduledAt: at(10, 0),
				DurationMin: 60,
				Status:      model.AppointmentScheduled,
			}}, nil
		},
	}
	techs := &mockTechnicianRepo{
		findByIDFunc: func(ctx context.Context, tenantID, id string) (*model.Technician, error) {
			return nil, context.DeadlineExceeded
		},
	}
	svc := newTestService(appts, nil, techs, nil)

	result, err := svc.CheckAvailability(context.Background(), "tenant-1", &AvailabilityRequest{
		Start:        at(10, 0),
		DurationMin:  60,
		TechnicianID: "65f000000000000000000aaa",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(result.Conflicts))
	}
	if result.Conflicts[0].DisplayName != "65f000000000000000000aaa" {
		t.Errorf("display name = %q, want the technician id fallback", result.Conflicts[0].DisplayName)
	}
}

// ────────────────────────────────────────────────
// Day scan
// ────────────────────────────────────────────────

func TestGetAvailableSlots_MaintenanceBlocksWholeDay(t *testing.T) {
	lifts := &mockElevatorService{
		getByIDFunc: func(ctx context.Context, tenantID, id string) (*elevatorsservice.ElevatorWithStatus, error) {
			return &elevatorsservice.ElevatorWithStatus{
				Elevator: &model.Elevator{ID: id, Name: "Lift 1", Maintenance: true},
				Status:   model.ElevatorMaintenance,
			}, nil
		},
	}
	svc := newTestService(nil, nil, nil, lifts)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	result, err := svc.GetAvailableSlots(context.Background(), "tenant-1", day, 60, "65f000000000000000000bbb")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Date != "2026-03-10" {
		t.Errorf("date = %q, want 2026-03-10", result.Date)
	}
	if result.HasAvailability {
		t.Error("maintenance lift must leave no availability")
	}
	for _, s := range result.AvailableSlots {
		if s.Available {
			t.Errorf("slot starting %v should be blocked", s.Start)
		}
		if s.Reason != model.ReasonLiftOccupied {
			t.Errorf("slot reason = %q, want %q", s.Reason, model.ReasonLiftOccupied)
		}
	}
}

func TestGetAvailableSlots_MixedResources(t *testing.T) {
	appts := &mockAppointmentRepo{
		findActiveInRangeFunc: func(ctx context.Context, tenantID string, start, end time.Time) ([]*model.Appointment, error) {
			return []*model.Appointment{{
				ScheduledAt: at(9, 0),
				DurationMin: 60,
				Status:      model.AppointmentScheduled,
			}}, nil
		},
	}
	orders := &mockWorkOrderRepo{
		findBlockingInRangeFunc: func(ctx context.Context, tenantID string, start, end time.Time) ([]*model.WorkOrder, error) {
			hours := 2.0
			start14 := at(14, 0)
			return []*model.WorkOrder{{
				Status:         model.WorkOrderInProgress,
				ScheduledStart: &start14,
				EstimatedHours: &hours,
			}}, nil
		},
	}
	svc := newTestService(appts, orders, nil, nil)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	result, err := svc.GetAvailableSlots(context.Background(), "tenant-1", day, 60, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.HasAvailability {
		t.Fatal("expected free slots outside the blocked windows")
	}

	byStart := map[string]model.Slot{}
	for _, s := range result.AvailableSlots {
		byStart[s.Start.Format("15:04")] = s
	}

	if s := byStart["09:30"]; s.Available || s.Reason != model.ReasonExistingAppointment {
		t.Errorf("09:30 slot = %+v, want appointment conflict", s)
	}
	if s := byStart["14:30"]; s.Available || s.Reason != model.ReasonWorkOrderInProgress {
		t.Errorf("14:30 slot = %+v, want work order conflict", s)
	}
	if s := byStart["12:00"]; !s.Available {
		t.Errorf("12:00 slot = %+v, want free", s)
	}
}
