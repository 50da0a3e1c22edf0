package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	appointmentserrors "workbay/internal/appointments/errors"
	"workbay/internal/appointments/validator"
	"workbay/internal/events"
	"workbay/pkg/config"
	mongotx "workbay/pkg/db/mongo"
	apperrors "workbay/pkg/errors"
	"workbay/pkg/logger"
	"workbay/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// ────────────────────────────────────────────────
// Mocks
// ────────────────────────────────────────────────

type mockAppointmentRepo struct {
	createFunc                 func(ctx context.Context, a *model.Appointment) error
	findByIDFunc               func(ctx context.Context, tenantID, id string) (*model.Appointment, error)
	updateStatusFunc           func(ctx context.Context, tenantID, id string, status model.AppointmentStatus) error
	findActiveByTechnicianFunc func(ctx context.Context, tenantID, technicianID string, start, end time.Time) ([]*model.Appointment, error)
}

func (m *mockAppointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, a)
	}
	a.ID = "65f000000000000000000001"
	return nil
}
func (m *mockAppointmentRepo) FindByID(ctx context.Context, tenantID, id string) (*model.Appointment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, tenantID, id)
	}
	return nil, appointmentserrors.ErrNotFound
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
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, tenantID, id, status)
	}
	return nil
}
func (m *mockAppointmentRepo) FindActiveInRange(ctx context.Context, tenantID string, start, end time.Time) ([]*model.Appointment, error) {
	return nil, nil
}
func (m *mockAppointmentRepo) FindActiveByTechnician(ctx context.Context, tenantID, technicianID string, start, end time.Time) ([]*model.Appointment, error) {
	if m.findActiveByTechnicianFunc != nil {
		return m.findActiveByTechnicianFunc(ctx, tenantID, technicianID, start, end)
	}
	return nil, nil
}
func (m *mockAppointmentRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockSlotLockRepo struct {
	mu     sync.Mutex
	held   map[string]bool
	failed bool
}

func newMockSlotLockRepo() *mockSlotLockRepo {
	return &mockSlotLockRepo{held: map[string]bool{}}
}

func (m *mockSlotLockRepo) Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[lock.ID] {
		m.failed = true
		return nil, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
	}
	m.held[lock.ID] = true
	return lock, nil
}

func (m *mockSlotLockRepo) Delete(ctx context.Context, lockID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, lockID)
	return nil
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *capturingPublisher) Publish(ctx context.Context, eventType string, key string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
}

func (p *capturingPublisher) Close() error { return nil }

func (p *capturingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

func newTestService(repo *mockAppointmentRepo, locks *mockSlotLockRepo, pub events.Publisher) AppointmentService {
	if repo == nil {
		repo = &mockAppointmentRepo{}
	}
	if locks == nil {
		locks = newMockSlotLockRepo()
	}
	if pub == nil {
		pub = events.NoopPublisher{}
	}
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	cfg := &config.Config{
		Log:                log,
		DefaultDurationMin: 60,
		SlotLockTTL:        10 * time.Second,
	}
	return NewAppointmentService(repo, locks, validator.NewAppointmentValidator(log), pub, cfg)
}

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 10, hour, min, 0, 0, time.UTC)
}

func validAppointment() *model.Appointment {
	return &model.Appointment{
		TenantID:     "tenant-1",
		CustomerName: "Noa Levi",
		TechnicianID: "65f000000000000000000aaa",
		ScheduledAt:  at(10, 0),
		DurationMin:  60,
	}
}

// ────────────────────────────────────────────────
// Create
// ────────────────────────────────────────────────

func TestCreate(t *testing.T) {
	pub := &capturingPublisher{}
	locks := newMockSlotLockRepo()
	svc := newTestService(nil, locks, pub)

	appointment := validAppointment()
	appointment.VehiclePlate = "ab-123-cd"
	if err := svc.Create(context.Background(), appointment); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appointment.Status != model.AppointmentScheduled {
		t.Errorf("status = %s, want scheduled default", appointment.Status)
	}
	if appointment.VehiclePlate != "AB123CD" {
		t.Errorf("vehicle plate = %q, want normalized AB123CD", appointment.VehiclePlate)
	}

	if got := pub.published(); len(got) != 1 || got[0] != events.TypeAppointmentCreated {
		t.Errorf("published events = %v, want one created event", got)
	}
	if len(locks.held) != 0 {
		t.Error("slot lock must be released after create")
	}
}

func TestCreate_DefaultsDuration(t *testing.T) {
	svc := newTestService(nil, nil, nil)

	appointment := validAppointment()
	appointment.DurationMin = 0
	if err := svc.Create(context.Background(), appointment); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appointment.DurationMin != 60 {
		t.Errorf("duration = %d, want configured default", appointment.DurationMin)
	}
}

func TestCreate_TechnicianDoubleBookingRejected(t *testing.T) {
	repo := &mockAppointmentRepo{
		findActiveByTechnicianFunc: func(ctx context.Context, tenantID, technicianID string, start, end time.Time) ([]*model.Appointment, error) {
			return []*model.Appointment{{
				ID:          "65f000000000000000000009",
				ScheduledAt: at(10, 30),
				DurationMin: 60,
				Status:      model.AppointmentScheduled,
			}}, nil
		},
	}
	pub := &capturingPublisher{}
	svc := newTestService(repo, nil, pub)

	err := svc.Create(context.Background(), validAppointment())
	if err == nil {
		t.Fatal("expected a conflict error")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Errorf("error code = %s, want conflict", appErr.Code)
	}
	if !strings.Contains(appErr.Message, model.ReasonExistingAppointment) {
		t.Errorf("message = %q, want the existing-appointment reason", appErr.Message)
	}
	if len(pub.published()) != 0 {
		t.Error("no event may be published for a rejected create")
	}
}

func TestCreate_BoundaryTouchAllowed(t *testing.T) {
	repo := &mockAppointmentRepo{
		findActiveByTechnicianFunc: func(ctx context.Context, tenantID, technicianID string, start, end time.Time) ([]*model.Appointment, error) {
			// Existing appointment ends exactly where the new one starts.
			return []*model.Appointment{{
				ID:          "65f000000000000000000009",
				ScheduledAt: at(9, 0),
				DurationMin: 60,
				Status:      model.AppointmentScheduled,
			}}, nil
		},
	}
	svc := newTestService(repo, nil, nil)

	if err := svc.Create(context.Background(), validAppointment()); err != nil {
		t.Fatalf("back-to-back appointments must be allowed: %v", err)
	}
}

func TestCreate_SlotLockContention(t *testing.T) {
	locks := newMockSlotLockRepo()
	svc := newTestService(nil, locks, nil)

	// Simulate a concurrent request holding the same technician slot.
	lockID := fmt.Sprintf("slot_lock_tenant-1_65f000000000000000000aaa_%d", at(10, 0).Unix())
	held := &model.SlotLock{ID: lockID}
	if _, err := locks.Create(context.Background(), held); err != nil {
		t.Fatalf("failed to seed lock: %v", err)
	}

	err := svc.Create(context.Background(), validAppointment())
	if err == nil {
		t.Fatal("expected a conflict while the slot lock is held")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Errorf("error code = %s, want conflict", appErr.Code)
	}
}

func TestCreate_InvalidInput(t *testing.T) {
	svc := newTestService(nil, nil, nil)

	appointment := validAppointment()
	appointment.CustomerName = "x"

	err := svc.Create(context.Background(), appointment)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeValidation {
		t.Errorf("error code = %s, want validation", appErr.Code)
	}
}

// ────────────────────────────────────────────────
// Cancel / status transitions
// ────────────────────────────────────────────────

func TestCancel(t *testing.T) {
	statusWritten := false
	repo := &mockAppointmentRepo{
		findByIDFunc: func(ctx context.Context, tenantID, id string) (*model.Appointment, error) {
			a := validAppointment()
			a.ID = id
			a.Status = model.AppointmentScheduled
			return a, nil
		},
		updateStatusFunc: func(ctx context.Context, tenantID, id string, status model.AppointmentStatus) error {
			statusWritten = status == model.AppointmentCancelled
			return nil
		},
	}
	pub := &capturingPublisher{}
	svc := newTestService(repo, nil, pub)

	if err := svc.Cancel(context.Background(), "tenant-1", "65f000000000000000000001"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !statusWritten {
		t.Error("expected the cancelled status to be persisted")
	}
	if got := pub.published(); len(got) != 1 || got[0] != events.TypeAppointmentCancelled {
		t.Errorf("published events = %v, want one cancelled event", got)
	}
}

func TestCancel_AlreadyCancelledIsNoOp(t *testing.T) {
	repo := &mockAppointmentRepo{
		findByIDFunc: func(ctx context.Context, tenantID, id string) (*model.Appointment, error) {
			a := validAppointment()
			a.ID = id
			a.Status = model.AppointmentCancelled
			return a, nil
		},
		updateStatusFunc: func(ctx context.Context, tenantID, id string, status model.AppointmentStatus) error {
			t.Error("storage must not be touched for an already cancelled appointment")
			return nil
		},
	}
	pub := &capturingPublisher{}
	svc := newTestService(repo, nil, pub)

	if err := svc.Cancel(context.Background(), "tenant-1", "65f000000000000000000001"); err != nil {
		t.Fatalf("cancelling a cancelled appointment must succeed: %v", err)
	}
	if len(pub.published()) != 0 {
		t.Error("no event may be published for a no-op cancel")
	}
}

func TestCancel_CompletedRejected(t *testing.T) {
	repo := &mockAppointmentRepo{
		findByIDFunc: func(ctx context.Context, tenantID, id string) (*model.Appointment, error) {
			a := validAppointment()
			a.ID = id
			a.Status = model.AppointmentCompleted
			return a, nil
		},
	}
	svc := newTestService(repo, nil, nil)

	err := svc.Cancel(context.Background(), "tenant-1", "65f000000000000000000001")
	if err == nil {
		t.Fatal("expected an error for a completed appointment")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeInvalidState {
		t.Errorf("error code = %s, want invalid state", appErr.Code)
	}
}

func TestUpdateStatus(t *testing.T) {
	tests := []struct {
		name     string
		current  model.AppointmentStatus
		next     model.AppointmentStatus
		wantCode string
	}{
		{"scheduled to in_progress", model.AppointmentScheduled, model.AppointmentInProgress, ""},
		{"in_progress to completed", model.AppointmentInProgress, model.AppointmentCompleted, ""},
		{"scheduled straight to completed", model.AppointmentScheduled, model.AppointmentCompleted, apperrors.CodeInvalidState},
		{"unknown status", model.AppointmentScheduled, model.AppointmentStatus("bogus"), apperrors.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockAppointmentRepo{
				findByIDFunc: func(ctx context.Context, tenantID, id string) (*model.Appointment, error) {
					a := validAppointment()
					a.ID = id
					a.Status = tt.current
					return a, nil
				},
			}
			svc := newTestService(repo, nil, nil)

			err := svc.UpdateStatus(context.Background(), "tenant-1", "65f000000000000000000001", tt.next)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected an error")
			}
			if appErr := apperrors.AsAppError(err); appErr.Code != tt.wantCode {
				t.Errorf("error code = %s, want %s", appErr.Code, tt.wantCode)
			}
		})
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc := newTestService(nil, nil, nil)

	_, err := svc.GetByID(context.Background(), "tenant-1", "65f000000000000000000001")
	if err == nil {
		t.Fatal("expected a not-found error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeNotFound {
		t.Errorf("error code = %s, want not found", appErr.Code)
	}
}

// ────────────────────────────────────────────────
// Update
// ────────────────────────────────────────────────

func TestUpdate_TerminalStatusRejected(t *testing.T) {
	repo := &mockAppointmentRepo{
		findByIDFunc: func(ctx context.Context, tenantID, id string) (*model.Appointment, error) {
			a := validAppointment()
			a.ID = id
			a.Status = model.AppointmentNoShow
			return a, nil
		},
	}
	svc := newTestService(repo, nil, nil)

	newName := "Updated Name"
	err := svc.Update(context.Background(), "tenant-1", "65f000000000000000000001", &model.AppointmentUpdate{
		CustomerName: newName,
	})
	if err == nil {
		t.Fatal("expected an error for a terminal appointment")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeInvalidState {
		t.Errorf("error code = %s, want invalid state", appErr.Code)
	}
}

func TestUpdate_RechecksTechnicianConflict(t *testing.T) {
	repo := &mockAppointmentRepo{
		findByIDFunc: func(ctx context.Context, tenantID, id string) (*model.Appointment, error) {
			a := validAppointment()
			a.ID = id
			a.Status = model.AppointmentScheduled
			return a, nil
		},
		findActiveByTechnicianFunc: func(ctx context.Context, tenantID, technicianID string, start, end time.Time) ([]*model.Appointment, error) {
			return []*model.Appointment{{
				ID:          "65f000000000000000000777",
				ScheduledAt: at(12, 0),
				DurationMin: 60,
				Status:      model.AppointmentScheduled,
			}}, nil
		},
	}
	svc := newTestService(repo, nil, nil)

	moved := at(12, 30)
	err := svc.Update(context.Background(), "tenant-1", "65f000000000000000000001", &model.AppointmentUpdate{
		ScheduledAt: &moved,
	})
	if err == nil {
		t.Fatal("expected a conflict for the moved window")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Errorf("error code = %s, want conflict", appErr.Code)
	}
}

func TestUpdate_OwnRecordIgnoredInConflictCheck(t *testing.T) {
	repo := &mockAppointmentRepo{
		findByIDFunc: func(ctx context.Context, tenantID, id string) (*model.Appointment, error) {
			a := validAppointment()
			a.ID = id
			a.Status = model.AppointmentScheduled
			return a, nil
		},
		findActiveByTechnicianFunc: func(ctx context.Context, tenantID, technicianID string, start, end time.Time) ([]*model.Appointment, error) {
			// The only overlapping record is the appointment being updated.
			a := validAppointment()
			a.ID = "65f000000000000000000001"
			return []*model.Appointment{a}, nil
		},
	}
	svc := newTestService(repo, nil, nil)

	notes := "arrives early"
	if err := svc.Update(context.Background(), "tenant-1", "65f000000000000000000001", &model.AppointmentUpdate{
		Notes: &notes,
	}); err != nil {
		t.Fatalf("updating without moving must not conflict with itself: %v", err)
	}
}
