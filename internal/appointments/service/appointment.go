package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	appointmentserrors "workbay/internal/appointments/errors"
	"workbay/internal/appointments/repository"
	"workbay/internal/appointments/validator"
	"workbay/internal/events"
	"workbay/pkg/config"
	apperrors "workbay/pkg/errors"
	"workbay/pkg/model"
	"workbay/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type AppointmentService interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	GetByID(ctx context.Context, tenantID string, id string) (*model.Appointment, error)
	GetAll(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.Appointment, int64, error)
	Update(ctx context.Context, tenantID string, id string, updates *model.AppointmentUpdate) error
	Cancel(ctx context.Context, tenantID string, id string) error
	UpdateStatus(ctx context.Context, tenantID string, id string, status model.AppointmentStatus) error
}

type appointmentService struct {
	repo      repository.AppointmentRepository
	lockRepo  repository.SlotLockRepository
	validator *validator.AppointmentValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	lockRepo repository.SlotLockRepository,
	validator *validator.AppointmentValidator,
	publisher events.Publisher,
	cfg *config.Config,
) AppointmentService {
	return &appointmentService{
		repo:      repo,
		lockRepo:  lockRepo,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *appointmentService) Create(ctx context.Context, appointment *model.Appointment) error {
	s.applyDefaults(appointment)
	s.sanitize(appointment)
	if err := s.validate(appointment); err != nil {
		return err
	}

	// Advisory lock closes the check-then-insert race between two requests
	// for the same technician slot.
	lockID, err := s.acquireSlotLock(ctx, appointment.TenantID, appointment.TechnicianID, appointment.ScheduledAt)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyTechnicianFree(sessCtx, appointment); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, appointment); err != nil {
			return apperrors.Internal("Failed to create appointment", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create appointment", "error", err)
		return err
	}

	s.cfg.Log.Info("Appointment created",
		"id", appointment.ID,
		"tenant_id", appointment.TenantID,
		"technician_id", appointment.TechnicianID,
		"scheduled_at", appointment.ScheduledAt,
	)
	s.publisher.Publish(ctx, events.TypeAppointmentCreated, appointment.ID, appointment)
	return nil
}

func (s *appointmentService) GetByID(ctx context.Context, tenantID string, id string) (*model.Appointment, error) {
	return s.find(ctx, tenantID, id)
}

func (s *appointmentService) GetAll(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.Appointment, int64, error) {
	var count int64
	var appointments []*model.Appointment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, tenantID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count appointments", "error", errCount)
			errCount = apperrors.Internal("Failed to count appointments", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		appointments, errFind = s.repo.FindAll(ctx, tenantID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list appointments", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve appointments", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return appointments, count, nil
}

func (s *appointmentService) Update(ctx context.Context, tenantID string, id string, updates *model.AppointmentUpdate) error {
	existing, err := s.find(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if existing.Status.Terminal() {
		return apperrors.InvalidState(fmt.Sprintf("Appointment in status %q cannot be modified", existing.Status))
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Appointment update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return err
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyTechnicianFree(sessCtx, merged); err != nil {
			return err
		}
		if err := s.repo.Update(sessCtx, tenantID, id, merged); err != nil {
			return apperrors.Internal("Failed to update appointment", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update appointment", "id", id, "error", err)
		return err
	}

	s.cfg.Log.Info("Appointment updated", "id", id)
	s.publisher.Publish(ctx, events.TypeAppointmentUpdated, id, merged)
	return nil
}

// Cancel is idempotent: cancelling an already cancelled appointment succeeds
// without touching storage.
func (s *appointmentService) Cancel(ctx context.Context, tenantID string, id string) error {
	existing, err := s.find(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if existing.Status == model.AppointmentCancelled {
		s.cfg.Log.Debug("Appointment already cancelled", "id", id)
		return nil
	}
	if !existing.Status.CanTransitionTo(model.AppointmentCancelled) {
		return apperrors.InvalidState(fmt.Sprintf("Appointment in status %q cannot be cancelled", existing.Status))
	}

	if err := s.repo.UpdateStatus(ctx, tenantID, id, model.AppointmentCancelled); err != nil {
		s.cfg.Log.Error("Failed to cancel appointment", "id", id, "error", err)
		return apperrors.Internal("Failed to cancel appointment", err)
	}

	s.cfg.Log.Info("Appointment cancelled", "id", id)
	s.publisher.Publish(ctx, events.TypeAppointmentCancelled, id, map[string]any{
		"id":        id,
		"tenant_id": tenantID,
	})
	return nil
}

func (s *appointmentService) UpdateStatus(ctx context.Context, tenantID string, id string, status model.AppointmentStatus) error {
	if !status.Valid() {
		return apperrors.InvalidInput(fmt.Sprintf("Unknown appointment status %q", status))
	}
	if status == model.AppointmentCancelled {
		return s.Cancel(ctx, tenantID, id)
	}

	existing, err := s.find(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if !existing.Status.CanTransitionTo(status) {
		return apperrors.InvalidState(fmt.Sprintf("Cannot transition appointment from %q to %q", existing.Status, status))
	}

	if err := s.repo.UpdateStatus(ctx, tenantID, id, status); err != nil {
		s.cfg.Log.Error("Failed to update appointment status", "id", id, "error", err)
		return apperrors.Internal("Failed to update appointment status", err)
	}

	s.cfg.Log.Info("Appointment status updated", "id", id, "status", status)
	s.publisher.Publish(ctx, events.TypeAppointmentUpdated, id, map[string]any{
		"id":        id,
		"tenant_id": tenantID,
		"status":    status,
	})
	return nil
}

// --- Helpers ---

func (s *appointmentService) find(ctx context.Context, tenantID string, id string) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	appointment, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, appointmentserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Appointment", id)
		}
		if errors.Is(err, appointmentserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid appointment ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve appointment", err)
	}
	return appointment, nil
}

func (s *appointmentService) applyDefaults(a *model.Appointment) {
	if a.Status == "" {
		a.Status = model.AppointmentScheduled
	}
	if a.DurationMin <= 0 {
		a.DurationMin = s.cfg.DefaultDurationMin
	}
}

func (s *appointmentService) sanitize(a *model.Appointment) {
	a.CustomerName = sanitizer.NormalizeName(a.CustomerName)
	if a.CustomerPhone != "" {
		a.CustomerPhone = sanitizer.NormalizePhone(a.CustomerPhone)
	}
	a.VehiclePlate = sanitizer.NormalizePlate(a.VehiclePlate)
	a.Notes = sanitizer.NormalizeNote(a.Notes)
}

func (s *appointmentService) validate(a *model.Appointment) error {
	if err := s.validator.Validate(a); err != nil {
		s.cfg.Log.Warn("Appointment validation failed", "error", err)
		return apperrors.Validation("Appointment validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *appointmentService) mergeUpdates(existing *model.Appointment, updates *model.AppointmentUpdate) *model.Appointment {
	merged := *existing

	if updates.CustomerName != "" {
		merged.CustomerName = updates.CustomerName
	}
	if updates.CustomerPhone != "" {
		merged.CustomerPhone = updates.CustomerPhone
	}
	if updates.TechnicianID != nil {
		merged.TechnicianID = *updates.TechnicianID
	}
	if updates.ScheduledAt != nil {
		merged.ScheduledAt = *updates.ScheduledAt
	}
	if updates.DurationMin != nil {
		merged.DurationMin = *updates.DurationMin
	}
	if updates.Notes != nil {
		merged.Notes = *updates.Notes
	}

	return &merged
}

// verifyTechnicianFree rejects the appointment when its technician already
// has an active appointment overlapping the requested window. Appointments
// without an assigned technician skip the check.
func (s *appointmentService) verifyTechnicianFree(ctx context.Context, appointment *model.Appointment) error {
	if appointment.TechnicianID == "" {
		return nil
	}

	span := appointment.Span()
	existing, err := s.repo.FindActiveByTechnician(ctx, appointment.TenantID, appointment.TechnicianID, span.Start, span.End)
	if err != nil {
		return apperrors.Internal("Failed to check technician availability", err)
	}

	for _, a := range existing {
		if a.ID == appointment.ID {
			continue
		}
		if span.Overlaps(a.Span()) {
			return apperrors.Conflict(fmt.Sprintf(
				"Technician has an %s (%s - %s)",
				model.ReasonExistingAppointment,
				a.Span().Start.Format(time.RFC3339),
				a.Span().End.Format(time.RFC3339),
			))
		}
	}
	return nil
}

// acquireSlotLock creates an advisory lock for the requested slot. Returns a
// conflict when another request holds the same slot.
func (s *appointmentService) acquireSlotLock(ctx context.Context, tenantID string, technicianID string, start time.Time) (string, error) {
	resource := technicianID
	if resource == "" {
		resource = "any"
	}
	lockID := fmt.Sprintf("slot_lock_%s_%s_%d", tenantID, resource, start.Unix())

	lock := &model.SlotLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.SlotLockTTL),
	}

	if _, err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This time slot is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire slot lock", err)
	}

	return lockID, nil
}

func (s *appointmentService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}
