package service

import (
	"context"
	"errors"
	"sync"
	"time"

	elevatorserrors "workbay/internal/elevators/errors"
	"workbay/internal/elevators/repository"
	"workbay/internal/events"
	"workbay/pkg/config"
	apperrors "workbay/pkg/errors"
	"workbay/pkg/interval"
	"workbay/pkg/model"
	"workbay/pkg/sanitizer"
)

// ReservationRequest opens a reserved hold on a lift for a planned window.
type ReservationRequest struct {
	WorkOrderID string    `json:"work_order_id,omitempty"`
	VehicleID   string    `json:"vehicle_id,omitempty"`
	Start       time.Time `json:"start"`
	PlannedEnd  time.Time `json:"planned_end"`
	Note        string    `json:"note,omitempty"`
}

// StartRequest puts a lift into active use immediately.
type StartRequest struct {
	WorkOrderID string `json:"work_order_id,omitempty"`
	VehicleID   string `json:"vehicle_id,omitempty"`
	Note        string `json:"note,omitempty"`
}

// EndRequest closes the lift's open ledger record. UsageID pins the request
// to a specific record; Note is appended to the record on close.
type EndRequest struct {
	UsageID string `json:"usage_id,omitempty"`
	Note    string `json:"note,omitempty"`
}

// ElevatorWithStatus pairs a lift with its derived status and the open
// ledger record backing it.
type ElevatorWithStatus struct {
	*model.Elevator
	Status       model.ElevatorStatus `json:"status"`
	CurrentUsage *model.ElevatorUsage `json:"current_usage,omitempty"`
}

type ElevatorService interface {
	Create(ctx context.Context, elevator *model.Elevator) error
	GetByID(ctx context.Context, tenantID string, id string) (*ElevatorWithStatus, error)
	GetAll(ctx context.Context, tenantID string, limit int, offset int64) ([]*ElevatorWithStatus, int64, error)
	Reserve(ctx context.Context, tenantID string, elevatorID string, req *ReservationRequest) (*model.ElevatorUsage, error)
	StartUsage(ctx context.Context, tenantID string, elevatorID string, req *StartRequest) (*model.ElevatorUsage, error)
	EndUsage(ctx context.Context, tenantID string, elevatorID string, req *EndRequest) (*model.ElevatorUsage, error)
	// CurrentUsage returns the lift's open ledger record, or nil when free.
	CurrentUsage(ctx context.Context, tenantID string, elevatorID string) (*model.ElevatorUsage, error)
	History(ctx context.Context, tenantID string, elevatorID string, limit int, offset int64) ([]*model.ElevatorUsage, error)
	// UsagesTouching returns every ledger record that can overlap the window.
	UsagesTouching(ctx context.Context, tenantID string, elevatorID string, span interval.Span) ([]*model.ElevatorUsage, error)
	SetMaintenance(ctx context.Context, tenantID string, elevatorID string, maintenance bool) error
	IsAvailable(ctx context.Context, tenantID string, elevatorID string, span interval.Span) (bool, error)
}

type elevatorService struct {
	repo      repository.ElevatorRepository
	usageRepo repository.UsageRepository
	publisher events.Publisher
	cfg       *config.Config
}

func NewElevatorService(
	repo repository.ElevatorRepository,
	usageRepo repository.UsageRepository,
	publisher events.Publisher,
	cfg *config.Config,
) ElevatorService {
	return &elevatorService{
		repo:      repo,
		usageRepo: usageRepo,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *elevatorService) Create(ctx context.Context, elevator *model.Elevator) error {
	elevator.Name = sanitizer.NormalizeName(elevator.Name)
	if elevator.Name == "" {
		return apperrors.Validation("Lift name is required", nil)
	}

	if err := s.repo.Create(ctx, elevator); err != nil {
		s.cfg.Log.Error("Failed to create lift", "error", err)
		return apperrors.Internal("Failed to create lift", err)
	}

	s.cfg.Log.Info("Lift created", "id", elevator.ID, "tenant_id", elevator.TenantID, "name", elevator.Name)
	return nil
}

func (s *elevatorService) GetByID(ctx context.Context, tenantID string, id string) (*ElevatorWithStatus, error) {
	elevator, err := s.findElevator(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	open, err := s.openUsage(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	return &ElevatorWithStatus{
		Elevator:     elevator,
		Status:       elevator.DeriveStatus(open),
		CurrentUsage: open,
	}, nil
}

func (s *elevatorService) GetAll(ctx context.Context, tenantID string, limit int, offset int64) ([]*ElevatorWithStatus, int64, error) {
	var count int64
	var elevators []*model.Elevator
	var open []*model.ElevatorUsage
	var errCount, errFind, errOpen error
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, tenantID)
	}()
	go func() {
		defer wg.Done()
		elevators, errFind = s.repo.FindAll(ctx, tenantID, limit, offset)
	}()
	go func() {
		defer wg.Done()
		open, errOpen = s.usageRepo.FindOpenByTenant(ctx, tenantID)
	}()

	wg.Wait()
	for _, err := range []error{errCount, errFind, errOpen} {
		if err != nil {
			s.cfg.Log.Error("Failed to list lifts", "tenant_id", tenantID, "error", err)
			return nil, 0, apperrors.Internal("Failed to retrieve lifts", err)
		}
	}

	openByElevator := make(map[string]*model.ElevatorUsage, len(open))
	for _, u := range open {
		openByElevator[u.ElevatorID] = u
	}

	result := make([]*ElevatorWithStatus, 0, len(elevators))
	for _, e := range elevators {
		u := openByElevator[e.ID]
		result = append(result, &ElevatorWithStatus{
			Elevator:     e,
			Status:       e.DeriveStatus(u),
			CurrentUsage: u,
		})
	}

	return result, count, nil
}

// Reserve opens a hold on the lift. A request without a start holds the lift
// from now.
func (s *elevatorService) Reserve(ctx context.Context, tenantID string, elevatorID string, req *ReservationRequest) (*model.ElevatorUsage, error) {
	start := req.Start
	if start.IsZero() {
		start = time.Now().UTC().Truncate(time.Millisecond)
	}
	if !req.PlannedEnd.After(start) {
		return nil, apperrors.Validation("planned_end must be after start", nil)
	}

	elevator, err := s.findElevator(ctx, tenantID, elevatorID)
	if err != nil {
		return nil, err
	}
	if elevator.Maintenance {
		return nil, apperrors.InvalidState("Lift is under maintenance")
	}

	plannedEnd := req.PlannedEnd
	usage := &model.ElevatorUsage{
		TenantID:    tenantID,
		ElevatorID:  elevatorID,
		WorkOrderID: req.WorkOrderID,
		VehicleID:   req.VehicleID,
		Start:       start,
		PlannedEnd:  &plannedEnd,
		Running:     false,
		Note:        sanitizer.NormalizeNote(req.Note),
	}

	if err := s.usageRepo.Insert(ctx, usage); err != nil {
		if errors.Is(err, elevatorserrors.ErrAlreadyInUse) {
			return nil, apperrors.Conflict("Lift already has an open usage record")
		}
		s.cfg.Log.Error("Failed to reserve lift", "elevator_id", elevatorID, "error", err)
		return nil, apperrors.Internal("Failed to reserve lift", err)
	}

	s.cfg.Log.Info("Lift reserved",
		"elevator_id", elevatorID,
		"usage_id", usage.ID,
		"start", usage.Start,
		"planned_end", req.PlannedEnd,
	)
	s.publisher.Publish(ctx, events.TypeLiftReserved, elevatorID, usage)
	return usage, nil
}

// StartUsage activates a reserved hold or opens a fresh running record.
// Activating a hold re-stamps the start to now, so the ledger reflects the
// moment the vehicle actually went up rather than the planned slot.
func (s *elevatorService) StartUsage(ctx context.Context, tenantID string, elevatorID string, req *StartRequest) (*model.ElevatorUsage, error) {
	elevator, err := s.findElevator(ctx, tenantID, elevatorID)
	if err != nil {
		return nil, err
	}
	if elevator.Maintenance {
		return nil, apperrors.InvalidState("Lift is under maintenance")
	}

	now := time.Now().UTC().Truncate(time.Millisecond)

	open, err := s.openUsage(ctx, tenantID, elevatorID)
	if err != nil {
		return nil, err
	}

	if open != nil {
		if open.Running {
			return nil, apperrors.Conflict("Lift is already in use")
		}
		if err := s.usageRepo.Activate(ctx, tenantID, open.ID, now); err != nil {
			s.cfg.Log.Error("Failed to activate reserved usage", "usage_id", open.ID, "error", err)
			return nil, apperrors.Internal("Failed to start lift usage", err)
		}
		open.Running = true
		open.Start = now
		s.cfg.Log.Info("Lift usage started from reservation", "elevator_id", elevatorID, "usage_id", open.ID)
		s.publisher.Publish(ctx, events.TypeLiftUsageStarted, elevatorID, open)
		return open, nil
	}

	usage := &model.ElevatorUsage{
		TenantID:    tenantID,
		ElevatorID:  elevatorID,
		WorkOrderID: req.WorkOrderID,
		VehicleID:   req.VehicleID,
		Start:       now,
		Running:     true,
		Note:        sanitizer.NormalizeNote(req.Note),
	}
	if err := s.usageRepo.Insert(ctx, usage); err != nil {
		if errors.Is(err, elevatorserrors.ErrAlreadyInUse) {
			return nil, apperrors.Conflict("Lift is already in use")
		}
		s.cfg.Log.Error("Failed to start lift usage", "elevator_id", elevatorID, "error", err)
		return nil, apperrors.Internal("Failed to start lift usage", err)
	}

	s.cfg.Log.Info("Lift usage started", "elevator_id", elevatorID, "usage_id", usage.ID)
	s.publisher.Publish(ctx, events.TypeLiftUsageStarted, elevatorID, usage)
	return usage, nil
}

func (s *elevatorService) EndUsage(ctx context.Context, tenantID string, elevatorID string, req *EndRequest) (*model.ElevatorUsage, error) {
	if req == nil {
		req = &EndRequest{}
	}

	if _, err := s.findElevator(ctx, tenantID, elevatorID); err != nil {
		return nil, err
	}

	open, err := s.openUsage(ctx, tenantID, elevatorID)
	if err != nil {
		return nil, err
	}
	if open == nil {
		return nil, apperrors.NotFound("Lift has no active usage")
	}
	if req.UsageID != "" && req.UsageID != open.ID {
		return nil, apperrors.NotFoundWithID("Open usage record", req.UsageID)
	}

	if note := sanitizer.NormalizeNote(req.Note); note != "" {
		open.Note = appendNote(open.Note, note)
	}

	end := time.Now().UTC().Truncate(time.Millisecond)
	if err := s.usageRepo.Close(ctx, tenantID, open.ID, end, open.Note); err != nil {
		if errors.Is(err, elevatorserrors.ErrNoOpenUsage) {
			return nil, apperrors.NotFound("Lift has no active usage")
		}
		s.cfg.Log.Error("Failed to end lift usage", "usage_id", open.ID, "error", err)
		return nil, apperrors.Internal("Failed to end lift usage", err)
	}

	open.End = &end
	open.Running = false

	s.cfg.Log.Info("Lift usage ended",
		"elevator_id", elevatorID,
		"usage_id", open.ID,
		"duration_min", open.DurationMin(),
	)
	s.publisher.Publish(ctx, events.TypeLiftUsageEnded, elevatorID, open)
	return open, nil
}

func (s *elevatorService) CurrentUsage(ctx context.Context, tenantID string, elevatorID string) (*model.ElevatorUsage, error) {
	if _, err := s.findElevator(ctx, tenantID, elevatorID); err != nil {
		return nil, err
	}

	return s.openUsage(ctx, tenantID, elevatorID)
}

func (s *elevatorService) History(ctx context.Context, tenantID string, elevatorID string, limit int, offset int64) ([]*model.ElevatorUsage, error) {
	if _, err := s.findElevator(ctx, tenantID, elevatorID); err != nil {
		return nil, err
	}

	usages, err := s.usageRepo.FindByElevator(ctx, tenantID, elevatorID, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to fetch usage history", "elevator_id", elevatorID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve usage history", err)
	}
	return usages, nil
}

func (s *elevatorService) UsagesTouching(ctx context.Context, tenantID string, elevatorID string, span interval.Span) ([]*model.ElevatorUsage, error) {
	usages, err := s.usageRepo.FindTouchingWindow(ctx, tenantID, elevatorID, span.Start, span.End)
	if err != nil {
		s.cfg.Log.Error("Failed to fetch usages in window", "elevator_id", elevatorID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve lift usages", err)
	}
	return usages, nil
}

func (s *elevatorService) SetMaintenance(ctx context.Context, tenantID string, elevatorID string, maintenance bool) error {
	if _, err := s.findElevator(ctx, tenantID, elevatorID); err != nil {
		return err
	}

	if maintenance {
		open, err := s.openUsage(ctx, tenantID, elevatorID)
		if err != nil {
			return err
		}
		if open != nil {
			return apperrors.InvalidState("Lift has an open usage record and cannot enter maintenance")
		}
	}

	if err := s.repo.SetMaintenance(ctx, tenantID, elevatorID, maintenance); err != nil {
		if errors.Is(err, elevatorserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Lift", elevatorID)
		}
		s.cfg.Log.Error("Failed to set maintenance flag", "elevator_id", elevatorID, "error", err)
		return apperrors.Internal("Failed to update lift", err)
	}

	s.cfg.Log.Info("Lift maintenance flag updated", "elevator_id", elevatorID, "maintenance", maintenance)
	return nil
}

// IsAvailable reports whether the lift can take the given window: not under
// maintenance and no ledger record, open or closed, overlapping it. Closed
// records matter for future windows too: a reservation closed against a
// future interval still blocks that interval.
func (s *elevatorService) IsAvailable(ctx context.Context, tenantID string, elevatorID string, span interval.Span) (bool, error) {
	elevator, err := s.findElevator(ctx, tenantID, elevatorID)
	if err != nil {
		return false, err
	}
	if elevator.Maintenance {
		return false, nil
	}

	usages, err := s.usageRepo.FindTouchingWindow(ctx, tenantID, elevatorID, span.Start, span.End)
	if err != nil {
		return false, apperrors.Internal("Failed to check lift availability", err)
	}

	for _, u := range usages {
		if span.Overlaps(u.EffectiveSpan(span.End)) {
			return false, nil
		}
	}
	return true, nil
}

func (s *elevatorService) findElevator(ctx context.Context, tenantID string, id string) (*model.Elevator, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Lift ID cannot be empty")
	}

	elevator, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, elevatorserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Lift", id)
		}
		if errors.Is(err, elevatorserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid lift ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve lift", err)
	}
	return elevator, nil
}

func appendNote(existing, addition string) string {
	if existing == "" {
		return addition
	}
	return existing + "; " + addition
}

// openUsage returns the open ledger record or nil when the lift is free.
func (s *elevatorService) openUsage(ctx context.Context, tenantID string, elevatorID string) (*model.ElevatorUsage, error) {
	open, err := s.usageRepo.FindOpenByElevator(ctx, tenantID, elevatorID)
	if err != nil {
		if errors.Is(err, elevatorserrors.ErrNoOpenUsage) {
			return nil, nil
		}
		return nil, apperrors.Internal("Failed to check lift usage", err)
	}
	return open, nil
}
