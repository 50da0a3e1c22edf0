package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"workbay/internal/workorders/repository"
	"workbay/pkg/config"
	apperrors "workbay/pkg/errors"
	"workbay/pkg/model"
	"workbay/pkg/sanitizer"
)

type WorkOrderService interface {
	Create(ctx context.Context, order *model.WorkOrder) error
	GetByID(ctx context.Context, tenantID string, id string) (*model.WorkOrder, error)
	GetAll(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.WorkOrder, int64, error)
	UpdateStatus(ctx context.Context, tenantID string, id string, status model.WorkOrderStatus) error
}

type workOrderService struct {
	repo repository.WorkOrderRepository
	cfg  *config.Config
}

func NewWorkOrderService(repo repository.WorkOrderRepository, cfg *config.Config) WorkOrderService {
	return &workOrderService{repo: repo, cfg: cfg}
}

func (s *workOrderService) Create(ctx context.Context, order *model.WorkOrder) error {
	if order.Status == "" {
		order.Status = model.WorkOrderPending
	}
	if !order.Status.Valid() {
		return apperrors.InvalidInput(fmt.Sprintf("Unknown work order status %q", order.Status))
	}
	order.Description = sanitizer.NormalizeNote(order.Description)

	if err := s.repo.Create(ctx, order); err != nil {
		s.cfg.Log.Error("Failed to create work order", "error", err)
		return apperrors.Internal("Failed to create work order", err)
	}

	s.cfg.Log.Info("Work order created", "id", order.ID, "tenant_id", order.TenantID, "status", order.Status)
	return nil
}

func (s *workOrderService) GetByID(ctx context.Context, tenantID string, id string) (*model.WorkOrder, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Work order ID cannot be empty")
	}

	order, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Work order", id)
		}
		if errors.Is(err, repository.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid work order ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve work order", err)
	}
	return order, nil
}

func (s *workOrderService) GetAll(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.WorkOrder, int64, error) {
	var count int64
	var orders []*model.WorkOrder
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, tenantID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count work orders", "error", errCount)
			errCount = apperrors.Internal("Failed to count work orders", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		orders, errFind = s.repo.FindAll(ctx, tenantID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list work orders", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve work orders", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return orders, count, nil
}

func (s *workOrderService) UpdateStatus(ctx context.Context, tenantID string, id string, status model.WorkOrderStatus) error {
	if !status.Valid() {
		return apperrors.InvalidInput(fmt.Sprintf("Unknown work order status %q", status))
	}

	existing, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if existing.Status == status {
		return nil
	}
	if !existing.Status.CanTransitionTo(status) {
		return apperrors.InvalidState(fmt.Sprintf("Cannot transition work order from %q to %q", existing.Status, status))
	}

	if err := s.repo.UpdateStatus(ctx, tenantID, id, status); err != nil {
		s.cfg.Log.Error("Failed to update work order status", "id", id, "error", err)
		return apperrors.Internal("Failed to update work order status", err)
	}

	s.cfg.Log.Info("Work order status updated", "id", id, "from", existing.Status, "to", status)
	return nil
}
