package service

import (
	"context"
	"testing"
	"time"

	"workbay/internal/workorders/repository"
	"workbay/pkg/config"
	apperrors "workbay/pkg/errors"
	"workbay/pkg/logger"
	"workbay/pkg/model"
)

type mockWorkOrderRepo struct {
	findByIDFunc     func(ctx context.Context, tenantID, id string) (*model.WorkOrder, error)
	updateStatusFunc func(ctx context.Context, tenantID, id string, status model.WorkOrderStatus) error
}

func (m *mockWorkOrderRepo) Create(ctx context.Context, order *model.WorkOrder) error {
	order.ID = "65f000000000000000000w01"
	return nil
}
func (m *mockWorkOrderRepo) FindByID(ctx context.Context, tenantID, id string) (*model.WorkOrder, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, tenantID, id)
	}
	return nil, repository.ErrNotFound
}
func (m *mockWorkOrderRepo) FindByQuote(ctx context.Context, tenantID, quoteID string) (*model.WorkOrder, error) {
	return nil, repository.ErrNotFound
}
func (m *mockWorkOrderRepo) FindAll(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.WorkOrder, error) {
	return nil, nil
}
func (m *mockWorkOrderRepo) Count(ctx context.Context, tenantID string) (int64, error) {
	return 0, nil
}
func (m *mockWorkOrderRepo) UpdateStatus(ctx context.Context, tenantID, id string, status model.WorkOrderStatus) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, tenantID, id, status)
	}
	return nil
}
func (m *mockWorkOrderRepo) FindBlockingInRange(ctx context.Context, tenantID string, start, end time.Time) ([]*model.WorkOrder, error) {
	return nil, nil
}

func newTestService(repo *mockWorkOrderRepo) WorkOrderService {
	if repo == nil {
		repo = &mockWorkOrderRepo{}
	}
	cfg := &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
	}
	return NewWorkOrderService(repo, cfg)
}

func TestCreate_DefaultsToPending(t *testing.T) {
	svc := newTestService(nil)

	order := &model.WorkOrder{TenantID: "tenant-1", Description: "  oil change  "}
	if err := svc.Create(context.Background(), order); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != model.WorkOrderPending {
		t.Errorf("status = %s, want pending default", order.Status)
	}
	if order.Description != "oil change" {
		t.Errorf("description = %q, want sanitized text", order.Description)
	}
}

func TestCreate_UnknownStatusRejected(t *testing.T) {
	svc := newTestService(nil)

	err := svc.Create(context.Background(), &model.WorkOrder{TenantID: "tenant-1", Status: "bogus"})
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("error code = %s, want invalid input", appErr.Code)
	}
}

func TestUpdateStatus(t *testing.T) {
	tests := []struct {
		name       string
		current    model.WorkOrderStatus
		next       model.WorkOrderStatus
		wantCode   string
		wantWrites int
	}{
		{"pending to in_progress", model.WorkOrderPending, model.WorkOrderInProgress, "", 1},
		{"in_progress to on_hold", model.WorkOrderInProgress, model.WorkOrderOnHold, "", 1},
		{"same status is a no-op", model.WorkOrderInProgress, model.WorkOrderInProgress, "", 0},
		{"pending straight to completed", model.WorkOrderPending, model.WorkOrderCompleted, apperrors.CodeInvalidState, 0},
		{"unknown status", model.WorkOrderPending, model.WorkOrderStatus("bogus"), apperrors.CodeInvalidInput, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writes := 0
			repo := &mockWorkOrderRepo{
				findByIDFunc: func(ctx context.Context, tenantID, id string) (*model.WorkOrder, error) {
					return &model.WorkOrder{ID: id, TenantID: tenantID, Status: tt.current}, nil
				},
				updateStatusFunc: func(ctx context.Context, tenantID, id string, status model.WorkOrderStatus) error {
					writes++
					return nil
				},
			}
			svc := newTestService(repo)

			err := svc.UpdateStatus(context.Background(), "tenant-1", "65f000000000000000000w01", tt.next)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Fatal("expected an error")
				}
				if appErr := apperrors.AsAppError(err); appErr.Code != tt.wantCode {
					t.Errorf("error code = %s, want %s", appErr.Code, tt.wantCode)
				}
			}
			if writes != tt.wantWrites {
				t.Errorf("status writes = %d, want %d", writes, tt.wantWrites)
			}
		})
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc := newTestService(nil)

	_, err := svc.GetByID(context.Background(), "tenant-1", "65f000000000000000000w01")
	if err == nil {
		t.Fatal("expected a not-found error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeNotFound {
		t.Errorf("error code = %s, want not found", appErr.Code)
	}
}
