package service

import (
	"context"
	"testing"

	"workbay/internal/orchestration"
	"workbay/internal/quotes/repository"
	"workbay/pkg/config"
	apperrors "workbay/pkg/errors"
	"workbay/pkg/logger"
	"workbay/pkg/model"
)

// ────────────────────────────────────────────────
// Mocks
// ────────────────────────────────────────────────

type mockQuoteRepo struct {
	createFunc       func(ctx context.Context, quote *model.Quote) error
	findByIDFunc     func(ctx context.Context, tenantID, id string) (*model.Quote, error)
	updateStatusFunc func(ctx context.Context, tenantID, id string, status model.QuoteStatus) error
	statusWrites     []model.QuoteStatus
}

func (m *mockQuoteRepo) Create(ctx context.Context, quote *model.Quote) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, quote)
	}
	quote.ID = "65f000000000000000000q01"
	return nil
}

func (m *mockQuoteRepo) FindByID(ctx context.Context, tenantID, id string) (*model.Quote, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, tenantID, id)
	}
	return &model.Quote{ID: id, TenantID: tenantID, Status: model.QuoteSent}, nil
}

func (m *mockQuoteRepo) FindAll(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.Quote, error) {
	return nil, nil
}

func (m *mockQuoteRepo) Count(ctx context.Context, tenantID string) (int64, error) {
	return 0, nil
}

func (m *mockQuoteRepo) UpdateStatus(ctx context.Context, tenantID, id string, status model.QuoteStatus) error {
	m.statusWrites = append(m.statusWrites, status)
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, tenantID, id, status)
	}
	return nil
}

func (m *mockQuoteRepo) SetBackReferences(ctx context.Context, tenantID, id, workOrderID, appointmentID string) error {
	return nil
}

// stubApproveFlow stands in for the approval pipeline and lets each test
// control what the engine run produces.
type stubApproveFlow struct {
	err   error
	quote *model.Quote
}

func (f *stubApproveFlow) Name() string { return orchestration.ApproveQuoteFlowName }

func (f *stubApproveFlow) Steps() []*orchestration.Step {
	return []*orchestration.Step{
		orchestration.NewStep("stub", func(ctx context.Context, fc *orchestration.FlowContext) error {
			if f.err != nil {
				return f.err
			}
			fc.Output["quote"] = f.quote
			return nil
		}),
	}
}

func newTestService(repo *mockQuoteRepo, flow orchestration.Flow) QuoteService {
	if repo == nil {
		repo = &mockQuoteRepo{}
	}
	log := logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
	var flows []orchestration.Flow
	if flow != nil {
		flows = append(flows, flow)
	}
	return NewQuoteService(repo, orchestration.NewEngine(log, flows...), &config.Config{Log: log})
}

func validQuote() *model.Quote {
	return &model.Quote{
		TenantID:     "tenant-1",
		CustomerName: "  Noa   Levi ",
		Description:  "Front brake pads and discs",
		TotalAmount:  1450,
	}
}

// ────────────────────────────────────────────────
// Create
// ────────────────────────────────────────────────

func TestQuoteCreate_DefaultsToDraft(t *testing.T) {
	svc := newTestService(nil, nil)

	quote := validQuote()
	if err := svc.Create(context.Background(), quote); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Status != model.QuoteDraft {
		t.Errorf("status = %s, want draft default", quote.Status)
	}
	if quote.CustomerName != "Noa Levi" {
		t.Errorf("customer name = %q, want normalized", quote.CustomerName)
	}
}

func TestQuoteCreate_MissingDescription(t *testing.T) {
	svc := newTestService(nil, nil)

	quote := validQuote()
	quote.Description = ""
	err := svc.Create(context.Background(), quote)

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeValidation {
		t.Errorf("code = %s, want %s", appErr.Code, apperrors.CodeValidation)
	}
}

// ────────────────────────────────────────────────
// UpdateStatus
// ────────────────────────────────────────────────

func TestQuoteUpdateStatus(t *testing.T) {
	tests := []struct {
		name     string
		current  model.QuoteStatus
		next     model.QuoteStatus
		wantCode string
	}{
		{name: "draft to sent", current: model.QuoteDraft, next: model.QuoteSent},
		{name: "sent to declined", current: model.QuoteSent, next: model.QuoteDeclined},
		{name: "sent to expired", current: model.QuoteSent, next: model.QuoteExpired},
		{name: "draft to declined rejected", current: model.QuoteDraft, next: model.QuoteDeclined, wantCode: apperrors.CodeInvalidState},
		{name: "declined is terminal", current: model.QuoteDeclined, next: model.QuoteSent, wantCode: apperrors.CodeInvalidState},
		{name: "bogus status", current: model.QuoteDraft, next: "archived", wantCode: apperrors.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockQuoteRepo{
				findByIDFunc: func(ctx context.Context, tenantID, id string) (*model.Quote, error) {
					return &model.Quote{ID: id, TenantID: tenantID, Status: tt.current}, nil
				},
			}
			svc := newTestService(repo, nil)

			err := svc.UpdateStatus(context.Background(), "tenant-1", "65f000000000000000000q01", tt.next)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if len(repo.statusWrites) != 1 || repo.statusWrites[0] != tt.next {
					t.Errorf("status writes = %v, want [%s]", repo.statusWrites, tt.next)
				}
				return
			}
			appErr := apperrors.AsAppError(err)
			if appErr.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", appErr.Code, tt.wantCode)
			}
			if len(repo.statusWrites) != 0 {
				t.Errorf("status writes = %v, want none", repo.statusWrites)
			}
		})
	}
}

func TestQuoteUpdateStatus_ApproveMustUsePipeline(t *testing.T) {
	repo := &mockQuoteRepo{}
	svc := newTestService(repo, nil)

	err := svc.UpdateStatus(context.Background(), "tenant-1", "65f000000000000000000q01", model.QuoteApproved)

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("code = %s, want %s", appErr.Code, apperrors.CodeInvalidInput)
	}
	if len(repo.statusWrites) != 0 {
		t.Errorf("status writes = %v, want none", repo.statusWrites)
	}
}

// ────────────────────────────────────────────────
// Approve
// ────────────────────────────────────────────────

func TestQuoteApprove_ReturnsFlowResult(t *testing.T) {
	approved := &model.Quote{
		ID:            "65f000000000000000000q01",
		TenantID:      "tenant-1",
		Status:        model.QuoteApproved,
		WorkOrderID:   "65f000000000000000000w01",
		AppointmentID: "65f000000000000000000a01",
	}
	svc := newTestService(nil, &stubApproveFlow{quote: approved})

	quote, err := svc.Approve(context.Background(), "tenant-1", "65f000000000000000000q01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Status != model.QuoteApproved {
		t.Errorf("status = %s, want approved", quote.Status)
	}
	if quote.WorkOrderID == "" || quote.AppointmentID == "" {
		t.Error("approved quote must carry work order and appointment references")
	}
}

func TestQuoteApprove_FlowErrorSurfacesUnwrapped(t *testing.T) {
	conflict := apperrors.Conflict("Lift already has an open usage record")
	svc := newTestService(nil, &stubApproveFlow{err: conflict})

	_, err := svc.Approve(context.Background(), "tenant-1", "65f000000000000000000q01")

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Errorf("code = %s, want %s", appErr.Code, apperrors.CodeConflict)
	}
}

func TestQuoteApprove_EmptyID(t *testing.T) {
	svc := newTestService(nil, nil)

	_, err := svc.Approve(context.Background(), "tenant-1", "")

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("code = %s, want %s", appErr.Code, apperrors.CodeInvalidInput)
	}
}

func TestQuoteGetByID_NotFound(t *testing.T) {
	repo := &mockQuoteRepo{
		findByIDFunc: func(ctx context.Context, tenantID, id string) (*model.Quote, error) {
			return nil, repository.ErrNotFound
		},
	}
	svc := newTestService(repo, nil)

	_, err := svc.GetByID(context.Background(), "tenant-1", "65f000000000000000000q01")

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeNotFound {
		t.Errorf("code = %s, want %s", appErr.Code, apperrors.CodeNotFound)
	}
}
