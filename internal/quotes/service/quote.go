package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"workbay/internal/orchestration"
	"workbay/internal/quotes/repository"
	"workbay/pkg/config"
	apperrors "workbay/pkg/errors"
	"workbay/pkg/model"
	"workbay/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

type QuoteService interface {
	Create(ctx context.Context, quote *model.Quote) error
	GetByID(ctx context.Context, tenantID string, id string) (*model.Quote, error)
	GetAll(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.Quote, int64, error)
	UpdateStatus(ctx context.Context, tenantID string, id string, status model.QuoteStatus) error
	Approve(ctx context.Context, tenantID string, id string) (*model.Quote, error)
}

type quoteService struct {
	repo     repository.QuoteRepository
	engine   *orchestration.Engine
	validate *validator.Validate
	cfg      *config.Config
}

func NewQuoteService(repo repository.QuoteRepository, engine *orchestration.Engine, cfg *config.Config) QuoteService {
	return &quoteService{
		repo:     repo,
		engine:   engine,
		validate: validator.New(),
		cfg:      cfg,
	}
}

func (s *quoteService) Create(ctx context.Context, quote *model.Quote) error {
	if quote.Status == "" {
		quote.Status = model.QuoteDraft
	}
	quote.CustomerName = sanitizer.NormalizeName(quote.CustomerName)
	if quote.CustomerPhone != "" {
		quote.CustomerPhone = sanitizer.NormalizePhone(quote.CustomerPhone)
	}
	quote.Description = sanitizer.NormalizeNote(quote.Description)

	if err := s.validate.Struct(quote); err != nil {
		s.cfg.Log.Warn("Quote validation failed", "error", err)
		return apperrors.Validation("Quote validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, quote); err != nil {
		s.cfg.Log.Error("Failed to create quote", "error", err)
		return apperrors.Internal("Failed to create quote", err)
	}

	s.cfg.Log.Info("Quote created", "id", quote.ID, "tenant_id", quote.TenantID)
	return nil
}

func (s *quoteService) GetByID(ctx context.Context, tenantID string, id string) (*model.Quote, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Quote ID cannot be empty")
	}

	quote, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Quote", id)
		}
		if errors.Is(err, repository.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid quote ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve quote", err)
	}
	return quote, nil
}

func (s *quoteService) GetAll(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.Quote, int64, error) {
	var count int64
	var quotes []*model.Quote
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, tenantID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count quotes", "error", errCount)
			errCount = apperrors.Internal("Failed to count quotes", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		quotes, errFind = s.repo.FindAll(ctx, tenantID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list quotes", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve quotes", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return quotes, count, nil
}

func (s *quoteService) UpdateStatus(ctx context.Context, tenantID string, id string, status model.QuoteStatus) error {
	if !status.Valid() {
		return apperrors.InvalidInput(fmt.Sprintf("Unknown quote status %q", status))
	}
	if status == model.QuoteApproved {
		return apperrors.InvalidInput("Use the approve operation to approve a quote")
	}

	existing, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if !existing.Status.CanTransitionTo(status) {
		return apperrors.InvalidState(fmt.Sprintf("Cannot transition quote from %q to %q", existing.Status, status))
	}

	if err := s.repo.UpdateStatus(ctx, tenantID, id, status); err != nil {
		s.cfg.Log.Error("Failed to update quote status", "id", id, "error", err)
		return apperrors.Internal("Failed to update quote status", err)
	}

	s.cfg.Log.Info("Quote status updated", "id", id, "status", status)
	return nil
}

// Approve runs the approval pipeline: work order, lift reservation,
// appointment, then the status flip. The pipeline is idempotent, so a retry
// after a partial failure picks up where it left off.
func (s *quoteService) Approve(ctx context.Context, tenantID string, id string) (*model.Quote, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Quote ID cannot be empty")
	}

	fc := orchestration.NewFlowContext(map[string]any{
		"tenant_id": tenantID,
		"quote_id":  id,
	})

	if err := s.engine.Run(ctx, orchestration.ApproveQuoteFlowName, fc); err != nil {
		return nil, err
	}

	quote, ok := fc.Output["quote"].(*model.Quote)
	if !ok {
		return nil, apperrors.Internal("Approval flow produced no quote", nil)
	}

	s.cfg.Log.Info("Quote approved",
		"id", quote.ID,
		"work_order_id", quote.WorkOrderID,
		"appointment_id", quote.AppointmentID,
	)
	return quote, nil
}
