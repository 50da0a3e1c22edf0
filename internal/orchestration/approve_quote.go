package orchestration

import (
	"context"
	"fmt"
	"time"

	appointmentsservice "workbay/internal/appointments/service"
	elevatorsservice "workbay/internal/elevators/service"
	"workbay/internal/events"
	quotesrepo "workbay/internal/quotes/repository"
	workordersservice "workbay/internal/workorders/service"
	"workbay/pkg/config"
	apperrors "workbay/pkg/errors"
	"workbay/pkg/model"
)

const ApproveQuoteFlowName = "approve-quote"

const quoteKey = "quote"

// ApproveQuoteFlow turns an accepted quote into committed work: a work
// order, an optional lift reservation, and an appointment, then marks the
// quote approved. Any failure stops the pipeline; every step checks the
// quote's back references first, so a retry resumes where the last run
// stopped instead of duplicating records.
type ApproveQuoteFlow struct {
	quotes       quotesrepo.QuoteRepository
	workOrders   workordersservice.WorkOrderService
	elevators    elevatorsservice.ElevatorService
	appointments appointmentsservice.AppointmentService
	publisher    events.Publisher
	cfg          *config.Config
}

func NewApproveQuoteFlow(
	quotes quotesrepo.QuoteRepository,
	workOrders workordersservice.WorkOrderService,
	elevators elevatorsservice.ElevatorService,
	appointments appointmentsservice.AppointmentService,
	publisher events.Publisher,
	cfg *config.Config,
) *ApproveQuoteFlow {
	return &ApproveQuoteFlow{
		quotes:       quotes,
		workOrders:   workOrders,
		elevators:    elevators,
		appointments: appointments,
		publisher:    publisher,
		cfg:          cfg,
	}
}

func (f *ApproveQuoteFlow) Name() string {
	return ApproveQuoteFlowName
}

func (f *ApproveQuoteFlow) Steps() []*Step {
	return []*Step{
		NewStep("load-quote", f.loadQuote),
		NewStep("ensure-work-order", f.ensureWorkOrder),
		NewStep("reserve-lift", f.reserveLift),
		NewStep("create-appointment", f.createAppointment),
		NewStep("mark-approved", f.markApproved),
	}
}

func (f *ApproveQuoteFlow) loadQuote(ctx context.Context, fc *FlowContext) error {
	tenantID := fc.ExtractString("tenant_id")
	quoteID := fc.ExtractString("quote_id")
	if tenantID == "" {
		return MissingParamErr("tenant_id")
	}
	if quoteID == "" {
		return MissingParamErr("quote_id")
	}

	quote, err := f.quotes.FindByID(ctx, tenantID, quoteID)
	if err != nil {
		return apperrors.NotFoundWithID("Quote", quoteID)
	}

	if quote.Status != model.QuoteApproved && !quote.Status.CanTransitionTo(model.QuoteApproved) {
		return apperrors.InvalidState(fmt.Sprintf("Quote in status %q cannot be approved", quote.Status))
	}

	fc.Process[quoteKey] = quote
	return nil
}

func (f *ApproveQuoteFlow) ensureWorkOrder(ctx context.Context, fc *FlowContext) error {
	quote := fc.Process[quoteKey].(*model.Quote)
	if quote.WorkOrderID != "" {
		return nil
	}

	order := &model.WorkOrder{
		TenantID:     quote.TenantID,
		Status:       model.WorkOrderPending,
		Description:  quote.Description,
		VehicleID:    quote.VehicleID,
		TechnicianID: quote.TechnicianID,
		QuoteID:      quote.ID,
	}
	if quote.ScheduledAt != nil && quote.DurationMin > 0 {
		scheduledStart := *quote.ScheduledAt
		estimatedHours := float64(quote.DurationMin) / 60
		order.ScheduledStart = &scheduledStart
		order.EstimatedHours = &estimatedHours
	}

	if err := f.workOrders.Create(ctx, order); err != nil {
		return err
	}

	quote.WorkOrderID = order.ID
	return f.quotes.SetBackReferences(ctx, quote.TenantID, quote.ID, order.ID, "")
}

func (f *ApproveQuoteFlow) reserveLift(ctx context.Context, fc *FlowContext) error {
	quote := fc.Process[quoteKey].(*model.Quote)
	if quote.ElevatorID == "" || quote.ScheduledAt == nil {
		return nil
	}

	// A hold already tied to this work order means a previous run got here.
	open, err := f.elevators.CurrentUsage(ctx, quote.TenantID, quote.ElevatorID)
	if err != nil {
		return err
	}
	if open != nil && open.WorkOrderID == quote.WorkOrderID {
		return nil
	}

	durationMin := quote.DurationMin
	if durationMin <= 0 {
		durationMin = f.cfg.DefaultDurationMin
	}

	_, err = f.elevators.Reserve(ctx, quote.TenantID, quote.ElevatorID, &elevatorsservice.ReservationRequest{
		WorkOrderID: quote.WorkOrderID,
		VehicleID:   quote.VehicleID,
		Start:       *quote.ScheduledAt,
		PlannedEnd:  quote.ScheduledAt.Add(time.Duration(durationMin) * time.Minute),
	})
	if err != nil {
		return err
	}

	f.publisher.Publish(ctx, events.TypeLiftReserved, quote.ElevatorID, map[string]any{
		"tenant_id":     quote.TenantID,
		"elevator_id":   quote.ElevatorID,
		"work_order_id": quote.WorkOrderID,
		"quote_id":      quote.ID,
	})
	return nil
}

func (f *ApproveQuoteFlow) createAppointment(ctx context.Context, fc *FlowContext) error {
	quote := fc.Process[quoteKey].(*model.Quote)
	if quote.AppointmentID != "" || quote.ScheduledAt == nil {
		return nil
	}

	appointment := &model.Appointment{
		TenantID:      quote.TenantID,
		CustomerName:  quote.CustomerName,
		CustomerPhone: quote.CustomerPhone,
		VehicleID:     quote.VehicleID,
		TechnicianID:  quote.TechnicianID,
		WorkOrderID:   quote.WorkOrderID,
		ScheduledAt:   *quote.ScheduledAt,
		DurationMin:   quote.DurationMin,
		Notes:         quote.Description,
	}

	if err := f.appointments.Create(ctx, appointment); err != nil {
		return err
	}

	quote.AppointmentID = appointment.ID
	return f.quotes.SetBackReferences(ctx, quote.TenantID, quote.ID, "", appointment.ID)
}

func (f *ApproveQuoteFlow) markApproved(ctx context.Context, fc *FlowContext) error {
	quote := fc.Process[quoteKey].(*model.Quote)

	if quote.Status != model.QuoteApproved {
		if err := f.quotes.UpdateStatus(ctx, quote.TenantID, quote.ID, model.QuoteApproved); err != nil {
			return apperrors.Internal("Failed to mark quote approved", err)
		}
		quote.Status = model.QuoteApproved
	}

	f.publisher.Publish(ctx, events.TypeQuoteApproved, quote.ID, quote)

	fc.Output["quote"] = quote
	return nil
}
