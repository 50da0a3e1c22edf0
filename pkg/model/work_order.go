package model

import (
	"time"

	"workbay/pkg/interval"
)

type WorkOrderStatus string

const (
	WorkOrderPending    WorkOrderStatus = "pending"
	WorkOrderInProgress WorkOrderStatus = "in_progress"
	WorkOrderOnHold     WorkOrderStatus = "on_hold"
	WorkOrderCompleted  WorkOrderStatus = "completed"
	WorkOrderCancelled  WorkOrderStatus = "cancelled"
)

var workOrderTransitions = map[WorkOrderStatus][]WorkOrderStatus{
	WorkOrderPending:    {WorkOrderInProgress, WorkOrderCancelled},
	WorkOrderInProgress: {WorkOrderOnHold, WorkOrderCompleted, WorkOrderCancelled},
	WorkOrderOnHold:     {WorkOrderInProgress, WorkOrderCancelled},
	WorkOrderCompleted:  {},
	WorkOrderCancelled:  {},
}

func (s WorkOrderStatus) CanTransitionTo(next WorkOrderStatus) bool {
	for _, allowed := range workOrderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s WorkOrderStatus) Valid() bool {
	_, ok := workOrderTransitions[s]
	return ok
}

type WorkOrder struct {
	ID             string          `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TenantID       string          `json:"tenant_id" bson:"tenant_id" validate:"required"`
	Status         WorkOrderStatus `json:"status" bson:"status" validate:"required,oneof=pending in_progress on_hold completed cancelled"`
	Description    string          `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=2000"`
	VehicleID      string          `json:"vehicle_id,omitempty" bson:"vehicle_id,omitempty"`
	TechnicianID   string          `json:"technician_id,omitempty" bson:"technician_id,omitempty" validate:"omitempty,mongodb"`
	QuoteID        string          `json:"quote_id,omitempty" bson:"quote_id,omitempty" validate:"omitempty,mongodb"`
	ScheduledStart *time.Time      `json:"scheduled_start,omitempty" bson:"scheduled_start,omitempty"`
	EstimatedHours *float64        `json:"estimated_hours,omitempty" bson:"estimated_hours,omitempty" validate:"omitempty,gt=0"`
	CreatedAt      time.Time       `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// ScheduledSpan returns the committed window for an order carrying schedule
// data, or false when start or duration is missing.
func (w *WorkOrder) ScheduledSpan() (interval.Span, bool) {
	if w.ScheduledStart == nil || w.EstimatedHours == nil {
		return interval.Span{}, false
	}
	d := time.Duration(*w.EstimatedHours * float64(time.Hour))
	return interval.FromDuration(*w.ScheduledStart, d), true
}

// BlocksScheduling reports whether the order represents time already
// committed: in progress with a concrete scheduled window.
func (w *WorkOrder) BlocksScheduling() bool {
	if w.Status != WorkOrderInProgress {
		return false
	}
	_, ok := w.ScheduledSpan()
	return ok
}
