package model

import "time"

type QuoteStatus string

const (
	QuoteDraft    QuoteStatus = "draft"
	QuoteSent     QuoteStatus = "sent"
	QuoteApproved QuoteStatus = "approved"
	QuoteDeclined QuoteStatus = "declined"
	QuoteExpired  QuoteStatus = "expired"
)

var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteDraft:    {QuoteSent},
	QuoteSent:     {QuoteApproved, QuoteDeclined, QuoteExpired},
	QuoteApproved: {},
	QuoteDeclined: {},
	QuoteExpired:  {},
}

func (s QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	for _, allowed := range quoteTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s QuoteStatus) Valid() bool {
	_, ok := quoteTransitions[s]
	return ok
}

type Quote struct {
	ID            string      `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TenantID      string      `json:"tenant_id" bson:"tenant_id" validate:"required"`
	CustomerName  string      `json:"customer_name" bson:"customer_name" validate:"required,min=2,max=100"`
	CustomerPhone string      `json:"customer_phone,omitempty" bson:"customer_phone,omitempty" validate:"omitempty,e164"`
	VehicleID     string      `json:"vehicle_id,omitempty" bson:"vehicle_id,omitempty"`
	Description   string      `json:"description" bson:"description" validate:"required,min=2,max=2000"`
	TotalAmount   float64     `json:"total_amount" bson:"total_amount" validate:"gte=0"`
	Status        QuoteStatus `json:"status" bson:"status" validate:"required,oneof=draft sent approved declined expired"`

	// Scheduling intent captured on the quote; consumed by the approval
	// pipeline when turning the quote into committed work.
	TechnicianID string     `json:"technician_id,omitempty" bson:"technician_id,omitempty" validate:"omitempty,mongodb"`
	ElevatorID   string     `json:"elevator_id,omitempty" bson:"elevator_id,omitempty" validate:"omitempty,mongodb"`
	ScheduledAt  *time.Time `json:"scheduled_at,omitempty" bson:"scheduled_at,omitempty"`
	DurationMin  int        `json:"duration_min,omitempty" bson:"duration_min,omitempty" validate:"omitempty,min=1,max=1440"`

	// Back references filled in by the approval pipeline; their presence
	// makes each pipeline step idempotent on retry.
	WorkOrderID   string `json:"work_order_id,omitempty" bson:"work_order_id,omitempty"`
	AppointmentID string `json:"appointment_id,omitempty" bson:"appointment_id,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
