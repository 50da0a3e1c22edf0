package model

import (
	"time"

	"workbay/pkg/interval"
)

// AppointmentStatus is a closed set of appointment lifecycle states.
type AppointmentStatus string

const (
	AppointmentScheduled  AppointmentStatus = "scheduled"
	AppointmentInProgress AppointmentStatus = "in_progress"
	AppointmentCompleted  AppointmentStatus = "completed"
	AppointmentCancelled  AppointmentStatus = "cancelled"
	AppointmentNoShow     AppointmentStatus = "no_show"
)

// appointmentTransitions is the explicit state machine: current status to the
// set of statuses it may advance to. Terminal states have no successors.
var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentScheduled:  {AppointmentInProgress, AppointmentCancelled, AppointmentNoShow},
	AppointmentInProgress: {AppointmentCompleted},
	AppointmentCompleted:  {},
	AppointmentCancelled:  {},
	AppointmentNoShow:     {},
}

func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status excludes the appointment from any
// conflict computation.
func (s AppointmentStatus) Terminal() bool {
	switch s {
	case AppointmentCancelled, AppointmentCompleted, AppointmentNoShow:
		return true
	}
	return false
}

func (s AppointmentStatus) Valid() bool {
	_, ok := appointmentTransitions[s]
	return ok
}

// ActiveAppointmentStatuses lists the statuses that participate in conflict
// checks and slot generation.
func ActiveAppointmentStatuses() []AppointmentStatus {
	return []AppointmentStatus{AppointmentScheduled, AppointmentInProgress}
}

type Appointment struct {
	ID            string            `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TenantID      string            `json:"tenant_id" bson:"tenant_id" validate:"required"`
	CustomerName  string            `json:"customer_name" bson:"customer_name" validate:"required,min=2,max=100"`
	CustomerPhone string            `json:"customer_phone,omitempty" bson:"customer_phone,omitempty" validate:"omitempty,e164"`
	VehicleID     string            `json:"vehicle_id,omitempty" bson:"vehicle_id,omitempty"`
	VehiclePlate  string            `json:"vehicle_plate,omitempty" bson:"vehicle_plate,omitempty" validate:"omitempty,max=16"`
	TechnicianID  string            `json:"technician_id,omitempty" bson:"technician_id,omitempty" validate:"omitempty,mongodb"`
	WorkOrderID   string            `json:"work_order_id,omitempty" bson:"work_order_id,omitempty" validate:"omitempty,mongodb"`
	ScheduledAt   time.Time         `json:"scheduled_at" bson:"scheduled_at" validate:"required"`
	DurationMin   int               `json:"duration_min" bson:"duration_min" validate:"required,min=1,max=1440"`
	Status        AppointmentStatus `json:"status" bson:"status" validate:"required,oneof=scheduled in_progress completed cancelled no_show"`
	Notes         string            `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=2000"`
	CreatedAt     time.Time         `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Span returns the appointment's half-open occupancy window.
func (a *Appointment) Span() interval.Span {
	return interval.FromDuration(a.ScheduledAt, time.Duration(a.DurationMin)*time.Minute)
}

type AppointmentUpdate struct {
	CustomerName  string     `json:"customer_name,omitempty" validate:"omitempty,min=2,max=100"`
	CustomerPhone string     `json:"customer_phone,omitempty" validate:"omitempty,e164"`
	TechnicianID  *string    `json:"technician_id,omitempty" validate:"omitempty"`
	ScheduledAt   *time.Time `json:"scheduled_at,omitempty"`
	DurationMin   *int       `json:"duration_min,omitempty" validate:"omitempty,min=1,max=1440"`
	Notes         *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
}
