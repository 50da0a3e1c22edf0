package model

import (
	"time"

	"workbay/pkg/interval"
)

// ElevatorStatus describes a lift's occupancy state. It is never stored: it
// is derived from the maintenance flag and the open ledger record, so the
// ledger and the status cannot drift apart.
type ElevatorStatus string

const (
	ElevatorFree        ElevatorStatus = "free"
	ElevatorScheduled   ElevatorStatus = "scheduled"
	ElevatorOccupied    ElevatorStatus = "occupied"
	ElevatorMaintenance ElevatorStatus = "maintenance"
)

type Elevator struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TenantID    string    `json:"tenant_id" bson:"tenant_id" validate:"required"`
	Name        string    `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Maintenance bool      `json:"maintenance" bson:"maintenance"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// DeriveStatus computes the lift status from the maintenance flag and the
// open usage record, if any.
func (e *Elevator) DeriveStatus(open *ElevatorUsage) ElevatorStatus {
	if e.Maintenance {
		return ElevatorMaintenance
	}
	if open == nil {
		return ElevatorFree
	}
	if open.Running {
		return ElevatorOccupied
	}
	return ElevatorScheduled
}

// ElevatorUsage is one entry of a lift's occupancy ledger. End == nil marks
// the record open: the lift is reserved (Running false) or occupied (Running
// true). At most one open record may exist per lift; the storage layer
// enforces this with a partial unique index.
type ElevatorUsage struct {
	ID          string     `json:"id,omitempty" bson:"_id,omitempty"`
	TenantID    string     `json:"tenant_id" bson:"tenant_id"`
	ElevatorID  string     `json:"elevator_id" bson:"elevator_id"`
	WorkOrderID string     `json:"work_order_id,omitempty" bson:"work_order_id,omitempty"`
	VehicleID   string     `json:"vehicle_id,omitempty" bson:"vehicle_id,omitempty"`
	Start       time.Time  `json:"start" bson:"start"`
	PlannedEnd  *time.Time `json:"planned_end,omitempty" bson:"planned_end,omitempty"`
	End         *time.Time `json:"end,omitempty" bson:"end"`
	Running     bool       `json:"running" bson:"running"`
	Note        string     `json:"note,omitempty" bson:"note,omitempty"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
}

func (u *ElevatorUsage) Open() bool {
	return u.End == nil
}

// EffectiveSpan returns the interval the record occupies for availability
// checks. Closed records use their stored window, reserved holds their
// planned window, and a running open record blocks everything from its start
// up to the given horizon.
func (u *ElevatorUsage) EffectiveSpan(horizon time.Time) interval.Span {
	switch {
	case u.End != nil:
		return interval.Span{Start: u.Start, End: *u.End}
	case !u.Running && u.PlannedEnd != nil:
		return interval.Span{Start: u.Start, End: *u.PlannedEnd}
	default:
		return interval.Span{Start: u.Start, End: horizon}
	}
}

// DurationMin is the closed record's occupancy in whole minutes, floored.
// Open records report zero.
func (u *ElevatorUsage) DurationMin() int {
	if u.End == nil {
		return 0
	}
	return int(u.End.Sub(u.Start).Minutes())
}
