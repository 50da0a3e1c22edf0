package model

import "time"

// Conflict reason vocabulary returned by availability checks and the slot
// generator. Callers rely on these exact strings.
const (
	ReasonExistingAppointment = "existing appointment"
	ReasonWorkOrderInProgress = "work order in progress"
	ReasonLiftOccupied        = "lift occupied"
)

// Slot is one fixed-length candidate window of a business day.
type Slot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
	Reason    string    `json:"reason,omitempty"`
}

// DaySlots is the full, ordered scan of a business day.
type DaySlots struct {
	Date            string `json:"date"`
	AvailableSlots  []Slot `json:"availableSlots"`
	HasAvailability bool   `json:"hasAvailability"`
}

// ConflictResource identifies what a point check collided with.
type ConflictResource string

const (
	ConflictTechnician ConflictResource = "technician"
	ConflictLift       ConflictResource = "lift"
)

type Conflict struct {
	Kind        ConflictResource `json:"kind"`
	ResourceID  string           `json:"resource_id"`
	DisplayName string           `json:"display_name"`
	Start       time.Time        `json:"start"`
	End         time.Time        `json:"end"`
}

type AvailabilityResult struct {
	Available bool       `json:"available"`
	Conflicts []Conflict `json:"conflicts"`
}
