package service

import (
	"time"

	"workbay/pkg/interval"
	"workbay/pkg/model"
)

// SlotInputs is a fixed snapshot of everything the day scan consults. The
// generator itself is pure: identical inputs always produce the identical
// slot sequence.
type SlotInputs struct {
	Open        time.Time
	Close       time.Time
	StepMin     int
	DurationMin int

	AppointmentSpans []interval.Span
	WorkOrderSpans   []interval.Span
	LiftSpans        []interval.Span
}

// GenerateSlots walks the business day in fixed steps and annotates each
// candidate window. Candidates whose end would pass business close are
// discarded. Conflicts are evaluated in precedence order: appointments, then
// work orders, then the lift; the first hit decides the reason.
func GenerateSlots(in SlotInputs) []model.Slot {
	step := time.Duration(in.StepMin) * time.Minute
	duration := time.Duration(in.DurationMin) * time.Minute

	var slots []model.Slot
	for start := in.Open; !start.After(in.Close); start = start.Add(step) {
		end := start.Add(duration)
		if end.After(in.Close) {
			break
		}

		slot := model.Slot{Start: start, End: end, Available: true}
		candidate := interval.Span{Start: start, End: end}

		switch {
		case candidate.OverlapsAny(in.AppointmentSpans):
			slot.Available = false
			slot.Reason = model.ReasonExistingAppointment
		case candidate.OverlapsAny(in.WorkOrderSpans):
			slot.Available = false
			slot.Reason = model.ReasonWorkOrderInProgress
		case candidate.OverlapsAny(in.LiftSpans):
			slot.Available = false
			slot.Reason = model.ReasonLiftOccupied
		}

		slots = append(slots, slot)
	}

	return slots
}

// HasAvailability reports whether at least one slot in the scan is free.
func HasAvailability(slots []model.Slot) bool {
	for _, s := range slots {
		if s.Available {
			return true
		}
	}
	return false
}
