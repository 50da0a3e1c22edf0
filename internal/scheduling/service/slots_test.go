package service

import (
	"testing"
	"time"

	"workbay/pkg/interval"
	"workbay/pkg/model"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 10, hour, min, 0, 0, time.UTC)
}

func businessDay(durationMin int) SlotInputs {
	return SlotInputs{
		Open:        at(8, 0),
		Close:       at(18, 0),
		StepMin:     30,
		DurationMin: durationMin,
	}
}

func TestGenerateSlots_FullDaySequence(t *testing.T) {
	slots := GenerateSlots(businessDay(60))

	// 60-minute windows at 30-minute steps: 08:00 through 17:00.
	if len(slots) != 19 {
		t.Fatalf("expected 19 slots, got %d", len(slots))
	}
	if !slots[0].Start.Equal(at(8, 0)) {
		t.Errorf("first slot starts at %v, want 08:00", slots[0].Start)
	}
	last := slots[len(slots)-1]
	if !last.Start.Equal(at(17, 0)) || !last.End.Equal(at(18, 0)) {
		t.Errorf("last slot is [%v, %v), want [17:00, 18:00)", last.Start, last.End)
	}
	for i, s := range slots {
		if !s.Available {
			t.Errorf("slot %d should be free on an empty day, reason %q", i, s.Reason)
		}
	}
}

func TestGenerateSlots_DiscardsWindowsPastClose(t *testing.T) {
	slots := GenerateSlots(businessDay(90))

	// A 90-minute window starting 17:00 would end 18:30, past close.
	last := slots[len(slots)-1]
	if !last.Start.Equal(at(16, 30)) {
		t.Errorf("last slot starts at %v, want 16:30", last.Start)
	}
	for _, s := range slots {
		if s.End.After(at(18, 0)) {
			t.Errorf("slot [%v, %v) runs past business close", s.Start, s.End)
		}
	}
}

func TestGenerateSlots_ConflictPrecedence(t *testing.T) {
	in := businessDay(60)
	// All three resources collide over the 10:00 hour. The appointment
	// wins, then the work order, then the lift.
	in.AppointmentSpans = []interval.Span{{Start: at(10, 0), End: at(11, 0)}}
	in.WorkOrderSpans = []interval.Span{{Start: at(10, 0), End: at(12, 0)}}
	in.LiftSpans = []interval.Span{{Start: at(10, 0), End: at(13, 0)}}

	byStart := map[string]model.Slot{}
	for _, s := range GenerateSlots(in) {
		byStart[s.Start.Format("15:04")] = s
	}

	tests := []struct {
		start     string
		available bool
		reason    string
	}{
		{"09:00", true, ""},
		{"09:30", false, model.ReasonExistingAppointment},
		{"10:00", false, model.ReasonExistingAppointment},
		{"10:30", false, model.ReasonExistingAppointment},
		{"11:00", false, model.ReasonWorkOrderInProgress},
		{"11:30", false, model.ReasonWorkOrderInProgress},
		{"12:00", false, model.ReasonLiftOccupied},
		{"12:30", false, model.ReasonLiftOccupied},
		{"13:00", true, ""},
	}

	for _, tt := range tests {
		slot, ok := byStart[tt.start]
		if !ok {
			t.Fatalf("no slot starting at %s", tt.start)
		}
		if slot.Available != tt.available || slot.Reason != tt.reason {
			t.Errorf("slot %s: available=%v reason=%q, want available=%v reason=%q",
				tt.start, slot.Available, slot.Reason, tt.available, tt.reason)
		}
	}
}

func TestGenerateSlots_BoundaryTouchIsNotConflict(t *testing.T) {
	in := businessDay(60)
	in.AppointmentSpans = []interval.Span{{Start: at(10, 0), End: at(11, 0)}}

	for _, s := range GenerateSlots(in) {
		if s.Start.Equal(at(9, 0)) && !s.Available {
			t.Errorf("slot ending exactly at 10:00 must not conflict with [10:00, 11:00)")
		}
		if s.Start.Equal(at(11, 0)) && !s.Available {
			t.Errorf("slot starting exactly at 11:00 must not conflict with [10:00, 11:00)")
		}
	}
}

func TestGenerateSlots_Deterministic(t *testing.T) {
	in := businessDay(45)
	in.LiftSpans = []interval.Span{{Start: at(8, 0), End: at(18, 0)}}

	first := GenerateSlots(in)
	second := GenerateSlots(in)

	if len(first) != len(second) {
		t.Fatalf("slot counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("slot %d differs between runs", i)
		}
	}
	if HasAvailability(first) {
		t.Error("whole-day lift block must leave no free slot")
	}
}

func TestHasAvailability(t *testing.T) {
	if HasAvailability(nil) {
		t.Error("empty scan has no availability")
	}
	slots := []model.Slot{
		{Start: at(8, 0), End: at(9, 0), Available: false, Reason: model.ReasonLiftOccupied},
		{Start: at(8, 30), End: at(9, 30), Available: true},
	}
	if !HasAvailability(slots) {
		t.Error("expected availability when one slot is free")
	}
}
