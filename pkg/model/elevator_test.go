package model

import (
	"testing"
	"time"
)

func ts(hour, min int) time.Time {
	return time.Date(2026, 3, 10, hour, min, 0, 0, time.UTC)
}

func tsPtr(hour, min int) *time.Time {
	v := ts(hour, min)
	return &v
}

func timePtr(v time.Time) *time.Time {
	return &v
}

func TestElevator_DeriveStatus(t *testing.T) {
	tests := []struct {
		name     string
		lift     *Elevator
		open     *ElevatorUsage
		expected ElevatorStatus
	}{
		{
			name:     "no open usage",
			lift:     &Elevator{Name: "Lift A"},
			open:     nil,
			expected: ElevatorFree,
		},
		{
			name:     "reserved hold",
			lift:     &Elevator{Name: "Lift A"},
			open:     &ElevatorUsage{Start: ts(14, 0), PlannedEnd: tsPtr(15, 0), Running: false},
			expected: ElevatorScheduled,
		},
		{
			name:     "vehicle on the lift",
			lift:     &Elevator{Name: "Lift A"},
			open:     &ElevatorUsage{Start: ts(14, 0), Running: true},
			expected: ElevatorOccupied,
		},
		{
			name:     "maintenance wins over open usage",
			lift:     &Elevator{Name: "Lift A", Maintenance: true},
			open:     &ElevatorUsage{Start: ts(14, 0), Running: true},
			expected: ElevatorMaintenance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.lift.DeriveStatus(tt.open); got != tt.expected {
				t.Errorf("DeriveStatus() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestElevatorUsage_EffectiveSpan(t *testing.T) {
	horizon := ts(18, 0)

	tests := []struct {
		name      string
		usage     *ElevatorUsage
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "closed record uses stored window",
			usage:     &ElevatorUsage{Start: ts(9, 0), End: tsPtr(10, 30)},
			wantStart: ts(9, 0),
			wantEnd:   ts(10, 30),
		},
		{
			name:      "reserved hold uses planned window",
			usage:     &ElevatorUsage{Start: ts(14, 0), PlannedEnd: tsPtr(15, 0)},
			wantStart: ts(14, 0),
			wantEnd:   ts(15, 0),
		},
		{
			name:      "running record blocks to the horizon",
			usage:     &ElevatorUsage{Start: ts(14, 5), Running: true},
			wantStart: ts(14, 5),
			wantEnd:   horizon,
		},
		{
			name:      "running record ignores stale planned end",
			usage:     &ElevatorUsage{Start: ts(14, 5), PlannedEnd: tsPtr(15, 0), Running: true},
			wantStart: ts(14, 5),
			wantEnd:   horizon,
		},
		{
			name:      "reserved hold without planned end blocks to the horizon",
			usage:     &ElevatorUsage{Start: ts(14, 0)},
			wantStart: ts(14, 0),
			wantEnd:   horizon,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			span := tt.usage.EffectiveSpan(horizon)
			if !span.Start.Equal(tt.wantStart) || !span.End.Equal(tt.wantEnd) {
				t.Errorf("EffectiveSpan() = [%v, %v), want [%v, %v)", span.Start, span.End, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestElevatorUsage_DurationMin(t *testing.T) {
	tests := []struct {
		name     string
		usage    *ElevatorUsage
		expected int
	}{
		{
			name:     "open record reports zero",
			usage:    &ElevatorUsage{Start: ts(14, 0), Running: true},
			expected: 0,
		},
		{
			name:     "reserved at 14:00, started 14:05, ended 15:10",
			usage:    &ElevatorUsage{Start: ts(14, 5), End: tsPtr(15, 10)},
			expected: 65,
		},
		{
			name:     "sub-minute occupancy floors to zero",
			usage:    &ElevatorUsage{Start: ts(14, 0), End: timePtr(ts(14, 0).Add(45 * time.Second))},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.usage.DurationMin(); got != tt.expected {
				t.Errorf("DurationMin() = %d, want %d", got, tt.expected)
			}
		})
	}
}
