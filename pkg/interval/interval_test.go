package interval

import (
	"testing"
	"time"
)

func at(hour, min int) time.Time {
	return time.Date(2025, 3, 10, hour, min, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name   string
		aStart time.Time
		aEnd   time.Time
		bStart time.Time
		bEnd   time.Time
		want   bool
	}{
		{
			name:   "partial overlap",
			aStart: at(10, 0), aEnd: at(11, 0),
			bStart: at(10, 30), bEnd: at(11, 30),
			want: true,
		},
		{
			name:   "contained interval",
			aStart: at(9, 0), aEnd: at(12, 0),
			bStart: at(10, 0), bEnd: at(11, 0),
			want: true,
		},
		{
			name:   "identical intervals",
			aStart: at(9, 0), aEnd: at(10, 0),
			bStart: at(9, 0), bEnd: at(10, 0),
			want: true,
		},
		{
			name:   "touching boundaries do not conflict",
			aStart: at(9, 0), aEnd: at(10, 0),
			bStart: at(10, 0), bEnd: at(11, 0),
			want: false,
		},
		{
			name:   "disjoint intervals",
			aStart: at(8, 0), aEnd: at(9, 0),
			bStart: at(14, 0), bEnd: at(15, 0),
			want: false,
		},
		{
			name:   "one minute overlap",
			aStart: at(9, 0), aEnd: at(10, 1),
			bStart: at(10, 0), bEnd: at(11, 0),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd)
			if got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}

			// Symmetry: swapping the intervals never changes the answer.
			sym := Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd)
			if sym != got {
				t.Errorf("Overlaps() not symmetric: %v vs %v", got, sym)
			}
		})
	}
}

func TestSpanContains(t *testing.T) {
	s := NewSpan(at(9, 0), at(10, 0))

	if !s.Contains(at(9, 0)) {
		t.Error("start instant must be included")
	}
	if s.Contains(at(10, 0)) {
		t.Error("end instant must be excluded")
	}
	if !s.Contains(at(9, 59)) {
		t.Error("instant inside span must be included")
	}
}

func TestSpanFromDuration(t *testing.T) {
	s := FromDuration(at(9, 0), 90*time.Minute)
	if !s.End.Equal(at(10, 30)) {
		t.Errorf("expected end 10:30, got %v", s.End)
	}
	if s.Duration() != 90*time.Minute {
		t.Errorf("expected duration 90m, got %v", s.Duration())
	}
}

func TestSpanValid(t *testing.T) {
	if !NewSpan(at(9, 0), at(9, 30)).Valid() {
		t.Error("forward span must be valid")
	}
	if NewSpan(at(9, 0), at(9, 0)).Valid() {
		t.Error("empty span must be invalid")
	}
	if NewSpan(at(10, 0), at(9, 0)).Valid() {
		t.Error("reversed span must be invalid")
	}
}

func TestSpanOverlapsAny(t *testing.T) {
	busy := []Span{
		NewSpan(at(8, 0), at(9, 0)),
		NewSpan(at(12, 0), at(13, 0)),
	}

	if NewSpan(at(9, 0), at(10, 0)).OverlapsAny(busy) {
		t.Error("span touching a busy boundary must not overlap")
	}
	if !NewSpan(at(12, 30), at(14, 0)).OverlapsAny(busy) {
		t.Error("span crossing a busy window must overlap")
	}
	if NewSpan(at(9, 0), at(10, 0)).OverlapsAny(nil) {
		t.Error("no busy spans means no overlap")
	}
}
