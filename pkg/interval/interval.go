package interval

import "time"

// Overlaps reports whether the half-open ranges [aStart, aEnd) and
// [bStart, bEnd) share any instant. Ranges that merely touch at a
// boundary do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Span is a half-open time range [Start, End).
type Span struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewSpan(start, end time.Time) Span {
	return Span{Start: start, End: end}
}

// FromDuration builds the span [start, start+d).
func FromDuration(start time.Time, d time.Duration) Span {
	return Span{Start: start, End: start.Add(d)}
}

func (s Span) Overlaps(other Span) bool {
	return Overlaps(s.Start, s.End, other.Start, other.End)
}

func (s Span) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Contains reports whether t falls inside the span. The end instant is
// excluded, matching the half-open convention.
func (s Span) Contains(t time.Time) bool {
	return !t.Before(s.Start) && t.Before(s.End)
}

// Valid reports whether the span is non-empty with End after Start.
func (s Span) Valid() bool {
	return s.End.After(s.Start)
}

// OverlapsAny reports whether the span overlaps any of the given spans.
func (s Span) OverlapsAny(others []Span) bool {
	for _, o := range others {
		if s.Overlaps(o) {
			return true
		}
	}
	return false
}
