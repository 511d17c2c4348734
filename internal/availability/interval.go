package availability

import "time"

// Interval is the half-open window [Start, End). A zero End means the
// interval is still open and extends indefinitely.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval builds [start, start+minutes).
func NewInterval(start time.Time, minutes int) Interval {
	start = start.UTC()
	return Interval{Start: start, End: start.Add(time.Duration(minutes) * time.Minute)}
}

// Open reports whether the interval has no end.
func (i Interval) Open() bool {
	return i.End.IsZero()
}

// Overlaps reports whether two half-open intervals share any instant.
func (i Interval) Overlaps(other Interval) bool {
	return beforeEnd(i.Start, other) && beforeEnd(other.Start, i)
}

// Contains reports whether other lies entirely inside i.
func (i Interval) Contains(other Interval) bool {
	if other.Start.Before(i.Start) {
		return false
	}
	if i.Open() {
		return true
	}
	if other.Open() {
		return false
	}
	return !other.End.After(i.End)
}

func beforeEnd(t time.Time, iv Interval) bool {
	return iv.Open() || t.Before(iv.End)
}

// Free subtracts busy intervals from window and returns the remaining gaps in
// order.
func Free(window Interval, busy []Interval) []Interval {
	gaps := []Interval{window}
	for _, b := range busy {
		next := make([]Interval, 0, len(gaps)+1)
		for _, g := range gaps {
			if !g.Overlaps(b) {
				next = append(next, g)
				continue
			}
			if g.Start.Before(b.Start) {
				next = append(next, Interval{Start: g.Start, End: b.Start})
			}
			if !b.Open() && (g.Open() || b.End.Before(g.End)) {
				next = append(next, Interval{Start: b.End, End: g.End})
			}
		}
		gaps = next
	}
	return gaps
}
