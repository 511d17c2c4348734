package availability

import (
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, 1, 15, hour, minute, 0, 0, time.UTC)
}

func TestIntervalOverlapIsHalfOpen(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"identical", NewInterval(at(10, 0), 60), NewInterval(at(10, 0), 60), true},
		{"partial", NewInterval(at(10, 0), 60), NewInterval(at(10, 30), 60), true},
		{"contained", NewInterval(at(10, 0), 120), NewInterval(at(10, 30), 15), true},
		{"touching end", NewInterval(at(10, 0), 60), NewInterval(at(11, 0), 60), false},
		{"touching start", NewInterval(at(11, 0), 60), NewInterval(at(10, 0), 60), false},
		{"disjoint", NewInterval(at(8, 0), 30), NewInterval(at(12, 0), 30), false},
		{"open before", Interval{Start: at(9, 0)}, NewInterval(at(15, 0), 30), true},
		{"open after", Interval{Start: at(12, 0)}, NewInterval(at(10, 0), 60), false},
		{"open touching", Interval{Start: at(11, 0)}, NewInterval(at(10, 0), 60), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Overlaps(tc.b); got != tc.want {
				t.Fatalf("a.Overlaps(b) = %v, want %v", got, tc.want)
			}
			if got := tc.b.Overlaps(tc.a); got != tc.want {
				t.Fatalf("overlap must be symmetric, b.Overlaps(a) = %v", got)
			}
		})
	}
}

func TestFreeSubtractsBusyIntervals(t *testing.T) {
	window := Interval{Start: at(8, 0), End: at(18, 0)}
	busy := []Interval{
		NewInterval(at(10, 0), 60),
		NewInterval(at(13, 0), 30),
	}
	free := Free(window, busy)
	want := []Interval{
		{Start: at(8, 0), End: at(10, 0)},
		{Start: at(11, 0), End: at(13, 0)},
		{Start: at(13, 30), End: at(18, 0)},
	}
	if len(free) != len(want) {
		t.Fatalf("expected %d gaps, got %d: %+v", len(want), len(free), free)
	}
	for i := range want {
		if !free[i].Start.Equal(want[i].Start) || !free[i].End.Equal(want[i].End) {
			t.Fatalf("gap %d = %+v, want %+v", i, free[i], want[i])
		}
	}
}

func TestFreeWithOpenBusyInterval(t *testing.T) {
	window := Interval{Start: at(8, 0), End: at(18, 0)}
	free := Free(window, []Interval{{Start: at(12, 0)}})
	if len(free) != 1 || !free[0].End.Equal(at(12, 0)) {
		t.Fatalf("open usage should swallow the rest of the day, got %+v", free)
	}
}

func TestContains(t *testing.T) {
	window := Interval{Start: at(8, 0), End: at(18, 0)}
	if !window.Contains(NewInterval(at(17, 0), 60)) {
		t.Fatalf("slot ending at close should fit")
	}
	if window.Contains(NewInterval(at(17, 30), 60)) {
		t.Fatalf("slot past close should not fit")
	}
}
