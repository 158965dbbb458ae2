package fleet

import (
	"math"
	"testing"

	"github.com/fleetops-io/servicesched/core/engine"
)

func snap(id string, overall float64, overdue bool) engine.HealthSnapshot {
	s := engine.HealthSnapshot{VehicleID: id, OverallUrgency: overall}
	s.Urgencies = []engine.ServiceUrgency{{Urgency: overall, Overdue: overdue}}
	return s
}

func TestSummarize(t *testing.T) {
	snaps := []engine.HealthSnapshot{
		snap("v1", 10, false),
		snap("v2", 50, false),
		snap("v3", 95, true),
		snap("v4", 30, false),
	}
	s := Summarize(snaps)
	if s.Vehicles != 4 {
		t.Fatalf("expected 4 vehicles, got %d", s.Vehicles)
	}
	if math.Abs(s.MeanUrgency-46.25) > 0.01 {
		t.Fatalf("mean wrong: %.2f", s.MeanUrgency)
	}
	if s.Overdue != 1 {
		t.Fatalf("expected 1 overdue entry, got %d", s.Overdue)
	}
	if s.Critical != 1 {
		t.Fatalf("expected 1 critical vehicle, got %d", s.Critical)
	}
	if s.MedianUrgency < 30 || s.MedianUrgency > 50 {
		t.Fatalf("median outside the middle range: %.2f", s.MedianUrgency)
	}
	if s.P90Urgency < s.MedianUrgency {
		t.Fatalf("p90 below the median: %.2f < %.2f", s.P90Urgency, s.MedianUrgency)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.Vehicles != 0 || s.MeanUrgency != 0 || s.Critical != 0 {
		t.Fatalf("empty fleet should be all zero: %+v", s)
	}
}
