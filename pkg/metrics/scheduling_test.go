package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestSchedulingMetricsCountsConflictsAndTransitions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSchedulingMetrics(reg)
	m.IncConflict("elevator")
	m.IncConflict("elevator")
	m.IncTransition("appointment", "confirmed")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "workshop_scheduling_conflicts_total", "resource", "elevator"); err != nil {
		t.Fatalf("fetch conflicts: %v", err)
	} else if got != 2 {
		t.Fatalf("expected conflicts=2, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "workshop_scheduling_status_transitions_total", "status", "confirmed"); err != nil {
		t.Fatalf("fetch transitions: %v", err)
	} else if got != 1 {
		t.Fatalf("expected transitions=1, got %f", got)
	}
}

func TestNilRecordersAreNoops(t *testing.T) {
	var s *SchedulingMetrics
	s.IncConflict("elevator")
	NewSchedulingMetrics(nil).IncTransition("quote", "approved")
	NewHTTPMetrics(nil).Observe("GET", "/health", 200, time.Millisecond)
	NewCronJobMetrics(nil).ObserveRun("job", time.Second, nil)
	var c *CronJobMetrics
	c.IncCycle(CycleRan)
}

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("POST", "/api/v1/appointments", 201, 20*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "workshop_http_requests_total", "route", "/api/v1/appointments"); err != nil {
		t.Fatalf("fetch requests: %v", err)
	} else if got != 1 {
		t.Fatalf("expected requests=1, got %f", got)
	}
	if got, err := fetchHistogramSum(mfs, "workshop_http_request_duration_seconds", "method", "POST"); err != nil {
		t.Fatalf("fetch latency: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected latency sum > 0, got %f", got)
	}
}
