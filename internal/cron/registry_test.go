package cron

import (
	"context"
	"testing"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func TestRegistryKeepsOrderAndCopies(t *testing.T) {
	registry, err := NewRegistry(&stubJob{name: "appointment-reminders"}, nil, &stubJob{name: "reservation-expiry"})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	names := registry.Names()
	if len(names) != 2 || names[0] != "appointment-reminders" || names[1] != "reservation-expiry" {
		t.Fatalf("unexpected names %v", names)
	}
	jobs := registry.Jobs()
	jobs[0] = nil
	if registry.Jobs()[0] == nil {
		t.Fatalf("internal slice leaked")
	}
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	registry, err := NewRegistry(&stubJob{name: "outbox-retention"})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if err := registry.Register(&stubJob{name: "outbox-retention"}); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestRegistrySelect(t *testing.T) {
	registry, err := NewRegistry(
		&stubJob{name: "appointment-reminders"},
		&stubJob{name: "reservation-expiry"},
		&stubJob{name: "outbox-retention"},
	)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	all, err := registry.Select(nil)
	if err != nil || len(all.Jobs()) != 3 {
		t.Fatalf("empty selection should keep every job, got %v (%v)", all.Names(), err)
	}

	picked, err := registry.Select([]string{"outbox-retention", "appointment-reminders"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	names := picked.Names()
	if len(names) != 2 || names[0] != "appointment-reminders" || names[1] != "outbox-retention" {
		t.Fatalf("expected registration order, got %v", names)
	}

	if _, err := registry.Select([]string{"order-ttl"}); err == nil {
		t.Fatal("expected unknown job to fail")
	}
}
