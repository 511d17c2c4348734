package enums

import "testing"

func TestAppointmentTransitions(t *testing.T) {
	cases := []struct {
		from AppointmentStatus
		to   AppointmentStatus
		ok   bool
	}{
		{AppointmentStatusScheduled, AppointmentStatusConfirmed, true},
		{AppointmentStatusConfirmed, AppointmentStatusInProgress, true},
		{AppointmentStatusInProgress, AppointmentStatusCompleted, true},
		{AppointmentStatusScheduled, AppointmentStatusCancelled, true},
		{AppointmentStatusConfirmed, AppointmentStatusNoShow, true},
		{AppointmentStatusInProgress, AppointmentStatusCancelled, true},
		{AppointmentStatusScheduled, AppointmentStatusCompleted, false},
		{AppointmentStatusCompleted, AppointmentStatusConfirmed, false},
		{AppointmentStatusCancelled, AppointmentStatusScheduled, false},
		{AppointmentStatusNoShow, AppointmentStatusConfirmed, false},
		{AppointmentStatusConfirmed, AppointmentStatusScheduled, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.ok {
			t.Fatalf("%s -> %s: expected %v got %v", tc.from, tc.to, tc.ok, got)
		}
	}
}

func TestAppointmentTerminalStates(t *testing.T) {
	for _, status := range validAppointmentStatuses {
		terminal := status == AppointmentStatusCompleted || status == AppointmentStatusCancelled || status == AppointmentStatusNoShow
		if status.IsTerminal() != terminal {
			t.Fatalf("%s terminal mismatch", status)
		}
		if status.OccupiesResources() == terminal {
			t.Fatalf("%s occupancy mismatch", status)
		}
	}
}

func TestQuoteTransitions(t *testing.T) {
	if QuoteStatusDraft.CanTransitionTo(QuoteStatusApproved) {
		t.Fatal("draft must not skip to approved")
	}
	if !QuoteStatusAwaitingApproval.CanTransitionTo(QuoteStatusRejected) {
		t.Fatal("awaiting approval must allow rejection")
	}
	if QuoteStatusDiagnosisComplete.CanTransitionTo(QuoteStatusRejected) {
		t.Fatal("rejection only from awaiting approval")
	}
	if !QuoteStatusApproved.CanTransitionTo(QuoteStatusConverted) {
		t.Fatal("approved must allow conversion")
	}
	if QuoteStatusConverted.CanTransitionTo(QuoteStatusApproved) {
		t.Fatal("converted is terminal")
	}
	if !QuoteStatusPendingDiagnosis.AllowsMechanicAssignment() || QuoteStatusApproved.AllowsMechanicAssignment() {
		t.Fatal("mechanic assignment window mismatch")
	}
}

func TestServiceOrderTransitions(t *testing.T) {
	if !ServiceOrderStatusOpen.CanTransitionTo(ServiceOrderStatusCancelled) {
		t.Fatal("open must allow cancel")
	}
	if ServiceOrderStatusCompleted.CanTransitionTo(ServiceOrderStatusCancelled) {
		t.Fatal("completed is terminal")
	}
	if ServiceOrderStatusOpen.CanTransitionTo(ServiceOrderStatusCompleted) {
		t.Fatal("open must not skip in_progress")
	}
}

func TestParseHelpers(t *testing.T) {
	if _, err := ParseAppointmentStatus("in_progress"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseAppointmentStatus("in-progress"); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if _, err := ParseElevatorStatus("maintenance"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseQuoteStatus("bogus"); err == nil {
		t.Fatal("expected error for unknown quote status")
	}
	if !EventAppointmentStatusChanged.IsValid() || OutboxEventType("x").IsValid() {
		t.Fatal("event type validation mismatch")
	}
}
