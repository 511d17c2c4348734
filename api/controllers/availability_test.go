package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/angelmondragon/workshop-backend/internal/availability"
	pkgerrors "github.com/angelmondragon/workshop-backend/pkg/errors"
)

type stubAvailabilityService struct {
	availability.Service

	check availability.CheckQuery
	slots availability.SlotQuery
}

func (s *stubAvailabilityService) Duration(requested *int) (int, error) {
	if requested == nil {
		return availability.DefaultDurationMinutes, nil
	}
	if *requested < availability.MinDurationMinutes || *requested > availability.MaxDurationMinutes {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "duration out of range")
	}
	return *requested, nil
}

func (s *stubAvailabilityService) Check(_ context.Context, query availability.CheckQuery) (availability.CheckResult, error) {
	s.check = query
	return availability.CheckResult{Available: true}, nil
}

func (s *stubAvailabilityService) AvailableSlots(_ context.Context, query availability.SlotQuery) (availability.SlotResult, error) {
	s.slots = query
	return availability.SlotResult{Date: query.Date.Format(time.DateOnly), DurationMinutes: query.DurationMinutes}, nil
}

func TestAvailableSlotsAcceptsCalendarDay(t *testing.T) {
	svc := &stubAvailabilityService{}
	rec := serve(AvailableSlots(svc, nil), newRequest(http.MethodPost, "/", `{"date":"2024-01-15"}`, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.slots.DurationMinutes != 60 || svc.slots.Date.Day() != 15 || !svc.slots.DayOnly || svc.slots.TenantID != testTenant {
		t.Fatalf("unexpected query %+v", svc.slots)
	}

	rec = serve(AvailableSlots(svc, nil), newRequest(http.MethodPost, "/", `{"date":"2024-01-15","duration":481}`, nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCheckAvailabilityRequiresTimestamp(t *testing.T) {
	svc := &stubAvailabilityService{}
	rec := serve(CheckAvailability(svc, nil), newRequest(http.MethodPost, "/", `{"date":"2024-01-15"}`, nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}

	rec = serve(CheckAvailability(svc, nil), newRequest(http.MethodPost, "/", `{"date":"2024-01-15T10:00:00Z","duration":15}`, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.check.DurationMinutes != 15 || !svc.check.Start.Equal(time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected query %+v", svc.check)
	}
	if !svc.check.WithHours {
		t.Fatalf("expected operating hours to be reported")
	}
}

func TestAvailableSlotsKeepsTimestampOffset(t *testing.T) {
	svc := &stubAvailabilityService{}
	rec := serve(AvailableSlots(svc, nil), newRequest(http.MethodPost, "/", `{"date":"2024-01-15T22:00:00-03:00"}`, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.slots.DayOnly {
		t.Fatalf("timestamp must not be treated as a calendar day")
	}
	if _, offset := svc.slots.Date.Zone(); offset != -3*60*60 {
		t.Fatalf("expected -03:00 offset got %d", offset)
	}
}
