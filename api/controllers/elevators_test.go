package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/workshop-backend/internal/elevators"
	pkgerrors "github.com/angelmondragon/workshop-backend/pkg/errors"
)

type stubElevatorService struct {
	elevators.Service

	reserved elevators.ReserveInput
	ended    elevators.EndUsageInput
	err      error
}

func (s *stubElevatorService) Reserve(_ context.Context, input elevators.ReserveInput) (*elevators.ReservationDTO, error) {
	s.reserved = input
	if s.err != nil {
		return nil, s.err
	}
	return &elevators.ReservationDTO{ID: uuid.New(), ElevatorID: input.ElevatorID}, nil
}

func (s *stubElevatorService) EndUsage(_ context.Context, input elevators.EndUsageInput) (*elevators.UsageDTO, error) {
	s.ended = input
	if s.err != nil {
		return nil, s.err
	}
	return &elevators.UsageDTO{ID: uuid.New(), ElevatorID: input.ElevatorID}, nil
}

func TestElevatorReserve(t *testing.T) {
	elevatorID := uuid.New()
	orderID := uuid.New()
	params := map[string]string{"elevatorId": elevatorID.String()}
	body := `{"service_order_id":"` + orderID.String() + `","scheduled_start":"2024-01-15T10:00:00Z","duration_minutes":60}`

	svc := &stubElevatorService{}
	rec := serve(ElevatorReserve(svc, nil), newRequest(http.MethodPost, "/", body, params))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.reserved.ElevatorID != elevatorID || svc.reserved.TenantID != testTenant {
		t.Fatalf("unexpected input %+v", svc.reserved)
	}
	if svc.reserved.ServiceOrderID == nil || *svc.reserved.ServiceOrderID != orderID {
		t.Fatal("service order not propagated")
	}
	if svc.reserved.ScheduledStart == nil || !svc.reserved.ScheduledStart.Equal(time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %v", svc.reserved.ScheduledStart)
	}

	svc = &stubElevatorService{err: pkgerrors.New(pkgerrors.CodeElevatorUnavailable, "elevator is reserved")}
	rec = serve(ElevatorReserve(svc, nil), newRequest(http.MethodPost, "/", body, params))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != string(pkgerrors.CodeElevatorUnavailable) {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestElevatorEndUsageAcceptsEmptyBody(t *testing.T) {
	elevatorID := uuid.New()
	params := map[string]string{"elevatorId": elevatorID.String()}

	svc := &stubElevatorService{}
	rec := serve(ElevatorEndUsage(svc, nil), newRequest(http.MethodPost, "/", "", params))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.ended.UsageID != nil || svc.ended.ElevatorID != elevatorID {
		t.Fatalf("unexpected input %+v", svc.ended)
	}

	svc = &stubElevatorService{err: pkgerrors.New(pkgerrors.CodeUsageNotFound, "no open usage")}
	rec = serve(ElevatorEndUsage(svc, nil), newRequest(http.MethodPost, "/", "", params))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != string(pkgerrors.CodeUsageNotFound) {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestElevatorSetStatusRejectsUnknownStatus(t *testing.T) {
	params := map[string]string{"elevatorId": uuid.NewString()}
	rec := serve(ElevatorSetStatus(&stubElevatorService{}, nil), newRequest(http.MethodPatch, "/", `{"status":"broken"}`, params))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
