package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/workshop-backend/internal/appointments"
	"github.com/angelmondragon/workshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/workshop-backend/pkg/errors"
	"github.com/angelmondragon/workshop-backend/pkg/pagination"
)

type stubAppointmentService struct {
	appointments.Service

	created   appointments.CreateInput
	updated   appointments.UpdateInput
	filters   appointments.ListFilters
	params    pagination.Params
	next      enums.AppointmentStatus
	err       error
	callCount int
}

func (s *stubAppointmentService) Create(_ context.Context, input appointments.CreateInput) (*appointments.AppointmentDTO, error) {
	s.callCount++
	s.created = input
	if s.err != nil {
		return nil, s.err
	}
	return &appointments.AppointmentDTO{ID: uuid.New(), TenantID: input.TenantID, ScheduledAt: input.ScheduledAt, Status: enums.AppointmentStatusScheduled}, nil
}

func (s *stubAppointmentService) List(_ context.Context, _ uuid.UUID, params pagination.Params, filters appointments.ListFilters) (*appointments.AppointmentList, error) {
	s.callCount++
	s.params = params
	s.filters = filters
	return &appointments.AppointmentList{Items: []appointments.AppointmentDTO{}, Pagination: pagination.NewMeta(params, 0)}, nil
}

func (s *stubAppointmentService) Update(_ context.Context, _, id uuid.UUID, input appointments.UpdateInput) (*appointments.AppointmentDTO, error) {
	s.callCount++
	s.updated = input
	return &appointments.AppointmentDTO{ID: id}, s.err
}

func (s *stubAppointmentService) Transition(_ context.Context, _, id uuid.UUID, next enums.AppointmentStatus) (*appointments.AppointmentDTO, error) {
	s.callCount++
	s.next = next
	if s.err != nil {
		return nil, s.err
	}
	return &appointments.AppointmentDTO{ID: id, Status: next}, nil
}

func TestAppointmentCreate(t *testing.T) {
	svc := &stubAppointmentService{}
	body := `{"date":"2024-01-15T12:00:00+02:00","duration":60,"service_type":"  brakes  "}`

	rec := serve(AppointmentCreate(svc, nil), newRequest(http.MethodPost, "/api/v1/appointments", body, nil))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.created.TenantID != testTenant {
		t.Fatalf("tenant not propagated: %s", svc.created.TenantID)
	}
	want := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	if !svc.created.ScheduledAt.Equal(want) || svc.created.ScheduledAt.Location() != time.UTC {
		t.Fatalf("expected %s in UTC got %s", want, svc.created.ScheduledAt)
	}
	if svc.created.ServiceType == nil || *svc.created.ServiceType != "brakes" {
		t.Fatalf("service type not sanitized: %v", svc.created.ServiceType)
	}
	var envelope struct {
		Data appointments.AppointmentDTO `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Status != enums.AppointmentStatusScheduled {
		t.Fatalf("unexpected status %s", envelope.Data.Status)
	}
}

func TestAppointmentCreateRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"missing date":  `{"duration":60}`,
		"bad status":    `{"date":"2024-01-15T10:00:00Z","status":"done"}`,
		"unknown field": `{"date":"2024-01-15T10:00:00Z","room":"b"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &stubAppointmentService{}
			rec := serve(AppointmentCreate(svc, nil), newRequest(http.MethodPost, "/api/v1/appointments", body, nil))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d", rec.Code)
			}
			if svc.callCount != 0 {
				t.Fatal("service must not be called on invalid input")
			}
		})
	}
}

func TestAppointmentCreateConflict(t *testing.T) {
	svc := &stubAppointmentService{err: pkgerrors.New(pkgerrors.CodeSchedulingConflict, "elevator is booked")}
	rec := serve(AppointmentCreate(svc, nil), newRequest(http.MethodPost, "/api/v1/appointments", `{"date":"2024-01-15T10:00:00Z"}`, nil))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != string(pkgerrors.CodeSchedulingConflict) {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestAppointmentCreateRequiresTenant(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", nil)
	rec := serve(AppointmentCreate(&stubAppointmentService{}, nil), req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAppointmentListParsesFilters(t *testing.T) {
	svc := &stubAppointmentService{}
	elevatorID := uuid.New()
	target := "/api/v1/appointments?page=2&limit=10&from=2024-01-15T00:00:00Z&to=2024-01-16T00:00:00Z&status=confirmed&elevator_id=" + elevatorID.String()

	rec := serve(AppointmentList(svc, nil), newRequest(http.MethodGet, target, "", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.params.Page != 2 || svc.params.Limit != 10 {
		t.Fatalf("unexpected pagination %+v", svc.params)
	}
	if svc.filters.Status == nil || *svc.filters.Status != enums.AppointmentStatusConfirmed {
		t.Fatalf("status filter not parsed: %v", svc.filters.Status)
	}
	if svc.filters.ElevatorID == nil || *svc.filters.ElevatorID != elevatorID {
		t.Fatalf("elevator filter not parsed")
	}
	if svc.filters.From == nil || svc.filters.To == nil {
		t.Fatalf("date range not parsed")
	}

	bad := serve(AppointmentList(svc, nil), newRequest(http.MethodGet, "/api/v1/appointments?from=2024-01-16T00:00:00Z&to=2024-01-15T00:00:00Z", "", nil))
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for inverted range got %d", bad.Code)
	}
}

func TestAppointmentUpdateTracksExplicitNulls(t *testing.T) {
	svc := &stubAppointmentService{}
	id := uuid.New()
	rec := serve(AppointmentUpdate(svc, nil), newRequest(http.MethodPatch, "/api/v1/appointments/"+id.String(), `{"elevator_id":null,"notes":"call first"}`, map[string]string{"appointmentId": id.String()}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if !svc.updated.ElevatorID.Valid || svc.updated.ElevatorID.Value != nil {
		t.Fatalf("expected explicit null elevator, got %+v", svc.updated.ElevatorID)
	}
	if svc.updated.CustomerID.Valid {
		t.Fatal("absent customer_id must stay untouched")
	}
	if !svc.updated.Notes.Valid || svc.updated.Notes.Value == nil || *svc.updated.Notes.Value != "call first" {
		t.Fatalf("notes not propagated: %+v", svc.updated.Notes)
	}
	if svc.updated.ScheduledAt != nil || svc.updated.DurationMinutes != nil {
		t.Fatal("schedule must not change")
	}
}

func TestAppointmentTransition(t *testing.T) {
	id := uuid.New()
	params := map[string]string{"appointmentId": id.String()}

	svc := &stubAppointmentService{}
	rec := serve(AppointmentTransition(svc, nil), newRequest(http.MethodPost, "/", `{"status":"confirmed"}`, params))
	if rec.Code != http.StatusOK || svc.next != enums.AppointmentStatusConfirmed {
		t.Fatalf("expected confirmed transition, got %d %s", rec.Code, svc.next)
	}

	svc = &stubAppointmentService{err: pkgerrors.Transition("appointment", "completed", "confirmed")}
	rec = serve(AppointmentTransition(svc, nil), newRequest(http.MethodPost, "/", `{"status":"confirmed"}`, params))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != string(pkgerrors.CodeInvalidTransition) {
		t.Fatalf("unexpected code %s", code)
	}

	rec = serve(AppointmentTransition(svc, nil), newRequest(http.MethodPost, "/", `{"status":"confirmed"}`, map[string]string{"appointmentId": "nope"}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id got %d", rec.Code)
	}
}
