package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/workshop-backend/internal/tenants"
	"github.com/angelmondragon/workshop-backend/pkg/config"
	"github.com/angelmondragon/workshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/workshop-backend/pkg/errors"
	"github.com/angelmondragon/workshop-backend/pkg/logger"
)

const (
	MinDurationMinutes     = 15
	MaxDurationMinutes     = 480
	DefaultDurationMinutes = 60
)

// Resource types reported in conflict details.
const (
	ResourceAppointment = "appointment"
	ResourceReservation = "reservation"
	ResourceUsage       = "usage"
	ResourceElevator    = "elevator"
)

type hoursSource interface {
	Policy(ctx context.Context, tenantID uuid.UUID) (tenants.HoursPolicy, error)
}

// Service answers whether an elevator is free for a window and which slots of
// a day can still be booked.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Duration(requested *int) (int, error)
	Check(ctx context.Context, query CheckQuery) (CheckResult, error)
	AvailableSlots(ctx context.Context, query SlotQuery) (SlotResult, error)
	BusyIntervals(ctx context.Context, tenantID, elevatorID uuid.UUID, window Interval, exclude *uuid.UUID) ([]Busy, error)
}

// CheckQuery asks about [Start, Start+DurationMinutes). Exclude drops one
// appointment or reservation from the busy set so a booking can be moved
// onto its own window.
type CheckQuery struct {
	TenantID        uuid.UUID
	Start           time.Time
	DurationMinutes int
	ElevatorID      *uuid.UUID
	Exclude         *uuid.UUID
	// WithHours also reports whether the window leaves operating hours.
	WithHours       bool
}

// CheckResult reports booking availability only. OutsideHours is advisory
// and never clears Available, since walk-ins may be booked after closing.
type CheckResult struct {
	Available    bool      `json:"available"`
	OutsideHours bool      `json:"outside_hours,omitempty"`
	Conflict     *Conflict `json:"conflict,omitempty"`
}

// Conflict identifies the booking that blocks a window. End is omitted for
// open usages and maintenance.
type Conflict struct {
	ResourceType string     `json:"resource_type"`
	ResourceID   uuid.UUID  `json:"resource_id"`
	ElevatorID   uuid.UUID  `json:"elevator_id"`
	Start        time.Time  `json:"start"`
	End          *time.Time `json:"end,omitempty"`
}

// Details renders the conflict for error payloads.
func (c Conflict) Details() map[string]any {
	details := map[string]any{
		"resource_type": c.ResourceType,
		"resource_id":   c.ResourceID.String(),
		"elevator_id":   c.ElevatorID.String(),
		"start":         c.Start.UTC().Format(time.RFC3339),
	}
	if c.End != nil {
		details["end"] = c.End.UTC().Format(time.RFC3339)
	}
	return details
}

// SlotQuery selects a day. When DayOnly is set, Date carries a calendar day
// in its own fields; otherwise Date is an instant and the day is taken in
// the tenant zone.
type SlotQuery struct {
	TenantID        uuid.UUID
	Date            time.Time
	DayOnly         bool
	DurationMinutes int
	ElevatorID      *uuid.UUID
}

type Slot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}

type SlotResult struct {
	Date            string     `json:"date"`
	DurationMinutes int        `json:"duration_minutes"`
	ElevatorID      *uuid.UUID `json:"elevator_id,omitempty"`
	OpensAt         time.Time  `json:"opens_at"`
	ClosesAt        time.Time  `json:"closes_at"`
	Slots           []Slot     `json:"slots"`
}

// Busy is an interval during which an elevator is taken.
type Busy struct {
	Interval
	ResourceType string
	ResourceID   uuid.UUID
}

type service struct {
	repo            Repository
	hours           hoursSource
	defaultDuration int
	logg            *logger.Logger
}

func NewService(repo Repository, hours hoursSource, cfg config.SchedulingConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("availability repository required")
	}
	if hours == nil {
		return nil, fmt.Errorf("hours source required")
	}
	def := cfg.DefaultDurationMn
	if def < MinDurationMinutes || def > MaxDurationMinutes {
		def = DefaultDurationMinutes
	}
	return &service{repo: repo, hours: hours, defaultDuration: def, logg: logg}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	clone := *s
	clone.repo = s.repo.WithTx(tx)
	return &clone
}

// Duration applies the default and enforces the bookable range.
func (s *service) Duration(requested *int) (int, error) {
	if requested == nil {
		return s.defaultDuration, nil
	}
	d := *requested
	if d < MinDurationMinutes || d > MaxDurationMinutes {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duration must be between %d and %d minutes", MinDurationMinutes, MaxDurationMinutes)).
			WithDetails(map[string]any{"field": "duration", "value": d})
	}
	return d, nil
}

func (s *service) Check(ctx context.Context, query CheckQuery) (CheckResult, error) {
	if query.TenantID == uuid.Nil {
		return CheckResult{}, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if query.Start.IsZero() {
		return CheckResult{}, pkgerrors.New(pkgerrors.CodeValidation, "start time required")
	}
	if _, err := s.Duration(&query.DurationMinutes); err != nil {
		return CheckResult{}, err
	}

	window := NewInterval(query.Start, query.DurationMinutes)
	var result CheckResult
	if query.WithHours {
		outside, err := s.outsideHours(ctx, query.TenantID, window)
		if err != nil {
			return CheckResult{}, err
		}
		result.OutsideHours = outside
	}
	if query.ElevatorID == nil {
		result.Available = true
		return result, nil
	}

	if conflict, err := s.maintenanceConflict(ctx, query.TenantID, *query.ElevatorID, window); err != nil || conflict != nil {
		if err != nil {
			return CheckResult{}, err
		}
		result.Conflict = conflict
		return result, nil
	}

	busy, err := s.BusyIntervals(ctx, query.TenantID, *query.ElevatorID, window, query.Exclude)
	if err != nil {
		return CheckResult{}, err
	}
	for _, b := range busy {
		if !b.Overlaps(window) {
			continue
		}
		result.Conflict = conflictFor(b, *query.ElevatorID)
		return result, nil
	}
	result.Available = true
	return result, nil
}

// outsideHours compares window with the operating window of the day it
// starts on, in the tenant zone.
func (s *service) outsideHours(ctx context.Context, tenantID uuid.UUID, window Interval) (bool, error) {
	policy, err := s.hours.Policy(ctx, tenantID)
	if err != nil {
		return false, err
	}
	if policy.AllDay() {
		return false, nil
	}
	loc, err := policy.Location()
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load tenant time zone")
	}
	year, month, day := window.Start.In(loc).Date()
	opens, closes, err := policy.Window(year, month, day)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve operating hours")
	}
	return window.Start.Before(opens) || window.End.After(closes), nil
}

func (s *service) maintenanceConflict(ctx context.Context, tenantID, elevatorID uuid.UUID, window Interval) (*Conflict, error) {
	elevator, err := s.repo.FindElevator(ctx, tenantID, elevatorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load elevator")
	}
	if elevator == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "elevator not found")
	}
	if elevator.Status != enums.ElevatorStatusMaintenance {
		return nil, nil
	}
	return &Conflict{
		ResourceType: ResourceElevator,
		ResourceID:   elevator.ID,
		ElevatorID:   elevator.ID,
		Start:        window.Start,
	}, nil
}

func (s *service) AvailableSlots(ctx context.Context, query SlotQuery) (SlotResult, error) {
	if query.TenantID == uuid.Nil {
		return SlotResult{}, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if query.Date.IsZero() {
		return SlotResult{}, pkgerrors.New(pkgerrors.CodeValidation, "date required")
	}
	duration, err := s.Duration(&query.DurationMinutes)
	if err != nil {
		return SlotResult{}, err
	}

	policy, err := s.hours.Policy(ctx, query.TenantID)
	if err != nil {
		return SlotResult{}, err
	}
	loc, err := policy.Location()
	if err != nil {
		return SlotResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load tenant time zone")
	}
	date := query.Date
	if !query.DayOnly {
		date = date.In(loc)
	}
	year, month, day := date.Date()
	opens, closes, err := policy.Window(year, month, day)
	if err != nil {
		return SlotResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve operating hours")
	}
	result := SlotResult{
		Date:            fmt.Sprintf("%04d-%02d-%02d", year, month, day),
		DurationMinutes: duration,
		ElevatorID:      query.ElevatorID,
		OpensAt:         opens,
		ClosesAt:        closes,
		Slots:           []Slot{},
	}

	window := Interval{Start: opens, End: closes}
	free := []Interval{window}
	if query.ElevatorID != nil {
		conflict, err := s.maintenanceConflict(ctx, query.TenantID, *query.ElevatorID, window)
		if err != nil {
			return SlotResult{}, err
		}
		if conflict != nil {
			free = nil
		} else {
			busy, err := s.BusyIntervals(ctx, query.TenantID, *query.ElevatorID, window, nil)
			if err != nil {
				return SlotResult{}, err
			}
			plain := make([]Interval, 0, len(busy))
			for _, b := range busy {
				plain = append(plain, b.Interval)
			}
			free = Free(window, plain)
		}
	}

	step := time.Duration(policy.SlotStepMinutes) * time.Minute
	if step <= 0 {
		step = 30 * time.Minute
	}
	for start := opens; ; start = start.Add(step) {
		candidate := NewInterval(start, duration)
		if candidate.End.After(closes) {
			break
		}
		result.Slots = append(result.Slots, Slot{
			Start:     candidate.Start,
			End:       candidate.End,
			Available: fitsAny(free, candidate),
		})
	}
	return result, nil
}

func fitsAny(free []Interval, candidate Interval) bool {
	for _, gap := range free {
		if gap.Contains(candidate) {
			return true
		}
	}
	return false
}

// BusyIntervals collects every booking that occupies the elevator during
// window, ordered by start.
func (s *service) BusyIntervals(ctx context.Context, tenantID, elevatorID uuid.UUID, window Interval, exclude *uuid.UUID) ([]Busy, error) {
	skip := func(id uuid.UUID) bool { return exclude != nil && *exclude == id }

	appointments, err := s.repo.ListElevatorAppointments(ctx, tenantID, elevatorID, window)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list elevator appointments")
	}
	reservations, err := s.repo.ListActiveReservations(ctx, tenantID, elevatorID, window)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list elevator reservations")
	}
	usages, err := s.repo.ListUsages(ctx, tenantID, elevatorID, window)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list elevator usages")
	}

	busy := make([]Busy, 0, len(appointments)+len(reservations)+len(usages))
	for _, a := range appointments {
		iv := Interval{Start: a.ScheduledAt.UTC(), End: a.EndsAt().UTC()}
		if skip(a.ID) || !iv.Overlaps(window) {
			continue
		}
		busy = append(busy, Busy{Interval: iv, ResourceType: ResourceAppointment, ResourceID: a.ID})
	}
	for _, r := range reservations {
		iv := Interval{Start: r.StartsAt.UTC(), End: r.EndsAt.UTC()}
		if skip(r.ID) || !iv.Overlaps(window) {
			continue
		}
		busy = append(busy, Busy{Interval: iv, ResourceType: ResourceReservation, ResourceID: r.ID})
	}
	for _, u := range usages {
		iv := Interval{Start: u.StartedAt.UTC()}
		if u.EndedAt != nil {
			iv.End = u.EndedAt.UTC()
		}
		if !iv.Overlaps(window) {
			continue
		}
		busy = append(busy, Busy{Interval: iv, ResourceType: ResourceUsage, ResourceID: u.ID})
	}
	sort.SliceStable(busy, func(i, j int) bool { return busy[i].Start.Before(busy[j].Start) })
	return busy, nil
}

func conflictFor(b Busy, elevatorID uuid.UUID) *Conflict {
	c := &Conflict{
		ResourceType: b.ResourceType,
		ResourceID:   b.ResourceID,
		ElevatorID:   elevatorID,
		Start:        b.Start,
	}
	if !b.Open() {
		end := b.End
		c.End = &end
	}
	return c
}
