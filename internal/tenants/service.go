package tenants

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/workshop-backend/pkg/config"
	"github.com/angelmondragon/workshop-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/workshop-backend/pkg/errors"
	"github.com/angelmondragon/workshop-backend/pkg/logger"
)

const (
	minSlotStep = 5
	maxSlotStep = 240
)

type settingsRepository interface {
	FindSettings(ctx context.Context, tenantID uuid.UUID) (*models.TenantSettings, error)
	UpsertSettings(ctx context.Context, row *models.TenantSettings) error
}

// Service resolves and stores operating hours.
type Service interface {
	Policy(ctx context.Context, tenantID uuid.UUID) (HoursPolicy, error)
	UpdateHours(ctx context.Context, tenantID uuid.UUID, input UpdateHoursInput) (HoursPolicy, error)
}

// UpdateHoursInput replaces the tenant's operating hours. Nil opening and
// closing times switch the tenant to all-day availability.
type UpdateHoursInput struct {
	OpeningTime     *string
	ClosingTime     *string
	Timezone        string
	SlotStepMinutes *int
}

type service struct {
	repo     settingsRepository
	defaults config.SchedulingConfig
	logg     *logger.Logger
}

func NewService(repo settingsRepository, defaults config.SchedulingConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	if defaults.SlotStepMinutes <= 0 {
		return nil, fmt.Errorf("default slot step must be positive")
	}
	return &service{repo: repo, defaults: defaults, logg: logg}, nil
}

func (s *service) defaultPolicy() HoursPolicy {
	return HoursPolicy{
		OpeningTime:     s.defaults.OpeningTime,
		ClosingTime:     s.defaults.ClosingTime,
		Timezone:        s.defaults.Timezone,
		SlotStepMinutes: s.defaults.SlotStepMinutes,
		Source:          SourceDefault,
	}
}

func (s *service) Policy(ctx context.Context, tenantID uuid.UUID) (HoursPolicy, error) {
	if tenantID == uuid.Nil {
		return HoursPolicy{}, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	row, err := s.repo.FindSettings(ctx, tenantID)
	if err != nil {
		return HoursPolicy{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tenant settings")
	}
	if row == nil {
		return s.defaultPolicy(), nil
	}
	policy := HoursPolicy{
		Timezone:        row.Timezone,
		SlotStepMinutes: s.defaults.SlotStepMinutes,
		Source:          SourceTenant,
	}
	if row.OpeningTime != nil {
		policy.OpeningTime = *row.OpeningTime
	}
	if row.ClosingTime != nil {
		policy.ClosingTime = *row.ClosingTime
	}
	if row.SlotStepMinutes != nil && *row.SlotStepMinutes > 0 {
		policy.SlotStepMinutes = *row.SlotStepMinutes
	}
	return policy, nil
}

func (s *service) UpdateHours(ctx context.Context, tenantID uuid.UUID, input UpdateHoursInput) (HoursPolicy, error) {
	if tenantID == uuid.Nil {
		return HoursPolicy{}, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	opening := trimmed(input.OpeningTime)
	closing := trimmed(input.ClosingTime)
	if (opening == nil) != (closing == nil) {
		return HoursPolicy{}, pkgerrors.New(pkgerrors.CodeValidation, "opening_time and closing_time must be set together")
	}
	if opening != nil {
		oh, om, err := ParseClock(*opening)
		if err != nil {
			return HoursPolicy{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid opening_time")
		}
		ch, cm, err := ParseClock(*closing)
		if err != nil {
			return HoursPolicy{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid closing_time")
		}
		if ch*60+cm <= oh*60+om {
			return HoursPolicy{}, pkgerrors.New(pkgerrors.CodeValidation, "closing_time must be after opening_time")
		}
	}
	tz := strings.TrimSpace(input.Timezone)
	if tz == "" {
		tz = s.defaults.Timezone
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return HoursPolicy{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown timezone")
	}
	if input.SlotStepMinutes != nil && (*input.SlotStepMinutes < minSlotStep || *input.SlotStepMinutes > maxSlotStep) {
		return HoursPolicy{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("slot_step_minutes must be between %d and %d", minSlotStep, maxSlotStep))
	}

	row := &models.TenantSettings{
		TenantID:        tenantID,
		OpeningTime:     opening,
		ClosingTime:     closing,
		Timezone:        tz,
		SlotStepMinutes: input.SlotStepMinutes,
	}
	if err := s.repo.UpsertSettings(ctx, row); err != nil {
		return HoursPolicy{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save tenant settings")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithTenantID(ctx, tenantID.String()), "operating hours updated")
	}
	return s.Policy(ctx, tenantID)
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
