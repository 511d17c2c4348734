package tenants

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/workshop-backend/pkg/config"
	"github.com/angelmondragon/workshop-backend/pkg/db/dbtest"
	pkgerrors "github.com/angelmondragon/workshop-backend/pkg/errors"
)

func defaultScheduling() config.SchedulingConfig {
	return config.SchedulingConfig{
		OpeningTime:     "08:00",
		ClosingTime:     "18:00",
		Timezone:        "UTC",
		SlotStepMinutes: 30,
	}
}

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewRepository(dbtest.Open(t)), defaultScheduling(), nil)
	require.NoError(t, err)
	return svc
}

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }

func TestPolicyFallsBackToDefaults(t *testing.T) {
	svc := newTestService(t)
	policy, err := svc.Policy(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, SourceDefault, policy.Source)
	assert.Equal(t, "08:00", policy.OpeningTime)
	assert.Equal(t, 30, policy.SlotStepMinutes)
}

func TestUpdateHoursPersistsAndOverrides(t *testing.T) {
	svc := newTestService(t)
	tenantID := uuid.New()
	ctx := context.Background()

	policy, err := svc.UpdateHours(ctx, tenantID, UpdateHoursInput{
		OpeningTime:     strPtr("07:30"),
		ClosingTime:     strPtr("16:00"),
		Timezone:        "America/Sao_Paulo",
		SlotStepMinutes: intPtr(15),
	})
	require.NoError(t, err)
	assert.Equal(t, SourceTenant, policy.Source)
	assert.Equal(t, "07:30", policy.OpeningTime)
	assert.Equal(t, 15, policy.SlotStepMinutes)

	policy, err = svc.UpdateHours(ctx, tenantID, UpdateHoursInput{Timezone: "UTC"})
	require.NoError(t, err)
	assert.True(t, policy.AllDay(), "clearing both times means open all day")
	assert.Equal(t, 30, policy.SlotStepMinutes, "unset step falls back to the default")

	other, err := svc.Policy(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, SourceDefault, other.Source, "settings are tenant scoped")
}

func TestUpdateHoursValidation(t *testing.T) {
	svc := newTestService(t)
	cases := map[string]UpdateHoursInput{
		"only opening":     {OpeningTime: strPtr("08:00")},
		"closing first":    {OpeningTime: strPtr("18:00"), ClosingTime: strPtr("08:00")},
		"bad clock":        {OpeningTime: strPtr("8am"), ClosingTime: strPtr("18:00")},
		"unknown timezone": {Timezone: "Mars/Olympus"},
		"step too small":   {SlotStepMinutes: intPtr(1)},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.UpdateHours(context.Background(), uuid.New(), input)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}
}

func TestWindowUsesPolicyZone(t *testing.T) {
	policy := HoursPolicy{OpeningTime: "08:00", ClosingTime: "18:00", Timezone: "America/Sao_Paulo"}
	start, end, err := policy.Window(2024, time.January, 15)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 11, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 1, 15, 21, 0, 0, 0, time.UTC), end)

	allDay := HoursPolicy{Timezone: "UTC"}
	start, end, err = allDay.Window(2024, time.January, 15)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("24:00")
	require.NoError(t, err)
	assert.Equal(t, 24, h)
	assert.Equal(t, 0, m)

	for _, bad := range []string{"", "7:00", "25:00", "12:60", "aa:bb"} {
		_, _, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}
