package tenants

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	SourceDefault = "default"
	SourceTenant  = "tenant"
)

// HoursPolicy is the resolved operating-hours configuration for a tenant.
// Empty opening and closing times mean the workshop is open all day.
type HoursPolicy struct {
	OpeningTime     string `json:"opening_time,omitempty"`
	ClosingTime     string `json:"closing_time,omitempty"`
	Timezone        string `json:"timezone"`
	SlotStepMinutes int    `json:"slot_step_minutes"`
	Source          string `json:"source"`
}

// AllDay reports whether no opening window is configured.
func (p HoursPolicy) AllDay() bool {
	return p.OpeningTime == "" && p.ClosingTime == ""
}

// Location loads the policy time zone.
func (p HoursPolicy) Location() (*time.Location, error) {
	if p.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(p.Timezone)
}

// Window returns the UTC bounds of the operating window for the calendar day
// year/month/day in the policy zone.
func (p HoursPolicy) Window(year int, month time.Month, day int) (time.Time, time.Time, error) {
	loc, err := p.Location()
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	midnight := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if p.AllDay() {
		return midnight.UTC(), midnight.AddDate(0, 0, 1).UTC(), nil
	}
	oh, om, err := ParseClock(p.OpeningTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	ch, cm, err := ParseClock(p.ClosingTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(year, month, day, oh, om, 0, 0, loc)
	end := time.Date(year, month, day, ch, cm, 0, 0, loc)
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("closing time %s is not after opening time %s", p.ClosingTime, p.OpeningTime)
	}
	return start.UTC(), end.UTC(), nil
}

// ParseClock parses a 24h "HH:MM" value. "24:00" is accepted as end of day.
func ParseClock(value string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, 0, fmt.Errorf("time %q must use HH:MM", value)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("time %q must use HH:MM", value)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("time %q must use HH:MM", value)
	}
	if h == 24 && m == 0 {
		return h, m, nil
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("time %q is out of range", value)
	}
	return h, m, nil
}
