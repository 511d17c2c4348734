package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/workshop-backend/pkg/logger"
)

const defaultExpiryBatch = 200

type reservationExpirer interface {
	ExpireReservations(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

type ReservationExpiryJobParams struct {
	Logger    *logger.Logger
	Elevators reservationExpirer
	Grace     time.Duration
	BatchSize int
}

// NewReservationExpiryJob marks active reservations whose window ended more
// than Grace ago, and never turned into a usage, as expired.
func NewReservationExpiryJob(params ReservationExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Elevators == nil {
		return nil, fmt.Errorf("elevator service required")
	}
	if params.Grace < 0 {
		return nil, fmt.Errorf("grace must not be negative")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultExpiryBatch
	}
	return &reservationExpiryJob{
		logg:     params.Logger,
		elevator: params.Elevators,
		grace:    params.Grace,
		batch:    batch,
		now:      time.Now,
	}, nil
}

type reservationExpiryJob struct {
	logg     *logger.Logger
	elevator reservationExpirer
	grace    time.Duration
	batch    int
	now      func() time.Time
}

func (j *reservationExpiryJob) Name() string { return "reservation-expiry" }

func (j *reservationExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.grace)
	total := 0
	for {
		n, err := j.elevator.ExpireReservations(ctx, cutoff, j.batch)
		if err != nil {
			return fmt.Errorf("reservation expiry: %w", err)
		}
		total += n
		if n < j.batch {
			break
		}
	}
	if total > 0 {
		logCtx := j.logg.WithFields(ctx, map[string]any{
			"cutoff":  cutoff.Format(time.RFC3339),
			"expired": total,
		})
		j.logg.Info(logCtx, "stale reservations expired")
	}
	return nil
}
