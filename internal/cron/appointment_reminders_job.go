package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/workshop-backend/pkg/logger"
)

const defaultReminderBatch = 200

type reminderSender interface {
	SendDueReminders(ctx context.Context, window time.Duration, limit int) (int, error)
}

type AppointmentRemindersJobParams struct {
	Logger       *logger.Logger
	Appointments reminderSender
	Window       time.Duration
	BatchSize    int
}

// NewAppointmentRemindersJob flags confirmed appointments starting within
// Window and queues their reminder events.
func NewAppointmentRemindersJob(params AppointmentRemindersJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Appointments == nil {
		return nil, fmt.Errorf("appointment service required")
	}
	if params.Window <= 0 {
		return nil, fmt.Errorf("reminder window must be positive")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultReminderBatch
	}
	return &appointmentRemindersJob{
		logg:   params.Logger,
		sender: params.Appointments,
		window: params.Window,
		batch:  batch,
	}, nil
}

type appointmentRemindersJob struct {
	logg   *logger.Logger
	sender reminderSender
	window time.Duration
	batch  int
}

func (j *appointmentRemindersJob) Name() string { return "appointment-reminders" }

func (j *appointmentRemindersJob) Run(ctx context.Context) error {
	sent, err := j.sender.SendDueReminders(ctx, j.window, j.batch)
	if err != nil {
		return fmt.Errorf("appointment reminders: %w", err)
	}
	if sent > 0 {
		j.logg.Info(j.logg.WithField(ctx, "reminders", sent), "appointment reminders queued")
	}
	return nil
}
