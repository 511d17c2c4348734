package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/workshop-backend/internal/appointments"
	"github.com/angelmondragon/workshop-backend/internal/availability"
	"github.com/angelmondragon/workshop-backend/internal/cron"
	"github.com/angelmondragon/workshop-backend/internal/elevators"
	"github.com/angelmondragon/workshop-backend/internal/tenants"
	"github.com/angelmondragon/workshop-backend/pkg/config"
	"github.com/angelmondragon/workshop-backend/pkg/db"
	"github.com/angelmondragon/workshop-backend/pkg/instance"
	"github.com/angelmondragon/workshop-backend/pkg/locks"
	"github.com/angelmondragon/workshop-backend/pkg/logger"
	"github.com/angelmondragon/workshop-backend/pkg/metrics"
	"github.com/angelmondragon/workshop-backend/pkg/migrate"
	"github.com/angelmondragon/workshop-backend/pkg/outbox"
	"github.com/angelmondragon/workshop-backend/pkg/redis"
)

const (
	lockNameFormat = "cron-worker:%s"
	jobBatchSize   = 200
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
		Instance:    instance.ID(),
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry, err := buildRegistry(cfg, logg, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to build cron registry", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, lockName(cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"jobs":        registry.Names(),
	})
	logg.Info(ctx, "starting cron worker")

	go func() {
		if err := metrics.Serve(ctx, cfg.Service.MetricsPort, prometheus.DefaultGatherer); err != nil {
			logg.Error(ctx, "metrics listener stopped", err)
		}
	}()

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func buildRegistry(cfg *config.Config, logg *logger.Logger, dbClient *db.Client) (*cron.Registry, error) {
	conn := dbClient.DB()
	outboxRepo := outbox.NewRepository(conn)
	outboxSvc := outbox.NewService(outboxRepo, logg)
	elevatorLocks := locks.NewKeyed()

	tenantSvc, err := tenants.NewService(tenants.NewRepository(conn), cfg.Scheduling, logg)
	if err != nil {
		return nil, err
	}
	availabilitySvc, err := availability.NewService(availability.NewRepository(conn), tenantSvc, cfg.Scheduling, logg)
	if err != nil {
		return nil, err
	}
	appointmentSvc, err := appointments.NewService(appointments.ServiceParams{
		Repository:   appointments.NewRepository(conn),
		DB:           dbClient,
		Outbox:       outboxSvc,
		Availability: availabilitySvc,
		Locks:        elevatorLocks,
		Logger:       logg,
	})
	if err != nil {
		return nil, err
	}
	elevatorSvc, err := elevators.NewService(elevators.ServiceParams{
		Repository:   elevators.NewRepository(conn),
		DB:           dbClient,
		Outbox:       outboxSvc,
		Availability: availabilitySvc,
		Locks:        elevatorLocks,
		Logger:       logg,
	})
	if err != nil {
		return nil, err
	}

	reminders, err := cron.NewAppointmentRemindersJob(cron.AppointmentRemindersJobParams{
		Logger:       logg,
		Appointments: appointmentSvc,
		Window:       cfg.Cron.ReminderWindow,
		BatchSize:    jobBatchSize,
	})
	if err != nil {
		return nil, err
	}
	expiry, err := cron.NewReservationExpiryJob(cron.ReservationExpiryJobParams{
		Logger:    logg,
		Elevators: elevatorSvc,
		Grace:     cfg.Cron.ReservationGrace,
		BatchSize: jobBatchSize,
	})
	if err != nil {
		return nil, err
	}
	retention, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:              logg,
		Repository:          outboxRepo,
		Retention:           cfg.Cron.OutboxRetention,
		DeadLetters:         outbox.NewDLQRepository(conn),
		DeadLetterRetention: cfg.Cron.DLQRetention,
	})
	if err != nil {
		return nil, err
	}
	registry, err := cron.NewRegistry(reminders, expiry, retention)
	if err != nil {
		return nil, err
	}
	return registry.Select(cfg.Cron.Jobs)
}

func lockName(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockNameFormat, env)
}

