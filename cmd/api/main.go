package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/workshop-backend/api"
	"github.com/angelmondragon/workshop-backend/api/routes"
	"github.com/angelmondragon/workshop-backend/internal/appointments"
	"github.com/angelmondragon/workshop-backend/internal/availability"
	"github.com/angelmondragon/workshop-backend/internal/customers"
	"github.com/angelmondragon/workshop-backend/internal/elevators"
	"github.com/angelmondragon/workshop-backend/internal/parts"
	"github.com/angelmondragon/workshop-backend/internal/quotes"
	"github.com/angelmondragon/workshop-backend/internal/serviceorders"
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

const shutdownTimeout = 20 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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
		if err := multierr.Combine(redisClient.Close(), dbClient.Close()); err != nil {
			logg.Error(context.Background(), "error closing connections", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	schedulingMetrics := metrics.NewSchedulingMetrics(registry)

	services, err := buildServices(cfg, logg, dbClient, schedulingMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to build services", err)
		os.Exit(1)
	}

	handler := routes.NewRouter(routes.RouterParams{
		Config:      cfg,
		Logger:      logg,
		DB:          dbClient,
		Redis:       redisClient,
		HTTPMetrics: httpMetrics,
		Gatherer:    registry,
		Services:    services,
	})
	server := api.NewServer(cfg, os.Getenv("PORT"), handler)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": server.Addr,
	})
	logg.Info(ctx, "starting api server")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server shut down gracefully")
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, m *metrics.SchedulingMetrics) (routes.Services, error) {
	conn := dbClient.DB()
	outboxSvc := outbox.NewService(outbox.NewRepository(conn), logg)
	elevatorLocks := locks.NewKeyed()

	tenantSvc, err := tenants.NewService(tenants.NewRepository(conn), cfg.Scheduling, logg)
	if err != nil {
		return routes.Services{}, err
	}
	availabilitySvc, err := availability.NewService(availability.NewRepository(conn), tenantSvc, cfg.Scheduling, logg)
	if err != nil {
		return routes.Services{}, err
	}
	appointmentSvc, err := appointments.NewService(appointments.ServiceParams{
		Repository:   appointments.NewRepository(conn),
		DB:           dbClient,
		Outbox:       outboxSvc,
		Availability: availabilitySvc,
		Locks:        elevatorLocks,
		Metrics:      m,
		Logger:       logg,
	})
	if err != nil {
		return routes.Services{}, err
	}
	appointmentSvc.OnTransition(func(ctx context.Context, event appointments.TransitionEvent) {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"tenant_id":      event.TenantID.String(),
			"appointment_id": event.Appointment.ID.String(),
			"from":           event.From,
			"to":             event.To,
		}), "appointment status changed")
	})

	elevatorSvc, err := elevators.NewService(elevators.ServiceParams{
		Repository:   elevators.NewRepository(conn),
		DB:           dbClient,
		Outbox:       outboxSvc,
		Availability: availabilitySvc,
		Locks:        elevatorLocks,
		Metrics:      m,
		Logger:       logg,
	})
	if err != nil {
		return routes.Services{}, err
	}
	orderSvc, err := serviceorders.NewService(serviceorders.NewRepository(conn), dbClient, outboxSvc, m, logg)
	if err != nil {
		return routes.Services{}, err
	}
	quoteSvc, err := quotes.NewService(quotes.ServiceParams{
		Repository:    quotes.NewRepository(conn),
		DB:            dbClient,
		Outbox:        outboxSvc,
		Elevators:     elevatorSvc,
		ServiceOrders: orderSvc,
		Locks:         elevatorLocks,
		Metrics:       m,
		Logger:        logg,
	})
	if err != nil {
		return routes.Services{}, err
	}
	partSvc, err := parts.NewService(parts.NewRepository(conn), dbClient, outboxSvc, logg)
	if err != nil {
		return routes.Services{}, err
	}
	customerSvc, err := customers.NewService(customers.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Appointments:  appointmentSvc,
		Availability:  availabilitySvc,
		Elevators:     elevatorSvc,
		Quotes:        quoteSvc,
		ServiceOrders: orderSvc,
		Parts:         partSvc,
		Customers:     customerSvc,
		Tenants:       tenantSvc,
	}, nil
}
