package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/workshop-backend/api/controllers"
	"github.com/angelmondragon/workshop-backend/api/middleware"
	"github.com/angelmondragon/workshop-backend/internal/appointments"
	"github.com/angelmondragon/workshop-backend/internal/availability"
	"github.com/angelmondragon/workshop-backend/internal/customers"
	"github.com/angelmondragon/workshop-backend/internal/elevators"
	"github.com/angelmondragon/workshop-backend/internal/parts"
	"github.com/angelmondragon/workshop-backend/internal/quotes"
	"github.com/angelmondragon/workshop-backend/internal/serviceorders"
	"github.com/angelmondragon/workshop-backend/internal/tenants"
	"github.com/angelmondragon/workshop-backend/pkg/config"
	"github.com/angelmondragon/workshop-backend/pkg/enums"
	"github.com/angelmondragon/workshop-backend/pkg/logger"
	"github.com/angelmondragon/workshop-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/workshop-backend/pkg/redis"
)

// Services groups the domain services exposed over HTTP.
type Services struct {
	Appointments  appointments.Service
	Availability  availability.Service
	Elevators     elevators.Service
	Quotes        quotes.Service
	ServiceOrders serviceorders.Service
	Parts         parts.Service
	Customers     customers.Service
	Tenants       tenants.Service
}

type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       *pkgredis.Client
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer
	Services    Services
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger
	svc := p.Services

	var (
		idempotencyStore pkgredis.IdempotencyStore
		rateLimiter      pkgredis.RateLimiter
		redisPinger      controllers.Pinger
	)
	if p.Redis != nil {
		idempotencyStore = p.Redis
		rateLimiter = p.Redis
		redisPinger = p.Redis
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Recoverer(logg),
		middleware.Logging(logg, p.HTTPMetrics),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    p.DB,
			"redis": redisPinger,
		}))
	})
	if p.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(p.Gatherer))
	}

	managers := middleware.RequireRole(logg, enums.RoleAdmin, enums.RoleManager)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.TenantWriteLimit(cfg.RateLimit, rateLimiter, logg))
		r.Use(middleware.Idempotency(idempotencyStore, cfg.Eventing.IdempotencyTTL, logg))

		r.Route("/appointments", func(r chi.Router) {
			r.Post("/", controllers.AppointmentCreate(svc.Appointments, logg))
			r.Get("/", controllers.AppointmentList(svc.Appointments, logg))
			r.Post("/available-slots", controllers.AvailableSlots(svc.Availability, logg))
			r.Post("/check-availability", controllers.CheckAvailability(svc.Availability, logg))
			r.Route("/{appointmentId}", func(r chi.Router) {
				r.Get("/", controllers.AppointmentGet(svc.Appointments, logg))
				r.Patch("/", controllers.AppointmentUpdate(svc.Appointments, logg))
				r.Post("/reschedule", controllers.AppointmentReschedule(svc.Appointments, logg))
				r.Post("/transition", controllers.AppointmentTransition(svc.Appointments, logg))
			})
		})

		r.Route("/elevators", func(r chi.Router) {
			r.With(managers).Post("/", controllers.ElevatorCreate(svc.Elevators, logg))
			r.Get("/", controllers.ElevatorList(svc.Elevators, logg))
			r.Delete("/reservations/{reservationId}", controllers.ElevatorCancelReservation(svc.Elevators, logg))
			r.Route("/{elevatorId}", func(r chi.Router) {
				r.Get("/", controllers.ElevatorGet(svc.Elevators, logg))
				r.With(managers).Patch("/status", controllers.ElevatorSetStatus(svc.Elevators, logg))
				r.Post("/reserve", controllers.ElevatorReserve(svc.Elevators, logg))
				r.Post("/start-usage", controllers.ElevatorStartUsage(svc.Elevators, logg))
				r.Post("/end-usage", controllers.ElevatorEndUsage(svc.Elevators, logg))
				r.Get("/usages", controllers.ElevatorUsages(svc.Elevators, logg))
			})
		})

		r.Route("/quotes", func(r chi.Router) {
			r.Post("/", controllers.QuoteCreate(svc.Quotes, logg))
			r.Get("/", controllers.QuoteList(svc.Quotes, logg))
			r.Route("/{quoteId}", func(r chi.Router) {
				r.Get("/", controllers.QuoteGet(svc.Quotes, logg))
				r.Post("/assign-mechanic", controllers.QuoteAssignMechanic(svc.Quotes, logg))
				r.Post("/submit-diagnosis", controllers.QuoteSubmitDiagnosis(svc.Quotes, logg))
				r.Post("/complete-diagnosis", controllers.QuoteCompleteDiagnosis(svc.Quotes, logg))
				r.Post("/request-approval", controllers.QuoteRequestApproval(svc.Quotes, logg))
				r.Post("/approve", controllers.QuoteApprove(svc.Quotes, logg))
				r.Post("/reject", controllers.QuoteReject(svc.Quotes, logg))
				r.Post("/convert", controllers.QuoteConvert(svc.Quotes, logg))
			})
		})

		r.Route("/service-orders", func(r chi.Router) {
			r.Post("/", controllers.ServiceOrderCreate(svc.ServiceOrders, logg))
			r.Get("/", controllers.ServiceOrderList(svc.ServiceOrders, logg))
			r.Get("/{serviceOrderId}", controllers.ServiceOrderGet(svc.ServiceOrders, logg))
			r.Post("/{serviceOrderId}/transition", controllers.ServiceOrderTransition(svc.ServiceOrders, logg))
		})

		r.Route("/parts", func(r chi.Router) {
			r.Post("/", controllers.PartCreate(svc.Parts, logg))
			r.Get("/", controllers.PartList(svc.Parts, logg))
			r.Get("/{partId}", controllers.PartGet(svc.Parts, logg))
			r.Patch("/{partId}", controllers.PartUpdate(svc.Parts, logg))
			r.Post("/{partId}/adjust", controllers.PartAdjust(svc.Parts, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Post("/", controllers.CustomerCreate(svc.Customers, logg))
			r.Get("/", controllers.CustomerList(svc.Customers, logg))
			r.Get("/{customerId}", controllers.CustomerGet(svc.Customers, logg))
			r.Post("/{customerId}/vehicles", controllers.VehicleCreate(svc.Customers, logg))
			r.Get("/{customerId}/vehicles", controllers.VehicleList(svc.Customers, logg))
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/hours", controllers.SettingsHoursGet(svc.Tenants, logg))
			r.With(managers).Put("/hours", controllers.SettingsHoursUpdate(svc.Tenants, logg))
		})
	})

	return r
}
