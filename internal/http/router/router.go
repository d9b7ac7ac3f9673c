package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"service-dispatch/internal/http/handlers"
	mw "service-dispatch/internal/http/middleware"
	"service-dispatch/internal/http/middleware/ratelimit"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/metrics"
)

const defaultTimeout = 5 * time.Second

// Deps groups everything the router mounts.
type Deps struct {
	Base        *handlers.Handlers
	Orders      *handlers.OrderHandler
	Assignments *handlers.AssignmentHandler
	Drivers     *handlers.DriverHandler

	Logger   logx.Logger
	Metrics  *metrics.HTTP
	Gatherer prometheus.Gatherer
	// LocationLimit throttles location pings per driver; nil disables it.
	LocationLimit *ratelimit.Middleware
	Timeout       time.Duration
}

// New constructs a chi-based http.Handler with base middleware and routes.
func New(d Deps) http.Handler {
	if d.Timeout <= 0 {
		d.Timeout = defaultTimeout
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Observability(d.Logger, d.Metrics))
	r.Use(middleware.Recoverer)

	r.Get("/ping", d.Base.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(d.Base.HealthcheckHead))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	r.NotFound(http.HandlerFunc(d.Base.NotFound))

	// long-lived sockets stay outside the request timeout
	if d.Drivers != nil {
		r.Get("/ws/drivers/{driverID}", d.Drivers.Stream)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(d.Timeout))

		if o := d.Orders; o != nil {
			r.Route("/orders", func(r chi.Router) {
				r.Post("/", o.Create)
				r.Get("/", o.List)
				r.Route("/{orderID}", func(r chi.Router) {
					r.Get("/", o.Get)
					r.Post("/auto-assign", o.AutoAssign)
					r.Post("/assign", o.Assign)
					r.Post("/pickup", o.PickUp)
					r.Post("/in-transit", o.InTransit)
					r.Post("/deliver", o.Deliver)
					r.Post("/cancel", o.Cancel)
					r.Get("/assignments", o.Assignments)
					r.Get("/payout", o.Payout)
				})
			})
			r.Get("/tracking/{trackingID}", o.Track)
		}

		if a := d.Assignments; a != nil {
			r.Route("/assignments/{assignmentID}", func(r chi.Router) {
				r.Get("/", a.Get)
				r.Post("/accept", a.Accept)
				r.Post("/reject", a.Reject)
				r.Get("/route", a.Route)
			})
		}

		if dr := d.Drivers; dr != nil {
			r.Route("/drivers", func(r chi.Router) {
				r.Get("/", dr.List)
				r.Get("/nearby", dr.Nearby)
				r.Route("/{driverID}", func(r chi.Router) {
					r.Get("/", dr.Get)
					r.Put("/", dr.UpsertProfile)
					r.Put("/status", dr.SetStatus)
					r.Get("/locations", dr.History)
					if d.LocationLimit != nil {
						r.With(d.LocationLimit.WithKey(ratelimit.DriverKey("driverID")).Handler()).
							Post("/location", dr.UpdateLocation)
					} else {
						r.Post("/location", dr.UpdateLocation)
					}
				})
			})
		}
	})

	return r
}
