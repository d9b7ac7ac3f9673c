package app

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"service-dispatch/internal/metrics"
)

type metricsOut struct {
	dig.Out

	RateLimitExceededTotal prometheus.Counter `name:"rate_limit_exceeded_total"`
	NotifyRetriesTotal     prometheus.Counter `name:"notify_retries_total"`
	KafkaMessagesTotal     *prometheus.CounterVec
	Dispatch               *metrics.Dispatch
	HTTP                   *metrics.HTTP
}

// register adds c to the default registerer or returns the collector already registered under its name.
func register[T prometheus.Collector](name string, c T) (T, error) {
	if err := prometheus.DefaultRegisterer.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, fmt.Errorf("register %s: %w", name, err)
	}
	return c, nil
}

func provideMetrics() (metricsOut, error) {
	var (
		out metricsOut
		err error
	)
	if out.RateLimitExceededTotal, err = register("rate_limit_exceeded_total", metrics.NewRateLimitExceededTotal()); err != nil {
		return out, err
	}
	if out.NotifyRetriesTotal, err = register("notify_retries_total", metrics.NewNotifyRetriesTotal()); err != nil {
		return out, err
	}
	if out.KafkaMessagesTotal, err = register("kafka_order_messages_total", metrics.NewKafkaMessagesTotal()); err != nil {
		return out, err
	}

	d := metrics.NewDispatch()
	for _, c := range []*prometheus.Counter{
		&d.Offers, &d.NoCandidate, &d.Escalations, &d.OfferTimeouts,
		&d.Rejections, &d.Deliveries, &d.Cancellations,
	} {
		if *c, err = register("dispatch counter", *c); err != nil {
			return out, err
		}
	}
	out.Dispatch = d

	h := metrics.NewHTTP()
	if h.Requests, err = register("http_requests_total", h.Requests); err != nil {
		return out, err
	}
	if h.Duration, err = register("http_request_duration_seconds", h.Duration); err != nil {
		return out, err
	}
	out.HTTP = h
	return out, nil
}
