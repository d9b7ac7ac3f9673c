package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewRateLimitExceededTotal returns a Prometheus counter for the number of rejected HTTP requests due to rate limiting
func NewRateLimitExceededTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_exceeded_total",
		Help: "Total number of rejected HTTP requests due to rate limiting",
	})
}

// NewNotifyRetriesTotal returns a Prometheus counter for retry attempts of driver notifications
func NewNotifyRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notify_retries_total",
		Help: "Total number of retry attempts performed by notification senders",
	})
}

// NewKafkaMessagesTotal counts consumed order-intake messages by outcome.
func NewKafkaMessagesTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kafka_order_messages_total",
		Help: "Total number of consumed order events by result",
	}, []string{"result"})
}

// Dispatch groups the counters of the dispatch coordinator.
type Dispatch struct {
	Offers        prometheus.Counter
	NoCandidate   prometheus.Counter
	Escalations   prometheus.Counter
	OfferTimeouts prometheus.Counter
	Rejections    prometheus.Counter
	Deliveries    prometheus.Counter
	Cancellations prometheus.Counter
	NotifyDropped prometheus.Counter
}

func dispatchCounter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "dispatch",
		Name:      name,
		Help:      help,
	})
}

// NewDispatch creates unregistered dispatch counters.
func NewDispatch() *Dispatch {
	return &Dispatch{
		Offers:        dispatchCounter("offers_total", "Offers sent to drivers"),
		NoCandidate:   dispatchCounter("no_candidate_total", "Auto-assign attempts that found no online driver nearby"),
		Escalations:   dispatchCounter("escalations_total", "Orders escalated to operators after max attempts"),
		OfferTimeouts: dispatchCounter("offer_timeouts_total", "Offers that expired without an answer"),
		Rejections:    dispatchCounter("offer_rejections_total", "Offers rejected by drivers"),
		Deliveries:    dispatchCounter("deliveries_total", "Orders delivered"),
		Cancellations: dispatchCounter("cancellations_total", "Orders cancelled"),
		NotifyDropped: dispatchCounter("notifications_dropped_total", "Notifications dropped because every send slot was busy"),
	}
}

// Collectors lists every counter for registration.
func (d *Dispatch) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		d.Offers, d.NoCandidate, d.Escalations, d.OfferTimeouts,
		d.Rejections, d.Deliveries, d.Cancellations, d.NotifyDropped,
	}
}

// HTTP groups request counters and latency histograms labeled by route pattern.
type HTTP struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewHTTP creates unregistered HTTP metrics.
func NewHTTP() *HTTP {
	labels := []string{"method", "path", "status"}
	return &HTTP{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, labels),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, labels),
	}
}

// Collectors returns the HTTP collectors for registration.
func (m *HTTP) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Requests, m.Duration}
}
