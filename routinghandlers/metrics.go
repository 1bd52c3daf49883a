package routinghandlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vitalvas/flight/routing"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace prefixes every metric name. Defaults to "flight".
	Namespace string

	// Subsystem follows the namespace in metric names. Defaults to "http".
	Subsystem string

	// Registerer receives the collectors. Defaults to
	// prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer

	// Buckets overrides the request duration histogram buckets. Defaults
	// to prometheus.DefBuckets.
	Buckets []float64
}

// Metrics holds the request collectors of a collector's pipeline.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
}

// NewMetrics creates and registers the request metrics:
//
//	<namespace>_<subsystem>_requests_total{method,route,status}
//	<namespace>_<subsystem>_request_duration_seconds{method,route}
//	<namespace>_<subsystem>_requests_in_flight
//
// Registration fails when the collectors are already registered on the
// Registerer.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "flight"
	}

	subsystem := cfg.Subsystem
	if subsystem == "" {
		subsystem = "http"
	}

	reg := cfg.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	buckets := cfg.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_total",
				Help:      "Total number of dispatched requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "request_duration_seconds",
				Help:      "Request dispatch duration in seconds",
				Buckets:   buckets,
			},
			[]string{"method", "route"},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_in_flight",
				Help:      "Number of requests currently being dispatched",
			},
		),
	}

	for _, c := range []prometheus.Collector{m.requestsTotal, m.requestDuration, m.inFlight} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Middleware returns a middleware recording every request that passes
// through it. The route label is the route name, or its pattern for
// unnamed routes. A failed request is recorded with the status that
// StatusCode derives from its error.
func (m *Metrics) Middleware() routing.Middleware {
	return routing.MiddlewareFunc(func(r *http.Request, next routing.RequestHandler) (*routing.Response, error) {
		start := time.Now()

		m.inFlight.Inc()
		defer m.inFlight.Dec()

		res, err := next.Handle(r)

		route := routeLabel(r)
		status := http.StatusOK
		switch {
		case err != nil:
			status = StatusCode(err)
		case res != nil:
			status = res.StatusCode()
		}

		m.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())

		return res, err
	})
}

func routeLabel(r *http.Request) string {
	route := routing.CurrentRoute(r)
	if route == nil {
		return "unmatched"
	}
	if name := route.GetName(); name != "" {
		return name
	}
	return route.GetPattern()
}
