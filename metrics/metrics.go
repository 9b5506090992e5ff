// Package metrics provides a Prometheus-backed interceptor that observes
// every dispatched call: totals by path and outcome, and a latency
// histogram by path.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/dalmesh/core"
	"github.com/hupe1980/dalmesh/middleware"
)

// Options configures the interceptor.
type Options struct {
	// Namespace prefixes every metric name. Defaults to "dalmesh".
	Namespace string

	// Registerer receives the collectors. Defaults to
	// prometheus.DefaultRegisterer; pass a private registry in tests.
	Registerer prometheus.Registerer
}

// Interceptor records call counts and durations. It is an ordinary
// middleware.Interceptor; add it to the user middleware list to have it
// observe everything that runs inside it, including resolution.
type Interceptor struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates and registers the interceptor's collectors.
func New(optFns ...func(o *Options)) (*Interceptor, error) {
	opts := Options{
		Namespace:  "dalmesh",
		Registerer: prometheus.DefaultRegisterer,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	calls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Subsystem: "dispatch",
			Name:      "calls_total",
			Help:      "Total number of dispatched calls.",
		},
		[]string{"path", "status"},
	)

	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: opts.Namespace,
			Subsystem: "dispatch",
			Name:      "duration_seconds",
			Help:      "Dispatch duration in seconds, resolution included.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	if opts.Registerer != nil {
		if err := opts.Registerer.Register(calls); err != nil {
			return nil, err
		}
		if err := opts.Registerer.Register(duration); err != nil {
			return nil, err
		}
	}

	return &Interceptor{calls: calls, duration: duration}, nil
}

// Intercept implements middleware.Interceptor.
func (i *Interceptor) Intercept(req *core.Request, next middleware.Handler) (any, error) {
	start := time.Now()
	result, err := next(req)

	path := req.PathString()
	status := "ok"
	if err != nil {
		status = "error"
	}
	i.calls.WithLabelValues(path, status).Inc()
	i.duration.WithLabelValues(path).Observe(time.Since(start).Seconds())

	return result, err
}
