// Package metrics exposes the backend traffic of resources to Prometheus.
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/SaurabhAlex/school-management-web/core/resource"
)

const namespace = "school_portal"

// Observer implements resource.Observer with Prometheus collectors.
type Observer struct {
	fetches  *prometheus.CounterVec
	retries  *prometheus.CounterVec
	commands *prometheus.CounterVec
	stale    *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

var _ resource.Observer = (*Observer)(nil)

// NewObserver registers its collectors with reg.
func NewObserver(reg prometheus.Registerer) (*Observer, error) {
	o := &Observer{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resource_fetches_total",
			Help:      "List requests per resource and outcome.",
		}, []string{"resource", "outcome"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resource_fetch_retries_total",
			Help:      "List requests that needed their retry.",
		}, []string{"resource"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resource_commands_total",
			Help:      "Create, update and delete requests per resource and outcome.",
		}, []string{"resource", "op", "outcome"}),
		stale: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resource_stale_responses_total",
			Help:      "List responses dropped because a newer request was issued.",
		}, []string{"resource"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resource_request_duration_seconds",
			Help:      "Duration of backend round trips, retries included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource", "op"}),
	}

	for _, c := range []prometheus.Collector{o.fetches, o.retries, o.commands, o.stale, o.latency} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *Observer) FetchDone(key string, attempts int, err error, took time.Duration) {
	key = family(key)
	o.fetches.WithLabelValues(key, outcome(err)).Inc()
	if attempts > 1 {
		o.retries.WithLabelValues(key).Inc()
	}
	o.latency.WithLabelValues(key, "list").Observe(took.Seconds())
}

func (o *Observer) CommandDone(key, op string, err error, took time.Duration) {
	key = family(key)
	o.commands.WithLabelValues(key, op, outcome(err)).Inc()
	o.latency.WithLabelValues(key, op).Observe(took.Seconds())
}

func (o *Observer) StaleDiscarded(key string) {
	o.stale.WithLabelValues(family(key)).Inc()
}

// family drops the qualifier of keys such as "attendance:2024-05-02".
func family(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
