package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

type Manager struct {
	// http
	CounterRequests            *prometheus.CounterVec
	CounterHandleRequestPanic  prometheus.Counter
	CounterRateLimitedRequests prometheus.Counter
	GaugeRequests              prometheus.Gauge
	HistogramRequestDuration   *prometheus.HistogramVec

	// domain
	CounterPlansGenerated   prometheus.Counter
	CounterItemsCompleted   *prometheus.CounterVec
	CounterLogins           *prometheus.CounterVec
	HistogramPlanGeneration prometheus.Histogram

	GaugeLifeSignal prometheus.Gauge
}

func NewTestManager() *Manager {
	m, _ := NewTestManagerAndRegistry()
	return m
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("fitplan", "test_server", reg), reg
}

// NewManager registers all service metrics on reg, named <namespace>_<subsystem>_<name>.
func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	f := metricFactory{
		factory:   promauto.With(reg),
		namespace: namespace,
		subsystem: subsystem,
	}

	return &Manager{
		CounterRequests:            f.counterVec("request", "The total number of incoming requests", "method", "status"),
		CounterHandleRequestPanic:  f.counter("handle_request_panic", "The total number of serve request panics"),
		CounterRateLimitedRequests: f.counter("rate_limited_requests", "The total number of rate limited requests"),
		GaugeRequests:              f.gauge("current_requests", "Current number of open connections"),
		HistogramRequestDuration: f.factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Histogram of response time for requests in seconds",
			Buckets:   requestDurationBuckets,
		}, []string{"route", "method", "status_code"}),

		CounterPlansGenerated: f.counter("plans_generated", "The total number of generated weekly plans"),
		CounterItemsCompleted: f.counterVec("plan_items_completed", "The total number of plan exercises marked done and meals marked taken", "kind"),
		CounterLogins:         f.counterVec("logins", "Login attempts by outcome", "outcome"),
		HistogramPlanGeneration: f.factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "plan_generation_seconds",
			Help:      "Time spent assembling a weekly plan from the catalog",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),

		GaugeLifeSignal: f.gauge("life_signal", "Shows whether the service is alive"),
	}
}

type metricFactory struct {
	factory   promauto.Factory
	namespace string
	subsystem string
}

func (f metricFactory) counter(name, help string) prometheus.Counter {
	return f.factory.NewCounter(prometheus.CounterOpts{
		Namespace: f.namespace,
		Subsystem: f.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (f metricFactory) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return f.factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: f.namespace,
		Subsystem: f.subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (f metricFactory) gauge(name, help string) prometheus.Gauge {
	return f.factory.NewGauge(prometheus.GaugeOpts{
		Namespace: f.namespace,
		Subsystem: f.subsystem,
		Name:      name,
		Help:      help,
	})
}
