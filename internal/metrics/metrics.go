package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics stores Prometheus collectors used across the service.
type Metrics struct {
	CommandsHandled *prometheus.CounterVec
	Searches        *prometheus.CounterVec
	SearchLatency   *prometheus.HistogramVec
	Unlocks         *prometheus.CounterVec
	OrdersCreated   prometheus.Counter
	OrdersFulfilled prometheus.Counter
	Errors          *prometheus.CounterVec
}

var (
	regOnce         sync.Once
	metricsInstance *Metrics
)

// Registry builds and registers the metrics singleton with optional namespace.
func Registry(namespace string) *Metrics {
	regOnce.Do(func() {
		metricsInstance = &Metrics{
			CommandsHandled: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_handled_total",
				Help:      "Total chat commands handled by command name.",
			}, []string{"command"}),
			Searches: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "searches_total",
				Help:      "Total catalog searches by kind and outcome.",
			}, []string{"kind", "status"}),
			SearchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_duration_seconds",
				Help:      "Latency distribution for catalog searches.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"kind"}),
			Unlocks: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "unlocks_total",
				Help:      "Total contact unlock attempts by outcome.",
			}, []string{"outcome"}),
			OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "credit_orders_created_total",
				Help:      "Total credit top-up orders created.",
			}),
			OrdersFulfilled: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "credit_orders_fulfilled_total",
				Help:      "Total credit top-up orders fulfilled.",
			}),
			Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total errors grouped by component.",
			}, []string{"component"}),
		}

		prometheus.MustRegister(
			metricsInstance.CommandsHandled,
			metricsInstance.Searches,
			metricsInstance.SearchLatency,
			metricsInstance.Unlocks,
			metricsInstance.OrdersCreated,
			metricsInstance.OrdersFulfilled,
			metricsInstance.Errors,
		)
	})
	return metricsInstance
}
