package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics groups the service's Prometheus collectors
type Metrics struct {
	Registry *prometheus.Registry

	RequestCounter *prometheus.CounterVec
	RequestLatency *prometheus.HistogramVec

	SalesRecorded          prometheus.Counter
	SaleLineItems          prometheus.Counter
	StockReconcileFailures prometheus.Counter
	SaleCompensations      *prometheus.CounterVec
	EventsPublished        *prometheus.CounterVec
}

// New builds the collectors and registers them on a private registry so tests can create
// as many instances as they like.
func New() *Metrics {
	m := &Metrics{
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "godi_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "godi_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		SalesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "godi_sales_recorded_total",
			Help: "Sale transactions persisted with all line items",
		}),
		SaleLineItems: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "godi_sale_line_items_total",
			Help: "Sale line items persisted",
		}),
		StockReconcileFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "godi_stock_reconciliation_failures_total",
			Help: "Stock decrements that failed after a sale was recorded",
		}),
		SaleCompensations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "godi_sale_compensations_total",
				Help: "Compensating header deletes after a failed line-item write",
			},
			[]string{"result"},
		),
		EventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "godi_change_events_total",
				Help: "Change events handed to publishers",
			},
			[]string{"type", "result"},
		),
	}

	m.Registry = prometheus.NewRegistry()
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestCounter,
		m.RequestLatency,
		m.SalesRecorded,
		m.SaleLineItems,
		m.StockReconcileFailures,
		m.SaleCompensations,
		m.EventsPublished,
	)
	return m
}
