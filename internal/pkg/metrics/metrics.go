package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess      = "success"
	OutcomeInsufficient = "insufficient"
	OutcomeOverRelease  = "over_release"
	OutcomeNotFound     = "not_found"
	OutcomeInvalid      = "invalid"
	OutcomeError        = "error"
)

// Metrics holds every collector the service exports. A nil *Metrics records nothing.
type Metrics struct {
	RPCRequestsTotal   *prometheus.CounterVec
	RPCRequestDuration *prometheus.HistogramVec
	LedgerOperations   *prometheus.CounterVec
	StockMoved         *prometheus.CounterVec
	CatalogOperations  *prometheus.CounterVec
	CacheLookups       *prometheus.CounterVec
	EventsConsumed     *prometheus.CounterVec
}

// New registers the collectors on reg with names prefixed by prefix.
func New(prefix string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RPCRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_grpc_requests_total",
				Help: "Total number of gRPC requests",
			},
			[]string{"method", "code"},
		),
		RPCRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_grpc_request_duration_seconds",
				Help:    "Duration of gRPC requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		LedgerOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_ledger_operations_total",
				Help: "Total number of inventory ledger operations by outcome",
			},
			[]string{"operation", "scope", "outcome"},
		),
		StockMoved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_stock_units_moved_total",
				Help: "Units moved by committed ledger operations",
			},
			[]string{"scope", "movement_type"},
		),
		CatalogOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_catalog_operations_total",
				Help: "Total number of catalog write operations",
			},
			[]string{"operation"},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_cache_lookups_total",
				Help: "Total number of entry cache lookups by result",
			},
			[]string{"result"},
		),
		EventsConsumed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_events_consumed_total",
				Help: "Total number of broker events handled by type and outcome",
			},
			[]string{"event_type", "outcome"},
		),
	}
}

func (m *Metrics) ObserveRPC(method, code string, start time.Time) {
	if m == nil {
		return
	}
	m.RPCRequestsTotal.WithLabelValues(method, code).Inc()
	m.RPCRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

func (m *Metrics) RecordLedgerOperation(operation, scope, outcome string) {
	if m == nil {
		return
	}
	m.LedgerOperations.WithLabelValues(operation, scope, outcome).Inc()
}

// RecordStockMovement counts units moved. Negative adjustments count by magnitude.
func (m *Metrics) RecordStockMovement(scope, movementType string, quantity int64) {
	if m == nil {
		return
	}
	if quantity < 0 {
		quantity = -quantity
	}
	m.StockMoved.WithLabelValues(scope, movementType).Add(float64(quantity))
}

func (m *Metrics) RecordCatalogOperation(operation string) {
	if m == nil {
		return
	}
	m.CatalogOperations.WithLabelValues(operation).Inc()
}

func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordEvent(eventType, outcome string) {
	if m == nil {
		return
	}
	m.EventsConsumed.WithLabelValues(eventType, outcome).Inc()
}
