package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	compressionSkipped *prometheus.CounterVec
	llmRequests        *prometheus.CounterVec
	actions            *prometheus.CounterVec
	stockUpdates       *prometheus.CounterVec
	trackingLookups    *prometheus.CounterVec
}

// New registers the service counters on the provided registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		compressionSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_compression_skipped_total",
			Help: "Assistant turns sent without context compression.",
		}, []string{"reason"}),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_llm_requests_total",
			Help: "Calls made to the language model.",
		}, []string{"mode", "outcome"}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_actions_total",
			Help: "Action directives found in assistant replies.",
		}, []string{"action", "outcome"}),
		stockUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_updates_total",
			Help: "Stock ledger updates by movement type.",
		}, []string{"movement_type", "outcome"}),
		trackingLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracking_lookups_total",
			Help: "Carrier tracking lookups by data source.",
		}, []string{"source"}),
	}
	reg.MustRegister(m.compressionSkipped, m.llmRequests, m.actions, m.stockUpdates, m.trackingLookups)
	return m
}

func (m *Metrics) CompressionSkipped(reason string) {
	if m == nil || m.compressionSkipped == nil {
		return
	}
	m.compressionSkipped.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *Metrics) LLMRequest(mode, outcome string) {
	if m == nil || m.llmRequests == nil {
		return
	}
	m.llmRequests.WithLabelValues(normalizeLabel(mode), normalizeLabel(outcome)).Inc()
}

func (m *Metrics) Action(action, outcome string) {
	if m == nil || m.actions == nil {
		return
	}
	m.actions.WithLabelValues(normalizeLabel(action), normalizeLabel(outcome)).Inc()
}

func (m *Metrics) StockUpdate(movementType, outcome string) {
	if m == nil || m.stockUpdates == nil {
		return
	}
	m.stockUpdates.WithLabelValues(normalizeLabel(movementType), normalizeLabel(outcome)).Inc()
}

func (m *Metrics) TrackingLookup(source string) {
	if m == nil || m.trackingLookups == nil {
		return
	}
	m.trackingLookups.WithLabelValues(normalizeLabel(source)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
