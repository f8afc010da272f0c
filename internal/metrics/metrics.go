// Package metrics содержит Prometheus метрики дашборда.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics интерфейс метрик, которые пишут сервисы.
type Metrics interface {
	IncLedgerTransition(from, to string)
	IncStoreReadFailure(key string)
	IncAnalysis(result string)
	IncBroadcast(result string)
	IncChat(result string)
}

type promMetrics struct {
	ledgerTransitions *prometheus.CounterVec
	storeReadFailures *prometheus.CounterVec
	analyses          *prometheus.CounterVec
	broadcasts        *prometheus.CounterVec
	chats             *prometheus.CounterVec
}

// New регистрирует метрики в registry.
func New(registry prometheus.Registerer) Metrics {
	factory := promauto.With(registry)
	return &promMetrics{
		ledgerTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jmfx_ledger_transitions_total",
				Help: "Subscription state transitions by source and target state",
			},
			[]string{"from", "to"},
		),
		storeReadFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jmfx_store_read_failures_total",
				Help: "Malformed persisted values reset to defaults",
			},
			[]string{"key"},
		),
		analyses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jmfx_analyses_total",
				Help: "Analysis requests by result",
			},
			[]string{"result"},
		),
		broadcasts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jmfx_broadcasts_total",
				Help: "VIP group broadcasts by result",
			},
			[]string{"result"},
		),
		chats: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jmfx_chat_replies_total",
				Help: "Chat assistant replies by result",
			},
			[]string{"result"},
		),
	}
}

func (m *promMetrics) IncLedgerTransition(from, to string) {
	m.ledgerTransitions.WithLabelValues(from, to).Inc()
}

func (m *promMetrics) IncStoreReadFailure(key string) {
	m.storeReadFailures.WithLabelValues(key).Inc()
}

func (m *promMetrics) IncAnalysis(result string) {
	m.analyses.WithLabelValues(result).Inc()
}

func (m *promMetrics) IncBroadcast(result string) {
	m.broadcasts.WithLabelValues(result).Inc()
}

func (m *promMetrics) IncChat(result string) {
	m.chats.WithLabelValues(result).Inc()
}

// Noop метрики, которые ничего не пишут.
type Noop struct{}

func (Noop) IncLedgerTransition(string, string) {}
func (Noop) IncStoreReadFailure(string)         {}
func (Noop) IncAnalysis(string)                 {}
func (Noop) IncBroadcast(string)                {}
func (Noop) IncChat(string)                     {}
