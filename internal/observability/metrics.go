package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	relayItems = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tictactoe",
			Subsystem: "relay",
			Name:      "items_total",
			Help:      "Items forwarded by the relay per operator action.",
		},
		[]string{"kind", "action"},
	)
	relayOverwrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tictactoe",
			Subsystem: "relay",
			Name:      "overwrites_total",
			Help:      "Pending items replaced before the operator resolved them.",
		},
		[]string{"kind"},
	)
	codecDecodes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tictactoe",
			Subsystem: "codec",
			Name:      "decodes_total",
			Help:      "Decodes per method and outcome (clean, corrected, detected).",
		},
		[]string{"method", "outcome"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(relayItems, relayOverwrites, codecDecodes)
	})
}

func RecordRelayItem(kind, action string) {
	RegisterMetrics()
	relayItems.WithLabelValues(kind, action).Inc()
}

func RecordOverwrite(kind string) {
	RegisterMetrics()
	relayOverwrites.WithLabelValues(kind).Inc()
}

func RecordDecode(method, outcome string) {
	RegisterMetrics()
	codecDecodes.WithLabelValues(method, outcome).Inc()
}
