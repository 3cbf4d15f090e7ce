package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterMetricsIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		RegisterMetrics()
		RegisterMetrics()
	})
}

func TestRecorders(t *testing.T) {
	t.Run("Relay items", func(t *testing.T) {
		before := testutil.ToFloat64(relayItems.WithLabelValues("move", "flip"))

		RecordRelayItem("move", "flip")
		RecordRelayItem("move", "flip")

		assert.InDelta(t, before+2, testutil.ToFloat64(relayItems.WithLabelValues("move", "flip")), 0)
	})

	t.Run("Overwrites", func(t *testing.T) {
		before := testutil.ToFloat64(relayOverwrites.WithLabelValues("chat"))

		RecordOverwrite("chat")

		assert.InDelta(t, before+1, testutil.ToFloat64(relayOverwrites.WithLabelValues("chat")), 0)
	})

	t.Run("Decodes", func(t *testing.T) {
		before := testutil.ToFloat64(codecDecodes.WithLabelValues("hamming", "corrected"))

		RecordDecode("hamming", "corrected")

		assert.InDelta(t, before+1, testutil.ToFloat64(codecDecodes.WithLabelValues("hamming", "corrected")), 0)
	})
}
