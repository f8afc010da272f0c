package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CountsByLabel(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry).(*promMetrics)

	m.IncLedgerTransition("active", "expired")
	m.IncLedgerTransition("active", "expired")
	m.IncStoreReadFailure("jm_fx_cloud_members")
	m.IncAnalysis("ok")
	m.IncBroadcast("failed")
	m.IncChat("ok")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ledgerTransitions.WithLabelValues("active", "expired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeReadFailures.WithLabelValues("jm_fx_cloud_members")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.analyses.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.broadcasts.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.chats.WithLabelValues("ok")))

	families, err := registry.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 5)
}

func TestNew_DoubleRegistrationPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	New(registry)
	assert.Panics(t, func() { New(registry) })
}
