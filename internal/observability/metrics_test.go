package observability

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_IsolatedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	m.SpinsTotal.WithLabelValues("LIQUID").Inc()
	m.SpinsTotal.WithLabelValues("LIQUID").Inc()
	m.SpinsTotal.WithLabelValues("NO_PRIZE").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SpinsTotal.WithLabelValues("LIQUID")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SpinsTotal.WithLabelValues("NO_PRIZE")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestRecordRollback_Status(t *testing.T) {
	okBefore := testutil.ToFloat64(DefaultMetrics.SpinRollbacks.WithLabelValues("record", "ok"))
	errBefore := testutil.ToFloat64(DefaultMetrics.SpinRollbacks.WithLabelValues("record", "error"))

	RecordRollback("record", nil)
	RecordRollback("record", errors.New("boom"))
	RecordRollback("record", errors.New("boom"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(DefaultMetrics.SpinRollbacks.WithLabelValues("record", "ok")))
	assert.Equal(t, errBefore+2, testutil.ToFloat64(DefaultMetrics.SpinRollbacks.WithLabelValues("record", "error")))
}

func TestRecordRPCLatency_CountsErrors(t *testing.T) {
	before := testutil.ToFloat64(DefaultMetrics.RPCCallErrors.WithLabelValues("sui_test"))

	RecordRPCLatency("sui_test", 0.01, nil)
	RecordRPCLatency("sui_test", 0.02, errors.New("timeout"))

	assert.Equal(t, before+1, testutil.ToFloat64(DefaultMetrics.RPCCallErrors.WithLabelValues("sui_test")))
}
