package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestCollector(t *testing.T) (*Collector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewCollector("graphflow_test", reg, zap.NewNop()), reg
}

func TestRecordRun(t *testing.T) {
	c, _ := newTestCollector(t)

	c.RecordRun("pipeline", "completed", 120*time.Millisecond, 3)
	c.RecordRun("pipeline", "completed", 80*time.Millisecond, 3)
	c.RecordRun("pipeline", "failed", 10*time.Millisecond, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.runsTotal.WithLabelValues("pipeline", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.runsTotal.WithLabelValues("pipeline", "failed")))
}

func TestRecordNode(t *testing.T) {
	c, _ := newTestCollector(t)

	c.RecordNode("pipeline", "classify", "success", 5*time.Millisecond)
	c.RecordNode("pipeline", "classify", "success", 7*time.Millisecond)
	c.RecordNode("pipeline", "respond", "error", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.nodeExecutionsTotal.WithLabelValues("pipeline", "classify", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.nodeExecutionsTotal.WithLabelValues("pipeline", "respond", "error")))
}

func TestRecordLLMRequest(t *testing.T) {
	c, _ := newTestCollector(t)

	c.RecordLLMRequest("gpt-4o-mini", "success", 300*time.Millisecond, 120, 45)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.llmRequestsTotal.WithLabelValues("gpt-4o-mini", "success")))
	assert.Equal(t, 120.0, testutil.ToFloat64(c.llmTokensUsed.WithLabelValues("gpt-4o-mini", "prompt")))
	assert.Equal(t, 45.0, testutil.ToFloat64(c.llmTokensUsed.WithLabelValues("gpt-4o-mini", "completion")))
}

func TestNewCollector_SeparateRegistries(t *testing.T) {
	reg1 := prometheus.NewRegistry()
	reg2 := prometheus.NewRegistry()

	// 同一命名空间注册到不同 Registry 不应冲突
	assert.NotNil(t, NewCollector("graphflow_test", reg1, zap.NewNop()))
	assert.NotNil(t, NewCollector("graphflow_test", reg2, zap.NewNop()))
}
