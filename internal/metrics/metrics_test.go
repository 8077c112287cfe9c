// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCounts(t *testing.T) {
	m := New()
	m.Run(SourceCache)
	m.Run(SourceCache)
	m.Run(SourcePipeline)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.runs.WithLabelValues(SourceCache)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues(SourcePipeline)))
}

func TestStageCountsAndObserves(t *testing.T) {
	m := New()
	m.Stage("analysis", OutcomeOK, 200*time.Millisecond)
	m.Stage("analysis", OutcomeFailed, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.stages.WithLabelValues("analysis", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stages.WithLabelValues("analysis", OutcomeFailed)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Run(SourceCache)
		m.Stage("summary", OutcomeOK, time.Millisecond)
	})
	assert.NotNil(t, m.Handler())
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.Run(SourcePipeline)
	m.Stage("web_research", OutcomeEmpty, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `research_supervisor_runs_total{source="pipeline"} 1`)
	assert.Contains(t, string(body), `research_supervisor_stage_total{outcome="empty",stage="web_research"} 1`)
	assert.Contains(t, string(body), "research_supervisor_stage_duration_seconds_bucket")
	assert.Contains(t, string(body), "go_goroutines")
}
