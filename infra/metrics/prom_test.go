package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/v2genv/core/metrics"
	"github.com/kilianp07/v2genv/core/model"
)

func TestPromSink_RecordStep(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordStep(sampleStep(1, 10, model.AdjustNone)))
	require.NoError(t, sink.RecordStep(sampleStep(2, -5, model.AdjustCommuteReserve)))
	require.NoError(t, sink.RecordStep(sampleStep(3, 0, model.AdjustReserve)))

	expected := `
# HELP v2g_env_steps_total Steps taken, by applied action kind
# TYPE v2g_env_steps_total counter
v2g_env_steps_total{action="Charge"} 1
v2g_env_steps_total{action="Discharge"} 1
v2g_env_steps_total{action="Idle"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(sink.steps, strings.NewReader(expected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.adjustments.WithLabelValues("commute")))
	assert.Equal(t, 2.0, testutil.ToFloat64(sink.adjustments.WithLabelValues("reserve")))
	assert.Equal(t, 60.0, testutil.ToFloat64(sink.level))
	assert.Equal(t, 0.1, testutil.ToFloat64(sink.price))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.reward))
}

func TestPromSink_RecordEpisode(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	require.NoError(t, sink.RecordEpisode(coremetrics.EpisodeEvent{Reward: -3.5}))
	require.NoError(t, sink.RecordEpisode(coremetrics.EpisodeEvent{Reward: 1.25}))
	assert.Equal(t, 2.0, testutil.ToFloat64(sink.episodes))
	assert.Equal(t, 1.25, testutil.ToFloat64(sink.episodeRwd))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	require.NoError(t, second.RecordStep(sampleStep(1, 10, model.AdjustNone)))
	assert.Equal(t, 1.0, testutil.ToFloat64(first.steps.WithLabelValues("Charge")))
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	require.NoError(t, sink.RecordStep(sampleStep(1, 10, model.AdjustNone)))

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "v2g_env_battery_level_kwh 60")
}
