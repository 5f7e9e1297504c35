package metrics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/v2genv/core/metrics"
	"github.com/kilianp07/v2genv/core/model"
	"github.com/kilianp07/v2genv/internal/eventbus"
)

type captureSink struct {
	mu       sync.Mutex
	steps    []coremetrics.StepEvent
	episodes []coremetrics.EpisodeEvent
	err      error
}

func (c *captureSink) RecordStep(ev coremetrics.StepEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps = append(c.steps, ev)
	return c.err
}

func (c *captureSink) RecordEpisode(ev coremetrics.EpisodeEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.episodes = append(c.episodes, ev)
	return c.err
}

func TestEventCollectorForwardsEvents(t *testing.T) {
	bus := eventbus.New[coremetrics.Event]()
	sink := &captureSink{}
	done := StartEventCollector(context.Background(), bus, sink, nil)

	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		require.NoError(t, bus.Deliver(ctx, sampleStep(i, 1, model.AdjustNone)))
	}
	require.NoError(t, bus.Deliver(ctx, coremetrics.EpisodeEvent{EpisodeID: "ep-1"}))
	bus.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop after bus close")
	}
	assert.Len(t, sink.steps, 3)
	assert.Equal(t, 2, sink.steps[1].Transition.Step)
	require.Len(t, sink.episodes, 1)
	assert.Equal(t, "ep-1", sink.episodes[0].EpisodeID)
}

func TestEventCollectorSurvivesSinkErrors(t *testing.T) {
	bus := eventbus.New[coremetrics.Event]()
	sink := &captureSink{err: errors.New("down")}
	done := StartEventCollector(context.Background(), bus, sink, nil)
	require.NoError(t, bus.Deliver(context.Background(), sampleStep(1, 1, model.AdjustNone)))
	require.NoError(t, bus.Deliver(context.Background(), sampleStep(2, 1, model.AdjustNone)))
	bus.Close()
	<-done
	assert.Len(t, sink.steps, 2)
}

func TestEventCollectorStopsOnCancel(t *testing.T) {
	bus := eventbus.New[coremetrics.Event]()
	ctx, cancel := context.WithCancel(context.Background())
	done := StartEventCollector(ctx, bus, coremetrics.NopSink{}, nil)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop on cancel")
	}
}

func TestEventCollectorNilBus(t *testing.T) {
	done := StartEventCollector(context.Background(), nil, coremetrics.NopSink{}, nil)
	_, open := <-done
	assert.False(t, open)
}
