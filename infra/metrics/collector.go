package metrics

import (
	"context"

	coremetrics "github.com/kilianp07/v2genv/core/metrics"
	"github.com/kilianp07/v2genv/infra/logger"
	"github.com/kilianp07/v2genv/internal/eventbus"
)

// StartEventCollector subscribes to the bus and forwards events to sink.
// It stops when the context is canceled or the bus is closed; the returned
// channel is closed once the goroutine has exited.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[coremetrics.Event], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case coremetrics.StepEvent:
					if err := sink.RecordStep(e); err != nil {
						log.Warnf("record step %d: %v", e.Transition.Step, err)
					}
				case coremetrics.EpisodeEvent:
					if r, ok := sink.(coremetrics.EpisodeRecorder); ok {
						if err := r.RecordEpisode(e); err != nil {
							log.Warnf("record episode %s: %v", e.EpisodeID, err)
						}
					}
				}
			}
		}
	}()
	return done
}
