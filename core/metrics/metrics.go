package metrics

import (
	"time"

	"github.com/kilianp07/v2genv/core/model"
)

// StepEvent is emitted for every environment transition.
type StepEvent struct {
	EpisodeID  string
	Day        int
	Transition model.Transition
	Time       time.Time
}

// MetricsSink records transitions for observability purposes.
type MetricsSink interface {
	RecordStep(ev StepEvent) error
}

// EpisodeEvent summarises a finished simulated day. Charged and Discharged
// are the billed amounts, see env.Episode.
type EpisodeEvent struct {
	EpisodeID        string
	Day              int
	Start            time.Time
	End              time.Time
	Steps            int
	Reward           float64
	DiscountedReward float64
	Charged          float64
	Discharged       float64
	FinalLevel       float64
	Time             time.Time
}

// EpisodeRecorder is implemented by sinks able to record episode summaries.
type EpisodeRecorder interface {
	RecordEpisode(ev EpisodeEvent) error
}

// Closer is implemented by sinks holding connections.
type Closer interface {
	Close() error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordStep(StepEvent) error       { return nil }
func (NopSink) RecordEpisode(EpisodeEvent) error { return nil }

// Event is carried on the metrics bus: a StepEvent or an EpisodeEvent.
type Event interface {
	metricsEvent()
}

func (StepEvent) metricsEvent()    {}
func (EpisodeEvent) metricsEvent() {}
