package metrics

import "errors"

// MultiSink fans events out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordStep forwards the event to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordStep(ev StepEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordStep(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordEpisode forwards the summary to sinks implementing EpisodeRecorder.
func (m *MultiSink) RecordEpisode(ev EpisodeEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(EpisodeRecorder); ok {
			if err := rec.RecordEpisode(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every sink that holds resources and joins their errors.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if c, ok := s.(Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
