package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/v2genv/core/metrics"
)

// PromSink exposes environment transitions as Prometheus metrics.
type PromSink struct {
	level       prometheus.Gauge
	price       prometheus.Gauge
	cumulative  prometheus.Gauge
	steps       *prometheus.CounterVec
	adjustments *prometheus.CounterVec
	reward      prometheus.Histogram
	episodes    prometheus.Counter
	episodeRwd  prometheus.Gauge
}

// NewPromSink registers environment metrics on the default Prometheus
// registerer. The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		level: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "v2g_env_battery_level_kwh",
			Help: "Battery level after the last step",
		}),
		price: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "v2g_env_price",
			Help: "Price billed for the last step",
		}),
		cumulative: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "v2g_env_cumulative_reward",
			Help: "Cumulative reward since the last reset",
		}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "v2g_env_steps_total",
			Help: "Steps taken, by applied action kind",
		}, []string{"action"}),
		adjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "v2g_env_adjustments_total",
			Help: "Actions modified by an operating rule",
		}, []string{"rule"}),
		reward: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "v2g_env_step_reward",
			Help:    "Reward obtained per step",
			Buckets: prometheus.LinearBuckets(-5, 1, 11),
		}),
		episodes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "v2g_env_episodes_total",
			Help: "Completed episodes",
		}),
		episodeRwd: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "v2g_env_episode_reward",
			Help: "Reward of the last completed episode",
		}),
	}
	var err error
	if s.level, err = register(reg, s.level); err != nil {
		return nil, err
	}
	if s.price, err = register(reg, s.price); err != nil {
		return nil, err
	}
	if s.cumulative, err = register(reg, s.cumulative); err != nil {
		return nil, err
	}
	if s.steps, err = register(reg, s.steps); err != nil {
		return nil, err
	}
	if s.adjustments, err = register(reg, s.adjustments); err != nil {
		return nil, err
	}
	if s.reward, err = register(reg, s.reward); err != nil {
		return nil, err
	}
	if s.episodes, err = register(reg, s.episodes); err != nil {
		return nil, err
	}
	if s.episodeRwd, err = register(reg, s.episodeRwd); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordStep updates gauges and counters from one transition.
func (s *PromSink) RecordStep(ev coremetrics.StepEvent) error {
	t := ev.Transition
	s.level.Set(t.State.BatteryLevel)
	s.price.Set(t.Price)
	s.cumulative.Set(t.CumulativeReward)
	s.steps.WithLabelValues(t.Kind().String()).Inc()
	if t.Adjustment.Commute() {
		s.adjustments.WithLabelValues("commute").Inc()
	}
	if t.Adjustment.Reserve() {
		s.adjustments.WithLabelValues("reserve").Inc()
	}
	s.reward.Observe(t.Reward)
	return nil
}

// RecordEpisode counts the episode and keeps its reward.
func (s *PromSink) RecordEpisode(ev coremetrics.EpisodeEvent) error {
	s.episodes.Inc()
	s.episodeRwd.Set(ev.Reward)
	return nil
}
