package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	// Built-in sinks, price sources and agents.
	_ "github.com/kilianp07/v2genv/app/plugins"
	"github.com/kilianp07/v2genv/config"
	"github.com/kilianp07/v2genv/core/agent"
	"github.com/kilianp07/v2genv/core/env"
	coremetrics "github.com/kilianp07/v2genv/core/metrics"
	"github.com/kilianp07/v2genv/core/model"
	coremon "github.com/kilianp07/v2genv/core/monitoring"
	"github.com/kilianp07/v2genv/core/pricing"
	"github.com/kilianp07/v2genv/infra/logger"
	"github.com/kilianp07/v2genv/infra/metrics"
	"github.com/kilianp07/v2genv/infra/mqtt"
	"github.com/kilianp07/v2genv/internal/eventbus"
)

// Day is the outcome of one simulated day.
type Day struct {
	ID      string
	Index   int
	Episode env.Episode
}

// Report collects the days of a run.
type Report struct {
	Days []Day
}

// Transitions flattens every day's transitions in order.
func (r Report) Transitions() []model.Transition {
	var out []model.Transition
	for _, d := range r.Days {
		out = append(out, d.Episode.Transitions...)
	}
	return out
}

// Service wires the environment to its price source, agent and metrics
// sinks.
type Service struct {
	cfg   *config.Config
	env   *env.Environment
	agent agent.ActionSource
	sink  coremetrics.MetricsSink
	log   logger.Logger
	newID func() string
	serve bool
}

// Option customises a Service.
type Option func(*Service)

// WithSink replaces the configured metrics sinks.
func WithSink(s coremetrics.MetricsSink) Option { return func(svc *Service) { svc.sink = s } }

// WithAgent replaces the configured agent.
func WithAgent(a agent.ActionSource) Option { return func(svc *Service) { svc.agent = a } }

// WithIDGenerator replaces the episode identifier generator.
func WithIDGenerator(f func() string) Option { return func(svc *Service) { svc.newID = f } }

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	logg := logger.New("service")
	svc := &Service{cfg: cfg, log: logg, newID: uuid.NewString}
	for _, o := range opts {
		o(svc)
	}

	prices, err := pricing.New(cfg.Pricing)
	if err != nil {
		return nil, fmt.Errorf("price source: %w", err)
	}
	envCfg := cfg.Env
	envCfg.SetDefaults()
	if len(envCfg.InitialPrices) == 0 {
		envCfg.InitialPrices = pricing.Window(prices, envCfg.Epoch)
		logg.Infof("drew initial price window from %s source", cfg.Pricing.Type)
	}
	svc.env, err = env.New(envCfg, env.WithPriceSource(prices), env.WithLogger(logger.New("env")))
	if err != nil {
		return nil, err
	}

	if svc.agent == nil {
		svc.agent, err = agent.New(cfg.Agent, envCfg.Vehicle())
		if err != nil {
			return nil, fmt.Errorf("agent: %w", err)
		}
	}

	if svc.sink == nil {
		if svc.sink, err = svc.buildSink(); err != nil {
			return nil, err
		}
	}
	svc.serve = cfg.Metrics.PrometheusAddr != ""
	return svc, nil
}

func (s *Service) buildSink() (coremetrics.MetricsSink, error) {
	sink, err := coremetrics.NewMetricsSink(s.cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	if s.cfg.MQTT.Broker == "" {
		return sink, nil
	}
	pub, err := mqtt.NewPublisher(s.cfg.MQTT)
	if err != nil {
		if c, ok := sink.(coremetrics.Closer); ok {
			_ = c.Close()
		}
		return nil, fmt.Errorf("mqtt publisher: %w", err)
	}
	return coremetrics.NewMultiSink(sink, pub), nil
}

// Environment exposes the underlying environment.
func (s *Service) Environment() *env.Environment { return s.env }

// Run simulates the configured number of days, resetting the environment
// before each one. Metrics are forwarded through the event bus. When a
// Prometheus address is configured the endpoint stays up until ctx ends.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	if s.serve {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
				coremon.CaptureException(err, map[string]string{"module": "prometheus"})
			}
		}()
	}

	bus := eventbus.New[coremetrics.Event]()
	done := metrics.StartEventCollector(ctx, bus, s.sink, s.log)
	defer func() {
		bus.Close()
		<-done
	}()

	report := &Report{}
	for i := 1; i <= s.cfg.Episodes.Days; i++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		day, err := s.runDay(ctx, bus, i)
		report.Days = append(report.Days, day)
		if err != nil {
			return report, err
		}
	}

	if s.serve {
		bus.Close()
		<-done
		s.log.Infof("serving metrics on %s until interrupted", s.cfg.Metrics.PrometheusAddr)
		<-ctx.Done()
	}
	return report, nil
}

func (s *Service) runDay(ctx context.Context, bus *eventbus.Bus[coremetrics.Event], index int) (Day, error) {
	id := s.newID()
	s.env.Reset()
	ep := s.env.RunEpisode(s.agent)
	day := Day{ID: id, Index: index, Episode: ep}
	s.log.Infof("episode %s (day %d): reward %.4f, discounted %.4f, billed charge %.2f, billed discharge %.2f, stored %.2f",
		id, index, ep.Reward, ep.DiscountedReward, ep.Charged(), ep.Discharged(), ep.Stored())

	for _, t := range ep.Transitions {
		if err := bus.Deliver(ctx, coremetrics.StepEvent{EpisodeID: id, Day: index, Transition: t, Time: time.Now()}); err != nil {
			return day, err
		}
	}
	final := s.env.State()
	ev := coremetrics.EpisodeEvent{
		EpisodeID:        id,
		Day:              index,
		Start:            ep.Start,
		End:              ep.End,
		Steps:            len(ep.Transitions),
		Reward:           ep.Reward,
		DiscountedReward: ep.DiscountedReward,
		Charged:          ep.Charged(),
		Discharged:       ep.Discharged(),
		FinalLevel:       final.BatteryLevel,
		Time:             time.Now(),
	}
	return day, bus.Deliver(ctx, ev)
}

// Steps resets the environment and applies the given actions in order,
// reporting each transition to the metrics sinks under a fresh episode id.
func (s *Service) Steps(ctx context.Context, actions []float64) ([]model.Transition, error) {
	id := s.newID()
	s.env.Reset()
	out := make([]model.Transition, 0, len(actions))
	for _, a := range actions {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		t := s.env.Step(a)
		out = append(out, t)
		if err := s.sink.RecordStep(coremetrics.StepEvent{EpisodeID: id, Day: 1, Transition: t, Time: time.Now()}); err != nil {
			s.log.Warnf("record step %d: %v", t.Step, err)
		}
	}
	return out, nil
}

// Close releases resources held by the metrics sinks.
func (s *Service) Close() error {
	if c, ok := s.sink.(coremetrics.Closer); ok {
		return c.Close()
	}
	return nil
}
