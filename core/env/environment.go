package env

import (
	"math"
	"time"

	"github.com/kilianp07/v2genv/core/logger"
	"github.com/kilianp07/v2genv/core/model"
	"github.com/kilianp07/v2genv/core/pricing"
)

// Environment is the V2G state-transition engine.
type Environment struct {
	cfg     Config
	policy  Policy
	initial PriceWindow
	source  pricing.PriceSource
	replay  bool
	log     logger.Logger

	battery  model.BatteryState
	presence model.Presence
	clock    time.Time
	window   PriceWindow
	reward   float64
	steps    int
}

// Option customises an Environment at construction.
type Option func(*Environment)

// WithPriceSource sets the source refilling the price window. Without it a
// pricing.Uniform stub seeded with 0 is used.
func WithPriceSource(src pricing.PriceSource) Option {
	return func(e *Environment) {
		if src != nil {
			e.source = src
		}
	}
}

// WithReplay makes Reset rewind an injected price source implementing
// pricing.Resetter, so every reset replays the same prices. Without it an
// injected source keeps advancing across resets. The default stub is always
// rewound.
func WithReplay() Option {
	return func(e *Environment) { e.replay = true }
}

// WithLogger sets the logger used for step diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(e *Environment) {
		if l != nil {
			e.log = l
		}
	}
}

// New validates cfg and returns an environment in its initial state.
// Optional fields of cfg are defaulted first.
func New(cfg Config, opts ...Option) (*Environment, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	initial, err := NewPriceWindow(cfg.InitialPrices)
	if err != nil {
		return nil, err
	}
	cfg.InitialPrices = append([]float64(nil), cfg.InitialPrices...)
	cfg.CommuteTarget = Fraction(*cfg.CommuteTarget)
	cfg.ReserveFloor = Fraction(*cfg.ReserveFloor)
	e := &Environment{
		cfg:     cfg,
		policy:  cfg.Policy(),
		initial: initial,
		log:     logger.Nop{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.source == nil {
		e.source = pricing.NewUniform(0)
		e.replay = true
	}
	e.Reset()
	return e, nil
}

// Reset restores the initial state: half-full battery, vehicle at home,
// clock at the epoch, the configured price window and zero reward. The
// price source is rewound when the environment owns it or WithReplay was
// given.
func (e *Environment) Reset() model.State {
	if r, ok := e.source.(pricing.Resetter); ok && e.replay {
		r.Reset()
	}
	e.battery = model.NewBatteryState(e.cfg.Capacity, e.cfg.Capacity/2)
	e.presence = model.PresenceHome
	e.clock = e.cfg.Epoch
	e.window = e.initial
	e.reward = 0
	e.steps = 0
	return e.State()
}

// Step applies one action and advances the clock by an hour. It never
// fails: a non-finite action is treated as idle, constraint rules may raise
// the action and the resulting level is clamped to [0, capacity].
func (e *Environment) Step(action float64) model.Transition {
	proposed := action
	if math.IsNaN(action) || math.IsInf(action, 0) {
		e.log.Warnf("non-finite action %v treated as idle", action)
		action = 0
	}
	next := e.clock.Add(time.Hour)
	level := e.battery.Level()

	action, adj := e.policy.Apply(level, e.cfg.Capacity, next, action)
	price := e.window.Current()
	cost := price * action
	e.reward -= cost

	e.window.Rotate(sanitizePrice(e.source.NextPrice(next)))
	e.battery.Set(level + action)
	e.clock = next
	e.steps++

	t := model.Transition{
		Step:             e.steps,
		State:            e.State(),
		ProposedAction:   proposed,
		AppliedAction:    action,
		LevelDelta:       e.battery.Level() - level,
		Adjustment:       adj,
		Price:            price,
		Cost:             cost,
		Reward:           -cost,
		CumulativeReward: e.reward,
	}
	e.log.Debugw("step", map[string]any{
		"step":       t.Step,
		"hour":       next.Hour(),
		"proposed":   proposed,
		"applied":    action,
		"adjustment": adj.String(),
		"level":      t.State.BatteryLevel,
		"price":      price,
		"reward":     e.reward,
	})
	return t
}

// State returns a snapshot of the current state.
func (e *Environment) State() model.State {
	return model.State{
		Presence:     e.presence,
		BatteryLevel: e.battery.Level(),
		Capacity:     e.battery.Capacity(),
		Timestamp:    e.clock,
		Prices:       e.window.Slots(),
	}
}

// CumulativeReward returns the reward accumulated since the last reset.
func (e *Environment) CumulativeReward() float64 { return e.reward }

// Steps returns the number of transitions since the last reset.
func (e *Environment) Steps() int { return e.steps }

// Config returns the effective configuration, defaults included.
func (e *Environment) Config() Config {
	c := e.cfg
	c.InitialPrices = append([]float64(nil), e.cfg.InitialPrices...)
	c.CommuteHours = append([]int(nil), e.cfg.CommuteHours...)
	c.CommuteTarget = Fraction(*e.cfg.CommuteTarget)
	c.ReserveFloor = Fraction(*e.cfg.ReserveFloor)
	return c
}

// sanitizePrice keeps the window non-negative and finite whatever the
// source returns.
func sanitizePrice(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return 0
	}
	return p
}
