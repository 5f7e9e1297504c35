package env

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/kilianp07/v2genv/core/model"
)

// ErrInvalidConfig is wrapped by every construction-time validation error.
var ErrInvalidConfig = errors.New("invalid environment config")

// Defaults applied by SetDefaults.
var (
	DefaultEpoch        = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	DefaultCommuteHours = []int{8, 18}
)

const (
	DefaultCommuteTarget = 0.8
	DefaultReserveFloor  = 0.2
	DefaultGamma         = 0.99
	// EpisodeHours is the number of transitions in one simulated day.
	EpisodeHours = 24
)

// Config captures everything an Environment needs at construction.
type Config struct {
	Capacity         float64   `json:"capacity"`
	MaxChargeRate    float64   `json:"max_charge_rate"`
	MaxDischargeRate float64   `json:"max_discharge_rate"`
	Epoch            time.Time `json:"epoch"`
	InitialPrices    []float64 `json:"initial_prices"`
	// CommuteHours are the hours of day at which the battery must reach
	// CommuteTarget of its capacity.
	CommuteHours []int `json:"commute_hours"`
	// CommuteTarget and ReserveFloor are fractions of capacity. Nil selects
	// the default, an explicit 0 is kept.
	CommuteTarget *float64 `json:"commute_target"`
	ReserveFloor  *float64 `json:"reserve_floor"`
	// Gamma discounts rewards in Episode.DiscountedReward.
	Gamma float64 `json:"gamma"`
}

// Fraction returns a pointer to v, for the optional fraction fields.
func Fraction(v float64) *float64 { return &v }

func fractionOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// SetDefaults fills optional fields left unset.
func (c *Config) SetDefaults() {
	if c.Epoch.IsZero() {
		c.Epoch = DefaultEpoch
	}
	if c.CommuteHours == nil {
		c.CommuteHours = append([]int(nil), DefaultCommuteHours...)
	}
	if c.CommuteTarget == nil {
		c.CommuteTarget = Fraction(DefaultCommuteTarget)
	}
	if c.ReserveFloor == nil {
		c.ReserveFloor = Fraction(DefaultReserveFloor)
	}
	if c.Gamma == 0 {
		c.Gamma = DefaultGamma
	}
}

// Vehicle returns the electrical parameters of the configured vehicle.
func (c Config) Vehicle() model.Vehicle {
	return model.Vehicle{
		CapacityKWh:      c.Capacity,
		MaxChargeRate:    c.MaxChargeRate,
		MaxDischargeRate: c.MaxDischargeRate,
	}
}

// Validate checks the configuration. Errors wrap ErrInvalidConfig.
func (c Config) Validate() error {
	if err := c.Vehicle().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if len(c.InitialPrices) != model.WindowSize {
		return fmt.Errorf("%w: need %d initial prices, got %d", ErrInvalidConfig, model.WindowSize, len(c.InitialPrices))
	}
	for i, p := range c.InitialPrices {
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			return fmt.Errorf("%w: initial price %d is %v", ErrInvalidConfig, i, p)
		}
	}
	for _, h := range c.CommuteHours {
		if h < 0 || h > 23 {
			return fmt.Errorf("%w: commute hour %d out of range", ErrInvalidConfig, h)
		}
	}
	if f := fractionOr(c.ReserveFloor, DefaultReserveFloor); f < 0 || f > 1 {
		return fmt.Errorf("%w: reserve floor %v not in [0,1]", ErrInvalidConfig, f)
	}
	if f := fractionOr(c.CommuteTarget, DefaultCommuteTarget); f < 0 || f > 1 {
		return fmt.Errorf("%w: commute target %v not in [0,1]", ErrInvalidConfig, f)
	}
	if c.Gamma <= 0 || c.Gamma > 1 {
		return fmt.Errorf("%w: gamma %v not in (0,1]", ErrInvalidConfig, c.Gamma)
	}
	return nil
}

// Policy returns the constraint policy described by the configuration.
func (c Config) Policy() Policy {
	return Policy{
		CommuteHours:  append([]int(nil), c.CommuteHours...),
		CommuteTarget: fractionOr(c.CommuteTarget, DefaultCommuteTarget),
		ReserveFloor:  fractionOr(c.ReserveFloor, DefaultReserveFloor),
	}
}
