// Package agent contains stand-ins for the control policy that chooses the
// charge/discharge action of every simulated hour. None of them learn; they
// exist so episodes can run without an external agent attached.
package agent

import (
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/v2genv/core/model"
)

// ActionSource proposes the next action given the current state.
type ActionSource interface {
	NextAction(s model.State) float64
}

// Func adapts a plain function to ActionSource.
type Func func(s model.State) float64

// NextAction implements ActionSource.
func (f Func) NextAction(s model.State) float64 { return f(s) }

// Uniform proposes actions drawn uniformly in [Min, Max).
type Uniform struct {
	Min  float64
	Max  float64
	Seed int64

	rng *rand.Rand
}

// NewUniform returns a random agent spanning the vehicle's action range.
func NewUniform(v model.Vehicle, seed int64) *Uniform {
	lo, hi := v.ActionRange()
	return &Uniform{Min: lo, Max: hi, Seed: seed}
}

// NextAction implements ActionSource.
func (u *Uniform) NextAction(model.State) float64 {
	if u.rng == nil {
		u.Reset()
	}
	if u.Max <= u.Min {
		return u.Min
	}
	return u.Min + u.rng.Float64()*(u.Max-u.Min)
}

// Reset reseeds the generator.
func (u *Uniform) Reset() { u.rng = rand.New(rand.NewSource(u.Seed)) }

// Scripted replays a fixed list of actions and then stays idle.
type Scripted struct {
	Actions []float64
	pos     int
}

// NextAction implements ActionSource.
func (s *Scripted) NextAction(model.State) float64 {
	if s.pos >= len(s.Actions) {
		return 0
	}
	a := s.Actions[s.pos]
	s.pos++
	return a
}

// Remaining returns how many scripted actions are left.
func (s *Scripted) Remaining() int { return len(s.Actions) - s.pos }

// Reset rewinds the script.
func (s *Scripted) Reset() { s.pos = 0 }

// Threshold charges when the billed price is cheap relative to the window
// average and discharges when it is expensive. Band widens the idle zone
// around the mean as a fraction of it.
type Threshold struct {
	Charge    float64
	Discharge float64
	Band      float64
}

// NewThreshold returns a threshold agent using the vehicle's full rates.
func NewThreshold(v model.Vehicle, band float64) Threshold {
	return Threshold{Charge: v.MaxChargeRate, Discharge: v.MaxDischargeRate, Band: band}
}

// NextAction implements ActionSource.
func (t Threshold) NextAction(s model.State) float64 {
	mean := stat.Mean(s.Prices[:], nil)
	price := s.CurrentPrice()
	switch {
	case price < mean*(1-t.Band):
		return t.Charge
	case price > mean*(1+t.Band):
		return t.Discharge
	default:
		return 0
	}
}
