package pricing

import (
	"math/rand"
	"time"
)

// Default bounds of the uniform price stub.
const (
	DefaultMinPrice = 0.05
	DefaultMaxPrice = 0.20
)

// Uniform draws prices uniformly in [Min, Max) from a seeded generator.
type Uniform struct {
	Min  float64
	Max  float64
	Seed int64

	rng *rand.Rand
}

// NewUniform returns a uniform source with the default bounds.
func NewUniform(seed int64) *Uniform {
	return &Uniform{Min: DefaultMinPrice, Max: DefaultMaxPrice, Seed: seed}
}

// NextPrice implements PriceSource.
func (u *Uniform) NextPrice(time.Time) float64 {
	if u.rng == nil {
		u.Reset()
	}
	if u.Max <= u.Min {
		return u.Min
	}
	return u.Min + u.rng.Float64()*(u.Max-u.Min)
}

// Reset reseeds the generator so the same sequence is produced again.
func (u *Uniform) Reset() {
	u.rng = rand.New(rand.NewSource(u.Seed))
}
