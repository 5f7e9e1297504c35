package pricing

import (
	"time"

	"github.com/kilianp07/v2genv/core/model"
)

// PriceSource supplies the price for the hour starting at the given time.
type PriceSource interface {
	NextPrice(at time.Time) float64
}

// Resetter is implemented by sources that keep internal progress, such as a
// random generator or a cursor, and can rewind it.
type Resetter interface {
	Reset()
}

// Func adapts a plain function to PriceSource.
type Func func(at time.Time) float64

// NextPrice implements PriceSource.
func (f Func) NextPrice(at time.Time) float64 { return f(at) }

// Window draws model.WindowSize prices covering the day before epoch, oldest
// first. It is used to seed an environment when no initial window is
// configured.
func Window(src PriceSource, epoch time.Time) []float64 {
	prices := make([]float64, model.WindowSize)
	start := epoch.Add(-time.Duration(model.WindowSize) * time.Hour)
	for i := range prices {
		prices[i] = src.NextPrice(start.Add(time.Duration(i) * time.Hour))
	}
	return prices
}
