package env

import (
	"fmt"

	"github.com/kilianp07/v2genv/core/model"
)

// PriceWindow is the rolling list of hourly prices, oldest first.
type PriceWindow struct {
	slots [model.WindowSize]float64
}

// NewPriceWindow copies prices into a window. Exactly model.WindowSize
// prices are required.
func NewPriceWindow(prices []float64) (PriceWindow, error) {
	var w PriceWindow
	if len(prices) != model.WindowSize {
		return w, fmt.Errorf("price window needs %d slots, got %d", model.WindowSize, len(prices))
	}
	copy(w.slots[:], prices)
	return w, nil
}

// Current returns the oldest slot: the price of the hour being billed.
func (w PriceWindow) Current() float64 { return w.slots[0] }

// Latest returns the newest slot.
func (w PriceWindow) Latest() float64 { return w.slots[model.WindowSize-1] }

// Rotate drops the oldest price, shifts the rest left and stores next in the
// last slot. It returns the dropped price.
func (w *PriceWindow) Rotate(next float64) float64 {
	out := w.slots[0]
	copy(w.slots[:], w.slots[1:])
	w.slots[model.WindowSize-1] = next
	return out
}

// Slots returns a copy of the window.
func (w PriceWindow) Slots() [model.WindowSize]float64 { return w.slots }
