package model

import "math"

// BatteryState tracks the stored energy of the vehicle battery.
// Level is always kept inside [0, Capacity].
type BatteryState struct {
	level    float64
	capacity float64
}

// NewBatteryState returns a battery holding level, clamped to [0, capacity].
func NewBatteryState(capacity, level float64) BatteryState {
	b := BatteryState{capacity: capacity}
	b.Set(level)
	return b
}

// Level returns the stored energy.
func (b BatteryState) Level() float64 { return b.level }

// Capacity returns the battery capacity.
func (b BatteryState) Capacity() float64 { return b.capacity }

// Fraction returns the state of charge in [0,1].
func (b BatteryState) Fraction() float64 {
	if b.capacity <= 0 {
		return 0
	}
	return b.level / b.capacity
}

// Set stores level after clamping it to the physical bounds.
func (b *BatteryState) Set(level float64) {
	b.level = Clamp(level, 0, b.capacity)
}

// After returns the level that applying delta would produce, without
// mutating the battery.
func (b BatteryState) After(delta float64) float64 {
	return Clamp(b.level+delta, 0, b.capacity)
}

// Clamp limits v to [lo, hi]. NaN collapses to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
