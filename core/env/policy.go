package env

import (
	"time"

	"github.com/kilianp07/v2genv/core/model"
)

// Policy enforces the operating rules on a proposed action. Rules only ever
// raise the action and see the pre-clamp level; the capacity clamp applied
// by the environment afterwards remains the physical limit.
type Policy struct {
	CommuteHours  []int
	CommuteTarget float64
	ReserveFloor  float64
}

// Apply returns the action to execute from level when the step ends at next.
//
// The commute rule runs first: at a commute hour the battery must end at
// CommuteTarget of capacity or above. The reserve rule runs second and
// unconditionally keeps the battery at ReserveFloor of capacity, so it may
// override the commute result.
func (p Policy) Apply(level, capacity float64, next time.Time, action float64) (float64, model.Adjustment) {
	adj := model.AdjustNone
	if p.isCommuteHour(next.Hour()) {
		target := p.CommuteTarget * capacity
		if level+action < target {
			if needed := target - level; needed > action {
				action = needed
				adj = model.AdjustCommute
			}
		}
	}
	floor := p.ReserveFloor * capacity
	if level+action < floor {
		action = floor - level
		if adj == model.AdjustCommute {
			adj = model.AdjustCommuteReserve
		} else {
			adj = model.AdjustReserve
		}
	}
	return action, adj
}

func (p Policy) isCommuteHour(h int) bool {
	for _, c := range p.CommuteHours {
		if c == h {
			return true
		}
	}
	return false
}
