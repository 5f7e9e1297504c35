package model

import "fmt"

// ActionKind classifies an applied action.
type ActionKind int

const (
	ActionIdle ActionKind = iota
	ActionCharge
	ActionDischarge
)

// KindOf classifies a charge/discharge amount. Positive amounts buy energy,
// negative amounts sell it back to the grid.
func KindOf(action float64) ActionKind {
	switch {
	case action > 0:
		return ActionCharge
	case action < 0:
		return ActionDischarge
	default:
		return ActionIdle
	}
}

// String returns a human-readable representation of the action kind.
func (k ActionKind) String() string {
	switch k {
	case ActionCharge:
		return "Charge"
	case ActionDischarge:
		return "Discharge"
	case ActionIdle:
		return "Idle"
	default:
		return "unknown"
	}
}

// Adjustment reports which operating rule modified a proposed action.
type Adjustment int

const (
	AdjustNone Adjustment = iota
	AdjustCommute
	AdjustReserve
	AdjustCommuteReserve
)

// String returns the label used in logs and metrics.
func (a Adjustment) String() string {
	switch a {
	case AdjustNone:
		return "none"
	case AdjustCommute:
		return "commute"
	case AdjustReserve:
		return "reserve"
	case AdjustCommuteReserve:
		return "commute+reserve"
	default:
		return "unknown"
	}
}

// Commute reports whether the commute-readiness rule fired.
func (a Adjustment) Commute() bool { return a == AdjustCommute || a == AdjustCommuteReserve }

// Reserve reports whether the minimum-reserve rule fired.
func (a Adjustment) Reserve() bool { return a == AdjustReserve || a == AdjustCommuteReserve }

// MarshalText encodes the adjustment by its label.
func (a Adjustment) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText decodes a label produced by MarshalText.
func (a *Adjustment) UnmarshalText(b []byte) error {
	for _, c := range []Adjustment{AdjustNone, AdjustCommute, AdjustReserve, AdjustCommuteReserve} {
		if c.String() == string(b) {
			*a = c
			return nil
		}
	}
	return fmt.Errorf("unknown adjustment %q", b)
}
