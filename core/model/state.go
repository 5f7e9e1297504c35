package model

import "time"

// WindowSize is the number of hourly prices carried in the state.
const WindowSize = 24

// Presence tells whether the vehicle is plugged in at home.
type Presence int

const (
	PresenceAway Presence = 0
	PresenceHome Presence = 1
)

// State is an immutable snapshot of the environment.
type State struct {
	Presence     Presence            `json:"presence"`
	BatteryLevel float64             `json:"battery_level"`
	Capacity     float64             `json:"capacity"`
	Timestamp    time.Time           `json:"timestamp"`
	Prices       [WindowSize]float64 `json:"prices"`
}

// CurrentPrice returns the price that the next step will be billed at.
func (s State) CurrentPrice() float64 { return s.Prices[0] }

// LatestPrice returns the most recently appended price.
func (s State) LatestPrice() float64 { return s.Prices[WindowSize-1] }

// Vector flattens the snapshot as [presence, level, prices...], the layout
// learners usually expect as an observation.
func (s State) Vector() []float64 {
	v := make([]float64, 0, 2+WindowSize)
	v = append(v, float64(s.Presence), s.BatteryLevel)
	return append(v, s.Prices[:]...)
}

// Transition is the outcome of a single step. LevelDelta is the change in
// stored energy; it differs from AppliedAction when the capacity clamp
// absorbed part of the action.
type Transition struct {
	Step             int        `json:"step"`
	State            State      `json:"state"`
	ProposedAction   float64    `json:"proposed_action"`
	AppliedAction    float64    `json:"applied_action"`
	LevelDelta       float64    `json:"level_delta"`
	Adjustment       Adjustment `json:"adjustment"`
	Price            float64    `json:"price"`
	Cost             float64    `json:"cost"`
	Reward           float64    `json:"reward"`
	CumulativeReward float64    `json:"cumulative_reward"`
}

// Kind classifies the applied action. Callers must use the applied action,
// not their proposal, for charge/discharge accounting.
func (t Transition) Kind() ActionKind { return KindOf(t.AppliedAction) }
