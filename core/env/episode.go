package env

import (
	"math"
	"time"

	"github.com/kilianp07/v2genv/core/agent"
	"github.com/kilianp07/v2genv/core/model"
)

// Episode summarises one simulated day.
type Episode struct {
	Start       time.Time
	End         time.Time
	Transitions []model.Transition
	// Reward is the cumulative reward after the last transition.
	Reward float64
	// DiscountedReward is the sum of gamma^t * r_t over the day's steps.
	DiscountedReward float64
}

// RunEpisode performs EpisodeHours transitions, asking src for each action.
// It continues from the current state; call Reset first for a fresh day.
func (e *Environment) RunEpisode(src agent.ActionSource) Episode {
	ep := Episode{
		Start:       e.clock,
		Transitions: make([]model.Transition, 0, EpisodeHours),
	}
	for i := 0; i < EpisodeHours; i++ {
		t := e.Step(src.NextAction(e.State()))
		ep.DiscountedReward += math.Pow(e.cfg.Gamma, float64(i)) * t.Reward
		ep.Transitions = append(ep.Transitions, t)
	}
	ep.End = e.clock
	ep.Reward = e.reward
	return ep
}

// Charged returns the charge billed during the episode: the sum of positive
// applied actions, including any part the capacity clamp absorbed.
func (ep Episode) Charged() float64 {
	var sum float64
	for _, t := range ep.Transitions {
		if t.Kind() == model.ActionCharge {
			sum += t.AppliedAction
		}
	}
	return sum
}

// Discharged returns the discharge billed during the episode, as a
// positive amount. Like Charged it counts applied actions, not Stored.
func (ep Episode) Discharged() float64 {
	var sum float64
	for _, t := range ep.Transitions {
		if t.Kind() == model.ActionDischarge {
			sum -= t.AppliedAction
		}
	}
	return sum
}

// Stored returns the net change in battery level over the episode.
func (ep Episode) Stored() float64 {
	var sum float64
	for _, t := range ep.Transitions {
		sum += t.LevelDelta
	}
	return sum
}
