package metrics

import (
	"time"

	coremetrics "github.com/kilianp07/v2genv/core/metrics"
	"github.com/kilianp07/v2genv/core/model"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func sampleStep(step int, applied float64, adj model.Adjustment) coremetrics.StepEvent {
	return coremetrics.StepEvent{
		EpisodeID: "ep-1",
		Transition: model.Transition{
			Step:             step,
			State:            model.State{Presence: model.PresenceHome, BatteryLevel: 60, Capacity: 100, Timestamp: epoch.Add(time.Duration(step) * time.Hour)},
			ProposedAction:   applied,
			AppliedAction:    applied,
			Adjustment:       adj,
			Price:            0.1,
			Cost:             0.1 * applied,
			Reward:           -0.1 * applied,
			CumulativeReward: -0.1 * applied,
		},
	}
}
