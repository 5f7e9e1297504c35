package export

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/v2genv/core/model"
)

// Summary aggregates a run of transitions. Charged and Discharged are the
// billed amounts; Stored is what actually reached the battery.
type Summary struct {
	Steps      int     `json:"steps"`
	Reward     float64 `json:"reward"`
	Charged    float64 `json:"charged"`
	Discharged float64 `json:"discharged"`
	Stored     float64 `json:"stored"`
	MeanPrice  float64 `json:"mean_price"`
	StdPrice   float64 `json:"std_price"`
	MeanReward float64 `json:"mean_reward"`
	StdReward  float64 `json:"std_reward"`
	Adjusted   int     `json:"adjusted"`
	FinalLevel float64 `json:"final_level"`
}

// Summarize computes totals and price/reward statistics. Standard
// deviations are zero for fewer than two transitions.
func Summarize(ts []model.Transition) Summary {
	s := Summary{Steps: len(ts)}
	if len(ts) == 0 {
		return s
	}
	prices := make([]float64, len(ts))
	rewards := make([]float64, len(ts))
	for i, t := range ts {
		prices[i] = t.Price
		rewards[i] = t.Reward
		switch t.Kind() {
		case model.ActionCharge:
			s.Charged += t.AppliedAction
		case model.ActionDischarge:
			s.Discharged -= t.AppliedAction
		}
		s.Stored += t.LevelDelta
		if t.Adjustment != model.AdjustNone {
			s.Adjusted++
		}
	}
	s.Reward = floats.Sum(rewards)
	s.FinalLevel = ts[len(ts)-1].State.BatteryLevel
	if len(ts) < 2 {
		s.MeanPrice, s.MeanReward = prices[0], rewards[0]
		return s
	}
	s.MeanPrice, s.StdPrice = stat.MeanStdDev(prices, nil)
	s.MeanReward, s.StdReward = stat.MeanStdDev(rewards, nil)
	return s
}

// WriteSummary prints s as a short report.
func WriteSummary(w io.Writer, s Summary) error {
	_, err := fmt.Fprintf(w,
		"Steps: %d\nTotal reward: %.2f\nBilled charge: %.2f units\nBilled discharge: %.2f units\nNet stored: %.2f units\nPrice mean/std: %.4f / %.4f\nReward mean/std: %.4f / %.4f\nAdjusted actions: %d\nFinal battery level: %.2f units\n",
		s.Steps, s.Reward, s.Charged, s.Discharged, s.Stored, s.MeanPrice, s.StdPrice, s.MeanReward, s.StdReward, s.Adjusted, s.FinalLevel)
	return err
}
