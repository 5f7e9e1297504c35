package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/v2genv/core/env"
	"github.com/kilianp07/v2genv/core/model"
	"github.com/kilianp07/v2genv/core/pricing"
)

// run steps a fresh environment with flat 0.10 prices through actions.
func run(t *testing.T, actions ...float64) []model.Transition {
	t.Helper()
	prices := make([]float64, model.WindowSize)
	for i := range prices {
		prices[i] = 0.10
	}
	e, err := env.New(env.Config{
		Capacity:         100,
		MaxChargeRate:    10,
		MaxDischargeRate: -10,
		InitialPrices:    prices,
	}, env.WithPriceSource(pricing.Func(func(time.Time) float64 { return 0.10 })))
	require.NoError(t, err)
	e.Reset()
	out := make([]model.Transition, 0, len(actions))
	for _, a := range actions {
		out = append(out, e.Step(a))
	}
	return out
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, run(t, 5, -2.5)))
	out := buf.String()
	assert.Contains(t, out, "Step 1:\nAction taken: Charge (5.00 units)\nReward gained: -0.50\nNew battery level: 55.00 units\nElectricity price for the last hour: 0.10\n")
	assert.Contains(t, out, "Step 2:\nAction taken: Discharge (-2.50 units)\nReward gained: 0.25\nNew battery level: 52.50 units\n")
	assert.Contains(t, out, "Total state vector: [1.00 55.00 0.10")
	assert.Equal(t, 2, strings.Count(out, "---\n"))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, run(t, 5, 0)))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{"1", "2024-01-01T01:00:00Z", "5", "5", "Charge", "none", "55", "0.1", "0.5", "-0.5", "-0.5"}, rows[1])
	assert.Equal(t, "Idle", rows[2][4])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	ts := run(t, 5)
	require.NoError(t, WriteJSON(&buf, ts))
	var got []model.Transition
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, ts[0].AppliedAction, got[0].AppliedAction)
	assert.Contains(t, buf.String(), `"adjustment":"none"`)
}

func TestWriteChart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatHTML, run(t, 5, -5, 0)))
	out := buf.String()
	assert.Contains(t, out, "<html")
	assert.Contains(t, out, "Battery level")
	assert.Contains(t, out, "Cumulative reward")
}

func TestSummarize(t *testing.T) {
	s := Summarize(run(t, 10, -4, 0, 6))
	assert.Equal(t, 4, s.Steps)
	assert.InDelta(t, 16.0, s.Charged, 1e-9)
	assert.InDelta(t, 4.0, s.Discharged, 1e-9)
	assert.InDelta(t, -1.2, s.Reward, 1e-9)
	assert.InDelta(t, 0.10, s.MeanPrice, 1e-12)
	assert.InDelta(t, 0.0, s.StdPrice, 1e-12)
	assert.InDelta(t, -0.3, s.MeanReward, 1e-9)
	assert.Greater(t, s.StdReward, 0.0)
	assert.InDelta(t, 62.0, s.FinalLevel, 1e-9)
	assert.Equal(t, 0, s.Adjusted)

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, s))
	assert.Contains(t, buf.String(), "Total reward: -1.20")
	assert.InDelta(t, 12.0, s.Stored, 1e-9)
}

func TestSummarizeSeparatesBilledFromStored(t *testing.T) {
	s := Summarize(run(t, 60, 10))
	assert.InDelta(t, 70.0, s.Charged, 1e-9)
	assert.InDelta(t, 50.0, s.Stored, 1e-9)
	assert.InDelta(t, -7.0, s.Reward, 1e-9)
	assert.InDelta(t, 100.0, s.FinalLevel, 1e-9)

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, s))
	assert.Contains(t, buf.String(), "Billed charge: 70.00 units\nBilled discharge: 0.00 units\nNet stored: 50.00 units\n")
}

func TestSummarizeEdgeCases(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
	s := Summarize(run(t, 3))
	assert.Equal(t, 1, s.Steps)
	assert.Equal(t, 0.0, s.StdPrice)
	assert.InDelta(t, -0.3, s.MeanReward, 1e-9)
}
