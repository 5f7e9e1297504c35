package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/v2genv/core/model"
)

// Format names an output encoding for transitions.
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatCSV, FormatJSON, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, csv, json or html)", s)
	}
}

// Write encodes transitions to w in the given format.
func Write(w io.Writer, f Format, ts []model.Transition) error {
	switch f {
	case FormatText:
		return WriteText(w, ts)
	case FormatCSV:
		return WriteCSV(w, ts)
	case FormatJSON:
		return WriteJSON(w, ts)
	case FormatHTML:
		return WriteChart(w, "V2G episode", ts)
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

// WriteText prints one block per transition, the layout used when
// stepping the environment by hand.
func WriteText(w io.Writer, ts []model.Transition) error {
	for _, t := range ts {
		_, err := fmt.Fprintf(w,
			"Step %d:\nAction taken: %s (%.2f units)\nReward gained: %.2f\nNew battery level: %.2f units\nElectricity price for the last hour: %.2f\nTotal state vector: %s\n---\n",
			t.Step, t.Kind(), t.AppliedAction, t.Reward, t.State.BatteryLevel, t.State.LatestPrice(), vector(t.State))
		if err != nil {
			return err
		}
	}
	return nil
}

func vector(s model.State) string {
	v := s.Vector()
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'f', 2, 64)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// WriteJSON writes the transitions to w in JSON format.
func WriteJSON(w io.Writer, ts []model.Transition) error {
	enc := json.NewEncoder(w)
	return enc.Encode(ts)
}

var csvHeader = []string{
	"step", "timestamp", "proposed_action", "applied_action", "action", "adjustment",
	"battery_level", "price", "cost", "reward", "cumulative_reward",
}

// WriteCSV writes one row per transition with a header line.
func WriteCSV(w io.Writer, ts []model.Transition) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range ts {
		rec := []string{
			strconv.Itoa(t.Step),
			t.State.Timestamp.Format(time.RFC3339),
			formatFloat(t.ProposedAction),
			formatFloat(t.AppliedAction),
			t.Kind().String(),
			t.Adjustment.String(),
			formatFloat(t.State.BatteryLevel),
			formatFloat(t.Price),
			formatFloat(t.Cost),
			formatFloat(t.Reward),
			formatFloat(t.CumulativeReward),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
