package pricing

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/v2genv/core/factory"
	"github.com/kilianp07/v2genv/core/model"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestUniformBoundsAndReset(t *testing.T) {
	u := NewUniform(42)
	first := make([]float64, 50)
	for i := range first {
		first[i] = u.NextPrice(epoch)
		assert.GreaterOrEqual(t, first[i], DefaultMinPrice)
		assert.Less(t, first[i], DefaultMaxPrice)
	}
	u.Reset()
	for i := range first {
		assert.Equal(t, first[i], u.NextPrice(epoch))
	}
}

func TestUniformDegenerateRange(t *testing.T) {
	u := &Uniform{Min: 0.1, Max: 0.1}
	assert.Equal(t, 0.1, u.NextPrice(epoch))
}

func TestSeriesWrapsAndResets(t *testing.T) {
	s, err := NewSeries([]float64{1, 2, 3})
	require.NoError(t, err)
	got := []float64{s.NextPrice(epoch), s.NextPrice(epoch), s.NextPrice(epoch), s.NextPrice(epoch)}
	assert.Equal(t, []float64{1, 2, 3, 1}, got)
	s.Reset()
	assert.Equal(t, 1.0, s.NextPrice(epoch))
}

func TestSeriesRejectsInvalid(t *testing.T) {
	_, err := NewSeries(nil)
	assert.Error(t, err)
	_, err = NewSeries([]float64{0.1, -0.2})
	assert.Error(t, err)
}

func TestDecodeSeries(t *testing.T) {
	prices, err := DecodeSeries(bytes.NewBufferString("prices: [0.1, 0.2]\n"), "yaml")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2}, prices)

	prices, err = DecodeSeries(bytes.NewBufferString(`{"prices":[0.3]}`), "json")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.3}, prices)

	_, err = DecodeSeries(bytes.NewBufferString(""), "toml")
	assert.Error(t, err)
}

func TestLoadSeriesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.yml")
	require.NoError(t, os.WriteFile(path, []byte("prices:\n  - 0.12\n  - 0.18\n"), 0o644))
	prices, err := LoadSeries(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.12, 0.18}, prices)

	_, err = LoadSeries(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestTimeOfUseBands(t *testing.T) {
	tou := DefaultTimeOfUse()
	monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, tou.OffPeak, tou.NextPrice(monday.Add(3*time.Hour)))
	assert.Equal(t, tou.Peak, tou.NextPrice(monday.Add(17*time.Hour)))
	assert.Equal(t, tou.SuperPeak, tou.NextPrice(monday.Add(19*time.Hour)))
	assert.Equal(t, tou.Peak, tou.NextPrice(monday.Add(20*time.Hour)))
	assert.Equal(t, tou.OffPeak, tou.NextPrice(monday.Add(21*time.Hour)))

	saturday := time.Date(2024, 1, 6, 3, 0, 0, 0, time.UTC)
	assert.InDelta(t, tou.OffPeak*tou.WeekendMultiplier, tou.NextPrice(saturday), 1e-12)
}

func TestTimeOfUseWrappingBand(t *testing.T) {
	tou := TimeOfUse{OffPeak: 1, Peak: 2, PeakStartHour: 22, PeakEndHour: 2}
	assert.Equal(t, 2.0, tou.NextPrice(epoch.Add(23*time.Hour)))
	assert.Equal(t, 2.0, tou.NextPrice(epoch.Add(1*time.Hour)))
	assert.Equal(t, 1.0, tou.NextPrice(epoch.Add(12*time.Hour)))
}

func TestWindowCoversPreviousDay(t *testing.T) {
	var seen []time.Time
	src := Func(func(at time.Time) float64 {
		seen = append(seen, at)
		return float64(at.Hour())
	})
	w := Window(src, epoch)
	require.Len(t, w, model.WindowSize)
	assert.Equal(t, epoch.Add(-24*time.Hour), seen[0])
	assert.Equal(t, epoch.Add(-time.Hour), seen[model.WindowSize-1])
	assert.Equal(t, 23.0, w[model.WindowSize-1])
}

func TestFactoryBuiltins(t *testing.T) {
	src, err := New(factory.ModuleConfig{})
	require.NoError(t, err)
	assert.IsType(t, &Uniform{}, src)

	src, err = New(factory.ModuleConfig{Type: "uniform", Conf: map[string]any{"min": 0.1, "max": 0.3, "seed": 3}})
	require.NoError(t, err)
	u := src.(*Uniform)
	assert.Equal(t, 0.1, u.Min)
	assert.Equal(t, 0.3, u.Max)
	assert.Equal(t, int64(3), u.Seed)

	_, err = New(factory.ModuleConfig{Type: "uniform", Conf: map[string]any{"min": 0.5, "max": 0.1}})
	assert.Error(t, err)

	src, err = New(factory.ModuleConfig{Type: "series", Conf: map[string]any{"prices": []any{0.1, 0.2}}})
	require.NoError(t, err)
	assert.Equal(t, 0.1, src.NextPrice(epoch))

	src, err = New(factory.ModuleConfig{Type: "tou", Conf: map[string]any{"peak": 0.5}})
	require.NoError(t, err)
	assert.Equal(t, 0.5, src.(TimeOfUse).Peak)
	assert.Equal(t, 0.08, src.(TimeOfUse).OffPeak)

	_, err = New(factory.ModuleConfig{Type: "missing"})
	assert.Error(t, err)
	assert.Contains(t, Types(), "tou")
}
