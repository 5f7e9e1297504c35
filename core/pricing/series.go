package pricing

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Series replays a fixed list of prices, wrapping around at the end.
type Series struct {
	Prices []float64
	pos    int
}

// NewSeries copies prices into a new Series.
func NewSeries(prices []float64) (*Series, error) {
	if len(prices) == 0 {
		return nil, errors.New("price series is empty")
	}
	for i, p := range prices {
		if p < 0 {
			return nil, fmt.Errorf("price %d is negative: %v", i, p)
		}
	}
	cp := make([]float64, len(prices))
	copy(cp, prices)
	return &Series{Prices: cp}, nil
}

// NextPrice implements PriceSource.
func (s *Series) NextPrice(time.Time) float64 {
	if len(s.Prices) == 0 {
		return 0
	}
	p := s.Prices[s.pos%len(s.Prices)]
	s.pos++
	return p
}

// Reset rewinds the series to its first price.
func (s *Series) Reset() { s.pos = 0 }

type seriesFile struct {
	Prices []float64 `json:"prices" yaml:"prices"`
}

// LoadSeries reads a price list from a JSON or YAML file holding a
// top-level "prices" array.
func LoadSeries(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return DecodeSeries(f, strings.TrimPrefix(filepath.Ext(path), "."))
}

// DecodeSeries decodes a price list from r in the given format.
func DecodeSeries(r io.Reader, format string) ([]float64, error) {
	var sf seriesFile
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&sf); err != nil {
			return nil, fmt.Errorf("decode yaml series: %w", err)
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&sf); err != nil {
			return nil, fmt.Errorf("decode json series: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported series format: %s", format)
	}
	return sf.Prices, nil
}
