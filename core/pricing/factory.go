package pricing

import (
	"fmt"

	"github.com/kilianp07/v2genv/core/factory"
)

var registry = factory.NewRegistry[PriceSource]()

// Register adds a price source factory identified by name.
func Register(name string, f factory.Factory[PriceSource]) error {
	return registry.Register(name, f)
}

// New builds the price source described by cfg. An empty type selects the
// uniform stub.
func New(cfg factory.ModuleConfig) (PriceSource, error) {
	if cfg.Type == "" {
		cfg.Type = "uniform"
	}
	return registry.Create(cfg)
}

// Types lists the registered price source names.
func Types() []string { return registry.Types() }

func init() {
	_ = Register("uniform", func(conf map[string]any) (PriceSource, error) {
		var c struct {
			Min  *float64 `json:"min"`
			Max  *float64 `json:"max"`
			Seed int64    `json:"seed"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		u := NewUniform(c.Seed)
		if c.Min != nil {
			u.Min = *c.Min
		}
		if c.Max != nil {
			u.Max = *c.Max
		}
		if u.Min < 0 || u.Max < u.Min {
			return nil, fmt.Errorf("uniform prices need 0 <= min <= max, got [%v, %v]", u.Min, u.Max)
		}
		return u, nil
	})

	_ = Register("series", func(conf map[string]any) (PriceSource, error) {
		var c struct {
			Prices []float64 `json:"prices"`
			File   string    `json:"file"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		prices := c.Prices
		if c.File != "" {
			loaded, err := LoadSeries(c.File)
			if err != nil {
				return nil, fmt.Errorf("load series %s: %w", c.File, err)
			}
			prices = loaded
		}
		return NewSeries(prices)
	})

	_ = Register("tou", func(conf map[string]any) (PriceSource, error) {
		t := DefaultTimeOfUse()
		if err := factory.Decode(conf, &t); err != nil {
			return nil, err
		}
		if t.OffPeak < 0 || t.Peak < 0 || t.SuperPeak < 0 || t.WeekendMultiplier < 0 {
			return nil, fmt.Errorf("time-of-use prices must be non-negative")
		}
		return t, nil
	})
}
