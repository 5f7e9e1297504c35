package agent

import (
	"fmt"

	"github.com/kilianp07/v2genv/core/factory"
	"github.com/kilianp07/v2genv/core/model"
)

var registry = factory.NewRegistry[ActionSource]()

// Register adds an action source factory identified by name.
func Register(name string, f factory.Factory[ActionSource]) error {
	return registry.Register(name, f)
}

// New builds the action source described by cfg. The vehicle's charge and
// discharge rates are passed to the factory as "max_charge" and
// "max_discharge" unless cfg overrides them. An empty type selects the
// uniform agent.
func New(cfg factory.ModuleConfig, v model.Vehicle) (ActionSource, error) {
	conf := make(map[string]any, len(cfg.Conf)+2)
	conf["max_charge"] = v.MaxChargeRate
	conf["max_discharge"] = v.MaxDischargeRate
	for k, val := range cfg.Conf {
		conf[k] = val
	}
	typ := cfg.Type
	if typ == "" {
		typ = "uniform"
	}
	return registry.Create(factory.ModuleConfig{Type: typ, Conf: conf})
}

// Types lists the registered agent names.
func Types() []string { return registry.Types() }

func init() {
	_ = Register("uniform", func(conf map[string]any) (ActionSource, error) {
		var c struct {
			MaxCharge    float64 `json:"max_charge"`
			MaxDischarge float64 `json:"max_discharge"`
			Seed         int64   `json:"seed"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.MaxDischarge > c.MaxCharge {
			return nil, fmt.Errorf("uniform agent needs max_discharge <= max_charge")
		}
		return &Uniform{Min: c.MaxDischarge, Max: c.MaxCharge, Seed: c.Seed}, nil
	})

	_ = Register("scripted", func(conf map[string]any) (ActionSource, error) {
		var c struct {
			Actions []float64 `json:"actions"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return &Scripted{Actions: c.Actions}, nil
	})

	_ = Register("threshold", func(conf map[string]any) (ActionSource, error) {
		var c struct {
			MaxCharge    float64 `json:"max_charge"`
			MaxDischarge float64 `json:"max_discharge"`
			Band         float64 `json:"band"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Band < 0 || c.Band >= 1 {
			return nil, fmt.Errorf("threshold band must be in [0,1), got %v", c.Band)
		}
		return Threshold{Charge: c.MaxCharge, Discharge: c.MaxDischarge, Band: c.Band}, nil
	})
}
