// Package factory provides the generic registry used to build pluggable
// modules (price sources, agents, metrics sinks) from configuration. A module
// is selected by a type string and configured by a raw settings map which
// the factory decodes into its own struct.
//
//	reg := factory.NewRegistry[pricing.PriceSource]()
//	_ = reg.Register("flat", func(conf map[string]any) (pricing.PriceSource, error) {
//	    var c struct{ Price float64 `json:"price"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return pricing.Func(func(time.Time) float64 { return c.Price }), nil
//	})
//	src, err := reg.Create(factory.ModuleConfig{Type: "flat", Conf: map[string]any{"price": 0.1}})
package factory
