// Package plugins links every built-in module into the binary and lists
// what is available to the configuration.
package plugins

import (
	"github.com/kilianp07/v2genv/core/agent"
	coremetrics "github.com/kilianp07/v2genv/core/metrics"
	"github.com/kilianp07/v2genv/core/pricing"

	// Registered through init.
	_ "github.com/kilianp07/v2genv/connectors/wholesale"
	_ "github.com/kilianp07/v2genv/infra/metrics"
	_ "github.com/kilianp07/v2genv/infra/mqtt"
)

// Catalog lists the module type names accepted by each configuration
// section.
type Catalog struct {
	Pricing []string `json:"pricing"`
	Agents  []string `json:"agents"`
	Sinks   []string `json:"sinks"`
}

// Available returns the registered module types.
func Available() Catalog {
	return Catalog{
		Pricing: pricing.Types(),
		Agents:  agent.Types(),
		Sinks:   coremetrics.SinkTypes(),
	}
}
