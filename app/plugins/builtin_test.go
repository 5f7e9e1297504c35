package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvailable(t *testing.T) {
	c := Available()
	assert.Subset(t, c.Pricing, []string{"uniform", "series", "tou", "wholesale"})
	assert.Subset(t, c.Agents, []string{"uniform", "scripted", "threshold"})
	assert.Subset(t, c.Sinks, []string{"nop", "prometheus", "influx", "mqtt"})
	assert.IsIncreasing(t, c.Sinks)
}
