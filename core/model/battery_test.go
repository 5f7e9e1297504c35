package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatteryStateClamps(t *testing.T) {
	b := NewBatteryState(100, 150)
	assert.Equal(t, 100.0, b.Level())
	b.Set(-5)
	assert.Equal(t, 0.0, b.Level())
	b.Set(math.NaN())
	assert.Equal(t, 0.0, b.Level())
	b.Set(40)
	assert.InDelta(t, 0.4, b.Fraction(), 1e-9)
}

func TestBatteryStateAfterDoesNotMutate(t *testing.T) {
	b := NewBatteryState(100, 50)
	assert.Equal(t, 100.0, b.After(70))
	assert.Equal(t, 0.0, b.After(-70))
	assert.Equal(t, 50.0, b.Level())
}

func TestVehicleValidate(t *testing.T) {
	cases := []struct {
		name string
		v    Vehicle
		ok   bool
	}{
		{"valid", Vehicle{CapacityKWh: 100, MaxChargeRate: 10, MaxDischargeRate: -10}, true},
		{"zero capacity", Vehicle{CapacityKWh: 0, MaxChargeRate: 10, MaxDischargeRate: -10}, false},
		{"nan capacity", Vehicle{CapacityKWh: math.NaN(), MaxChargeRate: 10, MaxDischargeRate: -10}, false},
		{"negative charge", Vehicle{CapacityKWh: 100, MaxChargeRate: -1, MaxDischargeRate: -10}, false},
		{"positive discharge", Vehicle{CapacityKWh: 100, MaxChargeRate: 10, MaxDischargeRate: 10}, false},
	}
	for _, c := range cases {
		err := c.v.Validate()
		if c.ok {
			assert.NoError(t, err, c.name)
		} else {
			assert.Error(t, err, c.name)
		}
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, ActionCharge, KindOf(3))
	assert.Equal(t, ActionDischarge, KindOf(-0.5))
	assert.Equal(t, ActionIdle, KindOf(0))
	assert.Equal(t, "Discharge", ActionDischarge.String())
}

func TestAdjustmentFlags(t *testing.T) {
	assert.True(t, AdjustCommuteReserve.Commute())
	assert.True(t, AdjustCommuteReserve.Reserve())
	assert.False(t, AdjustCommute.Reserve())
	assert.Equal(t, "reserve", AdjustReserve.String())
}

func TestStateVector(t *testing.T) {
	var s State
	s.Presence = PresenceHome
	s.BatteryLevel = 42
	s.Prices[0] = 0.1
	s.Prices[WindowSize-1] = 0.2
	v := s.Vector()
	assert.Len(t, v, 2+WindowSize)
	assert.Equal(t, 1.0, v[0])
	assert.Equal(t, 42.0, v[1])
	assert.Equal(t, 0.1, s.CurrentPrice())
	assert.Equal(t, 0.2, s.LatestPrice())
}

func TestAdjustmentText(t *testing.T) {
	b, err := json.Marshal(AdjustCommuteReserve)
	require.NoError(t, err)
	assert.Equal(t, `"commute+reserve"`, string(b))

	var a Adjustment
	require.NoError(t, json.Unmarshal([]byte(`"commute"`), &a))
	assert.Equal(t, AdjustCommute, a)
	assert.Error(t, json.Unmarshal([]byte(`"bogus"`), &a))
}
