package model

import (
	"fmt"
	"math"
)

// Vehicle holds the fixed electrical parameters of the simulated EV.
type Vehicle struct {
	CapacityKWh      float64 // usable battery capacity
	MaxChargeRate    float64 // largest charge per hour, positive
	MaxDischargeRate float64 // largest discharge per hour, negative
}

// Validate checks that the vehicle parameters are usable.
func (v Vehicle) Validate() error {
	if !(v.CapacityKWh > 0) || math.IsInf(v.CapacityKWh, 0) {
		return fmt.Errorf("battery capacity must be positive, got %v", v.CapacityKWh)
	}
	if !(v.MaxChargeRate > 0) {
		return fmt.Errorf("max charge rate must be positive, got %v", v.MaxChargeRate)
	}
	if !(v.MaxDischargeRate < 0) {
		return fmt.Errorf("max discharge rate must be negative, got %v", v.MaxDischargeRate)
	}
	return nil
}

// ActionRange returns the nominal [discharge, charge] interval an agent
// should draw actions from.
func (v Vehicle) ActionRange() (min, max float64) {
	return v.MaxDischargeRate, v.MaxChargeRate
}
