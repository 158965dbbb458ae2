package model

import (
	"fmt"
	"time"
)

// VehicleStatus describes the operational state of a fleet vehicle.
type VehicleStatus string

const (
	VehicleActive    VehicleStatus = "active"
	VehicleOffline   VehicleStatus = "offline"
	VehicleInService VehicleStatus = "in_service"
	VehicleRetired   VehicleStatus = "retired"
)

// Vehicle represents a fleet vehicle as reported by telemetry ingestion.
type Vehicle struct {
	ID            string        `json:"id"`
	MemberID      string        `json:"member_id"`
	SoC           float64       `json:"soc"`            // state of charge, 0-100
	RangeMiles    float64       `json:"range_miles"`    // current estimated range
	BatteryKWh    float64       `json:"battery_kwh"`    // total battery capacity
	OdometerMiles float64       `json:"odometer_miles"`
	AvgDailyMiles float64       `json:"avg_daily_miles"` // rolling average usage
	Status        VehicleStatus `json:"status"`

	// LastService records when each service was last performed. A missing
	// entry means the service was never performed for this vehicle.
	LastService map[ServiceType]time.Time `json:"last_service,omitempty"`
}

// Validate checks that the vehicle record is usable by the engine.
func (v Vehicle) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("vehicle id must not be empty")
	}
	if v.SoC < 0 || v.SoC > 100 {
		return fmt.Errorf("soc must be between 0 and 100, got %.1f", v.SoC)
	}
	if v.BatteryKWh < 0 {
		return fmt.Errorf("battery capacity must not be negative")
	}
	return nil
}

// LastServiceAt returns the last-performed time for the given service and
// whether it is known.
func (v Vehicle) LastServiceAt(s ServiceType) (time.Time, bool) {
	t, ok := v.LastService[s]
	if !ok || t.IsZero() {
		return time.Time{}, false
	}
	return t, true
}

// Schedulable reports whether the vehicle should be considered by the engine.
func (v Vehicle) Schedulable() bool {
	return v.Status == VehicleActive || v.Status == VehicleInService
}
