package model

// ServiceType identifies a depot service a vehicle can receive.
type ServiceType string

const (
	ServiceCharge       ServiceType = "charge"
	ServiceDetailClean  ServiceType = "detail_clean"
	ServiceTireRotation ServiceType = "tire_rotation"
	ServiceBatteryCheck ServiceType = "battery_check"
)

// ThresholdUnit is the measurement unit of a service threshold.
type ThresholdUnit string

const (
	UnitPercent ThresholdUnit = "percent"
	UnitDays    ThresholdUnit = "days"
	UnitMiles   ThresholdUnit = "miles"
)

// ServiceThreshold defines when a service becomes due.
type ServiceThreshold struct {
	Service         ServiceType   `json:"service"`
	Limit           float64       `json:"limit"`
	Unit            ThresholdUnit `json:"unit"`
	PriorityWeight  float64       `json:"priority_weight"` // 1-10 scale
	DurationMinutes int           `json:"duration_minutes"`
}

// DefaultThresholds returns the reference threshold table used when the
// configuration does not override it.
func DefaultThresholds() []ServiceThreshold {
	return []ServiceThreshold{
		{Service: ServiceCharge, Limit: 30, Unit: UnitPercent, PriorityWeight: 10, DurationMinutes: 45},
		{Service: ServiceDetailClean, Limit: 14, Unit: UnitDays, PriorityWeight: 4, DurationMinutes: 60},
		{Service: ServiceTireRotation, Limit: 5000, Unit: UnitMiles, PriorityWeight: 6, DurationMinutes: 30},
		{Service: ServiceBatteryCheck, Limit: 90, Unit: UnitDays, PriorityWeight: 8, DurationMinutes: 20},
	}
}
