package model

// Service-type-indexed constants used across the engine and the notifier.
// They live next to the threshold table so callers share one source.

// VisitOverheadMinutes is the fixed setup cost of bringing a vehicle into
// the depot for a visit, regardless of what is performed.
const VisitOverheadMinutes = 15

// TimeSensitivity expresses how quickly a missed service of each type
// becomes critical, on a 0-100 scale.
var TimeSensitivity = map[ServiceType]float64{
	ServiceCharge:       100,
	ServiceBatteryCheck: 70,
	ServiceTireRotation: 50,
	ServiceDetailClean:  30,
}

// BundleRatio is the current/threshold ratio at which a secondary need is
// folded into an already-scheduled visit.
var BundleRatio = map[ServiceType]float64{
	ServiceCharge:       0.85,
	ServiceBatteryCheck: 0.85,
	ServiceTireRotation: 0.85,
	ServiceDetailClean:  0.80,
}

// EstimatedCost is the flat member-facing price per service. Charge cost is
// computed from energy and rate instead.
var EstimatedCost = map[ServiceType]float64{
	ServiceDetailClean:  35,
	ServiceTireRotation: 25,
	ServiceBatteryCheck: 0,
}

// ResourceBufferMinutes is the turnaround buffer added after a service,
// per resource type. Bays need more turnaround than staging spots.
var ResourceBufferMinutes = map[ResourceType]int{
	ResourceChargeStall:    10,
	ResourceCleanStall:     15,
	ResourceMaintenanceBay: 30,
	ResourceStaging:        5,
}

// ServiceLabel is the member-facing name of each service.
var ServiceLabel = map[ServiceType]string{
	ServiceCharge:       "Charging",
	ServiceDetailClean:  "Detail & Clean",
	ServiceTireRotation: "Tire Rotation",
	ServiceBatteryCheck: "Battery Check",
}
