package model

import "time"

// ResourceType identifies the kind of physical unit a service occupies.
type ResourceType string

const (
	ResourceChargeStall    ResourceType = "charge_stall"
	ResourceCleanStall     ResourceType = "clean_stall"
	ResourceMaintenanceBay ResourceType = "maintenance_bay"
	ResourceStaging        ResourceType = "staging"
)

// ResourceStatus is the live state of a stall or bay.
type ResourceStatus string

const (
	ResourceAvailable    ResourceStatus = "available"
	ResourceReserved     ResourceStatus = "reserved"
	ResourceOccupied     ResourceStatus = "occupied"
	ResourceOutOfService ResourceStatus = "out_of_service"
)

// Resource is an exclusively-assignable stall or bay at a depot.
type Resource struct {
	ID           string         `json:"id"`
	Number       int            `json:"number"`
	Type         ResourceType   `json:"type"`
	Depot        string         `json:"depot,omitempty"`
	Status       ResourceStatus `json:"status"`
	VehicleID    string         `json:"vehicle_id,omitempty"`
	SessionStart time.Time      `json:"session_start,omitempty"`
	SessionEnd   time.Time      `json:"session_end,omitempty"`
}

// ResourceTypeFor maps a service to the resource type it occupies.
func ResourceTypeFor(s ServiceType) ResourceType {
	switch s {
	case ServiceCharge:
		return ResourceChargeStall
	case ServiceDetailClean:
		return ResourceCleanStall
	case ServiceTireRotation, ServiceBatteryCheck:
		return ResourceMaintenanceBay
	}
	return ResourceStaging
}
