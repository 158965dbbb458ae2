package model

import "time"

// ServiceStatus is the lifecycle state of a scheduled service.
type ServiceStatus string

const (
	StatusScheduled ServiceStatus = "scheduled"
	StatusDeclined  ServiceStatus = "declined"
	StatusCancelled ServiceStatus = "cancelled"
	StatusCompleted ServiceStatus = "completed"
)

// ScheduledService is the durable booking record. It outlives the
// notification that produced it.
type ScheduledService struct {
	ID             string        `json:"id"`
	VehicleID      string        `json:"vehicle_id"`
	ResourceID     string        `json:"resource_id,omitempty"`
	Service        ServiceType   `json:"service"`
	Status         ServiceStatus `json:"status"`
	PredictedDate  time.Time     `json:"predicted_date"`
	ScheduledStart time.Time     `json:"scheduled_start"`
	ScheduledEnd   time.Time     `json:"scheduled_end"`
	PriorityScore  float64       `json:"priority_score"`
	Reason         string        `json:"reason"`
	RespondedAt    time.Time     `json:"responded_at"`
}

// BookingResult is returned by every mutating booking operation. Failures
// are carried in the result rather than raised so the caller can render
// Message directly.
type BookingResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ServiceID string `json:"service_id,omitempty"`
}
