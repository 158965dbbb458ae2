package model

import "time"

// Severity tiers a notification by its urgency score.
type Severity string

const (
	SeverityRoutine  Severity = "routine"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// SeverityFor maps an urgency score to its tier.
func SeverityFor(urgency float64) Severity {
	switch {
	case urgency >= 90:
		return SeverityCritical
	case urgency >= 60:
		return SeverityWarning
	default:
		return SeverityRoutine
	}
}

// NotificationStatus is the lifecycle state of a notification.
type NotificationStatus string

const (
	NotificationPending  NotificationStatus = "pending"
	NotificationAccepted NotificationStatus = "accepted"
	NotificationDeclined NotificationStatus = "declined"
	NotificationExpired  NotificationStatus = "expired"
)

// TimeSlot is a candidate (window, resource) pair offered to a member.
// It becomes durable only once accepted.
type TimeSlot struct {
	Start          time.Time    `json:"start"`
	End            time.Time    `json:"end"`
	ResourceID     string       `json:"resource_id,omitempty"`
	ResourceNumber int          `json:"resource_number,omitempty"`
	ResourceType   ResourceType `json:"resource_type,omitempty"`
	OffPeak        bool         `json:"off_peak"`
	Cost           float64      `json:"cost"`
	SavingsVsPeak  float64      `json:"savings_vs_peak"`
}

// BundleSuggestion is an additional service proposed for the same visit.
type BundleSuggestion struct {
	Service           ServiceType `json:"service"`
	Reason            string      `json:"reason"`
	ExtraDurationMins int         `json:"extra_duration_mins"`
}

// ServiceNotification is the member-facing recommendation unit.
type ServiceNotification struct {
	ID                string             `json:"id"`
	VehicleID         string             `json:"vehicle_id"`
	MemberID          string             `json:"member_id,omitempty"`
	Service           ServiceType        `json:"service"`
	Headline          string             `json:"headline"`
	Reason            string             `json:"reason"`
	RecommendedSlot   TimeSlot           `json:"recommended_slot"`
	AlternativeSlots  []TimeSlot         `json:"alternative_slots,omitempty"`
	DurationMinutes   int                `json:"duration_minutes"`
	EstimatedCost     float64            `json:"estimated_cost"`
	SavingsNote       string             `json:"savings_note,omitempty"`
	BundledSuggestion []BundleSuggestion `json:"bundled_suggestions,omitempty"`
	Urgency           float64            `json:"urgency"`
	PriorityScore     float64            `json:"priority_score"`
	PredictedDate     time.Time          `json:"predicted_date"`
	Severity          Severity           `json:"severity"`
	CreatedAt         time.Time          `json:"created_at"`
	Status            NotificationStatus `json:"status"`
}
