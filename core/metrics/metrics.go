package metrics

import (
	"time"

	"github.com/fleetops-io/servicesched/core/model"
)

// BookingEvent represents the outcome of a booking mutation to be recorded.
type BookingEvent struct {
	ServiceID string
	VehicleID string
	Service   model.ServiceType
	Action    string // accept, decline, reschedule, cancel, complete
	Success   bool
	Reason    string
	Time      time.Time
}

// MetricsSink records booking outcomes for observability purposes.
type MetricsSink interface {
	RecordBooking(events []BookingEvent) error
}

// EnginePassEvent captures data about one scheduling pass over the fleet.
type EnginePassEvent struct {
	Vehicles      int
	Needs         int
	Bundles       int
	Notifications int
	Duration      time.Duration
	Time          time.Time
}

// EnginePassRecorder records engine pass summaries.
type EnginePassRecorder interface {
	RecordEnginePass(ev EnginePassEvent) error
}

// NotificationEvent is a snapshot of an emitted notification.
type NotificationEvent struct {
	NotificationID string
	VehicleID      string
	Service        model.ServiceType
	Severity       model.Severity
	Urgency        float64
	Time           time.Time
}

// NotificationRecorder records emitted notifications.
type NotificationRecorder interface {
	RecordNotification(ev NotificationEvent) error
}

// NopSink discards all records.
type NopSink struct{}

// RecordBooking implements MetricsSink.
func (NopSink) RecordBooking([]BookingEvent) error { return nil }

// RecordEnginePass implements EnginePassRecorder.
func (NopSink) RecordEnginePass(EnginePassEvent) error { return nil }

// RecordNotification implements NotificationRecorder.
func (NopSink) RecordNotification(NotificationEvent) error { return nil }
