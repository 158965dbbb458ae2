package metrics

import coremetrics "github.com/fleetops-io/servicesched/core/metrics"

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordBooking forwards the events to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordBooking(events []coremetrics.BookingEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordBooking(events); err != nil {
			return err
		}
	}
	return nil
}

// RecordEnginePass forwards pass summaries to sinks that record them.
func (m *MultiSink) RecordEnginePass(ev coremetrics.EnginePassEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.EnginePassRecorder); ok {
			if err := rec.RecordEnginePass(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordNotification forwards notification events to sinks that record them.
func (m *MultiSink) RecordNotification(ev coremetrics.NotificationEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.NotificationRecorder); ok {
			if err := rec.RecordNotification(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
