package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/fleetops-io/servicesched/core/metrics"
)

// PromSink records scheduling and booking events in Prometheus metrics.
type PromSink struct {
	bookings      *prometheus.CounterVec
	notifications *prometheus.CounterVec
	passDuration  prometheus.Histogram
	queueDepth    prometheus.Gauge
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The Prometheus server should be started separately.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	bookings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_operations_total",
		Help: "Total number of booking operations by action and outcome",
	}, []string{"service", "action", "success"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "service_notifications_total",
		Help: "Total number of service notifications emitted",
	}, []string{"service", "severity"})
	passDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "engine_pass_duration_seconds",
		Help:    "Duration of one scheduling pass over the fleet",
		Buckets: prometheus.DefBuckets,
	})
	queueDepth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "engine_queue_depth",
		Help: "Number of actionable needs in the last priority queue",
	})

	if err := reg.Register(bookings); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			bookings = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(notifications); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			notifications = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(passDuration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			passDuration = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(queueDepth); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			queueDepth = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}

	return &PromSink{bookings: bookings, notifications: notifications, passDuration: passDuration, queueDepth: queueDepth}, nil
}

// RecordBooking increments the counter for each booking event.
func (s *PromSink) RecordBooking(events []coremetrics.BookingEvent) error {
	for _, ev := range events {
		s.bookings.WithLabelValues(string(ev.Service), ev.Action, strconv.FormatBool(ev.Success)).Inc()
	}
	return nil
}

// RecordEnginePass records pass duration and queue depth.
func (s *PromSink) RecordEnginePass(ev coremetrics.EnginePassEvent) error {
	s.passDuration.Observe(ev.Duration.Seconds())
	s.queueDepth.Set(float64(ev.Needs))
	return nil
}

// RecordNotification increments the notification counter.
func (s *PromSink) RecordNotification(ev coremetrics.NotificationEvent) error {
	s.notifications.WithLabelValues(string(ev.Service), string(ev.Severity)).Inc()
	return nil
}
