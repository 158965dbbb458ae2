package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/fleetops-io/servicesched/core/metrics"
	"github.com/fleetops-io/servicesched/infra/logger"
)

// InfluxSink writes scheduling events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns
// a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordBooking writes booking outcomes as line protocol events.
func (s *InfluxSink) RecordBooking(events []coremetrics.BookingEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, ev := range events {
		p := write.NewPointWithMeasurement("booking_event").
			AddTag("vehicle_id", ev.VehicleID).
			AddTag("service", string(ev.Service)).
			AddTag("action", ev.Action).
			AddTag("success", strconv.FormatBool(ev.Success)).
			AddTag("component", "booking_service").
			AddField("service_id", ev.ServiceID).
			AddField("reason", ev.Reason).
			SetTime(ev.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordEnginePass persists the summary of one scheduling pass.
func (s *InfluxSink) RecordEnginePass(ev coremetrics.EnginePassEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("engine_pass").
		AddTag("component", "scheduler").
		AddField("vehicles", ev.Vehicles).
		AddField("needs", ev.Needs).
		AddField("bundles", ev.Bundles).
		AddField("notifications", ev.Notifications).
		AddField("duration_ms", ev.Duration.Seconds()*1000).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordNotification writes an emitted notification event.
func (s *InfluxSink) RecordNotification(ev coremetrics.NotificationEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("service_notification").
		AddTag("vehicle_id", ev.VehicleID).
		AddTag("service", string(ev.Service)).
		AddTag("severity", string(ev.Severity)).
		AddTag("component", "notifier").
		AddField("urgency", ev.Urgency).
		AddField("notification_id", ev.NotificationID).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close flushes and closes the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }
