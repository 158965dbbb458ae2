package config

import (
	"fmt"

	"github.com/fleetops-io/servicesched/core/model"
)

// EngineConfig drives the periodic scheduling pass.
type EngineConfig struct {
	// IntervalSeconds is the period between engine passes over the fleet.
	IntervalSeconds int `json:"interval_seconds"`
	// Thresholds overrides the built-in threshold table when non-empty.
	Thresholds []model.ServiceThreshold `json:"thresholds"`
}

func (c *EngineConfig) SetDefaults() {
	if c.IntervalSeconds <= 0 {
		c.IntervalSeconds = 300
	}
	if len(c.Thresholds) == 0 {
		c.Thresholds = model.DefaultThresholds()
	}
}

func (c EngineConfig) Validate() error {
	for _, th := range c.Thresholds {
		if th.Limit <= 0 {
			return fmt.Errorf("threshold for %s: limit must be positive", th.Service)
		}
		if th.DurationMinutes <= 0 {
			return fmt.Errorf("threshold for %s: duration must be positive", th.Service)
		}
	}
	return nil
}

// NotifierConfig tunes notification generation.
type NotifierConfig struct {
	// TTLHours expires pending notifications after this many hours.
	TTLHours int `json:"ttl_hours"`
}

func (c *NotifierConfig) SetDefaults() {
	if c.TTLHours <= 0 {
		c.TTLHours = 24
	}
}

// BookingConfig tunes the booking service.
type BookingConfig struct {
	CancellationWindowHours float64 `json:"cancellation_window_hours"`
}

func (c *BookingConfig) SetDefaults() {
	if c.CancellationWindowHours <= 0 {
		c.CancellationWindowHours = 2
	}
}

// StoreConfig selects the persistence backend for resources and bookings.
type StoreConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string `json:"backend"`
	// Path is the database location for the sqlite backend.
	Path string `json:"path"`
}

func (c *StoreConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "memory"
	}
	if c.Backend == "sqlite" && c.Path == "" {
		c.Path = "servicesched.db"
	}
}

func (c StoreConfig) Validate() error {
	if c.Backend != "memory" && c.Backend != "sqlite" {
		return fmt.Errorf("unknown store backend %s", c.Backend)
	}
	return nil
}

// FleetConfig points at the inbound fleet data.
type FleetConfig struct {
	// File is the fleet snapshot consumed by the file source.
	File string `json:"file"`
	// Resources seeds the resource inventory on startup.
	Resources []model.Resource `json:"resources"`
}

// APIConfig configures the HTTP API server.
type APIConfig struct {
	Addr string `json:"addr"`
}

func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// MetricsConfig enables the observability sinks.
type MetricsConfig struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}
