// Package config loads the service configuration from a YAML or JSON file
// with optional environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/fleetops-io/servicesched/core/model"
	"github.com/fleetops-io/servicesched/infra/monitoring"
	"github.com/fleetops-io/servicesched/infra/mqtt"
)

type Config struct {
	Engine   EngineConfig        `json:"engine"`
	Pricing  model.EnergyPricing `json:"pricing"`
	Notifier NotifierConfig      `json:"notifier"`
	Booking  BookingConfig       `json:"booking"`
	Store    StoreConfig         `json:"store"`
	Fleet    FleetConfig         `json:"fleet"`
	API      APIConfig           `json:"api"`
	MQTT     mqtt.Config         `json:"mqtt"`
	Metrics  MetricsConfig       `json:"metrics"`
	Sentry   monitoring.Config   `json:"sentry"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("SCHED_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "sched_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Engine.SetDefaults()
	cfg.Notifier.SetDefaults()
	cfg.Booking.SetDefaults()
	cfg.Store.SetDefaults()
	cfg.API.SetDefaults()
	if len(cfg.Pricing.Periods) == 0 {
		cfg.Pricing = model.DefaultPricing()
	}
	if err := cfg.Engine.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Store.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
