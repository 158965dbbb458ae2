// Package mqtt publishes service notifications to per-vehicle MQTT topics
// using Eclipse Paho.
package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/fleetops-io/servicesched/core/model"
	"github.com/fleetops-io/servicesched/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT publisher.
type Config struct {
	Enabled     bool   `json:"enabled"`
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	TopicPrefix string `json:"topic_prefix"`
	QoS         byte   `json:"qos"`
	UseTLS      bool   `json:"use_tls"`
	CABundle    string `json:"ca_bundle"`
	TimeoutMS   int    `json:"timeout_ms"`
}

func (c Config) timeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

func (c Config) prefix() string {
	if c.TopicPrefix == "" {
		return "fleet/notifications"
	}
	return c.TopicPrefix
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// PahoPublisher implements push.Publisher over an MQTT broker.
type PahoPublisher struct {
	cli pahoClient
	cfg Config
	log logger.Logger
}

// NewPahoPublisher connects to the broker and returns a ready publisher.
func NewPahoPublisher(cfg Config) (*PahoPublisher, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}
		if cfg.CABundle != "" {
			pem, err := os.ReadFile(cfg.CABundle)
			if err != nil {
				return nil, fmt.Errorf("read ca bundle: %w", err)
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(pem) {
				return nil, fmt.Errorf("invalid ca bundle %s", cfg.CABundle)
			}
			tlsCfg.RootCAs = pool
		}
		opts.SetTLSConfig(tlsCfg)
	}

	cli := newMQTTClient(opts)
	tok := cli.Connect()
	if !tok.WaitTimeout(cfg.timeout()) {
		return nil, fmt.Errorf("mqtt connect timeout")
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return &PahoPublisher{cli: cli, cfg: cfg, log: logger.New("mqtt-publisher")}, nil
}

// PublishNotification sends the notification JSON to
// <prefix>/<vehicle_id>.
func (p *PahoPublisher) PublishNotification(n model.ServiceNotification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	topic := fmt.Sprintf("%s/%s", p.cfg.prefix(), n.VehicleID)
	tok := p.cli.Publish(topic, p.cfg.QoS, false, payload)
	if !tok.WaitTimeout(p.cfg.timeout()) {
		return fmt.Errorf("publish timeout on %s", topic)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	p.log.Debugw("notification published", map[string]any{
		"topic":    topic,
		"vehicle":  n.VehicleID,
		"service":  string(n.Service),
		"severity": string(n.Severity),
	})
	return nil
}

// Close disconnects from the broker.
func (p *PahoPublisher) Close() error {
	p.cli.Disconnect(250)
	return nil
}
