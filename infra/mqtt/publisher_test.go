package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetops-io/servicesched/core/model"
)

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type fakeClient struct {
	connectErr   error
	publishErr   error
	topics       []string
	payloads     [][]byte
	disconnected bool
}

func (c *fakeClient) IsConnected() bool { return true }
func (c *fakeClient) Connect() paho.Token {
	return &fakeToken{err: c.connectErr}
}
func (c *fakeClient) Disconnect(uint) { c.disconnected = true }
func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.topics = append(c.topics, topic)
	c.payloads = append(c.payloads, payload.([]byte))
	return &fakeToken{err: c.publishErr}
}

func withFakeClient(t *testing.T, cli *fakeClient) {
	t.Helper()
	orig := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return cli }
	t.Cleanup(func() { newMQTTClient = orig })
}

func TestPahoPublisher_Publish(t *testing.T) {
	cli := &fakeClient{}
	withFakeClient(t, cli)

	pub, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883", ClientID: "test"})
	require.NoError(t, err)

	n := model.ServiceNotification{
		ID:        "n1",
		VehicleID: "v1",
		Service:   model.ServiceCharge,
		Severity:  model.SeverityWarning,
	}
	require.NoError(t, pub.PublishNotification(n))
	require.Len(t, cli.topics, 1)
	assert.Equal(t, "fleet/notifications/v1", cli.topics[0])

	var decoded model.ServiceNotification
	require.NoError(t, json.Unmarshal(cli.payloads[0], &decoded))
	assert.Equal(t, "n1", decoded.ID)
	assert.Equal(t, model.ServiceCharge, decoded.Service)

	require.NoError(t, pub.Close())
	assert.True(t, cli.disconnected)
}

func TestPahoPublisher_TopicPrefix(t *testing.T) {
	cli := &fakeClient{}
	withFakeClient(t, cli)

	pub, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883", TopicPrefix: "depot/alerts"})
	require.NoError(t, err)
	require.NoError(t, pub.PublishNotification(model.ServiceNotification{ID: "n1", VehicleID: "v9"}))
	assert.Equal(t, "depot/alerts/v9", cli.topics[0])
}

func TestPahoPublisher_ConnectError(t *testing.T) {
	withFakeClient(t, &fakeClient{connectErr: errors.New("refused")})
	_, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883"})
	require.Error(t, err)
}

func TestPahoPublisher_PublishError(t *testing.T) {
	cli := &fakeClient{publishErr: errors.New("broker gone")}
	withFakeClient(t, cli)

	pub, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883"})
	require.NoError(t, err)
	assert.Error(t, pub.PublishNotification(model.ServiceNotification{VehicleID: "v1"}))
}

func TestMockPublisher(t *testing.T) {
	m := NewMockPublisher()
	require.NoError(t, m.PublishNotification(model.ServiceNotification{ID: "n1"}))
	assert.Len(t, m.Published(), 1)

	m.Fail = true
	assert.Error(t, m.PublishNotification(model.ServiceNotification{ID: "n2"}))

	require.NoError(t, m.Close())
	assert.True(t, m.Closed)
}
