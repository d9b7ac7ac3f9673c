package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-dispatch/internal/domain"
)

type mockToken struct {
	err     error
	timeout bool
}

func (t *mockToken) Wait() bool                       { return true }
func (t *mockToken) WaitTimeout(_ time.Duration) bool { return !t.timeout }
func (t *mockToken) Error() error                     { return t.err }
func (t *mockToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type sent struct {
	topic   string
	qos     byte
	payload []byte
}

type mockClient struct {
	token        *mockToken
	sent         []sent
	Disconnected bool
}

func (m *mockClient) IsConnected() bool       { return true }
func (m *mockClient) Disconnect(quiesce uint) { m.Disconnected = true }
func (m *mockClient) Publish(topic string, qos byte, _ bool, payload interface{}) paho.Token {
	m.sent = append(m.sent, sent{topic: topic, qos: qos, payload: payload.([]byte)})
	if m.token == nil {
		return &mockToken{}
	}
	return m.token
}

func TestTopic(t *testing.T) {
	t.Parallel()

	p := NewPublisher(&mockClient{}, Options{TopicPrefix: "fleet/"}, nil)
	assert.Equal(t, "fleet/drivers/d1/offer", p.Topic(domain.Notification{Kind: domain.NotifyOffer, DriverID: "d1"}))
	assert.Equal(t, "fleet/ops/escalation", p.Topic(domain.Notification{Kind: domain.NotifyEscalation, OrderID: "o1"}))

	def := NewPublisher(&mockClient{}, Options{}, nil)
	assert.Equal(t, "dispatch/drivers/d2/offer_void", def.Topic(domain.Notification{Kind: domain.NotifyOfferVoid, DriverID: "d2"}))
}

func TestNotify_Publishes(t *testing.T) {
	t.Parallel()

	mc := &mockClient{}
	p := NewPublisher(mc, Options{QoS: 1}, nil)

	err := p.Notify(context.Background(), domain.Notification{Kind: domain.NotifyOffer, DriverID: "d1", OrderID: "o1"})
	require.NoError(t, err)
	require.Len(t, mc.sent, 1)
	assert.Equal(t, byte(1), mc.sent[0].qos)

	var body map[string]any
	require.NoError(t, json.Unmarshal(mc.sent[0].payload, &body))
	assert.Equal(t, "o1", body["order_id"])
}

func TestNotify_TokenError(t *testing.T) {
	t.Parallel()

	nack := errors.New("not authorized")
	p := NewPublisher(&mockClient{token: &mockToken{err: nack}}, Options{}, nil)

	err := p.Notify(context.Background(), domain.Notification{Kind: domain.NotifyOffer, DriverID: "d1"})
	require.ErrorIs(t, err, nack)
}

func TestNotify_Timeout(t *testing.T) {
	t.Parallel()

	p := NewPublisher(&mockClient{token: &mockToken{timeout: true}}, Options{Wait: time.Millisecond}, nil)

	err := p.Notify(context.Background(), domain.Notification{Kind: domain.NotifyOffer, DriverID: "d1"})
	require.ErrorContains(t, err, "timed out")
}

func TestClose_DisconnectsClient(t *testing.T) {
	t.Parallel()

	mc := &mockClient{}
	NewPublisher(mc, Options{}, nil).Close()
	assert.True(t, mc.Disconnected)
}
