// Package mqtt delivers driver notifications over MQTT topics.
package mqtt

import (
	"context"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/notify"
	"service-dispatch/internal/retry"
)

const (
	DefaultTopicPrefix = "dispatch"
	defaultWait        = 5 * time.Second
)

// Client is the subset of paho's client the publisher needs.
type Client interface {
	IsConnected() bool
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Publisher sends notifications to <prefix>/drivers/<id>/<kind> and <prefix>/ops/<kind>.
type Publisher struct {
	client Client
	prefix string
	qos    byte
	wait   time.Duration
	logger logx.Logger
}

// Options configure a broker connection.
type Options struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	QoS         byte
	Wait        time.Duration
}

// Connect dials the broker and returns a publisher bound to it.
func Connect(opts Options, logger logx.Logger) (*Publisher, error) {
	co := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)
	if opts.Username != "" {
		co.SetUsername(opts.Username).SetPassword(opts.Password)
	}

	c := paho.NewClient(co)
	token := c.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", opts.Broker, token.Error())
	}
	return NewPublisher(c, opts, logger), nil
}

// NewPublisher wraps an already connected client.
func NewPublisher(c Client, opts Options, logger logx.Logger) *Publisher {
	prefix := strings.TrimSuffix(opts.TopicPrefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	wait := opts.Wait
	if wait <= 0 {
		wait = defaultWait
	}
	if logger == nil {
		logger = logx.Nop()
	}
	qos := opts.QoS
	if qos > 2 {
		qos = 1
	}
	return &Publisher{client: c, prefix: prefix, qos: qos, wait: wait, logger: logger}
}

// Topic returns the topic n is published to.
func (p *Publisher) Topic(n domain.Notification) string {
	if n.Kind == domain.NotifyEscalation || n.DriverID == "" {
		return p.prefix + "/ops/" + string(n.Kind)
	}
	return p.prefix + "/drivers/" + n.DriverID + "/" + string(n.Kind)
}

// Notify publishes n and waits for the broker acknowledgement.
func (p *Publisher) Notify(ctx context.Context, n domain.Notification) error {
	body, err := notify.Encode(n)
	if err != nil {
		return retry.Permanent(err)
	}

	topic := p.Topic(n)
	token := p.client.Publish(topic, p.qos, false, body)

	wait := p.wait
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < wait {
			wait = left
		}
	}
	if !token.WaitTimeout(wait) {
		return fmt.Errorf("mqtt publish %s: timed out after %s", topic, wait)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", topic, err)
	}

	p.logger.Debug("mqtt notification published", logx.String("topic", topic))
	return nil
}

// Close disconnects the client if it is connected.
func (p *Publisher) Close() {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
