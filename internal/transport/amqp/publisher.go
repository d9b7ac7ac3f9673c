// Package amqp publishes driver notifications to a RabbitMQ topic exchange.
package amqp

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/notify"
	"service-dispatch/internal/retry"
)

// DefaultExchange is used when no exchange is configured.
const DefaultExchange = "dispatch.notifications"

type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends notifications with routing keys driver.<id>.<kind> and ops.<kind>.
type Publisher struct {
	ch       channel
	conn     *amqp.Connection
	exchange string
	logger   logx.Logger
}

// Dial connects to url, opens a channel and declares the exchange.
func Dial(url, exchange string, logger logx.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	p, err := NewPublisher(ch, exchange, logger)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// NewPublisher declares a durable topic exchange on ch.
func NewPublisher(ch channel, exchange string, logger logx.Logger) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	if logger == nil {
		logger = logx.Nop()
	}
	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange %q: %w", exchange, err)
	}
	return &Publisher{ch: ch, exchange: exchange, logger: logger}, nil
}

// Notify publishes n as a persistent JSON message.
func (p *Publisher) Notify(ctx context.Context, n domain.Notification) error {
	body, err := notify.Encode(n)
	if err != nil {
		return retry.Permanent(err)
	}

	key := notify.RoutingKey(n)
	if err := p.ch.PublishWithContext(
		ctx,
		p.exchange,
		key,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Type:         string(n.Kind),
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("amqp publish %s: %w", key, err)
	}

	p.logger.Debug("amqp notification published", logx.String("routing_key", key))
	return nil
}

// Close closes the channel and, when owned, the connection.
func (p *Publisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
