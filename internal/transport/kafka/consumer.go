package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/prometheus/client_golang/prometheus"

	"service-dispatch/internal/logx"
	"service-dispatch/internal/retry"
	"service-dispatch/internal/service/orders"
)

// HandleFunc processes a single orders.Event from Kafka
type HandleFunc func(context.Context, orders.Event) error

var newConsumerGroup = sarama.NewConsumerGroup

// Consumer wraps a Sarama consumer group and dispatches events to a handler
type Consumer struct {
	group    sarama.ConsumerGroup
	topic    string
	handler  HandleFunc
	logger   logx.Logger
	retrier  *retry.Retrier
	messages *prometheus.CounterVec
}

// Option tunes a Consumer.
type Option func(*Consumer)

// WithRetrier retries transient handler failures before the message is skipped.
func WithRetrier(r *retry.Retrier) Option {
	return func(c *Consumer) { c.retrier = r }
}

// WithMessagesCounter counts messages by result label.
func WithMessagesCounter(v *prometheus.CounterVec) Option {
	return func(c *Consumer) { c.messages = v }
}

// NewConsumer creates a new Kafka consumer
func NewConsumer(logger logx.Logger, brokers []string, groupID, topic string, h HandleFunc, opts ...Option) (*Consumer, error) {
	// не стартую если у кафки нет настроек
	if len(brokers) == 0 || strings.TrimSpace(topic) == "" || strings.TrimSpace(groupID) == "" {
		return nil, nil
	}
	if logger == nil {
		logger = logx.Nop()
	}

	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest

	group, err := newConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}

	c := &Consumer{
		group:   group,
		topic:   topic,
		handler: h,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Run consumes until ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	if c == nil {
		return nil
	}

	h := &groupHandler{c: c}

	for {
		if err := c.group.Consume(ctx, []string{c.topic}, h); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("kafka consume error", logx.String("topic", c.topic), logx.Err(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *Consumer) Close() error {
	if c == nil {
		return nil
	}
	return c.group.Close()
}

func (c *Consumer) count(result string) {
	if c.messages != nil {
		c.messages.WithLabelValues(result).Inc()
	}
}

func (c *Consumer) handle(ctx context.Context, ev orders.Event) error {
	if c.retrier == nil {
		return c.handler(ctx, ev)
	}
	return c.retrier.Do(ctx, "kafka handle", func(ctx context.Context) error {
		return c.handler(ctx, ev)
	})
}

type groupHandler struct{ c *Consumer }

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	c := h.c
	for msg := range claim.Messages() {
		var dto EventDTO
		if err := json.Unmarshal(msg.Value, &dto); err != nil {
			c.logger.Warn("kafka bad json",
				logx.Int64("offset", msg.Offset),
				logx.Err(err),
			)
			c.count("bad_json")
			sess.MarkMessage(msg, "")
			continue
		}
		ev := ToDomain(dto)
		if ev.OrderID == "" {
			c.logger.Warn("kafka empty order_id", logx.Int64("offset", msg.Offset))
			c.count("invalid")
			sess.MarkMessage(msg, "")
			continue
		}

		// сообщение не блокирует партицию: после повторов пропускаем
		if err := c.handle(sess.Context(), ev); err != nil {
			c.logger.Error("kafka handle failed, skipping message",
				logx.String("order_id", ev.OrderID),
				logx.String("status", ev.Status),
				logx.Bool("permanent", retry.IsPermanent(err)),
				logx.Err(err),
			)
			c.count("failed")
			sess.MarkMessage(msg, "")
			continue
		}

		c.count("ok")
		sess.MarkMessage(msg, "")
	}
	return nil
}
