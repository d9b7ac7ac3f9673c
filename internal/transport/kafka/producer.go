package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/IBM/sarama"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
)

var newSyncProducer = sarama.NewSyncProducer

// PayoutProducer publishes computed payouts keyed by order id.
type PayoutProducer struct {
	producer sarama.SyncProducer
	topic    string
	logger   logx.Logger
}

// NewPayoutProducer connects a sync producer. It returns nil, nil when Kafka is not configured.
func NewPayoutProducer(logger logx.Logger, brokers []string, topic string) (*PayoutProducer, error) {
	if len(brokers) == 0 || strings.TrimSpace(topic) == "" {
		return nil, nil
	}

	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3

	p, err := newSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return NewPayoutProducerFrom(p, topic, logger), nil
}

// NewPayoutProducerFrom wraps an existing producer.
func NewPayoutProducerFrom(p sarama.SyncProducer, topic string, logger logx.Logger) *PayoutProducer {
	if logger == nil {
		logger = logx.Nop()
	}
	return &PayoutProducer{producer: p, topic: topic, logger: logger}
}

// PublishPayout sends p and waits for the broker ack.
func (p *PayoutProducer) PublishPayout(ctx context.Context, payout domain.Payout) error {
	if p == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	b, err := json.Marshal(FromPayout(payout))
	if err != nil {
		return fmt.Errorf("encode payout: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(payout.OrderID),
		Value: sarama.ByteEncoder(b),
	})
	if err != nil {
		return fmt.Errorf("kafka send payout %s: %w", payout.ID, err)
	}

	p.logger.Debug("payout published",
		logx.String("payout_id", payout.ID),
		logx.Any("partition", partition),
		logx.Int64("offset", offset),
	)
	return nil
}

func (p *PayoutProducer) Close() error {
	if p == nil {
		return nil
	}
	return p.producer.Close()
}
