package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/delonixservices/b2b-agent-sub001/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaPublisher publishes JSON messages through a single kafka-go Writer.
// The topic is chosen per message and prefixed with the configured prefix.
type KafkaPublisher struct {
	writer *kafka.Writer
	prefix string
}

// NewKafkaPublisher builds an asynchronous writer; delivery errors are logged
// from the completion callback.
func NewKafkaPublisher(brokers []string, prefix string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
		Compression:  kafka.Snappy,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.L().Error("failed to publish events", zap.Error(err), zap.Int("count", len(messages)))
			}
		},
	}
	return &KafkaPublisher{writer: w, prefix: prefix}
}

// TopicName returns the broker-side topic name.
func (p *KafkaPublisher) TopicName(t Topic) string {
	if p.prefix == "" {
		return string(t)
	}
	return p.prefix + "." + string(t)
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic Topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.TopicName(topic),
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// New returns a Kafka publisher when brokers are configured and a log publisher otherwise.
func New(brokers []string, prefix string) Publisher {
	if len(brokers) == 0 {
		return LogPublisher{}
	}
	return NewKafkaPublisher(brokers, prefix)
}
