// Package events publishes domain events (bookings, wallet movements and
// outbound notifications) to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/delonixservices/b2b-agent-sub001/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Topic is an unprefixed topic name.
type Topic string

const (
	TopicNotifications Topic = "notifications"
	TopicBookings      Topic = "bookings"
	TopicWallet        Topic = "wallet"
)

// Event types.
const (
	TypeOTPRequested     = "otp.requested"
	TypeBookingPrebooked = "booking.prebooked"
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingFailed    = "booking.failed"
	TypeBookingCancelled = "booking.cancelled"
	TypeWalletCredited   = "wallet.credited"
	TypeWalletDebited    = "wallet.debited"
)

// Envelope wraps every published payload.
type Envelope struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Data       interface{} `json:"data"`
}

func NewEnvelope(eventType string, data interface{}) Envelope {
	return Envelope{ID: uuid.NewString(), Type: eventType, OccurredAt: time.Now().UTC(), Data: data}
}

// Publisher delivers events to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic Topic, key string, payload interface{}) error
	Close() error
}

// Emit publishes and only logs failures. Events never fail the request that raised them.
func Emit(ctx context.Context, p Publisher, topic Topic, key, eventType string, data interface{}) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, topic, key, NewEnvelope(eventType, data)); err != nil {
		logger.L().Warn("event publish failed",
			zap.String("topic", string(topic)), zap.String("type", eventType), zap.Error(err))
	}
}

// LogPublisher writes events to the application log. It is used when no
// Kafka brokers are configured.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, topic Topic, key string, payload interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	logger.L().Info("event", zap.String("topic", string(topic)), zap.String("key", key), zap.ByteString("payload", b))
	return nil
}

func (LogPublisher) Close() error { return nil }

// Message is a published event as seen by MemoryPublisher.
type Message struct {
	Topic   Topic
	Key     string
	Payload interface{}
}

// MemoryPublisher records events in memory.
type MemoryPublisher struct {
	mu   sync.Mutex
	msgs []Message
	Err  error
}

func (m *MemoryPublisher) Publish(ctx context.Context, topic Topic, key string, payload interface{}) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, Message{Topic: topic, Key: key, Payload: payload})
	return nil
}

func (m *MemoryPublisher) Close() error { return nil }

// Messages returns a copy of everything published so far.
func (m *MemoryPublisher) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.msgs...)
}

// Types lists the envelope types published to topic, in order.
func (m *MemoryPublisher) Types(topic Topic) []string {
	var out []string
	for _, msg := range m.Messages() {
		if msg.Topic != topic {
			continue
		}
		if env, ok := msg.Payload.(Envelope); ok {
			out = append(out, env.Type)
		}
	}
	return out
}
