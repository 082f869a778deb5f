// Package publisher emits booking lifecycle events to Kafka.
package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/event-booking/internal/logger"
	"github.com/Shivanand-hulikatti/event-booking/internal/model"
)

// EventType names a booking lifecycle event.
type EventType string

const (
	// BookingCreated is emitted after a booking commits.
	BookingCreated EventType = "booking.created"
	// BookingCancelled is emitted after a cancellation commits.
	BookingCancelled EventType = "booking.cancelled"
)

const source = "event-booking"

// BookingEvent is the JSON value written for each record.
type BookingEvent struct {
	ID         string              `json:"id"`
	Type       EventType           `json:"type"`
	BookingID  string              `json:"bookingId"`
	UserID     string              `json:"userId"`
	EventID    string              `json:"eventId"`
	Qty        int                 `json:"qty"`
	TotalPrice float64             `json:"totalPrice"`
	Status     model.BookingStatus `json:"status"`
	OccurredAt time.Time           `json:"occurredAt"`
}

func newBookingEvent(t EventType, b *model.Booking) BookingEvent {
	return BookingEvent{
		ID:         uuid.New().String(),
		Type:       t,
		BookingID:  b.ID,
		UserID:     b.UserID,
		EventID:    b.EventID,
		Qty:        b.Qty,
		TotalPrice: b.TotalPrice,
		Status:     b.Status,
		OccurredAt: time.Now().UTC(),
	}
}

// producer is the subset of *kgo.Client used for publishing.
type producer interface {
	TryProduce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
	Flush(ctx context.Context) error
	Close()
}

const (
	deliveryTimeout = 10 * time.Second
	flushTimeout    = 5 * time.Second
)

// Config configures the Kafka publisher.
type Config struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// Kafka publishes booking events to a single topic, keyed by booking id so
// the events of one booking stay ordered. Records are produced
// asynchronously; delivery failures are logged.
type Kafka struct {
	client producer
	topic  string
	log    *zap.Logger
}

// NewKafka creates a franz-go producer client.
func NewKafka(cfg Config, log *zap.Logger) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	topic := cfg.Topic
	if topic == "" {
		topic = "booking-events"
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = source
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(clientID),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(10*time.Millisecond),
		kgo.RecordRetries(3),
		kgo.RecordDeliveryTimeout(deliveryTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Kafka{client: client, topic: topic, log: logger.OrNop(log)}, nil
}

// PublishBookingCreated enqueues a booking.created record for b.
func (k *Kafka) PublishBookingCreated(ctx context.Context, b *model.Booking) error {
	return k.publish(ctx, BookingCreated, b)
}

// PublishBookingCancelled enqueues a booking.cancelled record for b.
func (k *Kafka) PublishBookingCancelled(ctx context.Context, b *model.Booking) error {
	return k.publish(ctx, BookingCancelled, b)
}

// publish enqueues the record and returns without waiting for the broker.
// The record outlives the request, so its context drops the caller's
// cancellation; delivery is bounded by deliveryTimeout.
func (k *Kafka) publish(ctx context.Context, t EventType, b *model.Booking) error {
	event := newBookingEvent(t, b)
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", t, err)
	}

	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(b.ID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(t)},
			{Key: "event_id", Value: []byte(event.ID)},
			{Key: "source", Value: []byte(source)},
			{Key: "content_type", Value: []byte("application/json")},
		},
		Timestamp: event.OccurredAt,
	}
	k.client.TryProduce(context.WithoutCancel(ctx), record, func(r *kgo.Record, err error) {
		if err != nil {
			k.log.Warn("kafka delivery failed",
				zap.String("event_type", string(t)),
				zap.String("booking_id", string(r.Key)),
				zap.String("topic", r.Topic),
				zap.Error(err),
			)
		}
	})
	return nil
}

// Close flushes buffered records for up to flushTimeout and closes the
// client.
func (k *Kafka) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	err := k.client.Flush(ctx)
	k.client.Close()
	if err != nil {
		return fmt.Errorf("flush kafka producer: %w", err)
	}
	return nil
}

// NoOp discards every event. It is used when Kafka is disabled.
type NoOp struct{}

// PublishBookingCreated does nothing.
func (NoOp) PublishBookingCreated(context.Context, *model.Booking) error { return nil }

// PublishBookingCancelled does nothing.
func (NoOp) PublishBookingCancelled(context.Context, *model.Booking) error { return nil }

// Close does nothing.
func (NoOp) Close() error { return nil }
