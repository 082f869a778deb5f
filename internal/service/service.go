// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/event-booking/internal/model"
)

// Transactor runs fn inside one transaction spanning every store that
// operates on the context it receives.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventStore persists events and owns their ticket counters.
type EventStore interface {
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, f model.EventFilter, limit, offset int) ([]model.Event, int, error)
	Delete(ctx context.Context, id string) error
	Reserve(ctx context.Context, eventID string, qty int) (*model.Event, error)
	Release(ctx context.Context, eventID string, qty int) error
}

// BookingLedger persists bookings.
type BookingLedger interface {
	Insert(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.UserBooking, int, error)
	ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]model.EventBooking, int, error)
	MarkCancelled(ctx context.Context, id string) (*model.Booking, error)
	DeleteByEvent(ctx context.Context, eventID string) (int64, error)
}

// EventPublisher announces committed booking changes.
type EventPublisher interface {
	PublishBookingCreated(ctx context.Context, b *model.Booking) error
	PublishBookingCancelled(ctx context.Context, b *model.Booking) error
}

// parseID returns the canonical form of id, or invalid when it is not a UUID.
func parseID(id string, invalid error) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", invalid
	}
	return u.String(), nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// passThrough returns err unchanged when it carries a domain kind and wraps it
// with op otherwise.
func passThrough(op string, err error) error {
	if _, ok := model.Message(err); ok {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
