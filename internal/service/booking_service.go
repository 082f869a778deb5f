package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/event-booking/internal/logger"
	"github.com/Shivanand-hulikatti/event-booking/internal/model"
	"github.com/Shivanand-hulikatti/event-booking/internal/publisher"
	"github.com/Shivanand-hulikatti/event-booking/internal/telemetry"
)

// MsgBookingCancelled is returned by a successful cancellation.
const MsgBookingCancelled = "Booking cancelled successfully"

// DefaultPublishTimeout bounds how long a committed booking waits on the
// event publisher before its response is written.
const DefaultPublishTimeout = 2 * time.Second

// BookingService creates and cancels bookings. Every inventory change and
// its ledger entry commit or roll back together.
type BookingService struct {
	tx        Transactor
	events    EventStore
	bookings  BookingLedger
	publisher EventPublisher
	log       *zap.Logger

	publishTimeout time.Duration
}

// NewBookingService constructs a BookingService. A nil publisher disables
// event publishing.
func NewBookingService(tx Transactor, events EventStore, bookings BookingLedger, pub EventPublisher, log *zap.Logger) *BookingService {
	if pub == nil {
		pub = publisher.NoOp{}
	}
	return &BookingService{
		tx:             tx,
		events:         events,
		bookings:       bookings,
		publisher:      pub,
		log:            logger.OrNop(log),
		publishTimeout: DefaultPublishTimeout,
	}
}

// CreateBooking reserves req.Qty tickets of req.EventID for user and records
// the booking with the price frozen at reservation time.
func (s *BookingService) CreateBooking(ctx context.Context, user model.User, req model.CreateBookingRequest) (*model.Booking, error) {
	if user.ID == "" {
		return nil, model.ErrAuthRequired
	}
	eventID, err := parseID(req.EventID, model.ErrInvalidEventID)
	if err != nil {
		return nil, err
	}
	qty, err := req.Qty.Int()
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "booking.create",
		attribute.String("event.id", eventID),
		attribute.Int("booking.qty", qty),
	)
	defer span.End()

	var booking *model.Booking
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		event, err := s.events.Reserve(ctx, eventID, qty)
		if err != nil {
			return err
		}
		b := &model.Booking{
			UserID:     user.ID,
			EventID:    event.ID,
			Qty:        qty,
			TotalPrice: roundCents(event.Price * float64(qty)),
		}
		if err := s.bookings.Insert(ctx, b); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		if _, ok := model.Message(err); !ok {
			s.log.Error("create booking failed",
				zap.String("event_id", eventID),
				zap.String("user_id", user.ID),
				zap.Int("qty", qty),
				zap.Error(err),
			)
		}
		return nil, passThrough("create booking", err)
	}

	s.log.Info("booking created",
		zap.String("booking_id", booking.ID),
		zap.String("event_id", booking.EventID),
		zap.String("user_id", booking.UserID),
		zap.Int("qty", booking.Qty),
	)
	s.publish(ctx, "booking.created", booking, s.publisher.PublishBookingCreated)
	return booking, nil
}

// CancelBooking cancels the booking and returns its tickets to the event.
// Only the owner or an admin may cancel.
func (s *BookingService) CancelBooking(ctx context.Context, user model.User, bookingID string) (string, error) {
	if user.ID == "" {
		return "", model.ErrAuthRequired
	}
	id, err := parseID(bookingID, model.ErrInvalidBookingID)
	if err != nil {
		return "", err
	}

	ctx, span := telemetry.StartSpan(ctx, "booking.cancel", attribute.String("booking.id", id))
	defer span.End()

	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return "", passThrough("load booking", err)
	}
	if !model.CanManageBooking(user, booking) {
		return "", model.ErrNotBookingOwner
	}
	if booking.IsCancelled() {
		return "", model.ErrBookingCancelled
	}

	var cancelled *model.Booking
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		b, err := s.bookings.MarkCancelled(ctx, id)
		if err != nil {
			return err
		}
		if err := s.events.Release(ctx, b.EventID, b.Qty); err != nil {
			s.log.Error("inventory release failed, cancellation rolled back; reconciliation required",
				zap.String("booking_id", b.ID),
				zap.String("event_id", b.EventID),
				zap.Int("qty", b.Qty),
				zap.Error(err),
			)
			if errors.Is(err, model.ErrConsistency) {
				return err
			}
			return fmt.Errorf("%w: %v", model.ErrInventoryReleaseGap, err)
		}
		cancelled = b
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return "", passThrough("cancel booking", err)
	}

	s.log.Info("booking cancelled",
		zap.String("booking_id", cancelled.ID),
		zap.String("event_id", cancelled.EventID),
		zap.String("cancelled_by", user.ID),
	)
	s.publish(ctx, "booking.cancelled", cancelled, s.publisher.PublishBookingCancelled)
	return MsgBookingCancelled, nil
}

// publish runs after commit, detached from the request's cancellation and
// bounded by publishTimeout. A failure is logged and never undoes the booking.
func (s *BookingService) publish(ctx context.Context, name string, b *model.Booking, fn func(context.Context, *model.Booking) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	if err := fn(ctx, b); err != nil {
		s.log.Warn("publish booking event failed",
			zap.String("event_type", name),
			zap.String("booking_id", b.ID),
			zap.Error(err),
		)
	}
}
