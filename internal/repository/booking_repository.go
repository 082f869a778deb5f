package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Shivanand-hulikatti/event-booking/internal/database"
	"github.com/Shivanand-hulikatti/event-booking/internal/model"
)

const bookingColumns = "id, user_id, event_id, qty, total_price, status, created_at, updated_at"

func bookingDest(b *model.Booking) []any {
	return []any{&b.ID, &b.UserID, &b.EventID, &b.Qty, &b.TotalPrice, &b.Status, &b.CreatedAt, &b.UpdatedAt}
}

// BookingRepository is the booking ledger.
type BookingRepository struct {
	db database.DBTX
}

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository(db database.DBTX) *BookingRepository {
	return &BookingRepository{db: db}
}

// Insert stores b as a confirmed booking. A missing ID is generated.
func (r *BookingRepository) Insert(ctx context.Context, b *model.Booking) error {
	if b.Qty <= 0 {
		return model.ErrQtyNotPositive
	}
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	b.Status = model.BookingConfirmed
	b.CreatedAt, b.UpdatedAt = now, now

	_, err := database.Conn(ctx, r.db).Exec(ctx,
		`INSERT INTO bookings (`+bookingColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		b.ID, b.UserID, b.EventID, b.Qty, b.TotalPrice, b.Status, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return model.ErrEventNotFound
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// GetByID returns a single booking or model.ErrBookingNotFound.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	var b model.Booking
	err := database.Conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id,
	).Scan(bookingDest(&b)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookingNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return &b, nil
}

// ListByUser returns one page of the user's bookings, newest first, each
// joined with its event, plus the user's total booking count.
func (r *BookingRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.UserBooking, int, error) {
	db := database.Conn(ctx, r.db)

	var total int
	if err := db.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count user bookings: %w", err)
	}

	rows, err := db.Query(ctx,
		`SELECT b.id, b.user_id, b.event_id, b.qty, b.total_price, b.status, b.created_at, b.updated_at, `+
			columns("e", eventColumns)+`
		 FROM bookings b
		 JOIN events e ON e.id = b.event_id
		 WHERE b.user_id = $1
		 ORDER BY b.created_at DESC, b.id DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list user bookings: %w", err)
	}
	defer rows.Close()

	out := []model.UserBooking{}
	for rows.Next() {
		var ub model.UserBooking
		dest := append(bookingDest(&ub.Booking), eventDest(&ub.Event)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("scan user booking: %w", err)
		}
		if ub.Event.Tags == nil {
			ub.Event.Tags = []model.LocalizedText{}
		}
		out = append(out, ub)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list user bookings: %w", err)
	}
	return out, total, nil
}

// ListByEvent returns one page of an event's bookings, oldest first, each
// joined with its owner, plus the event's total booking count. Owners not
// present in the users table are returned with only their id.
func (r *BookingRepository) ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]model.EventBooking, int, error) {
	db := database.Conn(ctx, r.db)

	var total int
	if err := db.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings WHERE event_id = $1`, eventID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count event bookings: %w", err)
	}

	rows, err := db.Query(ctx,
		`SELECT b.id, b.user_id, COALESCE(u.username, ''), COALESCE(u.email, ''), COALESCE(u.role, 'user'),
		        b.event_id, b.qty, b.total_price, b.status, b.created_at, b.updated_at
		 FROM bookings b
		 LEFT JOIN users u ON u.id::text = b.user_id
		 WHERE b.event_id = $1
		 ORDER BY b.created_at ASC, b.id ASC
		 LIMIT $2 OFFSET $3`,
		eventID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list event bookings: %w", err)
	}
	defer rows.Close()

	out := []model.EventBooking{}
	for rows.Next() {
		var eb model.EventBooking
		if err := rows.Scan(
			&eb.ID, &eb.User.ID, &eb.User.Username, &eb.User.Email, &eb.User.Role,
			&eb.EventID, &eb.Qty, &eb.TotalPrice, &eb.Status, &eb.CreatedAt, &eb.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan event booking: %w", err)
		}
		out = append(out, eb)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list event bookings: %w", err)
	}
	return out, total, nil
}

// MarkCancelled moves a confirmed booking to cancelled and returns it.
// The status check is part of the UPDATE, so of two concurrent cancels only
// one matches; the other gets model.ErrBookingCancelled.
func (r *BookingRepository) MarkCancelled(ctx context.Context, id string) (*model.Booking, error) {
	db := database.Conn(ctx, r.db)

	var b model.Booking
	err := db.QueryRow(ctx,
		`UPDATE bookings SET status = $2, updated_at = NOW()
		 WHERE id = $1 AND status = $3
		 RETURNING `+bookingColumns,
		id, model.BookingCancelled, model.BookingConfirmed,
	).Scan(bookingDest(&b)...)
	if err == nil {
		return &b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}

	var exists bool
	if err := db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check booking: %w", err)
	}
	if !exists {
		return nil, model.ErrBookingNotFound
	}
	return nil, model.ErrBookingCancelled
}

// DeleteByEvent removes every booking of the event and returns how many.
func (r *BookingRepository) DeleteByEvent(ctx context.Context, eventID string) (int64, error) {
	tag, err := database.Conn(ctx, r.db).Exec(ctx, `DELETE FROM bookings WHERE event_id = $1`, eventID)
	if err != nil {
		return 0, fmt.Errorf("delete event bookings: %w", err)
	}
	return tag.RowsAffected(), nil
}
