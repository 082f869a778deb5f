// Package repository implements all database queries for the event booking system.
// It uses pgx directly (no ORM) and runs every statement on the transaction
// bound to the context when there is one.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Shivanand-hulikatti/event-booking/internal/database"
	"github.com/Shivanand-hulikatti/event-booking/internal/model"
	"github.com/Shivanand-hulikatti/event-booking/internal/telemetry"
)

var eventColumns = []string{
	"id", "title_en", "title_ar", "description_en", "description_ar",
	"category_en", "category_ar", "venue_en", "venue_ar", "tags",
	"event_date", "price", "image_url", "total_tickets", "tickets_sold",
	"tickets_available", "created_by", "created_at", "updated_at",
}

// columns renders cols for a SELECT or RETURNING list, optionally qualified by alias.
func columns(alias string, cols []string) string {
	if alias == "" {
		return strings.Join(cols, ", ")
	}
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return strings.Join(out, ", ")
}

type scanner interface {
	Scan(dest ...any) error
}

// eventDest returns scan targets matching eventColumns.
func eventDest(e *model.Event) []any {
	return []any{
		&e.ID, &e.Title.En, &e.Title.Ar, &e.Description.En, &e.Description.Ar,
		&e.Category.En, &e.Category.Ar, &e.Venue.En, &e.Venue.Ar, &e.Tags,
		&e.EventDate, &e.Price, &e.ImageURL, &e.TotalTickets, &e.TicketsSold,
		&e.TicketsAvailable, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	}
}

func scanEvent(row scanner) (*model.Event, error) {
	var e model.Event
	if err := row.Scan(eventDest(&e)...); err != nil {
		return nil, err
	}
	if e.Tags == nil {
		e.Tags = []model.LocalizedText{}
	}
	return &e, nil
}

// EventRepository handles persistence for events and their ticket inventory.
type EventRepository struct {
	db database.DBTX
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db database.DBTX) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts e. A missing ID is generated; the counters are taken as given.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Tags == nil {
		e.Tags = []model.LocalizedText{}
	}
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now

	_, err := database.Conn(ctx, r.db).Exec(ctx,
		`INSERT INTO events (`+columns("", eventColumns)+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		e.ID, e.Title.En, e.Title.Ar, e.Description.En, e.Description.Ar,
		e.Category.En, e.Category.Ar, e.Venue.En, e.Venue.Ar, e.Tags,
		e.EventDate, e.Price, e.ImageURL, e.TotalTickets, e.TicketsSold,
		e.TicketsAvailable, e.CreatedBy, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetByID returns a single event or model.ErrEventNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	row := database.Conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+columns("", eventColumns)+` FROM events WHERE id = $1`, id)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// Exists reports whether an event with id is stored.
func (r *EventRepository) Exists(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := database.Conn(ctx, r.db).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, id).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check event: %w", err)
	}
	return ok, nil
}

// List returns one page of events matching f ordered by event date, plus the
// number of matching events across all pages.
func (r *EventRepository) List(ctx context.Context, f model.EventFilter, limit, offset int) ([]model.Event, int, error) {
	db := database.Conn(ctx, r.db)
	where, args := buildEventFilter(f)

	var total int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM events`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	n := len(args)
	rows, err := db.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM events%s ORDER BY event_date ASC, id ASC LIMIT $%d OFFSET $%d`,
			columns("", eventColumns), where, n+1, n+2),
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return events, total, nil
}

// Delete removes the event. Bookings referencing it must be removed first
// or rely on the ON DELETE CASCADE foreign key.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tag, err := database.Conn(ctx, r.db).Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrEventNotFound
	}
	return nil
}

// Reserve moves qty tickets from available to sold and returns the updated
// event.
//
// ─────────────────────────────────────────────────────────────────────────────
// OVERSELLING
// ─────────────────────────────────────────────────────────────────────────────
//
// A read-then-write check lets two requests see the same availability:
//
//	request A: SELECT tickets_available → 2
//	request B: SELECT tickets_available → 2
//	request A: 2 >= 2, UPDATE available = 0
//	request B: 2 >= 2, UPDATE available = -2
//
// Here the availability check and the decrement are one statement. PostgreSQL
// takes the row lock for the UPDATE and re-evaluates the WHERE clause against
// the latest committed row, so the second request matches zero rows instead
// of driving the counter negative. This holds across processes.
//
// ─────────────────────────────────────────────────────────────────────────────
//
// No matching row (unknown event or too few tickets) returns
// model.ErrNotEnoughTickets and changes nothing.
func (r *EventRepository) Reserve(ctx context.Context, eventID string, qty int) (*model.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "inventory.reserve")
	defer span.End()

	row := database.Conn(ctx, r.db).QueryRow(ctx,
		`UPDATE events
		 SET tickets_sold = tickets_sold + $2,
		     tickets_available = tickets_available - $2,
		     updated_at = NOW()
		 WHERE id = $1 AND tickets_available >= $2
		 RETURNING `+columns("", eventColumns),
		eventID, qty,
	)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotEnoughTickets
		}
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("reserve tickets: %w", err)
	}
	return e, nil
}

// Release returns qty sold tickets to the available pool. It is the inverse
// of Reserve and is not conditional: a missing event or a counter that would
// go negative is reported as model.ErrInventoryReleaseGap.
func (r *EventRepository) Release(ctx context.Context, eventID string, qty int) error {
	ctx, span := telemetry.StartSpan(ctx, "inventory.release")
	defer span.End()

	tag, err := database.Conn(ctx, r.db).Exec(ctx,
		`UPDATE events
		 SET tickets_sold = tickets_sold - $2,
		     tickets_available = tickets_available + $2,
		     updated_at = NOW()
		 WHERE id = $1`,
		eventID, qty,
	)
	if err != nil {
		telemetry.RecordError(span, err)
		if database.IsCheckViolation(err) {
			return fmt.Errorf("%w: %v", model.ErrInventoryReleaseGap, err)
		}
		return fmt.Errorf("release tickets: %w", err)
	}
	if tag.RowsAffected() == 0 {
		telemetry.RecordError(span, model.ErrInventoryReleaseGap)
		return model.ErrInventoryReleaseGap
	}
	return nil
}
