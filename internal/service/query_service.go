package service

import (
	"context"

	"github.com/Shivanand-hulikatti/event-booking/internal/model"
)

// QueryService serves the paginated, localized read side.
type QueryService struct {
	events   EventStore
	bookings BookingLedger
}

// NewQueryService constructs a QueryService over the given stores.
func NewQueryService(events EventStore, bookings BookingLedger) *QueryService {
	return &QueryService{events: events, bookings: bookings}
}

// ListEvents returns one page of events matching f, soonest first.
func (s *QueryService) ListEvents(ctx context.Context, f model.EventFilter, lang model.Language, page model.PageRequest) (*model.Page[model.EventView], error) {
	page = model.NewPageRequest(page.Page, page.Limit)

	events, total, err := s.events.List(ctx, f, page.Limit, page.Offset())
	if err != nil {
		return nil, passThrough("list events", err)
	}
	views := make([]model.EventView, 0, len(events))
	for i := range events {
		views = append(views, events[i].Localize(lang))
	}
	return model.NewPage(views, page, total), nil
}

// GetEvent returns a single localized event.
func (s *QueryService) GetEvent(ctx context.Context, eventID string, lang model.Language) (*model.EventView, error) {
	id, err := parseID(eventID, model.ErrInvalidEventID)
	if err != nil {
		return nil, err
	}
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, passThrough("get event", err)
	}
	view := e.Localize(lang)
	return &view, nil
}

// ListUserBookings returns the caller's bookings, newest first, each with its
// localized event.
func (s *QueryService) ListUserBookings(ctx context.Context, user model.User, lang model.Language, page model.PageRequest) (*model.Page[model.UserBookingView], error) {
	if user.ID == "" {
		return nil, model.ErrAuthRequired
	}
	page = model.NewPageRequest(page.Page, page.Limit)

	rows, total, err := s.bookings.ListByUser(ctx, user.ID, page.Limit, page.Offset())
	if err != nil {
		return nil, passThrough("list user bookings", err)
	}
	views := make([]model.UserBookingView, 0, len(rows))
	for i := range rows {
		views = append(views, rows[i].Localize(lang))
	}
	return model.NewPage(views, page, total), nil
}

// ListEventBookings returns every booking of an event with its owner. Admin only.
func (s *QueryService) ListEventBookings(ctx context.Context, user model.User, eventID string, page model.PageRequest) (*model.Page[model.EventBooking], error) {
	if user.ID == "" {
		return nil, model.ErrAuthRequired
	}
	if !user.IsAdmin() {
		return nil, model.ErrAdminOnlyBookings
	}
	id, err := parseID(eventID, model.ErrInvalidEventID)
	if err != nil {
		return nil, err
	}
	ok, err := s.events.Exists(ctx, id)
	if err != nil {
		return nil, passThrough("check event", err)
	}
	if !ok {
		return nil, model.ErrEventNotFound
	}

	page = model.NewPageRequest(page.Page, page.Limit)
	rows, total, err := s.bookings.ListByEvent(ctx, id, page.Limit, page.Offset())
	if err != nil {
		return nil, passThrough("list event bookings", err)
	}
	return model.NewPage(rows, page, total), nil
}
