// Package model defines the core domain types for the event booking system.
package model

import "time"

// Role is the authorization role carried by a user.
type Role string

const (
	// RoleUser may book and cancel its own bookings.
	RoleUser Role = "user"
	// RoleAdmin may also manage events and any booking.
	RoleAdmin Role = "admin"
)

// BookingStatus is the lifecycle state of a booking.
// The only transition is confirmed -> cancelled.
type BookingStatus string

const (
	// BookingConfirmed holds tickets against the event.
	BookingConfirmed BookingStatus = "confirmed"
	// BookingCancelled is terminal; its tickets were returned.
	BookingCancelled BookingStatus = "cancelled"
)

// LocalizedText carries an English and an Arabic rendering of the same value.
type LocalizedText struct {
	En string `json:"en" validate:"required"`
	Ar string `json:"ar" validate:"required"`
}

// In returns the rendering for lang, falling back to English when the
// requested rendering is empty.
func (t LocalizedText) In(lang Language) string {
	if lang == Arabic && t.Ar != "" {
		return t.Ar
	}
	return t.En
}

// DefaultCategory is applied to events created without a category.
var DefaultCategory = LocalizedText{En: "General", Ar: "عام"}

// User is the requesting principal or the owner of a booking.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Event represents a bookable event with a finite ticket inventory.
// TicketsSold + TicketsAvailable == TotalTickets between transactions.
type Event struct {
	ID               string          `json:"id"`
	Title            LocalizedText   `json:"title"`
	Description      LocalizedText   `json:"description"`
	Category         LocalizedText   `json:"category"`
	Venue            LocalizedText   `json:"venue"`
	Tags             []LocalizedText `json:"tags"`
	EventDate        time.Time       `json:"eventDate"`
	Price            float64         `json:"price"`
	ImageURL         string          `json:"imageUrl,omitempty"`
	TotalTickets     int             `json:"totalTickets"`
	TicketsSold      int             `json:"ticketsSold"`
	TicketsAvailable int             `json:"ticketsAvailable"`
	CreatedBy        string          `json:"createdBy"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// EventView is the single-language projection of an Event.
type EventView struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Category         string    `json:"category"`
	Venue            string    `json:"venue"`
	Tags             []string  `json:"tags"`
	EventDate        time.Time `json:"eventDate"`
	Price            float64   `json:"price"`
	ImageURL         string    `json:"imageUrl,omitempty"`
	TotalTickets     int       `json:"totalTickets"`
	TicketsSold      int       `json:"ticketsSold"`
	TicketsAvailable int       `json:"ticketsAvailable"`
	CreatedBy        string    `json:"createdBy"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Localize projects the event onto lang.
func (e *Event) Localize(lang Language) EventView {
	tags := make([]string, 0, len(e.Tags))
	for _, t := range e.Tags {
		tags = append(tags, t.In(lang))
	}
	return EventView{
		ID:               e.ID,
		Title:            e.Title.In(lang),
		Description:      e.Description.In(lang),
		Category:         e.Category.In(lang),
		Venue:            e.Venue.In(lang),
		Tags:             tags,
		EventDate:        e.EventDate,
		Price:            e.Price,
		ImageURL:         e.ImageURL,
		TotalTickets:     e.TotalTickets,
		TicketsSold:      e.TicketsSold,
		TicketsAvailable: e.TicketsAvailable,
		CreatedBy:        e.CreatedBy,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

// Booking is a ledger entry reserving Qty tickets of an event for a user.
// TotalPrice is a snapshot taken at booking time and is never recomputed.
type Booking struct {
	ID         string        `json:"id"`
	UserID     string        `json:"user"`
	EventID    string        `json:"event"`
	Qty        int           `json:"qty"`
	TotalPrice float64       `json:"totalPrice"`
	Status     BookingStatus `json:"status"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// IsCancelled reports whether the booking reached its terminal state.
func (b *Booking) IsCancelled() bool {
	return b.Status == BookingCancelled
}

// CanManageBooking reports whether u may cancel b: admins may cancel any
// booking, everyone else only their own.
func CanManageBooking(u User, b *Booking) bool {
	return u.IsAdmin() || (u.ID != "" && u.ID == b.UserID)
}

// UserBooking is a booking joined with the event it reserves.
type UserBooking struct {
	Booking
	Event Event
}

// UserBookingView is a booking with its event projected onto one language.
type UserBookingView struct {
	ID         string        `json:"id"`
	UserID     string        `json:"user"`
	Event      EventView     `json:"event"`
	Qty        int           `json:"qty"`
	TotalPrice float64       `json:"totalPrice"`
	Status     BookingStatus `json:"status"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// Localize projects the joined event onto lang.
func (ub *UserBooking) Localize(lang Language) UserBookingView {
	return UserBookingView{
		ID:         ub.ID,
		UserID:     ub.UserID,
		Event:      ub.Event.Localize(lang),
		Qty:        ub.Qty,
		TotalPrice: ub.TotalPrice,
		Status:     ub.Status,
		CreatedAt:  ub.CreatedAt,
		UpdatedAt:  ub.UpdatedAt,
	}
}

// EventBooking is a booking joined with the user that owns it.
type EventBooking struct {
	ID         string        `json:"id"`
	User       User          `json:"user"`
	EventID    string        `json:"event"`
	Qty        int           `json:"qty"`
	TotalPrice float64       `json:"totalPrice"`
	Status     BookingStatus `json:"status"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// EventFilter narrows an event listing. Nil bounds are open.
type EventFilter struct {
	Query    string
	Category string
	Tag      string
	DateFrom *time.Time
	DateTo   *time.Time
	MinPrice *float64
	MaxPrice *float64
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Title        LocalizedText   `json:"title"`
	Description  LocalizedText   `json:"description"`
	Category     *LocalizedText  `json:"category" validate:"omitempty"`
	Venue        LocalizedText   `json:"venue"`
	Tags         []LocalizedText `json:"tags" validate:"dive"`
	EventDate    time.Time       `json:"eventDate" validate:"required"`
	Price        *float64        `json:"price" validate:"required,gte=0"`
	ImageURL     string          `json:"imageUrl" validate:"omitempty,max=2048"`
	TotalTickets int             `json:"totalTickets" validate:"gte=0,lte=1000000"`
}

// CreateBookingRequest is the payload for booking tickets.
type CreateBookingRequest struct {
	EventID string   `json:"eventId"`
	Qty     Quantity `json:"qty"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// DataResponse is a standard JSON success envelope.
type DataResponse struct {
	Data any `json:"data"`
}
