package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/event-booking/internal/model"
)

// CreateBooking handles POST /bookings
// Body: {"eventId": "...", "qty": 2}. Responds 201 with the booking.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req model.CreateBookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	booking, err := h.bookings.CreateBooking(r.Context(), UserFromContext(r.Context()), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, booking)
}

// CancelBooking handles DELETE /bookings/{id}
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	msg, err := h.bookings.CancelBooking(r.Context(), UserFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, msg)
}

// ListUserBookings handles GET /bookings
// Returns the caller's bookings, newest first.
func (h *Handler) ListUserBookings(w http.ResponseWriter, r *http.Request) {
	page, err := h.queries.ListUserBookings(r.Context(), UserFromContext(r.Context()), language(r), pageRequest(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
