package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/event-booking/internal/model"
)

// ListEvents handles GET /events
// Supports page, limit, q, category, tag, dateFrom, dateTo, minPrice and maxPrice.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter, err := parseEventFilter(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	page, err := h.queries.ListEvents(r.Context(), filter, language(r), pageRequest(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetEvent handles GET /events/{id}
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.queries.GetEvent(r.Context(), chi.URLParam(r, "id"), language(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, event)
}

// CreateEvent handles POST /events
// Admin only. Responds 201 with the stored event in both languages.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	event, err := h.events.CreateEvent(r.Context(), UserFromContext(r.Context()), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, event)
}

// DeleteEvent handles DELETE /events/{id}
// Admin only. Removes the event together with its bookings.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	msg, err := h.events.DeleteEvent(r.Context(), UserFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, msg)
}

// ListEventBookings handles GET /events/{id}/bookings
// Admin only.
func (h *Handler) ListEventBookings(w http.ResponseWriter, r *http.Request) {
	page, err := h.queries.ListEventBookings(r.Context(), UserFromContext(r.Context()), chi.URLParam(r, "id"), pageRequest(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// parseEventFilter reads the listing filters. Dates accept RFC 3339 or
// YYYY-MM-DD; a bare dateTo covers the whole day.
func parseEventFilter(q url.Values) (model.EventFilter, error) {
	f := model.EventFilter{
		Query:    strings.TrimSpace(q.Get("q")),
		Category: strings.TrimSpace(q.Get("category")),
		Tag:      strings.TrimSpace(q.Get("tag")),
	}

	var err error
	if f.DateFrom, err = parseDate(q.Get("dateFrom"), false); err != nil {
		return f, model.Validationf("dateFrom must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
	}
	if f.DateTo, err = parseDate(q.Get("dateTo"), true); err != nil {
		return f, model.Validationf("dateTo must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
	}
	if f.MinPrice, err = parsePrice(q.Get("minPrice")); err != nil {
		return f, model.Validationf("minPrice must be a non-negative number")
	}
	if f.MaxPrice, err = parsePrice(q.Get("maxPrice")); err != nil {
		return f, model.Validationf("maxPrice must be a non-negative number")
	}
	return f, nil
}

func parseDate(s string, endOfDay bool) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func parsePrice(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return nil, strconv.ErrSyntax
	}
	return &v, nil
}
