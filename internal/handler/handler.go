// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/event-booking/internal/logger"
	"github.com/Shivanand-hulikatti/event-booking/internal/model"
	"github.com/Shivanand-hulikatti/event-booking/internal/telemetry"
)

// BookingService is the booking write path.
type BookingService interface {
	CreateBooking(ctx context.Context, user model.User, req model.CreateBookingRequest) (*model.Booking, error)
	CancelBooking(ctx context.Context, user model.User, bookingID string) (string, error)
}

// EventService is the event admin path.
type EventService interface {
	CreateEvent(ctx context.Context, user model.User, req model.CreateEventRequest) (*model.Event, error)
	DeleteEvent(ctx context.Context, user model.User, eventID string) (string, error)
}

// QueryService is the read path.
type QueryService interface {
	ListEvents(ctx context.Context, f model.EventFilter, lang model.Language, page model.PageRequest) (*model.Page[model.EventView], error)
	GetEvent(ctx context.Context, eventID string, lang model.Language) (*model.EventView, error)
	ListUserBookings(ctx context.Context, user model.User, lang model.Language, page model.PageRequest) (*model.Page[model.UserBookingView], error)
	ListEventBookings(ctx context.Context, user model.User, eventID string, page model.PageRequest) (*model.Page[model.EventBooking], error)
}

// Handler holds all HTTP handlers for the event booking API.
type Handler struct {
	bookings BookingService
	events   EventService
	queries  QueryService
	log      *zap.Logger
}

// New constructs a Handler.
func New(bookings BookingService, events EventService, queries QueryService, log *zap.Logger) *Handler {
	return &Handler{
		bookings: bookings,
		events:   events,
		queries:  queries,
		log:      logger.OrNop(log),
	}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

const genericErrorMessage = "internal server error"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, model.DataResponse{Data: data})
}

// errorMapping pairs an error kind with its HTTP status and response code.
type errorMapping struct {
	kind   error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{model.ErrInvalidReference, http.StatusBadRequest, "INVALID_REFERENCE"},
	{model.ErrInvalidQuantity, http.StatusBadRequest, "INVALID_QUANTITY"},
	{model.ErrInsufficientInventory, http.StatusBadRequest, "INSUFFICIENT_INVENTORY"},
	{model.ErrValidation, http.StatusBadRequest, "VALIDATION_ERROR"},
	{model.ErrAlreadyCancelled, http.StatusBadRequest, "ALREADY_CANCELLED"},
	{model.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{model.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
	{model.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{model.ErrConsistency, http.StatusInternalServerError, "CONSISTENCY_ERROR"},
}

// statusFor maps err onto its status and code. Unknown errors are 500.
func statusFor(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.kind) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

func writeErrorMessage(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg, Code: code})
}

// writeError maps err onto the error envelope. Server errors are logged and
// never expose their message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			zap.String("trace_id", telemetry.TraceID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("code", code),
			zap.Error(err),
		)
		writeErrorMessage(w, status, code, genericErrorMessage)
		return
	}

	msg, ok := model.Message(err)
	if !ok {
		msg = err.Error()
	}
	writeErrorMessage(w, status, code, msg)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return model.Validationf("invalid request body: %v", err)
	}
	return nil
}

func language(r *http.Request) model.Language {
	return model.ParseLanguage(r.Header.Get("Accept-Language"))
}

func pageRequest(r *http.Request) model.PageRequest {
	q := r.URL.Query()
	return model.ParsePageRequest(q.Get("page"), q.Get("limit"))
}

// ─── Health check ─────────────────────────────────────────────────────────────

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck handles GET /health. It reports 503 when the database does not
// answer a ping.
func HealthCheck(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
