package service

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/event-booking/internal/logger"
	"github.com/Shivanand-hulikatti/event-booking/internal/model"
)

// MsgEventDeleted is returned by a successful deletion.
const MsgEventDeleted = "Event deleted successfully"

// EventService handles admin operations on events.
type EventService struct {
	tx       Transactor
	events   EventStore
	bookings BookingLedger
	validate *validator.Validate
	log      *zap.Logger
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(tx Transactor, events EventStore, bookings BookingLedger, log *zap.Logger) *EventService {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &EventService{
		tx:       tx,
		events:   events,
		bookings: bookings,
		validate: v,
		log:      logger.OrNop(log),
	}
}

// CreateEvent validates the request and stores a new event with its full
// ticket inventory available.
func (s *EventService) CreateEvent(ctx context.Context, user model.User, req model.CreateEventRequest) (*model.Event, error) {
	if user.ID == "" {
		return nil, model.ErrAuthRequired
	}
	if !user.IsAdmin() {
		return nil, model.ErrAdminOnlyCreate
	}

	normalizeEventRequest(&req)
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	category := model.DefaultCategory
	if req.Category != nil {
		category = *req.Category
	}
	tags := req.Tags
	if tags == nil {
		tags = []model.LocalizedText{}
	}

	e := &model.Event{
		Title:            req.Title,
		Description:      req.Description,
		Category:         category,
		Venue:            req.Venue,
		Tags:             tags,
		EventDate:        req.EventDate.UTC(),
		Price:            roundCents(*req.Price),
		ImageURL:         req.ImageURL,
		TotalTickets:     req.TotalTickets,
		TicketsSold:      0,
		TicketsAvailable: req.TotalTickets,
		CreatedBy:        user.ID,
	}
	if err := s.events.Create(ctx, e); err != nil {
		return nil, passThrough("create event", err)
	}

	s.log.Info("event created",
		zap.String("event_id", e.ID),
		zap.String("created_by", user.ID),
		zap.Int("total_tickets", e.TotalTickets),
	)
	return e, nil
}

// DeleteEvent removes the event and every booking of it in one transaction.
func (s *EventService) DeleteEvent(ctx context.Context, user model.User, eventID string) (string, error) {
	if user.ID == "" {
		return "", model.ErrAuthRequired
	}
	if !user.IsAdmin() {
		return "", model.ErrAdminOnlyDelete
	}
	id, err := parseID(eventID, model.ErrInvalidEventID)
	if err != nil {
		return "", err
	}

	var removed int64
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		n, err := s.bookings.DeleteByEvent(ctx, id)
		if err != nil {
			return err
		}
		removed = n
		return s.events.Delete(ctx, id)
	})
	if err != nil {
		return "", passThrough("delete event", err)
	}

	s.log.Info("event deleted",
		zap.String("event_id", id),
		zap.String("deleted_by", user.ID),
		zap.Int64("bookings_removed", removed),
	)
	return MsgEventDeleted, nil
}

func normalizeEventRequest(req *model.CreateEventRequest) {
	trimText(&req.Title)
	trimText(&req.Description)
	trimText(&req.Venue)
	if req.Category != nil {
		trimText(req.Category)
	}
	for i := range req.Tags {
		trimText(&req.Tags[i])
	}
	req.ImageURL = strings.TrimSpace(req.ImageURL)
}

func trimText(t *model.LocalizedText) {
	t.En = strings.TrimSpace(t.En)
	t.Ar = strings.TrimSpace(t.Ar)
}

// validationError reports the first failing field, e.g. "title.ar is required".
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return model.Validationf("invalid event payload")
	}
	fe := verrs[0]
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return model.Validationf("%s is required", field)
	case "gte":
		return model.Validationf("%s must be at least %s", field, fe.Param())
	case "lte", "max":
		return model.Validationf("%s must be at most %s", field, fe.Param())
	default:
		return model.Validationf("%s is invalid", field)
	}
}

