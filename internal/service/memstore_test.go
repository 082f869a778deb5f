package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/event-booking/internal/model"
)

// memDB is an in-memory stand-in for PostgreSQL. Writes made inside WithinTx
// are undone in reverse order when fn fails, which models rollback.
type memDB struct {
	mu       sync.Mutex
	events   map[string]*model.Event
	bookings map[string]*model.Booking
	seq      int

	insertErr  error
	releaseErr error
	txCount    int
}

func newMemDB() *memDB {
	return &memDB{
		events:   map[string]*model.Event{},
		bookings: map[string]*model.Booking{},
	}
}

type undoKey struct{}

type undoLog struct {
	fns []func()
}

func (db *memDB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(undoKey{}).(*undoLog); ok {
		return fn(ctx)
	}
	db.mu.Lock()
	db.txCount++
	db.mu.Unlock()

	log := &undoLog{}
	err := fn(context.WithValue(ctx, undoKey{}, log))
	if err != nil {
		db.mu.Lock()
		for i := len(log.fns) - 1; i >= 0; i-- {
			log.fns[i]()
		}
		db.mu.Unlock()
	}
	return err
}

// onRollback must be called with mu held.
func onRollback(ctx context.Context, undo func()) {
	if log, ok := ctx.Value(undoKey{}).(*undoLog); ok {
		log.fns = append(log.fns, undo)
	}
}

func (db *memDB) addEvent(total int, price float64) *model.Event {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.seq++
	e := &model.Event{
		ID:               uuid.New().String(),
		Title:            model.LocalizedText{En: "Event", Ar: "فعالية"},
		Description:      model.LocalizedText{En: "Desc", Ar: "وصف"},
		Category:         model.DefaultCategory,
		Venue:            model.LocalizedText{En: "Hall", Ar: "قاعة"},
		Tags:             []model.LocalizedText{},
		EventDate:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(db.seq) * time.Hour),
		Price:            price,
		TotalTickets:     total,
		TicketsAvailable: total,
	}
	db.events[e.ID] = e
	return e
}

func (db *memDB) event(id string) model.Event {
	db.mu.Lock()
	defer db.mu.Unlock()
	return *db.events[id]
}

func (db *memDB) booking(id string) model.Booking {
	db.mu.Lock()
	defer db.mu.Unlock()
	return *db.bookings[id]
}

func (db *memDB) bookingCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.bookings)
}

// memEvents implements EventStore.
type memEvents struct{ *memDB }

func (s memEvents) Create(ctx context.Context, e *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	cp := *e
	s.events[e.ID] = &cp
	onRollback(ctx, func() { delete(s.events, cp.ID) })
	return nil
}

func (s memEvents) GetByID(_ context.Context, id string) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, model.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (s memEvents) Exists(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.events[id]
	return ok, nil
}

func (s memEvents) List(_ context.Context, f model.EventFilter, limit, offset int) ([]model.Event, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []model.Event
	for _, e := range s.events {
		if f.MinPrice != nil && e.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && e.Price > *f.MaxPrice {
			continue
		}
		matched = append(matched, *e)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].EventDate.Before(matched[j].EventDate) })
	total := len(matched)
	if offset >= total {
		return []model.Event{}, total, nil
	}
	end := min(offset+limit, total)
	return matched[offset:end], total, nil
}

func (s memEvents) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return model.ErrEventNotFound
	}
	delete(s.events, id)
	onRollback(ctx, func() { s.events[id] = e })
	return nil
}

func (s memEvents) Reserve(ctx context.Context, eventID string, qty int) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok || e.TicketsAvailable < qty {
		return nil, model.ErrNotEnoughTickets
	}
	e.TicketsSold += qty
	e.TicketsAvailable -= qty
	onRollback(ctx, func() {
		e.TicketsSold -= qty
		e.TicketsAvailable += qty
	})
	cp := *e
	return &cp, nil
}

func (s memEvents) Release(ctx context.Context, eventID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.releaseErr != nil {
		return s.releaseErr
	}
	e, ok := s.events[eventID]
	if !ok || e.TicketsSold < qty {
		return model.ErrInventoryReleaseGap
	}
	e.TicketsSold -= qty
	e.TicketsAvailable += qty
	onRollback(ctx, func() {
		e.TicketsSold += qty
		e.TicketsAvailable -= qty
	})
	return nil
}

// memBookings implements BookingLedger.
type memBookings struct{ *memDB }

func (s memBookings) Insert(ctx context.Context, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	if b.Qty <= 0 {
		return model.ErrQtyNotPositive
	}
	if _, ok := s.events[b.EventID]; !ok {
		return model.ErrEventNotFound
	}
	s.seq++
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	b.Status = model.BookingConfirmed
	b.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(s.seq) * time.Second)
	b.UpdatedAt = b.CreatedAt
	cp := *b
	s.bookings[b.ID] = &cp
	onRollback(ctx, func() { delete(s.bookings, cp.ID) })
	return nil
}

func (s memBookings) GetByID(_ context.Context, id string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, model.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (s memBookings) ListByUser(_ context.Context, userID string, limit, offset int) ([]model.UserBooking, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.UserBooking
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, model.UserBooking{Booking: *b, Event: *s.events[b.EventID]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := len(out)
	if offset >= total {
		return []model.UserBooking{}, total, nil
	}
	return out[offset:min(offset+limit, total)], total, nil
}

func (s memBookings) ListByEvent(_ context.Context, eventID string, limit, offset int) ([]model.EventBooking, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.EventBooking
	for _, b := range s.bookings {
		if b.EventID == eventID {
			out = append(out, model.EventBooking{
				ID: b.ID, User: model.User{ID: b.UserID, Role: model.RoleUser}, EventID: b.EventID,
				Qty: b.Qty, TotalPrice: b.TotalPrice, Status: b.Status, CreatedAt: b.CreatedAt, UpdatedAt: b.UpdatedAt,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	total := len(out)
	if offset >= total {
		return []model.EventBooking{}, total, nil
	}
	return out[offset:min(offset+limit, total)], total, nil
}

func (s memBookings) MarkCancelled(ctx context.Context, id string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, model.ErrBookingNotFound
	}
	if b.Status != model.BookingConfirmed {
		return nil, model.ErrBookingCancelled
	}
	b.Status = model.BookingCancelled
	onRollback(ctx, func() { b.Status = model.BookingConfirmed })
	cp := *b
	return &cp, nil
}

func (s memBookings) DeleteByEvent(ctx context.Context, eventID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, b := range s.bookings {
		if b.EventID == eventID {
			delete(s.bookings, id)
			removed := b
			onRollback(ctx, func() { s.bookings[removed.ID] = removed })
			n++
		}
	}
	return n, nil
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu        sync.Mutex
	created   []model.Booking
	cancelled []model.Booking
}

func (p *recordingPublisher) PublishBookingCreated(_ context.Context, b *model.Booking) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, *b)
	return nil
}

func (p *recordingPublisher) PublishBookingCancelled(_ context.Context, b *model.Booking) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelled = append(p.cancelled, *b)
	return nil
}

var (
	alice = model.User{ID: "user-alice", Username: "alice", Role: model.RoleUser}
	bob   = model.User{ID: "user-bob", Username: "bob", Role: model.RoleUser}
	admin = model.User{ID: "user-admin", Username: "root", Role: model.RoleAdmin}
)
