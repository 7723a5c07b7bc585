package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gatherly/gatherly-api/internal/helpers"
	"github.com/gatherly/gatherly-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func copyEvent(e *models.Event) *models.Event {
	c := *e
	c.TicketTypes = append([]models.TicketType(nil), e.TicketTypes...)
	return &c
}

// memEventRepo keeps events in memory. afterGet, when set, runs after every
// GetEventByID read so tests can line up concurrent readers.
type memEventRepo struct {
	mu       sync.Mutex
	events   map[primitive.ObjectID]*models.Event
	afterGet func()
	saveErr  error
}

func newMemEventRepo(events ...*models.Event) *memEventRepo {
	r := &memEventRepo{events: make(map[primitive.ObjectID]*models.Event)}
	for _, e := range events {
		r.events[e.ID] = copyEvent(e)
	}
	return r
}

func (r *memEventRepo) CreateEvent(_ context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[event.ID] = copyEvent(event)
	return nil
}

func (r *memEventRepo) GetEventByID(_ context.Context, id primitive.ObjectID) (*models.Event, error) {
	r.mu.Lock()
	e, ok := r.events[id]
	var out *models.Event
	if ok {
		out = copyEvent(e)
	}
	r.mu.Unlock()

	if !ok {
		return nil, models.ErrEventNotFound
	}
	if r.afterGet != nil {
		r.afterGet()
	}
	return out, nil
}

func (r *memEventRepo) GetEventsByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[primitive.ObjectID]*models.Event, len(ids))
	for _, id := range ids {
		if e, ok := r.events[id]; ok {
			out[id] = copyEvent(e)
		}
	}
	return out, nil
}

func (r *memEventRepo) EventExists(_ context.Context, name string, start, end time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Name == name && e.DateStarted.Equal(start) && e.DateEnded.Equal(end) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memEventRepo) ListOpenEvents(_ context.Context, now time.Time, offset, limit int) ([]*models.Event, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var open []*models.Event
	for _, e := range r.events {
		if e.Status == models.EventStatusOpen && e.DateEnded.After(now) {
			open = append(open, copyEvent(e))
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].DateStarted.Before(open[j].DateStarted) })
	total := int64(len(open))
	if offset >= len(open) {
		return []*models.Event{}, total, nil
	}
	end := offset + limit
	if end > len(open) {
		end = len(open)
	}
	return open[offset:end], total, nil
}

func (r *memEventRepo) ListEventsByOrganizer(_ context.Context, organizerID primitive.ObjectID) ([]*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Event
	for _, e := range r.events {
		if e.Organizer == organizerID {
			out = append(out, copyEvent(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateCreated.After(out[j].DateCreated) })
	return out, nil
}

func (r *memEventRepo) SaveEvent(_ context.Context, event *models.Event) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[event.ID]; !ok {
		return models.ErrEventNotFound
	}
	r.events[event.ID] = copyEvent(event)
	return nil
}

func (r *memEventRepo) DecrementTicketQuantity(_ context.Context, eventID primitive.ObjectID, ticketType string, quantity int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[eventID]
	if !ok {
		return 0, models.ErrEventNotFound
	}
	tt, ok := e.TicketType(ticketType)
	if !ok {
		return 0, models.ErrInvalidTicketType
	}
	if tt.Quantity < quantity {
		return 0, &models.InsufficientInventoryError{TicketType: ticketType, Remaining: tt.Quantity}
	}
	tt.Quantity -= quantity
	return tt.Quantity, nil
}

func (r *memEventRepo) quantity(eventID primitive.ObjectID, ticketType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	tt, _ := r.events[eventID].TicketType(ticketType)
	return tt.Quantity
}

// memBookingRepo enforces one booking per (user, event) only when unique is
// set, the way the unique index does in atomic mode.
type memBookingRepo struct {
	mu        sync.Mutex
	bookings  []*models.Booking
	unique    bool
	createErr error
}

func (r *memBookingRepo) CreateBooking(_ context.Context, booking *models.Booking) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.unique {
		for _, b := range r.bookings {
			if b.User == booking.User && b.Event == booking.Event {
				return models.ErrDuplicateBooking
			}
		}
	}
	c := *booking
	r.bookings = append(r.bookings, &c)
	return nil
}

func (r *memBookingRepo) HasBooking(_ context.Context, userID, eventID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.User == userID && b.Event == eventID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memBookingRepo) DeleteBooking(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, b := range r.bookings {
		if b.ID == id {
			r.bookings = append(r.bookings[:i], r.bookings[i+1:]...)
			return nil
		}
	}
	return models.ErrBookingNotFound
}

func (r *memBookingRepo) ListBookingsByUser(_ context.Context, userID primitive.ObjectID) ([]*models.Booking, error) {
	out := r.filter(func(b *models.Booking) bool { return b.User == userID })
	sort.Slice(out, func(i, j int) bool { return out[i].DatePurchased.After(out[j].DatePurchased) })
	return out, nil
}

func (r *memBookingRepo) ListBookingsByEvent(_ context.Context, eventID primitive.ObjectID) ([]*models.Booking, error) {
	return r.filter(func(b *models.Booking) bool { return b.Event == eventID }), nil
}

func (r *memBookingRepo) filter(keep func(*models.Booking) bool) []*models.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Booking
	for _, b := range r.bookings {
		if keep(b) {
			c := *b
			out = append(out, &c)
		}
	}
	return out
}

func (r *memBookingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bookings)
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemUserRepo(users ...*models.User) *memUserRepo {
	r := &memUserRepo{users: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		c := *u
		r.users[u.ID] = &c
	}
	return r
}

func (r *memUserRepo) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return fmt.Errorf("%w: email or username", models.ErrConflict)
		}
	}
	c := *user
	r.users[user.ID] = &c
	return nil
}

func (r *memUserRepo) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (r *memUserRepo) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *memUserRepo) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

func (r *memUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *memUserRepo) GetUserByIdentifier(_ context.Context, identifier string) (*models.User, error) {
	email := models.NormalizeEmail(identifier)
	return r.find(func(u *models.User) bool { return u.Email == email || u.Username == identifier })
}

func (r *memUserRepo) IsUsernameTaken(_ context.Context, username string, exclude primitive.ObjectID) (bool, error) {
	_, err := r.find(func(u *models.User) bool {
		return u.Username == username && u.IsVerified && u.ID != exclude
	})
	if errors.Is(err, models.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *memUserRepo) SaveUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return models.ErrUserNotFound
	}
	c := *user
	r.users[user.ID] = &c
	return nil
}

func (r *memUserRepo) get(username string) *models.User {
	u, _ := r.GetUserByUsername(context.Background(), username)
	return u
}

type fakeUploader struct {
	mu      sync.Mutex
	folders []string
	err     error
}

func (f *fakeUploader) Upload(_ context.Context, folder string, file *helpers.FileUpload) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.folders = append(f.folders, folder)
	return "https://cdn.example.com/" + folder + "/" + strings.ToLower(file.Filename), nil
}

type sentMail struct {
	To, Username, Code string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMailer) SendVerificationEmail(_ context.Context, to, username, code string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{To: to, Username: username, Code: code})
	return nil
}

func avatarFile() *helpers.FileUpload {
	return &helpers.FileUpload{
		Filename:    "me.png",
		ContentType: "image/png",
		Size:        4,
		Body:        strings.NewReader("\x89PNG"),
	}
}
