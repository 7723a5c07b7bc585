package services

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/gatherly/gatherly-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GSTRate is added on top of ticket revenue shown to organizers.
const GSTRate = 0.18

type AttendedEvent struct {
	Booking *models.Booking `json:"booking"`
	Event   *models.Event   `json:"event,omitempty"`
}

type OrganizedEvent struct {
	Event         *models.Event `json:"event"`
	TotalBookings int           `json:"totalBookings"`
	TicketsSold   int           `json:"ticketsSold"`
	Revenue       float64       `json:"revenue"`
}

type DashboardStats struct {
	TotalAttended  int     `json:"totalAttended"`
	TotalOrganized int     `json:"totalOrganized"`
	TotalRevenue   float64 `json:"totalRevenue"`
}

type MyEvents struct {
	Attended  []AttendedEvent  `json:"attended"`
	Organized []OrganizedEvent `json:"organized"`
	Stats     DashboardStats   `json:"stats"`
}

type DashboardService struct {
	eventsRepo   models.EventRepo
	bookingsRepo models.BookingRepo
	logger       *slog.Logger
	now          func() time.Time
}

func NewDashboardService(eventsRepo models.EventRepo, bookingsRepo models.BookingRepo, logger *slog.Logger) *DashboardService {
	return &DashboardService{
		eventsRepo:   eventsRepo,
		bookingsRepo: bookingsRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// GetMyEvents returns the events a user has booked, newest booking first,
// and the events they organize with sales totals.
func (ds *DashboardService) GetMyEvents(ctx context.Context, userID primitive.ObjectID) (*MyEvents, error) {
	if userID.IsZero() {
		return nil, models.ErrUnauthenticated
	}
	now := ds.now()

	bookings, err := ds.bookingsRepo.ListBookingsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.Event)
	}
	booked, err := ds.eventsRepo.GetEventsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := &MyEvents{
		Attended:  make([]AttendedEvent, 0, len(bookings)),
		Organized: []OrganizedEvent{},
	}
	for _, b := range bookings {
		ev := booked[b.Event]
		if ev == nil {
			ds.logger.Warn("Booking references a missing event", "booking_id", b.ID.Hex(), "event_id", b.Event.Hex())
		} else {
			ev.Status = ev.EffectiveStatus(now)
		}
		out.Attended = append(out.Attended, AttendedEvent{Booking: b, Event: ev})
	}

	organized, err := ds.eventsRepo.ListEventsByOrganizer(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, ev := range organized {
		evBookings, err := ds.bookingsRepo.ListBookingsByEvent(ctx, ev.ID)
		if err != nil {
			return nil, err
		}
		ev.Status = ev.EffectiveStatus(now)
		summary := summarizeSales(ev, evBookings)
		out.Organized = append(out.Organized, summary)
		out.Stats.TotalRevenue += summary.Revenue
	}

	out.Stats.TotalAttended = len(out.Attended)
	out.Stats.TotalOrganized = len(out.Organized)
	out.Stats.TotalRevenue = roundCents(out.Stats.TotalRevenue)
	return out, nil
}

// summarizeSales prices each booking by its ticket type's current price.
// Bookings whose ticket type no longer exists count toward totals at zero.
func summarizeSales(ev *models.Event, bookings []*models.Booking) OrganizedEvent {
	s := OrganizedEvent{Event: ev, TotalBookings: len(bookings)}
	var gross float64
	for _, b := range bookings {
		s.TicketsSold += b.QuantityPurchased
		if tt, ok := ev.TicketType(b.TicketType); ok {
			gross += tt.Price * float64(b.QuantityPurchased)
		}
	}
	s.Revenue = roundCents(gross * (1 + GSTRate))
	return s
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
