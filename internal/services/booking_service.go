package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gatherly/gatherly-api/internal/metrics"
	"github.com/gatherly/gatherly-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

type BookingMode string

const (
	// BookingModeLegacy reads the event, checks inventory and duplicates in
	// the application, then writes the booking and the whole event back.
	// Concurrent bookings can oversell.
	BookingModeLegacy BookingMode = "legacy"
	// BookingModeAtomic relies on a unique (user, event) index and a
	// conditional decrement in the database.
	BookingModeAtomic BookingMode = "atomic"
)

type BookTicketInput struct {
	UserID         primitive.ObjectID
	EventID        primitive.ObjectID
	TicketTypeName string `validate:"required"`
	Quantity       int    `validate:"min=1"`
}

type BookTicketResult struct {
	Booking          *models.Booking `json:"booking"`
	RemainingTickets int             `json:"remainingTickets"`
}

type BookingService struct {
	eventsRepo   models.EventRepo
	bookingsRepo models.BookingRepo
	mode         BookingMode
	logger       *slog.Logger
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewBookingService(eventsRepo models.EventRepo, bookingsRepo models.BookingRepo, mode BookingMode, logger *slog.Logger, m *metrics.Metrics) *BookingService {
	if mode == "" {
		mode = BookingModeLegacy
	}
	return &BookingService{
		eventsRepo:   eventsRepo,
		bookingsRepo: bookingsRepo,
		mode:         mode,
		logger:       logger,
		metrics:      m,
		now:          time.Now,
	}
}

func (bs *BookingService) Mode() BookingMode {
	return bs.mode
}

// BookTicket buys in.Quantity tickets of one ticket type for the caller.
// A user may hold at most one booking per event.
func (bs *BookingService) BookTicket(ctx context.Context, in BookTicketInput) (res *BookTicketResult, err error) {
	defer func() {
		bs.metrics.ObserveBooking(bookingOutcome(err), in.TicketTypeName, in.Quantity)
	}()

	if in.UserID.IsZero() {
		return nil, models.ErrUnauthenticated
	}
	if err := models.Validate.Struct(in); err != nil {
		return nil, models.NewValidationError("quantity must be at least 1 and a ticket type is required")
	}

	event, err := bs.eventsRepo.GetEventByID(ctx, in.EventID)
	if err != nil {
		return nil, err
	}
	idx := event.TicketTypeIndex(in.TicketTypeName)
	if idx < 0 {
		return nil, models.ErrInvalidTicketType
	}
	if remaining := event.TicketTypes[idx].Quantity; remaining < in.Quantity {
		return nil, &models.InsufficientInventoryError{TicketType: in.TicketTypeName, Remaining: remaining}
	}

	if bs.mode == BookingModeAtomic {
		return bs.bookAtomic(ctx, in, event)
	}
	return bs.bookLegacy(ctx, in, event, idx)
}

func (bs *BookingService) bookLegacy(ctx context.Context, in BookTicketInput, event *models.Event, idx int) (*BookTicketResult, error) {
	exists, err := bs.bookingsRepo.HasBooking(ctx, in.UserID, in.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing booking: %w", err)
	}
	if exists {
		return nil, models.ErrDuplicateBooking
	}

	now := bs.now()
	booking := models.NewBooking(in.UserID, event.ID, in.TicketTypeName, in.Quantity, now)
	event.TicketTypes[idx].Quantity -= in.Quantity
	event.UpdatedAt = now

	// Both writes are issued together and neither is rolled back if the
	// other fails.
	var g errgroup.Group
	var bookingErr, eventErr error
	g.Go(func() error {
		bookingErr = bs.bookingsRepo.CreateBooking(ctx, booking)
		return bookingErr
	})
	g.Go(func() error {
		eventErr = bs.eventsRepo.SaveEvent(ctx, event)
		return eventErr
	})
	if err := g.Wait(); err != nil {
		if (bookingErr == nil) != (eventErr == nil) {
			bs.logger.Error("Booking partially persisted",
				"event_id", event.ID.Hex(),
				"user_id", in.UserID.Hex(),
				"ticket_type", in.TicketTypeName,
				"quantity", in.Quantity,
				"booking_saved", bookingErr == nil,
				"event_saved", eventErr == nil,
				"error", err,
			)
		}
		if errors.Is(err, models.ErrDuplicateBooking) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to persist booking: %w", err)
	}

	return &BookTicketResult{
		Booking:          booking,
		RemainingTickets: event.TicketTypes[idx].Quantity,
	}, nil
}

func (bs *BookingService) bookAtomic(ctx context.Context, in BookTicketInput, event *models.Event) (*BookTicketResult, error) {
	booking := models.NewBooking(in.UserID, event.ID, in.TicketTypeName, in.Quantity, bs.now())
	if err := bs.bookingsRepo.CreateBooking(ctx, booking); err != nil {
		if errors.Is(err, models.ErrDuplicateBooking) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to persist booking: %w", err)
	}

	remaining, err := bs.eventsRepo.DecrementTicketQuantity(ctx, event.ID, in.TicketTypeName, in.Quantity)
	if err != nil {
		if delErr := bs.bookingsRepo.DeleteBooking(ctx, booking.ID); delErr != nil {
			bs.logger.Error("Failed to remove booking after inventory update failed",
				"booking_id", booking.ID.Hex(),
				"event_id", event.ID.Hex(),
				"error", delErr,
			)
		}
		if errors.Is(err, models.ErrInsufficientInventory) || errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrInvalidTicketType) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update inventory: %w", err)
	}

	return &BookTicketResult{Booking: booking, RemainingTickets: remaining}, nil
}

func bookingOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, models.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, models.ErrInvalidTicketType):
		return metrics.OutcomeInvalidType
	case errors.Is(err, models.ErrInsufficientInventory):
		return metrics.OutcomeInsufficient
	case errors.Is(err, models.ErrDuplicateBooking):
		return metrics.OutcomeDuplicate
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrUnauthenticated):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}
