package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gatherly/gatherly-api/internal/helpers"
	"github.com/gatherly/gatherly-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultEventsPageSize = 12
	MaxEventsPageSize     = 50
)

type CreateEventInput struct {
	Name        string
	Tagline     string
	Description string
	Category    string
	Location    string
	DateStarted time.Time
	DateEnded   time.Time
	TicketTypes []models.TicketType
}

type EventService struct {
	eventsRepo models.EventRepo
	uploader   helpers.Uploader
	logger     *slog.Logger
	now        func() time.Time
}

func NewEventService(eventsRepo models.EventRepo, uploader helpers.Uploader, logger *slog.Logger) *EventService {
	return &EventService{
		eventsRepo: eventsRepo,
		uploader:   uploader,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateEvent stores a new event owned by organizer. The status is derived
// from the end time once, here.
func (es *EventService) CreateEvent(ctx context.Context, organizer *helpers.CustomClaims, in CreateEventInput, image *helpers.FileUpload) (*models.Event, error) {
	if organizer == nil {
		return nil, models.ErrUnauthenticated
	}
	if !organizer.IsOrganizer {
		return nil, models.ErrNotOrganizer
	}
	organizerID, err := organizer.ObjectID()
	if err != nil {
		return nil, models.ErrUnauthenticated
	}

	now := es.now()
	event := &models.Event{
		Organizer:   organizerID,
		Name:        in.Name,
		Tagline:     in.Tagline,
		Description: in.Description,
		Category:    in.Category,
		Location:    in.Location,
		DateStarted: in.DateStarted,
		DateEnded:   in.DateEnded,
		TicketTypes: in.TicketTypes,
	}
	event.Sanitize()
	event.BeforeCreate(now)
	if err := event.ValidateNew(); err != nil {
		return nil, err
	}

	exists, err := es.eventsRepo.EventExists(ctx, event.Name, event.DateStarted, event.DateEnded)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing event: %w", err)
	}
	if exists {
		return nil, models.ErrEventExists
	}

	if image != nil && image.Size > 0 {
		url, err := es.uploader.Upload(ctx, helpers.EventsFolder, image)
		if err != nil {
			return nil, fmt.Errorf("image upload failed: %w", err)
		}
		event.ImageURL = url
	}

	if err := es.eventsRepo.CreateEvent(ctx, event); err != nil {
		return nil, err
	}
	es.logger.Info("Event created",
		"event_id", event.ID.Hex(),
		"organizer", organizerID.Hex(),
		"status", event.Status,
	)
	return event, nil
}

// GetEvent returns the event with its status recomputed for the current time.
func (es *EventService) GetEvent(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	event, err := es.eventsRepo.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	event.Status = event.EffectiveStatus(es.now())
	return event, nil
}

func (es *EventService) ListOpenEvents(ctx context.Context, page, limit int) ([]*models.Event, *models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultEventsPageSize
	}
	if limit > MaxEventsPageSize {
		limit = MaxEventsPageSize
	}

	events, total, err := es.eventsRepo.ListOpenEvents(ctx, es.now(), (page-1)*limit, limit)
	if err != nil {
		return nil, nil, err
	}
	return events, models.NewPagination(page, limit, total), nil
}

// CancelEvent lets the organizer of an open event cancel it.
func (es *EventService) CancelEvent(ctx context.Context, caller *helpers.CustomClaims, id primitive.ObjectID) (*models.Event, error) {
	if caller == nil {
		return nil, models.ErrUnauthenticated
	}
	event, err := es.eventsRepo.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsOwner(event.Organizer) {
		return nil, models.ErrForbidden
	}
	if err := event.Cancel(es.now()); err != nil {
		return nil, err
	}
	if err := es.eventsRepo.SaveEvent(ctx, event); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to cancel event: %w", err)
	}
	return event, nil
}
