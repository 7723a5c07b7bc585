package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gatherly/gatherly-api/internal/helpers"
	"github.com/gatherly/gatherly-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var eventNow = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

func organizerClaims() *helpers.CustomClaims {
	return &helpers.CustomClaims{UserID: primitive.NewObjectID().Hex(), Username: "host_01", IsOrganizer: true}
}

func validEventInput() CreateEventInput {
	return CreateEventInput{
		Name:        "  Harbour Food Fest ",
		Tagline:     "Street food by the water",
		Description: "Forty stalls, two stages.",
		Category:    "food",
		Location:    "Harbour Pier",
		DateStarted: eventNow.Add(7 * 24 * time.Hour),
		DateEnded:   eventNow.Add(8 * 24 * time.Hour),
		TicketTypes: []models.TicketType{
			{Name: "Day Pass", Price: 15, Quantity: 300},
			{Name: "Weekend", Price: 25, Quantity: 100},
		},
	}
}

func newTestEventService(repo *memEventRepo, up *fakeUploader) *EventService {
	es := NewEventService(repo, up, discardLogger())
	es.now = fixedClock(eventNow)
	return es
}

func TestCreateEvent(t *testing.T) {
	repo := newMemEventRepo()
	up := &fakeUploader{}
	es := newTestEventService(repo, up)
	host := organizerClaims()

	image := &helpers.FileUpload{Filename: "Poster.JPG", Size: 3, Body: strings.NewReader("jpg")}
	event, err := es.CreateEvent(context.Background(), host, validEventInput(), image)
	require.NoError(t, err)

	assert.Equal(t, "Harbour Food Fest", event.Name)
	assert.Equal(t, models.EventStatusOpen, event.Status)
	assert.Equal(t, eventNow, event.DateCreated)
	assert.True(t, host.IsOwner(event.Organizer))
	assert.Equal(t, "https://cdn.example.com/"+helpers.EventsFolder+"/poster.jpg", event.ImageURL)
	assert.Equal(t, []string{helpers.EventsFolder}, up.folders)

	stored, err := repo.GetEventByID(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.Name, stored.Name)
}

func TestCreateEventWithPastEndIsCompleted(t *testing.T) {
	es := newTestEventService(newMemEventRepo(), &fakeUploader{})
	in := validEventInput()
	in.DateStarted = eventNow.Add(-48 * time.Hour)
	in.DateEnded = eventNow.Add(-24 * time.Hour)

	event, err := es.CreateEvent(context.Background(), organizerClaims(), in, nil)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusCompleted, event.Status)
	assert.Empty(t, event.ImageURL)
}

func TestCreateEventRejections(t *testing.T) {
	tests := []struct {
		name    string
		claims  *helpers.CustomClaims
		mutate  func(*CreateEventInput)
		wantErr error
	}{
		{name: "anonymous", claims: nil, wantErr: models.ErrUnauthenticated},
		{
			name:    "not an organizer",
			claims:  &helpers.CustomClaims{UserID: primitive.NewObjectID().Hex(), Username: "guest_1"},
			wantErr: models.ErrNotOrganizer,
		},
		{
			name:    "no ticket types",
			claims:  organizerClaims(),
			mutate:  func(in *CreateEventInput) { in.TicketTypes = nil },
			wantErr: models.ErrValidation,
		},
		{
			name:   "four ticket types",
			claims: organizerClaims(),
			mutate: func(in *CreateEventInput) {
				in.TicketTypes = append(in.TicketTypes,
					models.TicketType{Name: "Student", Price: 5, Quantity: 10},
					models.TicketType{Name: "Family", Price: 40, Quantity: 10})
			},
			wantErr: models.ErrValidation,
		},
		{
			name:    "end before start",
			claims:  organizerClaims(),
			mutate:  func(in *CreateEventInput) { in.DateEnded = in.DateStarted.Add(-time.Hour) },
			wantErr: models.ErrValidation,
		},
		{
			name:    "missing tagline",
			claims:  organizerClaims(),
			mutate:  func(in *CreateEventInput) { in.Tagline = "   " },
			wantErr: models.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemEventRepo()
			es := newTestEventService(repo, &fakeUploader{})
			in := validEventInput()
			if tt.mutate != nil {
				tt.mutate(&in)
			}
			_, err := es.CreateEvent(context.Background(), tt.claims, in, nil)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, repo.events)
		})
	}
}

func TestCreateEventDuplicate(t *testing.T) {
	repo := newMemEventRepo()
	es := newTestEventService(repo, &fakeUploader{})
	host := organizerClaims()

	_, err := es.CreateEvent(context.Background(), host, validEventInput(), nil)
	require.NoError(t, err)
	_, err = es.CreateEvent(context.Background(), host, validEventInput(), nil)
	assert.ErrorIs(t, err, models.ErrEventExists)
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Len(t, repo.events, 1)
}

func TestCreateEventUploadFailure(t *testing.T) {
	repo := newMemEventRepo()
	es := newTestEventService(repo, &fakeUploader{err: errors.New("bucket unavailable")})
	image := &helpers.FileUpload{Filename: "a.png", Size: 1, Body: strings.NewReader("x")}

	_, err := es.CreateEvent(context.Background(), organizerClaims(), validEventInput(), image)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image upload failed")
	assert.Empty(t, repo.events)
}

func TestGetEventReportsEffectiveStatus(t *testing.T) {
	event := generalEvent(5)
	event.DateStarted = eventNow.Add(-3 * time.Hour)
	event.DateEnded = eventNow.Add(-time.Hour)
	es := newTestEventService(newMemEventRepo(event), &fakeUploader{})

	got, err := es.GetEvent(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusCompleted, got.Status)

	_, err = es.GetEvent(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListOpenEventsPagination(t *testing.T) {
	var events []*models.Event
	for i := 0; i < 14; i++ {
		e := generalEvent(5)
		e.DateStarted = eventNow.Add(time.Duration(i+1) * time.Hour)
		e.DateEnded = eventNow.Add(time.Duration(i+30) * time.Hour)
		events = append(events, e)
	}
	ended := generalEvent(5)
	ended.DateEnded = eventNow.Add(-time.Minute)
	cancelled := generalEvent(5)
	cancelled.DateEnded = eventNow.Add(time.Hour)
	cancelled.Status = models.EventStatusCancelled
	events = append(events, ended, cancelled)

	es := newTestEventService(newMemEventRepo(events...), &fakeUploader{})

	page1, p, err := es.ListOpenEvents(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, page1, DefaultEventsPageSize)
	assert.Equal(t, &models.Pagination{CurrentPage: 1, TotalPages: 2, TotalEvents: 14, HasMore: true}, p)

	page2, p, err := es.ListOpenEvents(context.Background(), 2, 12)
	require.NoError(t, err)
	assert.Len(t, page2, 2)
	assert.False(t, p.HasMore)

	_, p, err = es.ListOpenEvents(context.Background(), 1, 500)
	require.NoError(t, err)
	assert.Equal(t, 1, p.TotalPages)
}

func TestCancelEvent(t *testing.T) {
	host := organizerClaims()
	hostID, err := host.ObjectID()
	require.NoError(t, err)

	event := generalEvent(5)
	event.Organizer = hostID
	event.DateStarted = eventNow.Add(time.Hour)
	event.DateEnded = eventNow.Add(5 * time.Hour)
	repo := newMemEventRepo(event)
	es := newTestEventService(repo, &fakeUploader{})

	_, err = es.CancelEvent(context.Background(), organizerClaims(), event.ID)
	assert.ErrorIs(t, err, models.ErrForbidden)

	got, err := es.CancelEvent(context.Background(), host, event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusCancelled, got.Status)

	stored, err := repo.GetEventByID(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusCancelled, stored.Status)

	_, err = es.CancelEvent(context.Background(), host, event.ID)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = es.CancelEvent(context.Background(), nil, event.ID)
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
}
