package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventStatus string

const (
	EventStatusOpen      EventStatus = "open"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

const (
	MinTicketTypes = 1
	MaxTicketTypes = 3
)

// TicketType is a named price tier embedded in an Event. Quantity is the
// number of tickets still available.
type TicketType struct {
	Name     string  `bson:"name" json:"name" validate:"required,min=3"`
	Price    float64 `bson:"price" json:"price" validate:"gte=0"`
	Quantity int     `bson:"quantity" json:"quantity" validate:"gte=0"`
}

type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Organizer   primitive.ObjectID `bson:"organizer" json:"organizer"`
	Name        string             `bson:"name" json:"name" validate:"required,min=2"`
	Tagline     string             `bson:"tagline" json:"tagline" validate:"required"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category" json:"category"`
	Location    string             `bson:"location" json:"location" validate:"required,min=3"`
	ImageURL    string             `bson:"imageUrl" json:"imageUrl"`
	DateCreated time.Time          `bson:"dateCreated" json:"dateCreated"`
	DateStarted time.Time          `bson:"dateStarted" json:"dateStarted" validate:"required"`
	DateEnded   time.Time          `bson:"dateEnded" json:"dateEnded" validate:"required"`
	Status      EventStatus        `bson:"status" json:"status" validate:"oneof=open completed cancelled"`
	TicketTypes []TicketType       `bson:"ticketTypes" json:"ticketTypes" validate:"required,dive"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DeriveStatus classifies a new event from its end time. It never returns
// EventStatusCancelled; cancellation is an explicit organizer action.
func DeriveStatus(end, now time.Time) EventStatus {
	if end.Before(now) {
		return EventStatusCompleted
	}
	return EventStatusOpen
}

// EffectiveStatus recomputes the status at read time. The stored value is
// only written at creation and on cancellation, so an open event whose end
// time has passed is reported as completed here.
func (e *Event) EffectiveStatus(now time.Time) EventStatus {
	if e.Status == EventStatusCancelled {
		return EventStatusCancelled
	}
	return DeriveStatus(e.DateEnded, now)
}

func (e *Event) IsOpen(now time.Time) bool {
	return e.EffectiveStatus(now) == EventStatusOpen
}

// Cancel moves an open event to cancelled.
func (e *Event) Cancel(now time.Time) error {
	switch e.EffectiveStatus(now) {
	case EventStatusCancelled:
		return NewValidationError("event is already cancelled")
	case EventStatusCompleted:
		return NewValidationError("completed events cannot be cancelled")
	}
	e.Status = EventStatusCancelled
	e.UpdatedAt = now
	return nil
}

// TicketTypeIndex returns the position of the ticket type with exactly the
// given name, or -1.
func (e *Event) TicketTypeIndex(name string) int {
	for i := range e.TicketTypes {
		if e.TicketTypes[i].Name == name {
			return i
		}
	}
	return -1
}

func (e *Event) TicketType(name string) (*TicketType, bool) {
	i := e.TicketTypeIndex(name)
	if i < 0 {
		return nil, false
	}
	return &e.TicketTypes[i], true
}

// ValidateNew checks the rules that apply to an event being created.
func (e *Event) ValidateNew() error {
	if err := Validate.Struct(e); err != nil {
		return NewValidationError("invalid event data: %v", err)
	}
	if !e.DateStarted.Before(e.DateEnded) {
		return NewValidationError("start date must be before end date")
	}
	if n := len(e.TicketTypes); n < MinTicketTypes || n > MaxTicketTypes {
		return NewValidationError("an event needs between %d and %d ticket types", MinTicketTypes, MaxTicketTypes)
	}
	seen := make(map[string]struct{}, len(e.TicketTypes))
	for _, tt := range e.TicketTypes {
		if tt.Quantity <= 0 {
			return NewValidationError("ticket type %q must offer at least 1 ticket", tt.Name)
		}
		if _, dup := seen[tt.Name]; dup {
			return NewValidationError("ticket type %q is listed twice", tt.Name)
		}
		seen[tt.Name] = struct{}{}
	}
	return nil
}

func (e *Event) Sanitize() {
	e.Name = strings.TrimSpace(e.Name)
	e.Tagline = strings.TrimSpace(e.Tagline)
	e.Description = strings.TrimSpace(e.Description)
	e.Category = strings.TrimSpace(e.Category)
	e.Location = strings.TrimSpace(e.Location)
	for i := range e.TicketTypes {
		e.TicketTypes[i].Name = strings.TrimSpace(e.TicketTypes[i].Name)
	}
}

func (e *Event) BeforeCreate(now time.Time) {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	e.DateCreated = now
	e.CreatedAt = now
	e.UpdatedAt = now
	e.Status = DeriveStatus(e.DateEnded, now)
}

func (e *Event) String() string {
	return fmt.Sprintf("%s (%s)", e.Name, e.ID.Hex())
}
