package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking records one purchase. TicketType is a copy of the ticket type
// name at purchase time, not a reference into the event.
type Booking struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User              primitive.ObjectID `bson:"user" json:"user"`
	Event             primitive.ObjectID `bson:"event" json:"event"`
	TicketType        string             `bson:"ticketType" json:"ticketType"`
	QuantityPurchased int                `bson:"quantityPurchased" json:"quantityPurchased"`
	DatePurchased     time.Time          `bson:"datePurchased" json:"datePurchased"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func NewBooking(userID, eventID primitive.ObjectID, ticketType string, quantity int, now time.Time) *Booking {
	return &Booking{
		ID:                primitive.NewObjectID(),
		User:              userID,
		Event:             eventID,
		TicketType:        ticketType,
		QuantityPurchased: quantity,
		DatePurchased:     now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}
