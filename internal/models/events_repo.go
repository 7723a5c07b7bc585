package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EventRepo interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEventByID(ctx context.Context, id primitive.ObjectID) (*Event, error)
	GetEventsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*Event, error)
	EventExists(ctx context.Context, name string, start, end time.Time) (bool, error)
	ListOpenEvents(ctx context.Context, now time.Time, offset, limit int) ([]*Event, int64, error)
	ListEventsByOrganizer(ctx context.Context, organizerID primitive.ObjectID) ([]*Event, error)
	SaveEvent(ctx context.Context, event *Event) error
	DecrementTicketQuantity(ctx context.Context, eventID primitive.ObjectID, ticketType string, quantity int) (int, error)
}

func (mdb *MongodbRepo) CreateEvent(ctx context.Context, event *Event) error {
	col, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	if _, err := col.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) GetEventByID(ctx context.Context, id primitive.ObjectID) (*Event, error) {
	col, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	var event Event
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&event); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("error finding event: %w", err)
	}
	return &event, nil
}

func (mdb *MongodbRepo) GetEventsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*Event, error) {
	out := make(map[primitive.ObjectID]*Event, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	col, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	cursor, err := col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("error finding events: %w", err)
	}
	var events []*Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("error decoding events: %w", err)
	}
	for _, e := range events {
		out[e.ID] = e
	}
	return out, nil
}

func (mdb *MongodbRepo) EventExists(ctx context.Context, name string, start, end time.Time) (bool, error) {
	col, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return false, fmt.Errorf("error getting collection: %w", err)
	}
	n, err := col.CountDocuments(ctx, bson.M{
		"name":        name,
		"dateStarted": start,
		"dateEnded":   end,
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("error counting events: %w", err)
	}
	return n > 0, nil
}

// openEventsFilter matches events stored as open whose end time is still
// ahead of now, so stale "open" documents are not listed.
func openEventsFilter(now time.Time) bson.M {
	return bson.M{
		"status":    EventStatusOpen,
		"dateEnded": bson.M{"$gt": now},
	}
}

func (mdb *MongodbRepo) ListOpenEvents(ctx context.Context, now time.Time, offset, limit int) ([]*Event, int64, error) {
	col, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return nil, 0, fmt.Errorf("error getting collection: %w", err)
	}
	filter := openEventsFilter(now)

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting events: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "dateStarted", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing events: %w", err)
	}
	events := []*Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, 0, fmt.Errorf("error decoding events: %w", err)
	}
	return events, total, nil
}

func (mdb *MongodbRepo) ListEventsByOrganizer(ctx context.Context, organizerID primitive.ObjectID) ([]*Event, error) {
	col, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	opts := options.Find().SetSort(bson.D{{Key: "dateCreated", Value: -1}})
	cursor, err := col.Find(ctx, bson.M{"organizer": organizerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing organizer events: %w", err)
	}
	events := []*Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("error decoding events: %w", err)
	}
	return events, nil
}

// SaveEvent replaces the stored document with event. No version check is
// made; the last writer wins.
func (mdb *MongodbRepo) SaveEvent(ctx context.Context, event *Event) error {
	col, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	res, err := col.ReplaceOne(ctx, bson.M{"_id": event.ID}, event)
	if err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrEventNotFound
	}
	return nil
}

func decrementFilter(eventID primitive.ObjectID, ticketType string, quantity int) bson.M {
	return bson.M{
		"_id": eventID,
		"ticketTypes": bson.M{"$elemMatch": bson.M{
			"name":     ticketType,
			"quantity": bson.M{"$gte": quantity},
		}},
	}
}

func decrementUpdate(quantity int, now time.Time) bson.M {
	return bson.M{
		"$inc": bson.M{"ticketTypes.$.quantity": -quantity},
		"$set": bson.M{"updatedAt": now},
	}
}

// DecrementTicketQuantity removes quantity tickets from the named ticket type
// in a single conditional update and returns the remaining count. When the
// condition fails the event is re-read to report why.
func (mdb *MongodbRepo) DecrementTicketQuantity(ctx context.Context, eventID primitive.ObjectID, ticketType string, quantity int) (int, error) {
	col, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return 0, fmt.Errorf("error getting collection: %w", err)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated Event
	err = col.FindOneAndUpdate(ctx,
		decrementFilter(eventID, ticketType, quantity),
		decrementUpdate(quantity, time.Now()),
		opts,
	).Decode(&updated)
	if err == nil {
		tt, ok := updated.TicketType(ticketType)
		if !ok {
			return 0, ErrInvalidTicketType
		}
		return tt.Quantity, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, fmt.Errorf("failed to decrement tickets: %w", err)
	}

	current, err := mdb.GetEventByID(ctx, eventID)
	if err != nil {
		return 0, err
	}
	tt, ok := current.TicketType(ticketType)
	if !ok {
		return 0, ErrInvalidTicketType
	}
	return tt.Quantity, &InsufficientInventoryError{TicketType: ticketType, Remaining: tt.Quantity}
}
