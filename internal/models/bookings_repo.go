package models

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BookingRepo interface {
	CreateBooking(ctx context.Context, booking *Booking) error
	HasBooking(ctx context.Context, userID, eventID primitive.ObjectID) (bool, error)
	DeleteBooking(ctx context.Context, id primitive.ObjectID) error
	ListBookingsByUser(ctx context.Context, userID primitive.ObjectID) ([]*Booking, error)
	ListBookingsByEvent(ctx context.Context, eventID primitive.ObjectID) ([]*Booking, error)
}

// CreateBooking inserts booking. A duplicate key error from the unique
// (user, event) index is reported as ErrDuplicateBooking.
func (mdb *MongodbRepo) CreateBooking(ctx context.Context, booking *Booking) error {
	col, err := mdb.GetCollection(BookingsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	if _, err := col.InsertOne(ctx, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateBooking
		}
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) HasBooking(ctx context.Context, userID, eventID primitive.ObjectID) (bool, error) {
	col, err := mdb.GetCollection(BookingsColName)
	if err != nil {
		return false, fmt.Errorf("error getting collection: %w", err)
	}
	n, err := col.CountDocuments(ctx, bson.M{"user": userID, "event": eventID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("error finding booking: %w", err)
	}
	return n > 0, nil
}

func (mdb *MongodbRepo) DeleteBooking(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(BookingsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (mdb *MongodbRepo) ListBookingsByUser(ctx context.Context, userID primitive.ObjectID) ([]*Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "datePurchased", Value: -1}})
	return mdb.findBookings(ctx, bson.M{"user": userID}, opts)
}

func (mdb *MongodbRepo) ListBookingsByEvent(ctx context.Context, eventID primitive.ObjectID) ([]*Booking, error) {
	return mdb.findBookings(ctx, bson.M{"event": eventID})
}

func (mdb *MongodbRepo) findBookings(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]*Booking, error) {
	col, err := mdb.GetCollection(BookingsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	cursor, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("error finding bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*Booking{}
	for cursor.Next(ctx) {
		var b Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("error decoding booking: %w", err)
		}
		bookings = append(bookings, &b)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return bookings, nil
}
