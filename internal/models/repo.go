package models

import (
	"context"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultDBName     = "gatherly"
	UsersColName      = "users"
	EventsColName     = "events"
	BookingsColName   = "bookings"
	bookingIndexName  = "user_event"
	usernamePatternRe = `^[a-zA-Z0-9_-]{3,20}$`
)

var usernamePattern = regexp.MustCompile(usernamePatternRe)

var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

func ValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

type MongodbRepo struct {
	mongodbClient *mongo.Client
	dbName        string
}

func MongodbNewRepo(mongodbClient *mongo.Client, dbName string) *MongodbRepo {
	if dbName == "" {
		dbName = DefaultDBName
	}
	return &MongodbRepo{
		mongodbClient: mongodbClient,
		dbName:        dbName,
	}
}

func (mdb *MongodbRepo) GetCollection(colName string) (*mongo.Collection, error) {
	if mdb.mongodbClient == nil {
		return nil, fmt.Errorf("mongodb client is not initialized")
	}
	return mdb.mongodbClient.Database(mdb.dbName).Collection(colName), nil
}

// EnsureIndexes creates the collection indexes. With uniqueBookings the
// (user, event) booking index is unique, so duplicate purchases are
// rejected by the database instead of by a prior lookup.
func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context, uniqueBookings bool) error {
	users, err := mdb.GetCollection(UsersColName)
	if err != nil {
		return err
	}
	_, err = users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("error creating user indexes: %w", err)
	}

	events, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return err
	}
	_, err = events.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "dateStarted", Value: 1}}},
		{Keys: bson.D{{Key: "organizer", Value: 1}, {Key: "dateCreated", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("error creating event indexes: %w", err)
	}

	bookings, err := mdb.GetCollection(BookingsColName)
	if err != nil {
		return err
	}
	_, err = bookings.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}, {Key: "event", Value: 1}},
		Options: options.Index().SetName(bookingIndexName).SetUnique(uniqueBookings),
	})
	if err != nil {
		return fmt.Errorf("error creating booking index: %w", err)
	}
	return nil
}
