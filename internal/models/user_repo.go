package models

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepo interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByIdentifier(ctx context.Context, identifier string) (*User, error)
	IsUsernameTaken(ctx context.Context, username string, exclude primitive.ObjectID) (bool, error)
	SaveUser(ctx context.Context, user *User) error
}

func (mdb *MongodbRepo) CreateUser(ctx context.Context, user *User) error {
	col, err := mdb.GetCollection(UsersColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	if _, err := col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return kindError("user already exists", ErrConflict)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) findUser(ctx context.Context, filter bson.M) (*User, error) {
	col, err := mdb.GetCollection(UsersColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	var user User
	if err := col.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (mdb *MongodbRepo) GetUserByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	return mdb.findUser(ctx, bson.M{"_id": id})
}

func (mdb *MongodbRepo) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return mdb.findUser(ctx, bson.M{"username": username})
}

func (mdb *MongodbRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return mdb.findUser(ctx, bson.M{"email": NormalizeEmail(email)})
}

func (mdb *MongodbRepo) GetUserByIdentifier(ctx context.Context, identifier string) (*User, error) {
	return mdb.findUser(ctx, bson.M{"$or": bson.A{
		bson.M{"email": NormalizeEmail(identifier)},
		bson.M{"username": identifier},
	}})
}

// IsUsernameTaken reports whether a verified account other than exclude
// holds username. Unverified sign-ups do not reserve a name.
func (mdb *MongodbRepo) IsUsernameTaken(ctx context.Context, username string, exclude primitive.ObjectID) (bool, error) {
	col, err := mdb.GetCollection(UsersColName)
	if err != nil {
		return false, fmt.Errorf("error getting collection: %w", err)
	}
	filter := bson.M{"username": username, "isVerified": true}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}
	n, err := col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return n > 0, nil
}

func (mdb *MongodbRepo) SaveUser(ctx context.Context, user *User) error {
	col, err := mdb.GetCollection(UsersColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	res, err := col.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return kindError("username or email already in use", ErrConflict)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
