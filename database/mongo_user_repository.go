package database

import (
	"context"
	"fmt"
	"time"

	"pickem-app/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoDB user repository
func NewMongoUserRepository(db *MongoDB) *MongoUserRepository {
	return &MongoUserRepository{
		collection: db.GetCollection("users"),
	}
}

// UpsertLogin creates the user on first login and refreshes provider fields
// afterwards. display_name is only initialised, never overwritten. A username
// held by another subject fails with ErrDuplicate.
func (r *MongoUserRepository) UpsertLogin(ctx context.Context, identity models.Identity, at time.Time) (*models.User, error) {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"name":          identity.Name,
			"username":      identity.Username,
			"updated_at":    at,
			"last_login_at": at,
		},
		"$setOnInsert": bson.M{
			"display_name": "",
			"created_at":   at,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var user models.User
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": identity.Subject}, update, opts).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to upsert user %s: %w", identity.Subject, translateDuplicate(err))
	}
	return &user, nil
}

// FindByID retrieves a user by their identity-provider subject
func (r *MongoUserRepository) FindByID(ctx context.Context, userID string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": userID})
}

// FindByUsername retrieves a user by provider handle
func (r *MongoUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to find user: %w", translateNotFound(err))
	}
	return &user, nil
}

// FindAll retrieves all users ordered by id
func (r *MongoUserRepository) FindAll(ctx context.Context) ([]*models.User, error) {
	ctx, cancel := WithMediumTimeout(ctx)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// SetDisplayName updates the user-editable name; an empty value clears the override
func (r *MongoUserRepository) SetDisplayName(ctx context.Context, userID, displayName string) (*models.User, error) {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{"display_name": displayName, "updated_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": userID}, update, opts).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to update display name for %s: %w", userID, translateNotFound(err))
	}
	return &user, nil
}
