package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pickem-app/logging"
	"pickem-app/models"
)

// MongoPickRepository implements PickRepository for MongoDB
type MongoPickRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

// NewMongoPickRepository creates a new MongoDB pick repository
func NewMongoPickRepository(db *MongoDB) *MongoPickRepository {
	return &MongoPickRepository{
		collection: db.GetCollection("picks"),
		logger:     logging.WithPrefix("mongo_pick_repo"),
	}
}

// FindByUser retrieves all picks for a user
func (r *MongoPickRepository) FindByUser(ctx context.Context, userID string) ([]*models.Pick, error) {
	ctx, cancel := WithMediumTimeout(ctx)
	defer cancel()

	picks, err := r.find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to find picks by user: %w", err)
	}
	return picks, nil
}

// FindByGame retrieves all picks for a specific game
func (r *MongoPickRepository) FindByGame(ctx context.Context, gameID int) ([]*models.Pick, error) {
	ctx, cancel := WithMediumTimeout(ctx)
	defer cancel()

	picks, err := r.find(ctx, bson.M{"game_id": gameID})
	if err != nil {
		return nil, fmt.Errorf("failed to find picks by game: %w", err)
	}
	return picks, nil
}

// FindAll retrieves every pick, oldest first
func (r *MongoPickRepository) FindAll(ctx context.Context) ([]*models.Pick, error) {
	ctx, cancel := WithMediumTimeout(ctx)
	defer cancel()

	picks, err := r.find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to find picks: %w", err)
	}
	return picks, nil
}

func (r *MongoPickRepository) find(ctx context.Context, filter bson.M) ([]*models.Pick, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var picks []*models.Pick
	for cursor.Next(ctx) {
		var pick models.Pick
		if err := cursor.Decode(&pick); err != nil {
			return nil, fmt.Errorf("failed to decode pick: %w", err)
		}
		picks = append(picks, &pick)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return picks, nil
}

// Replace removes any pick the user holds on the game and inserts the new one
// in a single ordered bulk write: delete first, then insert.
func (r *MongoPickRepository) Replace(ctx context.Context, pick *models.Pick) error {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	if pick.ID.IsZero() {
		pick.ID = primitive.NewObjectID()
	}

	operations := []mongo.WriteModel{
		mongo.NewDeleteManyModel().SetFilter(bson.M{"user_id": pick.UserID, "game_id": pick.GameID}),
		mongo.NewInsertOneModel().SetDocument(pick),
	}

	result, err := r.collection.BulkWrite(ctx, operations, options.BulkWrite().SetOrdered(true))
	if err != nil {
		return fmt.Errorf("failed to replace pick: %w", err)
	}

	r.logger.Debugf("Replaced pick for user %s game %d: %d deleted, %d inserted",
		pick.UserID, pick.GameID, result.DeletedCount, result.InsertedCount)
	return nil
}

// DeleteByUserAndGame removes the user's pick on a game
func (r *MongoPickRepository) DeleteByUserAndGame(ctx context.Context, userID string, gameID int) (int64, error) {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID, "game_id": gameID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete pick: %w", err)
	}
	return result.DeletedCount, nil
}

// SetCorrectByGame grades all picks on a game. Picks on the winner become
// correct, the rest incorrect; an empty winner resets every pick to ungraded.
func (r *MongoPickRepository) SetCorrectByGame(ctx context.Context, gameID int, winner string) (int64, error) {
	ctx, cancel := WithMediumTimeout(ctx)
	defer cancel()

	if winner == "" {
		result, err := r.collection.UpdateMany(ctx,
			bson.M{"game_id": gameID},
			bson.M{"$set": bson.M{"correct": nil}})
		if err != nil {
			return 0, fmt.Errorf("failed to clear pick results for game %d: %w", gameID, err)
		}
		return result.MatchedCount, nil
	}

	operations := []mongo.WriteModel{
		mongo.NewUpdateManyModel().
			SetFilter(bson.M{"game_id": gameID, "team": winner}).
			SetUpdate(bson.M{"$set": bson.M{"correct": true}}),
		mongo.NewUpdateManyModel().
			SetFilter(bson.M{"game_id": gameID, "team": bson.M{"$ne": winner}}).
			SetUpdate(bson.M{"$set": bson.M{"correct": false}}),
	}

	result, err := r.collection.BulkWrite(ctx, operations, options.BulkWrite().SetOrdered(true))
	if err != nil {
		return 0, fmt.Errorf("failed to grade picks for game %d: %w", gameID, err)
	}
	return result.MatchedCount, nil
}
