package database

import (
	"context"
	"fmt"

	"pickem-app/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSpreadRepository is the append-only odds history
type MongoSpreadRepository struct {
	collection *mongo.Collection
}

func NewMongoSpreadRepository(db *MongoDB) *MongoSpreadRepository {
	return &MongoSpreadRepository{
		collection: db.GetCollection("spreads"),
	}
}

// InsertMany appends spread snapshots; existing rows are never touched
func (r *MongoSpreadRepository) InsertMany(ctx context.Context, spreads []*models.Spread) error {
	if len(spreads) == 0 {
		return nil
	}

	ctx, cancel := WithLongTimeout(ctx)
	defer cancel()

	docs := make([]interface{}, len(spreads))
	for i, spread := range spreads {
		docs[i] = spread
	}

	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert spreads: %w", err)
	}
	return nil
}

// FindByGame returns the full history for a game, newest first
func (r *MongoSpreadRepository) FindByGame(ctx context.Context, gameID int) ([]*models.Spread, error) {
	ctx, cancel := WithMediumTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "bookmaker", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"game_id": gameID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find spreads for game %d: %w", gameID, err)
	}
	defer cursor.Close(ctx)

	var spreads []*models.Spread
	if err := cursor.All(ctx, &spreads); err != nil {
		return nil, fmt.Errorf("failed to decode spreads: %w", err)
	}
	return spreads, nil
}

// FindLatest returns the current spread for a team in a game
func (r *MongoSpreadRepository) FindLatest(ctx context.Context, gameID int, team string) (*models.Spread, error) {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "bookmaker", Value: 1}})

	var spread models.Spread
	err := r.collection.FindOne(ctx, bson.M{"game_id": gameID, "team": team}, opts).Decode(&spread)
	if err != nil {
		return nil, fmt.Errorf("failed to find spread for game %d team %s: %w", gameID, team, translateNotFound(err))
	}
	return &spread, nil
}
