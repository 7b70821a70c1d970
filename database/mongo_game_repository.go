package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pickem-app/logging"
	"pickem-app/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoGameRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

func NewMongoGameRepository(db *MongoDB) *MongoGameRepository {
	return &MongoGameRepository{
		collection: db.GetCollection("games"),
		logger:     logging.WithPrefix("mongo_game_repo"),
	}
}

func (r *MongoGameRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}
	return count, nil
}

func (r *MongoGameRepository) InsertMany(ctx context.Context, games []*models.Game) error {
	if len(games) == 0 {
		return nil
	}

	ctx, cancel := WithLongTimeout(ctx)
	defer cancel()

	docs := make([]interface{}, len(games))
	for i, game := range games {
		docs[i] = game
	}

	result, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("failed to insert games: %w", err)
	}

	r.logger.Infof("Inserted %d games", len(result.InsertedIDs))
	return nil
}

func (r *MongoGameRepository) FindByID(ctx context.Context, gameID int) (*models.Game, error) {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	var game models.Game
	err := r.collection.FindOne(ctx, bson.M{"game_id": gameID}).Decode(&game)
	if err != nil {
		return nil, fmt.Errorf("failed to find game %d: %w", gameID, translateNotFound(err))
	}
	return &game, nil
}

func (r *MongoGameRepository) FindAll(ctx context.Context) ([]*models.Game, error) {
	ctx, cancel := WithMediumTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: "kickoff", Value: 1},
		{Key: "home_team", Value: 1},
	})
	return r.find(ctx, bson.M{}, opts)
}

func (r *MongoGameRepository) FindByMatchup(ctx context.Context, homeTeam, awayTeam string) ([]*models.Game, error) {
	ctx, cancel := WithMediumTimeout(ctx)
	defer cancel()

	filter := bson.M{"home_team": homeTeam, "away_team": awayTeam}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "kickoff", Value: 1}}))
}

func (r *MongoGameRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Game, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find games: %w", err)
	}
	defer cursor.Close(ctx)

	var games []*models.Game
	if err := cursor.All(ctx, &games); err != nil {
		return nil, fmt.Errorf("failed to decode games: %w", err)
	}
	return games, nil
}

// UpsertResult applies only the supplied fields with $set so a partial feed
// row never overwrites stored scores with nulls.
func (r *MongoGameRepository) UpsertResult(ctx context.Context, gameID int, update models.ResultUpdate) (*models.Game, error) {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	if update.HomeScore != nil {
		set["home_score"] = *update.HomeScore
	}
	if update.AwayScore != nil {
		set["away_score"] = *update.AwayScore
	}
	if update.Completed {
		set["completed"] = true
	}
	if update.Kickoff != nil {
		set["kickoff"] = *update.Kickoff
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var game models.Game
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"game_id": gameID}, bson.M{"$set": set}, opts).Decode(&game)
	if err != nil {
		err = translateNotFound(err)
		if !errors.Is(err, ErrNotFound) {
			r.logger.Errorf("Result update for game %d failed: %v", gameID, err)
		}
		return nil, fmt.Errorf("failed to update result for game %d: %w", gameID, err)
	}

	return &game, nil
}
