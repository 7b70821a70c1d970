package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"pickem-app/logging"
	"pickem-app/models"
)

// LeaderboardCache stores the computed leaderboard between recomputations.
// Every Invalidate starts a new generation and Set only keeps a board
// computed within the current one, so a board read before a write can never
// outlive that write's invalidation. A negative generation is never stored.
// Cache failures are logged and treated as misses.
type LeaderboardCache interface {
	Get(ctx context.Context) (entries []models.LeaderboardEntry, generation int64, ok bool)
	Set(ctx context.Context, generation int64, entries []models.LeaderboardEntry)
	Invalidate(ctx context.Context)
}

type noopLeaderboardCache struct{}

func (noopLeaderboardCache) Get(context.Context) ([]models.LeaderboardEntry, int64, bool) {
	return nil, -1, false
}
func (noopLeaderboardCache) Set(context.Context, int64, []models.LeaderboardEntry) {}
func (noopLeaderboardCache) Invalidate(context.Context)                           {}

func cacheOrNoop(cache LeaderboardCache) LeaderboardCache {
	if cache == nil {
		return noopLeaderboardCache{}
	}
	return cache
}

const (
	leaderboardKeyPrefix     = "pickem:leaderboard:"
	leaderboardGenerationKey = "pickem:leaderboard:generation"
)

var errStaleGeneration = errors.New("leaderboard generation moved on")

func leaderboardKey(generation int64) string {
	return leaderboardKeyPrefix + strconv.FormatInt(generation, 10)
}

// RedisLeaderboardCache keeps the leaderboard as a JSON blob in Redis under
// a generation-suffixed key
type RedisLeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewRedisLeaderboardCache connects to redisURL and verifies it with a ping
func NewRedisLeaderboardCache(redisURL string, ttl time.Duration) (*RedisLeaderboardCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisLeaderboardCache{
		client: client,
		ttl:    ttl,
		logger: logging.WithPrefix("leaderboard_cache"),
	}, nil
}

func generationOf(cmd *redis.StringCmd) (int64, error) {
	generation, err := cmd.Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return generation, err
}

func (c *RedisLeaderboardCache) Get(ctx context.Context) ([]models.LeaderboardEntry, int64, bool) {
	generation, err := generationOf(c.client.Get(ctx, leaderboardGenerationKey))
	if err != nil {
		c.logger.Warnf("Leaderboard generation read failed: %v", err)
		return nil, -1, false
	}

	raw, err := c.client.Get(ctx, leaderboardKey(generation)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, generation, false
	}
	if err != nil {
		c.logger.Warnf("Leaderboard cache read failed: %v", err)
		return nil, generation, false
	}

	var entries []models.LeaderboardEntry
	if err := sonic.Unmarshal(raw, &entries); err != nil {
		c.logger.Warnf("Discarding undecodable leaderboard cache entry: %v", err)
		return nil, generation, false
	}
	return entries, generation, true
}

// Set stores entries only while generation is still current. The generation
// key is watched so an Invalidate racing the write aborts it.
func (c *RedisLeaderboardCache) Set(ctx context.Context, generation int64, entries []models.LeaderboardEntry) {
	if generation < 0 {
		return
	}
	raw, err := sonic.Marshal(entries)
	if err != nil {
		c.logger.Warnf("Leaderboard cache encode failed: %v", err)
		return
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := generationOf(tx.Get(ctx, leaderboardGenerationKey))
		if err != nil {
			return err
		}
		if current != generation {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, leaderboardKey(generation), raw, c.ttl)
			return nil
		})
		return err
	}, leaderboardGenerationKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		c.logger.Debugf("Dropped leaderboard computed in generation %d", generation)
	default:
		c.logger.Warnf("Leaderboard cache write failed: %v", err)
	}
}

// Invalidate moves to a new generation; boards of older generations are
// never read again and expire with their TTL
func (c *RedisLeaderboardCache) Invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, leaderboardGenerationKey).Err(); err != nil {
		c.logger.Warnf("Leaderboard cache invalidation failed: %v", err)
	}
}

// Close closes the Redis connection
func (c *RedisLeaderboardCache) Close() error {
	return c.client.Close()
}
