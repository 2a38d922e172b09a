package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/pacerank/internal/config"
	"github.com/pacerank/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Cache stores computed leaderboards and roster sets in Redis. A scoring run
// is pure computation over the record set, so cached output only needs
// invalidation when new records arrive, never reconciliation.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCache creates a new Redis cache
func NewCache(cfg *config.RedisConfig, ttl time.Duration, logger *slog.Logger) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &Cache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}, nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client returns the underlying Redis client
func (c *Cache) Client() *redis.Client {
	return c.client
}

// leaderboardKey returns the cache key for an individual leaderboard
func (c *Cache) leaderboardKey(competitionID string, mode domain.ScoringMode, targetKm float64) string {
	return fmt.Sprintf("competition:%s:leaderboard:%s:%g", competitionID, mode, targetKm)
}

// teamKey returns the cache key for a team leaderboard
func (c *Cache) teamKey(competitionID string, mode domain.ScoringMode, targetKm float64) string {
	return fmt.Sprintf("competition:%s:teams:%s:%g", competitionID, mode, targetKm)
}

// cacheIndexKey returns the key of the set tracking a competition's cache entries
func (c *Cache) cacheIndexKey(competitionID string) string {
	return fmt.Sprintf("competition:%s:cachekeys", competitionID)
}

// rosterKey returns the key of a competition's roster set
func (c *Cache) rosterKey(competitionID string) string {
	return fmt.Sprintf("competition:%s:roster", competitionID)
}

// GetLeaderboard returns a cached leaderboard, or ok=false on a miss
func (c *Cache) GetLeaderboard(ctx context.Context, competitionID string, mode domain.ScoringMode, targetKm float64) ([]domain.LeaderboardEntry, bool, error) {
	data, err := c.client.Get(ctx, c.leaderboardKey(competitionID, mode, targetKm)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("getting cached leaderboard: %w", err)
	}

	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false, fmt.Errorf("unmarshaling cached leaderboard: %w", err)
	}
	return entries, true, nil
}

// SetLeaderboard caches a computed leaderboard and indexes its key for
// later invalidation
func (c *Cache) SetLeaderboard(ctx context.Context, competitionID string, mode domain.ScoringMode, targetKm float64, entries []domain.LeaderboardEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling leaderboard: %w", err)
	}
	return c.setIndexed(ctx, competitionID, c.leaderboardKey(competitionID, mode, targetKm), data)
}

// GetTeamLeaderboard returns a cached team leaderboard, or ok=false on a miss
func (c *Cache) GetTeamLeaderboard(ctx context.Context, competitionID string, mode domain.ScoringMode, targetKm float64) ([]domain.TeamLeaderboardEntry, bool, error) {
	data, err := c.client.Get(ctx, c.teamKey(competitionID, mode, targetKm)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("getting cached team leaderboard: %w", err)
	}

	var entries []domain.TeamLeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false, fmt.Errorf("unmarshaling cached team leaderboard: %w", err)
	}
	return entries, true, nil
}

// SetTeamLeaderboard caches a computed team leaderboard
func (c *Cache) SetTeamLeaderboard(ctx context.Context, competitionID string, mode domain.ScoringMode, targetKm float64, entries []domain.TeamLeaderboardEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling team leaderboard: %w", err)
	}
	return c.setIndexed(ctx, competitionID, c.teamKey(competitionID, mode, targetKm), data)
}

func (c *Cache) setIndexed(ctx context.Context, competitionID, key string, data []byte) error {
	pipe := c.client.Pipeline()
	pipe.Set(ctx, key, data, c.ttl)
	pipe.SAdd(ctx, c.cacheIndexKey(competitionID), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("caching leaderboard: %w", err)
	}
	return nil
}

// Invalidate drops every cached leaderboard for a competition. Called after
// ingest so readers never see standings that predate a record.
func (c *Cache) Invalidate(ctx context.Context, competitionID string) error {
	indexKey := c.cacheIndexKey(competitionID)
	keys, err := c.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return fmt.Errorf("listing cache keys: %w", err)
	}

	pipe := c.client.Pipeline()
	for _, key := range keys {
		pipe.Del(ctx, key)
	}
	pipe.Del(ctx, indexKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	return nil
}

// AddRosterMember mirrors a roster registration into Redis
func (c *Cache) AddRosterMember(ctx context.Context, competitionID, participantID string) error {
	err := c.client.SAdd(ctx, c.rosterKey(competitionID), participantID).Err()
	if err != nil {
		return fmt.Errorf("adding roster member: %w", err)
	}
	return nil
}

// GetRoster returns the mirrored roster set. Order is not significant; the
// scoring engine sorts backfilled entries itself.
func (c *Cache) GetRoster(ctx context.Context, competitionID string) ([]string, error) {
	members, err := c.client.SMembers(ctx, c.rosterKey(competitionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("getting roster: %w", err)
	}
	return members, nil
}

// DeleteCompetition removes all cached state for a competition
func (c *Cache) DeleteCompetition(ctx context.Context, competitionID string) error {
	if err := c.Invalidate(ctx, competitionID); err != nil {
		return err
	}
	if err := c.client.Del(ctx, c.rosterKey(competitionID)).Err(); err != nil {
		return fmt.Errorf("deleting roster: %w", err)
	}
	return nil
}
