package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nba_props/pipeline/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrMiss is returned when a key is absent or expired
var ErrMiss = errors.New("cache miss")

// RedisCache caches the season schedule between resumed ingestion runs and
// recent scenario results. The pipeline works without it; callers treat cache
// failures as misses.
type RedisCache struct {
	client *redis.Client
}

// Config holds Redis connection configuration
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(ctx context.Context, cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info().Str("addr", cfg.Addr).Msg("Redis cache connected")

	return &RedisCache{client: client}, nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetSchedule returns a cached season game log
func (c *RedisCache) GetSchedule(ctx context.Context, season string) ([]models.GameLogEntry, error) {
	data, err := c.client.Get(ctx, scheduleKey(season)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule from cache: %w", err)
	}

	var entries []models.GameLogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached schedule: %w", err)
	}

	return entries, nil
}

// SetSchedule caches a season game log with the given TTL
func (c *RedisCache) SetSchedule(ctx context.Context, season string, entries []models.GameLogEntry, ttl time.Duration) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal schedule: %w", err)
	}

	if err := c.client.Set(ctx, scheduleKey(season), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache schedule: %w", err)
	}

	return nil
}

// GetScenario returns a cached scenario response
func (c *RedisCache) GetScenario(ctx context.Context, key string) (*models.ScenarioResponse, error) {
	data, err := c.client.Get(ctx, scenarioKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scenario from cache: %w", err)
	}

	var resp models.ScenarioResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached scenario: %w", err)
	}

	return &resp, nil
}

// SetScenario caches a scenario response with the given TTL
func (c *RedisCache) SetScenario(ctx context.Context, key string, resp *models.ScenarioResponse, ttl time.Duration) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}

	if err := c.client.Set(ctx, scenarioKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache scenario: %w", err)
	}

	return nil
}

func scheduleKey(season string) string {
	return "nba:schedule:" + season
}

func scenarioKey(key string) string {
	return "nba:scenario:" + key
}
