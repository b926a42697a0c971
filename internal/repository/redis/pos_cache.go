package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campuscoffee/CampusCoffeeGo/internal/domain"
	"github.com/campuscoffee/CampusCoffeeGo/internal/repository"
)

const keyPrefix = "pos:"

// PosCache is a read-through Redis cache in front of a PosRepository.
// Lookups by id hit Redis first and fall back to the inner repository,
// populating the cache on a miss. Writes go to the inner repository and
// invalidate the cached entry. Cache failures are logged, never surfaced:
// the inner repository remains the source of truth.
type PosCache struct {
	inner  repository.PosRepository
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewPosCache creates a Redis read-through cache wrapping the given repository.
func NewPosCache(inner repository.PosRepository, client *redis.Client, ttl time.Duration, logger *slog.Logger) *PosCache {
	return &PosCache{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// GetByID retrieves a POS by id, serving from Redis when possible.
func (c *PosCache) GetByID(ctx context.Context, id string) (*domain.Pos, error) {
	key := keyPrefix + id

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var pos domain.Pos
		if err := json.Unmarshal(data, &pos); err == nil {
			return &pos, nil
		}
		// Corrupt entry: drop it and fall through to the repository.
		c.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		c.logger.WarnContext(ctx, "pos cache read failed",
			slog.String("pos_id", id),
			slog.String("error", err.Error()),
		)
	}

	pos, err := c.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c.set(ctx, pos)
	return pos, nil
}

// Create inserts the POS and primes the cache.
func (c *PosCache) Create(ctx context.Context, pos *domain.Pos) error {
	if err := c.inner.Create(ctx, pos); err != nil {
		return err
	}
	c.set(ctx, pos)
	return nil
}

// Update modifies the POS and invalidates the cached entry.
func (c *PosCache) Update(ctx context.Context, pos *domain.Pos) error {
	if err := c.inner.Update(ctx, pos); err != nil {
		return err
	}
	if err := c.client.Del(ctx, keyPrefix+pos.ID).Err(); err != nil {
		c.logger.WarnContext(ctx, "pos cache invalidation failed",
			slog.String("pos_id", pos.ID),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// GetBySlug delegates to the inner repository; slug lookups are not cached.
func (c *PosCache) GetBySlug(ctx context.Context, slug string) (*domain.Pos, error) {
	return c.inner.GetBySlug(ctx, slug)
}

// List delegates to the inner repository; listings are not cached.
func (c *PosCache) List(ctx context.Context, page, perPage int) ([]domain.Pos, int, error) {
	return c.inner.List(ctx, page, perPage)
}

func (c *PosCache) set(ctx context.Context, pos *domain.Pos) {
	data, err := json.Marshal(pos)
	if err != nil {
		c.logger.WarnContext(ctx, "pos cache marshal failed",
			slog.String("pos_id", pos.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := c.client.Set(ctx, keyPrefix+pos.ID, data, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "pos cache write failed",
			slog.String("pos_id", pos.ID),
			slog.String("error", err.Error()),
		)
	}
}
