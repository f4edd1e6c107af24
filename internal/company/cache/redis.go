// Package cache keeps the company list in Redis between writes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/coronavstech/companies/internal/company/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ListKey holds the JSON encoded result of listing all companies.
const ListKey = "companies:list"

// GenerationKey counts writes. A list read from the store is only cached if
// no write happened since the miss that preceded the read.
const GenerationKey = "companies:list:gen"

type Options struct {
	Addr     string
	Password string
	DB       int
	// MaxRetries bounds the startup ping attempts.
	MaxRetries uint64
}

// Connect opens a client and pings it with exponential backoff.
func Connect(ctx context.Context, opts Options, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), opts.MaxRetries), ctx)
	err := backoff.RetryNotify(func() error {
		return client.Ping(ctx).Err()
	}, policy, func(err error, wait time.Duration) {
		logger.Warn("redis connection failed, retrying",
			zap.String("addr", opts.Addr),
			zap.Duration("next_retry_in", wait),
			zap.Error(err),
		)
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis unavailable at %s: %w", opts.Addr, err)
	}
	logger.Info("connected to redis", zap.String("addr", opts.Addr))
	return client, nil
}

// ListCache stores the full company list under ListKey.
type ListCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewListCache(client redis.UniversalClient, ttl time.Duration) *ListCache {
	return &ListCache{client: client, ttl: ttl}
}

// GetList returns the cached list. ok is false on a cache miss; gen is then
// the write generation to hand back to SetList.
func (c *ListCache) GetList(ctx context.Context) (companies []models.Company, gen int64, ok bool, err error) {
	vals, err := c.client.MGet(ctx, ListKey, GenerationKey).Result()
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to get cached list: %w", err)
	}

	if raw, isSet := vals[1].(string); isSet {
		if gen, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, 0, false, fmt.Errorf("failed to decode list generation: %w", err)
		}
	}

	raw, isSet := vals[0].(string)
	if !isSet {
		return nil, gen, false, nil
	}
	if err := json.Unmarshal([]byte(raw), &companies); err != nil {
		return nil, 0, false, fmt.Errorf("failed to decode cached list: %w", err)
	}
	return companies, gen, true, nil
}

// SetList caches companies if the write generation is still gen. A list read
// before a concurrent write is silently dropped.
func (c *ListCache) SetList(ctx context.Context, companies []models.Company, gen int64) error {
	raw, err := json.Marshal(companies)
	if err != nil {
		return fmt.Errorf("failed to encode list: %w", err)
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, GenerationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, ListKey, raw, c.ttl)
			return nil
		})
		return err
	}, GenerationKey)

	switch {
	case err == nil, errors.Is(err, errStale), errors.Is(err, redis.TxFailedErr):
		return nil
	default:
		return fmt.Errorf("failed to cache list: %w", err)
	}
}

var errStale = errors.New("list generation changed")

// Invalidate drops the cached list and bumps the write generation.
func (c *ListCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, GenerationKey)
		pipe.Del(ctx, ListKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}
