package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/YadavAkhileshh/CrackBano/internal/model"
)

// DefaultTTL bounds how stale a cached session can get if an invalidation
// is lost.
const DefaultTTL = 10 * time.Minute

// minVersionTTL keeps version counters well past any in-flight read.
const minVersionTTL = 24 * time.Hour

const (
	keyPrefix     = "session:"
	versionSuffix = ":v"
)

// Redis stores sessions as JSON strings under "session:<id>" and their
// invalidation counters under "session:<id>:v".
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Sessions = (*Redis)(nil)

// NewRedis connects to redisURL (redis://[:password@]host:port/db) and
// pings it. A non-positive ttl uses DefaultTTL.
func NewRedis(redisURL string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("cache: parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cache: connect to redis: %w", err)
	}

	return NewRedisWithClient(client, ttl), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

func key(id string) string {
	return keyPrefix + id
}

func versionKey(id string) string {
	return keyPrefix + id + versionSuffix
}

func (r *Redis) versionTTL() time.Duration {
	if d := 2 * r.ttl; d > minVersionTTL {
		return d
	}
	return minVersionTTL
}

// Get unmarshals the cached session. A value that no longer decodes is
// deleted and reported as a miss.
func (r *Redis) Get(ctx context.Context, id string) (*model.Session, bool, error) {
	raw, err := r.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: get session %s: %w", id, err)
	}

	var s model.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		_ = r.client.Del(ctx, key(id)).Err()
		return nil, false, nil
	}
	return &s, true, nil
}

func (r *Redis) Version(ctx context.Context, id string) (int64, error) {
	v, err := r.client.Get(ctx, versionKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache: get version %s: %w", id, err)
	}
	return v, nil
}

// Set writes s inside a WATCH on its version key, so an Invalidate that
// lands between the version check and the write aborts the transaction.
// Both cases report ErrStale.
func (r *Redis) Set(ctx context.Context, s *model.Session, version int64) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("cache: marshal session %s: %w", s.ID, err)
	}

	vkey := versionKey(s.ID)
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, vkey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(s.ID), raw, r.ttl)
			return nil
		})
		return err
	}, vkey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStale), errors.Is(err, redis.TxFailedErr):
		return ErrStale
	default:
		return fmt.Errorf("cache: set session %s: %w", s.ID, err)
	}
}

// Invalidate bumps the version and drops the cached copy in one
// transaction.
func (r *Redis) Invalidate(ctx context.Context, id string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(id))
		pipe.Expire(ctx, versionKey(id), r.versionTTL())
		pipe.Del(ctx, key(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache: invalidate session %s: %w", id, err)
	}
	return nil
}

// Ping checks that Redis is reachable. /health reports it as the cache check.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
