package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTLs. Gate verdicts are deliberately short-lived: a block can be
// added at any moment and must take effect on the next send attempt.
const (
	TTLGateVerdict = 30 * time.Second
	TTLDefault     = 5 * time.Minute
)

// Cache key prefixes
const (
	PrefixGate    = "gate:"
	PrefixBlocked = "blocked:"
)

// ErrCacheMiss is returned when a key is absent
var ErrCacheMiss = errors.New("cache miss")

// Service Redis cache service interface
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// Gate verdict cache, keyed by the ordered (self, other) pair
	GetGateVerdict(ctx context.Context, selfID, otherID string, dest interface{}) error
	SetGateVerdict(ctx context.Context, selfID, otherID string, verdict interface{}) error
	InvalidateGate(ctx context.Context, userA, userB string) error

	IsAvailable() bool
}

type redisCache struct {
	client *redis.Client
}

// NewService creates a Redis-backed cache service.
// A nil client yields a service where every Get is a miss and Sets are no-ops.
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrCacheMiss
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func gateKey(selfID, otherID string) string {
	return fmt.Sprintf("%s%s:%s", PrefixGate, selfID, otherID)
}

func (c *redisCache) GetGateVerdict(ctx context.Context, selfID, otherID string, dest interface{}) error {
	return c.Get(ctx, gateKey(selfID, otherID), dest)
}

func (c *redisCache) SetGateVerdict(ctx context.Context, selfID, otherID string, verdict interface{}) error {
	return c.Set(ctx, gateKey(selfID, otherID), verdict, TTLGateVerdict)
}

// InvalidateGate drops cached verdicts in both directions for a pair.
// Called when either user blocks or unblocks the other.
func (c *redisCache) InvalidateGate(ctx context.Context, userA, userB string) error {
	return c.Delete(ctx,
		gateKey(userA, userB),
		gateKey(userB, userA),
		PrefixBlocked+userA,
		PrefixBlocked+userB,
	)
}

func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}
