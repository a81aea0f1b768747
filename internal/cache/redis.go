package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/travelstore/config"
	"github.com/Domenick1991/travelstore/internal/cart"
	"github.com/Domenick1991/travelstore/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client      *redis.Client
	packagesTTL time.Duration
	cartTTL     time.Duration
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

func NewRedisCache(client *redis.Client, packagesTTL, cartTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:      client,
		packagesTTL: packagesTTL,
		cartTTL:     cartTTL,
	}
}

// GetPackages returns nil, nil on a cache miss.
func (c *RedisCache) GetPackages(ctx context.Context) ([]domain.TravelPackage, error) {
	data, err := c.client.Get(ctx, packagesKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var packages []domain.TravelPackage
	if err := json.Unmarshal(data, &packages); err != nil {
		return nil, err
	}
	return packages, nil
}

func (c *RedisCache) SetPackages(ctx context.Context, packages []domain.TravelPackage) error {
	payload, err := json.Marshal(packages)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, packagesKey(), payload, c.packagesTTL).Err()
}

func (c *RedisCache) InvalidatePackages(ctx context.Context) error {
	return c.client.Del(ctx, packagesKey()).Err()
}

// Carts are Redis lists of JSON-encoded packages, so appends and the
// post-checkout trim are single atomic commands.
func (c *RedisCache) GetCart(ctx context.Context, userID string) (*cart.Cart, error) {
	raw, err := c.client.LRange(ctx, cartKey(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return decodeCart(raw)
}

func (c *RedisCache) AddItem(ctx context.Context, userID string, pkg domain.TravelPackage) (*cart.Cart, error) {
	payload, err := json.Marshal(pkg)
	if err != nil {
		return nil, err
	}

	key := cartKey(userID)
	var items *redis.StringSliceCmd
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, payload)
		pipe.Expire(ctx, key, c.cartTTL)
		items = pipe.LRange(ctx, key, 0, -1)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decodeCart(items.Val())
}

func (c *RedisCache) RemoveItems(ctx context.Context, userID string, n int) error {
	if n <= 0 {
		return nil
	}
	return c.client.LTrim(ctx, cartKey(userID), int64(n), -1).Err()
}

func (c *RedisCache) DeleteCart(ctx context.Context, userID string) error {
	return c.client.Del(ctx, cartKey(userID)).Err()
}

func decodeCart(raw []string) (*cart.Cart, error) {
	ct := &cart.Cart{Items: make([]domain.TravelPackage, 0, len(raw))}
	for _, item := range raw {
		var pkg domain.TravelPackage
		if err := json.Unmarshal([]byte(item), &pkg); err != nil {
			return nil, fmt.Errorf("decode cart item: %w", err)
		}
		ct.Add(pkg)
	}
	return ct, nil
}

// AcquireRequestLock claims an idempotency key. It returns false when the
// key is held by an in-flight or completed request.
func (c *RedisCache) AcquireRequestLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, requestKey(key), "processing", ttl).Result()
}

// CompleteRequest keeps a finished key around so replays are still refused.
func (c *RedisCache) CompleteRequest(ctx context.Context, key string, ttl time.Duration) error {
	return c.client.Set(ctx, requestKey(key), "completed", ttl).Err()
}

// ReleaseRequestLock frees a key whose request failed, so a retry may run.
func (c *RedisCache) ReleaseRequestLock(ctx context.Context, key string) error {
	return c.client.Del(ctx, requestKey(key)).Err()
}

func packagesKey() string {
	return "cache:packages"
}

func cartKey(userID string) string {
	return fmt.Sprintf("cart:user:%s", userID)
}

func requestKey(key string) string {
	return fmt.Sprintf("idempotency:%s", key)
}

var _ cart.Store = (*RedisCache)(nil)
