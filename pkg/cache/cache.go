package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisclient "github.com/sahalat/booking-engine/pkg/redis"
)

// Manager handles caching operations with JSON serialization
type Manager struct {
	redis *redisclient.Client
}

// NewManager creates a new cache manager
func NewManager(redis *redisclient.Client) *Manager {
	return &Manager{redis: redis}
}

// Get retrieves a cached value and unmarshals it into result
func (m *Manager) Get(ctx context.Context, key string, result interface{}) error {
	data, err := m.redis.GetString(ctx, key)
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(data), result)
}

// Set marshals and caches a value with expiration
func (m *Manager) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return m.redis.SetWithExpiration(ctx, key, string(data), ttl)
}

// GetOrSet retrieves from cache or executes fn and caches the result
func (m *Manager) GetOrSet(ctx context.Context, key string, ttl time.Duration, result interface{}, fn func() (interface{}, error)) error {
	if err := m.Get(ctx, key, result); err == nil {
		return nil // Cache hit
	}

	data, err := fn()
	if err != nil {
		return err
	}

	// Cache the result without blocking the request
	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = m.Set(cacheCtx, key, data, ttl)
	}()

	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return json.Unmarshal(jsonData, result)
}

// Delete removes keys from cache
func (m *Manager) Delete(ctx context.Context, keys ...string) error {
	return m.redis.Delete(ctx, keys...)
}

// CacheKeys defines common cache key patterns
type CacheKeys struct{}

var Keys = CacheKeys{}

// TierRates returns the cache key for a product's rate card
func (k CacheKeys) TierRates(productID string) string {
	return fmt.Sprintf("catalog:rates:%s", productID)
}

// ActiveDiscount returns the cache key for a product's active discount
func (k CacheKeys) ActiveDiscount(productID string) string {
	return fmt.Sprintf("catalog:discount:%s", productID)
}

// Product returns the cache key for a product record
func (k CacheKeys) Product(productID string) string {
	return fmt.Sprintf("catalog:product:%s", productID)
}

// TTLValues holds standard cache durations
type TTLValues struct{}

// TTL provides standard cache durations
var TTL = TTLValues{}

// Short is for values that change with admin edits
func (TTLValues) Short() time.Duration { return 5 * time.Minute }

// Medium is for mostly static reads
func (TTLValues) Medium() time.Duration { return 15 * time.Minute }
