package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/meronoumer/moodreads/internal/domain"
)

const defaultTTL = 10 * time.Minute

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// Connect parses a redis:// URL and returns a ready cache.
func Connect(ctx context.Context, redisURL string, ttl time.Duration) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	c := NewCache(redis.NewClient(opts), ttl)
	if err := c.Ping(ctx); err != nil {
		c.client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return c, nil
}

// moods differing only in case or spacing share an entry
func buildKey(mood string, limit int) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(mood)), " ")
	return fmt.Sprintf("rec:mood:%s:limit:%d", normalized, limit)
}

// Get recommendations from cache. found is false on a miss.
func (c *Cache) Get(ctx context.Context, mood string, limit int) ([]domain.Book, bool, error) {
	key := buildKey(mood, limit)
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("failed to get recommendations from cache: %w", err)
	}

	var books []domain.Book
	if err := json.Unmarshal([]byte(val), &books); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal recommendations %s: %w", key, err)
	}

	return books, true, nil
}

// Store recommendations in cache
func (c *Cache) Set(ctx context.Context, mood string, limit int, books []domain.Book) error {
	key := buildKey(mood, limit)
	val, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	if err := c.client.Set(ctx, key, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set recommendations in cache: %w", err)
	}

	return nil
}

// Clear drops every cached entry for a mood, whatever the limit.
func (c *Cache) Clear(ctx context.Context, mood string) error {
	pattern := strings.TrimSuffix(buildKey(mood, 0), "0") + "*"
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("cache delete %s: %w", iter.Val(), err)
		}
	}
	return iter.Err()
}

// Ping connectivity
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
