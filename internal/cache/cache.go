// Package cache keeps the newest observation per feed in Redis so the
// API can answer latest-status lookups without touching partitions.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/airband/feed-tracker/internal/types"
)

// latestTTL bounds staleness: entries older than this are gone from the
// directory or the capture job has stopped.
const latestTTL = 24 * time.Hour

// RedisClientInterface defines the Redis operations used by our client
type RedisClientInterface interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// LatestStatus is the cached view of one feed: its static data plus the
// most recent time-series entry.
type LatestStatus struct {
	FeedName   string                `json:"feed_name"`
	StaticData types.StaticData      `json:"static_data"`
	Entry      types.TimeSeriesEntry `json:"entry"`
}

// Client manages Redis connections and operations
type Client struct {
	client RedisClientInterface
}

// New creates a new cache client and verifies connectivity.
func New(addr string) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{client: client}, nil
}

// NewWithClient creates a cache client with a custom RedisClientInterface (useful for testing)
func NewWithClient(client RedisClientInterface) *Client {
	return &Client{client: client}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.client.Close()
}

// StoreLatest stores the newest observation for a feed.
func (c *Client) StoreLatest(ctx context.Context, status *LatestStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal latest status: %w", err)
	}

	key := latestKey(status.FeedName)
	return c.client.Set(ctx, key, data, latestTTL).Err()
}

// GetLatest retrieves the newest observation for a feed, or nil when the
// cache holds nothing for it.
func (c *Client) GetLatest(ctx context.Context, feedName string) (*LatestStatus, error) {
	data, err := c.client.Get(ctx, latestKey(feedName)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest status: %w", err)
	}

	var status LatestStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal latest status: %w", err)
	}
	return &status, nil
}

// DeleteLatest removes a feed's cached observation.
func (c *Client) DeleteLatest(ctx context.Context, feedName string) error {
	return c.client.Del(ctx, latestKey(feedName)).Err()
}

func latestKey(feedName string) string {
	return fmt.Sprintf("feed:latest:%s", feedName)
}
