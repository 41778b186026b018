package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tdawodu/waypoint/internal/types"
)

// RedisClientInterface defines the Redis operations used by our client
type RedisClientInterface interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// Client manages Redis connections and operations
type Client struct {
	client RedisClientInterface
}

// New creates a new Redis client
func New(addr string) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{client: client}, nil
}

// NewWithClient creates a new Redis client with a custom RedisClientInterface (useful for testing)
func NewWithClient(client RedisClientInterface) *Client {
	return &Client{client: client}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.client.Close()
}

// StoreTrip caches the current state of a trip
func (c *Client) StoreTrip(ctx context.Context, trip *types.Trip) error {
	data, err := json.Marshal(trip)
	if err != nil {
		return fmt.Errorf("failed to marshal trip data: %w", err)
	}

	key := fmt.Sprintf("trip:%s", trip.TripID)
	return c.client.Set(ctx, key, data, 24*time.Hour).Err()
}

// getData retrieves data from Redis and unmarshals it into the target
func (c *Client) getData(ctx context.Context, key string, target interface{}, dataType string) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil // Data not found
	}
	if err != nil {
		return fmt.Errorf("failed to get %s data: %w", dataType, err)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to unmarshal %s data: %w", dataType, err)
	}

	return nil
}

// GetTrip retrieves a cached trip, or nil if none is cached
func (c *Client) GetTrip(ctx context.Context, tripID string) (*types.Trip, error) {
	key := fmt.Sprintf("trip:%s", tripID)
	var trip types.Trip
	if err := c.getData(ctx, key, &trip, "trip"); err != nil {
		return nil, err
	}
	if trip.TripID == "" {
		return nil, nil
	}
	return &trip, nil
}

// DeleteTrip removes a cached trip
func (c *Client) DeleteTrip(ctx context.Context, tripID string) error {
	key := fmt.Sprintf("trip:%s", tripID)
	return c.client.Del(ctx, key).Err()
}

// StoreLastFix caches the most recent position fix for a trip
func (c *Client) StoreLastFix(ctx context.Context, tripID string, fix *types.PositionFix) error {
	data, err := json.Marshal(fix)
	if err != nil {
		return fmt.Errorf("failed to marshal fix: %w", err)
	}

	key := fmt.Sprintf("fix:last:%s", tripID)
	return c.client.Set(ctx, key, data, 1*time.Hour).Err()
}

// GetLastFix retrieves the most recent cached fix for a trip, or nil
func (c *Client) GetLastFix(ctx context.Context, tripID string) (*types.PositionFix, error) {
	key := fmt.Sprintf("fix:last:%s", tripID)
	var fix types.PositionFix
	if err := c.getData(ctx, key, &fix, "fix"); err != nil {
		return nil, err
	}
	if fix.Timestamp.IsZero() {
		return nil, nil
	}
	return &fix, nil
}

// DeleteLastFix removes the cached fix for a trip
func (c *Client) DeleteLastFix(ctx context.Context, tripID string) error {
	key := fmt.Sprintf("fix:last:%s", tripID)
	return c.client.Del(ctx, key).Err()
}
