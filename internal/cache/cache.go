package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ticketing-backoffice/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// InvalidationChannel carries entity tags published after every mutation.
// Each instance subscribes and drops the matching cached reads, which keeps
// every dashboard's view fresh without polling.
const InvalidationChannel = "cache:invalidate"

// NewClient creates a Redis client from a URL or plain host:port address.
func NewClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		// Fall back to simple connection
		opts = &redis.Options{
			Addr: url,
		}
	}

	opts.PoolSize = 50
	opts.MinIdleConns = 5
	opts.MaxRetries = 3

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// Store is a JSON read cache over Redis with tag-based invalidation.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{
		client: client,
		ttl:    ttl,
	}
}

// GetJSON loads a cached value into dest. The second return is false on a
// cache miss.
func (s *Store) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) SetJSON(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, s.ttl).Err()
}

// Invalidate drops every key under the given tags locally and publishes the
// tags so other instances do the same.
func (s *Store) Invalidate(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		if err := s.dropTag(ctx, tag); err != nil {
			return err
		}
		if err := s.client.Publish(ctx, InvalidationChannel, tag).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) dropTag(ctx context.Context, tag string) error {
	keys, err := s.client.Keys(ctx, tag+"*").Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// Listen consumes invalidation tags published by other instances until ctx
// is cancelled. Run it in its own goroutine.
func (s *Store) Listen(ctx context.Context) {
	sub := s.client.Subscribe(ctx, InvalidationChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := s.dropTag(ctx, msg.Payload); err != nil {
				logger.WithError(err).WithField("tag", msg.Payload).
					Warn("failed to drop invalidated cache tag")
			}
		}
	}
}
