// Package redisstore adapts Redis to the shared ports.StateStore contract.
// Each slash path maps to one key holding a JSON value; writes are announced
// on a pub/sub channel named after the key, so subscribers observe updates to
// a path in publish order.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"sevens/internal/ports"
)

// Store is a Redis-backed state store.
type Store struct {
	client *redis.Client
	prefix string
}

// New wraps an existing Redis client. All keys and channels are namespaced
// under prefix.
func New(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// Key returns the Redis key for a state path.
func (s *Store) Key(path string) string {
	if s.prefix == "" {
		return path
	}
	return s.prefix + ":" + path
}

// Read returns the raw JSON at path, or ports.ErrNotFound.
func (s *Store) Read(ctx context.Context, path string) ([]byte, error) {
	raw, err := s.client.Get(ctx, s.Key(path)).Bytes()
	if err == redis.Nil {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return raw, nil
}

// Write stores value at path and announces it to subscribers. A nil value
// deletes the path.
func (s *Store) Write(ctx context.Context, path string, value any) error {
	key := s.Key(path)
	if value == nil {
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("delete %s: %w", path, err)
		}
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := s.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return s.publish(ctx, key, raw)
}

// AtomicIncrement adds delta to the integer at path and returns the result.
// Redis treats a missing key as zero.
func (s *Store) AtomicIncrement(ctx context.Context, path string, delta int64) (int64, error) {
	key := s.Key(path)
	n, err := s.client.IncrBy(ctx, key, delta).Result()
	if err != nil {
		return 0, fmt.Errorf("increment %s: %w", path, err)
	}
	if err := s.publish(ctx, key, []byte(strconv.FormatInt(n, 10))); err != nil {
		return 0, err
	}
	return n, nil
}

// MultiPathUpdate applies every entry in one transaction. ports.Delta values
// increment, nil values delete. Announcements go out after the transaction
// commits, so subscribers never see a half-applied batch.
func (s *Store) MultiPathUpdate(ctx context.Context, updates map[string]any) error {
	type announce struct {
		key string
		raw []byte
		cmd *redis.IntCmd
	}
	announces := make([]announce, 0, len(updates))

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for path, value := range updates {
			key := s.Key(path)
			switch v := value.(type) {
			case nil:
				pipe.Del(ctx, key)
			case ports.Delta:
				cmd := pipe.IncrBy(ctx, key, int64(v))
				announces = append(announces, announce{key: key, cmd: cmd})
			default:
				raw, err := json.Marshal(v)
				if err != nil {
					return fmt.Errorf("encode %s: %w", path, err)
				}
				pipe.Set(ctx, key, raw, 0)
				announces = append(announces, announce{key: key, raw: raw})
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("multi-path update: %w", err)
	}

	for _, a := range announces {
		raw := a.raw
		if a.cmd != nil {
			raw = []byte(strconv.FormatInt(a.cmd.Val(), 10))
		}
		if err := s.publish(ctx, a.key, raw); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe delivers every announced write at path to fn until the
// subscription is closed. Unlike the in-memory store it does not replay the
// current value; callers read first, then subscribe.
func (s *Store) Subscribe(ctx context.Context, path string, fn func([]byte)) (ports.Subscription, error) {
	ps := s.client.Subscribe(ctx, s.Key(path))
	// Force the SUBSCRIBE round trip so a failed connection surfaces here
	// instead of silently dropping updates.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", path, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range ps.Channel() {
			fn([]byte(msg.Payload))
		}
	}()

	return &subscription{ps: ps, done: done}, nil
}

type subscription struct {
	ps   *redis.PubSub
	done chan struct{}
}

func (sub *subscription) Unsubscribe() {
	_ = sub.ps.Close()
	<-sub.done
}

func (s *Store) publish(ctx context.Context, key string, raw []byte) error {
	if err := s.client.Publish(ctx, key, raw).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	return nil
}
