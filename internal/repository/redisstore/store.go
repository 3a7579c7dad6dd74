// Package redisstore keeps notification history, the push token and work locks in
// Redis, so several agents on one account can share them.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"smallbasket/internal/domain/entities"
)

// Store implements NotificationRepository, TokenRepository and LockManager.
// The history is a Redis list, newest at the head.
type Store struct {
	rdb    *redis.Client
	prefix string
	// owner is written as the lock value so a store only releases locks it
	// still holds.
	owner string
}

// releaseScript deletes KEYS[1] only while it still holds ARGV[1].
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewStore wraps an existing client. Keys are namespaced under prefix.
func NewStore(rdb *redis.Client, prefix string) *Store {
	return &Store{rdb: rdb, prefix: prefix, owner: uuid.NewString()}
}

// Dial connects to addr and checks the connection with PING.
func Dial(ctx context.Context, addr, prefix string) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewStore(rdb, prefix), nil
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func (s *Store) listKey() string  { return s.prefix + ":list" }
func (s *Store) tokenKey() string { return s.prefix + ":fcm_token" }
func (s *Store) lockKey(k string) string {
	return s.prefix + ":lock:" + k
}

// Add pushes n to the head of the list and trims it to limit in one
// MULTI/EXEC transaction.
func (s *Store) Add(ctx context.Context, n *entities.SavedNotification, limit int) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, s.listKey(), data)
		if limit > 0 {
			pipe.LTrim(ctx, s.listKey(), 0, int64(limit-1))
		}
		return nil
	})
	return err
}

func (s *Store) List(ctx context.Context) ([]*entities.SavedNotification, error) {
	raw, err := s.rdb.LRange(ctx, s.listKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	items := make([]*entities.SavedNotification, 0, len(raw))
	for _, r := range raw {
		var n entities.SavedNotification
		if err := json.Unmarshal([]byte(r), &n); err != nil {
			return nil, fmt.Errorf("decode notification: %w", err)
		}
		items = append(items, &n)
	}
	return items, nil
}

func (s *Store) Replace(ctx context.Context, items []*entities.SavedNotification) error {
	values := make([]interface{}, 0, len(items))
	for _, n := range items {
		data, err := json.Marshal(n)
		if err != nil {
			return err
		}
		values = append(values, data)
	}
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.listKey())
		if len(values) > 0 {
			pipe.RPush(ctx, s.listKey(), values...)
		}
		return nil
	})
	return err
}

func (s *Store) Clear(ctx context.Context) error {
	return s.rdb.Del(ctx, s.listKey()).Err()
}

func (s *Store) SaveToken(ctx context.Context, token string) error {
	return s.rdb.Set(ctx, s.tokenKey(), token, 0).Err()
}

func (s *Store) GetToken(ctx context.Context) (string, error) {
	tok, err := s.rdb.Get(ctx, s.tokenKey()).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return tok, err
}

func (s *Store) DeleteToken(ctx context.Context) error {
	return s.rdb.Del(ctx, s.tokenKey()).Err()
}

// AcquireLock is SET key owner NX PX ttl.
func (s *Store) AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, s.lockKey(key), s.owner, ttl).Result()
}

// ReleaseLock deletes the lock only if this store still owns it. A lock that
// expired and was taken by another agent is left alone.
func (s *Store) ReleaseLock(ctx context.Context, key string) error {
	return releaseScript.Run(ctx, s.rdb, []string{s.lockKey(key)}, s.owner).Err()
}

func (s *Store) IsLocked(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.lockKey(key)).Result()
	return n > 0, err
}
