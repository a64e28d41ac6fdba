package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aidevedu/chatcore/pkg/chat"
)

// RedisStorage persists the session snapshot in Redis, suitable for
// deployments where session state is shared across processes.
type RedisStorage struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	mu     sync.RWMutex
	closed bool
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	// Addr is the Redis server address (host:port).
	Addr string
	// Password is the Redis password (optional).
	Password string
	// DB is the Redis database number.
	DB int
	// Prefix is the key prefix (default: "chatcore:").
	Prefix string
	// TTL is the snapshot expiry (0 = never expire).
	TTL time.Duration
}

// NewRedisStorage creates a Redis-backed store and verifies connectivity.
func NewRedisStorage(cfg RedisConfig) (*RedisStorage, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return newRedisStorage(client, cfg.Prefix, cfg.TTL), nil
}

// NewRedisStorageFromClient wraps an existing client. Useful for testing
// with miniredis.
func NewRedisStorageFromClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStorage {
	return newRedisStorage(client, prefix, ttl)
}

func newRedisStorage(client *redis.Client, prefix string, ttl time.Duration) *RedisStorage {
	if prefix == "" {
		prefix = "chatcore:"
	}
	return &RedisStorage{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisStorage) sessionsKey() string { return r.prefix + "chatSessions" }
func (r *RedisStorage) currentKey() string  { return r.prefix + "currentSessionId" }
func (r *RedisStorage) modelKey() string    { return r.prefix + "selectedModel" }

// Load retrieves the snapshot. Missing keys yield an empty snapshot; an
// unparsable session map is deleted and treated as empty.
func (r *RedisStorage) Load(ctx context.Context) (*chat.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, ErrStorageClosed
	}

	snap := emptySnapshot()

	data, err := r.client.Get(ctx, r.sessionsKey()).Bytes()
	switch {
	case err == redis.Nil:
		return snap, nil
	case err != nil:
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	if err := json.Unmarshal(data, &snap.Sessions); err != nil {
		log.Printf("[storage] corrupt session data in redis, starting fresh: %v", err)
		_ = r.deleteKeys(ctx)
		return emptySnapshot(), nil
	}

	if current, err := r.client.Get(ctx, r.currentKey()).Result(); err == nil {
		snap.CurrentSessionID = current
	}
	if model, err := r.client.Get(ctx, r.modelKey()).Result(); err == nil {
		snap.SelectedModel = model
	}

	return snap, nil
}

// Save persists the snapshot in a single pipeline.
func (r *RedisStorage) Save(ctx context.Context, snap *chat.Snapshot) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return ErrStorageClosed
	}

	data, err := json.Marshal(snap.Sessions)
	if err != nil {
		return fmt.Errorf("marshal sessions: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.sessionsKey(), data, r.ttl)
	pipe.Set(ctx, r.currentKey(), snap.CurrentSessionID, r.ttl)
	pipe.Set(ctx, r.modelKey(), snap.SelectedModel, r.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Clear removes all persisted keys.
func (r *RedisStorage) Clear(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return ErrStorageClosed
	}

	if err := r.deleteKeys(ctx); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}

func (r *RedisStorage) deleteKeys(ctx context.Context) error {
	return r.client.Del(ctx, r.sessionsKey(), r.currentKey(), r.modelKey()).Err()
}

// Close marks the backend closed and releases the connection pool.
func (r *RedisStorage) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	return r.client.Close()
}
