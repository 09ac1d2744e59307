package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/avoran/jobscout/internal/faults"
	"github.com/redis/go-redis/v9"
)

// DefaultKey is the single namespaced key holding the serialized state.
const DefaultKey = "jobscout:session"

// DefaultTTL bounds a session's lifetime; every save renews it, so the state
// survives restarts within the window and expires with the session.
const DefaultTTL = 12 * time.Hour

// Store persists one session state blob.
type Store interface {
	Save(ctx context.Context, state *State) error
	// Load returns (nil, nil) when no usable state exists; corrupt data is
	// treated the same way, never as an error.
	Load(ctx context.Context) (*State, error)
}

// RedisStore keeps the state under one key with a session TTL.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// Dial parses redisURL and verifies connectivity.
func Dial(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, faults.Errorf(faults.Configuration, "parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, faults.Wrap(faults.Configuration, "redis ping failed", err)
	}

	return client, nil
}

func NewRedisStore(client *redis.Client, key string, ttl time.Duration) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &RedisStore{client: client, key: key, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, state *State) error {
	data, err := Encode(state)
	if err != nil {
		return faults.Wrap(faults.Persistence, "encoding session state", err)
	}

	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return faults.Wrap(faults.Persistence, "saving session state", err)
	}

	return nil
}

func (s *RedisStore) Load(ctx context.Context) (*State, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, faults.Wrap(faults.Persistence, "loading session state", err)
	}

	return Decode(data), nil
}

// MemoryStore is the store used when no Redis is configured. It goes through
// the same encode/decode round-trip as the real store.
type MemoryStore struct {
	mu   sync.Mutex
	blob []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(_ context.Context, state *State) error {
	data, err := Encode(state)
	if err != nil {
		return faults.Wrap(faults.Persistence, "encoding session state", err)
	}

	s.mu.Lock()
	s.blob = data
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) Load(_ context.Context) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.blob == nil {
		return nil, nil
	}

	return Decode(s.blob), nil
}
