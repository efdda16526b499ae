package jwt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrRefreshNotFound = errors.New("refresh token not found")

type RefreshStore interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Touch(ctx context.Context, key string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

const refreshKeyPrefix = "refresh:"

type RedisRefreshStore struct {
	client *redis.Client
}

func NewRedisRefreshStore(ctx context.Context, addr, password string) (*RedisRefreshStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("jwt: ping redis %s: %w", addr, err)
	}
	return &RedisRefreshStore{client: client}, nil
}

func (s *RedisRefreshStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, refreshKeyPrefix+key, value, ttl).Err()
}

func (s *RedisRefreshStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, refreshKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, ErrRefreshNotFound
	}
	return val, err
}

func (s *RedisRefreshStore) Touch(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Expire(ctx, refreshKeyPrefix+key, ttl).Err()
}

func (s *RedisRefreshStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, refreshKeyPrefix+key).Err()
}

func (s *RedisRefreshStore) Close() error {
	return s.client.Close()
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryRefreshStore keeps refresh tokens in process memory. Tokens do not
// survive a restart and are not shared between servers.
type MemoryRefreshStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryRefreshStore() *MemoryRefreshStore {
	return &MemoryRefreshStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryRefreshStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{value: append([]byte(nil), value...), expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryRefreshStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok || !s.now().Before(entry.expiresAt) {
		delete(s.entries, key)
		return nil, ErrRefreshNotFound
	}
	return entry.value, nil
}

func (s *MemoryRefreshStore) Touch(ctx context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return ErrRefreshNotFound
	}
	entry.expiresAt = s.now().Add(ttl)
	s.entries[key] = entry
	return nil
}

func (s *MemoryRefreshStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
