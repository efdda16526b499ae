package realtime

import (
	"context"
	"fmt"
	"sync"

	"flex-design-backend/internal/logger"

	"github.com/go-redis/redis/v8"
)

const channelPrefix = "flex:"

// RedisBus fans signals out across processes through Redis pub/sub, so a
// write handled by one server reaches subscribers held by another.
type RedisBus struct {
	client *redis.Client
	log    *logger.Logger
}

func NewRedisBus(ctx context.Context, addr, password string, log *logger.Logger) (*RedisBus, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("realtime: ping redis %s: %w", addr, err)
	}
	return &RedisBus{client: client, log: log.With("component", "RedisBus")}, nil
}

func (b *RedisBus) Publish(ctx context.Context, topic string) error {
	if err := b.client.Publish(ctx, channelPrefix+topic, "1").Err(); err != nil {
		return fmt.Errorf("realtime: publish %s: %w", topic, err)
	}
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context, topic string, fn func()) (CancelFunc, error) {
	channel := channelPrefix + topic
	pubsub := b.client.Subscribe(ctx, channel)

	// Wait for the subscription confirmation so no publish after return is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("realtime: subscribe %s: %w", topic, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range pubsub.Channel() {
			fn()
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := pubsub.Close(); err != nil {
				b.log.Warn("close subscription", "topic", topic, "error", err)
			}
			<-done
		})
	}, nil
}

func (b *RedisBus) Close() error {
	return b.client.Close()
}
