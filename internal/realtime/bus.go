// Package realtime carries change signals between writers and live
// subscribers. Signals hold no payload: a subscriber re-reads the store when
// its topic fires, so a dropped or duplicated signal only costs one refresh.
package realtime

import (
	"context"
	"fmt"
)

// CancelFunc releases a subscription. It is safe to call more than once.
type CancelFunc func()

type Bus interface {
	Publish(ctx context.Context, topic string) error
	Subscribe(ctx context.Context, topic string, fn func()) (CancelFunc, error)
	Close() error
}

const (
	TopicSupportSessions = "support:sessions"
	TopicAnnouncements   = "announcements"
	// TopicSystemReset fires after a data wipe. Every live subscription
	// listens on it, since per-user and per-session topics are not known to
	// the wipe.
	TopicSystemReset = "system:reset"
)

func SupportUserTopic(userID string) string {
	return fmt.Sprintf("support:user:%s", userID)
}

func SupportMessagesTopic(sessionID string) string {
	return fmt.Sprintf("support:session:%s:messages", sessionID)
}

func NotificationsTopic(userID string) string {
	return fmt.Sprintf("notifications:user:%s", userID)
}

func AnnouncementReadsTopic(userID string) string {
	return fmt.Sprintf("announcements:reads:%s", userID)
}

// PublishAll publishes every topic and returns the first error.
func PublishAll(ctx context.Context, bus Bus, topics ...string) error {
	var first error
	for _, topic := range topics {
		if err := bus.Publish(ctx, topic); err != nil && first == nil {
			first = err
		}
	}
	return first
}
