package realtime

import (
	"context"
	"sync"
)

// Watch calls refresh once right away and again after every signal on any of
// topics, until the returned CancelFunc is called. Signals arriving while a
// refresh runs collapse into one follow-up refresh. refresh runs on a single
// goroutine and must not call the CancelFunc itself.
func Watch(ctx context.Context, bus Bus, topics []string, refresh func(ctx context.Context)) (CancelFunc, error) {
	ctx, cancel := context.WithCancel(ctx)
	signals := make(chan struct{}, 1)
	notify := func() {
		select {
		case signals <- struct{}{}:
		default:
		}
	}

	unsubs := make([]CancelFunc, 0, len(topics))
	for _, topic := range topics {
		unsub, err := bus.Subscribe(ctx, topic, notify)
		if err != nil {
			for _, u := range unsubs {
				u()
			}
			cancel()
			return nil, err
		}
		unsubs = append(unsubs, unsub)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		refresh(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-signals:
				if ctx.Err() != nil {
					return
				}
				refresh(ctx)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			for _, u := range unsubs {
				u()
			}
			cancel()
			<-done
		})
	}, nil
}
