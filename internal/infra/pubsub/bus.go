// Package pubsub carries change events from the write path to subscribers.
// The default provider is an in-process bus feeding the server-sent event
// stream; a Google Pub/Sub mirror can be layered on top for external
// consumers.
package pubsub

import (
	"context"
	"log/slog"
	"sync"

	"dispatch/internal/domain/service"

	"github.com/pkg/errors"
)

// subscriberBuffer bounds each subscription channel. A subscriber that falls
// this far behind starts losing events rather than blocking writers.
const subscriberBuffer = 16

// Bus is an in-process publisher and change feed. Publish never blocks on a
// slow subscriber.
type Bus struct {
	mu     sync.Mutex
	logger *slog.Logger
	subs   map[int]chan service.ChangeEvent
	nextID int
	closed bool
}

// NewBus creates an in-process event bus.
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		logger: logger,
		subs:   map[int]chan service.ChangeEvent{},
	}
}

// PublishChange fans the event out to every open subscription.
func (b *Bus) PublishChange(_ context.Context, event *service.ChangeEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return errors.New("event bus is closed")
	}

	for id, sub := range b.subs {
		select {
		case sub <- *event:
		default:
			b.logger.Warn("dropping change event for slow subscriber",
				slog.Int("subscriber", id),
				slog.String("type", string(event.Type)),
			)
		}
	}

	return nil
}

// Subscribe registers a subscription. The cancel function is idempotent and
// closes the channel; cancellation of ctx releases the subscription too.
func (b *Bus) Subscribe(ctx context.Context) (<-chan service.ChangeEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan service.ChangeEvent, subscriberBuffer)
	if b.closed {
		close(ch)

		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(ch)
			}
		})
	}

	if ctx != nil && ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			cancel()
		}()
	}

	return ch, cancel
}

// Close shuts the bus down and closes every open subscription.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub)
	}

	return nil
}
