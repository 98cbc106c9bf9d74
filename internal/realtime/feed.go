// Package realtime delivers order push events over Redis Pub/Sub.
//
// The channel is namespaced by tenant so multiple workspaces can share one
// Redis server. Delivery is at-least-once and unordered relative to REST
// responses; consumers must deduplicate by order identify. The feed is an
// injected dependency of the engine, so tests run against miniredis instead
// of a live server.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/fabiogif/moday-board/pkg/board"
)

// Feed is a tenant-scoped connection to the order event channel.
// Safe for concurrent use from multiple goroutines.
type Feed struct {
	rdb    *redis.Client
	tenant string
}

// NewFeed creates a feed for the given tenant.
// Returns an error if tenant is empty.
func NewFeed(redisOpts *redis.Options, tenant string) (*Feed, error) {
	if tenant == "" {
		return nil, fmt.Errorf("tenant cannot be empty")
	}

	return &Feed{
		rdb:    redis.NewClient(redisOpts),
		tenant: tenant,
	}, nil
}

// Close closes the Redis connection. Implements io.Closer.
func (f *Feed) Close() error {
	return f.rdb.Close()
}

// Ping verifies Redis connectivity. This is the feed's connectivity flag;
// useful for health checks and startup validation.
func (f *Feed) Ping(ctx context.Context) error {
	return f.rdb.Ping(ctx).Err()
}

// Publish sends an order event to every subscriber of this tenant's channel.
// Validates the event before publishing. Used by the reference backend; the
// engine itself only consumes.
func (f *Feed) Publish(ctx context.Context, event *board.OrderEvent) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid order event: %w", err)
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	channel := board.OrderEventsChannel(f.tenant)
	if err := f.rdb.Publish(ctx, channel, eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}

	return nil
}

// Subscription represents an active Pub/Sub subscription to order events.
// Caller must call Close() when done to clean up resources.
type Subscription struct {
	events <-chan *board.OrderEvent
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of order events.
// The channel is closed when the subscription is closed or the context is
// cancelled.
func (s *Subscription) Events() <-chan *board.OrderEvent {
	return s.events
}

// Errors returns the channel of subscription errors.
// Errors include JSON unmarshaling failures and other non-fatal issues.
// The subscription continues after errors - messages are skipped.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription and cleans up resources. Implements io.Closer.
// Safe to call multiple times - subsequent calls are no-ops.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// Subscribe subscribes to order events for this feed's tenant.
// Returns a Subscription that delivers decoded events.
// Caller must call subscription.Close() when done.
// Context cancellation also stops the subscription.
//
// Events are delivered on a buffered channel (size 10) to prevent blocking.
// If the subscriber is too slow, events may be dropped by Redis Pub/Sub
// (at-most-once delivery per subscriber).
func (f *Feed) Subscribe(ctx context.Context) (*Subscription, error) {
	channel := board.OrderEventsChannel(f.tenant)
	pubsub := f.rdb.Subscribe(ctx, channel)

	// Wait for the subscription to be established so no event published
	// right after this call returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to order events: %w", err)
	}

	eventsChan := make(chan *board.OrderEvent, 10)
	errorsChan := make(chan error, 10)

	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var event board.OrderEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					// Send error on error channel, skip message
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal order event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				if err := event.Validate(); err != nil {
					select {
					case errorsChan <- fmt.Errorf("discarding malformed order event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &event:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}
