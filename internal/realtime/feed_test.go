package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabiogif/moday-board/pkg/board"
)

// setupTestFeed creates a feed connected to a miniredis instance
func setupTestFeed(t *testing.T) (*Feed, *miniredis.Miniredis) {
	mr := miniredis.NewMiniRedis()
	err := mr.Start()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	feed, err := NewFeed(&redis.Options{Addr: mr.Addr()}, "test-tenant")
	require.NoError(t, err)
	t.Cleanup(func() { feed.Close() })

	return feed, mr
}

func TestNewFeed(t *testing.T) {
	t.Run("creates feed successfully", func(t *testing.T) {
		feed, _ := setupTestFeed(t)
		assert.NotNil(t, feed)
		assert.Equal(t, "test-tenant", feed.tenant)
	})

	t.Run("rejects empty tenant", func(t *testing.T) {
		_, err := NewFeed(&redis.Options{Addr: "localhost:6379"}, "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "tenant cannot be empty")
	})
}

func TestFeedPing(t *testing.T) {
	feed, _ := setupTestFeed(t)
	assert.NoError(t, feed.Ping(context.Background()))
}

func TestPublishSubscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers published events", func(t *testing.T) {
		feed, _ := setupTestFeed(t)

		sub, err := feed.Subscribe(ctx)
		require.NoError(t, err)
		defer sub.Close()

		event := &board.OrderEvent{
			Kind:  board.EventOrderCreated,
			Order: []byte(`{"identify": "2002", "status": "Preparing"}`),
		}
		require.NoError(t, feed.Publish(ctx, event))

		select {
		case received := <-sub.Events():
			assert.Equal(t, board.EventOrderCreated, received.Kind)
			assert.JSONEq(t, string(event.Order), string(received.Order))
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for event")
		}
	})

	t.Run("rejects invalid event on publish", func(t *testing.T) {
		feed, _ := setupTestFeed(t)

		err := feed.Publish(ctx, &board.OrderEvent{Kind: board.EventKind("bogus")})
		assert.Error(t, err)
	})

	t.Run("skips undecodable messages and reports them", func(t *testing.T) {
		feed, mr := setupTestFeed(t)

		sub, err := feed.Subscribe(ctx)
		require.NoError(t, err)
		defer sub.Close()

		mr.Publish(board.OrderEventsChannel("test-tenant"), "{not json")

		select {
		case err := <-sub.Errors():
			assert.Contains(t, err.Error(), "failed to unmarshal")
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for error")
		}

		// Subscription keeps working after a bad message
		good := &board.OrderEvent{Kind: board.EventOrderUpdated, Order: []byte(`{"identify": "1"}`)}
		require.NoError(t, feed.Publish(ctx, good))

		select {
		case received := <-sub.Events():
			assert.Equal(t, board.EventOrderUpdated, received.Kind)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for event after error")
		}
	})

	t.Run("reports structurally invalid events without delivering them", func(t *testing.T) {
		feed, mr := setupTestFeed(t)

		sub, err := feed.Subscribe(ctx)
		require.NoError(t, err)
		defer sub.Close()

		mr.Publish(board.OrderEventsChannel("test-tenant"), `{"kind": "order_deleted", "order": {}}`)

		select {
		case err := <-sub.Errors():
			assert.Contains(t, err.Error(), "malformed order event")
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for error")
		}
	})

	t.Run("does not deliver events for another tenant", func(t *testing.T) {
		feed, mr := setupTestFeed(t)

		sub, err := feed.Subscribe(ctx)
		require.NoError(t, err)
		defer sub.Close()

		mr.Publish(board.OrderEventsChannel("other-tenant"), `{"kind": "order_created", "order": {"identify": "9"}}`)

		select {
		case event := <-sub.Events():
			t.Fatalf("unexpected cross-tenant event: %+v", event)
		case <-time.After(200 * time.Millisecond):
			// expected: nothing delivered
		}
	})

	t.Run("close stops the event channel", func(t *testing.T) {
		feed, _ := setupTestFeed(t)

		sub, err := feed.Subscribe(ctx)
		require.NoError(t, err)

		require.NoError(t, sub.Close())
		require.NoError(t, sub.Close(), "close must be idempotent")

		select {
		case _, ok := <-sub.Events():
			assert.False(t, ok, "events channel should be closed")
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for channel close")
		}
	})
}
