// Package engine wires the board together: it seeds the authoritative
// collection with a bulk load, subscribes to the realtime feed, routes drag
// gestures through the mutation coordinator and keeps the derived column
// view fresh after every change.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/fabiogif/moday-board/internal/drag"
	"github.com/fabiogif/moday-board/internal/mutation"
	"github.com/fabiogif/moday-board/internal/notify"
	"github.com/fabiogif/moday-board/internal/realtime"
	"github.com/fabiogif/moday-board/internal/reconcile"
	"github.com/fabiogif/moday-board/pkg/board"
)

// Lister is the bulk-load side of the persistence boundary.
type Lister interface {
	ListOrders(ctx context.Context) ([]board.Order, error)
}

// Client is the full persistence boundary the engine needs.
type Client interface {
	Lister
	mutation.StatusUpdater
}

// Engine owns the authoritative collection and coordinates its three
// mutators: the bulk loader (full replace), the mutation coordinator
// (confirmed status writes) and the reconciler (realtime events).
type Engine struct {
	client      Client
	feed        *realtime.Feed
	tenant      string
	notifier    notify.Notifier
	collection  *board.Collection
	coordinator *mutation.Coordinator
	drag        *drag.Controller
	reconciler  *reconcile.Reconciler
	onChange    func()
}

// New creates an engine over the given boundaries. The feed is injected so
// tests can run against miniredis. onChange, if non-nil, is invoked after
// every collection change for the embedding view to re-render.
func New(client Client, feed *realtime.Feed, tenant string, notifier notify.Notifier, onChange func()) *Engine {
	collection := board.NewCollection()

	e := &Engine{
		client:     client,
		feed:       feed,
		tenant:     tenant,
		notifier:   notifier,
		collection: collection,
		drag:       drag.NewController(collection),
		reconciler: reconcile.NewReconciler(collection, notifier),
		onChange:   onChange,
	}
	e.coordinator = mutation.NewCoordinator(client, e, collection, notifier)
	return e
}

// Collection exposes the authoritative collection for read-side views.
func (e *Engine) Collection() *board.Collection {
	return e.collection
}

// Columns derives the current four-column view.
func (e *Engine) Columns() []board.ColumnView {
	return board.Project(e.collection.Snapshot())
}

// InFlight returns the orders with a mutation currently committing.
func (e *Engine) InFlight() []string {
	return e.coordinator.InFlight()
}

// Reload fetches the full order collection and replaces the local one.
// This is both the startup seed and the sole recovery path after a failed
// mutation. On failure the previous collection is left untouched, a
// user-visible error is raised and no retry is attempted.
func (e *Engine) Reload(ctx context.Context) error {
	start := time.Now()

	orders, err := e.client.ListOrders(ctx)
	if err != nil {
		e.notifier.Error("Failed to load orders: %v", err)
		return fmt.Errorf("failed to load orders: %w", err)
	}

	e.collection.ReplaceAll(orders)
	e.logEvent("orders_loaded", map[string]interface{}{
		"count":      len(orders),
		"latency_ms": time.Since(start).Milliseconds(),
	})

	e.notifyChange()
	return nil
}

// HandleGesture consumes one completed drag gesture, identified by its
// opaque source and target IDs. Invalid gestures are silent no-ops. A valid
// transition blocks until its persistence call resolves; callers on an event
// path run it in its own goroutine.
func (e *Engine) HandleGesture(ctx context.Context, sourceID, targetID string) error {
	transition, ok := e.drag.OnDragEnd(sourceID, targetID)
	if !ok {
		return nil
	}

	e.logEvent("transition_started", map[string]interface{}{
		"order": transition.OrderIdentify,
		"from":  string(transition.From),
		"to":    string(transition.To),
	})

	err := e.coordinator.Perform(ctx, transition)
	if err != nil {
		e.logEvent("transition_failed", map[string]interface{}{
			"order": transition.OrderIdentify,
			"error": err.Error(),
		})
	}

	e.notifyChange()
	return err
}

// Run starts the engine and blocks until the context is cancelled.
// The initial load failing is not fatal: the engine stays up, reports the
// failure and keeps accepting gestures and events.
func (e *Engine) Run(ctx context.Context) error {
	log.Printf("[Engine] Starting for tenant '%s'", e.tenant)

	if err := e.Reload(ctx); err != nil {
		log.Printf("[Engine] Initial load failed: %v", err)
	}

	subscription, err := e.feed.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to order events: %w", err)
	}
	defer subscription.Close()

	log.Printf("[Engine] Subscribed to order_events")

	for {
		select {
		case <-ctx.Done():
			log.Printf("[Engine] Shutting down...")
			return nil

		case event, ok := <-subscription.Events():
			if !ok {
				log.Printf("[Engine] Subscription closed")
				return nil
			}

			e.logEvent("event_received", map[string]interface{}{
				"kind": string(event.Kind),
			})

			if err := e.reconciler.Apply(event); err != nil {
				log.Printf("[Engine] Error applying %s event: %v", event.Kind, err)
				// Continue processing - don't crash on a single bad event
			}

			e.notifyChange()

		case err, ok := <-subscription.Errors():
			if !ok {
				log.Printf("[Engine] Error channel closed")
				return nil
			}
			log.Printf("[Engine] Subscription error: %v", err)
			// Continue processing - errors are non-fatal
		}
	}
}

func (e *Engine) notifyChange() {
	if e.onChange != nil {
		e.onChange()
	}
}

// logEvent logs a structured event in JSON format.
func (e *Engine) logEvent(eventType string, data map[string]interface{}) {
	data["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	data["level"] = "info"
	data["component"] = "engine"
	data["event_type"] = eventType
	data["tenant"] = e.tenant

	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("[Engine] Failed to marshal log event: %v", err)
		return
	}

	log.Println(string(jsonData))
}
