// Package reconcile applies inbound push events to the authoritative
// collection idempotently. Events arrive at-least-once and unordered, from
// other sessions or background jobs; every handler is keyed strictly by
// order identify and tolerates duplicates.
//
// Handlers apply immediately and unconditionally, independent of any
// in-flight mutation for the same identify. When a pending mutation later
// resolves successfully it overwrites whatever a handler wrote in between -
// last confirmed write wins (see DESIGN.md for the open question around
// versioned conflict resolution).
package reconcile

import (
	"encoding/json"
	"fmt"

	"github.com/fabiogif/moday-board/internal/notify"
	"github.com/fabiogif/moday-board/pkg/board"
)

// Reconciler applies order events to the collection.
type Reconciler struct {
	collection *board.Collection
	notifier   notify.Notifier
}

// NewReconciler creates a reconciler over the given collection.
func NewReconciler(collection *board.Collection, notifier notify.Notifier) *Reconciler {
	return &Reconciler{collection: collection, notifier: notifier}
}

// Apply dispatches one event to its handler. Returns an error only for a
// payload that cannot be normalized; unknown-order events are expected (the
// event may precede the bulk load) and are silent no-ops.
func (r *Reconciler) Apply(event *board.OrderEvent) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid order event: %w", err)
	}

	switch event.Kind {
	case board.EventOrderCreated:
		return r.onCreated(event.Order)
	case board.EventOrderStatusChanged:
		return r.onStatusChanged(event.Order, event.OldStatus, event.NewStatus)
	case board.EventOrderUpdated:
		return r.onUpdated(event.Order)
	default:
		return fmt.Errorf("unhandled event kind: %q", event.Kind)
	}
}

// onCreated inserts a newly announced order at the front of the collection.
// A duplicate identify means the event was already applied (or the order
// arrived via bulk load first); the event is discarded.
func (r *Reconciler) onCreated(raw json.RawMessage) error {
	order, err := board.NormalizeOrder(raw)
	if err != nil {
		return fmt.Errorf("failed to normalize created event: %w", err)
	}

	if !r.collection.Prepend(order) {
		return nil
	}

	r.notifier.Info("New order %s received", order.Identify)
	return nil
}

// onStatusChanged replaces the matching order with the normalized record
// carrying the announced status. The payload on this path may be incomplete,
// so an unknown identify is never inserted.
func (r *Reconciler) onStatusChanged(raw json.RawMessage, oldStatus, newStatus string) error {
	order, err := board.NormalizeOrder(raw)
	if err != nil {
		return fmt.Errorf("failed to normalize status-change event: %w", err)
	}

	order.Status = board.NormalizeStatus(newStatus)
	if !r.collection.Replace(order) {
		return nil
	}

	r.notifier.Info("Order %s changed from %s to %s",
		order.Identify, board.NormalizeStatus(oldStatus), order.Status)
	return nil
}

// onUpdated replaces the matching order wholesale; no-op when unknown.
func (r *Reconciler) onUpdated(raw json.RawMessage) error {
	order, err := board.NormalizeOrder(raw)
	if err != nil {
		return fmt.Errorf("failed to normalize updated event: %w", err)
	}

	r.collection.Replace(order)
	return nil
}
