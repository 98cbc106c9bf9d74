package board

import (
	"encoding/json"
	"fmt"
)

// Realtime event wire format
//
// Push events are JSON-encoded onto a tenant-scoped Pub/Sub channel so
// multiple workspaces can safely share a single Redis server.
//
// Channel pattern: moday:{tenant}:order_events
//
// Delivery is at-least-once and unordered relative to REST responses; the
// reconciler deduplicates by order identify. The order payload inside an
// event is the raw, non-normalized server shape.

// EventKind tags the realtime event union.
type EventKind string

const (
	// EventOrderCreated announces an order created in some session.
	EventOrderCreated EventKind = "order_created"

	// EventOrderStatusChanged announces a confirmed status change.
	// The order payload may be incomplete; it is never used to insert.
	EventOrderStatusChanged EventKind = "order_status_changed"

	// EventOrderUpdated announces a wholesale order update.
	EventOrderUpdated EventKind = "order_updated"
)

// Validate checks if the EventKind is a valid enum value.
func (k EventKind) Validate() error {
	switch k {
	case EventOrderCreated, EventOrderStatusChanged, EventOrderUpdated:
		return nil
	default:
		return fmt.Errorf("unknown event kind: %q", k)
	}
}

// OrderEvent is one push event as delivered on the realtime channel.
// Order carries the raw payload exactly as the publisher sent it; consumers
// normalize it themselves so both ingestion paths share one routine.
type OrderEvent struct {
	Kind      EventKind       `json:"kind"`
	Order     json.RawMessage `json:"order"`
	OldStatus string          `json:"old_status,omitempty"` // Status-change events only
	NewStatus string          `json:"new_status,omitempty"` // Status-change events only
}

// Validate checks if the OrderEvent has valid field values.
func (e *OrderEvent) Validate() error {
	if err := e.Kind.Validate(); err != nil {
		return err
	}

	if len(e.Order) == 0 {
		return fmt.Errorf("event %q carries no order payload", e.Kind)
	}

	if e.Kind == EventOrderStatusChanged && e.NewStatus == "" {
		return fmt.Errorf("status-change event carries no new status")
	}

	return nil
}

// OrderEventsChannel returns the Pub/Sub channel name for a tenant's order
// events. Pattern: moday:{tenant}:order_events
func OrderEventsChannel(tenant string) string {
	return fmt.Sprintf("moday:%s:order_events", tenant)
}
