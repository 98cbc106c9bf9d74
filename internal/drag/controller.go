// Package drag translates raw drag-capability events into domain
// transitions. Gesture sources and drop targets arrive as opaque strings of
// the form "order-<identify>" or "column-<status>"; this package is the only
// place those identifiers are decoded. Everything downstream sees a
// board.Transition or nothing at all.
package drag

import (
	"strings"

	"github.com/fabiogif/moday-board/pkg/board"
)

const (
	orderIDPrefix  = "order-"
	columnIDPrefix = "column-"
)

// Controller resolves gesture identifiers against the current collection and
// applies the pre-conditions: a gesture with no matching order, no valid drop
// target, or a same-column drop yields no transition and nothing downstream
// is invoked.
type Controller struct {
	collection *board.Collection
}

// NewController creates a controller reading from the given collection.
func NewController(collection *board.Collection) *Controller {
	return &Controller{collection: collection}
}

// OnDragStart resolves which order, if any, corresponds to the dragged
// handle. Used by the UI to render the drag preview; resolution failures are
// silent no-ops, never errors.
func (c *Controller) OnDragStart(sourceID string) (board.Order, bool) {
	identify, ok := decodeOrderID(sourceID)
	if !ok {
		return board.Order{}, false
	}
	return c.collection.Get(identify)
}

// OnDragEnd resolves a completed gesture to at most one transition.
// The drop target resolves to a column either directly (dropped on a
// column's empty area) or indirectly (dropped on another order card, whose
// current column becomes the target).
func (c *Controller) OnDragEnd(sourceID, targetID string) (board.Transition, bool) {
	identify, ok := decodeOrderID(sourceID)
	if !ok {
		return board.Transition{}, false
	}

	order, ok := c.collection.Get(identify)
	if !ok {
		return board.Transition{}, false
	}

	target, ok := c.resolveTarget(targetID)
	if !ok {
		return board.Transition{}, false
	}

	// Dropping an order onto its own column is a no-op
	if target == order.Status {
		return board.Transition{}, false
	}

	return board.Transition{
		OrderIdentify: order.Identify,
		From:          order.Status,
		To:            target,
	}, true
}

// resolveTarget decodes a drop-target identifier into a column status.
func (c *Controller) resolveTarget(targetID string) (board.Status, bool) {
	if raw, ok := strings.CutPrefix(targetID, columnIDPrefix); ok {
		status := board.Status(raw)
		if err := status.Validate(); err != nil {
			return "", false
		}
		return status, true
	}

	if identify, ok := decodeOrderID(targetID); ok {
		over, found := c.collection.Get(identify)
		if !found {
			return "", false
		}
		return over.Status, true
	}

	return "", false
}

func decodeOrderID(id string) (string, bool) {
	identify, ok := strings.CutPrefix(id, orderIDPrefix)
	if !ok || identify == "" {
		return "", false
	}
	return identify, true
}
