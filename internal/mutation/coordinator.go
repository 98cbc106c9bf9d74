// Package mutation turns validated transitions into single-flight
// persistence requests and decides how the authoritative collection changes
// when they resolve.
//
// Per order the coordinator runs a small state machine:
//
//	Idle → Committing → Committed   (confirmed: local status write, success toast)
//	              └───→ RolledBack  (failed: error toast, one full resync)
//
// There is no optimistic write: the collection is only touched after the
// backend confirms, so a rollback never has to guess a prior state - it
// re-establishes the authoritative view with a full reload instead.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fabiogif/moday-board/internal/api"
	"github.com/fabiogif/moday-board/internal/notify"
	"github.com/fabiogif/moday-board/pkg/board"
)

// ErrAlreadyInFlight is returned when a transition targets an order whose
// previous transition is still committing. The second gesture is rejected,
// never silently raced against the first.
var ErrAlreadyInFlight = errors.New("order update already in progress")

// StatusUpdater is the persistence boundary consumed by the coordinator.
type StatusUpdater interface {
	UpdateOrderStatus(ctx context.Context, identify string, status board.Status) error
}

// Reloader re-establishes the authoritative collection after a failed
// mutation. Implemented by the engine's bulk loader.
type Reloader interface {
	Reload(ctx context.Context) error
}

// PendingMutation tracks one in-flight persistence call. It is ephemeral and
// never persisted; it has no effect on the collection until the call resolves.
type PendingMutation struct {
	OrderIdentify string
	TargetStatus  board.Status
	StartedAt     time.Time
}

// Coordinator owns the in-flight set and drives the per-order state machine.
// Safe for concurrent use; transitions on distinct orders may commit
// concurrently.
type Coordinator struct {
	updater    StatusUpdater
	reloader   Reloader
	collection *board.Collection
	notifier   notify.Notifier

	mu       sync.Mutex
	inFlight map[string]PendingMutation
}

// NewCoordinator creates a coordinator over the given boundaries.
func NewCoordinator(updater StatusUpdater, reloader Reloader, collection *board.Collection, notifier notify.Notifier) *Coordinator {
	return &Coordinator{
		updater:    updater,
		reloader:   reloader,
		collection: collection,
		notifier:   notifier,
		inFlight:   make(map[string]PendingMutation),
	}
}

// Perform drives a transition through the state machine, blocking until the
// persistence call resolves. Callers that must not block (the UI event path)
// run it in its own goroutine.
//
// Exactly one persistence call is issued. On success the new status is
// written locally - only at this point - and a success notification is
// emitted. On any failure an error notification is emitted and exactly one
// full reload re-establishes the authoritative view. Either outcome clears
// the order from the in-flight set.
func (c *Coordinator) Perform(ctx context.Context, transition board.Transition) error {
	if err := transition.Validate(); err != nil {
		return fmt.Errorf("invalid transition: %w", err)
	}

	if !c.begin(transition) {
		c.notifier.Info("Order %s is already being updated", transition.OrderIdentify)
		return ErrAlreadyInFlight
	}
	defer c.finish(transition.OrderIdentify)

	if err := c.updater.UpdateOrderStatus(ctx, transition.OrderIdentify, transition.To); err != nil {
		c.notifier.Error("%s", failureMessage(transition.OrderIdentify, err))

		// The authoritative recovery path: one full resync, no local guessing.
		if reloadErr := c.reloader.Reload(ctx); reloadErr != nil {
			return fmt.Errorf("status update failed and reload failed: %w", reloadErr)
		}
		return fmt.Errorf("status update failed: %w", err)
	}

	c.collection.SetStatus(transition.OrderIdentify, transition.To)
	c.notifier.Success("Order %s moved to %s", transition.OrderIdentify, transition.To)
	return nil
}

// begin claims the order's in-flight slot. Returns false when a mutation for
// the same identify is already committing.
func (c *Coordinator) begin(transition board.Transition) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.inFlight[transition.OrderIdentify]; exists {
		return false
	}

	c.inFlight[transition.OrderIdentify] = PendingMutation{
		OrderIdentify: transition.OrderIdentify,
		TargetStatus:  transition.To,
		StartedAt:     time.Now(),
	}
	return true
}

func (c *Coordinator) finish(identify string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, identify)
}

// IsInFlight reports whether the order has a mutation committing right now.
// Drives the per-order update-in-progress affordance.
func (c *Coordinator) IsInFlight(identify string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, exists := c.inFlight[identify]
	return exists
}

// InFlight returns the identifies of all orders currently committing,
// sorted for stable display.
func (c *Coordinator) InFlight() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	identifies := make([]string, 0, len(c.inFlight))
	for identify := range c.inFlight {
		identifies = append(identifies, identify)
	}
	sort.Strings(identifies)
	return identifies
}

// failureMessage prefers the server-provided message when the failure was a
// rejected request, falling back to a generic message for transport errors.
func failureMessage(identify string, err error) string {
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) && statusErr.Message != "" {
		return statusErr.Message
	}
	return fmt.Sprintf("Failed to update order %s", identify)
}
