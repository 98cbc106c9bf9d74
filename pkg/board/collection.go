package board

import "sync"

// Collection is the single authoritative in-memory order collection.
// It is safe for concurrent use. Exactly three kinds of mutation exist:
// full replace (bulk load), a status write keyed by identify (confirmed
// mutation commit), and insert-if-absent / replace-if-present keyed by
// identify (realtime reconciliation). The Identify uniqueness invariant is
// enforced here: no mutation can introduce a duplicate key.
type Collection struct {
	mu     sync.RWMutex
	orders []Order
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{orders: []Order{}}
}

// ReplaceAll discards the current contents and installs the given orders.
// This is the authoritative recovery path: a full replace, never a merge.
// If the input carries duplicate identifies, the first occurrence wins.
func (c *Collection) ReplaceAll(orders []Order) {
	deduped := make([]Order, 0, len(orders))
	seen := make(map[string]struct{}, len(orders))
	for _, order := range orders {
		if _, dup := seen[order.Identify]; dup {
			continue
		}
		seen[order.Identify] = struct{}{}
		deduped = append(deduped, order)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.orders = deduped
}

// Get returns the order with the given identify, if present.
func (c *Collection) Get(identify string) (Order, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, order := range c.orders {
		if order.Identify == identify {
			return order, true
		}
	}
	return Order{}, false
}

// Prepend inserts a new order at the front of the collection.
// Returns false without mutating when an order with the same identify
// already exists, which makes duplicate Created events idempotent.
func (c *Collection) Prepend(order Order) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.orders {
		if existing.Identify == order.Identify {
			return false
		}
	}

	c.orders = append([]Order{order}, c.orders...)
	return true
}

// Replace swaps the order with a matching identify for the given record.
// Returns false when the identify is unknown; the collection is unchanged.
func (c *Collection) Replace(order Order) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, existing := range c.orders {
		if existing.Identify == order.Identify {
			c.orders[i] = order
			return true
		}
	}
	return false
}

// SetStatus writes a new status on the order with the given identify,
// leaving every other field untouched. Returns false when unknown.
func (c *Collection) SetStatus(identify string, status Status) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, existing := range c.orders {
		if existing.Identify == identify {
			c.orders[i].Status = status
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the current orders in collection order.
// Callers may freely hold or mutate the returned slice.
func (c *Collection) Snapshot() []Order {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot := make([]Order, len(c.orders))
	copy(snapshot, c.orders)
	return snapshot
}

// Len returns the number of orders currently held.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.orders)
}
