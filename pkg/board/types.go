// Package board provides the type-safe core model for the order board:
// orders, the fixed status columns they are classified into, the transitions
// produced by drag gestures, and the realtime events that keep independent
// sessions converged on the same view.
//
// The board holds exactly one authoritative in-memory collection of orders.
// Columns are always a derived view over that collection, never stored state.
package board

import (
	"fmt"
	"time"
)

// Status is the closed set of lifecycle states an order moves through.
// Each status maps to exactly one board column.
type Status string

const (
	// StatusPreparing is the initial status of every order. It is also the
	// fallback for payloads carrying an absent or unrecognized status value.
	StatusPreparing Status = "Preparing"

	// StatusReady indicates the order is ready for pickup or delivery.
	StatusReady Status = "Ready"

	// StatusDelivered indicates the order reached the client.
	StatusDelivered Status = "Delivered"

	// StatusCancelled indicates the order was cancelled.
	StatusCancelled Status = "Cancelled"
)

// Statuses returns the four statuses in board column order.
// The slice is freshly allocated; callers may modify it.
func Statuses() []Status {
	return []Status{StatusPreparing, StatusReady, StatusDelivered, StatusCancelled}
}

// Validate checks if the Status is a valid enum value.
func (s Status) Validate() error {
	switch s {
	case StatusPreparing, StatusReady, StatusDelivered, StatusCancelled:
		return nil
	default:
		return fmt.Errorf("unknown order status: %q", s)
	}
}

// NormalizeStatus maps an arbitrary wire value onto the closed status set.
// Unknown or empty values fall back to StatusPreparing so that no order is
// ever dropped from the board.
func NormalizeStatus(raw string) Status {
	s := Status(raw)
	if err := s.Validate(); err != nil {
		return StatusPreparing
	}
	return s
}

// Client is the denormalized client reference carried on an order.
// All fields are optional; a zero Client means the order has no client data.
type Client struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Product is a single line item on an order.
type Product struct {
	Name     string `json:"name"`     // Placeholder when the payload omits it
	Quantity int    `json:"quantity"` // Always >= 1 after normalization
	Price    string `json:"price"`    // Unit price as displayed, "0.00" when absent
}

// Order is the unit of work on the board. Identify is the sole key used for
// lookups, merges and deduplication; no two orders with the same Identify may
// coexist in a Collection.
type Order struct {
	Identify   string    `json:"identify"`
	Status     Status    `json:"status"`
	Total      float64   `json:"total"`
	Date       string    `json:"date,omitempty"` // Raw display timestamp from the server
	CreatedAt  time.Time `json:"created_at,omitempty"`
	Client     Client    `json:"client"`
	Table      string    `json:"table,omitempty"`
	Products   []Product `json:"products"`
	IsDelivery bool      `json:"is_delivery"`

	// Delivery fields, meaningful only when IsDelivery is true.
	Address      string `json:"address,omitempty"`
	Number       string `json:"number,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	Complement   string `json:"complement,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// Validate checks if the Order has valid field values.
func (o *Order) Validate() error {
	if o.Identify == "" {
		return fmt.Errorf("order identify cannot be empty")
	}

	if err := o.Status.Validate(); err != nil {
		return fmt.Errorf("invalid status: %w", err)
	}

	if o.Total < 0 {
		return fmt.Errorf("order total must be non-negative, got %v", o.Total)
	}

	for i, p := range o.Products {
		if p.Quantity < 1 {
			return fmt.Errorf("product at index %d: quantity must be >= 1, got %d", i, p.Quantity)
		}
	}

	return nil
}

// Transition is a validated candidate change of an order's column, produced
// from a drag gesture and not yet persisted. It is the only value the gesture
// boundary hands downstream; nothing past the drag controller depends on
// gesture-library identifiers.
type Transition struct {
	OrderIdentify string `json:"order_identify"`
	From          Status `json:"from"`
	To            Status `json:"to"`
}

// Validate checks if the Transition has valid field values.
// A transition onto the order's current column is invalid by construction.
func (t *Transition) Validate() error {
	if t.OrderIdentify == "" {
		return fmt.Errorf("transition order identify cannot be empty")
	}

	if err := t.From.Validate(); err != nil {
		return fmt.Errorf("invalid from status: %w", err)
	}

	if err := t.To.Validate(); err != nil {
		return fmt.Errorf("invalid to status: %w", err)
	}

	if t.From == t.To {
		return fmt.Errorf("transition from %q to %q is a no-op", t.From, t.To)
	}

	return nil
}

// ColumnView is one derived board column: a status bucket and the orders
// whose status resolves to it, in collection order.
type ColumnView struct {
	Status Status  `json:"status"`
	Orders []Order `json:"orders"`
}
