package board

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Normalization of raw server payloads
//
// The list endpoint and the realtime channel both deliver loosely-shaped order
// payloads: the total arrives as a number or a string, client fields are
// sometimes flat and sometimes nested under a client object, and product line
// items may omit name, quantity or price. Every ingestion path funnels through
// NormalizeOrder so that bulk loads and realtime events produce structurally
// identical Order records.

// rawClient mirrors the nested client object some payloads carry.
type rawClient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// rawProduct mirrors a wire line item before defaulting.
type rawProduct struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    json.RawMessage `json:"price"`
}

// rawOrder mirrors the order payload as the server actually sends it.
// Flat client_* fields and the nested client object may both be present;
// the flat fields win when non-empty.
type rawOrder struct {
	Identify     string          `json:"identify"`
	Status       string          `json:"status"`
	Total        json.RawMessage `json:"total"`
	Date         string          `json:"date"`
	CreatedAt    string          `json:"created_at"`
	ClientName   string          `json:"client_name"`
	ClientEmail  string          `json:"client_email"`
	ClientPhone  string          `json:"client_phone"`
	Client       *rawClient      `json:"client"`
	Table        string          `json:"table"`
	Products     []rawProduct    `json:"products"`
	IsDelivery   bool            `json:"isDelivery"`
	Address      string          `json:"address"`
	Number       string          `json:"number"`
	Neighborhood string          `json:"neighborhood"`
	Complement   string          `json:"complement"`
	Notes        string          `json:"notes"`
}

// NormalizeOrder converts a raw server payload into a canonical Order.
// Missing or malformed optional fields are defaulted, never rejected:
// unknown status falls back to Preparing, an unparseable total becomes 0,
// product quantities are clamped to >= 1 and missing prices become "0.00".
// Only a payload that is not a JSON object or that carries no identify is an
// error, because an order without its key can never be matched or merged.
func NormalizeOrder(payload []byte) (Order, error) {
	var raw rawOrder
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Order{}, fmt.Errorf("failed to decode order payload: %w", err)
	}

	if raw.Identify == "" {
		return Order{}, fmt.Errorf("order payload has no identify")
	}

	order := Order{
		Identify:     raw.Identify,
		Status:       NormalizeStatus(raw.Status),
		Total:        coerceTotal(raw.Total),
		Date:         raw.Date,
		CreatedAt:    parseTimestamp(raw.CreatedAt, raw.Date),
		Client:       normalizeClient(&raw),
		Table:        raw.Table,
		Products:     normalizeProducts(raw.Products),
		IsDelivery:   raw.IsDelivery,
		Address:      raw.Address,
		Number:       raw.Number,
		Neighborhood: raw.Neighborhood,
		Complement:   raw.Complement,
		Notes:        raw.Notes,
	}

	return order, nil
}

// DecodeOrderList decodes a list-orders response body in any of the
// historically-used envelope shapes: a bare array, {"orders": [...]} or
// {"data": [...]}. Every element is normalized via NormalizeOrder.
func DecodeOrderList(body []byte) ([]Order, error) {
	rawOrders, err := decodeListEnvelope(body)
	if err != nil {
		return nil, err
	}

	orders := make([]Order, 0, len(rawOrders))
	for i, rawMsg := range rawOrders {
		order, err := NormalizeOrder(rawMsg)
		if err != nil {
			return nil, fmt.Errorf("invalid order at index %d: %w", i, err)
		}
		orders = append(orders, order)
	}

	return orders, nil
}

// listEnvelope models the wrapped response shapes. The two keys are mutually
// exclusive in practice; "orders" wins when both are somehow present.
type listEnvelope struct {
	Orders []json.RawMessage `json:"orders"`
	Data   []json.RawMessage `json:"data"`
}

func decodeListEnvelope(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty orders response")
	}

	// Bare array shape
	if trimmed[0] == '[' {
		var rawOrders []json.RawMessage
		if err := json.Unmarshal(trimmed, &rawOrders); err != nil {
			return nil, fmt.Errorf("failed to decode orders array: %w", err)
		}
		return rawOrders, nil
	}

	var envelope listEnvelope
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode orders envelope: %w", err)
	}

	switch {
	case envelope.Orders != nil:
		return envelope.Orders, nil
	case envelope.Data != nil:
		return envelope.Data, nil
	default:
		return nil, fmt.Errorf("unrecognized orders envelope: expected array, \"orders\" or \"data\"")
	}
}

// coerceTotal accepts a numeric or string-encoded total and defaults to 0
// when missing or unparseable.
func coerceTotal(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}

	var asNumber float64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if parsed, err := strconv.ParseFloat(asString, 64); err == nil {
			return parsed
		}
	}

	return 0
}

// normalizeClient derives display fields from the nested client object when
// the denormalized flat fields are absent.
func normalizeClient(raw *rawOrder) Client {
	client := Client{
		Name:  raw.ClientName,
		Email: raw.ClientEmail,
		Phone: raw.ClientPhone,
	}

	if raw.Client != nil {
		if client.Name == "" {
			client.Name = raw.Client.Name
		}
		if client.Email == "" {
			client.Email = raw.Client.Email
		}
		if client.Phone == "" {
			client.Phone = raw.Client.Phone
		}
	}

	return client
}

// normalizeProducts maps the product list defensively: missing name gets a
// placeholder, quantity is clamped to >= 1, missing price becomes "0.00".
func normalizeProducts(raw []rawProduct) []Product {
	products := make([]Product, 0, len(raw))
	for _, p := range raw {
		product := Product{
			Name:     p.Name,
			Quantity: p.Quantity,
			Price:    coercePrice(p.Price),
		}

		if product.Name == "" {
			product.Name = "Unnamed product"
		}
		if product.Quantity < 1 {
			product.Quantity = 1
		}

		products = append(products, product)
	}
	return products
}

// coercePrice keeps the unit price as a display string, accepting both
// string and numeric wire forms.
func coercePrice(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "0.00"
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if asString == "" {
			return "0.00"
		}
		return asString
	}

	var asNumber float64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return strconv.FormatFloat(asNumber, 'f', 2, 64)
	}

	return "0.00"
}

// parseTimestamp parses the created_at field, falling back to the date field.
// Both RFC3339 and the server's "2006-01-02 15:04:05" form are accepted.
// An unparseable timestamp yields the zero time; display code uses the raw
// Date string, so nothing downstream depends on a successful parse.
func parseTimestamp(createdAt, date string) time.Time {
	for _, candidate := range []string{createdAt, date} {
		if candidate == "" {
			continue
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
			if ts, err := time.Parse(layout, candidate); err == nil {
				return ts
			}
		}
	}
	return time.Time{}
}
