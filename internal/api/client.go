// Package api is the REST persistence boundary of the engine: the bulk
// list-orders fetch and the per-order status update. The backend is the
// system of record; this client never retries and never interprets business
// rules, it only normalizes transport shapes and surfaces failures.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/fabiogif/moday-board/pkg/board"
)

// StatusError is a non-2xx response from the backend, carrying the
// human-readable message from the response envelope when one was present.
type StatusError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.Code)
}

// Client talks to the order backend. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the backend at baseURL.
// Returns an error if baseURL is empty or not a valid URL.
func NewClient(baseURL string) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}

	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// No client-side timeout here: the engine imposes none; a timeout,
		// if any, belongs to the transport configured by the embedder.
		httpClient: &http.Client{},
	}, nil
}

// SetHTTPClient swaps the underlying transport, e.g. one with a timeout.
func (c *Client) SetHTTPClient(hc *http.Client) {
	if hc != nil {
		c.httpClient = hc
	}
}

// ListOrders fetches the full order collection from the system of record.
// The response is accepted as a bare array, {"orders": [...]} or
// {"data": [...]} and every element is normalized through the same routine
// the realtime path uses.
func (c *Client) ListOrders(ctx context.Context) ([]board.Order, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/orders", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build list request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read orders response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Message: envelopeMessage(body)}
	}

	orders, err := board.DecodeOrderList(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode orders response: %w", err)
	}

	return orders, nil
}

// UpdateOrderStatus issues the single persistence call for a transition:
// PUT /orders/{identify} with body {"status": "<target>"}. Success is any
// 2xx response; any other outcome is an error carrying the server message
// when the envelope provided one.
func (c *Client) UpdateOrderStatus(ctx context.Context, identify string, status board.Status) error {
	if identify == "" {
		return fmt.Errorf("order identify cannot be empty")
	}
	if err := status.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]string{"status": string(status)})
	if err != nil {
		return fmt.Errorf("failed to encode status payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/orders/%s", c.baseURL, url.PathEscape(identify))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read update response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Message: envelopeMessage(body)}
	}

	// A 2xx body must at least be well-formed JSON to count as a commit
	// confirmation; a malformed envelope is treated as a failure.
	var confirm json.RawMessage
	if err := json.Unmarshal(body, &confirm); err != nil {
		return fmt.Errorf("malformed update confirmation: %w", err)
	}

	return nil
}

// responseEnvelope is the backend's standard {status, message, data} wrapper.
type responseEnvelope struct {
	Message string `json:"message"`
}

// envelopeMessage extracts the human-readable message from an error body,
// returning "" when the body is not the standard envelope.
func envelopeMessage(body []byte) string {
	var envelope responseEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	return envelope.Message
}
