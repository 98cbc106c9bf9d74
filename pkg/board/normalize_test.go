package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeOrder(t *testing.T) {
	t.Run("normalizes a complete payload", func(t *testing.T) {
		payload := []byte(`{
			"identify": "1001",
			"status": "Ready",
			"total": 59.9,
			"date": "2025-03-10 18:45:00",
			"client_name": "Ana",
			"client_email": "ana@example.com",
			"client_phone": "555-0101",
			"table": "12",
			"products": [{"name": "Margherita", "quantity": 2, "price": "29.95"}]
		}`)

		order, err := NormalizeOrder(payload)
		require.NoError(t, err)

		assert.Equal(t, "1001", order.Identify)
		assert.Equal(t, StatusReady, order.Status)
		assert.Equal(t, 59.9, order.Total)
		assert.Equal(t, "Ana", order.Client.Name)
		assert.Equal(t, "12", order.Table)
		require.Len(t, order.Products, 1)
		assert.Equal(t, "29.95", order.Products[0].Price)
		assert.Equal(t, time.Date(2025, 3, 10, 18, 45, 0, 0, time.UTC), order.CreatedAt)
	})

	t.Run("coerces string total", func(t *testing.T) {
		order, err := NormalizeOrder([]byte(`{"identify": "1", "total": "19.50"}`))
		require.NoError(t, err)
		assert.Equal(t, 19.5, order.Total)
	})

	t.Run("defaults unparseable total to zero", func(t *testing.T) {
		order, err := NormalizeOrder([]byte(`{"identify": "1", "total": "abc"}`))
		require.NoError(t, err)
		assert.Equal(t, 0.0, order.Total)
	})

	t.Run("defaults missing status to Preparing", func(t *testing.T) {
		order, err := NormalizeOrder([]byte(`{"identify": "1"}`))
		require.NoError(t, err)
		assert.Equal(t, StatusPreparing, order.Status)
	})

	t.Run("defaults unrecognized status to Preparing", func(t *testing.T) {
		order, err := NormalizeOrder([]byte(`{"identify": "1", "status": "Shipped"}`))
		require.NoError(t, err)
		assert.Equal(t, StatusPreparing, order.Status)
	})

	t.Run("derives client from nested object when flat fields absent", func(t *testing.T) {
		payload := []byte(`{
			"identify": "1",
			"client": {"name": "Bruno", "email": "bruno@example.com", "phone": "555-0102"}
		}`)

		order, err := NormalizeOrder(payload)
		require.NoError(t, err)
		assert.Equal(t, "Bruno", order.Client.Name)
		assert.Equal(t, "bruno@example.com", order.Client.Email)
		assert.Equal(t, "555-0102", order.Client.Phone)
	})

	t.Run("flat client fields win over nested object", func(t *testing.T) {
		payload := []byte(`{
			"identify": "1",
			"client_name": "Flat",
			"client": {"name": "Nested", "email": "nested@example.com"}
		}`)

		order, err := NormalizeOrder(payload)
		require.NoError(t, err)
		assert.Equal(t, "Flat", order.Client.Name)
		assert.Equal(t, "nested@example.com", order.Client.Email)
	})

	t.Run("maps products defensively", func(t *testing.T) {
		payload := []byte(`{
			"identify": "1",
			"products": [
				{"quantity": 0},
				{"name": "Calzone", "quantity": 3, "price": 18},
				{"name": "Soda"}
			]
		}`)

		order, err := NormalizeOrder(payload)
		require.NoError(t, err)
		require.Len(t, order.Products, 3)

		assert.Equal(t, "Unnamed product", order.Products[0].Name)
		assert.Equal(t, 1, order.Products[0].Quantity)
		assert.Equal(t, "0.00", order.Products[0].Price)

		assert.Equal(t, 3, order.Products[1].Quantity)
		assert.Equal(t, "18.00", order.Products[1].Price)

		assert.Equal(t, "0.00", order.Products[2].Price)
	})

	t.Run("carries delivery fields", func(t *testing.T) {
		payload := []byte(`{
			"identify": "1",
			"isDelivery": true,
			"address": "Rua A",
			"number": "42",
			"neighborhood": "Centro",
			"notes": "ring twice"
		}`)

		order, err := NormalizeOrder(payload)
		require.NoError(t, err)
		assert.True(t, order.IsDelivery)
		assert.Equal(t, "Rua A", order.Address)
		assert.Equal(t, "ring twice", order.Notes)
	})

	t.Run("rejects payload without identify", func(t *testing.T) {
		_, err := NormalizeOrder([]byte(`{"status": "Ready"}`))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no identify")
	})

	t.Run("rejects non-object payload", func(t *testing.T) {
		_, err := NormalizeOrder([]byte(`"not an order"`))
		assert.Error(t, err)
	})
}

func TestDecodeOrderList(t *testing.T) {
	t.Run("decodes bare array", func(t *testing.T) {
		orders, err := DecodeOrderList([]byte(`[{"identify": "1"}, {"identify": "2"}]`))
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, "1", orders[0].Identify)
	})

	t.Run("decodes orders envelope", func(t *testing.T) {
		orders, err := DecodeOrderList([]byte(`{"orders": [{"identify": "1"}]}`))
		require.NoError(t, err)
		require.Len(t, orders, 1)
	})

	t.Run("decodes data envelope", func(t *testing.T) {
		orders, err := DecodeOrderList([]byte(`{"data": [{"identify": "1"}]}`))
		require.NoError(t, err)
		require.Len(t, orders, 1)
	})

	t.Run("accepts empty wrapped list", func(t *testing.T) {
		orders, err := DecodeOrderList([]byte(`{"data": []}`))
		require.NoError(t, err)
		assert.Empty(t, orders)
	})

	t.Run("rejects unrecognized envelope", func(t *testing.T) {
		_, err := DecodeOrderList([]byte(`{"results": []}`))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unrecognized orders envelope")
	})

	t.Run("rejects empty body", func(t *testing.T) {
		_, err := DecodeOrderList([]byte(``))
		assert.Error(t, err)
	})

	t.Run("rejects element without identify", func(t *testing.T) {
		_, err := DecodeOrderList([]byte(`[{"status": "Ready"}]`))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "index 0")
	})
}
