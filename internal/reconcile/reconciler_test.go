package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabiogif/moday-board/internal/notify"
	"github.com/fabiogif/moday-board/pkg/board"
)

func setupReconciler(orders ...board.Order) (*Reconciler, *board.Collection, *notify.Recorder) {
	collection := board.NewCollection()
	collection.ReplaceAll(orders)
	recorder := notify.NewRecorder()
	return NewReconciler(collection, recorder), collection, recorder
}

func createdEvent(payload string) *board.OrderEvent {
	return &board.OrderEvent{Kind: board.EventOrderCreated, Order: []byte(payload)}
}

func TestApplyCreated(t *testing.T) {
	t.Run("prepends a new order and notifies", func(t *testing.T) {
		reconciler, collection, recorder := setupReconciler(board.Order{Identify: "1"})

		err := reconciler.Apply(createdEvent(`{"identify": "2002", "status": "Preparing"}`))
		require.NoError(t, err)

		snapshot := collection.Snapshot()
		require.Len(t, snapshot, 2)
		assert.Equal(t, "2002", snapshot[0].Identify)
		assert.True(t, recorder.Contains("New order 2002"))
	})

	t.Run("duplicate created events are idempotent", func(t *testing.T) {
		reconciler, collection, recorder := setupReconciler()

		event := createdEvent(`{"identify": "2002", "status": "Preparing"}`)
		require.NoError(t, reconciler.Apply(event))
		require.NoError(t, reconciler.Apply(event))

		assert.Equal(t, 1, collection.Len())
		assert.Len(t, recorder.BySeverity("info"), 1, "only the first event notifies")
	})

	t.Run("normalizes the raw payload", func(t *testing.T) {
		reconciler, collection, _ := setupReconciler()

		err := reconciler.Apply(createdEvent(`{"identify": "3", "status": "Bogus", "total": "12.50"}`))
		require.NoError(t, err)

		order, ok := collection.Get("3")
		require.True(t, ok)
		assert.Equal(t, board.StatusPreparing, order.Status)
		assert.Equal(t, 12.5, order.Total)
	})

	t.Run("rejects payload without identify", func(t *testing.T) {
		reconciler, collection, _ := setupReconciler()

		err := reconciler.Apply(createdEvent(`{"status": "Preparing"}`))
		assert.Error(t, err)
		assert.Equal(t, 0, collection.Len())
	})
}

func TestApplyStatusChanged(t *testing.T) {
	t.Run("replaces the matching order with the announced status", func(t *testing.T) {
		reconciler, collection, recorder := setupReconciler(
			board.Order{Identify: "1001", Status: board.StatusPreparing},
		)

		err := reconciler.Apply(&board.OrderEvent{
			Kind:      board.EventOrderStatusChanged,
			Order:     []byte(`{"identify": "1001", "status": "Preparing"}`),
			OldStatus: "Preparing",
			NewStatus: "Ready",
		})
		require.NoError(t, err)

		order, _ := collection.Get("1001")
		assert.Equal(t, board.StatusReady, order.Status)
		assert.True(t, recorder.Contains("changed from Preparing to Ready"))
	})

	t.Run("unknown identify is a silent no-op, never an insert", func(t *testing.T) {
		reconciler, collection, recorder := setupReconciler(
			board.Order{Identify: "1001", Status: board.StatusPreparing},
		)

		err := reconciler.Apply(&board.OrderEvent{
			Kind:      board.EventOrderStatusChanged,
			Order:     []byte(`{"identify": "ghost"}`),
			NewStatus: "Ready",
		})
		require.NoError(t, err)

		assert.Equal(t, 1, collection.Len())
		assert.Empty(t, recorder.All())
	})

	t.Run("announced status wins over the payload status", func(t *testing.T) {
		reconciler, collection, _ := setupReconciler(
			board.Order{Identify: "1001", Status: board.StatusPreparing},
		)

		err := reconciler.Apply(&board.OrderEvent{
			Kind:      board.EventOrderStatusChanged,
			Order:     []byte(`{"identify": "1001", "status": "Cancelled"}`),
			NewStatus: "Delivered",
		})
		require.NoError(t, err)

		order, _ := collection.Get("1001")
		assert.Equal(t, board.StatusDelivered, order.Status)
	})
}

func TestApplyUpdated(t *testing.T) {
	t.Run("replaces the matching order wholesale", func(t *testing.T) {
		reconciler, collection, _ := setupReconciler(
			board.Order{Identify: "1001", Status: board.StatusPreparing, Total: 10},
		)

		err := reconciler.Apply(&board.OrderEvent{
			Kind:  board.EventOrderUpdated,
			Order: []byte(`{"identify": "1001", "status": "Ready", "total": 25, "client_name": "Bruno"}`),
		})
		require.NoError(t, err)

		order, _ := collection.Get("1001")
		assert.Equal(t, board.StatusReady, order.Status)
		assert.Equal(t, 25.0, order.Total)
		assert.Equal(t, "Bruno", order.Client.Name)
	})

	t.Run("unknown identify leaves the collection unchanged", func(t *testing.T) {
		reconciler, collection, _ := setupReconciler(
			board.Order{Identify: "1001", Status: board.StatusPreparing},
		)

		before := collection.Snapshot()
		err := reconciler.Apply(&board.OrderEvent{
			Kind:  board.EventOrderUpdated,
			Order: []byte(`{"identify": "ghost", "status": "Ready"}`),
		})
		require.NoError(t, err)
		assert.Equal(t, before, collection.Snapshot())
	})
}

func TestApplyInvalidEvent(t *testing.T) {
	reconciler, _, _ := setupReconciler()

	err := reconciler.Apply(&board.OrderEvent{Kind: board.EventKind("bogus"), Order: []byte(`{}`)})
	assert.Error(t, err)
}
