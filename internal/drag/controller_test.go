package drag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabiogif/moday-board/pkg/board"
)

func setupController() (*Controller, *board.Collection) {
	collection := board.NewCollection()
	collection.ReplaceAll([]board.Order{
		{Identify: "1001", Status: board.StatusPreparing},
		{Identify: "1002", Status: board.StatusReady},
	})
	return NewController(collection), collection
}

func TestOnDragStart(t *testing.T) {
	controller, _ := setupController()

	t.Run("resolves the dragged order", func(t *testing.T) {
		order, ok := controller.OnDragStart("order-1001")
		require.True(t, ok)
		assert.Equal(t, "1001", order.Identify)
	})

	t.Run("unknown order is a no-op", func(t *testing.T) {
		_, ok := controller.OnDragStart("order-9999")
		assert.False(t, ok)
	})

	t.Run("non-order identifier is a no-op", func(t *testing.T) {
		_, ok := controller.OnDragStart("column-Ready")
		assert.False(t, ok)

		_, ok = controller.OnDragStart("order-")
		assert.False(t, ok)
	})
}

func TestOnDragEnd(t *testing.T) {
	t.Run("drop on a column emits one transition", func(t *testing.T) {
		controller, _ := setupController()

		transition, ok := controller.OnDragEnd("order-1001", "column-Ready")
		require.True(t, ok)
		assert.Equal(t, board.Transition{
			OrderIdentify: "1001",
			From:          board.StatusPreparing,
			To:            board.StatusReady,
		}, transition)
	})

	t.Run("drop on another card targets that card's column", func(t *testing.T) {
		controller, _ := setupController()

		transition, ok := controller.OnDragEnd("order-1001", "order-1002")
		require.True(t, ok)
		assert.Equal(t, board.StatusReady, transition.To)
	})

	t.Run("drop on own column is a no-op", func(t *testing.T) {
		controller, _ := setupController()

		_, ok := controller.OnDragEnd("order-1001", "column-Preparing")
		assert.False(t, ok)
	})

	t.Run("drop on a card in the same column is a no-op", func(t *testing.T) {
		controller, collection := setupController()
		collection.Prepend(board.Order{Identify: "1003", Status: board.StatusPreparing})

		_, ok := controller.OnDragEnd("order-1001", "order-1003")
		assert.False(t, ok)
	})

	t.Run("unresolvable source order is a no-op", func(t *testing.T) {
		controller, _ := setupController()

		_, ok := controller.OnDragEnd("order-9999", "column-Ready")
		assert.False(t, ok)
	})

	t.Run("drop outside any target is a no-op", func(t *testing.T) {
		controller, _ := setupController()

		_, ok := controller.OnDragEnd("order-1001", "")
		assert.False(t, ok)

		_, ok = controller.OnDragEnd("order-1001", "sidebar")
		assert.False(t, ok)
	})

	t.Run("drop on an unknown column value is a no-op", func(t *testing.T) {
		controller, _ := setupController()

		_, ok := controller.OnDragEnd("order-1001", "column-Shipped")
		assert.False(t, ok)
	})

	t.Run("drop on an unknown card is a no-op", func(t *testing.T) {
		controller, _ := setupController()

		_, ok := controller.OnDragEnd("order-1001", "order-9999")
		assert.False(t, ok)
	})
}
