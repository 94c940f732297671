package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	t.Run("MemoryByDefault", func(t *testing.T) {
		stores, err := Open(t.Context(), "", "")
		require.NoError(t, err)
		defer stores.Close()

		ok, err := stores.Catalog.PriceListExists(t.Context(), "Standard Selling")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Nil(t, stores.db)

		o, err := stores.Orders.GetSalesOrder(t.Context(), DemoSalesOrderID)
		require.NoError(t, err)
		assert.True(t, o.Editable())
		assert.NotEmpty(t, o.Lines)
	})

	t.Run("SQLWithoutDSN", func(t *testing.T) {
		_, err := Open(t.Context(), "Postgres", " ")
		require.Error(t, err)
	})

	t.Run("UnknownBackend", func(t *testing.T) {
		_, err := Open(t.Context(), "sqlite", "file.db")
		assert.ErrorIs(t, err, ErrUnknownBackend)
	})
}
