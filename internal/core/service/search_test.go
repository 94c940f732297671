package service_test

import (
	"testing"

	"github.com/niksmo/egis-bridge/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	filter := domain.SearchFilter{Term: "cooler"}

	t.Run("AnnotatesKnownItems", func(t *testing.T) {
		f := newFixture(t, defaultSettings, nil)
		require.NoError(t, f.store.CreateItem(t.Context(), domain.Item{
			Code:                      "ABC-123",
			ManufacturerProductNumber: "abc 123",
		}))

		f.catalog.On("Search", mock.Anything, filter, 1).Return(domain.SearchResult{
			Records: []domain.ProductRecord{
				record("ABC  123", "10.00"),
				record("XYZ-9", "3.00"),
				{ProprietaryProductNumber: "no-mpn"},
			},
			Total: 3,
		}, nil)

		res, err := f.svc.Search(t.Context(), filter, 1)
		require.NoError(t, err)
		require.Len(t, res.Records, 3)
		assert.True(t, res.Records[0].ExistsLocally)
		assert.False(t, res.Records[1].ExistsLocally)
		assert.False(t, res.Records[2].ExistsLocally)
		assert.Equal(t, 3, res.Total)
	})

	t.Run("CatalogError", func(t *testing.T) {
		f := newFixture(t, defaultSettings, nil)
		f.catalog.On("Search", mock.Anything, filter, 1).Return(
			domain.SearchResult{},
			&domain.CatalogError{Number: "100", Message: "service unavailable"},
		)

		_, err := f.svc.Search(t.Context(), filter, 1)
		require.ErrorIs(t, err, domain.ErrCatalog)
	})
}

func TestAnnotateKeepsInput(t *testing.T) {
	f := newFixture(t, defaultSettings, nil)
	require.NoError(t, f.store.CreateItem(t.Context(), domain.Item{
		Code:                      "A-1",
		ManufacturerProductNumber: "A-1",
	}))

	in := []domain.ProductRecord{record("A-1", "1")}
	out, err := f.svc.Annotate(t.Context(), in)
	require.NoError(t, err)
	assert.True(t, out[0].ExistsLocally)
	assert.False(t, in[0].ExistsLocally)
}
