package httphandler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/niksmo/egis-bridge/internal/adapter/httphandler"
	"github.com/niksmo/egis-bridge/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(
	ctx context.Context, f domain.SearchFilter, startRow int,
) (domain.SearchResult, error) {
	args := m.Called(ctx, f, startRow)
	return args.Get(0).(domain.SearchResult), args.Error(1)
}

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) ResolveMapping(
	ctx context.Context,
) (domain.ImportMapping, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.ImportMapping), args.Error(1)
}

type MockImporter struct {
	mock.Mock
}

func (m *MockImporter) Import(
	ctx context.Context, rs []domain.ProductRecord, mapping domain.ImportMapping,
) domain.ImportReport {
	args := m.Called(ctx, rs, mapping)
	return args.Get(0).(domain.ImportReport)
}

type MockRefresher struct {
	mock.Mock
}

func (m *MockRefresher) RefreshPrices(
	ctx context.Context, salesOrderID string,
) (domain.RefreshReport, error) {
	args := m.Called(ctx, salesOrderID)
	return args.Get(0).(domain.RefreshReport), args.Error(1)
}

func serve(
	t *testing.T, h http.Handler, method, target, body string,
) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var res httphandler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	return res.Error
}

func TestSearchHandler(t *testing.T) {
	newHandler := func(s *MockSearcher) http.Handler {
		mux := http.NewServeMux()
		httphandler.RegisterSearch(mux, s)
		return httphandler.Instrument(httphandler.AllowJSON(mux))
	}

	t.Run("OK", func(t *testing.T) {
		searcher := new(MockSearcher)
		want := domain.SearchFilter{
			Term:          "ssd",
			OnlyStocked:   true,
			MaxPrice:      decimal.NewNullDecimal(decimal.RequireFromString("100")),
			Sort:          domain.SortPriceAsc,
			Manufacturers: []string{"Samsung", "Intel"},
		}
		searcher.On("Search", mock.Anything, want, 21).Return(domain.SearchResult{
			Records: []domain.ProductRecord{{
				ProprietaryProductNumber:  "4711",
				ManufacturerProductNumber: "MZ-V8V1T0BW",
				PurchasePrice:             decimal.NewNullDecimal(decimal.RequireFromString("89.90")),
				Currency:                  "EUR",
			}},
			Total:       42,
			FirstResult: 21,
			LastResult:  21,
		}, nil)

		rec := serve(t, newHandler(searcher), http.MethodPost, "/v1/search",
			`{"term":"ssd","only_stocked":true,"max_price":100,"sort":"price_asc",`+
				`"manufacturers":"Samsung, Intel,Samsung","start_row":21}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var res httphandler.SearchResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
		assert.Equal(t, 42, res.Total)
		require.Len(t, res.Items, 1)
		assert.Equal(t, "4711", res.Items[0].ProprietaryProductNumber)
		assert.Equal(t, "89.9", res.Items[0].PurchasePrice.Decimal.String())
		assert.Nil(t, res.Items[0].PriceTimestamp)
		searcher.AssertExpectations(t)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		searcher := new(MockSearcher)
		rec := serve(t, newHandler(searcher), http.MethodPost, "/v1/search", `{"term":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ValidationError", func(t *testing.T) {
		searcher := new(MockSearcher)
		searcher.On("Search", mock.Anything, mock.Anything, 0).Return(
			domain.SearchResult{},
			fmt.Errorf("Service.Search: %w",
				&domain.ValidationError{Field: "term", Message: "too short"}),
		)

		rec := serve(t, newHandler(searcher), http.MethodPost, "/v1/search", `{"term":"x"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid term: too short", decodeError(t, rec))
	})

	t.Run("CatalogError", func(t *testing.T) {
		searcher := new(MockSearcher)
		searcher.On("Search", mock.Anything, mock.Anything, 0).Return(
			domain.SearchResult{},
			&domain.CatalogError{Number: "7", Message: "login failed"},
		)

		rec := serve(t, newHandler(searcher), http.MethodPost, "/v1/search", `{"term":"ssd"}`)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, "catalog error 7: login failed", decodeError(t, rec))
	})

	t.Run("WrongMediaType", func(t *testing.T) {
		searcher := new(MockSearcher)
		req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader("term=ssd"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()

		newHandler(searcher).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})
}

func TestImportHandler(t *testing.T) {
	mapping := domain.ImportMapping{
		SellingPriceList: "Standard-Verkauf",
		ItemGroup:        "EGIS",
	}

	newHandler := func(r *MockResolver, i *MockImporter) http.Handler {
		mux := http.NewServeMux()
		httphandler.RegisterImport(mux, r, i)
		return mux
	}

	t.Run("OK", func(t *testing.T) {
		resolver := new(MockResolver)
		importer := new(MockImporter)
		resolver.On("ResolveMapping", mock.Anything).Return(mapping, nil)

		report := domain.ImportReport{ID: "r-1"}
		report.Add(domain.ImportOutcome{
			Index:    0,
			ItemCode: "ABC-123",
			Status:   domain.ImportStatusImported,
		})
		report.Add(domain.ImportOutcome{
			Index:  1,
			Status: domain.ImportStatusFailed,
			Reason: "manufacturer product number is empty",
		})
		importer.On("Import", mock.Anything,
			mock.MatchedBy(func(rs []domain.ProductRecord) bool {
				return len(rs) == 2 &&
					rs[0].ManufacturerProductNumber == "abc 123" &&
					rs[0].PurchasePrice.Decimal.Equal(decimal.RequireFromString("10.50"))
			}),
			mapping,
		).Return(report)

		rec := serve(t, newHandler(resolver, importer), http.MethodPost, "/v1/import",
			`{"items":[{"manufacturer_product_number":"abc 123","purchase_price":"10.50"},{}]}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var res httphandler.ImportReport
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
		assert.Equal(t, "r-1", res.ID)
		assert.Equal(t, 1, res.Imported)
		assert.Equal(t, 1, res.Failed)
		require.Len(t, res.Items, 2)
		assert.Equal(t, "failed", res.Items[1].Status)
		importer.AssertExpectations(t)
	})

	t.Run("ConfigurationError", func(t *testing.T) {
		resolver := new(MockResolver)
		importer := new(MockImporter)
		resolver.On("ResolveMapping", mock.Anything).Return(
			domain.ImportMapping{},
			&domain.ReferenceNotFoundError{Kind: "price list", Name: "Standard-Verkauf"},
		)

		rec := serve(t, newHandler(resolver, importer), http.MethodPost, "/v1/import",
			`{"items":[{"manufacturer_product_number":"abc"}]}`)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t,
			`configuration: price list "Standard-Verkauf" not found`,
			decodeError(t, rec),
		)
		importer.AssertNotCalled(t, "Import", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRefreshHandler(t *testing.T) {
	newHandler := func(r *MockRefresher) http.Handler {
		mux := http.NewServeMux()
		httphandler.RegisterRefresh(mux, r)
		return mux
	}

	t.Run("OK", func(t *testing.T) {
		refresher := new(MockRefresher)
		refresher.On("RefreshPrices", mock.Anything, "SO-0001").Return(domain.RefreshReport{
			SalesOrderID: "SO-0001",
			UpdatedItems: []domain.RateChange{{
				ItemCode: "ABC-123",
				OldRate:  decimal.RequireFromString("9.99"),
				NewRate:  decimal.RequireFromString("10.50"),
			}},
			FailedItems: []domain.RefreshFailure{{ItemCode: "XYZ", Reason: "not found"}},
			Skipped:     2,
		}, nil)

		rec := serve(t, newHandler(refresher), http.MethodPost,
			"/v1/sales-orders/SO-0001/refresh-prices", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var res httphandler.RefreshReport
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
		assert.Equal(t, "SO-0001", res.SalesOrderID)
		assert.Equal(t, "updated 1 item(s), 1 item(s) could not be updated", res.Message)
		assert.Equal(t, 2, res.Skipped)
		require.Len(t, res.UpdatedItems, 1)
		assert.True(t, res.UpdatedItems[0].NewRate.Equal(decimal.RequireFromString("10.5")))
	})

	t.Run("NotFound", func(t *testing.T) {
		refresher := new(MockRefresher)
		refresher.On("RefreshPrices", mock.Anything, "SO-404").Return(
			domain.RefreshReport{},
			fmt.Errorf("Service.RefreshPrices: %w: %w",
				domain.ErrOrderNotEditable, domain.ErrNotFound),
		)

		rec := serve(t, newHandler(refresher), http.MethodPost,
			"/v1/sales-orders/SO-404/refresh-prices", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "sales order not found", decodeError(t, rec))
	})

	t.Run("NotEditable", func(t *testing.T) {
		refresher := new(MockRefresher)
		refresher.On("RefreshPrices", mock.Anything, "SO-0002").Return(
			domain.RefreshReport{},
			fmt.Errorf("Service.RefreshPrices: %w", domain.ErrOrderNotEditable),
		)

		rec := serve(t, newHandler(refresher), http.MethodPost,
			"/v1/sales-orders/SO-0002/refresh-prices", "")

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, domain.ErrOrderNotEditable.Error(), decodeError(t, rec))
	})

	t.Run("WrongMethod", func(t *testing.T) {
		refresher := new(MockRefresher)
		rec := serve(t, newHandler(refresher), http.MethodGet,
			"/v1/sales-orders/SO-0002/refresh-prices", "")

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestMappingHandler(t *testing.T) {
	mux := http.NewServeMux()
	resolver := new(MockResolver)
	httphandler.RegisterMapping(mux, resolver)

	resolver.On("ResolveMapping", mock.Anything).Return(domain.ImportMapping{
		SellingPriceList: "Standard Selling",
		ItemGroup:        "EGIS",
	}, nil).Once()
	resolver.On("ResolveMapping", mock.Anything).Return(
		domain.ImportMapping{},
		&domain.MissingConfigurationError{Field: "selling price list"},
	).Once()

	rec := serve(t, mux, http.MethodGet, "/v1/mapping", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var res httphandler.Mapping
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, "Standard Selling", res.SellingPriceList)
	assert.Empty(t, res.RetailPriceList)

	rec = serve(t, mux, http.MethodGet, "/v1/mapping", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "configuration: selling price list is not set", decodeError(t, rec))
}

func TestHealthAndMetrics(t *testing.T) {
	mux := http.NewServeMux()
	httphandler.RegisterHealth(mux)
	httphandler.RegisterMetrics(mux)
	h := httphandler.Instrument(mux)

	rec := serve(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = serve(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "egis_http_requests_total")
}
