// internal/handlers/inventory_test.go
package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
	"github.com/ammerola/poultry-storefront/internal/core/services"
	"github.com/ammerola/poultry-storefront/internal/handlers"
	"github.com/ammerola/poultry-storefront/test/helpers"
	"github.com/ammerola/poultry-storefront/test/mocks"
)

type inventoryFixture struct {
	handler *handlers.InventoryHandler
	rows    *services.SellerInventory
	catalog *mocks.MockCatalogAPI
	clock   *helpers.FakeClock
}

func newInventoryHandler(t *testing.T) *inventoryFixture {
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockCatalogAPI(ctrl)
	logger := helpers.TestLogger()
	clock := helpers.NewFakeClock()

	rows := services.NewSellerInventory(catalog, 0, logger)
	rows.Seed(helpers.NewTestProducts(1, 3))
	editor := services.NewStockEditor(catalog, rows, clock, time.Second, logger)

	return &inventoryFixture{
		handler: handlers.NewInventoryHandler(rows, editor, logger),
		rows:    rows,
		catalog: catalog,
		clock:   clock,
	}
}

func pageIDs(p services.InventoryPage) []int64 {
	out := make([]int64, len(p.Rows))
	for i, row := range p.Rows {
		out[i] = row.ID
	}
	return out
}

func TestInventoryHandler_ListInventory(t *testing.T) {
	f := newInventoryHandler(t)

	call := func(fn http.HandlerFunc, method, target string) (int, services.InventoryPage) {
		w := httptest.NewRecorder()
		fn(w, newRequest(t, method, target, nil))
		if w.Code != http.StatusOK {
			return w.Code, services.InventoryPage{}
		}
		return w.Code, decodeBody[services.InventoryPage](t, w)
	}
	list := func(query string) (int, services.InventoryPage) {
		return call(f.handler.ListInventory, "GET", "/inventory"+query)
	}
	sortBy := func(query string) (int, services.InventoryPage) {
		return call(f.handler.SortInventory, "POST", "/inventory/sort"+query)
	}

	status, page := list("")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []int64{1, 2, 3}, pageIDs(page))
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, services.SortByName, page.SortKey)

	// Clicking the active column flips direction
	_, page = sortBy("?key=name")
	assert.True(t, page.Desc)
	assert.Equal(t, []int64{3, 2, 1}, pageIDs(page))

	_, page = sortBy("?key=name")
	assert.False(t, page.Desc)

	_, page = list("?page_size=2")
	assert.Equal(t, []int64{1, 2}, pageIDs(page))

	_, page = list("?page_size=2&page=1")
	assert.Equal(t, []int64{3}, pageIDs(page))
	assert.Equal(t, 1, page.Page)

	status, _ = sortBy("?key=price")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = sortBy("")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = list("?page=x")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestInventoryHandler_ListInventoryIsReadOnly(t *testing.T) {
	f := newInventoryHandler(t)

	sortReq := newRequest(t, "POST", "/inventory/sort?key=id", nil)
	w := httptest.NewRecorder()
	f.handler.SortInventory(w, sortReq)
	require.Equal(t, http.StatusOK, w.Code)
	w = httptest.NewRecorder()
	f.handler.SortInventory(w, newRequest(t, "POST", "/inventory/sort?key=id", nil))
	require.Equal(t, http.StatusOK, w.Code)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		f.handler.ListInventory(w, newRequest(t, "GET", "/inventory?sort=id&page_size=1&page=2", nil))
		require.Equal(t, http.StatusOK, w.Code)
		page := decodeBody[services.InventoryPage](t, w)
		assert.Equal(t, services.SortByID, page.SortKey, "request %d", i+1)
		assert.True(t, page.Desc, "request %d", i+1)
		assert.Equal(t, []int64{1}, pageIDs(page), "request %d", i+1)
	}

	// page and page_size did not stick either
	w = httptest.NewRecorder()
	f.handler.ListInventory(w, newRequest(t, "GET", "/inventory", nil))
	page := decodeBody[services.InventoryPage](t, w)
	assert.Equal(t, 0, page.Page)
	assert.Equal(t, []int64{3, 2, 1}, pageIDs(page))
}

func TestInventoryHandler_UpdateStock(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		body           any
		expectedStatus int
		expectedStock  string
	}{
		{name: "string_value", id: "2", body: `{"stock_kg":"12.5"}`, expectedStatus: http.StatusAccepted, expectedStock: "12.5"},
		{name: "number_value", id: "2", body: `{"stock_kg":7}`, expectedStatus: http.StatusAccepted, expectedStock: "7"},
		{name: "negative_rejected", id: "2", body: `{"stock_kg":"-1"}`, expectedStatus: http.StatusBadRequest, expectedStock: "50"},
		{name: "not_a_number", id: "2", body: `{"stock_kg":"lots"}`, expectedStatus: http.StatusBadRequest, expectedStock: "50"},
		{name: "missing_value", id: "2", body: `{}`, expectedStatus: http.StatusBadRequest, expectedStock: "50"},
		{name: "unknown_row", id: "42", body: `{"stock_kg":"1"}`, expectedStatus: http.StatusNotFound, expectedStock: "50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newInventoryHandler(t)

			req := newRequest(t, "PATCH", "/inventory/"+tt.id+"/stock", tt.body)
			req.SetPathValue("id", tt.id)
			w := httptest.NewRecorder()

			f.handler.UpdateStock(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			row, ok := f.rows.Row(2)
			require.True(t, ok)
			assert.Equal(t, tt.expectedStock, row.StockKg.String())

			if tt.expectedStatus == http.StatusAccepted {
				body := decodeBody[handlers.StockResponse](t, w)
				require.NotNil(t, body.Edit.Pending)
				assert.Equal(t, tt.expectedStock, body.Edit.Pending.String())
				assert.Equal(t, 1, f.clock.Pending())
			}
		})
	}
}

func TestInventoryHandler_UpdateStockSavesAfterDebounce(t *testing.T) {
	f := newInventoryHandler(t)

	saved := helpers.NewTestProduct(1, func(p *domain.Product) {
		p.StockKg = decimal.RequireFromString("9")
	})
	f.catalog.EXPECT().
		UpdateProduct(gomock.Any(), int64(1), gomock.Any()).
		Return(&saved, nil)

	for _, v := range []string{"3", "6", "9"} {
		req := newRequest(t, "PATCH", "/inventory/1/stock", fmt.Sprintf(`{"stock_kg":%q}`, v))
		req.SetPathValue("id", "1")
		w := httptest.NewRecorder()
		f.handler.UpdateStock(w, req)
		require.Equal(t, http.StatusAccepted, w.Code)
	}

	f.clock.Advance(time.Second)

	row, _ := f.rows.Row(1)
	assert.Equal(t, "9", row.StockKg.String())
}

func TestInventoryHandler_ToggleAvailability(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		setupMocks     func(*mocks.MockCatalogAPI)
		expectedStatus int
	}{
		{
			name: "flips_availability",
			id:   "2",
			setupMocks: func(m *mocks.MockCatalogAPI) {
				off := helpers.NewTestProduct(2, func(p *domain.Product) { p.IsAvailable = false })
				m.EXPECT().UpdateProduct(gomock.Any(), int64(2), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ int64, in domain.ProductInput) (*domain.Product, error) {
						require.NotNil(t, in.IsAvailable)
						assert.False(t, *in.IsAvailable)
						return &off, nil
					})
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unknown_row",
			id:             "42",
			setupMocks:     func(m *mocks.MockCatalogAPI) {},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "backend_rejects",
			id:   "2",
			setupMocks: func(m *mocks.MockCatalogAPI) {
				m.EXPECT().UpdateProduct(gomock.Any(), int64(2), gomock.Any()).
					Return(nil, fmt.Errorf("boom"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newInventoryHandler(t)
			tt.setupMocks(f.catalog)

			req := newRequest(t, "POST", "/inventory/"+tt.id+"/toggle", nil)
			req.SetPathValue("id", tt.id)
			w := httptest.NewRecorder()

			f.handler.ToggleAvailability(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestInventoryHandler_CreateAndDelete(t *testing.T) {
	f := newInventoryHandler(t)

	created := helpers.NewTestProduct(10)
	f.catalog.EXPECT().CreateProduct(gomock.Any(), gomock.Any()).Return(&created, nil)
	f.catalog.EXPECT().DeleteProduct(gomock.Any(), int64(1)).Return(nil)

	w := httptest.NewRecorder()
	f.handler.CreateProduct(w, newRequest(t, "POST", "/inventory", `{"name":"Drumsticks","product_type":"neck"}`))
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	f.handler.CreateProduct(w, newRequest(t, "POST", "/inventory",
		`{"name":"Drumsticks","product_type":"leg","stock_kg":"20","is_available":true}`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, int64(10), f.rows.Rows()[0].ID)

	req := newRequest(t, "DELETE", "/inventory/1", nil)
	req.SetPathValue("id", "1")
	w = httptest.NewRecorder()
	f.handler.DeleteProduct(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	_, ok := f.rows.Row(1)
	assert.False(t, ok)
}
