// internal/handlers/cart_test.go
package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/poultry-storefront/internal/adapters/localstore"
	"github.com/ammerola/poultry-storefront/internal/core/domain"
	"github.com/ammerola/poultry-storefront/internal/core/services"
	"github.com/ammerola/poultry-storefront/internal/handlers"
	"github.com/ammerola/poultry-storefront/test/helpers"
	"github.com/ammerola/poultry-storefront/test/mocks"
)

func newCartHandler(t *testing.T) (*handlers.CartHandler, *services.CartStore, *mocks.MockCatalogAPI) {
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockCatalogAPI(ctrl)
	logger := helpers.TestLogger()
	cart := services.NewCartStore(localstore.NewMemoryStore(nil), logger)
	return handlers.NewCartHandler(cart, catalog, logger), cart, catalog
}

func TestCartHandler_AddToCart(t *testing.T) {
	product := helpers.NewTestProduct(3)

	tests := []struct {
		name           string
		body           any
		setupMocks     func(*mocks.MockCatalogAPI)
		expectedStatus int
		expectedCount  int
	}{
		{
			name: "adds_fetched_product",
			body: handlers.AddToCartRequest{ProductID: 3},
			setupMocks: func(m *mocks.MockCatalogAPI) {
				m.EXPECT().GetProduct(gomock.Any(), int64(3)).Return(&product, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedCount:  1,
		},
		{
			name:           "missing_product_id",
			body:           handlers.AddToCartRequest{},
			setupMocks:     func(m *mocks.MockCatalogAPI) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed_body",
			body:           "{",
			setupMocks:     func(m *mocks.MockCatalogAPI) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown_product",
			body: handlers.AddToCartRequest{ProductID: 99},
			setupMocks: func(m *mocks.MockCatalogAPI) {
				m.EXPECT().GetProduct(gomock.Any(), int64(99)).
					Return(nil, fmt.Errorf("product 99: %w", domain.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, cart, catalog := newCartHandler(t)
			tt.setupMocks(catalog)

			w := httptest.NewRecorder()
			h.AddToCart(w, newRequest(t, "POST", "/cart", tt.body))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedCount, cart.Len())
		})
	}
}

func TestCartHandler_UpdateItem(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		body           any
		expectedStatus int
		expectedQty    int
	}{
		{name: "increment", id: "3", body: handlers.UpdateCartRequest{Op: handlers.CartOpIncrement}, expectedStatus: http.StatusOK, expectedQty: 3},
		{name: "decrement", id: "3", body: handlers.UpdateCartRequest{Op: handlers.CartOpDecrement}, expectedStatus: http.StatusOK, expectedQty: 1},
		{name: "set", id: "3", body: handlers.UpdateCartRequest{Op: handlers.CartOpSet, Quantity: 7}, expectedStatus: http.StatusOK, expectedQty: 7},
		{name: "set_below_one_clamps", id: "3", body: handlers.UpdateCartRequest{Op: handlers.CartOpSet, Quantity: 0}, expectedStatus: http.StatusOK, expectedQty: 1},
		{name: "remove", id: "3", body: handlers.UpdateCartRequest{Op: handlers.CartOpRemove}, expectedStatus: http.StatusOK, expectedQty: 0},
		{name: "unknown_op", id: "3", body: handlers.UpdateCartRequest{Op: "double"}, expectedStatus: http.StatusBadRequest, expectedQty: 2},
		{name: "not_in_cart", id: "8", body: handlers.UpdateCartRequest{Op: handlers.CartOpIncrement}, expectedStatus: http.StatusNotFound, expectedQty: 2},
		{name: "invalid_id", id: "abc", body: handlers.UpdateCartRequest{Op: handlers.CartOpIncrement}, expectedStatus: http.StatusBadRequest, expectedQty: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, cart, _ := newCartHandler(t)
			product := helpers.NewTestProduct(3)
			require.NoError(t, cart.AddToCart(product))
			require.NoError(t, cart.AddToCart(product))

			req := newRequest(t, "PATCH", "/cart/"+tt.id, tt.body)
			req.SetPathValue("id", tt.id)
			w := httptest.NewRecorder()

			h.UpdateItem(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedQty, cart.Quantity(3))
		})
	}
}

func TestCartHandler_GetAndClear(t *testing.T) {
	h, cart, _ := newCartHandler(t)
	require.NoError(t, cart.AddToCart(helpers.NewTestProduct(1)))
	require.NoError(t, cart.AddToCart(helpers.NewTestProduct(2)))
	require.NoError(t, cart.IncrementQuantity(2))

	w := httptest.NewRecorder()
	h.GetCart(w, newRequest(t, "GET", "/cart", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody[handlers.CartResponse](t, w)
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "3", body.TotalKg.String())

	w = httptest.NewRecorder()
	h.ClearCart(w, newRequest(t, "DELETE", "/cart", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, cart.Len())
}
