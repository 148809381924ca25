// internal/handlers/catalog_test.go
package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
	"github.com/ammerola/poultry-storefront/internal/core/services"
	"github.com/ammerola/poultry-storefront/internal/handlers"
	"github.com/ammerola/poultry-storefront/test/helpers"
	"github.com/ammerola/poultry-storefront/test/mocks"
)

func TestCatalogHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockCatalogAPI(ctrl)
	logger := helpers.TestLogger()
	loader := services.NewProductLoader(catalog, nil, 2, logger)
	h := handlers.NewCatalogHandler(loader, logger)

	gomock.InOrder(
		catalog.EXPECT().ListProducts(gomock.Any(), 1, 2).
			Return(helpers.ProductPage(helpers.NewTestProducts(1, 2), true), nil),
		catalog.EXPECT().ListProducts(gomock.Any(), 2, 2).
			Return(nil, errors.New("connection reset")),
		catalog.EXPECT().ListProducts(gomock.Any(), 2, 2).
			Return(helpers.ProductPage(helpers.NewTestProducts(3, 1), false), nil),
	)

	call := func(fn http.HandlerFunc, method, target string) services.LoaderSnapshot {
		w := httptest.NewRecorder()
		fn(w, newRequest(t, method, target, nil))
		require.Equal(t, http.StatusOK, w.Code)
		return decodeBody[services.LoaderSnapshot](t, w)
	}

	snap := call(h.Reload, "POST", "/catalog/reload")
	assert.Len(t, snap.Products, 2)
	assert.True(t, snap.HasMore)

	// A failed page is reported in the body and can be retried
	snap = call(h.LoadNext, "POST", "/catalog/next")
	assert.Equal(t, "connection reset", snap.LastError)
	assert.Equal(t, 1, snap.RetryCount)
	assert.Len(t, snap.Products, 2)

	snap = call(h.LoadNext, "POST", "/catalog/next")
	assert.Len(t, snap.Products, 3)
	assert.False(t, snap.HasMore)
	assert.Equal(t, 2, snap.Page)

	snap = call(h.GetCatalog, "GET", "/catalog")
	assert.Len(t, snap.Products, 3)
}

func TestCatalogHandler_LoadOutlivesClientDisconnect(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockCatalogAPI(ctrl)
	logger := helpers.TestLogger()
	h := handlers.NewCatalogHandler(services.NewProductLoader(catalog, nil, 2, logger), logger)

	catalog.EXPECT().ListProducts(gomock.Any(), 1, 2).
		DoAndReturn(func(ctx context.Context, page, size int) (*domain.Page[domain.Product], error) {
			assert.NoError(t, ctx.Err())
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			return helpers.ProductPage(helpers.NewTestProducts(1, 2), true), nil
		})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := newRequest(t, "POST", "/catalog/reload", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	h.Reload(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	snap := decodeBody[services.LoaderSnapshot](t, w)
	assert.Len(t, snap.Products, 2)
	assert.Empty(t, snap.LastError)
}
