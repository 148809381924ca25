// internal/core/services/product_loader_test.go
package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
	"github.com/ammerola/poultry-storefront/internal/core/services"
	"github.com/ammerola/poultry-storefront/test/helpers"
	"github.com/ammerola/poultry-storefront/test/mocks"
)

func newLoader(t *testing.T) (*services.ProductLoader, *mocks.MockCatalogAPI) {
	t.Helper()
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockCatalogAPI(ctrl)
	return services.NewProductLoader(catalog, buyer, 0, helpers.TestLogger()), catalog
}

func TestProductLoader_AppendsUntilLastPage(t *testing.T) {
	ctx := context.Background()
	loader, catalog := newLoader(t)

	gomock.InOrder(
		catalog.EXPECT().ListProducts(gomock.Any(), 1, services.DefaultCatalogPageSize).
			Return(helpers.ProductPage(helpers.NewTestProducts(1, 12), true), nil),
		catalog.EXPECT().ListProducts(gomock.Any(), 2, services.DefaultCatalogPageSize).
			Return(helpers.ProductPage(helpers.NewTestProducts(13, 4), false), nil),
	)

	loader.Start(ctx)
	snap := loader.Snapshot()
	assert.Len(t, snap.Products, 12)
	assert.True(t, snap.HasMore)
	assert.Equal(t, 1, snap.Page)

	loader.LoadNext(ctx)
	snap = loader.Snapshot()
	require.Len(t, snap.Products, 16)
	assert.Equal(t, int64(13), snap.Products[12].ID)
	assert.False(t, snap.HasMore)
	assert.Equal(t, 2, snap.Page)
	assert.False(t, snap.Loading)

	// no further requests once the server signalled the end
	loader.LoadNext(ctx)
	loader.LoadNext(ctx)
	assert.Len(t, loader.Snapshot().Products, 16)
}

func TestProductLoader_NotFoundEndsSilently(t *testing.T) {
	ctx := context.Background()
	loader, catalog := newLoader(t)

	catalog.EXPECT().ListProducts(gomock.Any(), 1, gomock.Any()).
		Return(helpers.ProductPage(helpers.NewTestProducts(1, 3), true), nil)
	catalog.EXPECT().ListProducts(gomock.Any(), 2, gomock.Any()).
		Return(nil, fmt.Errorf("GET /products/: %w", domain.ErrNotFound))

	loader.Start(ctx)
	loader.LoadNext(ctx)

	snap := loader.Snapshot()
	assert.False(t, snap.HasMore)
	assert.Empty(t, snap.LastError)
	assert.Zero(t, snap.RetryCount)
	assert.Len(t, snap.Products, 3)
	assert.False(t, snap.Loading)
}

func TestProductLoader_GenericFailuresExhaustRetries(t *testing.T) {
	ctx := context.Background()
	loader, catalog := newLoader(t)

	catalog.EXPECT().ListProducts(gomock.Any(), 1, gomock.Any()).
		Return(helpers.ProductPage(helpers.NewTestProducts(1, 3), true), nil)
	catalog.EXPECT().ListProducts(gomock.Any(), 2, gomock.Any()).
		Return(nil, errors.New("connection reset")).
		Times(3)

	loader.Start(ctx)

	wantRetry := []int{1, 2, 2}
	wantMore := []bool{true, true, false}
	for i := 0; i < 3; i++ {
		loader.LoadNext(ctx)
		snap := loader.Snapshot()
		assert.Equal(t, wantRetry[i], snap.RetryCount, "attempt %d", i+1)
		assert.Equal(t, wantMore[i], snap.HasMore, "attempt %d", i+1)
		assert.Equal(t, "connection reset", snap.LastError)
		assert.False(t, snap.Loading)
	}

	// terminated: no fourth request
	loader.LoadNext(ctx)
	assert.Len(t, loader.Snapshot().Products, 3)
}

func TestProductLoader_SuccessResetsRetries(t *testing.T) {
	ctx := context.Background()
	loader, catalog := newLoader(t)

	gomock.InOrder(
		catalog.EXPECT().ListProducts(gomock.Any(), 1, gomock.Any()).
			Return(helpers.ProductPage(helpers.NewTestProducts(1, 2), true), nil),
		catalog.EXPECT().ListProducts(gomock.Any(), 2, gomock.Any()).
			Return(nil, errors.New("timeout")),
		catalog.EXPECT().ListProducts(gomock.Any(), 2, gomock.Any()).
			Return(helpers.ProductPage(helpers.NewTestProducts(3, 2), true), nil),
	)

	loader.Start(ctx)
	loader.LoadNext(ctx)
	assert.Equal(t, 1, loader.Snapshot().RetryCount)

	loader.LoadNext(ctx)
	snap := loader.Snapshot()
	assert.Zero(t, snap.RetryCount)
	assert.Empty(t, snap.LastError)
	assert.Len(t, snap.Products, 4)
}

func TestProductLoader_EmptyLaterPageEnds(t *testing.T) {
	ctx := context.Background()
	loader, catalog := newLoader(t)

	catalog.EXPECT().ListProducts(gomock.Any(), 1, gomock.Any()).
		Return(helpers.ProductPage(helpers.NewTestProducts(1, 2), true), nil)
	catalog.EXPECT().ListProducts(gomock.Any(), 2, gomock.Any()).
		Return(helpers.ProductPage(nil, true), nil)

	loader.Start(ctx)
	loader.LoadNext(ctx)

	snap := loader.Snapshot()
	assert.False(t, snap.HasMore)
	assert.Equal(t, 1, snap.Page)
	assert.Len(t, snap.Products, 2)
}

func TestProductLoader_ReloadFirstReplaces(t *testing.T) {
	ctx := context.Background()
	loader, catalog := newLoader(t)

	gomock.InOrder(
		catalog.EXPECT().ListProducts(gomock.Any(), 1, gomock.Any()).
			Return(helpers.ProductPage(helpers.NewTestProducts(1, 2), true), nil),
		catalog.EXPECT().ListProducts(gomock.Any(), 2, gomock.Any()).
			Return(helpers.ProductPage(helpers.NewTestProducts(3, 2), false), nil),
		catalog.EXPECT().ListProducts(gomock.Any(), 1, gomock.Any()).
			Return(helpers.ProductPage(helpers.NewTestProducts(10, 1), true), nil),
	)

	loader.Start(ctx)
	loader.LoadNext(ctx)
	require.False(t, loader.Snapshot().HasMore)

	loader.ReloadFirst(ctx)
	snap := loader.Snapshot()
	require.Len(t, snap.Products, 1)
	assert.Equal(t, int64(10), snap.Products[0].ID)
	assert.True(t, snap.HasMore)
	assert.Equal(t, 1, snap.Page)
}

func TestProductLoader_SellerSkipsLoading(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockCatalogAPI(ctrl)
	loader := services.NewProductLoader(catalog, seller, 0, helpers.TestLogger())

	loader.Start(context.Background())
	loader.ReloadFirst(context.Background())
	loader.LoadNext(context.Background())

	assert.Empty(t, loader.Snapshot().Products)
}

func TestProductLoader_InFlightGuard(t *testing.T) {
	ctx := context.Background()
	loader, catalog := newLoader(t)

	started := make(chan struct{})
	release := make(chan struct{})
	catalog.EXPECT().ListProducts(gomock.Any(), 1, gomock.Any()).
		DoAndReturn(func(context.Context, int, int) (*domain.Page[domain.Product], error) {
			close(started)
			<-release
			return helpers.ProductPage(helpers.NewTestProducts(1, 2), true), nil
		}).
		Times(1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		loader.Start(ctx)
	}()

	<-started
	assert.True(t, loader.Snapshot().Loading)

	// both return immediately without a second request
	loader.LoadNext(ctx)
	loader.ReloadFirst(ctx)

	close(release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("initial load did not finish")
	}

	snap := loader.Snapshot()
	assert.False(t, snap.Loading)
	assert.Len(t, snap.Products, 2)
}

func TestProductLoader_CancelledRequestKeepsRetryBudget(t *testing.T) {
	loader, catalog := newLoader(t)

	catalog.EXPECT().ListProducts(gomock.Any(), 1, gomock.Any()).
		Return(helpers.ProductPage(helpers.NewTestProducts(1, 3), true), nil)
	gomock.InOrder(
		catalog.EXPECT().ListProducts(gomock.Any(), 2, gomock.Any()).
			Return(nil, fmt.Errorf("GET /products/: %w", context.Canceled)).
			Times(3),
		catalog.EXPECT().ListProducts(gomock.Any(), 2, gomock.Any()).
			Return(helpers.ProductPage(helpers.NewTestProducts(4, 3), false), nil),
	)

	loader.Start(context.Background())

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 3; i++ {
		loader.LoadNext(cancelled)
		snap := loader.Snapshot()
		assert.Zero(t, snap.RetryCount, "attempt %d", i+1)
		assert.Empty(t, snap.LastError, "attempt %d", i+1)
		assert.True(t, snap.HasMore, "attempt %d", i+1)
		assert.False(t, snap.Loading)
	}

	loader.LoadNext(context.Background())
	snap := loader.Snapshot()
	assert.Len(t, snap.Products, 6)
	assert.Equal(t, 2, snap.Page)
	assert.False(t, snap.HasMore)
}
