// internal/core/services/seller_inventory_test.go
package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
	"github.com/ammerola/poultry-storefront/internal/core/services"
	"github.com/ammerola/poultry-storefront/test/helpers"
	"github.com/ammerola/poultry-storefront/test/mocks"
)

func newInventory(t *testing.T) (*services.SellerInventory, *mocks.MockCatalogAPI) {
	t.Helper()
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockCatalogAPI(ctrl)
	return services.NewSellerInventory(catalog, 0, helpers.TestLogger()), catalog
}

func TestSellerInventory_Reload(t *testing.T) {
	ctx := context.Background()
	inv, catalog := newInventory(t)

	catalog.EXPECT().ListProducts(gomock.Any(), 1, services.DefaultSellerPageSize).
		Return(helpers.ProductPage(helpers.NewTestProducts(1, 3), false), nil)

	require.NoError(t, inv.Reload(ctx))
	assert.Equal(t, []int64{1, 2, 3}, ids(inv.Rows()))
	assert.False(t, inv.Loading())
	assert.Empty(t, inv.LastError())

	catalog.EXPECT().ListProducts(gomock.Any(), 1, services.DefaultSellerPageSize).
		Return(nil, errors.New("bad gateway"))

	err := inv.Reload(ctx)
	assert.Error(t, err)
	assert.Equal(t, "bad gateway", inv.LastError())
	assert.Equal(t, []int64{1, 2, 3}, ids(inv.Rows()), "rows survive a failed reload")
}

func TestSellerInventory_CreatePrepends(t *testing.T) {
	inv, catalog := newInventory(t)
	inv.Seed(helpers.NewTestProducts(1, 2))

	name := "Thighs"
	input := domain.ProductInput{Name: &name}
	catalog.EXPECT().CreateProduct(gomock.Any(), input).
		Return(&domain.Product{ID: 9, Name: name}, nil)

	created, err := inv.Create(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, int64(9), created.ID)
	assert.Equal(t, []int64{9, 1, 2}, ids(inv.Rows()))
}

func TestSellerInventory_Delete(t *testing.T) {
	ctx := context.Background()
	inv, catalog := newInventory(t)
	inv.Seed(helpers.NewTestProducts(1, 3))

	catalog.EXPECT().DeleteProduct(gomock.Any(), int64(2)).Return(nil)
	require.NoError(t, inv.Delete(ctx, 2))
	assert.Equal(t, []int64{1, 3}, ids(inv.Rows()))

	catalog.EXPECT().DeleteProduct(gomock.Any(), int64(3)).Return(errors.New("forbidden"))
	assert.Error(t, inv.Delete(ctx, 3))
	assert.Equal(t, []int64{1, 3}, ids(inv.Rows()))
	assert.Equal(t, "forbidden", inv.LastError())
}

func TestSellerInventory_ToggleAvailability(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		available bool
	}{
		{name: "available_to_hidden", available: true},
		{name: "hidden_to_available", available: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, catalog := newInventory(t)
			p := helpers.NewTestProduct(4, func(p *domain.Product) { p.IsAvailable = tt.available })
			inv.Seed([]domain.Product{p})

			confirmed := p
			confirmed.IsAvailable = !tt.available
			catalog.EXPECT().UpdateProduct(gomock.Any(), int64(4), domain.AvailabilityPatch(!tt.available)).
				Return(&confirmed, nil)

			got, err := inv.ToggleAvailability(ctx, 4)
			require.NoError(t, err)
			assert.Equal(t, !tt.available, got.IsAvailable)

			row, ok := inv.Row(4)
			require.True(t, ok)
			assert.Equal(t, !tt.available, row.IsAvailable)
		})
	}

	t.Run("unknown_row", func(t *testing.T) {
		inv, _ := newInventory(t)
		_, err := inv.ToggleAvailability(ctx, 99)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestSellerInventory_ReplaceUnknownRow(t *testing.T) {
	inv, _ := newInventory(t)
	inv.Seed(helpers.NewTestProducts(1, 1))

	assert.False(t, inv.Replace(helpers.NewTestProduct(5)))
	assert.Equal(t, []int64{1}, ids(inv.Rows()))
}
