// internal/core/services/cart_test.go
package services_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/poultry-storefront/internal/adapters/localstore"
	"github.com/ammerola/poultry-storefront/internal/core/domain"
	"github.com/ammerola/poultry-storefront/internal/core/ports"
	"github.com/ammerola/poultry-storefront/internal/core/services"
	"github.com/ammerola/poultry-storefront/test/helpers"
	"github.com/ammerola/poultry-storefront/test/mocks"
)

// storedCart decodes the persisted cart
func storedCart(t *testing.T, store *localstore.MemoryStore) ([]domain.CartItem, bool) {
	t.Helper()
	raw, ok, err := store.Get(ports.StorageKeyCart)
	require.NoError(t, err)
	if !ok {
		return nil, false
	}
	var items []domain.CartItem
	require.NoError(t, json.Unmarshal([]byte(raw), &items))
	return items, true
}

// lines reduces items to id/quantity pairs
func lines(items []domain.CartItem) map[int64]int {
	out := make(map[int64]int, len(items))
	for _, it := range items {
		out[it.Product.ID] = it.Quantity
	}
	return out
}

func TestCartStore_Hydrate(t *testing.T) {
	tests := []struct {
		name      string
		seed      map[string]string
		wantLen   int
		wantQty77 int
	}{
		{
			name:      "restores_stored_quantity",
			seed:      map[string]string{ports.StorageKeyCart: `[{"product":{"id":77},"quantity":3}]`},
			wantLen:   1,
			wantQty77: 3,
		},
		{
			name:      "accepts_legacy_quantity_kg",
			seed:      map[string]string{ports.StorageKeyCart: `[{"product":{"id":77},"quantity_kg":5}]`},
			wantLen:   1,
			wantQty77: 5,
		},
		{
			name:    "absent_key_is_empty",
			seed:    nil,
			wantLen: 0,
		},
		{
			name:    "malformed_json_is_empty",
			seed:    map[string]string{ports.StorageKeyCart: `{not json`},
			wantLen: 0,
		},
		{
			name:    "null_is_empty",
			seed:    map[string]string{ports.StorageKeyCart: `null`},
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := services.NewCartStore(localstore.NewMemoryStore(tt.seed), helpers.TestLogger())
			assert.Equal(t, tt.wantLen, cart.Len())
			assert.Equal(t, tt.wantQty77, cart.Quantity(77))
		})
	}
}

func TestCartStore_HydrateStorageError(t *testing.T) {
	ctrl := gomock.NewController(t)
	storage := mocks.NewMockStorageAdapter(ctrl)
	storage.EXPECT().Get(ports.StorageKeyCart).Return("", false, errors.New("disk gone"))

	cart := services.NewCartStore(storage, helpers.TestLogger())
	assert.Zero(t, cart.Len())
}

func TestCartStore_AddToCart(t *testing.T) {
	store := localstore.NewMemoryStore(nil)
	cart := services.NewCartStore(store, helpers.TestLogger())
	p := helpers.NewTestProduct(11)

	require.NoError(t, cart.AddToCart(p))
	require.NoError(t, cart.AddToCart(p))

	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)

	stored, ok := storedCart(t, store)
	require.True(t, ok)
	require.Len(t, stored, 1)
	assert.Equal(t, int64(11), stored[0].Product.ID)
	assert.Equal(t, 2, stored[0].Quantity)

	raw, _, _ := store.Get(ports.StorageKeyCart)
	assert.Contains(t, raw, `"quantity":2`)
}

func TestCartStore_RepeatedAddsCountCalls(t *testing.T) {
	for _, n := range []int{1, 2, 7, 25} {
		cart := services.NewCartStore(localstore.NewMemoryStore(nil), helpers.TestLogger())
		p := helpers.NewTestProduct(5)
		for i := 0; i < n; i++ {
			require.NoError(t, cart.AddToCart(p))
		}
		assert.Equal(t, 1, cart.Len())
		assert.Equal(t, n, cart.Quantity(5))
	}
}

func TestCartStore_QuantityOperations(t *testing.T) {
	tests := []struct {
		name    string
		start   int
		op      func(c *services.CartStore) error
		wantQty int
	}{
		{name: "increment", start: 2, op: func(c *services.CartStore) error { return c.IncrementQuantity(1) }, wantQty: 3},
		{name: "decrement", start: 3, op: func(c *services.CartStore) error { return c.DecrementQuantity(1) }, wantQty: 2},
		{name: "decrement_floors_at_one", start: 1, op: func(c *services.CartStore) error { return c.DecrementQuantity(1) }, wantQty: 1},
		{name: "set_quantity", start: 1, op: func(c *services.CartStore) error { return c.SetQuantity(1, 9) }, wantQty: 9},
		{name: "set_quantity_clamps_zero", start: 4, op: func(c *services.CartStore) error { return c.SetQuantity(1, 0) }, wantQty: 1},
		{name: "set_quantity_clamps_negative", start: 4, op: func(c *services.CartStore) error { return c.SetQuantity(1, -3) }, wantQty: 1},
		{name: "update_quantity_is_verbatim", start: 4, op: func(c *services.CartStore) error { return c.UpdateQuantity(1, 0) }, wantQty: 0},
		{name: "increment_absent_is_noop", start: 2, op: func(c *services.CartStore) error { return c.IncrementQuantity(99) }, wantQty: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := localstore.NewMemoryStore(nil)
			cart := services.NewCartStore(store, helpers.TestLogger())
			p := helpers.NewTestProduct(1)
			for i := 0; i < tt.start; i++ {
				require.NoError(t, cart.AddToCart(p))
			}

			require.NoError(t, tt.op(cart))
			assert.Equal(t, tt.wantQty, cart.Quantity(1))

			stored, ok := storedCart(t, store)
			require.True(t, ok)
			assert.Equal(t, lines(cart.Items()), lines(stored))
		})
	}
}

func TestCartStore_UpdateQuantityAbsentStillPersists(t *testing.T) {
	ctrl := gomock.NewController(t)
	storage := mocks.NewMockStorageAdapter(ctrl)
	storage.EXPECT().Get(ports.StorageKeyCart).Return(`[{"product":{"id":1},"quantity":2}]`, true, nil)
	storage.EXPECT().Set(ports.StorageKeyCart, gomock.Any()).DoAndReturn(func(_, value string) error {
		var items []domain.CartItem
		require.NoError(t, json.Unmarshal([]byte(value), &items))
		require.Len(t, items, 1)
		assert.Equal(t, 2, items[0].Quantity)
		return nil
	})

	cart := services.NewCartStore(storage, helpers.TestLogger())
	require.NoError(t, cart.UpdateQuantity(42, 10))
	assert.Equal(t, 2, cart.Quantity(1))
}

func TestCartStore_IncrementAbsentDoesNotWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	storage := mocks.NewMockStorageAdapter(ctrl)
	storage.EXPECT().Get(ports.StorageKeyCart).Return("", false, nil)

	cart := services.NewCartStore(storage, helpers.TestLogger())
	require.NoError(t, cart.IncrementQuantity(3))
	require.NoError(t, cart.DecrementQuantity(3))
	require.NoError(t, cart.SetQuantity(3, 4))
}

func TestCartStore_RemoveThenAddResetsQuantity(t *testing.T) {
	store := localstore.NewMemoryStore(nil)
	cart := services.NewCartStore(store, helpers.TestLogger())
	p := helpers.NewTestProduct(8)

	for i := 0; i < 4; i++ {
		require.NoError(t, cart.AddToCart(p))
	}
	require.NoError(t, cart.AddToCart(helpers.NewTestProduct(9)))
	require.NoError(t, cart.RemoveFromCart(8))

	stored, ok := storedCart(t, store)
	require.True(t, ok)
	require.Len(t, stored, 1)
	assert.Equal(t, int64(9), stored[0].Product.ID)

	require.NoError(t, cart.AddToCart(p))
	assert.Equal(t, 1, cart.Quantity(8))
}

func TestCartStore_ClearRemovesKey(t *testing.T) {
	store := localstore.NewMemoryStore(nil)
	cart := services.NewCartStore(store, helpers.TestLogger())
	require.NoError(t, cart.AddToCart(helpers.NewTestProduct(1)))

	require.NoError(t, cart.ClearCart())

	assert.Zero(t, cart.Len())
	_, ok := storedCart(t, store)
	assert.False(t, ok, "storage key should be absent, not empty")
}

func TestCartStore_PersistFailureKeepsTransition(t *testing.T) {
	ctrl := gomock.NewController(t)
	storage := mocks.NewMockStorageAdapter(ctrl)
	storage.EXPECT().Get(ports.StorageKeyCart).Return("", false, nil)
	storage.EXPECT().Set(ports.StorageKeyCart, gomock.Any()).Return(errors.New("quota exceeded"))

	cart := services.NewCartStore(storage, helpers.TestLogger())
	err := cart.AddToCart(helpers.NewTestProduct(1))

	assert.ErrorContains(t, err, "quota exceeded")
	assert.Equal(t, 1, cart.Quantity(1))
}

func TestCartStore_TotalsAndOrderRequest(t *testing.T) {
	cart := services.NewCartStore(localstore.NewMemoryStore(nil), helpers.TestLogger())
	require.NoError(t, cart.AddToCart(helpers.NewTestProduct(1)))
	require.NoError(t, cart.AddToCart(helpers.NewTestProduct(1)))
	require.NoError(t, cart.AddToCart(helpers.NewTestProduct(2)))

	assert.Equal(t, "3", cart.TotalKg().String())

	req := cart.OrderRequest()
	require.NoError(t, req.Validate())
	require.Len(t, req.Items, 2)
	assert.Equal(t, int64(1), req.Items[0].ProductID)
	assert.Equal(t, "2", req.Items[0].QuantityKg.String())
}
