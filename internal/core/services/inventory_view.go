// internal/core/services/inventory_view.go
package services

import (
	"cmp"
	"fmt"
	"sort"
	"strings"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
)

// SortKey names a sortable inventory column
type SortKey string

const (
	SortByID          SortKey = "id"
	SortByName        SortKey = "name"
	SortByProductType SortKey = "product_type"
	SortByStock       SortKey = "stock_kg"
	SortByAvailable   SortKey = "is_available"
	SortByCreatedAt   SortKey = "created_at"
	SortByUpdatedAt   SortKey = "updated_at"
	SortByImage       SortKey = "image"
)

// ParseSortKey validates a column name
func ParseSortKey(raw string) (SortKey, error) {
	k := SortKey(raw)
	switch k {
	case SortByID, SortByName, SortByProductType, SortByStock,
		SortByAvailable, SortByCreatedAt, SortByUpdatedAt, SortByImage:
		return k, nil
	}
	return "", fmt.Errorf("unknown sort key %q", raw)
}

const DefaultInventoryPageSize = 10

// InventoryView sorts and pages the seller's rows. Page is zero based.
type InventoryView struct {
	SortKey  SortKey
	Desc     bool
	Page     int
	PageSize int
}

// NewInventoryView returns the table's initial view: by name, ascending
func NewInventoryView() InventoryView {
	return InventoryView{SortKey: SortByName, PageSize: DefaultInventoryPageSize}
}

// ToggleSort flips direction on the active key; a new key starts ascending
func (v *InventoryView) ToggleSort(key SortKey) {
	if v.SortKey == key && !v.Desc {
		v.Desc = true
	} else {
		v.Desc = false
	}
	v.SortKey = key
}

func (v *InventoryView) SetPage(p int) {
	if p < 0 {
		p = 0
	}
	v.Page = p
}

// SetPageSize changes the page size and returns to the first page
func (v *InventoryView) SetPageSize(n int) {
	if n <= 0 {
		n = DefaultInventoryPageSize
	}
	v.PageSize = n
	v.Page = 0
}

// Apply returns the rows of the current page of the sorted collection.
// rows is not modified.
func (v InventoryView) Apply(rows []domain.Product) []domain.Product {
	sorted := append([]domain.Product{}, rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return v.less(&sorted[i], &sorted[j])
	})

	size := v.PageSize
	if size <= 0 {
		size = DefaultInventoryPageSize
	}
	start := v.Page * size
	if start >= len(sorted) || start < 0 {
		return []domain.Product{}
	}
	end := min(start+size, len(sorted))
	return sorted[start:end]
}

// less orders a before b. Null values go last whatever the direction.
func (v InventoryView) less(a, b *domain.Product) bool {
	if v.SortKey == SortByImage {
		switch {
		case a.Image == nil && b.Image == nil:
			return false
		case a.Image == nil:
			return false
		case b.Image == nil:
			return true
		}
	}

	c := v.compare(a, b)
	if v.Desc {
		return c > 0
	}
	return c < 0
}

func (v InventoryView) compare(a, b *domain.Product) int {
	switch v.SortKey {
	case SortByID:
		return cmp.Compare(a.ID, b.ID)
	case SortByProductType:
		return strings.Compare(string(a.ProductType), string(b.ProductType))
	case SortByStock:
		return a.StockKg.Cmp(b.StockKg)
	case SortByAvailable:
		return cmpBool(a.IsAvailable, b.IsAvailable)
	case SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case SortByImage:
		return strings.Compare(*a.Image, *b.Image)
	default:
		return strings.Compare(a.Name, b.Name)
	}
}

// false sorts before true
func cmpBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}
