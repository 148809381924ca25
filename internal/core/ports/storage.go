// internal/core/ports/storage.go
package ports

// StorageAdapter is the durable client-local key/value store. Values are
// opaque strings; callers own the encoding.
type StorageAdapter interface {
	// Get returns the stored value and whether the key exists
	Get(key string) (string, bool, error)
	Set(key, value string) error
	// Remove deletes the key. Removing a missing key is not an error.
	Remove(key string) error
}

// Storage keys shared by the client services
const (
	StorageKeyCart        = "cartItems"
	StorageKeyColorMode   = "ui-mode"
	StorageKeyAccessToken = "accessToken"
	StorageKeyUser        = "user"
)
