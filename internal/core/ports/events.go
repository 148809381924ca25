// internal/core/ports/events.go
package ports

import (
	"context"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
)

// Credentials identify the session a live subscription is opened for
type Credentials struct {
	Token  string
	UserID int64
	Role   domain.Role
}

// EventSource opens live order subscriptions
type EventSource interface {
	Subscribe(ctx context.Context, creds Credentials) (Subscription, error)
}

// Subscription is a live stream of raw event frames. Events is closed when
// the underlying connection ends.
type Subscription interface {
	// Opened is closed once the connection is established
	Opened() <-chan struct{}
	Events() <-chan []byte
	Close() error
}
