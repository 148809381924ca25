// internal/core/services/order_feed.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
	"github.com/ammerola/poultry-storefront/internal/core/ports"
	"github.com/ammerola/poultry-storefront/internal/pkg/metrics"
)

// OrderFeed keeps a live subscription open while a session is signed in and
// merges pushed orders into the board.
type OrderFeed struct {
	source ports.EventSource
	board  *OrderBoard
	logger *slog.Logger

	// lifecycle serializes compare, release and acquire across callers
	lifecycle sync.Mutex

	mu     sync.Mutex
	sub    ports.Subscription
	creds  ports.Credentials
	cancel context.CancelFunc
	done   chan struct{}
}

func NewOrderFeed(source ports.EventSource, board *OrderBoard, logger *slog.Logger) *OrderFeed {
	return &OrderFeed{
		source: source,
		board:  board,
		logger: logger.With(slog.String("service", "order_feed")),
	}
}

// Watch ties the feed to session: it evaluates the current state now and
// again after every change, until ctx is done.
func (f *OrderFeed) Watch(ctx context.Context, session *Session) {
	session.OnChange(func(st SessionState) {
		if ctx.Err() != nil {
			return
		}
		f.OnSessionChange(ctx, st)
	})
	f.OnSessionChange(ctx, session.State())

	go func() {
		<-ctx.Done()
		f.Release()
	}()
}

// OnSessionChange subscribes when both a token and a user are present and
// unsubscribes otherwise
func (f *OrderFeed) OnSessionChange(ctx context.Context, st SessionState) {
	f.lifecycle.Lock()
	defer f.lifecycle.Unlock()

	if !st.Authenticated() {
		f.release()
		return
	}

	creds := ports.Credentials{Token: st.Token, UserID: st.User.ID, Role: st.User.Role}

	f.mu.Lock()
	same := f.sub != nil && f.creds == creds
	f.mu.Unlock()
	if same {
		return
	}

	f.release()
	if err := f.acquire(ctx, creds); err != nil {
		f.logger.DebugContext(ctx, "live order feed unavailable", slog.String("error", err.Error()))
	}
}

// Acquire opens a subscription for creds, closing any held one first
func (f *OrderFeed) Acquire(ctx context.Context, creds ports.Credentials) error {
	f.lifecycle.Lock()
	defer f.lifecycle.Unlock()

	f.release()
	return f.acquire(ctx, creds)
}

func (f *OrderFeed) acquire(ctx context.Context, creds ports.Credentials) error {
	subCtx, cancel := context.WithCancel(ctx)
	sub, err := f.source.Subscribe(subCtx, creds)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	done := make(chan struct{})
	f.mu.Lock()
	f.sub = sub
	f.creds = creds
	f.cancel = cancel
	f.done = done
	f.mu.Unlock()

	go f.run(subCtx, sub, done)
	return nil
}

// Release closes the subscription, if any, and waits for its reader to stop
func (f *OrderFeed) Release() {
	f.lifecycle.Lock()
	defer f.lifecycle.Unlock()
	f.release()
}

func (f *OrderFeed) release() {
	f.mu.Lock()
	sub, cancel, done := f.sub, f.cancel, f.done
	f.sub, f.cancel, f.done = nil, nil, nil
	f.creds = ports.Credentials{}
	f.mu.Unlock()

	if sub == nil {
		return
	}
	cancel()
	if err := sub.Close(); err != nil {
		f.logger.Debug("error closing order subscription", slog.String("error", err.Error()))
	}
	<-done
}

// Active reports whether a subscription is held
func (f *OrderFeed) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sub != nil
}

func (f *OrderFeed) run(ctx context.Context, sub ports.Subscription, done chan struct{}) {
	defer close(done)
	defer f.clear(sub)

	select {
	case <-ctx.Done():
		return
	case <-sub.Opened():
		if err := f.board.Refresh(ctx); err != nil {
			f.logger.WarnContext(ctx, "order refresh after connect failed", slog.String("error", err.Error()))
		}
	}

	events := sub.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-events:
			if !ok {
				f.logger.DebugContext(ctx, "order subscription closed")
				return
			}
			f.handle(ctx, data)
		}
	}
}

// clear drops the handle when the subscription ended on its own, so the next
// session change can open a new one
func (f *OrderFeed) clear(sub ports.Subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sub != sub {
		return
	}
	f.cancel()
	f.sub, f.cancel, f.done = nil, nil, nil
	f.creds = ports.Credentials{}
}

func (f *OrderFeed) handle(ctx context.Context, data []byte) {
	var ev domain.OrderEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		metrics.FeedEvents.WithLabelValues("malformed").Inc()
		f.logger.ErrorContext(ctx, "dropping malformed order event", slog.String("error", err.Error()))
		return
	}
	if !ev.IsOrderChange() {
		metrics.FeedEvents.WithLabelValues("other").Inc()
		return
	}
	metrics.FeedEvents.WithLabelValues(ev.Type).Inc()

	if ev.Order == nil || ev.Order.Validate() != nil {
		f.logger.ErrorContext(ctx, "dropping order event without a valid order", slog.String("type", ev.Type))
		return
	}
	f.board.Upsert(*ev.Order)
}
