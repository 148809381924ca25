// internal/adapters/redis_adapter/events.go
package redis_a

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
	"github.com/ammerola/poultry-storefront/internal/core/ports"
)

// Channels the backend fans order events out on
const (
	SellersChannel     = "orders:sellers"
	userChannelPattern = "orders:user:"
)

// UserChannel returns the private channel for a user's order events
func UserChannel(userID int64) string {
	return userChannelPattern + strconv.FormatInt(userID, 10)
}

var _ ports.EventSource = (*PubSubSource)(nil)

// PubSubSource delivers live order events published to Redis channels
type PubSubSource struct {
	client redis.UniversalClient
	logger *slog.Logger
}

// NewPubSubSource creates a Redis pub/sub event source
func NewPubSubSource(client redis.UniversalClient, logger *slog.Logger) *PubSubSource {
	return &PubSubSource{
		client: client,
		logger: logger.With(slog.String("component", "redis_feed")),
	}
}

// Subscribe joins the user's private channel, plus the sellers channel for sellers
func (s *PubSubSource) Subscribe(ctx context.Context, creds ports.Credentials) (ports.Subscription, error) {
	channels := []string{UserChannel(creds.UserID)}
	if creds.Role == domain.RoleSeller {
		channels = append(channels, SellersChannel)
	}

	ps := s.client.Subscribe(ctx, channels...)
	// Receive blocks until the server confirms the subscription
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("failed to subscribe to %v: %w", channels, err)
	}

	sub := &pubsubSubscription{
		ps:     ps,
		opened: make(chan struct{}),
		events: make(chan []byte, 16),
		done:   make(chan struct{}),
	}
	close(sub.opened)
	go sub.pump()

	s.logger.InfoContext(ctx, "subscribed to order channels", slog.Any("channels", channels))
	return sub, nil
}

// PublishOrderEvent publishes an event frame to a channel
func PublishOrderEvent(ctx context.Context, client redis.UniversalClient, channel string, event domain.OrderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

type pubsubSubscription struct {
	ps     *redis.PubSub
	opened chan struct{}
	events chan []byte
	done   chan struct{}
	once   sync.Once
}

func (s *pubsubSubscription) Opened() <-chan struct{} { return s.opened }

func (s *pubsubSubscription) Events() <-chan []byte { return s.events }

func (s *pubsubSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
	})
	return err
}

func (s *pubsubSubscription) pump() {
	defer close(s.events)
	ch := s.ps.Channel()
	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			select {
			case s.events <- []byte(msg.Payload):
			case <-s.done:
				return
			}
		}
	}
}
