// internal/adapters/feed/kafka.go
package feed

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
	"github.com/ammerola/poultry-storefront/internal/core/ports"
)

const DefaultOrderTopic = "order-events"

var _ ports.EventSource = (*KafkaSource)(nil)

// KafkaConfig selects the brokers and consumer group of a KafkaSource
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// KafkaSource reads order events from a topic. Messages are keyed by the
// buyer's user id: sellers receive every message, buyers only their own.
type KafkaSource struct {
	cfg    KafkaConfig
	logger *slog.Logger
}

func NewKafkaSource(cfg KafkaConfig, logger *slog.Logger) (*KafkaSource, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka feed requires at least one broker")
	}
	if cfg.GroupID == "" {
		return nil, errors.New("kafka feed requires a consumer group")
	}
	if cfg.Topic == "" {
		cfg.Topic = DefaultOrderTopic
	}
	return &KafkaSource{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "kafka_feed")),
	}, nil
}

// readerConfig is the consumer setup for one subscription
func (s *KafkaSource) readerConfig() kafka.ReaderConfig {
	return kafka.ReaderConfig{
		Brokers:        s.cfg.Brokers,
		Topic:          s.cfg.Topic,
		GroupID:        s.cfg.GroupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
	}
}

// Subscribe creates a reader; the stream counts as open once it exists
func (s *KafkaSource) Subscribe(ctx context.Context, creds ports.Credentials) (ports.Subscription, error) {
	reader := kafka.NewReader(s.readerConfig())

	readCtx, cancel := context.WithCancel(context.Background())
	st := newStream(func() error {
		cancel()
		return reader.Close()
	})
	close(st.opened)
	go s.read(readCtx, reader, st, creds)

	s.logger.InfoContext(ctx, "order topic reader started",
		slog.String("topic", s.cfg.Topic),
		slog.String("group", s.cfg.GroupID))
	return st, nil
}

func (s *KafkaSource) read(ctx context.Context, reader *kafka.Reader, st *stream, creds ports.Credentials) {
	defer close(st.events)
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if !st.closed() && !errors.Is(err, context.Canceled) {
				s.logger.Warn("order topic reader stopped", slog.String("error", err.Error()))
			}
			return
		}

		if visibleTo(msg.Key, creds) && !st.send(msg.Value) {
			return
		}
		if err := reader.CommitMessages(ctx, msg); err != nil && !st.closed() {
			s.logger.Warn("failed to commit order event", slog.String("error", err.Error()))
		}
	}
}

// visibleTo reports whether a message keyed by buyer id belongs to creds
func visibleTo(key []byte, creds ports.Credentials) bool {
	if creds.Role == domain.RoleSeller {
		return true
	}
	return string(key) == strconv.FormatInt(creds.UserID, 10)
}
