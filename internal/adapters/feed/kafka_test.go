// internal/adapters/feed/kafka_test.go
package feed

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
	"github.com/ammerola/poultry-storefront/internal/core/ports"
	"github.com/ammerola/poultry-storefront/test/helpers"
)

func TestNewKafkaSource(t *testing.T) {
	tests := []struct {
		name    string
		cfg     KafkaConfig
		wantErr bool
	}{
		{name: "defaults_topic", cfg: KafkaConfig{Brokers: []string{"localhost:9092"}, GroupID: "storefront-1"}},
		{name: "no_brokers", cfg: KafkaConfig{GroupID: "storefront-1"}, wantErr: true},
		{name: "no_group", cfg: KafkaConfig{Brokers: []string{"localhost:9092"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewKafkaSource(tt.cfg, helpers.TestLogger())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			rc := src.readerConfig()
			assert.Equal(t, DefaultOrderTopic, rc.Topic)
			assert.Equal(t, "storefront-1", rc.GroupID)
			assert.Equal(t, kafka.LastOffset, rc.StartOffset)
		})
	}
}

func TestVisibleTo(t *testing.T) {
	buyer := ports.Credentials{UserID: 7, Role: domain.RoleBuyer}
	seller := ports.Credentials{UserID: 2, Role: domain.RoleSeller}

	assert.True(t, visibleTo([]byte("7"), buyer))
	assert.False(t, visibleTo([]byte("8"), buyer))
	assert.False(t, visibleTo(nil, buyer))
	assert.True(t, visibleTo([]byte("8"), seller))
	assert.True(t, visibleTo(nil, seller))
}

// Runs against a real broker when KAFKA_BROKERS is set
func TestKafkaSource_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	broker := os.Getenv("KAFKA_BROKERS")
	if broker == "" {
		t.Skip("KAFKA_BROKERS not set")
	}

	topic := "order-events-test"
	src, err := NewKafkaSource(KafkaConfig{Brokers: []string{broker}, Topic: topic, GroupID: "feed-test"}, helpers.TestLogger())
	require.NoError(t, err)

	sub, err := src.Subscribe(context.Background(), ports.Credentials{UserID: 7, Role: domain.RoleBuyer})
	require.NoError(t, err)
	defer sub.Close()

	w := &kafka.Writer{Addr: kafka.TCP(broker), Topic: topic, AllowAutoTopicCreation: true}
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, w.WriteMessages(ctx,
		kafka.Message{Key: []byte("8"), Value: []byte(`{"type":"new_order","order":{"id":1}}`)},
		kafka.Message{Key: []byte("7"), Value: []byte(`{"type":"new_order","order":{"id":2}}`)},
	))

	select {
	case frame := <-sub.Events():
		assert.JSONEq(t, `{"type":"new_order","order":{"id":2}}`, string(frame))
	case <-ctx.Done():
		t.Fatal("no event received")
	}
}
