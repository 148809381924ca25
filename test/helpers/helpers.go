// test/helpers/helpers.go
package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/poultry-storefront/internal/adapters/db"
	"github.com/ammerola/poultry-storefront/internal/core/domain"
	"github.com/ammerola/poultry-storefront/internal/pkg/config"
)

// TestDB represents a test database instance
type TestDB struct {
	DB       *sql.DB
	Resource *dockertest.Resource
	Pool     *dockertest.Pool
	Config   *db.Config
}

// TestRedis represents a test Redis instance
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	if testing.Verbose() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// SetupTestDB creates a PostgreSQL container for integration tests and
// applies the embedded migrations
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping docker-backed test in short mode")
	}

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test_storefront",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	dbConfig := db.DefaultConfig()
	dbConfig.Port = resource.GetPort("5432/tcp")
	dbConfig.User = "test"
	dbConfig.Password = "test"
	dbConfig.Database = "test_storefront"
	dbConfig.MaxOpenConns = 5

	var conn *sql.DB
	err = pool.Retry(func() error {
		var err error
		conn, err = db.Open(context.Background(), dbConfig, TestLogger())
		return err
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")
	t.Cleanup(func() { conn.Close() })

	err = db.RunMigrationsWithRetry(context.Background(), dbConfig.URL(), TestLogger(), 3)
	require.NoError(t, err, "Could not run migrations")

	return &TestDB{
		DB:       conn,
		Resource: resource,
		Pool:     pool,
		Config:   dbConfig,
	}
}

// SetupTestRedis creates a mock Redis instance for testing
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
	})

	return &TestRedis{
		Client: client,
		Server: mr,
	}
}

// SetupMockDB creates a mock database for unit testing
func SetupMockDB(t *testing.T) (sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create mock DB")

	t.Cleanup(func() {
		conn.Close()
	})

	return mock, conn
}

// LoadTestConfig returns a test configuration
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "storefront-test",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
		},
		API: config.APIConfig{
			BaseURL:         "http://localhost:8000/api",
			Timeout:         5 * time.Second,
			RateLimit:       50,
			RateBurst:       10,
			RequestIDHeader: "X-Request-ID",
		},
		Storage: config.StorageConfig{
			Backend:   "memory",
			Namespace: "test",
		},
		Redis: config.RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			PoolSize: 10,
			TTL:      time.Minute,
		},
		Feed: config.FeedConfig{
			Transport: "websocket",
			Topic:     "order-events",
		},
		Editor: config.EditorConfig{Debounce: 600 * time.Millisecond},
		Loader: config.LoaderConfig{PageSize: 12, SellerPageSize: 100},
		Server: config.ServerConfig{
			Host:              "localhost",
			Port:              "8090",
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			RateLimitRequests: 100,
			AllowedOrigins:    []string{"*"},
		},
	}
}

// NewTestProduct creates a catalog product with sensible defaults
func NewTestProduct(id int64, overrides ...func(*domain.Product)) domain.Product {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	p := domain.Product{
		ID:          id,
		Name:        fmt.Sprintf("Chicken wings #%d", id),
		ProductType: domain.ProductTypeWing,
		Description: "Fresh, chilled",
		IsAvailable: true,
		StockKg:     decimal.NewFromInt(50),
		CreatedAt:   created.Add(time.Duration(id) * time.Hour),
		UpdatedAt:   created.Add(time.Duration(id) * time.Hour),
	}

	for _, override := range overrides {
		override(&p)
	}

	return p
}

// NewTestProducts creates count products with ids starting at first
func NewTestProducts(first int64, count int) []domain.Product {
	out := make([]domain.Product, count)
	for i := range out {
		out[i] = NewTestProduct(first + int64(i))
	}
	return out
}

// NewTestOrder creates an order with one line item
func NewTestOrder(id int64, status domain.OrderStatus, overrides ...func(*domain.Order)) domain.Order {
	o := domain.Order{
		ID:          id,
		OrderNumber: fmt.Sprintf("ORD-%05d", id),
		Status:      status,
		TotalWeight: decimal.NewFromInt(3),
		CreatedAt:   time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC),
		Items: []domain.OrderItem{
			{ID: id * 10, Product: NewTestProduct(1), QuantityKg: decimal.NewFromInt(3)},
		},
		Buyer: domain.User{ID: 7, Username: "buyer", Role: domain.RoleBuyer},
	}

	for _, override := range overrides {
		override(&o)
	}

	return o
}

// ProductPage wraps products in a paginated envelope
func ProductPage(products []domain.Product, hasNext bool) *domain.Page[domain.Product] {
	if products == nil {
		products = []domain.Product{}
	}
	page := &domain.Page[domain.Product]{
		Count:   len(products),
		Results: products,
	}
	if hasNext {
		next := "next"
		page.Next = &next
	}
	return page
}

// AssertEventuallyWithTimeout asserts that a condition is met within a timeout
func AssertEventuallyWithTimeout(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Errorf("Condition not met within %v: %s", timeout, msg)
}
