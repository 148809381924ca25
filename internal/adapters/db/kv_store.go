// internal/adapters/db/kv_store.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/ammerola/poultry-storefront/internal/core/ports"
)

const storageTable = "client_storage"

var _ ports.StorageAdapter = (*KVStore)(nil)

// KVStore persists client storage keys in Postgres, one row per key, scoped
// by namespace so several sessions can share a database
type KVStore struct {
	db        *sql.DB
	namespace string
	timeout   time.Duration
	builder   sq.StatementBuilderType
	logger    *slog.Logger
}

// NewKVStore creates a Postgres-backed storage adapter
func NewKVStore(conn *sql.DB, namespace string, logger *slog.Logger) *KVStore {
	return &KVStore{
		db:        conn,
		namespace: namespace,
		timeout:   5 * time.Second,
		builder:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar).RunWith(conn),
		logger:    logger.With(slog.String("component", "kv_store")),
	}
}

func (s *KVStore) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var value string
	err := s.builder.
		Select("value").
		From(storageTable).
		Where(sq.Eq{"namespace": s.namespace, "key": key}).
		QueryRowContext(ctx).
		Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get storage key %s: %w", key, err)
	}

	return value, true, nil
}

func (s *KVStore) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	_, err := s.builder.
		Insert(storageTable).
		Columns("namespace", "key", "value", "updated_at").
		Values(s.namespace, key, value, time.Now().UTC()).
		Suffix("ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to set storage key %s: %w", key, err)
	}

	s.logger.Debug("storage key written",
		slog.String("key", key),
		slog.Int("bytes", len(value)))
	return nil
}

func (s *KVStore) Remove(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	_, err := s.builder.
		Delete(storageTable).
		Where(sq.Eq{"namespace": s.namespace, "key": key}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove storage key %s: %w", key, err)
	}
	return nil
}

// Keys lists every key stored in the namespace
func (s *KVStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.builder.
		Select("key").
		From(storageTable).
		Where(sq.Eq{"namespace": s.namespace}).
		OrderBy("key").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list storage keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan storage key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
