// internal/adapters/storage/local.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ammerola/poultry-storefront/internal/core/ports"
)

var _ ports.ReportArchive = (*LocalArchive)(nil)

// LocalArchive keeps reports on the local filesystem, for development
// without AWS
type LocalArchive struct {
	basePath string
	logger   *slog.Logger
}

func NewLocalArchive(basePath string, logger *slog.Logger) (*LocalArchive, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive dir: %w", err)
	}
	return &LocalArchive{
		basePath: basePath,
		logger:   logger.With(slog.String("storage", "local")),
	}, nil
}

func (l *LocalArchive) path(key string) (string, error) {
	p := filepath.Join(l.basePath, filepath.FromSlash(key))
	if !strings.HasPrefix(p, filepath.Clean(l.basePath)+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid archive key %q", key)
	}
	return p, nil
}

// Upload writes data to a temp file and renames it into place
func (l *LocalArchive) Upload(ctx context.Context, key string, data []byte, _ string) (string, error) {
	p, err := l.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return "", fmt.Errorf("failed to store report: %w", err)
	}

	l.logger.InfoContext(ctx, "report stored", slog.String("path", p))
	return p, nil
}

func (l *LocalArchive) Exists(_ context.Context, key string) (bool, error) {
	p, err := l.path(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
