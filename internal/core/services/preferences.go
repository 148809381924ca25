// internal/core/services/preferences.go
package services

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ammerola/poultry-storefront/internal/core/ports"
)

// ColorMode is the UI theme preference
type ColorMode string

const (
	ModeLight ColorMode = "light"
	ModeDark  ColorMode = "dark"
)

// Preferences persists the color mode
type Preferences struct {
	storage ports.StorageAdapter
	logger  *slog.Logger

	mu   sync.Mutex
	mode ColorMode
}

func NewPreferences(storage ports.StorageAdapter, logger *slog.Logger) *Preferences {
	p := &Preferences{
		storage: storage,
		mode:    ModeLight,
		logger:  logger.With(slog.String("service", "preferences")),
	}
	if raw, ok, err := storage.Get(ports.StorageKeyColorMode); err == nil && ok {
		if m := ColorMode(raw); m == ModeLight || m == ModeDark {
			p.mode = m
		}
	}
	return p
}

func (p *Preferences) Mode() ColorMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// Toggle switches between light and dark and persists the result
func (p *Preferences) Toggle() (ColorMode, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := ModeDark
	if p.mode == ModeDark {
		next = ModeLight
	}
	if err := p.storage.Set(ports.StorageKeyColorMode, string(next)); err != nil {
		return p.mode, fmt.Errorf("failed to persist color mode: %w", err)
	}
	p.mode = next
	return next, nil
}
