// internal/core/services/stock_editor.go
package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
	"github.com/ammerola/poultry-storefront/internal/core/ports"
	"github.com/ammerola/poultry-storefront/internal/pkg/metrics"
)

const (
	DefaultStockDebounce = 600 * time.Millisecond
	stockSaveTimeout     = 15 * time.Second
)

// ErrStockSaving is returned for edits to a row whose save is in flight
var ErrStockSaving = errors.New("stock save in progress")

// rowEdit is the per-row state. A row with no entry is idle; an entry with a
// timer is pending; an entry with saving set is saving.
type rowEdit struct {
	baseline decimal.Decimal
	pending  decimal.Decimal
	timer    ports.Timer
	saving   bool
	// gen identifies the latest schedule; a timer callback that lost the
	// race with Stop carries an older value
	gen uint64
}

// StockEditor debounces inline stock edits and writes the last value of each
// burst back to the catalog.
type StockEditor struct {
	catalog  ports.CatalogAPI
	rows     *SellerInventory
	clock    ports.Clock
	debounce time.Duration
	logger   *slog.Logger

	mu        sync.Mutex
	edits     map[int64]*rowEdit
	lastError string
}

// NewStockEditor creates an editor. A nil clock selects the wall clock;
// debounce <= 0 saves on every edit.
func NewStockEditor(catalog ports.CatalogAPI, rows *SellerInventory, clock ports.Clock, debounce time.Duration, logger *slog.Logger) *StockEditor {
	if clock == nil {
		clock = SystemClock{}
	}
	return &StockEditor{
		catalog:  catalog,
		rows:     rows,
		clock:    clock,
		debounce: debounce,
		edits:    make(map[int64]*rowEdit),
		logger:   logger.With(slog.String("service", "stock_editor")),
	}
}

// ScheduleStockSave applies raw to the row immediately and (re)starts the
// row's debounce timer. Invalid input is rejected without side effects.
func (e *StockEditor) ScheduleStockSave(row domain.Product, raw string) error {
	kg, err := domain.ParseStock(raw)
	if err != nil {
		return err
	}

	e.mu.Lock()
	ed, ok := e.edits[row.ID]
	if ok && ed.saving {
		e.mu.Unlock()
		return ErrStockSaving
	}
	if !ok {
		ed = &rowEdit{baseline: row.StockKg}
		e.edits[row.ID] = ed
	}
	ed.pending = kg
	ed.gen++
	gen := ed.gen
	if ed.timer != nil {
		ed.timer.Stop()
		ed.timer = nil
	}

	e.rows.ApplyStock(row.ID, kg)

	if e.debounce <= 0 {
		e.mu.Unlock()
		e.save(context.Background(), row.ID, gen)
		return nil
	}

	id := row.ID
	ed.timer = e.clock.AfterFunc(e.debounce, func() {
		ctx, cancel := context.WithTimeout(context.Background(), stockSaveTimeout)
		defer cancel()
		e.save(ctx, id, gen)
	})
	e.mu.Unlock()
	return nil
}

func (e *StockEditor) save(ctx context.Context, id int64, gen uint64) {
	e.mu.Lock()
	ed, ok := e.edits[id]
	if !ok || ed.saving || ed.gen != gen {
		e.mu.Unlock()
		return
	}
	ed.timer = nil
	if ed.pending.Equal(ed.baseline) {
		delete(e.edits, id)
		e.mu.Unlock()
		metrics.StockSaves.WithLabelValues(metrics.OutcomeSkipped).Inc()
		return
	}
	ed.saving = true
	desired := ed.pending
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		delete(e.edits, id)
		e.mu.Unlock()
	}()

	updated, err := e.catalog.UpdateProduct(ctx, id, domain.StockPatch(desired))
	if err != nil {
		metrics.StockSaves.WithLabelValues(metrics.OutcomeFailed).Inc()
		e.mu.Lock()
		e.lastError = err.Error()
		e.mu.Unlock()

		e.logger.ErrorContext(ctx, "stock save failed, reloading inventory",
			slog.Int64("product_id", id),
			slog.String("stock_kg", desired.String()),
			slog.String("error", err.Error()))

		if rerr := e.rows.Reload(ctx); rerr != nil {
			e.logger.ErrorContext(ctx, "inventory reload failed", slog.String("error", rerr.Error()))
		}
		return
	}

	metrics.StockSaves.WithLabelValues(metrics.OutcomeSaved).Inc()
	e.rows.Replace(*updated)
	e.logger.DebugContext(ctx, "stock saved",
		slog.Int64("product_id", id),
		slog.String("stock_kg", updated.StockKg.String()))
}

// Flush saves every pending row now instead of waiting for its timer
func (e *StockEditor) Flush(ctx context.Context) {
	e.mu.Lock()
	due := make(map[int64]uint64)
	for id, ed := range e.edits {
		if ed.timer != nil && ed.timer.Stop() {
			ed.timer = nil
			due[id] = ed.gen
		}
	}
	e.mu.Unlock()

	for id, gen := range due {
		e.save(ctx, id, gen)
	}
}

// State reports the edit state of a row
func (e *StockEditor) State(id int64) EditState {
	e.mu.Lock()
	defer e.mu.Unlock()

	ed, ok := e.edits[id]
	if !ok {
		return EditState{}
	}
	pending := ed.pending
	return EditState{Pending: &pending, Saving: ed.saving}
}

// LastError returns the message of the most recent failed save
func (e *StockEditor) LastError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastError
}
