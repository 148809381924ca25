// internal/core/services/reports.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
	"github.com/ammerola/poultry-storefront/internal/core/ports"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	ErrReportNotReady = errors.New("report is not ready")
	ErrNoArchive      = errors.New("report archive not configured")
	ErrNoQueue        = errors.New("task queue not configured")
)

// Report workbook columns
const (
	colOrderNumber = iota
	colBuyer
	colPhone
	colAddress
	colProduct
	colQuantityKg
	colOrderedAt
	colCompletedAt
)

// ReportService handles seller exports
type ReportService struct {
	api     ports.ReportAPI
	archive ports.ReportArchive
	queue   ports.TaskQueue
	logger  *slog.Logger
}

// NewReportService creates the service. archive and queue may be nil, which
// disables archiving.
func NewReportService(api ports.ReportAPI, archive ports.ReportArchive, queue ports.TaskQueue, logger *slog.Logger) *ReportService {
	return &ReportService{
		api:     api,
		archive: archive,
		queue:   queue,
		logger:  logger.With(slog.String("service", "reports")),
	}
}

func (s *ReportService) CreateReport(ctx context.Context, req domain.ReportRequest) (*domain.OrderReport, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	report, err := s.api.CreateReport(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "report requested",
		slog.Int64("report_id", report.ID),
		slog.String("type", string(report.ReportType)))
	return report, nil
}

func (s *ReportService) ListReports(ctx context.Context) ([]domain.OrderReport, error) {
	return s.api.ListReports(ctx)
}

func (s *ReportService) DownloadReport(ctx context.Context, id int64) ([]byte, error) {
	return s.api.DownloadReport(ctx, id)
}

// FindReport looks a report up by id in the seller's report list
func (s *ReportService) FindReport(ctx context.Context, id int64) (*domain.OrderReport, error) {
	reports, err := s.api.ListReports(ctx)
	if err != nil {
		return nil, err
	}
	for i := range reports {
		if reports[i].ID == id {
			return &reports[i], nil
		}
	}
	return nil, fmt.Errorf("report %d: %w", id, domain.ErrNotFound)
}

// ArchiveReport copies a ready report into the archive and returns its
// location. A report already archived is not uploaded again.
func (s *ReportService) ArchiveReport(ctx context.Context, id int64) (string, error) {
	if s.archive == nil {
		return "", ErrNoArchive
	}

	report, err := s.FindReport(ctx, id)
	if err != nil {
		return "", err
	}
	if !report.Ready() {
		return "", fmt.Errorf("report %d (%s): %w", id, report.Status, ErrReportNotReady)
	}

	key := report.ArchiveKey()
	exists, err := s.archive.Exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to check archive: %w", err)
	}
	if exists {
		s.logger.DebugContext(ctx, "report already archived", slog.String("key", key))
		return key, nil
	}

	data, err := s.api.DownloadReport(ctx, id)
	if err != nil {
		return "", err
	}
	location, err := s.archive.Upload(ctx, key, data, xlsxContentType)
	if err != nil {
		return "", fmt.Errorf("failed to archive report %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "report archived",
		slog.Int64("report_id", id),
		slog.String("location", location),
		slog.Int("bytes", len(data)))
	return location, nil
}

// EnqueueArchive schedules ArchiveReport on the background worker
func (s *ReportService) EnqueueArchive(ctx context.Context, id int64) (string, error) {
	if s.queue == nil {
		return "", ErrNoQueue
	}
	taskID, err := s.queue.EnqueueReportArchive(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue report archive: %w", err)
	}
	return taskID, nil
}

// SummarizeReport totals the order lines of a report workbook. The first
// row of the first sheet is the header; blank rows are skipped.
func SummarizeReport(data []byte) (*domain.ReportSummary, error) {
	file, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	if len(file.Sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	summary := &domain.ReportSummary{
		TotalKg:   decimal.Zero,
		ByProduct: make(map[string]decimal.Decimal),
	}
	orders := make(map[string]struct{})

	rowNum := 0
	err = file.Sheets[0].ForEachRow(func(r *xlsx.Row) error {
		rowNum++
		if rowNum == 1 {
			return nil
		}

		var cells []string
		if err := r.ForEachCell(func(c *xlsx.Cell) error {
			cells = append(cells, strings.TrimSpace(c.Value))
			return nil
		}); err != nil {
			return err
		}
		if blankRow(cells) {
			return nil
		}
		if len(cells) <= colQuantityKg {
			return fmt.Errorf("row %d: expected at least %d columns, got %d", rowNum, colQuantityKg+1, len(cells))
		}

		kg, err := decimal.NewFromString(cells[colQuantityKg])
		if err != nil {
			return fmt.Errorf("row %d: invalid quantity %q", rowNum, cells[colQuantityKg])
		}

		summary.Rows++
		summary.TotalKg = summary.TotalKg.Add(kg)
		product := cells[colProduct]
		summary.ByProduct[product] = summary.ByProduct[product].Add(kg)
		orders[cells[colOrderNumber]] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	summary.Orders = len(orders)
	return summary, nil
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
