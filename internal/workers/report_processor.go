// internal/workers/report_processor.go
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
	"github.com/ammerola/poultry-storefront/internal/core/services"
	"github.com/ammerola/poultry-storefront/internal/pkg/logger"
)

const (
	TypeReportArchive = "report:archive"
)

// ReportArchivePayload is the payload of a report:archive task
type ReportArchivePayload struct {
	ReportID int64 `json:"report_id"`
}

// NewReportArchiveTask builds the task for archiving one report
func NewReportArchiveTask(reportID int64) (*asynq.Task, error) {
	if reportID <= 0 {
		return nil, fmt.Errorf("invalid report id %d", reportID)
	}
	b, err := json.Marshal(ReportArchivePayload{ReportID: reportID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeReportArchive, b), nil
}

// ReportArchiver is the part of the report service the processor drives
type ReportArchiver interface {
	ArchiveReport(ctx context.Context, id int64) (string, error)
}

// ReportProcessor handles report archive tasks
type ReportProcessor struct {
	reports ReportArchiver
	logger  *slog.Logger
}

// NewReportProcessor creates a new report processor
func NewReportProcessor(reports ReportArchiver, logger *slog.Logger) *ReportProcessor {
	return &ReportProcessor{
		reports: reports,
		logger:  logger.With(slog.String("processor", "report_archive")),
	}
}

// ProcessReportArchive downloads a ready report and stores it in the archive.
// Pending reports are retried; unknown reports and a missing archive are not.
func (p *ReportProcessor) ProcessReportArchive(ctx context.Context, t *asynq.Task) error {
	start := time.Now()

	var payload ReportArchivePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}
	if payload.ReportID <= 0 {
		return fmt.Errorf("invalid report id %d: %w", payload.ReportID, asynq.SkipRetry)
	}

	if id, ok := asynq.GetTaskID(ctx); ok {
		ctx = logger.WithTaskID(ctx, id)
	}
	log := p.logger.With(slog.Int64("report_id", payload.ReportID))
	log.InfoContext(ctx, "archiving report")

	location, err := p.reports.ArchiveReport(ctx, payload.ReportID)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, services.ErrNoArchive):
		log.WarnContext(ctx, "report archive skipped", slog.String("error", err.Error()))
		return fmt.Errorf("archive report %d: %w: %w", payload.ReportID, err, asynq.SkipRetry)
	default:
		log.ErrorContext(ctx, "report archive failed", slog.String("error", err.Error()))
		return fmt.Errorf("archive report %d: %w", payload.ReportID, err)
	}

	log.InfoContext(ctx, "report archived",
		slog.String("location", location),
		slog.Duration("duration", time.Since(start)))
	return nil
}
