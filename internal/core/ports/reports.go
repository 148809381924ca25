// internal/core/ports/reports.go
package ports

import (
	"context"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
)

// ReportAPI defines the seller export endpoints
type ReportAPI interface {
	CreateReport(ctx context.Context, req domain.ReportRequest) (*domain.OrderReport, error)
	ListReports(ctx context.Context) ([]domain.OrderReport, error)
	DownloadReport(ctx context.Context, id int64) ([]byte, error)
}

// StatsAPI defines the seller statistics endpoint
type StatsAPI interface {
	SellerStats(ctx context.Context) (*domain.SellerStats, error)
}

// ReportArchive stores downloaded report files
type ReportArchive interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// TaskQueue schedules background work
type TaskQueue interface {
	EnqueueReportArchive(ctx context.Context, reportID int64) (string, error)
}
