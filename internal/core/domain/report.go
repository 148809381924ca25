// internal/core/domain/report.go
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ReportType selects the period an export covers
type ReportType string

const (
	ReportDaily ReportType = "daily"
	ReportRange ReportType = "range"
)

// Report generation states reported by the backend
const (
	ReportStatusPending = "pending"
	ReportStatusReady   = "ready"
	ReportStatusFailed  = "failed"
)

// DateLayout is the wire format for report and filter dates
const DateLayout = "2006-01-02"

// OrderReport is a seller-generated export
type OrderReport struct {
	ID           int64      `json:"id"`
	ReportType   ReportType `json:"report_type"`
	StartDate    *string    `json:"start_date"`
	EndDate      *string    `json:"end_date"`
	Status       string     `json:"status"`
	FilePath     string     `json:"file_path"`
	CreatedAt    time.Time  `json:"created_at"`
	ErrorMessage *string    `json:"error_message,omitempty"`
}

// Ready reports whether the report file can be downloaded
func (r *OrderReport) Ready() bool {
	return r.Status == ReportStatusReady
}

// ArchiveKey is the object key a report is archived under
func (r *OrderReport) ArchiveKey() string {
	start := "undated"
	if r.StartDate != nil && *r.StartDate != "" {
		start = *r.StartDate
	}
	return fmt.Sprintf("reports/%s/%s/%d.xlsx", r.ReportType, start, r.ID)
}

// ReportRequest is the body posted to create a report
type ReportRequest struct {
	ReportType ReportType `json:"report_type"`
	StartDate  string     `json:"start_date"`
	EndDate    string     `json:"end_date,omitempty"`
}

// Validate checks the report type and date window
func (r *ReportRequest) Validate() error {
	start, err := time.Parse(DateLayout, r.StartDate)
	if err != nil {
		return fmt.Errorf("%w: start_date must be YYYY-MM-DD", ErrInvalidReport)
	}

	switch r.ReportType {
	case ReportDaily:
		if r.EndDate != "" {
			return fmt.Errorf("%w: daily reports take no end_date", ErrInvalidReport)
		}
	case ReportRange:
		end, err := time.Parse(DateLayout, r.EndDate)
		if err != nil {
			return fmt.Errorf("%w: end_date must be YYYY-MM-DD", ErrInvalidReport)
		}
		if end.Before(start) {
			return fmt.Errorf("%w: end_date before start_date", ErrInvalidReport)
		}
	default:
		return fmt.Errorf("%w: unknown report_type %q", ErrInvalidReport, r.ReportType)
	}
	return nil
}

// ReportSummary aggregates the rows of a downloaded report workbook
type ReportSummary struct {
	Rows      int                        `json:"rows"`
	Orders    int                        `json:"orders"`
	TotalKg   decimal.Decimal            `json:"total_kg"`
	ByProduct map[string]decimal.Decimal `json:"by_product"`
}
