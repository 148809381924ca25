// internal/adapters/api/reports.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
)

const (
	createReportPath = "/orders/create_report/"
	reportsPath      = "/orders/reports/"
	statsPath        = "/orders/stats/"
)

func (c *Client) CreateReport(ctx context.Context, req domain.ReportRequest) (*domain.OrderReport, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var r domain.OrderReport
	if err := c.doJSON(ctx, http.MethodPost, createReportPath, nil, req, &r); err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	if r.ID <= 0 {
		return nil, &DecodeError{Endpoint: createReportPath, Err: fmt.Errorf("report id missing")}
	}
	return &r, nil
}

// ListReports accepts either a bare array or a paginated envelope
func (c *Client) ListReports(ctx context.Context) ([]domain.OrderReport, error) {
	data, err := c.send(ctx, http.MethodGet, reportsPath, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var reports []domain.OrderReport
		if err := json.Unmarshal(trimmed, &reports); err != nil {
			return nil, newDecodeError(reportsPath, data, err)
		}
		return reports, nil
	}

	var page domain.Page[domain.OrderReport]
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, newDecodeError(reportsPath, data, err)
	}
	if page.Results == nil {
		return nil, newDecodeError(reportsPath, data, fmt.Errorf("missing results"))
	}
	return page.Results, nil
}

// DownloadReport returns the raw workbook bytes
func (c *Client) DownloadReport(ctx context.Context, id int64) ([]byte, error) {
	path := ordersPath + strconv.FormatInt(id, 10) + "/download_report/"
	data, err := c.send(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download report %d: %w", id, err)
	}
	if len(data) == 0 {
		return nil, &DecodeError{Endpoint: path, Err: fmt.Errorf("empty report file")}
	}
	return data, nil
}

func (c *Client) SellerStats(ctx context.Context) (*domain.SellerStats, error) {
	var s domain.SellerStats
	if err := c.doJSON(ctx, http.MethodGet, statsPath, nil, nil, &s); err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}
	if s.TotalOrders < 0 || s.TotalCompleted > s.TotalOrders {
		return nil, &DecodeError{Endpoint: statsPath, Err: fmt.Errorf("inconsistent totals")}
	}
	return &s, nil
}
