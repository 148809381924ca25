// internal/handlers/reports.go
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
	"github.com/ammerola/poultry-storefront/internal/core/services"
)

// ReportHandler serves seller exports and statistics
type ReportHandler struct {
	base
	reports *services.ReportService
	stats   *services.StatsService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports *services.ReportService, stats *services.StatsService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		base:    base{logger: logger.With(slog.String("handler", "reports"))},
		reports: reports,
		stats:   stats,
	}
}

// ArchiveResponse reports where an archive went, or the task that will do it
type ArchiveResponse struct {
	ReportID int64  `json:"report_id"`
	Location string `json:"location,omitempty"`
	TaskID   string `json:"task_id,omitempty"`
}

// GetStats handles GET /stats
func (h *ReportHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Stats(r.Context())
	if err != nil {
		h.respondServiceError(w, r, "get stats", err)
		return
	}
	h.respondJSON(w, http.StatusOK, stats)
}

// CreateReport handles POST /reports
func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req domain.ReportRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.reports.CreateReport(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, r, "create report", err)
		return
	}
	h.respondJSON(w, http.StatusCreated, report)
}

// ListReports handles GET /reports
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.ListReports(r.Context())
	if err != nil {
		h.respondServiceError(w, r, "list reports", err)
		return
	}
	if reports == nil {
		reports = []domain.OrderReport{}
	}
	h.respondJSON(w, http.StatusOK, reports)
}

// Summary handles GET /reports/{id}/summary
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	data, err := h.reports.DownloadReport(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, "download report", err)
		return
	}

	summary, err := services.SummarizeReport(data)
	if err != nil {
		h.respondError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, summary)
}

// Archive handles POST /reports/{id}/archive. With async=true the copy is
// handed to the worker queue and 202 is returned.
func (h *ReportHandler) Archive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	async, _ := strconv.ParseBool(r.URL.Query().Get("async"))
	if async {
		taskID, err := h.reports.EnqueueArchive(ctx, id)
		if err != nil {
			h.respondServiceError(w, r, "enqueue archive", err)
			return
		}
		h.respondJSON(w, http.StatusAccepted, ArchiveResponse{ReportID: id, TaskID: taskID})
		return
	}

	location, err := h.reports.ArchiveReport(ctx, id)
	if err != nil {
		h.respondServiceError(w, r, "archive report", err)
		return
	}
	h.respondJSON(w, http.StatusOK, ArchiveResponse{ReportID: id, Location: location})
}
