// internal/core/domain/stats.go
package domain

import "github.com/shopspring/decimal"

// ProductTypeStats is the per-cut breakdown in seller stats
type ProductTypeStats struct {
	Orders     int             `json:"orders"`
	QuantityKg decimal.Decimal `json:"quantity_kg"`
}

// DayStats is one day of the trailing week
type DayStats struct {
	Date            string          `json:"date"`
	Count           int             `json:"count"`
	CompletedWeight decimal.Decimal `json:"completed_weight"`
}

// StatsMetrics carries day-over-day and week-over-week deltas
type StatsMetrics struct {
	TodayCount       int     `json:"today_count"`
	YesterdayCount   int     `json:"yesterday_count"`
	DayCountDeltaPct float64 `json:"day_count_delta_pct"`
	Last7Total       int     `json:"last7_total"`
	Prev7Total       int     `json:"prev7_total"`
	WeekCountDelta   float64 `json:"week_count_delta_pct"`
}

// SellerStats is the aggregate returned by the stats endpoint
type SellerStats struct {
	TotalOrders          int                         `json:"total_orders"`
	TotalCompleted       int                         `json:"total_completed"`
	TotalWeightCompleted decimal.Decimal             `json:"total_weight_completed"`
	StatusBreakdown      map[string]int              `json:"status_breakdown"`
	ProductTypeBreakdown map[string]ProductTypeStats `json:"product_type_breakdown"`
	Last7Days            []DayStats                  `json:"last7days"`
	Metrics              *StatsMetrics               `json:"metrics,omitempty"`
}

// CompletionRate is the share of orders that reached completed
func (s *SellerStats) CompletionRate() float64 {
	if s.TotalOrders == 0 {
		return 0
	}
	return float64(s.TotalCompleted) / float64(s.TotalOrders)
}
