package reporter

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/zoyaahmed04/sales-analytics-system/internal/analytics"
	"github.com/zoyaahmed04/sales-analytics-system/internal/enricher"
	"github.com/zoyaahmed04/sales-analytics-system/internal/validator"
)

type jsonOverall struct {
	TotalRevenue      decimal.Decimal      `json:"total_revenue"`
	TotalTransactions int                  `json:"total_transactions"`
	AverageOrderValue decimal.Decimal      `json:"average_order_value"`
	DateRange         *analytics.DateRange `json:"date_range"`
}

type jsonReport struct {
	RunID            string                    `json:"run_id,omitempty"`
	GeneratedAt      time.Time                 `json:"generated_at"`
	CurrencySymbol   string                    `json:"currency_symbol"`
	RecordsProcessed int                       `json:"records_processed"`
	Overall          jsonOverall               `json:"overall_summary"`
	Regions          []analytics.RegionStats   `json:"region_performance"`
	TopProducts      []analytics.ProductStats  `json:"top_products"`
	TopCustomers     []analytics.CustomerStats `json:"top_customers"`
	DailyTrend       []analytics.DailyStats    `json:"daily_trend"`
	PeakDay          *analytics.PeakDay        `json:"best_selling_day"`
	LowPerformers    []analytics.ProductStats  `json:"low_performing_products"`
	LowThreshold     int                       `json:"low_performer_threshold"`
	RegionAverages   []analytics.RegionAverage `json:"region_averages"`
	Enrichment       *enricher.Summary         `json:"api_enrichment"`
	Filter           *validator.Summary        `json:"filter_summary,omitempty"`
}

func (rg *ReportGenerator) buildJSONReport(data *ReportData) *jsonReport {
	results := data.Analytics

	var peak *analytics.PeakDay
	if results.PeakDay.Found {
		p := results.PeakDay
		peak = &p
	}

	return &jsonReport{
		RunID:            data.RunID,
		GeneratedAt:      data.GeneratedAt,
		CurrencySymbol:   rg.config.CurrencySymbol,
		RecordsProcessed: results.TransactionCount,
		Overall: jsonOverall{
			TotalRevenue:      results.TotalRevenue,
			TotalTransactions: results.TransactionCount,
			AverageOrderValue: results.AverageOrderValue,
			DateRange:         results.DateRange,
		},
		Regions:        nonNil(results.Regions),
		TopProducts:    nonNil(rg.topProducts(results)),
		TopCustomers:   nonNil(rg.topCustomers(results)),
		DailyTrend:     nonNil(results.DailyTrend),
		PeakDay:        peak,
		LowPerformers:  nonNil(results.LowPerformers),
		LowThreshold:   results.LowThreshold,
		RegionAverages: nonNil(results.RegionAverages),
		Enrichment:     data.Enrichment,
		Filter:         data.Filter,
	}
}

// nonNil keeps empty sections as [] rather than null
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
