package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/zoyaahmed04/sales-analytics-system/internal/models"
)

// Config controls the sizes and thresholds used by Analyze
type Config struct {
	TopProducts  int `json:"top_products"`
	TopCustomers int `json:"top_customers"`
	LowThreshold int `json:"low_threshold"`
}

// DefaultConfig returns the standard report sizes
func DefaultConfig() *Config {
	return &Config{
		TopProducts:  5,
		TopCustomers: 5,
		LowThreshold: 10,
	}
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.TopProducts <= 0 {
		return fmt.Errorf("top products must be positive, got %d", c.TopProducts)
	}
	if c.TopCustomers <= 0 {
		return fmt.Errorf("top customers must be positive, got %d", c.TopCustomers)
	}
	if c.LowThreshold <= 0 {
		return fmt.Errorf("low threshold must be positive, got %d", c.LowThreshold)
	}
	return nil
}

// DateRange holds the lexicographically smallest and largest dates
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// RegionAverage is the average transaction value in a region
type RegionAverage struct {
	Region  string          `json:"region"`
	Average decimal.Decimal `json:"average"`
}

// Results bundles every aggregation needed by the report
type Results struct {
	TransactionCount  int             `json:"transaction_count"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	DateRange         *DateRange      `json:"date_range,omitempty"`
	Regions           []RegionStats   `json:"regions"`
	TopProducts       []ProductStats  `json:"top_products"`
	Customers         []CustomerStats `json:"customers"`
	DailyTrend        []DailyStats    `json:"daily_trend"`
	PeakDay           PeakDay         `json:"peak_day"`
	LowPerformers     []ProductStats  `json:"low_performers"`
	RegionAverages    []RegionAverage `json:"region_averages"`
	LowThreshold      int             `json:"low_threshold"`
	TopCustomerCount  int             `json:"-"`
}

// TopCustomers returns the highest spending customers
func (r *Results) TopCustomers() []CustomerStats {
	if r.TopCustomerCount >= 0 && len(r.Customers) > r.TopCustomerCount {
		return r.Customers[:r.TopCustomerCount]
	}
	return r.Customers
}

// Analyze runs every aggregation over transactions
func Analyze(transactions []models.Transaction, config *Config) (*Results, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	results := &Results{
		TransactionCount:  len(transactions),
		TotalRevenue:      TotalRevenue(transactions),
		AverageOrderValue: decimal.Zero,
		DateRange:         FindDateRange(transactions),
		Regions:           RegionBreakdown(transactions),
		TopProducts:       TopProducts(transactions, config.TopProducts),
		Customers:         CustomerAnalysis(transactions),
		DailyTrend:        DailyTrend(transactions),
		LowPerformers:     LowPerformers(transactions, config.LowThreshold),
		LowThreshold:      config.LowThreshold,
		TopCustomerCount:  config.TopCustomers,
	}

	if results.TransactionCount > 0 {
		results.AverageOrderValue = results.TotalRevenue.Div(decimal.NewFromInt(int64(results.TransactionCount)))
	}
	results.PeakDay = PeakDayFromTrend(results.DailyTrend)

	results.RegionAverages = make([]RegionAverage, 0, len(results.Regions))
	for i := range results.Regions {
		results.RegionAverages = append(results.RegionAverages, RegionAverage{
			Region:  results.Regions[i].Region,
			Average: results.Regions[i].Average(),
		})
	}

	return results, nil
}

// FindDateRange returns nil when there are no transactions
func FindDateRange(transactions []models.Transaction) *DateRange {
	if len(transactions) == 0 {
		return nil
	}
	r := &DateRange{Start: transactions[0].Date, End: transactions[0].Date}
	for i := range transactions[1:] {
		date := transactions[i+1].Date
		if date < r.Start {
			r.Start = date
		}
		if date > r.End {
			r.End = date
		}
	}
	return r
}
