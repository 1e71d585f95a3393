// Package analytics computes the sales aggregations over validated
// transactions. Every function is pure: inputs are never modified.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/zoyaahmed04/sales-analytics-system/internal/models"
)

var hundred = decimal.NewFromInt(100)

// RegionStats is the aggregate for one region
type RegionStats struct {
	Region           string          `json:"region"`
	TotalSales       decimal.Decimal `json:"total_sales"`
	TransactionCount int             `json:"transaction_count"`
	Percentage       decimal.Decimal `json:"percentage"`
}

// Average returns total sales divided by transaction count
func (r *RegionStats) Average() decimal.Decimal {
	if r.TransactionCount == 0 {
		return decimal.Zero
	}
	return r.TotalSales.Div(decimal.NewFromInt(int64(r.TransactionCount)))
}

// ProductStats is the aggregate for one product name
type ProductStats struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// CustomerStats is the aggregate for one customer
type CustomerStats struct {
	CustomerID     string          `json:"customer_id"`
	TotalSpent     decimal.Decimal `json:"total_spent"`
	PurchaseCount  int             `json:"purchase_count"`
	AvgOrderValue  decimal.Decimal `json:"avg_order_value"`
	ProductsBought []string        `json:"products_bought"`
}

// DailyStats is the aggregate for one date
type DailyStats struct {
	Date             string          `json:"date"`
	Revenue          decimal.Decimal `json:"revenue"`
	TransactionCount int             `json:"transaction_count"`
	UniqueCustomers  int             `json:"unique_customers"`
}

// PeakDay is the date with the highest revenue. Found is false when there
// were no transactions.
type PeakDay struct {
	Date             string          `json:"date"`
	Revenue          decimal.Decimal `json:"revenue"`
	TransactionCount int             `json:"transaction_count"`
	Found            bool            `json:"found"`
}

// TotalRevenue sums quantity × unit price over all transactions
func TotalRevenue(transactions []models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for i := range transactions {
		total = total.Add(transactions[i].LineTotal())
	}
	return total
}

// RegionBreakdown groups sales by region, ordered by total sales descending.
// Ties keep the order in which regions were first seen.
func RegionBreakdown(transactions []models.Transaction) []RegionStats {
	total := TotalRevenue(transactions)
	index := make(map[string]int)
	var regions []RegionStats

	for i := range transactions {
		tx := &transactions[i]
		pos, ok := index[tx.Region]
		if !ok {
			pos = len(regions)
			index[tx.Region] = pos
			regions = append(regions, RegionStats{Region: tx.Region, TotalSales: decimal.Zero})
		}
		regions[pos].TotalSales = regions[pos].TotalSales.Add(tx.LineTotal())
		regions[pos].TransactionCount++
	}

	for i := range regions {
		regions[i].Percentage = percentage(regions[i].TotalSales, total)
	}

	sort.SliceStable(regions, func(a, b int) bool {
		return regions[a].TotalSales.GreaterThan(regions[b].TotalSales)
	})
	return regions
}

// TopProducts returns at most n products ordered by summed quantity
// descending. Ties keep first-seen order.
func TopProducts(transactions []models.Transaction, n int) []ProductStats {
	products := groupProducts(transactions)
	sort.SliceStable(products, func(a, b int) bool {
		return products[a].Quantity > products[b].Quantity
	})
	if n < 0 {
		n = 0
	}
	if len(products) > n {
		products = products[:n]
	}
	return products
}

// LowPerformers returns the products whose summed quantity is below
// threshold, ordered by quantity ascending.
func LowPerformers(transactions []models.Transaction, threshold int) []ProductStats {
	var low []ProductStats
	for _, p := range groupProducts(transactions) {
		if p.Quantity < threshold {
			low = append(low, p)
		}
	}
	sort.SliceStable(low, func(a, b int) bool {
		return low[a].Quantity < low[b].Quantity
	})
	return low
}

func groupProducts(transactions []models.Transaction) []ProductStats {
	index := make(map[string]int)
	var products []ProductStats

	for i := range transactions {
		tx := &transactions[i]
		pos, ok := index[tx.ProductName]
		if !ok {
			pos = len(products)
			index[tx.ProductName] = pos
			products = append(products, ProductStats{Name: tx.ProductName, Revenue: decimal.Zero})
		}
		products[pos].Quantity += tx.Quantity
		products[pos].Revenue = products[pos].Revenue.Add(tx.LineTotal())
	}
	return products
}

// CustomerAnalysis groups transactions by customer, ordered by total spent
// descending. ProductsBought lists distinct names in first-purchase order.
func CustomerAnalysis(transactions []models.Transaction) []CustomerStats {
	index := make(map[string]int)
	seen := make(map[string]map[string]struct{})
	var customers []CustomerStats

	for i := range transactions {
		tx := &transactions[i]
		pos, ok := index[tx.CustomerID]
		if !ok {
			pos = len(customers)
			index[tx.CustomerID] = pos
			seen[tx.CustomerID] = make(map[string]struct{})
			customers = append(customers, CustomerStats{CustomerID: tx.CustomerID, TotalSpent: decimal.Zero})
		}
		c := &customers[pos]
		c.TotalSpent = c.TotalSpent.Add(tx.LineTotal())
		c.PurchaseCount++
		if _, dup := seen[tx.CustomerID][tx.ProductName]; !dup {
			seen[tx.CustomerID][tx.ProductName] = struct{}{}
			c.ProductsBought = append(c.ProductsBought, tx.ProductName)
		}
	}

	for i := range customers {
		c := &customers[i]
		c.AvgOrderValue = c.TotalSpent.Div(decimal.NewFromInt(int64(c.PurchaseCount))).RoundBank(2)
	}

	sort.SliceStable(customers, func(a, b int) bool {
		return customers[a].TotalSpent.GreaterThan(customers[b].TotalSpent)
	})
	return customers
}

// DailyTrend groups transactions by date. Dates are compared as plain
// strings, so the result is only chronological for sortable formats such
// as YYYY-MM-DD.
func DailyTrend(transactions []models.Transaction) []DailyStats {
	index := make(map[string]int)
	customers := make(map[string]map[string]struct{})
	var days []DailyStats

	for i := range transactions {
		tx := &transactions[i]
		pos, ok := index[tx.Date]
		if !ok {
			pos = len(days)
			index[tx.Date] = pos
			customers[tx.Date] = make(map[string]struct{})
			days = append(days, DailyStats{Date: tx.Date, Revenue: decimal.Zero})
		}
		days[pos].Revenue = days[pos].Revenue.Add(tx.LineTotal())
		days[pos].TransactionCount++
		customers[tx.Date][tx.CustomerID] = struct{}{}
	}

	for i := range days {
		days[i].UniqueCustomers = len(customers[days[i].Date])
	}

	sort.Slice(days, func(a, b int) bool {
		return days[a].Date < days[b].Date
	})
	return days
}

// FindPeakDay returns the earliest date with the highest revenue
func FindPeakDay(transactions []models.Transaction) PeakDay {
	return PeakDayFromTrend(DailyTrend(transactions))
}

// PeakDayFromTrend scans an ascending daily trend. Only a strictly greater
// revenue replaces the current peak.
func PeakDayFromTrend(trend []DailyStats) PeakDay {
	peak := PeakDay{Revenue: decimal.Zero}
	for _, day := range trend {
		if day.Revenue.GreaterThan(peak.Revenue) {
			peak = PeakDay{
				Date:             day.Date,
				Revenue:          day.Revenue,
				TransactionCount: day.TransactionCount,
				Found:            true,
			}
		}
	}
	return peak
}

func percentage(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Div(total).Mul(hundred).RoundBank(2)
}
