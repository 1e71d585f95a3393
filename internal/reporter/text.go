package reporter

import (
	"fmt"
	"strings"

	"github.com/zoyaahmed04/sales-analytics-system/internal/analytics"
)

const timestampLayout = "2006-01-02 15:04:05"

var (
	banner = strings.Repeat("=", 50)
	rule   = strings.Repeat("-", 50)
)

func (rg *ReportGenerator) renderText(data *ReportData, w *strings.Builder) {
	results := data.Analytics

	fmt.Fprintln(w, banner)
	fmt.Fprintln(w, "        SALES ANALYTICS REPORT")
	fmt.Fprintf(w, "   Generated: %s\n", data.GeneratedAt.Format(timestampLayout))
	fmt.Fprintf(w, "   Records Processed: %d\n", results.TransactionCount)
	fmt.Fprintln(w, banner)
	fmt.Fprintln(w)

	rg.printOverallSummary(results, w)
	rg.printRegionTable(results, w)
	rg.printTopProducts(results, w)
	rg.printTopCustomers(results, w)
	rg.printDailyTrend(results, w)
	rg.printProductPerformance(results, w)
	rg.printEnrichmentSummary(data, w)
}

func section(w *strings.Builder, title string) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, rule)
}

func (rg *ReportGenerator) printOverallSummary(results *analytics.Results, w *strings.Builder) {
	dateRange := "N/A"
	if results.DateRange != nil {
		dateRange = fmt.Sprintf("%s to %s", results.DateRange.Start, results.DateRange.End)
	}

	section(w, "OVERALL SUMMARY")
	fmt.Fprintf(w, "Total Revenue:        %s\n", rg.money.amount(results.TotalRevenue, 2))
	fmt.Fprintf(w, "Total Transactions:   %d\n", results.TransactionCount)
	fmt.Fprintf(w, "Average Order Value:  %s\n", rg.money.amount(results.AverageOrderValue, 2))
	fmt.Fprintf(w, "Date Range:           %s\n\n", dateRange)
}

func (rg *ReportGenerator) printRegionTable(results *analytics.Results, w *strings.Builder) {
	section(w, "REGION-WISE PERFORMANCE")
	fmt.Fprintln(w, "Region    Sales        % of Total   Transactions")
	for _, r := range results.Regions {
		fmt.Fprintf(w, "%-9s %s   %s        %d\n",
			r.Region,
			rg.money.padded(r.TotalSales, 0, 10),
			percent(r.Percentage, 6),
			r.TransactionCount)
	}
	fmt.Fprintln(w)
}

func (rg *ReportGenerator) printTopProducts(results *analytics.Results, w *strings.Builder) {
	section(w, fmt.Sprintf("TOP %d PRODUCTS", rg.config.TopProducts))
	fmt.Fprintln(w, "Rank  Product Name              Qty   Revenue")
	for i, p := range rg.topProducts(results) {
		fmt.Fprintf(w, "%-5d %-25s %-5d %s\n", i+1, p.Name, p.Quantity, rg.money.amount(p.Revenue, 0))
	}
	fmt.Fprintln(w)
}

func (rg *ReportGenerator) printTopCustomers(results *analytics.Results, w *strings.Builder) {
	section(w, fmt.Sprintf("TOP %d CUSTOMERS", rg.config.TopCustomers))
	fmt.Fprintln(w, "Rank  Customer ID   Total Spent    Orders")
	for i, c := range rg.topCustomers(results) {
		fmt.Fprintf(w, "%-5d %-12s %s    %d\n", i+1, c.CustomerID, rg.money.padded(c.TotalSpent, 0, 10), c.PurchaseCount)
	}
	fmt.Fprintln(w)
}

func (rg *ReportGenerator) printDailyTrend(results *analytics.Results, w *strings.Builder) {
	section(w, "DAILY SALES TREND")
	fmt.Fprintln(w, "Date         Revenue       Tx   Customers")
	for _, d := range results.DailyTrend {
		fmt.Fprintf(w, "%s   %s   %-4d %d\n", d.Date, rg.money.padded(d.Revenue, 0, 10), d.TransactionCount, d.UniqueCustomers)
	}
	fmt.Fprintln(w)
}

func (rg *ReportGenerator) printProductPerformance(results *analytics.Results, w *strings.Builder) {
	section(w, "PRODUCT PERFORMANCE ANALYSIS")

	peak := results.PeakDay
	date := peak.Date
	if !peak.Found {
		date = "None"
	}
	fmt.Fprintf(w, "Best Selling Day: %s (%s, %d transactions)\n\n", date, rg.money.amount(peak.Revenue, 0), peak.TransactionCount)

	fmt.Fprintln(w, "Low Performing Products:")
	if len(results.LowPerformers) == 0 {
		fmt.Fprintln(w, "None")
	}
	for _, p := range results.LowPerformers {
		fmt.Fprintf(w, "- %s: %d units, %s\n", p.Name, p.Quantity, rg.money.amount(p.Revenue, 0))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Average Transaction Value per Region:")
	for _, r := range results.RegionAverages {
		fmt.Fprintf(w, "- %s: %s\n", r.Region, rg.money.amount(r.Average, 2))
	}
	fmt.Fprintln(w)
}

func (rg *ReportGenerator) printEnrichmentSummary(data *ReportData, w *strings.Builder) {
	summary := data.Enrichment

	section(w, "API ENRICHMENT SUMMARY")
	fmt.Fprintf(w, "Total Products Enriched: %d\n", summary.Total)
	fmt.Fprintf(w, "Success Rate: %.2f%%\n", summary.SuccessRate)
	fmt.Fprintln(w, "Products Not Enriched:")
	if len(summary.Unmatched) == 0 {
		fmt.Fprintln(w, "None")
	}
	for _, name := range summary.Unmatched {
		fmt.Fprintf(w, "- %s\n", name)
	}
}
