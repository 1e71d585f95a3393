package analytics

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/zoyaahmed04/sales-analytics-system/internal/models"
)

func sale(id, date, product, customer, region string, qty int, price string) models.Transaction {
	return models.Transaction{
		TransactionID: id,
		Date:          date,
		ProductID:     "P101",
		ProductName:   product,
		Quantity:      qty,
		UnitPrice:     decimal.RequireFromString(price),
		CustomerID:    customer,
		Region:        region,
	}.WithAmount()
}

func sampleTransactions() []models.Transaction {
	return []models.Transaction{
		sale("T001", "2024-12-02", "Laptop", "C001", "North", 1, "45000"),
		sale("T002", "2024-12-01", "Mouse", "C002", "South", 4, "500"),
		sale("T003", "2024-12-01", "Keyboard", "C001", "North", 2, "1500.50"),
		sale("T004", "2024-12-03", "Mouse", "C003", "East", 10, "450"),
		sale("T005", "2024-12-02", "USB Cable", "C002", "South", 20, "99.99"),
		sale("T006", "2024-12-03", "Laptop", "C003", "East", 1, "47000"),
	}
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTotalRevenue(t *testing.T) {
	got := TotalRevenue(sampleTransactions())
	want := d("45000").Add(d("2000")).Add(d("3001")).Add(d("4500")).Add(d("1999.8")).Add(d("47000"))
	if !got.Equal(want) {
		t.Errorf("TotalRevenue() = %s, want %s", got, want)
	}
	if !TotalRevenue(nil).IsZero() {
		t.Error("TotalRevenue(nil) should be zero")
	}
}

func TestRegionBreakdown(t *testing.T) {
	txs := sampleTransactions()
	regions := RegionBreakdown(txs)

	if len(regions) != 3 {
		t.Fatalf("Expected 3 regions, got %d", len(regions))
	}
	order := []string{"East", "North", "South"}
	for i, name := range order {
		if regions[i].Region != name {
			t.Errorf("position %d: expected %s, got %s", i, name, regions[i].Region)
		}
	}

	sumSales := decimal.Zero
	sumPct := decimal.Zero
	for _, r := range regions {
		sumSales = sumSales.Add(r.TotalSales)
		sumPct = sumPct.Add(r.Percentage)
	}
	if !sumSales.Equal(TotalRevenue(txs)) {
		t.Errorf("region sales %s do not add up to total %s", sumSales, TotalRevenue(txs))
	}
	if sumPct.Sub(hundred).Abs().GreaterThan(d("0.1")) {
		t.Errorf("percentages add up to %s, want ~100", sumPct)
	}
}

func TestRegionBreakdown_TiesKeepFirstSeen(t *testing.T) {
	txs := []models.Transaction{
		sale("T001", "2024-01-01", "A", "C001", "West", 1, "10"),
		sale("T002", "2024-01-01", "A", "C001", "East", 1, "10"),
		sale("T003", "2024-01-01", "A", "C001", "North", 1, "30"),
	}
	regions := RegionBreakdown(txs)
	if regions[0].Region != "North" || regions[1].Region != "West" || regions[2].Region != "East" {
		t.Errorf("unexpected order: %s, %s, %s", regions[0].Region, regions[1].Region, regions[2].Region)
	}
}

func TestTopProducts(t *testing.T) {
	txs := sampleTransactions()

	tests := []struct {
		name  string
		n     int
		names []string
	}{
		{name: "Top 2", n: 2, names: []string{"USB Cable", "Mouse"}},
		{name: "All", n: 10, names: []string{"USB Cable", "Mouse", "Laptop", "Keyboard"}},
		{name: "Zero", n: 0, names: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := TopProducts(txs, tt.n)
			if len(products) != len(tt.names) {
				t.Fatalf("Expected %d products, got %d", len(tt.names), len(products))
			}
			for i, name := range tt.names {
				if products[i].Name != name {
					t.Errorf("position %d: expected %s, got %s", i, name, products[i].Name)
				}
				if i > 0 && products[i].Quantity > products[i-1].Quantity {
					t.Errorf("quantities not non-increasing at %d", i)
				}
			}
		})
	}

	mouse := TopProducts(txs, 2)[1]
	if mouse.Quantity != 14 || !mouse.Revenue.Equal(d("6500")) {
		t.Errorf("Expected Mouse 14 units / 6500, got %d / %s", mouse.Quantity, mouse.Revenue)
	}
}

func TestTopProducts_StableOnTies(t *testing.T) {
	txs := []models.Transaction{
		sale("T001", "2024-01-01", "Beta", "C001", "North", 3, "1"),
		sale("T002", "2024-01-01", "Alpha", "C001", "North", 3, "1"),
		sale("T003", "2024-01-01", "Gamma", "C001", "North", 3, "1"),
	}
	products := TopProducts(txs, 3)
	if products[0].Name != "Beta" || products[1].Name != "Alpha" || products[2].Name != "Gamma" {
		t.Errorf("ties should keep input order, got %v", products)
	}
}

func TestCustomerAnalysis(t *testing.T) {
	customers := CustomerAnalysis(sampleTransactions())

	if len(customers) != 3 {
		t.Fatalf("Expected 3 customers, got %d", len(customers))
	}
	if customers[0].CustomerID != "C003" || customers[1].CustomerID != "C001" || customers[2].CustomerID != "C002" {
		t.Errorf("unexpected order: %s %s %s", customers[0].CustomerID, customers[1].CustomerID, customers[2].CustomerID)
	}

	for _, c := range customers {
		want := c.TotalSpent.Div(decimal.NewFromInt(int64(c.PurchaseCount))).RoundBank(2)
		if !c.AvgOrderValue.Equal(want) {
			t.Errorf("%s: avg %s, want %s", c.CustomerID, c.AvgOrderValue, want)
		}
	}

	c001 := customers[1]
	if c001.PurchaseCount != 2 || !c001.AvgOrderValue.Equal(d("24000.5")) {
		t.Errorf("C001: got count %d avg %s", c001.PurchaseCount, c001.AvgOrderValue)
	}
	if len(c001.ProductsBought) != 2 || c001.ProductsBought[0] != "Laptop" || c001.ProductsBought[1] != "Keyboard" {
		t.Errorf("C001 products: %v", c001.ProductsBought)
	}
}

func TestCustomerAnalysis_DistinctProducts(t *testing.T) {
	txs := []models.Transaction{
		sale("T001", "2024-01-01", "Mouse", "C001", "North", 1, "3"),
		sale("T002", "2024-01-02", "Mouse", "C001", "North", 1, "3"),
		sale("T003", "2024-01-03", "Mouse", "C001", "North", 1, "4"),
	}
	c := CustomerAnalysis(txs)[0]
	if len(c.ProductsBought) != 1 {
		t.Errorf("Expected one distinct product, got %v", c.ProductsBought)
	}
	if !c.AvgOrderValue.Equal(d("3.33")) {
		t.Errorf("Expected avg 3.33, got %s", c.AvgOrderValue)
	}
}

func TestDailyTrend(t *testing.T) {
	trend := DailyTrend(sampleTransactions())

	if len(trend) != 3 {
		t.Fatalf("Expected 3 days, got %d", len(trend))
	}
	for i := 1; i < len(trend); i++ {
		if trend[i-1].Date > trend[i].Date {
			t.Errorf("dates not ascending: %s > %s", trend[i-1].Date, trend[i].Date)
		}
	}

	first := trend[0]
	if first.Date != "2024-12-01" || first.TransactionCount != 2 || first.UniqueCustomers != 2 {
		t.Errorf("unexpected first day: %+v", first)
	}
	if !first.Revenue.Equal(d("5001")) {
		t.Errorf("Expected revenue 5001, got %s", first.Revenue)
	}
	if trend[2].UniqueCustomers != 1 || trend[2].TransactionCount != 2 {
		t.Errorf("Expected one customer with two transactions on 2024-12-03, got %+v", trend[2])
	}
}

func TestFindPeakDay(t *testing.T) {
	peak := FindPeakDay(sampleTransactions())
	if !peak.Found || peak.Date != "2024-12-03" || peak.TransactionCount != 2 || !peak.Revenue.Equal(d("51500")) {
		t.Errorf("unexpected peak: %+v", peak)
	}
}

func TestFindPeakDay_EarliestTieWins(t *testing.T) {
	txs := []models.Transaction{
		sale("T001", "2024-01-03", "A", "C001", "North", 1, "100"),
		sale("T002", "2024-01-01", "A", "C001", "North", 1, "100"),
		sale("T003", "2024-01-02", "A", "C001", "North", 1, "50"),
	}
	peak := FindPeakDay(txs)
	if peak.Date != "2024-01-01" {
		t.Errorf("Expected earliest tied date 2024-01-01, got %s", peak.Date)
	}
}

func TestFindPeakDay_Empty(t *testing.T) {
	peak := FindPeakDay(nil)
	if peak.Found || peak.Date != "" || !peak.Revenue.IsZero() || peak.TransactionCount != 0 {
		t.Errorf("Expected empty peak, got %+v", peak)
	}
}

func TestLowPerformers(t *testing.T) {
	txs := sampleTransactions()

	low := LowPerformers(txs, 10)
	if len(low) != 2 || low[0].Name != "Laptop" || low[1].Name != "Keyboard" {
		t.Fatalf("unexpected low performers: %v", low)
	}

	for _, threshold := range []int{1, 3, 15, 100} {
		low := LowPerformers(txs, threshold)
		included := make(map[string]bool)
		for _, p := range low {
			included[p.Name] = true
			if p.Quantity >= threshold {
				t.Errorf("threshold %d: %s has quantity %d", threshold, p.Name, p.Quantity)
			}
		}
		for _, p := range groupProducts(txs) {
			if p.Quantity < threshold && !included[p.Name] {
				t.Errorf("threshold %d: missing %s", threshold, p.Name)
			}
		}
	}
}

func TestAnalyze(t *testing.T) {
	results, err := Analyze(sampleTransactions(), nil)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if results.TransactionCount != 6 {
		t.Errorf("Expected 6 transactions, got %d", results.TransactionCount)
	}
	if results.DateRange == nil || results.DateRange.Start != "2024-12-01" || results.DateRange.End != "2024-12-03" {
		t.Errorf("unexpected date range: %+v", results.DateRange)
	}
	if !results.AverageOrderValue.Equal(results.TotalRevenue.Div(decimal.NewFromInt(6))) {
		t.Errorf("unexpected average order value %s", results.AverageOrderValue)
	}
	if len(results.RegionAverages) != len(results.Regions) {
		t.Errorf("Expected one average per region")
	}
	if results.RegionAverages[0].Region != "East" || !results.RegionAverages[0].Average.Equal(d("25750")) {
		t.Errorf("unexpected East average: %+v", results.RegionAverages[0])
	}
	if len(results.TopCustomers()) != 3 {
		t.Errorf("Expected 3 top customers, got %d", len(results.TopCustomers()))
	}
}

func TestAnalyze_Empty(t *testing.T) {
	results, err := Analyze(nil, DefaultConfig())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if results.DateRange != nil || !results.AverageOrderValue.IsZero() || results.PeakDay.Found {
		t.Errorf("Expected empty results, got %+v", results)
	}
	if len(results.Regions) != 0 || len(results.TopProducts) != 0 {
		t.Error("Expected no groups")
	}
}

func TestAnalyze_InvalidConfig(t *testing.T) {
	if _, err := Analyze(nil, &Config{TopProducts: 0, TopCustomers: 5, LowThreshold: 10}); err == nil {
		t.Error("Expected error for zero top products")
	}
}

func TestScenario_SingleValidNorthSale(t *testing.T) {
	txs := []models.Transaction{sale("T001", "2024-01-01", "Widget", "C001", "North", 5, "10.0")}

	if !TotalRevenue(txs).Equal(d("50")) {
		t.Errorf("Expected revenue 50, got %s", TotalRevenue(txs))
	}
	regions := RegionBreakdown(txs)
	if len(regions) != 1 || regions[0].Region != "North" || !regions[0].TotalSales.Equal(d("50")) ||
		regions[0].TransactionCount != 1 || !regions[0].Percentage.Equal(hundred) {
		t.Errorf("unexpected breakdown: %+v", regions)
	}
	peak := FindPeakDay(txs)
	if peak.Date != "2024-01-01" || !peak.Revenue.Equal(d("50")) || peak.TransactionCount != 1 {
		t.Errorf("unexpected peak: %+v", peak)
	}
}
