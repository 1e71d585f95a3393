package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zoyaahmed04/sales-analytics-system/internal/enricher"
	"github.com/zoyaahmed04/sales-analytics-system/internal/models"
	"github.com/zoyaahmed04/sales-analytics-system/internal/validator"
	"github.com/zoyaahmed04/sales-analytics-system/pkg/errors"
)

const salesData = `TransactionID|Date|ProductID|ProductName|Quantity|UnitPrice|CustomerID|Region
T001|2024-12-01|P101|Laptop|2|45,000|C001|North
T002|2024-12-01|P102|Mouse,Wireless|10|500|C002|South

T003|2024-12-02|P103|Keyboard|3|1500|C001|North
T004|2024-12-02|P104|Monitor|0|12000|C003|East
X005|2024-12-03|P105|Webcam|1|3000|C004|West
T006|2024-12-03|P106|Headphones|abc|1500|C005|North
T007|2024-12-03|PXYZ|Cable|4|250|C002|South
T008|2024-12-03|P101|Laptop|1|45000|C006
`

type fakeCatalog struct {
	products []models.CatalogProduct
	err      error
	calls    int
}

func (f *fakeCatalog) FetchProducts(ctx context.Context) ([]models.CatalogProduct, error) {
	f.calls++
	return f.products, f.err
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{products: []models.CatalogProduct{
		{ID: 101, Title: "MacBook", Category: "laptops", Brand: "Apple", Rating: 4.7},
		{ID: 102, Title: "Mouse", Category: "mobile-accessories", Brand: "Logi", Rating: 4.2},
	}}
}

func testConfig(t *testing.T, content string) *Config {
	dir := t.TempDir()
	input := filepath.Join(dir, "data", "sales_data.txt")
	if err := os.MkdirAll(filepath.Dir(input), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(input, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	config := DefaultConfig()
	config.InputPath = input
	config.EnrichedPath = filepath.Join(dir, "data", "enriched_sales_data.txt")
	config.ReportPath = filepath.Join(dir, "output", "sales_report.txt")
	return config
}

func fixedClock() time.Time {
	return time.Date(2024, 12, 31, 18, 0, 0, 0, time.UTC)
}

func TestRun_FullPipeline(t *testing.T) {
	config := testConfig(t, salesData)
	fetcher := testCatalog()
	var echo bytes.Buffer

	p, err := New(config, WithCatalog(fetcher), WithEcho(&echo), WithClock(fixedClock))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.RunID == "" {
		t.Error("expected run id")
	}
	if result.LinesRead != 8 {
		t.Errorf("LinesRead = %d, want 8", result.LinesRead)
	}

	s := result.Summary
	if s.TotalInput != 6 || s.ParseRejected != 2 || s.Invalid != 2 || s.FinalCount != 4 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if len(result.Rejected) != 4 {
		t.Errorf("expected 4 rejected records, got %d", len(result.Rejected))
	}

	wantRevenue := decimal.NewFromInt(90000 + 5000 + 4500 + 1000)
	if !result.Analytics.TotalRevenue.Equal(wantRevenue) {
		t.Errorf("TotalRevenue = %s, want %s", result.Analytics.TotalRevenue, wantRevenue)
	}

	if fetcher.calls != 1 || result.CatalogProducts != 2 {
		t.Errorf("catalog calls %d products %d", fetcher.calls, result.CatalogProducts)
	}
	if result.Enrichment.Matched != 2 || result.Enrichment.Total != 4 {
		t.Errorf("unexpected enrichment: %+v", result.Enrichment)
	}
	if result.Degraded() {
		t.Errorf("run should not be degraded: %v", result.Warnings())
	}

	file, err := enricher.ReadEnrichedFile(result.EnrichedPath)
	if err != nil {
		t.Fatalf("ReadEnrichedFile() error = %v", err)
	}
	if len(file.Rows) != 4 {
		t.Errorf("expected 4 enriched rows, got %d", len(file.Rows))
	}
	if file.Rows[1][3] != "MouseWireless" {
		t.Errorf("commas should be stripped from product names, got %q", file.Rows[1][3])
	}

	report, err := os.ReadFile(result.ReportPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	for _, want := range []string{
		"   Generated: 2024-12-31 18:00:00\n",
		"   Records Processed: 4\n",
		"Total Revenue:        ₹100,500.00\n",
		"Success Rate: 50.00%\n",
	} {
		if !strings.Contains(string(report), want) {
			t.Errorf("report missing %q", want)
		}
	}

	out := echo.String()
	for step := 1; step <= TotalSteps; step++ {
		if !strings.Contains(out, fmt.Sprintf("[%d/%d]", step, TotalSteps)) {
			t.Errorf("echo missing step %d", step)
		}
	}
	for _, want := range []string{
		"Regions: East, North, South, West\n",
		"Amount Range: ₹1,000 - ₹90,000\n",
		"✓ Valid: 4 | Invalid: 2\n",
		"✓ Enriched 2/4 transactions (50.0%)\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("echo missing %q\n%s", want, out)
		}
	}
}

func TestRun_CatalogFailureIsDegraded(t *testing.T) {
	config := testConfig(t, salesData)
	fetcher := &fakeCatalog{err: fmt.Errorf("connection refused")}

	p, _ := New(config, WithCatalog(fetcher))
	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !result.Degraded() || result.CatalogError == nil {
		t.Fatal("expected degraded run with catalog error")
	}
	if ae, ok := errors.AsAnalyticsError(result.CatalogError); !ok || ae.Category != errors.CategoryCatalog {
		t.Errorf("expected catalog error, got %v", result.CatalogError)
	}
	if result.Enrichment.Matched != 0 || len(result.Enrichment.Unmatched) != 4 {
		t.Errorf("every transaction should be unmatched: %+v", result.Enrichment)
	}
	if _, err := os.Stat(result.ReportPath); err != nil {
		t.Errorf("report should still be written: %v", err)
	}
}

func TestRun_NoCatalog(t *testing.T) {
	p, _ := New(testConfig(t, salesData))
	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.CatalogError != nil || result.Enrichment.Matched != 0 {
		t.Errorf("unexpected enrichment without catalog: %+v", result.Enrichment)
	}
}

func TestRun_WithFilters(t *testing.T) {
	min := decimal.NewFromInt(4000)
	source := validator.StaticFilter{Options: validator.FilterOptions{Region: "North", MinAmount: &min}}

	p, _ := New(testConfig(t, salesData), WithFilterSource(source), WithCatalog(testCatalog()))
	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	s := result.Summary
	if s.FilteredByRegion != 2 || s.FilteredByAmount != 0 || s.FinalCount != 2 {
		t.Errorf("unexpected filter summary: %+v", s)
	}
	if result.Filters.Region != "North" {
		t.Errorf("filters not recorded: %+v", result.Filters)
	}
}

func TestRun_AllRejected(t *testing.T) {
	content := "TransactionID|Date|ProductID|ProductName|Quantity|UnitPrice|CustomerID|Region\n" +
		"T001|2024-12-01|P101|Laptop|0|45000|C001|North\n"

	config := testConfig(t, content)
	p, _ := New(config, WithCatalog(testCatalog()))
	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !result.Degraded() {
		t.Error("expected degraded run")
	}
	if result.EnrichedPath != "" {
		t.Error("no enrichment file should be written")
	}
	if _, err := os.Stat(config.EnrichedPath); !os.IsNotExist(err) {
		t.Error("enrichment file should not exist")
	}
	if _, err := os.Stat(result.ReportPath); err != nil {
		t.Errorf("report should still be written: %v", err)
	}
}

func TestRun_MissingInputIsDegraded(t *testing.T) {
	config := testConfig(t, salesData)
	config.InputPath = filepath.Join(t.TempDir(), "absent.txt")
	var echo bytes.Buffer

	p, err := New(config, WithCatalog(testCatalog()), WithEcho(&echo))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("missing input should not fail the run: %v", err)
	}

	ae, ok := errors.AsAnalyticsError(result.SourceError)
	if !ok || ae.Code != errors.CodeFileNotFound {
		t.Fatalf("expected file not found on the result, got %v", result.SourceError)
	}
	if !result.Degraded() {
		t.Error("expected degraded run")
	}
	if warnings := result.Warnings(); len(warnings) == 0 || !strings.HasPrefix(warnings[0], "sales data unavailable") {
		t.Errorf("unexpected warnings %v", warnings)
	}
	if result.LinesRead != 0 || result.Summary.FinalCount != 0 {
		t.Errorf("expected empty input, got %d lines and %d valid", result.LinesRead, result.Summary.FinalCount)
	}
	if !strings.Contains(echo.String(), "Sales data unavailable, continuing with 0 transactions") {
		t.Errorf("expected read step notice\n%s", echo.String())
	}

	report, err := os.ReadFile(result.ReportPath)
	if err != nil {
		t.Fatalf("report should still be written: %v", err)
	}
	if !strings.Contains(string(report), "None (₹0, 0 transactions)") {
		t.Errorf("expected empty report\n%s", report)
	}
	if _, err := os.Stat(config.EnrichedPath); !os.IsNotExist(err) {
		t.Error("enrichment file should not exist")
	}
}

func TestRun_StageErrors(t *testing.T) {
	t.Run("bad filter bounds", func(t *testing.T) {
		min, max := decimal.NewFromInt(10), decimal.NewFromInt(1)
		source := validator.StaticFilter{Options: validator.FilterOptions{MinAmount: &min, MaxAmount: &max}}

		p, _ := New(testConfig(t, salesData), WithFilterSource(source))
		_, err := p.Run(context.Background())
		ae, ok := errors.AsAnalyticsError(err)
		if !ok || ae.Category != errors.CategoryValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		p, _ := New(testConfig(t, salesData))
		_, err := p.Run(ctx)
		ae, ok := errors.AsAnalyticsError(err)
		if !ok || ae.Code != errors.CodeCancelled {
			t.Fatalf("expected cancelled error, got %v", err)
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantError bool
	}{
		{name: "Default", modify: func(c *Config) {}},
		{name: "Empty input", modify: func(c *Config) { c.InputPath = " " }, wantError: true},
		{name: "Missing report config", modify: func(c *Config) { c.Report = nil }, wantError: true},
		{name: "Bad delimiter", modify: func(c *Config) { c.Parser.Delimiter = "," }, wantError: true},
		{name: "Bad threshold", modify: func(c *Config) { c.Analytics.LowThreshold = 0 }, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)
			err := config.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}
