// Package reporter renders analytics and enrichment results as the fixed
// layout sales report, or as JSON for programmatic consumption.
//
// Example usage:
//
//	generator, err := reporter.NewReportGenerator(reporter.DefaultReportConfig())
//	err = generator.GenerateReport(data, os.Stdout)
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zoyaahmed04/sales-analytics-system/internal/analytics"
	"github.com/zoyaahmed04/sales-analytics-system/internal/enricher"
	"github.com/zoyaahmed04/sales-analytics-system/internal/validator"
	"github.com/zoyaahmed04/sales-analytics-system/pkg/errors"
	"github.com/zoyaahmed04/sales-analytics-system/pkg/logger"
)

// OutputFormat represents the supported report output formats
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatText, FormatJSON:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format         OutputFormat `json:"format"`
	CurrencySymbol string       `json:"currency_symbol"`
	TopProducts    int          `json:"top_products"`
	TopCustomers   int          `json:"top_customers"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:         FormatText,
		CurrencySymbol: "₹",
		TopProducts:    5,
		TopCustomers:   5,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	if c.TopProducts <= 0 {
		return fmt.Errorf("top products must be positive, got %d", c.TopProducts)
	}
	if c.TopCustomers <= 0 {
		return fmt.Errorf("top customers must be positive, got %d", c.TopCustomers)
	}
	return nil
}

// ReportData is everything the report is rendered from.
// Filter and RunID are optional and only appear in JSON output.
type ReportData struct {
	RunID       string
	GeneratedAt time.Time
	Analytics   *analytics.Results
	Enrichment  *enricher.Summary
	Filter      *validator.Summary
}

// ReportGenerator generates sales reports in various formats
type ReportGenerator struct {
	config *ReportConfig
	money  *moneyFormatter
	logger logger.Logger
}

// NewReportGenerator creates a new report generator with the specified configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "report", config.Format, err)
	}

	return &ReportGenerator{
		config: config,
		money:  newMoneyFormatter(config.CurrencySymbol),
		logger: logger.GetGlobalLogger().WithComponent("reporter"),
	}, nil
}

// GenerateReport renders data and writes it to writer
func (rg *ReportGenerator) GenerateReport(data *ReportData, writer io.Writer) error {
	if data == nil || data.Analytics == nil {
		return errors.ReportError(errors.CodeRenderFailed, "input", fmt.Errorf("analytics results cannot be nil"))
	}
	local := *data
	data = &local
	if data.Enrichment == nil {
		data.Enrichment = enricher.Summarize(nil)
	}
	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now()
	}

	switch rg.config.Format {
	case FormatText:
		var sb strings.Builder
		rg.renderText(data, &sb)
		if _, err := io.WriteString(writer, sb.String()); err != nil {
			return errors.ReportError(errors.CodeRenderFailed, "output", err)
		}
		return nil
	case FormatJSON:
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")
		encoder.SetEscapeHTML(false)
		if err := encoder.Encode(rg.buildJSONReport(data)); err != nil {
			return errors.ReportError(errors.CodeRenderFailed, "json", err)
		}
		return nil
	default:
		return errors.ReportError(errors.CodeRenderFailed, "format", fmt.Errorf("unsupported output format: %s", rg.config.Format))
	}
}

// WriteReportFile renders the report into path, creating parent directories
func (rg *ReportGenerator) WriteReportFile(path string, data *ReportData) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.FileError(errors.CodeDirectoryError, dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		if os.IsPermission(err) {
			return errors.FileError(errors.CodeFilePermission, path, err)
		}
		return errors.FileError(errors.CodeFileWrite, path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.FileError(errors.CodeFileWrite, path, cerr)
		}
	}()

	if err := rg.GenerateReport(data, file); err != nil {
		return err
	}

	rg.logger.WithFields(logger.Fields{
		"path":   path,
		"format": rg.config.Format,
	}).Info("Report written")
	return nil
}

// GetConfiguration returns the current configuration
func (rg *ReportGenerator) GetConfiguration() *ReportConfig {
	return rg.config
}

func (rg *ReportGenerator) topProducts(results *analytics.Results) []analytics.ProductStats {
	if len(results.TopProducts) > rg.config.TopProducts {
		return results.TopProducts[:rg.config.TopProducts]
	}
	return results.TopProducts
}

func (rg *ReportGenerator) topCustomers(results *analytics.Results) []analytics.CustomerStats {
	customers := results.TopCustomers()
	if len(customers) > rg.config.TopCustomers {
		return customers[:rg.config.TopCustomers]
	}
	return customers
}
