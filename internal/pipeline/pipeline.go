// Package pipeline runs the sales analytics workflow end to end: read,
// parse, filter, validate, analyze, fetch the catalog, enrich, persist and
// report.
//
// Every stage returns an explicit error. Runs that complete with missing
// catalog data or no surviving transactions succeed but are reported as
// degraded on the Result.
//
// Example usage:
//
//	p, err := pipeline.New(pipeline.DefaultConfig(),
//		pipeline.WithCatalog(client),
//		pipeline.WithEcho(os.Stdout))
//	result, err := p.Run(ctx)
package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zoyaahmed04/sales-analytics-system/internal/analytics"
	"github.com/zoyaahmed04/sales-analytics-system/internal/catalog"
	"github.com/zoyaahmed04/sales-analytics-system/internal/enricher"
	"github.com/zoyaahmed04/sales-analytics-system/internal/models"
	"github.com/zoyaahmed04/sales-analytics-system/internal/parsers"
	"github.com/zoyaahmed04/sales-analytics-system/internal/reporter"
	"github.com/zoyaahmed04/sales-analytics-system/internal/validator"
	"github.com/zoyaahmed04/sales-analytics-system/pkg/errors"
	"github.com/zoyaahmed04/sales-analytics-system/pkg/logger"
)

// TotalSteps is the number of steps reported for every run
const TotalSteps = 10

// CatalogFetcher supplies catalog products for enrichment
type CatalogFetcher interface {
	FetchProducts(ctx context.Context) ([]models.CatalogProduct, error)
}

// Config holds the paths and stage configurations of a run
type Config struct {
	InputPath    string                 `json:"input_path"`
	EnrichedPath string                 `json:"enriched_path"`
	ReportPath   string                 `json:"report_path"`
	Parser       *parsers.ParserConfig  `json:"parser"`
	Analytics    *analytics.Config      `json:"analytics"`
	Report       *reporter.ReportConfig `json:"report"`
}

// DefaultConfig returns the standard file locations and stage defaults
func DefaultConfig() *Config {
	return &Config{
		InputPath:    "data/sales_data.txt",
		EnrichedPath: "data/enriched_sales_data.txt",
		ReportPath:   "output/sales_report.txt",
		Parser:       parsers.DefaultParserConfig(),
		Analytics:    analytics.DefaultConfig(),
		Report:       reporter.DefaultReportConfig(),
	}
}

// Validate checks the pipeline configuration
func (c *Config) Validate() error {
	paths := map[string]string{
		"input":           c.InputPath,
		"enriched-output": c.EnrichedPath,
		"report-output":   c.ReportPath,
	}
	for setting, path := range paths {
		if strings.TrimSpace(path) == "" {
			return errors.ConfigurationError(errors.CodeMissingConfig, setting, path, nil)
		}
	}
	if c.Parser == nil || c.Analytics == nil || c.Report == nil {
		return errors.ConfigurationError(errors.CodeMissingConfig, "stage configuration", nil, nil)
	}
	if err := c.Parser.Validate(); err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "parser", c.Parser.Delimiter, err)
	}
	if err := c.Analytics.Validate(); err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "analytics", c.Analytics, err)
	}
	if err := c.Report.Validate(); err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "report", c.Report.Format, err)
	}
	return nil
}

// Pipeline runs the workflow once per call to Run
type Pipeline struct {
	config  *Config
	filters validator.FilterSource
	catalog CatalogFetcher
	echo    io.Writer
	now     func() time.Time
	logger  logger.Logger
}

// Option customises a Pipeline
type Option func(*Pipeline)

// WithCatalog sets the catalog collaborator. Without one, enrichment
// runs against an empty catalog.
func WithCatalog(fetcher CatalogFetcher) Option {
	return func(p *Pipeline) { p.catalog = fetcher }
}

// WithFilterSource sets where filter parameters come from
func WithFilterSource(source validator.FilterSource) Option {
	return func(p *Pipeline) { p.filters = source }
}

// WithEcho writes user-facing progress lines to w
func WithEcho(w io.Writer) Option {
	return func(p *Pipeline) { p.echo = w }
}

// WithClock overrides the report timestamp source
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a pipeline
func New(config *Config, opts ...Option) (*Pipeline, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		config:  config,
		filters: validator.StaticFilter{},
		now:     time.Now,
		logger:  logger.GetGlobalLogger().WithComponent("pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Result is the outcome of a run
type Result struct {
	RunID           string                       `json:"run_id"`
	SourceEncoding  parsers.SourceEncoding       `json:"source_encoding"`
	LinesRead       int                          `json:"lines_read"`
	Preview         *validator.FilterPreview     `json:"preview"`
	Filters         *validator.FilterOptions     `json:"filters"`
	Summary         *validator.Summary           `json:"summary"`
	Rejected        []models.RejectedRecord      `json:"rejected"`
	Analytics       *analytics.Results           `json:"analytics"`
	Enriched        []models.EnrichedTransaction `json:"-"`
	Enrichment      *enricher.Summary            `json:"enrichment"`
	CatalogProducts int                          `json:"catalog_products"`
	CatalogError    error                        `json:"-"`
	SourceError     error                        `json:"-"`
	EnrichedPath    string                       `json:"enriched_path,omitempty"`
	ReportPath      string                       `json:"report_path"`
	Duration        time.Duration                `json:"duration"`
}

// Degraded reports whether the run completed without its sales data,
// without catalog data or without any transaction surviving validation
// and filtering.
func (r *Result) Degraded() bool {
	return len(r.Warnings()) > 0
}

// Warnings describes why a run is degraded
func (r *Result) Warnings() []string {
	var warnings []string
	if r.SourceError != nil {
		warnings = append(warnings, "sales data unavailable: "+r.SourceError.Error())
	}
	if r.CatalogError != nil {
		warnings = append(warnings, "catalog unavailable: "+r.CatalogError.Error())
	}
	if r.Summary != nil && r.Summary.FinalCount == 0 {
		warnings = append(warnings, "no transactions remained after validation and filtering")
	}
	return warnings
}

// Run executes every step in order and stops at the first stage error.
// A missing or undecodable sales file and a catalog failure are not stage
// errors; the run continues and is marked degraded.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{RunID: uuid.NewString()}
	log := p.logger.WithField("run_id", result.RunID)
	steps := logger.NewStepTracker(logger.StepConfig{Total: TotalSteps, Echo: p.echo, Logger: log})

	p.printf("%s\nSALES ANALYTICS SYSTEM\n%s\n", strings.Repeat("=", 40), strings.Repeat("=", 40))
	log.WithField("input", p.config.InputPath).Info("Run started")

	// [1] read
	steps.Begin("Reading sales data")
	source, err := parsers.ReadSalesLines(p.config.InputPath, p.config.Parser)
	if err != nil {
		if !sourceUnavailable(err) {
			return nil, p.fail(log, "read", err)
		}
		log.WithError(err).Warn("Sales data unavailable, continuing with empty input")
		result.SourceError = err
		source = &parsers.SourceFile{Path: p.config.InputPath}
	}
	result.SourceEncoding = source.Encoding
	result.LinesRead = len(source.Lines)
	if result.SourceError != nil {
		steps.Done("Sales data unavailable, continuing with 0 transactions")
	} else {
		steps.Done("Successfully read %d transactions", len(source.Lines))
	}

	// [2] parse
	if err := checkCancelled(ctx, "parse"); err != nil {
		return nil, err
	}
	steps.Begin("Parsing and cleaning data")
	parser, err := parsers.NewParser(p.config.Parser)
	if err != nil {
		return nil, p.fail(log, "parse", err)
	}
	parsed := parser.Parse(source.Lines)
	result.Rejected = append(result.Rejected, parsed.Rejected...)
	if parsed.RejectedCount() > 0 {
		steps.Done("Parsed %d records (%d malformed lines skipped)", len(parsed.Transactions), parsed.RejectedCount())
	} else {
		steps.Done("Parsed %d records", len(parsed.Transactions))
	}

	// [3] filter options
	steps.Begin("Filter Options Available")
	result.Preview = validator.Preview(parsed.Transactions)
	p.printPreview(result.Preview)
	filters, err := p.filters.FilterOptions(ctx, result.Preview)
	if err != nil {
		return nil, p.fail(log, "filter", err)
	}
	result.Filters = filters
	steps.Done("Filters: %s", filters.String())

	// [4] validate
	steps.Begin("Validating transactions")
	validated, err := validator.NewValidator().ValidateAndFilter(parsed.Transactions, filters)
	if err != nil {
		return nil, p.fail(log, "validate", err)
	}
	validated.Summary.ParseRejected = parsed.RejectedCount()
	result.Summary = validated.Summary
	result.Rejected = append(result.Rejected, validated.Rejected...)
	steps.Done("Valid: %d | Invalid: %d", len(validated.Valid), validated.InvalidCount)

	// [5] analyze
	if err := checkCancelled(ctx, "analyze"); err != nil {
		return nil, err
	}
	steps.Begin("Analyzing sales data")
	results, err := analytics.Analyze(validated.Valid, p.config.Analytics)
	if err != nil {
		return nil, p.fail(log, "analyze", errors.InternalError(errors.CodeUnexpectedError, "analysis", err))
	}
	result.Analytics = results
	steps.Done("Analysis complete")

	// [6] catalog
	steps.Begin("Fetching product data from API")
	mapping := p.fetchCatalog(ctx, log, result)
	if result.CatalogError != nil {
		steps.Done("Catalog unavailable, continuing with %d products", result.CatalogProducts)
	} else {
		steps.Done("Fetched %d products", result.CatalogProducts)
	}

	// [7] enrich
	steps.Begin("Enriching sales data")
	result.Enriched = enricher.NewEnricher(mapping).Enrich(validated.Valid)
	result.Enrichment = enricher.Summarize(result.Enriched)
	steps.Done("Enriched %d/%d transactions (%.1f%%)",
		result.Enrichment.Matched, result.Enrichment.Total, result.Enrichment.SuccessRate)

	// [8] save enriched
	steps.Begin("Saving enriched data")
	written, err := enricher.WriteEnrichedFile(p.config.EnrichedPath, result.Enriched)
	if err != nil {
		return nil, p.fail(log, "save_enriched", err)
	}
	if written {
		result.EnrichedPath = p.config.EnrichedPath
		steps.Done("Saved to: %s", p.config.EnrichedPath)
	} else {
		steps.Done("No enriched records to save")
	}

	// [9] report
	if err := checkCancelled(ctx, "report"); err != nil {
		return nil, err
	}
	steps.Begin("Generating report")
	generator, err := reporter.NewReportGenerator(p.config.Report)
	if err != nil {
		return nil, p.fail(log, "report", err)
	}
	data := &reporter.ReportData{
		RunID:       result.RunID,
		GeneratedAt: p.now(),
		Analytics:   results,
		Enrichment:  result.Enrichment,
		Filter:      result.Summary,
	}
	err = logger.TimedOperation("write_report", log, func() error {
		return generator.WriteReportFile(p.config.ReportPath, data)
	})
	if err != nil {
		return nil, p.fail(log, "report", err)
	}
	result.ReportPath = p.config.ReportPath
	steps.Done("Report saved to: %s", p.config.ReportPath)

	// [10] complete
	steps.Begin("Process Complete")
	result.Duration = time.Since(start)
	p.printf("%s\n", strings.Repeat("=", 40))

	entry := log.WithFields(logger.Fields{
		"valid":       result.Summary.FinalCount,
		"invalid":     result.Summary.Invalid,
		"rejected":    len(result.Rejected),
		"enriched":    result.Enrichment.Matched,
		"duration":    result.Duration.String(),
		"degraded":    result.Degraded(),
		"report_path": result.ReportPath,
	})
	if result.Degraded() {
		entry.WithField("warnings", result.Warnings()).Warn("Run completed with degraded data")
	} else {
		entry.Info("Run completed")
	}

	return result, nil
}

func (p *Pipeline) fetchCatalog(ctx context.Context, log logger.Logger, result *Result) models.ProductMapping {
	if p.catalog == nil {
		log.Info("No catalog configured, enrichment will match nothing")
		return models.ProductMapping{}
	}

	products, err := p.catalog.FetchProducts(ctx)
	if err != nil {
		result.CatalogError = errors.WrapIfNeeded(err, errors.CategoryCatalog, errors.CodeConnectionFailed, "catalog fetch failed")
		log.WithError(err).Warn("Catalog fetch failed, continuing with an empty catalog")
		return models.ProductMapping{}
	}

	result.CatalogProducts = len(products)
	return catalog.CreateProductMapping(products)
}

func (p *Pipeline) printPreview(preview *validator.FilterPreview) {
	symbol := p.config.Report.CurrencySymbol
	p.printf("Regions: %s\n", strings.Join(preview.Regions, ", "))
	if preview.AmountRange != nil {
		p.printf("Amount Range: %s - %s\n",
			reporter.FormatCurrency(symbol, preview.AmountRange.Min, 0),
			reporter.FormatCurrency(symbol, preview.AmountRange.Max, 0))
	}
}

func (p *Pipeline) printf(format string, args ...interface{}) {
	if p.echo != nil {
		fmt.Fprintf(p.echo, format, args...)
	}
}

func (p *Pipeline) fail(log logger.Logger, stage string, err error) error {
	ae := errors.WrapIfNeeded(err, errors.CategoryInternal, errors.CodeUnexpectedError, "stage "+stage+" failed").
		WithContext("stage", stage)
	log.WithError(ae).WithField("stage", stage).Error("Pipeline stage failed")
	return ae
}

// sourceUnavailable reports whether a read error means the sales data is
// missing or cannot be decoded, as opposed to a broken configuration.
func sourceUnavailable(err error) bool {
	ae, ok := errors.AsAnalyticsError(err)
	if !ok {
		return false
	}
	return ae.Category == errors.CategoryFile || ae.Code == errors.CodeEncodingError
}

func checkCancelled(ctx context.Context, stage string) error {
	if err := ctx.Err(); err != nil {
		return errors.InternalError(errors.CodeCancelled, stage, err).WithContext("stage", stage)
	}
	return nil
}
