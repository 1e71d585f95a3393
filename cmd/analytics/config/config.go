// Package config turns viper settings into the typed configurations used
// by each pipeline stage.
package config

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/zoyaahmed04/sales-analytics-system/internal/analytics"
	"github.com/zoyaahmed04/sales-analytics-system/internal/catalog"
	"github.com/zoyaahmed04/sales-analytics-system/internal/parsers"
	"github.com/zoyaahmed04/sales-analytics-system/internal/pipeline"
	"github.com/zoyaahmed04/sales-analytics-system/internal/reporter"
	"github.com/zoyaahmed04/sales-analytics-system/internal/validator"
	"github.com/zoyaahmed04/sales-analytics-system/pkg/errors"
	"github.com/zoyaahmed04/sales-analytics-system/pkg/logger"
)

// Setting keys shared by flags, environment variables and config files
const (
	KeyInput          = "input"
	KeyEnrichedOutput = "enriched-output"
	KeyReportOutput   = "report-output"
	KeyReportFormat   = "report-format"
	KeyRegion         = "region"
	KeyMinAmount      = "min-amount"
	KeyMaxAmount      = "max-amount"
	KeyInteractive    = "interactive"
	KeyCatalogURL     = "catalog-url"
	KeyCatalogLimit   = "catalog-limit"
	KeyCatalogTimeout = "catalog-timeout"
	KeySkipCatalog    = "skip-catalog"
	KeyTopProducts    = "top-products"
	KeyTopCustomers   = "top-customers"
	KeyLowThreshold   = "low-threshold"
	KeyCurrencySymbol = "currency-symbol"
	KeyLogLevel       = "log-level"
	KeyLogFormat      = "log-format"
	KeyLogFile        = "log-file"
	KeyVerbose        = "verbose"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "SALES_ANALYTICS"

// SetDefaults registers the default value of every setting on v
func SetDefaults(v *viper.Viper) {
	pipelineDefaults := pipeline.DefaultConfig()
	catalogDefaults := catalog.DefaultConfig()
	analyticsDefaults := analytics.DefaultConfig()
	reportDefaults := reporter.DefaultReportConfig()

	v.SetDefault(KeyInput, pipelineDefaults.InputPath)
	v.SetDefault(KeyEnrichedOutput, pipelineDefaults.EnrichedPath)
	v.SetDefault(KeyReportOutput, pipelineDefaults.ReportPath)
	v.SetDefault(KeyReportFormat, string(reportDefaults.Format))
	v.SetDefault(KeyRegion, "")
	v.SetDefault(KeyMinAmount, "")
	v.SetDefault(KeyMaxAmount, "")
	v.SetDefault(KeyInteractive, false)
	v.SetDefault(KeyCatalogURL, catalogDefaults.BaseURL)
	v.SetDefault(KeyCatalogLimit, catalogDefaults.Limit)
	v.SetDefault(KeyCatalogTimeout, catalogDefaults.Timeout)
	v.SetDefault(KeySkipCatalog, false)
	v.SetDefault(KeyTopProducts, analyticsDefaults.TopProducts)
	v.SetDefault(KeyTopCustomers, analyticsDefaults.TopCustomers)
	v.SetDefault(KeyLowThreshold, analyticsDefaults.LowThreshold)
	v.SetDefault(KeyCurrencySymbol, reportDefaults.CurrencySymbol)
	v.SetDefault(KeyLogLevel, string(logger.InfoLevel))
	v.SetDefault(KeyLogFormat, string(logger.TextFormat))
	v.SetDefault(KeyLogFile, "")
}

// BindEnv makes every setting readable from SALES_ANALYTICS_* variables
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// CreateLoggerConfig creates the logger configuration. Verbose forces debug.
func CreateLoggerConfig(v *viper.Viper) (*logger.Config, error) {
	config := logger.DefaultConfig()
	config.Level = logger.Level(strings.ToLower(v.GetString(KeyLogLevel)))
	config.Format = logger.Format(strings.ToLower(v.GetString(KeyLogFormat)))
	if v.GetBool(KeyVerbose) {
		config.Level = logger.DebugLevel
	}
	if file := v.GetString(KeyLogFile); file != "" {
		config.Output = logger.FileOutput
		config.File = file
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, KeyLogLevel+"/"+KeyLogFormat, config.Level, err)
	}
	return config, nil
}

// CreateParserConfig creates the parser configuration for pipe-delimited sales files
func CreateParserConfig() *parsers.ParserConfig {
	return parsers.DefaultParserConfig()
}

// CreateFilterOptions reads the non-interactive filters. Empty values
// disable a filter.
func CreateFilterOptions(v *viper.Viper) (*validator.FilterOptions, error) {
	options := &validator.FilterOptions{Region: strings.TrimSpace(v.GetString(KeyRegion))}

	var err error
	if options.MinAmount, err = parseAmount(v.GetString(KeyMinAmount), KeyMinAmount); err != nil {
		return nil, err
	}
	if options.MaxAmount, err = parseAmount(v.GetString(KeyMaxAmount), KeyMaxAmount); err != nil {
		return nil, err
	}

	if err := options.Validate(); err != nil {
		return nil, err
	}
	return options, nil
}

func parseAmount(raw, key string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return nil, errors.ValidationError(errors.CodeInvalidAmount, key, raw, err)
	}
	return &amount, nil
}

// CreateCatalogConfig creates the catalog client configuration
func CreateCatalogConfig(v *viper.Viper) (*catalog.Config, error) {
	config := &catalog.Config{
		BaseURL: strings.TrimSpace(v.GetString(KeyCatalogURL)),
		Limit:   v.GetInt(KeyCatalogLimit),
		Timeout: v.GetDuration(KeyCatalogTimeout),
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// CreateAnalyticsConfig creates the aggregation configuration
func CreateAnalyticsConfig(v *viper.Viper) (*analytics.Config, error) {
	config := &analytics.Config{
		TopProducts:  v.GetInt(KeyTopProducts),
		TopCustomers: v.GetInt(KeyTopCustomers),
		LowThreshold: v.GetInt(KeyLowThreshold),
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "analytics", config, err)
	}
	return config, nil
}

// CreateReportConfig creates a report configuration for the configured output format
func CreateReportConfig(v *viper.Viper) (*reporter.ReportConfig, error) {
	config := reporter.DefaultReportConfig()
	config.Format = reporter.OutputFormat(strings.ToLower(v.GetString(KeyReportFormat)))
	config.CurrencySymbol = v.GetString(KeyCurrencySymbol)
	config.TopProducts = v.GetInt(KeyTopProducts)
	config.TopCustomers = v.GetInt(KeyTopCustomers)

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, KeyReportFormat, config.Format, err)
	}
	return config, nil
}

// CreatePipelineConfig assembles the full pipeline configuration
func CreatePipelineConfig(v *viper.Viper) (*pipeline.Config, error) {
	analyticsConfig, err := CreateAnalyticsConfig(v)
	if err != nil {
		return nil, err
	}
	reportConfig, err := CreateReportConfig(v)
	if err != nil {
		return nil, err
	}

	config := &pipeline.Config{
		InputPath:    v.GetString(KeyInput),
		EnrichedPath: v.GetString(KeyEnrichedOutput),
		ReportPath:   v.GetString(KeyReportOutput),
		Parser:       CreateParserConfig(),
		Analytics:    analyticsConfig,
		Report:       reportConfig,
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
