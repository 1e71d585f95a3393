package cmd

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/zoyaahmed04/sales-analytics-system/cmd/analytics/config"
	"github.com/zoyaahmed04/sales-analytics-system/pkg/errors"
	"github.com/zoyaahmed04/sales-analytics-system/pkg/logger"
)

// CLIErrorHandler provides user-friendly error handling for CLI operations
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
	out     io.Writer
}

// NewCLIErrorHandler creates a new CLI error handler writing to stderr
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger().WithComponent("cli"),
		verbose: viper.GetBool(config.KeyVerbose),
		out:     os.Stderr,
	}
}

// HandleError prints err and returns the process exit code
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	h.logger.WithError(err).Debug("Command failed")

	if analyticsErr, ok := errors.AsAnalyticsError(err); ok {
		return h.handleAnalyticsError(analyticsErr)
	}
	return h.handleGenericError(err)
}

func (h *CLIErrorHandler) handleAnalyticsError(err *errors.AnalyticsError) int {
	fmt.Fprintf(h.out, "Error: %s\n", err.Message)

	if len(err.Context) > 0 {
		keys := make([]string, 0, len(err.Context))
		for key := range err.Context {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		fmt.Fprintf(h.out, "\nContext:\n")
		for _, key := range keys {
			fmt.Fprintf(h.out, "  %s: %v\n", key, err.Context[key])
		}
	}

	if err.Suggestion != "" {
		fmt.Fprintf(h.out, "\nSuggestion: %s\n", err.Suggestion)
	}

	fmt.Fprintf(h.out, "\n%s\n", h.getCategoryHelp(err.Category))

	if h.verbose && err.Cause != nil {
		fmt.Fprintf(h.out, "\nUnderlying error: %v\n", err.Cause)
	}

	return err.GetExitCode()
}

func (h *CLIErrorHandler) handleGenericError(err error) int {
	if stderrors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(h.out, "Error: File not found\n")
		fmt.Fprintf(h.out, "Suggestion: Check if the file path is correct and the file exists\n")
		return 2
	}
	if stderrors.Is(err, os.ErrPermission) {
		fmt.Fprintf(h.out, "Error: Permission denied\n")
		fmt.Fprintf(h.out, "Suggestion: Check file permissions and ensure you have read access\n")
		return 2
	}

	// cobra reports unknown flags and commands as plain errors
	msg := err.Error()
	if strings.Contains(msg, "unknown flag") || strings.Contains(msg, "unknown command") ||
		strings.Contains(msg, "invalid argument") {
		fmt.Fprintf(h.out, "Error: %s\n", msg)
		fmt.Fprintf(h.out, "Suggestion: Use 'analytics run --help' to see all available options\n")
		return 4
	}

	fmt.Fprintf(h.out, "Error: %v\n", err)
	return 1
}

// getCategoryHelp returns category-specific help text
func (h *CLIErrorHandler) getCategoryHelp(category errors.ErrorCategory) string {
	switch category {
	case errors.CategoryFile:
		return `File error help:
• Check that the sales file exists and is readable
• Verify the path (use --input or the input config key)
• Ensure the output directories are writable`

	case errors.CategoryParse:
		return `Parse error help:
• Records use pipe separated fields: TransactionID|Date|ProductID|ProductName|Quantity|UnitPrice|CustomerID|Region
• The first line is a header and is skipped
• Files are read as UTF-8, then Latin-1, then Windows-1252`

	case errors.CategoryValidation:
		return `Validation error help:
• Amounts are plain numbers; commas are allowed as thousands separators
• Minimum and maximum amounts cannot be negative
• The minimum amount cannot exceed the maximum amount`

	case errors.CategoryConfiguration:
		return `Configuration error help:
• Check your command-line flags and arguments
• Verify configuration file syntax if using --config
• Environment variables use the SALES_ANALYTICS_ prefix
• Use 'analytics run --help' to see all available options`

	case errors.CategoryCatalog:
		return `Catalog error help:
• Check network access to the catalog endpoint (--catalog-url)
• Increase --catalog-timeout for slow connections
• Use --skip-catalog to run without enrichment`

	case errors.CategoryReport:
		return `Report error help:
• Check that the report directory is writable
• Try another --report-format`

	default:
		return `For more help:
• Use 'analytics --help' for general help
• Use 'analytics run --help' for command-specific help
• Run with --verbose for more detail`
	}
}
