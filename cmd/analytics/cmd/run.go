package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zoyaahmed04/sales-analytics-system/cmd/analytics/config"
	"github.com/zoyaahmed04/sales-analytics-system/internal/catalog"
	"github.com/zoyaahmed04/sales-analytics-system/internal/pipeline"
	"github.com/zoyaahmed04/sales-analytics-system/internal/prompt"
	"github.com/zoyaahmed04/sales-analytics-system/internal/validator"
)

// runPlan is the validated configuration of a run command
type runPlan struct {
	pipeline    *pipeline.Config
	catalog     *catalog.Config // nil when the catalog is skipped
	filters     *validator.FilterOptions
	interactive bool
}

var plan *runPlan

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full analytics pipeline",
	Long: `Run reads the sales file, validates and filters the transactions,
computes the analytics, enriches every sale with catalog data and writes
both the enriched file and the report.

Filters come from flags, the config file or SALES_ANALYTICS_* variables.
With --interactive they are asked for on the terminal after the available
regions and amount range are shown.

Examples:
  # Defaults: data/sales_data.txt in, output/sales_report.txt out
  analytics run

  # Only large sales in the North region
  analytics run --region North --min-amount 10000

  # JSON report without calling the catalog API
  analytics run --skip-catalog --report-format json --report-output output/report.json`,

	PreRunE: validateRunFlags,
	RunE:    runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)

	flags := runCmd.Flags()

	// Files
	flags.StringP(config.KeyInput, "i", "data/sales_data.txt", "path to the pipe-delimited sales file")
	flags.String(config.KeyEnrichedOutput, "data/enriched_sales_data.txt", "path of the enriched sales file")
	flags.StringP(config.KeyReportOutput, "o", "output/sales_report.txt", "path of the report file")
	flags.StringP(config.KeyReportFormat, "f", "text", "report format: text, json")

	// Filters
	flags.StringP(config.KeyRegion, "r", "", "keep only transactions from this region")
	flags.String(config.KeyMinAmount, "", "keep only transactions with an amount of at least this value")
	flags.String(config.KeyMaxAmount, "", "keep only transactions with an amount of at most this value")
	flags.Bool(config.KeyInteractive, false, "ask for filters on the terminal")

	// Catalog
	flags.String(config.KeyCatalogURL, "https://dummyjson.com/products", "product catalog endpoint")
	flags.Int(config.KeyCatalogLimit, 100, "number of catalog products to request")
	flags.Duration(config.KeyCatalogTimeout, 10*time.Second, "catalog request timeout")
	flags.Bool(config.KeySkipCatalog, false, "do not call the catalog; every sale is left unmatched")

	// Report
	flags.Int(config.KeyTopProducts, 5, "number of products in the top products table")
	flags.Int(config.KeyTopCustomers, 5, "number of customers in the top customers table")
	flags.Int(config.KeyLowThreshold, 10, "products with fewer units sold are low performers")
	flags.String(config.KeyCurrencySymbol, "₹", "currency symbol used in the report")

	for _, key := range []string{
		config.KeyInput, config.KeyEnrichedOutput, config.KeyReportOutput, config.KeyReportFormat,
		config.KeyRegion, config.KeyMinAmount, config.KeyMaxAmount, config.KeyInteractive,
		config.KeyCatalogURL, config.KeyCatalogLimit, config.KeyCatalogTimeout, config.KeySkipCatalog,
		config.KeyTopProducts, config.KeyTopCustomers, config.KeyLowThreshold, config.KeyCurrencySymbol,
	} {
		viper.BindPFlag(key, flags.Lookup(key))
	}
}

func validateRunFlags(cmd *cobra.Command, args []string) error {
	p, err := buildRunPlan(viper.GetViper())
	if err != nil {
		return err
	}
	plan = p
	return nil
}

// buildRunPlan reads every setting from v (flags, env, config file, defaults)
func buildRunPlan(v *viper.Viper) (*runPlan, error) {
	pipelineConfig, err := config.CreatePipelineConfig(v)
	if err != nil {
		return nil, err
	}

	p := &runPlan{
		pipeline:    pipelineConfig,
		interactive: v.GetBool(config.KeyInteractive),
	}

	if !p.interactive {
		if p.filters, err = config.CreateFilterOptions(v); err != nil {
			return nil, err
		}
	}

	if !v.GetBool(config.KeySkipCatalog) {
		if p.catalog, err = config.CreateCatalogConfig(v); err != nil {
			return nil, err
		}
	}

	return p, nil
}

func runPipeline(cmd *cobra.Command, args []string) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	opts := []pipeline.Option{pipeline.WithEcho(out)}

	if plan.interactive {
		opts = append(opts, pipeline.WithFilterSource(prompt.NewCollector(cmd.InOrStdin(), out)))
	} else if plan.filters != nil {
		opts = append(opts, pipeline.WithFilterSource(validator.StaticFilter{Options: *plan.filters}))
	}

	if plan.catalog != nil {
		client, err := catalog.NewClient(plan.catalog, nil)
		if err != nil {
			return err
		}
		opts = append(opts, pipeline.WithCatalog(client))
	}

	p, err := pipeline.New(plan.pipeline, opts...)
	if err != nil {
		return err
	}

	result, err := p.Run(ctx)
	if err != nil {
		return err
	}

	for _, warning := range result.Warnings() {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", warning)
	}
	return nil
}
