package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zoyaahmed04/sales-analytics-system/cmd/analytics/config"
	"github.com/zoyaahmed04/sales-analytics-system/pkg/errors"
	"github.com/zoyaahmed04/sales-analytics-system/pkg/logger"
)

var (
	cfgFile string
	cfgErr  error
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Sales transaction analytics and enrichment",
	Long: `Analytics reads a pipe-delimited sales file, cleans and validates the
records, computes revenue analytics, enriches each sale with product catalog
data and writes a formatted report.

Examples:
  analytics run
  analytics run --input data/sales_data.txt --region North --min-amount 1000
  analytics run --interactive --report-format json --report-output out/report.json
  analytics run --skip-catalog --config analytics.yaml`,
	Version:           getVersionString(),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	config.SetDefaults(viper.GetViper())

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (optional)")
	flags.BoolP(config.KeyVerbose, "v", false, "verbose output")
	flags.String(config.KeyLogLevel, string(logger.InfoLevel), "log level: debug, info, warn, error")
	flags.String(config.KeyLogFormat, string(logger.TextFormat), "log format: text, json")
	flags.String(config.KeyLogFile, "", "write logs to this file instead of stderr")

	for _, key := range []string{config.KeyVerbose, config.KeyLogLevel, config.KeyLogFormat, config.KeyLogFile} {
		viper.BindPFlag(key, flags.Lookup(key))
	}
}

// initConfig reads in the config file and environment variables. A bad
// config file is reported by setupLogging so it flows through the error handler.
func initConfig() {
	cfgErr = nil
	config.BindEnv(viper.GetViper())

	if cfgFile == "" {
		return
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		cfgErr = errors.ConfigurationError(errors.CodeInvalidConfig, "config", cfgFile, err).
			WithSuggestion("Check that the config file exists and is valid YAML, JSON or TOML")
	}
}

func setupLogging(cmd *cobra.Command, args []string) error {
	if cfgErr != nil {
		return cfgErr
	}

	loggerConfig, err := config.CreateLoggerConfig(viper.GetViper())
	if err != nil {
		return err
	}
	log, err := logger.NewLogger(loggerConfig)
	if err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, config.KeyLogFile, loggerConfig.File, err)
	}
	logger.SetGlobalLogger(log)

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debugf("Using config file: %s", used)
	}
	return nil
}

// Shutdown closes the log file opened for --log-file, if any. Call it once
// the command and its error handling are finished.
func Shutdown() {
	if err := logger.Close(logger.GetGlobalLogger()); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing log file: %v\n", err)
	}
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	}
	return version
}
