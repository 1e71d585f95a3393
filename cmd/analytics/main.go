package main

import (
	"os"

	"github.com/zoyaahmed04/sales-analytics-system/cmd/analytics/cmd"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, date)

	err := cmd.Execute()
	code := cmd.NewCLIErrorHandler().HandleError(err)
	cmd.Shutdown()
	os.Exit(code)
}
