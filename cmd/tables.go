package cmd

import (
	"github.com/huangsam/healthtab/core"
	"github.com/huangsam/healthtab/internal/contract"
	"github.com/spf13/cobra"
)

// exportCmd writes one derived table.
var exportCmd = &cobra.Command{
	Use:   "export <export.xml>",
	Short: "Export one table derived from a health export.",
	Long: `Parse an Apple Health export.xml and write one derived table.

Tables:
- raw         - one row per record with type, source, unit, value and dates
- daily       - one row per calendar day with averaged heart rate and total steps
- pivoted     - one column per metric, the n-th value of each metric per row
- time_series - one column per metric, one row per start timestamp

Examples:
  # Daily metrics as CSV
  healthtab export export.xml --format daily --output-file daily.csv

  # Time series as Parquet for pandas or DuckDB
  healthtab export export.xml --format time_series --output parquet --output-file ts.parquet

  # Raw records as an aligned table in the terminal
  healthtab export export.xml --format raw --output text --limit 20`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteExport(rootCtx, cfg, cacheManager, logger); err != nil {
			contract.LogFatal("Cannot export table", err)
		}
	},
}

// convertCmd writes every derived table into a directory.
var convertCmd = &cobra.Command{
	Use:   "convert <export.xml>",
	Short: "Write every table of a health export into a directory.",
	Long: `Parse an Apple Health export.xml once and write all four tables as
health_data_<format>.<ext> into the output directory, then print the record type summary.

Examples:
  # CSV files in the current directory
  healthtab convert export.xml

  # Excel workbooks in ./out
  healthtab convert export.xml --output xlsx --output-dir out`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteConvert(rootCtx, cfg, cacheManager, logger); err != nil {
			contract.LogFatal("Cannot convert export", err)
		}
	},
}

// summaryCmd prints per-type statistics.
var summaryCmd = &cobra.Command{
	Use:   "summary <export.xml>",
	Short: "Summarize every record type: count, mean, min, max and unit.",
	Args:  cobra.ExactArgs(1),
	Example: `  healthtab summary export.xml --output text
  healthtab summary export.xml --output json --output-file summary.json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSummary(rootCtx, cfg, cacheManager, logger); err != nil {
			contract.LogFatal("Cannot summarize export", err)
		}
	},
}

// workoutsCmd prints the workouts.
var workoutsCmd = &cobra.Command{
	Use:     "workouts <export.xml>",
	Short:   "List the workouts of a health export.",
	Args:    cobra.ExactArgs(1),
	Example: `  healthtab workouts export.xml --output text`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteWorkouts(rootCtx, cfg, cacheManager, logger); err != nil {
			contract.LogFatal("Cannot list workouts", err)
		}
	},
}
