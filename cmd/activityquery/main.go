package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	icannreport "github.com/Guadalsistema/icann-reporting"
)

var (
	// Global flags
	month          string
	registrarCount int
	verbose        bool

	// Logger
	logger *zap.Logger
)

// rootCmd generates the monthly activity report query
var rootCmd = &cobra.Command{
	Use:   "activityquery",
	Short: "Generate the monthly ICANN activity report query",
	Long: `activityquery prints the fully assembled activity report SQL for a
given report month.

The query is written to stdout so it can be piped into the reporting
pipeline or into the golden test fixture. The tool never executes the
query itself.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
	RunE: runQuery,
}

// schemaCmd prints the report's output columns
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the activity report column names in projection order",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(strings.Join(icannreport.ReportColumns(), "\n"))
		return nil
	},
}

func runQuery(cmd *cobra.Command, args []string) error {
	var threshold *int
	if cmd.Flags().Changed("registrar-count") {
		threshold = &registrarCount
	}

	logger.Debug("Building activity report query",
		zap.String("month", month),
		zap.Bool("registrarCountSet", threshold != nil))

	query, err := icannreport.BuildActivityReportQuery(month, threshold)
	if err != nil {
		return err
	}
	fmt.Print(query)
	return nil
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().StringVar(&month, "month", "", "report month in YYYY-MM form")
	rootCmd.Flags().IntVar(&registrarCount, "registrar-count", 0,
		"minimum operational-registrars count; omitted from the query when unset")
	if err := rootCmd.MarkFlagRequired("month"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.AddCommand(schemaCmd)

	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error("Query generation failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
