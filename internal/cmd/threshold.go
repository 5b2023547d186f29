package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shiftsync/venuepulse/internal/config"
	"github.com/shiftsync/venuepulse/internal/ingest"
	"github.com/shiftsync/venuepulse/internal/output"
	"github.com/shiftsync/venuepulse/internal/pipeline"
	"github.com/shiftsync/venuepulse/internal/quantile"
	"github.com/shiftsync/venuepulse/internal/store"
)

var (
	thresholdBills     string
	thresholdVenues    string
	thresholdOut       string
	thresholdReportDir string
	thresholdConfig    string
)

var thresholdCmd = &cobra.Command{
	Use:   "threshold",
	Short: "Detect adaptive order-duration thresholds per order type",
	Long: `Detect where each order type's duration quantile curve bends and use
that point as an outlier cutoff. Orders are then filtered against their
type's cutoff and the cleansed dataset is written to SQLite for the
peak-hours analysis.`,
	RunE: runThreshold,
}

func init() {
	rootCmd.AddCommand(thresholdCmd)

	thresholdCmd.Flags().StringVar(&thresholdBills, "bills", "Data/bills.csv", "Path to the bills CSV")
	thresholdCmd.Flags().StringVar(&thresholdVenues, "venues", "Data/venues.csv", "Path to the venues CSV")
	thresholdCmd.Flags().StringVar(&thresholdOut, "out", "", "SQLite path for the cleansed dataset (skipped when empty)")
	thresholdCmd.Flags().StringVar(&thresholdReportDir, "report", "", "Directory for the threshold markdown report (skipped when empty)")
	thresholdCmd.Flags().StringVarP(&thresholdConfig, "config", "c", "", "Path to a YAML config file")
}

func runThreshold(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(thresholdConfig)
	if err != nil {
		return err
	}

	loader, err := ingest.NewLoader()
	if err != nil {
		return fmt.Errorf("failed to create loader: %w", err)
	}
	defer loader.Close()

	fmt.Printf("Loading orders from %s (venues: %s)\n", thresholdBills, thresholdVenues)
	orders, err := loader.LoadOrders(thresholdBills, thresholdVenues, cfg.Threshold.Column)
	if err != nil {
		return fmt.Errorf("failed to load orders: %w", err)
	}
	fmt.Printf("Loaded %d orders\n", len(orders))

	params := quantile.Params{
		QuantileMin:  cfg.Threshold.QuantileMin,
		QuantileMax:  cfg.Threshold.QuantileMax,
		QuantileStep: cfg.Threshold.QuantileStep,
		WindowLength: cfg.Threshold.WindowLength,
		PolyOrder:    cfg.Threshold.PolyOrder,
	}

	thresholds, failures, err := pipeline.DetectThresholds(orders, params)
	if err != nil {
		return err
	}

	fmt.Printf("Detected thresholds for %d order types:\n", len(thresholds))
	for _, t := range thresholds {
		fmt.Printf("  %-12s quantile %.3f -> %.1f minutes\n", t.OrderType, t.Quantile, t.Value)
	}
	for _, f := range failures {
		fmt.Printf("Warning: no threshold for order type %q: %v\n", f.Unit, f.Err)
	}

	if thresholdReportDir != "" {
		files, err := writeReports(thresholdReportDir, thresholdLines(thresholds), nil)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %d report files to %s\n", len(files), thresholdReportDir)
	}

	if thresholdOut == "" {
		return nil
	}

	cleansed := pipeline.Cleanse(orders, thresholds)
	fmt.Printf("Cleansed dataset: %d of %d orders kept\n", len(cleansed), len(orders))

	db, err := store.OpenSQLite(thresholdOut)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.ReplaceCleansedOrders(cleansed); err != nil {
		return fmt.Errorf("failed to write cleansed orders: %w", err)
	}
	fmt.Printf("Cleansed dataset saved to %s, table: cleansed_orders\n", db.Path())
	return nil
}

func thresholdLines(results []pipeline.ThresholdResult) []output.ThresholdLine {
	lines := make([]output.ThresholdLine, 0, len(results))
	for _, t := range results {
		lines = append(lines, output.ThresholdLine{
			OrderType: t.OrderType,
			Quantile:  t.Quantile,
			Value:     t.Value,
		})
	}
	return lines
}
