package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shiftsync/venuepulse/internal/config"
	"github.com/shiftsync/venuepulse/internal/pipeline"
	"github.com/shiftsync/venuepulse/internal/store"
)

var (
	exportInput   string
	exportMethods []string
	exportConfig  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Run the peak-hours analysis and export results to PostgreSQL",
	Long: `Run the multi-method peak-hours analysis and export the three result
tables (peak_hours_analysis, overlap_analysis, peak_hours_summary) to
PostgreSQL. Connection settings come from VENUEPULSE_PG_* environment
variables, optionally via a local .env file.`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportInput, "input", "i", "Data/cleansed_data.db", "Cleansed orders SQLite file or pre-aggregated CSV")
	exportCmd.Flags().StringSliceVar(&exportMethods, "methods", nil, "Clustering methods to enable (kmeans,gmm,agglo)")
	exportCmd.Flags().StringVarP(&exportConfig, "config", "c", "", "Path to a YAML config file")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(exportConfig)
	if err != nil {
		return err
	}
	methods, err := resolveMethods(exportMethods, cfg)
	if err != nil {
		return err
	}

	points, err := loadHourlyPoints(exportInput)
	if err != nil {
		return err
	}

	runner, err := pipeline.NewPeakHours(methods, cfg.Segmentation.Seed, cfg.Workers)
	if err != nil {
		return err
	}
	results, failures, err := runner.Run(cmd.Context(), points)
	if err != nil {
		return err
	}
	for _, f := range failures {
		fmt.Printf("Warning: concept %q skipped: %v\n", f.Unit, f.Err)
	}

	pg, err := config.LoadPostgres()
	if err != nil {
		return err
	}
	db, err := store.OpenPostgres(pg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	peaks := pipeline.PeakRows(results)
	agreement := pipeline.AgreementRows(results)
	if err := db.ExportAnalysis(peaks, agreement); err != nil {
		return fmt.Errorf("failed to export analysis: %w", err)
	}

	fmt.Printf("Exported %d peak-hour rows and %d agreement rows for %d concepts\n",
		len(peaks), len(agreement), len(results))
	fmt.Println("Tables: peak_hours_analysis, overlap_analysis, peak_hours_summary")
	return nil
}
