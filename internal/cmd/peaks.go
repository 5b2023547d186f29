package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shiftsync/venuepulse/internal/cluster"
	"github.com/shiftsync/venuepulse/internal/config"
	"github.com/shiftsync/venuepulse/internal/ingest"
	"github.com/shiftsync/venuepulse/internal/output"
	"github.com/shiftsync/venuepulse/internal/pipeline"
	"github.com/shiftsync/venuepulse/internal/segment"
	"github.com/shiftsync/venuepulse/internal/store"
)

var (
	peaksInput     string
	peaksMethods   []string
	peaksChart     bool
	peaksReportDir string
	peaksConfig    string
)

var peaksCmd = &cobra.Command{
	Use:   "peaks",
	Short: "Identify per-concept peak hours with multi-method clustering",
	Long: `Aggregate cleansed orders to hourly volume per concept, cluster each
concept's hours with the enabled methods, and score every hour of the day
by how many methods call it a peak.`,
	RunE: runPeaks,
}

func init() {
	rootCmd.AddCommand(peaksCmd)

	peaksCmd.Flags().StringVarP(&peaksInput, "input", "i", "Data/cleansed_data.db", "Cleansed orders SQLite file or pre-aggregated CSV")
	peaksCmd.Flags().StringSliceVar(&peaksMethods, "methods", nil, "Clustering methods to enable (kmeans,gmm,agglo)")
	peaksCmd.Flags().BoolVar(&peaksChart, "chart", false, "Print ASCII charts per concept")
	peaksCmd.Flags().StringVar(&peaksReportDir, "report", "", "Directory for markdown reports (skipped when empty)")
	peaksCmd.Flags().StringVarP(&peaksConfig, "config", "c", "", "Path to a YAML config file")
}

func runPeaks(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(peaksConfig)
	if err != nil {
		return err
	}
	methods, err := resolveMethods(peaksMethods, cfg)
	if err != nil {
		return err
	}

	points, err := loadHourlyPoints(peaksInput)
	if err != nil {
		return err
	}
	fmt.Printf("Aggregated %d (concept, hour) points from %s\n", len(points), peaksInput)

	runner, err := pipeline.NewPeakHours(methods, cfg.Segmentation.Seed, cfg.Workers)
	if err != nil {
		return err
	}

	results, failures, err := runner.Run(cmd.Context(), points)
	if err != nil {
		return err
	}

	for _, res := range results {
		printConceptResult(res)
	}
	for _, f := range failures {
		fmt.Printf("Warning: concept %q skipped: %v\n", f.Unit, f.Err)
	}

	if peaksReportDir != "" {
		files, err := writeReports(peaksReportDir, nil, results)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %d report files to %s\n", len(files), peaksReportDir)
	}
	return nil
}

func printConceptResult(res *pipeline.ConceptResult) {
	fmt.Printf("\nConcept: %s\n", res.Concept)
	for _, method := range cluster.AllMethods() {
		cr, ok := res.Methods[method]
		if !ok {
			continue
		}
		fmt.Printf("  %-8s peak hours: %v\n", method, cr.PeakHours)
	}

	high := segment.HighAgreement(res.Agreement, 2)
	if len(high) > 0 {
		hours := make([]int, 0, len(high))
		for _, row := range high {
			hours = append(hours, row.Hour)
		}
		fmt.Printf("  high-confidence hours (>=2 methods): %v\n", hours)
	}

	if peaksChart {
		caption := fmt.Sprintf("%s hourly volume", res.Concept)
		fmt.Println(output.HourlyChart(res.Points, 72, 8, caption))
		fmt.Println(output.AgreementStrip(res.Agreement))
		fmt.Println(output.AgreementLegend())
	}
}

// loadHourlyPoints accepts either a cleansed-orders SQLite file (aggregated
// here) or a pre-aggregated CSV of (concept, hour, normalized_order_count).
func loadHourlyPoints(input string) ([]segment.HourlyPoint, error) {
	agg := segment.NewAggregator()

	if strings.HasSuffix(input, ".csv") {
		loader, err := ingest.NewLoader()
		if err != nil {
			return nil, fmt.Errorf("failed to create loader: %w", err)
		}
		defer loader.Close()

		points, err := loader.LoadHourlyPoints(input)
		if err != nil {
			return nil, err
		}
		return agg.FromPoints(points), nil
	}

	db, err := store.OpenSQLite(input)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	records, err := db.ReadCleansedOrders()
	if err != nil {
		return nil, err
	}
	orders := make([]segment.Order, 0, len(records))
	for _, r := range records {
		orders = append(orders, r.Order())
	}
	return agg.FromOrders(orders), nil
}

func resolveMethods(flags []string, cfg *config.Config) ([]cluster.Method, error) {
	names := flags
	if len(names) == 0 {
		names = cfg.Segmentation.Methods
	}
	methods := make([]cluster.Method, 0, len(names))
	for _, name := range names {
		m := cluster.Method(strings.TrimSpace(strings.ToLower(name)))
		if !m.IsValid() {
			return nil, &cluster.UnknownMethodError{Method: m}
		}
		methods = append(methods, m)
	}
	return methods, nil
}

func writeReports(dir string, thresholds []output.ThresholdLine, results []*pipeline.ConceptResult) ([]string, error) {
	reports := make([]output.ConceptReport, 0, len(results))
	for _, res := range results {
		reports = append(reports, output.ConceptReport{
			Concept:   res.Concept,
			Points:    res.Points,
			Methods:   res.Methods,
			Agreement: res.Agreement,
		})
	}
	return output.NewGenerator(dir).Generate(thresholds, reports)
}
