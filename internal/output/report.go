package output

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/shiftsync/venuepulse/internal/cluster"
	"github.com/shiftsync/venuepulse/internal/segment"
)

// Generator writes markdown reports summarizing an analysis run.
type Generator struct {
	outputDir string
}

func NewGenerator(outputDir string) *Generator {
	return &Generator{outputDir: outputDir}
}

// ConceptReport is the per-concept input to the report writer.
type ConceptReport struct {
	Concept   string
	Points    []segment.HourlyPoint
	Methods   map[cluster.Method]segment.ClusterResult
	Agreement []segment.AgreementRow
}

// ThresholdLine is one detected duration cutoff for the report header.
type ThresholdLine struct {
	OrderType string
	Quantile  float64
	Value     float64
}

// Generate writes one markdown file per concept plus a run summary, and
// returns the written paths.
func (g *Generator) Generate(thresholds []ThresholdLine, reports []ConceptReport) ([]string, error) {
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	var files []string

	if len(thresholds) > 0 {
		filename, err := g.writeThresholdFile(thresholds)
		if err != nil {
			return nil, err
		}
		files = append(files, filename)
	}

	sorted := make([]ConceptReport, len(reports))
	copy(sorted, reports)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Concept < sorted[j].Concept })

	for _, report := range sorted {
		filename, err := g.writeConceptFile(report)
		if err != nil {
			return nil, err
		}
		files = append(files, filename)
	}
	return files, nil
}

func (g *Generator) writeThresholdFile(thresholds []ThresholdLine) (string, error) {
	filename := filepath.Join(g.outputDir, "duration-thresholds.md")

	var sb strings.Builder
	sb.WriteString("# Order Duration Thresholds\n\n")
	sb.WriteString("Adaptive cutoffs detected from the inflection of each order type's duration quantile curve.\n\n")
	sb.WriteString("| Order type | Quantile | Cutoff (minutes) |\n")
	sb.WriteString("|---|---|---|\n")
	for _, t := range thresholds {
		sb.WriteString(fmt.Sprintf("| %s | %.3f | %.1f |\n", t.OrderType, t.Quantile, t.Value))
	}

	if err := os.WriteFile(filename, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write threshold report: %w", err)
	}
	return filename, nil
}

func (g *Generator) writeConceptFile(report ConceptReport) (string, error) {
	filename := filepath.Join(g.outputDir, fmt.Sprintf("peaks-%s.md", sanitizeFilename(report.Concept)))

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Peak Hours: %s\n\n", report.Concept))

	sb.WriteString("## Peak hours by method\n\n")
	for _, method := range cluster.AllMethods() {
		res, ok := report.Methods[method]
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("- **%s**: %s\n", method, formatHours(res.PeakHours)))
	}

	sb.WriteString("\n## Agreement\n\n")
	sb.WriteString("```\n")
	sb.WriteString(AgreementStrip(report.Agreement))
	sb.WriteString("\n")
	sb.WriteString(AgreementLegend())
	sb.WriteString("\n```\n\n")

	high := segment.HighAgreement(report.Agreement, 2)
	if len(high) > 0 {
		sb.WriteString("## High-confidence peak hours\n\n")
		sb.WriteString("| Hour | Methods agreeing | Normalized count |\n")
		sb.WriteString("|---|---|---|\n")
		for _, row := range high {
			count := "n/a"
			if row.NormalizedOrderCount != nil {
				count = fmt.Sprintf("%.2f", *row.NormalizedOrderCount)
			}
			sb.WriteString(fmt.Sprintf("| %02d:00 | %d | %s |\n", row.Hour, row.OverlapCount, count))
		}
	}

	if err := os.WriteFile(filename, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write concept report: %w", err)
	}
	return filename, nil
}

func formatHours(hours []int) string {
	if len(hours) == 0 {
		return "none"
	}
	parts := make([]string, len(hours))
	for i, h := range hours {
		parts[i] = fmt.Sprintf("%02d:00", h)
	}
	return strings.Join(parts, ", ")
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

func sanitizeFilename(name string) string {
	safe := unsafeFilenameChars.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(safe, "-")
}
