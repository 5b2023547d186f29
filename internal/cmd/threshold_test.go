package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftsync/venuepulse/internal/pipeline"
)

// writeThresholdFixtures builds a bills file whose dine_in durations grow
// slowly and then jump an order of magnitude at the 96th percentile, plus the
// matching venues file and a config tuned for the small grid.
func writeThresholdFixtures(t *testing.T, dir string) (bills, venues, cfg string) {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("order_uuid,venue_xref_id,order_take_out_type_label,order_duration_seconds,order_seated_at_local,business_date\n")
	n := 2000
	base := int(float64(n) * 0.96)
	for i := 0; i < n; i++ {
		seconds := 1800 * float64(i) / float64(base)
		if i >= base {
			seconds = 60000 + 60*float64(i-base)
		}
		sb.WriteString(fmt.Sprintf("o-%d,v-1,dine_in,%.1f,2026-03-01 18:30:00,2026-03-01\n", i, seconds))
	}
	bills = filepath.Join(dir, "bills.csv")
	require.NoError(t, os.WriteFile(bills, []byte(sb.String()), 0o644))

	venues = filepath.Join(dir, "venues.csv")
	require.NoError(t, os.WriteFile(venues, []byte("venue_xref_id,concept\nv-1,Cafe\n"), 0o644))

	cfg = filepath.Join(dir, "config.yaml")
	body := "threshold:\n  window_length: 7\n  polyorder: 2\n"
	require.NoError(t, os.WriteFile(cfg, []byte(body), 0o644))
	return bills, venues, cfg
}

func TestRunThresholdWritesReport(t *testing.T) {
	dir := t.TempDir()
	reportDir := filepath.Join(dir, "reports")
	bills, venues, cfg := writeThresholdFixtures(t, dir)

	thresholdBills = bills
	thresholdVenues = venues
	thresholdOut = ""
	thresholdReportDir = reportDir
	thresholdConfig = cfg

	require.NoError(t, runThreshold(thresholdCmd, nil))

	body, err := os.ReadFile(filepath.Join(reportDir, "duration-thresholds.md"))
	require.NoError(t, err)
	assert.Contains(t, string(body), "# Order Duration Thresholds")
	assert.Contains(t, string(body), "| dine_in | 0.9")
}

func TestThresholdLines(t *testing.T) {
	lines := thresholdLines([]pipeline.ThresholdResult{
		{OrderType: "dine_in", Quantile: 0.968, Value: 94.5},
		{OrderType: "take_out", Quantile: 0.955, Value: 22.0},
	})
	require.Len(t, lines, 2)
	assert.Equal(t, "dine_in", lines[0].OrderType)
	assert.InDelta(t, 0.968, lines[0].Quantile, 1e-9)
	assert.InDelta(t, 22.0, lines[1].Value, 1e-9)
}
