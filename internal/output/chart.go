// Package output renders analysis results for humans: ASCII charts on the
// terminal and markdown reports on disk. It consumes the core's plain result
// tables and owns no analysis logic.
package output

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/shiftsync/venuepulse/internal/segment"
)

// HourlyChart plots a concept's observed hourly volume as an ASCII line
// chart. Unobserved hours are skipped, not drawn as zero.
func HourlyChart(points []segment.HourlyPoint, width, height int, caption string) string {
	if len(points) == 0 {
		return "No data available"
	}
	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	data := make([]float64, 0, len(points))
	for _, p := range points {
		data = append(data, p.NormalizedOrderCount)
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// agreementBlocks maps overlap counts 0-3 to increasing block intensity.
var agreementBlocks = []rune{'·', '░', '▒', '█'}

// AgreementStrip renders the 24-hour agreement table as a single line, one
// glyph per hour, darker meaning more methods agree. Hours without data show
// as a space.
func AgreementStrip(rows []segment.AgreementRow) string {
	var b strings.Builder
	b.WriteString("00 ")
	for _, row := range rows {
		if row.NormalizedOrderCount == nil {
			b.WriteRune(' ')
		} else {
			idx := row.OverlapCount
			if idx >= len(agreementBlocks) {
				idx = len(agreementBlocks) - 1
			}
			b.WriteRune(agreementBlocks[idx])
		}
		if row.Hour == 11 {
			b.WriteRune(' ')
		}
	}
	b.WriteString(" 23")
	return b.String()
}

// AgreementLegend explains the strip glyphs.
func AgreementLegend() string {
	return fmt.Sprintf("%c none  %c low (1)  %c medium (2)  %c high (3)",
		agreementBlocks[0], agreementBlocks[1], agreementBlocks[2], agreementBlocks[3])
}
