package segment

import "github.com/shiftsync/venuepulse/internal/cluster"

// hoursPerDay rows are always emitted per concept, observed or not.
const hoursPerDay = 24

// Agreement combines the per-method peak-hour sets for one concept into a
// 24-row table: for every hour of the day, how many methods called it a peak
// and the category that overlap maps to. With zero enabled methods every row
// is CategoryNone but normalized counts are still populated where data
// exists.
func Agreement(concept string, results map[cluster.Method]ClusterResult, points []HourlyPoint) []AgreementRow {
	counts := make(map[int]float64, len(points))
	for _, p := range points {
		if p.Concept == concept {
			counts[p.Hour] = p.NormalizedOrderCount
		}
	}

	peakSets := make([]map[int]bool, 0, len(results))
	for _, res := range results {
		set := make(map[int]bool, len(res.PeakHours))
		for _, h := range res.PeakHours {
			set[h] = true
		}
		peakSets = append(peakSets, set)
	}

	rows := make([]AgreementRow, 0, hoursPerDay)
	for hour := 0; hour < hoursPerDay; hour++ {
		overlap := 0
		for _, set := range peakSets {
			if set[hour] {
				overlap++
			}
		}

		row := AgreementRow{
			Concept:      concept,
			Hour:         hour,
			OverlapCount: overlap,
			Category:     CategoryForOverlap(overlap),
		}
		if v, ok := counts[hour]; ok {
			value := v
			row.NormalizedOrderCount = &value
		}
		rows = append(rows, row)
	}
	return rows
}

// HighAgreement filters agreement rows to those where at least minOverlap
// methods concur. The exported summary view uses minOverlap = 2.
func HighAgreement(rows []AgreementRow, minOverlap int) []AgreementRow {
	var out []AgreementRow
	for _, r := range rows {
		if r.OverlapCount >= minOverlap {
			out = append(out, r)
		}
	}
	return out
}

// PeakRows flattens per-method cluster results into the peak-hours-by-method
// table shape, joining each peak hour with its normalized count.
func PeakRows(results map[cluster.Method]ClusterResult, points []HourlyPoint) []PeakHourRow {
	counts := make(map[string]map[int]float64)
	for _, p := range points {
		if counts[p.Concept] == nil {
			counts[p.Concept] = make(map[int]float64)
		}
		counts[p.Concept][p.Hour] = p.NormalizedOrderCount
	}

	var rows []PeakHourRow
	for _, method := range cluster.AllMethods() {
		res, ok := results[method]
		if !ok {
			continue
		}
		for _, h := range res.PeakHours {
			rows = append(rows, PeakHourRow{
				Concept:              res.Concept,
				Method:               method,
				Hour:                 h,
				NormalizedOrderCount: counts[res.Concept][h],
				IsPeak:               true,
			})
		}
	}
	return rows
}
