package segment

import "sort"

// Aggregator reduces raw order records to per-(concept, hour) mean
// normalized order counts. The reduction runs in three steps mirroring the
// venue analysis pipeline: count orders per (venue, business date, hour),
// average those counts over a venue's observed dates, then average the
// venue-level means per concept.
type Aggregator struct{}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// FromOrders aggregates cleansed order records. Records with an empty
// concept are skipped: hourly peaks are not computed for unidentified
// concepts, upstream is expected to have filtered them. The output is sorted
// by concept then hour; absent hours produce no point.
func (a *Aggregator) FromOrders(orders []Order) []HourlyPoint {
	type vdh struct {
		venue, concept, date string
		hour                 int
	}
	dailyCounts := make(map[vdh]float64)
	for _, o := range orders {
		if o.Concept == "" {
			continue
		}
		key := vdh{venue: o.VenueID, concept: o.Concept, date: o.BusinessDate, hour: o.SeatedAt.Hour()}
		dailyCounts[key]++
	}

	type vh struct {
		venue, concept string
		hour           int
	}
	venueSums := make(map[vh]float64)
	venueDays := make(map[vh]int)
	for key, count := range dailyCounts {
		vk := vh{venue: key.venue, concept: key.concept, hour: key.hour}
		venueSums[vk] += count
		venueDays[vk]++
	}

	type ch struct {
		concept string
		hour    int
	}
	conceptSums := make(map[ch]float64)
	conceptVenues := make(map[ch]int)
	for vk := range venueSums {
		ck := ch{concept: vk.concept, hour: vk.hour}
		conceptSums[ck] += venueSums[vk] / float64(venueDays[vk])
		conceptVenues[ck]++
	}

	points := make([]HourlyPoint, 0, len(conceptSums))
	for ck := range conceptSums {
		points = append(points, HourlyPoint{
			Concept:              ck.concept,
			Hour:                 ck.hour,
			NormalizedOrderCount: conceptSums[ck] / float64(conceptVenues[ck]),
		})
	}
	sortPoints(points)
	return points
}

// FromPoints collapses pre-aggregated points (e.g. venue-level rows loaded
// from a previous run) to one mean point per (concept, hour).
func (a *Aggregator) FromPoints(points []HourlyPoint) []HourlyPoint {
	type ch struct {
		concept string
		hour    int
	}
	sums := make(map[ch]float64)
	counts := make(map[ch]int)
	for _, p := range points {
		if p.Concept == "" {
			continue
		}
		key := ch{concept: p.Concept, hour: p.Hour}
		sums[key] += p.NormalizedOrderCount
		counts[key]++
	}

	out := make([]HourlyPoint, 0, len(sums))
	for key := range sums {
		out = append(out, HourlyPoint{
			Concept:              key.concept,
			Hour:                 key.hour,
			NormalizedOrderCount: sums[key] / float64(counts[key]),
		})
	}
	sortPoints(out)
	return out
}

// GroupByConcept splits points into per-concept series, each sorted by hour.
func GroupByConcept(points []HourlyPoint) map[string][]HourlyPoint {
	grouped := make(map[string][]HourlyPoint)
	for _, p := range points {
		grouped[p.Concept] = append(grouped[p.Concept], p)
	}
	for _, series := range grouped {
		sort.Slice(series, func(i, j int) bool { return series[i].Hour < series[j].Hour })
	}
	return grouped
}

func sortPoints(points []HourlyPoint) {
	sort.Slice(points, func(i, j int) bool {
		if points[i].Concept != points[j].Concept {
			return points[i].Concept < points[j].Concept
		}
		return points[i].Hour < points[j].Hour
	})
}
