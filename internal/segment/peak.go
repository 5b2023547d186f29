package segment

import (
	"fmt"
	"sort"

	"github.com/shiftsync/venuepulse/internal/cluster"
)

// peakClusters is the fixed partition size: peak, mid and low activity.
const peakClusters = 3

// PeakSelector partitions one concept's hourly series into three groups with
// a clustering method and extracts the group interpreted as "peak": the one
// with the strictly highest mean normalized order count.
//
// On an exact mean tie the group with the fewest hours wins (a concentrated
// cluster is the more plausible peak), and a remaining tie goes to the group
// whose hours sort lowest. The tie-break is a deliberate design choice to
// keep results reproducible; naive highest-mean selection leaves ties to
// map-iteration luck.
type PeakSelector struct{}

func NewPeakSelector() *PeakSelector {
	return &PeakSelector{}
}

// Select runs one partitioner over the concept's series and returns the peak
// group. Points must all belong to the same concept.
func (s *PeakSelector) Select(method cluster.Method, part cluster.Partitioner, concept string, points []HourlyPoint) (ClusterResult, error) {
	series := make([]HourlyPoint, len(points))
	copy(series, points)
	sort.Slice(series, func(i, j int) bool { return series[i].Hour < series[j].Hour })

	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = p.NormalizedOrderCount
	}

	labels, err := part.Partition(values, peakClusters)
	if err != nil {
		return ClusterResult{}, fmt.Errorf("%s clustering for concept %q: %w", method, concept, err)
	}

	groups := buildGroups(series, labels)
	peak := pickPeak(groups)

	means := make([]float64, 0, len(groups))
	for _, g := range groups {
		means = append(means, g.mean)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(means)))

	return ClusterResult{
		Method:       method,
		Concept:      concept,
		PeakHours:    groups[peak].hours,
		ClusterMeans: means,
	}, nil
}

type hourGroup struct {
	mean  float64
	hours []int // sorted ascending
}

func buildGroups(series []HourlyPoint, labels []int) []hourGroup {
	byLabel := make(map[int]*hourGroup)
	counts := make(map[int]int)
	for i, p := range series {
		g, ok := byLabel[labels[i]]
		if !ok {
			g = &hourGroup{}
			byLabel[labels[i]] = g
		}
		g.mean += p.NormalizedOrderCount
		g.hours = append(g.hours, p.Hour)
		counts[labels[i]]++
	}

	groups := make([]hourGroup, 0, len(byLabel))
	for label, g := range byLabel {
		g.mean /= float64(counts[label])
		sort.Ints(g.hours)
		groups = append(groups, *g)
	}
	// Stable ordering before selection so ties resolve identically run to run.
	sort.Slice(groups, func(i, j int) bool { return lessHours(groups[i].hours, groups[j].hours) })
	return groups
}

func pickPeak(groups []hourGroup) int {
	best := 0
	for i := 1; i < len(groups); i++ {
		if peakBefore(groups[i], groups[best]) {
			best = i
		}
	}
	return best
}

// peakBefore reports whether a is a better peak candidate than b: higher
// mean, then fewer hours, then numerically smallest hours.
func peakBefore(a, b hourGroup) bool {
	if a.mean != b.mean {
		return a.mean > b.mean
	}
	if len(a.hours) != len(b.hours) {
		return len(a.hours) < len(b.hours)
	}
	return lessHours(a.hours, b.hours)
}

// lessHours compares two sorted hour slices lexicographically.
func lessHours(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
