// Package segment identifies per-concept peak operating hours from hourly
// order volume and scores every hour by how many clustering methods agree it
// is a peak.
package segment

import (
	"time"

	"github.com/shiftsync/venuepulse/internal/cluster"
)

// Order is one cleansed transaction record as handed over by the ingestion
// stage. Records with an empty Concept never contribute to peak analysis:
// peaks are not calculated for unidentified concepts.
type Order struct {
	Concept      string
	VenueID      string
	BusinessDate string
	SeatedAt     time.Time
}

// HourlyPoint is the mean normalized order count for one (concept, hour)
// pair. Hours never observed for a concept are simply absent, not zero.
type HourlyPoint struct {
	Concept              string
	Hour                 int
	NormalizedOrderCount float64
}

// ClusterResult is the peak group extracted from one clustering method's
// partition of a concept's hourly series. Produced once per (concept,
// method) and never mutated afterwards.
type ClusterResult struct {
	Method  cluster.Method
	Concept string

	// PeakHours is sorted ascending and is always a subset of the hours
	// observed for the concept.
	PeakHours []int

	// ClusterMeans holds the mean normalized count of every group, sorted
	// descending; ClusterMeans[0] belongs to the peak group.
	ClusterMeans []float64
}

// AgreementCategory labels how many methods classified an hour as peak.
type AgreementCategory string

const (
	CategoryNone   AgreementCategory = "None (0)"
	CategoryLow    AgreementCategory = "Low (1)"
	CategoryMedium AgreementCategory = "Medium (2)"
	CategoryHigh   AgreementCategory = "High (3)"
)

// CategoryForOverlap maps an overlap count to its category. The mapping is
// fixed: 3 -> High, 2 -> Medium, 1 -> Low, anything else -> None.
func CategoryForOverlap(overlap int) AgreementCategory {
	switch overlap {
	case 3:
		return CategoryHigh
	case 2:
		return CategoryMedium
	case 1:
		return CategoryLow
	}
	return CategoryNone
}

// AgreementRow is one hour of the 24-row agreement table for a concept.
// NormalizedOrderCount is nil when the hour was never observed; "no data" is
// deliberately distinct from "no orders".
type AgreementRow struct {
	Concept              string
	Hour                 int
	OverlapCount         int
	Category             AgreementCategory
	NormalizedOrderCount *float64
}

// PeakHourRow is one row of the peak-hours-by-method result table.
type PeakHourRow struct {
	Concept              string
	Method               cluster.Method
	Hour                 int
	NormalizedOrderCount float64
	IsPeak               bool
}
