// Package pipeline orchestrates the two analytical passes: per-order-type
// duration thresholds and per-concept peak-hour segmentation. Failures are
// collected per unit of work; a single bad order type or concept never
// aborts its siblings.
package pipeline

import (
	"fmt"
	"sort"

	"github.com/shiftsync/venuepulse/internal/ingest"
	"github.com/shiftsync/venuepulse/internal/quantile"
)

// UnitError attaches a failed unit of work (an order type or a concept) to
// its cause.
type UnitError struct {
	Unit string
	Err  error
}

func (e UnitError) Error() string {
	return fmt.Sprintf("%s: %v", e.Unit, e.Err)
}

func (e UnitError) Unwrap() error {
	return e.Err
}

// ThresholdResult is the adaptive duration cutoff for one order type.
type ThresholdResult struct {
	OrderType string
	Quantile  float64
	Value     float64
}

// DetectThresholds groups orders by take-out type and runs the inflection
// detector per group. Grouping happens before the quantile curve is built,
// so each order type gets a cutoff shaped by its own distribution. Groups
// with too little data are reported in the failure list, never silently
// dropped or given a default. The call as a whole fails only when every
// group fails.
func DetectThresholds(orders []ingest.OrderRecord, params quantile.Params) ([]ThresholdResult, []UnitError, error) {
	durations := make(map[string][]float64)
	for _, o := range orders {
		durations[o.OrderType] = append(durations[o.OrderType], o.DurationMinutes)
	}

	orderTypes := make([]string, 0, len(durations))
	for t := range durations {
		orderTypes = append(orderTypes, t)
	}
	sort.Strings(orderTypes)

	detector := quantile.NewDetector(params)

	var (
		results  []ThresholdResult
		failures []UnitError
	)
	for _, orderType := range orderTypes {
		threshold, err := detector.Detect(durations[orderType])
		if err != nil {
			failures = append(failures, UnitError{Unit: orderType, Err: err})
			continue
		}
		results = append(results, ThresholdResult{
			OrderType: orderType,
			Quantile:  threshold.Quantile,
			Value:     threshold.Value,
		})
	}

	if len(results) == 0 && len(failures) > 0 {
		return nil, failures, fmt.Errorf("threshold detection failed for all %d order types", len(failures))
	}
	return results, failures, nil
}

// Cleanse filters orders against the detected thresholds: an order survives
// when its duration does not exceed its type's cutoff. Orders whose type has
// no threshold (the type failed detection) are excluded; their absence was
// already reported through the failure list.
func Cleanse(orders []ingest.OrderRecord, thresholds []ThresholdResult) []ingest.OrderRecord {
	cutoffs := make(map[string]float64, len(thresholds))
	for _, t := range thresholds {
		cutoffs[t.OrderType] = t.Value
	}

	var kept []ingest.OrderRecord
	for _, o := range orders {
		cutoff, ok := cutoffs[o.OrderType]
		if !ok {
			continue
		}
		if o.DurationMinutes <= cutoff {
			kept = append(kept, o)
		}
	}
	return kept
}
