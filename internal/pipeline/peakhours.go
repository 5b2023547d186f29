package pipeline

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/shiftsync/venuepulse/internal/cluster"
	"github.com/shiftsync/venuepulse/internal/segment"
)

// ConceptResult bundles everything the analysis produced for one concept.
type ConceptResult struct {
	Concept   string
	Points    []segment.HourlyPoint
	Methods   map[cluster.Method]segment.ClusterResult
	Agreement []segment.AgreementRow
}

// PeakHours runs segmentation and agreement analysis across concepts.
// Concepts are independent, so they fan out over a bounded worker pool; each
// worker writes only its own slot and results merge after all workers are
// done.
type PeakHours struct {
	segmenter *segment.Segmenter
	workers   int
}

// NewPeakHours wires a runner for the enabled methods. workers caps the
// number of concepts analyzed concurrently.
func NewPeakHours(methods []cluster.Method, seed int64, workers int) (*PeakHours, error) {
	seg, err := segment.NewSegmenter(methods, seed)
	if err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}
	return &PeakHours{segmenter: seg, workers: workers}, nil
}

// Run analyzes every concept present in points. Per-concept failures (e.g.
// a concept with fewer than three observed hours) land in the returned
// failure list; the error is non-nil only when no concept succeeds.
func (p *PeakHours) Run(ctx context.Context, points []segment.HourlyPoint) ([]*ConceptResult, []UnitError, error) {
	grouped := segment.GroupByConcept(points)

	concepts := make([]string, 0, len(grouped))
	for c := range grouped {
		concepts = append(concepts, c)
	}
	sort.Strings(concepts)

	type slot struct {
		result *ConceptResult
		err    error
	}
	slots := make([]slot, len(concepts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, concept := range concepts {
		i, concept := i, concept
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			series := grouped[concept]
			methods, err := p.segmenter.Segment(concept, series)
			if err != nil {
				slots[i] = slot{err: err}
				return nil
			}
			slots[i] = slot{result: &ConceptResult{
				Concept:   concept,
				Points:    series,
				Methods:   methods,
				Agreement: segment.Agreement(concept, methods, series),
			}}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var (
		results  []*ConceptResult
		failures []UnitError
	)
	for i, s := range slots {
		if s.err != nil {
			failures = append(failures, UnitError{Unit: concepts[i], Err: s.err})
			continue
		}
		results = append(results, s.result)
	}

	if len(results) == 0 && len(failures) > 0 {
		return nil, failures, fmt.Errorf("peak-hour analysis failed for all %d concepts", len(failures))
	}
	return results, failures, nil
}

// PeakRows flattens all concept results into the peak-hours-by-method table.
func PeakRows(results []*ConceptResult) []segment.PeakHourRow {
	var rows []segment.PeakHourRow
	for _, res := range results {
		rows = append(rows, segment.PeakRows(res.Methods, res.Points)...)
	}
	return rows
}

// AgreementRows flattens all concept agreement tables into one.
func AgreementRows(results []*ConceptResult) []segment.AgreementRow {
	var rows []segment.AgreementRow
	for _, res := range results {
		rows = append(rows, res.Agreement...)
	}
	return rows
}
