package segment

import (
	"fmt"

	"github.com/shiftsync/venuepulse/internal/cluster"
)

// Segmenter runs every enabled clustering method over a concept's hourly
// series. It holds no per-run state: calling Segment twice on identical
// input yields identical results, since every method is either seeded or
// deterministic by construction.
type Segmenter struct {
	methods  []cluster.Method
	seed     int64
	selector *PeakSelector
}

// NewSegmenter validates the enabled methods up front so an unknown method
// fails at construction rather than mid-batch. Zero methods is allowed: the
// agreement table then degrades to all-None rows.
func NewSegmenter(methods []cluster.Method, seed int64) (*Segmenter, error) {
	for _, m := range methods {
		if !m.IsValid() {
			return nil, &cluster.UnknownMethodError{Method: m}
		}
	}
	return &Segmenter{
		methods:  methods,
		seed:     seed,
		selector: NewPeakSelector(),
	}, nil
}

// Methods returns the enabled methods in their configured order.
func (s *Segmenter) Methods() []cluster.Method {
	return s.methods
}

// Segment produces one ClusterResult per enabled method for the concept.
// A method failure (e.g. degenerate input) fails the whole concept; callers
// isolate failures per concept, never per method, so a concept either has a
// complete method set or an explicit error.
func (s *Segmenter) Segment(concept string, points []HourlyPoint) (map[cluster.Method]ClusterResult, error) {
	results := make(map[cluster.Method]ClusterResult, len(s.methods))
	for _, method := range s.methods {
		part, err := cluster.New(method, s.seed)
		if err != nil {
			return nil, err
		}
		res, err := s.selector.Select(method, part, concept, points)
		if err != nil {
			return nil, fmt.Errorf("segmenting concept %q: %w", concept, err)
		}
		results[method] = res
	}
	return results, nil
}
