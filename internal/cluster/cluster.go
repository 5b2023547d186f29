// Package cluster partitions one-dimensional series into k groups. Three
// strategies are provided; all are deterministic for a fixed seed so repeated
// runs over identical input produce identical partitions.
package cluster

import "fmt"

type Method string

const (
	MethodKMeans        Method = "kmeans"
	MethodGMM           Method = "gmm"
	MethodAgglomerative Method = "agglo"
)

var ValidMethods = map[Method]string{
	MethodKMeans:        "Centroid-based partitioning (Lloyd's algorithm, seeded, multiple restarts)",
	MethodGMM:           "Gaussian mixture partitioning (univariate EM, seeded)",
	MethodAgglomerative: "Hierarchical agglomerative partitioning (closest-means merging, unseeded)",
}

func (m Method) IsValid() bool {
	_, ok := ValidMethods[m]
	return ok
}

// AllMethods returns the built-in methods in a stable order.
func AllMethods() []Method {
	return []Method{MethodKMeans, MethodGMM, MethodAgglomerative}
}

// Partitioner splits a one-dimensional series into exactly k groups. The
// returned slice assigns a group label in [0,k) to each input value. Label
// numbering is arbitrary; callers rank groups by their own statistics.
type Partitioner interface {
	Partition(values []float64, k int) ([]int, error)
}

// New builds the partitioner for a method. The seed is ignored by methods
// that are deterministic by construction.
func New(method Method, seed int64) (Partitioner, error) {
	switch method {
	case MethodKMeans:
		return NewKMeans(seed), nil
	case MethodGMM:
		return NewGMM(seed), nil
	case MethodAgglomerative:
		return &Agglomerative{}, nil
	}
	return nil, &UnknownMethodError{Method: method}
}

// UnknownMethodError reports a clustering method that is not one of the
// built-in strategies.
type UnknownMethodError struct {
	Method Method
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("unknown clustering method %q", e.Method)
}

// DegenerateInputError reports a series with fewer distinct points than the
// requested group count. Clustering such input is ill-defined and must fail
// loudly instead of returning fewer groups.
type DegenerateInputError struct {
	Points   int
	Required int
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("degenerate input: %d points, need at least %d to form %d groups", e.Points, e.Required, e.Required)
}

func checkInput(values []float64, k int) error {
	if k < 1 {
		return fmt.Errorf("group count must be positive, got %d", k)
	}
	if len(values) < k {
		return &DegenerateInputError{Points: len(values), Required: k}
	}
	return nil
}
