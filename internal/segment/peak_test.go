package segment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftsync/venuepulse/internal/cluster"
)

// fixedPartitioner returns canned labels (or a canned error) so selection
// logic can be tested independently of any clustering method.
type fixedPartitioner struct {
	labels []int
	err    error
}

func (f *fixedPartitioner) Partition(values []float64, k int) ([]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.labels, nil
}

func hourlySeries(counts map[int]float64) []HourlyPoint {
	points := make([]HourlyPoint, 0, len(counts))
	for hour, c := range counts {
		points = append(points, HourlyPoint{Concept: "Cafe", Hour: hour, NormalizedOrderCount: c})
	}
	return points
}

func TestSelectPicksHighestMeanGroup(t *testing.T) {
	points := hourlySeries(map[int]float64{8: 1.0, 9: 5.0, 12: 2.0, 18: 6.0, 19: 4.0})
	// After the hour sort the series is 8,9,12,18,19; group 9 and 18 together.
	part := &fixedPartitioner{labels: []int{0, 1, 0, 1, 2}}

	res, err := NewPeakSelector().Select(cluster.MethodKMeans, part, "Cafe", points)
	require.NoError(t, err)

	assert.Equal(t, []int{9, 18}, res.PeakHours)
	require.Len(t, res.ClusterMeans, 3)
	assert.InDelta(t, 5.5, res.ClusterMeans[0], 1e-9)
	assert.InDelta(t, 4.0, res.ClusterMeans[1], 1e-9)
	assert.InDelta(t, 1.5, res.ClusterMeans[2], 1e-9)
}

func TestSelectMeanTieFewerHoursWins(t *testing.T) {
	points := hourlySeries(map[int]float64{0: 5.0, 1: 5.0, 2: 5.0, 3: 1.0})
	// Groups {0,1} and {2} share mean 5.0; the single-hour group is the peak.
	part := &fixedPartitioner{labels: []int{0, 0, 1, 2}}

	res, err := NewPeakSelector().Select(cluster.MethodKMeans, part, "Cafe", points)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, res.PeakHours)
}

func TestSelectFullTieLowestHoursWin(t *testing.T) {
	points := hourlySeries(map[int]float64{0: 5.0, 1: 2.0, 2: 5.0, 3: 2.0})
	// Groups {0} and {2} tie on mean and size; hour 0 sorts first.
	part := &fixedPartitioner{labels: []int{0, 1, 2, 1}}

	res, err := NewPeakSelector().Select(cluster.MethodGMM, part, "Cafe", points)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, res.PeakHours)
}

func TestSelectSortsInputByHour(t *testing.T) {
	// Deliberately unsorted input; labels apply to the hour-sorted series.
	points := []HourlyPoint{
		{Concept: "Cafe", Hour: 19, NormalizedOrderCount: 4.0},
		{Concept: "Cafe", Hour: 8, NormalizedOrderCount: 1.0},
		{Concept: "Cafe", Hour: 18, NormalizedOrderCount: 6.0},
	}
	part := &fixedPartitioner{labels: []int{0, 1, 2}}

	res, err := NewPeakSelector().Select(cluster.MethodAgglomerative, part, "Cafe", points)
	require.NoError(t, err)
	assert.Equal(t, []int{18}, res.PeakHours)
}

func TestSelectWrapsPartitionError(t *testing.T) {
	points := hourlySeries(map[int]float64{8: 1.0})
	wantErr := &cluster.DegenerateInputError{Points: 1, Required: 3}
	part := &fixedPartitioner{err: wantErr}

	_, err := NewPeakSelector().Select(cluster.MethodKMeans, part, "Cafe", points)
	var degenerate *cluster.DegenerateInputError
	require.ErrorAs(t, err, &degenerate)
	assert.Contains(t, err.Error(), "Cafe")
}

func TestSelectErrorIsUnwrappable(t *testing.T) {
	sentinel := errors.New("backend unavailable")
	part := &fixedPartitioner{err: sentinel}

	_, err := NewPeakSelector().Select(cluster.MethodKMeans, part, "Cafe", hourlySeries(map[int]float64{8: 1.0}))
	assert.ErrorIs(t, err, sentinel)
}
