package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftsync/venuepulse/internal/cluster"
)

func TestNewSegmenterRejectsUnknownMethod(t *testing.T) {
	_, err := NewSegmenter([]cluster.Method{cluster.MethodKMeans, "spectral"}, 42)
	var unknown *cluster.UnknownMethodError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, cluster.Method("spectral"), unknown.Method)
}

func TestSegmenterAllMethodsAgreeOnClearPeak(t *testing.T) {
	// Five observed hours with a clear evening peak. All three methods must
	// mark 18:00 as peak, driving its agreement overlap to 3.
	points := hourlySeries(map[int]float64{8: 1.0, 9: 5.0, 12: 2.0, 18: 6.0, 19: 4.0})
	observed := map[int]bool{8: true, 9: true, 12: true, 18: true, 19: true}

	seg, err := NewSegmenter(cluster.AllMethods(), 42)
	require.NoError(t, err)

	results, err := seg.Segment("Cafe", points)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for method, res := range results {
		assert.Equal(t, method, res.Method)
		assert.Equal(t, "Cafe", res.Concept)
		assert.Contains(t, res.PeakHours, 18, "%s must flag the busiest hour", method)
		for _, h := range res.PeakHours {
			assert.True(t, observed[h], "%s produced unobserved peak hour %d", method, h)
		}
		require.Len(t, res.ClusterMeans, 3)
		assert.GreaterOrEqual(t, res.ClusterMeans[0], res.ClusterMeans[1])
		assert.GreaterOrEqual(t, res.ClusterMeans[1], res.ClusterMeans[2])
	}

	rows := Agreement("Cafe", results, points)
	require.Len(t, rows, 24)
	assert.Equal(t, 3, rows[18].OverlapCount)
	assert.Equal(t, CategoryHigh, rows[18].Category)
	for hour, row := range rows {
		if !observed[hour] {
			assert.Equal(t, 0, row.OverlapCount, "hour %d was never observed", hour)
			assert.Nil(t, row.NormalizedOrderCount)
		}
	}
}

func TestSegmenterIsIdempotent(t *testing.T) {
	points := hourlySeries(map[int]float64{8: 1.0, 9: 5.0, 12: 2.0, 18: 6.0, 19: 4.0})

	seg, err := NewSegmenter(cluster.AllMethods(), 42)
	require.NoError(t, err)

	first, err := seg.Segment("Cafe", points)
	require.NoError(t, err)
	second, err := seg.Segment("Cafe", points)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSegmenterTooFewHours(t *testing.T) {
	points := hourlySeries(map[int]float64{8: 1.0, 9: 5.0})

	seg, err := NewSegmenter([]cluster.Method{cluster.MethodKMeans}, 42)
	require.NoError(t, err)

	_, err = seg.Segment("Cafe", points)
	var degenerate *cluster.DegenerateInputError
	require.ErrorAs(t, err, &degenerate)
	assert.Equal(t, 2, degenerate.Points)
}

func TestSegmenterZeroMethods(t *testing.T) {
	points := hourlySeries(map[int]float64{8: 1.0, 9: 5.0, 18: 6.0})

	seg, err := NewSegmenter(nil, 42)
	require.NoError(t, err)

	results, err := seg.Segment("Cafe", points)
	require.NoError(t, err)
	assert.Empty(t, results)

	rows := Agreement("Cafe", results, points)
	require.Len(t, rows, 24)
	for _, row := range rows {
		assert.Equal(t, CategoryNone, row.Category)
	}
}
