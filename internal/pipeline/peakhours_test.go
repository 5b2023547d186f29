package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftsync/venuepulse/internal/cluster"
	"github.com/shiftsync/venuepulse/internal/segment"
)

func conceptPoints(concept string, counts map[int]float64) []segment.HourlyPoint {
	points := make([]segment.HourlyPoint, 0, len(counts))
	for hour, c := range counts {
		points = append(points, segment.HourlyPoint{Concept: concept, Hour: hour, NormalizedOrderCount: c})
	}
	return points
}

func TestPeakHoursRun(t *testing.T) {
	points := conceptPoints("Cafe", map[int]float64{8: 1.0, 9: 5.0, 12: 2.0, 18: 6.0, 19: 4.0})
	points = append(points, conceptPoints("Steakhouse", map[int]float64{17: 2.0, 18: 3.0, 19: 8.0, 20: 9.0, 21: 4.0, 22: 1.0})...)

	runner, err := NewPeakHours(cluster.AllMethods(), 42, 4)
	require.NoError(t, err)

	results, failures, err := runner.Run(context.Background(), points)
	require.NoError(t, err)
	assert.Empty(t, failures)
	require.Len(t, results, 2)

	// Results come back in concept order regardless of worker scheduling.
	assert.Equal(t, "Cafe", results[0].Concept)
	assert.Equal(t, "Steakhouse", results[1].Concept)
	for _, res := range results {
		assert.Len(t, res.Methods, 3)
		assert.Len(t, res.Agreement, 24)
	}
	assert.Equal(t, 3, results[0].Agreement[18].OverlapCount)
	assert.Equal(t, 3, results[1].Agreement[20].OverlapCount)
}

func TestPeakHoursIsolatesConceptFailures(t *testing.T) {
	points := conceptPoints("Cafe", map[int]float64{8: 1.0, 9: 5.0, 12: 2.0, 18: 6.0, 19: 4.0})
	// Two observed hours cannot form three groups.
	points = append(points, conceptPoints("Kiosk", map[int]float64{12: 1.0, 13: 1.5})...)

	runner, err := NewPeakHours(cluster.AllMethods(), 42, 2)
	require.NoError(t, err)

	results, failures, err := runner.Run(context.Background(), points)
	require.NoError(t, err, "one degenerate concept must not abort the batch")
	require.Len(t, results, 1)
	assert.Equal(t, "Cafe", results[0].Concept)

	require.Len(t, failures, 1)
	assert.Equal(t, "Kiosk", failures[0].Unit)
	var degenerate *cluster.DegenerateInputError
	assert.ErrorAs(t, failures[0].Err, &degenerate)
}

func TestPeakHoursAllConceptsFail(t *testing.T) {
	points := conceptPoints("Kiosk", map[int]float64{12: 1.0})
	points = append(points, conceptPoints("Cart", map[int]float64{9: 1.0, 10: 2.0})...)

	runner, err := NewPeakHours(cluster.AllMethods(), 42, 2)
	require.NoError(t, err)

	results, failures, err := runner.Run(context.Background(), points)
	require.Error(t, err)
	assert.Empty(t, results)
	assert.Len(t, failures, 2)
}

func TestPeakHoursWorkerCountDoesNotChangeResults(t *testing.T) {
	points := conceptPoints("Cafe", map[int]float64{8: 1.0, 9: 5.0, 12: 2.0, 18: 6.0, 19: 4.0})
	points = append(points, conceptPoints("Steakhouse", map[int]float64{17: 2.0, 18: 3.0, 19: 8.0, 20: 9.0, 21: 4.0, 22: 1.0})...)
	points = append(points, conceptPoints("Bistro", map[int]float64{11: 3.0, 12: 7.0, 13: 6.0, 18: 2.0, 19: 1.0})...)

	serial, err := NewPeakHours(cluster.AllMethods(), 42, 1)
	require.NoError(t, err)
	parallel, err := NewPeakHours(cluster.AllMethods(), 42, 8)
	require.NoError(t, err)

	a, _, err := serial.Run(context.Background(), points)
	require.NoError(t, err)
	b, _, err := parallel.Run(context.Background(), points)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPeakHoursRejectsUnknownMethod(t *testing.T) {
	_, err := NewPeakHours([]cluster.Method{"spectral"}, 42, 1)
	var unknown *cluster.UnknownMethodError
	require.ErrorAs(t, err, &unknown)
}

func TestFlattenedRows(t *testing.T) {
	points := conceptPoints("Cafe", map[int]float64{8: 1.0, 9: 5.0, 12: 2.0, 18: 6.0, 19: 4.0})

	runner, err := NewPeakHours(cluster.AllMethods(), 42, 1)
	require.NoError(t, err)
	results, _, err := runner.Run(context.Background(), points)
	require.NoError(t, err)

	peaks := PeakRows(results)
	require.NotEmpty(t, peaks)
	for _, row := range peaks {
		assert.Equal(t, "Cafe", row.Concept)
		assert.True(t, row.IsPeak)
	}

	agreement := AgreementRows(results)
	assert.Len(t, agreement, 24)
}
