package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threeBands is an hourly-volume-like series with three obvious levels.
var threeBands = []float64{0.5, 0.6, 0.4, 5.0, 5.2, 4.8, 20.0, 21.0, 19.5}

// groupsOf collapses labels into the set of member index sets, ignoring
// label numbering.
func groupsOf(labels []int) map[int][]int {
	groups := make(map[int][]int)
	for i, l := range labels {
		groups[l] = append(groups[l], i)
	}
	return groups
}

func assertBandsSeparated(t *testing.T, labels []int) {
	t.Helper()
	require.Len(t, labels, len(threeBands))
	groups := groupsOf(labels)
	require.Len(t, groups, 3)

	// Indices 0-2, 3-5 and 6-8 must each share a label.
	assert.Equal(t, labels[0], labels[1])
	assert.Equal(t, labels[0], labels[2])
	assert.Equal(t, labels[3], labels[4])
	assert.Equal(t, labels[3], labels[5])
	assert.Equal(t, labels[6], labels[7])
	assert.Equal(t, labels[6], labels[8])
	assert.NotEqual(t, labels[0], labels[3])
	assert.NotEqual(t, labels[3], labels[6])
}

func TestPartitionersSeparateBands(t *testing.T) {
	for method := range ValidMethods {
		t.Run(string(method), func(t *testing.T) {
			part, err := New(method, 42)
			require.NoError(t, err)

			labels, err := part.Partition(threeBands, 3)
			require.NoError(t, err)
			assertBandsSeparated(t, labels)
		})
	}
}

func TestPartitionersAreDeterministic(t *testing.T) {
	for method := range ValidMethods {
		t.Run(string(method), func(t *testing.T) {
			first, err := New(method, 42)
			require.NoError(t, err)
			second, err := New(method, 42)
			require.NoError(t, err)

			a, err := first.Partition(threeBands, 3)
			require.NoError(t, err)
			b, err := second.Partition(threeBands, 3)
			require.NoError(t, err)
			assert.Equal(t, a, b)
		})
	}
}

func TestPartitionExactlyKPoints(t *testing.T) {
	// Three points into three groups: one point per group.
	values := []float64{1.0, 5.0, 9.0}
	for method := range ValidMethods {
		t.Run(string(method), func(t *testing.T) {
			part, err := New(method, 42)
			require.NoError(t, err)

			labels, err := part.Partition(values, 3)
			require.NoError(t, err)
			assert.Len(t, groupsOf(labels), 3)
		})
	}
}

func TestPartitionDegenerateInput(t *testing.T) {
	for method := range ValidMethods {
		t.Run(string(method), func(t *testing.T) {
			part, err := New(method, 42)
			require.NoError(t, err)

			_, err = part.Partition([]float64{1.0, 2.0}, 3)
			var degenerate *DegenerateInputError
			require.ErrorAs(t, err, &degenerate)
			assert.Equal(t, 2, degenerate.Points)
			assert.Equal(t, 3, degenerate.Required)
		})
	}
}

func TestNewUnknownMethod(t *testing.T) {
	_, err := New(Method("dbscan"), 42)
	var unknown *UnknownMethodError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, Method("dbscan"), unknown.Method)
}

func TestAllMethodsAreValid(t *testing.T) {
	methods := AllMethods()
	require.Len(t, methods, 3)
	for _, m := range methods {
		assert.True(t, m.IsValid())
	}
	assert.False(t, Method("spectral").IsValid())
}
