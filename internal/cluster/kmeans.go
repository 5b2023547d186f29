package cluster

import (
	"math"
	"math/rand"
)

// KMeans partitions values with Lloyd's algorithm over one-dimensional
// centroids. Initialization is seeded and the best of Restarts runs (lowest
// within-group squared distance) is kept, so results are reproducible.
type KMeans struct {
	Seed     int64
	Restarts int
	MaxIter  int
}

func NewKMeans(seed int64) *KMeans {
	return &KMeans{
		Seed:     seed,
		Restarts: 10,
		MaxIter:  100,
	}
}

func (km *KMeans) Partition(values []float64, k int) ([]int, error) {
	if err := checkInput(values, k); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(km.Seed))

	var bestLabels []int
	bestInertia := math.Inf(1)
	for restart := 0; restart < km.Restarts; restart++ {
		labels, inertia := km.run(values, k, rng)
		if inertia < bestInertia {
			bestInertia = inertia
			bestLabels = labels
		}
	}
	return bestLabels, nil
}

func (km *KMeans) run(values []float64, k int, rng *rand.Rand) ([]int, float64) {
	centroids := initialCentroids(values, k, rng)
	labels := make([]int, len(values))

	for iter := 0; iter < km.MaxIter; iter++ {
		changed := assign(values, centroids, labels)
		update(values, labels, centroids)
		if !changed && iter > 0 {
			break
		}
	}

	inertia := 0.0
	for i, v := range values {
		d := v - centroids[labels[i]]
		inertia += d * d
	}
	return labels, inertia
}

// initialCentroids samples k distinct indices. Duplicate values are fine:
// empty clusters are repaired during assignment.
func initialCentroids(values []float64, k int, rng *rand.Rand) []float64 {
	perm := rng.Perm(len(values))
	centroids := make([]float64, k)
	for i := 0; i < k; i++ {
		centroids[i] = values[perm[i]]
	}
	return centroids
}

func assign(values, centroids []float64, labels []int) bool {
	changed := false
	for i, v := range values {
		best := 0
		bestDist := math.Inf(1)
		for c, centroid := range centroids {
			d := v - centroid
			if d*d < bestDist {
				bestDist = d * d
				best = c
			}
		}
		if labels[i] != best {
			labels[i] = best
			changed = true
		}
	}

	repairEmpty(values, centroids, labels)
	return changed
}

// repairEmpty moves the point farthest from its centroid into any cluster
// that lost all members, keeping the partition at exactly k groups.
func repairEmpty(values, centroids []float64, labels []int) {
	counts := make([]int, len(centroids))
	for _, l := range labels {
		counts[l]++
	}
	for c, n := range counts {
		if n > 0 {
			continue
		}
		farthest := -1
		farthestDist := -1.0
		for i, v := range values {
			if counts[labels[i]] <= 1 {
				continue
			}
			d := v - centroids[labels[i]]
			if d*d > farthestDist {
				farthestDist = d * d
				farthest = i
			}
		}
		if farthest < 0 {
			continue
		}
		counts[labels[farthest]]--
		labels[farthest] = c
		counts[c]++
		centroids[c] = values[farthest]
	}
}

func update(values []float64, labels []int, centroids []float64) {
	sums := make([]float64, len(centroids))
	counts := make([]int, len(centroids))
	for i, v := range values {
		sums[labels[i]] += v
		counts[labels[i]]++
	}
	for c := range centroids {
		if counts[c] > 0 {
			centroids[c] = sums[c] / float64(counts[c])
		}
	}
}
