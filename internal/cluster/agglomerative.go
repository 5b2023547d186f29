package cluster

// Agglomerative merges the two closest groups repeatedly until exactly k
// remain. With a single numeric feature the distance between groups is the
// absolute difference of their means. No seed is involved: merge ties are
// broken by lowest group index, so the result is fully deterministic.
type Agglomerative struct{}

type aggloGroup struct {
	sum     float64
	count   int
	members []int
}

func (g *aggloGroup) mean() float64 {
	return g.sum / float64(g.count)
}

func (a *Agglomerative) Partition(values []float64, k int) ([]int, error) {
	if err := checkInput(values, k); err != nil {
		return nil, err
	}

	groups := make([]*aggloGroup, len(values))
	for i, v := range values {
		groups[i] = &aggloGroup{sum: v, count: 1, members: []int{i}}
	}

	for len(groups) > k {
		bi, bj := closestPair(groups)
		groups[bi].sum += groups[bj].sum
		groups[bi].count += groups[bj].count
		groups[bi].members = append(groups[bi].members, groups[bj].members...)
		groups = append(groups[:bj], groups[bj+1:]...)
	}

	labels := make([]int, len(values))
	for label, g := range groups {
		for _, m := range g.members {
			labels[m] = label
		}
	}
	return labels, nil
}

func closestPair(groups []*aggloGroup) (int, int) {
	bi, bj := 0, 1
	best := abs(groups[0].mean() - groups[1].mean())
	for i := 0; i < len(groups); i++ {
		for j := i + 1; j < len(groups); j++ {
			d := abs(groups[i].mean() - groups[j].mean())
			if d < best {
				best = d
				bi, bj = i, j
			}
		}
	}
	return bi, bj
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
