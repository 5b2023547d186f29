package cluster

import "math"

// GMM fits k univariate Gaussian components by expectation-maximization and
// assigns each value to its most probable component. Components are
// initialized from a seeded k-means pass so the fit is reproducible.
type GMM struct {
	Seed    int64
	MaxIter int
	Tol     float64
}

func NewGMM(seed int64) *GMM {
	return &GMM{
		Seed:    seed,
		MaxIter: 100,
		Tol:     1e-4,
	}
}

type component struct {
	weight   float64
	mean     float64
	variance float64
}

func (g *GMM) Partition(values []float64, k int) ([]int, error) {
	if err := checkInput(values, k); err != nil {
		return nil, err
	}

	comps := g.initComponents(values, k)
	varFloor := varianceFloor(values)

	resp := make([][]float64, len(values))
	for i := range resp {
		resp[i] = make([]float64, k)
	}

	prevLL := math.Inf(-1)
	for iter := 0; iter < g.MaxIter; iter++ {
		ll := expectation(values, comps, resp)
		maximization(values, comps, resp, varFloor)
		if math.Abs(ll-prevLL) < g.Tol {
			break
		}
		prevLL = ll
	}

	labels := make([]int, len(values))
	for i := range values {
		best := 0
		for c := 1; c < k; c++ {
			if resp[i][c] > resp[i][best] {
				best = c
			}
		}
		labels[i] = best
	}
	return labels, nil
}

// initComponents seeds the mixture from a k-means partition with the same
// seed; a random start would make EM assignments run-dependent.
func (g *GMM) initComponents(values []float64, k int) []component {
	km := NewKMeans(g.Seed)
	labels, err := km.Partition(values, k)
	if err != nil {
		// checkInput already passed, so k-means cannot fail here; fall back
		// to evenly spread components just in case.
		labels = make([]int, len(values))
		for i := range labels {
			labels[i] = i % k
		}
	}
	floor := varianceFloor(values)
	comps := make([]component, k)
	sums := make([]float64, k)
	sqSums := make([]float64, k)
	counts := make([]int, k)
	for i, v := range values {
		sums[labels[i]] += v
		sqSums[labels[i]] += v * v
		counts[labels[i]]++
	}
	for c := range comps {
		n := float64(counts[c])
		if n == 0 {
			n = 1
		}
		mean := sums[c] / n
		variance := sqSums[c]/n - mean*mean
		if variance < floor {
			variance = floor
		}
		comps[c] = component{
			weight:   float64(counts[c]) / float64(len(values)),
			mean:     mean,
			variance: variance,
		}
	}
	return comps
}

// expectation fills resp with posterior component probabilities and returns
// the total log-likelihood.
func expectation(values []float64, comps []component, resp [][]float64) float64 {
	ll := 0.0
	for i, v := range values {
		total := 0.0
		for c, comp := range comps {
			p := comp.weight * normalPDF(v, comp.mean, comp.variance)
			resp[i][c] = p
			total += p
		}
		if total <= 0 {
			// All densities underflowed; spread responsibility evenly.
			for c := range comps {
				resp[i][c] = 1 / float64(len(comps))
			}
			continue
		}
		for c := range comps {
			resp[i][c] /= total
		}
		ll += math.Log(total)
	}
	return ll
}

func maximization(values []float64, comps []component, resp [][]float64, varFloor float64) {
	for c := range comps {
		respSum := 0.0
		mean := 0.0
		for i, v := range values {
			respSum += resp[i][c]
			mean += resp[i][c] * v
		}
		if respSum <= 0 {
			continue
		}
		mean /= respSum

		variance := 0.0
		for i, v := range values {
			d := v - mean
			variance += resp[i][c] * d * d
		}
		variance /= respSum
		if variance < varFloor {
			variance = varFloor
		}

		comps[c].weight = respSum / float64(len(values))
		comps[c].mean = mean
		comps[c].variance = variance
	}
}

// varianceFloor keeps components from collapsing onto a single point.
func varianceFloor(values []float64) float64 {
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	floor := 1e-6 * variance
	if floor < 1e-12 {
		floor = 1e-12
	}
	return floor
}

func normalPDF(x, mean, variance float64) float64 {
	d := x - mean
	return math.Exp(-d*d/(2*variance)) / math.Sqrt(2*math.Pi*variance)
}
