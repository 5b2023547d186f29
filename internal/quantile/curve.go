package quantile

import (
	"math"
	"sort"
)

// Curve is a quantile curve sampled on a regular grid: Values[i] is the
// empirical quantile of the source column at Quantiles[i]. Quantiles are
// strictly increasing; the curve is read-only once built.
type Curve struct {
	Quantiles []float64
	Values    []float64
}

// Len returns the number of grid points.
func (c Curve) Len() int {
	return len(c.Quantiles)
}

// BuildCurve evaluates the empirical quantile function of samples at every
// grid point q = qmin, qmin+step, ... up to but excluding qmax.
func BuildCurve(samples []float64, qmin, qmax, step float64) Curve {
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	n := int(math.Ceil((qmax - qmin) / step))
	// Guard against step landing exactly on qmax through float rounding.
	for n > 0 && qmin+float64(n-1)*step >= qmax-1e-12 {
		n--
	}

	curve := Curve{
		Quantiles: make([]float64, 0, n),
		Values:    make([]float64, 0, n),
	}
	for i := 0; i < n; i++ {
		q := qmin + float64(i)*step
		curve.Quantiles = append(curve.Quantiles, q)
		curve.Values = append(curve.Values, quantileOf(sorted, q))
	}
	return curve
}

// quantileOf returns the linearly interpolated quantile of a sorted sample.
func quantileOf(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
