package quantile

import "fmt"

// Params configures the quantile grid and the smoothing applied to its
// derivatives.
type Params struct {
	QuantileMin  float64
	QuantileMax  float64
	QuantileStep float64
	WindowLength int
	PolyOrder    int
}

// DefaultParams returns the detector defaults. The grid covers the upper tail
// where order-duration distributions stop growing linearly.
func DefaultParams() Params {
	return Params{
		QuantileMin:  0.935,
		QuantileMax:  0.985,
		QuantileStep: 0.001,
		WindowLength: 7,
		PolyOrder:    2,
	}
}

// Threshold is the detected cutoff: the quantile where the duration curve
// bends and the raw value at that quantile.
type Threshold struct {
	Quantile float64
	Value    float64
}

// InsufficientDataError reports a sample too small to support the smoothing
// window required by the detector.
type InsufficientDataError struct {
	Samples  int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %d samples, need at least %d to fill the smoothing window", e.Samples, e.Required)
}

// Detector locates the inflection point of a quantile curve: the grid point
// where the curve's growth rate changes most sharply upward. Used as an
// adaptive outlier cutoff for order durations.
type Detector struct {
	params Params
}

func NewDetector(params Params) *Detector {
	return &Detector{params: params}
}

// relativeThreshold is the fraction of the peak second derivative that counts
// as the start of the non-linear region.
const relativeThreshold = 0.15

// Detect builds the quantile curve for samples and returns the threshold at
// its inflection point.
func (d *Detector) Detect(samples []float64) (Threshold, error) {
	p := d.params

	// The filter needs a full window of slopes, and the slope count is one
	// less than the grid length. Degenerate samples must not reach the
	// filter: they would produce a meaningless flat curve, not an error.
	required := p.WindowLength + 2
	if len(samples) < required {
		return Threshold{}, &InsufficientDataError{Samples: len(samples), Required: required}
	}

	curve := BuildCurve(samples, p.QuantileMin, p.QuantileMax, p.QuantileStep)
	if curve.Len()-1 < p.WindowLength || curve.Len() < 4 {
		return Threshold{}, &InsufficientDataError{Samples: curve.Len(), Required: p.WindowLength + 1}
	}

	slopes := make([]float64, curve.Len()-1)
	for i := range slopes {
		slopes[i] = (curve.Values[i+1] - curve.Values[i]) / p.QuantileStep
	}

	smoothSlopes := Smooth(slopes, p.WindowLength, p.PolyOrder)

	second := diff(smoothSlopes)
	window := p.WindowLength
	if w := len(second) - 2; w < window {
		window = w
	}
	if window < 3 {
		return Threshold{}, &InsufficientDataError{Samples: len(samples), Required: required}
	}
	order := p.PolyOrder
	if order > 1 {
		// A short, noisy second-derivative array over-fits at higher orders.
		order = 1
	}
	smoothSecond := Smooth(second, window, order)

	idx := inflectionIndex(smoothSecond)

	// Clamp to the grid so the +1 offset cannot run past the curve.
	if idx < 0 {
		idx = 0
	}
	if idx > curve.Len()-2 {
		idx = curve.Len() - 2
	}
	return Threshold{Quantile: curve.Quantiles[idx], Value: curve.Values[idx]}, nil
}

// inflectionIndex scans the normalized second derivative for the first point
// past the leading edge that exceeds the relative threshold. Falls back to
// the global maximum when nothing crosses it.
func inflectionIndex(smoothSecond []float64) int {
	maxAbs := 0.0
	for _, v := range smoothSecond {
		if abs(v) > maxAbs {
			maxAbs = abs(v)
		}
	}

	if maxAbs > 0 {
		// Skip the earliest 10% of the array: edge artifacts from the
		// filter would otherwise trigger the scan immediately.
		start := int(float64(len(smoothSecond)) * 0.1)
		for i := start; i < len(smoothSecond); i++ {
			if smoothSecond[i]/maxAbs > relativeThreshold {
				return i + 1
			}
		}
	}
	return argmax(smoothSecond) + 1
}

func diff(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}
	out := make([]float64, len(data)-1)
	for i := range out {
		out[i] = data[i+1] - data[i]
	}
	return out
}

func argmax(data []float64) int {
	best := 0
	for i, v := range data {
		if v > data[best] {
			best = i
		}
	}
	return best
}
