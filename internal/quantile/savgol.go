package quantile

// Smooth applies a Savitzky-Golay style local-polynomial filter: each output
// point is the value at the window center of a least-squares polynomial fit
// over the surrounding window. Windows are shifted (not shrunk) at the array
// edges so every fit uses the full window length.
func Smooth(data []float64, window, polyorder int) []float64 {
	if len(data) == 0 {
		return nil
	}
	if window > len(data) {
		window = len(data)
	}
	if window%2 == 0 {
		window--
	}
	if window < 1 {
		window = 1
	}
	if polyorder >= window {
		polyorder = window - 1
	}
	if polyorder < 0 {
		polyorder = 0
	}

	half := window / 2
	out := make([]float64, len(data))
	for i := range data {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		if lo+window > len(data) {
			lo = len(data) - window
		}
		out[i] = fitAt(data[lo:lo+window], i-lo, polyorder)
	}
	return out
}

// fitAt fits a polynomial of the given order to the window by least squares
// and evaluates it at index center.
func fitAt(window []float64, center, order int) float64 {
	m := order + 1

	// Normal equations: (X^T X) a = X^T y with x measured relative to the
	// evaluation point, so the fitted value is just a[0].
	mat := make([][]float64, m)
	for r := range mat {
		mat[r] = make([]float64, m+1)
	}
	for j, y := range window {
		x := float64(j - center)
		xp := make([]float64, 2*m-1)
		xp[0] = 1
		for p := 1; p < len(xp); p++ {
			xp[p] = xp[p-1] * x
		}
		for r := 0; r < m; r++ {
			for c := 0; c < m; c++ {
				mat[r][c] += xp[r+c]
			}
			mat[r][m] += y * xp[r]
		}
	}

	coeffs := solve(mat)
	if coeffs == nil {
		// Singular system; fall back to the raw center value.
		return window[center]
	}
	return coeffs[0]
}

// solve performs Gaussian elimination with partial pivoting on an augmented
// matrix. Returns nil when the system is singular.
func solve(mat [][]float64) []float64 {
	n := len(mat)
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if abs(mat[r][col]) > abs(mat[pivot][col]) {
				pivot = r
			}
		}
		if abs(mat[pivot][col]) < 1e-12 {
			return nil
		}
		mat[col], mat[pivot] = mat[pivot], mat[col]

		for r := col + 1; r < n; r++ {
			factor := mat[r][col] / mat[col][col]
			for c := col; c <= n; c++ {
				mat[r][c] -= factor * mat[col][c]
			}
		}
	}

	coeffs := make([]float64, n)
	for r := n - 1; r >= 0; r-- {
		sum := mat[r][n]
		for c := r + 1; c < n; c++ {
			sum -= mat[r][c] * coeffs[c]
		}
		coeffs[r] = sum / mat[r][r]
	}
	return coeffs
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
