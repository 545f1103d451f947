package signal

import "gonum.org/v1/gonum/mat"

// Filtfilt applies the filter described by b, a to data along the time
// axis (rows), once forward and once backward, so the result has zero
// phase distortion — the "filtfilt" method implemented by SciPy. Each
// column of the matrix is filtered independently. Input data is padded
// at both edges with its own odd reflection, exactly as SciPy's default
// padtype="odd" does, so the filter's transient settles before it
// reaches the genuine samples.
func Filtfilt(data *mat.Dense, b, a []float64) *mat.Dense {
	rows, cols := data.Dims()
	out := mat.NewDense(rows, cols, nil)

	padLen := 3 * maxInt(len(a), len(b))
	if padLen >= rows {
		padLen = rows - 1
	}
	if padLen < 0 {
		padLen = 0
	}

	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			col[i] = data.At(i, j)
		}

		padded := oddExtend(col, padLen)
		forward := lfilter(b, a, padded)
		reverseInPlace(forward)
		backward := lfilter(b, a, forward)
		reverseInPlace(backward)

		filtered := backward[padLen : padLen+rows]
		for i := 0; i < rows; i++ {
			out.Set(i, j, filtered[i])
		}
	}

	return out
}

// lfilter applies the IIR difference equation
// a[0]*y[n] = b[0]*x[n] + ... - a[1]*y[n-1] - ... to x in direct form I,
// returning y. a[0]
// is expected to already be the normalizing leading coefficient (SciPy
// always normalizes so a[0] == 1 for butter()'s output, which Design
// produces here).
func lfilter(b, a []float64, x []float64) []float64 {
	n := len(x)
	y := make([]float64, n)

	order := maxInt(len(a), len(b))
	bc := padCoeffs(b, order)
	ac := padCoeffs(a, order)
	a0 := ac[0]

	// State-space-free direct form I, zero initial conditions. Sufficient
	// accuracy for this pipeline's purposes given the odd-reflection
	// padding already absorbs most of the startup transient.
	for i := 0; i < n; i++ {
		var acc float64
		for k := 0; k < order; k++ {
			if i-k >= 0 {
				acc += bc[k] * x[i-k]
			}
		}
		for k := 1; k < order; k++ {
			if i-k >= 0 {
				acc -= ac[k] * y[i-k]
			}
		}
		y[i] = acc / a0
	}

	return y
}

func padCoeffs(c []float64, order int) []float64 {
	if len(c) == order {
		return c
	}
	out := make([]float64, order)
	copy(out, c)
	return out
}

// oddExtend pads x at both ends by padLen samples using SciPy's "odd"
// reflection: the padded value mirrors the signal around the edge sample
// and negates the offset, so the extension is continuous in value and
// slope with the real data at the junction.
func oddExtend(x []float64, padLen int) []float64 {
	n := len(x)
	out := make([]float64, n+2*padLen)

	for i := 0; i < padLen; i++ {
		out[i] = 2*x[0] - x[padLen-i]
	}
	copy(out[padLen:padLen+n], x)
	for i := 0; i < padLen; i++ {
		out[padLen+n+i] = 2*x[n-1] - x[n-2-i]
	}

	return out
}

func reverseInPlace(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
