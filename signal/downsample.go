// Package signal implements the preprocessing front-end applied to every
// raw batch before it reaches the batch source's pacing loop: moving-mean
// downsampling followed by a zero-phase Butterworth filter.
package signal

import "gonum.org/v1/gonum/mat"

// Downsample applies a moving-mean followed by decimation along the time
// axis (rows). Block i of the output is the column-wise mean of input
// rows [i*n, min((i+1)*n, T)); the tail block may average fewer than n
// rows. n must be >= 1.
func Downsample(data *mat.Dense, n int) *mat.Dense {
	if n < 1 {
		panic("signal: downsample factor must be >= 1")
	}

	rows, cols := data.Dims()
	outRows := (rows + n - 1) / n
	out := mat.NewDense(outRows, cols, nil)

	for i := 0; i < outRows; i++ {
		start := i * n
		end := start + n
		if end > rows {
			end = rows
		}
		blockRows := end - start

		for j := 0; j < cols; j++ {
			var sum float64
			for r := start; r < end; r++ {
				sum += data.At(r, j)
			}
			out.Set(i, j, sum/float64(blockRows))
		}
	}

	return out
}
