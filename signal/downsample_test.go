package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestDownsample_ExactDivisor(t *testing.T) {
	data := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	out := Downsample(data, 2)

	rows, cols := out.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 1, cols)
	assert.Equal(t, 1.5, out.At(0, 0))
	assert.Equal(t, 3.5, out.At(1, 0))
}

func TestDownsample_TrailingPartialBlock(t *testing.T) {
	data := mat.NewDense(5, 1, []float64{1, 2, 3, 4, 5})
	out := Downsample(data, 2)

	rows, _ := out.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 1.5, out.At(0, 0))
	assert.Equal(t, 3.5, out.At(1, 0))
	assert.Equal(t, 5.0, out.At(2, 0))
}

func TestDownsample_N1IsIdentity(t *testing.T) {
	data := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	out := Downsample(data, 1)

	assert.True(t, mat.Equal(data, out))
}
