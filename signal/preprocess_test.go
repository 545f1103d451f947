package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestPreprocess_ShapeAfterDecimation(t *testing.T) {
	rows := 100
	data := mat.NewDense(rows, 3, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < 3; j++ {
			data.Set(i, j, float64(i))
		}
	}

	out, err := Preprocess(data, Params{
		N:      5,
		Fs:     1000,
		FOrder: 2,
		Wn:     []float64{50},
		BType:  Lowpass,
	})
	assert.NoError(t, err)

	outRows, outCols := out.Dims()
	assert.Equal(t, 20, outRows)
	assert.Equal(t, 3, outCols)
}

func TestPreprocess_PropagatesDesignError(t *testing.T) {
	data := mat.NewDense(10, 1, nil)
	_, err := Preprocess(data, Params{
		N:      1,
		Fs:     100,
		FOrder: 2,
		Wn:     []float64{1000},
		BType:  Lowpass,
	})
	assert.Error(t, err)
}

func TestParams_Dt(t *testing.T) {
	p := Params{N: 5, Fs: 1000}
	assert.InDelta(t, 0.005, p.Dt(), 1e-12)
}
