package source

import "gonum.org/v1/gonum/mat"

// Synthetic is a RawMatrixDecoder that ignores its input bytes and
// returns a deterministic fixture matrix instead. It exists purely for
// tests and local trials, standing in for the real raw source-file
// reader, which is an external collaborator the spec places out of
// scope for the core.
type Synthetic struct {
	Rows, Cols int
	// Fill, if set, computes the value at (row, col); otherwise the
	// matrix is zero-filled.
	Fill func(row, col int) float64
}

// Decode implements RawMatrixDecoder.
func (s Synthetic) Decode(raw []byte) (*mat.Dense, error) {
	data := mat.NewDense(s.Rows, s.Cols, nil)
	if s.Fill != nil {
		for i := 0; i < s.Rows; i++ {
			for j := 0; j < s.Cols; j++ {
				data.Set(i, j, s.Fill(i, j))
			}
		}
	}
	return data, nil
}
