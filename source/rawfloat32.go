package source

import (
	"encoding/binary"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// RawFloat32 is the default production RawMatrixDecoder: it interprets a
// source file's bytes as a row-major stream of little-endian IEEE 754
// float32 samples, Cols wide. It is the minimal concrete format that
// satisfies the Batch Source's "opaque file decodable to a 2-D float
// matrix" contract without delegating to an external reader; deployments
// with a richer source format inject their own RawMatrixDecoder instead.
type RawFloat32 struct {
	Cols int
}

// Decode implements RawMatrixDecoder.
func (d RawFloat32) Decode(raw []byte) (*mat.Dense, error) {
	if d.Cols <= 0 {
		return nil, fmt.Errorf("source: raw float32 decoder needs Cols > 0, got %d", d.Cols)
	}

	const wordSize = 4
	rowBytes := d.Cols * wordSize
	if len(raw)%rowBytes != 0 {
		return nil, fmt.Errorf("source: raw float32 payload of %d bytes is not a multiple of row width %d bytes (%d cols)", len(raw), rowBytes, d.Cols)
	}
	rows := len(raw) / rowBytes

	data := mat.NewDense(rows, d.Cols, nil)
	offset := 0
	for i := 0; i < rows; i++ {
		for j := 0; j < d.Cols; j++ {
			bits := binary.LittleEndian.Uint32(raw[offset : offset+wordSize])
			data.Set(i, j, float64(math.Float32frombits(bits)))
			offset += wordSize
		}
	}
	return data, nil
}
