package serialize

import (
	"encoding/binary"
	"fmt"

	"github.com/x448/float16"
	"gonum.org/v1/gonum/mat"
)

// matrixToFloat16LE flattens a matrix row-major into a little-endian
// binary16 byte stream. Overflow during the float64->float16 cast
// saturates to +/-Inf rather than erroring, matching SerializationError's
// documented "silently saturated" behavior.
func matrixToFloat16LE(m *mat.Dense) []byte {
	rows, cols := m.Dims()
	out := make([]byte, rows*cols*2)

	offset := 0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			h := float16.Fromfloat32(float32(m.At(i, j)))
			binary.LittleEndian.PutUint16(out[offset:offset+2], uint16(h))
			offset += 2
		}
	}

	return out
}

// float16LEToMatrix is the inverse of matrixToFloat16LE: it widens a
// little-endian binary16 byte stream back into a *mat.Dense of the
// given shape.
func float16LEToMatrix(raw []byte, rows, cols int) (*mat.Dense, error) {
	if len(raw) != rows*cols*2 {
		return nil, fmt.Errorf("serialize: float16 payload size %d does not match shape %dx%d", len(raw), rows, cols)
	}
	out := mat.NewDense(rows, cols, nil)
	offset := 0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			bits := binary.LittleEndian.Uint16(raw[offset : offset+2])
			out.Set(i, j, float64(float16.Float16(bits).Float32()))
			offset += 2
		}
	}
	return out, nil
}
