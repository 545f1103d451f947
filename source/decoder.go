package source

import "gonum.org/v1/gonum/mat"

// RawMatrixDecoder is the external collaborator that materializes a raw
// 2-D float matrix from one source file's bytes. The spec treats the
// raw source-file reader as out of scope for the core; this interface is
// its contract with the Batch Source.
type RawMatrixDecoder interface {
	Decode(raw []byte) (*mat.Dense, error)
}
