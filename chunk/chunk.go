// Package chunk defines the data model shared between the buffer manager
// and the chunk serializer: batches, annotated section batches and the
// chunks emitted for a detected train capture.
package chunk

import (
	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
)

// Batch is one fixed-shape slice of the continuously acquired signal,
// (T_b, S_total) float64 samples. The wall-clock time at which it is
// handed to the detector is recorded on each resulting
// AnnotatedSectionBatch, not here.
type Batch struct {
	Data *mat.Dense
}

// Rows returns the number of temporal samples in the batch.
func (b Batch) Rows() int {
	r, _ := b.Data.Dims()
	return r
}

// Cols returns the total number of spatial columns in the batch.
func (b Batch) Cols() int {
	_, c := b.Data.Dims()
	return c
}

// AnnotatedSectionBatch is produced by the train detector and consumed by
// the buffer manager. It is immutable once produced: Data is an
// independent copy of the section's column slice, not a view into the
// parent Batch, so its lifetime is not tied to the parent's.
type AnnotatedSectionBatch struct {
	SectionID        string
	Status           bool
	InitialTimestamp float64
	Data             *mat.Dense
}

// Chunk is one emission from the buffer manager: a contiguous matrix
// spanning one ring's worth of batches for one section, tagged for
// persistence. UUID is stable across every fragment of one capture;
// FileChunkIndex is 0 for the first fragment of a capture and strictly
// increasing thereafter. Complete is true only on the terminal fragment.
type Chunk struct {
	SectionID        string
	UUID             uuid.UUID
	FileChunkIndex   uint32
	InitialTimestamp float64
	Complete         bool
	Data             *mat.Dense
}

// Rows returns the number of temporal samples captured in this fragment.
func (c Chunk) Rows() int {
	r, _ := c.Data.Dims()
	return r
}

// Cols returns the number of spatial samples captured in this fragment.
func (c Chunk) Cols() int {
	_, cols := c.Data.Dims()
	return cols
}

// VConcat stacks a list of same-width matrices vertically, in order,
// into a single new matrix. It mirrors the Python reference's
// concat_matrix_list: batches arrive in temporal order and are
// concatenated along the time axis to build one chunk's worth of data.
func VConcat(batches []*mat.Dense) *mat.Dense {
	if len(batches) == 0 {
		return mat.NewDense(0, 0, nil)
	}
	_, cols := batches[0].Dims()
	totalRows := 0
	for _, b := range batches {
		r, _ := b.Dims()
		totalRows += r
	}

	out := mat.NewDense(totalRows, cols, nil)
	rowOffset := 0
	for _, b := range batches {
		r, _ := b.Dims()
		out.Slice(rowOffset, rowOffset+r, 0, cols).(*mat.Dense).Copy(b)
		rowOffset += r
	}
	return out
}
