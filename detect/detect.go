// Package detect implements the per-section train detector: given one
// batch and a section map, it classifies each section as "train
// present" or not from the RMS of its column slice.
package detect

import (
	"math"
	"time"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"

	"github.com/fathomrail/daspipe/chunk"
	"github.com/fathomrail/daspipe/section"
)

// Mode selects the detection algorithm applied to the per-column RMS
// vector of a section.
type Mode int

const (
	// ModeRunLength declares detection when the most frequent gap
	// between above-threshold column indices recurs at least
	// SpatialWindow times.
	ModeRunLength Mode = iota
	// ModeProportion declares detection when the proportion of
	// at-or-above-threshold columns exceeds ValidityPercentage.
	ModeProportion
)

// Params configures the detector. Threshold is compared against
// per-column RMS; SpatialWindow and ValidityPercentage apply to
// ModeRunLength and ModeProportion respectively.
type Params struct {
	Mode               Mode
	Threshold          float64
	SpatialWindow      int
	ValidityPercentage float64 // (0, 1]
}

// Clock abstracts the wall-clock read so tests can inject a fixed time.
// Exactly one read happens per batch and is shared by every section, to
// preserve temporal ordering of initial timestamps across sections.
type Clock func() float64

// RealClock returns the current wall-clock time in fractional Unix
// seconds.
func RealClock() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

// Detector classifies each section of a batch as train-present or not.
type Detector struct {
	sections section.Map
	params   Params
	clock    Clock
}

// New builds a Detector over the given section map and parameters. If
// clock is nil, RealClock is used.
func New(sections section.Map, params Params, clock Clock) *Detector {
	if clock == nil {
		clock = RealClock
	}
	return &Detector{sections: sections, params: params, clock: clock}
}

// Annotate computes one AnnotatedSectionBatch per section, in section
// map declaration order, for the given batch.
func (d *Detector) Annotate(batch chunk.Batch) []chunk.AnnotatedSectionBatch {
	timestamp := d.clock()
	out := make([]chunk.AnnotatedSectionBatch, 0, d.sections.Len())

	for _, s := range d.sections.All() {
		slice := columnSlice(batch.Data, s.ColLo, s.ColHi)
		rms := columnRMS(slice)
		status := d.detect(rms)

		out = append(out, chunk.AnnotatedSectionBatch{
			SectionID:        s.ID,
			Status:           status,
			InitialTimestamp: timestamp,
			Data:             slice,
		})
	}

	return out
}

func (d *Detector) detect(rms []float64) bool {
	switch d.params.Mode {
	case ModeRunLength:
		return detectRunLength(rms, d.params.Threshold, d.params.SpatialWindow)
	case ModeProportion:
		return detectProportion(rms, d.params.Threshold, d.params.ValidityPercentage)
	default:
		return false
	}
}

// detectRunLength implements Mode 0: compute the multiset of consecutive
// differences between above-threshold column indices; if the
// most-frequent difference recurs at least spatialWindow times, declare
// detection. Ties among equally frequent differences break toward the
// smallest difference value. An empty index set is not an error — it is
// the documented DetectionDegenerate case and simply yields false.
func detectRunLength(rms []float64, threshold float64, spatialWindow int) bool {
	idx := make([]int, 0, len(rms))
	for i, v := range rms {
		if v > threshold {
			idx = append(idx, i)
		}
	}
	if len(idx) < 2 {
		return false
	}

	diffs := make([]int, 0, len(idx)-1)
	for i := 1; i < len(idx); i++ {
		diffs = append(diffs, idx[i]-idx[i-1])
	}

	counts := lo.CountValues(diffs)
	if len(counts) == 0 {
		return false
	}

	bestDiff := 0
	bestCount := -1
	first := true
	for diff, count := range counts {
		if first || count > bestCount || (count == bestCount && diff < bestDiff) {
			bestDiff = diff
			bestCount = count
			first = false
		}
	}

	return bestCount >= spatialWindow
}

// detectProportion implements Mode 1: declare detection iff the number
// of at-or-above-threshold columns strictly exceeds
// validityPercentage * len(rms).
func detectProportion(rms []float64, threshold float64, validityPercentage float64) bool {
	validCount := 0
	for _, v := range rms {
		if v >= threshold {
			validCount++
		}
	}
	return float64(validCount) > validityPercentage*float64(len(rms))
}

// columnSlice copies the [colLo, colHi) columns of src into a new,
// independent matrix so the resulting AnnotatedSectionBatch does not
// share storage with the parent batch.
func columnSlice(src *mat.Dense, colLo, colHi int) *mat.Dense {
	rows, _ := src.Dims()
	width := colHi - colLo
	out := mat.NewDense(rows, width, nil)
	out.Copy(src.Slice(0, rows, colLo, colHi))
	return out
}

// columnRMS computes the per-column RMS of a matrix: rms[j] =
// sqrt(mean(col_j^2)).
func columnRMS(data *mat.Dense) []float64 {
	rows, cols := data.Dims()
	out := make([]float64, cols)

	for j := 0; j < cols; j++ {
		var sumSq float64
		for i := 0; i < rows; i++ {
			v := data.At(i, j)
			sumSq += v * v
		}
		out[j] = math.Sqrt(sumSq / float64(rows))
	}

	return out
}
