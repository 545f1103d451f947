// Package buffer implements the real-time Buffer Manager: a per-section
// rolling ring of classified batches that emits chunks via the state
// machine described in the spec's Buffer Manager component. This is the
// hardest part of the pipeline and the one place where sections must
// never be allowed to influence one another.
package buffer

import (
	"fmt"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/fathomrail/daspipe/chunk"
	"github.com/fathomrail/daspipe/section"
)

// Manager owns one sectionState per configured section and drives the
// emission state machine independently for each.
type Manager struct {
	sections section.Map
	states   []*sectionState

	// newUUID is swappable so tests can assert on capture identity
	// without depending on real randomness.
	newUUID func() uuid.UUID
}

// NewManager builds a Manager for the given section map, one
// SectionParams per section in declaration order.
func NewManager(sections section.Map, params []SectionParams) (*Manager, error) {
	if len(params) != sections.Len() {
		return nil, fmt.Errorf("buffer: got %d section params for %d sections", len(params), sections.Len())
	}

	states := make([]*sectionState, sections.Len())
	for i, p := range params {
		states[i] = newSectionState(p)
	}

	return &Manager{sections: sections, states: states, newUUID: uuid.New}, nil
}

// Process feeds one batch's worth of AnnotatedSectionBatches (one per
// section, in section map order, as produced by detect.Detector.Annotate)
// through the state machine, returning every Chunk emitted as a result —
// zero, one, or (one per section) several, in section map order.
func (m *Manager) Process(annotated []chunk.AnnotatedSectionBatch) []chunk.Chunk {
	var emitted []chunk.Chunk

	for i, ab := range annotated {
		st := m.states[i]

		if st.ring.len() < st.params.Capacity {
			st.ring.push(ab)
			continue
		}

		if c, ok := m.emit(st); ok {
			emitted = append(emitted, c)
		}
		st.ring.rollOrAppend(ab)
	}

	return emitted
}

// emit runs the chunk-emission step of the state machine against a
// full ring, returning the emitted chunk (if any). It mutates st's
// capture state and, when an emission occurs, clears the ring.
func (m *Manager) emit(st *sectionState) (chunk.Chunk, bool) {
	batches := st.ring.batches()
	status := make([]bool, len(batches))
	anyTrue := false
	minIdx, maxIdx := -1, -1
	for i, b := range batches {
		status[i] = b.Status
		if b.Status {
			anyTrue = true
			if minIdx == -1 {
				minIdx = i
			}
			maxIdx = i
		}
	}

	if !anyTrue {
		if st.state == active {
			st.state = inactive
		}
		return chunk.Chunk{}, false
	}

	complete := !status[len(status)-1]
	sectionID := batches[0].SectionID

	if st.state == inactive {
		if minIdx != st.params.ActiveRef {
			return chunk.Chunk{}, false
		}

		data := chunk.VConcat(denseSlice(batches))
		initialTS := batches[0].InitialTimestamp

		st.currentUUID = m.newUUID()
		st.fileChunkCounter = 0
		if !complete {
			st.state = active
		}
		st.captureInitialTS = initialTS
		st.ring.clear()

		return chunk.Chunk{
			SectionID:        sectionID,
			UUID:             st.currentUUID,
			FileChunkIndex:   0,
			InitialTimestamp: initialTS,
			Complete:         complete,
			Data:             data,
		}, true
	}

	// state == active
	data := chunk.VConcat(denseSlice(batches))
	st.fileChunkCounter++

	c := chunk.Chunk{
		SectionID:        sectionID,
		UUID:             st.currentUUID,
		FileChunkIndex:   st.fileChunkCounter,
		InitialTimestamp: st.captureInitialTS,
		Complete:         complete,
		Data:             data,
	}

	if maxIdx <= st.params.InactiveRef {
		st.state = inactive
	}
	st.ring.clear()

	return c, true
}

func denseSlice(batches []chunk.AnnotatedSectionBatch) []*mat.Dense {
	out := make([]*mat.Dense, len(batches))
	for i, b := range batches {
		out[i] = b.Data
	}
	return out
}
