package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"

	"github.com/fathomrail/daspipe/chunk"
	"github.com/fathomrail/daspipe/section"
)

func singleSection(t *testing.T) section.Map {
	t.Helper()
	m, err := section.NewMap([]section.Section{{ID: "a", ColLo: 0, ColHi: 1}})
	assert.NoError(t, err)
	return m
}

func ab(status bool, ts float64) chunk.AnnotatedSectionBatch {
	return chunk.AnnotatedSectionBatch{
		SectionID:        "a",
		Status:           status,
		InitialTimestamp: ts,
		Data:             mat.NewDense(1, 1, []float64{ts}),
	}
}

func TestManager_EmitsSingleCompleteCapture(t *testing.T) {
	sections := singleSection(t)
	m, err := NewManager(sections, []SectionParams{{Capacity: 2, ActiveRef: 0, InactiveRef: 0}})
	assert.NoError(t, err)

	var chunks []chunk.Chunk
	batches := []chunk.AnnotatedSectionBatch{
		ab(false, 1), ab(false, 2), ab(true, 3), ab(false, 4), ab(false, 5),
	}
	for _, b := range batches {
		chunks = append(chunks, m.Process([]chunk.AnnotatedSectionBatch{b})...)
	}

	assert.Len(t, chunks, 1)
	c := chunks[0]
	assert.True(t, c.Complete)
	assert.Equal(t, uint32(0), c.FileChunkIndex)
	assert.Equal(t, 3.0, c.InitialTimestamp)
	rows, _ := c.Rows(), c.Cols()
	assert.Equal(t, 2, rows)
}

func TestManager_MultiFragmentCaptureSharesUUID(t *testing.T) {
	sections := singleSection(t)
	m, err := NewManager(sections, []SectionParams{{Capacity: 2, ActiveRef: 0, InactiveRef: 0}})
	assert.NoError(t, err)

	var chunks []chunk.Chunk
	statuses := []bool{false, false, true, true, true, false, false}
	timestamps := []float64{1, 2, 3, 4, 5, 6, 7}
	for i := range statuses {
		chunks = append(chunks, m.Process([]chunk.AnnotatedSectionBatch{ab(statuses[i], timestamps[i])})...)
	}

	assert.Len(t, chunks, 2)
	assert.Equal(t, chunks[0].UUID, chunks[1].UUID)
	assert.False(t, chunks[0].Complete)
	assert.Equal(t, uint32(0), chunks[0].FileChunkIndex)
	assert.True(t, chunks[1].Complete)
	assert.Equal(t, uint32(1), chunks[1].FileChunkIndex)
	assert.Equal(t, chunks[0].InitialTimestamp, chunks[1].InitialTimestamp)
}

func TestManager_NoTrainNeverEmits(t *testing.T) {
	sections := singleSection(t)
	m, err := NewManager(sections, []SectionParams{{Capacity: 2, ActiveRef: 0, InactiveRef: 0}})
	assert.NoError(t, err)

	var chunks []chunk.Chunk
	for i := 0; i < 10; i++ {
		chunks = append(chunks, m.Process([]chunk.AnnotatedSectionBatch{ab(false, float64(i))})...)
	}
	assert.Empty(t, chunks)
}

func TestNewManager_RejectsMismatchedParamCount(t *testing.T) {
	sections := singleSection(t)
	_, err := NewManager(sections, nil)
	assert.Error(t, err)
}

func TestManager_SectionsAreIndependent(t *testing.T) {
	sections, err := section.NewMap([]section.Section{
		{ID: "a", ColLo: 0, ColHi: 1},
		{ID: "b", ColLo: 1, ColHi: 2},
	})
	assert.NoError(t, err)
	m, err := NewManager(sections, []SectionParams{
		{Capacity: 2, ActiveRef: 0, InactiveRef: 0},
		{Capacity: 2, ActiveRef: 0, InactiveRef: 0},
	})
	assert.NoError(t, err)

	mkBoth := func(statusA, statusB bool, ts float64) []chunk.AnnotatedSectionBatch {
		return []chunk.AnnotatedSectionBatch{
			{SectionID: "a", Status: statusA, InitialTimestamp: ts, Data: mat.NewDense(1, 1, []float64{ts})},
			{SectionID: "b", Status: statusB, InitialTimestamp: ts, Data: mat.NewDense(1, 1, []float64{ts})},
		}
	}

	var chunks []chunk.Chunk
	seq := []struct{ a, b bool }{
		{false, false}, {false, false}, {true, false}, {false, false}, {false, false},
	}
	for i, s := range seq {
		chunks = append(chunks, m.Process(mkBoth(s.a, s.b, float64(i+1)))...)
	}

	assert.Len(t, chunks, 1)
	for _, c := range chunks {
		assert.Equal(t, "a", c.SectionID)
	}
}
