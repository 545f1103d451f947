package serialize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"

	"github.com/fathomrail/daspipe/chunk"
)

func sampleChunk() chunk.Chunk {
	return chunk.Chunk{
		SectionID:        "a",
		UUID:             uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		FileChunkIndex:   1,
		InitialTimestamp: 1700000000,
		Complete:         true,
		Data:             mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}),
	}
}

func assertMatrixAlmostEqual(t *testing.T, want, got *mat.Dense) {
	t.Helper()
	wr, wc := want.Dims()
	gr, gc := got.Dims()
	assert.Equal(t, wr, gr)
	assert.Equal(t, wc, gc)
	for i := 0; i < wr; i++ {
		for j := 0; j < wc; j++ {
			assert.InDelta(t, want.At(i, j), got.At(i, j), 1e-2)
		}
	}
}

func TestWriter_JSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := Writer{OutputRoot: dir, Format: FormatJSON, Options: Options{SensorName: "s1", SamplingRate: 1000, SpatialResolution: 1}}

	c := sampleChunk()
	path, err := w.Write(c)
	assert.NoError(t, err)
	assert.Equal(t, ".json", filepath.Ext(path))

	frag, err := ReadFragment(path)
	assert.NoError(t, err)
	assert.Equal(t, "a", frag.Info.ZoneID)
	assert.Equal(t, c.UUID.String(), frag.Info.UUID)
	assert.Equal(t, 1, frag.Info.FileChunk)
	assertMatrixAlmostEqual(t, c.Data, frag.Data)
}

func TestWriter_BinaryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := Writer{OutputRoot: dir, Format: FormatBinary, Options: Options{SensorName: "s1", SamplingRate: 1000, SpatialResolution: 1}}

	c := sampleChunk()
	path, err := w.Write(c)
	assert.NoError(t, err)
	assert.Equal(t, ".bin", filepath.Ext(path))

	frag, err := ReadFragment(path)
	assert.NoError(t, err)
	assert.Equal(t, "a", frag.Info.ZoneID)
	assertMatrixAlmostEqual(t, c.Data, frag.Data)
}

func TestWriter_UnknownFormat(t *testing.T) {
	dir := t.TempDir()
	w := Writer{OutputRoot: dir, Format: Format(99)}
	_, err := w.Write(sampleChunk())
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestReadFragment_UnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fragment.txt")
	assert.NoError(t, os.WriteFile(path, []byte("nope"), 0o644))

	_, err := ReadFragment(path)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestReadFragments_StopsAtFirstError(t *testing.T) {
	dir := t.TempDir()
	w := Writer{OutputRoot: dir, Format: FormatJSON}
	good, err := w.Write(sampleChunk())
	assert.NoError(t, err)

	missing := filepath.Join(dir, "does-not-exist.json")
	_, err = ReadFragments([]string{good, missing})
	assert.Error(t, err)
}

func TestReconstructCapture_VConcatsFragmentsInFileChunkOrder(t *testing.T) {
	dir := t.TempDir()
	w := Writer{OutputRoot: dir, Format: FormatJSON, Options: Options{SensorName: "s1", SamplingRate: 1000, SpatialResolution: 1}}

	capture := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	parts := []chunk.Chunk{
		{SectionID: "a", UUID: capture, FileChunkIndex: 0, InitialTimestamp: 1700000000, Data: mat.NewDense(1, 2, []float64{1, 2})},
		{SectionID: "a", UUID: capture, FileChunkIndex: 1, InitialTimestamp: 1700000000, Data: mat.NewDense(1, 2, []float64{3, 4})},
		{SectionID: "a", UUID: capture, FileChunkIndex: 2, InitialTimestamp: 1700000000, Complete: true, Data: mat.NewDense(1, 2, []float64{5, 6})},
	}

	// Write out of file-chunk order to exercise ReconstructCapture's own sort.
	var paths []string
	for _, idx := range []int{2, 0, 1} {
		path, err := w.Write(parts[idx])
		assert.NoError(t, err)
		paths = append(paths, path)
	}

	fragments, err := ReadFragments(paths)
	assert.NoError(t, err)

	got := ReconstructCapture(fragments)
	want := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	assertMatrixAlmostEqual(t, want, got)
}

func TestFragmentPath_IsDeterministicForSameInputs(t *testing.T) {
	p1 := FragmentPath("/out", 1700000000, "a", 1, "json")
	p2 := FragmentPath("/out", 1700000000, "a", 1, "json")
	assert.Equal(t, p1, p2)
	assert.Contains(t, p1, "a_part_01.json")
}

func TestFloat16RoundTrip_PreservesRepresentableValues(t *testing.T) {
	m := mat.NewDense(1, 2, []float64{1.5, -2.25})
	raw := matrixToFloat16LE(m)
	back, err := float16LEToMatrix(raw, 1, 2)
	assert.NoError(t, err)
	assertMatrixAlmostEqual(t, m, back)
}

func TestFloat16LEToMatrix_RejectsSizeMismatch(t *testing.T) {
	_, err := float16LEToMatrix([]byte{0, 0}, 1, 2)
	assert.Error(t, err)
}
