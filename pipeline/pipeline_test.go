package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/fathomrail/daspipe/buffer"
	"github.com/fathomrail/daspipe/config"
	"github.com/fathomrail/daspipe/section"
	"github.com/fathomrail/daspipe/serialize"
	"github.com/fathomrail/daspipe/source"
)

func testValidated(t *testing.T, outputRoot string, capacity, activeRef, inactiveRef int) config.Validated {
	t.Helper()
	sections, err := section.NewMap([]section.Section{{ID: "a", ColLo: 0, ColHi: 2}})
	assert.NoError(t, err)

	return config.Validated{
		Config: config.Config{
			OutputRoot:         outputRoot,
			SignalN:            1,
			SignalFs:           100,
			FilterOrder:        2,
			FilterWn:           []float64{10},
			FilterBType:        "lowpass",
			DetectionThreshold: 50,
			SpatialWindow:      1,
			WaitingTime:        0,
		},
		Sections:   sections,
		BatchShape: config.BatchShape{Rows: 4, Cols: 2},
		Buffers:    []buffer.SectionParams{{Capacity: capacity, ActiveRef: activeRef, InactiveRef: inactiveRef}},
	}
}

func writeFixtureFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.bin")
	assert.NoError(t, os.WriteFile(path, []byte("fixture"), 0o644))
	return path
}

// trainLikeDecoder fills 4-row blocks alternately with 1000 and 0.
// source.Run splits this 16-row fixture into 4 sub-batches, but the
// 10 Hz lowpass (fs=100) smooths the 12.5 Hz alternation towards its
// mean of 500, so every sub-batch's column RMS stays far above the
// detection threshold of 50 and all four are classified train-present.
// With capacity 2 and active ref 0, the third sub-batch triggers the
// only emission and the fourth merely refills the ring.
func trainLikeDecoder() source.RawMatrixDecoder {
	return source.Synthetic{Rows: 16, Cols: 2, Fill: func(r, c int) float64 {
		if (r/4)%2 == 1 {
			return 1000
		}
		return 0
	}}
}

func TestPipeline_WritesFragmentsWhenSaveEnabled(t *testing.T) {
	dir := t.TempDir()
	v := testValidated(t, dir, 2, 0, 0)
	file := writeFixtureFile(t)

	pl, err := New(v, trainLikeDecoder(), []string{file}, "", serialize.FormatJSON, "sensor-1", zap.NewNop(), true)
	assert.NoError(t, err)

	assert.NoError(t, pl.Run())

	emitted, dropped := pl.Stats()
	assert.Equal(t, 0, dropped)
	assert.Equal(t, 1, emitted)

	var written []string
	assert.NoError(t, filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			written = append(written, path)
		}
		return nil
	}))
	assert.Len(t, written, emitted)
}

func TestPipeline_SaveDisabled_CountsEmittedButWritesNothing(t *testing.T) {
	dir := t.TempDir()
	v := testValidated(t, dir, 2, 0, 0)
	file := writeFixtureFile(t)

	pl, err := New(v, trainLikeDecoder(), []string{file}, "", serialize.FormatJSON, "sensor-1", zap.NewNop(), false)
	assert.NoError(t, err)

	assert.NoError(t, pl.Run())

	emitted, dropped := pl.Stats()
	assert.Equal(t, 0, dropped)
	assert.Equal(t, 1, emitted)

	var written []string
	assert.NoError(t, filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			written = append(written, path)
		}
		return nil
	}))
	assert.Empty(t, written)
}

func TestPipeline_NoTrain_NeverEmits(t *testing.T) {
	dir := t.TempDir()
	v := testValidated(t, dir, 2, 0, 0)
	file := writeFixtureFile(t)

	flat := source.Synthetic{Rows: 8, Cols: 2, Fill: func(r, c int) float64 { return 0 }}
	pl, err := New(v, flat, []string{file}, "", serialize.FormatJSON, "sensor-1", zap.NewNop(), true)
	assert.NoError(t, err)

	assert.NoError(t, pl.Run())

	emitted, dropped := pl.Stats()
	assert.Equal(t, 0, emitted)
	assert.Equal(t, 0, dropped)
}
