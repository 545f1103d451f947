// Package pipeline wires the Batch Source, Train Detector, Buffer
// Manager and Chunk Serializer into the single-threaded cooperative
// loop described by the spec's concurrency model: one goroutine pulls a
// batch, annotates it, feeds the buffer manager, and persists whatever
// chunks come out, before pulling the next batch. Nothing here spawns
// goroutines; parallelism across independent runs is the caller's
// concern (see cmd/daspipe's batch command).
package pipeline

import (
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/fathomrail/daspipe/buffer"
	"github.com/fathomrail/daspipe/chunk"
	"github.com/fathomrail/daspipe/config"
	"github.com/fathomrail/daspipe/detect"
	"github.com/fathomrail/daspipe/internal/obslog"
	"github.com/fathomrail/daspipe/serialize"
	"github.com/fathomrail/daspipe/source"
)

// Pipeline owns one run's worth of wired components.
type Pipeline struct {
	src      *source.Source
	detector *detect.Detector
	buf      *buffer.Manager
	writer   serialize.Writer
	log      *zap.Logger
	save     bool

	emitted int
	dropped int
}

// New wires a Pipeline from validated config and a raw decoder. format
// selects the fragment encoding; sensorName feeds the serialized
// header's Info fields. When save is false, chunks still flow through
// detection and buffering but are never persisted (the -s/--save sink
// toggle), matching the spec's serializer contract.
func New(v config.Validated, decoder source.RawMatrixDecoder, files []string, configURI string, format serialize.Format, sensorName string, log *zap.Logger, save bool) (*Pipeline, error) {
	buf, err := buffer.NewManager(v.Sections, v.Buffers)
	if err != nil {
		return nil, err
	}

	det := detect.New(v.Sections, v.Config.DetectParams(), nil)

	src := source.New(source.Config{
		Files:              files,
		ConfigURI:          configURI,
		Decoder:            decoder,
		Signal:             v.Config.SignalParams(),
		TargetBatchSeconds: float64(v.BatchShape.Rows) * v.Config.Dt(),
		WaitingTime:        durationFromSeconds(v.Config.WaitingTime),
	})

	writer := serialize.Writer{
		OutputRoot: v.Config.OutputRoot,
		Format:     format,
		Options: serialize.Options{
			SensorName:        sensorName,
			SamplingRate:      int(v.Config.SignalFs),
			SpatialResolution: 1,
		},
	}

	return &Pipeline{src: src, detector: det, buf: buf, writer: writer, log: log, save: save}, nil
}

// Run drains the source to completion, annotating, buffering and
// persisting every chunk produced. A fragment-level serialization or IO
// failure is logged and the fragment dropped, per the spec's error
// handling; only a source/decode failure aborts the run.
func (p *Pipeline) Run() error {
	return p.src.Run(func(data *mat.Dense) error {
		batch := chunk.Batch{Data: data}
		annotated := p.detector.Annotate(batch)
		chunks := p.buf.Process(annotated)

		for _, c := range chunks {
			if !p.save {
				p.emitted++
				continue
			}
			path, err := p.writer.Write(c)
			if err != nil {
				p.dropped++
				p.log.Warn("dropping fragment",
					zap.String("section_id", c.SectionID),
					zap.String("uuid", c.UUID.String()),
					zap.Error(err),
				)
				continue
			}
			p.emitted++
			obslog.WithFragment(p.log, c.SectionID, c.UUID.String(), int(c.FileChunkIndex)).
				Info("wrote fragment", zap.String("path", path))
		}
		return nil
	})
}

// Stats reports how many chunks this run emitted (written to disk, or
// only counted when saving is disabled) and how many fragment writes
// failed and were dropped.
func (p *Pipeline) Stats() (emitted, dropped int) {
	return p.emitted, p.dropped
}

func durationFromSeconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
