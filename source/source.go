// Package source implements the Batch Source: it iterates a bounded set
// of source files, decodes and preprocesses each into a filtered matrix,
// and yields fixed-T_b-row sub-batches paced in wall-clock time. The
// sequence is lazy, finite and non-restartable.
package source

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/fathomrail/daspipe/signal"
)

// Sleeper abstracts wall-clock pacing so tests can run without waiting.
type Sleeper func(d time.Duration)

// RealSleeper sleeps for the real duration.
func RealSleeper(d time.Duration) { time.Sleep(d) }

// RawReader abstracts the file-body fetch so tests can substitute
// fixtures instead of reaching through the TileDB VFS layer.
type RawReader func(uri, configURI string) ([]byte, error)

// Config configures one Batch Source run.
type Config struct {
	Files              []string // paths/URIs, already bounded to max_files, in listing order
	ConfigURI          string   // TileDB config URI, "" for a generic local config
	Decoder            RawMatrixDecoder
	Signal             signal.Params
	TargetBatchSeconds float64
	WaitingTime        time.Duration
	Sleep              Sleeper
	Reader             RawReader
}

// Source iterates the configured files, yielding T_b-row batches to fn
// until every file is exhausted or fn returns an error, in which case
// iteration stops and the error is returned. There is no reset: calling
// Run twice on the same Source resumes nothing, it restarts the same
// file list from the top, which the spec documents as non-restartable
// behavior the caller must not rely on.
type Source struct {
	cfg Config
}

// New builds a Source from cfg. If cfg.Sleep is nil, RealSleeper is
// used; if cfg.Reader is nil, ReadAll is used.
func New(cfg Config) *Source {
	if cfg.Sleep == nil {
		cfg.Sleep = RealSleeper
	}
	if cfg.Reader == nil {
		cfg.Reader = ReadAll
	}
	return &Source{cfg: cfg}
}

// Run decodes and preprocesses each configured file in turn, splitting
// the result into fixed-size sub-batches and invoking fn for each,
// sleeping WaitingTime before each yield. Between files the source
// continues without resetting; it does not reset filter state because
// the Butterworth filter is applied independently per file via
// zero-phase filtfilt, which has no cross-file state to carry.
func (s *Source) Run(fn func(*mat.Dense) error) error {
	for _, path := range s.cfg.Files {
		raw, err := s.cfg.Reader(path, s.cfg.ConfigURI)
		if err != nil {
			return err
		}

		data, err := s.cfg.Decoder.Decode(raw)
		if err != nil {
			return err
		}

		filtered, err := signal.Preprocess(data, s.cfg.Signal)
		if err != nil {
			return err
		}

		rows, _ := filtered.Dims()
		batchRows := closestDivisor(rows, roundBatchRows(s.cfg.TargetBatchSeconds, s.cfg.Signal.Dt()))

		for start := 0; start < rows; start += batchRows {
			end := start + batchRows
			if end > rows {
				end = rows
			}
			_, cols := filtered.Dims()
			batch := mat.NewDense(end-start, cols, nil)
			batch.Copy(filtered.Slice(start, end, 0, cols))

			s.cfg.Sleep(s.cfg.WaitingTime)

			if err := fn(batch); err != nil {
				return err
			}
		}
	}

	return nil
}

func roundBatchRows(targetSeconds, dt float64) int {
	if dt <= 0 {
		return 1
	}
	r := int(targetSeconds/dt + 0.5)
	if r < 1 {
		r = 1
	}
	return r
}

// closestDivisor finds the divisor of n closest to m, mirroring the
// reference implementation's get_closest_divisor so T_b is always an
// exact divisor of the filtered file's row count.
func closestDivisor(n, m int) int {
	if n <= 0 {
		return 1
	}
	best := 1
	bestDist := abs(m - 1)
	for d := 1; d*d <= n; d++ {
		if n%d != 0 {
			continue
		}
		for _, cand := range [2]int{d, n / d} {
			dist := abs(m - cand)
			if dist < bestDist {
				best = cand
				bestDist = dist
			}
		}
	}
	return best
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
