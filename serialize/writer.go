package serialize

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fathomrail/daspipe/chunk"
)

// Format selects the on-disk fragment encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatBinary
)

func (f Format) ext() string {
	if f == FormatBinary {
		return "bin"
	}
	return "json"
}

// Writer turns Chunks into fragment files under OutputRoot, named by
// FragmentPath. Encoding failures and filesystem failures are returned
// as wrapped ErrSerialization / ErrIO so a caller can log and drop the
// fragment without aborting the run, per the pipeline's fragment-level
// error handling.
type Writer struct {
	OutputRoot string
	Format     Format
	Options    Options
}

// Write encodes and persists one chunk, returning the path it wrote to.
func (w Writer) Write(c chunk.Chunk) (string, error) {
	var body []byte
	var err error

	switch w.Format {
	case FormatJSON:
		body, err = encodeJSON(w.Options, c.SectionID, c.UUID.String(), int(c.FileChunkIndex), c.InitialTimestamp, c.Data)
	case FormatBinary:
		body, err = encodeBinary(w.Options, c.SectionID, c.UUID.String(), int(c.FileChunkIndex), c.InitialTimestamp, c.Data)
	default:
		return "", ErrUnknownFormat
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s/%s part %d: %v", ErrSerialization, c.SectionID, c.UUID, c.FileChunkIndex, err)
	}

	path := FragmentPath(w.OutputRoot, c.InitialTimestamp, c.SectionID, c.FileChunkIndex, w.Format.ext())
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("%w: creating %s: %v", ErrIO, filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("%w: writing %s: %v", ErrIO, path, err)
	}
	return path, nil
}
