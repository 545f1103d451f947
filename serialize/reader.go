package serialize

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/fathomrail/daspipe/chunk"
)

// Fragment is one decoded fragment file: its info header, the strain
// matrix (nil if the fragment carried none), and the path it came from.
type Fragment struct {
	Info Info
	Data *mat.Dense
	Path string
}

// ReadFragment decodes a single fragment file, dispatching on its
// extension. It is the inverse of Writer.Write for both formats, used
// by tests asserting the round-trip invariant and by any later tooling
// that needs to read emitted captures back.
func ReadFragment(path string) (Fragment, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Fragment{}, fmt.Errorf("%w: reading %s: %v", ErrIO, path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		doc, data, err := decodeJSON(raw)
		if err != nil {
			return Fragment{}, fmt.Errorf("%w: decoding %s: %v", ErrSerialization, path, err)
		}
		return Fragment{Info: doc.Info, Data: data, Path: path}, nil
	case ".bin":
		header, data, err := decodeBinary(raw)
		if err != nil {
			return Fragment{}, fmt.Errorf("%w: decoding %s: %v", ErrSerialization, path, err)
		}
		return Fragment{Info: header.Info, Data: data, Path: path}, nil
	default:
		return Fragment{}, ErrUnknownFormat
	}
}

// ReadFragments decodes every fragment in paths, in order, stopping at
// the first error.
func ReadFragments(paths []string) ([]Fragment, error) {
	out := make([]Fragment, 0, len(paths))
	for _, p := range paths {
		f, err := ReadFragment(p)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// ReconstructCapture rebuilds a full capture's matrix from its decoded
// fragments, ordering by Info.FileChunk and vertically concatenating
// their data, mirroring the reference loader's get_full_matrix. Callers
// need not pass fragments in file-chunk order; ReconstructCapture sorts
// a copy before concatenating.
func ReconstructCapture(fragments []Fragment) *mat.Dense {
	ordered := make([]Fragment, len(fragments))
	copy(ordered, fragments)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Info.FileChunk < ordered[j].Info.FileChunk
	})

	batches := make([]*mat.Dense, len(ordered))
	for i, f := range ordered {
		batches[i] = f.Data
	}
	return chunk.VConcat(batches)
}
