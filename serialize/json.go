package serialize

import (
	"encoding/base64"
	"encoding/json"

	"gonum.org/v1/gonum/mat"
)

// encodeJSON builds the JSON fragment document for a chunk: the info
// header plus the strain matrix, cast to binary16 and base64-encoded.
func encodeJSON(opts Options, sectionID, uuidStr string, fileChunk int, initialTS float64, data *mat.Dense) ([]byte, error) {
	rows, cols := data.Dims()
	raw := matrixToFloat16LE(data)
	strain := base64.StdEncoding.EncodeToString(raw)

	doc := Document{
		Info:   buildInfo(opts, sectionID, uuidStr, fileChunk, rows, cols, initialTS),
		Strain: &strain,
	}
	return json.Marshal(doc)
}

// decodeJSON is the inverse of encodeJSON, used by ReadFragments.
func decodeJSON(raw []byte) (Document, *mat.Dense, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, nil, err
	}
	if doc.Strain == nil {
		return doc, nil, nil
	}
	bin, err := base64.StdEncoding.DecodeString(*doc.Strain)
	if err != nil {
		return Document{}, nil, err
	}
	data, err := float16LEToMatrix(bin, doc.Info.TemporalSamples, doc.Info.SpatialSamples)
	if err != nil {
		return Document{}, nil, err
	}
	return doc, data, nil
}
