package serialize

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"gonum.org/v1/gonum/mat"
)

// encodeBinary builds the binary fragment: a u16 little-endian length
// prefix, the JSON header (info only, no strain), then an NPY stream of
// binary16 samples.
func encodeBinary(opts Options, sectionID, uuidStr string, fileChunk int, initialTS float64, data *mat.Dense) ([]byte, error) {
	rows, cols := data.Dims()
	header := BinaryHeader{Info: buildInfo(opts, sectionID, uuidStr, fileChunk, rows, cols, initialTS)}

	headerBytes, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	if len(headerBytes) > 0xFFFF {
		return nil, fmt.Errorf("serialize: binary header too large (%d bytes)", len(headerBytes))
	}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, uint16(len(headerBytes))); err != nil {
		return nil, err
	}
	buf.Write(headerBytes)

	raw := matrixToFloat16LE(data)
	if err := writeNPY(&buf, raw, rows, cols); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeBinary is the inverse of encodeBinary, used by ReadFragments.
func decodeBinary(raw []byte) (BinaryHeader, *mat.Dense, error) {
	r := bytes.NewReader(raw)

	var headerLen uint16
	if err := binary.Read(r, binary.LittleEndian, &headerLen); err != nil {
		return BinaryHeader{}, nil, fmt.Errorf("serialize: reading binary header length: %w", err)
	}

	headerBytes := make([]byte, headerLen)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return BinaryHeader{}, nil, fmt.Errorf("serialize: reading binary header: %w", err)
	}

	var header BinaryHeader
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return BinaryHeader{}, nil, err
	}

	payload, rows, cols, err := readNPY(r)
	if err != nil {
		return BinaryHeader{}, nil, err
	}
	data, err := float16LEToMatrix(payload, rows, cols)
	if err != nil {
		return BinaryHeader{}, nil, err
	}
	return header, data, nil
}
