package serialize

import (
	"bytes"
	"fmt"
	"io"
)

// npyMagic identifies a NumPy array container; writeNPY follows it with
// the version 1.0 bytes. The
// format is a stable, documented binary layout; no third-party package
// in the examined ecosystem encodes the float16 dtype this pipeline
// needs (Go has no built-in half-precision kind for such a library to
// reflect on), so the container is written directly here following the
// published NPY spec, using x448/float16 for the value narrowing.
var npyMagic = []byte("\x93NUMPY")

// writeNPY writes a row-major 2-D array of little-endian binary16
// samples as a NumPy v1.0 .npy stream.
func writeNPY(w io.Writer, data []byte, rows, cols int) error {
	dict := fmt.Sprintf("{'descr': '<f2', 'fortran_order': False, 'shape': (%d, %d), }", rows, cols)

	// Header must end on a 64-byte boundary: magic(6) + version(2) +
	// header_len(2) + dict + padding + '\n'.
	const preambleLen = 6 + 2 + 2
	total := preambleLen + len(dict) + 1
	pad := 0
	if rem := total % 64; rem != 0 {
		pad = 64 - rem
	}

	var header bytes.Buffer
	header.WriteString(dict)
	for i := 0; i < pad; i++ {
		header.WriteByte(' ')
	}
	header.WriteByte('\n')

	if header.Len() > 0xFFFF {
		return fmt.Errorf("serialize: npy header too large (%d bytes)", header.Len())
	}

	if _, err := w.Write(npyMagic); err != nil {
		return err
	}
	if _, err := w.Write([]byte{1, 0}); err != nil {
		return err
	}
	headerLen := uint16(header.Len())
	if _, err := w.Write([]byte{byte(headerLen), byte(headerLen >> 8)}); err != nil {
		return err
	}
	if _, err := w.Write(header.Bytes()); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

// readNPY parses a NumPy v1.0 .npy stream written by writeNPY, returning
// the raw binary16 payload and the declared shape.
func readNPY(r io.Reader) (data []byte, rows, cols int, err error) {
	preamble := make([]byte, 10)
	if _, err = io.ReadFull(r, preamble); err != nil {
		return nil, 0, 0, fmt.Errorf("serialize: reading npy preamble: %w", err)
	}
	if !bytes.Equal(preamble[:6], npyMagic) {
		return nil, 0, 0, fmt.Errorf("serialize: not an npy stream")
	}
	headerLen := int(preamble[8]) | int(preamble[9])<<8

	header := make([]byte, headerLen)
	if _, err = io.ReadFull(r, header); err != nil {
		return nil, 0, 0, fmt.Errorf("serialize: reading npy header: %w", err)
	}

	rows, cols, err = parseShape(string(header))
	if err != nil {
		return nil, 0, 0, err
	}

	data = make([]byte, rows*cols*2)
	if _, err = io.ReadFull(r, data); err != nil {
		return nil, 0, 0, fmt.Errorf("serialize: reading npy payload: %w", err)
	}
	return data, rows, cols, nil
}

// parseShape extracts the "shape": (rows, cols) tuple from an npy header
// dict literal. It only needs to understand the exact form writeNPY
// produces, not the full Python literal grammar.
func parseShape(header string) (rows, cols int, err error) {
	const key = "'shape': ("
	idx := bytes.Index([]byte(header), []byte(key))
	if idx < 0 {
		return 0, 0, fmt.Errorf("serialize: npy header missing shape")
	}
	rest := header[idx+len(key):]
	end := bytes.IndexByte([]byte(rest), ')')
	if end < 0 {
		return 0, 0, fmt.Errorf("serialize: npy header malformed shape")
	}
	if _, err := fmt.Sscanf(rest[:end], "%d, %d", &rows, &cols); err != nil {
		return 0, 0, fmt.Errorf("serialize: npy header malformed shape: %w", err)
	}
	return rows, cols, nil
}
