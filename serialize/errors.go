package serialize

import "errors"

var ErrIO = errors.New("Error Writing Fragment To Output Root")
var ErrSerialization = errors.New("Error Encoding Chunk For Output")
var ErrUnknownFormat = errors.New("Error Unknown Fragment Format")
