// Package serialize implements the Chunk Serializer: one Chunk becomes
// one file fragment, written as a self-describing JSON document or as a
// compact header-plus-NPY binary container, at a path derived from the
// chunk's section, capture and initial timestamp.
package serialize

// Info is the JSON header shared by both output formats. Strain is
// carried separately (serialize/json.go embeds it; serialize/binary.go
// omits it per the spec's resolved open question).
type Info struct {
	SensorName        string  `json:"sensor_name"`
	UUID              string  `json:"uuid"`
	SamplingRate      int     `json:"sampling_rate"`
	SpatialResolution int     `json:"spatial_resolution"`
	TemporalSamples   int     `json:"temporal_samples"`
	SpatialSamples    int     `json:"spatial_samples"`
	InitialTimestamp  float64 `json:"initial_timestamp"`
	ZoneID            string  `json:"zone_ID"`
	FileChunk         int     `json:"file_chunk"`
	TotalChunks       *int    `json:"total_chunks"`
}

// Document is the on-disk JSON schema: info plus the base64-encoded
// strain samples.
type Document struct {
	Info   Info    `json:"info"`
	Strain *string `json:"strain"`
}

// BinaryHeader is the JSON header written ahead of the NPY stream in the
// binary format; it is the same schema as Document but always omits
// strain, per the spec's resolved open question (omission, not null).
type BinaryHeader struct {
	Info Info `json:"info"`
}

// Options carries the fields of Info that are not derived from the
// Chunk itself.
type Options struct {
	SensorName        string
	SamplingRate      int
	SpatialResolution int
}

func buildInfo(opts Options, sectionID, uuidStr string, fileChunk, rows, cols int, initialTS float64) Info {
	return Info{
		SensorName:        opts.SensorName,
		UUID:              uuidStr,
		SamplingRate:      opts.SamplingRate,
		SpatialResolution: opts.SpatialResolution,
		TemporalSamples:   rows,
		SpatialSamples:    cols,
		InitialTimestamp:  initialTS,
		ZoneID:            sectionID,
		FileChunk:         fileChunk,
		TotalChunks:       nil,
	}
}
