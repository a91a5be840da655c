// Package geocache writes and reads a single-object, time-sampled
// polygon-mesh cache file.
//
// Layout (little-endian):
//
//	header  : "GEOC" | u32 version | [16]byte archive id
//	samples : { u32 len | payload | u64 xxhash64(payload) } ...
//	payload : u32 nPos | nPos*3 f32 | u32 nCounts | i32... | u32 nIdx | i32...
//	meta    : JSON Meta
//	index   : u64 record offset per sample
//	trailer : u64 metaOffset | u32 metaLen | u64 indexOffset | u32 samples | "GEOC"
package geocache

import (
	"encoding/binary"
	"fmt"
	"math"

	"objseq2cache/internal/failure"
	"objseq2cache/internal/obj"
)

// FileExtension is the conventional extension for cache files.
const FileExtension = ".gcache"

// Version is the layout version written to the header.
const Version = 1

const (
	headerSize  = 4 + 4 + 16
	trailerSize = 8 + 4 + 8 + 4 + 4
)

var magic = [4]byte{'G', 'E', 'O', 'C'}

// Default names for the single mesh object.
const (
	DefaultParent = "/ABC"
	DefaultObject = "objSequenceMesh"
)

// TimeSampling maps a sample ordinal to time: Start + i*Interval seconds.
type TimeSampling struct {
	Interval float64 `json:"interval"`
	Start    float64 `json:"start"`
}

// Time returns the time in seconds of sample i.
func (ts TimeSampling) Time(i int) float64 {
	return ts.Start + float64(i)*ts.Interval
}

// Meta describes the archive contents. It is written on Close.
type Meta struct {
	Version      int          `json:"version"`
	ArchiveID    string       `json:"archive_id"`
	Parent       string       `json:"parent"`
	Object       string       `json:"object"`
	Schema       string       `json:"schema"`
	TimeSampling TimeSampling `json:"time_sampling"`
	SampleCount  int          `json:"sample_count"`
}

// ObjectPath returns the full path of the mesh object, e.g. "/ABC/objSequenceMesh".
func (m Meta) ObjectPath() string {
	return m.Parent + "/" + m.Object
}

func encodeSample(s Sample) []byte {
	n := 12 + len(s.Positions)*12 + len(s.FaceCounts)*4 + len(s.FaceIndices)*4
	buf := make([]byte, 0, n)

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s.Positions)))
	for _, p := range s.Positions {
		for k := 0; k < 3; k++ {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(p[k]))
		}
	}
	buf = appendInt32s(buf, s.FaceCounts)
	buf = appendInt32s(buf, s.FaceIndices)
	return buf
}

func appendInt32s(buf []byte, vals []int32) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(vals)))
	for _, v := range vals {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(v))
	}
	return buf
}

// payloadReader walks a sample payload; reads past the end set err.
type payloadReader struct {
	data []byte
	off  int
	err  error
}

func (r *payloadReader) readU32() uint32 {
	if r.err != nil {
		return 0
	}
	if r.off+4 > len(r.data) {
		r.err = fmt.Errorf("%w: truncated sample at byte %d", failure.ErrCorrupt, r.off)
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

// readCount reads an element count and checks it fits the remaining bytes.
func (r *payloadReader) readCount(elemSize int) int {
	n := int(r.readU32())
	if r.err == nil && n > (len(r.data)-r.off)/elemSize {
		r.err = fmt.Errorf("%w: count %d exceeds sample size", failure.ErrCorrupt, n)
		return 0
	}
	return n
}

func (r *payloadReader) readInt32s() []int32 {
	n := r.readCount(4)
	vals := make([]int32, n)
	for i := range vals {
		vals[i] = int32(r.readU32())
	}
	return vals
}

func decodeSample(data []byte) (Sample, error) {
	r := &payloadReader{data: data}

	np := r.readCount(12)
	s := Sample{Positions: make([]obj.Vertex, np)}
	for i := range s.Positions {
		for k := 0; k < 3; k++ {
			s.Positions[i][k] = math.Float32frombits(r.readU32())
		}
	}
	s.FaceCounts = r.readInt32s()
	s.FaceIndices = r.readInt32s()

	if r.err != nil {
		return Sample{}, r.err
	}
	if r.off != len(data) {
		return Sample{}, fmt.Errorf("%w: %d trailing bytes in sample", failure.ErrCorrupt, len(data)-r.off)
	}
	return s, nil
}
