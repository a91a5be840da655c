package geocache

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"objseq2cache/internal/failure"
)

// Reader provides random access to the samples of a closed cache file.
type Reader struct {
	path    string
	file    *os.File
	meta    Meta
	id      uuid.UUID
	offsets []uint64
	dataEnd uint64 // end of the sample region
}

// OpenReader opens a cache file and loads its metadata and sample index.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geocache: open %s: %w: %w", path, failure.ErrFileAccess, err)
	}

	r := &Reader{path: path, file: f}
	if err := r.load(); err != nil {
		f.Close()
		return nil, fmt.Errorf("geocache: open %s: %w", path, err)
	}
	return r, nil
}

func (r *Reader) load() error {
	info, err := r.file.Stat()
	if err != nil {
		return err
	}
	size := uint64(info.Size())
	if size < headerSize+trailerSize {
		return fmt.Errorf("%w: file too short (%d bytes)", failure.ErrCorrupt, size)
	}

	header := make([]byte, headerSize)
	if _, err := r.file.ReadAt(header, 0); err != nil {
		return err
	}
	if !bytes.Equal(header[:4], magic[:]) {
		return fmt.Errorf("%w: bad header magic %q", failure.ErrCorrupt, header[:4])
	}
	if v := binary.LittleEndian.Uint32(header[4:8]); v != Version {
		return fmt.Errorf("%w: unsupported version %d", failure.ErrCorrupt, v)
	}
	copy(r.id[:], header[8:24])

	trailer := make([]byte, trailerSize)
	if _, err := r.file.ReadAt(trailer, int64(size-trailerSize)); err != nil {
		return err
	}
	if !bytes.Equal(trailer[24:28], magic[:]) {
		return fmt.Errorf("%w: missing trailer, container was not closed", failure.ErrCorrupt)
	}
	metaOffset := binary.LittleEndian.Uint64(trailer[0:8])
	metaLen := uint64(binary.LittleEndian.Uint32(trailer[8:12]))
	indexOffset := binary.LittleEndian.Uint64(trailer[12:20])
	count := uint64(binary.LittleEndian.Uint32(trailer[20:24]))

	if metaOffset < headerSize || metaOffset+metaLen != indexOffset || indexOffset+8*count != size-trailerSize {
		return fmt.Errorf("%w: inconsistent trailer offsets", failure.ErrCorrupt)
	}

	metaData := make([]byte, metaLen)
	if _, err := r.file.ReadAt(metaData, int64(metaOffset)); err != nil {
		return err
	}
	if err := json.Unmarshal(metaData, &r.meta); err != nil {
		return fmt.Errorf("%w: meta: %v", failure.ErrCorrupt, err)
	}
	if uint64(r.meta.SampleCount) != count {
		return fmt.Errorf("%w: meta lists %d samples, index has %d", failure.ErrCorrupt, r.meta.SampleCount, count)
	}
	if r.meta.ArchiveID != r.id.String() {
		return fmt.Errorf("%w: archive id mismatch", failure.ErrCorrupt)
	}

	index := make([]byte, 8*count)
	if _, err := r.file.ReadAt(index, int64(indexOffset)); err != nil {
		return err
	}
	r.offsets = make([]uint64, count)
	for i := range r.offsets {
		r.offsets[i] = binary.LittleEndian.Uint64(index[i*8:])
	}
	r.dataEnd = metaOffset
	return nil
}

// Meta returns the archive metadata.
func (r *Reader) Meta() Meta {
	return r.meta
}

// ArchiveID returns the id stored in the file header.
func (r *Reader) ArchiveID() uuid.UUID {
	return r.id
}

// NumSamples returns the number of stored samples.
func (r *Reader) NumSamples() int {
	return len(r.offsets)
}

// Time returns the time in seconds of sample i.
func (r *Reader) Time(i int) float64 {
	return r.meta.TimeSampling.Time(i)
}

// Sample reads and verifies sample i.
func (r *Reader) Sample(i int) (Sample, error) {
	if i < 0 || i >= len(r.offsets) {
		return Sample{}, fmt.Errorf("geocache: sample %d out of range [0, %d)", i, len(r.offsets))
	}

	off := r.offsets[i]
	if off < headerSize || off+4 > r.dataEnd {
		return Sample{}, fmt.Errorf("geocache: sample %d: %w: bad offset %d", i, failure.ErrCorrupt, off)
	}

	var lenBuf [4]byte
	if _, err := r.file.ReadAt(lenBuf[:], int64(off)); err != nil {
		return Sample{}, fmt.Errorf("geocache: sample %d: %w", i, err)
	}
	n := uint64(binary.LittleEndian.Uint32(lenBuf[:]))
	if off+4+n+8 > r.dataEnd {
		return Sample{}, fmt.Errorf("geocache: sample %d: %w: length %d overruns data", i, failure.ErrCorrupt, n)
	}

	rec := make([]byte, n+8)
	if _, err := io.ReadFull(io.NewSectionReader(r.file, int64(off+4), int64(n+8)), rec); err != nil {
		return Sample{}, fmt.Errorf("geocache: sample %d: %w", i, err)
	}
	payload := rec[:n]
	if sum := binary.LittleEndian.Uint64(rec[n:]); sum != xxhash.Sum64(payload) {
		return Sample{}, fmt.Errorf("geocache: sample %d: %w: checksum mismatch", i, failure.ErrCorrupt)
	}

	s, err := decodeSample(payload)
	if err != nil {
		return Sample{}, fmt.Errorf("geocache: sample %d: %w", i, err)
	}
	return s, nil
}

// Close releases the file handle.
func (r *Reader) Close() error {
	return r.file.Close()
}
