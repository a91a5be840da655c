package geocache

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"objseq2cache/internal/failure"
	"objseq2cache/internal/obj"
)

type writerState int

const (
	stateCreated writerState = iota
	stateOpen
	stateClosed
)

func (s writerState) String() string {
	switch s {
	case stateCreated:
		return "created"
	case stateOpen:
		return "open"
	case stateClosed:
		return "closed"
	}
	return "unknown"
}

// Writer appends mesh samples to a cache file in time order.
// The zero Writer is not open; use Open. A Writer is not safe for
// concurrent use.
type Writer struct {
	path  string
	state writerState

	file *os.File
	bw   *bufio.Writer
	off  uint64

	meta    Meta
	offsets []uint64
}

// Open creates the cache file at path with one animated mesh object sampled
// every 1/rateHz seconds starting at time 0.
func Open(path string, rateHz float64) (*Writer, error) {
	if rateHz <= 0 || math.IsNaN(rateHz) || math.IsInf(rateHz, 0) {
		return nil, fmt.Errorf("geocache: create %s: %w: invalid sample rate %v", path, failure.ErrContainerCreate, rateHz)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("geocache: create %s: %w: %w", path, failure.ErrContainerCreate, err)
	}

	id := uuid.New()
	w := &Writer{
		path:  path,
		state: stateOpen,
		file:  f,
		bw:    bufio.NewWriterSize(f, 1<<20),
		meta: Meta{
			Version:   Version,
			ArchiveID: id.String(),
			Parent:    DefaultParent,
			Object:    DefaultObject,
			Schema:    "PolyMesh",
			TimeSampling: TimeSampling{
				Interval: 1.0 / rateHz,
				Start:    0,
			},
		},
	}

	header := make([]byte, 0, headerSize)
	header = append(header, magic[:]...)
	header = binary.LittleEndian.AppendUint32(header, Version)
	header = append(header, id[:]...)
	if err := w.write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("geocache: create %s: %w: %w", path, failure.ErrContainerCreate, err)
	}

	return w, nil
}

// Path returns the file path of the cache.
func (w *Writer) Path() string {
	return w.path
}

// SampleCount returns the number of samples written so far.
func (w *Writer) SampleCount() int {
	return len(w.offsets)
}

// TimeSampling returns the writer's sample timing.
func (w *Writer) TimeSampling() TimeSampling {
	return w.meta.TimeSampling
}

// WriteFrame converts mesh to a sample and appends it. frameIndex must equal
// the number of samples already written: samples are never inserted out of
// order or overwritten.
func (w *Writer) WriteFrame(mesh *obj.Mesh, frameIndex int) error {
	if w.state != stateOpen {
		return fmt.Errorf("geocache: write frame %d: %w: writer is %s", frameIndex, failure.ErrInvalidState, w.state)
	}
	if frameIndex != len(w.offsets) {
		return fmt.Errorf("geocache: write frame %d: %w: next sample is %d", frameIndex, failure.ErrInvalidState, len(w.offsets))
	}

	s, err := BuildSample(mesh)
	if err != nil {
		return err
	}
	return w.appendSample(s)
}

func (w *Writer) appendSample(s Sample) error {
	payload := encodeSample(s)

	rec := make([]byte, 0, 4+len(payload)+8)
	rec = binary.LittleEndian.AppendUint32(rec, uint32(len(payload)))
	rec = append(rec, payload...)
	rec = binary.LittleEndian.AppendUint64(rec, xxhash.Sum64(payload))

	start := w.off
	if err := w.write(rec); err != nil {
		return fmt.Errorf("geocache: write sample %d to %s: %w", len(w.offsets), w.path, err)
	}
	w.offsets = append(w.offsets, start)
	return nil
}

// Close writes the metadata and sample index, then flushes and closes the
// file. The writer cannot be used afterwards.
func (w *Writer) Close() error {
	if w.state != stateOpen {
		return fmt.Errorf("geocache: close: %w: writer is %s", failure.ErrInvalidState, w.state)
	}
	w.state = stateClosed

	err := w.finalize()
	if cerr := w.file.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("geocache: close %s: %w", w.path, cerr)
	}
	return err
}

func (w *Writer) finalize() error {
	w.meta.SampleCount = len(w.offsets)
	metaData, err := json.Marshal(w.meta)
	if err != nil {
		return fmt.Errorf("geocache: marshal meta: %w", err)
	}

	metaOffset := w.off
	if err := w.write(metaData); err != nil {
		return fmt.Errorf("geocache: write meta to %s: %w", w.path, err)
	}

	indexOffset := w.off
	index := make([]byte, 0, 8*len(w.offsets))
	for _, o := range w.offsets {
		index = binary.LittleEndian.AppendUint64(index, o)
	}
	if err := w.write(index); err != nil {
		return fmt.Errorf("geocache: write index to %s: %w", w.path, err)
	}

	trailer := make([]byte, 0, trailerSize)
	trailer = binary.LittleEndian.AppendUint64(trailer, metaOffset)
	trailer = binary.LittleEndian.AppendUint32(trailer, uint32(len(metaData)))
	trailer = binary.LittleEndian.AppendUint64(trailer, indexOffset)
	trailer = binary.LittleEndian.AppendUint32(trailer, uint32(len(w.offsets)))
	trailer = append(trailer, magic[:]...)
	if err := w.write(trailer); err != nil {
		return fmt.Errorf("geocache: write trailer to %s: %w", w.path, err)
	}

	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("geocache: flush %s: %w", w.path, err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("geocache: sync %s: %w", w.path, err)
	}
	return nil
}

func (w *Writer) write(p []byte) error {
	n, err := w.bw.Write(p)
	w.off += uint64(n)
	return err
}
