// Package pipeline converts a directory of frame files into one geometry
// cache: discover, then parse and write each frame in order, stopping at the
// first failure.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"objseq2cache/internal/failure"
	"objseq2cache/internal/geocache"
	"objseq2cache/internal/manifest"
	"objseq2cache/internal/obj"
	"objseq2cache/internal/preview"
	"objseq2cache/internal/sequence"
)

// Options configures one conversion run.
type Options struct {
	InputDir   string
	OutputPath string
	SampleRate float64 // Hz
	Extension  string  // frame-file extension, default ".obj"

	// Prefetch parses frame N+1 while frame N is written.
	Prefetch bool

	// Optional outputs; empty paths disable them.
	PreviewPath  string
	Preview      preview.Options
	ManifestPath string

	// OnDiscover is called once with the ordered frame list.
	OnDiscover func(frames []sequence.Descriptor)
	// Progress is called after each frame is written.
	Progress func(p Progress)
}

// Progress reports one written frame.
type Progress struct {
	Ordinal  int
	Total    int
	File     string
	Vertices int
	Faces    int
}

// Summary describes a successful run.
type Summary struct {
	Output       string
	TimeSampling geocache.TimeSampling
	Frames       []manifest.Entry
	Elapsed      time.Duration
}

// parsed is one frame handed from the parse stage to the write stage.
type parsed struct {
	ordinal int
	desc    sequence.Descriptor
	mesh    *obj.Mesh
	err     error
}

// Run performs the conversion. Any discovery, parse or write failure stops
// the run; frame failures are returned as *failure.FrameError. The cache is
// finalized on every exit path, but after a failure it holds only a prefix
// of the sequence and should be discarded by the caller.
func Run(ctx context.Context, opts Options) (sum Summary, err error) {
	start := time.Now()

	frames, err := sequence.Discover(opts.InputDir, opts.Extension)
	if err != nil {
		return Summary{}, fmt.Errorf("pipeline: %w", err)
	}
	if len(frames) == 0 {
		return Summary{}, fmt.Errorf("pipeline: %s: %w", opts.InputDir, failure.ErrNoInput)
	}
	if opts.OnDiscover != nil {
		opts.OnDiscover(frames)
	}

	w, err := geocache.Open(opts.OutputPath, opts.SampleRate)
	if err != nil {
		return Summary{}, fmt.Errorf("pipeline: %w", err)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("pipeline: %w", cerr)
		}
	}()

	c := &converter{
		opts:   opts,
		writer: w,
		total:  len(frames),
		ts:     w.TimeSampling(),
	}

	if opts.Prefetch {
		err = c.runPrefetch(ctx, frames)
	} else {
		err = c.runSequential(ctx, frames)
	}
	if err != nil {
		return Summary{}, err
	}

	if opts.PreviewPath != "" {
		img := preview.Render(c.poster, opts.Preview)
		if err := preview.WriteWebP(opts.PreviewPath, img); err != nil {
			return Summary{}, fmt.Errorf("pipeline: %w", err)
		}
	}
	if opts.ManifestPath != "" {
		m := manifest.Manifest{
			Cache:      opts.OutputPath,
			SampleRate: opts.SampleRate,
			Frames:     c.entries,
		}
		if err := manifest.Write(opts.ManifestPath, m); err != nil {
			return Summary{}, fmt.Errorf("pipeline: %w", err)
		}
	}

	return Summary{
		Output:       opts.OutputPath,
		TimeSampling: c.ts,
		Frames:       c.entries,
		Elapsed:      time.Since(start),
	}, nil
}

// converter is the write stage. It is the only code that touches the writer.
type converter struct {
	opts    Options
	writer  *geocache.Writer
	total   int
	ts      geocache.TimeSampling
	entries []manifest.Entry
	poster  geocache.Sample // sample 0, kept only when a preview is requested
}

func (c *converter) runSequential(ctx context.Context, frames []sequence.Descriptor) error {
	for i, d := range frames {
		if err := ctx.Err(); err != nil {
			return frameError(i, d, err)
		}
		mesh, err := obj.Parse(d.Path)
		if err := c.write(parsed{ordinal: i, desc: d, mesh: mesh, err: err}); err != nil {
			return err
		}
	}
	return nil
}

func (c *converter) runPrefetch(ctx context.Context, frames []sequence.Descriptor) error {
	ch, stop := prefetch(ctx, frames)
	defer stop()

	next := 0
	for p := range ch {
		if err := ctx.Err(); err != nil {
			return frameError(p.ordinal, p.desc, err)
		}
		if err := c.write(p); err != nil {
			return err
		}
		next++
	}
	if next < len(frames) {
		// The producer only stops early on cancellation.
		return frameError(next, frames[next], context.Cause(ctx))
	}
	return nil
}

func (c *converter) write(p parsed) error {
	if p.err != nil {
		return frameError(p.ordinal, p.desc, p.err)
	}
	if err := c.writer.WriteFrame(p.mesh, p.ordinal); err != nil {
		return frameError(p.ordinal, p.desc, err)
	}

	if p.ordinal == 0 && c.opts.PreviewPath != "" {
		// Already validated by WriteFrame.
		c.poster, _ = geocache.BuildSample(p.mesh)
	}

	e := manifest.Entry{
		Ordinal:  p.ordinal,
		File:     p.desc.Name,
		Time:     c.ts.Time(p.ordinal),
		Vertices: len(p.mesh.Vertices),
		Faces:    len(p.mesh.Faces),
	}
	if p.desc.HasNumber {
		n := p.desc.Number
		e.FrameNumber = &n
	}
	c.entries = append(c.entries, e)

	if c.opts.Progress != nil {
		c.opts.Progress(Progress{
			Ordinal:  p.ordinal,
			Total:    c.total,
			File:     p.desc.Name,
			Vertices: e.Vertices,
			Faces:    e.Faces,
		})
	}
	return nil
}

func frameError(ordinal int, d sequence.Descriptor, err error) error {
	return &failure.FrameError{Ordinal: ordinal, File: d.Name, Err: err}
}
