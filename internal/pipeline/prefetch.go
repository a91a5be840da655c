package pipeline

import (
	"context"

	"objseq2cache/internal/obj"
	"objseq2cache/internal/sequence"
)

// prefetch parses frames on one goroutine and hands them over in sequence
// order through a single-slot channel, so at most one parsed frame waits
// while another is written. A parse error is delivered and ends the stream.
//
// stop cancels the producer and waits for it to exit; it is safe to call
// after the channel is drained.
func prefetch(ctx context.Context, frames []sequence.Descriptor) (<-chan parsed, func()) {
	ctx, cancel := context.WithCancel(ctx)
	out := make(chan parsed, 1)

	go func() {
		defer close(out)
		for i, d := range frames {
			if ctx.Err() != nil {
				return
			}
			mesh, err := obj.Parse(d.Path)
			select {
			case out <- parsed{ordinal: i, desc: d, mesh: mesh, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	stop := func() {
		cancel()
		for range out {
		}
	}
	return out, stop
}
