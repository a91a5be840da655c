// Package preview renders a poster image of a cache sample.
package preview

import (
	"image"
	"math"

	"objseq2cache/internal/geocache"
	"objseq2cache/internal/mathutil"
)

// Options controls the preview camera and resolution.
type Options struct {
	Size        int     // output edge length in pixels
	Supersample int     // render at Size*Supersample, then downsample
	Yaw         float64 // degrees around Y
	Pitch       float64 // degrees around X
}

// DefaultOptions returns a 256px three-quarter view.
func DefaultOptions() Options {
	return Options{Size: 256, Supersample: 2, Yaw: -30, Pitch: 20}
}

// Render draws a sample, fitted to the frame, into an NRGBA image of
// opts.Size pixels. Polygons are fanned into triangles in stored order.
func Render(s geocache.Sample, opts Options) *image.NRGBA {
	if opts.Size <= 0 {
		opts.Size = DefaultOptions().Size
	}
	if opts.Supersample <= 0 {
		opts.Supersample = 1
	}
	renderSize := opts.Size * opts.Supersample

	if len(s.Positions) == 0 {
		return image.NewNRGBA(image.Rect(0, 0, opts.Size, opts.Size))
	}

	R := mathutil.Mat3Mul(mathutil.RotX(mathutil.Deg2Rad(opts.Pitch)), mathutil.RotY(mathutil.Deg2Rad(opts.Yaw)))

	// Transform and bound
	view := make([]mathutil.Vec3, len(s.Positions))
	minV := mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	maxV := mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for i, p := range s.Positions {
		v := R.MulVec3(mathutil.Vec3{float64(p[0]), float64(p[1]), float64(p[2])})
		view[i] = v
		minV = minV.Min(v)
		maxV = maxV.Max(v)
	}
	center := minV.Add(maxV).Scale(0.5)
	span := math.Max(maxV[0]-minV[0], maxV[1]-minV[1])
	if span < 1e-6 {
		span = 1e-6
	}

	margin := renderSize / 16
	scale := float64(renderSize-2*margin) / span
	half := float64(renderSize) / 2

	px := make([]float64, len(view))
	py := make([]float64, len(view))
	pz := make([]float64, len(view))
	for i, v := range view {
		px[i] = (v[0]-center[0])*scale + half
		py[i] = half - (v[1]-center[1])*scale
		pz[i] = (v[2] - center[2]) * scale
	}

	fb := NewFrameBuffer(renderSize, renderSize)
	lc := DefaultLightConfig()

	off := 0
	for _, c := range s.FaceCounts {
		n := int(c)
		if n < 0 || off+n > len(s.FaceIndices) {
			break
		}
		face := s.FaceIndices[off : off+n]
		for k := 1; k+1 < n; k++ {
			RasterizeTriangle(fb, px, py, pz, [3]int{int(face[0]), int(face[k]), int(face[k+1])}, &lc)
		}
		off += n
	}

	img := image.NewNRGBA(image.Rect(0, 0, renderSize, renderSize))
	copy(img.Pix, fb.Color)

	if opts.Supersample > 1 {
		img = Downsample(img, opts.Size)
	}
	return img
}
