package preview

import (
	"math"

	"objseq2cache/internal/mathutil"
)

// RasterizeTriangle fills one flat-shaded triangle into fb with a z-buffer
// test. px/py are screen coordinates, pz is depth (larger is nearer).
// Indices outside the vertex arrays and degenerate triangles are skipped.
func RasterizeTriangle(fb *FrameBuffer, px, py, pz []float64, idx [3]int, lc *LightConfig) {
	nv := len(px)
	for _, i := range idx {
		if i < 0 || i >= nv {
			return
		}
	}

	x0, y0, z0 := px[idx[0]], py[idx[0]], pz[idx[0]]
	x1, y1, z1 := px[idx[1]], py[idx[1]], pz[idx[1]]
	x2, y2, z2 := px[idx[2]], py[idx[2]], pz[idx[2]]

	normal := mathutil.Vec3{x1 - x0, y1 - y0, z1 - z0}.Cross(mathutil.Vec3{x2 - x0, y2 - y0, z2 - z0})
	if normal.Len() < 1e-8 {
		return
	}
	cr, cg, cb := lc.ShadeColor(lc.ComputeShade(normal.Normalize()))

	// Bounding box
	minX := int(math.Floor(math.Min(math.Min(x0, x1), x2)))
	maxX := int(math.Ceil(math.Max(math.Max(x0, x1), x2)))
	minY := int(math.Floor(math.Min(math.Min(y0, y1), y2)))
	maxY := int(math.Ceil(math.Max(math.Max(y0, y1), y2)))
	if minX < 0 {
		minX = 0
	}
	if maxX >= fb.Width {
		maxX = fb.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= fb.Height {
		maxY = fb.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det
	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1
			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}
			fb.ZBuf[zIdx] = z

			pxIdx := zIdx * 4
			fb.Color[pxIdx] = cr
			fb.Color[pxIdx+1] = cg
			fb.Color[pxIdx+2] = cb
			fb.Color[pxIdx+3] = 255
		}
	}
}
