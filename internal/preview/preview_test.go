package preview

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/webp"

	"objseq2cache/internal/geocache"
	"objseq2cache/internal/obj"
)

func cubeSample(t *testing.T) geocache.Sample {
	t.Helper()
	mesh := &obj.Mesh{
		Name: "cube.obj",
		Vertices: []obj.Vertex{
			{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
			{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
		},
		Faces: []obj.Face{
			{0, 3, 2, 1}, {4, 5, 6, 7},
			{0, 1, 5, 4}, {2, 3, 7, 6},
			{1, 2, 6, 5}, {0, 4, 7, 3},
		},
	}
	s, err := geocache.BuildSample(mesh)
	require.NoError(t, err)
	return s
}

func alphaCoverage(img *image.NRGBA) float64 {
	b := img.Bounds()
	hit := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] > 0 {
			hit++
		}
	}
	return float64(hit) / float64(b.Dx()*b.Dy())
}

func TestRender_CubeFillsFrame(t *testing.T) {
	t.Parallel()

	img := Render(cubeSample(t), Options{Size: 64, Supersample: 2, Yaw: -30, Pitch: 20})
	require.Equal(t, image.Rect(0, 0, 64, 64), img.Bounds())

	cov := alphaCoverage(img)
	assert.Greater(t, cov, 0.3)
	assert.Less(t, cov, 1.0)

	// The center pixel lies on the cube and is opaque.
	c := img.NRGBAAt(32, 32)
	assert.Equal(t, uint8(255), c.A)
}

func TestRender_EmptySample(t *testing.T) {
	t.Parallel()

	img := Render(geocache.Sample{}, Options{Size: 16})
	assert.Equal(t, image.Rect(0, 0, 16, 16), img.Bounds())
	assert.Zero(t, alphaCoverage(img))
}

func TestRender_SkipsMalformedCounts(t *testing.T) {
	t.Parallel()

	s := cubeSample(t)
	s.FaceCounts = append(s.FaceCounts, 9)
	img := Render(s, Options{Size: 32, Supersample: 1})
	assert.Greater(t, alphaCoverage(img), 0.0)
}

func TestRasterizeTriangle_DepthTest(t *testing.T) {
	t.Parallel()

	fb := NewFrameBuffer(8, 8)
	lc := DefaultLightConfig()
	px := []float64{0, 8, 0, 0, 8, 0}
	py := []float64{0, 0, 8, 0, 0, 8}
	pz := []float64{1, 1, 1, -1, -1, -1}

	RasterizeTriangle(fb, px, py, pz, [3]int{0, 1, 2}, &lc)
	near := append([]uint8(nil), fb.Color...)
	assert.Greater(t, fb.Coverage(), 0.0)

	// A farther triangle over the same pixels must not overwrite.
	RasterizeTriangle(fb, px, py, pz, [3]int{3, 4, 5}, &lc)
	assert.Equal(t, near, fb.Color)

	// Out-of-range indices are ignored.
	RasterizeTriangle(fb, px, py, pz, [3]int{0, 1, 9}, &lc)
}

func TestDownsample(t *testing.T) {
	t.Parallel()

	src := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3] = 200, 100, 50, 255
	}
	dst := Downsample(src, 16)
	assert.Equal(t, image.Rect(0, 0, 16, 16), dst.Bounds())
	c := dst.NRGBAAt(8, 8)
	assert.InDelta(t, 200, int(c.R), 2)
	assert.Equal(t, uint8(255), c.A)

	assert.Same(t, src, Downsample(src, 64))
}

func TestWriteWebP_Decodes(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "previews", "frame0.webp")
	img := Render(cubeSample(t), Options{Size: 48, Supersample: 2})
	require.NoError(t, WriteWebP(path, img))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	decoded, err := webp.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
}
