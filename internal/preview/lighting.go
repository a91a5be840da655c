package preview

import (
	"math"

	"objseq2cache/internal/mathutil"
)

// LightConfig holds precomputed lighting parameters.
type LightConfig struct {
	LightDir  mathutil.Vec3
	RimDir    mathutil.Vec3
	HalfMain  mathutil.Vec3 // half-vector for Blinn-Phong
	Ambient   float64
	Hemi      float64
	Direct    float64
	Rim       float64
	SpecInt   float64
	SpecPow   float64
	Exposure  float64
	InvGamma  float64
	BaseColor [3]uint8 // sRGB surface color
}

// DefaultLightConfig returns a neutral three-light studio setup.
func DefaultLightConfig() LightConfig {
	lightDir := mathutil.Vec3{180, 260, 140}.Normalize()
	rimDir := mathutil.Vec3{-160, 130, -210}.Normalize()
	viewDir := mathutil.Vec3{0, -110, -400}.Normalize()

	return LightConfig{
		LightDir:  lightDir,
		RimDir:    rimDir,
		HalfMain:  lightDir.Sub(viewDir).Normalize(),
		Ambient:   0.45,
		Hemi:      0.40,
		Direct:    1.20,
		Rim:       0.50,
		SpecInt:   0.35,
		SpecPow:   12.0,
		Exposure:  1.0,
		InvGamma:  1.0 / 2.2,
		BaseColor: [3]uint8{160, 160, 170},
	}
}

// ComputeShade returns the combined lighting scalar for a unit face normal.
// Lighting is two-sided so faces of either winding stay visible.
func (lc *LightConfig) ComputeShade(normal mathutil.Vec3) float64 {
	ndlMain := math.Abs(normal.Dot(lc.LightDir))
	ndlRim := math.Abs(normal.Dot(lc.RimDir))

	hemi := (1.0-math.Abs(normal[1]))*0.5 + 0.5

	ndh := normal.Dot(lc.HalfMain)
	if ndh < 0 {
		ndh = 0
	}
	spec := math.Pow(ndh, lc.SpecPow) * lc.SpecInt

	return lc.Ambient + hemi*lc.Hemi + ndlMain*lc.Direct + ndlRim*lc.Rim + spec
}

// ShadeColor applies shade to the base color with ACES tone mapping and
// returns sRGB bytes.
func (lc *LightConfig) ShadeColor(shade float64) (r, g, b uint8) {
	out := [3]uint8{}
	for k := 0; k < 3; k++ {
		lin := srgbToLinear[lc.BaseColor[k]] * shade * lc.Exposure
		out[k] = clamp255(math.Pow(ACESTonemap(lin), lc.InvGamma) * 255)
	}
	return out[0], out[1], out[2]
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
