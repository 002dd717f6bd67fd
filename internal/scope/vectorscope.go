package scope

import (
	"fmt"
	"math"
	"sync"

	"github.com/anthonynsimon/bild/parallel"
	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/ironsheep/image-scopes-mcp/internal/colorspace"
)

// Converter maps an RGB pixel into the D50 profile connection space.
// *colorspace.Profile implements it.
type Converter interface {
	RGBToXYZ(r, g, b float32) colorspace.XYZ
}

// vectorscopeGamma compresses bin densities before 8-bit quantization.
const vectorscopeGamma = 1 / 1.5

// graticuleColors are the reference primaries and secondaries R, G, B, C, M, Y.
var graticuleColors = [6][3]float32{
	{1, 0, 0}, {0, 1, 0}, {0, 0, 1},
	{0, 1, 1}, {1, 0, 1}, {1, 1, 0},
}

// Vectorscope is a chromaticity density map with its reference graticule.
//
// Alpha is Diameter x Diameter bytes, row-major with stride Diameter.
// Graticule holds the R, G, B, C, M, Y reference points divided by the
// largest of their radii, so every point lies in the unit disc. A NaN in
// Graticule[0][0] means there is no data.
type Vectorscope struct {
	Diameter  int             `json:"diameter"`
	Type      VectorscopeType `json:"type"`
	Alpha     []uint8         `json:"-"`
	Graticule [6][2]float32   `json:"-"`

	bins []float64
}

// NewVectorscope allocates a vectorscope of the given diameter with no data.
func NewVectorscope(diameter int) *Vectorscope {
	v := &Vectorscope{
		Diameter: diameter,
		Alpha:    make([]uint8, diameter*diameter),
		bins:     make([]float64, diameter*diameter),
	}
	v.Reset()
	return v
}

// Valid reports whether the vectorscope holds data.
func (v *Vectorscope) Valid() bool {
	return !math.IsNaN(float64(v.Graticule[0][0]))
}

// Reset sets the no-data sentinel. The buffers are kept.
func (v *Vectorscope) Reset() {
	v.Graticule[0][0] = float32(math.NaN())
}

func chromaticity(xyz colorspace.XYZ, mode VectorscopeType) (float64, float64) {
	if mode == VectorscopeJzAzBz {
		return colorspace.AzBz(xyz)
	}
	return colorspace.LuvUV(xyz)
}

// Compute bins every pixel of a width x height RGBA buffer by chromaticity.
//
// Parameters:
//   - pixels: Packed RGBA floats, at least 4*width*height long.
//   - width, height: Image dimensions. No ROI applies.
//   - mode: The chromaticity projection.
//   - conv: The profile of pixels. Must not be nil.
//
// Returns an error wrapping ErrProfileUnavailable if conv is nil or the
// profile yields a degenerate graticule. In that case the sentinel is set
// and Alpha and the density bins are zeroed.
//
// Samples falling outside the square are discarded rather than clamped to
// its border. Each row range bins into private memory, which is then added
// into the shared bins under a mutex.
func (v *Vectorscope) Compute(pixels []float32, width, height int, mode VectorscopeType, conv Converter) error {
	if conv == nil {
		v.invalidate()
		return fmt.Errorf("vectorscope: %w", ErrProfileUnavailable)
	}

	var us, vs, radii [6]float64
	for k, c := range graticuleColors {
		us[k], vs[k] = chromaticity(conv.RGBToXYZ(c[0], c[1], c[2]), mode)
	}
	vecmath.Magnitude(radii[:], us[:], vs[:])
	maxRadius := vecmath.MaxAbs(radii[:])
	if !(maxRadius > 0) || math.IsInf(maxRadius, 0) {
		v.invalidate()
		return fmt.Errorf("vectorscope: degenerate graticule radius %v: %w", maxRadius, ErrProfileUnavailable)
	}

	d := v.Diameter
	clear(v.bins)
	if n := width * height; n > 0 && d > 0 {
		scale := 4 * float64(d*d) / (float64(n) * 255)
		fd := float64(d)
		var mu sync.Mutex
		parallel.Line(height, func(start, end int) {
			local := make([]float64, d*d)
			for i := 4 * width * start; i < 4*width*end; i += 4 {
				cu, cv := chromaticity(conv.RGBToXYZ(pixels[i], pixels[i+1], pixels[i+2]), mode)
				bx := math.Round(fd * (cu/maxRadius + 0.5))
				by := math.Round(fd * (cv/maxRadius + 0.5))
				if !(bx >= 0 && bx < fd && by >= 0 && by < fd) {
					continue
				}
				local[int(by)*d+int(bx)] += scale
			}
			mu.Lock()
			vecmath.AddBlockInPlace(v.bins, local)
			mu.Unlock()
		})
	}

	for i, b := range v.bins {
		a := math.Round(255 * math.Pow(b, vectorscopeGamma))
		v.Alpha[i] = uint8(math.Min(255, math.Max(0, a)))
	}
	for k := range v.Graticule {
		v.Graticule[k] = [2]float32{float32(us[k] / maxRadius), float32(vs[k] / maxRadius)}
	}
	v.Type = mode
	return nil
}

func (v *Vectorscope) invalidate() {
	clear(v.Alpha)
	clear(v.bins)
	v.Reset()
}

// Density returns the raw accumulated weight of bin (x, y). It is zero
// everywhere after a failed Compute.
func (v *Vectorscope) Density(x, y int) float64 {
	return v.bins[y*v.Diameter+x]
}
