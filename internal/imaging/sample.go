package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/image-scopes-mcp/internal/colorspace"
)

// RGBAColor represents an RGBA color with 8-bit components including alpha.
type RGBAColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// PixelSample is one pixel of a Frame in the representations the scopes
// use.
//
// XYZ is D50 relative. UV holds the CIELUV u*, v* coordinates and AzBz the
// JzAzBz opponent coordinates, the same projections the vectorscope bins
// by.
type PixelSample struct {
	Label  string     `json:"label,omitempty"`
	X      int        `json:"x"`
	Y      int        `json:"y"`
	Hex    string     `json:"hex"`
	RGBA   RGBAColor  `json:"rgba"`
	Values [4]float32 `json:"values"`
	HSL    HSLColor   `json:"hsl"`
	XYZ    [3]float64 `json:"xyz"`
	UV     [2]float64 `json:"uv"`
	AzBz   [2]float64 `json:"azbz"`
}

// LabeledPoint represents a pixel coordinate with an optional descriptive label.
type LabeledPoint struct {
	X     int
	Y     int
	Label string
}

// SamplePixel reads the pixel at (x, y) of f and converts it through
// profile.
//
// Parameters:
//   - f: The frame to sample.
//   - profile: The profile f is encoded in. Must not be nil.
//   - x, y: 0-based frame coordinates.
//
// Returns:
//   - *PixelSample: The pixel in several representations.
//   - error: Non-nil if the coordinates are outside the frame.
func SamplePixel(f *Frame, profile *colorspace.Profile, x, y int) (*PixelSample, error) {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}
	if profile == nil {
		return nil, fmt.Errorf("no profile for pixel (%d,%d)", x, y)
	}

	i := 4 * (y*f.Width + x)
	px := f.Pixels[i : i+4]
	r8, g8, b8, a8 := to8(px[0]), to8(px[1]), to8(px[2]), to8(px[3])

	c := colorful.Color{R: float64(px[0]), G: float64(px[1]), B: float64(px[2])}.Clamped()
	h, s, l := c.Hsl()
	if math.IsNaN(h) {
		h = 0
	}

	xyz := profile.RGBToXYZ(px[0], px[1], px[2])
	u, v := colorspace.LuvUV(xyz)
	az, bz := colorspace.AzBz(xyz)

	return &PixelSample{
		X:      x,
		Y:      y,
		Hex:    fmt.Sprintf("#%02X%02X%02X", r8, g8, b8),
		RGBA:   RGBAColor{R: r8, G: g8, B: b8, A: a8},
		Values: [4]float32{px[0], px[1], px[2], px[3]},
		HSL:    HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)},
		XYZ:    [3]float64{xyz[0], xyz[1], xyz[2]},
		UV:     [2]float64{u, v},
		AzBz:   [2]float64{az, bz},
	}, nil
}

// SamplePixels samples several points in input order. On error, no partial
// results are returned.
func SamplePixels(f *Frame, profile *colorspace.Profile, points []LabeledPoint) ([]PixelSample, error) {
	samples := make([]PixelSample, 0, len(points))
	for _, p := range points {
		s, err := SamplePixel(f, profile, p.X, p.Y)
		if err != nil {
			return nil, fmt.Errorf("failed to sample point (%d,%d): %w", p.X, p.Y, err)
		}
		s.Label = p.Label
		samples = append(samples, *s)
	}
	return samples, nil
}

// SampleImage samples points of a decoded image at full resolution. Only
// the sampled pixels are converted to floats.
func SampleImage(img image.Image, profile *colorspace.Profile, points []LabeledPoint) ([]PixelSample, error) {
	b := img.Bounds()
	samples := make([]PixelSample, 0, len(points))
	for _, p := range points {
		if p.X < 0 || p.X >= b.Dx() || p.Y < 0 || p.Y >= b.Dy() {
			return nil, fmt.Errorf("failed to sample point (%d,%d): coordinates outside image bounds", p.X, p.Y)
		}
		px := imaging.Crop(img, image.Rect(b.Min.X+p.X, b.Min.Y+p.Y, b.Min.X+p.X+1, b.Min.Y+p.Y+1))
		s, err := SamplePixel(NewFrame(px, 0, 0), profile, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to sample point (%d,%d): %w", p.X, p.Y, err)
		}
		s.Label, s.X, s.Y = p.Label, p.X, p.Y
		samples = append(samples, *s)
	}
	return samples, nil
}

func to8(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(float64(v) * 255))
}
