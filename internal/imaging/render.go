package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"

	"golang.org/x/image/draw"

	"github.com/ironsheep/image-scopes-mcp/internal/scope"
)

// ErrNoScopeData is returned when the selected scope has nothing to draw.
var ErrNoScopeData = errors.New("no scope data")

// histogramPlotHeight is the native height of a rendered histogram.
const histogramPlotHeight = 128

var channelColors = [3]color.RGBA{
	{255, 64, 64, 255},
	{64, 255, 64, 255},
	{64, 96, 255, 255},
}

var graticuleLabels = [6]string{"R", "G", "B", "C", "M", "Y"}

// RenderOptions controls how a scope snapshot is drawn.
type RenderOptions struct {
	// Width and Height set the output size. Zero keeps the native size of
	// the scope on that axis.
	Width  int
	Height int

	// Background is a hex color like "#000000" or "#00000080". Empty means
	// opaque black.
	Background string

	// Labels draws the graticule letters on the vectorscope and the level
	// marks on the waveform.
	Labels bool
}

// RenderScope draws the output of the selected scope in snap.
//
// The histogram is drawn 256 levels wide with each visible channel filled
// additively. The waveform is drawn at its computed width, or three times
// that for a parade. The vectorscope is drawn at its diameter with the
// graticule points as colored dots.
//
// Returns ErrNoScopeData when snap holds no valid output.
func RenderScope(snap scope.Snapshot, opts RenderOptions) (*image.RGBA, error) {
	if !snap.Valid {
		return nil, fmt.Errorf("render %s: %w", snap.Scope, ErrNoScopeData)
	}

	bg := color.RGBA{0, 0, 0, 255}
	if opts.Background != "" {
		c, err := parseHexColor(opts.Background)
		if err != nil {
			return nil, fmt.Errorf("invalid background color %q: %w", opts.Background, err)
		}
		bg = c
	}

	var img *image.RGBA
	switch snap.Scope {
	case scope.ScopeHistogram:
		img = renderHistogram(snap.Histogram, snap.HistogramScale, snap.Channels, bg)
	case scope.ScopeWaveform:
		img = renderWaveform(snap.Waveform, snap.WaveformType, snap.Channels, snap.ChannelMap, bg, opts.Labels)
	case scope.ScopeVectorscope:
		img = renderVectorscope(snap.Vectorscope, bg, opts.Labels)
	default:
		return nil, fmt.Errorf("render: unknown scope %v", snap.Scope)
	}

	return scaleImage(img, opts.Width, opts.Height), nil
}

func newFilled(w, h int, bg color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)
	return img
}

func visible(ch scope.Channels) [3]bool {
	return [3]bool{ch.Red, ch.Green, ch.Blue}
}

// addPixel adds c scaled by k to the pixel at (x, y), saturating at 255.
func addPixel(img *image.RGBA, x, y int, c color.RGBA, k float64) {
	i := img.PixOffset(x, y)
	p := img.Pix[i : i+4 : i+4]
	p[0] = sat8(float64(p[0]) + k*float64(c.R))
	p[1] = sat8(float64(p[1]) + k*float64(c.G))
	p[2] = sat8(float64(p[2]) + k*float64(c.B))
	p[3] = 255
}

func sat8(v float64) uint8 {
	if !(v > 0) {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func renderHistogram(h *scope.Histogram, scale scope.HistogramScale, ch scope.Channels, bg color.RGBA) *image.RGBA {
	img := newFilled(scope.HistogramBins, histogramPlotHeight, bg)
	show := visible(ch)
	for k := 0; k < 3; k++ {
		if !show[k] {
			continue
		}
		for bin := 0; bin < scope.HistogramBins; bin++ {
			top := histogramPlotHeight - int(math.Round(h.Level(k, bin, scale)*histogramPlotHeight))
			for y := top; y < histogramPlotHeight; y++ {
				addPixel(img, bin, y, channelColors[k], 0.6)
			}
		}
	}
	return img
}

func renderWaveform(w *scope.Waveform, wt scope.WaveformType, ch scope.Channels, cmap scope.ChannelMap, bg color.RGBA, labels bool) *image.RGBA {
	show := visible(ch)
	panels := 1
	if wt == scope.WaveformParade {
		panels = 3
	}
	img := newFilled(w.Width*panels, w.Height, bg)

	for k := 0; k < 3; k++ {
		if !show[k] {
			continue
		}
		offset := 0
		if panels == 3 {
			offset = k * w.Width
		}
		for y := 0; y < w.Height; y++ {
			for x := 0; x < w.Width; x++ {
				if d := w.At(x, y, cmap[k]); d > 0 {
					addPixel(img, offset+x, y, channelColors[k], math.Min(1, float64(d)))
				}
			}
		}
	}

	if labels && w.Height > 1 {
		// level marks at 0% and 100%
		mark := color.RGBA{160, 160, 160, 255}
		for _, level := range []struct {
			y    int
			text string
		}{
			{int(math.Round(float64(w.Height-1) / 9)), "100"},
			{w.Height - 1, "0"},
		} {
			for x := 0; x < img.Bounds().Dx(); x += 2 {
				img.SetRGBA(x, level.y, mark)
			}
			drawLabel(img, 1, level.y-6, level.text, mark, bg)
		}
	}
	return img
}

func renderVectorscope(v *scope.Vectorscope, bg color.RGBA, labels bool) *image.RGBA {
	d := v.Diameter
	img := newFilled(d, d, bg)
	white := color.RGBA{255, 255, 255, 255}
	for y := 0; y < d; y++ {
		for x := 0; x < d; x++ {
			if a := v.Alpha[y*d+x]; a > 0 {
				addPixel(img, x, y, white, float64(a)/255)
			}
		}
	}

	for k, g := range v.Graticule {
		gx := int(math.Round(float64(d) * (float64(g[0]) + 0.5)))
		gy := int(math.Round(float64(d) * (float64(g[1]) + 0.5)))
		c := graticuleColor(k)
		fillRect(img, image.Rect(gx-2, gy-2, gx+3, gy+3), c)
		if labels {
			drawLabel(img, gx+4, gy-2, graticuleLabels[k], c, bg)
		}
	}
	return img
}

func graticuleColor(k int) color.RGBA {
	switch k {
	case 0:
		return color.RGBA{255, 0, 0, 255}
	case 1:
		return color.RGBA{0, 255, 0, 255}
	case 2:
		return color.RGBA{0, 0, 255, 255}
	case 3:
		return color.RGBA{0, 255, 255, 255}
	case 4:
		return color.RGBA{255, 0, 255, 255}
	default:
		return color.RGBA{255, 255, 0, 255}
	}
}

// fillRect fills r clipped to the image.
func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// scaleImage resizes src with Catmull-Rom filtering. A zero dimension keeps
// the source size on that axis.
func scaleImage(src *image.RGBA, width, height int) *image.RGBA {
	b := src.Bounds()
	if width <= 0 {
		width = b.Dx()
	}
	if height <= 0 {
		height = b.Dy()
	}
	if width == b.Dx() && height == b.Dy() {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080".
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}

// glyphs is a 3x5 pixel font covering the digits and graticule letters.
var glyphs = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
	'R': {"110", "101", "110", "101", "101"},
	'G': {"111", "100", "101", "101", "111"},
	'B': {"110", "101", "110", "101", "110"},
	'C': {"111", "100", "100", "100", "111"},
	'M': {"101", "111", "111", "101", "101"},
	'Y': {"101", "101", "010", "010", "010"},
}

// drawLabel draws text with its top-left corner at (x, y) on a bg box.
// Pixels outside the image are skipped.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	const charWidth = 4
	fillRect(img, image.Rect(x-1, y-1, x+len(text)*charWidth, y+6), bg)

	bounds := img.Bounds()
	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				px, py := cx+col, y+row
				if pixel == '1' && image.Pt(px, py).In(bounds) {
					img.SetRGBA(px, py, fg)
				}
			}
		}
		cx += charWidth
	}
}
