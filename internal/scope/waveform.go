package scope

import (
	"math"

	"github.com/anthonynsimon/bild/parallel"
)

// waveformHeadroom is the fraction of the output height used by values in
// [0,1]; the rest is headroom for over-range samples.
const waveformHeadroom = 8.0 / 9.0

// Waveform is a column-binned level distribution over an ROI.
//
// Data has room for MaxWidth x Height cells of 4 floats. Only the first
// Width columns are valid after Compute; cell (x, y) channel k lives at
// Data[4*(Width*y+x)+k]. Row 0 is the top of the display, which holds the
// brightest values.
type Waveform struct {
	MaxWidth int       `json:"max_width"`
	Height   int       `json:"height"`
	Width    int       `json:"width"`
	BinWidth int       `json:"bin_width"`
	Data     []float32 `json:"-"`
}

// NewWaveform allocates a waveform with the given capacity. maxWidth is
// raised to at least 1 and height to at least 0.
func NewWaveform(maxWidth, height int) *Waveform {
	maxWidth, height = max(maxWidth, 1), max(height, 0)
	return &Waveform{
		MaxWidth: maxWidth,
		Height:   height,
		Data:     make([]float32, 4*maxWidth*height),
	}
}

// waveformGeometry returns the column bin width and output width for a
// sampled width.
func waveformGeometry(sampleWidth, capacity int) (binWidth, width int) {
	sampleWidth = max(sampleWidth, 1)
	capacity = max(capacity, 1)
	binWidth = (sampleWidth + capacity - 1) / capacity
	width = (sampleWidth + binWidth - 1) / binWidth
	return binWidth, width
}

// waveformRow maps a channel value to an output row in [0, height).
func waveformRow(v float32, height int) int {
	if v != v {
		return 0
	}
	r := math.Round((1 - waveformHeadroom*float64(v)) * float64(height-1))
	if r < 0 {
		return 0
	}
	if r > float64(height-1) {
		return height - 1
	}
	return int(r)
}

// Compute accumulates the waveform of the ROI.
//
// Each output column aggregates BinWidth input columns over every ROI row.
// Input channel k is written to output channel cmap[k]. Every sample adds
// (Height/40) / (sampleHeight*BinWidth) to its cell, so the cells hold
// densities. Output columns are computed in parallel and never share
// memory.
func (w *Waveform) Compute(pixels []float32, roi ROI, cmap ChannelMap) {
	rect := roi.Rect()
	sampleHeight := max(rect.Dy(), 1)
	w.BinWidth, w.Width = waveformGeometry(rect.Dx(), w.MaxWidth)
	clear(w.Data[:4*w.Width*w.Height])

	if rect.Empty() || w.Height == 0 {
		return
	}

	scale := float32(w.Height) / 40 / float32(sampleHeight*w.BinWidth)
	width, height, binWidth := w.Width, w.Height, w.BinWidth
	data := w.Data

	parallel.Line(width, func(start, end int) {
		for x := start; x < end; x++ {
			x0 := rect.Min.X + x*binWidth
			x1 := min(x0+binWidth, rect.Max.X)
			for y := rect.Min.Y; y < rect.Max.Y; y++ {
				for in := x0; in < x1; in++ {
					px := pixels[4*(roi.Width*y+in):]
					for k := 0; k < 3; k++ {
						row := waveformRow(px[k], height)
						data[4*(width*row+x)+cmap[k]] += scale
					}
				}
			}
		}
	})
}

// Reset marks the waveform as empty. The buffer is kept.
func (w *Waveform) Reset() {
	w.Width = 0
	w.BinWidth = 0
}

// At returns the density of channel k at column x and row y.
func (w *Waveform) At(x, y, k int) float32 {
	return w.Data[4*(w.Width*y+x)+k]
}
