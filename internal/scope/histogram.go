package scope

import (
	"math"
	"sync"

	"github.com/anthonynsimon/bild/parallel"
)

// HistogramBins is the number of levels per channel.
const HistogramBins = 256

// Histogram is the per-channel level distribution over an ROI.
//
// Counts has four rows to mirror the RGBA layout of the input; the fourth
// row is never filled. Max is the largest count among the first three
// rows, and zero means there is nothing to draw.
type Histogram struct {
	Counts [4][HistogramBins]uint32 `json:"-"`
	Max    uint32                   `json:"max"`
}

// histogramBin maps a channel value to its level. NaN maps to 0.
func histogramBin(v float32) int {
	if v != v {
		return 0
	}
	b := math.Round(float64(v) * (HistogramBins - 1))
	if b < 0 {
		return 0
	}
	if b > HistogramBins-1 {
		return HistogramBins - 1
	}
	return int(b)
}

// Compute overwrites h with the histogram of the ROI.
//
// pixels is a packed RGBA buffer of roi.Width x roi.Height pixels. Row
// ranges are counted in parallel into private counters, which are summed
// into h under a single mutex.
func (h *Histogram) Compute(pixels []float32, roi ROI) {
	h.Reset()
	rect := roi.Rect()
	if rect.Empty() {
		return
	}

	var mu sync.Mutex
	parallel.Line(rect.Dy(), func(start, end int) {
		var local [3][HistogramBins]uint32
		for y := rect.Min.Y + start; y < rect.Min.Y+end; y++ {
			row := pixels[4*(roi.Width*y+rect.Min.X) : 4*(roi.Width*y+rect.Max.X)]
			for i := 0; i < len(row); i += 4 {
				local[0][histogramBin(row[i])]++
				local[1][histogramBin(row[i+1])]++
				local[2][histogramBin(row[i+2])]++
			}
		}

		mu.Lock()
		for k := 0; k < 3; k++ {
			for b, n := range local[k] {
				h.Counts[k][b] += n
			}
		}
		mu.Unlock()
	})

	for k := 0; k < 3; k++ {
		for _, n := range h.Counts[k] {
			if n > h.Max {
				h.Max = n
			}
		}
	}
}

// Reset zeroes all counts and Max.
func (h *Histogram) Reset() {
	*h = Histogram{}
}

// Level returns the count of a bin scaled to [0,1] against Max.
//
// The logarithmic scale maps count c to log1p(c)/log1p(Max). Level is 0
// when Max is 0.
func (h *Histogram) Level(ch, bin int, scale HistogramScale) float64 {
	if h.Max == 0 {
		return 0
	}
	c := float64(h.Counts[ch][bin])
	if scale == HistogramLogarithmic {
		return math.Log1p(c) / math.Log1p(float64(h.Max))
	}
	return c / float64(h.Max)
}
