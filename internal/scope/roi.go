package scope

import (
	"image"
	"math"
)

// ROI is a region of interest expressed as crop margins on a full image.
//
// The active sample rectangle is
// [CropLeft, Width-CropRight) x [CropTop, Height-CropBottom).
type ROI struct {
	Width      int `json:"width"`
	Height     int `json:"height"`
	CropLeft   int `json:"crop_left"`
	CropTop    int `json:"crop_top"`
	CropRight  int `json:"crop_right"`
	CropBottom int `json:"crop_bottom"`
}

// FullFrame returns an ROI covering the whole image.
func FullFrame(width, height int) ROI {
	return ROI{Width: width, Height: height}
}

// ROIFromBox converts a normalized box {left, top, right, bottom}, each in
// [0,1], into crop margins. Coordinates outside [0,1] are clamped.
func ROIFromBox(width, height int, box [4]float64) ROI {
	return ROI{
		Width:      width,
		Height:     height,
		CropLeft:   scaleClamp(box[0], width),
		CropTop:    scaleClamp(box[1], height),
		CropRight:  width - scaleClamp(box[2], width),
		CropBottom: height - scaleClamp(box[3], height),
	}
}

// ROIFromPoint returns an ROI of the single pixel under a normalized point.
func ROIFromPoint(width, height int, p [2]float64) ROI {
	x := min(scaleClamp(p[0], width), max(width-1, 0))
	y := min(scaleClamp(p[1], height), max(height-1, 0))
	return ROI{
		Width:      width,
		Height:     height,
		CropLeft:   x,
		CropTop:    y,
		CropRight:  max(width-x-1, 0),
		CropBottom: max(height-y-1, 0),
	}
}

func scaleClamp(v float64, n int) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Min(float64(n), math.Max(0, v*float64(n))))
}

// Rect resolves the ROI to its active rectangle.
//
// Margins are clamped so the rectangle never inverts. Margins that cover
// the whole extent yield an empty rectangle.
func (r ROI) Rect() image.Rectangle {
	w, h := max(r.Width, 0), max(r.Height, 0)
	x0 := clampInt(r.CropLeft, 0, w)
	x1 := clampInt(w-r.CropRight, x0, w)
	y0 := clampInt(r.CropTop, 0, h)
	y1 := clampInt(h-r.CropBottom, y0, h)
	return image.Rect(x0, y0, x1, y1)
}

// Empty reports whether the ROI selects no pixels.
func (r ROI) Empty() bool { return r.Rect().Empty() }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
