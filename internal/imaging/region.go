package imaging

import (
	"fmt"
	"sort"
)

// regionBoxes maps named regions to normalized {left, top, right, bottom}
// boxes.
var regionBoxes = map[string][4]float64{
	"full":         {0, 0, 1, 1},
	"top-left":     {0, 0, 0.5, 0.5},
	"top-right":    {0.5, 0, 1, 0.5},
	"bottom-left":  {0, 0.5, 0.5, 1},
	"bottom-right": {0.5, 0.5, 1, 1},
	"top-half":     {0, 0, 1, 0.5},
	"bottom-half":  {0, 0.5, 1, 1},
	"left-half":    {0, 0, 0.5, 1},
	"right-half":   {0.5, 0, 1, 1},
	// center 50% of the image
	"center": {0.25, 0.25, 0.75, 0.75},
}

// RegionBox returns the normalized box of a named region.
//
// Supported names are "full", "top-left", "top-right", "bottom-left",
// "bottom-right", "top-half", "bottom-half", "left-half", "right-half" and
// "center".
func RegionBox(name string) ([4]float64, error) {
	box, ok := regionBoxes[name]
	if !ok {
		return [4]float64{}, fmt.Errorf("unknown region: %s", name)
	}
	return box, nil
}

// RegionNames returns the supported region names in sorted order.
func RegionNames() []string {
	names := make([]string, 0, len(regionBoxes))
	for name := range regionBoxes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PixelBox converts a pixel rectangle [x1,x2) x [y1,y2) to a normalized box.
// The rectangle must lie inside a width x height image and be non-empty.
func PixelBox(width, height, x1, y1, x2, y2 int) ([4]float64, error) {
	if x1 < 0 || y1 < 0 || x2 > width || y2 > height {
		return [4]float64{}, fmt.Errorf("region (%d,%d)-(%d,%d) outside image bounds (0,0)-(%d,%d)",
			x1, y1, x2, y2, width, height)
	}
	if x1 >= x2 || y1 >= y2 {
		return [4]float64{}, fmt.Errorf("invalid region: x1 must be < x2, y1 must be < y2")
	}
	w, h := float64(width), float64(height)
	return [4]float64{float64(x1) / w, float64(y1) / h, float64(x2) / w, float64(y2) / h}, nil
}
