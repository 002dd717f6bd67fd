package colorspace

import (
	"fmt"

	"github.com/anthonynsimon/bild/parallel"
)

// TransformImage converts a packed RGBA float buffer from one profile to
// another through XYZ(D50). Alpha is copied unchanged.
//
// Parameters:
//   - in: Source pixels, 4 floats per pixel, row-major.
//   - out: Destination buffer. May alias in.
//   - width, height: Image dimensions in pixels.
//   - from, to: Source and destination profiles. Both must be non-nil.
//
// Returns an error if a profile is missing or a buffer is shorter than
// 4*width*height. Rows are converted in parallel.
func TransformImage(in, out []float32, width, height int, from, to *Profile) error {
	if from == nil || to == nil {
		return fmt.Errorf("failed to transform image: missing profile")
	}
	n := 4 * width * height
	if width < 0 || height < 0 || len(in) < n || len(out) < n {
		return fmt.Errorf("failed to transform image: buffer too small for %dx%d", width, height)
	}
	if n == 0 {
		return nil
	}

	// Linear to linear collapses into a single matrix.
	fused := mulMat3(to.fromXYZ, from.toXYZ)
	direct := from.Linear() && to.Linear()

	parallel.Line(height, func(start, end int) {
		for y := start; y < end; y++ {
			row := 4 * width * y
			for x := 0; x < width; x++ {
				i := row + 4*x
				if direct {
					v := mulMat3Vec(fused, Vec3{float64(in[i]), float64(in[i+1]), float64(in[i+2])})
					out[i], out[i+1], out[i+2] = float32(v[0]), float32(v[1]), float32(v[2])
				} else {
					out[i], out[i+1], out[i+2] = to.XYZToRGB(from.RGBToXYZ(in[i], in[i+1], in[i+2]))
				}
				out[i+3] = in[i+3]
			}
		}
	})
	return nil
}
