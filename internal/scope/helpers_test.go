package scope

import "math/rand"

// solidBuffer returns a width x height RGBA buffer filled with one pixel.
func solidBuffer(width, height int, r, g, b, a float32) []float32 {
	buf := make([]float32, 4*width*height)
	for i := 0; i < len(buf); i += 4 {
		buf[i], buf[i+1], buf[i+2], buf[i+3] = r, g, b, a
	}
	return buf
}

// randomBuffer returns a reproducible buffer with channel values in
// [-0.1, 1.2) so over- and under-range samples are exercised.
func randomBuffer(width, height int, seed int64) []float32 {
	rng := rand.New(rand.NewSource(seed))
	buf := make([]float32, 4*width*height)
	for i := range buf {
		if i%4 == 3 {
			buf[i] = 1
			continue
		}
		buf[i] = rng.Float32()*1.3 - 0.1
	}
	return buf
}

// setPixel writes one RGB triple into a buffer of the given width.
func setPixel(buf []float32, width, x, y int, r, g, b float32) {
	i := 4 * (width*y + x)
	buf[i], buf[i+1], buf[i+2] = r, g, b
}
