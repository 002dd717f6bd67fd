package imaging

import (
	"bufio"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// decoder is an image format recognized by the leading bytes of a file.
// A '?' in magic matches any byte.
type decoder struct {
	name   string
	magic  string
	decode func(io.Reader) (image.Image, error)
}

// decoders are tried in order. TGA has no signature and is the fallback.
//
// image.Decode is not used: the tga package registers itself with an
// empty magic string, which matches every file, and it initializes before
// the standard decoders.
var decoders = []decoder{
	{"png", "\x89PNG\r\n\x1a\n", png.Decode},
	{"jpeg", "\xff\xd8", jpeg.Decode},
	{"gif", "GIF8?a", gif.Decode},
	{"bmp", "BM????\x00\x00\x00\x00", bmp.Decode},
	{"tiff", "II*\x00", tiff.Decode},
	{"tiff", "MM\x00*", tiff.Decode},
	{"webp", "RIFF????WEBPVP8", webp.Decode},
}

func matchMagic(magic string, b []byte) bool {
	if len(magic) != len(b) {
		return false
	}
	for i, c := range b {
		if magic[i] != c && magic[i] != '?' {
			return false
		}
	}
	return true
}

// decodeImage sniffs the format of r and decodes it, returning the format
// name.
func decodeImage(r io.Reader) (image.Image, string, error) {
	br := bufio.NewReader(r)
	for _, d := range decoders {
		b, err := br.Peek(len(d.magic))
		if err == nil && matchMagic(d.magic, b) {
			img, err := d.decode(br)
			return img, d.name, err
		}
	}
	img, err := tga.Decode(br)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", image.ErrFormat, err)
	}
	return img, "tga", nil
}

// cachedImage is a decoded image and the format name reported by the decoder.
type cachedImage struct {
	img    image.Image
	format string
}

// ImageCache provides thread-safe caching of decoded images so repeated scope
// requests on the same file skip disk reads and decoding.
//
// Images are keyed by the exact path string given to Load. ImageCache is safe
// for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Cached images remain in memory until removed via Evict() or Clear().
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	img, err := cache.Load("/path/to/frame.png")
//	if err != nil {
//	    return err
//	}
//	frame := imaging.NewFrame(img, 1440, 900)
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]cachedImage
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]cachedImage),
	}
}

// Load retrieves an image from the cache or decodes it from disk.
//
// Parameters:
//   - path: Path to the image. Supported formats are PNG, JPEG, GIF, BMP,
//     TIFF, WebP and TGA.
//
// Returns:
//   - image.Image: The decoded image.
//   - error: Non-nil if the file cannot be opened or decoded.
func (c *ImageCache) Load(path string) (image.Image, error) {
	ci, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return ci.img, nil
}

func (c *ImageCache) load(path string) (cachedImage, error) {
	c.mu.RLock()
	if ci, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return ci, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return cachedImage{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := decodeImage(f)
	if err != nil {
		return cachedImage{}, fmt.Errorf("failed to decode image: %w", err)
	}

	ci := cachedImage{img: img, format: format}
	c.mu.Lock()
	c.images[path] = ci
	c.mu.Unlock()

	return ci, nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]cachedImage)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path. Unknown paths
// are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder name: "png", "jpeg", "gif", "bmp", "tiff",
	// "webp" or "tga".
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the image has an alpha channel.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image and returns its metadata.
//
// Parameters:
//   - cache: The image cache to use for loading. Must not be nil.
//   - path: Path to the image file.
//
// Returns:
//   - *ImageInfo: Metadata about the image.
//   - error: Non-nil if the image cannot be loaded or the file cannot be stat'd.
//
// # Color Depth Detection
//
// Color depth is determined by the Go image type:
//   - *image.RGBA64, *image.NRGBA64, *image.Gray16 -> "16-bit"
//   - All other types -> "8-bit"
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	ci, err := cache.load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	hasAlpha := false
	colorDepth := "8-bit"
	switch ci.img.(type) {
	case *image.RGBA, *image.NRGBA:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	bounds := ci.img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        ci.format,
		ColorDepth:    colorDepth,
		HasAlpha:      hasAlpha,
		FileSizeBytes: stat.Size(),
	}, nil
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`
}

// GetDimensions returns the dimensions of an image without additional metadata.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &DimensionsResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// Frame is a packed RGBA float32 buffer ready for the scope engines.
//
// Values are the 8-bit encoded samples divided by 255, straight (not
// premultiplied) alpha.
type Frame struct {
	Pixels []float32
	Width  int
	Height int

	// SourceWidth and SourceHeight are the dimensions before fitting.
	SourceWidth  int
	SourceHeight int
}

// NewFrame converts an image to a Frame, first fitting it inside
// maxWidth x maxHeight with Lanczos filtering if it is larger. A
// non-positive limit disables fitting on that axis.
func NewFrame(img image.Image, maxWidth, maxHeight int) *Frame {
	b := img.Bounds()
	var nrgba *image.NRGBA
	if (maxWidth > 0 && b.Dx() > maxWidth) || (maxHeight > 0 && b.Dy() > maxHeight) {
		w, h := maxWidth, maxHeight
		if w <= 0 {
			w = b.Dx()
		}
		if h <= 0 {
			h = b.Dy()
		}
		nrgba = imaging.Fit(img, w, h, imaging.Lanczos)
	} else {
		nrgba = imaging.Clone(img)
	}

	fb := nrgba.Bounds()
	f := &Frame{
		Pixels:       make([]float32, 4*fb.Dx()*fb.Dy()),
		Width:        fb.Dx(),
		Height:       fb.Dy(),
		SourceWidth:  b.Dx(),
		SourceHeight: b.Dy(),
	}
	for y := 0; y < f.Height; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+4*f.Width]
		out := f.Pixels[4*f.Width*y:]
		for i, v := range row {
			out[i] = float32(v) / 255
		}
	}
	return f
}

// LoadFrame loads path through the cache and converts it to a Frame fitted
// inside maxWidth x maxHeight.
func LoadFrame(cache *ImageCache, path string, maxWidth, maxHeight int) (*Frame, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	return NewFrame(img, maxWidth, maxHeight), nil
}
