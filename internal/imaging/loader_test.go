package imaging

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// createTestImage writes a solid PNG into a temp dir and returns its path.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	return writePNG(t, createInMemoryImage(width, height, c))
}

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frame.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.NRGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.NRGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.NRGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.NRGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 100, 100, color.NRGBA{255, 0, 0, 255})

	img1, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	bounds := img1.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 100 {
		t.Errorf("unexpected dimensions: got %dx%d, want 100x100", bounds.Dx(), bounds.Dy())
	}

	img2, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("second Load did not return cached image")
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}
}

func TestImageCache_LoadErrors(t *testing.T) {
	cache := NewImageCache()
	if _, err := cache.Load("/nonexistent/path/to/image.png"); err == nil {
		t.Error("Load should fail for non-existent file")
	}

	path := filepath.Join(t.TempDir(), "junk.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Load(path); err == nil {
		t.Error("Load should fail for undecodable file")
	}
	if cache.Len() != 0 {
		t.Errorf("failed loads should not be cached, Len() = %d", cache.Len())
	}
}

func TestImageCache_EvictAndClear(t *testing.T) {
	cache := NewImageCache()
	a := createTestImage(t, 4, 4, color.NRGBA{0, 0, 0, 255})
	b := createTestImage(t, 4, 4, color.NRGBA{9, 9, 9, 255})
	for _, p := range []string{a, b} {
		if _, err := cache.Load(p); err != nil {
			t.Fatal(err)
		}
	}

	cache.Evict(a)
	cache.Evict("/not/cached")
	if cache.Len() != 1 {
		t.Errorf("after Evict Len() = %d, want 1", cache.Len())
	}
	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("after Clear Len() = %d, want 0", cache.Len())
	}
}

func TestImageCache_Concurrent(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 16, 16, color.NRGBA{1, 2, 3, 255})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(imgPath); err != nil {
				t.Errorf("concurrent Load failed: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestLoadImageInfo(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 40, 30, color.NRGBA{10, 20, 30, 255})

	info, err := LoadImageInfo(cache, imgPath)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}
	if info.Width != 40 || info.Height != 30 {
		t.Errorf("dimensions = %dx%d, want 40x30", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Format = %q, want png", info.Format)
	}
	if info.ColorDepth != "8-bit" {
		t.Errorf("ColorDepth = %q, want 8-bit", info.ColorDepth)
	}
	if info.FileSizeBytes <= 0 {
		t.Errorf("FileSizeBytes = %d, want > 0", info.FileSizeBytes)
	}
}

func TestLoadImageInfo_WebP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.webp")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := nativewebp.Encode(f, createPatternImage(8, 6), nil); err != nil {
		t.Fatalf("webp encode failed: %v", err)
	}
	f.Close()

	info, err := LoadImageInfo(NewImageCache(), path)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}
	if info.Format != "webp" || info.Width != 8 || info.Height != 6 {
		t.Errorf("unexpected info %+v", info)
	}
}

func TestLoadImageInfo_Formats(t *testing.T) {
	src := createPatternImage(8, 6)
	tests := []struct {
		format string
		encode func(io.Writer, image.Image) error
	}{
		{"png", png.Encode},
		{"jpeg", func(w io.Writer, m image.Image) error { return jpeg.Encode(w, m, nil) }},
		{"gif", func(w io.Writer, m image.Image) error { return gif.Encode(w, m, nil) }},
		{"bmp", bmp.Encode},
		{"tiff", func(w io.Writer, m image.Image) error { return tiff.Encode(w, m, nil) }},
		{"webp", func(w io.Writer, m image.Image) error { return nativewebp.Encode(w, m, nil) }},
		{"tga", tga.Encode},
	}

	cache := NewImageCache()
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "frame."+tt.format)
			f, err := os.Create(path)
			if err != nil {
				t.Fatal(err)
			}
			if err := tt.encode(f, src); err != nil {
				t.Fatalf("encode failed: %v", err)
			}
			f.Close()

			info, err := LoadImageInfo(cache, path)
			if err != nil {
				t.Fatalf("LoadImageInfo failed: %v", err)
			}
			if info.Format != tt.format || info.Width != 8 || info.Height != 6 {
				t.Errorf("unexpected info %+v", info)
			}
		})
	}
}

func TestLoadFrame_TGAAndPNG(t *testing.T) {
	src := createPatternImage(5, 3)
	want := src.NRGBAAt(2, 1)

	tgaPath := filepath.Join(t.TempDir(), "frame.tga")
	f, err := os.Create(tgaPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := tga.Encode(f, src); err != nil {
		t.Fatalf("tga encode failed: %v", err)
	}
	f.Close()
	pngPath := writePNG(t, src)

	cache := NewImageCache()
	for _, path := range []string{tgaPath, pngPath} {
		fr, err := LoadFrame(cache, path, 0, 0)
		if err != nil {
			t.Fatalf("LoadFrame(%s) failed: %v", filepath.Base(path), err)
		}
		i := 4 * (1*fr.Width + 2)
		got := [3]float32{fr.Pixels[i], fr.Pixels[i+1], fr.Pixels[i+2]}
		exp := [3]float32{float32(want.R) / 255, float32(want.G) / 255, float32(want.B) / 255}
		if got != exp {
			t.Errorf("%s: pixel (2,1) = %v, want %v", filepath.Base(path), got, exp)
		}
	}
}

func TestImageCache_LoadUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewImageCache().Load(path)
	if !errors.Is(err, image.ErrFormat) {
		t.Errorf("Load error = %v, want image.ErrFormat", err)
	}
}

func TestGetDimensions(t *testing.T) {
	imgPath := createTestImage(t, 7, 3, color.NRGBA{0, 0, 0, 255})
	dims, err := GetDimensions(NewImageCache(), imgPath)
	if err != nil {
		t.Fatalf("GetDimensions failed: %v", err)
	}
	if dims.Width != 7 || dims.Height != 3 {
		t.Errorf("got %dx%d, want 7x3", dims.Width, dims.Height)
	}
}

func TestNewFrame(t *testing.T) {
	img := createPatternImage(4, 4)
	f := NewFrame(img, 0, 0)

	if f.Width != 4 || f.Height != 4 || f.SourceWidth != 4 || f.SourceHeight != 4 {
		t.Fatalf("unexpected frame geometry %+v", f)
	}
	if len(f.Pixels) != 4*4*4 {
		t.Fatalf("len(Pixels) = %d, want 64", len(f.Pixels))
	}

	tests := []struct {
		x, y int
		want [4]float32
	}{
		{0, 0, [4]float32{1, 0, 0, 1}},
		{3, 0, [4]float32{0, 1, 0, 1}},
		{0, 3, [4]float32{0, 0, 1, 1}},
		{3, 3, [4]float32{1, 1, 1, 1}},
	}
	for _, tt := range tests {
		i := 4 * (tt.y*f.Width + tt.x)
		var got [4]float32
		copy(got[:], f.Pixels[i:i+4])
		if got != tt.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestNewFrame_Fit(t *testing.T) {
	img := createInMemoryImage(200, 100, color.NRGBA{51, 102, 153, 255})

	f := NewFrame(img, 50, 50)
	if f.Width != 50 || f.Height != 25 {
		t.Errorf("fitted frame = %dx%d, want 50x25", f.Width, f.Height)
	}
	if f.SourceWidth != 200 || f.SourceHeight != 100 {
		t.Errorf("source = %dx%d, want 200x100", f.SourceWidth, f.SourceHeight)
	}

	// a solid image stays solid after filtering
	if got := f.Pixels[4*(12*f.Width+25)]; got < 0.19 || got > 0.21 {
		t.Errorf("red after fit = %v, want 0.2", got)
	}

	f = NewFrame(img, 0, 20)
	if f.Width != 40 || f.Height != 20 {
		t.Errorf("height-only fit = %dx%d, want 40x20", f.Width, f.Height)
	}
}

func TestLoadFrame(t *testing.T) {
	cache := NewImageCache()
	path := createTestImage(t, 10, 10, color.NRGBA{255, 255, 255, 255})

	f, err := LoadFrame(cache, path, 1440, 900)
	if err != nil {
		t.Fatalf("LoadFrame failed: %v", err)
	}
	if f.Width != 10 || f.Height != 10 {
		t.Errorf("frame = %dx%d, want 10x10", f.Width, f.Height)
	}
	if _, err := LoadFrame(cache, "/nonexistent.png", 0, 0); err == nil {
		t.Error("LoadFrame should fail for missing file")
	}
}
