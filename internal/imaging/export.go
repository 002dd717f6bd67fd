package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/image-scopes-mcp/internal/scope"
)

// Export formats accepted by EncodeImage.
const (
	FormatPNG  = "png"
	FormatWebP = "webp"
	FormatJPEG = "jpeg"
)

// ExportResult describes a rendered scope image.
//
// Exactly one of Path and ImageBase64 is set: Path when the image was
// written to disk, ImageBase64 when it was returned inline.
type ExportResult struct {
	Scope       string `json:"scope"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	MimeType    string `json:"mime_type"`
	Path        string `json:"path,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
}

// MimeType returns the MIME type for an export format, or "" if the format
// is unknown.
func MimeType(format string) string {
	switch strings.ToLower(format) {
	case FormatPNG:
		return "image/png"
	case FormatWebP:
		return "image/webp"
	case FormatJPEG, "jpg":
		return "image/jpeg"
	default:
		return ""
	}
}

// EncodeImage writes img to w in the given format. WebP output is lossless.
func EncodeImage(w io.Writer, img image.Image, format string) error {
	var err error
	switch strings.ToLower(format) {
	case FormatPNG:
		err = imaging.Encode(w, img, imaging.PNG)
	case FormatJPEG, "jpg":
		err = imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(95))
	case FormatWebP:
		err = nativewebp.Encode(w, img, nil)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return nil
}

// ExportScope renders the selected scope of snap and encodes it.
//
// Parameters:
//   - snap: A snapshot taken with scope.State.Snapshot.
//   - opts: Size, background and label settings.
//   - format: "png", "webp" or "jpeg".
//   - path: Destination file. Empty returns the image base64 encoded.
//
// Returns:
//   - *ExportResult: The size and location of the image.
//   - error: ErrNoScopeData if there is nothing to draw, or an encoding or
//     file error.
func ExportScope(snap scope.Snapshot, opts RenderOptions, format, path string) (*ExportResult, error) {
	mime := MimeType(format)
	if mime == "" {
		return nil, fmt.Errorf("unsupported export format %q", format)
	}

	img, err := RenderScope(snap, opts)
	if err != nil {
		return nil, err
	}

	res := &ExportResult{
		Scope:    snap.Scope.String(),
		Width:    img.Bounds().Dx(),
		Height:   img.Bounds().Dy(),
		MimeType: mime,
	}

	if path == "" {
		var buf bytes.Buffer
		if err := EncodeImage(&buf, img, format); err != nil {
			return nil, err
		}
		res.ImageBase64 = base64.StdEncoding.EncodeToString(buf.Bytes())
		return res, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create export file: %w", err)
	}
	if err := EncodeImage(f, img, format); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to write export file: %w", err)
	}
	res.Path = path
	return res, nil
}
