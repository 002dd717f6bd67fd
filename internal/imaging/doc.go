// Package imaging loads image files into scope-ready frames and turns scope
// snapshots back into images.
//
// # Loading
//
// ImageCache decodes PNG, JPEG, GIF, BMP, TIFF, WebP and TGA files and keeps
// them in memory keyed by path. NewFrame and LoadFrame convert a decoded
// image to a packed RGBA float32 buffer, fitting it inside a preview box
// first so scope cost stays bounded on large files.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner. For
// rectangles, (x1,y1) is inclusive and (x2,y2) is exclusive. Regions are
// handed to the scope engines as normalized {left, top, right, bottom}
// boxes so they survive the preview fit; see RegionBox and PixelBox.
//
// # Rendering and Export
//
// RenderScope draws the selected output of a scope.Snapshot:
//   - Histogram: 256 levels, visible channels filled additively
//   - Waveform: one panel, or three side by side for a parade
//   - Vectorscope: density as brightness plus the R, G, B, C, M, Y graticule
//
// ExportScope encodes the rendering as PNG, JPEG or lossless WebP, either to
// a file or inline as base64.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Frames are plain values; callers
// that share one across goroutines must not modify it.
package imaging
