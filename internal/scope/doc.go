// Package scope computes image scopes: a per-channel histogram, a column
// binned waveform and a chromaticity vectorscope.
//
// The engines read a packed RGBA float32 buffer (4 floats per pixel,
// row-major, values nominally in [0,1] but unclamped) and write small,
// fixed-size display aggregates. They never modify the input.
//
// # State
//
// State owns one output buffer per engine and the view selectors. A single
// producer hands frames to Compute, which runs exactly one engine (the one
// selected by the scope type) while holding the state's mutex. Readers take
// a Snapshot, or use Read for zero-copy access under the same mutex.
//
//	st, err := scope.NewState(scope.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	if err := st.Compute(scope.Input{Pixels: buf, Width: w, Height: h}); err != nil {
//	    return err
//	}
//	snap := st.Snapshot()
//	if snap.Valid {
//	    // draw snap.Histogram
//	}
//
// # Validity
//
// Each output has a no-data state that renderers must check:
//   - Histogram: Max == 0
//   - Waveform: Width == 0
//   - Vectorscope: Graticule[0][0] is NaN
//
// Clear puts all three into that state without releasing their buffers.
//
// # Parallelism
//
// Inner loops run on github.com/anthonynsimon/bild/parallel. Histogram and
// vectorscope workers count into private bins that are reduced under a
// mutex. Waveform workers own disjoint output columns.
package scope
