package server

import (
	"github.com/ironsheep/image-scopes-mcp/internal/colorspace"
	"github.com/ironsheep/image-scopes-mcp/internal/imaging"
	"github.com/ironsheep/image-scopes-mcp/internal/scope"
)

// activeFrame is the input of the last scope_compute.
type activeFrame struct {
	path    string
	frame   *imaging.Frame
	roi     *scope.ROI
	profile *colorspace.Profile
}

// recompute runs the selected scope over the active frame. Without an
// active frame it does nothing.
func (s *Server) recompute() error {
	if s.active == nil {
		return nil
	}
	f := s.active.frame
	return s.state.Compute(scope.Input{
		Pixels:  f.Pixels,
		Width:   f.Width,
		Height:  f.Height,
		ROI:     s.active.roi,
		Profile: s.active.profile,
	})
}

// scopeSummary is the JSON view of the state returned by the scope tools.
type scopeSummary struct {
	Mode           scope.Mode          `json:"mode"`
	Valid          bool                `json:"valid"`
	DisplayProfile string              `json:"display_profile,omitempty"`
	Source         *sourceSummary      `json:"source,omitempty"`
	Histogram      *histogramSummary   `json:"histogram,omitempty"`
	Waveform       *waveformSummary    `json:"waveform,omitempty"`
	Vectorscope    *vectorscopeSummary `json:"vectorscope,omitempty"`
}

type sourceSummary struct {
	Path         string     `json:"path"`
	Profile      string     `json:"profile"`
	Width        int        `json:"width"`
	Height       int        `json:"height"`
	SourceWidth  int        `json:"source_width"`
	SourceHeight int        `json:"source_height"`
	ROI          *scope.ROI `json:"roi,omitempty"`
}

type histogramSummary struct {
	Max uint32 `json:"max"`

	// Peak is the most populated level per channel.
	Peak [3]int `json:"peak"`

	// Mean is the mean level per channel scaled to [0,1].
	Mean [3]float64 `json:"mean"`

	// Clipped is the fraction of samples in the top level per channel.
	Clipped [3]float64 `json:"clipped"`
}

type waveformSummary struct {
	Width    int `json:"width"`
	Height   int `json:"height"`
	BinWidth int `json:"bin_width"`
}

type vectorscopeSummary struct {
	Diameter int                   `json:"diameter"`
	Type     scope.VectorscopeType `json:"type"`

	// Graticule maps R, G, B, C, M, Y to normalized chromaticities.
	Graticule map[string][2]float32 `json:"graticule"`

	// Coverage is the fraction of bins holding any density.
	Coverage float64 `json:"coverage"`
}

func (s *Server) summary() *scopeSummary {
	snap := s.state.Snapshot()
	out := &scopeSummary{Mode: snap.Mode, Valid: snap.Valid}
	if p := s.state.DisplayProfile(); p != nil {
		out.DisplayProfile = p.Name()
	}

	if a := s.active; a != nil {
		out.Source = &sourceSummary{
			Path:         a.path,
			Width:        a.frame.Width,
			Height:       a.frame.Height,
			SourceWidth:  a.frame.SourceWidth,
			SourceHeight: a.frame.SourceHeight,
			ROI:          a.roi,
		}
		if a.profile != nil {
			out.Source.Profile = a.profile.Name()
		}
	}

	if !snap.Valid {
		return out
	}
	switch {
	case snap.Histogram != nil:
		out.Histogram = summarizeHistogram(snap.Histogram)
	case snap.Waveform != nil:
		w := snap.Waveform
		out.Waveform = &waveformSummary{Width: w.Width, Height: w.Height, BinWidth: w.BinWidth}
	case snap.Vectorscope != nil:
		out.Vectorscope = summarizeVectorscope(snap.Vectorscope)
	}
	return out
}

func summarizeHistogram(h *scope.Histogram) *histogramSummary {
	out := &histogramSummary{Max: h.Max}
	for k := 0; k < 3; k++ {
		var total, weighted float64
		for bin, c := range h.Counts[k] {
			if c > h.Counts[k][out.Peak[k]] {
				out.Peak[k] = bin
			}
			total += float64(c)
			weighted += float64(bin) * float64(c)
		}
		if total > 0 {
			out.Mean[k] = weighted / total / (scope.HistogramBins - 1)
			out.Clipped[k] = float64(h.Counts[k][scope.HistogramBins-1]) / total
		}
	}
	return out
}

var graticuleNames = [6]string{"R", "G", "B", "C", "M", "Y"}

func summarizeVectorscope(v *scope.Vectorscope) *vectorscopeSummary {
	out := &vectorscopeSummary{
		Diameter:  v.Diameter,
		Type:      v.Type,
		Graticule: make(map[string][2]float32, len(graticuleNames)),
	}
	for k, name := range graticuleNames {
		out.Graticule[name] = v.Graticule[k]
	}
	lit := 0
	for _, a := range v.Alpha {
		if a > 0 {
			lit++
		}
	}
	if len(v.Alpha) > 0 {
		out.Coverage = float64(lit) / float64(len(v.Alpha))
	}
	return out
}
