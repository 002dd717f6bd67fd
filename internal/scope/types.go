package scope

import "fmt"

// ScopeType selects which engine Compute runs.
type ScopeType int

const (
	ScopeHistogram ScopeType = iota
	ScopeWaveform
	ScopeVectorscope
)

var scopeTypeNames = [...]string{"histogram", "waveform", "vectorscope"}

func (t ScopeType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("ScopeType(%d)", int(t))
	}
	return scopeTypeNames[t]
}

// Valid reports whether t is a known scope type.
func (t ScopeType) Valid() bool { return t >= 0 && int(t) < len(scopeTypeNames) }

// Next returns the scope type after t, wrapping around.
func (t ScopeType) Next() ScopeType { return (t + 1) % ScopeType(len(scopeTypeNames)) }

// MarshalText encodes t by name.
func (t ScopeType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid ScopeType %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes a name written by MarshalText.
func (t *ScopeType) UnmarshalText(b []byte) error {
	parsed, err := ParseScopeType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseScopeType parses a persisted scope type name.
func ParseScopeType(s string) (ScopeType, error) {
	for i, name := range scopeTypeNames {
		if s == name {
			return ScopeType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown scope type %q", s)
}

// HistogramScale selects how the renderer scales histogram counts.
type HistogramScale int

const (
	HistogramLogarithmic HistogramScale = iota
	HistogramLinear
)

var histogramScaleNames = [...]string{"logarithmic", "linear"}

func (s HistogramScale) String() string {
	if !s.Valid() {
		return fmt.Sprintf("HistogramScale(%d)", int(s))
	}
	return histogramScaleNames[s]
}

// Valid reports whether s is a known histogram scale.
func (s HistogramScale) Valid() bool { return s >= 0 && int(s) < len(histogramScaleNames) }

// MarshalText encodes s by name.
func (s HistogramScale) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid HistogramScale %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a name written by MarshalText.
func (s *HistogramScale) UnmarshalText(b []byte) error {
	parsed, err := ParseHistogramScale(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseHistogramScale parses a persisted histogram scale name.
func ParseHistogramScale(s string) (HistogramScale, error) {
	for i, name := range histogramScaleNames {
		if s == name {
			return HistogramScale(i), nil
		}
	}
	return 0, fmt.Errorf("unknown histogram scale %q", s)
}

// WaveformType selects overlaid or side-by-side (parade) waveform display.
type WaveformType int

const (
	WaveformOverlaid WaveformType = iota
	WaveformParade
)

var waveformTypeNames = [...]string{"overlaid", "parade"}

func (w WaveformType) String() string {
	if !w.Valid() {
		return fmt.Sprintf("WaveformType(%d)", int(w))
	}
	return waveformTypeNames[w]
}

// Valid reports whether w is a known waveform type.
func (w WaveformType) Valid() bool { return w >= 0 && int(w) < len(waveformTypeNames) }

// MarshalText encodes w by name.
func (w WaveformType) MarshalText() ([]byte, error) {
	if !w.Valid() {
		return nil, fmt.Errorf("invalid WaveformType %d", int(w))
	}
	return []byte(w.String()), nil
}

// UnmarshalText decodes a name written by MarshalText.
func (w *WaveformType) UnmarshalText(b []byte) error {
	parsed, err := ParseWaveformType(string(b))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// ParseWaveformType parses a persisted waveform type name.
func ParseWaveformType(s string) (WaveformType, error) {
	for i, name := range waveformTypeNames {
		if s == name {
			return WaveformType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown waveform type %q", s)
}

// VectorscopeType selects the chromaticity projection.
type VectorscopeType int

const (
	VectorscopeCIELUV VectorscopeType = iota
	VectorscopeJzAzBz
)

var vectorscopeTypeNames = [...]string{"u*v*", "AzBz"}

func (v VectorscopeType) String() string {
	if !v.Valid() {
		return fmt.Sprintf("VectorscopeType(%d)", int(v))
	}
	return vectorscopeTypeNames[v]
}

// Valid reports whether v is a known vectorscope type.
func (v VectorscopeType) Valid() bool { return v >= 0 && int(v) < len(vectorscopeTypeNames) }

// MarshalText encodes v by name.
func (v VectorscopeType) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("invalid VectorscopeType %d", int(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText decodes a name written by MarshalText.
func (v *VectorscopeType) UnmarshalText(b []byte) error {
	parsed, err := ParseVectorscopeType(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseVectorscopeType parses a persisted vectorscope type name.
func ParseVectorscopeType(s string) (VectorscopeType, error) {
	for i, name := range vectorscopeTypeNames {
		if s == name {
			return VectorscopeType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown vectorscope type %q", s)
}

// ChannelMap sends input channel k to output channel m[k] in the waveform.
type ChannelMap [3]int

var (
	// IdentityChannels keeps R, G and B in place.
	IdentityChannels = ChannelMap{0, 1, 2}

	// ReversedChannels writes the waveform in B, G, R order, matching a BGRA
	// display surface.
	ReversedChannels = ChannelMap{2, 1, 0}
)

// Valid reports whether m is a permutation of 0, 1, 2.
func (m ChannelMap) Valid() bool {
	var seen [3]bool
	for _, c := range m {
		if c < 0 || c > 2 || seen[c] {
			return false
		}
		seen[c] = true
	}
	return true
}

// Channels holds the per-channel visibility flags. They are used by the
// renderer only.
type Channels struct {
	Red   bool `json:"red"`
	Green bool `json:"green"`
	Blue  bool `json:"blue"`
}

// AllChannels has every channel visible.
var AllChannels = Channels{Red: true, Green: true, Blue: true}
