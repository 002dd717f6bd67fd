package scope

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ironsheep/image-scopes-mcp/internal/colorspace"
)

var (
	// ErrProfileUnavailable means no color profile is configured for a
	// conversion the vectorscope needs.
	ErrProfileUnavailable = errors.New("color profile unavailable")

	// ErrInvalidBuffer means the pixel buffer does not match its dimensions.
	ErrInvalidBuffer = errors.New("invalid pixel buffer")
)

// Config sizes the output buffers and sets the initial selectors.
type Config struct {
	// WaveformMaxWidth is the waveform column capacity.
	WaveformMaxWidth int

	// WaveformHeight is the number of waveform rows.
	WaveformHeight int

	// VectorscopeDiameter is the side of the square vectorscope.
	VectorscopeDiameter int

	// DisplayProfile is the profile scopes are computed in. Inputs in
	// another profile are converted to it first. May be nil, in which case
	// each input's own profile is used.
	DisplayProfile *colorspace.Profile

	Scope           ScopeType
	HistogramScale  HistogramScale
	WaveformType    WaveformType
	VectorscopeType VectorscopeType
	Channels        Channels
	ChannelMap      ChannelMap
}

// DefaultConfig returns the standard buffer sizes with a linear Rec.2020
// display profile and the histogram selected.
func DefaultConfig() Config {
	p, _ := colorspace.Lookup(colorspace.LinearRec2020)
	return Config{
		WaveformMaxWidth:    360,
		WaveformHeight:      175,
		VectorscopeDiameter: 256,
		DisplayProfile:      p,
		Scope:               ScopeHistogram,
		HistogramScale:      HistogramLogarithmic,
		WaveformType:        WaveformOverlaid,
		VectorscopeType:     VectorscopeCIELUV,
		Channels:            AllChannels,
		ChannelMap:          IdentityChannels,
	}
}

// Validate checks buffer sizes and selectors.
func (c Config) Validate() error {
	switch {
	case c.WaveformMaxWidth < 1:
		return fmt.Errorf("waveform max width must be positive, got %d", c.WaveformMaxWidth)
	case c.WaveformHeight < 2:
		return fmt.Errorf("waveform height must be at least 2, got %d", c.WaveformHeight)
	case c.VectorscopeDiameter < 2:
		return fmt.Errorf("vectorscope diameter must be at least 2, got %d", c.VectorscopeDiameter)
	case !c.Scope.Valid():
		return fmt.Errorf("invalid scope type %v", c.Scope)
	case !c.HistogramScale.Valid():
		return fmt.Errorf("invalid histogram scale %v", c.HistogramScale)
	case !c.WaveformType.Valid():
		return fmt.Errorf("invalid waveform type %v", c.WaveformType)
	case !c.VectorscopeType.Valid():
		return fmt.Errorf("invalid vectorscope type %v", c.VectorscopeType)
	case !c.ChannelMap.Valid():
		return fmt.Errorf("invalid channel map %v", c.ChannelMap)
	}
	return nil
}

// Input is one frame handed to Compute.
type Input struct {
	// Pixels is a packed RGBA float buffer. A nil slice clears the state.
	Pixels []float32

	Width, Height int

	// ROI restricts the histogram and waveform. Nil means the full frame.
	// Its Width and Height are replaced by the input dimensions.
	ROI *ROI

	// Profile is the profile Pixels are encoded in. Nil means the pixels
	// are already in the display profile.
	Profile *colorspace.Profile
}

// State owns the scope output buffers and the view selectors.
//
// One producer calls Compute or Clear; any number of readers call
// Snapshot or Read. All access to the outputs goes through one mutex. The
// buffers are allocated by NewState and reused for the life of the state.
type State struct {
	display *colorspace.Profile

	mu          sync.Mutex
	histogram   Histogram
	waveform    *Waveform
	vectorscope *Vectorscope

	scope           ScopeType
	histogramScale  HistogramScale
	waveformType    WaveformType
	vectorscopeType VectorscopeType
	channels        Channels
	channelMap      ChannelMap
}

// NewState allocates a state for cfg. The state starts with no data.
func NewState(cfg Config) (*State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create scope state: %w", err)
	}
	return &State{
		display:         cfg.DisplayProfile,
		waveform:        NewWaveform(cfg.WaveformMaxWidth, cfg.WaveformHeight),
		vectorscope:     NewVectorscope(cfg.VectorscopeDiameter),
		scope:           cfg.Scope,
		histogramScale:  cfg.HistogramScale,
		waveformType:    cfg.WaveformType,
		vectorscopeType: cfg.VectorscopeType,
		channels:        cfg.Channels,
		channelMap:      cfg.ChannelMap,
	}, nil
}

// DisplayProfile returns the profile scopes are computed in, or nil.
func (s *State) DisplayProfile() *colorspace.Profile { return s.display }

// Compute runs the engine of the selected scope over in and stores the
// result.
//
// A nil in.Pixels is equivalent to Clear. The optional conversion to the
// display profile runs before the lock is taken. Returns an error wrapping
// ErrInvalidBuffer if the buffer is shorter than its dimensions, or
// ErrProfileUnavailable if the vectorscope has no profile to work with. On
// error the selected output is left in its no-data state.
func (s *State) Compute(in Input) error {
	if in.Pixels == nil {
		s.Clear()
		return nil
	}
	if in.Width < 0 || in.Height < 0 || len(in.Pixels) < 4*in.Width*in.Height {
		s.invalidate()
		return fmt.Errorf("%w: %d floats for %dx%d pixels", ErrInvalidBuffer, len(in.Pixels), in.Width, in.Height)
	}

	start := time.Now()
	pixels, conv, err := s.prepare(in)
	if err != nil {
		s.invalidate()
		return err
	}

	roi := FullFrame(in.Width, in.Height)
	if in.ROI != nil {
		roi = *in.ROI
		roi.Width, roi.Height = in.Width, in.Height
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	scope := s.scope
	switch scope {
	case ScopeHistogram:
		s.histogram.Compute(pixels, roi)
	case ScopeWaveform:
		s.waveform.Compute(pixels, roi, s.channelMap)
	case ScopeVectorscope:
		if err := s.vectorscope.Compute(pixels, in.Width, in.Height, s.vectorscopeType, conv); err != nil {
			Logger().Warn("vectorscope unavailable", "error", err)
			return err
		}
	}

	Logger().Debug("scope computed",
		"scope", scope.String(),
		"width", in.Width,
		"height", in.Height,
		"elapsed", time.Since(start))
	return nil
}

// prepare picks the buffer and converter the engines work on. When the
// input and display profiles differ the input is converted into a copy.
func (s *State) prepare(in Input) ([]float32, Converter, error) {
	switch {
	case s.display == nil && in.Profile == nil:
		return in.Pixels, nil, nil
	case s.display == nil:
		return in.Pixels, in.Profile, nil
	case in.Profile == nil || in.Profile == s.display:
		return in.Pixels, s.display, nil
	}

	work := make([]float32, 4*in.Width*in.Height)
	if err := colorspace.TransformImage(in.Pixels, work, in.Width, in.Height, in.Profile, s.display); err != nil {
		return nil, nil, fmt.Errorf("failed to convert to display profile: %w", err)
	}
	return work, s.display, nil
}

// Clear resets every output to its no-data state. Buffer capacity is kept.
// Calling Clear repeatedly has the same effect as calling it once.
func (s *State) Clear() {
	s.mu.Lock()
	s.histogram.Reset()
	s.waveform.Reset()
	s.vectorscope.Reset()
	s.mu.Unlock()
}

func (s *State) invalidate() {
	s.mu.Lock()
	s.invalidateLocked()
	s.mu.Unlock()
}

// invalidateLocked drops the output of the selected scope.
func (s *State) invalidateLocked() {
	switch s.scope {
	case ScopeHistogram:
		s.histogram.Reset()
	case ScopeWaveform:
		s.waveform.Reset()
	case ScopeVectorscope:
		s.vectorscope.Reset()
	}
}

// Mode is the set of view selectors.
type Mode struct {
	Scope           ScopeType       `json:"scope"`
	HistogramScale  HistogramScale  `json:"histogram_scale"`
	WaveformType    WaveformType    `json:"waveform_type"`
	VectorscopeType VectorscopeType `json:"vectorscope_type"`
	Channels        Channels        `json:"channels"`
	ChannelMap      ChannelMap      `json:"channel_map"`
}

// Snapshot is a copy of the state taken under its lock.
//
// Only the output of the selected scope is copied; the other two are nil.
// Valid reports whether that output holds data.
type Snapshot struct {
	Mode
	Valid       bool
	Histogram   *Histogram
	Waveform    *Waveform
	Vectorscope *Vectorscope
}

func (s *State) modeLocked() Mode {
	return Mode{
		Scope:           s.scope,
		HistogramScale:  s.histogramScale,
		WaveformType:    s.waveformType,
		VectorscopeType: s.vectorscopeType,
		Channels:        s.channels,
		ChannelMap:      s.channelMap,
	}
}

// Mode returns the current selectors.
func (s *State) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modeLocked()
}

// Snapshot returns a deep copy of the selected output and the selectors.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{Mode: s.modeLocked()}
	switch s.scope {
	case ScopeHistogram:
		h := s.histogram
		snap.Histogram = &h
		snap.Valid = h.Max > 0
	case ScopeWaveform:
		w := *s.waveform
		w.Data = append([]float32(nil), s.waveform.Data[:4*w.Width*w.Height]...)
		w.MaxWidth = w.Width
		snap.Waveform = &w
		snap.Valid = w.Width > 0
	case ScopeVectorscope:
		v := *s.vectorscope
		v.Alpha = append([]uint8(nil), s.vectorscope.Alpha...)
		v.bins = append([]float64(nil), s.vectorscope.bins...)
		snap.Vectorscope = &v
		snap.Valid = v.Valid()
	}
	return snap
}

// Read calls fn with the live outputs while holding the lock. fn must not
// retain the pointers or call back into s.
func (s *State) Read(fn func(h *Histogram, w *Waveform, v *Vectorscope)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.histogram, s.waveform, s.vectorscope)
}

// SetScopeType selects the engine for the next Compute.
func (s *State) SetScopeType(t ScopeType) error {
	if !t.Valid() {
		return fmt.Errorf("invalid scope type %v", t)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scope != t {
		s.scope = t
		s.invalidateLocked()
	}
	return nil
}

// SetHistogramScale selects linear or logarithmic histogram display.
func (s *State) SetHistogramScale(v HistogramScale) error {
	if !v.Valid() {
		return fmt.Errorf("invalid histogram scale %v", v)
	}
	s.mu.Lock()
	s.histogramScale = v
	s.mu.Unlock()
	return nil
}

// SetWaveformType selects overlaid or parade waveform display.
func (s *State) SetWaveformType(v WaveformType) error {
	if !v.Valid() {
		return fmt.Errorf("invalid waveform type %v", v)
	}
	s.mu.Lock()
	s.waveformType = v
	s.mu.Unlock()
	return nil
}

// SetVectorscopeType selects the vectorscope projection. Changing it drops
// existing vectorscope data.
func (s *State) SetVectorscopeType(v VectorscopeType) error {
	if !v.Valid() {
		return fmt.Errorf("invalid vectorscope type %v", v)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vectorscopeType != v {
		s.vectorscopeType = v
		s.vectorscope.Reset()
	}
	return nil
}

// SetChannels sets the channel visibility flags.
func (s *State) SetChannels(c Channels) {
	s.mu.Lock()
	s.channels = c
	s.mu.Unlock()
}

// SetChannelMap sets the waveform channel permutation. Changing it drops
// existing waveform data.
func (s *State) SetChannelMap(m ChannelMap) error {
	if !m.Valid() {
		return fmt.Errorf("invalid channel map %v", m)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.channelMap != m {
		s.channelMap = m
		s.waveform.Reset()
	}
	return nil
}

// CycleMode steps through every scope and view in the order
// histogram log, histogram linear, waveform overlaid, waveform parade,
// vectorscope u*v*, vectorscope AzBz, and back to histogram log. Entering a
// scope starts at its first view.
func (s *State) CycleMode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.scope {
	case ScopeHistogram:
		if s.histogramScale == HistogramLogarithmic {
			s.histogramScale = HistogramLinear
		} else {
			s.waveformType = WaveformOverlaid
			s.scope = ScopeWaveform
			s.invalidateLocked()
		}
	case ScopeWaveform:
		if s.waveformType == WaveformOverlaid {
			s.waveformType = WaveformParade
		} else {
			s.vectorscopeType = VectorscopeCIELUV
			s.scope = ScopeVectorscope
			s.invalidateLocked()
		}
	case ScopeVectorscope:
		if s.vectorscopeType == VectorscopeCIELUV {
			s.vectorscopeType = VectorscopeJzAzBz
			s.vectorscope.Reset()
		} else {
			s.histogramScale = HistogramLogarithmic
			s.scope = ScopeHistogram
			s.invalidateLocked()
		}
	}
	return s.modeLocked()
}

// NextScopeType selects the next scope type, keeping its view.
func (s *State) NextScopeType() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scope = s.scope.Next()
	s.invalidateLocked()
	return s.modeLocked()
}

// NextView steps the view of the selected scope.
func (s *State) NextView() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.scope {
	case ScopeHistogram:
		s.histogramScale = (s.histogramScale + 1) % HistogramScale(len(histogramScaleNames))
	case ScopeWaveform:
		s.waveformType = (s.waveformType + 1) % WaveformType(len(waveformTypeNames))
	case ScopeVectorscope:
		s.vectorscopeType = (s.vectorscopeType + 1) % VectorscopeType(len(vectorscopeTypeNames))
		s.vectorscope.Reset()
	}
	return s.modeLocked()
}
