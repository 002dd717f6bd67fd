package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ironsheep/image-scopes-mcp/internal/colorspace"
	"github.com/ironsheep/image-scopes-mcp/internal/scope"
)

// Config holds the server settings.
type Config struct {
	// Scope buffers
	WaveformMaxWidth    int `json:"waveform_max_width"`
	WaveformHeight      int `json:"waveform_height"`
	VectorscopeDiameter int `json:"vectorscope_diameter"`

	// Loaded images are fit into this box before scopes are computed
	PreviewMaxWidth  int `json:"preview_max_width"`
	PreviewMaxHeight int `json:"preview_max_height"`

	// Color management
	DisplayProfile string `json:"display_profile"`
	InputProfile   string `json:"input_profile"`

	// Initial view
	Scope           string            `json:"scope"`
	HistogramScale  string            `json:"histogram_scale"`
	WaveformType    string            `json:"waveform_type"`
	VectorscopeType string            `json:"vectorscope_type"`
	ChannelMap      *scope.ChannelMap `json:"channel_map,omitempty"`

	// Export
	ExportDir    string `json:"export_dir"`
	ExportFormat string `json:"export_format"`

	LogLevel string `json:"log_level"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	DisplayProfile string
	InputProfile   string
	Scope          string
	ExportDir      string
	LogLevel       string
}

// Resolve applies flag overrides and fills empty fields with defaults.
// CLI flags take priority when non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.DisplayProfile != "" {
		c.DisplayProfile = flags.DisplayProfile
	}
	if flags.InputProfile != "" {
		c.InputProfile = flags.InputProfile
	}
	if flags.Scope != "" {
		c.Scope = flags.Scope
	}
	if flags.ExportDir != "" {
		c.ExportDir = flags.ExportDir
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}

	if c.WaveformMaxWidth <= 0 {
		c.WaveformMaxWidth = 360
	}
	if c.WaveformHeight <= 0 {
		c.WaveformHeight = 175
	}
	if c.VectorscopeDiameter <= 0 {
		c.VectorscopeDiameter = 256
	}
	if c.PreviewMaxWidth <= 0 {
		c.PreviewMaxWidth = 1440
	}
	if c.PreviewMaxHeight <= 0 {
		c.PreviewMaxHeight = 900
	}
	if c.DisplayProfile == "" {
		c.DisplayProfile = colorspace.LinearRec2020
	}
	if c.InputProfile == "" {
		c.InputProfile = colorspace.SRGB
	}
	if c.Scope == "" {
		c.Scope = scope.ScopeHistogram.String()
	}
	if c.HistogramScale == "" {
		c.HistogramScale = scope.HistogramLogarithmic.String()
	}
	if c.WaveformType == "" {
		c.WaveformType = scope.WaveformOverlaid.String()
	}
	if c.VectorscopeType == "" {
		c.VectorscopeType = scope.VectorscopeCIELUV.String()
	}
	if c.ExportDir == "" {
		c.ExportDir = os.TempDir()
	}
	if c.ExportFormat == "" {
		c.ExportFormat = "png"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// ScopeConfig converts the settings into a scope.Config. Unknown profile or
// view names are rejected.
func (c *Config) ScopeConfig() (scope.Config, error) {
	display, err := colorspace.Lookup(c.DisplayProfile)
	if err != nil {
		return scope.Config{}, fmt.Errorf("config: display_profile: %w", err)
	}
	st, err := scope.ParseScopeType(c.Scope)
	if err != nil {
		return scope.Config{}, fmt.Errorf("config: scope: %w", err)
	}
	hs, err := scope.ParseHistogramScale(c.HistogramScale)
	if err != nil {
		return scope.Config{}, fmt.Errorf("config: histogram_scale: %w", err)
	}
	wt, err := scope.ParseWaveformType(c.WaveformType)
	if err != nil {
		return scope.Config{}, fmt.Errorf("config: waveform_type: %w", err)
	}
	vt, err := scope.ParseVectorscopeType(c.VectorscopeType)
	if err != nil {
		return scope.Config{}, fmt.Errorf("config: vectorscope_type: %w", err)
	}

	cm := scope.IdentityChannels
	if c.ChannelMap != nil {
		cm = *c.ChannelMap
	}

	sc := scope.Config{
		WaveformMaxWidth:    c.WaveformMaxWidth,
		WaveformHeight:      c.WaveformHeight,
		VectorscopeDiameter: c.VectorscopeDiameter,
		DisplayProfile:      display,
		Scope:               st,
		HistogramScale:      hs,
		WaveformType:        wt,
		VectorscopeType:     vt,
		Channels:            scope.AllChannels,
		ChannelMap:          cm,
	}
	if err := sc.Validate(); err != nil {
		return scope.Config{}, fmt.Errorf("config: %w", err)
	}
	return sc, nil
}

// Input returns the profile assumed for decoded image files.
func (c *Config) Input() (*colorspace.Profile, error) {
	p, err := colorspace.Lookup(c.InputProfile)
	if err != nil {
		return nil, fmt.Errorf("config: input_profile: %w", err)
	}
	return p, nil
}

// Level parses LogLevel. Unknown names fall back to info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
