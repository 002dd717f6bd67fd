package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ironsheep/image-scopes-mcp/internal/batch"
	"github.com/ironsheep/image-scopes-mcp/internal/colorspace"
	"github.com/ironsheep/image-scopes-mcp/internal/imaging"
	"github.com/ironsheep/image-scopes-mcp/internal/scope"
)

// errInvalidArgs marks argument errors that map to -32602.
var errInvalidArgs = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "scope_compute").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Malformed arguments return code -32602. Other tool errors return -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		if errors.Is(err, errInvalidArgs) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_sample_pixel":
		return s.handleImageSamplePixel(args)

	// Scopes
	case "scope_compute":
		return s.handleScopeCompute(args)
	case "scope_state":
		return s.summary(), nil
	case "scope_set":
		return s.handleScopeSet(args)
	case "scope_cycle_mode":
		return s.handleScopeCycleMode(args)
	case "scope_clear":
		s.state.Clear()
		s.active = nil
		return s.summary(), nil
	case "scope_export":
		return s.handleScopeExport(args)
	case "scope_batch_export":
		return s.handleScopeBatchExport(args)

	default:
		return nil, fmt.Errorf("%w: unknown tool: %s", errInvalidArgs, name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments. Empty arguments leave v unchanged.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	return nil
}

// === Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type pointArg struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Label string `json:"label,omitempty"`
}

type imageSamplePixelArgs struct {
	Path    string     `json:"path"`
	X       *int       `json:"x"`
	Y       *int       `json:"y"`
	Points  []pointArg `json:"points"`
	Profile string     `json:"profile"`
}

func (s *Server) handleImageSamplePixel(args json.RawMessage) (interface{}, error) {
	var a imageSamplePixelArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	profile, err := s.profileArg(a.Profile)
	if err != nil {
		return nil, err
	}

	points := make([]imaging.LabeledPoint, 0, len(a.Points)+1)
	if a.X != nil && a.Y != nil {
		points = append(points, imaging.LabeledPoint{X: *a.X, Y: *a.Y})
	}
	for _, p := range a.Points {
		points = append(points, imaging.LabeledPoint(p))
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: x and y or points required", errInvalidArgs)
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	samples, err := imaging.SampleImage(img, profile, points)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"profile": profile.Name(),
		"samples": samples,
	}, nil
}

// profileArg resolves an optional profile name, defaulting to the input
// profile.
func (s *Server) profileArg(name string) (*colorspace.Profile, error) {
	if name == "" {
		return s.input, nil
	}
	p, err := colorspace.Lookup(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	return p, nil
}

// === Scope Handlers ===

type regionArgs struct {
	// Region is a named region such as "center".
	Region string `json:"region"`

	// Box is a normalized {left, top, right, bottom} box.
	Box *[4]float64 `json:"box"`

	// Point is a normalized {x, y} point selecting one pixel.
	Point *[2]float64 `json:"point"`

	// Rect is a pixel rectangle {x1, y1, x2, y2} in source coordinates.
	Rect *[4]int `json:"rect"`
}

type viewArgs struct {
	Scope           string          `json:"scope"`
	HistogramScale  string          `json:"histogram_scale"`
	WaveformType    string          `json:"waveform_type"`
	VectorscopeType string          `json:"vectorscope_type"`
	Channels        *scope.Channels `json:"channels"`
	ChannelMap      *[3]int         `json:"channel_map"`
}

type scopeComputeArgs struct {
	Path    string `json:"path"`
	Profile string `json:"profile"`
	regionArgs
	viewArgs
}

func (s *Server) handleScopeCompute(args json.RawMessage) (interface{}, error) {
	var a scopeComputeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("%w: path required", errInvalidArgs)
	}
	profile, err := s.profileArg(a.Profile)
	if err != nil {
		return nil, err
	}

	// nothing changes until the frame and its region are known to be good
	frame, err := imaging.LoadFrame(s.cache, a.Path, s.cfg.PreviewMaxWidth, s.cfg.PreviewMaxHeight)
	if err != nil {
		return nil, err
	}
	roi, err := resolveROI(frame, a.regionArgs)
	if err != nil {
		return nil, err
	}
	if err := s.applyView(a.viewArgs); err != nil {
		return nil, err
	}

	s.active = &activeFrame{path: a.Path, frame: frame, roi: roi, profile: profile}
	if err := s.recompute(); err != nil {
		return nil, err
	}
	return s.summary(), nil
}

// resolveROI turns the region arguments into crop margins on frame. At most
// one of them may be set; none selects the full frame.
func resolveROI(frame *imaging.Frame, a regionArgs) (*scope.ROI, error) {
	set := 0
	for _, ok := range []bool{a.Region != "", a.Box != nil, a.Point != nil, a.Rect != nil} {
		if ok {
			set++
		}
	}
	if set > 1 {
		return nil, fmt.Errorf("%w: only one of region, box, point and rect may be set", errInvalidArgs)
	}

	var roi scope.ROI
	switch {
	case a.Region != "":
		box, err := imaging.RegionBox(a.Region)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidArgs, err)
		}
		roi = scope.ROIFromBox(frame.Width, frame.Height, box)
	case a.Box != nil:
		roi = scope.ROIFromBox(frame.Width, frame.Height, *a.Box)
	case a.Point != nil:
		roi = scope.ROIFromPoint(frame.Width, frame.Height, *a.Point)
	case a.Rect != nil:
		r := *a.Rect
		box, err := imaging.PixelBox(frame.SourceWidth, frame.SourceHeight, r[0], r[1], r[2], r[3])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidArgs, err)
		}
		roi = scope.ROIFromBox(frame.Width, frame.Height, box)
	default:
		return nil, nil
	}
	return &roi, nil
}

// applyView sets every selector present in a. Names are validated before
// any selector changes.
func (s *Server) applyView(a viewArgs) error {
	var setters []func() error
	if a.Scope != "" {
		v, err := scope.ParseScopeType(a.Scope)
		if err != nil {
			return fmt.Errorf("%w: %v", errInvalidArgs, err)
		}
		setters = append(setters, func() error { return s.state.SetScopeType(v) })
	}
	if a.HistogramScale != "" {
		v, err := scope.ParseHistogramScale(a.HistogramScale)
		if err != nil {
			return fmt.Errorf("%w: %v", errInvalidArgs, err)
		}
		setters = append(setters, func() error { return s.state.SetHistogramScale(v) })
	}
	if a.WaveformType != "" {
		v, err := scope.ParseWaveformType(a.WaveformType)
		if err != nil {
			return fmt.Errorf("%w: %v", errInvalidArgs, err)
		}
		setters = append(setters, func() error { return s.state.SetWaveformType(v) })
	}
	if a.VectorscopeType != "" {
		v, err := scope.ParseVectorscopeType(a.VectorscopeType)
		if err != nil {
			return fmt.Errorf("%w: %v", errInvalidArgs, err)
		}
		setters = append(setters, func() error { return s.state.SetVectorscopeType(v) })
	}
	if a.ChannelMap != nil {
		m := scope.ChannelMap(*a.ChannelMap)
		if !m.Valid() {
			return fmt.Errorf("%w: invalid channel map %v", errInvalidArgs, m)
		}
		setters = append(setters, func() error { return s.state.SetChannelMap(m) })
	}
	if a.Channels != nil {
		c := *a.Channels
		setters = append(setters, func() error { s.state.SetChannels(c); return nil })
	}

	for _, set := range setters {
		if err := set(); err != nil {
			return err
		}
	}
	return nil
}

type scopeSetArgs struct {
	viewArgs
}

func (s *Server) handleScopeSet(args json.RawMessage) (interface{}, error) {
	var a scopeSetArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := s.applyView(a.viewArgs); err != nil {
		return nil, err
	}
	if err := s.recompute(); err != nil {
		return nil, err
	}
	return s.summary(), nil
}

type scopeCycleModeArgs struct {
	// Step is "mode" (default), "scope" or "view".
	Step string `json:"step"`
}

func (s *Server) handleScopeCycleMode(args json.RawMessage) (interface{}, error) {
	var a scopeCycleModeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	switch a.Step {
	case "", "mode":
		s.state.CycleMode()
	case "scope":
		s.state.NextScopeType()
	case "view":
		s.state.NextView()
	default:
		return nil, fmt.Errorf("%w: unknown step %q", errInvalidArgs, a.Step)
	}
	if err := s.recompute(); err != nil {
		return nil, err
	}
	return s.summary(), nil
}

type scopeExportArgs struct {
	Format     string `json:"format"`
	Path       string `json:"path"`
	Inline     bool   `json:"inline"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Background string `json:"background"`
	Labels     bool   `json:"labels"`
}

func (s *Server) handleScopeExport(args json.RawMessage) (interface{}, error) {
	var a scopeExportArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Format == "" {
		a.Format = s.cfg.ExportFormat
	}
	if imaging.MimeType(a.Format) == "" {
		return nil, fmt.Errorf("%w: unsupported export format %q", errInvalidArgs, a.Format)
	}

	snap := s.state.Snapshot()
	path := a.Path
	if !a.Inline && path == "" {
		name := fmt.Sprintf("scope-%s-%d.%s", snap.Scope, time.Now().UnixNano(), a.Format)
		path = filepath.Join(s.cfg.ExportDir, name)
	}
	if a.Inline {
		path = ""
	}

	opts := imaging.RenderOptions{
		Width:      a.Width,
		Height:     a.Height,
		Background: a.Background,
		Labels:     a.Labels,
	}
	return imaging.ExportScope(snap, opts, a.Format, path)
}

type scopeBatchExportArgs struct {
	Paths     []string    `json:"paths"`
	Scope     string      `json:"scope"`
	OutputDir string      `json:"output_dir"`
	Format    string      `json:"format"`
	Workers   int         `json:"workers"`
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	Labels    bool        `json:"labels"`
	Profile   string      `json:"profile"`
	Box       *[4]float64 `json:"box"`
}

func (s *Server) handleScopeBatchExport(args json.RawMessage) (interface{}, error) {
	var a scopeBatchExportArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 {
		return nil, fmt.Errorf("%w: paths required", errInvalidArgs)
	}
	if a.Format == "" {
		a.Format = s.cfg.ExportFormat
	}
	if imaging.MimeType(a.Format) == "" {
		return nil, fmt.Errorf("%w: unsupported export format %q", errInvalidArgs, a.Format)
	}
	if a.OutputDir == "" {
		a.OutputDir = s.cfg.ExportDir
	}
	profile, err := s.profileArg(a.Profile)
	if err != nil {
		return nil, err
	}

	sc, err := s.cfg.ScopeConfig()
	if err != nil {
		return nil, err
	}
	mode := s.state.Mode()
	sc.Scope, sc.HistogramScale, sc.WaveformType = mode.Scope, mode.HistogramScale, mode.WaveformType
	sc.VectorscopeType, sc.Channels, sc.ChannelMap = mode.VectorscopeType, mode.Channels, mode.ChannelMap
	if a.Scope != "" {
		if sc.Scope, err = scope.ParseScopeType(a.Scope); err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidArgs, err)
		}
	}

	results := batch.Run(context.Background(), batch.Config{
		Scope:            sc,
		Input:            profile,
		Cache:            s.cache,
		PreviewMaxWidth:  s.cfg.PreviewMaxWidth,
		PreviewMaxHeight: s.cfg.PreviewMaxHeight,
		Box:              a.Box,
		OutputDir:        a.OutputDir,
		Format:           a.Format,
		Render:           imaging.RenderOptions{Width: a.Width, Height: a.Height, Labels: a.Labels},
		Workers:          a.Workers,
		Logger:           s.logger,
	}, a.Paths)

	ok, failed := batch.Summary(results)
	return map[string]interface{}{
		"succeeded": ok,
		"failed":    failed,
		"results":   results,
	}, nil
}
