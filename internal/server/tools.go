package server

import (
	"github.com/ironsheep/image-scopes-mcp/internal/colorspace"
	"github.com/ironsheep/image-scopes-mcp/internal/imaging"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func profileProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        colorspace.Names(),
		"description": "Profile the file is encoded in. Defaults to the server input profile.",
	}
}

// viewProperties are the selector arguments shared by scope_compute and
// scope_set.
func viewProperties() map[string]interface{} {
	return map[string]interface{}{
		"scope": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"histogram", "waveform", "vectorscope"},
			"description": "Scope to compute",
		},
		"histogram_scale": map[string]interface{}{
			"type": "string",
			"enum": []string{"logarithmic", "linear"},
		},
		"waveform_type": map[string]interface{}{
			"type": "string",
			"enum": []string{"overlaid", "parade"},
		},
		"vectorscope_type": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"u*v*", "AzBz"},
			"description": "Chromaticity projection: CIELUV u*v* or JzAzBz",
		},
		"channels": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"red":   map[string]interface{}{"type": "boolean"},
				"green": map[string]interface{}{"type": "boolean"},
				"blue":  map[string]interface{}{"type": "boolean"},
			},
			"description": "Channel visibility used when rendering",
		},
		"channel_map": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "integer"},
			"minItems":    3,
			"maxItems":    3,
			"description": "Waveform output channel for input R, G, B, e.g. [2,1,0] for BGR",
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	computeProps := map[string]interface{}{
		"path":    pathProperty(),
		"profile": profileProperty(),
		"region": map[string]interface{}{
			"type":        "string",
			"enum":        imaging.RegionNames(),
			"description": "Named region restricting the histogram and waveform",
		},
		"box": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "number"},
			"minItems":    4,
			"maxItems":    4,
			"description": "Normalized [left, top, right, bottom] box, each in 0..1",
		},
		"point": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "number"},
			"minItems":    2,
			"maxItems":    2,
			"description": "Normalized [x, y] point selecting a single pixel",
		},
		"rect": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "integer"},
			"minItems":    4,
			"maxItems":    4,
			"description": "Pixel rectangle [x1, y1, x2, y2] in source coordinates, x2 and y2 exclusive",
		},
	}
	for k, v := range viewProperties() {
		computeProps[k] = v
	}

	return []Tool{
		// Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_sample_pixel",
			Description: "Read pixels as float RGBA, hex, HSL, CIE XYZ (D50), CIELUV u*v* and JzAzBz AzBz.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":    pathProperty(),
					"profile": profileProperty(),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based, from top)",
					},
					"points": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":     map[string]interface{}{"type": "integer"},
								"y":     map[string]interface{}{"type": "integer"},
								"label": map[string]interface{}{"type": "string", "description": "Optional label for this point"},
							},
							"required": []string{"x", "y"},
						},
						"description": "Additional points to sample",
					},
				},
				"required": []string{"path"},
			},
		},

		// Scopes
		{
			Name:        "scope_compute",
			Description: "Compute the selected scope (histogram, waveform or vectorscope) of an image and return a summary. The image becomes the active frame for later scope_set and scope_cycle_mode calls.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": computeProps,
				"required":   []string{"path"},
			},
		},
		{
			Name:        "scope_state",
			Description: "Return the current scope selectors, validity and a summary of the active output.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "scope_set",
			Description: "Change the scope, view or channel settings. The active frame, if any, is recomputed.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": viewProperties(),
			},
		},
		{
			Name:        "scope_cycle_mode",
			Description: "Advance to the next mode: histogram log, linear, waveform overlaid, parade, vectorscope u*v*, AzBz. The active frame, if any, is recomputed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"step": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"mode", "scope", "view"},
						"description": "mode cycles all six modes, scope switches the scope type, view switches the view within the current scope",
						"default":     "mode",
					},
				},
			},
		},
		{
			Name:        "scope_clear",
			Description: "Reset every scope output to no data and forget the active frame.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "scope_export",
			Description: "Render the active scope output as an image, written to a file or returned as base64.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{imaging.FormatPNG, imaging.FormatWebP, imaging.FormatJPEG},
						"description": "Image format. Defaults to the server export format.",
					},
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Output file. Defaults to a generated name in the export directory.",
					},
					"inline": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the image as base64 instead of writing a file",
						"default":     false,
					},
					"width":  map[string]interface{}{"type": "integer", "description": "Output width. 0 keeps the native width."},
					"height": map[string]interface{}{"type": "integer", "description": "Output height. 0 keeps the native height."},
					"background": map[string]interface{}{
						"type":        "string",
						"description": "Background color as #RRGGBB or #RRGGBBAA",
						"default":     "#000000",
					},
					"labels": map[string]interface{}{
						"type":        "boolean",
						"description": "Draw graticule letters and level marks",
						"default":     false,
					},
				},
			},
		},
		{
			Name:        "scope_batch_export",
			Description: "Compute and export one scope image per file in parallel, using the current selectors.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Absolute paths of the image files",
					},
					"scope": map[string]interface{}{
						"type": "string",
						"enum": []string{"histogram", "waveform", "vectorscope"},
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Output directory. Defaults to the export directory.",
					},
					"format": map[string]interface{}{
						"type": "string",
						"enum": []string{imaging.FormatPNG, imaging.FormatWebP, imaging.FormatJPEG},
					},
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Parallel workers. 0 uses one per CPU.",
						"default":     0,
					},
					"width":   map[string]interface{}{"type": "integer"},
					"height":  map[string]interface{}{"type": "integer"},
					"labels":  map[string]interface{}{"type": "boolean", "default": false},
					"profile": profileProperty(),
					"box": map[string]interface{}{
						"type":     "array",
						"items":    map[string]interface{}{"type": "number"},
						"minItems": 4,
						"maxItems": 4,
					},
				},
				"required": []string{"paths"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
