package server

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

// segmentationProperties are accepted by every tool that segments an image.
func segmentationProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": pathProperty(),
		"threshold": map[string]interface{}{
			"type":        "integer",
			"description": "Pixels brighter than this (0-254) are foreground. Default from configuration (60).",
			"minimum":     0,
			"maximum":     254,
		},
		"blur_sigma": map[string]interface{}{
			"type":        "number",
			"description": "Gaussian blur sigma applied before thresholding; 0 disables blur. Default 1.1.",
			"minimum":     0,
		},
	}
}

// graphProperties extends segmentationProperties with the graph tunables.
func graphProperties() map[string]interface{} {
	props := segmentationProperties()
	props["component_radius"] = map[string]interface{}{
		"type":        "number",
		"description": "Components closer than this (pixels) are joined into one object. Default 130.",
		"minimum":     0,
	}
	props["object_radius"] = map[string]interface{}{
		"type":        "number",
		"description": "Objects closer than this are joined in the object graph; must be >= component_radius. Default 260.",
		"minimum":     0,
	}
	props["skip_degenerate"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Skip zero-area regions (single pixels, one-pixel lines) instead of failing",
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	renderProps := graphProperties()
	renderProps["output_path"] = map[string]interface{}{
		"type":        "string",
		"description": "Optional file to write the overlay to (format from extension)",
	}

	cropProps := graphProperties()
	cropProps["object"] = map[string]interface{}{
		"type":        "integer",
		"description": "Object index, 0 = largest object",
		"minimum":     0,
	}
	cropProps["padding"] = map[string]interface{}{
		"type":        "integer",
		"description": "Pixels added around the object's bounding box (default: 10)",
		"minimum":     0,
	}
	cropProps["scale"] = map[string]interface{}{
		"type":        "number",
		"description": "Scale factor for the output (default: 1.0)",
		"minimum":     0.1,
		"maximum":     4.0,
	}

	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and file size. The decoded image is cached for later calls.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{"path": pathProperty()},
				"required":   []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{"path": pathProperty()},
				"required":   []string{"path"},
			},
		},
		{
			Name:        "image_evict",
			Description: "Drop a cached image so the next call reads the file again. Without a path the whole cache is cleared. Returns the evicted paths and those still cached.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{"path": map[string]interface{}{
					"type":        "string",
					"description": "Image to evict; omit to clear the cache",
				}},
				"required": []string{},
			},
		},

		// Segmentation
		{
			Name:        "image_binarize",
			Description: "Threshold an image into a black/white mask and count its outer contours. Use this to tune threshold and blur before building graphs.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": segmentationProperties(),
				"required":   []string{"path"},
			},
		},

		// Graphs
		{
			Name:        "graph_components",
			Description: "Find the bright regions of an image and connect those within component_radius. Returns each component's centroid, bounding box and area, the component graph and its adjacency matrix.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": graphProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "graph_objects",
			Description: "Group connected components into objects and connect object centres within object_radius. Returns both graphs, the clusters, per-object bounding boxes and the object count.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": graphProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "graph_render",
			Description: "Draw component boxes, the component graph and the object graph over the image and return it as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": renderProps,
				"required":   []string{"path"},
			},
		},
		{
			Name:        "object_crop",
			Description: "Crop one detected object (by index, largest first) out of the image and return it as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": cropProps,
				"required":   []string{"path", "object"},
			},
		},
	}
}
