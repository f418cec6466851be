package server

import (
	"encoding/json"
	"fmt"
	"image"
	"path/filepath"
	"time"

	"github.com/ironsheep/object-graph-mcp/internal/centroid"
	"github.com/ironsheep/object-graph-mcp/internal/geometry"
	"github.com/ironsheep/object-graph-mcp/internal/graph"
	"github.com/ironsheep/object-graph-mcp/internal/imaging"
	"github.com/ironsheep/object-graph-mcp/internal/pipeline"
	"github.com/ironsheep/object-graph-mcp/internal/render"
	"github.com/ironsheep/object-graph-mcp/internal/segment"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "graph_objects").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall runs one tool. Its JSON result is returned as the single
// text item of an MCP content list; a failing tool yields codeToolFailed
// with the error text as data.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	start := time.Now()
	out, err := s.executeTool(params.Name, params.Arguments)
	log := s.log.With().Str("tool", params.Name).Dur("elapsed", time.Since(start)).Logger()
	if err != nil {
		log.Warn().Err(err).Msg("tool failed")
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}
	log.Debug().Msg("tool finished")

	return s.result(req.ID, map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": mustMarshalJSON(out)},
		},
	})
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_evict":
		return s.handleImageEvict(args)

	// Segmentation
	case "image_binarize":
		return s.handleImageBinarize(args)

	// Graphs
	case "graph_components":
		return s.handleGraphComponents(args)
	case "graph_objects":
		return s.handleGraphObjects(args)
	case "graph_render":
		return s.handleGraphRender(args)
	case "object_crop":
		return s.handleObjectCrop(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments and checks the mandatory path.
func decodeArgs(args json.RawMessage, path *string, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if *path == "" {
		return fmt.Errorf("invalid arguments: path is required")
	}
	return nil
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a.Path, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a.Path, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// EvictResult lists the paths image_evict dropped and those still cached.
type EvictResult struct {
	Evicted []string `json:"evicted"`
	Cached  []string `json:"cached"`
}

func (s *Server) handleImageEvict(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
	}

	evicted := []string{}
	switch {
	case a.Path == "":
		evicted = s.cache.Paths()
		s.cache.Clear()
	case s.cache.Cached(a.Path):
		evicted = append(evicted, filepath.Clean(a.Path))
		s.cache.Evict(a.Path)
	}
	s.log.Debug().Strs("evicted", evicted).Msg("image cache evicted")
	return &EvictResult{Evicted: evicted, Cached: s.cache.Paths()}, nil
}

// === Segmentation Handlers ===

type segmentationArgs struct {
	Path      string   `json:"path"`
	Threshold *int     `json:"threshold,omitempty"`
	BlurSigma *float64 `json:"blur_sigma,omitempty"`
}

// segmenter applies per-call overrides to the configured threshold segmenter.
func (s *Server) segmenter(a segmentationArgs) (segment.Threshold, error) {
	seg := s.cfg.Segmenter()
	if a.Threshold != nil {
		seg.Level = *a.Threshold
	}
	if a.BlurSigma != nil {
		seg.BlurSigma = *a.BlurSigma
	}
	if err := seg.Validate(); err != nil {
		return segment.Threshold{}, fmt.Errorf("invalid arguments: %w", err)
	}
	return seg, nil
}

// BinarizeResult describes the mask produced by image_binarize.
type BinarizeResult struct {
	Threshold        int                   `json:"threshold"`
	BlurSigma        float64               `json:"blur_sigma"`
	ForegroundPixels int                   `json:"foreground_pixels"`
	ContourCount     int                   `json:"contour_count"`
	DegenerateCount  int                   `json:"degenerate_count"`
	Mask             *imaging.EncodedImage `json:"mask"`
}

func (s *Server) handleImageBinarize(args json.RawMessage) (interface{}, error) {
	var a segmentationArgs
	if err := decodeArgs(args, &a.Path, &a); err != nil {
		return nil, err
	}
	seg, err := s.segmenter(a)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	mask := seg.Binarize(img)
	contours := seg.FindContours(mask)
	degenerate := 0
	for _, c := range contours {
		if _, err := centroid.Extract(c); err != nil {
			degenerate++
		}
	}

	encoded, err := imaging.EncodePNG(mask)
	if err != nil {
		return nil, err
	}
	return &BinarizeResult{
		Threshold:        seg.Level,
		BlurSigma:        seg.BlurSigma,
		ForegroundPixels: segment.ForegroundCount(mask),
		ContourCount:     len(contours),
		DegenerateCount:  degenerate,
		Mask:             encoded,
	}, nil
}

// === Graph Handlers ===

type graphArgs struct {
	segmentationArgs
	ComponentRadius *float64 `json:"component_radius,omitempty"`
	ObjectRadius    *float64 `json:"object_radius,omitempty"`
	SkipDegenerate  *bool    `json:"skip_degenerate,omitempty"`
}

// analyze loads the image and runs the pipeline with per-call overrides.
func (s *Server) analyze(a graphArgs) (image.Image, *pipeline.Result, error) {
	seg, err := s.segmenter(a.segmentationArgs)
	if err != nil {
		return nil, nil, err
	}

	opts := s.cfg.PipelineOptions()
	if a.ComponentRadius != nil {
		opts.ComponentRadius = *a.ComponentRadius
	}
	if a.ObjectRadius != nil {
		opts.ObjectRadius = *a.ObjectRadius
	}
	if a.SkipDegenerate != nil {
		opts.SkipDegenerate = *a.SkipDegenerate
	}

	b, err := pipeline.New(opts, seg, s.log)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid arguments: %w", err)
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, nil, err
	}

	res, err := b.Run(img)
	if err != nil {
		return nil, nil, err
	}
	return img, res, nil
}

// ComponentsResult is the component level of a run.
type ComponentsResult struct {
	RunID           string               `json:"run_id"`
	Components      []centroid.Component `json:"components"`
	Graph           *graph.Graph         `json:"graph"`
	Adjacency       [][]float64          `json:"adjacency"`
	SkippedContours int                  `json:"skipped_contours"`
}

// adjacencyRows returns the adjacency matrix of g as nested rows.
func adjacencyRows(g *graph.Graph) [][]float64 {
	m := g.AdjacencyMatrix()
	if m == nil {
		return [][]float64{}
	}
	n, _ := m.Dims()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, n)
		copy(rows[i], m.RawRowView(i))
	}
	return rows
}

func (s *Server) handleGraphComponents(args json.RawMessage) (interface{}, error) {
	var a graphArgs
	if err := decodeArgs(args, &a.Path, &a); err != nil {
		return nil, err
	}
	_, res, err := s.analyze(a)
	if err != nil {
		return nil, err
	}
	return &ComponentsResult{
		RunID:           res.RunID,
		Components:      res.Components,
		Graph:           res.ComponentGraph,
		Adjacency:       adjacencyRows(res.ComponentGraph),
		SkippedContours: res.SkippedContours,
	}, nil
}

func (s *Server) handleGraphObjects(args json.RawMessage) (interface{}, error) {
	var a graphArgs
	if err := decodeArgs(args, &a.Path, &a); err != nil {
		return nil, err
	}
	_, res, err := s.analyze(a)
	if err != nil {
		return nil, err
	}
	return res, nil
}

type graphRenderArgs struct {
	graphArgs
	OutputPath string `json:"output_path,omitempty"`
}

// RenderResult is the overlay produced by graph_render.
type RenderResult struct {
	RunID          string                `json:"run_id"`
	ComponentCount int                   `json:"component_count"`
	ObjectCount    int                   `json:"object_count"`
	OutputPath     string                `json:"output_path,omitempty"`
	Image          *imaging.EncodedImage `json:"image"`
}

func (s *Server) handleGraphRender(args json.RawMessage) (interface{}, error) {
	var a graphRenderArgs
	if err := decodeArgs(args, &a.Path, &a); err != nil {
		return nil, err
	}
	img, res, err := s.analyze(a.graphArgs)
	if err != nil {
		return nil, err
	}

	overlay := render.Compose(img, render.Scene{
		Components: res.ComponentGraph,
		Objects:    res.ObjectGraph,
		Boxes:      res.ComponentBounds(),
	}, s.cfg.RenderOptions())

	if a.OutputPath != "" {
		if err := imaging.Save(overlay, a.OutputPath); err != nil {
			return nil, err
		}
	}

	encoded, err := imaging.EncodePNG(overlay)
	if err != nil {
		return nil, err
	}
	return &RenderResult{
		RunID:          res.RunID,
		ComponentCount: res.ComponentGraph.Len(),
		ObjectCount:    res.ObjectCount,
		OutputPath:     a.OutputPath,
		Image:          encoded,
	}, nil
}

type objectCropArgs struct {
	graphArgs
	Object  *int     `json:"object"`
	Padding *int     `json:"padding,omitempty"`
	Scale   *float64 `json:"scale,omitempty"`
}

// ObjectCropResult is one object cut out of the image.
type ObjectCropResult struct {
	Object   int                   `json:"object"`
	Members  []int                 `json:"members"`
	Centroid geometry.Point2D      `json:"centroid"`
	Bounds   geometry.Rect         `json:"bounds"`
	Image    *imaging.EncodedImage `json:"image"`
}

func (s *Server) handleObjectCrop(args json.RawMessage) (interface{}, error) {
	var a objectCropArgs
	if err := decodeArgs(args, &a.Path, &a); err != nil {
		return nil, err
	}
	if a.Object == nil {
		return nil, fmt.Errorf("invalid arguments: object is required")
	}
	padding := 10
	if a.Padding != nil {
		padding = *a.Padding
	}
	if padding < 0 {
		return nil, fmt.Errorf("invalid arguments: padding %d is negative", padding)
	}
	scale := 1.0
	if a.Scale != nil {
		scale = *a.Scale
	}

	img, res, err := s.analyze(a.graphArgs)
	if err != nil {
		return nil, err
	}

	obj, bounds, ok := res.Object(*a.Object)
	if !ok {
		return nil, fmt.Errorf("object %d not found: image has %d objects", *a.Object, res.ObjectCount)
	}

	cropped, err := imaging.CropRegion(img, bounds, padding, scale)
	if err != nil {
		return nil, err
	}
	encoded, err := imaging.EncodePNG(cropped)
	if err != nil {
		return nil, err
	}
	return &ObjectCropResult{
		Object:   obj.ID,
		Members:  obj.Members,
		Centroid: obj.Centroid,
		Bounds:   bounds,
		Image:    encoded,
	}, nil
}
