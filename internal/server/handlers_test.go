package server

import (
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/object-graph-mcp/internal/pipeline"
)

// createTestImageFile writes a black PNG with white size x size squares at
// the given corners and returns its path.
func createTestImageFile(t *testing.T, width, height, size int, corners ...image.Point) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.Black)
		}
	}
	for _, c := range corners {
		for y := c.Y; y < c.Y+size; y++ {
			for x := c.X; x < c.X+size; x++ {
				img.Set(x, y, color.White)
			}
		}
	}

	f, err := os.CreateTemp(t.TempDir(), "handler-test-*.png")
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return f.Name()
}

// twoObjectImage has two pairs of squares far apart.
func twoObjectImage(t *testing.T) string {
	return createTestImageFile(t, 300, 300, 20,
		image.Pt(10, 10), image.Pt(40, 10),
		image.Pt(200, 200), image.Pt(230, 200))
}

// callTool runs a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *MCPResponse {
	t.Helper()
	paramsJSON, err := json.Marshal(map[string]interface{}{"name": name, "arguments": args})
	require.NoError(t, err)
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: paramsJSON})
	require.NotNil(t, resp)
	return resp
}

// decodeToolResult unmarshals the text content of a successful tool call into v.
func decodeToolResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()
	require.Nil(t, resp.Error)
	content := resp.Result.(map[string]interface{})["content"].([]map[string]interface{})
	require.Len(t, content, 1)
	require.Equal(t, "text", content[0]["type"])
	require.NoError(t, json.Unmarshal([]byte(content[0]["text"].(string)), v))
}

func expectToolError(t *testing.T, resp *MCPResponse, contains string) {
	t.Helper()
	require.NotNil(t, resp.Error, "expected an error response")
	assert.Equal(t, codeToolFailed, resp.Error.Code)
	data, _ := resp.Error.Data.(string)
	assert.Contains(t, data, contains)
}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := newTestServer()
	imgPath := createTestImageFile(t, 100, 80, 0)

	var info map[string]interface{}
	decodeToolResult(t, callTool(t, s, "image_load", map[string]interface{}{"path": imgPath}), &info)

	assert.EqualValues(t, 100, info["width"])
	assert.EqualValues(t, 80, info["height"])
	assert.Equal(t, "png", info["format"])
}

func TestHandleToolsCall_ImageDimensions(t *testing.T) {
	s := newTestServer()
	imgPath := createTestImageFile(t, 200, 150, 0)

	var dims map[string]interface{}
	decodeToolResult(t, callTool(t, s, "image_dimensions", map[string]interface{}{"path": imgPath}), &dims)

	assert.EqualValues(t, 200, dims["width"])
	assert.EqualValues(t, 150, dims["height"])
}

func TestHandleToolsCall_ImageEvict(t *testing.T) {
	s := newTestServer()
	first := createTestImageFile(t, 10, 10, 0)
	second := createTestImageFile(t, 12, 12, 0)
	for _, p := range []string{first, second} {
		decodeToolResult(t, callTool(t, s, "image_load", map[string]interface{}{"path": p}), &map[string]interface{}{})
	}

	var result EvictResult
	decodeToolResult(t, callTool(t, s, "image_evict", map[string]interface{}{"path": first}), &result)
	assert.Equal(t, []string{filepath.Clean(first)}, result.Evicted)
	assert.Equal(t, []string{filepath.Clean(second)}, result.Cached)
	assert.False(t, s.cache.Cached(first))

	// Evicting an uncached image is not an error.
	decodeToolResult(t, callTool(t, s, "image_evict", map[string]interface{}{"path": first}), &result)
	assert.Empty(t, result.Evicted)
	assert.Equal(t, []string{filepath.Clean(second)}, result.Cached)

	decodeToolResult(t, callTool(t, s, "image_evict", map[string]interface{}{}), &result)
	assert.Equal(t, []string{filepath.Clean(second)}, result.Evicted)
	assert.Empty(t, result.Cached)
	assert.Empty(t, s.cache.Paths())
}

func TestHandleToolsCall_ImageEvict_ReloadsChangedFile(t *testing.T) {
	s := newTestServer()
	path := createTestImageFile(t, 10, 10, 0)

	var dims map[string]interface{}
	decodeToolResult(t, callTool(t, s, "image_dimensions", map[string]interface{}{"path": path}), &dims)
	assert.EqualValues(t, 10, dims["width"])

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, 30, 5))))
	require.NoError(t, f.Close())

	decodeToolResult(t, callTool(t, s, "image_dimensions", map[string]interface{}{"path": path}), &dims)
	assert.EqualValues(t, 10, dims["width"], "stale until evicted")

	decodeToolResult(t, callTool(t, s, "image_evict", map[string]interface{}{"path": path}), &EvictResult{})
	decodeToolResult(t, callTool(t, s, "image_dimensions", map[string]interface{}{"path": path}), &dims)
	assert.EqualValues(t, 30, dims["width"])
}

func TestHandleToolsCall_ImageBinarize(t *testing.T) {
	s := newTestServer()
	imgPath := createTestImageFile(t, 60, 60, 10, image.Pt(5, 5), image.Pt(40, 40))

	var result BinarizeResult
	decodeToolResult(t, callTool(t, s, "image_binarize", map[string]interface{}{
		"path":       imgPath,
		"blur_sigma": 0,
	}), &result)

	assert.Equal(t, 200, result.ForegroundPixels)
	assert.Equal(t, 2, result.ContourCount)
	assert.Equal(t, 60, result.Threshold, "configured threshold")
	require.NotNil(t, result.Mask)
	assert.Equal(t, 60, result.Mask.Width)
	_, err := base64.StdEncoding.DecodeString(result.Mask.ImageBase64)
	assert.NoError(t, err, "mask is base64")
}

func TestHandleToolsCall_ImageBinarize_InvalidThreshold(t *testing.T) {
	s := newTestServer()
	imgPath := createTestImageFile(t, 10, 10, 0)

	resp := callTool(t, s, "image_binarize", map[string]interface{}{"path": imgPath, "threshold": 300})
	expectToolError(t, resp, "threshold")
}

func TestHandleToolsCall_GraphComponents(t *testing.T) {
	s := newTestServer()
	imgPath := twoObjectImage(t)

	var result struct {
		Components []map[string]interface{} `json:"components"`
		Graph      struct {
			Nodes []map[string]interface{} `json:"nodes"`
			Edges []map[string]int         `json:"edges"`
		} `json:"graph"`
		Adjacency [][]float64 `json:"adjacency"`
	}
	decodeToolResult(t, callTool(t, s, "graph_components", map[string]interface{}{
		"path":             imgPath,
		"component_radius": 50,
	}), &result)

	require.Len(t, result.Components, 4)
	assert.Len(t, result.Graph.Nodes, 4)
	assert.Len(t, result.Graph.Edges, 2)
	require.Len(t, result.Adjacency, 4)
	assert.Equal(t, []float64{0, 1, 0, 0}, result.Adjacency[0])
	assert.Equal(t, []float64{1, 0, 0, 0}, result.Adjacency[1])
}

func TestHandleToolsCall_GraphObjects(t *testing.T) {
	s := newTestServer()
	imgPath := twoObjectImage(t)

	var result pipeline.Result
	decodeToolResult(t, callTool(t, s, "graph_objects", map[string]interface{}{
		"path":             imgPath,
		"blur_sigma":       0,
		"component_radius": 50,
		"object_radius":    300,
	}), &result)

	require.Equal(t, 2, result.ObjectCount)
	require.Len(t, result.Clusters, 2)
	require.Len(t, result.Clusters[0].Members, 2)
	assert.Equal(t, 34.0, result.Clusters[0].Centroid.X)
	assert.Equal(t, 19.0, result.Clusters[0].Centroid.Y)
	require.NotNil(t, result.ObjectGraph)
	assert.Equal(t, 1, result.ObjectGraph.EdgeCount())
	assert.Equal(t, []int{0, 0, 1, 1}, result.Membership)
	require.Len(t, result.ObjectBounds, 2)
	assert.Equal(t, 50, result.ObjectBounds[0].Width)
}

func TestHandleToolsCall_GraphObjects_InvalidRadius(t *testing.T) {
	s := newTestServer()
	imgPath := twoObjectImage(t)

	resp := callTool(t, s, "graph_objects", map[string]interface{}{
		"path":             imgPath,
		"component_radius": 100,
		"object_radius":    10,
	})
	expectToolError(t, resp, "invalid radius")

	resp = callTool(t, s, "graph_objects", map[string]interface{}{
		"path":             imgPath,
		"component_radius": -5,
	})
	expectToolError(t, resp, "invalid radius")
}

func TestHandleToolsCall_GraphObjects_DegenerateContour(t *testing.T) {
	s := newTestServer()
	// A single bright pixel traces to a zero-area contour.
	imgPath := createTestImageFile(t, 20, 20, 1, image.Pt(10, 10))

	resp := callTool(t, s, "graph_objects", map[string]interface{}{"path": imgPath, "blur_sigma": 0})
	expectToolError(t, resp, "zero area")

	var result pipeline.Result
	decodeToolResult(t, callTool(t, s, "graph_objects", map[string]interface{}{
		"path":            imgPath,
		"blur_sigma":      0,
		"skip_degenerate": true,
	}), &result)
	assert.Equal(t, 1, result.SkippedContours)
	assert.Equal(t, 0, result.ObjectCount)
}

func TestHandleToolsCall_GraphRender(t *testing.T) {
	s := newTestServer()
	imgPath := twoObjectImage(t)
	outPath := filepath.Join(t.TempDir(), "overlay.png")

	var result RenderResult
	decodeToolResult(t, callTool(t, s, "graph_render", map[string]interface{}{
		"path":             imgPath,
		"component_radius": 50,
		"output_path":      outPath,
	}), &result)

	assert.Equal(t, 4, result.ComponentCount)
	assert.Equal(t, 2, result.ObjectCount)
	require.NotNil(t, result.Image)
	assert.Equal(t, 300, result.Image.Width)
	assert.Equal(t, 300, result.Image.Height)
	assert.FileExists(t, outPath)
}

func TestHandleToolsCall_ObjectCrop(t *testing.T) {
	s := newTestServer()
	imgPath := twoObjectImage(t)

	var result ObjectCropResult
	decodeToolResult(t, callTool(t, s, "object_crop", map[string]interface{}{
		"path":             imgPath,
		"blur_sigma":       0,
		"component_radius": 50,
		"object":           1,
		"padding":          5,
	}), &result)

	assert.Equal(t, 1, result.Object)
	assert.Equal(t, []int{2, 3}, result.Members)
	// Bounds 200..250 x 200..220 padded by 5.
	require.NotNil(t, result.Image)
	assert.Equal(t, 60, result.Image.Width)
	assert.Equal(t, 30, result.Image.Height)
}

func TestHandleToolsCall_ObjectCrop_Errors(t *testing.T) {
	s := newTestServer()
	imgPath := twoObjectImage(t)

	resp := callTool(t, s, "object_crop", map[string]interface{}{"path": imgPath})
	expectToolError(t, resp, "object is required")

	resp = callTool(t, s, "object_crop", map[string]interface{}{"path": imgPath, "object": 9, "component_radius": 50})
	expectToolError(t, resp, "not found")

	resp = callTool(t, s, "object_crop", map[string]interface{}{"path": imgPath, "object": 0, "padding": -1})
	expectToolError(t, resp, "padding")
}

func TestHandleToolsCall_Errors(t *testing.T) {
	s := newTestServer()

	resp := callTool(t, s, "image_rotate", map[string]interface{}{"path": "/x.png"})
	expectToolError(t, resp, "unknown tool")

	resp = callTool(t, s, "graph_objects", map[string]interface{}{})
	expectToolError(t, resp, "path is required")

	resp = callTool(t, s, "image_load", map[string]interface{}{"path": "/nonexistent/image.png"})
	expectToolError(t, resp, "failed to load image")

	bad := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 3, Method: "tools/call", Params: json.RawMessage(`[1,2]`)})
	require.NotNil(t, bad.Error)
	assert.Equal(t, codeInvalidParams, bad.Error.Code)
}
