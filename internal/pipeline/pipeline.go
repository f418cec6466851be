package pipeline

import (
	"errors"
	"fmt"
	"image"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ironsheep/object-graph-mcp/internal/centroid"
	"github.com/ironsheep/object-graph-mcp/internal/cluster"
	"github.com/ironsheep/object-graph-mcp/internal/geometry"
	"github.com/ironsheep/object-graph-mcp/internal/proximity"
	"github.com/ironsheep/object-graph-mcp/internal/segment"
)

// ErrNilImage is returned by Run when no image is given.
var ErrNilImage = errors.New("nil image")

// ErrEmptyInput is returned when no components were found and the run
// requires at least one.
var ErrEmptyInput = errors.New("no components found")

// Options are the tunables of a run.
type Options struct {
	// ComponentRadius joins components into clusters.
	ComponentRadius float64 `json:"component_radius"`

	// ObjectRadius joins cluster centres. It must not be smaller than
	// ComponentRadius.
	ObjectRadius float64 `json:"object_radius"`

	// SkipDegenerate drops zero-area contours instead of failing the run.
	SkipDegenerate bool `json:"skip_degenerate"`

	// RequireComponents turns an empty result into ErrEmptyInput.
	RequireComponents bool `json:"require_components"`
}

// DefaultOptions returns the radii used when none are configured.
func DefaultOptions() Options {
	return Options{ComponentRadius: 130, ObjectRadius: 260}
}

// Validate checks both radii and their ordering.
func (o Options) Validate() error {
	if err := proximity.ValidateRadius(o.ComponentRadius); err != nil {
		return fmt.Errorf("component radius: %w", err)
	}
	if err := proximity.ValidateRadius(o.ObjectRadius); err != nil {
		return fmt.Errorf("object radius: %w", err)
	}
	if o.ObjectRadius < o.ComponentRadius {
		return fmt.Errorf("object radius: %w", &proximity.InvalidRadiusError{
			Radius: o.ObjectRadius,
			Reason: fmt.Sprintf("must be at least the component radius %g", o.ComponentRadius),
		})
	}
	return nil
}

// Builder runs the pipeline with fixed options.
type Builder struct {
	opts Options
	seg  segment.Segmenter
	log  zerolog.Logger
}

// New returns a Builder. A nil segmenter selects segment.DefaultThreshold.
func New(opts Options, seg segment.Segmenter, log zerolog.Logger) (*Builder, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if seg == nil {
		seg = segment.DefaultThreshold()
	}
	return &Builder{opts: opts, seg: seg, log: log}, nil
}

// Run segments img and builds both graphs from its contours.
func (b *Builder) Run(img image.Image) (*Result, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	mask := b.seg.Binarize(img)
	contours := b.seg.FindContours(mask)

	b.log.Debug().
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Int("foreground", segment.ForegroundCount(mask)).
		Int("contours", len(contours)).
		Msg("segmented image")

	return b.FromContours(contours)
}

// FromContours builds both graphs from already traced contours.
func (b *Builder) FromContours(contours []segment.Contour) (*Result, error) {
	runID := uuid.NewString()
	log := b.log.With().Str("run_id", runID).Logger()

	components, skipped, err := centroid.ExtractAll(contours, centroid.Options{SkipDegenerate: b.opts.SkipDegenerate}, log)
	if err != nil {
		log.Error().Err(err).Msg("component extraction failed")
		return nil, fmt.Errorf("extract components: %w", err)
	}

	bounds := make([]geometry.Rect, len(components))
	for i, c := range components {
		bounds[i] = c.Bounds
	}

	res, err := b.build(runID, log, centroid.Points(components), bounds)
	if err != nil {
		return nil, err
	}
	res.Components = components
	res.ContourCount = len(contours)
	res.SkippedContours = skipped
	return res, nil
}

// FromPoints builds both graphs from component positions directly.
// The result carries no components and no bounding boxes.
func (b *Builder) FromPoints(points []geometry.Point2D) (*Result, error) {
	runID := uuid.NewString()
	log := b.log.With().Str("run_id", runID).Logger()
	return b.build(runID, log, points, nil)
}

func (b *Builder) build(runID string, log zerolog.Logger, points []geometry.Point2D, bounds []geometry.Rect) (*Result, error) {
	if len(points) == 0 && b.opts.RequireComponents {
		log.Warn().Msg("no components found")
		return nil, ErrEmptyInput
	}

	componentGraph, err := proximity.Build(points, b.opts.ComponentRadius)
	if err != nil {
		return nil, fmt.Errorf("component graph: %w", err)
	}

	clusters := cluster.Aggregate(componentGraph)

	objectGraph, err := proximity.Build(cluster.Centroids(clusters), b.opts.ObjectRadius)
	if err != nil {
		return nil, fmt.Errorf("object graph: %w", err)
	}

	res := &Result{
		RunID:          runID,
		Components:     []centroid.Component{},
		ComponentGraph: componentGraph,
		Clusters:       clusters,
		ObjectGraph:    objectGraph,
		ObjectBounds:   objectBounds(clusters, bounds),
		Membership:     cluster.Membership(clusters, componentGraph.Len()),
		ObjectCount:    len(clusters),
	}

	log.Info().
		Int("components", componentGraph.Len()).
		Int("component_edges", componentGraph.EdgeCount()).
		Int("objects", res.ObjectCount).
		Int("object_edges", objectGraph.EdgeCount()).
		Msg("object graph built")

	return res, nil
}

// objectBounds unions the member boxes of every cluster. It returns an empty
// slice when no boxes are known.
func objectBounds(clusters []cluster.Cluster, bounds []geometry.Rect) []geometry.Rect {
	if len(bounds) == 0 {
		return []geometry.Rect{}
	}
	out := make([]geometry.Rect, len(clusters))
	for i, c := range clusters {
		var box geometry.Rect
		for _, m := range c.Members {
			box = box.Union(bounds[m])
		}
		out[i] = box
	}
	return out
}
