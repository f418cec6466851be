// Package config loads the settings shared by the analyze command and the
// tool server.
//
// Sources, lowest priority first:
//
//  1. Built-in defaults
//  2. An optional YAML file
//  3. Environment variables prefixed OBJECT_GRAPH_, with dots in the key
//     replaced by underscores (OBJECT_GRAPH_GRAPH_OBJECT_RADIUS=300)
//
// The merged result is checked with struct-tag validation before use.
package config

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/object-graph-mcp/internal/logger"
	"github.com/ironsheep/object-graph-mcp/internal/pipeline"
	"github.com/ironsheep/object-graph-mcp/internal/render"
	"github.com/ironsheep/object-graph-mcp/internal/segment"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "OBJECT_GRAPH"

// Config is the complete application configuration.
type Config struct {
	Segmentation Segmentation `mapstructure:"segmentation" yaml:"segmentation"`
	Graph        Graph        `mapstructure:"graph" yaml:"graph"`
	Render       Render       `mapstructure:"render" yaml:"render"`
	Logging      Logging      `mapstructure:"logging" yaml:"logging"`
}

// Segmentation configures binarisation and contour handling.
type Segmentation struct {
	Threshold         int     `mapstructure:"threshold" yaml:"threshold" validate:"gte=0,lte=254"`
	BlurSigma         float64 `mapstructure:"blur_sigma" yaml:"blur_sigma" validate:"gte=0,lte=50"`
	SkipDegenerate    bool    `mapstructure:"skip_degenerate" yaml:"skip_degenerate"`
	RequireComponents bool    `mapstructure:"require_components" yaml:"require_components"`
}

// Graph configures the two proximity radii.
type Graph struct {
	ComponentRadius float64 `mapstructure:"component_radius" yaml:"component_radius" validate:"gte=0"`
	ObjectRadius    float64 `mapstructure:"object_radius" yaml:"object_radius" validate:"gtefield=ComponentRadius"`
}

// Render configures overlay colours and sizes.
type Render struct {
	ComponentNodeColor string `mapstructure:"component_node_color" yaml:"component_node_color" validate:"color"`
	ComponentEdgeColor string `mapstructure:"component_edge_color" yaml:"component_edge_color" validate:"color"`
	ObjectNodeColor    string `mapstructure:"object_node_color" yaml:"object_node_color" validate:"color"`
	ObjectEdgeColor    string `mapstructure:"object_edge_color" yaml:"object_edge_color" validate:"color"`
	BoxColor           string `mapstructure:"box_color" yaml:"box_color" validate:"color"`
	BoxThickness       int    `mapstructure:"box_thickness" yaml:"box_thickness" validate:"gte=0,lte=20"`
	NodeRadius         int    `mapstructure:"node_radius" yaml:"node_radius" validate:"gte=0,lte=50"`
	Labels             bool   `mapstructure:"labels" yaml:"labels"`
}

// Logging configures the stderr logger.
type Logging struct {
	Level   string `mapstructure:"level" yaml:"level" validate:"loglevel"`
	Console bool   `mapstructure:"console" yaml:"console"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Segmentation: Segmentation{
			Threshold: 60,
			BlurSigma: 1.1,
		},
		Graph: Graph{
			ComponentRadius: 130,
			ObjectRadius:    260,
		},
		Render: Render{
			ComponentNodeColor: "blue",
			ComponentEdgeColor: "black",
			ObjectNodeColor:    "red",
			ObjectEdgeColor:    "white",
			BoxColor:           "green",
			BoxThickness:       2,
			NodeRadius:         6,
			Labels:             true,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// setDefaults registers every key so that environment overrides are seen
// by Unmarshal even when no file mentions the key.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("segmentation.threshold", d.Segmentation.Threshold)
	v.SetDefault("segmentation.blur_sigma", d.Segmentation.BlurSigma)
	v.SetDefault("segmentation.skip_degenerate", d.Segmentation.SkipDegenerate)
	v.SetDefault("segmentation.require_components", d.Segmentation.RequireComponents)

	v.SetDefault("graph.component_radius", d.Graph.ComponentRadius)
	v.SetDefault("graph.object_radius", d.Graph.ObjectRadius)

	v.SetDefault("render.component_node_color", d.Render.ComponentNodeColor)
	v.SetDefault("render.component_edge_color", d.Render.ComponentEdgeColor)
	v.SetDefault("render.object_node_color", d.Render.ObjectNodeColor)
	v.SetDefault("render.object_edge_color", d.Render.ObjectEdgeColor)
	v.SetDefault("render.box_color", d.Render.BoxColor)
	v.SetDefault("render.box_thickness", d.Render.BoxThickness)
	v.SetDefault("render.node_radius", d.Render.NodeRadius)
	v.SetDefault("render.labels", d.Render.Labels)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.console", d.Logging.Console)
}

// Load reads configuration from defaults, the YAML file at path (skipped
// when path is empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The log level keeps the shorter variable name used since the first release.
	if err := v.BindEnv("logging.level", logger.EnvLevel); err != nil {
		return nil, fmt.Errorf("bind %s: %w", logger.EnvLevel, err)
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newValidator returns a validator with the colour and log-level rules.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("color", func(fl validator.FieldLevel) bool {
		_, err := render.ParseColor(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		_, err := logger.ParseLevel(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks every field and reports all failures at once.
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describe(fe))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "color":
		return fmt.Sprintf("%s: %q is not a colour name or hex value", fe.Namespace(), fe.Value())
	case "loglevel":
		return fmt.Sprintf("%s: unknown log level %q", fe.Namespace(), fe.Value())
	case "gtefield":
		return fmt.Sprintf("%s must be at least %s", fe.Namespace(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value())
	}
}

// WriteYAML writes c in the file format Load accepts.
func (c *Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

// Segmenter returns the configured threshold segmenter.
func (c *Config) Segmenter() segment.Threshold {
	return segment.Threshold{Level: c.Segmentation.Threshold, BlurSigma: c.Segmentation.BlurSigma}
}

// PipelineOptions returns the configured pipeline tunables.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		ComponentRadius:   c.Graph.ComponentRadius,
		ObjectRadius:      c.Graph.ObjectRadius,
		SkipDegenerate:    c.Segmentation.SkipDegenerate,
		RequireComponents: c.Segmentation.RequireComponents,
	}
}

// RenderOptions returns the configured overlay style. Colours were checked
// by Validate; an unparsable one falls back to the default.
func (c *Config) RenderOptions() render.Options {
	def := render.DefaultOptions()
	return render.Options{
		Components: render.Style{
			NodeColor:  colorOr(c.Render.ComponentNodeColor, def.Components.NodeColor),
			EdgeColor:  colorOr(c.Render.ComponentEdgeColor, def.Components.EdgeColor),
			NodeRadius: c.Render.NodeRadius,
			Labels:     c.Render.Labels,
		},
		Objects: render.Style{
			NodeColor:  colorOr(c.Render.ObjectNodeColor, def.Objects.NodeColor),
			EdgeColor:  colorOr(c.Render.ObjectEdgeColor, def.Objects.EdgeColor),
			NodeRadius: c.Render.NodeRadius + 2,
			Labels:     c.Render.Labels,
		},
		BoxColor:     colorOr(c.Render.BoxColor, def.BoxColor),
		BoxThickness: c.Render.BoxThickness,
	}
}

func colorOr(s string, fallback color.Color) color.Color {
	if c, err := render.ParseColor(s); err == nil {
		return c
	}
	return fallback
}

// LoggerOptions returns the configured logger settings.
func (c *Config) LoggerOptions(service string) logger.Options {
	return logger.Options{Level: c.Logging.Level, Console: c.Logging.Console, Service: service}
}
