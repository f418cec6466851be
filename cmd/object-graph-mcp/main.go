package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/object-graph-mcp/internal/config"
	"github.com/ironsheep/object-graph-mcp/internal/imaging"
	"github.com/ironsheep/object-graph-mcp/internal/logger"
	"github.com/ironsheep/object-graph-mcp/internal/pipeline"
	"github.com/ironsheep/object-graph-mcp/internal/render"
	"github.com/ironsheep/object-graph-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// envConfig names the variable holding the default config file path.
const envConfig = "OBJECT_GRAPH_CONFIG"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("object-graph-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printUsage(os.Stdout)
			return
		case "analyze":
			os.Exit(runAnalyze(os.Args[2:], os.Stdout, os.Stderr))
		case "config":
			os.Exit(runConfig(os.Args[2:], os.Stdout, os.Stderr))
		}
	}

	cfg, err := config.Load(os.Getenv(envConfig))
	if err != nil {
		fmt.Fprintf(os.Stderr, "object-graph-mcp: %v\n", err)
		os.Exit(1)
	}
	log := logger.Stderr(cfg.LoggerOptions(server.Name))
	log.Debug().Str("build_time", BuildTime).Str("commit", GitCommit).Msgf("object-graph-mcp %s", Version)

	srv := server.New(cfg, log)
	if err := srv.Run(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "object-graph-mcp - MCP server that groups image blobs into objects")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  object-graph-mcp                      Serve MCP over stdin/stdout")
	fmt.Fprintln(w, "  object-graph-mcp analyze [flags] IMG  Print the object graph of IMG as JSON")
	fmt.Fprintln(w, "  object-graph-mcp config [-config F]   Print the effective configuration")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  --version, -v    Print version information")
	fmt.Fprintln(w, "  --help, -h       Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintf(w, "  %s=path.yaml    Configuration file\n", envConfig)
	fmt.Fprintf(w, "  %s=debug     Log level\n", logger.EnvLevel)
	fmt.Fprintf(w, "  %s_GRAPH_COMPONENT_RADIUS=90  Any config key, upper-cased\n", config.EnvPrefix)
}

// analyzeOutput is what analyze prints.
type analyzeOutput struct {
	*pipeline.Result
	ComponentAdjacency [][]float64 `json:"component_adjacency,omitempty"`
	ObjectAdjacency    [][]float64 `json:"object_adjacency,omitempty"`
	Overlay            string      `json:"overlay,omitempty"`
}

// runAnalyze implements the analyze subcommand and returns its exit code:
// 0 on success, 1 when the analysis fails, 2 on a usage error.
func runAnalyze(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", os.Getenv(envConfig), "YAML configuration file")
	componentRadius := fs.Float64("component-radius", 0, "component linking radius in pixels (default from config)")
	objectRadius := fs.Float64("object-radius", 0, "object linking radius in pixels (default from config)")
	skip := fs.Bool("skip-degenerate", false, "drop zero-area contours instead of failing")
	overlay := fs.String("render", "", "write an overlay image to this path")
	matrix := fs.Bool("matrix", false, "include adjacency matrices")
	pretty := fs.Bool("pretty", false, "indent the JSON output")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: object-graph-mcp analyze [flags] IMAGE")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "analyze: %v\n", err)
		return 1
	}
	log := logger.Stderr(cfg.LoggerOptions("analyze"))

	// Flags given on the command line replace the config as-is; the
	// builder rejects values it cannot use.
	opts := cfg.PipelineOptions()
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "component-radius":
			opts.ComponentRadius = *componentRadius
		case "object-radius":
			opts.ObjectRadius = *objectRadius
		}
	})
	if *skip {
		opts.SkipDegenerate = true
	}

	img, out, err := analyze(fs.Arg(0), cfg, opts, log)
	if err != nil {
		log.Error().Err(err).Str("path", fs.Arg(0)).Msg("analysis failed")
		return 1
	}

	if *overlay != "" {
		canvas := render.Compose(img, render.Scene{
			Components: out.ComponentGraph,
			Objects:    out.ObjectGraph,
			Boxes:      out.ComponentBounds(),
		}, cfg.RenderOptions())
		if err := imaging.Save(canvas, *overlay); err != nil {
			log.Error().Err(err).Msg("overlay failed")
			return 1
		}
		out.Overlay = *overlay
	}
	if *matrix {
		out.ComponentAdjacency = denseRows(out.ComponentGraph.AdjacencyMatrix())
		out.ObjectAdjacency = denseRows(out.ObjectGraph.AdjacencyMatrix())
	}

	enc := json.NewEncoder(stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(out); err != nil {
		log.Error().Err(err).Msg("failed to write result")
		return 1
	}
	return 0
}

func analyze(path string, cfg *config.Config, opts pipeline.Options, log zerolog.Logger) (image.Image, *analyzeOutput, error) {
	b, err := pipeline.New(opts, cfg.Segmenter(), log)
	if err != nil {
		return nil, nil, err
	}
	img, err := imaging.NewImageCache().Load(path)
	if err != nil {
		return nil, nil, err
	}
	res, err := b.Run(img)
	if err != nil {
		return nil, nil, err
	}
	return img, &analyzeOutput{Result: res}, nil
}

// denseRows copies a square matrix into nested slices.
func denseRows(m *mat.Dense) [][]float64 {
	if m == nil {
		return [][]float64{}
	}
	r, c := m.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = make([]float64, c)
		copy(rows[i], m.RawRowView(i))
	}
	return rows
}

func runConfig(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", os.Getenv(envConfig), "YAML configuration file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	if err := cfg.WriteYAML(stdout); err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	return 0
}
