// Package pipeline runs the full generate → autotile → render pipeline.
//
// The CLI and the HTTP server both go through a [Runner] so caching and
// output handling behave the same everywhere.
//
// # Stages
//
//  1. Generate: grow the project's region tree with [gen.Engine]
//  2. Autotile: match every section's adjacency mask with [tiles.Assign]
//  3. Layout: snapshot sections and regions into a [layout.Layout]
//  4. Render: produce JSON, DOT, SVG, PNG or PDF
//
// Layouts are cached by project hash and seed, artifacts by layout hash and
// render options.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, project, pipeline.Options{
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	wberrors "github.com/matzehuels/wrldbldr/pkg/errors"
	"github.com/matzehuels/wrldbldr/pkg/gen"
	"github.com/matzehuels/wrldbldr/pkg/layout"
	"github.com/matzehuels/wrldbldr/pkg/tiles"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// DefaultPNGScale is the zoom applied to PNG output.
const DefaultPNGScale = 2.0

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// ContentTypes maps output formats to MIME types.
var ContentTypes = map[string]string{
	FormatJSON: "application/json",
	FormatDOT:  "text/vnd.graphviz",
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
}

// Options configures a pipeline run. The project itself carries the
// generation settings.
type Options struct {
	// Seed overrides the project's seed when set.
	Seed *uint64 `json:"seed,omitempty"`

	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
	Regions  bool     `json:"regions,omitempty"`
	PNGScale float64  `json:"png_scale,omitempty"`

	// Refresh bypasses cached layouts and artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)

	// Observers are attached to the engine of every run. Batch runs share
	// them, so they must be safe for concurrent use. Setting any disables the
	// layout cache.
	Observers []gen.Observer `json:"-"`

	// Substrate receives the tile placements of freshly generated worlds.
	// Setting it disables the layout cache.
	Substrate tiles.Substrate `json:"-"`

	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Layout layout.Layout

	// ProjectHash and LayoutHash are the content hashes used for cache keys.
	ProjectHash string
	LayoutHash  string

	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Sections     int
	Regions      int
	Iterations   int
	Slices       int
	GenerateTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return wberrors.New(wberrors.ErrCodeInvalidInput,
			"invalid format: %q (must be one of: json, dot, svg, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list.
func ParseFormats(s string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	if err := ValidateFormats(out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetDefaults fills empty options.
func (o *Options) SetDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.PNGScale <= 0 {
		o.PNGScale = DefaultPNGScale
	}
}

// Validate checks the options after defaults have been applied.
func (o *Options) Validate() error {
	if err := ValidateFormats(o.Formats); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}
