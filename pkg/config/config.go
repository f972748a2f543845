// Package config loads generation projects from TOML, YAML or JSON.
//
// A project bundles everything a run needs:
//
//	[generation]
//	seed = 7
//	timeout = "50ms"
//
//	[blueprint]
//	name = "world"
//	target = 10
//
//	[[blueprint.children]]
//	name = "forest"
//	target = 40
//	color = "#22aa22"
//
//	[tileset]
//	name = "default"
//
//	[[tileset.tiles]]
//	name = "Block"
//	check_vector = 0
//	rotations = 1
//
// Missing sections fall back to defaults: a single root region of
// [world.DefaultTargetSize] sections and the [tiles.Default] tile set.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	wberrors "github.com/matzehuels/wrldbldr/pkg/errors"
	"github.com/matzehuels/wrldbldr/pkg/gen"
	"github.com/matzehuels/wrldbldr/pkg/tiles"
	"github.com/matzehuels/wrldbldr/pkg/world"
)

// MaxDepth bounds the nesting of region specs.
const MaxDepth = 64

// Format identifies a project file encoding.
type Format string

// Supported formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Project is a complete generation input.
type Project struct {
	Generation Generation     `json:"generation" toml:"generation" yaml:"generation"`
	Blueprint  *RegionSpec    `json:"blueprint,omitempty" toml:"blueprint,omitempty" yaml:"blueprint,omitempty"`
	TileSet    *tiles.TileSet `json:"tileset,omitempty" toml:"tileset,omitempty" yaml:"tileset,omitempty"`
}

// Generation holds engine settings. Zero fields take the engine defaults.
type Generation struct {
	Scale       float64 `json:"scale,omitempty" toml:"scale,omitempty" yaml:"scale,omitempty"`
	Timeout     string  `json:"timeout,omitempty" toml:"timeout,omitempty" yaml:"timeout,omitempty"`
	Seed        *uint64 `json:"seed,omitempty" toml:"seed,omitempty" yaml:"seed,omitempty"`
	StallLimit  int     `json:"stall_limit,omitempty" toml:"stall_limit,omitempty" yaml:"stall_limit,omitempty"`
	MaxSections int     `json:"max_sections,omitempty" toml:"max_sections,omitempty" yaml:"max_sections,omitempty"`
}

// RegionSpec describes one node of the region tree.
type RegionSpec struct {
	Name     string       `json:"name,omitempty" toml:"name,omitempty" yaml:"name,omitempty"`
	Target   int          `json:"target" toml:"target" yaml:"target"`
	Color    string       `json:"color,omitempty" toml:"color,omitempty" yaml:"color,omitempty"`
	Children []RegionSpec `json:"children,omitempty" toml:"children,omitempty" yaml:"children,omitempty"`
}

// Default returns a project with every section at its default.
func Default() *Project {
	p := &Project{}
	p.SetDefaults()
	return p
}

// Load reads a project file, picking the decoder from the file extension.
func Load(path string) (*Project, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, wberrors.Wrap(wberrors.ErrCodeFileNotFound, err, "project file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}
	return Parse(data, format)
}

// Parse decodes a project and fills defaults.
func Parse(data []byte, format Format) (*Project, error) {
	var p Project
	var err error
	switch format {
	case FormatTOML:
		_, err = toml.Decode(string(data), &p)
	case FormatYAML:
		err = yaml.Unmarshal(data, &p)
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&p)
	default:
		return nil, wberrors.New(wberrors.ErrCodeUnsupported, "unsupported project format %q", format)
	}
	if err != nil {
		return nil, wberrors.Wrap(wberrors.ErrCodeInvalidFormat, err, "failed to parse %s project", format)
	}
	p.SetDefaults()
	return &p, nil
}

// FormatFromPath maps a file extension to a Format.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", wberrors.New(wberrors.ErrCodeUnsupported, "unsupported project file %q (want .toml, .yaml or .json)", path)
}

// FormatFromContentType maps a MIME type to a Format. An empty content type
// is treated as JSON.
func FormatFromContentType(ct string) (Format, error) {
	if ct == "" {
		return FormatJSON, nil
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", wberrors.Wrap(wberrors.ErrCodeInvalidInput, err, "bad content type")
	}
	switch mt {
	case "application/json":
		return FormatJSON, nil
	case "application/toml", "text/toml":
		return FormatTOML, nil
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return FormatYAML, nil
	}
	return "", wberrors.New(wberrors.ErrCodeUnsupported, "unsupported content type %q", mt)
}

// SetDefaults fills missing sections and zero generation settings.
func (p *Project) SetDefaults() {
	g := &p.Generation
	if g.Scale == 0 {
		g.Scale = gen.DefaultScale
	}
	if g.Timeout == "" {
		g.Timeout = gen.DefaultTimeout.String()
	}
	if g.Seed == nil {
		seed := uint64(gen.DefaultSeed)
		g.Seed = &seed
	}
	if g.StallLimit == 0 {
		g.StallLimit = gen.DefaultStallLimit
	}
	if g.MaxSections == 0 {
		g.MaxSections = world.DefaultMaxSections
	}
	if p.Blueprint == nil {
		p.Blueprint = &RegionSpec{Target: world.DefaultTargetSize}
	}
	if p.TileSet == nil || len(p.TileSet.Tiles) == 0 {
		name := tiles.DefaultName
		if p.TileSet != nil && p.TileSet.Name != "" {
			name = p.TileSet.Name
		}
		p.TileSet = tiles.Default()
		p.TileSet.Name = name
	}
}

// WithSeed returns a shallow copy of p using seed.
func (p *Project) WithSeed(seed uint64) *Project {
	cp := *p
	cp.Generation.Seed = &seed
	return &cp
}

// Seed returns the configured seed, or the default when unset.
func (p *Project) Seed() uint64 {
	if p.Generation.Seed == nil {
		return gen.DefaultSeed
	}
	return *p.Generation.Seed
}

// Config converts the generation section into an engine configuration.
func (p *Project) Config() (gen.Config, error) {
	g := p.Generation
	cfg := gen.Config{
		Scale:       g.Scale,
		Seed:        p.Seed(),
		StallLimit:  g.StallLimit,
		MaxSections: g.MaxSections,
	}
	if g.Timeout != "" {
		d, err := time.ParseDuration(g.Timeout)
		if err != nil {
			return gen.Config{}, wberrors.Wrap(wberrors.ErrCodeInvalidInput, err, "invalid timeout %q", g.Timeout)
		}
		cfg.Timeout = d
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return gen.Config{}, err
	}
	return cfg, nil
}

// NewBlueprint builds a fresh region tree. Every call returns new regions so
// concurrent runs never share a blueprint.
func (p *Project) NewBlueprint() (*world.Blueprint, error) {
	spec := p.Blueprint
	if spec == nil {
		spec = &RegionSpec{Target: world.DefaultTargetSize}
	}
	limit := p.Generation.MaxSections
	if limit <= 0 {
		limit = world.DefaultMaxSections
	}
	limit = min(limit, gen.MaxSectionsLimit)
	root, total, err := spec.build("blueprint", 0, limit)
	if err != nil {
		return nil, err
	}
	if total > limit {
		return nil, wberrors.New(wberrors.ErrCodeInvalidBlueprint,
			"blueprint needs %d sections in total, more than max_sections %d", total, limit)
	}
	return world.NewBlueprint(root), nil
}

// Build returns the engine configuration, a fresh blueprint and the
// validated tile set.
func (p *Project) Build() (gen.Config, *world.Blueprint, *tiles.TileSet, error) {
	cfg, err := p.Config()
	if err != nil {
		return gen.Config{}, nil, nil, err
	}
	bp, err := p.NewBlueprint()
	if err != nil {
		return gen.Config{}, nil, nil, err
	}
	ts := p.TileSet
	if ts == nil {
		ts = tiles.Default()
	}
	if err := ts.Validate(); err != nil {
		return gen.Config{}, nil, nil, err
	}
	return cfg, bp, ts, nil
}

// Validate checks the whole project without keeping the built values.
func (p *Project) Validate() error {
	_, _, _, err := p.Build()
	return err
}

// build returns the region for s and the total target of its subtree. The
// total saturates just above limit.
func (s RegionSpec) build(path string, depth, limit int) (*world.Region, int, error) {
	if depth >= MaxDepth {
		return nil, 0, wberrors.New(wberrors.ErrCodeInvalidBlueprint, "%s: regions nested deeper than %d", path, MaxDepth)
	}
	if s.Target < 0 {
		return nil, 0, wberrors.New(wberrors.ErrCodeInvalidBlueprint, "%s: target must not be negative, got %d", path, s.Target)
	}
	if s.Target > limit {
		return nil, 0, wberrors.New(wberrors.ErrCodeInvalidBlueprint, "%s: target %d exceeds max_sections %d", path, s.Target, limit)
	}
	if err := wberrors.ValidateRegionName(s.Name); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}
	if err := wberrors.ValidateColor(s.Color); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}

	total := s.Target
	children := make([]*world.Region, 0, len(s.Children))
	for i, c := range s.Children {
		child, n, err := c.build(fmt.Sprintf("%s.children[%d]", path, i), depth+1, limit)
		if err != nil {
			return nil, 0, err
		}
		total = min(total+n, limit+1)
		children = append(children, child)
	}

	r := world.NewRegion(s.Target, children...)
	if s.Name != "" {
		r.SetName(s.Name)
	}
	if s.Color != "" {
		r.SetColor(s.Color)
	}
	return r, total, nil
}
