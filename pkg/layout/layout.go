package layout

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	wberrors "github.com/matzehuels/wrldbldr/pkg/errors"
	"github.com/matzehuels/wrldbldr/pkg/tiles"
	"github.com/matzehuels/wrldbldr/pkg/world"
)

// =============================================================================
// Layout - Serialized World
// =============================================================================

// Layout is the serialization format of a finished generation run.
type Layout struct {
	RunID   string  `json:"run_id,omitempty"`
	Seed    uint64  `json:"seed"`
	Scale   float64 `json:"scale"`
	TileSet string  `json:"tileset,omitempty"`

	// Bounds of the section centers.
	MinX   float64 `json:"min_x"`
	MinY   float64 `json:"min_y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Sections []Section `json:"sections"`
	Regions  []Region  `json:"regions,omitempty"`
}

// Section is a placed section.
type Section struct {
	ID        uint64                      `json:"id"`
	X         float64                     `json:"x"`
	Y         float64                     `json:"y"`
	Flipped   bool                        `json:"flipped,omitempty"`
	Archetype world.Archetype             `json:"archetype"`
	Region    int64                       `json:"region,omitempty"` // 0 for unowned sections
	Adjacent  [world.NumDirections]uint64 `json:"adjacent"`
	Mask      int                         `json:"mask"`
	Tile      string                      `json:"tile,omitempty"`
	Rotation  float64                     `json:"rotation"`
}

// Region summarizes one region of the blueprint.
type Region struct {
	ID     int64  `json:"id"`
	Name   string `json:"name,omitempty"`
	Parent int64  `json:"parent,omitempty"`
	Target int    `json:"target"`
	Count  int    `json:"count"`
	Color  string `json:"color,omitempty"`
}

// Edge is an undirected link between two sections through a slot.
type Edge struct {
	From uint64          `json:"from"`
	To   uint64          `json:"to"`
	Slot world.Direction `json:"slot"`
}

// Meta carries the run metadata stamped onto a layout.
type Meta struct {
	RunID   string
	Seed    uint64
	TileSet string
}

// =============================================================================
// Building
// =============================================================================

// Build captures every live section of w and every region of bp. Placements
// are matched to sections by handle; sections without a placement are left
// untiled. bp may be nil.
func Build(w *world.World, bp *world.Blueprint, placements []tiles.Placement, meta Meta) Layout {
	byID := make(map[world.SectionID]tiles.Placement, len(placements))
	for _, p := range placements {
		byID[p.Section] = p
	}

	l := Layout{
		RunID:   meta.RunID,
		Seed:    meta.Seed,
		Scale:   w.Scale(),
		TileSet: meta.TileSet,
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, s := range w.Sections() {
		pos := s.Position()
		minX, maxX = min(minX, pos.X), max(maxX, pos.X)
		minY, maxY = min(minY, pos.Y), max(maxY, pos.Y)

		out := Section{
			ID:        uint64(s.ID()),
			X:         pos.X,
			Y:         pos.Y,
			Flipped:   s.Flipped(),
			Archetype: s.Archetype(),
			Region:    int64(s.Region()),
			Mask:      s.AdjacencyMask(),
		}
		for _, d := range world.Directions {
			out.Adjacent[d] = uint64(s.AdjacentID(d))
		}
		if p, ok := byID[s.ID()]; ok {
			out.Tile = p.Tile
			out.Rotation = p.Rotation
		}
		l.Sections = append(l.Sections, out)
	}
	if len(l.Sections) > 0 {
		l.MinX, l.MinY = minX, minY
		l.Width, l.Height = maxX-minX, maxY-minY
	}

	if bp != nil {
		for _, rg := range bp.Regions() {
			out := Region{
				ID:     int64(rg.ID()),
				Name:   rg.Name(),
				Target: rg.TargetSize(),
				Count:  rg.SectionCount(),
				Color:  rg.Color(),
			}
			if parent, ok := bp.Parent(rg.ID()); ok {
				out.Parent = int64(parent.ID())
			}
			l.Regions = append(l.Regions, out)
		}
	}
	return l
}

// =============================================================================
// Queries
// =============================================================================

// Section returns the section with the given handle.
func (l *Layout) Section(id uint64) (Section, bool) {
	for _, s := range l.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// Region returns the region with the given ID.
func (l *Layout) Region(id int64) (Region, bool) {
	for _, r := range l.Regions {
		if r.ID == id {
			return r, true
		}
	}
	return Region{}, false
}

// Edges returns every adjacency link once, from the lower handle to the
// higher, in section order.
func (l *Layout) Edges() []Edge {
	var edges []Edge
	for _, s := range l.Sections {
		for d, to := range s.Adjacent {
			if to != 0 && s.ID < to {
				edges = append(edges, Edge{From: s.ID, To: to, Slot: world.Direction(d)})
			}
		}
	}
	return edges
}

// TileCounts returns how many sections use each tile.
func (l *Layout) TileCounts() map[string]int {
	counts := make(map[string]int)
	for _, s := range l.Sections {
		if s.Tile != "" {
			counts[s.Tile]++
		}
	}
	return counts
}

// Validate checks that adjacency is symmetric, masks agree with adjacency,
// and no region exceeds its target.
func (l *Layout) Validate() error {
	index := make(map[uint64]Section, len(l.Sections))
	for _, s := range l.Sections {
		if s.ID == 0 {
			return wberrors.New(wberrors.ErrCodeInvalidFormat, "section with zero id")
		}
		if _, dup := index[s.ID]; dup {
			return wberrors.New(wberrors.ErrCodeInvalidFormat, "duplicate section id %d", s.ID)
		}
		index[s.ID] = s
	}

	for _, s := range l.Sections {
		mask := 0
		for d, to := range s.Adjacent {
			if to == 0 {
				continue
			}
			mask |= 1 << d
			other, ok := index[to]
			if !ok {
				return wberrors.New(wberrors.ErrCodeInvalidFormat,
					"section %d links to unknown section %d", s.ID, to)
			}
			if other.Adjacent[d] != s.ID {
				return wberrors.New(wberrors.ErrCodeInvalidFormat,
					"link %d -[%s]-> %d is not symmetric", s.ID, world.Direction(d), to)
			}
		}
		if mask != s.Mask {
			return wberrors.New(wberrors.ErrCodeInvalidFormat,
				"section %d mask %03b disagrees with adjacency %03b", s.ID, s.Mask, mask)
		}
	}

	for _, r := range l.Regions {
		if r.Count > r.Target {
			return wberrors.New(wberrors.ErrCodeInvalidFormat,
				"region %d holds %d sections over its target of %d", r.ID, r.Count, r.Target)
		}
	}
	return nil
}

// =============================================================================
// Serialization API
// =============================================================================

// Marshal serializes a Layout to pretty-printed JSON bytes.
func Marshal(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// Unmarshal deserializes and validates JSON bytes into a Layout.
func Unmarshal(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, wberrors.Wrap(wberrors.ErrCodeInvalidFormat, err, "unmarshal layout")
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// WriteFile writes a Layout to a JSON file.
func WriteFile(l Layout, path string) error {
	data, err := Marshal(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile reads a Layout from a JSON file.
func ReadFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Layout{}, wberrors.Wrap(wberrors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data)
}
