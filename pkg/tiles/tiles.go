// Package tiles maps section adjacency masks to rotated tiles.
//
// A [TileSet] is an ordered list of tile definitions. Each tile carries a
// check vector: the set of adjacency slots that must be occupied for the tile
// to fit. Matching walks the definitions from last to first, so later
// definitions take priority, and tries every declared rotation of each check
// vector. The first tile whose rotated check vector is a subset of the mask
// wins; rotation step r corresponds to 120*r degrees.
//
//	ts := tiles.Default()
//	m, err := ts.Match(0b011)
//	// m.Tile.Name == "Corner", m.Degrees == 0
//
// A mask that no definition matches is a configuration error reported as a
// MaskError from the wrldbldr errors package.
package tiles

import (
	"slices"
	"strings"

	wberrors "github.com/matzehuels/wrldbldr/pkg/errors"
	"github.com/matzehuels/wrldbldr/pkg/world"
)

const (
	// BitWidth is the width of a check vector: one bit per adjacency slot.
	BitWidth = world.NumDirections

	// DegreesPerStep is the visual rotation of one check-vector rotation step.
	DegreesPerStep = 360 / BitWidth

	// DefaultName is the name of the tile set returned by [Default].
	DefaultName = "default"
)

// Tile is a single tile definition.
type Tile struct {
	// Name identifies the tile in listings and layouts.
	Name string `json:"name" toml:"name" yaml:"name"`

	// CheckVector holds the adjacency bits the tile requires.
	CheckVector int `json:"check_vector" toml:"check_vector" yaml:"check_vector"`

	// Rotations is the number of distinct rotation states to try, 1 to BitWidth.
	Rotations int `json:"rotations" toml:"rotations" yaml:"rotations"`

	// Visual is an opaque handle passed to the substrate that instantiates
	// the tile. It defaults to Name.
	Visual string `json:"visual,omitempty" toml:"visual,omitempty" yaml:"visual,omitempty"`
}

// VisualHandle returns Visual, or Name when no visual is set.
func (t Tile) VisualHandle() string {
	if t.Visual != "" {
		return t.Visual
	}
	return t.Name
}

// TileSet is an ordered list of tiles. Definition order is priority order:
// later tiles win.
type TileSet struct {
	Name  string `json:"name" toml:"name" yaml:"name"`
	Tiles []Tile `json:"tiles" toml:"tiles" yaml:"tiles"`
}

// Match is the result of a successful lookup.
type Match struct {
	Tile     Tile    `json:"tile"`
	Index    int     `json:"index"`
	Rotation int     `json:"rotation"`
	Degrees  float64 `json:"degrees"`
}

// Slots returns the adjacency slots the matched tile requires in its matched
// rotation, in slot order.
func (m Match) Slots() []world.Direction {
	var out []world.Direction
	for _, d := range world.Directions {
		if m.Tile.CheckVector&(1<<d) != 0 {
			out = append(out, d.Offset(m.Rotation))
		}
	}
	slices.Sort(out)
	return out
}

// Default returns the built-in tile set covering every 3-bit mask:
// Block (no neighbors required), Wall, Corner and Space (all three slots).
func Default() *TileSet {
	ts := &TileSet{}
	ts.Reset()
	return ts
}

// Reset replaces the tile set's contents with the built-in definitions.
func (ts *TileSet) Reset() {
	ts.Name = DefaultName
	ts.Tiles = []Tile{
		{Name: "Block", CheckVector: 0x0, Rotations: 1},
		{Name: "Wall", CheckVector: 0x1, Rotations: 3},
		{Name: "Corner", CheckVector: 0x3, Rotations: 3},
		{Name: "Space", CheckVector: 0x7, Rotations: 1},
	}
}

// RotateLeft rotates v left by amount bits within a field of width bits.
// Rotating by width returns v unchanged.
func RotateLeft(v, amount, width int) int {
	if width <= 0 {
		return 0
	}
	mask := (1 << width) - 1
	amount %= width
	if amount < 0 {
		amount += width
	}
	if amount == 0 {
		return v & mask
	}
	return (v<<amount | v>>(width-amount)) & mask
}

// Match returns the highest-priority tile whose check vector, in some
// declared rotation, is a subset of mask.
func (ts *TileSet) Match(mask int) (Match, error) {
	for i := len(ts.Tiles) - 1; i >= 0; i-- {
		t := ts.Tiles[i]
		cv := t.CheckVector
		for rot := 0; rot < t.Rotations; rot++ {
			if cv&mask == cv {
				return Match{
					Tile:     t,
					Index:    i,
					Rotation: rot,
					Degrees:  float64(DegreesPerStep * rot),
				}, nil
			}
			cv = RotateLeft(cv, 1, BitWidth)
		}
	}
	return Match{}, &wberrors.MaskError{Mask: mask, TileSet: ts.Name}
}

// Coverage returns every mask in the 3-bit space that no tile matches, in
// ascending order. A nil result means the set is complete.
func (ts *TileSet) Coverage() []int {
	var missing []int
	for mask := 0; mask < 1<<BitWidth; mask++ {
		if _, err := ts.Match(mask); err != nil {
			missing = append(missing, mask)
		}
	}
	return missing
}

// Validate checks every definition and that the set covers every reachable
// mask.
func (ts *TileSet) Validate() error {
	if len(ts.Tiles) == 0 {
		return wberrors.New(wberrors.ErrCodeInvalidTileSet, "tile set %q has no tiles", ts.Name)
	}
	seen := make(map[string]bool, len(ts.Tiles))
	for i, t := range ts.Tiles {
		name := strings.TrimSpace(t.Name)
		switch {
		case name == "":
			return wberrors.New(wberrors.ErrCodeInvalidTileSet, "tile %d has no name", i)
		case seen[name]:
			return wberrors.New(wberrors.ErrCodeInvalidTileSet, "duplicate tile name %q", name)
		case t.CheckVector < 0 || t.CheckVector >= 1<<BitWidth:
			return wberrors.New(wberrors.ErrCodeInvalidTileSet,
				"tile %q: check vector %#x exceeds %d bits", name, t.CheckVector, BitWidth)
		case t.Rotations < 1 || t.Rotations > BitWidth:
			return wberrors.New(wberrors.ErrCodeInvalidTileSet,
				"tile %q: rotations must be between 1 and %d, got %d", name, BitWidth, t.Rotations)
		}
		seen[name] = true
	}
	if missing := ts.Coverage(); len(missing) > 0 {
		return wberrors.Wrap(wberrors.ErrCodeInvalidTileSet,
			&wberrors.MaskError{Mask: missing[0], TileSet: ts.Name},
			"tile set %q leaves %d of %d masks unmatched", ts.Name, len(missing), 1<<BitWidth)
	}
	return nil
}

// Lookup returns the tile with the given name.
func (ts *TileSet) Lookup(name string) (Tile, bool) {
	for _, t := range ts.Tiles {
		if t.Name == name {
			return t, true
		}
	}
	return Tile{}, false
}
