package tiles

import (
	"context"
	"fmt"

	"github.com/matzehuels/wrldbldr/pkg/world"
)

// Placement is the tile chosen for one section.
type Placement struct {
	Section  world.SectionID `json:"section"`
	Position world.Vec2      `json:"position"`
	Flipped  bool            `json:"flipped"`
	Mask     int             `json:"mask"`
	Tile     string          `json:"tile"`
	Visual   string          `json:"visual"`
	Rotation float64         `json:"rotation"`
}

// Substrate instantiates tiles in a host scene.
type Substrate interface {
	CreateVisual(ctx context.Context, visual string, rotation float64, pos world.Vec2, flipped bool) error
}

// Assign matches every live section of w against ts, in creation order.
// It stops at the first mask the tile set cannot serve.
func Assign(w *world.World, ts *TileSet) ([]Placement, error) {
	sections := w.Sections()
	out := make([]Placement, 0, len(sections))
	for _, s := range sections {
		mask := s.AdjacencyMask()
		m, err := ts.Match(mask)
		if err != nil {
			return nil, fmt.Errorf("autotile section %d: %w", s.ID(), err)
		}
		out = append(out, Placement{
			Section:  s.ID(),
			Position: s.Position(),
			Flipped:  s.Flipped(),
			Mask:     mask,
			Tile:     m.Tile.Name,
			Visual:   m.Tile.VisualHandle(),
			Rotation: m.Degrees,
		})
	}
	return out, nil
}

// Apply hands every placement to sub in order.
func Apply(ctx context.Context, sub Substrate, placements []Placement) error {
	for _, p := range placements {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sub.CreateVisual(ctx, p.Visual, p.Rotation, p.Position, p.Flipped); err != nil {
			return fmt.Errorf("create visual for section %d: %w", p.Section, err)
		}
	}
	return nil
}
