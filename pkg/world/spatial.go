package world

import "math"

// OccupancyRadius is the fraction of the section scale within which a point
// is considered to be occupied by a section. Neighboring section centers are
// exactly one scale unit apart, so any radius below 0.5 separates them.
const OccupancyRadius = 0.45

// cellKey identifies a bucket of the spatial hash.
type cellKey struct {
	X int
	Y int
}

// SpatialIndex answers "which section occupies this point" queries.
//
// Sections are bucketed into square cells one scale unit wide. A query
// inspects the bucket containing the point and its eight neighbors and
// returns the closest section whose center lies within the occupancy radius.
type SpatialIndex struct {
	cellSize    float64
	invCellSize float64
	radius      float64
	cells       map[cellKey][]SectionID
	positions   map[SectionID]Vec2
}

// NewSpatialIndex creates an index for sections spaced scale units apart.
// Non-positive scales fall back to 1.
func NewSpatialIndex(scale float64) *SpatialIndex {
	if scale <= 0 {
		scale = 1
	}
	return &SpatialIndex{
		cellSize:    scale,
		invCellSize: 1 / scale,
		radius:      scale * OccupancyRadius,
		cells:       make(map[cellKey][]SectionID),
		positions:   make(map[SectionID]Vec2),
	}
}

func (idx *SpatialIndex) key(p Vec2) cellKey {
	return cellKey{
		X: int(math.Floor(p.X * idx.invCellSize)),
		Y: int(math.Floor(p.Y * idx.invCellSize)),
	}
}

// Insert records id at position p. Re-inserting an id moves it.
func (idx *SpatialIndex) Insert(id SectionID, p Vec2) {
	if _, ok := idx.positions[id]; ok {
		idx.Remove(id)
	}
	k := idx.key(p)
	idx.cells[k] = append(idx.cells[k], id)
	idx.positions[id] = p
}

// Remove forgets id. Unknown ids are ignored.
func (idx *SpatialIndex) Remove(id SectionID) {
	p, ok := idx.positions[id]
	if !ok {
		return
	}
	delete(idx.positions, id)

	k := idx.key(p)
	bucket := idx.cells[k]
	for i, other := range bucket {
		if other == id {
			bucket[i] = bucket[len(bucket)-1]
			bucket = bucket[:len(bucket)-1]
			break
		}
	}
	if len(bucket) == 0 {
		delete(idx.cells, k)
		return
	}
	idx.cells[k] = bucket
}

// Query returns the section occupying p, if any.
func (idx *SpatialIndex) Query(p Vec2) (SectionID, bool) {
	center := idx.key(p)
	best, bestDist := SectionID(0), math.Inf(1)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for _, id := range idx.cells[cellKey{center.X + dx, center.Y + dy}] {
				d := idx.positions[id].Dist(p)
				if d <= idx.radius && (d < bestDist || (d == bestDist && id < best)) {
					best, bestDist = id, d
				}
			}
		}
	}
	return best, best != 0
}

// Len returns the number of indexed sections.
func (idx *SpatialIndex) Len() int { return len(idx.positions) }

// Clear removes every entry.
func (idx *SpatialIndex) Clear() {
	clear(idx.cells)
	clear(idx.positions)
}
