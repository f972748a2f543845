package world

import "fmt"

// SectionID is a weak handle to a section. The zero value means "no section".
// Handles are never reused within a [World], so a handle to a destroyed
// section keeps resolving to absent.
type SectionID uint64

// Section is a single node of the layout graph.
//
// The zero value is not usable - sections are created through a [World].
type Section struct {
	id        SectionID
	world     *World
	pos       Vec2
	flipped   bool
	archetype Archetype
	region    RegionID
	adj       [NumDirections]SectionID
}

// ID returns the section's handle.
func (s *Section) ID() SectionID { return s.id }

// World returns the world the section was created in.
func (s *Section) World() *World { return s.world }

// Position returns the section's center in world space.
func (s *Section) Position() Vec2 { return s.pos }

// Flipped reports whether the section is rotated by 180°.
func (s *Section) Flipped() bool { return s.flipped }

// Archetype returns the section's role tag.
func (s *Section) Archetype() Archetype { return s.archetype }

// SetArchetype changes the section's role tag.
func (s *Section) SetArchetype(a Archetype) { s.archetype = a }

// Region returns the ID of the region that owns the section, or 0 if the
// section was never accepted by a region.
func (s *Section) Region() RegionID { return s.region }

// InRegion reports whether r owns the section.
func (s *Section) InRegion(r *Region) bool {
	return r != nil && s.region != 0 && s.region == r.id
}

// Alive reports whether the section is still present in its world.
func (s *Section) Alive() bool {
	if s == nil || s.world == nil {
		return false
	}
	cur, ok := s.world.sections[s.id]
	return ok && cur == s
}

// Adjacent returns the neighbor stored in slot d. A slot whose neighbor has
// been destroyed reports (nil, false).
func (s *Section) Adjacent(d Direction) (*Section, bool) {
	if !d.Valid() || s.adj[d] == 0 {
		return nil, false
	}
	return s.world.Section(s.adj[d])
}

// AdjacentID returns the handle stored in slot d, or 0 when the slot is empty
// or its neighbor has been destroyed.
func (s *Section) AdjacentID(d Direction) SectionID {
	if n, ok := s.Adjacent(d); ok {
		return n.id
	}
	return 0
}

// SetAdjacent stores other in slot d. When reverse is true, s is also stored
// in other's slot d; the reverse call is made with reverse=false so the link
// terminates. Passing a nil other empties the slot.
//
// The same slot index is used on both ends: two linked sections always have
// opposite flip states, so slot d of one points back along slot d of the other.
func (s *Section) SetAdjacent(d Direction, other *Section, reverse bool) {
	if !d.Valid() {
		return
	}
	if other == nil {
		s.adj[d] = 0
		return
	}
	s.adj[d] = other.id
	if reverse {
		other.SetAdjacent(d, s, false)
	}
}

// FreeSlots returns every slot with no live neighbor, in slot order.
func (s *Section) FreeSlots() []Direction {
	var free []Direction
	for _, d := range Directions {
		if _, ok := s.Adjacent(d); !ok {
			free = append(free, d)
		}
	}
	return free
}

// AdjacencyMask returns a bitmask with bit d set iff slot d has a live
// neighbor.
func (s *Section) AdjacencyMask() int {
	mask := 0
	for _, d := range Directions {
		if _, ok := s.Adjacent(d); ok {
			mask |= 1 << d
		}
	}
	return mask
}

// NeighborPosition returns the center of the grid cell reached through slot d.
func (s *Section) NeighborPosition(d Direction) Vec2 {
	return s.pos.Add(s.world.DirectionOffset(d, s.flipped))
}

// AddAdjacent creates a new section with the opposite flip state in slot d and
// links the two in both directions. It does not check for collisions; callers
// query [World.OccupantAt] first.
func (s *Section) AddAdjacent(d Direction, a Archetype) (*Section, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("add adjacent: invalid direction %d", int(d))
	}
	adj, err := s.world.Create(s.NeighborPosition(d), !s.flipped, a)
	if err != nil {
		return nil, err
	}
	s.SetAdjacent(d, adj, true)
	return adj, nil
}

// IsAdjacentSpaceFree reports whether no section occupies the position
// reached through slot d.
func (s *Section) IsAdjacentSpaceFree(d Direction) bool {
	_, occupied := s.world.OccupantAt(s.NeighborPosition(d))
	return !occupied
}

// HasFreeAdjacentSpace reports whether growth from s could still place a new
// section. Only the even-indexed slots (Right and Down) are scanned.
func (s *Section) HasFreeAdjacentSpace() bool {
	for i := 0; i < NumDirections; i += 2 {
		if s.IsAdjacentSpaceFree(Direction(i)) {
			return true
		}
	}
	return false
}

func (s *Section) String() string {
	return fmt.Sprintf("section %d %s at %s flipped=%t region=%d", s.id, s.archetype, s.pos, s.flipped, s.region)
}
