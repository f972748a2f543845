package world

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	// ErrSectionLimit is returned by [World.Create] when the world already
	// holds its maximum number of sections.
	ErrSectionLimit = errors.New("section limit reached")

	// ErrNilRegion is returned by [World.CreateIn] when no region is given.
	ErrNilRegion = errors.New("region must not be nil")

	// ErrAsymmetricLink is returned by [World.Validate] when a section's slot
	// references a neighbor that does not link back through the same slot.
	ErrAsymmetricLink = errors.New("asymmetric adjacency link")

	// ErrFlipMismatch is returned by [World.Validate] when two linked sections
	// share a flip state.
	ErrFlipMismatch = errors.New("linked sections share a flip state")
)

// DefaultMaxSections bounds the number of live sections in a world.
const DefaultMaxSections = 1 << 20

// World owns the live sections of a layout and the spatial index over them.
//
// The zero value is not usable - use New. A World is not safe for concurrent
// use; a single generation engine owns it.
type World struct {
	scale       float64
	maxSections int
	nextID      SectionID
	sections    map[SectionID]*Section
	index       *SpatialIndex
}

// Option configures a World.
type Option func(*World)

// WithMaxSections caps the number of live sections. Non-positive values keep
// the default.
func WithMaxSections(n int) Option {
	return func(w *World) {
		if n > 0 {
			w.maxSections = n
		}
	}
}

// New creates an empty world whose sections are spaced scale units apart.
// Non-positive scales fall back to 1.
func New(scale float64, opts ...Option) *World {
	if scale <= 0 {
		scale = 1
	}
	w := &World{
		scale:       scale,
		maxSections: DefaultMaxSections,
		sections:    make(map[SectionID]*Section),
		index:       NewSpatialIndex(scale),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Scale returns the uniform section scale.
func (w *World) Scale() float64 { return w.scale }

// DirectionOffset returns the displacement from a section with the given flip
// state to its neighbor through slot d.
func (w *World) DirectionOffset(d Direction, flipped bool) Vec2 {
	return Vec2{X: 1}.Rotate(d.Angle(flipped)).Scale(w.scale)
}

// Create allocates a section at pos. It fails only when the world is full.
func (w *World) Create(pos Vec2, flipped bool, a Archetype) (*Section, error) {
	if len(w.sections) >= w.maxSections {
		return nil, fmt.Errorf("create section at %s: %w (%d)", pos, ErrSectionLimit, w.maxSections)
	}
	w.nextID++
	s := &Section{
		id:        w.nextID,
		world:     w,
		pos:       pos,
		flipped:   flipped,
		archetype: a,
	}
	w.sections[s.id] = s
	w.index.Insert(s.id, pos)
	return s, nil
}

// CreateIn creates a section and offers it to r. When r is already full the
// section still exists but belongs to no region; added reports which case
// occurred.
func (w *World) CreateIn(r *Region, pos Vec2, flipped bool, a Archetype) (s *Section, added bool, err error) {
	if r == nil {
		return nil, false, ErrNilRegion
	}
	s, err = w.Create(pos, flipped, a)
	if err != nil {
		return nil, false, err
	}
	return s, r.AddSection(s), nil
}

// Destroy removes the section with the given handle. Handles held elsewhere
// resolve to absent afterwards. It reports whether a section was removed.
func (w *World) Destroy(id SectionID) bool {
	if _, ok := w.sections[id]; !ok {
		return false
	}
	delete(w.sections, id)
	w.index.Remove(id)
	return true
}

// Section resolves a handle.
func (w *World) Section(id SectionID) (*Section, bool) {
	if id == 0 {
		return nil, false
	}
	s, ok := w.sections[id]
	return s, ok
}

// OccupantAt returns the section occupying pos, if any.
func (w *World) OccupantAt(pos Vec2) (*Section, bool) {
	id, ok := w.index.Query(pos)
	if !ok {
		return nil, false
	}
	return w.Section(id)
}

// Sections returns every live section in creation order.
func (w *World) Sections() []*Section {
	ids := slices.Sorted(maps.Keys(w.sections))
	out := make([]*Section, len(ids))
	for i, id := range ids {
		out[i] = w.sections[id]
	}
	return out
}

// Len returns the number of live sections.
func (w *World) Len() int { return len(w.sections) }

// DestroyOrphans removes every section that no region accepted and returns
// how many were removed.
func (w *World) DestroyOrphans() int {
	n := 0
	for id, s := range w.sections {
		if s.region == 0 {
			w.Destroy(id)
			n++
		}
	}
	return n
}

// Reset destroys every section. Handle numbering continues, so handles from
// before the reset stay invalid.
func (w *World) Reset() {
	clear(w.sections)
	w.index.Clear()
}

// Validate checks that every live link is symmetric and joins sections of
// opposite flip state.
func (w *World) Validate() error {
	for _, s := range w.Sections() {
		for _, d := range Directions {
			o, ok := s.Adjacent(d)
			if !ok {
				continue
			}
			if back, ok := o.Adjacent(d); !ok || back != s {
				return fmt.Errorf("%w: %d -[%s]-> %d", ErrAsymmetricLink, s.id, d, o.id)
			}
			if o.flipped == s.flipped {
				return fmt.Errorf("%w: %d and %d", ErrFlipMismatch, s.id, o.id)
			}
		}
	}
	return nil
}
