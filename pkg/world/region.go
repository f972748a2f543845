package world

import (
	"errors"
	"sync/atomic"
)

// ErrRegionFull is returned when a region has already reached its target size.
var ErrRegionFull = errors.New("region is full")

// RegionID identifies a region. IDs are unique within a process and never 0.
type RegionID int64

var regionSeq atomic.Int64

// DefaultRegionColor is the display color given to new regions.
const DefaultRegionColor = "#ffffff80"

// Region is a quota-bounded group of sections with an ordered list of child
// regions.
//
// The list of owned sections never grows beyond the target size. Children are
// fixed at creation; nil children are allowed and skipped everywhere.
type Region struct {
	id       RegionID
	name     string
	color    string
	target   int
	sections []SectionID
	children []*Region
}

// regionPrealloc caps the initial capacity of a region's section list.
const regionPrealloc = 64

// NewRegion creates a region with the given target section count and child
// regions. Negative targets are treated as 0.
func NewRegion(target int, children ...*Region) *Region {
	target = max(target, 0)
	return &Region{
		id:       RegionID(regionSeq.Add(1)),
		color:    DefaultRegionColor,
		target:   target,
		sections: make([]SectionID, 0, min(target, regionPrealloc)),
		children: children,
	}
}

// ID returns the region's identifier.
func (r *Region) ID() RegionID { return r.id }

// Name returns the region's display name.
func (r *Region) Name() string { return r.name }

// SetName sets the region's display name.
func (r *Region) SetName(name string) { r.name = name }

// Color returns the region's display color tag.
func (r *Region) Color() string { return r.color }

// SetColor sets the region's display color tag.
func (r *Region) SetColor(c string) { r.color = c }

// TargetSize returns the number of sections the region must own.
func (r *Region) TargetSize() int { return r.target }

// SectionCount returns the number of sections the region currently owns.
func (r *Region) SectionCount() int { return len(r.sections) }

// Full reports whether the region has reached its target size.
func (r *Region) Full() bool { return len(r.sections) >= r.target }

// Section returns the handle of the i-th owned section.
func (r *Region) Section(i int) SectionID { return r.sections[i] }

// Sections returns a copy of the owned section handles in insertion order.
func (r *Region) Sections() []SectionID {
	out := make([]SectionID, len(r.sections))
	copy(out, r.sections)
	return out
}

// Last returns the most recently added section handle, or 0 if the region is
// empty.
func (r *Region) Last() SectionID {
	if len(r.sections) == 0 {
		return 0
	}
	return r.sections[len(r.sections)-1]
}

// ChildCount returns the number of child slots, including nil ones.
func (r *Region) ChildCount() int { return len(r.children) }

// Child returns the i-th child region, which may be nil.
func (r *Region) Child(i int) *Region { return r.children[i] }

// Children returns the child regions in order, including nil entries.
func (r *Region) Children() []*Region { return r.children }

// AddSection appends s to the region and records the region on s. It fails
// without mutating anything when the region is full or s already belongs to
// a region.
func (r *Region) AddSection(s *Section) bool {
	if s == nil || r.Full() || s.region != 0 {
		return false
	}
	r.sections = append(r.sections, s.id)
	s.region = r.id
	return true
}

// Clear destroys every section owned by r and its descendants in w and
// resets their counts. A nil w only resets the counts.
func (r *Region) Clear(w *World) {
	for _, id := range r.sections {
		if w != nil {
			w.Destroy(id)
		}
	}
	r.sections = r.sections[:0]

	for _, c := range r.children {
		if c != nil {
			c.Clear(w)
		}
	}
}

// FullTargetSize returns the target size of r plus all of its descendants.
// The sum is recomputed on every call.
func (r *Region) FullTargetSize() int {
	n := r.target
	for _, c := range r.children {
		if c != nil {
			n += c.FullTargetSize()
		}
	}
	return n
}

// FullSectionCount returns the section count of r plus all of its
// descendants. The sum is recomputed on every call.
func (r *Region) FullSectionCount() int {
	n := len(r.sections)
	for _, c := range r.children {
		if c != nil {
			n += c.FullSectionCount()
		}
	}
	return n
}

// Walk visits r and its descendants in pre-order: the region itself, then
// each non-nil child in order.
func (r *Region) Walk(fn func(*Region)) {
	if r == nil {
		return
	}
	fn(r)
	for _, c := range r.children {
		c.Walk(fn)
	}
}

// FindFreeSection walks the owned sections backwards from index start and
// returns the newest one that still reports free adjacent space, together
// with its index. It returns (nil, -1) when none does.
func (r *Region) FindFreeSection(w *World, start int) (*Section, int) {
	start = min(start, len(r.sections)-1)
	for i := start; i >= 0; i-- {
		s, ok := w.Section(r.sections[i])
		if ok && s.HasFreeAdjacentSpace() {
			return s, i
		}
	}
	return nil, -1
}
