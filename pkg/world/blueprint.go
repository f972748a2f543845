package world

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// DefaultTargetSize is the target of the root region in [DefaultBlueprint].
const DefaultTargetSize = 30

var (
	// ErrNoRoot is returned by [Blueprint.Validate] when the blueprint has no
	// root region.
	ErrNoRoot = errors.New("blueprint has no root region")

	// ErrSharedRegion is returned by [Blueprint.Validate] when one region is
	// reachable through more than one parent.
	ErrSharedRegion = errors.New("region appears more than once in the tree")
)

// Blueprint is the authored structural input of a generation run: a root
// region and its implicit tree of descendants.
//
// A blueprint may only take part in one run at a time; see [Blueprint.Acquire].
type Blueprint struct {
	root   *Region
	active atomic.Bool
}

// NewBlueprint creates a blueprint rooted at root.
func NewBlueprint(root *Region) *Blueprint {
	return &Blueprint{root: root}
}

// DefaultBlueprint returns a blueprint with a single root region of
// [DefaultTargetSize] sections.
func DefaultBlueprint() *Blueprint {
	return NewBlueprint(NewRegion(DefaultTargetSize))
}

// Root returns the root region.
func (b *Blueprint) Root() *Region { return b.root }

// Regions returns every region in pre-order.
func (b *Blueprint) Regions() []*Region {
	var out []*Region
	b.root.Walk(func(r *Region) { out = append(out, r) })
	return out
}

// Region looks up a region by ID.
func (b *Blueprint) Region(id RegionID) (*Region, bool) {
	var found *Region
	b.root.Walk(func(r *Region) {
		if found == nil && r.id == id {
			found = r
		}
	})
	return found, found != nil
}

// Parent returns the parent of the region with the given ID. The root and
// unknown regions have no parent.
func (b *Blueprint) Parent(id RegionID) (*Region, bool) {
	var parent *Region
	b.root.Walk(func(r *Region) {
		for _, c := range r.children {
			if c != nil && c.id == id {
				parent = r
			}
		}
	})
	return parent, parent != nil
}

// FullTargetSize returns the target size of the whole tree.
func (b *Blueprint) FullTargetSize() int {
	if b.root == nil {
		return 0
	}
	return b.root.FullTargetSize()
}

// Clear clears the whole tree; see [Region.Clear].
func (b *Blueprint) Clear(w *World) {
	if b.root != nil {
		b.root.Clear(w)
	}
}

// Validate checks that the blueprint has a root and forms a proper tree.
func (b *Blueprint) Validate() error {
	if b.root == nil {
		return ErrNoRoot
	}
	seen := make(map[*Region]bool)
	var err error
	b.root.Walk(func(r *Region) {
		if err == nil && seen[r] {
			err = fmt.Errorf("%w: region %d", ErrSharedRegion, r.id)
		}
		seen[r] = true
	})
	return err
}

// Acquire marks the blueprint as in use by a run. It reports false when
// another run already holds it.
func (b *Blueprint) Acquire() bool { return b.active.CompareAndSwap(false, true) }

// Release ends the current run's hold on the blueprint.
func (b *Blueprint) Release() { b.active.Store(false) }

// Active reports whether a run currently holds the blueprint.
func (b *Blueprint) Active() bool { return b.active.Load() }
