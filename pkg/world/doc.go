// Package world holds the spatial section graph grown by the generator.
//
// A [World] owns every live [Section] and the spatial index used to detect
// collisions. Sections sit on an alternating triangular grid: each section
// has exactly three adjacency slots ([Right], [Left], [Down]) and a flip
// state. A section's three slot directions are 120° apart; a flipped section
// uses the same directions rotated by 180°, so the two orientations together
// cover the six neighbor positions around any point of the grid.
//
// Sections are grouped into [Region] values, which form a tree of quotas
// rooted in a [Blueprint]. A region owns the membership of its sections; a
// section only records the [RegionID] of the region it belongs to.
//
// # Handles
//
// Adjacency slots and region membership lists store [SectionID] handles, not
// pointers. Destroying a section (for example when its region is cleared)
// removes it from the world's handle table, and every outstanding handle to
// it resolves to "absent" from then on. Sections in other regions that were
// linked to a destroyed section therefore report that slot as free again
// rather than holding a dangling reference.
//
// # Example
//
//	w := world.New(1.0)
//	root := world.NewRegion(3)
//	bp := world.NewBlueprint(root)
//
//	origin, _, _ := w.CreateIn(bp.Root(), world.Vec2{}, false, world.Start)
//	next, _ := origin.AddAdjacent(world.Right, world.Normal)
//	bp.Root().AddSection(next)
//
//	fmt.Printf("%03b\n", origin.AdjacencyMask()) // 001
package world
