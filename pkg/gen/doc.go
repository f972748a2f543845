// Package gen grows a section graph from a region-tree blueprint.
//
// # Overview
//
// An [Engine] owns a [world.World] and turns a [world.Blueprint] into a
// connected, non-overlapping layout in which every region owns exactly its
// target number of sections:
//
//  1. Traverse: the region tree is walked in pre-order. Each region is
//     cleared and appended to a FIFO region queue.
//  2. Seed: an origin section (archetype start, position zero, unflipped) is
//     offered to the first region and pushed onto the frontier queue.
//  3. Grow: regions are taken from the queue one at a time. While the current
//     region is below its target, the oldest frontier section grows into a
//     random subset of its free slots. An occupied slot position is linked
//     when the occupant belongs to the current region and skipped otherwise.
//     A free position gets a new section, which joins the region and the
//     frontier.
//  4. When the frontier drains, growth falls back to the newest section of
//     the current region that still has free adjacent space.
//
// # Time Slicing
//
// A run is an explicit state machine. [Run.Step] executes section-loop
// iterations until the configured timeout elapses and then returns with all
// queues intact, so a host scheduler (a ticker, a TUI frame loop, an HTTP
// stream) can interleave other work. Suspension and cancellation are only
// observed at iteration boundaries.
//
//	eng := gen.New(gen.DefaultConfig())
//	run, err := eng.Start(ctx, bp)
//	for err == nil && !run.Done() {
//	    _, err = run.Step(ctx)
//	}
//
// [Engine.Generate] does the same, yielding between slices.
//
// # Lifecycle Notifications
//
// Observers registered with [Engine.Observe] or [WithObserver] are notified
// synchronously, in registration order, when a run starts, when a region
// starts and finishes, after each section is placed, and when the run
// finishes. Observers must not mutate the world or the blueprint.
//
// # Failure
//
// Precondition violations, allocation exhaustion, growth stalls and
// cancellation abort the run. The blueprint is cleared and unowned sections
// are destroyed before the error is returned, so callers never see a
// partially populated region tree.
package gen
