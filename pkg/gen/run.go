package gen

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	wberrors "github.com/matzehuels/wrldbldr/pkg/errors"
	"github.com/matzehuels/wrldbldr/pkg/observability"
	"github.com/matzehuels/wrldbldr/pkg/world"
)

// Run is a resumable generation over one blueprint.
//
// A Run is driven by a single goroutine; its methods are not safe for
// concurrent use. Observers may call the read-only accessors from within
// notifications.
type Run struct {
	id        string
	engine    *Engine
	world     *world.World
	bp        *world.Blueprint
	observers []Observer
	logger    *log.Logger

	regions  []*world.Region
	next     int
	current  *world.Region
	frontier []world.SectionID
	origin   *world.Section
	stall    int
	target   int

	placed     int
	iterations int
	slices     int
	started    time.Time
	finished   time.Time
	done       bool
	err        error
}

// Progress is a snapshot of a run's counters.
type Progress struct {
	RunID      string `json:"run_id"`
	Region     int    `json:"region"`
	Regions    int    `json:"regions"`
	Placed     int    `json:"placed"`
	Owned      int    `json:"owned"`
	Target     int    `json:"target"`
	Frontier   int    `json:"frontier"`
	Iterations int    `json:"iterations"`
	Slices     int    `json:"slices"`
	Done       bool   `json:"done"`
}

// ID returns the run's unique identifier.
func (r *Run) ID() string { return r.id }

// Blueprint returns the blueprint being generated.
func (r *Run) Blueprint() *world.Blueprint { return r.bp }

// World returns the world sections are placed in.
func (r *Run) World() *world.World { return r.world }

// Current returns the region being grown, or nil between regions.
func (r *Run) Current() *world.Region { return r.current }

// Done reports whether the run completed successfully.
func (r *Run) Done() bool { return r.done }

// Err returns the error that aborted the run, if any.
func (r *Run) Err() error { return r.err }

// Elapsed returns the wall time since the run started, up to its end.
func (r *Run) Elapsed() time.Duration {
	if !r.finished.IsZero() {
		return r.finished.Sub(r.started)
	}
	return r.engine.now().Sub(r.started)
}

// Progress returns a snapshot of the run's counters.
func (r *Run) Progress() Progress {
	return Progress{
		RunID:      r.id,
		Region:     r.next,
		Regions:    len(r.regions),
		Placed:     r.placed,
		Owned:      r.bp.Root().FullSectionCount(),
		Target:     r.target,
		Frontier:   len(r.frontier),
		Iterations: r.iterations,
		Slices:     r.slices,
		Done:       r.done,
	}
}

// begin traverses and clears the region tree and seeds the origin section.
func (r *Run) begin(ctx context.Context) error {
	r.started = r.engine.now()
	r.target = r.bp.FullTargetSize()

	for _, o := range r.observers {
		o.OnRunStart(r)
	}
	observability.Generation().OnRunStart(ctx, r.id, r.target)

	if n := r.world.DestroyOrphans(); n > 0 {
		r.logger.Debug("destroyed unowned sections", "count", n)
	}

	r.logger.Debug("traversing region tree")
	r.bp.Root().Walk(func(rg *world.Region) {
		rg.Clear(r.world)
		r.regions = append(r.regions, rg)
	})

	r.logger.Debug("seeding origin", "region", r.regions[0].ID())
	origin, _, err := r.world.CreateIn(r.regions[0], world.Vec2{}, false, world.Start)
	if err != nil {
		return r.fail(ctx, wberrors.Wrap(wberrors.ErrCodeExhausted, err, "seed origin section"))
	}
	r.origin = origin
	r.frontier = append(r.frontier, origin.ID())
	r.placed++
	return nil
}

// Step runs section-loop iterations until the run completes, fails, or the
// configured timeout elapses. It reports whether the run is complete.
// Stepping a finished run returns its final state.
func (r *Run) Step(ctx context.Context) (bool, error) {
	if r.done || r.err != nil {
		return r.done, r.err
	}

	start := r.engine.now()
	iterations := 0
	defer func() {
		r.slices++
		observability.Generation().OnSlice(ctx, r.id, iterations, r.engine.now().Sub(start))
	}()

	for {
		if err := ctx.Err(); err != nil {
			return false, r.fail(ctx, wberrors.Wrap(wberrors.ErrCodeCanceled, err, "run canceled"))
		}

		finished, err := r.iterate()
		iterations++
		if err != nil {
			return false, r.fail(ctx, err)
		}
		if finished {
			r.finish(ctx)
			return true, nil
		}

		if r.engine.now().Sub(start) >= r.engine.cfg.Timeout {
			return false, nil
		}
	}
}

// Drive steps the run once per tick until it completes, fails, or ctx is
// canceled. A closed tick channel aborts the run.
func (r *Run) Drive(ctx context.Context, ticks <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			_, err := r.Step(ctx)
			return err
		case _, ok := <-ticks:
			if !ok {
				return r.Abort()
			}
			done, err := r.Step(ctx)
			if err != nil || done {
				return err
			}
		}
	}
}

// Abort cancels an unfinished run, clearing the blueprint and releasing it.
func (r *Run) Abort() error {
	if r.done || r.err != nil {
		return r.err
	}
	return r.fail(context.Background(), wberrors.New(wberrors.ErrCodeCanceled, "run aborted"))
}

// iterate advances the state machine by one step.
func (r *Run) iterate() (bool, error) {
	r.iterations++

	if r.current == nil {
		if r.next == len(r.regions) {
			return true, nil
		}
		r.current = r.regions[r.next]
		r.next++
		r.stall = 0

		r.logger.Debug("region start",
			"region", r.current.ID(),
			"name", r.current.Name(),
			"target", r.current.TargetSize())
		for _, o := range r.observers {
			o.OnRegionStart(r, r.current)
		}
		if r.origin != nil {
			r.notifyPlaced(nil, r.origin)
			r.origin = nil
		}
		return false, nil
	}

	if r.current.Full() {
		r.logger.Debug("region finished",
			"region", r.current.ID(),
			"sections", r.current.SectionCount())
		for _, o := range r.observers {
			o.OnRegionFinish(r, r.current)
		}
		r.current = nil
		return false, nil
	}

	return false, r.grow(r.current)
}

// grow runs one section-loop iteration for region rg.
func (r *Run) grow(rg *world.Region) error {
	s, fallback, err := r.pop(rg)
	if err != nil {
		return err
	}

	progress := false
	if free := s.FreeSlots(); len(free) > 0 {
		k := branchCount(r.engine.rng, len(free))
		shuffle(r.engine.rng, free)

		for _, d := range free[:k] {
			child, linked, err := r.tryGrow(rg, s, d)
			if err != nil {
				return err
			}
			if linked {
				progress = true
			}
			if child != nil {
				progress = true
				r.frontier = append(r.frontier, child.ID())
				r.placed++
				r.notifyPlaced(s, child)
			}
		}
	}

	switch {
	case progress:
		r.stall = 0
	case fallback:
		r.stall++
		if r.stall >= r.engine.cfg.StallLimit {
			return wberrors.New(wberrors.ErrCodeExhausted,
				"region %d stalled at %d of %d sections after %d attempts",
				rg.ID(), rg.SectionCount(), rg.TargetSize(), r.stall)
		}
	}
	return nil
}

// pop returns the next section to grow from: the oldest frontier section, or
// once the frontier is empty the newest section of rg. A tail that cannot
// grow at all is passed over for the newest older section that can.
func (r *Run) pop(rg *world.Region) (*world.Section, bool, error) {
	for len(r.frontier) > 0 {
		id := r.frontier[0]
		r.frontier = r.frontier[1:]
		if s, ok := r.world.Section(id); ok {
			return s, false, nil
		}
	}

	n := rg.SectionCount()
	if n == 0 {
		return nil, true, wberrors.New(wberrors.ErrCodePrecondition,
			"region %d needs %d sections but has none to grow from and the frontier is empty",
			rg.ID(), rg.TargetSize())
	}

	tail, ok := r.world.Section(rg.Section(n - 1))
	if !ok {
		return nil, true, wberrors.New(wberrors.ErrCodeInternal, "region %d lost its newest section", rg.ID())
	}
	if canGrow(rg, tail) {
		return tail, true, nil
	}
	if s, _ := rg.FindFreeSection(r.world, n-2); s != nil {
		return s, true, nil
	}
	for i := n - 2; i >= 0; i-- {
		if s, ok := r.world.Section(rg.Section(i)); ok && canGrow(rg, s) {
			return s, true, nil
		}
	}
	return tail, true, nil
}

// canGrow reports whether some free slot of s leads to an empty position or
// to a section of rg that it could link to.
func canGrow(rg *world.Region, s *world.Section) bool {
	for _, d := range s.FreeSlots() {
		o, ok := s.World().OccupantAt(s.NeighborPosition(d))
		if !ok || o.InRegion(rg) {
			return true
		}
	}
	return false
}

// tryGrow attempts to grow s through slot d. An occupied target position is
// linked when its occupant belongs to rg and ignored otherwise; a free one
// gets a new section offered to rg.
func (r *Run) tryGrow(rg *world.Region, s *world.Section, d world.Direction) (*world.Section, bool, error) {
	if o, ok := r.world.OccupantAt(s.NeighborPosition(d)); ok {
		if o.InRegion(rg) {
			s.SetAdjacent(d, o, true)
			return nil, true, nil
		}
		return nil, false, nil
	}

	child, err := s.AddAdjacent(d, world.Normal)
	if err != nil {
		return nil, false, wberrors.Wrap(wberrors.ErrCodeExhausted, err, "grow region %d", rg.ID())
	}
	if !rg.AddSection(child) {
		r.logger.Debug("section left unowned", "section", child.ID(), "region", rg.ID())
	}
	return child, false, nil
}

func (r *Run) notifyPlaced(parent, child *world.Section) {
	for _, o := range r.observers {
		o.OnSectionPlaced(r, parent, child)
	}
}

func (r *Run) finish(ctx context.Context) {
	r.done = true
	r.finished = r.engine.now()
	r.release()

	for _, o := range r.observers {
		o.OnRunFinish(r)
	}
	r.logger.Info("generation complete",
		"regions", len(r.regions),
		"sections", r.placed,
		"slices", r.slices+1,
		"duration", r.Elapsed())
	observability.Generation().OnRunComplete(ctx, r.id, r.placed, r.Elapsed(), nil)
}

// fail records err, clears the blueprint and releases the run guards.
func (r *Run) fail(ctx context.Context, err error) error {
	r.err = err
	r.finished = r.engine.now()
	r.bp.Clear(r.world)
	r.world.DestroyOrphans()
	r.frontier = nil
	r.current = nil
	r.release()

	r.logger.Error("generation failed", "err", err)
	observability.Generation().OnRunComplete(ctx, r.id, 0, r.Elapsed(), err)
	return err
}

func (r *Run) release() {
	r.bp.Release()
	r.engine.active.Store(false)
}
