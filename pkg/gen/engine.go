package gen

import (
	"context"
	"math/rand/v2"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	wberrors "github.com/matzehuels/wrldbldr/pkg/errors"
	"github.com/matzehuels/wrldbldr/pkg/world"
)

// Engine grows blueprints into its world. At most one run is active per
// engine at a time.
//
// Runs continue the engine's random stream, so two engines built with the
// same seed produce identical layouts for identical blueprints.
type Engine struct {
	cfg    Config
	world  *world.World
	rng    *rand.Rand
	now    func() time.Time
	logger *log.Logger

	mu        sync.Mutex
	observers []Observer

	active atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. Nil keeps the default logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithObserver registers an observer, as [Engine.Observe] does.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

// WithRand replaces the seeded random stream.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		if rng != nil {
			e.rng = rng
		}
	}
}

// WithClock replaces the clock used for time slicing.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an engine with an empty world. Zero config fields take their
// defaults; remaining problems are reported by [Engine.Start].
func New(cfg Config, opts ...Option) *Engine {
	cfg.SetDefaults()
	e := &Engine{
		cfg:    cfg,
		rng:    NewRand(cfg.Seed),
		now:    time.Now,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.world = world.New(cfg.Scale, world.WithMaxSections(cfg.MaxSections))
	return e
}

// NewRand returns the PCG stream the engine uses for a seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// Config returns the engine configuration with defaults applied.
func (e *Engine) Config() Config { return e.cfg }

// World returns the engine's world. It must not be mutated while a run is
// active.
func (e *Engine) World() *world.World { return e.world }

// Active reports whether a run is in progress.
func (e *Engine) Active() bool { return e.active.Load() }

// Observe registers an observer. Observers added while a run is active are
// notified starting with the next run.
func (e *Engine) Observe(o Observer) {
	if o == nil {
		return
	}
	e.mu.Lock()
	e.observers = append(e.observers, o)
	e.mu.Unlock()
}

// Start begins a run over bp: the region tree is traversed and cleared, and
// the origin section is seeded. The returned run does no growth until it is
// stepped.
//
// Start fails with BUSY when the engine or the blueprint already takes part
// in a run.
func (e *Engine) Start(ctx context.Context, bp *world.Blueprint) (*Run, error) {
	if bp == nil {
		return nil, wberrors.New(wberrors.ErrCodeInvalidBlueprint, "blueprint is nil")
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	if err := bp.Validate(); err != nil {
		return nil, wberrors.Wrap(wberrors.ErrCodeInvalidBlueprint, err, "invalid blueprint")
	}
	if n := bp.FullTargetSize(); n > e.cfg.MaxSections {
		return nil, wberrors.New(wberrors.ErrCodeInvalidBlueprint,
			"blueprint needs %d sections, more than the limit of %d", n, e.cfg.MaxSections)
	}
	if err := ctx.Err(); err != nil {
		return nil, wberrors.Wrap(wberrors.ErrCodeCanceled, err, "start run")
	}

	if !e.active.CompareAndSwap(false, true) {
		return nil, wberrors.New(wberrors.ErrCodeBusy, "engine already has an active run")
	}
	if !bp.Acquire() {
		e.active.Store(false)
		return nil, wberrors.New(wberrors.ErrCodeBusy, "blueprint is already in use by another run")
	}

	e.mu.Lock()
	observers := slices.Clone(e.observers)
	e.mu.Unlock()

	id := uuid.NewString()
	run := &Run{
		id:        id,
		engine:    e,
		world:     e.world,
		bp:        bp,
		observers: observers,
		logger:    e.logger.With("run", id[:8]),
	}
	if err := run.begin(ctx); err != nil {
		return nil, err
	}
	return run, nil
}

// Generate starts a run and steps it to completion, yielding the processor
// between time slices.
func (e *Engine) Generate(ctx context.Context, bp *world.Blueprint) (*Run, error) {
	run, err := e.Start(ctx, bp)
	if err != nil {
		return nil, err
	}
	for {
		done, err := run.Step(ctx)
		if err != nil {
			return run, err
		}
		if done {
			return run, nil
		}
		runtime.Gosched()
	}
}

// branchCount picks how many of n free slots to grow into, in [1, n-1] with
// the upper bound exclusive. A single free slot always yields 1.
func branchCount(rng *rand.Rand, n int) int {
	if n <= 1 {
		return 1
	}
	return 1 + rng.IntN(n-1)
}

// shuffle swaps every element once with a uniformly chosen index.
func shuffle(rng *rand.Rand, dirs []world.Direction) {
	for j := range dirs {
		i := rng.IntN(len(dirs))
		dirs[i], dirs[j] = dirs[j], dirs[i]
	}
}
