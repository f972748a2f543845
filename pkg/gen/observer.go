package gen

import (
	"sync"

	"github.com/matzehuels/wrldbldr/pkg/world"
)

// Observer receives lifecycle notifications from a run. Calls are made
// synchronously on the goroutine driving the run, in registration order.
type Observer interface {
	OnRunStart(run *Run)
	OnRegionStart(run *Run, r *world.Region)
	// OnSectionPlaced is called after child joined the frontier. parent is
	// the frontier section it grew from, or nil for the origin.
	OnSectionPlaced(run *Run, parent, child *world.Section)
	OnRegionFinish(run *Run, r *world.Region)
	OnRunFinish(run *Run)
}

// NoopObserver implements Observer with empty methods. Embed it to override
// only the notifications you need.
type NoopObserver struct{}

func (NoopObserver) OnRunStart(*Run)                                      {}
func (NoopObserver) OnRegionStart(*Run, *world.Region)                    {}
func (NoopObserver) OnSectionPlaced(*Run, *world.Section, *world.Section) {}
func (NoopObserver) OnRegionFinish(*Run, *world.Region)                   {}
func (NoopObserver) OnRunFinish(*Run)                                     {}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	RunStart      func(run *Run)
	RegionStart   func(run *Run, r *world.Region)
	SectionPlaced func(run *Run, parent, child *world.Section)
	RegionFinish  func(run *Run, r *world.Region)
	RunFinish     func(run *Run)
}

func (f ObserverFuncs) OnRunStart(run *Run) {
	if f.RunStart != nil {
		f.RunStart(run)
	}
}

func (f ObserverFuncs) OnRegionStart(run *Run, r *world.Region) {
	if f.RegionStart != nil {
		f.RegionStart(run, r)
	}
}

func (f ObserverFuncs) OnSectionPlaced(run *Run, parent, child *world.Section) {
	if f.SectionPlaced != nil {
		f.SectionPlaced(run, parent, child)
	}
}

func (f ObserverFuncs) OnRegionFinish(run *Run, r *world.Region) {
	if f.RegionFinish != nil {
		f.RegionFinish(run, r)
	}
}

func (f ObserverFuncs) OnRunFinish(run *Run) {
	if f.RunFinish != nil {
		f.RunFinish(run)
	}
}

// EventKind names a lifecycle notification.
type EventKind string

const (
	EventRunStart      EventKind = "run_start"
	EventRegionStart   EventKind = "region_start"
	EventSectionPlaced EventKind = "section_placed"
	EventRegionFinish  EventKind = "region_finish"
	EventRunFinish     EventKind = "run_finish"
)

// Event is a flattened lifecycle notification. Handles stay valid after the
// notification returns, unlike the pointers passed to an Observer.
type Event struct {
	Kind     EventKind       `json:"kind"`
	RunID    string          `json:"run_id"`
	Region   world.RegionID  `json:"region,omitempty"`
	Parent   world.SectionID `json:"parent,omitempty"`
	Section  world.SectionID `json:"section,omitempty"`
	Position *world.Vec2     `json:"position,omitempty"`
	Flipped  bool            `json:"flipped,omitempty"`
}

// EventFunc returns an Observer that flattens every notification into an
// Event and passes it to fn.
func EventFunc(fn func(Event)) Observer {
	return ObserverFuncs{
		RunStart: func(run *Run) {
			fn(Event{Kind: EventRunStart, RunID: run.ID()})
		},
		RegionStart: func(run *Run, r *world.Region) {
			fn(Event{Kind: EventRegionStart, RunID: run.ID(), Region: r.ID()})
		},
		SectionPlaced: func(run *Run, parent, child *world.Section) {
			pos := child.Position()
			ev := Event{
				Kind:     EventSectionPlaced,
				RunID:    run.ID(),
				Region:   child.Region(),
				Section:  child.ID(),
				Position: &pos,
				Flipped:  child.Flipped(),
			}
			if parent != nil {
				ev.Parent = parent.ID()
			}
			fn(ev)
		},
		RegionFinish: func(run *Run, r *world.Region) {
			fn(Event{Kind: EventRegionFinish, RunID: run.ID(), Region: r.ID()})
		},
		RunFinish: func(run *Run) {
			fn(Event{Kind: EventRunFinish, RunID: run.ID()})
		},
	}
}

// Recorder is an Observer that keeps every notification as an Event.
// It is safe to read from other goroutines while a run is being driven.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	obs    Observer
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	r := &Recorder{}
	r.obs = EventFunc(func(ev Event) {
		r.mu.Lock()
		r.events = append(r.events, ev)
		r.mu.Unlock()
	})
	return r
}

func (r *Recorder) OnRunStart(run *Run) { r.obs.OnRunStart(run) }

func (r *Recorder) OnRegionStart(run *Run, rg *world.Region) { r.obs.OnRegionStart(run, rg) }

func (r *Recorder) OnSectionPlaced(run *Run, parent, child *world.Section) {
	r.obs.OnSectionPlaced(run, parent, child)
}

func (r *Recorder) OnRegionFinish(run *Run, rg *world.Region) { r.obs.OnRegionFinish(run, rg) }

func (r *Recorder) OnRunFinish(run *Run) { r.obs.OnRunFinish(run) }

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns the kinds of the recorded events in order.
func (r *Recorder) Kinds() []EventKind {
	events := r.Events()
	out := make([]EventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

// Reset drops every recorded event.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

var (
	_ Observer = NoopObserver{}
	_ Observer = ObserverFuncs{}
	_ Observer = (*Recorder)(nil)
)
