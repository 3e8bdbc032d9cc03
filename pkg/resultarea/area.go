package resultarea

import (
	"context"
	"sync"

	"github.com/goliatone/go-cipherview/pkg/render"
)

// EventKind tells listeners how the area changed.
type EventKind string

const (
	// EventReplace means the whole area now holds Event.Blocks.
	EventReplace EventKind = "replace"
	// EventAppend means Event.Block was added after the existing blocks.
	EventAppend EventKind = "append"
)

// Event describes one change to the area.
type Event struct {
	Kind       EventKind      `json:"kind"`
	Generation uint64         `json:"generation"`
	Block      render.Block   `json:"block,omitempty"`
	Blocks     []render.Block `json:"blocks,omitempty"`
}

// Listener receives area changes in order. It runs while the area lock is
// held and must not call back into the Area.
type Listener func(Event)

// Area is the owned render target of one session.
type Area struct {
	mu        sync.Mutex
	gen       uint64
	blocks    []render.Block
	cancels   map[uint64][]context.CancelFunc
	listeners map[uint64]Listener
	nextID    uint64
	closed    bool
}

// New returns an empty area at generation zero.
func New() *Area {
	return &Area{
		cancels:   make(map[uint64][]context.CancelFunc),
		listeners: make(map[uint64]Listener),
	}
}

// Generation returns the current generation.
func (a *Area) Generation() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gen
}

// IsCurrent reports whether gen is still the current generation.
func (a *Area) IsCurrent(gen uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.closed && gen == a.gen
}

// Clear empties the area, cancels work registered for older generations and
// returns the new generation.
func (a *Area) Clear() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return a.gen
	}
	a.advanceLocked()
	a.blocks = nil
	a.emitLocked(Event{Kind: EventReplace, Generation: a.gen})
	return a.gen
}

// ReplaceAll unconditionally replaces the area contents with blocks. Like
// Clear it advances the generation, so no earlier writer can append below the
// new content.
func (a *Area) ReplaceAll(blocks ...render.Block) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return a.gen
	}
	a.advanceLocked()
	a.blocks = cloneBlocks(blocks)
	a.emitLocked(Event{Kind: EventReplace, Generation: a.gen, Blocks: cloneBlocks(a.blocks)})
	return a.gen
}

// ReplaceIf replaces the contents only when gen is current. The generation is
// kept, so the writer may continue appending.
func (a *Area) ReplaceIf(gen uint64, blocks ...render.Block) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || gen != a.gen {
		return false
	}
	a.blocks = cloneBlocks(blocks)
	a.emitLocked(Event{Kind: EventReplace, Generation: a.gen, Blocks: cloneBlocks(a.blocks)})
	return true
}

// Append adds block after the existing blocks when gen is current.
func (a *Area) Append(gen uint64, block render.Block) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || gen != a.gen {
		return false
	}
	a.blocks = append(a.blocks, block)
	a.emitLocked(Event{Kind: EventAppend, Generation: a.gen, Block: block})
	return true
}

// Track registers cancel to run when gen stops being current. When gen is
// already stale, cancel runs immediately and Track returns false.
func (a *Area) Track(gen uint64, cancel context.CancelFunc) bool {
	if cancel == nil {
		return a.IsCurrent(gen)
	}
	a.mu.Lock()
	if a.closed || gen != a.gen {
		a.mu.Unlock()
		cancel()
		return false
	}
	a.cancels[gen] = append(a.cancels[gen], cancel)
	a.mu.Unlock()
	return true
}

// Snapshot returns the current generation and a copy of the blocks.
func (a *Area) Snapshot() (uint64, []render.Block) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gen, cloneBlocks(a.blocks)
}

// Resync calls fn with the current generation and a copy of the blocks while
// holding the area lock. Listeners see no event until fn returns, so anything
// fn discards was published before the copy it received.
func (a *Area) Resync(fn func(gen uint64, blocks []render.Block)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(a.gen, cloneBlocks(a.blocks))
}

// Subscribe registers l and returns a function that removes it. The listener
// first receives a replace event carrying the current contents.
func (a *Area) Subscribe(l Listener) func() {
	if l == nil {
		return func() {}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return func() {}
	}
	id := a.nextID
	a.nextID++
	a.listeners[id] = l
	l(Event{Kind: EventReplace, Generation: a.gen, Blocks: cloneBlocks(a.blocks)})

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.listeners, id)
			a.mu.Unlock()
		})
	}
}

// Close cancels all tracked work and drops listeners. Later writes are
// rejected.
func (a *Area) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.closed = true
	a.gen++
	for gen, cancels := range a.cancels {
		for _, cancel := range cancels {
			cancel()
		}
		delete(a.cancels, gen)
	}
	a.blocks = nil
	a.listeners = make(map[uint64]Listener)
}

func (a *Area) advanceLocked() {
	a.gen++
	for gen, cancels := range a.cancels {
		if gen >= a.gen {
			continue
		}
		for _, cancel := range cancels {
			cancel()
		}
		delete(a.cancels, gen)
	}
}

func (a *Area) emitLocked(evt Event) {
	for _, l := range a.listeners {
		l(evt)
	}
}

func cloneBlocks(blocks []render.Block) []render.Block {
	if len(blocks) == 0 {
		return nil
	}
	out := make([]render.Block, len(blocks))
	copy(out, blocks)
	return out
}
