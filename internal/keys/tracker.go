package keys

import "sync"

// Tracker maintains the set of currently held keys. Standard and auxiliary
// keys live in disjoint sets; the union is the authoritative active
// combination. The tracker is updated on every observed event before any
// matching logic runs, so the set stays correct even when the engine swallows
// the event itself.
//
// Safe for concurrent use: the input callback writes while hold timers read
// the active set from their own goroutines.
type Tracker struct {
	mu        sync.Mutex
	standard  map[Code]struct{}
	auxiliary map[Code]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{
		standard:  make(map[Code]struct{}),
		auxiliary: make(map[Code]struct{}),
	}
}

// Observe applies one normalized event to the set.
func (t *Tracker) Observe(ev Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	set := t.standard
	if ev.Auxiliary {
		set = t.auxiliary
	}
	if ev.Down {
		set[ev.Code] = struct{}{}
	} else {
		delete(set, ev.Code)
	}
}

// Held reports whether the code is currently down.
func (t *Tracker) Held(c Code) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.standard[c]; ok {
		return true
	}
	_, ok := t.auxiliary[c]
	return ok
}

// Active returns the current active set as a slice, unsorted.
func (t *Tracker) Active() []Code {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.activeLocked()
}

func (t *Tracker) activeLocked() []Code {
	out := make([]Code, 0, len(t.standard)+len(t.auxiliary))
	for c := range t.standard {
		out = append(out, c)
	}
	for c := range t.auxiliary {
		out = append(out, c)
	}
	return out
}

// Len returns the number of held keys.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.standard) + len(t.auxiliary)
}

// ActiveSignature returns the canonical signature of the active set.
func (t *Tracker) ActiveSignature() Signature {
	t.mu.Lock()
	defer t.mu.Unlock()
	return NewSignature(t.activeLocked())
}

// Reset clears both sets. Used when the tap is torn down or re-installed so
// stale keys cannot linger across a permission change.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.standard = make(map[Code]struct{})
	t.auxiliary = make(map[Code]struct{})
}
