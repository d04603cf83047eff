package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/petems/warpkey/internal/config"
	"github.com/petems/warpkey/internal/keys"
)

const (
	defaultHold   = 500 * time.Millisecond
	defaultWindow = 400 * time.Millisecond
)

// FireFunc receives a resolved binding. Called on its own goroutine so a slow
// action can never stall key processing.
type FireFunc func(config.Binding, config.TriggerType)

// ReservedFunc receives the ID of a reserved binding whose combination was
// pressed (cheat-sheet or quick-assign toggles).
type ReservedFunc func(uuid.UUID)

// Params configures a Machine.
type Params struct {
	Hold             time.Duration
	MultiPressWindow time.Duration
	Fire             FireFunc
	Reserved         ReservedFunc
	// ActiveSignature reports the current active key set, consulted when a
	// hold timer elapses: a hold only fires while the chord is still exactly
	// held. Nil means always-held (useful in tests).
	ActiveSignature func() keys.Signature
	Logger          zerolog.Logger
}

// pressEntry tracks one in-flight combination. At most one entry exists per
// signature at any time.
type pressEntry struct {
	pressCount  int
	lastRelease time.Time
	holdTimer   *time.Timer
	deferTimer  *time.Timer
	holdFired   bool
	// reservedDown ignores key-repeat downs between a reserved toggle's
	// down and its release.
	reservedDown bool
	// seq invalidates timer closures scheduled before a newer transition.
	seq uint64
}

func (e *pressEntry) stopHold() {
	if e.holdTimer != nil {
		e.holdTimer.Stop()
		e.holdTimer = nil
	}
}

func (e *pressEntry) stopDefer() {
	if e.deferTimer != nil {
		e.deferTimer.Stop()
		e.deferTimer = nil
	}
}

// Machine is the trigger state machine. All mutable state is guarded by one
// mutex; timer callbacks re-validate their entry and sequence number before
// mutating anything, since a timer can elapse while a key event holds the lock.
type Machine struct {
	mu      sync.Mutex
	reg     *Registry
	entries map[keys.Signature]*pressEntry

	hold     time.Duration
	window   time.Duration
	fire     FireFunc
	reserved ReservedFunc
	active   func() keys.Signature
	now      func() time.Time
	log      zerolog.Logger
}

// New creates a machine with an empty registry.
func New(p Params) *Machine {
	if p.Hold <= 0 {
		p.Hold = defaultHold
	}
	if p.MultiPressWindow <= 0 {
		p.MultiPressWindow = defaultWindow
	}
	if p.Fire == nil {
		p.Fire = func(config.Binding, config.TriggerType) {}
	}
	if p.Reserved == nil {
		p.Reserved = func(uuid.UUID) {}
	}
	return &Machine{
		reg:      BuildRegistry(nil, nil),
		entries:  make(map[keys.Signature]*pressEntry),
		hold:     p.Hold,
		window:   p.MultiPressWindow,
		fire:     p.Fire,
		reserved: p.Reserved,
		active:   p.ActiveSignature,
		now:      time.Now,
		log:      p.Logger,
	}
}

// SetBindings rebuilds the registry and synchronously cancels every in-flight
// entry and timer. A binding removed from the profile must never fire late.
func (m *Machine) SetBindings(bindings, reserved []config.Binding) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.entries {
		e.stopHold()
		e.stopDefer()
		e.seq++
	}
	m.entries = make(map[keys.Signature]*pressEntry)
	m.reg = BuildRegistry(bindings, reserved)
}

// SetTiming replaces the hold and multi-press durations. Timers already
// scheduled keep the duration they were armed with; new depressions use the
// new values.
func (m *Machine) SetTiming(hold, window time.Duration) {
	if hold <= 0 {
		hold = defaultHold
	}
	if window <= 0 {
		window = defaultWindow
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hold = hold
	m.window = window
}

// Conflicts reports the current registry's conflicting binding groups.
func (m *Machine) Conflicts() []Conflict {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.Conflicts()
}

// Close cancels all pending timers. Called on shutdown and on loss of input
// permission so nothing fires into torn-down state.
func (m *Machine) Close() {
	m.SetBindings(nil, nil)
}

// HandleKeyDown processes a key-down whose resulting active set has the given
// signature. Returns true when the event must be swallowed: any registered
// signature is swallowed whether or not it ultimately fires, so a chord never
// partially leaks to other applications.
func (m *Machine) HandleKeyDown(sig keys.Signature) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	bindings := m.reg.Lookup(sig)
	if len(bindings) == 0 {
		return false
	}

	if m.reg.IsReserved(sig) {
		e := m.entry(sig)
		if !e.reservedDown {
			e.reservedDown = true
			for _, b := range bindings {
				go m.reserved(b.ID)
			}
		}
		return true
	}

	e := m.entries[sig]
	if e != nil && (e.holdFired || e.holdTimer != nil) {
		// Key repeat within an active depression: already consumed.
		return true
	}
	if e == nil {
		e = m.entry(sig)
	}

	// A new press supersedes any deferred multi-press resolution; the count
	// rises when this depression releases.
	e.stopDefer()

	if m.reg.HasTrigger(sig, config.Hold) {
		e.seq++
		seq := e.seq
		e.holdTimer = time.AfterFunc(m.hold, func() {
			m.holdElapsed(sig, e, seq)
		})
	}

	return true
}

// HandleKeyUp processes a key-up completing a previously tracked signature
// (the active set as it was before the release). Returns true when the event
// must be swallowed.
func (m *Machine) HandleKeyUp(sig keys.Signature) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.entries[sig]
	if e == nil {
		// Not tracked: swallow only if the signature is registered, so the
		// up-edge of a swallowed chord does not leak either.
		return len(m.reg.Lookup(sig)) > 0
	}

	if e.reservedDown {
		m.clearLocked(sig, e)
		return true
	}

	e.stopHold()
	if e.holdFired {
		// Hold already delivered for this depression; release resolves
		// nothing further.
		m.clearLocked(sig, e)
		return true
	}

	now := m.now()
	if e.pressCount > 0 && now.Sub(e.lastRelease) > m.window {
		e.pressCount = 0
	}
	e.pressCount++
	e.lastRelease = now

	m.resolveLocked(sig, e)
	return true
}

// resolveLocked applies the count resolution rules: fire immediately when no
// higher-order sibling trigger can still claim the sequence, otherwise defer
// until the multi-press window closes.
func (m *Machine) resolveLocked(sig keys.Signature, e *pressEntry) {
	hasDouble := m.reg.HasTrigger(sig, config.DoublePress)
	hasTriple := m.reg.HasTrigger(sig, config.TriplePress)

	switch {
	case e.pressCount >= 3:
		m.fireLocked(sig, config.TriplePress)
		m.clearLocked(sig, e)
	case e.pressCount == 1 && !hasDouble && !hasTriple:
		m.fireLocked(sig, config.Press)
		m.clearLocked(sig, e)
	case e.pressCount == 2 && !hasTriple:
		m.fireLocked(sig, config.DoublePress)
		m.clearLocked(sig, e)
	default:
		e.seq++
		seq := e.seq
		count := e.pressCount
		e.deferTimer = time.AfterFunc(m.window, func() {
			m.deferredElapsed(sig, e, seq, count)
		})
	}
}

// holdElapsed fires hold bindings if the chord is still exactly held.
func (m *Machine) holdElapsed(sig keys.Signature, e *pressEntry, seq uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.entries[sig] != e || e.seq != seq {
		return // cleared or superseded while the timer was in flight
	}
	e.holdTimer = nil

	if m.active != nil && m.active() != sig {
		// Chord changed mid-hold; let the release path resolve by count.
		return
	}

	e.holdFired = true
	m.fireLocked(sig, config.Hold)
}

// deferredElapsed resolves an ambiguous press count once the window closes
// with no further press.
func (m *Machine) deferredElapsed(sig keys.Signature, e *pressEntry, seq uint64, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.entries[sig] != e || e.seq != seq {
		return
	}
	e.deferTimer = nil

	switch count {
	case 1:
		m.fireLocked(sig, config.Press)
	case 2:
		m.fireLocked(sig, config.DoublePress)
	}
	m.clearLocked(sig, e)
}

// fireLocked dispatches every binding for the signature matching the resolved
// trigger type. All conflicting bindings fire; each on its own goroutine.
func (m *Machine) fireLocked(sig keys.Signature, trigger config.TriggerType) {
	for _, b := range m.reg.Lookup(sig) {
		if b.Trigger != trigger {
			continue
		}
		m.log.Debug().
			Str("signature", string(sig)).
			Stringer("trigger", trigger).
			Str("binding", b.ID.String()).
			Msg("binding fired")
		go m.fire(b, trigger)
	}
}

func (m *Machine) entry(sig keys.Signature) *pressEntry {
	e := m.entries[sig]
	if e == nil {
		e = &pressEntry{}
		m.entries[sig] = e
	}
	return e
}

func (m *Machine) clearLocked(sig keys.Signature, e *pressEntry) {
	e.stopHold()
	e.stopDefer()
	e.seq++
	if m.entries[sig] == e {
		delete(m.entries, sig)
	}
}

// tracking reports whether an entry exists for the signature. Test hook.
func (m *Machine) tracking(sig keys.Signature) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[sig]
	return ok
}
