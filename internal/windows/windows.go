// Package windows resolves "cycle to the next window" for a target process
// using the platform's accessibility introspection.
package windows

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotEnoughWindows signals fewer than two eligible windows; callers fall
// back to activate-or-hide instead of cycling.
var ErrNotEnoughWindows = errors.New("fewer than two eligible windows")

// Window is one window of a target process as reported by introspection.
type Window struct {
	ID        uint32 // stable identifier when the platform provides one, else 0
	Title     string
	X, Y      int
	Minimized bool
	Standard  bool // standard document/app window, not a panel or sheet
}

// Introspector enumerates and manipulates a process's windows.
type Introspector interface {
	// Windows lists the process's windows in whatever order the platform
	// returns them; the cycler imposes its own deterministic order.
	Windows(pid int) ([]Window, error)
	// FocusedWindowID returns the stable ID of the process's focused window,
	// or 0 when unknown.
	FocusedWindowID(pid int) (uint32, error)
	// Raise focuses the given window and brings it frontmost.
	Raise(pid int, w Window) error
}

// Cycler advances focus among a process's eligible windows in a stable
// order. Cursors are kept per pid and re-derived by identity when the window
// list changes shape, so a stale index never raises the wrong window.
type Cycler struct {
	intro Introspector

	mu      sync.Mutex
	cursors map[int]uint32 // pid -> window ID last raised
}

func NewCycler(intro Introspector) *Cycler {
	return &Cycler{
		intro:   intro,
		cursors: make(map[int]uint32),
	}
}

// Next raises the next eligible window of the process after the currently
// focused one. Returns ErrNotEnoughWindows when cycling is not possible.
func (c *Cycler) Next(pid int) error {
	all, err := c.intro.Windows(pid)
	if err != nil {
		return fmt.Errorf("enumerate windows of pid %d: %w", pid, err)
	}

	eligible := Eligible(all)
	if len(eligible) < 2 {
		return ErrNotEnoughWindows
	}

	current := c.currentIndex(pid, eligible)
	next := eligible[(current+1)%len(eligible)]

	if err := c.intro.Raise(pid, next); err != nil {
		return fmt.Errorf("raise window of pid %d: %w", pid, err)
	}

	c.mu.Lock()
	c.cursors[pid] = next.ID
	c.mu.Unlock()
	return nil
}

// Forget drops the cursor for a process, e.g. when it exits.
func (c *Cycler) Forget(pid int) {
	c.mu.Lock()
	delete(c.cursors, pid)
	c.mu.Unlock()
}

// currentIndex locates the position to advance from: the focused window when
// it can be identified, else the last-raised cursor, else the start.
func (c *Cycler) currentIndex(pid int, eligible []Window) int {
	if id, err := c.intro.FocusedWindowID(pid); err == nil && id != 0 {
		if i := indexByID(eligible, id); i >= 0 {
			return i
		}
	}

	c.mu.Lock()
	cursor, ok := c.cursors[pid]
	c.mu.Unlock()
	if ok {
		if i := indexByID(eligible, cursor); i >= 0 {
			return i
		}
	}

	// No identity match: start from the end so the first cycle lands on
	// index 0.
	return len(eligible) - 1
}

func indexByID(ws []Window, id uint32) int {
	for i, w := range ws {
		if w.ID != 0 && w.ID == id {
			return i
		}
	}
	return -1
}

// Eligible filters to standard, non-minimized windows and sorts them by a
// deterministic composite key so repeated cycles visit windows in the same
// order regardless of platform enumeration order.
func Eligible(all []Window) []Window {
	out := make([]Window, 0, len(all))
	for _, w := range all {
		if w.Standard && !w.Minimized {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ID != b.ID {
			// Windows without a stable ID sort after identified ones.
			if a.ID == 0 {
				return false
			}
			if b.ID == 0 {
				return true
			}
			return a.ID < b.ID
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Y < b.Y
	})
	return out
}
