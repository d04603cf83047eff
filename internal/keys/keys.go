// Package keys defines the key code space shared by the event tap and the
// matching engine: normalized key events, the active-key tracker, and the
// canonical signature used to identify a combination.
package keys

import (
	"sort"
	"strconv"
	"strings"
)

// Code identifies a physical key. Values come from the platform (macOS
// virtual key codes, X11 keycodes); the engine treats them as opaque.
type Code uint32

// Event is a normalized keyboard event. Produced per callback invocation and
// consumed immediately, never stored.
type Event struct {
	Code      Code
	Down      bool
	Modifier  bool // true modifier key (shift, control, option, command, fn)
	Auxiliary bool // media/consumer key delivered via system-defined events
}

// Signature is the canonical, order-independent identity of a set of key
// codes: the sorted codes joined with "+". Two bindings are the same hotkey
// iff their signatures and trigger types match.
type Signature string

// NewSignature builds the canonical signature for a set of codes.
func NewSignature(codes []Code) Signature {
	if len(codes) == 0 {
		return ""
	}
	sorted := make([]Code, len(codes))
	copy(sorted, codes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var b strings.Builder
	for i, c := range sorted {
		if i > 0 {
			b.WriteByte('+')
		}
		b.WriteString(strconv.FormatUint(uint64(c), 10))
	}
	return Signature(b.String())
}
