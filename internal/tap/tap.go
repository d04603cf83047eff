// Package tap installs the system-wide keyboard interception callback and
// feeds normalized events to the engine, honoring its per-event swallow
// decision where the platform allows consuming events.
package tap

import (
	"errors"

	"github.com/petems/warpkey/internal/keys"
)

// ErrNotPermitted means the platform refused to install the interceptor,
// typically because accessibility trust is missing.
var ErrNotPermitted = errors.New("input interception not permitted")

// Handler receives every normalized key event and returns true when the
// event must be swallowed instead of passed on to other applications. It is
// invoked from a single interception thread and must return quickly.
type Handler func(keys.Event) bool

// Tap is a system-wide input interceptor.
type Tap interface {
	// Start installs the interceptor. Returns ErrNotPermitted when the
	// platform refuses.
	Start(Handler) error
	// Stop tears the interceptor down; pending events are discarded.
	Stop()
	// Disabled signals that the platform force-disabled the tap (for
	// example after the user revoked accessibility trust). The host decides
	// whether to re-Start after the permission changes.
	Disabled() <-chan struct{}
	// CanSwallow reports whether this backend can actually consume events.
	// Observe-only backends still drive matching but cannot block delivery.
	CanSwallow() bool
}
