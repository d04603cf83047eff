//go:build !darwin

package tap

import (
	"sync"

	hook "github.com/robotn/gohook"
	"github.com/rs/zerolog"

	"github.com/petems/warpkey/internal/keys"
)

// hookTap drives matching from gohook's global keyboard hook. gohook only
// observes: matched chords still fire, but their keystrokes also reach the
// focused application.
type hookTap struct {
	log zerolog.Logger

	mu       sync.Mutex
	running  bool
	done     chan struct{}
	disabled chan struct{}
}

// New creates the portable observe-only tap.
func New(log zerolog.Logger) Tap {
	return &hookTap{
		log:      log,
		disabled: make(chan struct{}, 1),
	}
}

func (t *hookTap) CanSwallow() bool { return false }

func (t *hookTap) Disabled() <-chan struct{} { return t.disabled }

func (t *hookTap) Start(h Handler) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return nil
	}

	events := hook.Start()
	done := make(chan struct{})
	t.done = done
	t.running = true

	go func() {
		for {
			select {
			case <-done:
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				t.deliver(h, ev)
			}
		}
	}()

	t.log.Info().Msg("keyboard hook installed (observe-only)")
	return nil
}

func (t *hookTap) deliver(h Handler, ev hook.Event) {
	var down bool
	switch ev.Kind {
	case hook.KeyDown, hook.KeyHold:
		down = true
	case hook.KeyUp:
		down = false
	default:
		return
	}

	norm, ok := keys.NormalizeKey(keys.Code(ev.Rawcode), down)
	if !ok {
		return
	}
	h(norm) // swallow decision has no effect on an observe-only hook
}

func (t *hookTap) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.running = false
	close(t.done)
	hook.End()
	t.log.Info().Msg("keyboard hook removed")
}
