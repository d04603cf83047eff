//go:build darwin

package tap

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation -framework Cocoa
#import <CoreGraphics/CoreGraphics.h>
#import <CoreFoundation/CoreFoundation.h>
#import <Cocoa/Cocoa.h>

extern CGEventRef goTapCallback(CGEventTapProxy proxy, CGEventType type, CGEventRef event, void *userInfo);

// NX_SYSDEFINED carries media/consumer key payloads.
#define kSystemDefinedEventType 14

static CFMachPortRef createEventTap(void) {
	CGEventMask mask = CGEventMaskBit(kCGEventKeyDown)
		| CGEventMaskBit(kCGEventKeyUp)
		| CGEventMaskBit(kCGEventFlagsChanged)
		| CGEventMaskBit(kSystemDefinedEventType);
	return CGEventTapCreate(kCGSessionEventTap, kCGHeadInsertEventTap,
		kCGEventTapOptionDefault, mask, (CGEventTapCallBack)goTapCallback, NULL);
}

// systemDefinedPayload extracts the NSEvent subtype and first data word from
// a system-defined CGEvent. Returns 0 on success.
static int systemDefinedPayload(CGEventRef event, int *subtype, uint32_t *data1) {
	NSEvent *ns = [NSEvent eventWithCGEvent:event];
	if (!ns) return -1;
	*subtype = (int)[ns subtype];
	*data1 = (uint32_t)[ns data1];
	return 0;
}
*/
import "C"

import (
	"runtime"
	"sync"
	"unsafe"

	"github.com/rs/zerolog"

	"github.com/petems/warpkey/internal/keys"
)

// Device-specific modifier flag bits: the authoritative "physically down"
// state for each left/right modifier key.
var modifierFlagBits = map[keys.Code]uint64{
	keys.CodeShiftLeft:    0x00000002,
	keys.CodeShiftRight:   0x00000004,
	keys.CodeControlLeft:  0x00000001,
	keys.CodeControlRight: 0x00002000,
	keys.CodeOptionLeft:   0x00000020,
	keys.CodeOptionRight:  0x00000040,
	keys.CodeCommandLeft:  0x00000008,
	keys.CodeCommandRight: 0x00000010,
	keys.CodeCapsLock:     uint64(C.kCGEventFlagMaskAlphaShift),
	keys.CodeFunction:     uint64(C.kCGEventFlagMaskSecondaryFn),
}

type darwinTap struct {
	log zerolog.Logger

	mu       sync.Mutex
	handler  Handler
	port     C.CFMachPortRef
	runLoop  C.CFRunLoopRef
	running  bool
	disabled chan struct{}
}

// The tap callback carries no closure context, so the active tap is process
// global; only one interceptor exists per process.
var (
	activeMu  sync.Mutex
	activeTap *darwinTap
)

// New creates the macOS event tap.
func New(log zerolog.Logger) Tap {
	return &darwinTap{
		log:      log,
		disabled: make(chan struct{}, 1),
	}
}

func (t *darwinTap) CanSwallow() bool { return true }

func (t *darwinTap) Disabled() <-chan struct{} { return t.disabled }

func (t *darwinTap) Start(h Handler) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return nil
	}

	activeMu.Lock()
	activeTap = t
	activeMu.Unlock()

	t.handler = h

	ready := make(chan error, 1)
	go t.runLoopThread(ready)
	if err := <-ready; err != nil {
		activeMu.Lock()
		activeTap = nil
		activeMu.Unlock()
		return err
	}

	t.running = true
	t.log.Info().Msg("event tap installed")
	return nil
}

// runLoopThread owns the tap's run loop. The interception callback fires on
// this thread, giving the engine its single-writer execution context.
func (t *darwinTap) runLoopThread(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	port := C.createEventTap()
	if port == nil {
		ready <- ErrNotPermitted
		return
	}

	source := C.CFMachPortCreateRunLoopSource(C.kCFAllocatorDefault, port, 0)
	loop := C.CFRunLoopGetCurrent()
	C.CFRunLoopAddSource(loop, source, C.kCFRunLoopCommonModes)
	C.CGEventTapEnable(port, C.bool(true))

	t.mu.Lock()
	t.port = port
	t.runLoop = loop
	t.mu.Unlock()

	ready <- nil
	C.CFRunLoopRun()

	C.CFRunLoopRemoveSource(loop, source, C.kCFRunLoopCommonModes)
	C.CFRelease(C.CFTypeRef(source))
	C.CFRelease(C.CFTypeRef(port))
}

func (t *darwinTap) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.running = false

	C.CGEventTapEnable(t.port, C.bool(false))
	C.CFRunLoopStop(t.runLoop)

	activeMu.Lock()
	if activeTap == t {
		activeTap = nil
	}
	activeMu.Unlock()

	t.log.Info().Msg("event tap removed")
}

func (t *darwinTap) notifyDisabled() {
	select {
	case t.disabled <- struct{}{}:
	default:
	}
}

// handleEvent normalizes one CGEvent and asks the handler whether to swallow
// it. Modifier flag changes are always passed through: consuming them would
// desynchronize the OS modifier state.
func (t *darwinTap) handleEvent(typ C.CGEventType, event C.CGEventRef) (swallow bool) {
	t.mu.Lock()
	h := t.handler
	t.mu.Unlock()
	if h == nil {
		return false
	}

	switch typ {
	case C.kCGEventKeyDown, C.kCGEventKeyUp:
		code := keys.Code(C.CGEventGetIntegerValueField(event, C.kCGKeyboardEventKeycode))
		ev, ok := keys.NormalizeKey(code, typ == C.kCGEventKeyDown)
		if !ok {
			return false
		}
		return h(ev)

	case C.kCGEventFlagsChanged:
		code := keys.Code(C.CGEventGetIntegerValueField(event, C.kCGKeyboardEventKeycode))
		bit, known := modifierFlagBits[code]
		if !known {
			return false
		}
		flags := uint64(C.CGEventGetFlags(event))
		ev, ok := keys.NormalizeFlagsChanged(code, flags&bit != 0)
		if !ok {
			return false
		}
		h(ev)
		return false

	case C.kSystemDefinedEventType:
		var subtype C.int
		var data1 C.uint32_t
		if C.systemDefinedPayload(event, &subtype, &data1) != 0 {
			return false
		}
		ev, ok := keys.NormalizeSystemDefined(int(subtype), uint32(data1))
		if !ok {
			return false
		}
		return h(ev)
	}

	return false
}

//export goTapCallback
func goTapCallback(proxy C.CGEventTapProxy, typ C.CGEventType, event C.CGEventRef, userInfo unsafe.Pointer) C.CGEventRef {
	activeMu.Lock()
	t := activeTap
	activeMu.Unlock()
	if t == nil {
		return event
	}

	switch typ {
	case C.kCGEventTapDisabledByTimeout:
		// A slow callback got us disabled; re-enable and move on.
		t.log.Warn().Msg("event tap disabled by timeout, re-enabling")
		C.CGEventTapEnable(t.port, C.bool(true))
		return event
	case C.kCGEventTapDisabledByUserInput:
		t.log.Warn().Msg("event tap disabled by user input")
		t.notifyDisabled()
		return event
	}

	if t.handleEvent(typ, event) {
		return nil // swallow
	}
	return event
}
