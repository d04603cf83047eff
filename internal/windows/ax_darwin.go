//go:build darwin

package windows

/*
#cgo LDFLAGS: -framework ApplicationServices -framework CoreFoundation

#include <ApplicationServices/ApplicationServices.h>
#include <CoreFoundation/CoreFoundation.h>
#include <stdlib.h>

// Private but long-stable: resolves the CGWindowID backing an AXUIElement,
// giving us a stable identity for ordering and focus matching.
extern AXError _AXUIElementGetWindow(AXUIElementRef element, CGWindowID *out);

typedef struct {
	uint32_t id;
	char     title[256];
	int      x;
	int      y;
	int      minimized;
	int      standard;
} axWindowInfo;

static void fillWindowInfo(AXUIElementRef win, axWindowInfo *info) {
	CGWindowID wid = 0;
	if (_AXUIElementGetWindow(win, &wid) == kAXErrorSuccess) {
		info->id = (uint32_t)wid;
	}

	CFTypeRef value = NULL;
	if (AXUIElementCopyAttributeValue(win, kAXTitleAttribute, &value) == kAXErrorSuccess && value) {
		CFStringGetCString((CFStringRef)value, info->title, sizeof(info->title), kCFStringEncodingUTF8);
		CFRelease(value);
	}

	if (AXUIElementCopyAttributeValue(win, kAXPositionAttribute, &value) == kAXErrorSuccess && value) {
		CGPoint p;
		if (AXValueGetValue((AXValueRef)value, kAXValueTypeCGPoint, &p)) {
			info->x = (int)p.x;
			info->y = (int)p.y;
		}
		CFRelease(value);
	}

	if (AXUIElementCopyAttributeValue(win, kAXMinimizedAttribute, &value) == kAXErrorSuccess && value) {
		info->minimized = CFBooleanGetValue((CFBooleanRef)value) ? 1 : 0;
		CFRelease(value);
	}

	info->standard = 1;
	if (AXUIElementCopyAttributeValue(win, kAXSubroleAttribute, &value) == kAXErrorSuccess && value) {
		info->standard = CFEqual(value, kAXStandardWindowSubrole) ? 1 : 0;
		CFRelease(value);
	}
}

static int listWindows(pid_t pid, axWindowInfo *out, int max) {
	AXUIElementRef app = AXUIElementCreateApplication(pid);
	if (!app) return -1;

	CFArrayRef wins = NULL;
	AXError err = AXUIElementCopyAttributeValue(app, kAXWindowsAttribute, (CFTypeRef *)&wins);
	if (err != kAXErrorSuccess || !wins) {
		CFRelease(app);
		return -1;
	}

	CFIndex n = CFArrayGetCount(wins);
	int count = 0;
	for (CFIndex i = 0; i < n && count < max; i++) {
		AXUIElementRef win = (AXUIElementRef)CFArrayGetValueAtIndex(wins, i);
		axWindowInfo info = {0};
		fillWindowInfo(win, &info);
		out[count++] = info;
	}

	CFRelease(wins);
	CFRelease(app);
	return count;
}

static uint32_t focusedWindowID(pid_t pid) {
	AXUIElementRef app = AXUIElementCreateApplication(pid);
	if (!app) return 0;

	CFTypeRef win = NULL;
	uint32_t wid = 0;
	if (AXUIElementCopyAttributeValue(app, kAXFocusedWindowAttribute, &win) == kAXErrorSuccess && win) {
		CGWindowID id = 0;
		if (_AXUIElementGetWindow((AXUIElementRef)win, &id) == kAXErrorSuccess) {
			wid = (uint32_t)id;
		}
		CFRelease(win);
	}
	CFRelease(app);
	return wid;
}

static int raiseWindow(pid_t pid, uint32_t targetID) {
	AXUIElementRef app = AXUIElementCreateApplication(pid);
	if (!app) return -1;

	CFArrayRef wins = NULL;
	if (AXUIElementCopyAttributeValue(app, kAXWindowsAttribute, (CFTypeRef *)&wins) != kAXErrorSuccess || !wins) {
		CFRelease(app);
		return -1;
	}

	int rc = -1;
	CFIndex n = CFArrayGetCount(wins);
	for (CFIndex i = 0; i < n; i++) {
		AXUIElementRef win = (AXUIElementRef)CFArrayGetValueAtIndex(wins, i);
		CGWindowID wid = 0;
		if (_AXUIElementGetWindow(win, &wid) != kAXErrorSuccess) continue;
		if ((uint32_t)wid != targetID) continue;

		AXUIElementSetAttributeValue(win, kAXMinimizedAttribute, kCFBooleanFalse);
		AXUIElementPerformAction(win, kAXRaiseAction);
		AXUIElementSetAttributeValue(app, kAXFrontmostAttribute, kCFBooleanTrue);
		rc = 0;
		break;
	}

	CFRelease(wins);
	CFRelease(app);
	return rc;
}
*/
import "C"

import (
	"fmt"
)

const maxWindows = 64

type axIntrospector struct{}

// NewIntrospector returns the accessibility-backed introspector for macOS.
func NewIntrospector() Introspector {
	return &axIntrospector{}
}

func (axIntrospector) Windows(pid int) ([]Window, error) {
	var buf [maxWindows]C.axWindowInfo
	n := C.listWindows(C.pid_t(pid), &buf[0], C.int(maxWindows))
	if n < 0 {
		return nil, fmt.Errorf("accessibility query failed for pid %d", pid)
	}

	out := make([]Window, 0, int(n))
	for i := 0; i < int(n); i++ {
		info := buf[i]
		out = append(out, Window{
			ID:        uint32(info.id),
			Title:     C.GoString(&info.title[0]),
			X:         int(info.x),
			Y:         int(info.y),
			Minimized: info.minimized != 0,
			Standard:  info.standard != 0,
		})
	}
	return out, nil
}

func (axIntrospector) FocusedWindowID(pid int) (uint32, error) {
	return uint32(C.focusedWindowID(C.pid_t(pid))), nil
}

func (axIntrospector) Raise(pid int, w Window) error {
	if C.raiseWindow(C.pid_t(pid), C.uint32_t(w.ID)) != 0 {
		return fmt.Errorf("window %d of pid %d not raisable", w.ID, pid)
	}
	return nil
}
