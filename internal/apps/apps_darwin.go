//go:build darwin

package apps

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa
#import <Cocoa/Cocoa.h>
#include <stdlib.h>

static int runningPID(const char *bundleID) {
	NSString *bid = [NSString stringWithUTF8String:bundleID];
	NSArray<NSRunningApplication *> *apps =
		[NSRunningApplication runningApplicationsWithBundleIdentifier:bid];
	if ([apps count] == 0) return -1;
	return (int)[apps[0] processIdentifier];
}

static const char *frontmostBundleID() {
	NSRunningApplication *front = [[NSWorkspace sharedWorkspace] frontmostApplication];
	if (!front || !front.bundleIdentifier) return NULL;
	return strdup([front.bundleIdentifier UTF8String]);
}

static int isFrontmost(int pid) {
	NSRunningApplication *front = [[NSWorkspace sharedWorkspace] frontmostApplication];
	return (front && (int)[front processIdentifier] == pid) ? 1 : 0;
}

static int activateApp(int pid) {
	NSRunningApplication *app =
		[NSRunningApplication runningApplicationWithProcessIdentifier:(pid_t)pid];
	if (!app) return -1;
	[app unhide];
	return [app activateWithOptions:NSApplicationActivateAllWindows] ? 0 : -1;
}

static int hideApp(int pid) {
	NSRunningApplication *app =
		[NSRunningApplication runningApplicationWithProcessIdentifier:(pid_t)pid];
	if (!app) return -1;
	return [app hide] ? 0 : -1;
}

static int launchApp(const char *bundleID) {
	NSString *bid = [NSString stringWithUTF8String:bundleID];
	NSURL *url = [[NSWorkspace sharedWorkspace] URLForApplicationWithBundleIdentifier:bid];
	if (!url) return -1;
	[[NSWorkspace sharedWorkspace] openURL:url];
	return 0;
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

type cocoaLauncher struct{}

// New returns the Cocoa-backed launcher for macOS.
func New() Launcher {
	return cocoaLauncher{}
}

func (cocoaLauncher) Running(bundleID string) (int, bool, error) {
	cid := C.CString(bundleID)
	defer C.free(unsafe.Pointer(cid))

	pid := int(C.runningPID(cid))
	if pid < 0 {
		return 0, false, nil
	}
	return pid, true, nil
}

func (cocoaLauncher) Frontmost() (string, error) {
	cstr := C.frontmostBundleID()
	if cstr == nil {
		return "", fmt.Errorf("no frontmost application")
	}
	defer C.free(unsafe.Pointer(cstr))
	return C.GoString(cstr), nil
}

func (cocoaLauncher) IsFrontmost(pid int) (bool, error) {
	return C.isFrontmost(C.int(pid)) == 1, nil
}

func (cocoaLauncher) Activate(pid int) error {
	if C.activateApp(C.int(pid)) != 0 {
		return fmt.Errorf("activate pid %d failed", pid)
	}
	return nil
}

func (cocoaLauncher) Hide(pid int) error {
	if C.hideApp(C.int(pid)) != 0 {
		return fmt.Errorf("hide pid %d failed", pid)
	}
	return nil
}

func (cocoaLauncher) Launch(bundleID string) error {
	cid := C.CString(bundleID)
	defer C.free(unsafe.Pointer(cid))

	if C.launchApp(cid) != 0 {
		return fmt.Errorf("no application for identifier %q", bundleID)
	}
	return nil
}
