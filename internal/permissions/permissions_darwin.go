//go:build darwin

package permissions

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework ApplicationServices -framework Cocoa
#import <ApplicationServices/ApplicationServices.h>
#import <Cocoa/Cocoa.h>

int checkAccessibilityPermission(int prompt) {
    if (prompt) {
        NSDictionary *options = @{(__bridge id)kAXTrustedCheckOptionPrompt: @YES};
        return AXIsProcessTrustedWithOptions((__bridge CFDictionaryRef)options) ? 1 : 0;
    }
    return AXIsProcessTrusted() ? 1 : 0;
}
*/
import "C"

// CanMonitor reports whether the process is trusted for accessibility, which
// gates both the event tap and window introspection.
func CanMonitor() bool {
	return int(C.checkAccessibilityPermission(0)) == 1
}

// Prompt asks the system to show the accessibility approval dialog and
// returns the current trust state.
func Prompt() bool {
	return int(C.checkAccessibilityPermission(1)) == 1
}
