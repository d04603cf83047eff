// Package apps is the process activation boundary: resolving, launching,
// activating, and hiding applications by bundle identifier.
package apps

// Launcher manipulates applications by their platform identifier.
type Launcher interface {
	// Running returns the pid of the running application, or ok=false.
	Running(bundleID string) (pid int, ok bool, err error)
	// Frontmost returns the identifier of the frontmost application.
	Frontmost() (bundleID string, err error)
	// IsFrontmost reports whether the process owns the frontmost app.
	IsFrontmost(pid int) (bool, error)
	// Activate brings the application to the front, unhiding if needed.
	Activate(pid int) error
	// Hide hides all of the application's windows.
	Hide(pid int) error
	// Launch starts the application and activates it. Returns an error when
	// the identifier cannot be resolved at all.
	Launch(bundleID string) error
}
