//go:build !darwin

package apps

import "fmt"

type stubLauncher struct{}

// New returns a launcher that rejects every operation. App bindings are only
// meaningful where the platform exposes application identities.
func New() Launcher {
	return stubLauncher{}
}

func (stubLauncher) Running(bundleID string) (int, bool, error) {
	return 0, false, fmt.Errorf("application lookup not supported on this platform")
}

func (stubLauncher) Frontmost() (string, error) {
	return "", fmt.Errorf("frontmost application not supported on this platform")
}

func (stubLauncher) IsFrontmost(pid int) (bool, error) {
	return false, nil
}

func (stubLauncher) Activate(pid int) error {
	return fmt.Errorf("application activation not supported on this platform")
}

func (stubLauncher) Hide(pid int) error {
	return fmt.Errorf("application hiding not supported on this platform")
}

func (stubLauncher) Launch(bundleID string) error {
	return fmt.Errorf("application launch not supported on this platform")
}
