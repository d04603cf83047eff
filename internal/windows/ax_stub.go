//go:build !darwin

package windows

import "fmt"

type stubIntrospector struct{}

// NewIntrospector returns a no-op introspector on platforms without
// accessibility-based window enumeration.
func NewIntrospector() Introspector {
	return stubIntrospector{}
}

func (stubIntrospector) Windows(pid int) ([]Window, error) {
	return nil, fmt.Errorf("window introspection not supported on this platform")
}

func (stubIntrospector) FocusedWindowID(pid int) (uint32, error) {
	return 0, nil
}

func (stubIntrospector) Raise(pid int, w Window) error {
	return fmt.Errorf("window raising not supported on this platform")
}
