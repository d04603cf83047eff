//go:build !darwin

package permissions

// CanMonitor always reports true on platforms without an accessibility
// trust gate.
func CanMonitor() bool {
	return true
}

// Prompt is a no-op on non-macOS platforms.
func Prompt() bool {
	return true
}
