package action

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

type shortcutsRunner struct{}

// NewAutomations returns the named-automation runner. On macOS automations
// are Shortcuts, invoked through the shortcuts CLI.
func NewAutomations() AutomationRunner {
	return shortcutsRunner{}
}

func (shortcutsRunner) RunAutomation(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("empty automation name")
	}
	if runtime.GOOS != "darwin" {
		return fmt.Errorf("named automations not supported on %s", runtime.GOOS)
	}

	out, err := exec.CommandContext(ctx, "shortcuts", "run", name).CombinedOutput()
	if err != nil {
		return fmt.Errorf("shortcut %q: %w (%s)", name, err, truncate(string(out), 200))
	}
	return nil
}
