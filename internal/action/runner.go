package action

import (
	"context"
	"fmt"
)

type execRunner struct{}

// NewRunner returns a Runner that executes commands through the shell.
func NewRunner() Runner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, command string, inTerminal bool) error {
	if command == "" {
		return fmt.Errorf("empty command")
	}

	if inTerminal {
		return runInTerminal(ctx, command)
	}

	cmd := newShellCmd(ctx, command)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w (%s)", command, err, truncate(string(out), 200))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
