//go:build windows

package action

import (
	"context"
	"os/exec"
)

func newShellCmd(ctx context.Context, command string) *exec.Cmd {
	return exec.CommandContext(ctx, "cmd", "/c", command)
}

func runInTerminal(ctx context.Context, command string) error {
	return exec.CommandContext(ctx, "cmd", "/c", "start", "cmd", "/k", command).Start()
}
