//go:build !windows

package action

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"syscall"

	"golang.org/x/sys/unix"
)

// newShellCmd prepares a detached shell command in its own process group, so
// cancellation can reap the whole tree rather than just the shell.
func newShellCmd(ctx context.Context, command string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}
	return cmd
}

// runInTerminal opens the command in a visible terminal window.
func runInTerminal(ctx context.Context, command string) error {
	if runtime.GOOS == "darwin" {
		script := fmt.Sprintf(`tell application "Terminal"
	activate
	do script %q
end tell`, command)
		return exec.CommandContext(ctx, "osascript", "-e", script).Run()
	}

	// Debian alternatives name; most distros symlink their terminal here.
	term, err := exec.LookPath("x-terminal-emulator")
	if err != nil {
		return fmt.Errorf("no terminal emulator found: %w", err)
	}
	return exec.CommandContext(ctx, term, "-e", "/bin/sh", "-c", command).Start()
}
