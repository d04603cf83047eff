// Package action executes resolved bindings: activating, hiding, or cycling
// applications, opening URLs and files, and running commands and named
// automations. Only the decision to dispatch happens on the caller's thread;
// execution is always asynchronous.
package action

import (
	"context"
)

// Opener hands a resource to the platform's default handler.
type Opener interface {
	OpenURL(address string) error
	OpenFile(path string) error
}

// Runner executes a shell command, optionally in a visible terminal.
type Runner interface {
	Run(ctx context.Context, command string, inTerminal bool) error
}

// AutomationRunner invokes a named automation.
type AutomationRunner interface {
	RunAutomation(ctx context.Context, name string) error
}

// Cycler advances focus among a process's windows.
type Cycler interface {
	Next(pid int) error
}
