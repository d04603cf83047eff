//go:build darwin

package notify

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

type osascriptNotifier struct {
	log zerolog.Logger
}

func newPlatform(log zerolog.Logger) Notifier {
	return &osascriptNotifier{log: log}
}

// Notify posts a user notification via osascript so the process does not need
// a bundled notification entitlement.
func (n *osascriptNotifier) Notify(title, body string) error {
	script := fmt.Sprintf("display notification %q with title %q",
		escapeAppleScript(body), escapeAppleScript(title))

	if err := exec.Command("osascript", "-e", script).Run(); err != nil {
		n.log.Warn().Err(err).Str("title", title).Msg("notification fallback to log")
		return LogNotifier{Log: n.log}.Notify(title, body)
	}
	return nil
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
