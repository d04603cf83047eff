// Package notify delivers structured (title, body) notices to the user.
// The engine reports binding assignment, conflicts, and action failures here;
// it never renders UI itself.
package notify

import "github.com/rs/zerolog"

// Notifier presents a notice to the user.
type Notifier interface {
	Notify(title, body string) error
}

// New returns the platform notifier.
func New(log zerolog.Logger) Notifier {
	return newPlatform(log)
}

// LogNotifier writes notices to the log only. Used headless and as the
// fallback when the platform notifier is unavailable.
type LogNotifier struct {
	Log zerolog.Logger
}

func (n LogNotifier) Notify(title, body string) error {
	n.Log.Info().Str("title", title).Str("body", body).Msg("notice")
	return nil
}
