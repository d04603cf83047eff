//go:build windows

package notify

import (
	toast "git.sr.ht/~jackmordaunt/go-toast/v2"
	"github.com/rs/zerolog"
)

type toastNotifier struct {
	log zerolog.Logger
}

func newPlatform(log zerolog.Logger) Notifier {
	return &toastNotifier{log: log}
}

func (n *toastNotifier) Notify(title, body string) error {
	notification := toast.Notification{
		AppID: "WarpKey",
		Title: title,
		Body:  body,
	}
	if err := notification.Push(); err != nil {
		n.log.Warn().Err(err).Msg("notification fallback to log")
		return LogNotifier{Log: n.log}.Notify(title, body)
	}
	return nil
}
