//go:build linux

package notify

import (
	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
)

type dbusNotifier struct {
	log zerolog.Logger
}

func newPlatform(log zerolog.Logger) Notifier {
	return &dbusNotifier{log: log}
}

// Notify posts a desktop notification over the org.freedesktop.Notifications
// session bus interface.
func (n *dbusNotifier) Notify(title, body string) error {
	conn, err := dbus.SessionBus()
	if err != nil {
		n.log.Warn().Err(err).Msg("no session bus, notification fallback to log")
		return LogNotifier{Log: n.log}.Notify(title, body)
	}

	obj := conn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications")
	call := obj.Call("org.freedesktop.Notifications.Notify", 0,
		"warpkey",          // app name
		uint32(0),          // replaces id
		"",                 // icon
		title, body,
		[]string{},               // actions
		map[string]dbus.Variant{}, // hints
		int32(-1),                // expire timeout
	)
	if call.Err != nil {
		n.log.Warn().Err(call.Err).Msg("notification fallback to log")
		return LogNotifier{Log: n.log}.Notify(title, body)
	}
	return nil
}
