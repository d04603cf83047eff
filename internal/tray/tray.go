package tray

import (
	"context"
	"fmt"

	"github.com/getlantern/systray"
	"github.com/pkg/browser"
	"github.com/rs/zerolog"

	"github.com/petems/warpkey/internal/app"
	"github.com/petems/warpkey/internal/config"
	"github.com/petems/warpkey/internal/keys"
	"github.com/petems/warpkey/internal/logging"
	"github.com/petems/warpkey/internal/permissions"
)

type UI struct {
	app     *app.App
	cfg     *config.Config
	version string
	commit  string
	log     zerolog.Logger

	// Menu items
	mPause     *systray.MenuItem
	mProfiles  *systray.MenuItem
	mConflicts *systray.MenuItem
	mPerms     *systray.MenuItem
}

// Status update methods for the app to call
func (u *UI) SetMonitoring() {
	u.updateStatus("monitoring")
}

func (u *UI) SetPaused() {
	u.updateStatus("paused")
}

func (u *UI) SetBlocked() {
	u.updateStatus("blocked")
}

func New(application *app.App, cfg *config.Config, version, commit string) *UI {
	log := logging.New()
	return &UI{
		app:     application,
		cfg:     cfg,
		version: version,
		commit:  commit,
		log:     log,
	}
}

// SetApp sets the app reference (for circular dependency resolution)
func (u *UI) SetApp(application *app.App) {
	u.app = application
}

func (u *UI) Run(ctx context.Context) error {
	systray.Run(u.onReady, u.onExit)
	return nil
}

func (u *UI) onReady() {
	if u.app.IsMonitoring() {
		u.updateStatus("monitoring")
	} else {
		u.updateStatus("blocked")
	}
	systray.SetTooltip(fmt.Sprintf("Global hotkeys (profile: %s)", u.cfg.Active().Name))

	u.mPause = systray.AddMenuItem("Pause Hotkeys", "Suspend matching without quitting")
	mSheet := systray.AddMenuItem("Cheat Sheet", "Copy the active bindings to the clipboard")
	systray.AddSeparator()

	u.mProfiles = systray.AddMenuItem("Profile", "Switch the active profile")
	u.buildProfileMenu()

	u.mConflicts = systray.AddMenuItem("Conflicts", "Combinations with multiple bindings")
	u.refreshConflicts()

	systray.AddSeparator()
	u.mPerms = systray.AddMenuItem("Re-check Permissions", "Retry after granting accessibility access")
	if u.app.IsMonitoring() {
		u.mPerms.Hide()
	}

	systray.AddSeparator()
	mLogs := systray.AddMenuItem("Open Logs", "View application logs")
	mAbout := systray.AddMenuItem("About", "About WarpKey")
	mQuit := systray.AddMenuItem("Quit", "Exit application")

	// Event loop
	go u.handleEvents(mSheet, mLogs, mAbout, mQuit)
}

func (u *UI) handleEvents(mSheet, mLogs, mAbout, mQuit *systray.MenuItem) {
	for {
		select {
		case <-u.mPause.ClickedCh:
			u.togglePause()
		case <-mSheet.ClickedCh:
			u.app.CheatSheetToClipboard()
		case <-u.mPerms.ClickedCh:
			u.recheckPermissions()
		case <-mLogs.ClickedCh:
			u.openLogs()
		case <-mAbout.ClickedCh:
			u.showAbout()
		case <-mQuit.ClickedCh:
			systray.Quit()
			return
		}
	}
}

func (u *UI) buildProfileMenu() {
	names, active := u.app.Profiles()
	profileItems := make(map[string]*systray.MenuItem)

	for _, name := range names {
		item := u.mProfiles.AddSubMenuItem(name, "")
		if name == active {
			item.Check()
		}
		profileItems[name] = item

		go func(profile string, menuItem *systray.MenuItem) {
			for {
				<-menuItem.ClickedCh
				if err := u.app.SetProfile(profile); err != nil {
					u.log.Error().Err(err).Str("profile", profile).Msg("Failed to switch profile")
					continue
				}
				// Uncheck all other items
				for name, itm := range profileItems {
					if name != profile {
						itm.Uncheck()
					}
				}
				menuItem.Check()
				u.log.Info().Str("profile", profile).Msg("Changed profile")
				u.refreshConflicts()
			}
		}(name, item)
	}
}

// refreshConflicts rebuilds the conflicts submenu from the active registry.
// Entries are informational; conflicting bindings all stay enabled.
func (u *UI) refreshConflicts() {
	conflicts := u.app.Conflicts()
	if len(conflicts) == 0 {
		u.mConflicts.SetTitle("Conflicts: none")
		u.mConflicts.Disable()
		return
	}

	u.mConflicts.SetTitle(fmt.Sprintf("Conflicts: %d", len(conflicts)))
	u.mConflicts.Enable()
	for _, c := range conflicts {
		label := fmt.Sprintf("%s (%s): %d bindings",
			keys.DescribeSignature(c.Signature), c.Trigger, len(c.IDs))
		item := u.mConflicts.AddSubMenuItem(label, "")
		item.Disable()
	}
}

func (u *UI) togglePause() {
	if u.app.IsPaused() {
		u.app.Resume()
		u.mPause.SetTitle("Pause Hotkeys")
		u.log.Info().Msg("Resumed from tray")
	} else {
		u.app.Pause()
		u.mPause.SetTitle("Resume Hotkeys")
		u.log.Info().Msg("Paused from tray")
	}
}

func (u *UI) recheckPermissions() {
	if !permissions.Prompt() {
		u.log.Warn().Msg("Accessibility permission still missing")
		return
	}
	if err := u.app.PermissionChanged(); err != nil {
		u.log.Error().Err(err).Msg("Failed to restart monitoring")
		return
	}
	u.mPerms.Hide()
}

func (u *UI) openLogs() {
	if err := browser.OpenFile(logging.Path()); err != nil {
		u.log.Error().Err(err).Msg("Failed to open log file")
	}
}

func (u *UI) showAbout() {
	fmt.Printf("WarpKey %s (%s)\nGlobal hotkeys for apps, files, and scripts\n", u.version, u.commit)
}

func (u *UI) onExit() {
	// Cleanup
}

// updateStatus sets the tray title with a keyboard emoji and status indicator
func (u *UI) updateStatus(status string) {
	emoji := emojiForStatus(status)
	systray.SetTitle(fmt.Sprintf("⌨️ %s", emoji))
}

// emojiForStatus returns the appropriate status emoji
func emojiForStatus(status string) string {
	switch status {
	case "monitoring":
		return "🟢" // Green - intercepting input
	case "paused":
		return "🟡" // Yellow - tap installed, matching suspended
	case "blocked":
		return "🔴" // Red - no accessibility permission
	default:
		return "🟢"
	}
}

