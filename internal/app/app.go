// Package app wires the tap, tracker, engine, and dispatcher into the
// running hotkey daemon and owns profile switching, pause state, and the
// reserved cheat-sheet and quick-assign actions.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/petems/warpkey/internal/action"
	"github.com/petems/warpkey/internal/apps"
	"github.com/petems/warpkey/internal/config"
	"github.com/petems/warpkey/internal/engine"
	"github.com/petems/warpkey/internal/keys"
	"github.com/petems/warpkey/internal/notify"
	"github.com/petems/warpkey/internal/tap"
)

// ErrNotMonitoring means the input interceptor is not installed, usually
// because accessibility permission is missing.
var ErrNotMonitoring = errors.New("not monitoring input")

// StatusUpdater is an interface for updating status (e.g., tray icon)
type StatusUpdater interface {
	SetMonitoring()
	SetPaused()
	SetBlocked()
}

// Permissions reports whether input interception is allowed.
type Permissions interface {
	CanMonitor() bool
	Prompt() bool
}

type Params struct {
	Tap        tap.Tap
	Apps       apps.Launcher
	Dispatcher *action.Dispatcher
	Config     *config.Config
	ConfigPath string
	Perms      Permissions
	Notifier   notify.Notifier
	Logger     zerolog.Logger
	Status     StatusUpdater // Optional - can be nil
}

type App struct {
	tap        tap.Tap
	apps       apps.Launcher
	dispatcher *action.Dispatcher
	perms      Permissions
	notifier   notify.Notifier
	log        zerolog.Logger
	status     StatusUpdater
	configPath string

	tracker *keys.Tracker
	machine *engine.Machine

	mu            sync.Mutex
	cfg           *config.Config
	monitoring    bool
	paused        bool
	assignArmed   bool
	lastConflicts int
	// watchDone releases the disabled-watcher goroutine on shutdown.
	watchDone chan struct{}
}

func New(p Params) *App {
	a := &App{
		tap:        p.Tap,
		apps:       p.Apps,
		dispatcher: p.Dispatcher,
		perms:      p.Perms,
		notifier:   p.Notifier,
		log:        p.Logger,
		status:     p.Status,
		configPath: p.ConfigPath,
		cfg:        p.Config,
		tracker:    keys.NewTracker(),
	}

	a.machine = engine.New(engine.Params{
		Hold:             p.Config.Engine.HoldDuration(),
		MultiPressWindow: p.Config.Engine.MultiPressWindow(),
		Fire:             a.onFired,
		Reserved:         a.onReserved,
		ActiveSignature:  a.tracker.ActiveSignature,
		Logger:           p.Logger,
	})
	a.rebuildLocked()
	return a
}

// SetStatus sets the status updater after construction (the tray needs the
// app and vice versa).
func (a *App) SetStatus(s StatusUpdater) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = s
}

// Start installs the input interceptor. Returns ErrNotMonitoring when the
// platform refuses or permission is missing; call PermissionChanged to retry
// after the user grants access.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.startLocked()
}

func (a *App) startLocked() error {
	if a.monitoring {
		return nil
	}

	if a.perms != nil && !a.perms.CanMonitor() {
		a.log.Warn().Msg("accessibility permission missing")
		a.setBlocked()
		return ErrNotMonitoring
	}

	if err := a.tap.Start(a.HandleEvent); err != nil {
		a.log.Error().Err(err).Msg("failed to install event tap")
		a.setBlocked()
		return fmt.Errorf("install event tap: %w", err)
	}

	a.monitoring = true
	a.rebuildLocked()
	a.setMonitoring()
	a.watchDone = make(chan struct{})
	go a.watchDisabled(a.watchDone)
	return nil
}

// watchDisabled reacts to the platform force-disabling the tap. The done
// channel releases the goroutine on shutdown so repeated permission cycles
// cannot accumulate watchers.
func (a *App) watchDisabled(done <-chan struct{}) {
	select {
	case <-done:
		return
	case <-a.tap.Disabled():
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.monitoring {
		return
	}
	a.monitoring = false
	a.teardownLocked()
	a.setBlocked()
	a.notifier.Notify("Hotkeys stopped",
		"Input monitoring was disabled. Re-grant accessibility access to resume.")
}

// teardownLocked stops the tap and deterministically cancels every pending
// timer so nothing fires into torn-down state.
func (a *App) teardownLocked() {
	a.tap.Stop()
	a.machine.SetBindings(nil, nil)
	a.tracker.Reset()
}

// PermissionChanged re-checks accessibility trust and restarts the tap if it
// is now granted. Called from the host on its explicit signal, never polled.
func (a *App) PermissionChanged() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.monitoring {
		return nil
	}
	return a.startLocked()
}

// CanMonitor reports the current permission state.
func (a *App) CanMonitor() bool {
	return a.perms == nil || a.perms.CanMonitor()
}

// IsMonitoring reports whether the interceptor is installed.
func (a *App) IsMonitoring() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.monitoring
}

// HandleEvent is the per-event entry point, invoked from the tap's single
// interception thread. The tracker is updated on every observed event before
// any matching logic runs, then the engine decides whether to swallow.
func (a *App) HandleEvent(ev keys.Event) bool {
	a.mu.Lock()
	paused := a.paused
	armed := a.assignArmed
	a.mu.Unlock()

	if ev.Down {
		a.tracker.Observe(ev)
		if paused {
			return false
		}
		sig := a.tracker.ActiveSignature()
		if armed && !ev.Modifier {
			return a.captureAssignment(sig)
		}
		return a.machine.HandleKeyDown(sig)
	}

	// The release completes the chord as it was before this key came up.
	prev := a.tracker.ActiveSignature()
	a.tracker.Observe(ev)
	if paused {
		return false
	}
	return a.machine.HandleKeyUp(prev)
}

// Pause suspends matching without tearing down the tap; events pass through.
func (a *App) Pause() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.paused = true
	a.machine.SetBindings(nil, nil)
	a.setPaused()
	a.log.Info().Msg("matching paused")
}

// Resume re-enables matching.
func (a *App) Resume() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.paused = false
	a.rebuildLocked()
	if a.monitoring {
		a.setMonitoring()
	}
	a.log.Info().Msg("matching resumed")
}

// IsPaused reports the pause state.
func (a *App) IsPaused() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.paused
}

// onFired dispatches a resolved binding. Runs off the interception thread.
func (a *App) onFired(b config.Binding, trigger config.TriggerType) {
	a.dispatcher.Dispatch(b, trigger)
}

// onReserved handles the cheat-sheet and quick-assign toggles.
func (a *App) onReserved(id uuid.UUID) {
	switch id {
	case config.CheatSheetID:
		a.showCheatSheet()
	case config.QuickAssignID:
		a.toggleQuickAssign()
	}
}

// CheatSheetToClipboard copies the cheat sheet and raises a notification,
// same as the reserved hotkey.
func (a *App) CheatSheetToClipboard() {
	a.showCheatSheet()
}

func (a *App) showCheatSheet() {
	sheet := a.CheatSheet()
	if err := clipboard.WriteAll(sheet); err != nil {
		a.log.Warn().Err(err).Msg("cheat sheet clipboard copy failed")
	}
	a.notifier.Notify("WarpKey bindings", sheet)
}

// CheatSheet renders the active profile's bindings as text.
func (a *App) CheatSheet() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	bindings := a.cfg.Active().Bindings
	if len(bindings) == 0 {
		return "No bindings in profile " + a.cfg.Active().Name
	}

	var b strings.Builder
	for _, binding := range bindings {
		fmt.Fprintf(&b, "%s  →  %s\n", binding.DescribeKeys(), binding.Target.Describe())
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *App) toggleQuickAssign() {
	a.mu.Lock()
	a.assignArmed = !a.assignArmed
	armed := a.assignArmed
	a.mu.Unlock()

	if armed {
		a.notifier.Notify("Quick assign", "Press a key combination to bind the current app")
	} else {
		a.notifier.Notify("Quick assign", "Cancelled")
	}
}

// captureAssignment binds the pressed chord to the frontmost application.
// Invoked while quick-assign is armed, on the first non-modifier key-down.
func (a *App) captureAssignment(sig keys.Signature) bool {
	a.mu.Lock()
	a.assignArmed = false
	a.mu.Unlock()

	bundleID, err := a.apps.Frontmost()
	if err != nil {
		a.log.Error().Err(err).Msg("quick assign: no frontmost app")
		a.notifier.Notify("Quick assign failed", err.Error())
		return true
	}

	var bkeys []config.BindingKey
	for _, c := range a.tracker.Active() {
		bkeys = append(bkeys, config.BindingKey{Code: c, Modifier: keys.IsModifier(c)})
	}
	binding := config.NewBinding(bkeys, config.Press, config.AppTarget(bundleID), config.ActivateOrHide)

	a.mu.Lock()
	a.cfg.UpsertBinding(binding)
	err = a.saveLocked()
	a.rebuildLocked()
	a.mu.Unlock()

	if err != nil {
		a.log.Error().Err(err).Msg("quick assign: save failed")
		a.notifier.Notify("Quick assign failed", err.Error())
		return true
	}

	a.log.Info().Str("bundle", bundleID).Str("signature", string(sig)).Msg("quick assigned")
	a.notifier.Notify("Hotkey assigned",
		fmt.Sprintf("%s  →  %s", binding.DescribeKeys(), bundleID))
	return true
}

// ReloadConfig re-reads the config file after an external change
// notification and rebuilds the registry. In-flight tracking entries are
// cancelled so edited bindings cannot fire stale. Engine timing knobs and the
// log level are reapplied as well.
func (a *App) ReloadConfig() error {
	cfg, err := config.LoadFrom(a.configPath)
	if err != nil {
		a.log.Error().Err(err).Msg("config reload failed, keeping previous")
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.cfg = cfg
	a.machine.SetTiming(cfg.Engine.HoldDuration(), cfg.Engine.MultiPressWindow())
	a.dispatcher.SetAppDebounce(cfg.Engine.AppDebounce())
	if cfg.LogLevel != "" {
		if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
			a.log = a.log.Level(lvl)
		}
	}
	a.rebuildLocked()
	a.log.Info().Str("profile", cfg.Active().Name).Msg("config reloaded")
	return nil
}

// SetProfile switches the active profile.
func (a *App) SetProfile(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.cfg.SetActive(name); err != nil {
		return err
	}
	if err := a.saveLocked(); err != nil {
		return err
	}
	a.rebuildLocked()
	a.log.Info().Str("profile", name).Msg("profile switched")
	return nil
}

// Profiles lists the configured profile names and the active one.
func (a *App) Profiles() (names []string, active string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, p := range a.cfg.Profiles {
		names = append(names, p.Name)
	}
	return names, a.cfg.Active().Name
}

// RemoveBinding deletes a binding from the active profile.
func (a *App) RemoveBinding(id uuid.UUID) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.cfg.RemoveBinding(id) {
		return fmt.Errorf("binding %s not found", id)
	}
	if err := a.saveLocked(); err != nil {
		return err
	}
	a.rebuildLocked()
	return nil
}

// Conflicts reports the active registry's conflicting binding groups.
func (a *App) Conflicts() []engine.Conflict {
	return a.machine.Conflicts()
}

// rebuildLocked pushes the active profile into the machine and surfaces
// conflicts. Conflicting bindings stay enabled; the user is warned, not
// blocked.
func (a *App) rebuildLocked() {
	if a.paused {
		return
	}
	a.machine.SetBindings(a.cfg.Active().Bindings, a.cfg.Reserved())

	conflicts := a.machine.Conflicts()
	if len(conflicts) > 0 && len(conflicts) != a.lastConflicts {
		a.log.Warn().Int("groups", len(conflicts)).Msg("conflicting bindings")
		go a.notifier.Notify("Binding conflict",
			fmt.Sprintf("%d combinations have multiple bindings; all of them will fire", len(conflicts)))
	}
	a.lastConflicts = len(conflicts)
}

func (a *App) saveLocked() error {
	if a.configPath != "" {
		return a.cfg.SaveTo(a.configPath)
	}
	return a.cfg.Save()
}

func (a *App) setMonitoring() {
	if a.status != nil {
		a.status.SetMonitoring()
	}
}

func (a *App) setPaused() {
	if a.status != nil {
		a.status.SetPaused()
	}
}

func (a *App) setBlocked() {
	if a.status != nil {
		a.status.SetBlocked()
	}
}

// Shutdown tears down the tap and all pending timers.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.monitoring {
		a.monitoring = false
		close(a.watchDone)
		a.tap.Stop()
	}
	a.machine.Close()
	a.tracker.Reset()
	return nil
}
