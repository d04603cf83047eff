package action

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/petems/warpkey/internal/apps"
	"github.com/petems/warpkey/internal/config"
	"github.com/petems/warpkey/internal/notify"
	"github.com/petems/warpkey/internal/windows"
)

const (
	defaultAppDebounce = 150 * time.Millisecond
	launchWait         = 5 * time.Second
	scriptTimeout      = 30 * time.Second
)

// Params wires a Dispatcher's collaborators.
type Params struct {
	Apps        apps.Launcher
	Opener      Opener
	Runner      Runner
	Automations AutomationRunner
	Cycler      Cycler
	Notifier    notify.Notifier
	// OnFired is invoked after an action executes, for UI feedback. May be
	// nil.
	OnFired func(config.Binding, config.TriggerType)
	// AppDebounce absorbs rapid duplicate key repeats before app actions.
	AppDebounce time.Duration
	Logger      zerolog.Logger
}

// Dispatcher executes resolved bindings.
type Dispatcher struct {
	apps        apps.Launcher
	opener      Opener
	runner      Runner
	automations AutomationRunner
	cycler      Cycler
	notifier    notify.Notifier
	onFired     func(config.Binding, config.TriggerType)
	log         zerolog.Logger

	mu          sync.Mutex
	appDebounce time.Duration
	// debouncers is keyed by binding ID: repeats of one binding coalesce
	// without suppressing a different binding resolved in the same window.
	debouncers map[uuid.UUID]func(func())
}

func NewDispatcher(p Params) *Dispatcher {
	if p.AppDebounce <= 0 {
		p.AppDebounce = defaultAppDebounce
	}
	if p.Opener == nil {
		p.Opener = NewOpener()
	}
	if p.Runner == nil {
		p.Runner = NewRunner()
	}
	if p.Automations == nil {
		p.Automations = NewAutomations()
	}
	if p.Notifier == nil {
		p.Notifier = notify.LogNotifier{Log: p.Logger}
	}
	return &Dispatcher{
		apps:        p.Apps,
		opener:      p.Opener,
		runner:      p.Runner,
		automations: p.Automations,
		cycler:      p.Cycler,
		notifier:    p.Notifier,
		onFired:     p.OnFired,
		log:         p.Logger,
		appDebounce: p.AppDebounce,
		debouncers:  make(map[uuid.UUID]func(func())),
	}
}

// SetAppDebounce replaces the debounce window. Existing per-binding
// debouncers are dropped so the new duration applies immediately.
func (d *Dispatcher) SetAppDebounce(w time.Duration) {
	if w <= 0 {
		w = defaultAppDebounce
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.appDebounce = w
	d.debouncers = make(map[uuid.UUID]func(func()))
}

func (d *Dispatcher) debouncerFor(id uuid.UUID) func(func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	db, ok := d.debouncers[id]
	if !ok {
		db = debounce.New(d.appDebounce)
		d.debouncers[id] = db
	}
	return db
}

// Dispatch executes the binding's action. Returns immediately; execution
// happens on the debounce timer goroutine (app actions) or a fresh goroutine
// (everything else), so a slow command never stalls key processing.
func (d *Dispatcher) Dispatch(b config.Binding, trigger config.TriggerType) {
	d.log.Debug().
		Str("binding", b.ID.String()).
		Stringer("trigger", trigger).
		Str("kind", string(b.Target.Kind)).
		Msg("dispatching")

	switch b.Target.Kind {
	case config.TargetApp:
		d.debouncerFor(b.ID)(func() { d.runApp(b, trigger) })
	case config.TargetURL:
		go d.run(b, trigger, "Open URL failed", func() error {
			return d.opener.OpenURL(b.Target.Address)
		})
	case config.TargetFile:
		go d.run(b, trigger, "Open file failed", func() error {
			return d.opener.OpenFile(b.Target.Path)
		})
	case config.TargetScript:
		go d.run(b, trigger, "Command failed", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), scriptTimeout)
			defer cancel()
			return d.runner.Run(ctx, b.Target.Command, b.Target.InTerminal)
		})
	case config.TargetAutomation:
		go d.run(b, trigger, "Automation failed", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), scriptTimeout)
			defer cancel()
			return d.automations.RunAutomation(ctx, b.Target.Name)
		})
	default:
		d.log.Error().Str("kind", string(b.Target.Kind)).Msg("unknown action target kind")
	}
}

// run executes one non-app action, reporting failure without propagating it.
func (d *Dispatcher) run(b config.Binding, trigger config.TriggerType, failTitle string, fn func() error) {
	if err := fn(); err != nil {
		d.log.Error().Err(err).Str("binding", b.ID.String()).Msg("action failed")
		d.notifier.Notify(failTitle, fmt.Sprintf("%s: %v", b.Target.Describe(), err))
		return
	}
	d.fired(b, trigger)
}

func (d *Dispatcher) runApp(b config.Binding, trigger config.TriggerType) {
	bundleID := b.Target.BundleID

	pid, running, err := d.apps.Running(bundleID)
	if err != nil {
		d.fail(b, "App action failed", err)
		return
	}

	if !running {
		if err := d.apps.Launch(bundleID); err != nil {
			d.fail(b, "App not found", err)
			return
		}
		// Apply the behavior once the first activation signal appears.
		pid, err = d.awaitLaunch(bundleID)
		if err != nil {
			d.fail(b, "App did not start", err)
			return
		}
	}

	if err := d.applyBehavior(b, pid); err != nil {
		d.fail(b, "App action failed", err)
		return
	}
	d.fired(b, trigger)
}

func (d *Dispatcher) applyBehavior(b config.Binding, pid int) error {
	if b.Behavior == config.CycleWindows && d.cycler != nil {
		err := d.cycler.Next(pid)
		if err == nil {
			return nil
		}
		if !errors.Is(err, windows.ErrNotEnoughWindows) {
			return err
		}
		// Fall back to activate-or-hide below.
	}

	front, err := d.apps.IsFrontmost(pid)
	if err != nil {
		return err
	}
	if front {
		return d.apps.Hide(pid)
	}
	return d.apps.Activate(pid)
}

// awaitLaunch polls for the launched application's pid.
func (d *Dispatcher) awaitLaunch(bundleID string) (int, error) {
	deadline := time.Now().Add(launchWait)
	for time.Now().Before(deadline) {
		pid, running, err := d.apps.Running(bundleID)
		if err != nil {
			return 0, err
		}
		if running {
			return pid, nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return 0, fmt.Errorf("%s did not appear within %s", bundleID, launchWait)
}

func (d *Dispatcher) fail(b config.Binding, title string, err error) {
	d.log.Error().Err(err).Str("binding", b.ID.String()).Msg("action failed")
	d.notifier.Notify(title, fmt.Sprintf("%s: %v", b.Target.Describe(), err))
}

func (d *Dispatcher) fired(b config.Binding, trigger config.TriggerType) {
	d.log.Info().
		Str("binding", b.ID.String()).
		Stringer("trigger", trigger).
		Str("target", b.Target.Describe()).
		Msg("action executed")
	if d.onFired != nil {
		d.onFired(b, trigger)
	}
}
