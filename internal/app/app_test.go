package app

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/petems/warpkey/internal/action"
	"github.com/petems/warpkey/internal/config"
	"github.com/petems/warpkey/internal/keys"
	"github.com/petems/warpkey/internal/tap"
)

type mockTap struct {
	mu       sync.Mutex
	handler  tap.Handler
	started  bool
	stopped  bool
	disabled chan struct{}
}

func newMockTap() *mockTap {
	return &mockTap{disabled: make(chan struct{})}
}

func (t *mockTap) Start(h tap.Handler) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = h
	t.started = true
	return nil
}

func (t *mockTap) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *mockTap) Disabled() <-chan struct{} { return t.disabled }
func (t *mockTap) CanSwallow() bool          { return true }

// deliver feeds an event through the installed handler, the way the
// interception thread would.
func (t *mockTap) deliver(ev keys.Event) bool {
	t.mu.Lock()
	h := t.handler
	t.mu.Unlock()
	if h == nil {
		return false
	}
	return h(ev)
}

type mockLauncher struct {
	mu        sync.Mutex
	frontmost string
	pids      map[string]int
	activated []int
	hidden    []int
}

func (m *mockLauncher) Running(bundleID string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pid, ok := m.pids[bundleID]
	return pid, ok, nil
}

func (m *mockLauncher) Frontmost() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frontmost, nil
}

func (m *mockLauncher) IsFrontmost(pid int) (bool, error) { return false, nil }

func (m *mockLauncher) Activate(pid int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activated = append(m.activated, pid)
	return nil
}

func (m *mockLauncher) Hide(pid int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hidden = append(m.hidden, pid)
	return nil
}

func (m *mockLauncher) Launch(bundleID string) error { return nil }

func (m *mockLauncher) activations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.activated)
}

type mockNotifier struct {
	mu     sync.Mutex
	titles []string
}

func (m *mockNotifier) Notify(title, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.titles = append(m.titles, title)
	return nil
}

func (m *mockNotifier) has(title string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.titles {
		if t == title {
			return true
		}
	}
	return false
}

type mockPerms struct {
	mu      sync.Mutex
	allowed bool
}

func (m *mockPerms) CanMonitor() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allowed
}

func (m *mockPerms) Prompt() bool { return m.CanMonitor() }

func (m *mockPerms) set(allowed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allowed = allowed
}

type mockStatus struct {
	mu   sync.Mutex
	last string
}

func (m *mockStatus) SetMonitoring() { m.record("monitoring") }
func (m *mockStatus) SetPaused()     { m.record("paused") }
func (m *mockStatus) SetBlocked()    { m.record("blocked") }

func (m *mockStatus) record(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = s
}

func (m *mockStatus) state() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

const (
	codeCmd = keys.CodeCommandLeft
	codeT   = keys.Code(0x11)
	codeK   = keys.Code(0x28)
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Engine = config.EngineConfig{
		HoldMillis:             150,
		MultiPressWindowMillis: 100,
		AppDebounceMillis:      10,
	}
	return cfg
}

func cmdBinding(code keys.Code, target config.ActionTarget) config.Binding {
	return config.NewBinding(
		[]config.BindingKey{
			{Code: codeCmd, Modifier: true},
			{Code: code},
		},
		config.Press, target, config.ActivateOrHide)
}

type fixture struct {
	app      *App
	tap      *mockTap
	launcher *mockLauncher
	notifier *mockNotifier
	status   *mockStatus
	perms    *mockPerms
}

func newFixture(t *testing.T, cfg *config.Config) *fixture {
	t.Helper()

	f := &fixture{
		tap:      newMockTap(),
		launcher: &mockLauncher{pids: map[string]int{}, frontmost: "com.example.front"},
		notifier: &mockNotifier{},
		status:   &mockStatus{},
		perms:    &mockPerms{allowed: true},
	}

	dispatcher := action.NewDispatcher(action.Params{
		Apps:        f.launcher,
		Notifier:    f.notifier,
		AppDebounce: cfg.Engine.AppDebounce(),
		Logger:      zerolog.Nop(),
	})

	f.app = New(Params{
		Tap:        f.tap,
		Apps:       f.launcher,
		Dispatcher: dispatcher,
		Config:     cfg,
		ConfigPath: filepath.Join(t.TempDir(), "config.json"),
		Perms:      f.perms,
		Notifier:   f.notifier,
		Logger:     zerolog.Nop(),
		Status:     f.status,
	})
	t.Cleanup(func() { f.app.Shutdown(context.Background()) })
	return f
}

// pressChord delivers modifier down, key down, key up, modifier up and
// returns whether the key down and key up were swallowed.
func (f *fixture) pressChord(key keys.Code) (downSwallowed, upSwallowed bool) {
	f.tap.deliver(keys.Event{Code: codeCmd, Down: true, Modifier: true})
	downSwallowed = f.tap.deliver(keys.Event{Code: key, Down: true})
	upSwallowed = f.tap.deliver(keys.Event{Code: key, Down: false})
	f.tap.deliver(keys.Event{Code: codeCmd, Down: false, Modifier: true})
	return downSwallowed, upSwallowed
}

func TestPressBindingActivatesApp(t *testing.T) {
	cfg := testConfig()
	cfg.Profiles[0].Bindings = []config.Binding{
		cmdBinding(codeT, config.AppTarget("com.example.term")),
	}
	f := newFixture(t, cfg)
	f.launcher.pids["com.example.term"] = 42

	if err := f.app.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	down, up := f.pressChord(codeT)
	if !down || !up {
		t.Errorf("expected chord to be swallowed, got down=%v up=%v", down, up)
	}

	waitUntil(t, func() bool { return f.launcher.activations() == 1 })
	f.launcher.mu.Lock()
	pid := f.launcher.activated[0]
	f.launcher.mu.Unlock()
	if pid != 42 {
		t.Errorf("expected pid 42 activated, got %d", pid)
	}
}

func TestUnregisteredChordPassesThrough(t *testing.T) {
	cfg := testConfig()
	cfg.Profiles[0].Bindings = []config.Binding{
		cmdBinding(codeT, config.AppTarget("com.example.term")),
	}
	f := newFixture(t, cfg)

	if err := f.app.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	down, up := f.pressChord(codeK)
	if down || up {
		t.Errorf("expected passthrough, got down=%v up=%v", down, up)
	}
}

func TestPauseSuspendsMatching(t *testing.T) {
	cfg := testConfig()
	cfg.Profiles[0].Bindings = []config.Binding{
		cmdBinding(codeT, config.AppTarget("com.example.term")),
	}
	f := newFixture(t, cfg)
	f.launcher.pids["com.example.term"] = 42

	if err := f.app.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	f.app.Pause()
	if !f.app.IsPaused() {
		t.Fatal("expected paused")
	}
	if f.status.state() != "paused" {
		t.Errorf("expected paused status, got %s", f.status.state())
	}

	down, up := f.pressChord(codeT)
	if down || up {
		t.Errorf("expected passthrough while paused, got down=%v up=%v", down, up)
	}

	time.Sleep(50 * time.Millisecond)
	if f.launcher.activations() != 0 {
		t.Errorf("expected no activation while paused, got %d", f.launcher.activations())
	}

	f.app.Resume()
	f.pressChord(codeT)
	waitUntil(t, func() bool { return f.launcher.activations() == 1 })
}

func TestStartBlockedWithoutPermission(t *testing.T) {
	f := newFixture(t, testConfig())
	f.perms.set(false)

	if err := f.app.Start(); err != ErrNotMonitoring {
		t.Fatalf("expected ErrNotMonitoring, got %v", err)
	}
	if f.app.IsMonitoring() {
		t.Fatal("expected not monitoring")
	}
	if f.status.state() != "blocked" {
		t.Errorf("expected blocked status, got %s", f.status.state())
	}

	f.perms.set(true)
	if err := f.app.PermissionChanged(); err != nil {
		t.Fatalf("permission changed: %v", err)
	}
	if !f.app.IsMonitoring() {
		t.Fatal("expected monitoring after grant")
	}
	if f.status.state() != "monitoring" {
		t.Errorf("expected monitoring status, got %s", f.status.state())
	}
}

func TestTapDisabledStopsMonitoring(t *testing.T) {
	f := newFixture(t, testConfig())

	if err := f.app.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	close(f.tap.disabled)
	waitUntil(t, func() bool { return !f.app.IsMonitoring() })
	waitUntil(t, func() bool { return f.notifier.has("Hotkeys stopped") })
	if f.status.state() != "blocked" {
		t.Errorf("expected blocked status, got %s", f.status.state())
	}
}

func TestShutdownReleasesDisabledWatcher(t *testing.T) {
	f := newFixture(t, testConfig())

	if err := f.app.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := f.app.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	// A disable signal arriving after shutdown must be ignored.
	close(f.tap.disabled)
	time.Sleep(50 * time.Millisecond)
	if f.notifier.has("Hotkeys stopped") {
		t.Error("disabled signal after shutdown raised a notification")
	}
	if f.status.state() == "blocked" {
		t.Error("disabled signal after shutdown changed status")
	}
}

func TestQuickAssignBindsFrontmostApp(t *testing.T) {
	f := newFixture(t, testConfig())

	if err := f.app.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Reserved chord arms the capture on key-down.
	f.tap.deliver(keys.Event{Code: codeCmd, Down: true, Modifier: true})
	if !f.tap.deliver(keys.Event{Code: 0x2F, Down: true}) {
		t.Fatal("expected quick-assign chord to be swallowed")
	}
	waitUntil(t, func() bool { return f.notifier.has("Quick assign") })
	f.tap.deliver(keys.Event{Code: 0x2F, Down: false})
	f.tap.deliver(keys.Event{Code: codeCmd, Down: false, Modifier: true})

	// Next chord captures the frontmost application.
	f.tap.deliver(keys.Event{Code: codeCmd, Down: true, Modifier: true})
	if !f.tap.deliver(keys.Event{Code: codeK, Down: true}) {
		t.Fatal("expected capture key-down to be swallowed")
	}
	f.tap.deliver(keys.Event{Code: codeK, Down: false})
	f.tap.deliver(keys.Event{Code: codeCmd, Down: false, Modifier: true})

	waitUntil(t, func() bool { return f.notifier.has("Hotkey assigned") })

	f.app.mu.Lock()
	bindings := f.app.cfg.Active().Bindings
	f.app.mu.Unlock()
	if len(bindings) != 1 {
		t.Fatalf("expected 1 binding, got %d", len(bindings))
	}
	b := bindings[0]
	if b.Target.BundleID != "com.example.front" {
		t.Errorf("expected frontmost app bound, got %q", b.Target.BundleID)
	}
	if b.Trigger != config.Press {
		t.Errorf("expected press trigger, got %s", b.Trigger)
	}
	if b.Signature() != keys.NewSignature([]keys.Code{codeCmd, codeK}) {
		t.Errorf("unexpected signature %s", b.Signature())
	}
}

func TestCheatSheetListsBindings(t *testing.T) {
	cfg := testConfig()
	cfg.Profiles[0].Bindings = []config.Binding{
		cmdBinding(codeT, config.AppTarget("com.example.term")),
	}
	f := newFixture(t, cfg)

	sheet := f.app.CheatSheet()
	if !strings.Contains(sheet, "Cmd+T") {
		t.Errorf("expected chord in sheet, got %q", sheet)
	}
	if !strings.Contains(sheet, "com.example.term") {
		t.Errorf("expected target in sheet, got %q", sheet)
	}
}

func TestCheatSheetEmptyProfile(t *testing.T) {
	f := newFixture(t, testConfig())

	sheet := f.app.CheatSheet()
	if !strings.Contains(sheet, "No bindings") {
		t.Errorf("expected empty-profile message, got %q", sheet)
	}
}

func TestReloadConfigSwapsBindings(t *testing.T) {
	cfg := testConfig()
	cfg.Profiles[0].Bindings = []config.Binding{
		cmdBinding(codeT, config.AppTarget("com.example.term")),
	}
	f := newFixture(t, cfg)
	f.launcher.pids["com.example.editor"] = 7

	if err := f.app.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	edited := testConfig()
	edited.Profiles[0].Bindings = []config.Binding{
		cmdBinding(codeK, config.AppTarget("com.example.editor")),
	}
	if err := edited.SaveTo(f.app.configPath); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := f.app.ReloadConfig(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	// The old chord no longer matches, the new one fires.
	down, _ := f.pressChord(codeT)
	if down {
		t.Error("expected removed binding to pass through")
	}
	f.pressChord(codeK)
	waitUntil(t, func() bool { return f.launcher.activations() == 1 })
}

func TestReloadConfigAppliesEngineTiming(t *testing.T) {
	holdBinding := config.NewBinding(
		[]config.BindingKey{
			{Code: codeCmd, Modifier: true},
			{Code: codeT},
		},
		config.Hold, config.AppTarget("com.example.term"), config.ActivateOrHide)

	cfg := testConfig()
	cfg.Engine.HoldMillis = 3600000 // effectively never
	cfg.Profiles[0].Bindings = []config.Binding{holdBinding}
	f := newFixture(t, cfg)
	f.launcher.pids["com.example.term"] = 42

	if err := f.app.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	edited := testConfig() // 150ms hold
	edited.Profiles[0].Bindings = []config.Binding{holdBinding}
	if err := edited.SaveTo(f.app.configPath); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := f.app.ReloadConfig(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	// With the reloaded hold duration the chord resolves while held.
	f.tap.deliver(keys.Event{Code: codeCmd, Down: true, Modifier: true})
	f.tap.deliver(keys.Event{Code: codeT, Down: true})
	waitUntil(t, func() bool { return f.launcher.activations() == 1 })
	f.tap.deliver(keys.Event{Code: codeT, Down: false})
	f.tap.deliver(keys.Event{Code: codeCmd, Down: false, Modifier: true})
}

func TestSetProfileRebuildsRegistry(t *testing.T) {
	cfg := testConfig()
	cfg.Profiles = []config.Profile{
		{Name: "default", Bindings: []config.Binding{
			cmdBinding(codeT, config.AppTarget("com.example.term")),
		}},
		{Name: "work", Bindings: []config.Binding{
			cmdBinding(codeK, config.AppTarget("com.example.editor")),
		}},
	}
	f := newFixture(t, cfg)
	f.launcher.pids["com.example.editor"] = 7

	if err := f.app.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := f.app.SetProfile("work"); err != nil {
		t.Fatalf("set profile: %v", err)
	}
	names, active := f.app.Profiles()
	if active != "work" || len(names) != 2 {
		t.Fatalf("expected active work of 2 profiles, got %s of %d", active, len(names))
	}

	down, _ := f.pressChord(codeT)
	if down {
		t.Error("expected previous profile's chord to pass through")
	}
	f.pressChord(codeK)
	waitUntil(t, func() bool { return f.launcher.activations() == 1 })
}
