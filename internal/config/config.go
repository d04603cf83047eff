package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/petems/warpkey/internal/keys"
)

// Reserved binding IDs. The cheat-sheet and quick-assign combinations are
// injected into the registry alongside user bindings so they participate in
// the same matching and conflict machinery.
var (
	CheatSheetID  = uuid.MustParse("6f6e2a4e-0000-4000-8000-000000000001")
	QuickAssignID = uuid.MustParse("6f6e2a4e-0000-4000-8000-000000000002")
)

type EngineConfig struct {
	HoldMillis             int `json:"hold_millis"`
	MultiPressWindowMillis int `json:"multi_press_window_millis"`
	AppDebounceMillis      int `json:"app_debounce_millis"`
}

func (e EngineConfig) HoldDuration() time.Duration {
	return time.Duration(e.HoldMillis) * time.Millisecond
}

func (e EngineConfig) MultiPressWindow() time.Duration {
	return time.Duration(e.MultiPressWindowMillis) * time.Millisecond
}

func (e EngineConfig) AppDebounce() time.Duration {
	return time.Duration(e.AppDebounceMillis) * time.Millisecond
}

type Config struct {
	ActiveProfile string       `json:"active_profile"`
	Profiles      []Profile    `json:"profiles"`
	CheatSheet    []BindingKey `json:"cheat_sheet_keys"`
	QuickAssign   []BindingKey `json:"quick_assign_keys"`
	Engine        EngineConfig `json:"engine"`
	LogLevel      string       `json:"log_level"`
}

// Default returns the configuration used when no file exists yet.
func Default() *Config {
	return &Config{
		ActiveProfile: "default",
		Profiles:      []Profile{{Name: "default"}},
		CheatSheet: []BindingKey{
			{Code: keys.CodeCommandLeft, Modifier: true},
			{Code: 0x2C}, // slash
		},
		QuickAssign: []BindingKey{
			{Code: keys.CodeCommandLeft, Modifier: true},
			{Code: 0x2F}, // period
		},
		Engine: EngineConfig{
			HoldMillis:             500,
			MultiPressWindowMillis: 400,
			AppDebounceMillis:      150,
		},
		LogLevel: "info",
	}
}

// Load reads the config from disk or returns defaults.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config from an explicit path, merging over defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	return c.SaveTo(Path())
}

func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Active returns the active profile. Falls back to the first profile when the
// named one is missing, and an empty profile when none exist.
func (c *Config) Active() Profile {
	for _, p := range c.Profiles {
		if p.Name == c.ActiveProfile {
			return p
		}
	}
	if len(c.Profiles) > 0 {
		return c.Profiles[0]
	}
	return Profile{Name: c.ActiveProfile}
}

// SetActive switches the active profile by name.
func (c *Config) SetActive(name string) error {
	for _, p := range c.Profiles {
		if p.Name == name {
			c.ActiveProfile = name
			return nil
		}
	}
	return fmt.Errorf("no profile named %q", name)
}

// UpsertBinding adds or replaces a binding in the active profile.
func (c *Config) UpsertBinding(b Binding) {
	active := c.Active().Name
	for i := range c.Profiles {
		if c.Profiles[i].Name != active {
			continue
		}
		for j, existing := range c.Profiles[i].Bindings {
			if existing.ID == b.ID {
				c.Profiles[i].Bindings[j] = b
				return
			}
		}
		c.Profiles[i].Bindings = append(c.Profiles[i].Bindings, b)
		return
	}
	c.Profiles = append(c.Profiles, Profile{Name: active, Bindings: []Binding{b}})
}

// RemoveBinding deletes a binding from the active profile by ID.
func (c *Config) RemoveBinding(id uuid.UUID) bool {
	active := c.Active().Name
	for i := range c.Profiles {
		if c.Profiles[i].Name != active {
			continue
		}
		for j, existing := range c.Profiles[i].Bindings {
			if existing.ID == id {
				c.Profiles[i].Bindings = append(c.Profiles[i].Bindings[:j], c.Profiles[i].Bindings[j+1:]...)
				return true
			}
		}
	}
	return false
}

// Reserved returns the cheat-sheet and quick-assign bindings derived from the
// configured combinations.
func (c *Config) Reserved() []Binding {
	return []Binding{
		{ID: CheatSheetID, Keys: c.CheatSheet, Trigger: Press},
		{ID: QuickAssignID, Keys: c.QuickAssign, Trigger: Press},
	}
}

// Path returns the platform-specific config file path.
func Path() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("APPDATA")
	default: // linux
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.config"
		}
	}

	return filepath.Join(base, "warpkey", "config.json")
}
