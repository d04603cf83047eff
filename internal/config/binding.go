package config

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/petems/warpkey/internal/keys"
)

// TriggerType is the manner of execution required to activate a binding.
type TriggerType int

const (
	Press TriggerType = iota
	DoublePress
	TriplePress
	Hold
)

var triggerNames = map[TriggerType]string{
	Press:       "press",
	DoublePress: "double_press",
	TriplePress: "triple_press",
	Hold:        "hold",
}

func (t TriggerType) String() string {
	if s, ok := triggerNames[t]; ok {
		return s
	}
	return fmt.Sprintf("trigger(%d)", int(t))
}

func (t TriggerType) MarshalJSON() ([]byte, error) {
	s, ok := triggerNames[t]
	if !ok {
		return nil, fmt.Errorf("unknown trigger type %d", int(t))
	}
	return json.Marshal(s)
}

func (t *TriggerType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for tt, name := range triggerNames {
		if name == s {
			*t = tt
			return nil
		}
	}
	return fmt.Errorf("unknown trigger type %q", s)
}

// Behavior selects what an App binding does when its target is running.
type Behavior int

const (
	ActivateOrHide Behavior = iota
	CycleWindows
)

func (b Behavior) String() string {
	if b == CycleWindows {
		return "cycle_windows"
	}
	return "activate_or_hide"
}

func (b Behavior) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *Behavior) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "activate_or_hide":
		*b = ActivateOrHide
	case "cycle_windows":
		*b = CycleWindows
	default:
		return fmt.Errorf("unknown behavior %q", s)
	}
	return nil
}

// TargetKind discriminates the ActionTarget union.
type TargetKind string

const (
	TargetApp        TargetKind = "app"
	TargetURL        TargetKind = "url"
	TargetFile       TargetKind = "file"
	TargetScript     TargetKind = "script"
	TargetAutomation TargetKind = "automation"
)

// ActionTarget is a closed tagged union: exactly the fields for its Kind are
// set. Targets are immutable; edits replace the whole value.
type ActionTarget struct {
	Kind TargetKind `json:"kind"`

	BundleID string `json:"bundle_id,omitempty"` // app
	Address  string `json:"address,omitempty"`   // url
	Path     string `json:"path,omitempty"`      // file
	Command  string `json:"command,omitempty"`   // script
	// InTerminal runs the script in a visible terminal instead of detached.
	InTerminal bool   `json:"in_terminal,omitempty"`
	Name       string `json:"name,omitempty"` // automation
}

func AppTarget(bundleID string) ActionTarget {
	return ActionTarget{Kind: TargetApp, BundleID: bundleID}
}

func URLTarget(address string) ActionTarget {
	return ActionTarget{Kind: TargetURL, Address: address}
}

func FileTarget(path string) ActionTarget {
	return ActionTarget{Kind: TargetFile, Path: path}
}

func ScriptTarget(command string, inTerminal bool) ActionTarget {
	return ActionTarget{Kind: TargetScript, Command: command, InTerminal: inTerminal}
}

func AutomationTarget(name string) ActionTarget {
	return ActionTarget{Kind: TargetAutomation, Name: name}
}

// Describe returns a short human-readable label for notifications and the
// cheat sheet.
func (t ActionTarget) Describe() string {
	switch t.Kind {
	case TargetApp:
		return t.BundleID
	case TargetURL:
		return t.Address
	case TargetFile:
		return t.Path
	case TargetScript:
		return t.Command
	case TargetAutomation:
		return t.Name
	default:
		return string(t.Kind)
	}
}

// BindingKey is one key of a combination with its modifier flag, preserved in
// the order the user recorded it.
type BindingKey struct {
	Code     keys.Code `json:"code"`
	Modifier bool      `json:"modifier"`
}

// Binding associates a combination and trigger type with an action.
type Binding struct {
	ID       uuid.UUID    `json:"id"`
	Keys     []BindingKey `json:"keys"`
	Trigger  TriggerType  `json:"trigger"`
	Target   ActionTarget `json:"target"`
	Behavior Behavior     `json:"behavior,omitempty"`
}

// NewBinding creates a binding with a fresh ID.
func NewBinding(bkeys []BindingKey, trigger TriggerType, target ActionTarget, behavior Behavior) Binding {
	return Binding{
		ID:       uuid.New(),
		Keys:     bkeys,
		Trigger:  trigger,
		Target:   target,
		Behavior: behavior,
	}
}

// DescribeKeys renders the combination for the cheat sheet, modifiers first
// in recorded order.
func (b Binding) DescribeKeys() string {
	out := ""
	for _, k := range b.Keys {
		if out != "" {
			out += "+"
		}
		out += keys.Name(k.Code)
	}
	switch b.Trigger {
	case DoublePress:
		out += " (x2)"
	case TriplePress:
		out += " (x3)"
	case Hold:
		out += " (hold)"
	}
	return out
}

// Signature returns the canonical order-independent identity of the
// combination.
func (b Binding) Signature() keys.Signature {
	codes := make([]keys.Code, len(b.Keys))
	for i, k := range b.Keys {
		codes[i] = k.Code
	}
	return keys.NewSignature(codes)
}

// Profile is a named collection of bindings. Exactly one profile is active at
// a time; the engine only ever sees the active profile's bindings.
type Profile struct {
	Name     string    `json:"name"`
	Bindings []Binding `json:"bindings"`
}
