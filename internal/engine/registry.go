// Package engine implements hotkey matching: the combination registry, the
// conflict detector, and the trigger state machine that turns raw press and
// release sequences into fired bindings.
package engine

import (
	"sort"

	"github.com/google/uuid"

	"github.com/petems/warpkey/internal/config"
	"github.com/petems/warpkey/internal/keys"
)

// Registry indexes bindings by combination signature. It is rebuilt wholesale
// whenever the active profile changes; lookups on the hot path are O(1).
type Registry struct {
	bySig    map[keys.Signature][]config.Binding
	reserved map[keys.Signature]bool
}

// BuildRegistry groups the active profile's bindings plus the reserved
// cheat-sheet and quick-assign bindings by signature.
func BuildRegistry(bindings, reserved []config.Binding) *Registry {
	r := &Registry{
		bySig:    make(map[keys.Signature][]config.Binding, len(bindings)+len(reserved)),
		reserved: make(map[keys.Signature]bool, len(reserved)),
	}
	for _, b := range bindings {
		sig := b.Signature()
		if sig == "" {
			continue
		}
		r.bySig[sig] = append(r.bySig[sig], b)
	}
	for _, b := range reserved {
		sig := b.Signature()
		if sig == "" {
			continue
		}
		r.bySig[sig] = append(r.bySig[sig], b)
		r.reserved[sig] = true
	}
	return r
}

// Lookup returns the bindings registered for a signature.
func (r *Registry) Lookup(sig keys.Signature) []config.Binding {
	return r.bySig[sig]
}

// IsReserved reports whether the signature belongs to a reserved internal
// action. Reserved signatures bypass press counting and hold detection.
func (r *Registry) IsReserved(sig keys.Signature) bool {
	return r.reserved[sig]
}

// HasTrigger reports whether any binding for the signature uses the trigger.
func (r *Registry) HasTrigger(sig keys.Signature, t config.TriggerType) bool {
	for _, b := range r.bySig[sig] {
		if b.Trigger == t {
			return true
		}
	}
	return false
}

// Conflict is a group of bindings sharing both signature and trigger type.
// Conflicting bindings are reported, not disabled: the machine fires all of
// them when the trigger resolves.
type Conflict struct {
	Signature keys.Signature
	Trigger   config.TriggerType
	IDs       []uuid.UUID
}

// Conflicts scans the registry for (signature, trigger) groups with more than
// one member. Runs on rebuild, never on the event path.
func (r *Registry) Conflicts() []Conflict {
	var out []Conflict
	for sig, bindings := range r.bySig {
		byTrigger := make(map[config.TriggerType][]uuid.UUID)
		for _, b := range bindings {
			byTrigger[b.Trigger] = append(byTrigger[b.Trigger], b.ID)
		}
		for trigger, ids := range byTrigger {
			if len(ids) < 2 {
				continue
			}
			sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
			out = append(out, Conflict{Signature: sig, Trigger: trigger, IDs: ids})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Signature != out[j].Signature {
			return out[i].Signature < out[j].Signature
		}
		return out[i].Trigger < out[j].Trigger
	})
	return out
}

// ConflictingIDs flattens the conflict groups into the set of binding IDs
// involved in any conflict, for UI highlighting.
func (r *Registry) ConflictingIDs() map[uuid.UUID]bool {
	ids := make(map[uuid.UUID]bool)
	for _, c := range r.Conflicts() {
		for _, id := range c.IDs {
			ids[id] = true
		}
	}
	return ids
}
