package engine

import (
	"testing"

	"github.com/petems/warpkey/internal/config"
	"github.com/petems/warpkey/internal/keys"
)

func TestRegistryLookupBySignature(t *testing.T) {
	a := binding([]keys.Code{0x37, 0x31}, config.Press)
	b := binding([]keys.Code{0x04}, config.Hold)
	r := BuildRegistry([]config.Binding{a, b}, nil)

	if got := r.Lookup(a.Signature()); len(got) != 1 || got[0].ID != a.ID {
		t.Errorf("lookup by signature failed: %v", got)
	}
	if got := r.Lookup(keys.NewSignature([]keys.Code{0x7F})); got != nil {
		t.Errorf("unknown signature must return nil, got %v", got)
	}
}

func TestRegistryHasTrigger(t *testing.T) {
	press := binding([]keys.Code{0x31}, config.Press)
	double := binding([]keys.Code{0x31}, config.DoublePress)
	r := BuildRegistry([]config.Binding{press, double}, nil)
	sig := press.Signature()

	if !r.HasTrigger(sig, config.DoublePress) {
		t.Error("expected a DoublePress sibling")
	}
	if r.HasTrigger(sig, config.Hold) {
		t.Error("no Hold binding exists for the signature")
	}
}

func TestConflictsGroupBySignatureAndTrigger(t *testing.T) {
	a := binding([]keys.Code{0x31}, config.Press)
	b := binding([]keys.Code{0x31}, config.Press)
	c := binding([]keys.Code{0x31}, config.DoublePress) // sibling, not a conflict
	d := binding([]keys.Code{0x04}, config.Press)       // different signature
	r := BuildRegistry([]config.Binding{a, b, c, d}, nil)

	conflicts := r.Conflicts()
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict group, got %d: %v", len(conflicts), conflicts)
	}
	got := conflicts[0]
	if got.Trigger != config.Press || len(got.IDs) != 2 {
		t.Errorf("unexpected conflict group: %+v", got)
	}

	ids := r.ConflictingIDs()
	if !ids[a.ID] || !ids[b.ID] {
		t.Error("conflicting IDs must contain both members")
	}
	if ids[c.ID] || ids[d.ID] {
		t.Error("non-conflicting bindings must not be flagged")
	}
}

func TestReservedBindingsParticipateInConflicts(t *testing.T) {
	cfg := config.Default()
	reserved := cfg.Reserved()

	// A user binding colliding with the cheat-sheet combination.
	user := config.NewBinding(cfg.CheatSheet, config.Press,
		config.URLTarget("https://example.com"), config.ActivateOrHide)

	r := BuildRegistry([]config.Binding{user}, reserved)

	if !r.IsReserved(user.Signature()) {
		t.Error("cheat-sheet signature must be marked reserved")
	}
	ids := r.ConflictingIDs()
	if !ids[user.ID] || !ids[config.CheatSheetID] {
		t.Error("user binding colliding with a reserved combination must be reported")
	}
}

func TestEmptySignatureBindingsAreSkipped(t *testing.T) {
	empty := config.NewBinding(nil, config.Press, config.FileTarget("/tmp"), config.ActivateOrHide)
	r := BuildRegistry([]config.Binding{empty}, nil)
	if got := r.Lookup(""); got != nil {
		t.Error("bindings with no keys must not be indexed")
	}
}
