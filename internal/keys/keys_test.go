package keys

import (
	"sync"
	"testing"
)

func TestSignatureOrderIndependent(t *testing.T) {
	a := NewSignature([]Code{0x37, 0x31})
	b := NewSignature([]Code{0x31, 0x37})

	if a != b {
		t.Errorf("signatures differ for same set: %q vs %q", a, b)
	}
	if a != "49+55" {
		t.Errorf("unexpected canonical form: %q", a)
	}
}

func TestSignatureEmpty(t *testing.T) {
	if s := NewSignature(nil); s != "" {
		t.Errorf("empty set should have empty signature, got %q", s)
	}
}

func TestCanonicalFoldsKeypadEnter(t *testing.T) {
	if Canonical(CodeKeypadEnter) != CodeReturn {
		t.Error("keypad enter should fold onto return")
	}
	if Canonical(0x00) != 0x00 {
		t.Error("non-alias codes must pass through unchanged")
	}
}

func TestNormalizeKeyMarksModifiers(t *testing.T) {
	ev, ok := NormalizeKey(CodeCommandLeft, true)
	if !ok || !ev.Modifier {
		t.Error("command key should normalize as modifier")
	}

	ev, ok = NormalizeKey(0x00, true) // 'a'
	if !ok || ev.Modifier {
		t.Error("letter key should not be a modifier")
	}
}

func TestNormalizeFlagsChangedRejectsNonModifiers(t *testing.T) {
	if _, ok := NormalizeFlagsChanged(0x00, true); ok {
		t.Error("flags-changed for a non-modifier code must be dropped")
	}
}

func TestNormalizeSystemDefined(t *testing.T) {
	// Usage 16 (play), state byte 0x0A = down.
	data := uint32(16)<<16 | uint32(0x0A)<<8
	ev, ok := NormalizeSystemDefined(8, data)
	if !ok {
		t.Fatal("valid media key payload was dropped")
	}
	if ev.Code != AuxPlay || !ev.Down || !ev.Auxiliary {
		t.Errorf("unexpected event: %+v", ev)
	}

	// Same usage, state byte 0x0B = up.
	data = uint32(16)<<16 | uint32(0x0B)<<8
	ev, ok = NormalizeSystemDefined(8, data)
	if !ok || ev.Down {
		t.Errorf("expected up event, got ok=%v ev=%+v", ok, ev)
	}
}

func TestNormalizeSystemDefinedDropsUnknownPayloads(t *testing.T) {
	if _, ok := NormalizeSystemDefined(7, 0); ok {
		t.Error("wrong subtype must be dropped")
	}
	if _, ok := NormalizeSystemDefined(8, uint32(16)<<16|uint32(0xFF)<<8); ok {
		t.Error("unknown state byte must be dropped")
	}
}

func TestTrackerReplaysEventLog(t *testing.T) {
	tr := NewTracker()

	log := []Event{
		{Code: 0x37, Down: true, Modifier: true},
		{Code: 0x31, Down: true},
		{Code: 0x31, Down: false},
		{Code: 0x04, Down: true},
	}
	for _, ev := range log {
		tr.Observe(ev)
	}

	// Active set must equal the codes whose last event was a down.
	if !tr.Held(0x37) || !tr.Held(0x04) {
		t.Error("held keys missing from active set")
	}
	if tr.Held(0x31) {
		t.Error("released key still in active set")
	}
	if got := tr.ActiveSignature(); got != NewSignature([]Code{0x37, 0x04}) {
		t.Errorf("unexpected signature: %q", got)
	}
}

func TestTrackerAuxiliaryDisjoint(t *testing.T) {
	tr := NewTracker()
	tr.Observe(Event{Code: AuxPlay, Down: true, Auxiliary: true})
	tr.Observe(Event{Code: 0x31, Down: true})

	if tr.Len() != 2 {
		t.Errorf("expected 2 held keys, got %d", tr.Len())
	}

	// Releasing the standard key must not disturb the auxiliary one.
	tr.Observe(Event{Code: 0x31, Down: false})
	if !tr.Held(AuxPlay) {
		t.Error("auxiliary key lost after unrelated release")
	}
}

func TestTrackerRedundantReleaseIsNoop(t *testing.T) {
	tr := NewTracker()
	tr.Observe(Event{Code: 0x31, Down: false})
	if tr.Len() != 0 {
		t.Error("release without prior press must leave set empty")
	}
}

// TestTrackerConcurrentObserveAndRead exercises writes from an input thread
// against reads from timer goroutines; run with -race.
func TestTrackerConcurrentObserveAndRead(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			tr.Observe(Event{Code: Code(i % 8), Down: i%2 == 0})
			tr.Observe(Event{Code: AuxPlay, Down: i%3 == 0, Auxiliary: true})
		}
		close(stop)
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					tr.ActiveSignature()
					tr.Active()
					tr.Held(0x04)
					tr.Len()
				}
			}
		}()
	}

	wg.Wait()
}

func TestTrackerReset(t *testing.T) {
	tr := NewTracker()
	tr.Observe(Event{Code: 0x31, Down: true})
	tr.Observe(Event{Code: AuxMute, Down: true, Auxiliary: true})
	tr.Reset()
	if tr.Len() != 0 {
		t.Error("reset must clear both sets")
	}
}
