package keys

// macOS virtual key codes the normalizer treats specially. The alias list
// folds keypad duplicates onto one canonical identity so bindings fire no
// matter which physical variant produced the signal.
const (
	CodeReturn      Code = 0x24
	CodeKeypadEnter Code = 0x4C
	CodeClear       Code = 0x47
	CodeNumLock     Code = 0x47 // same position, pre-Mac keyboards

	// Modifier key codes as delivered by flags-changed events.
	CodeCapsLock     Code = 0x39
	CodeShiftLeft    Code = 0x38
	CodeShiftRight   Code = 0x3C
	CodeControlLeft  Code = 0x3B
	CodeControlRight Code = 0x3E
	CodeOptionLeft   Code = 0x3A
	CodeOptionRight  Code = 0x3D
	CodeCommandLeft  Code = 0x37
	CodeCommandRight Code = 0x36
	CodeFunction     Code = 0x3F
)

// Auxiliary (consumer/media) key usages. These arrive as system-defined
// events, not ordinary key events, so they get their own code range offset to
// keep them out of the virtual key code space.
const (
	auxBase Code = 0x10000

	AuxSoundUp        = auxBase + 0
	AuxSoundDown      = auxBase + 1
	AuxBrightnessUp   = auxBase + 2
	AuxBrightnessDown = auxBase + 3
	AuxMute           = auxBase + 7
	AuxPlay           = auxBase + 16
	AuxNext           = auxBase + 17
	AuxPrevious       = auxBase + 18
	AuxFast           = auxBase + 19
	AuxRewind         = auxBase + 20
)

// systemDefinedSubtypeAuxControl is the NSEvent subtype carrying media key
// payloads inside system-defined events.
const systemDefinedSubtypeAuxControl = 8

const (
	auxStateDown = 0x0A
	auxStateUp   = 0x0B
)

var aliasCodes = map[Code]Code{
	CodeKeypadEnter: CodeReturn,
	0x52:            0x1D, // keypad 0
	0x53:            0x12, // keypad 1
	0x54:            0x13, // keypad 2
	0x55:            0x14, // keypad 3
	0x56:            0x15, // keypad 4
	0x57:            0x17, // keypad 5
	0x58:            0x16, // keypad 6
	0x59:            0x1A, // keypad 7
	0x5B:            0x1C, // keypad 8
	0x5C:            0x19, // keypad 9
}

var modifierCodes = map[Code]bool{
	CodeCapsLock:     true,
	CodeShiftLeft:    true,
	CodeShiftRight:   true,
	CodeControlLeft:  true,
	CodeControlRight: true,
	CodeOptionLeft:   true,
	CodeOptionRight:  true,
	CodeCommandLeft:  true,
	CodeCommandRight: true,
	CodeFunction:     true,
}

// Canonical folds alias key codes onto their canonical identity.
func Canonical(c Code) Code {
	if canon, ok := aliasCodes[c]; ok {
		return canon
	}
	return c
}

// IsModifier reports whether the code is a true modifier key.
func IsModifier(c Code) bool {
	return modifierCodes[c]
}

// NormalizeKey converts an ordinary key down/up event.
func NormalizeKey(code Code, down bool) (Event, bool) {
	return Event{Code: Canonical(code), Down: down, Modifier: IsModifier(code)}, true
}

// NormalizeFlagsChanged converts a modifier flags-changed event. The platform
// does not deliver discrete down/up transitions for modifiers, so the caller
// passes the authoritative "is this key physically down" derived from the
// current flag state.
func NormalizeFlagsChanged(code Code, physicallyDown bool) (Event, bool) {
	if !IsModifier(code) {
		return Event{}, false
	}
	return Event{Code: code, Down: physicallyDown, Modifier: true}, true
}

// NormalizeSystemDefined converts a system-defined (media/consumer key)
// event. The key usage and the down/up state are bit-packed into the event's
// first data word: usage in bits 16-31, state byte 0x0A (down) or 0x0B (up)
// in bits 8-15. Unrecognized subtypes or state bytes are dropped.
func NormalizeSystemDefined(subtype int, data uint32) (Event, bool) {
	if subtype != systemDefinedSubtypeAuxControl {
		return Event{}, false
	}
	usage := Code((data >> 16) & 0xFFFF)
	state := (data >> 8) & 0xFF
	if state != auxStateDown && state != auxStateUp {
		return Event{}, false
	}
	return Event{
		Code:      auxBase + usage,
		Down:      state == auxStateDown,
		Auxiliary: true,
	}, true
}
