package keys

import (
	"fmt"
	"strconv"
	"strings"
)

var codeNames = map[Code]string{
	0x00: "A", 0x01: "S", 0x02: "D", 0x03: "F", 0x04: "H", 0x05: "G",
	0x06: "Z", 0x07: "X", 0x08: "C", 0x09: "V", 0x0B: "B", 0x0C: "Q",
	0x0D: "W", 0x0E: "E", 0x0F: "R", 0x10: "Y", 0x11: "T",
	0x12: "1", 0x13: "2", 0x14: "3", 0x15: "4", 0x16: "6", 0x17: "5",
	0x19: "9", 0x1A: "7", 0x1C: "8", 0x1D: "0",
	0x18: "=", 0x1B: "-", 0x1E: "]", 0x21: "[",
	0x1F: "O", 0x20: "U", 0x22: "I", 0x23: "P", 0x25: "L", 0x26: "J",
	0x28: "K", 0x2D: "N", 0x2E: "M",
	0x27: "'", 0x29: ";", 0x2A: "\\", 0x2B: ",", 0x2C: "/", 0x2F: ".",
	0x32: "`",
	0x24: "Return", 0x30: "Tab", 0x31: "Space", 0x33: "Delete", 0x35: "Esc",

	CodeCommandLeft:  "Cmd",
	CodeCommandRight: "Cmd",
	CodeShiftLeft:    "Shift",
	CodeShiftRight:   "Shift",
	CodeOptionLeft:   "Opt",
	CodeOptionRight:  "Opt",
	CodeControlLeft:  "Ctrl",
	CodeControlRight: "Ctrl",
	CodeCapsLock:     "CapsLock",
	CodeFunction:     "Fn",

	0x7A: "F1", 0x78: "F2", 0x63: "F3", 0x76: "F4", 0x60: "F5", 0x61: "F6",
	0x62: "F7", 0x64: "F8", 0x65: "F9", 0x6D: "F10", 0x67: "F11", 0x6F: "F12",
	0x7E: "Up", 0x7D: "Down", 0x7B: "Left", 0x7C: "Right",
	0x74: "PageUp", 0x79: "PageDown", 0x73: "Home", 0x77: "End",

	AuxPlay:           "Play",
	AuxNext:           "Next",
	AuxPrevious:       "Prev",
	AuxSoundUp:        "VolUp",
	AuxSoundDown:      "VolDown",
	AuxMute:           "Mute",
	AuxBrightnessUp:   "BrightUp",
	AuxBrightnessDown: "BrightDown",
}

// Name returns a display name for a key code.
func Name(c Code) string {
	if n, ok := codeNames[Canonical(c)]; ok {
		return n
	}
	return fmt.Sprintf("Key(%d)", uint32(c))
}

// DescribeSignature renders a stored signature as "Cmd+Shift+T", modifiers
// first. Unparseable parts are kept verbatim.
func DescribeSignature(sig Signature) string {
	if sig == "" {
		return ""
	}

	var mods, rest []string
	for _, part := range strings.Split(string(sig), "+") {
		n, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			rest = append(rest, part)
			continue
		}
		c := Code(n)
		if IsModifier(c) {
			mods = append(mods, Name(c))
		} else {
			rest = append(rest, Name(c))
		}
	}
	return strings.Join(append(mods, rest...), "+")
}
