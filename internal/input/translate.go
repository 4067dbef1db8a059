package input

import (
	"fmt"
	"unicode/utf8"
)

const esc = 0x1b

// EncodeRune encodes a printable character, honoring Ctrl+letter and
// Alt+letter forms.
//
//	Ctrl+[A..Z]  -> single byte (letter - 'A' + 1); Ctrl+[ sends ESC.
//	Alt+letter   -> ESC followed by the letter.
//	otherwise    -> UTF-8 encode and send.
func EncodeRune(r rune, mods Modifiers) []byte {
	if mods.Ctrl {
		upper := r
		if upper >= 'a' && upper <= 'z' {
			upper -= 'a' - 'A'
		}
		switch {
		case upper >= 'A' && upper <= 'Z':
			return []byte{byte(upper - 'A' + 1)}
		case upper == '[':
			return []byte{esc}
		}
	}
	buf := make([]byte, utf8.UTFMax)
	n := utf8.EncodeRune(buf, r)
	out := buf[:n]
	if mods.Alt {
		return append([]byte{esc}, out...)
	}
	return out
}

// EncodeCR returns the byte sequence for a carriage return.
func EncodeCR() []byte {
	return []byte{'\r'}
}

// namedKeySeq holds the baseline CSI/SS3 sequence for a named key. Every key
// in the table accepts a modifier parameter in CSI form; keys that never
// carry one (Escape, Shift+Tab, Backspace, Enter) are handled before the
// table lookup.
type namedKeySeq struct {
	prefix []byte // e.g. "\x1b[" or "\x1bO"
	final  []byte // e.g. "A" or "2~"
}

// EncodeNamedKey encodes a non-printable key. appCursorMode selects SS3
// (ESC O) vs CSI (ESC [) for the four arrow keys when the application has
// requested DECCKM; Home/End always use CSI and F1-F4 always use SS3
// regardless of mode.
func EncodeNamedKey(key Key, mods Modifiers, appCursorMode bool) []byte {
	switch key {
	case KeyEscape:
		return []byte{esc}
	case KeyShiftTab:
		return []byte{esc, '[', 'Z'}
	case KeyBackspace:
		return []byte{0x7f}
	case KeyEnter:
		return []byte{'\r'}
	}

	seq, ok := namedKeyTable(key, appCursorMode)
	if !ok {
		return nil
	}

	m := mods.param()
	if m == 0 {
		out := make([]byte, 0, len(seq.prefix)+len(seq.final))
		out = append(out, seq.prefix...)
		out = append(out, seq.final...)
		return out
	}

	// Modified form always goes through CSI with an explicit "1;M" or "N;M"
	// parameter pair, even for keys whose baseline form uses SS3.
	final := seq.final
	param := "1"
	if len(final) > 1 && final[len(final)-1] == '~' {
		param = string(final[:len(final)-1])
		final = final[len(final)-1:]
	}
	return []byte(fmt.Sprintf("\x1b[%s;%d%s", param, m+1, final))
}

func namedKeyTable(key Key, appCursorMode bool) (namedKeySeq, bool) {
	arrowPrefix := []byte{esc, '['}
	if appCursorMode {
		arrowPrefix = []byte{esc, 'O'}
	}
	switch key {
	case KeyUp:
		return namedKeySeq{arrowPrefix, []byte("A")}, true
	case KeyDown:
		return namedKeySeq{arrowPrefix, []byte("B")}, true
	case KeyRight:
		return namedKeySeq{arrowPrefix, []byte("C")}, true
	case KeyLeft:
		return namedKeySeq{arrowPrefix, []byte("D")}, true
	case KeyHome:
		return namedKeySeq{[]byte{esc, '['}, []byte("H")}, true
	case KeyEnd:
		return namedKeySeq{[]byte{esc, '['}, []byte("F")}, true
	case KeyInsert:
		return namedKeySeq{[]byte{esc, '['}, []byte("2~")}, true
	case KeyDelete:
		return namedKeySeq{[]byte{esc, '['}, []byte("3~")}, true
	case KeyPageUp:
		return namedKeySeq{[]byte{esc, '['}, []byte("5~")}, true
	case KeyPageDown:
		return namedKeySeq{[]byte{esc, '['}, []byte("6~")}, true
	case KeyF1:
		return namedKeySeq{[]byte{esc, 'O'}, []byte("P")}, true
	case KeyF2:
		return namedKeySeq{[]byte{esc, 'O'}, []byte("Q")}, true
	case KeyF3:
		return namedKeySeq{[]byte{esc, 'O'}, []byte("R")}, true
	case KeyF4:
		return namedKeySeq{[]byte{esc, 'O'}, []byte("S")}, true
	case KeyF5:
		return namedKeySeq{[]byte{esc, '['}, []byte("15~")}, true
	case KeyF6:
		return namedKeySeq{[]byte{esc, '['}, []byte("17~")}, true
	case KeyF7:
		return namedKeySeq{[]byte{esc, '['}, []byte("18~")}, true
	case KeyF8:
		return namedKeySeq{[]byte{esc, '['}, []byte("19~")}, true
	case KeyF9:
		return namedKeySeq{[]byte{esc, '['}, []byte("20~")}, true
	case KeyF10:
		return namedKeySeq{[]byte{esc, '['}, []byte("21~")}, true
	case KeyF11:
		return namedKeySeq{[]byte{esc, '['}, []byte("23~")}, true
	case KeyF12:
		return namedKeySeq{[]byte{esc, '['}, []byte("24~")}, true
	default:
		return namedKeySeq{}, false
	}
}

var pasteStart = []byte{esc, '[', '2', '0', '0', '~'}
var pasteEnd = []byte{esc, '[', '2', '0', '1', '~'}

// WrapPaste wraps clipboard bytes in bracketed-paste markers when active;
// otherwise it returns the buffer unchanged.
func WrapPaste(data []byte, bracketed bool) []byte {
	if !bracketed {
		return data
	}
	out := make([]byte, 0, len(pasteStart)+len(data)+len(pasteEnd))
	out = append(out, pasteStart...)
	out = append(out, data...)
	out = append(out, pasteEnd...)
	return out
}

// EncodeMouse serializes a mouse event per the active reporting mode:
// X10/normal use `ESC [ M b x y`; SGR uses `ESC [ < b; x; y; M|m`. x and y
// are 1-based screen coordinates.
func EncodeMouse(btn MouseButton, mods Modifiers, x, y int, pressed bool, mode MouseMode) []byte {
	if mode == MouseModeOff {
		return nil
	}

	code := mouseButtonCode(btn)
	if !pressed && btn != MouseWheelUp && btn != MouseWheelDown {
		if mode != MouseModeSGR {
			code = 3 // release has no button identity in X10/normal encoding
		}
	}
	code += mouseModifierBits(mods)

	if mode == MouseModeSGR {
		final := byte('M')
		if !pressed && btn != MouseWheelUp && btn != MouseWheelDown {
			final = 'm'
		}
		return []byte(fmt.Sprintf("\x1b[<%d;%d;%d%c", code, x, y, final))
	}

	// X10 / normal: byte-packed, offset by 32 so values stay printable.
	return []byte{esc, '[', 'M', byte(32 + code), byte(32 + x), byte(32 + y)}
}

func mouseButtonCode(btn MouseButton) int {
	switch btn {
	case MouseLeft:
		return 0
	case MouseMiddle:
		return 1
	case MouseRight:
		return 2
	case MouseRelease:
		return 3
	case MouseWheelUp:
		return 64
	case MouseWheelDown:
		return 65
	default:
		return 0
	}
}

func mouseModifierBits(mods Modifiers) int {
	bits := 0
	if mods.Shift {
		bits += 4
	}
	if mods.Alt {
		bits += 8
	}
	if mods.Ctrl {
		bits += 16
	}
	return bits
}
