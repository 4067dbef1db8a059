package vt

import "console3/internal/input"

// KeyboardUnichar encodes a printable character typed by the user and
// forwards the resulting bytes to the PTY via OnOutput.
func (p *Parser) KeyboardUnichar(r rune, mods input.Modifiers) {
	p.cb.output(input.EncodeRune(r, mods))
}

// KeyboardKey encodes a named key, honoring the parser's live cursor-key
// application mode.
func (p *Parser) KeyboardKey(key input.Key, mods input.Modifiers) {
	p.cb.output(input.EncodeNamedKey(key, mods, p.cursorAppMode))
}

// Paste encodes clipboard bytes, wrapping them in bracketed-paste markers
// only if that mode is currently active.
func (p *Parser) Paste(data []byte) {
	p.cb.output(input.WrapPaste(data, p.bracketedPaste))
}

// Mouse encodes a mouse event per the parser's live mouse-reporting mode;
// it is a no-op (emits nothing) when mouse reporting is off.
func (p *Parser) Mouse(btn input.MouseButton, mods input.Modifiers, row, col int, pressed bool) {
	if p.mouseMode == MouseOff {
		return
	}
	mode := input.MouseModeX10
	switch p.mouseMode {
	case MouseNormal:
		mode = input.MouseModeNormal
	case MouseSGR:
		mode = input.MouseModeSGR
	}
	p.cb.output(input.EncodeMouse(btn, mods, col+1, row+1, pressed, mode))
}
