package vt

// setMode dispatches CSI h (DECSET/SM) and CSI l (DECRST/RM), the two
// sharing all logic except the boolean they apply.
func (p *Parser) setMode(enable bool) {
	if p.private != '?' {
		// Plain SM/RM (ANSI modes) aren't modeled; ignored.
		return
	}
	for _, tok := range p.params {
		switch paramAt([]string{tok}, 0, -1) {
		case 1: // DECCKM
			p.cursorAppMode = enable
		case 25: // DECTCEM cursor visibility
			p.cursor.Visible = enable
			p.notifyProps()
		case 47, 1047:
			p.setAltScreen(enable, false)
		case 1049:
			p.setAltScreen(enable, true)
		case 1048:
			if enable {
				p.savedCursor = p.cursor
			} else {
				p.cursor = p.savedCursor
				p.moveCursorNotify()
			}
		case 2004:
			p.bracketedPaste = enable
			p.notifyProps()
		case 1000:
			p.setMouseMode(enable, MouseX10)
		case 1006:
			p.setMouseMode(enable, MouseSGR)
		case 1015:
			p.setMouseMode(enable, MouseNormal)
		}
	}
}

func (p *Parser) setMouseMode(enable bool, m MouseMode) {
	if enable {
		p.mouseMode = m
	} else if p.mouseMode == m {
		p.mouseMode = MouseOff
	}
	p.notifyProps()
}

// setAltScreen implements DECSET 1049 and its variants 47 / 1047 (1048's
// cursor save/restore alone is handled in setMode): entering clears the
// alternate screen, leaving returns to the primary one, and alsoCursor
// (1049) additionally saves the cursor on entry and restores it on exit.
// Scrollback accumulation is suspended while the alternate screen is active.
func (p *Parser) setAltScreen(enable bool, alsoCursor bool) {
	if enable == p.altMode {
		return
	}
	if enable {
		if alsoCursor {
			p.savedCursor = p.cursor
		}
		p.active = p.alt
		p.altMode = true
		p.active.clear()
	} else {
		p.active = p.primary
		p.altMode = false
		if alsoCursor {
			p.cursor = p.savedCursor
			p.moveCursorNotify()
		}
	}
	p.markAllDirty()
	p.notifyProps()
}

func (p *Parser) notifyProps() {
	p.cb.setProp(Properties{
		Title:          p.title,
		IconName:       p.iconName,
		CursorVisible:  p.cursor.Visible,
		CursorBlink:    p.cursor.Blink,
		CursorShape:    p.cursor.Shape,
		AltScreen:      p.altMode,
		MouseMode:      p.mouseMode,
		BracketedPaste: p.bracketedPaste,
	})
}
