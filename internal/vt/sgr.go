package vt

import (
	"strconv"
	"strings"
)

// applySGR interprets a CSI...m parameter list against the current
// attribute/color state.
func (p *Parser) applySGR(params []string) {
	if len(params) == 0 || (len(params) == 1 && params[0] == "") {
		p.curFG, p.curBG, p.curAttrs = DefaultColor, DefaultColor, Attrs{}
		return
	}

	for i := 0; i < len(params); i++ {
		base, sub := splitColon(params[i])
		code := atoiDefault(base, 0)

		switch {
		case code == 0:
			p.curFG, p.curBG, p.curAttrs = DefaultColor, DefaultColor, Attrs{}
		case code == 1:
			p.curAttrs.Bold = true
		case code == 3:
			p.curAttrs.Italic = true
		case code == 4:
			p.curAttrs.Underline = underlineStyleFromSub(sub)
		case code == 5 || code == 6:
			p.curAttrs.Blink = true
		case code == 7:
			p.curAttrs.Reverse = true
		case code == 8:
			p.curAttrs.Conceal = true
		case code == 9:
			p.curAttrs.Strikethrough = true
		case code == 22:
			p.curAttrs.Bold = false
		case code == 23:
			p.curAttrs.Italic = false
		case code == 24:
			p.curAttrs.Underline = UnderlineNone
		case code == 25:
			p.curAttrs.Blink = false
		case code == 27:
			p.curAttrs.Reverse = false
		case code == 28:
			p.curAttrs.Conceal = false
		case code == 29:
			p.curAttrs.Strikethrough = false
		case code >= 30 && code <= 37:
			p.curFG = IndexedColor(uint8(code - 30))
		case code == 38:
			if c, ok := parseColonColor(sub); ok {
				p.curFG = c
			} else if c, consumed, ok := parseExtendedColor(params, i); ok {
				p.curFG = c
				i += consumed
			}
		case code == 39:
			p.curFG = DefaultColor
		case code >= 40 && code <= 47:
			p.curBG = IndexedColor(uint8(code - 40))
		case code == 48:
			if c, ok := parseColonColor(sub); ok {
				p.curBG = c
			} else if c, consumed, ok := parseExtendedColor(params, i); ok {
				p.curBG = c
				i += consumed
			}
		case code == 49:
			p.curBG = DefaultColor
		case code >= 90 && code <= 97:
			p.curFG = IndexedColor(uint8(8 + code - 90))
		case code >= 100 && code <= 107:
			p.curBG = IndexedColor(uint8(8 + code - 100))
		}
	}
}

// parseColonColor handles the colon-subparameter color forms, where the
// whole selection arrives as one token: "38:5:N", "38:2:R:G:B", and the
// variant with an intervening colorspace id, "38:2::R:G:B". sub is the
// token's text after the leading 38/48.
func parseColonColor(sub string) (Color, bool) {
	if sub == "" {
		return Color{}, false
	}
	parts := strings.Split(sub, ":")
	switch parts[0] {
	case "5":
		if len(parts) >= 2 {
			return IndexedColor(uint8(atoiDefault(parts[1], 0))), true
		}
	case "2":
		rest := parts[1:]
		if len(rest) == 4 {
			rest = rest[1:] // skip the colorspace id
		}
		if len(rest) >= 3 {
			r := atoiDefault(rest[0], 0)
			g := atoiDefault(rest[1], 0)
			b := atoiDefault(rest[2], 0)
			return RGBColor(uint8(r), uint8(g), uint8(b)), true
		}
	}
	return Color{}, false
}

// parseExtendedColor consumes the ";5;N" (256-color) or ";2;R;G;B"
// (truecolor) tail that follows a bare 38/48 parameter, returning the
// number of EXTRA tokens consumed beyond params[i] itself.
func parseExtendedColor(params []string, i int) (Color, int, bool) {
	if i+1 >= len(params) {
		return Color{}, 0, false
	}
	switch params[i+1] {
	case "5":
		if i+2 >= len(params) {
			return Color{}, 0, false
		}
		return IndexedColor(uint8(atoiDefault(params[i+2], 0))), 2, true
	case "2":
		if i+4 >= len(params) {
			return Color{}, 0, false
		}
		r := atoiDefault(params[i+2], 0)
		g := atoiDefault(params[i+3], 0)
		b := atoiDefault(params[i+4], 0)
		return RGBColor(uint8(r), uint8(g), uint8(b)), 4, true
	default:
		return Color{}, 0, false
	}
}

func underlineStyleFromSub(sub string) UnderlineStyle {
	switch sub {
	case "", "1":
		return UnderlineSingle
	case "2":
		return UnderlineDouble
	case "3", "4", "5":
		return UnderlineCurly
	case "0":
		return UnderlineNone
	default:
		return UnderlineSingle
	}
}

func splitColon(tok string) (base, sub string) {
	for i := 0; i < len(tok); i++ {
		if tok[i] == ':' {
			return tok[:i], tok[i+1:]
		}
	}
	return tok, ""
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
