package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"console3/internal/config"
)

type terminalHints struct {
	OscFg     string `json:"osc_fg,omitempty"`
	OscBg     string `json:"osc_bg,omitempty"`
	ColorFGBG string `json:"colorfgbg,omitempty"`
	Term      string `json:"term,omitempty"`
	ColorTerm string `json:"colorterm,omitempty"`
}

// detectTerminalHints captures the current terminal's colors for OSC 10/11
// responses, a COLORFGBG hint for fallback palette selection, and TERM/
// COLORTERM for capability detection.
func detectTerminalHints() terminalHints {
	var hints terminalHints

	overrideFg := os.Getenv("CONSOLE3_OSC_FG")
	overrideBg := os.Getenv("CONSOLE3_OSC_BG")
	overrideColorFGBG := os.Getenv("CONSOLE3_COLORFGBG")

	if isatty.IsTerminal(os.Stdout.Fd()) {
		output := termenv.NewOutput(os.Stdout)
		if fg := output.ForegroundColor(); fg != nil {
			hints.OscFg = colorToX11(fg)
		}
		if bg := output.BackgroundColor(); bg != nil {
			hints.OscBg = colorToX11(bg)
		}

		hints.ColorFGBG = os.Getenv("COLORFGBG")
		if hints.ColorFGBG == "" {
			if output.HasDarkBackground() {
				hints.ColorFGBG = "15;0"
			} else {
				hints.ColorFGBG = "0;15"
			}
		}

		hints.Term = os.Getenv("TERM")
		hints.ColorTerm = os.Getenv("COLORTERM")

		_ = persistTerminalHints(hints)
	} else if cached, ok := loadTerminalHints(); ok {
		hints = cached
	}

	if hints.ColorFGBG == "" {
		hints.ColorFGBG = os.Getenv("COLORFGBG")
	}

	if overrideFg != "" {
		hints.OscFg = overrideFg
	}
	if overrideBg != "" {
		hints.OscBg = overrideBg
	}
	if overrideColorFGBG != "" {
		hints.ColorFGBG = overrideColorFGBG
	}

	return hints
}

// refreshTerminalColorHintsCache updates the on-disk terminal color hint
// cache when this process has a TTY; non-TTY invocations are a no-op.
func refreshTerminalColorHintsCache() {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		detectTerminalHints()
	}
}

func terminalHintsPath() (string, error) {
	root, err := config.RootDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "terminal-colors.json"), nil
}

func persistTerminalHints(h terminalHints) error {
	path, err := terminalHintsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(h)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func loadTerminalHints() (terminalHints, bool) {
	path, err := terminalHintsPath()
	if err != nil {
		return terminalHints{}, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return terminalHints{}, false
	}
	var h terminalHints
	if err := json.Unmarshal(data, &h); err != nil {
		return terminalHints{}, false
	}
	return h, true
}

// colorToX11 converts a termenv.Color to X11 "rgb:RRRR/GGGG/BBBB" format,
// the form xterm and its descendants use for OSC 10/11 replies.
func colorToX11(c termenv.Color) string {
	if c == nil {
		return ""
	}
	if rgb, ok := c.(termenv.RGBColor); ok {
		hex := string(rgb)
		if len(hex) == 7 && hex[0] == '#' {
			r, _ := strconv.ParseUint(hex[1:3], 16, 8)
			g, _ := strconv.ParseUint(hex[3:5], 16, 8)
			b, _ := strconv.ParseUint(hex[5:7], 16, 8)
			return fmt.Sprintf("rgb:%04x/%04x/%04x", r*0x101, g*0x101, b*0x101)
		}
	}
	rgb := termenv.ConvertToRGB(c)
	r := uint8(rgb.R*255 + 0.5)
	g := uint8(rgb.G*255 + 0.5)
	b := uint8(rgb.B*255 + 0.5)
	return fmt.Sprintf("rgb:%04x/%04x/%04x", uint16(r)*0x101, uint16(g)*0x101, uint16(b)*0x101)
}
