package vt

import "github.com/lucasb-eyer/go-colorful"

// ColorKind tags the union in Color.
type ColorKind uint8

const (
	ColorDefault ColorKind = iota
	ColorIndexed
	ColorRGB
)

// Color is a tagged union over default / 256-color index / truecolor RGB.
// Default is a sentinel meaning "whatever the scheme decides at render
// time" — this package never resolves it to a concrete pixel value.
type Color struct {
	Kind    ColorKind
	Index   uint8 // valid when Kind == ColorIndexed
	R, G, B uint8 // valid when Kind == ColorRGB
}

// DefaultColor is the zero Color value, used for foreground/background
// resets (SGR 39/49) and new cells.
var DefaultColor = Color{Kind: ColorDefault}

func IndexedColor(idx uint8) Color {
	return Color{Kind: ColorIndexed, Index: idx}
}

func RGBColor(r, g, b uint8) Color {
	return Color{Kind: ColorRGB, R: r, G: g, B: b}
}

// Colorful converts an indexed or RGB color into a go-colorful color for
// callers that need color-space math (e.g. luminance-based contrast
// decisions in the renderer). Default colors have no intrinsic value and
// return false.
func (c Color) Colorful() (colorful.Color, bool) {
	switch c.Kind {
	case ColorRGB:
		return colorful.Color{
			R: float64(c.R) / 255,
			G: float64(c.G) / 255,
			B: float64(c.B) / 255,
		}, true
	case ColorIndexed:
		r, g, b := ansi256ToRGB(c.Index)
		return colorful.Color{
			R: float64(r) / 255,
			G: float64(g) / 255,
			B: float64(b) / 255,
		}, true
	default:
		return colorful.Color{}, false
	}
}

// ansi256ToRGB resolves the standard xterm 256-color palette: 0-15 are the
// base/bright ANSI colors, 16-231 a 6x6x6 color cube, 232-255 a 24-step
// grayscale ramp.
func ansi256ToRGB(idx uint8) (r, g, b uint8) {
	if idx < 16 {
		return ansi16Palette[idx][0], ansi16Palette[idx][1], ansi16Palette[idx][2]
	}
	if idx < 232 {
		i := int(idx) - 16
		cube := [6]uint8{0, 95, 135, 175, 215, 255}
		r = cube[(i/36)%6]
		g = cube[(i/6)%6]
		b = cube[i%6]
		return
	}
	level := uint8(8 + (int(idx)-232)*10)
	return level, level, level
}

var ansi16Palette = [16][3]uint8{
	{0, 0, 0}, {205, 0, 0}, {0, 205, 0}, {205, 205, 0},
	{0, 0, 238}, {205, 0, 205}, {0, 205, 205}, {229, 229, 229},
	{127, 127, 127}, {255, 0, 0}, {0, 255, 0}, {255, 255, 0},
	{92, 92, 255}, {255, 0, 255}, {0, 255, 255}, {255, 255, 255},
}
