// Package cydterm provides the core terminal emulation logic shared between
// display frontends (CLI, GTK, Qt).
//
// This package contains:
//   - Logical color types and the 8-entry palette
//   - Terminal buffer with circular scrollback
//   - Incremental UTF-8 decoder
//   - Escape sequence parser (CSI subset)
//   - Command history
//   - Session wiring, traffic logging and settings persistence
//
// Frontend packages (cli, gtk, qt) provide the rendering and input glue
// that drives this core.
package cydterm

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// ColorType indicates how a cell color was specified
type ColorType uint8

const (
	ColorDefault ColorType = iota // session default fg/bg pair
	ColorPalette                  // 8-entry ANSI palette (0-7)
)

// Color is a logical color reference. Cells store logical colors only;
// RGB resolution happens in the frontends through a ColorScheme.
type Color struct {
	Type  ColorType
	Index uint8 // palette index for ColorPalette
}

// DefaultColor returns the session-default color reference.
func DefaultColor() Color {
	return Color{Type: ColorDefault}
}

// PaletteColor creates a palette color (index 0-7, clamped)
func PaletteColor(index int) Color {
	if index < 0 || index > 7 {
		index = 7
	}
	return Color{Type: ColorPalette, Index: uint8(index)}
}

// RGB is a resolved display color
type RGB struct {
	R, G, B uint8
}

// Palette indices follow the ANSI SGR 30-37 order
const (
	PaletteBlack = iota
	PaletteRed
	PaletteGreen
	PaletteYellow
	PaletteBlue
	PaletteMagenta
	PaletteCyan
	PaletteWhite
)

// ColorScheme maps logical colors to display RGB values
type ColorScheme struct {
	Name      string
	DefaultFg RGB
	DefaultBg RGB
	Palette   [8]RGB
}

// standardPalette holds the conventional ANSI colors used by all
// built-in schemes.
var standardPalette = [8]RGB{
	{0, 0, 0},       // black
	{205, 49, 49},   // red
	{13, 188, 121},  // green
	{229, 229, 16},  // yellow
	{36, 114, 200},  // blue
	{188, 63, 188},  // magenta
	{17, 168, 205},  // cyan
	{229, 229, 229}, // white
}

// GreenScheme returns the classic green-on-black scheme used as the
// session default.
func GreenScheme() *ColorScheme {
	return &ColorScheme{
		Name:      "green",
		DefaultFg: RGB{0, 255, 0},
		DefaultBg: RGB{0, 0, 0},
		Palette:   standardPalette,
	}
}

// WhiteScheme returns a plain white-on-black scheme.
func WhiteScheme() *ColorScheme {
	return &ColorScheme{
		Name:      "white",
		DefaultFg: RGB{229, 229, 229},
		DefaultBg: RGB{0, 0, 0},
		Palette:   standardPalette,
	}
}

// Resolve maps a logical color to display RGB. isFg selects which half
// of the default pair a ColorDefault reference resolves to.
func (s *ColorScheme) Resolve(c Color, isFg bool) RGB {
	switch c.Type {
	case ColorPalette:
		return s.Palette[c.Index&7]
	default:
		if isFg {
			return s.DefaultFg
		}
		return s.DefaultBg
	}
}

// LoadColorScheme reads a scheme from a JSON file. Expected shape:
//
//	{
//	  "name": "custom",
//	  "foreground": [0, 255, 0],
//	  "background": [0, 0, 0],
//	  "palette": [[0,0,0], [205,49,49], ...]
//	}
//
// Missing fields fall back to the green scheme's values.
func LoadColorScheme(path string) (*ColorScheme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read color scheme: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("color scheme %s: invalid JSON", path)
	}

	scheme := GreenScheme()
	root := gjson.ParseBytes(data)

	if name := root.Get("name"); name.Exists() {
		scheme.Name = name.String()
	}
	if fg := root.Get("foreground"); fg.IsArray() {
		scheme.DefaultFg = rgbFromJSON(fg, scheme.DefaultFg)
	}
	if bg := root.Get("background"); bg.IsArray() {
		scheme.DefaultBg = rgbFromJSON(bg, scheme.DefaultBg)
	}
	if pal := root.Get("palette"); pal.IsArray() {
		for i, entry := range pal.Array() {
			if i >= 8 {
				break
			}
			scheme.Palette[i] = rgbFromJSON(entry, scheme.Palette[i])
		}
	}
	return scheme, nil
}

func rgbFromJSON(v gjson.Result, fallback RGB) RGB {
	parts := v.Array()
	if len(parts) != 3 {
		return fallback
	}
	return RGB{
		R: uint8(parts[0].Int() & 0xff),
		G: uint8(parts[1].Int() & 0xff),
		B: uint8(parts[2].Int() & 0xff),
	}
}
