package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	OctaveDown rune // ▼
	OctaveUp   rune // ▲
	Pointer    rune // ● live pointer
}

func New(palette *Palette) *Theme {
	if palette == nil || len(palette.Colors) == 0 {
		palette = DefaultPalette()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			OctaveDown: '▼',
			OctaveUp:   '▲',
			Pointer:    '●',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0
	RoleNatural = 0.15
	RoleSharp   = 0.05
	RoleMuted   = 0.3
	RoleFG      = 0.6
	RoleAccent  = 0.8
	RoleWarning = 1.0
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return toLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) FG() lipgloss.Color {
	return toLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return toLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return toLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Warning() lipgloss.Color {
	return toLipgloss(t.Palette.Lookup(RoleWarning))
}

// Key returns the resting color of a key
func (t *Theme) Key(accidental bool) lipgloss.Color {
	if accidental {
		return toLipgloss(t.Palette.Lookup(RoleSharp))
	}
	return toLipgloss(t.Palette.Lookup(RoleNatural))
}

// KeyColor is the highlight of a touched key: hue 200, saturation 80%,
// lightness rising from 30% to 70% with the level (0-127)
func KeyColor(level uint8) lipgloss.Color {
	if level > 127 {
		level = 127
	}
	l := (30 + float64(level)/127*40) / 100
	return lipgloss.Color(colorful.Hsl(200, 0.8, l).Hex())
}

func toLipgloss(c colorful.Color) lipgloss.Color {
	return lipgloss.Color(c.Clamped().Hex())
}
