package theme

import (
	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	NoteOn  rune // ▼ key pressed
	NoteOff rune // △ key released
	PedalOn rune // ● sustain down
	PedalUp rune // ○ sustain up
	Cursor  rune // ▶ selected row
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			NoteOn:  '▼',
			NoteOff: '△',
			PedalOn: '●',
			PedalUp: '○',
			Cursor:  '▶',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0
	RoleSurface = 0.125
	RoleMuted   = 0.25
	RoleBass    = 0.375 // notes below middle C
	RoleAccent  = 0.5
	RoleFG      = 0.625
	RoleTreble  = 0.75 // middle C and up
	RoleWarning = 0.875
	RoleError   = 1.0
)

// MiddleC splits bass and treble colouring
const MiddleC = 60

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return t.Color(RoleBG)
}

func (t *Theme) Surface() lipgloss.Color {
	return t.Color(RoleSurface)
}

func (t *Theme) FG() lipgloss.Color {
	return t.Color(RoleFG)
}

func (t *Theme) Accent() lipgloss.Color {
	return t.Color(RoleAccent)
}

func (t *Theme) Muted() lipgloss.Color {
	return t.Color(RoleMuted)
}

func (t *Theme) Warning() lipgloss.Color {
	return t.Color(RoleWarning)
}

func (t *Theme) Error() lipgloss.Color {
	return t.Color(RoleError)
}

// NoteColor picks the bass or treble colour for a pitch
func (t *Theme) NoteColor(pitch uint8) lipgloss.Color {
	if pitch < MiddleC {
		return t.Color(RoleBass)
	}
	return t.Color(RoleTreble)
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return lipgloss.Color(t.Palette.Lookup(norm).Hex())
}

// RGB returns raw RGB for any normalized value
func (t *Theme) RGB(norm float64) RGB {
	return t.Palette.Lookup(norm)
}
