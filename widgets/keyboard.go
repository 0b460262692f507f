package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Piano range shown by default (A0 to C8)
const (
	PianoLow  uint8 = 21
	PianoHigh uint8 = 108
)

// RenderKey renders a single colored key cell
func RenderKey(color [3]uint8, glyph string) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color)))
	return style.Render(glyph)
}

// IsBlackKey reports whether pitch falls on a black key
func IsBlackKey(pitch uint8) bool {
	switch pitch % 12 {
	case 1, 3, 6, 8, 10:
		return true
	}
	return false
}

// RenderKeyboard draws one cell per pitch in [lo, hi]. Held pitches are
// drawn as a solid block in lit(pitch), the rest in dim.
func RenderKeyboard(held []uint8, lo, hi uint8, lit func(pitch uint8) [3]uint8, dim [3]uint8) string {
	if hi < lo {
		return ""
	}
	var down [128]bool
	for _, p := range held {
		down[p&0x7F] = true
	}

	var out strings.Builder
	for p := int(lo); p <= int(hi); p++ {
		pitch := uint8(p)
		switch {
		case down[pitch&0x7F]:
			out.WriteString(RenderKey(lit(pitch), "█"))
		case IsBlackKey(pitch):
			out.WriteString(RenderKey(dim, "▄"))
		default:
			out.WriteString(RenderKey(dim, "▁"))
		}
	}
	return out.String()
}

// RenderKeyHelp formats key bindings on one line: "j/k:scroll  q:quit"
func RenderKeyHelp(keys []KeyBinding) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s:%s", k.Key, k.Desc)
	}
	return strings.Join(parts, "  ")
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
