package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"midiroll/midi"
	"midiroll/midiparser"
	"midiroll/theme"
	"midiroll/widgets"
)

type view int

const (
	viewSchedule view = iota
	viewNotes
	viewMeta
	numViews
)

var viewNames = [numViews]string{"schedule", "notes", "meta"}

// header, tabs, blank, keyboard, help and padding lines
const chromeHeight = 8

var keys = []widgets.KeyBinding{
	{Key: "j/k", Desc: "scroll"},
	{Key: "f/b", Desc: "page"},
	{Key: "[/]", Desc: "seek"},
	{Key: "g/G", Desc: "top/end"},
	{Key: "tab", Desc: "view"},
	{Key: "q", Desc: "quit"},
}

type Model struct {
	Doc      *midiparser.Document
	Path     string
	Theme    *theme.Theme
	Filtered bool
	Window   float64 // seconds moved by [ and ]

	view     view
	cursor   [numViews]int
	width    int
	height   int
	quitting bool
}

func NewModel(doc *midiparser.Document, path string, th *theme.Theme, window float64, filtered bool) Model {
	if window <= 0 {
		window = 5
	}
	return Model{
		Doc:      doc,
		Path:     path,
		Theme:    th,
		Filtered: filtered,
		Window:   window,
		height:   24,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "tab":
			m.view = (m.view + 1) % numViews

		case "shift+tab":
			m.view = (m.view + numViews - 1) % numViews

		case "j", "down":
			m.move(1)

		case "k", "up":
			m.move(-1)

		case "f", "pgdown":
			m.move(m.rows())

		case "b", "pgup":
			m.move(-m.rows())

		case "g", "home":
			m.cursor[m.view] = 0

		case "G", "end":
			m.cursor[m.view] = max(m.length()-1, 0)

		case "]":
			m.seek(m.Time()+m.Window, true)

		case "[":
			m.seek(m.Time()-m.Window, false)
		}
	}

	return m, nil
}

func (m *Model) move(delta int) {
	c := m.cursor[m.view] + delta
	c = min(c, m.length()-1)
	m.cursor[m.view] = max(c, 0)
}

// seek moves forward to the first row after t, or back to the last row at
// or before t.
func (m *Model) seek(t float64, forward bool) {
	t = max(t, 0)
	switch m.view {
	case viewSchedule:
		idx := m.Doc.EventIndex(t)
		if !forward {
			idx--
		}
		m.cursor[m.view] = max(min(idx, m.length()-1), 0)
	case viewNotes:
		if idx := m.noteNear(t, forward); idx >= 0 {
			m.cursor[m.view] = idx
		}
	}
}

// noteNear returns the note starting soonest after t (forward) or latest at
// or before t, or -1. Notes are listed in the order they end, so Start is
// not sorted.
func (m Model) noteNear(t float64, forward bool) int {
	notes := m.Doc.Notes
	best := -1
	for i, n := range notes {
		switch {
		case forward && n.Start > t:
			if best < 0 || n.Start < notes[best].Start {
				best = i
			}
		case !forward && n.Start <= t:
			if best < 0 || n.Start > notes[best].Start {
				best = i
			}
		}
	}
	return best
}

func (m Model) length() int {
	switch m.view {
	case viewSchedule:
		return len(m.Doc.Schedule)
	case viewNotes:
		return len(m.Doc.Notes)
	default:
		return len(m.metaLines())
	}
}

// rows is the number of list rows that fit under the chrome
func (m Model) rows() int {
	return max(m.height-chromeHeight, 3)
}

// Time returns the song time at the cursor
func (m Model) Time() float64 {
	c := m.cursor[m.view]
	switch m.view {
	case viewSchedule:
		if c < len(m.Doc.Schedule) {
			return m.Doc.Schedule[c].Time
		}
	case viewNotes:
		if c < len(m.Doc.Notes) {
			return m.Doc.Notes[c].Start
		}
	}
	return 0
}

// Cursor returns the selected row in the current view
func (m Model) Cursor() int {
	return m.cursor[m.view]
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	// an active filter hides notes, so flag it
	filter := dimStyle.Render("filter:off")
	if m.Filtered {
		filter = lipgloss.NewStyle().Foreground(m.Theme.Warning()).Render("filter:on")
	}
	header := headerStyle.Render(fmt.Sprintf("midiroll  %s  %s  tpq:%d  notes:%d  events:%d  ",
		filepath.Base(m.Path),
		clock(m.Doc.Duration),
		m.Doc.TicksPerQuarter,
		len(m.Doc.Notes),
		len(m.Doc.Schedule))) + filter

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n")
	out.WriteString(m.tabs())
	out.WriteString("\n\n")
	out.WriteString(m.list())
	out.WriteString("\n")
	out.WriteString(m.keyboard())
	out.WriteString("\n\n")
	out.WriteString(dimStyle.Render(widgets.RenderKeyHelp(keys)))

	return out.String()
}

func (m Model) tabs() string {
	active := lipgloss.NewStyle().Foreground(m.Theme.BG()).Background(m.Theme.Accent()).Bold(true)
	inactive := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	parts := make([]string, numViews)
	for v := view(0); v < numViews; v++ {
		if v == m.view {
			parts[v] = active.Render("[" + viewNames[v] + "]")
		} else {
			parts[v] = inactive.Render(" " + viewNames[v] + " ")
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) list() string {
	n := m.length()
	if n == 0 {
		return lipgloss.NewStyle().Foreground(m.Theme.Error()).Render("  (empty)")
	}

	rows := m.rows()
	cursor := m.cursor[m.view]
	start := max(min(cursor-rows/2, n-rows), 0)
	end := min(start+rows, n)

	var meta []string
	if m.view == viewMeta {
		meta = m.metaLines()
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		var line string
		switch m.view {
		case viewSchedule:
			line = m.eventLine(m.Doc.Schedule[i])
		case viewNotes:
			line = m.noteLine(m.Doc.Notes[i])
		default:
			line = meta[i]
		}

		mark := "  "
		if i == cursor {
			mark = string(m.Theme.Symbols.Cursor) + " "
			line = lipgloss.NewStyle().Background(m.Theme.Surface()).Bold(true).Render(line)
		}
		lines = append(lines, mark+line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) eventLine(e midi.Event) string {
	switch e.Type {
	case midi.NoteOn, midi.NoteOff:
		sym := m.Theme.Symbols.NoteOn
		if e.Type == midi.NoteOff {
			sym = m.Theme.Symbols.NoteOff
		}
		name := lipgloss.NewStyle().Foreground(m.Theme.NoteColor(e.Note)).Render(fmt.Sprintf("%-4s", midi.NoteName(e.Note)))
		return fmt.Sprintf("%10.3fs  %c %-5s ch%-2d %s vel %3d", e.Time, sym, e.Type, e.Channel, name, e.Velocity)
	default:
		sym := m.Theme.Symbols.PedalUp
		if e.PedalDown() {
			sym = m.Theme.Symbols.PedalOn
		}
		return fmt.Sprintf("%10.3fs  %c %-5s ch%-2d value %3d", e.Time, sym, e.Type, e.Channel, e.Value)
	}
}

func (m Model) noteLine(n midi.Note) string {
	name := lipgloss.NewStyle().Foreground(m.Theme.NoteColor(n.Pitch)).Render(fmt.Sprintf("%-4s", midi.NoteName(n.Pitch)))
	return fmt.Sprintf("%10.3fs %10.3fs  %s vel %3d  ch%-2d trk %d", n.Start, n.End, name, n.Velocity, n.Channel, n.Track)
}

func (m Model) metaLines() []string {
	d := m.Doc
	lines := []string{
		fmt.Sprintf("format           %d", d.Format),
		fmt.Sprintf("tracks           %d", d.Tracks),
		fmt.Sprintf("ticks per beat   %d", d.TicksPerQuarter),
		fmt.Sprintf("duration         %.3fs", d.Duration),
	}
	for _, t := range d.TempoChanges {
		lines = append(lines, fmt.Sprintf("tempo    %10.3fs  %.2f bpm", t.Time, t.BPM))
	}
	for _, ts := range d.TimeSignatures {
		lines = append(lines, fmt.Sprintf("meter    %10.3fs  %d/%d", ts.Time, ts.Numerator, ts.Denominator))
	}
	for _, k := range d.KeySignatures {
		lines = append(lines, fmt.Sprintf("key      %10.3fs  %s", k.Time, k.Key))
	}
	for _, p := range d.ProgramChanges {
		lines = append(lines, fmt.Sprintf("program  %10.3fs  ch%-2d %d", p.Time, p.Channel, p.Program))
	}
	lines = append(lines,
		fmt.Sprintf("sustain          %d events", len(d.Pedals.Sustain)),
		fmt.Sprintf("expression       %d events", len(d.Pedals.Expression)))
	return lines
}

// keyboard shows the notes and pedal held at the cursor time
func (m Model) keyboard() string {
	t := m.Time()
	lit := func(p uint8) [3]uint8 {
		if p < theme.MiddleC {
			return m.Theme.RGB(theme.RoleBass)
		}
		return m.Theme.RGB(theme.RoleTreble)
	}
	kb := widgets.RenderKeyboard(m.Doc.SoundingNotes(t), widgets.PianoLow, widgets.PianoHigh, lit, m.Theme.RGB(theme.RoleMuted))

	pedal := m.Theme.Symbols.PedalUp
	if m.Doc.PedalDown(t) {
		pedal = m.Theme.Symbols.PedalOn
	}
	return fmt.Sprintf("%s %c %s", kb, pedal, clock(t))
}

// clock formats seconds as m:ss.s
func clock(sec float64) string {
	minutes := int(sec) / 60
	return fmt.Sprintf("%d:%04.1f", minutes, sec-float64(minutes*60))
}
