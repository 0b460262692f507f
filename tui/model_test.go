package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"midiroll/midi"
	"midiroll/midiparser"
	"midiroll/theme"
)

func testDoc() *midiparser.Document {
	return &midiparser.Document{
		Format:          1,
		Tracks:          2,
		TicksPerQuarter: 480,
		TempoChanges:    []midiparser.TempoEvent{{Time: 0, BPM: 120, MicrosPerQuarter: 500_000}},
		KeySignatures:   []midiparser.KeySignatureEvent{{Time: 0, Key: "Eb"}},
		Notes: []midi.Note{
			{Pitch: 60, Start: 0, End: 1, Velocity: 90},
			{Pitch: 64, Start: 2, End: 8, Velocity: 70},
			{Pitch: 67, Start: 9, End: 10, Velocity: 50},
		},
		Schedule: []midi.Event{
			{Time: 0, Type: midi.NoteOn, Note: 60, Velocity: 90},
			{Time: 0.5, Type: midi.Pedal, Value: 127},
			{Time: 1, Type: midi.NoteOff, Note: 60},
			{Time: 2, Type: midi.NoteOn, Note: 64, Velocity: 70},
			{Time: 8, Type: midi.NoteOff, Note: 64},
			{Time: 9, Type: midi.NoteOn, Note: 67, Velocity: 50},
			{Time: 10, Type: midi.NoteOff, Note: 67},
		},
		Duration: 10,
	}
}

func newTestModel() Model {
	return NewModel(testDoc(), "/songs/etude.mid", theme.New(theme.DefaultPalette()), 5, true)
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "shift+tab":
			msg = tea.KeyMsg{Type: tea.KeyShiftTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func TestScrollClampsToList(t *testing.T) {
	m := newTestModel()

	m = press(t, m, "k")
	assert.Equal(t, 0, m.Cursor())

	m = press(t, m, "j", "j")
	assert.Equal(t, 2, m.Cursor())
	assert.Equal(t, 1.0, m.Time())

	m = press(t, m, "G")
	assert.Equal(t, 6, m.Cursor())
	m = press(t, m, "j")
	assert.Equal(t, 6, m.Cursor())

	m = press(t, m, "g")
	assert.Equal(t, 0, m.Cursor())
}

func TestTabKeepsCursorPerView(t *testing.T) {
	m := newTestModel()
	m = press(t, m, "j", "tab")
	assert.Equal(t, viewNotes, m.view)
	assert.Equal(t, 0, m.Cursor())

	m = press(t, m, "j", "j")
	assert.Equal(t, 9.0, m.Time())

	m = press(t, m, "tab", "tab")
	assert.Equal(t, viewSchedule, m.view)
	assert.Equal(t, 1, m.Cursor())

	m = press(t, m, "shift+tab")
	assert.Equal(t, viewMeta, m.view)
}

func TestSeekByWindow(t *testing.T) {
	m := newTestModel()

	// 0 + 5s lands on the first event after 5s
	m = press(t, m, "]")
	assert.Equal(t, 4, m.Cursor())
	assert.Equal(t, 8.0, m.Time())

	m = press(t, m, "]")
	assert.Equal(t, 6, m.Cursor())

	m = press(t, m, "[", "[", "[")
	assert.Equal(t, 0, m.Cursor())
}

func TestQuit(t *testing.T) {
	m := newTestModel()
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, next.View())
}

func TestWindowSizeLimitsRows(t *testing.T) {
	m := newTestModel()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 11})
	m = next.(Model)
	assert.Equal(t, 3, m.rows())

	m = press(t, m, "f")
	assert.Equal(t, 3, m.Cursor())
}

func TestViewShowsDocument(t *testing.T) {
	m := newTestModel()
	out := m.View()

	assert.Contains(t, out, "etude.mid")
	assert.Contains(t, out, "0:10.0")
	assert.Contains(t, out, "tpq:480")
	assert.Contains(t, out, "notes:3")
	assert.Contains(t, out, "filter:on")
	assert.Contains(t, out, "[schedule]")
	assert.Contains(t, out, "C4")

	m = press(t, m, "tab", "tab")
	out = m.View()
	assert.Contains(t, out, "[meta]")
	assert.Contains(t, out, "Eb")
	assert.Contains(t, out, "120.00 bpm")
}

func TestKeyboardFollowsCursor(t *testing.T) {
	m := newTestModel()
	// At t=0 only C4 is down
	assert.Equal(t, 1, strings.Count(m.keyboard(), "█"))
	assert.Contains(t, m.keyboard(), string(m.Theme.Symbols.PedalUp))

	// After the pedal event the sustain indicator flips
	m = press(t, m, "j")
	assert.Contains(t, m.keyboard(), string(m.Theme.Symbols.PedalOn))

	// At t=1 the C4 off has already happened
	m = press(t, m, "j")
	assert.Equal(t, 0, strings.Count(m.keyboard(), "█"))
}

func TestEmptyDocument(t *testing.T) {
	m := NewModel(&midiparser.Document{}, "empty.mid", theme.New(theme.DefaultPalette()), 0, false)
	m = press(t, m, "j", "G", "]")
	assert.Equal(t, 0, m.Cursor())
	assert.Equal(t, 5.0, m.Window)
	assert.Contains(t, m.View(), "(empty)")
}

func TestClock(t *testing.T) {
	assert.Equal(t, "0:00.0", clock(0))
	assert.Equal(t, "1:05.5", clock(65.5))
}

func TestSeekNotesInCompletionOrder(t *testing.T) {
	// the long note ends last, so the loader lists it last
	doc := &midiparser.Document{
		Notes: []midi.Note{
			{Pitch: 60, Start: 1, End: 2},
			{Pitch: 62, Start: 3, End: 4},
			{Pitch: 64, Start: 5, End: 6},
			{Pitch: 48, Start: 0, End: 10},
		},
	}
	m := NewModel(doc, "song.mid", theme.New(theme.DefaultPalette()), 2, false)
	m = press(t, m, "tab")
	require.Equal(t, 1.0, m.Time())

	m = press(t, m, "]")
	assert.Equal(t, 2, m.Cursor())
	assert.Equal(t, 5.0, m.Time())

	// nothing starts after 7s
	m = press(t, m, "]")
	assert.Equal(t, 2, m.Cursor())

	m = press(t, m, "[")
	assert.Equal(t, 3.0, m.Time())
	m = press(t, m, "[")
	assert.Equal(t, 1.0, m.Time())
	m = press(t, m, "[")
	assert.Equal(t, 3, m.Cursor())
	assert.Equal(t, 0.0, m.Time())
}

func TestFilterAndEmptyUseThemeRoles(t *testing.T) {
	th := theme.New(theme.DefaultPalette())
	assert.NotEqual(t, th.Warning(), th.Muted())
	assert.NotEqual(t, th.Error(), th.Muted())
	assert.NotEqual(t, th.Surface(), th.BG())

	m := NewModel(&midiparser.Document{}, "empty.mid", th, 5, false)
	assert.Contains(t, m.View(), "filter:off")
}
