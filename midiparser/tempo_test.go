package midiparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func tempoAt(tick int64, us uint32) RawMessage {
	return RawMessage{Tick: tick, Payload: SetTempo{MicrosPerQuarter: us}}
}

func TestBuildTempoMapDefault(t *testing.T) {
	m := BuildTempoMap([]RawMessage{
		{Tick: 0, Payload: NoteOn{Pitch: 60, Velocity: 1}},
	}, 480)

	assert.Equal(t, []TempoBreakpoint{{Tick: 0, MicrosPerQuarter: DefaultMicrosPerQuarter}}, m.Breakpoints())
	assert.Equal(t, uint16(480), m.TicksPerQuarter())
}

func TestBuildTempoMapExplicitZeroReplacesDefault(t *testing.T) {
	m := BuildTempoMap([]RawMessage{tempoAt(0, 400_000)}, 96)

	assert.Equal(t, []TempoBreakpoint{{Tick: 0, MicrosPerQuarter: 400_000}}, m.Breakpoints())
}

func TestBuildTempoMapSortsAndLaterWins(t *testing.T) {
	m := BuildTempoMap([]RawMessage{
		tempoAt(960, 300_000),
		tempoAt(480, 1_000_000),
		tempoAt(480, 750_000),
	}, 480)

	assert.Equal(t, []TempoBreakpoint{
		{Tick: 0, MicrosPerQuarter: 500_000},
		{Tick: 480, MicrosPerQuarter: 750_000},
		{Tick: 960, MicrosPerQuarter: 300_000},
	}, m.Breakpoints())

	bps := m.Breakpoints()
	for i := 1; i < len(bps); i++ {
		assert.Less(t, bps[i-1].Tick, bps[i].Tick)
	}
}

func TestSecondsAtZero(t *testing.T) {
	m := BuildTempoMap([]RawMessage{tempoAt(0, 250_000), tempoAt(100, 900_000)}, 120)
	assert.Zero(t, m.Seconds(0))
	assert.Zero(t, m.Seconds(-5))
}

func TestSecondsDefaultTempo(t *testing.T) {
	for _, tpq := range []uint16{96, 480, 960} {
		m := BuildTempoMap(nil, tpq)
		for _, tick := range []int64{0, 1, 7, 480, 12345} {
			want := float64(tick) * (500000 / 1e6) / float64(tpq)
			assert.InDelta(t, want, m.Seconds(tick), 1e-9, "tpq=%d tick=%d", tpq, tick)
		}
	}
}

func TestSecondsAcrossTempoChange(t *testing.T) {
	// 120 BPM for one quarter, then 60 BPM
	m := BuildTempoMap([]RawMessage{tempoAt(480, 1_000_000)}, 480)

	assert.InDelta(t, 0.25, m.Seconds(240), 1e-9)
	assert.InDelta(t, 0.5, m.Seconds(480), 1e-9)
	assert.InDelta(t, 1.0, m.Seconds(720), 1e-9)
	assert.InDelta(t, 1.5, m.Seconds(960), 1e-9)
	assert.Equal(t, uint32(500_000), m.TempoAt(479))
	assert.Equal(t, uint32(1_000_000), m.TempoAt(480))
}

func TestSecondsMonotonic(t *testing.T) {
	m := BuildTempoMap([]RawMessage{
		tempoAt(0, 600_000),
		tempoAt(100, 200_000),
		tempoAt(101, 2_000_000),
		tempoAt(1000, 1),
		tempoAt(1500, 16_777_215),
	}, 24)

	prev := m.Seconds(0)
	for tick := int64(1); tick < 3000; tick += 3 {
		cur := m.Seconds(tick)
		assert.GreaterOrEqual(t, cur, prev, "tick %d", tick)
		prev = cur
	}
}

func TestSecondsFromTicks(t *testing.T) {
	assert.InDelta(t, 0.5, SecondsFromTicks(480, 480, 500_000), 1e-12)
	assert.InDelta(t, 2.0, SecondsFromTicks(192, 96, 1_000_000), 1e-12)
	assert.Zero(t, SecondsFromTicks(0, 96, 1_000_000))
}

func TestBreakpointBPM(t *testing.T) {
	assert.InDelta(t, 120.0, TempoBreakpoint{MicrosPerQuarter: 500_000}.BPM(), 1e-9)
}
