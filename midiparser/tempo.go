package midiparser

import "sort"

// DefaultMicrosPerQuarter is the tempo assumed until the file sets one (120 BPM).
const DefaultMicrosPerQuarter = 500_000

// TempoBreakpoint is a tempo in effect from Tick until the next breakpoint.
type TempoBreakpoint struct {
	Tick             int64  `json:"tick"`
	MicrosPerQuarter uint32 `json:"microseconds_per_quarter"`
}

// BPM converts the breakpoint tempo to beats per minute
func (b TempoBreakpoint) BPM() float64 {
	return 60_000_000 / float64(b.MicrosPerQuarter)
}

// TempoMap converts absolute ticks to seconds. It is built once from every
// tempo change in the file and is read-only afterwards.
type TempoMap struct {
	breakpoints     []TempoBreakpoint
	ticksPerQuarter uint16
	// offsets[i] is the time in seconds at breakpoints[i].Tick
	offsets []float64
}

// SecondsFromTicks is the length of ticks at a single tempo.
func SecondsFromTicks(ticks int64, ticksPerQuarter uint16, microsPerQuarter uint32) float64 {
	return float64(ticks) * float64(microsPerQuarter) / float64(ticksPerQuarter) / 1_000_000
}

// BuildTempoMap collects the tempo changes in a merged message stream.
// A 120 BPM breakpoint is added at tick 0 unless the file sets a tempo there,
// and of several changes on one tick the last one wins.
func BuildTempoMap(messages []RawMessage, ticksPerQuarter uint16) *TempoMap {
	bps := []TempoBreakpoint{{Tick: 0, MicrosPerQuarter: DefaultMicrosPerQuarter}}
	for _, m := range messages {
		if t, ok := m.Payload.(SetTempo); ok && t.MicrosPerQuarter > 0 {
			bps = append(bps, TempoBreakpoint{Tick: m.Tick, MicrosPerQuarter: t.MicrosPerQuarter})
		}
	}
	sort.SliceStable(bps, func(i, j int) bool {
		return bps[i].Tick < bps[j].Tick
	})

	// collapse equal ticks, keeping the last
	deduped := bps[:0]
	for _, bp := range bps {
		if n := len(deduped); n > 0 && deduped[n-1].Tick == bp.Tick {
			deduped[n-1] = bp
			continue
		}
		deduped = append(deduped, bp)
	}

	offsets := make([]float64, len(deduped))
	for i := 1; i < len(deduped); i++ {
		prev := deduped[i-1]
		offsets[i] = offsets[i-1] + SecondsFromTicks(deduped[i].Tick-prev.Tick, ticksPerQuarter, prev.MicrosPerQuarter)
	}

	return &TempoMap{
		breakpoints:     deduped,
		ticksPerQuarter: ticksPerQuarter,
		offsets:         offsets,
	}
}

// Breakpoints returns a copy of the tempo breakpoints, ascending by tick.
func (m *TempoMap) Breakpoints() []TempoBreakpoint {
	out := make([]TempoBreakpoint, len(m.breakpoints))
	copy(out, m.breakpoints)
	return out
}

// TicksPerQuarter is the file resolution the map was built for
func (m *TempoMap) TicksPerQuarter() uint16 {
	return m.ticksPerQuarter
}

// Seconds returns the elapsed time at tick. Negative ticks map to 0.
func (m *TempoMap) Seconds(tick int64) float64 {
	if tick <= 0 {
		return 0
	}
	// last breakpoint at or before tick
	i := sort.Search(len(m.breakpoints), func(i int) bool {
		return m.breakpoints[i].Tick > tick
	}) - 1
	bp := m.breakpoints[i]
	return m.offsets[i] + SecondsFromTicks(tick-bp.Tick, m.ticksPerQuarter, bp.MicrosPerQuarter)
}

// TempoAt returns the tempo in effect at tick
func (m *TempoMap) TempoAt(tick int64) uint32 {
	i := sort.Search(len(m.breakpoints), func(i int) bool {
		return m.breakpoints[i].Tick > tick
	}) - 1
	if i < 0 {
		i = 0
	}
	return m.breakpoints[i].MicrosPerQuarter
}
