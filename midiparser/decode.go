package midiparser

import (
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"
)

// Payload is the decoded content of a RawMessage. The set of payloads is
// closed: every implementation lives in this file and the assembler switches
// over all of them.
type Payload interface {
	payload()
}

// SetTempo changes the tempo from its tick onwards.
type SetTempo struct {
	MicrosPerQuarter uint32
}

// TimeSignature is a meter change. Denominator is the real note value (4, 8, ...).
type TimeSignature struct {
	Numerator   uint8
	Denominator uint16
}

// KeySignature is a key change: negative SharpsFlats counts flats.
type KeySignature struct {
	SharpsFlats int8
	Minor       bool
}

type ProgramChange struct {
	Channel uint8
	Program uint8
}

type ControlChange struct {
	Channel    uint8
	Controller uint8
	Value      uint8
}

type NoteOn struct {
	Channel  uint8
	Pitch    uint8
	Velocity uint8
}

type NoteOff struct {
	Channel uint8
	Pitch   uint8
}

func (SetTempo) payload()      {}
func (TimeSignature) payload() {}
func (KeySignature) payload()  {}
func (ProgramChange) payload() {}
func (ControlChange) payload() {}
func (NoteOn) payload()        {}
func (NoteOff) payload()       {}

// RawMessage is one decoded message at an absolute tick.
type RawMessage struct {
	Tick    int64
	Track   int
	Payload Payload
}

// DecodeTrack walks one track, summing delta times into absolute ticks.
// Messages without a modelled payload (text, SysEx, pitch bend, end of
// track, ...) are skipped but their deltas still count.
func DecodeTrack(index int, track smf.Track) []RawMessage {
	var tick int64
	out := make([]RawMessage, 0, len(track))
	for _, ev := range track {
		tick += int64(ev.Delta)
		if p, ok := decodeMessage(ev.Message); ok {
			out = append(out, RawMessage{Tick: tick, Track: index, Payload: p})
		}
	}
	return out
}

// Merge concatenates decoded tracks and orders them by tick. Messages on the
// same tick keep track order, then in-track order.
func Merge(tracks ...[]RawMessage) []RawMessage {
	var n int
	for _, t := range tracks {
		n += len(t)
	}
	merged := make([]RawMessage, 0, n)
	for _, t := range tracks {
		merged = append(merged, t...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Tick < merged[j].Tick
	})
	return merged
}

func decodeMessage(msg smf.Message) (Payload, bool) {
	var ch, key, vel, cc, val, prog uint8
	var bpm float64

	switch {
	case msg.GetMetaTempo(&bpm):
		if bpm <= 0 {
			return nil, false
		}
		return SetTempo{MicrosPerQuarter: microsPerQuarter(bpm)}, true
	case msg.Is(smf.MetaTimeSigMsg):
		data, ok := metaData(msg)
		if !ok || len(data) < 2 || data[1] > 15 {
			return nil, false
		}
		return TimeSignature{Numerator: data[0], Denominator: 1 << data[1]}, true
	case msg.Is(smf.MetaKeySigMsg):
		data, ok := metaData(msg)
		if !ok || len(data) < 2 {
			return nil, false
		}
		sf := int8(data[0])
		if sf < -7 || sf > 7 {
			return nil, false
		}
		return KeySignature{SharpsFlats: sf, Minor: data[1] == 1}, true
	case msg.GetNoteStart(&ch, &key, &vel):
		return NoteOn{Channel: ch, Pitch: key, Velocity: vel}, true
	case msg.GetNoteEnd(&ch, &key):
		return NoteOff{Channel: ch, Pitch: key}, true
	case msg.GetControlChange(&ch, &cc, &val):
		return ControlChange{Channel: ch, Controller: cc, Value: val}, true
	case msg.GetProgramChange(&ch, &prog):
		return ProgramChange{Channel: ch, Program: prog}, true
	}
	return nil, false
}

// microsPerQuarter recovers the integral tempo gomidi stored as
// 60e6 / microseconds.
func microsPerQuarter(bpm float64) uint32 {
	return uint32(60_000_000/bpm + 0.5)
}

// metaData returns the payload of a meta message: FF <type> <vlq length> <data>.
func metaData(msg smf.Message) ([]byte, bool) {
	if len(msg) < 3 || msg[0] != 0xFF {
		return nil, false
	}
	var length, i int
	for i = 2; i < len(msg) && i < 6; i++ {
		length = length<<7 | int(msg[i]&0x7F)
		if msg[i]&0x80 == 0 {
			break
		}
	}
	start := i + 1
	if start+length > len(msg) {
		return nil, false
	}
	return msg[start : start+length], true
}
