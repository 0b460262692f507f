package midi

import (
	"fmt"
	"sort"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Controller numbers the parser cares about
const (
	ControllerExpression uint8 = 11
	ControllerSustain    uint8 = 64
)

// EventType identifies a playable schedule event
type EventType uint8

const (
	NoteOn EventType = iota + 1
	NoteOff
	Pedal
)

func (t EventType) String() string {
	switch t {
	case NoteOn:
		return "on"
	case NoteOff:
		return "off"
	case Pedal:
		return "pedal"
	}
	return fmt.Sprintf("EventType(%d)", uint8(t))
}

// MarshalText encodes the type as "on", "off" or "pedal".
func (t EventType) MarshalText() ([]byte, error) {
	switch t {
	case NoteOn, NoteOff, Pedal:
		return []byte(t.String()), nil
	}
	return nil, fmt.Errorf("unknown event type %d", uint8(t))
}

// UnmarshalText is the inverse of MarshalText.
func (t *EventType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "on":
		*t = NoteOn
	case "off":
		*t = NoteOff
	case "pedal":
		*t = Pedal
	default:
		return fmt.Errorf("unknown event type %q", b)
	}
	return nil
}

// Event is one entry of the playback schedule.
// Note and Velocity are set for NoteOn/NoteOff (Velocity is 0 for NoteOff),
// Value is set for Pedal.
type Event struct {
	Time     float64   `json:"time"`
	Type     EventType `json:"type"`
	Channel  uint8     `json:"channel"`
	Note     uint8     `json:"note"`
	Velocity uint8     `json:"velocity"`
	Value    uint8     `json:"value"`
}

// IsNote reports whether the event is a note-on or note-off
func (e Event) IsNote() bool {
	return e.Type == NoteOn || e.Type == NoteOff
}

// PedalDown reports whether a pedal event presses the sustain pedal.
func (e Event) PedalDown() bool {
	return e.Type == Pedal && e.Value >= 64
}

// Message converts the event into the wire message a player sends.
func (e Event) Message() gomidi.Message {
	switch e.Type {
	case NoteOn:
		return gomidi.NoteOn(e.Channel, e.Note, e.Velocity)
	case NoteOff:
		return gomidi.NoteOff(e.Channel, e.Note)
	case Pedal:
		return gomidi.ControlChange(e.Channel, ControllerSustain, e.Value)
	}
	return nil
}

// SortSchedule orders events by time. Events sharing a time keep the order
// they were generated in.
func SortSchedule(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time < events[j].Time
	})
}

// Duration returns the time of the last note event, or 0 without notes.
// Pedal events do not extend the duration.
func Duration(events []Event) float64 {
	var d float64
	for _, e := range events {
		if e.IsNote() && e.Time > d {
			d = e.Time
		}
	}
	return d
}
