package midiparser

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	"midiroll/debug"
	"midiroll/midi"
)

// Options controls the optional note filter applied after assembly.
type Options struct {
	FilterNotes bool
	MinVelocity int
	MinDuration float64 // seconds
}

// DefaultOptions returns the loader defaults: filter off, 20 velocity, 20ms.
func DefaultOptions() Options {
	return Options{
		FilterNotes: false,
		MinVelocity: 20,
		MinDuration: 0.02,
	}
}

// Validate checks the thresholds, whether or not filtering is enabled.
func (o Options) Validate() error {
	if o.MinVelocity < 0 || o.MinVelocity > 127 {
		return fmt.Errorf("%w: min velocity %d not in 0-127", ErrInvalidOptions, o.MinVelocity)
	}
	if math.IsNaN(o.MinDuration) || o.MinDuration < 0 {
		return fmt.Errorf("%w: min duration %v", ErrInvalidOptions, o.MinDuration)
	}
	return nil
}

type TempoEvent struct {
	Time             float64 `json:"time"`
	BPM              float64 `json:"tempo"`
	MicrosPerQuarter uint32  `json:"microseconds"`
}

type TimeSignatureEvent struct {
	Time        float64 `json:"time"`
	Numerator   uint8   `json:"numerator"`
	Denominator uint16  `json:"denominator"`
}

type KeySignatureEvent struct {
	Time float64 `json:"time"`
	Key  string  `json:"key"`
}

type ProgramEvent struct {
	Time    float64 `json:"time"`
	Channel uint8   `json:"channel"`
	Program uint8   `json:"program"`
}

// ControllerEvent is one sustain or expression controller value.
type ControllerEvent struct {
	Time    float64 `json:"time"`
	Channel uint8   `json:"channel"`
	Value   uint8   `json:"value"`
}

type Pedals struct {
	Sustain    []ControllerEvent `json:"sustain"`
	Expression []ControllerEvent `json:"expression"`
}

// Document is the parsed model of one file. It is built once per load and
// never modified afterwards; a new load produces a new Document.
type Document struct {
	Format          uint16            `json:"format"`
	Tracks          int               `json:"tracks"`
	TicksPerQuarter uint16            `json:"ticks_per_beat"`
	TempoMap        []TempoBreakpoint `json:"tempo_map"`

	TempoChanges   []TempoEvent         `json:"tempo_changes"`
	TimeSignatures []TimeSignatureEvent `json:"time_signatures"`
	KeySignatures  []KeySignatureEvent  `json:"key_signatures"`
	ProgramChanges []ProgramEvent       `json:"program_changes"`
	Pedals         Pedals               `json:"pedals"`

	Notes    []midi.Note  `json:"notes"`
	Schedule []midi.Event `json:"playback_schedule"`
	Duration float64      `json:"duration"`
}

// Load reads and parses the file at path.
func Load(path string, opts Options) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := Parse(bytes.NewReader(data), opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a Standard MIDI File from r.
func Parse(r io.Reader, opts Options) (*Document, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedFile, err)
	}
	return Build(s, opts)
}

// Build turns an already decoded SMF into a Document: decode every track,
// build the tempo map, then classify the merged stream against it.
func Build(s *smf.SMF, opts Options) (*Document, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	mt, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedTimeFormat, s.TimeFormat)
	}
	tpq := uint16(mt)
	if tpq == 0 {
		return nil, fmt.Errorf("%w: zero ticks per quarter note", ErrUnsupportedTimeFormat)
	}

	// smf.ReadFrom keeps the messages of a chunk cut short on a message
	// boundary, so a track without its end-of-track meta was truncated.
	if len(s.Tracks) == 0 {
		return nil, fmt.Errorf("%w: no tracks", ErrMalformedFile)
	}
	for i, track := range s.Tracks {
		if n := len(track); n == 0 || !track[n-1].Message.Is(smf.MetaEndOfTrackMsg) {
			return nil, fmt.Errorf("%w: track %d has no end of track", ErrMalformedFile, i)
		}
	}

	decoded := make([][]RawMessage, len(s.Tracks))
	for i, track := range s.Tracks {
		decoded[i] = DecodeTrack(i, track)
	}
	stream := Merge(decoded...)
	tempo := BuildTempoMap(stream, tpq)

	doc := &Document{
		Format:          uint16(s.Format()),
		Tracks:          len(s.Tracks),
		TicksPerQuarter: tpq,
		TempoMap:        tempo.Breakpoints(),
	}
	newAssembler(tempo, doc).run(stream)

	if opts.FilterNotes {
		doc.Notes = midi.Filter(doc.Notes, uint8(opts.MinVelocity), opts.MinDuration)
	}
	midi.SortSchedule(doc.Schedule)
	doc.Duration = midi.Duration(doc.Schedule)

	debug.Log("midiparser", "loaded",
		"tracks", doc.Tracks,
		"tpq", tpq,
		"breakpoints", len(doc.TempoMap),
		"notes", len(doc.Notes),
		"events", len(doc.Schedule),
		"duration", doc.Duration)

	return doc, nil
}

// EventIndex returns the index of the first schedule event after t, i.e. the
// cursor a player resumes from after seeking to t.
func (d *Document) EventIndex(t float64) int {
	return sort.Search(len(d.Schedule), func(i int) bool {
		return d.Schedule[i].Time > t
	})
}

// PedalDown reports whether the sustain pedal is held at time t.
func (d *Document) PedalDown(t float64) bool {
	down := false
	for _, e := range d.Schedule[:d.EventIndex(t)] {
		if e.Type == midi.Pedal {
			down = e.PedalDown()
		}
	}
	return down
}

// SoundingNotes returns the pitches held at time t according to the schedule
// (the keyboard state a player restores after a seek). Keys are tracked per
// channel; a pitch held on any channel is reported once.
func (d *Document) SoundingNotes(t float64) []uint8 {
	var held [16][128]bool
	for _, e := range d.Schedule[:d.EventIndex(t)] {
		switch e.Type {
		case midi.NoteOn:
			held[e.Channel&0x0F][e.Note&0x7F] = true
		case midi.NoteOff:
			held[e.Channel&0x0F][e.Note&0x7F] = false
		}
	}
	var out []uint8
	for p := 0; p < 128; p++ {
		for ch := range held {
			if held[ch][p] {
				out = append(out, uint8(p))
				break
			}
		}
	}
	return out
}
