package midiparser

import (
	"fmt"

	"midiroll/debug"
	"midiroll/midi"
)

var (
	majorKeys = [15]string{"Cb", "Gb", "Db", "Ab", "Eb", "Bb", "F", "C", "G", "D", "A", "E", "B", "F#", "C#"}
	minorKeys = [15]string{"Abm", "Ebm", "Bbm", "Fm", "Cm", "Gm", "Dm", "Am", "Em", "Bm", "F#m", "C#m", "G#m", "D#m", "A#m"}
)

// Name returns the key as "C", "F#m", "Bb" and so on.
func (k KeySignature) Name() string {
	i := int(k.SharpsFlats) + 7
	if i < 0 || i >= len(majorKeys) {
		return fmt.Sprintf("KeySignature(%d)", k.SharpsFlats)
	}
	if k.Minor {
		return minorKeys[i]
	}
	return majorKeys[i]
}

type noteKey struct {
	ch, pitch uint8
}

type openNote struct {
	start    float64
	velocity uint8
	track    int
}

// assembler classifies one merged stream. The open-note table lives only for
// the duration of a single pass.
type assembler struct {
	tempo  *TempoMap
	active map[noteKey]openNote
	doc    *Document
}

func newAssembler(tempo *TempoMap, doc *Document) *assembler {
	doc.TempoChanges = []TempoEvent{}
	doc.TimeSignatures = []TimeSignatureEvent{}
	doc.KeySignatures = []KeySignatureEvent{}
	doc.ProgramChanges = []ProgramEvent{}
	doc.Pedals = Pedals{Sustain: []ControllerEvent{}, Expression: []ControllerEvent{}}
	doc.Notes = []midi.Note{}
	doc.Schedule = []midi.Event{}

	return &assembler{
		tempo:  tempo,
		active: make(map[noteKey]openNote),
		doc:    doc,
	}
}

func (a *assembler) run(messages []RawMessage) {
	for _, m := range messages {
		a.handle(m)
	}
	if n := len(a.active); n > 0 {
		debug.Log("midiparser", "dropped notes without note-off", "count", n)
	}
	a.active = nil
}

func (a *assembler) handle(m RawMessage) {
	t := a.tempo.Seconds(m.Tick)
	doc := a.doc

	switch p := m.Payload.(type) {
	case SetTempo:
		doc.TempoChanges = append(doc.TempoChanges, TempoEvent{
			Time:             t,
			BPM:              60_000_000 / float64(p.MicrosPerQuarter),
			MicrosPerQuarter: p.MicrosPerQuarter,
		})

	case TimeSignature:
		doc.TimeSignatures = append(doc.TimeSignatures, TimeSignatureEvent{
			Time:        t,
			Numerator:   p.Numerator,
			Denominator: p.Denominator,
		})

	case KeySignature:
		doc.KeySignatures = append(doc.KeySignatures, KeySignatureEvent{Time: t, Key: p.Name()})

	case ProgramChange:
		doc.ProgramChanges = append(doc.ProgramChanges, ProgramEvent{
			Time:    t,
			Channel: p.Channel,
			Program: p.Program,
		})

	case ControlChange:
		ev := ControllerEvent{Time: t, Channel: p.Channel, Value: p.Value}
		switch p.Controller {
		case midi.ControllerSustain:
			doc.Pedals.Sustain = append(doc.Pedals.Sustain, ev)
			doc.Schedule = append(doc.Schedule, midi.Event{
				Time:    t,
				Type:    midi.Pedal,
				Channel: p.Channel,
				Value:   p.Value,
			})
		case midi.ControllerExpression:
			doc.Pedals.Expression = append(doc.Pedals.Expression, ev)
		}

	case NoteOn:
		if p.Velocity == 0 {
			a.noteOff(t, p.Channel, p.Pitch)
			return
		}
		k := noteKey{p.Channel, p.Pitch}
		if prev, ok := a.active[k]; ok {
			debug.LogEvery(16, "midiparser", "note-on over open note, dropping earlier start",
				"channel", p.Channel, "pitch", p.Pitch, "start", prev.start, "restart", t)
		}
		a.active[k] = openNote{start: t, velocity: p.Velocity, track: m.Track}
		doc.Schedule = append(doc.Schedule, midi.Event{
			Time:     t,
			Type:     midi.NoteOn,
			Channel:  p.Channel,
			Note:     p.Pitch,
			Velocity: p.Velocity,
		})

	case NoteOff:
		a.noteOff(t, p.Channel, p.Pitch)
	}
}

func (a *assembler) noteOff(t float64, ch, pitch uint8) {
	k := noteKey{ch, pitch}
	if open, ok := a.active[k]; ok {
		a.doc.Notes = append(a.doc.Notes, midi.Note{
			Pitch:    pitch,
			Start:    open.start,
			End:      t,
			Velocity: open.velocity,
			Channel:  ch,
			Track:    open.track,
		})
		delete(a.active, k)
	}
	a.doc.Schedule = append(a.doc.Schedule, midi.Event{
		Time:    t,
		Type:    midi.NoteOff,
		Channel: ch,
		Note:    pitch,
	})
}
