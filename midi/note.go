package midi

import "strconv"

// Note is a reconstructed note span in seconds.
type Note struct {
	Pitch    uint8   `json:"note"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Velocity uint8   `json:"velocity"`
	Channel  uint8   `json:"channel"`
	Track    int     `json:"track"`
}

// Length returns the note length in seconds
func (n Note) Length() float64 {
	return n.End - n.Start
}

// Filter keeps notes with velocity >= minVelocity and length >= minDuration.
// The input slice is not modified and order is preserved.
func Filter(notes []Note, minVelocity uint8, minDuration float64) []Note {
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		if n.Velocity >= minVelocity && n.Length() >= minDuration {
			out = append(out, n)
		}
	}
	return out
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName spells a MIDI pitch in scientific notation (60 = C4).
func NoteName(pitch uint8) string {
	return noteNames[pitch%12] + strconv.Itoa(int(pitch)/12-1)
}
