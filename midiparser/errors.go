package midiparser

import "errors"

var (
	// ErrMalformedFile is returned when the header or a track chunk cannot be decoded.
	ErrMalformedFile = errors.New("malformed MIDI file")

	// ErrUnsupportedTimeFormat is returned for SMPTE time code divisions and
	// for a metric division of zero ticks per quarter note.
	ErrUnsupportedTimeFormat = errors.New("unsupported MIDI time format")

	// ErrInvalidOptions is returned when filter thresholds are out of range.
	ErrInvalidOptions = errors.New("invalid load options")
)
