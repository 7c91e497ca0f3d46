package pattern

import "math"

// PPQ is the tick resolution shared by the file and the live clock
const PPQ = 480

// MIDI channels (0-based)
const (
	BassChannel uint8 = 0
	LeadChannel uint8 = 1
	DrumChannel uint8 = 9
)

// DrumTicks is the length of a drum hit: 1/8 of a quarter
const DrumTicks = PPQ / 8

// Event is one note. StartTick is absolute from the start of its track
// (or relative to a step, for the per-step functions).
type Event struct {
	Channel       uint8
	Pitch         uint8
	Velocity      uint8
	StartTick     uint32
	DurationTicks uint32
}

// EndTick is StartTick + DurationTicks
func (e Event) EndTick() uint32 {
	return e.StartTick + e.DurationTicks
}

// Shift returns a copy of events moved later by offset ticks
func Shift(events []Event, offset uint32) []Event {
	out := make([]Event, len(events))
	for i, e := range events {
		e.StartTick += offset
		out[i] = e
	}
	return out
}

// Velocity converts a 0..1 factor to a MIDI velocity
func Velocity(f float64) uint8 {
	v := math.Round(f * 127)
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return uint8(v)
}
