package midi

import (
	"slices"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-industrial/pattern"
)

// Event is a channel message at an absolute tick
type Event struct {
	Tick uint32
	Msg  gomidi.Message
	Off  bool
}

// Expand turns notes into note-on/note-off pairs sorted by tick. At equal
// ticks note-offs come first so a repeated pitch retriggers cleanly.
func Expand(notes []pattern.Event) []Event {
	events := make([]Event, 0, len(notes)*2)
	for _, n := range notes {
		events = append(events,
			Event{Tick: n.StartTick, Msg: gomidi.NoteOn(n.Channel, n.Pitch, n.Velocity)},
			Event{Tick: n.EndTick(), Msg: gomidi.NoteOff(n.Channel, n.Pitch), Off: true},
		)
	}
	slices.SortStableFunc(events, func(a, b Event) int {
		switch {
		case a.Tick < b.Tick:
			return -1
		case a.Tick > b.Tick:
			return 1
		case a.Off && !b.Off:
			return -1
		case !a.Off && b.Off:
			return 1
		}
		return 0
	})
	return events
}
