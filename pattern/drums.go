package pattern

import "go-industrial/song"

// Hit is one drum voice for one beat
type Hit struct {
	On       bool
	Velocity float64
}

// DrumHits is the drum content of a single beat. Velocities are 0..1.
type DrumHits struct {
	Kick    Hit
	Snare   Hit
	HiHat   Hit
	OpenHat Hit
	Crash   Hit
}

// Drums decides which drum voices sound on beat (counted from the start of
// the section) and how hard. draw is the seeded random value for this beat.
func Drums(s song.Section, beat, intensity int, draw float64) DrumHits {
	isBeat := beat%4 == 0
	isOffBeat := beat%2 == 1

	var h DrumHits
	switch s.Kind {
	case song.Intro:
		h.Kick = Hit{On: isBeat && beat > 8, Velocity: 1}
		h.HiHat = Hit{On: true, Velocity: 0.5}

	case song.Chorus:
		h.Kick = Hit{On: isBeat || (intensity > 7 && isOffBeat), Velocity: 1}
		h.Snare = Hit{On: beat%4 == 2, Velocity: 1}
		if beat%8 == 7 {
			h.OpenHat = Hit{On: true, Velocity: 1}
		} else {
			h.HiHat = Hit{On: true, Velocity: 1}
		}
		h.Crash = Hit{On: beat == 0, Velocity: 1}

	case song.Breakdown:
		h.Kick = Hit{On: beat%8 == 0, Velocity: 1}
		h.Snare = Hit{On: draw > 0.7, Velocity: draw}
		h.HiHat = Hit{On: draw > 0.5, Velocity: 1}

	default:
		h.Kick = Hit{On: isBeat, Velocity: 1}
		h.Snare = Hit{On: beat%8 == 4, Velocity: 1}
		h.HiHat = Hit{On: true, Velocity: 1}
		if s.Kind == song.Instrumental {
			h.Crash = Hit{On: beat == 0, Velocity: 1}
		}
	}

	scale := float64(intensity) / 10
	h.Kick.Velocity *= scale
	h.Snare.Velocity *= scale
	h.Crash.Velocity *= scale
	h.HiHat.Velocity *= scale * 0.7
	h.OpenHat.Velocity *= scale * 0.7
	return h
}

// Events converts the hits to channel 9 notes starting at tick
func (h DrumHits) Events(tick uint32) []Event {
	kit := Kits[DefaultKit]
	var events []Event
	add := func(hit Hit, v Voice) {
		if !hit.On {
			return
		}
		events = append(events, Event{
			Channel:       DrumChannel,
			Pitch:         kit.Note(v),
			Velocity:      Velocity(hit.Velocity),
			StartTick:     tick,
			DurationTicks: DrumTicks,
		})
	}
	add(h.Kick, Kick)
	add(h.Snare, Snare)
	add(h.HiHat, ClosedHat)
	add(h.OpenHat, OpenHat)
	add(h.Crash, Crash)
	return events
}
