package pattern

import "go-industrial/song"

// BassNotes is C minor from C1 to G2
var BassNotes = [12]uint8{24, 26, 27, 29, 31, 32, 34, 36, 38, 39, 41, 43}

// LeadNotes is C minor from C3 over two octaves
var LeadNotes = [24]uint8{
	48, 50, 51, 53, 55, 56, 58, 60,
	62, 63, 65, 67, 68, 70, 72, 74,
	75, 77, 79, 80, 82, 84, 86, 87,
}

// GM programs sent at the top of the melodic tracks
const (
	BassProgram uint8 = 38 // Synth Bass 1
	LeadProgram uint8 = 81 // Lead 2 (sawtooth)
)

// BarTicks is the length of one bar of s
func BarTicks(s song.Section) uint32 {
	return uint32(s.BeatsPerBar * PPQ)
}

// Bass returns the bass notes of one bar, ticks relative to the bar start.
// Each bar has two slots, one per half.
func Bass(s song.Section, bar, intensity int, draw float64) []Event {
	half := BarTicks(s) / 2
	scale := float64(intensity) / 10

	first, second := 0, 5
	if s.Kind == song.Chorus && intensity > 7 && draw > 0.5 {
		first = 7
	}

	events := []Event{{
		Channel:       BassChannel,
		Pitch:         BassNotes[first],
		Velocity:      Velocity(80.0 / 127 * scale),
		StartTick:     0,
		DurationTicks: half,
	}}
	if s.Kind == song.Breakdown {
		return events
	}
	return append(events, Event{
		Channel:       BassChannel,
		Pitch:         BassNotes[second],
		Velocity:      Velocity(70.0 / 127 * scale),
		StartTick:     half,
		DurationTicks: half,
	})
}

// Lead returns the lead notes of one bar. The lead sits out quiet sections.
func Lead(s song.Section, bar, intensity int, draw float64) []Event {
	switch s.Kind {
	case song.Intro, song.Verse, song.Breakdown, song.Outro:
		return nil
	}

	half := BarTicks(s) / 2
	scale := float64(intensity) / 10

	a := int(draw * 8)
	b := a + 4
	if s.Kind == song.Chorus {
		a += 8
		b += 8
	}

	return []Event{
		{
			Channel:       LeadChannel,
			Pitch:         LeadNotes[a],
			Velocity:      Velocity(90.0 / 127 * scale),
			StartTick:     0,
			DurationTicks: half,
		},
		{
			Channel:       LeadChannel,
			Pitch:         LeadNotes[b],
			Velocity:      Velocity(75.0 / 127 * scale),
			StartTick:     half,
			DurationTicks: half,
		},
	}
}
