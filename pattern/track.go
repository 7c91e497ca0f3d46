package pattern

import "go-industrial/song"

// Part identifies a generated instrument track
type Part int

const (
	PartDrums Part = iota
	PartBass
	PartLead
)

func (p Part) String() string {
	switch p {
	case PartDrums:
		return "Drums"
	case PartBass:
		return "Bass"
	case PartLead:
		return "Lead"
	}
	return "Unknown"
}

// Seed returns the track seed of p for a song seed
func (p Part) Seed(seed uint32) uint32 {
	switch p {
	case PartBass:
		return TrackSeed(seed, BassSeed)
	case PartLead:
		return TrackSeed(seed, LeadSeed)
	}
	return TrackSeed(seed, DrumSeed)
}

// BeatEvents returns the drum notes of global beat index beat, ticks
// relative to the start of that beat. Both the file encoder and the live
// clock go through here.
func BeatEvents(sections []song.Section, beat, intensity int, seed uint32) []Event {
	if beat < 0 {
		return nil
	}
	idx, start, ok := song.SectionAt(sections, float64(beat))
	if !ok {
		return nil
	}
	draw := Draw(BeatSeed(PartDrums.Seed(seed), beat))
	return Drums(sections[idx], beat-start, intensity, draw).Events(0)
}

// BarEvents returns the bass or lead notes of global bar index bar, ticks
// relative to the start of that bar.
func BarEvents(part Part, sections []song.Section, bar, intensity int, seed uint32) []Event {
	s, local, ok := sectionForBar(sections, bar)
	if !ok {
		return nil
	}
	draw := Draw(BeatSeed(part.Seed(seed), bar))
	switch part {
	case PartBass:
		return Bass(s, local, intensity, draw)
	case PartLead:
		return Lead(s, local, intensity, draw)
	}
	return nil
}

// BarAt reports whether global beat index beat is the downbeat of a bar,
// and if so which global bar.
func BarAt(sections []song.Section, beat int) (int, bool) {
	offset, bars := 0, 0
	for _, s := range sections {
		n := s.TotalBeats()
		if beat < offset+n {
			local := beat - offset
			if local < 0 || local%s.BeatsPerBar != 0 {
				return 0, false
			}
			return bars + local/s.BeatsPerBar, true
		}
		offset += n
		bars += s.Bars
	}
	return 0, false
}

func sectionForBar(sections []song.Section, bar int) (song.Section, int, bool) {
	if bar < 0 {
		return song.Section{}, 0, false
	}
	for _, s := range sections {
		if bar < s.Bars {
			return s, bar, true
		}
		bar -= s.Bars
	}
	return song.Section{}, 0, false
}

// DrumTrack walks the song beat by beat
func DrumTrack(sections []song.Section, intensity int, seed uint32) []Event {
	var events []Event
	total := song.TotalBeats(sections)
	for beat := 0; beat < total; beat++ {
		events = append(events, Shift(BeatEvents(sections, beat, intensity, seed), uint32(beat*PPQ))...)
	}
	return events
}

// BassTrack walks the song bar by bar
func BassTrack(sections []song.Section, intensity int, seed uint32) []Event {
	return barTrack(PartBass, sections, intensity, seed)
}

// LeadTrack walks the song bar by bar
func LeadTrack(sections []song.Section, intensity int, seed uint32) []Event {
	return barTrack(PartLead, sections, intensity, seed)
}

// Track dispatches to the walker for part
func Track(part Part, sections []song.Section, intensity int, seed uint32) []Event {
	if part == PartDrums {
		return DrumTrack(sections, intensity, seed)
	}
	return barTrack(part, sections, intensity, seed)
}

func barTrack(part Part, sections []song.Section, intensity int, seed uint32) []Event {
	var events []Event
	var tick uint32
	bar := 0
	for _, s := range sections {
		length := BarTicks(s)
		for i := 0; i < s.Bars; i++ {
			events = append(events, Shift(BarEvents(part, sections, bar, intensity, seed), tick)...)
			tick += length
			bar++
		}
	}
	return events
}
