package midi

import (
	"bytes"
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-industrial/pattern"
	"go-industrial/song"
)

// File layout constants
const (
	Format   = 1
	Division = pattern.PPQ
	// NumTracks is tempo, drums, bass, lead, pad, effects
	NumTracks = 6
)

// timeSignature is 4/4, 24 clocks per click, 8 32nds per quarter
var timeSignature = []byte{0x04, 0x02, 0x18, 0x08}

type noteTrack struct {
	part    pattern.Part
	program int // -1 for none
}

var noteTracks = []noteTrack{
	{pattern.PartDrums, -1},
	{pattern.PartBass, int(pattern.BassProgram)},
	{pattern.PartLead, int(pattern.LeadProgram)},
}

// Encode renders sections into a format-1 standard MIDI file. It either
// returns the complete file or an error and nil.
func Encode(sections []song.Section, p song.Params) ([]byte, error) {
	if err := song.Validate(sections); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	songEnd := uint32(song.TotalBeats(sections) * pattern.PPQ)

	var buf bytes.Buffer
	buf.Write(header(Format, NumTracks, Division))
	buf.Write(tempoTrack(sections, p, songEnd))

	for _, nt := range noteTracks {
		notes := pattern.Track(nt.part, sections, p.Intensity, p.Seed)
		buf.Write(noteChunk(nt, notes, songEnd))
	}

	// pad and effects are reserved
	buf.Write(emptyTrack())
	buf.Write(emptyTrack())

	return buf.Bytes(), nil
}

func tempoTrack(sections []song.Section, p song.Params, songEnd uint32) []byte {
	w := newTrackWriter()
	w.name("Tempo Track")
	w.tempo(0, p.MicrosecondsPerQuarter())
	w.meta(0, metaTimeSig, timeSignature)

	var tick uint32
	for _, s := range sections {
		w.meta(tick, metaMarker, []byte(s.Label()))
		tick += uint32(s.TotalBeats() * pattern.PPQ)
	}
	return w.end(songEnd)
}

func noteChunk(nt noteTrack, notes []pattern.Event, songEnd uint32) []byte {
	w := newTrackWriter()
	w.name(nt.part.String())

	if nt.program >= 0 {
		ch := pattern.BassChannel
		if nt.part == pattern.PartLead {
			ch = pattern.LeadChannel
		}
		w.message(0, gomidi.ProgramChange(ch, uint8(nt.program)))
	}

	end := songEnd
	for _, ev := range Expand(notes) {
		w.message(ev.Tick, ev.Msg)
		end = max(end, ev.Tick)
	}
	return w.end(end)
}

// Describe returns a one-line summary of what Encode would produce
func Describe(sections []song.Section, p song.Params) string {
	return fmt.Sprintf("%d sections, %d beats, %d bpm, intensity %d, seed %d",
		len(sections), song.TotalBeats(sections), p.Tempo, p.Intensity, p.Seed)
}
