package midi

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"gitlab.com/gomidi/midi/v2/smf"

	"go-industrial/song"
)

// Summary describes a standard MIDI file
type Summary struct {
	Format   uint16
	Tracks   int
	Division uint16
	BPM      float64
	Notes    []int // note-ons per track
}

// TotalNotes sums Notes
func (s Summary) TotalNotes() int {
	n := 0
	for _, c := range s.Notes {
		n += c
	}
	return n
}

func (s Summary) String() string {
	return fmt.Sprintf("format %d, %d tracks, %d ppq, %.2f bpm, %d notes",
		s.Format, s.Tracks, s.Division, s.BPM, s.TotalNotes())
}

// Inspect parses data with an independent SMF reader
func Inspect(data []byte) (Summary, error) {
	if len(data) < 14 || string(data[:4]) != "MThd" {
		return Summary{}, fmt.Errorf("not a standard midi file: %w", song.ErrInvalidParameter)
	}

	rd, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return Summary{}, fmt.Errorf("read midi: %v: %w", err, song.ErrInvalidParameter)
	}

	sum := Summary{
		Format: binary.BigEndian.Uint16(data[8:10]),
		Tracks: len(rd.Tracks),
	}
	if tf, ok := rd.TimeFormat.(smf.MetricTicks); ok {
		sum.Division = uint16(tf)
	}
	if changes := rd.TempoChanges(); len(changes) > 0 {
		sum.BPM = changes[0].BPM
	}

	for _, track := range rd.Tracks {
		count := 0
		for _, ev := range track {
			var ch, key, vel uint8
			if ev.Message.GetNoteOn(&ch, &key, &vel) && vel > 0 {
				count++
			}
		}
		sum.Notes = append(sum.Notes, count)
	}
	return sum, nil
}
