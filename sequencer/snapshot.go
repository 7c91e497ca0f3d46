package sequencer

import (
	"math"

	"go-industrial/song"
)

// SpectrumBins is the number of analysis bins per snapshot
const SpectrumBins = 1024

// Snapshot is one consistent view of the playback state. It is never
// modified after publication.
type Snapshot struct {
	Beat            float64   `json:"beat"`
	Section         int       `json:"section"`
	Kind            song.Kind `json:"kind"`
	SectionName     string    `json:"sectionName"`
	Playing         bool      `json:"playing"`
	Paused          bool      `json:"paused"`
	Looping         bool      `json:"looping"`
	SectionProgress float64   `json:"sectionProgress"`
	TotalProgress   float64   `json:"totalProgress"`
	Tempo           int       `json:"tempo"`
	Intensity       int       `json:"intensity"`
	Distortion      int       `json:"distortion"`
	Frequencies     []float32 `json:"frequencies,omitempty"`
	AverageVolume   float32   `json:"averageVolume"`
}

// Bar returns the zero-based bar within the current section, assuming
// beatsPerBar beats per bar
func (s *Snapshot) Bar(sectionStart, beatsPerBar int) int {
	if beatsPerBar <= 0 {
		return 0
	}
	return int(s.Beat-float64(sectionStart)) / beatsPerBar
}

// Spectrum fills a synthetic analysis frame for beat at intensity
func Spectrum(beat float64, intensity int) ([]float32, float32) {
	out := make([]float32, SpectrumBins)
	level := float64(intensity) / 10
	var sum float64
	for i := range out {
		f := float64(i) / SpectrumBins
		v := (math.Sin(beat*f*10)*0.5 + 0.5) * (1 - f*0.8) * level
		out[i] = float32(v)
		sum += v
	}
	return out, float32(sum / SpectrumBins)
}

func (e *Engine) baseSnapshot() *Snapshot {
	return &Snapshot{
		Looping:    e.looping.Load(),
		Tempo:      int(e.tempo.Load()),
		Intensity:  int(e.intensity.Load()),
		Distortion: int(e.distortion.Load()),
	}
}

// idleSnapshot is the stopped state: beat 0, silent spectrum
func (e *Engine) idleSnapshot() *Snapshot {
	s := e.baseSnapshot()
	s.Frequencies = make([]float32, SpectrumBins)
	if sec, ok := e.timeline.Section(0); ok {
		s.Kind = sec.Kind
		s.SectionName = sec.Label()
	}
	return s
}

func (e *Engine) snapshotAt(sections []song.Section, total int, beat float64) *Snapshot {
	s := e.baseSnapshot()
	s.Beat = beat

	idx, start, ok := song.SectionAt(sections, beat)
	sec := sections[idx]
	s.Section = idx
	s.Kind = sec.Kind
	s.SectionName = sec.Label()
	if ok {
		s.SectionProgress = (beat - float64(start)) / float64(sec.TotalBeats())
		s.TotalProgress = beat / float64(total)
	} else {
		// past the end without looping
		s.SectionProgress = 1
		s.TotalProgress = 1
	}

	s.Frequencies, s.AverageVolume = Spectrum(beat, s.Intensity)
	return s
}
