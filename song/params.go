package song

import (
	"fmt"
	"strings"
)

// Parameter ranges. MinTempo is the slowest tempo whose microseconds per
// quarter note fits the 3-byte tempo meta event (0xFFFFFF).
const (
	MinTempo      = 4
	MaxTempo      = 999
	MinIntensity  = 1
	MaxIntensity  = 10
	MinDistortion = 0
	MaxDistortion = 100
)

// VocalStyle is stored for the vocal layer; generation ignores it
type VocalStyle string

const (
	VocalOff       VocalStyle = "off"
	VocalRobotic   VocalStyle = "robotic"
	VocalWhisper   VocalStyle = "whisper"
	VocalDistorted VocalStyle = "distorted"
)

// ParseVocalStyle accepts any case; unknown names are rejected
func ParseVocalStyle(s string) (VocalStyle, error) {
	switch v := VocalStyle(strings.ToLower(strings.TrimSpace(s))); v {
	case VocalOff, VocalRobotic, VocalWhisper, VocalDistorted:
		return v, nil
	}
	return "", fmt.Errorf("vocal style %q: %w", s, ErrInvalidParameter)
}

// Params are the generation parameters. Output is a pure function of the
// sections and these values; Seed is always explicit.
type Params struct {
	Tempo      int        `json:"tempo"`
	Intensity  int        `json:"intensity"`
	Distortion int        `json:"distortion"`
	Seed       uint32     `json:"seed"`
	SongLength float64    `json:"songLength,omitempty"`
	Vocal      VocalStyle `json:"vocal,omitempty"`
}

// DefaultParams returns the factory parameter set
func DefaultParams() Params {
	return Params{
		Tempo:      70,
		Intensity:  7,
		Distortion: 60,
		SongLength: 1.0,
		Vocal:      VocalWhisper,
	}
}

// Validate checks every range
func (p Params) Validate() error {
	if p.Tempo < MinTempo || p.Tempo > MaxTempo {
		return fmt.Errorf("tempo must be %d-%d bpm, got %d: %w", MinTempo, MaxTempo, p.Tempo, ErrInvalidParameter)
	}
	if p.Intensity < MinIntensity || p.Intensity > MaxIntensity {
		return fmt.Errorf("intensity must be %d-%d, got %d: %w", MinIntensity, MaxIntensity, p.Intensity, ErrInvalidParameter)
	}
	if p.Distortion < MinDistortion || p.Distortion > MaxDistortion {
		return fmt.Errorf("distortion must be %d-%d, got %d: %w", MinDistortion, MaxDistortion, p.Distortion, ErrInvalidParameter)
	}
	if p.SongLength < 0 {
		return fmt.Errorf("song length must not be negative: %w", ErrInvalidParameter)
	}
	return nil
}

// MicrosecondsPerQuarter is the tempo meta value for Tempo
func (p Params) MicrosecondsPerQuarter() uint32 {
	if p.Tempo < 1 {
		return 0
	}
	return uint32(60000000 / p.Tempo)
}
