package song

import (
	"fmt"
	"strings"
)

// Kind identifies the structural role of a section
type Kind int

const (
	Intro Kind = iota
	Verse
	PreChorus
	Chorus
	Bridge
	Instrumental
	Breakdown
	Outro
)

var kindLabels = [...]string{
	Intro:        "INTRO",
	Verse:        "VERSE",
	PreChorus:    "PRE-CHORUS",
	Chorus:       "CHORUS",
	Bridge:       "BRIDGE",
	Instrumental: "INSTRUMENTAL",
	Breakdown:    "BREAKDOWN",
	Outro:        "OUTRO",
}

// Kinds returns every section kind in declaration order
func Kinds() []Kind {
	return []Kind{Intro, Verse, PreChorus, Chorus, Bridge, Instrumental, Breakdown, Outro}
}

// String returns the upper-case display label
func (k Kind) String() string {
	if k < Intro || k > Outro {
		return "UNKNOWN"
	}
	return kindLabels[k]
}

// ParseKind maps a lower-case name ("pre-chorus") to a Kind.
// Unknown names fall back to Verse.
func ParseKind(name string) Kind {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, k := range Kinds() {
		if strings.ToLower(kindLabels[k]) == name {
			return k
		}
	}
	return Verse
}

// LookupKind is ParseKind without the fallback
func LookupKind(name string) (Kind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, k := range Kinds() {
		if strings.ToLower(kindLabels[k]) == name {
			return k, true
		}
	}
	return Verse, false
}

func (k Kind) MarshalText() ([]byte, error) {
	if k < Intro || k > Outro {
		return nil, fmt.Errorf("section kind %d: %w", int(k), ErrInvalidParameter)
	}
	return []byte(strings.ToLower(kindLabels[k])), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	kind, ok := LookupKind(string(text))
	if !ok {
		return fmt.Errorf("section kind %q: %w", string(text), ErrInvalidParameter)
	}
	*k = kind
	return nil
}

// Section is a named span of bars
type Section struct {
	Kind        Kind   `json:"kind"`
	Name        string `json:"name,omitempty"`
	Bars        int    `json:"bars"`
	BeatsPerBar int    `json:"beatsPerBar"`
}

// NewSection builds a 4/4 section labelled with its kind
func NewSection(kind Kind, bars int) Section {
	return Section{Kind: kind, Name: kind.String(), Bars: bars, BeatsPerBar: 4}
}

// TotalBeats is Bars * BeatsPerBar
func (s Section) TotalBeats() int {
	return s.Bars * s.BeatsPerBar
}

// Label returns Name, or the kind label when Name is empty
func (s Section) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Kind.String()
}

// MaxBeats bounds an arrangement. At 480 ticks per beat every tick
// position stays well inside uint32.
const MaxBeats = 1 << 16

// Validate checks the section can be placed on a timeline
func (s Section) Validate() error {
	if s.Kind < Intro || s.Kind > Outro {
		return fmt.Errorf("section kind %d: %w", int(s.Kind), ErrInvalidParameter)
	}
	if s.Bars <= 0 {
		return fmt.Errorf("section %s: bars must be positive, got %d: %w", s.Label(), s.Bars, ErrInvalidParameter)
	}
	if s.BeatsPerBar <= 0 {
		return fmt.Errorf("section %s: beats per bar must be positive, got %d: %w", s.Label(), s.BeatsPerBar, ErrInvalidParameter)
	}
	if s.Bars > MaxBeats/s.BeatsPerBar {
		return fmt.Errorf("section %s: more than %d beats: %w", s.Label(), MaxBeats, ErrInvalidParameter)
	}
	return nil
}
