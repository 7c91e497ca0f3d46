package theme

import (
	"github.com/charmbracelet/lipgloss"

	"go-industrial/song"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	BarFull  rune // █ filled meter cell
	BarEmpty rune // ░ empty meter cell
	Playhead rune // ▼ current position on the section strip
	Playing  rune // ▶
	Paused   rune // ‖
	Stopped  rune // ■
	Loop     rune // ↻

	// Spectrum column heights, quietest first
	Levels []rune
}

func New(palette *Palette) *Theme {
	if palette == nil {
		palette = Industrial()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			BarFull:  '█',
			BarEmpty: '░',
			Playhead: '▼',
			Playing:  '▶',
			Paused:   '‖',
			Stopped:  '■',
			Loop:     '↻',
			Levels:   []rune(" ▁▂▃▄▅▆▇█"),
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0
	RoleSurface = 0.15
	RoleMuted   = 0.3
	RoleFG      = 0.45
	RoleAccent  = 0.65
	RoleActive  = 0.75
	RoleWarning = 0.85
	RoleSuccess = 1.0
)

func (t *Theme) BG() lipgloss.Color      { return t.Color(RoleBG) }
func (t *Theme) Surface() lipgloss.Color { return t.Color(RoleSurface) }
func (t *Theme) FG() lipgloss.Color      { return t.Color(RoleFG) }
func (t *Theme) Accent() lipgloss.Color  { return t.Color(RoleAccent) }
func (t *Theme) Muted() lipgloss.Color   { return t.Color(RoleMuted) }
func (t *Theme) Active() lipgloss.Color  { return t.Color(RoleActive) }
func (t *Theme) Warning() lipgloss.Color { return t.Color(RoleWarning) }
func (t *Theme) Success() lipgloss.Color { return t.Color(RoleSuccess) }

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return lipgloss.Color(t.Palette.Lookup(norm).Hex())
}

// RGB returns raw RGB for any normalized value
func (t *Theme) RGB(norm float64) RGB {
	return t.Palette.Lookup(norm)
}

// sectionRoles places each kind on the palette by how hard it hits
var sectionRoles = map[song.Kind]float64{
	song.Intro:        0.35,
	song.Verse:        0.55,
	song.PreChorus:    0.7,
	song.Chorus:       1.0,
	song.Bridge:       0.6,
	song.Instrumental: 0.8,
	song.Breakdown:    0.9,
	song.Outro:        0.4,
}

// SectionColor returns the display color for a section kind
func (t *Theme) SectionColor(k song.Kind) lipgloss.Color {
	norm, ok := sectionRoles[k]
	if !ok {
		norm = RoleFG
	}
	return t.Color(norm)
}
