package song

// Preset names in display order
const (
	PresetStandard   = "standard"
	PresetSimple     = "simple"
	PresetExtended   = "extended"
	PresetIndustrial = "industrial"
)

// DefaultPreset is loaded when nothing else is configured
const DefaultPreset = PresetStandard

// Presets returns the available preset names
func Presets() []string {
	return []string{PresetStandard, PresetSimple, PresetExtended, PresetIndustrial}
}

// Preset returns a fresh copy of the named arrangement
func Preset(name string) ([]Section, bool) {
	switch name {
	case PresetStandard:
		return []Section{
			NewSection(Intro, 2),
			NewSection(Verse, 4),
			NewSection(PreChorus, 2),
			NewSection(Chorus, 4),
			NewSection(Verse, 4),
			NewSection(PreChorus, 2),
			NewSection(Chorus, 4),
			NewSection(Bridge, 4),
			NewSection(Chorus, 4),
			NewSection(Outro, 2),
		}, true
	case PresetSimple:
		return []Section{
			NewSection(Intro, 2),
			NewSection(Verse, 4),
			NewSection(Chorus, 4),
			NewSection(Verse, 4),
			NewSection(Chorus, 4),
			NewSection(Outro, 2),
		}, true
	case PresetExtended:
		return []Section{
			NewSection(Intro, 4),
			NewSection(Verse, 4),
			NewSection(PreChorus, 2),
			NewSection(Chorus, 4),
			NewSection(Instrumental, 4),
			NewSection(Verse, 4),
			NewSection(PreChorus, 2),
			NewSection(Chorus, 4),
			NewSection(Bridge, 4),
			NewSection(Breakdown, 2),
			NewSection(Chorus, 8),
			NewSection(Outro, 4),
		}, true
	case PresetIndustrial:
		return []Section{
			NewSection(Intro, 4),
			NewSection(Breakdown, 2),
			NewSection(Verse, 4),
			NewSection(Instrumental, 4),
			NewSection(Chorus, 4),
			NewSection(Breakdown, 4),
			NewSection(Verse, 4),
			NewSection(Bridge, 4),
			NewSection(Chorus, 8),
			NewSection(Breakdown, 2),
			NewSection(Outro, 4),
		}, true
	}
	return nil, false
}
