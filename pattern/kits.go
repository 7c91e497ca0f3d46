package pattern

// Voice is a drum slot
type Voice int

const (
	Kick Voice = iota
	Snare
	ClosedHat
	OpenHat
	Crash
	Ride
	numVoices
)

var voiceNames = [...]string{"kick", "snare", "closed-hh", "open-hh", "crash", "ride"}

func (v Voice) String() string {
	if v < 0 || v >= numVoices {
		return "unknown"
	}
	return voiceNames[v]
}

// Kit maps drum voices to MIDI notes
type Kit struct {
	Name  string
	Notes [numVoices]uint8
}

// Note returns the note for v
func (k Kit) Note(v Voice) uint8 {
	return k.Notes[v]
}

// Remap translates a General MIDI drum note into this kit. Notes the kit
// doesn't know pass through.
func (k Kit) Remap(note uint8) uint8 {
	gm := Kits[DefaultKit]
	for v := Voice(0); v < numVoices; v++ {
		if gm.Notes[v] == note {
			return k.Notes[v]
		}
	}
	return note
}

// Kits contains all available drum kit mappings. The file export always
// uses General MIDI; the others are for live output to hardware.
var Kits = map[string]Kit{
	"gm": {
		Name: "General MIDI",
		Notes: [numVoices]uint8{
			36, // Kick
			38, // Snare
			42, // Closed HH
			46, // Open HH
			49, // Crash
			51, // Ride
		},
	},
	"rd8": {
		Name: "Behringer RD-8",
		Notes: [numVoices]uint8{
			36, // BD
			40, // SD - RD-8 uses 40, not 38
			42, // CH
			46, // OH
			49, // CY
			51, // RC
		},
	},
	"tr8s": {
		Name: "Roland TR-8S",
		Notes: [numVoices]uint8{36, 38, 42, 46, 49, 51},
	},
	"er1": {
		Name: "Korg ER-1",
		Notes: [numVoices]uint8{
			36, // Perc Synth 1
			38, // Perc Synth 2
			42, // Closed HH (PCM)
			46, // Open HH (PCM)
			49, // Crash (PCM)
			45, // Audio In 2, no ride
		},
	},
}

// DefaultKit is the default kit name
const DefaultKit = "gm"

// KitNames returns the list of available kit names
func KitNames() []string {
	return []string{"gm", "rd8", "tr8s", "er1"}
}

// GetKit returns a kit by name, defaulting to GM if not found
func GetKit(name string) Kit {
	if kit, ok := Kits[name]; ok {
		return kit
	}
	return Kits[DefaultKit]
}
