package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-industrial/song"
)

func TestDrawDeterministic(t *testing.T) {
	for _, seed := range []uint32{0, 1, 42, 0xFFFFFFFF} {
		a := Draw(seed)
		assert.Equal(t, a, Draw(seed))
		assert.GreaterOrEqual(t, a, 0.0)
		assert.Less(t, a, 1.0)
	}
	assert.NotEqual(t, BeatSeed(42, 0), BeatSeed(42, 1))
	assert.NotEqual(t, BeatSeed(42, 3), BeatSeed(43, 3))
}

// Generated files depend on these exact values; a change here changes
// every rendered song.
func TestDrawGolden(t *testing.T) {
	tests := []struct {
		seed uint32
		want float64
	}{
		{0, 0.46224697599393116},
		{1, 0.9306946367796985},
		{42, 0.3358350514255748},
		{0xFFFFFFFF, 0.11962340846923925},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Draw(tt.seed), "seed %d", tt.seed)
	}
}

func TestDrawDoesNotAllocate(t *testing.T) {
	allocs := testing.AllocsPerRun(100, func() { Draw(42) })
	assert.Zero(t, allocs)
}

func TestVelocity(t *testing.T) {
	assert.Equal(t, uint8(0), Velocity(-1))
	assert.Equal(t, uint8(127), Velocity(1))
	assert.Equal(t, uint8(127), Velocity(3))
	assert.Equal(t, uint8(64), Velocity(0.5))
}

func TestDrumRules(t *testing.T) {
	intro := song.NewSection(song.Intro, 4)
	verse := song.NewSection(song.Verse, 4)
	chorus := song.NewSection(song.Chorus, 4)
	breakdown := song.NewSection(song.Breakdown, 4)
	bridge := song.NewSection(song.Bridge, 4)

	t.Run("intro", func(t *testing.T) {
		assert.False(t, Drums(intro, 4, 10, 0).Kick.On)
		assert.False(t, Drums(intro, 8, 10, 0).Kick.On)
		assert.True(t, Drums(intro, 12, 10, 0).Kick.On)
		h := Drums(intro, 1, 10, 0)
		assert.True(t, h.HiHat.On)
		assert.InDelta(t, 0.5*0.7, h.HiHat.Velocity, 1e-9)
	})

	t.Run("verse", func(t *testing.T) {
		assert.True(t, Drums(verse, 0, 5, 0).Kick.On)
		assert.False(t, Drums(verse, 2, 5, 0).Kick.On)
		assert.True(t, Drums(verse, 4, 5, 0).Snare.On)
		assert.False(t, Drums(verse, 8, 5, 0).Snare.On)
		h := Drums(verse, 0, 5, 0)
		assert.InDelta(t, 0.5, h.Kick.Velocity, 1e-9)
		assert.InDelta(t, 0.35, h.HiHat.Velocity, 1e-9)
		assert.False(t, h.Crash.On)
	})

	t.Run("chorus", func(t *testing.T) {
		assert.True(t, Drums(chorus, 3, 8, 0).Kick.On)
		assert.False(t, Drums(chorus, 3, 7, 0).Kick.On)
		assert.True(t, Drums(chorus, 6, 5, 0).Snare.On)
		assert.True(t, Drums(chorus, 0, 5, 0).Crash.On)
		h := Drums(chorus, 7, 5, 0)
		assert.True(t, h.OpenHat.On)
		assert.False(t, h.HiHat.On)
		assert.InDelta(t, 1.0, Drums(chorus, 0, 10, 0).Kick.Velocity, 1e-9)
	})

	t.Run("breakdown", func(t *testing.T) {
		assert.True(t, Drums(breakdown, 8, 5, 0).Kick.On)
		assert.False(t, Drums(breakdown, 4, 5, 0).Kick.On)

		quiet := Drums(breakdown, 1, 10, 0.4)
		assert.False(t, quiet.Snare.On)
		assert.False(t, quiet.HiHat.On)

		mid := Drums(breakdown, 1, 10, 0.6)
		assert.False(t, mid.Snare.On)
		assert.True(t, mid.HiHat.On)

		loud := Drums(breakdown, 1, 10, 0.9)
		assert.True(t, loud.Snare.On)
		assert.InDelta(t, 0.9, loud.Snare.Velocity, 1e-9)
	})

	t.Run("fallback", func(t *testing.T) {
		for beat := 0; beat < 16; beat++ {
			assert.Equal(t, Drums(verse, beat, 6, 0.3), Drums(bridge, beat, 6, 0.3), "beat %d", beat)
		}
	})
}

func TestDrumEvents(t *testing.T) {
	h := Drums(song.NewSection(song.Chorus, 1), 0, 10, 0)
	events := h.Events(960)
	require.Len(t, events, 3)

	pitches := []uint8{events[0].Pitch, events[1].Pitch, events[2].Pitch}
	assert.Equal(t, []uint8{36, 42, 49}, pitches)
	for _, e := range events {
		assert.Equal(t, DrumChannel, e.Channel)
		assert.Equal(t, uint32(960), e.StartTick)
		assert.Equal(t, uint32(60), e.DurationTicks)
	}
}

func TestBassAndLead(t *testing.T) {
	verse := song.NewSection(song.Verse, 2)
	chorus := song.NewSection(song.Chorus, 2)
	breakdown := song.NewSection(song.Breakdown, 2)

	bass := Bass(verse, 0, 10, 0.9)
	require.Len(t, bass, 2)
	assert.Equal(t, uint8(24), bass[0].Pitch)
	assert.Equal(t, uint8(32), bass[1].Pitch)
	assert.Equal(t, uint32(960), bass[1].StartTick)
	assert.Equal(t, uint8(80), bass[0].Velocity)
	assert.Equal(t, uint8(70), bass[1].Velocity)

	assert.Equal(t, uint8(36), Bass(chorus, 0, 8, 0.6)[0].Pitch)
	assert.Equal(t, uint8(24), Bass(chorus, 0, 7, 0.6)[0].Pitch)
	assert.Len(t, Bass(breakdown, 0, 5, 0), 1)

	assert.Nil(t, Lead(verse, 0, 10, 0.5))
	assert.Nil(t, Lead(breakdown, 0, 10, 0.5))

	lead := Lead(chorus, 0, 10, 0.5)
	require.Len(t, lead, 2)
	assert.Equal(t, LeadNotes[12], lead[0].Pitch)
	assert.Equal(t, LeadNotes[16], lead[1].Pitch)

	bridge := Lead(song.NewSection(song.Bridge, 1), 0, 10, 0.99)
	assert.Equal(t, LeadNotes[7], bridge[0].Pitch)
	assert.Equal(t, LeadNotes[11], bridge[1].Pitch)
}

func TestTracksDeterministic(t *testing.T) {
	sections, ok := song.Preset(song.PresetExtended)
	require.True(t, ok)

	for _, part := range []Part{PartDrums, PartBass, PartLead} {
		a := Track(part, sections, 9, 1234)
		b := Track(part, sections, 9, 1234)
		assert.Equal(t, a, b, part.String())
		assert.NotEmpty(t, a, part.String())
	}
	assert.NotEqual(t, DrumTrack(sections, 9, 1), DrumTrack(sections, 9, 2))
}

func TestTrackMatchesSteps(t *testing.T) {
	sections := []song.Section{
		song.NewSection(song.Chorus, 2),
		{Kind: song.Bridge, Bars: 2, BeatsPerBar: 3},
		song.NewSection(song.Breakdown, 1),
	}

	var fromSteps []Event
	for beat := 0; beat < song.TotalBeats(sections); beat++ {
		fromSteps = append(fromSteps, Shift(BeatEvents(sections, beat, 9, 7), uint32(beat*PPQ))...)
	}
	assert.Equal(t, DrumTrack(sections, 9, 7), fromSteps)

	var bars []int
	for beat := 0; beat < song.TotalBeats(sections); beat++ {
		if bar, ok := BarAt(sections, beat); ok {
			bars = append(bars, bar)
		}
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, bars)

	bass := BassTrack(sections, 9, 7)
	var starts []uint32
	for _, e := range bass {
		if e.StartTick%PPQ == 0 && e.Pitch != BassNotes[5] {
			starts = append(starts, e.StartTick)
		}
	}
	assert.Equal(t, []uint32{0, 1920, 3840, 5280, 6720}, starts)
}

func TestKits(t *testing.T) {
	assert.Equal(t, uint8(40), GetKit("rd8").Remap(38))
	assert.Equal(t, uint8(37), GetKit("rd8").Remap(37))
	assert.Equal(t, Kits[DefaultKit], GetKit("nope"))
	for _, name := range KitNames() {
		_, ok := Kits[name]
		assert.True(t, ok, name)
	}
}
