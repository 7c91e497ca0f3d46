package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-industrial/song"
)

func TestBar(t *testing.T) {
	assert.Equal(t, "##--", Bar(0.5, 4, '#', '-'))
	assert.Equal(t, "----", Bar(-1, 4, '#', '-'))
	assert.Equal(t, "####", Bar(2, 4, '#', '-'))
	assert.Empty(t, Bar(0.5, 0, '#', '-'))
}

func TestSpectrum(t *testing.T) {
	levels := []rune(" .:#")
	freqs := []float32{1, 1, 0.5, 0.5, 0, 0}

	rows := Spectrum(freqs, 3, 2, levels)
	require.Len(t, rows, 2)
	// full column, half column, silent column
	assert.Equal(t, "#  ", rows[0])
	assert.Equal(t, "## ", rows[1])

	assert.Nil(t, Spectrum(freqs, 0, 2, levels))
	assert.Equal(t, []string{"   "}, Spectrum(nil, 3, 1, levels))
}

func TestBucketsPeak(t *testing.T) {
	got := buckets([]float32{0.1, 0.9, 0.2, 0.3}, 2)
	assert.InDelta(t, 0.9, got[0], 1e-6)
	assert.InDelta(t, 0.3, got[1], 1e-6)

	// more columns than bins repeats bins
	assert.Len(t, buckets([]float32{0.5}, 4), 4)
}

func TestStripWidths(t *testing.T) {
	sections, _ := song.Preset(song.PresetStandard)
	for _, width := range []int{20, 37, 80} {
		widths := StripWidths(sections, width)
		sum := 0
		for _, w := range widths {
			assert.GreaterOrEqual(t, w, 1)
			sum += w
		}
		assert.Equal(t, width, sum, "width %d", width)
	}

	even := []song.Section{song.NewSection(song.Verse, 4), song.NewSection(song.Chorus, 4)}
	assert.Equal(t, []int{5, 5}, StripWidths(even, 10))
	assert.Equal(t, []int{0, 0}, StripWidths(even, 0))
}

func TestStrip(t *testing.T) {
	sections := []song.Section{song.NewSection(song.Intro, 4), song.NewSection(song.Chorus, 4)}
	out := Strip(sections, 1, 20, func(song.Kind) lipgloss.Color { return lipgloss.Color("#ffffff") })
	assert.Equal(t, 20, lipgloss.Width(out))
	assert.Contains(t, out, "INTRO")
	assert.Contains(t, out, "CHORUS")
}

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{{
		Title: "Transport",
		Keys:  []KeyBinding{{"space", "play/pause"}, {"s", "stop"}},
	}})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Transport", lines[0])
	assert.Contains(t, lines[1], "play/pause")
}
