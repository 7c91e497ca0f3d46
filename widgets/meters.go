package widgets

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-industrial/song"
)

// Bar renders a horizontal meter of width cells filled to frac (0-1)
func Bar(frac float64, width int, full, empty rune) string {
	if width <= 0 {
		return ""
	}
	frac = math.Max(0, math.Min(1, frac))
	n := int(math.Round(frac * float64(width)))
	return strings.Repeat(string(full), n) + strings.Repeat(string(empty), width-n)
}

// Spectrum renders freqs (0-1 values) as width columns, height rows tall.
// Each column shows the peak of its bucket; levels runs quietest to loudest.
func Spectrum(freqs []float32, width, height int, levels []rune) []string {
	if width <= 0 || height <= 0 || len(levels) < 2 {
		return nil
	}
	cols := buckets(freqs, width)
	steps := len(levels) - 1

	rows := make([]string, height)
	for r := 0; r < height; r++ {
		floor := float64(height - 1 - r) // rows are top first
		var line strings.Builder
		for _, v := range cols {
			fill := v*float64(height) - floor
			switch {
			case fill >= 1:
				line.WriteRune(levels[steps])
			case fill <= 0:
				line.WriteRune(levels[0])
			default:
				line.WriteRune(levels[int(fill*float64(steps))])
			}
		}
		rows[r] = line.String()
	}
	return rows
}

// buckets folds freqs into n peak values clamped to 0-1
func buckets(freqs []float32, n int) []float64 {
	out := make([]float64, n)
	if len(freqs) == 0 {
		return out
	}
	for i := range out {
		lo := i * len(freqs) / n
		hi := (i + 1) * len(freqs) / n
		if hi <= lo {
			hi = lo + 1
		}
		if hi > len(freqs) {
			hi = len(freqs)
		}
		peak := 0.0
		for _, v := range freqs[lo:hi] {
			peak = math.Max(peak, float64(v))
		}
		out[i] = math.Min(1, peak)
	}
	return out
}

// StripWidths splits width cells across sections by beat count. Every
// section gets at least one cell.
func StripWidths(sections []song.Section, width int) []int {
	total := song.TotalBeats(sections)
	out := make([]int, len(sections))
	if total == 0 || width <= 0 {
		return out
	}
	used := 0
	rem := make([]int, len(sections))
	for i, s := range sections {
		exact := s.TotalBeats() * width
		out[i], rem[i] = exact/total, exact%total
		if out[i] == 0 {
			out[i], rem[i] = 1, -1
		}
		used += out[i]
	}
	// largest remainders take the leftover cells
	for used < width {
		best := 0
		for i := range rem {
			if rem[i] > rem[best] {
				best = i
			}
		}
		out[best]++
		rem[best] = -1
		used++
	}
	return out
}

// Strip renders the arrangement as colored blocks with the current section
// highlighted
func Strip(sections []song.Section, current, width int, color func(song.Kind) lipgloss.Color) string {
	widths := StripWidths(sections, width)
	var out strings.Builder
	for i, s := range sections {
		label := s.Label()
		cell := []rune(strings.Repeat(" ", widths[i]))
		copy(cell, []rune(label))
		style := lipgloss.NewStyle().Foreground(color(s.Kind))
		if i == current {
			style = style.Reverse(true).Bold(true)
		}
		out.WriteString(style.Render(string(cell)))
	}
	return out.String()
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
