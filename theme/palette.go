package theme

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

type RGB [3]uint8

// Hex returns "#rrggbb"
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

type Palette struct {
	Name   string
	Colors []RGB
}

// Industrial is the built-in palette: soot through rust to sodium-lamp yellow
func Industrial() *Palette {
	return &Palette{
		Name: "industrial",
		Colors: []RGB{
			{0x12, 0x10, 0x10},
			{0x24, 0x1f, 0x1e},
			{0x3d, 0x34, 0x31},
			{0x6b, 0x5b, 0x55},
			{0x9a, 0x8c, 0x85},
			{0xb3, 0x3a, 0x1e},
			{0xd4, 0x5a, 0x1c},
			{0xe8, 0x82, 0x1a},
			{0xf2, 0xa9, 0x1d},
			{0xf7, 0xd3, 0x3c},
		},
	}
}

// LoadGPL reads a GIMP palette file
func LoadGPL(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := ParseGPL(f)
	if err != nil {
		return nil, fmt.Errorf("palette %s: %w", path, err)
	}
	return p, nil
}

// ParseGPL reads GIMP palette data. Lines that are not "R G B [name]"
// with 0-255 components are skipped.
func ParseGPL(r io.Reader) (*Palette, error) {
	p := &Palette{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "", strings.HasPrefix(line, "#"),
			strings.HasPrefix(line, "GIMP"), strings.HasPrefix(line, "Columns"):
		case strings.HasPrefix(line, "Name:"):
			p.Name = strings.TrimSpace(line[len("Name:"):])
		default:
			if c, ok := parseColor(strings.Fields(line)); ok {
				p.Colors = append(p.Colors, c)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(p.Colors) == 0 {
		return nil, fmt.Errorf("no colors found")
	}
	return p, nil
}

func parseColor(fields []string) (RGB, bool) {
	var c RGB
	if len(fields) < len(c) {
		return c, false
	}
	for i := range c {
		v, err := strconv.ParseUint(fields[i], 10, 8)
		if err != nil {
			return c, false
		}
		c[i] = uint8(v)
	}
	return c, true
}

// LoadOrDefault loads path, falling back to Industrial when path is empty
func LoadOrDefault(path string) (*Palette, error) {
	if path == "" {
		return Industrial(), nil
	}
	return LoadGPL(path)
}

// Lookup blends between neighbouring colors; norm is clamped to 0..1
func (p *Palette) Lookup(norm float64) RGB {
	last := len(p.Colors) - 1
	pos := min(max(norm, 0), 1) * float64(last)
	i := min(int(pos), max(last-1, 0))
	if last == 0 {
		return p.Colors[0]
	}
	a, b, t := p.Colors[i], p.Colors[i+1], pos-float64(i)
	var out RGB
	for ch := range out {
		out[ch] = lerp(a[ch], b[ch], t)
	}
	return out
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}

// Index returns the color at i, clamped to the palette
func (p *Palette) Index(i int) RGB {
	return p.Colors[min(max(i, 0), len(p.Colors)-1)]
}
