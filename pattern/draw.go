package pattern

import "math/rand/v2"

// Track seed offsets from the song seed
const (
	DrumSeed    uint32 = 0
	BassSeed    uint32 = 1
	LeadSeed    uint32 = 2
	PadSeed     uint32 = 3
	EffectsSeed uint32 = 4
)

const knuth uint32 = 2654435761

// drawStream is the fixed second half of every PCG seed
const drawStream uint64 = 0x9e3779b97f4a7c15

// Draw returns one value in [0,1) from a generator seeded with seed.
// The same seed always yields the same value.
func Draw(seed uint32) float64 {
	var g rand.PCG
	g.Seed(uint64(seed), drawStream)
	return float64(g.Uint64()>>11) / (1 << 53)
}

// BeatSeed derives the seed for step index of a track. Every beat (or bar)
// gets its own seed so consecutive draws don't repeat.
func BeatSeed(trackSeed uint32, index int) uint32 {
	return trackSeed ^ (uint32(index)+1)*knuth
}

// TrackSeed returns song seed + offset, wrapping
func TrackSeed(seed, offset uint32) uint32 {
	return seed + offset
}
