package midi

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-industrial/pattern"
	"go-industrial/song"
)

func TestVLQRoundTrip(t *testing.T) {
	tests := []struct {
		value uint32
		want  []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7F}},
		{128, []byte{0x81, 0x00}},
		{16383, []byte{0xFF, 0x7F}},
		{16384, []byte{0x81, 0x80, 0x00}},
		{0x0FFFFFFF, []byte{0xFF, 0xFF, 0xFF, 0x7F}},
		{0xFFFFFFFF, []byte{0x8F, 0xFF, 0xFF, 0xFF, 0x7F}},
	}
	for _, tt := range tests {
		enc := EncodeVLQ(tt.value)
		assert.Equal(t, tt.want, enc, "encode %d", tt.value)

		got, n, err := DecodeVLQ(append(enc, 0x55))
		require.NoError(t, err)
		assert.Equal(t, tt.value, got)
		assert.Equal(t, len(enc), n)
	}

	for v := uint32(0); v < 1<<21; v += 997 {
		got, _, err := DecodeVLQ(EncodeVLQ(v))
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestDecodeVLQErrors(t *testing.T) {
	_, _, err := DecodeVLQ([]byte{0x81, 0x80})
	assert.ErrorIs(t, err, song.ErrInvalidParameter)
	_, _, err = DecodeVLQ([]byte{0x81, 0x80, 0x80, 0x80, 0x80, 0x00})
	assert.ErrorIs(t, err, song.ErrInvalidParameter)
	_, _, err = DecodeVLQ(nil)
	assert.ErrorIs(t, err, song.ErrInvalidParameter)
}

type chunk struct {
	id   string
	body []byte
}

func splitChunks(t *testing.T, data []byte) []chunk {
	t.Helper()
	var chunks []chunk
	for len(data) > 0 {
		require.GreaterOrEqual(t, len(data), 8)
		n := binary.BigEndian.Uint32(data[4:8])
		require.GreaterOrEqual(t, len(data)-8, int(n))
		chunks = append(chunks, chunk{id: string(data[:4]), body: data[8 : 8+n]})
		data = data[8+n:]
	}
	return chunks
}

func tenSections() []song.Section {
	sections, _ := song.Preset(song.PresetStandard)
	return sections
}

func params(tempo int, seed uint32) song.Params {
	p := song.DefaultParams()
	p.Tempo = tempo
	p.Seed = seed
	return p
}

func TestEncodeStructure(t *testing.T) {
	data, err := Encode(tenSections(), params(120, 42))
	require.NoError(t, err)

	chunks := splitChunks(t, data)
	require.Len(t, chunks, 7)

	hdr := chunks[0]
	assert.Equal(t, "MThd", hdr.id)
	require.Len(t, hdr.body, 6)
	assert.Equal(t, uint16(1), binary.BigEndian.Uint16(hdr.body[0:2]))
	assert.Equal(t, uint16(6), binary.BigEndian.Uint16(hdr.body[2:4]))
	assert.Equal(t, uint16(480), binary.BigEndian.Uint16(hdr.body[4:6]))

	for i, c := range chunks[1:] {
		assert.Equal(t, "MTrk", c.id, "track %d", i)
		assert.Equal(t, []byte{0xFF, 0x2F, 0x00}, c.body[len(c.body)-3:], "track %d", i)
	}

	tempo := chunks[1].body
	assert.True(t, bytes.Contains(tempo, []byte{0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20}), "tempo 500000")
	assert.True(t, bytes.Contains(tempo, []byte{0xFF, 0x58, 0x04, 0x04, 0x02, 0x18, 0x08}), "time signature")
	assert.True(t, bytes.Contains(tempo, append([]byte{0xFF, 0x03, 11}, "Tempo Track"...)))
	assert.True(t, bytes.Contains(tempo, append([]byte{0xFF, 0x06, 10}, "PRE-CHORUS"...)))

	assert.Equal(t, []byte{0x00, 0xFF, 0x2F, 0x00}, chunks[5].body)
	assert.Equal(t, []byte{0x00, 0xFF, 0x2F, 0x00}, chunks[6].body)

	bass := chunks[3].body
	assert.True(t, bytes.Contains(bass, []byte{0x00, 0xC0, 38}), "bass program change")
	lead := chunks[4].body
	assert.True(t, bytes.Contains(lead, []byte{0x00, 0xC1, 81}), "lead program change")
}

func TestEncodeDeterministic(t *testing.T) {
	a, err := Encode(tenSections(), params(120, 42))
	require.NoError(t, err)
	b, err := Encode(tenSections(), params(120, 42))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Encode(tenSections(), params(120, 43))
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	p := params(120, 42)
	p.Distortion = 0
	d, err := Encode(tenSections(), p)
	require.NoError(t, err)
	assert.Equal(t, a, d, "distortion must not change the file")
}

func TestEncodeTempoIntegerDivision(t *testing.T) {
	data, err := Encode(tenSections(), params(70, 1))
	require.NoError(t, err)
	// 60000000 / 70 = 857142 = 0x0D1436
	assert.True(t, bytes.Contains(data, []byte{0xFF, 0x51, 0x03, 0x0D, 0x14, 0x36}))
}

func TestEncodeRejectsInvalid(t *testing.T) {
	data, err := Encode(nil, params(120, 42))
	assert.ErrorIs(t, err, song.ErrInvalidParameter)
	assert.Nil(t, data)

	data, err = Encode(tenSections(), params(0, 42))
	assert.ErrorIs(t, err, song.ErrInvalidParameter)
	assert.Nil(t, data)

	bad := params(120, 42)
	bad.Intensity = 11
	_, err = Encode(tenSections(), bad)
	assert.ErrorIs(t, err, song.ErrInvalidParameter)

	// 60000000/3 does not fit the 3-byte tempo field
	for _, tempo := range []int{1, 2, 3} {
		data, err = Encode(tenSections(), params(tempo, 42))
		assert.ErrorIs(t, err, song.ErrInvalidParameter, "tempo %d", tempo)
		assert.Nil(t, data)
	}
}

func TestEncodeRejectsOversizedSong(t *testing.T) {
	require.LessOrEqual(t, uint64(song.MaxBeats*pattern.PPQ), uint64(math.MaxUint32))

	data, err := Encode([]song.Section{song.NewSection(song.Verse, 2300000)}, params(120, 42))
	assert.ErrorIs(t, err, song.ErrInvalidParameter)
	assert.Nil(t, data)
}

func TestEncodeSlowestTempo(t *testing.T) {
	data, err := Encode(tenSections(), params(song.MinTempo, 42))
	require.NoError(t, err)
	// 60000000 / 4 = 15000000 = 0xE4E1C0
	assert.True(t, bytes.Contains(data, []byte{0xFF, 0x51, 0x03, 0xE4, 0xE1, 0xC0}))

	sum, err := Inspect(data)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, sum.BPM, 1e-6)
}

func TestEncodeDeltaTimes(t *testing.T) {
	sections := []song.Section{song.NewSection(song.Verse, 1)}
	p := params(120, 3)
	p.Intensity = 10
	data, err := Encode(sections, p)
	require.NoError(t, err)

	drums := splitChunks(t, data)[2].body
	// walk events summing deltas; the last (end of track) lands at the song end
	var tick uint32
	i := 0
	var last uint32
	for i < len(drums) {
		d, n, err := DecodeVLQ(drums[i:])
		require.NoError(t, err)
		tick += d
		last = tick
		i += n
		switch status := drums[i]; {
		case status == 0xFF:
			l := int(drums[i+2])
			i += 3 + l
		default:
			i += 3
		}
	}
	assert.Equal(t, uint32(4*pattern.PPQ), last)
}

func TestInspect(t *testing.T) {
	p := params(120, 42)
	data, err := Encode(tenSections(), p)
	require.NoError(t, err)

	sum, err := Inspect(data)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), sum.Format)
	assert.Equal(t, 6, sum.Tracks)
	assert.Equal(t, uint16(480), sum.Division)
	assert.InDelta(t, 120.0, sum.BPM, 0.01)
	require.Len(t, sum.Notes, 6)

	sections := tenSections()
	assert.Equal(t, len(pattern.DrumTrack(sections, p.Intensity, p.Seed)), sum.Notes[1])
	assert.Equal(t, len(pattern.BassTrack(sections, p.Intensity, p.Seed)), sum.Notes[2])
	assert.Equal(t, len(pattern.LeadTrack(sections, p.Intensity, p.Seed)), sum.Notes[3])
	assert.Equal(t, 0, sum.Notes[5])

	_, err = Inspect([]byte("nope"))
	assert.ErrorIs(t, err, song.ErrInvalidParameter)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "song.mid")

	n, err := Export(path, tenSections(), params(120, 42))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, data, n)

	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	err = WriteFile(filepath.Join(blocker, "song.mid"), data)
	assert.ErrorIs(t, err, song.ErrFileWriteFailed)

	_, err = Export(filepath.Join(dir, "empty.mid"), nil, params(120, 1))
	assert.ErrorIs(t, err, song.ErrInvalidParameter)
	assert.NoFileExists(t, filepath.Join(dir, "empty.mid"))
}

func TestExpandOrdering(t *testing.T) {
	notes := []pattern.Event{
		{Channel: 0, Pitch: 24, Velocity: 80, StartTick: 0, DurationTicks: 960},
		{Channel: 0, Pitch: 24, Velocity: 70, StartTick: 960, DurationTicks: 960},
	}
	events := Expand(notes)
	require.Len(t, events, 4)
	assert.Equal(t, uint32(0), events[0].Tick)
	assert.False(t, events[0].Off)
	assert.Equal(t, uint32(960), events[1].Tick)
	assert.True(t, events[1].Off, "off before on at the same tick")
	assert.Equal(t, []byte{0x80, 24, 0}, []byte(events[1].Msg))
	assert.False(t, events[2].Off)
	assert.Equal(t, uint32(1920), events[3].Tick)
}
