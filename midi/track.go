package midi

import (
	"encoding/binary"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Meta event types
const (
	metaTrackName byte = 0x03
	metaMarker    byte = 0x06
	metaEndTrack  byte = 0x2F
	metaTempo     byte = 0x51
	metaTimeSig   byte = 0x58
)

// trackWriter builds an MTrk chunk. Events are added at absolute ticks in
// non-decreasing order; the writer turns them into delta times.
type trackWriter struct {
	buf  []byte
	last uint32
}

func newTrackWriter() *trackWriter {
	// chunk id + length placeholder, patched in bytes()
	return &trackWriter{buf: []byte{'M', 'T', 'r', 'k', 0, 0, 0, 0}}
}

func (w *trackWriter) delta(tick uint32) {
	if tick < w.last {
		tick = w.last
	}
	w.buf = AppendVLQ(w.buf, tick-w.last)
	w.last = tick
}

// message writes a channel message
func (w *trackWriter) message(tick uint32, msg gomidi.Message) {
	w.delta(tick)
	w.buf = append(w.buf, msg...)
}

// meta writes FF type len data
func (w *trackWriter) meta(tick uint32, typ byte, data []byte) {
	w.delta(tick)
	w.buf = append(w.buf, 0xFF, typ)
	w.buf = AppendVLQ(w.buf, uint32(len(data)))
	w.buf = append(w.buf, data...)
}

func (w *trackWriter) name(name string) {
	w.meta(0, metaTrackName, []byte(name))
}

// tempo writes the microseconds-per-quarter value as 3 bytes
func (w *trackWriter) tempo(tick, usPerQuarter uint32) {
	w.meta(tick, metaTempo, []byte{byte(usPerQuarter >> 16), byte(usPerQuarter >> 8), byte(usPerQuarter)})
}

// end closes the track at tick and returns the framed chunk
func (w *trackWriter) end(tick uint32) []byte {
	w.meta(tick, metaEndTrack, nil)
	binary.BigEndian.PutUint32(w.buf[4:8], uint32(len(w.buf)-8))
	return w.buf
}

// emptyTrack is a chunk whose body is only end-of-track at tick 0
func emptyTrack() []byte {
	return newTrackWriter().end(0)
}

// header returns the MThd chunk
func header(format, tracks, division uint16) []byte {
	b := make([]byte, 14)
	copy(b, "MThd")
	binary.BigEndian.PutUint32(b[4:8], 6)
	binary.BigEndian.PutUint16(b[8:10], format)
	binary.BigEndian.PutUint16(b[10:12], tracks)
	binary.BigEndian.PutUint16(b[12:14], division)
	return b
}
