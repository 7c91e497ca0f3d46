package midi

import (
	"fmt"

	"go-industrial/song"
)

// maxVLQBytes is enough for any uint32 (5 * 7 bits)
const maxVLQBytes = 5

// AppendVLQ appends the variable-length quantity encoding of v to dst:
// 7-bit groups, most significant first, high bit set on all but the last.
func AppendVLQ(dst []byte, v uint32) []byte {
	var tmp [maxVLQBytes]byte
	i := len(tmp) - 1
	tmp[i] = byte(v & 0x7F)
	for v >>= 7; v > 0; v >>= 7 {
		i--
		tmp[i] = byte(v&0x7F) | 0x80
	}
	return append(dst, tmp[i:]...)
}

// EncodeVLQ returns the encoding of v
func EncodeVLQ(v uint32) []byte {
	return AppendVLQ(nil, v)
}

// DecodeVLQ reads one quantity from the front of b and returns it with the
// number of bytes consumed.
func DecodeVLQ(b []byte) (uint32, int, error) {
	var v uint32
	for i := 0; i < len(b) && i < maxVLQBytes; i++ {
		v = v<<7 | uint32(b[i]&0x7F)
		if b[i]&0x80 == 0 {
			return v, i + 1, nil
		}
	}
	if len(b) < maxVLQBytes {
		return 0, 0, fmt.Errorf("truncated variable-length quantity: %w", song.ErrInvalidParameter)
	}
	return 0, 0, fmt.Errorf("variable-length quantity longer than %d bytes: %w", maxVLQBytes, song.ErrInvalidParameter)
}
